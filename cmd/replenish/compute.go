package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strings"
	"time"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/engine"
	"github.com/andresuchdata/replenish/backend-go/internal/repository/postgres"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func runCompute(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	wrapped := postgres.Wrap(db)
	itemRepo := postgres.NewItemRepository(wrapped)
	historyRepo := postgres.NewHistoryRepository(wrapped)
	eng := engine.New(historyRepo, c.Int("concurrency"))

	items, err := itemRepo.ListItems(c.Context)
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}
	if len(items) == 0 {
		log.Println("no items to compute")
		return nil
	}

	start := time.Now()
	results := eng.ComputeBatch(c.Context, items, engine.Options{
		CoverageCycles: c.Float64("coverage"),
	})

	outPath := c.String("out")
	if err := exportToCSV(outPath, results); err != nil {
		return fmt.Errorf("failed to export results: %w", err)
	}

	log.Printf("Computed metrics for %d items in %v, report written to %s",
		len(results), time.Since(start), outPath)
	return nil
}

func runOverride(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	recommended := c.Int("recommended")
	ordered := c.Int("ordered")
	justification := strings.TrimSpace(c.String("justification"))
	if ordered != recommended && justification == "" {
		return fmt.Errorf("a justification is required when the ordered quantity deviates from the recommendation")
	}

	// The repository is called directly; best-effort semantics belong to the
	// HTTP flow, while an operator at the terminal wants to know the write
	// failed.
	repo := postgres.NewOverrideRepository(postgres.Wrap(db))
	record := domain.OverrideRecord{
		ID:             uuid.NewString(),
		ItemID:         c.String("item"),
		UserID:         c.String("user"),
		RecommendedQty: recommended,
		OrderedQty:     ordered,
		Justification:  justification,
		CreatedAt:      time.Now(),
	}
	if err := repo.Insert(c.Context, &record); err != nil {
		return fmt.Errorf("failed to log override: %w", err)
	}

	log.Printf("override logged for item %s (%d -> %d)", record.ItemID, recommended, ordered)
	return nil
}

func exportToCSV(path string, results []domain.ItemMetrics) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{"Item ID", "Item Name", "Stock", "Daily Usage", "Days Remaining",
		"Status", "Confidence", "Recommended Qty", "Reorder Date", "Anomalies"}
	if err := writer.Write(header); err != nil {
		return err
	}

	// Write data
	for _, m := range results {
		daysRemaining := "inf"
		if !math.IsInf(m.DaysRemaining, 1) {
			daysRemaining = fmt.Sprintf("%.1f", m.DaysRemaining)
		}
		reorderDate := ""
		if m.RecommendedOrderDate != nil {
			reorderDate = m.RecommendedOrderDate.Format("2006-01-02")
		}

		record := []string{
			m.ItemID,
			m.ItemName,
			fmt.Sprintf("%.0f", m.CurrentStock),
			fmt.Sprintf("%.2f", m.DailyUsageRate),
			daysRemaining,
			string(m.Status),
			string(m.Confidence),
			fmt.Sprintf("%d", m.RecommendedQty),
			reorderDate,
			fmt.Sprintf("%d", m.AnomalyCount),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}
