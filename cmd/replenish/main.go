package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sqlx.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Store the database connection in the context
	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sqlx.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFromContext(c *cli.Context) (*sqlx.DB, error) {
	db, ok := c.Context.Value(dbKey).(*sqlx.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not initialized")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "replenish",
		Usage: "Replenishment intelligence from the command line",
		Commands: []*cli.Command{
			{
				Name:  "compute",
				Usage: "Compute reorder metrics for all items and export them as CSV",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.Float64Flag{
						Name:  "coverage",
						Usage: "Target coverage multiplier in predicted cycles",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Number of items computed in parallel",
						Value: 8,
					},
					&cli.StringFlag{
						Name:    "out",
						Usage:   "Output CSV path",
						Value:   "./replenishment_report.csv",
						EnvVars: []string{"REPLENISH_REPORT_PATH"},
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runCompute,
			},
			{
				Name:  "override",
				Usage: "Log a governance override for an item",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{Name: "item", Usage: "Item identifier", Required: true},
					&cli.StringFlag{Name: "user", Usage: "User logging the override"},
					&cli.IntFlag{Name: "recommended", Usage: "Quantity the engine recommended", Required: true},
					&cli.IntFlag{Name: "ordered", Usage: "Quantity actually ordered", Required: true},
					&cli.StringFlag{Name: "justification", Usage: "Why the recommendation was overridden"},
				},
				Before: initDB,
				After:  closeDB,
				Action: runOverride,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
