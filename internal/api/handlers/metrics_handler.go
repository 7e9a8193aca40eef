package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/engine"
	"github.com/andresuchdata/replenish/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/replenish/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type MetricsHandler struct {
	service *service.MetricsService
}

func NewMetricsHandler(service *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{service: service}
}

// metricsResponse is ItemMetrics with days_remaining serialized as null for
// dormant items, since JSON has no representation for +Inf.
type metricsResponse struct {
	domain.ItemMetrics
	DaysRemaining *float64 `json:"days_remaining"`
}

func toResponse(m domain.ItemMetrics) metricsResponse {
	resp := metricsResponse{ItemMetrics: m}
	if !math.IsInf(m.DaysRemaining, 1) {
		days := m.DaysRemaining
		resp.DaysRemaining = &days
	}
	return resp
}

func parseOptions(c *gin.Context) engine.Options {
	opts := engine.Options{CoverageCycles: engine.DefaultCoverageCycles}

	if raw := strings.TrimSpace(c.Query("coverage")); raw != "" {
		if coverage, err := strconv.ParseFloat(raw, 64); err == nil && coverage > 0 {
			opts.CoverageCycles = coverage
		}
	}

	return opts
}

func (h *MetricsHandler) GetItemMetrics(c *gin.Context) {
	itemID := strings.TrimSpace(c.Param("id"))
	if itemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item id is required"})
		return
	}

	metrics, err := h.service.GetItemMetrics(c.Request.Context(), itemID, parseOptions(c))
	if err != nil {
		if errors.Is(err, postgres.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute metrics", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toResponse(*metrics))
}

func (h *MetricsHandler) GetAllMetrics(c *gin.Context) {
	results, err := h.service.GetAllMetrics(c.Request.Context(), parseOptions(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute metrics", "details": err.Error()})
		return
	}

	responses := make([]metricsResponse, len(results))
	for i, m := range results {
		responses[i] = toResponse(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"items": responses,
		"total": len(responses),
	})
}
