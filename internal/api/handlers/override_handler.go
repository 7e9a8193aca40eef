package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type OverrideHandler struct {
	service *service.OverrideService
}

func NewOverrideHandler(service *service.OverrideService) *OverrideHandler {
	return &OverrideHandler{service: service}
}

type overrideRequest struct {
	ItemID         string `json:"item_id" binding:"required"`
	UserID         string `json:"user_id"`
	RecommendedQty int    `json:"recommended_qty"`
	OrderedQty     int    `json:"ordered_qty"`
	Justification  string `json:"justification"`
}

// LogOverride accepts a governance override. The justification invariant is
// enforced here, at the caller layer: a quantity that deviates from the
// recommendation needs a non-empty justification before it is logged. The
// write itself is best-effort, so acceptance does not wait on the store.
func (h *OverrideHandler) LogOverride(c *gin.Context) {
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid override payload", "details": err.Error()})
		return
	}

	justification := strings.TrimSpace(req.Justification)
	if req.OrderedQty != req.RecommendedQty && justification == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "justification is required when ordered quantity deviates from the recommendation"})
		return
	}

	h.service.LogOverride(c.Request.Context(), domain.OverrideRecord{
		ItemID:         req.ItemID,
		UserID:         req.UserID,
		RecommendedQty: req.RecommendedQty,
		OrderedQty:     req.OrderedQty,
		Justification:  justification,
	})

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *OverrideHandler) GetItemOverrides(c *gin.Context) {
	itemID := strings.TrimSpace(c.Param("id"))
	if itemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item id is required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 {
		limit = 50
	}

	records, err := h.service.History(c.Request.Context(), itemID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch overrides", "details": err.Error()})
		return
	}
	if records == nil {
		records = []domain.OverrideRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"overrides": records})
}
