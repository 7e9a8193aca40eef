package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/replenish/backend-go/internal/cache"
	"github.com/andresuchdata/replenish/backend-go/internal/domain"
	"github.com/andresuchdata/replenish/backend-go/internal/engine"
	"github.com/andresuchdata/replenish/backend-go/internal/service"
)

var errItemMissing = errors.New("item not found")

type fakeItemRepo struct {
	items map[string]domain.Item
}

func (f *fakeItemRepo) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, errItemMissing
	}
	return &item, nil
}

func (f *fakeItemRepo) ListItems(ctx context.Context) ([]domain.Item, error) {
	items := make([]domain.Item, 0, len(f.items))
	for _, item := range f.items {
		items = append(items, item)
	}
	return items, nil
}

type emptyHistoryStore struct{}

func (emptyHistoryStore) RecentReceipts(ctx context.Context, itemID string, limit int) ([]domain.ReceivingEvent, error) {
	return nil, nil
}

func (emptyHistoryStore) AuditEntries(ctx context.Context, itemID string, since time.Time) ([]domain.AuditLogEntry, error) {
	return nil, nil
}

func (emptyHistoryStore) Overrides(ctx context.Context, itemID string) ([]domain.OverrideRecord, error) {
	return nil, nil
}

func newMetricsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	eng := engine.New(emptyHistoryStore{}, 2)
	items := &fakeItemRepo{items: map[string]domain.Item{
		"item-1": {ID: "item-1", Name: "Widget", CurrentStock: 40},
	}}
	handler := NewMetricsHandler(service.NewMetricsService(eng, items, cache.NewNoopMetricsCache()))

	router := gin.New()
	router.GET("/metrics", handler.GetAllMetrics)
	router.GET("/items/:id/metrics", handler.GetItemMetrics)
	return router
}

func TestGetItemMetrics_DormantSerializesNullDaysRemaining(t *testing.T) {
	router := newMetricsRouter()

	req := httptest.NewRequest(http.MethodGet, "/items/item-1/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"days_remaining":null`)
	assert.Contains(t, rec.Body.String(), string(domain.StatusDormant))
}

func TestGetAllMetrics_ListsEveryItem(t *testing.T) {
	router := newMetricsRouter()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)
}

func TestParseOptions_CoverageQueryParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		query string
		want  float64
	}{
		{"", engine.DefaultCoverageCycles},
		{"?coverage=2.5", 2.5},
		{"?coverage=-1", engine.DefaultCoverageCycles},
		{"?coverage=abc", engine.DefaultCoverageCycles},
	}

	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/metrics"+tc.query, nil)

		opts := parseOptions(c)
		assert.Equal(t, tc.want, opts.CoverageCycles, "query %q", tc.query)
	}
}
