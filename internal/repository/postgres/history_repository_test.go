package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andresuchdata/replenish/backend-go/internal/engine"
)

func TestClampReceiptLimit(t *testing.T) {
	assert.Equal(t, engine.MaxReceivingEvents, clampReceiptLimit(0))
	assert.Equal(t, engine.MaxReceivingEvents, clampReceiptLimit(-3))
	assert.Equal(t, 5, clampReceiptLimit(5))
}
