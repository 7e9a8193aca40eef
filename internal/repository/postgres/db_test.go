package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapBoundsConcurrentTransactions(t *testing.T) {
	db := Wrap(&sqlx.DB{})

	for i := 0; i < maxConcurrentOps; i++ {
		require.True(t, db.sem.TryAcquire(1), "slot %d should be free", i)
	}
	assert.False(t, db.sem.TryAcquire(1), "limit exceeded, acquisition must fail")
}

func TestWithTxWaitsForASlot(t *testing.T) {
	db := Wrap(&sqlx.DB{})

	// Exhaust every slot so WithTx has to block on the semaphore.
	for i := 0; i < maxConcurrentOps; i++ {
		require.True(t, db.sem.TryAcquire(1))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "semaphore")
	assert.False(t, called, "fn must not run without a slot")
}
