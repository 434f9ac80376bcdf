package inventory

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedgerNoOversell(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		quantity  int32
		callers   int
		requested int32
	}{
		{name: "last unit", quantity: 1, callers: 2, requested: 1},
		{name: "many small", quantity: 50, callers: 200, requested: 1},
		{name: "uneven chunks", quantity: 17, callers: 40, requested: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewMemoryLedger()
			l.Stock("tt-1", tt.quantity, 0)

			var (
				wg        sync.WaitGroup
				succeeded atomic.Int32
				rejected  atomic.Int32
			)

			for i := 0; i < tt.callers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()

					_, err := l.Reserve(ctx, "tt-1", tt.requested)
					switch {
					case err == nil:
						succeeded.Add(tt.requested)
					case errors.Is(err, ErrInsufficientInventory):
						rejected.Add(1)
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			wg.Wait()

			assert.LessOrEqual(t, succeeded.Load(), tt.quantity)
			assert.Equal(t, succeeded.Load(), l.Sold("tt-1"))
			assert.Equal(t, int32(tt.callers), succeeded.Load()/tt.requested+rejected.Load())
		})
	}
}

func TestMemoryLedgerReleaseIsInverse(t *testing.T) {
	ctx := context.Background()

	l := NewMemoryLedger()
	l.Stock("tt-1", 10, 4)

	r, err := l.Reserve(ctx, "tt-1", 3)
	require.NoError(t, err)
	assert.Equal(t, int32(7), l.Sold("tt-1"))

	require.NoError(t, l.Release(ctx, r.Token))
	assert.Equal(t, int32(4), l.Sold("tt-1"))

	require.NoError(t, l.Release(ctx, r.Token))
	assert.Equal(t, int32(4), l.Sold("tt-1"))

	require.NoError(t, l.Release(ctx, "unknown"))
}

func TestMemoryLedgerReserve(t *testing.T) {
	ctx := context.Background()

	l := NewMemoryLedger()
	l.Stock("tt-1", 5, 3)

	_, err := l.Reserve(ctx, "tt-1", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = l.Reserve(ctx, "missing", 1)
	assert.ErrorIs(t, err, ErrTicketTypeNotFound)

	_, err = l.Reserve(ctx, "tt-1", 3)
	var insufficient *InsufficientInventoryError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "tt-1", insufficient.TicketTypeID)
	assert.Equal(t, int32(3), insufficient.Requested)
	assert.Equal(t, int32(2), insufficient.Available)
	assert.Equal(t, int32(3), l.Sold("tt-1"))

	r, err := l.Reserve(ctx, "tt-1", 2)
	require.NoError(t, err)
	assert.Equal(t, "tt-1", r.TicketTypeID)
	assert.Equal(t, int32(2), r.Quantity)
	assert.NotEmpty(t, r.Token)

	available, err := l.Available(ctx, "tt-1")
	require.NoError(t, err)
	assert.Equal(t, int32(0), available)
}

func TestMemoryLedgerReserveNearInt32Limit(t *testing.T) {
	ctx := context.Background()

	l := NewMemoryLedger()
	l.Stock("tt-1", 10, 1)

	_, err := l.Reserve(ctx, "tt-1", math.MaxInt32)
	var insufficient *InsufficientInventoryError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int32(9), insufficient.Available)
	assert.Equal(t, int32(1), l.Sold("tt-1"))

	l.Stock("tt-big", math.MaxInt32, math.MaxInt32-1)

	_, err = l.Reserve(ctx, "tt-big", 2)
	assert.ErrorIs(t, err, ErrInsufficientInventory)

	_, err = l.Reserve(ctx, "tt-big", 1)
	require.NoError(t, err)
	assert.Equal(t, int32(math.MaxInt32), l.Sold("tt-big"))
}
