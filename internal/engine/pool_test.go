package engine

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolSize(t *testing.T) {
	cases := []struct {
		requested, n, hw, want int
	}{
		{0, 3, 8, 3},
		{0, 100, 8, 8},
		{0, 0, 8, 1},
		{0, 5, 0, 1},
		{4, 100, 8, 4},
		{16, 2, 8, 16},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PoolSize(tc.requested, tc.n, tc.hw), "%+v", tc)
	}
}

func TestNewPool_Bounds(t *testing.T) {
	_, err := newPool(0)
	assert.ErrorIs(t, err, ErrPoolSize)
	_, err = newPool(MaxWorkers + 1)
	assert.ErrorIs(t, err, ErrPoolSize)
	p, err := newPool(MaxWorkers)
	require.NoError(t, err)
	assert.Equal(t, MaxWorkers, p.size)
}

func TestForEach_BoundsConcurrency(t *testing.T) {
	var inFlight, peak, calls int32
	err := ForEach(context.Background(), 2, 20, 8, func(context.Context, int) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		atomic.AddInt32(&calls, 1)
		atomic.AddInt32(&inFlight, -1)
	})
	require.NoError(t, err)
	assert.Equal(t, int32(20), calls)
	assert.LessOrEqual(t, peak, int32(2))
}

func TestForEach_EveryIndexOnce(t *testing.T) {
	seen := make([]int32, 50)
	require.NoError(t, ForEach(context.Background(), 0, len(seen), 4, func(_ context.Context, i int) {
		atomic.AddInt32(&seen[i], 1)
	}))
	for i, v := range seen {
		assert.Equal(t, int32(1), v, "index %d", i)
	}
}
