package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// MaxWorkers bounds the worker pool.
const MaxWorkers = 256

// ErrPoolSize is returned when the worker pool cannot be built.
var ErrPoolSize = errors.New("invalid worker pool size")

// PoolSize picks the number of workers for n jobs: the requested count when
// positive, otherwise one per hardware thread but never more than n.
func PoolSize(requested, n, hw int) int {
	if requested > 0 {
		return requested
	}
	size := min(hw, n)
	if size < 1 {
		size = 1
	}
	return size
}

type pool struct {
	size int
}

func newPool(size int) (*pool, error) {
	if size < 1 || size > MaxWorkers {
		return nil, fmt.Errorf("%w: %d (allowed 1..%d)", ErrPoolSize, size, MaxWorkers)
	}
	return &pool{size: size}, nil
}

// run calls fn for each index in [0, n) with at most p.size calls in flight.
// Once ctx is done no further calls are started.
func (p *pool) run(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	var g errgroup.Group
	g.SetLimit(p.size)
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
}

// ForEach runs fn over n items on a pool of PoolSize(workers, n, hw) workers.
// It only fails when the pool cannot be built.
func ForEach(ctx context.Context, workers, n, hw int, fn func(ctx context.Context, i int)) error {
	if n == 0 {
		return nil
	}
	p, err := newPool(PoolSize(workers, n, hw))
	if err != nil {
		return err
	}
	p.run(ctx, n, fn)
	return nil
}
