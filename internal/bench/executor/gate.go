package executor

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Gate is a counting permit mechanism bounding how many invocations are in
// flight at once.
//
// Waiting callers are not served in any guaranteed order. Gate tracks the
// number of permits currently held and the highest number ever held at once.
type Gate struct {
	sem   *semaphore.Weighted
	limit int64

	active atomic.Int64
	peak   atomic.Int64

	// observe, if set, is called after every acquire and release with the
	// number of permits held at that moment.
	observe func(active int64)
}

// NewGate creates a gate with limit permits. Limits below 1 are raised to 1.
func NewGate(limit int) *Gate {
	if limit < 1 {
		limit = 1
	}
	return &Gate{
		sem:   semaphore.NewWeighted(int64(limit)),
		limit: int64(limit),
	}
}

// Acquire blocks until a permit is available or ctx is done.
func (g *Gate) Acquire(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	n := g.active.Add(1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if g.observe != nil {
		g.observe(n)
	}
	return nil
}

// Release returns a permit taken by Acquire.
func (g *Gate) Release() {
	n := g.active.Add(-1)
	if g.observe != nil {
		g.observe(n)
	}
	g.sem.Release(1)
}

// Limit returns the number of permits.
func (g *Gate) Limit() int {
	return int(g.limit)
}

// Active returns the number of permits currently held.
func (g *Gate) Active() int {
	return int(g.active.Load())
}

// Peak returns the highest number of permits held at the same time.
func (g *Gate) Peak() int {
	return int(g.peak.Load())
}
