// Package executor runs a fixed number of flow invocations under a bounded
// concurrency limit.
package executor

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wesleyorama2/flowbench/internal/bench"
)

// Result is what a single invocation reports back to the executor.
type Result struct {
	Succeeded bool
	Steps     []bench.StepTiming
}

// Invocation performs one unit of work. Failures are reported through the
// Result, never by panicking; a panic is still recovered and counted as a
// failed invocation.
type Invocation func(ctx context.Context) Result

// Factory builds the invocation for the given index. Each index is called
// exactly once per run, which lets factories derive a unique identity per
// invocation.
type Factory func(index int) Invocation

// Executor launches every invocation of a run as its own goroutine. Each
// goroutine takes a permit from a shared Gate before doing its work and gives
// it back when done, so at most Limit invocations are in flight.
//
// There is no early exit: a run returns only after every invocation has
// finished, and each failure is recorded on its own.
type Executor struct {
	gate *Gate

	total     atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	running   atomic.Bool

	mu        sync.RWMutex
	startTime time.Time
	endTime   time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithGateObserver registers fn to be called with the number of held permits
// after every acquire and release.
func WithGateObserver(fn func(active int64)) Option {
	return func(e *Executor) {
		e.gate.observe = fn
	}
}

// New creates an executor with the given concurrency limit.
func New(limit int, opts ...Option) *Executor {
	e := &Executor{gate: NewGate(limit)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the whole run and blocks until every invocation has finished.
//
// A total of zero or less returns an empty slice immediately. Outcomes are
// returned ordered by invocation index. If ctx is cancelled, invocations still
// waiting for a permit are recorded as failures without running; in-flight
// invocations see the cancelled context through their own calls.
func Run(ctx context.Context, total, limit int, factory Factory) []bench.FlowOutcome {
	return New(limit).Run(ctx, total, factory)
}

// Run executes total invocations built by factory. See the package-level Run.
func (e *Executor) Run(ctx context.Context, total int, factory Factory) []bench.FlowOutcome {
	if total <= 0 {
		return []bench.FlowOutcome{}
	}

	e.total.Store(int64(total))
	e.completed.Store(0)
	e.failed.Store(0)
	e.running.Store(true)
	e.mu.Lock()
	e.startTime = time.Now()
	e.endTime = time.Time{}
	e.mu.Unlock()

	results := make(chan bench.FlowOutcome, total)

	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go e.runInvocation(ctx, i, factory, results, &wg)
	}

	wg.Wait()
	close(results)

	outcomes := make([]bench.FlowOutcome, 0, total)
	for o := range results {
		outcomes = append(outcomes, o)
	}
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].Index < outcomes[j].Index
	})

	e.mu.Lock()
	e.endTime = time.Now()
	e.mu.Unlock()
	e.running.Store(false)

	return outcomes
}

// runInvocation runs a single invocation under the gate.
func (e *Executor) runInvocation(ctx context.Context, index int, factory Factory, results chan<- bench.FlowOutcome, wg *sync.WaitGroup) {
	defer wg.Done()

	var outcome bench.FlowOutcome
	if err := e.gate.Acquire(ctx); err != nil {
		now := time.Now()
		outcome = bench.FlowOutcome{Index: index, StartedAt: now, EndedAt: now}
	} else {
		outcome = e.invoke(ctx, index, factory)
		e.gate.Release()
	}

	e.completed.Add(1)
	if !outcome.Succeeded {
		e.failed.Add(1)
	}
	results <- outcome
}

// invoke times one invocation. The clock starts after the permit is held.
func (e *Executor) invoke(ctx context.Context, index int, factory Factory) (outcome bench.FlowOutcome) {
	outcome.Index = index
	outcome.StartedAt = time.Now()

	defer func() {
		if recover() != nil {
			outcome.Succeeded = false
		}
		outcome.EndedAt = time.Now()
		outcome.Duration = outcome.EndedAt.Sub(outcome.StartedAt)
	}()

	res := factory(index)(ctx)
	outcome.Succeeded = res.Succeeded
	outcome.Steps = res.Steps
	return outcome
}

// Gate returns the executor's concurrency gate.
func (e *Executor) Gate() *Gate {
	return e.gate
}

// IsRunning reports whether a run is in progress.
func (e *Executor) IsRunning() bool {
	return e.running.Load()
}

// GetProgress returns the fraction of invocations finished (0.0 to 1.0).
func (e *Executor) GetProgress() float64 {
	total := e.total.Load()
	if total == 0 {
		return 0
	}
	return float64(e.completed.Load()) / float64(total)
}

// GetStats returns a point-in-time view of the run.
func (e *Executor) GetStats() *Stats {
	e.mu.RLock()
	start, end := e.startTime, e.endTime
	e.mu.RUnlock()

	var elapsed time.Duration
	switch {
	case start.IsZero():
	case end.IsZero():
		elapsed = time.Since(start)
	default:
		elapsed = end.Sub(start)
	}

	return &Stats{
		StartTime:    start,
		Elapsed:      elapsed,
		Total:        e.total.Load(),
		Completed:    e.completed.Load(),
		Failed:       e.failed.Load(),
		InFlight:     e.gate.Active(),
		PeakInFlight: e.gate.Peak(),
		Limit:        e.gate.Limit(),
	}
}

// Stats contains real-time executor statistics.
type Stats struct {
	StartTime    time.Time     `json:"startTime"`
	Elapsed      time.Duration `json:"elapsed"`
	Total        int64         `json:"total"`
	Completed    int64         `json:"completed"`
	Failed       int64         `json:"failed"`
	InFlight     int           `json:"inFlight"`
	PeakInFlight int           `json:"peakInFlight"`
	Limit        int           `json:"limit"`
}
