// Package flow defines the unit of work driven by the executor: one HTTP
// call, or an ordered chain of calls passing extracted values forward.
//
// A flow reports only whether it succeeded. Transport failures, error
// statuses and missing response fields all make Execute return false; none
// of them escape as errors or panics.
package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wesleyorama2/flowbench/internal/bench"
)

// Flow kinds as reported in results.
const (
	KindSingle = "single"
	KindChain  = "chain"
)

// ErrMissingValue is recorded when a value a step must extract is absent
// from its response.
var ErrMissingValue = errors.New("missing value")

// Flow is one unit of work.
type Flow interface {
	// Execute runs the flow once for id and reports whether it succeeded.
	Execute(ctx context.Context, id Identity) bool

	// Kind returns KindSingle or KindChain.
	Kind() string
}

// Trace collects per-step timings and the first failure of one execution.
// Attach one to the context with WithTrace; flows record into it when present.
type Trace struct {
	mu    sync.Mutex
	steps []bench.StepTiming
	err   error
}

type traceKey struct{}

// WithTrace returns a context carrying a fresh Trace.
func WithTrace(ctx context.Context) (context.Context, *Trace) {
	t := &Trace{}
	return context.WithValue(ctx, traceKey{}, t), t
}

// TraceFrom returns the Trace carried by ctx, or nil.
func TraceFrom(ctx context.Context) *Trace {
	t, _ := ctx.Value(traceKey{}).(*Trace)
	return t
}

func (t *Trace) record(name string, d time.Duration, ok bool) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.steps = append(t.steps, bench.StepTiming{Name: name, Duration: d, Succeeded: ok})
	t.mu.Unlock()
}

func (t *Trace) fail(err error) {
	if t == nil || err == nil {
		return
	}
	t.mu.Lock()
	if t.err == nil {
		t.err = err
	}
	t.mu.Unlock()
}

// Steps returns the recorded step timings in execution order.
func (t *Trace) Steps() []bench.StepTiming {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]bench.StepTiming, len(t.steps))
	copy(out, t.steps)
	return out
}

// Err returns why the execution failed, or nil.
func (t *Trace) Err() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}
