package flow

import (
	"context"

	httpclient "github.com/wesleyorama2/flowbench/internal/http"
)

// Chain is an ordered sequence of calls. Values extracted from one response
// become variables of every later call. The chain stops at the first call
// that fails or lacks a value it must extract, and succeeds only when every
// call succeeds.
type Chain struct {
	client *httpclient.Client
	steps  []*step
	vars   map[string]string
}

// Execute implements Flow.
func (f *Chain) Execute(ctx context.Context, id Identity) bool {
	trace := TraceFrom(ctx)
	vars := MergeVars(f.vars, id.Vars())

	for _, s := range f.steps {
		values, err := s.timed(ctx, f.client, vars, trace)
		if err != nil {
			return false
		}
		for k, v := range values {
			vars[k] = v
		}
	}
	return true
}

// Kind implements Flow.
func (f *Chain) Kind() string {
	return KindChain
}
