package flow

import (
	"context"

	httpclient "github.com/wesleyorama2/flowbench/internal/http"
)

// SingleCall is a flow of exactly one call. It succeeds when the call
// completes with a status below 400 and any configured checks pass.
type SingleCall struct {
	client *httpclient.Client
	step   *step
	vars   map[string]string
}

// Execute implements Flow.
func (f *SingleCall) Execute(ctx context.Context, id Identity) bool {
	vars := MergeVars(f.vars, id.Vars())
	_, err := f.step.timed(ctx, f.client, vars, TraceFrom(ctx))
	return err == nil
}

// Kind implements Flow.
func (f *SingleCall) Kind() string {
	return KindSingle
}
