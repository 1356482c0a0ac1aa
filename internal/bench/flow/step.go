package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/wesleyorama2/flowbench/internal/bench/config"
	httpclient "github.com/wesleyorama2/flowbench/internal/http"
)

// step is one compiled request of a flow.
type step struct {
	name        string
	method      string
	url         string
	headers     map[string]string
	body        string
	jsonBody    interface{}
	extract     []config.ExtractConfig
	expectField string
	schema      *jsonschema.Schema
}

func newStep(index int, rc config.RequestConfig) (*step, error) {
	s := &step{
		name:        rc.Name,
		method:      rc.Method,
		url:         rc.URL,
		headers:     rc.Headers,
		body:        rc.Body,
		extract:     rc.Extract,
		expectField: rc.ExpectField,
	}
	if s.name == "" {
		s.name = fmt.Sprintf("step %d", index+1)
	}

	if rc.JSON != nil {
		if _, err := json.Marshal(rc.JSON); err != nil {
			return nil, fmt.Errorf("step %q: json body: %w", s.name, err)
		}
		s.jsonBody = rc.JSON
	}

	if rc.Schema != nil {
		compiled, err := compileSchema(fmt.Sprintf("step%d.json", index+1), rc.Schema)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", s.name, err)
		}
		s.schema = compiled
	}

	return s, nil
}

// run issues the step's call with vars applied and checks the response.
// On success it returns the values extracted from the body.
func (s *step) run(ctx context.Context, client *httpclient.Client, vars map[string]string) (map[string]string, error) {
	req := httpclient.NewRequest(s.method, Render(s.url, vars))
	for k, v := range RenderMap(s.headers, vars) {
		req.WithHeader(k, v)
	}
	switch {
	case s.jsonBody != nil:
		body, err := json.Marshal(renderJSON(s.jsonBody, vars))
		if err != nil {
			return nil, fmt.Errorf("%s: json body: %w", s.name, err)
		}
		req.WithJSONBody(body)
	case s.body != "":
		req.WithBody([]byte(Render(s.body, vars)))
	}

	resp, err := client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s: status %d", s.name, resp.StatusCode)
	}

	if s.expectField != "" && !HasField(resp.Body, s.expectField) {
		return nil, fmt.Errorf("%s: field %s: %w", s.name, s.expectField, ErrMissingValue)
	}
	if s.schema != nil {
		if err := validateBody(s.schema, resp.Body); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}

	if len(s.extract) == 0 {
		return nil, nil
	}
	values := make(map[string]string, len(s.extract))
	for _, ex := range s.extract {
		v, err := Extract(resp.Body, ex.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: extract %s: %w", s.name, ex.Name, err)
		}
		values[ex.Name] = v
	}
	return values, nil
}

// timed runs the step and records it in trace.
func (s *step) timed(ctx context.Context, client *httpclient.Client, vars map[string]string, trace *Trace) (map[string]string, error) {
	start := time.Now()
	values, err := s.run(ctx, client, vars)
	trace.record(s.name, time.Since(start), err == nil)
	trace.fail(err)
	return values, err
}
