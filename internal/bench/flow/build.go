package flow

import (
	"fmt"

	"github.com/wesleyorama2/flowbench/internal/bench/config"
	httpclient "github.com/wesleyorama2/flowbench/internal/http"
)

// NewClient returns an HTTP client configured from settings, with a
// connection pool sized for concurrency in-flight calls.
func NewClient(settings config.Settings, concurrency int) *httpclient.Client {
	return httpclient.NewClient(
		httpclient.WithBaseURL(settings.BaseURL),
		httpclient.WithTimeout(settings.Timeout.GetDuration(config.DefaultTimeout)),
		httpclient.WithHeaders(settings.Headers),
		httpclient.WithUserAgent(settings.UserAgent),
		httpclient.WithMaxConnsPerHost(max(settings.MaxConnsPerHost, concurrency)),
		httpclient.WithInsecureSkipVerify(settings.InsecureSkipVerify),
	)
}

// Build compiles a scenario into a Flow. One request yields a SingleCall,
// more yield a Chain. vars are the file variables; baseUrl is added from
// the settings when set.
func Build(sc *config.Scenario, settings config.Settings, vars map[string]string, client *httpclient.Client) (Flow, error) {
	if len(sc.Requests) == 0 {
		return nil, fmt.Errorf("scenario %q has no requests", sc.Name)
	}

	base := MergeVars(vars)
	if settings.BaseURL != "" {
		base["baseUrl"] = settings.BaseURL
		base["baseURL"] = settings.BaseURL
	}

	steps := make([]*step, 0, len(sc.Requests))
	for i, rc := range sc.Requests {
		s, err := newStep(i, rc)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
		steps = append(steps, s)
	}

	if len(steps) == 1 {
		return &SingleCall{client: client, step: steps[0], vars: base}, nil
	}
	return &Chain{client: client, steps: steps, vars: base}, nil
}
