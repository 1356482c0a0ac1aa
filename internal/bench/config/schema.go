// Package config loads and validates benchmark files.
package config

import (
	"time"
)

// BenchConfig is the root of a benchmark file.
//
// Example YAML:
//
//	name: "API benchmark"
//	settings:
//	  baseUrl: "http://localhost:8000"
//	target:
//	  process: api
//	  samplingInterval: 100ms
//	run:
//	  flows: 2000
//	  concurrency: 100
//	scenarios:
//	  - name: "Full flow"
//	    requests:
//	      - name: create
//	        method: POST
//	        url: "{{baseUrl}}/users"
//	        json: {email: "user_flow_{{id}}@test.com", password: "secret"}
type BenchConfig struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Settings apply to every request of every scenario.
	Settings Settings `json:"settings,omitempty" yaml:"settings,omitempty"`

	// Target names the process whose memory is sampled.
	Target Target `json:"target,omitempty" yaml:"target,omitempty"`

	// Run holds the default run parameters for all scenarios.
	Run RunSettings `json:"run,omitempty" yaml:"run,omitempty"`

	// Variables are available to every request as {{name}}.
	// Values undergo ${ENV} expansion at load time.
	Variables map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`

	// Scenarios run one after another in declared order.
	Scenarios []*Scenario `json:"scenarios" yaml:"scenarios"`
}

// Settings are HTTP client settings.
type Settings struct {
	BaseURL            string            `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
	Timeout            Duration          `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Headers            map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	UserAgent          string            `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
	MaxConnsPerHost    int               `json:"maxConnsPerHost,omitempty" yaml:"maxConnsPerHost,omitempty"`
	InsecureSkipVerify bool              `json:"insecureSkipVerify,omitempty" yaml:"insecureSkipVerify,omitempty"`
}

// Target identifies the sampled process, by pid or by name substring.
// Pid wins when both are set.
type Target struct {
	Process          string   `json:"process,omitempty" yaml:"process,omitempty"`
	PID              int32    `json:"pid,omitempty" yaml:"pid,omitempty"`
	SamplingInterval Duration `json:"samplingInterval,omitempty" yaml:"samplingInterval,omitempty"`
}

// RunSettings are the per-run parameters a scenario inherits.
type RunSettings struct {
	Flows       int     `json:"flows,omitempty" yaml:"flows,omitempty"`
	Concurrency int     `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	Percentile  float64 `json:"percentile,omitempty" yaml:"percentile,omitempty"`
}

// Scenario is one measured workload.
type Scenario struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Flows and Concurrency override Run when non-zero.
	Flows       int `json:"flows,omitempty" yaml:"flows,omitempty"`
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`

	// Requires lists variables that must hold a real credential.
	// The scenario is skipped when any of them is empty or a placeholder.
	Requires []string `json:"requires,omitempty" yaml:"requires,omitempty"`

	// Requests run in order. One request is a single call; more form a chain.
	Requests []RequestConfig `json:"requests" yaml:"requests"`
}

// RequestConfig describes one HTTP call of a flow.
type RequestConfig struct {
	Name    string            `json:"name,omitempty" yaml:"name,omitempty"`
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Body is sent verbatim after templating.
	Body string `json:"body,omitempty" yaml:"body,omitempty"`

	// JSON is marshaled, templated and sent with a JSON content type.
	// It takes precedence over Body.
	JSON interface{} `json:"json,omitempty" yaml:"json,omitempty"`

	// Extract stores response fields as variables for later requests.
	Extract []ExtractConfig `json:"extract,omitempty" yaml:"extract,omitempty"`

	// ExpectField is a path that must be present in the response body.
	ExpectField string `json:"expectField,omitempty" yaml:"expectField,omitempty"`

	// Schema is a JSON schema the response body must satisfy.
	Schema interface{} `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// ExtractConfig pulls one value out of a JSON response.
type ExtractConfig struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// IsChain reports whether the scenario has more than one request.
func (s *Scenario) IsChain() bool {
	return len(s.Requests) > 1
}

// Duration is a time.Duration that can be unmarshaled from JSON/YAML strings.
type Duration time.Duration

// GetDuration returns the duration or a default if empty.
func (d Duration) GetDuration(defaultValue time.Duration) time.Duration {
	if d == 0 {
		return defaultValue
	}
	return time.Duration(d)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return d.set(s)
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.set(s)
}

func (d *Duration) set(s string) error {
	if s == "" || s == "null" {
		*d = 0
		return nil
	}
	dur, err := ParseDurationString(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// String returns the duration as a string.
func (d Duration) String() string {
	return time.Duration(d).String()
}
