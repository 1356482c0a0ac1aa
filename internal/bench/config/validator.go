package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Add adds an error to the collection.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any errors.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

var validMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"PATCH":   true,
	"DELETE":  true,
	"HEAD":    true,
	"OPTIONS": true,
}

// Validate checks the configuration after defaults have been applied.
//
// Returns nil if valid, or a *ValidationErrors containing all problems found.
func (c *BenchConfig) Validate() error {
	errs := &ValidationErrors{}

	if c.Run.Flows <= 0 {
		errs.Add("run.flows", "flows must be greater than 0")
	}
	if c.Run.Concurrency <= 0 {
		errs.Add("run.concurrency", "concurrency must be greater than 0")
	}
	if c.Run.Percentile <= 0 || c.Run.Percentile > 100 {
		errs.Add("run.percentile", fmt.Sprintf("percentile must be in (0, 100], got %g", c.Run.Percentile))
	}
	if c.Target.SamplingInterval <= 0 {
		errs.Add("target.samplingInterval", "sampling interval must be greater than 0")
	}
	if c.Target.PID < 0 {
		errs.Add("target.pid", "pid cannot be negative")
	}

	validateSettings(&c.Settings, errs)

	if len(c.Scenarios) == 0 {
		errs.Add("scenarios", "at least one scenario is required")
	}

	seen := make(map[string]bool, len(c.Scenarios))
	for i, sc := range c.Scenarios {
		prefix := fmt.Sprintf("scenarios[%d]", i)
		if sc == nil {
			errs.Add(prefix, "scenario is empty")
			continue
		}
		if sc.Name == "" {
			errs.Add(prefix+".name", "name is required")
		} else if seen[sc.Name] {
			errs.Add(prefix+".name", fmt.Sprintf("duplicate scenario name %q", sc.Name))
		}
		seen[sc.Name] = true
		validateScenario(prefix, sc, c.Variables, errs)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func validateSettings(s *Settings, errs *ValidationErrors) {
	if s.BaseURL != "" {
		u, err := url.Parse(s.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs.Add("settings.baseUrl", fmt.Sprintf("invalid base URL: %s", s.BaseURL))
		}
	}
	if s.Timeout < 0 {
		errs.Add("settings.timeout", "timeout cannot be negative")
	}
	if s.MaxConnsPerHost < 0 {
		errs.Add("settings.maxConnsPerHost", "maxConnsPerHost cannot be negative")
	}
}

func validateScenario(prefix string, sc *Scenario, vars map[string]string, errs *ValidationErrors) {
	if sc.Flows < 0 {
		errs.Add(prefix+".flows", "flows cannot be negative")
	}
	if sc.Concurrency < 0 {
		errs.Add(prefix+".concurrency", "concurrency cannot be negative")
	}
	for _, name := range sc.Requires {
		if _, ok := vars[name]; !ok {
			errs.Add(prefix+".requires", fmt.Sprintf("variable %q is not declared", name))
		}
	}

	if len(sc.Requests) == 0 {
		errs.Add(prefix+".requests", "at least one request is required")
	}

	for i := range sc.Requests {
		validateRequest(fmt.Sprintf("%s.requests[%d]", prefix, i), &sc.Requests[i], errs)
	}
}

func validateRequest(prefix string, req *RequestConfig, errs *ValidationErrors) {
	if req.Method == "" {
		errs.Add(prefix+".method", "method is required")
	} else if !validMethods[strings.ToUpper(req.Method)] {
		errs.Add(prefix+".method", fmt.Sprintf("unsupported method: %s", req.Method))
	}
	if req.URL == "" {
		errs.Add(prefix+".url", "url is required")
	}

	if req.JSON != nil {
		if _, err := json.Marshal(req.JSON); err != nil {
			errs.Add(prefix+".json", fmt.Sprintf("json body cannot be encoded: %v", err))
		}
	}
	if req.Schema != nil {
		if _, err := json.Marshal(req.Schema); err != nil {
			errs.Add(prefix+".schema", fmt.Sprintf("schema cannot be encoded: %v", err))
		}
	}

	for i, ex := range req.Extract {
		field := fmt.Sprintf("%s.extract[%d]", prefix, i)
		if ex.Name == "" {
			errs.Add(field+".name", "name is required")
		}
		if ex.Path == "" {
			errs.Add(field+".path", "path is required")
		}
	}
}
