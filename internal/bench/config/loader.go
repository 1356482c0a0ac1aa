package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/flowbench/internal/bench"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultFlows            = 2000
	DefaultConcurrency      = 100
	DefaultPercentile       = 90.0
	DefaultSamplingInterval = 100 * time.Millisecond
	DefaultTimeout          = 30 * time.Second
	DefaultUserAgent        = "flowbench/1.0"
)

// LoadConfig loads a benchmark file.
//
// The file format is determined by extension:
//   - .yaml, .yml -> YAML
//   - .json -> JSON
//
// Defaults are applied and variables are expanded; the result is not validated.
func LoadConfig(path string) (*BenchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := ParseConfig(data, path)
	if err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)
	ExpandVariables(cfg)
	return cfg, nil
}

// ParseConfig parses configuration data.
//
// The format is determined by the file extension in path, or defaults to YAML
// if the path is empty or has an unknown extension.
func ParseConfig(data []byte, path string) (*BenchConfig, error) {
	var cfg BenchConfig

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config (unknown format %s): %w", ext, err)
		}
	}

	return &cfg, nil
}

// ParseDurationString parses a duration string.
//
// Supported formats:
//   - Standard Go duration: "100ms", "2s", "1m30s"
//   - Bare seconds, possibly fractional: "30", "0.1"
func ParseDurationString(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}

	return 0, fmt.Errorf("invalid duration format: %s", s)
}

// ApplyDefaults fills unset fields with their default values.
func ApplyDefaults(cfg *BenchConfig) {
	if cfg.Settings.Timeout == 0 {
		cfg.Settings.Timeout = Duration(DefaultTimeout)
	}
	if cfg.Settings.UserAgent == "" {
		cfg.Settings.UserAgent = DefaultUserAgent
	}
	if cfg.Target.SamplingInterval == 0 {
		cfg.Target.SamplingInterval = Duration(DefaultSamplingInterval)
	}
	if cfg.Run.Flows == 0 {
		cfg.Run.Flows = DefaultFlows
	}
	if cfg.Run.Concurrency == 0 {
		cfg.Run.Concurrency = DefaultConcurrency
	}
	if cfg.Run.Percentile == 0 {
		cfg.Run.Percentile = DefaultPercentile
	}

	for i, sc := range cfg.Scenarios {
		if sc == nil {
			continue
		}
		if sc.Name == "" {
			sc.Name = fmt.Sprintf("scenario-%d", i+1)
		}
		for j := range sc.Requests {
			req := &sc.Requests[j]
			if req.Method == "" {
				req.Method = "GET"
			}
			req.Method = strings.ToUpper(req.Method)
			if req.Name == "" {
				req.Name = fmt.Sprintf("%s %s", req.Method, req.URL)
			}
		}
	}
}

// ExpandVariables replaces ${VAR} and $VAR references in variable values
// with the process environment.
func ExpandVariables(cfg *BenchConfig) {
	for k, v := range cfg.Variables {
		cfg.Variables[k] = os.ExpandEnv(v)
	}
}

// RunConfigFor returns the effective run parameters of a scenario.
func (c *BenchConfig) RunConfigFor(sc *Scenario) bench.RunConfig {
	rc := bench.RunConfig{
		TotalInvocations: c.Run.Flows,
		ConcurrencyLimit: c.Run.Concurrency,
		SamplingInterval: c.Target.SamplingInterval.GetDuration(DefaultSamplingInterval),
		Percentile:       c.Run.Percentile,
	}
	if sc.Flows > 0 {
		rc.TotalInvocations = sc.Flows
	}
	if sc.Concurrency > 0 {
		rc.ConcurrencyLimit = sc.Concurrency
	}
	return rc
}

// Overrides are command-line values that take precedence over the file.
// Zero fields leave the file value untouched.
type Overrides struct {
	Flows       int
	Concurrency int
	Interval    time.Duration
	Percentile  float64
	Process     string
	PID         int32
}

// Apply writes the non-zero overrides into cfg. Flows and Concurrency
// also replace per-scenario values.
func (o Overrides) Apply(cfg *BenchConfig) {
	if o.Flows > 0 {
		cfg.Run.Flows = o.Flows
	}
	if o.Concurrency > 0 {
		cfg.Run.Concurrency = o.Concurrency
	}
	if o.Interval > 0 {
		cfg.Target.SamplingInterval = Duration(o.Interval)
	}
	if o.Percentile > 0 {
		cfg.Run.Percentile = o.Percentile
	}
	if o.Process != "" {
		cfg.Target.Process = o.Process
		cfg.Target.PID = 0
	}
	if o.PID > 0 {
		cfg.Target.PID = o.PID
	}

	for _, sc := range cfg.Scenarios {
		if sc == nil {
			continue
		}
		if o.Flows > 0 {
			sc.Flows = 0
		}
		if o.Concurrency > 0 {
			sc.Concurrency = 0
		}
	}
}

// QuickConfig builds a one-scenario benchmark around a single call.
func QuickConfig(url, method, body string) *BenchConfig {
	if method == "" {
		method = "GET"
	}
	cfg := &BenchConfig{
		Name: "quick",
		Scenarios: []*Scenario{{
			Name: strings.ToUpper(method) + " " + url,
			Requests: []RequestConfig{{
				Name:   "request",
				Method: method,
				URL:    url,
				Body:   body,
			}},
		}},
	}
	ApplyDefaults(cfg)
	return cfg
}
