package perf

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/wesleyorama2/flowbench/internal/bench"
	"github.com/wesleyorama2/flowbench/internal/bench/config"
	"github.com/wesleyorama2/flowbench/internal/bench/engine"
	"github.com/wesleyorama2/flowbench/internal/bench/sampler"
)

type (
	// Config is a benchmark definition.
	Config = config.BenchConfig
	// Scenario is one named flow definition inside a Config.
	Scenario = config.Scenario
	// Request is one HTTP call of a scenario.
	Request = config.RequestConfig
	// Report is the result of a benchmark.
	Report = bench.Report
	// ScenarioResult is the result of one scenario.
	ScenarioResult = bench.ScenarioResult
	// Result is the aggregate of one run.
	Result = bench.RunResult
)

// LoadConfig reads a YAML or JSON benchmark file and applies defaults.
func LoadConfig(path string) (*Config, error) {
	return config.LoadConfig(path)
}

// QuickConfig builds a one-scenario benchmark around a single call.
func QuickConfig(url, method, body string) *Config {
	return config.QuickConfig(url, method, body)
}

// Runner runs a benchmark programmatically.
type Runner struct {
	config        *Config
	logger        *zap.Logger
	sampleMemory  bool
	requireTarget bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger used by the engine.
func WithLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithoutSampler disables memory sampling even when a target is configured.
func WithoutSampler() RunnerOption {
	return func(r *Runner) {
		r.sampleMemory = false
	}
}

// RequireTarget makes Run fail when the config names no target process.
func RequireTarget() RunnerOption {
	return func(r *Runner) {
		r.requireTarget = true
	}
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg *Config, opts ...RunnerOption) *Runner {
	r := &Runner{
		config:       cfg,
		logger:       zap.NewNop(),
		sampleMemory: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run validates the configuration, locates the target process and runs every
// scenario. A cancelled ctx returns the scenarios completed so far together
// with the context error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	config.ApplyDefaults(r.config)
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	var proc sampler.Process
	if r.sampleMemory {
		p, err := engine.LocateTarget(ctx, r.config.Target)
		switch {
		case errors.Is(err, engine.ErrNoTarget) && !r.requireTarget:
		case err != nil:
			return nil, err
		default:
			proc = p
		}
	}

	return engine.New(engine.WithLogger(r.logger)).RunAll(ctx, r.config, proc)
}
