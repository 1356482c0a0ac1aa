// Package engine runs benchmark scenarios: for each one it starts the memory
// sampler, drives the executor to completion, stops the sampler and reduces
// everything into a result.
package engine

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wesleyorama2/flowbench/internal/bench"
	"github.com/wesleyorama2/flowbench/internal/bench/executor"
	"github.com/wesleyorama2/flowbench/internal/bench/flow"
	"github.com/wesleyorama2/flowbench/internal/bench/metrics"
	"github.com/wesleyorama2/flowbench/internal/bench/sampler"
)

// ProgressFunc receives periodic snapshots of a running scenario.
type ProgressFunc func(scenario string, stats *executor.Stats)

// Engine runs scenarios one at a time.
type Engine struct {
	logger           *zap.Logger
	progress         ProgressFunc
	progressInterval time.Duration
	clock            func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProgress registers fn to receive executor stats every interval while
// a scenario runs, and once more when it finishes.
func WithProgress(fn ProgressFunc, interval time.Duration) Option {
	return func(e *Engine) {
		e.progress = fn
		if interval > 0 {
			e.progressInterval = interval
		}
	}
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:           zap.NewNop(),
		progressInterval: 500 * time.Millisecond,
		clock:            time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunScenario runs f rc.TotalInvocations times under rc.ConcurrencyLimit
// while sampling proc every rc.SamplingInterval. proc may be nil, in which
// case no memory is recorded.
//
// The sampler and the workload run as two tasks. The workload task closes a
// stop channel once every invocation has finished; the sampler task then
// stops the sampling loop and collects its readings. Elapsed time covers the
// workload only, from just before the first invocation is launched to the
// moment the last one completes.
func (e *Engine) RunScenario(ctx context.Context, name string, f flow.Flow, rc bench.RunConfig, proc sampler.Process) bench.ScenarioResult {
	result := bench.ScenarioResult{
		Name:   name,
		Kind:   f.Kind(),
		Config: rc,
	}

	log := e.logger.With(zap.String("scenario", name))
	log.Info("scenario started",
		zap.String("kind", f.Kind()),
		zap.Int("flows", rc.TotalInvocations),
		zap.Int("concurrency", rc.ConcurrencyLimit),
		zap.Duration("samplingInterval", rc.SamplingInterval),
	)

	ex := executor.New(rc.ConcurrencyLimit)

	runTag := strconv.FormatInt(e.clock().Unix(), 10)
	factory := e.factory(f, runTag, log)

	var s *sampler.Sampler
	if proc != nil {
		s = sampler.Start(ctx, proc, rc.SamplingInterval, sampler.WithLogger(log))
	}

	var (
		g          errgroup.Group
		stop       = make(chan struct{})
		outcomes   []bench.FlowOutcome
		readings   []float64
		start, end time.Time
	)

	g.Go(func() error {
		defer close(stop)
		start = e.clock()
		outcomes = ex.Run(ctx, rc.TotalInvocations, factory)
		end = e.clock()
		return ctx.Err()
	})

	g.Go(func() error {
		<-stop
		if s != nil {
			readings = s.Stop()
		}
		return nil
	})

	if e.progress != nil {
		g.Go(func() error {
			e.report(name, ex, stop)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Warn("scenario interrupted, unfinished flows counted as failures", zap.Error(err))
	}

	if e.progress != nil {
		e.progress(name, ex.GetStats())
	}

	result.StartTime = start
	result.EndTime = end
	result.Memory = readings
	if result.Memory == nil {
		result.Memory = []float64{}
	}
	result.Result = metrics.Summarize(outcomes, readings, metrics.Elapsed(start, end), rc.Percentile)

	fields := []zap.Field{
		zap.Int("succeeded", result.Result.SuccessCount),
		zap.Int("failed", result.Result.FailureCount),
		zap.Float64("elapsedSeconds", result.Result.ElapsedSeconds),
		zap.Float64("throughput", result.Result.Throughput),
		zap.Float64("latencyPercentileMs", result.Result.LatencyPercentileMs),
		zap.Int("memorySamples", len(readings)),
	}
	if s != nil {
		fields = append(fields, zap.String("samplerStop", string(s.Reason())))
	}
	log.Info("scenario finished", fields...)

	return result
}

// factory builds invocations of f, each with its own identity.
func (e *Engine) factory(f flow.Flow, runTag string, log *zap.Logger) executor.Factory {
	return func(index int) executor.Invocation {
		id := flow.NewIdentity(runTag, index)
		return func(ctx context.Context) executor.Result {
			tctx, trace := flow.WithTrace(ctx)
			ok := f.Execute(tctx, id)
			if !ok {
				log.Debug("flow failed", zap.Int("index", index), zap.Error(trace.Err()))
			}
			return executor.Result{Succeeded: ok, Steps: trace.Steps()}
		}
	}
}

// report emits progress snapshots until done is closed.
func (e *Engine) report(name string, ex *executor.Executor, done <-chan struct{}) {
	ticker := time.NewTicker(e.progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if ex.IsRunning() {
				e.progress(name, ex.GetStats())
			}
		}
	}
}

// Skipped returns the result of a scenario that was not attempted.
func Skipped(name string, rc bench.RunConfig, reason string) bench.ScenarioResult {
	return bench.ScenarioResult{
		Name:       name,
		Config:     rc,
		Skipped:    true,
		SkipReason: reason,
		Memory:     []float64{},
	}
}
