package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wesleyorama2/flowbench/internal/bench"
	"github.com/wesleyorama2/flowbench/internal/bench/config"
	"github.com/wesleyorama2/flowbench/internal/bench/flow"
	"github.com/wesleyorama2/flowbench/internal/bench/sampler"
)

// ErrNoTarget is returned by LocateTarget when the file names no process.
var ErrNoTarget = errors.New("no target process configured")

// LocateTarget resolves the configured target to a process handle. A pid
// takes precedence over a name.
func LocateTarget(ctx context.Context, target config.Target) (sampler.Process, error) {
	switch {
	case target.PID > 0:
		return sampler.FindByPID(ctx, target.PID)
	case target.Process != "":
		return sampler.FindByName(ctx, target.Process)
	default:
		return nil, ErrNoTarget
	}
}

// planned is a scenario ready to run, or a skipped one.
type planned struct {
	scenario *config.Scenario
	rc       bench.RunConfig
	flow     flow.Flow
	skip     error
}

// plan builds every flow before anything runs, so that a broken request
// definition fails the run up front. Scenarios lacking credentials are
// marked skipped.
func plan(cfg *config.BenchConfig) ([]planned, error) {
	plans := make([]planned, 0, len(cfg.Scenarios))
	for _, sc := range cfg.Scenarios {
		p := planned{scenario: sc, rc: cfg.RunConfigFor(sc)}

		if err := config.CheckCredentials(sc, cfg.Variables); err != nil {
			p.skip = err
			plans = append(plans, p)
			continue
		}

		client := flow.NewClient(cfg.Settings, p.rc.ConcurrencyLimit)
		f, err := flow.Build(sc, cfg.Settings, cfg.Variables, client)
		if err != nil {
			return nil, err
		}
		p.flow = f
		plans = append(plans, p)
	}
	return plans, nil
}

// RunAll runs every scenario of cfg in declared order and returns the report.
//
// proc is the sampled process and may be nil to run without memory sampling.
// Scenarios whose required credentials are missing are skipped with a
// warning and reported as skipped. If ctx is cancelled between scenarios
// the remaining ones are not started; the partial report is returned along
// with the context error.
func (e *Engine) RunAll(ctx context.Context, cfg *config.BenchConfig, proc sampler.Process) (*bench.Report, error) {
	plans, err := plan(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare scenarios: %w", err)
	}

	report := &bench.Report{
		ID:        uuid.NewString(),
		Name:      cfg.Name,
		Target:    sampler.Describe(proc),
		StartTime: e.clock(),
		Scenarios: make([]bench.ScenarioResult, 0, len(plans)),
	}

	e.logger.Info("run started",
		zap.String("id", report.ID),
		zap.String("name", report.Name),
		zap.String("target", report.Target),
		zap.Int("scenarios", len(plans)),
	)

	for _, p := range plans {
		if err := ctx.Err(); err != nil {
			report.EndTime = e.clock()
			return report, err
		}

		if p.skip != nil {
			e.logger.Warn("scenario skipped", zap.String("scenario", p.scenario.Name), zap.Error(p.skip))
			report.Scenarios = append(report.Scenarios, Skipped(p.scenario.Name, p.rc, p.skip.Error()))
			continue
		}

		res := e.RunScenario(ctx, p.scenario.Name, p.flow, p.rc, proc)
		report.Scenarios = append(report.Scenarios, res)
	}

	report.EndTime = e.clock()
	e.logger.Info("run finished", zap.String("id", report.ID), zap.Int("ran", len(report.Ran())))
	return report, nil
}
