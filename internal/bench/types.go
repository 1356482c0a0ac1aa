// Package bench holds the data model shared by the flowbench execution engine.
//
// A benchmark run drives a fixed number of flow invocations against a target
// service under a concurrency limit while a sampler records the target
// process's memory. The executor produces one FlowOutcome per invocation, the
// sampler produces an ordered sequence of readings, and the aggregator reduces
// both into a RunResult.
package bench

import (
	"time"
)

// FlowOutcome is the immutable record of one flow invocation.
//
// Duration is EndedAt - StartedAt and excludes any time spent waiting for a
// concurrency permit. It is recorded for failed invocations too, but only
// successful durations feed latency statistics.
type FlowOutcome struct {
	Index     int           `json:"index"`
	Succeeded bool          `json:"succeeded"`
	StartedAt time.Time     `json:"startedAt"`
	EndedAt   time.Time     `json:"endedAt"`
	Duration  time.Duration `json:"duration"`

	// Steps holds per-call timings for multi-step flows, in call order.
	// Calls after an aborting step are absent.
	Steps []StepTiming `json:"steps,omitempty"`
}

// DurationMs returns the invocation duration in milliseconds.
func (o FlowOutcome) DurationMs() float64 {
	return float64(o.Duration) / float64(time.Millisecond)
}

// StepTiming is the timing of a single network call inside a flow.
type StepTiming struct {
	Name      string        `json:"name"`
	Duration  time.Duration `json:"duration"`
	Succeeded bool          `json:"succeeded"`
}

// RunConfig holds the parameters of one run. It is never mutated once the
// run starts. A ConcurrencyLimit larger than TotalInvocations is legal.
type RunConfig struct {
	TotalInvocations int           `json:"totalInvocations"`
	ConcurrencyLimit int           `json:"concurrencyLimit"`
	SamplingInterval time.Duration `json:"samplingInterval"`
	Percentile       float64       `json:"percentile"`
}

// RunResult is the aggregate of one run, produced once at the end of it.
//
// SuccessCount + FailureCount always equals the number of invocations.
type RunResult struct {
	ElapsedSeconds      float64 `json:"elapsedSeconds"`
	SuccessCount        int     `json:"successCount"`
	FailureCount        int     `json:"failureCount"`
	Throughput          float64 `json:"throughput"`
	Percentile          float64 `json:"percentile"`
	LatencyPercentileMs float64 `json:"latencyPercentileMs"`
	PeakMemoryMB        float64 `json:"peakMemoryMb"`
	AvgMemoryMB         float64 `json:"avgMemoryMb"`

	// Latency is the wider distribution of successful durations.
	Latency LatencyStats `json:"latency"`

	// StepLatency breaks successful step timings down by step name.
	StepLatency map[string]LatencyStats `json:"stepLatency,omitempty"`
}

// Total returns the number of invocations the result covers.
func (r RunResult) Total() int {
	return r.SuccessCount + r.FailureCount
}

// LatencyStats summarises a latency distribution.
type LatencyStats struct {
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Mean  time.Duration `json:"mean"`
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
	P99   time.Duration `json:"p99"`
	Count int64         `json:"count"`
}

// ScenarioResult pairs a named scenario with the outcome of running it.
//
// A skipped scenario was never attempted: its Result is the zero value and
// none of its invocations count as failures.
type ScenarioResult struct {
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	Config     RunConfig `json:"config"`
	Skipped    bool      `json:"skipped"`
	SkipReason string    `json:"skipReason,omitempty"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Result     RunResult `json:"result"`
	Memory     []float64 `json:"memory"`
}

// Report is the complete output of a benchmark invocation.
type Report struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Target    string           `json:"target,omitempty"`
	StartTime time.Time        `json:"startTime"`
	EndTime   time.Time        `json:"endTime"`
	Scenarios []ScenarioResult `json:"scenarios"`
}

// Ran returns the scenarios that were actually executed.
func (r *Report) Ran() []ScenarioResult {
	ran := make([]ScenarioResult, 0, len(r.Scenarios))
	for _, s := range r.Scenarios {
		if !s.Skipped {
			ran = append(ran, s)
		}
	}
	return ran
}
