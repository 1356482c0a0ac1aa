// Package metrics reduces flow outcomes and memory readings into run statistics.
package metrics

import (
	"math"
	"time"

	"github.com/wesleyorama2/flowbench/internal/bench"
)

// Summarize reduces the outcomes and memory readings of one run into a
// RunResult.
//
// It performs no I/O and never fails: a non-positive elapsed time yields zero
// throughput, an empty success set yields a zero latency percentile, and an
// empty readings sequence yields zero peak and average memory.
func Summarize(outcomes []bench.FlowOutcome, readings []float64, elapsedSeconds, percentile float64) bench.RunResult {
	if math.IsNaN(elapsedSeconds) || elapsedSeconds < 0 {
		elapsedSeconds = 0
	}

	durations := make([]float64, 0, len(outcomes))
	dist := NewDistribution()
	steps := NewStepDistributions()

	for _, o := range outcomes {
		if !o.Succeeded {
			continue
		}
		durations = append(durations, o.DurationMs())
		dist.Record(o.Duration)
		for _, st := range o.Steps {
			if st.Succeeded {
				steps.Record(st.Name, st.Duration)
			}
		}
	}

	success := len(durations)
	result := bench.RunResult{
		ElapsedSeconds:      elapsedSeconds,
		SuccessCount:        success,
		FailureCount:        len(outcomes) - success,
		Throughput:          Throughput(success, elapsedSeconds),
		Percentile:          percentile,
		LatencyPercentileMs: Percentile(durations, percentile),
		Latency:             dist.Stats(),
	}

	if stepStats := steps.Stats(); len(stepStats) > 0 {
		result.StepLatency = stepStats
	}

	result.PeakMemoryMB, result.AvgMemoryMB = MemoryStats(readings)
	return result
}

// Throughput returns successes per elapsed second, or 0 when elapsed is not
// positive.
func Throughput(successes int, elapsedSeconds float64) float64 {
	if elapsedSeconds <= 0 {
		return 0
	}
	return float64(successes) / elapsedSeconds
}

// MemoryStats returns the peak and mean of the readings. Both are 0 for an
// empty sequence.
func MemoryStats(readings []float64) (peak, avg float64) {
	if len(readings) == 0 {
		return 0, 0
	}

	peak = readings[0]
	var total float64
	for _, r := range readings {
		if r > peak {
			peak = r
		}
		total += r
	}
	return peak, total / float64(len(readings))
}

// Elapsed converts a wall-clock span to seconds, clamping negatives to 0.
func Elapsed(start, end time.Time) float64 {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return d.Seconds()
}
