package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/flowbench/internal/bench"
)

func outcomes(durationsMs []float64, failures int) []bench.FlowOutcome {
	base := time.Now()
	out := make([]bench.FlowOutcome, 0, len(durationsMs)+failures)
	for i, ms := range durationsMs {
		d := time.Duration(ms * float64(time.Millisecond))
		out = append(out, bench.FlowOutcome{
			Index:     i,
			Succeeded: true,
			StartedAt: base,
			EndedAt:   base.Add(d),
			Duration:  d,
		})
	}
	for i := 0; i < failures; i++ {
		out = append(out, bench.FlowOutcome{
			Index:     len(durationsMs) + i,
			StartedAt: base,
			EndedAt:   base.Add(5 * time.Second),
			Duration:  5 * time.Second,
		})
	}
	return out
}

func TestSummarize_AllSucceed(t *testing.T) {
	durations := make([]float64, 100)
	for i := range durations {
		durations[i] = 50
	}

	result := Summarize(outcomes(durations, 0), nil, 1.0, 90)

	assert.Equal(t, 100, result.SuccessCount)
	assert.Equal(t, 0, result.FailureCount)
	assert.InDelta(t, 100.0, result.Throughput, 1e-9)
	assert.InDelta(t, 50.0, result.LatencyPercentileMs, 1e-9)
	assert.Equal(t, 90.0, result.Percentile)
	assert.Equal(t, int64(100), result.Latency.Count)
}

func TestSummarize_MixedOutcomes(t *testing.T) {
	result := Summarize(outcomes([]float64{10, 20, 30, 40, 50, 60, 70}, 3), nil, 0.5, 90)

	assert.Equal(t, 7, result.SuccessCount)
	assert.Equal(t, 3, result.FailureCount)
	assert.Equal(t, 10, result.Total())
	assert.InDelta(t, 14.0, result.Throughput, 1e-9)
	// Failed invocations took 5s each and must not leak into the percentile.
	assert.InDelta(t, 64.0, result.LatencyPercentileMs, 1e-9)
	assert.Less(t, result.Latency.Max, time.Second)
}

func TestSummarize_EmptyGuards(t *testing.T) {
	result := Summarize(nil, nil, 0, 90)

	assert.Zero(t, result.SuccessCount)
	assert.Zero(t, result.FailureCount)
	assert.Zero(t, result.Throughput)
	assert.Zero(t, result.LatencyPercentileMs)
	assert.Zero(t, result.PeakMemoryMB)
	assert.Zero(t, result.AvgMemoryMB)
	assert.Equal(t, bench.LatencyStats{}, result.Latency)
	assert.Nil(t, result.StepLatency)
}

func TestSummarize_AllFailed(t *testing.T) {
	result := Summarize(outcomes(nil, 4), []float64{10}, 2, 90)

	assert.Equal(t, 0, result.SuccessCount)
	assert.Equal(t, 4, result.FailureCount)
	assert.Zero(t, result.Throughput)
	assert.Zero(t, result.LatencyPercentileMs)
}

func TestSummarize_NonPositiveElapsed(t *testing.T) {
	for _, elapsed := range []float64{0, -1.5} {
		result := Summarize(outcomes([]float64{10, 20}, 0), nil, elapsed, 90)
		assert.Zero(t, result.Throughput, "elapsed=%v", elapsed)
		assert.Zero(t, result.ElapsedSeconds, "elapsed=%v", elapsed)
		assert.Equal(t, 2, result.SuccessCount)
	}
}

func TestSummarize_Memory(t *testing.T) {
	result := Summarize(nil, []float64{100, 150, 125, 125}, 1, 90)

	assert.InDelta(t, 150.0, result.PeakMemoryMB, 1e-9)
	assert.InDelta(t, 125.0, result.AvgMemoryMB, 1e-9)
}

func TestSummarize_StepLatency(t *testing.T) {
	base := time.Now()
	in := []bench.FlowOutcome{
		{
			Succeeded: true, StartedAt: base, EndedAt: base.Add(30 * time.Millisecond), Duration: 30 * time.Millisecond,
			Steps: []bench.StepTiming{
				{Name: "create", Duration: 10 * time.Millisecond, Succeeded: true},
				{Name: "login", Duration: 20 * time.Millisecond, Succeeded: true},
			},
		},
		{
			Succeeded: false, StartedAt: base, EndedAt: base.Add(15 * time.Millisecond), Duration: 15 * time.Millisecond,
			Steps: []bench.StepTiming{
				{Name: "create", Duration: 12 * time.Millisecond, Succeeded: true},
				{Name: "login", Duration: 3 * time.Millisecond, Succeeded: false},
			},
		},
	}

	result := Summarize(in, nil, 1, 90)

	require.Len(t, result.StepLatency, 2)
	assert.Equal(t, int64(1), result.StepLatency["create"].Count)
	assert.Equal(t, int64(1), result.StepLatency["login"].Count)
}

func TestSummarize_CountInvariant(t *testing.T) {
	for total := 0; total < 20; total++ {
		in := make([]bench.FlowOutcome, total)
		for i := range in {
			in[i].Succeeded = i%3 != 0
			in[i].Duration = time.Duration(i) * time.Millisecond
		}
		result := Summarize(in, nil, 1, 95)
		assert.Equal(t, total, result.SuccessCount+result.FailureCount)
	}
}

func TestThroughput(t *testing.T) {
	assert.InDelta(t, 14.0, Throughput(7, 0.5), 1e-9)
	assert.Zero(t, Throughput(7, 0))
	assert.Zero(t, Throughput(7, -1))
}

func TestMemoryStats(t *testing.T) {
	peak, avg := MemoryStats(nil)
	assert.Zero(t, peak)
	assert.Zero(t, avg)

	peak, avg = MemoryStats([]float64{42})
	assert.Equal(t, 42.0, peak)
	assert.Equal(t, 42.0, avg)
}

func TestElapsed(t *testing.T) {
	start := time.Now()
	assert.InDelta(t, 1.5, Elapsed(start, start.Add(1500*time.Millisecond)), 1e-9)
	assert.Zero(t, Elapsed(start, start.Add(-time.Second)))
}
