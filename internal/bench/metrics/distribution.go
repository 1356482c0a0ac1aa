package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/wesleyorama2/flowbench/internal/bench"
)

// Histogram bounds in microseconds: 1µs to 1 hour, 3 significant figures.
const (
	histogramMin     int64 = 1
	histogramMax     int64 = 3600000000
	histogramSigFigs       = 3
)

// Distribution records latencies in an HDR histogram.
//
// It backs the supplementary latency breakdown (min, mean, p50, p95, p99,
// max). The headline percentile of a run is computed exactly by Percentile;
// histogram quantiles are accurate to the configured significant figures.
//
// Distribution is safe for concurrent use.
type Distribution struct {
	mu   sync.Mutex
	hist *hdrhistogram.Histogram
}

// NewDistribution creates an empty distribution.
func NewDistribution() *Distribution {
	return &Distribution{
		hist: hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
	}
}

// Record adds one latency, clamped to the histogram range.
func (d *Distribution) Record(latency time.Duration) {
	micros := latency.Microseconds()
	if micros < histogramMin {
		micros = histogramMin
	}
	if micros > histogramMax {
		micros = histogramMax
	}

	d.mu.Lock()
	// The value is clamped into range, so RecordValue cannot fail.
	_ = d.hist.RecordValue(micros)
	d.mu.Unlock()
}

// Count returns the number of recorded latencies.
func (d *Distribution) Count() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hist.TotalCount()
}

// Stats returns the summary of the recorded latencies. An empty distribution
// yields zero stats.
func (d *Distribution) Stats() bench.LatencyStats {
	d.mu.Lock()
	defer d.mu.Unlock()

	count := d.hist.TotalCount()
	if count == 0 {
		return bench.LatencyStats{}
	}

	return bench.LatencyStats{
		Min:   micros(d.hist.Min()),
		Max:   micros(d.hist.Max()),
		Mean:  time.Duration(d.hist.Mean() * float64(time.Microsecond)),
		P50:   micros(d.hist.ValueAtQuantile(50)),
		P95:   micros(d.hist.ValueAtQuantile(95)),
		P99:   micros(d.hist.ValueAtQuantile(99)),
		Count: count,
	}
}

func micros(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}

// StepDistributions keeps one Distribution per step name.
type StepDistributions struct {
	mu    sync.RWMutex
	dists map[string]*Distribution
}

// NewStepDistributions creates an empty set of per-step distributions.
func NewStepDistributions() *StepDistributions {
	return &StepDistributions{dists: make(map[string]*Distribution)}
}

// Record adds a latency for the named step. Unnamed steps are ignored.
func (s *StepDistributions) Record(name string, latency time.Duration) {
	if name == "" {
		return
	}

	s.mu.RLock()
	d, ok := s.dists[name]
	s.mu.RUnlock()

	if !ok {
		s.mu.Lock()
		if d, ok = s.dists[name]; !ok {
			d = NewDistribution()
			s.dists[name] = d
		}
		s.mu.Unlock()
	}

	d.Record(latency)
}

// Names returns the recorded step names in sorted order.
func (s *StepDistributions) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.dists))
	for name := range s.dists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats returns the summary of every step distribution.
func (s *StepDistributions) Stats() map[string]bench.LatencyStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bench.LatencyStats, len(s.dists))
	for name, d := range s.dists {
		out[name] = d.Stats()
	}
	return out
}
