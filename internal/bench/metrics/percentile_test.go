package metrics

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{name: "empty", values: nil, p: 90, want: 0},
		{name: "single value", values: []float64{42}, p: 90, want: 42},
		{name: "p0 is minimum", values: []float64{30, 10, 20}, p: 0, want: 10},
		{name: "p100 is maximum", values: []float64{30, 10, 20}, p: 100, want: 30},
		{name: "median of odd count", values: []float64{1, 2, 3, 4, 5}, p: 50, want: 3},
		{name: "median of even count", values: []float64{1, 2, 3, 4}, p: 50, want: 2.5},
		{name: "p90 interpolates", values: []float64{10, 20, 30, 40, 50, 60, 70}, p: 90, want: 64},
		{name: "unsorted input", values: []float64{70, 10, 60, 20, 50, 30, 40}, p: 90, want: 64},
		{name: "constant values", values: []float64{50, 50, 50, 50}, p: 90, want: 50},
		{name: "p above 100 clamps", values: []float64{1, 2, 3}, p: 150, want: 3},
		{name: "negative p clamps", values: []float64{1, 2, 3}, p: -5, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.values, tt.p)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.values, tt.p, got, tt.want)
			}
		})
	}
}

func TestPercentile_DoesNotModifyInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Percentile(values, 50)

	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input was modified: %v", values)
	}
}

func TestPercentile_MonotonicInP(t *testing.T) {
	values := []float64{12.5, 3, 99, 47, 47, 8, 61.2, 0.5, 33, 70}

	prev := math.Inf(-1)
	for p := 0.0; p <= 100; p += 0.5 {
		got := Percentile(values, p)
		if got < prev {
			t.Fatalf("Percentile not monotonic: p=%v gave %v after %v", p, got, prev)
		}
		prev = got
	}

	if got := Percentile(values, 100); got != 99 {
		t.Errorf("Percentile(100) = %v, want max 99", got)
	}
}
