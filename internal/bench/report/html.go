package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/wesleyorama2/flowbench/internal/bench"
)

// ReportData contains all data needed to render the HTML report.
type ReportData struct {
	*bench.Report
	Duration  time.Duration
	ChartJSON template.JS
}

// chartData is the JSON consumed by the page's chart scripts.
type chartData struct {
	Names        []string        `json:"names"`
	Throughput   []float64       `json:"throughput"`
	Latency      []float64       `json:"latency"`
	PeakMemory   []float64       `json:"peakMemory"`
	AvgMemory    []float64       `json:"avgMemory"`
	Memory       []memorySeries  `json:"memory"`
	Percentile   float64         `json:"percentile"`
	Distribution []latencyPoints `json:"distribution"`
}

type memorySeries struct {
	Name     string    `json:"name"`
	Readings []float64 `json:"readings"`
	Peak     float64   `json:"peak"`
	Avg      float64   `json:"avg"`
}

type latencyPoints struct {
	Name string    `json:"name"`
	Ms   []float64 `json:"ms"`
}

// GenerateHTML renders a report and writes it to outputPath.
func GenerateHTML(r *bench.Report, outputPath string) error {
	html, err := GenerateHTMLString(r)
	if err != nil {
		return fmt.Errorf("failed to generate HTML: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write HTML file: %w", err)
	}

	return nil
}

// GenerateHTMLString renders a report as a standalone HTML page.
func GenerateHTMLString(r *bench.Report) (string, error) {
	if r == nil {
		return "", fmt.Errorf("report cannot be nil")
	}

	tmpl, err := template.New("report").Funcs(templateFuncs()).Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	charts, err := buildChartJSON(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode chart data: %w", err)
	}

	data := ReportData{
		Report:    r,
		Duration:  r.EndTime.Sub(r.StartTime),
		ChartJSON: template.JS(charts),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// buildChartJSON collects the per-scenario series shown in the charts.
// Skipped scenarios are left out.
func buildChartJSON(r *bench.Report) (string, error) {
	cd := chartData{
		Names:        []string{},
		Throughput:   []float64{},
		Latency:      []float64{},
		PeakMemory:   []float64{},
		AvgMemory:    []float64{},
		Memory:       []memorySeries{},
		Distribution: []latencyPoints{},
	}

	for _, s := range r.Ran() {
		res := s.Result
		cd.Names = append(cd.Names, s.Name)
		cd.Throughput = append(cd.Throughput, res.Throughput)
		cd.Latency = append(cd.Latency, res.LatencyPercentileMs)
		cd.PeakMemory = append(cd.PeakMemory, res.PeakMemoryMB)
		cd.AvgMemory = append(cd.AvgMemory, res.AvgMemoryMB)
		cd.Percentile = res.Percentile

		readings := s.Memory
		if readings == nil {
			readings = []float64{}
		}
		cd.Memory = append(cd.Memory, memorySeries{
			Name:     s.Name,
			Readings: readings,
			Peak:     res.PeakMemoryMB,
			Avg:      res.AvgMemoryMB,
		})

		l := res.Latency
		cd.Distribution = append(cd.Distribution, latencyPoints{
			Name: s.Name,
			Ms:   []float64{ms(l.Min), ms(l.P50), ms(l.P95), ms(l.P99), ms(l.Max)},
		})
	}

	out, err := json.Marshal(cd)
	if err != nil {
		return "{}", err
	}
	return string(out), nil
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// templateFuncs returns the template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDuration":  formatDuration,
		"formatLatency":   formatLatency,
		"formatNumber":    func(n int) string { return formatNumber(int64(n)) },
		"formatMs":        formatMs,
		"formatMB":        formatMB,
		"formatRate":      formatRate,
		"percentileLabel": percentileLabel,
		"successRate":     successRate,
	}
}

// successRate returns the share of successful flows as a percentage.
func successRate(r bench.RunResult) float64 {
	if r.Total() == 0 {
		return 0
	}
	return float64(r.SuccessCount) / float64(r.Total()) * 100
}
