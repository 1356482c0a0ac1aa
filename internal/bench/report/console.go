// Package report renders benchmark results: a console summary with a
// comparison table, a JSON export and a standalone HTML page with charts.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wesleyorama2/flowbench/internal/bench"
)

// Console writes human-readable summaries.
type Console struct {
	w       io.Writer
	colors  *ColorScheme
	noColor bool
}

// NewConsole returns a Console writing to w. Colors are disabled when
// noColor is set or w is not a terminal.
func NewConsole(w io.Writer, noColor bool) *Console {
	noColor = noColor || !IsTerminal(w)
	colors := DefaultColorScheme()
	if noColor {
		colors = NoColorScheme()
	}
	return &Console{w: w, colors: colors, noColor: noColor}
}

// Report prints every scenario followed by the comparison table.
func (c *Console) Report(r *bench.Report) {
	c.colors.Title.Fprintf(c.w, "\n%s\n", r.Name)
	if r.Target != "" {
		c.colors.Muted.Fprintf(c.w, "target: %s\n", r.Target)
	}

	for _, s := range r.Scenarios {
		c.Scenario(s)
	}

	if len(r.Ran()) > 1 {
		fmt.Fprintln(c.w)
		c.colors.Title.Fprintln(c.w, "Comparison")
		fmt.Fprintln(c.w, c.Comparison(r.Scenarios))
	}
}

// Scenario prints the summary of one scenario.
func (c *Console) Scenario(s bench.ScenarioResult) {
	fmt.Fprintln(c.w)
	c.colors.Title.Fprintf(c.w, "=== %s ===\n", s.Name)

	if s.Skipped {
		c.colors.Warning.Fprintf(c.w, "skipped: %s\n", s.SkipReason)
		return
	}

	r := s.Result
	c.line("Flows", fmt.Sprintf("%s (%s, concurrency %d)",
		formatNumber(int64(r.Total())), s.Kind, s.Config.ConcurrencyLimit))

	c.colors.Label.Fprintf(c.w, "  %-14s", "Succeeded:")
	c.colors.Success.Fprintf(c.w, "%s", formatNumber(int64(r.SuccessCount)))
	fmt.Fprint(c.w, "   ")
	c.colors.Label.Fprint(c.w, "Failed: ")
	if r.FailureCount > 0 {
		c.colors.Error.Fprintf(c.w, "%s\n", formatNumber(int64(r.FailureCount)))
	} else {
		c.colors.Success.Fprintln(c.w, "0")
	}

	c.line("Elapsed", fmt.Sprintf("%.2fs", r.ElapsedSeconds))
	c.line("Throughput", fmt.Sprintf("%.2f flows/s", r.Throughput))
	c.line(percentileLabel(r.Percentile)+" latency", formatMs(r.LatencyPercentileMs))

	if len(s.Memory) > 0 {
		c.line("Memory", fmt.Sprintf("peak %s, avg %s (%d samples)",
			formatMB(r.PeakMemoryMB), formatMB(r.AvgMemoryMB), len(s.Memory)))
	} else {
		c.line("Memory", "no samples")
	}

	if r.Latency.Count > 0 {
		l := r.Latency
		c.line("Distribution", fmt.Sprintf("min %s  mean %s  p50 %s  p95 %s  p99 %s  max %s",
			formatLatency(l.Min), formatLatency(l.Mean), formatLatency(l.P50),
			formatLatency(l.P95), formatLatency(l.P99), formatLatency(l.Max)))
	}

	if len(r.StepLatency) > 0 {
		c.colors.Label.Fprintln(c.w, "  Steps:")
		names := make([]string, 0, len(r.StepLatency))
		for name := range r.StepLatency {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			st := r.StepLatency[name]
			fmt.Fprintf(c.w, "    %-20s mean %-10s p95 %-10s (%d)\n",
				name, formatLatency(st.Mean), formatLatency(st.P95), st.Count)
		}
	}
}

func (c *Console) line(label, value string) {
	c.colors.Label.Fprintf(c.w, "  %-14s", label+":")
	c.colors.Value.Fprintln(c.w, value)
}

// Comparison renders a table with one row per scenario.
func (c *Console) Comparison(scenarios []bench.ScenarioResult) string {
	pctHeader := "latency"
	if ran := ranOnly(scenarios); len(ran) > 0 {
		pctHeader = percentileLabel(ran[0].Result.Percentile) + " latency"
	}

	rows := make([][]string, 0, len(scenarios))
	for _, s := range scenarios {
		if s.Skipped {
			rows = append(rows, []string{s.Name, "skipped", "-", "-", "-", "-", "-", "-"})
			continue
		}
		r := s.Result
		rows = append(rows, []string{
			s.Name,
			s.Kind,
			strconv.Itoa(r.SuccessCount),
			strconv.Itoa(r.FailureCount),
			formatRate(r.Throughput),
			formatMs(r.LatencyPercentileMs),
			formatMB(r.PeakMemoryMB),
			formatMB(r.AvgMemoryMB),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Scenario", "Kind", "OK", "Failed", "Throughput", pctHeader, "Peak mem", "Avg mem").
		Rows(rows...).
		StyleFunc(c.cellStyle(rows))

	return strings.TrimRight(t.String(), "\n")
}

func (c *Console) cellStyle(rows [][]string) table.StyleFunc {
	base := lipgloss.NewStyle().Padding(0, 1)
	return func(row, col int) lipgloss.Style {
		if c.noColor {
			return base
		}
		if row == table.HeaderRow {
			return base.Bold(true).Foreground(lipgloss.Color("6"))
		}
		if row >= 0 && row < len(rows) && col == 3 && rows[row][3] != "0" && rows[row][3] != "-" {
			return base.Foreground(lipgloss.Color("1"))
		}
		return base
	}
}

func ranOnly(scenarios []bench.ScenarioResult) []bench.ScenarioResult {
	r := bench.Report{Scenarios: scenarios}
	return r.Ran()
}
