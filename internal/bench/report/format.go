package report

import (
	"fmt"
	"time"
)

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm %ds", mins, secs)
}

// formatLatency formats a latency duration with a precision suited to its size.
func formatLatency(d time.Duration) string {
	if d == 0 {
		return "0"
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		ms := float64(d.Microseconds()) / 1000.0
		if ms < 10 {
			return fmt.Sprintf("%.2fms", ms)
		}
		if ms < 100 {
			return fmt.Sprintf("%.1fms", ms)
		}
		return fmt.Sprintf("%dms", int(ms))
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// formatNumber formats an integer with thousands separators.
func formatNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	out := make([]byte, 0, len(str)+len(str)/3)
	for i := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, str[i])
	}
	return string(out)
}

// formatMs formats a millisecond value.
func formatMs(ms float64) string {
	return fmt.Sprintf("%.2f ms", ms)
}

// formatMB formats a megabyte value.
func formatMB(mb float64) string {
	return fmt.Sprintf("%.2f MB", mb)
}

// formatRate formats a throughput value.
func formatRate(perSec float64) string {
	return fmt.Sprintf("%.2f/s", perSec)
}

// percentileLabel renders 90 as "p90" and 99.9 as "p99.9".
func percentileLabel(p float64) string {
	return "p" + fmt.Sprintf("%g", p)
}
