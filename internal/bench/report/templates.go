package report

// htmlTemplate is the standalone HTML report page.
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Name}} - Benchmark Report</title>
    <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
    <style>
        :root {
            --bg-primary: #ffffff;
            --bg-secondary: #f8fafc;
            --text-primary: #1e293b;
            --text-secondary: #64748b;
            --text-muted: #94a3b8;
            --border-color: #e2e8f0;
            --accent-primary: #3b82f6;
            --accent-success: #22c55e;
            --accent-warning: #f59e0b;
            --accent-error: #ef4444;
            --shadow: 0 1px 3px rgba(0, 0, 0, 0.1);
        }

        * { margin: 0; padding: 0; box-sizing: border-box; }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background-color: var(--bg-secondary);
            color: var(--text-primary);
            line-height: 1.6;
        }

        .container { max-width: 1400px; margin: 0 auto; padding: 2rem; }

        .card {
            background: var(--bg-primary);
            border-radius: 12px;
            padding: 1.5rem 2rem;
            margin-bottom: 2rem;
            box-shadow: var(--shadow);
        }

        h1 { font-size: 1.75rem; font-weight: 700; }
        h2 { font-size: 1.25rem; font-weight: 600; margin-bottom: 1rem; }

        .meta {
            display: flex;
            flex-wrap: wrap;
            gap: 2rem;
            margin-top: 0.5rem;
            font-size: 0.875rem;
            color: var(--text-muted);
        }

        table { width: 100%; border-collapse: collapse; font-size: 0.9rem; }
        th, td { text-align: left; padding: 0.6rem 0.75rem; border-bottom: 1px solid var(--border-color); }
        th { color: var(--text-secondary); font-weight: 600; }
        td.num { font-variant-numeric: tabular-nums; }

        .badge {
            display: inline-block;
            padding: 0.1rem 0.6rem;
            border-radius: 999px;
            font-size: 0.75rem;
            font-weight: 600;
        }
        .badge.chain { background: rgba(59, 130, 246, 0.1); color: var(--accent-primary); }
        .badge.single { background: rgba(34, 197, 94, 0.1); color: var(--accent-success); }
        .badge.skipped { background: rgba(245, 158, 11, 0.1); color: var(--accent-warning); }
        .failed { color: var(--accent-error); font-weight: 600; }

        .charts { display: grid; grid-template-columns: repeat(auto-fit, minmax(480px, 1fr)); gap: 2rem; }
        .chart-box { position: relative; height: 320px; }
        .muted { color: var(--text-muted); }
    </style>
</head>
<body>
<div class="container">
    <div class="card">
        <h1>{{.Name}}</h1>
        <div class="meta">
            <span>Run {{.ID}}</span>
            <span>Started {{.StartTime.Format "2006-01-02 15:04:05"}}</span>
            <span>Duration {{formatDuration .Duration}}</span>
            {{if .Target}}<span>Target {{.Target}}</span>{{end}}
        </div>
    </div>

    <div class="card">
        <h2>Scenarios</h2>
        <table>
            <thead>
            <tr>
                <th>Scenario</th>
                <th>Kind</th>
                <th>Flows</th>
                <th>Concurrency</th>
                <th>Succeeded</th>
                <th>Failed</th>
                <th>Success rate</th>
                <th>Elapsed</th>
                <th>Throughput</th>
                <th>Latency</th>
                <th>Peak memory</th>
                <th>Avg memory</th>
            </tr>
            </thead>
            <tbody>
            {{range .Scenarios}}
            {{if .Skipped}}
            <tr>
                <td>{{.Name}}</td>
                <td><span class="badge skipped">skipped</span></td>
                <td colspan="10" class="muted">{{.SkipReason}}</td>
            </tr>
            {{else}}
            <tr>
                <td>{{.Name}}</td>
                <td><span class="badge {{.Kind}}">{{.Kind}}</span></td>
                <td class="num">{{formatNumber .Config.TotalInvocations}}</td>
                <td class="num">{{.Config.ConcurrencyLimit}}</td>
                <td class="num">{{formatNumber .Result.SuccessCount}}</td>
                <td class="num{{if gt .Result.FailureCount 0}} failed{{end}}">{{formatNumber .Result.FailureCount}}</td>
                <td class="num">{{printf "%.1f" (successRate .Result)}}%</td>
                <td class="num">{{printf "%.2f" .Result.ElapsedSeconds}}s</td>
                <td class="num">{{formatRate .Result.Throughput}}</td>
                <td class="num">{{percentileLabel .Result.Percentile}} {{formatMs .Result.LatencyPercentileMs}}</td>
                <td class="num">{{formatMB .Result.PeakMemoryMB}}</td>
                <td class="num">{{formatMB .Result.AvgMemoryMB}}</td>
            </tr>
            {{end}}
            {{end}}
            </tbody>
        </table>
    </div>

    <div class="card">
        <h2>Comparison</h2>
        <div class="charts">
            <div class="chart-box"><canvas id="throughputChart"></canvas></div>
            <div class="chart-box"><canvas id="latencyChart"></canvas></div>
        </div>
    </div>

    <div class="card">
        <h2>Memory usage</h2>
        <div class="charts" id="memoryCharts"></div>
    </div>

    {{range .Scenarios}}{{if and (not .Skipped) .Result.StepLatency}}
    <div class="card">
        <h2>{{.Name}}: steps</h2>
        <table>
            <thead><tr><th>Step</th><th>Count</th><th>Min</th><th>Mean</th><th>p50</th><th>p95</th><th>p99</th><th>Max</th></tr></thead>
            <tbody>
            {{range $name, $s := .Result.StepLatency}}
            <tr>
                <td>{{$name}}</td>
                <td class="num">{{$s.Count}}</td>
                <td class="num">{{formatLatency $s.Min}}</td>
                <td class="num">{{formatLatency $s.Mean}}</td>
                <td class="num">{{formatLatency $s.P50}}</td>
                <td class="num">{{formatLatency $s.P95}}</td>
                <td class="num">{{formatLatency $s.P99}}</td>
                <td class="num">{{formatLatency $s.Max}}</td>
            </tr>
            {{end}}
            </tbody>
        </table>
    </div>
    {{end}}{{end}}
</div>

<script>
    const data = {{.ChartJSON}};
    const palette = ['#3b82f6', '#22c55e', '#f59e0b', '#ef4444', '#8b5cf6', '#06b6d4'];

    function barChart(id, label, values, color) {
        new Chart(document.getElementById(id).getContext('2d'), {
            type: 'bar',
            data: {
                labels: data.names,
                datasets: [{ label: label, data: values, backgroundColor: color }]
            },
            options: {
                responsive: true,
                maintainAspectRatio: false,
                plugins: { legend: { display: false }, title: { display: true, text: label } },
                scales: { y: { beginAtZero: true } }
            }
        });
    }

    barChart('throughputChart', 'Throughput (flows/s)', data.throughput, palette[0]);
    barChart('latencyChart', 'p' + data.percentile + ' latency (ms)', data.latency, palette[2]);

    const memoryRoot = document.getElementById('memoryCharts');
    data.memory.forEach(function (series, i) {
        const box = document.createElement('div');
        box.className = 'chart-box';
        const canvas = document.createElement('canvas');
        box.appendChild(canvas);
        memoryRoot.appendChild(box);

        const labels = series.readings.map(function (_, n) { return n; });
        const flat = function (v) { return series.readings.map(function () { return v; }); };

        new Chart(canvas.getContext('2d'), {
            type: 'line',
            data: {
                labels: labels,
                datasets: [
                    { label: 'RSS (MB)', data: series.readings, borderColor: palette[i % palette.length], pointRadius: 0, tension: 0.2 },
                    { label: 'Peak ' + series.peak.toFixed(2) + ' MB', data: flat(series.peak), borderColor: '#ef4444', borderDash: [6, 4], pointRadius: 0 },
                    { label: 'Avg ' + series.avg.toFixed(2) + ' MB', data: flat(series.avg), borderColor: '#64748b', borderDash: [2, 4], pointRadius: 0 }
                ]
            },
            options: {
                responsive: true,
                maintainAspectRatio: false,
                plugins: { title: { display: true, text: series.name } },
                scales: { x: { title: { display: true, text: 'sample' } }, y: { title: { display: true, text: 'MB' } } }
            }
        });
    });
</script>
</body>
</html>
`
