// Package perf runs flowbench benchmarks from Go code.
//
// A benchmark file is loaded and validated, the target process is located,
// and every scenario runs in order with its own concurrency limit:
//
//	cfg, err := perf.LoadConfig("bench.yaml")
//	if err != nil {
//	    return err
//	}
//	report, err := perf.NewRunner(cfg).Run(ctx)
//	for _, s := range report.Ran() {
//	    fmt.Printf("%s: %.2f flows/s, p%g %.2f ms, peak %.2f MB\n",
//	        s.Name, s.Result.Throughput, s.Result.Percentile,
//	        s.Result.LatencyPercentileMs, s.Result.PeakMemoryMB)
//	}
//
// Configurations can also be built in code, or from a single URL with
// QuickConfig.
package perf
