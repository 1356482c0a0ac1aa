package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wesleyorama2/flowbench/internal/bench"
	"github.com/wesleyorama2/flowbench/internal/bench/config"
	"github.com/wesleyorama2/flowbench/internal/bench/engine"
	"github.com/wesleyorama2/flowbench/internal/bench/executor"
	"github.com/wesleyorama2/flowbench/internal/bench/report"
	"github.com/wesleyorama2/flowbench/internal/bench/sampler"
	"github.com/wesleyorama2/flowbench/internal/storage"
)

// runOptions holds the flags of the run command.
type runOptions struct {
	*globalOptions

	configFile string
	url        string
	method     string
	body       string

	flows       int
	concurrency int
	interval    time.Duration
	percentile  float64
	process     string
	pid         int32
	noSampler   bool

	output     string
	jsonOutput bool
	htmlOutput bool
	history    string
	noHistory  bool
}

func newRunCmd(g *globalOptions) *cobra.Command {
	opts := &runOptions{globalOptions: g}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run benchmark scenarios",
		Long: `Run every scenario of a benchmark file in order, or a single call built
from flags.

Config file mode:
  flowbench run --config bench.yaml

Quick mode (single call):
  flowbench run --url http://localhost:8000/health -n 20000 -C 500 --process api

The target process is located by --pid or by a case-insensitive name
substring (--process). The run aborts when it cannot be found, unless
--no-sampler is given.

Output:
  --output report.json    JSON report
  --output report.html    HTML report
  --output report         both report.json and report.html
  --html                  HTML report with a generated name`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configFile, "config", "c", "", "Benchmark file (YAML or JSON)")
	f.StringVar(&opts.url, "url", "", "URL to call (alternative to --config)")
	f.StringVarP(&opts.method, "method", "X", "GET", "HTTP method for --url")
	f.StringVarP(&opts.body, "body", "d", "", "Request body for --url")
	f.IntVarP(&opts.flows, "flows", "n", 0, "Total flows per scenario (default 2000)")
	f.IntVarP(&opts.concurrency, "concurrency", "C", 0, "Maximum flows in flight (default 100)")
	f.DurationVar(&opts.interval, "interval", 0, "Memory sampling interval (default 100ms)")
	f.Float64Var(&opts.percentile, "percentile", 0, "Latency percentile to report (default 90)")
	f.StringVarP(&opts.process, "process", "p", "", "Name substring of the process to sample")
	f.Int32Var(&opts.pid, "pid", 0, "PID of the process to sample")
	f.BoolVar(&opts.noSampler, "no-sampler", false, "Do not sample process memory")
	f.StringVarP(&opts.output, "output", "o", "", "Report file (.json, .html, or a base name for both)")
	f.BoolVar(&opts.jsonOutput, "json", false, "Print the report as JSON instead of the summary")
	f.BoolVar(&opts.htmlOutput, "html", false, "Write an HTML report")
	f.StringVar(&opts.history, "history", "", "History database (default ~/.flowbench/history.db)")
	f.BoolVar(&opts.noHistory, "no-history", false, "Do not record the run in the history")

	return cmd
}

// loadBenchConfig builds the benchmark from --config or --url, applies flag
// overrides and validates the result.
func loadBenchConfig(opts *runOptions) (*config.BenchConfig, error) {
	var cfg *config.BenchConfig

	switch {
	case opts.configFile != "" && opts.url != "":
		return nil, fmt.Errorf("--config and --url cannot be used together")
	case opts.configFile != "":
		loaded, err := config.LoadConfig(opts.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case opts.url != "":
		cfg = config.QuickConfig(opts.url, opts.method, opts.body)
	default:
		return nil, fmt.Errorf("either --config or --url is required")
	}

	config.Overrides{
		Flows:       opts.flows,
		Concurrency: opts.concurrency,
		Interval:    opts.interval,
		Percentile:  opts.percentile,
		Process:     opts.process,
		PID:         opts.pid,
	}.Apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runBench(cmd *cobra.Command, opts *runOptions) error {
	log := opts.logger

	cfg, err := loadBenchConfig(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var proc sampler.Process
	if !opts.noSampler {
		proc, err = engine.LocateTarget(ctx, cfg.Target)
		switch {
		case errors.Is(err, engine.ErrNoTarget):
			log.Warn("no target process configured, memory will not be sampled")
		case err != nil:
			return fmt.Errorf("%w (use --no-sampler to run without memory sampling)", err)
		default:
			log.Info("sampling process", zap.String("target", sampler.Describe(proc)))
		}
	}

	engOpts := []engine.Option{engine.WithLogger(log)}
	if !opts.quiet && report.IsTerminal(cmd.ErrOrStderr()) {
		engOpts = append(engOpts, engine.WithProgress(progressPrinter(cmd), 250*time.Millisecond))
	}

	rep, runErr := engine.New(engOpts...).RunAll(ctx, cfg, proc)
	if rep == nil {
		return runErr
	}
	if runErr != nil {
		log.Warn("run interrupted, reporting completed scenarios", zap.Error(runErr))
	}

	if opts.jsonOutput {
		data, err := report.MarshalJSON(rep)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		report.NewConsole(cmd.OutOrStdout(), opts.noColor).Report(rep)
	}

	if err := writeReports(rep, opts, log); err != nil {
		return err
	}

	if !opts.noHistory {
		if err := saveHistory(rep, opts.history, log); err != nil {
			log.Warn("failed to record run", zap.Error(err))
		}
	}

	return runErr
}

// progressPrinter redraws a one-line status on stderr.
func progressPrinter(cmd *cobra.Command) engine.ProgressFunc {
	w := cmd.ErrOrStderr()
	return func(scenario string, s *executor.Stats) {
		fmt.Fprintf(w, "\r\033[K  %s  %d/%d done  %d failed  %d in flight  %s",
			scenario, s.Completed, s.Total, s.Failed, s.InFlight, s.Elapsed.Round(100*time.Millisecond))
		if s.Total > 0 && s.Completed == s.Total {
			fmt.Fprintln(w)
		}
	}
}

// reportPaths decides which report files to write from --output and --html.
func reportPaths(output string, html bool, rep *bench.Report) (jsonPath, htmlPath string) {
	lower := strings.ToLower(output)
	switch {
	case strings.HasSuffix(lower, ".json"):
		jsonPath = output
	case strings.HasSuffix(lower, ".html"):
		htmlPath = output
	case output != "" && html:
		htmlPath = output + ".html"
	case output != "":
		jsonPath = output + ".json"
		htmlPath = output + ".html"
	case html:
		htmlPath = defaultHTMLPath(rep)
	}
	return jsonPath, htmlPath
}

func writeReports(rep *bench.Report, opts *runOptions, log *zap.Logger) error {
	jsonPath, htmlPath := reportPaths(opts.output, opts.htmlOutput, rep)

	for _, p := range []string{jsonPath, htmlPath} {
		if p == "" {
			continue
		}
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
	}

	if jsonPath != "" {
		if err := report.WriteJSON(rep, jsonPath); err != nil {
			return err
		}
		log.Info("JSON report written", zap.String("path", jsonPath))
	}
	if htmlPath != "" {
		if err := report.GenerateHTML(rep, htmlPath); err != nil {
			return err
		}
		log.Info("HTML report written", zap.String("path", htmlPath))
	}
	return nil
}

// defaultHTMLPath creates a report name from the benchmark name and start time.
func defaultHTMLPath(rep *bench.Report) string {
	name := strings.ToLower(rep.Name)
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "/", "-")
	if name == "" {
		name = "flowbench"
	}
	return fmt.Sprintf("flowbench-report-%s-%s.html", name, rep.StartTime.Format("20060102-150405"))
}

func saveHistory(rep *bench.Report, path string, log *zap.Logger) error {
	store, err := openHistory(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(rep); err != nil {
		return err
	}
	log.Debug("run recorded", zap.String("id", rep.ID), zap.String("history", store.Path()))
	return nil
}

// openHistory opens the history database at path, or at the default
// location when path is empty.
func openHistory(path string) (*storage.Store, error) {
	if path == "" {
		p, err := storage.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return storage.Open(path)
}
