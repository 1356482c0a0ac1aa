package cli

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wesleyorama2/flowbench/internal/bench/report"
)

var version = "0.1.0"

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	verbose bool
	quiet   bool
	noColor bool

	logger *zap.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:     "flowbench",
		Short:   "Benchmark an HTTP service under bounded concurrency",
		Version: version,
		Long: `flowbench drives a fixed number of flows (single calls or chains of
calls) against an HTTP service with at most N in flight, samples the
service process's memory while it runs, and reports throughput, tail
latency and peak/average memory for each scenario.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.verbose, opts.quiet, opts.noColor)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Only log warnings and errors, no progress output")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newValidateCmd(opts))
	root.AddCommand(newHistoryCmd(opts))

	return root
}

// Execute runs the root command.
// This is called by main.main(). It only needs to happen once.
func Execute() error {
	return NewRootCmd().Execute()
}

// newLogger builds the console logger written to w. --verbose enables debug
// messages, --quiet limits output to warnings and errors.
func newLogger(w io.Writer, verbose, quiet, noColor bool) *zap.Logger {
	level := zapcore.InfoLevel
	switch {
	case quiet:
		level = zapcore.WarnLevel
	case verbose:
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if !noColor && report.IsTerminal(w) {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if !verbose {
		encCfg.CallerKey = zapcore.OmitKey
		encCfg.StacktraceKey = zapcore.OmitKey
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core)
}
