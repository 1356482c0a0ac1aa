package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/flowbench/internal/bench/config"
	"github.com/wesleyorama2/flowbench/internal/bench/flow"
	"github.com/wesleyorama2/flowbench/internal/bench/report"
)

func newValidateCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a benchmark file without running it",
		Long: `Load a benchmark file, validate it and build every flow. Scenarios whose
required variables are unset or still hold placeholder values are listed
as skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateFile(cmd, g, args[0])
		},
	}
}

func validateFile(cmd *cobra.Command, g *globalOptions, path string) error {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	colors := report.DefaultColorScheme()
	if g.noColor || !report.IsTerminal(cmd.OutOrStdout()) {
		colors = report.NoColorScheme()
	}
	w := cmd.OutOrStdout()

	colors.Title.Fprintf(w, "%s\n", cfg.Name)
	switch {
	case cfg.Target.PID > 0:
		fmt.Fprintf(w, "target: pid %d, sampled every %s\n", cfg.Target.PID, cfg.Target.SamplingInterval.GetDuration(config.DefaultSamplingInterval))
	case cfg.Target.Process != "":
		fmt.Fprintf(w, "target: %q, sampled every %s\n", cfg.Target.Process, cfg.Target.SamplingInterval.GetDuration(config.DefaultSamplingInterval))
	default:
		colors.Warning.Fprintln(w, "target: none, memory will not be sampled")
	}

	for _, sc := range cfg.Scenarios {
		rc := cfg.RunConfigFor(sc)
		kind := flow.KindSingle
		if sc.IsChain() {
			kind = flow.KindChain
		}

		if missing := config.MissingCredentials(sc, cfg.Variables); len(missing) > 0 {
			colors.Warning.Fprintf(w, "  - %s: skipped, requires %s\n", sc.Name, strings.Join(missing, ", "))
			continue
		}

		client := flow.NewClient(cfg.Settings, rc.ConcurrencyLimit)
		_, err := flow.Build(sc, cfg.Settings, cfg.Variables, client)
		client.CloseIdleConnections()
		if err != nil {
			return fmt.Errorf("scenario %q: %w", sc.Name, err)
		}

		colors.Success.Fprintf(w, "  - %s", sc.Name)
		fmt.Fprintf(w, ": %s, %d step(s), %d flows, concurrency %d\n",
			kind, len(sc.Requests), rc.TotalInvocations, rc.ConcurrencyLimit)
	}

	colors.Success.Fprintln(w, "valid")
	return nil
}
