package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/flowbench/internal/bench"
	"github.com/wesleyorama2/flowbench/internal/bench/report"
)

type historyOptions struct {
	*globalOptions

	path       string
	limit      int
	jsonOutput bool
}

func newHistoryCmd(g *globalOptions) *cobra.Command {
	opts := &historyOptions{globalOptions: g}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List and inspect recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(cmd, opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.path, "history", "", "History database (default ~/.flowbench/history.db)")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")

	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(cmd, opts)
		},
	}
	list.Flags().IntVarP(&opts.limit, "limit", "l", 20, "Maximum runs to list (0 for all)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "l", 20, "Maximum runs to list (0 for all)")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(cmd, opts, args[0])
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(opts.path)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, show, del)
	return cmd
}

func listHistory(cmd *cobra.Command, opts *historyOptions) error {
	store, err := openHistory(opts.path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(opts.limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if opts.jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries(runs))
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "no recorded runs")
		return nil
	}
	for _, s := range summaries(runs) {
		fmt.Fprintf(w, "%s  %s  %-24s %d scenario(s), %d ok, %d failed\n",
			s.ID, s.StartTime.Format("2006-01-02 15:04:05"), s.Name, s.Scenarios, s.Succeeded, s.Failed)
	}
	return nil
}

func showHistory(cmd *cobra.Command, opts *historyOptions, id string) error {
	store, err := openHistory(opts.path)
	if err != nil {
		return err
	}
	defer store.Close()

	rep, err := store.Get(id)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		data, err := report.MarshalJSON(rep)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	report.NewConsole(cmd.OutOrStdout(), opts.noColor).Report(rep)
	return nil
}

// runSummary is one line of the history listing.
type runSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"startTime"`
	Scenarios int       `json:"scenarios"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
}

func summaries(runs []*bench.Report) []runSummary {
	out := make([]runSummary, 0, len(runs))
	for _, r := range runs {
		s := runSummary{ID: r.ID, Name: r.Name, StartTime: r.StartTime, Scenarios: len(r.Scenarios)}
		for _, sc := range r.Ran() {
			s.Succeeded += sc.Result.SuccessCount
			s.Failed += sc.Result.FailureCount
		}
		out = append(out, s)
	}
	return out
}
