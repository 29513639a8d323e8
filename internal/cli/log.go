package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cybermatrixco/strand/internal/evallog"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	Root     *RootOptions
	Database string
	Limit    int
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{Root: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List recorded evaluations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database to read (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "maximum number of entries to list")
	cmd.MarkFlagRequired("db")

	return cmd
}

func runLog(cmd *cobra.Command, opts *LogOptions) error {
	store, err := evallog.Open(opts.Database)
	if err != nil {
		return fmt.Errorf("opening evaluation log: %w", err)
	}
	defer store.Close()

	evals, err := store.List(cmd.Context(), opts.Limit)
	if err != nil {
		return fmt.Errorf("listing evaluations: %w", err)
	}

	if opts.Root.Format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(evals)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCRIPT\tOUTCOME\tSTEPS\tSTARTED\tRESULT")
	for _, ev := range evals {
		detail := ev.Result
		if ev.Outcome == evallog.OutcomeError {
			detail = ev.Diagnostic
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			ev.ID, ev.Script, ev.Outcome, ev.Steps,
			ev.StartedAt.Format(time.RFC3339), detail)
	}
	return w.Flush()
}
