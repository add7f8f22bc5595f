package cli

import (
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/roach88/nemhist/internal/store"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	Database string
}

// TableStatus describes one registered table.
type TableStatus struct {
	Table       string           `json:"table"`
	Discipline  store.Discipline `json:"discipline"`
	Initialized bool             `json:"initialized"`
	Rows        int              `json:"rows"`
	Ingestions  int              `json:"ingestions"`
	Periods     []store.Period   `json:"periods"`
}

// StatusOutput is the output of the status command.
type StatusOutput struct {
	Database string        `json:"database"`
	Tables   []TableStatus `json:"tables"`
}

func (o StatusOutput) renderText(p *message.Printer, w io.Writer) {
	p.Fprintf(w, "Database: %s\n", o.Database)
	for _, t := range o.Tables {
		if !t.Initialized {
			p.Fprintf(w, "%-28s %-9s not initialized\n", t.Table, t.Discipline)
			continue
		}
		last := "never"
		if n := len(t.Periods); n > 0 {
			last = t.Periods[n-1].String()
		}
		p.Fprintf(w, "%-28s %-9s %12d rows  last %s\n", t.Table, t.Discipline, t.Rows, last)
	}
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show row counts and ingested periods per table",
		Long: `Show, for every registered table, its ingestion discipline, current row
count and the periods ingested so far (oldest first).

Example:
  nemhist status --db ./nemhist.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (defaults to config)")

	return cmd
}

func runStatus(opts *StatusOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, err := openSession(opts.RootOptions, cmd, opts.Database, true)
	if err != nil {
		return outputSessionError(formatter, err)
	}
	defer sess.Close()

	ctx := cmd.Context()
	out := StatusOutput{Database: sess.config.Database, Tables: []TableStatus{}}
	for _, e := range sess.manager.Registry().Entries() {
		status := TableStatus{Table: e.Def.Name, Discipline: e.Discipline, Periods: []store.Period{}}

		exists, err := sess.store.TableExists(ctx, e.Def.Name)
		if err != nil {
			return outputError(formatter, ExitFailure, "failed to inspect database", err)
		}
		if !exists {
			out.Tables = append(out.Tables, status)
			continue
		}
		status.Initialized = true

		status.Rows, err = sess.store.CountRows(ctx, e.Def.Name)
		if err != nil {
			return outputError(formatter, ExitFailure, "failed to count rows", err)
		}
		history, err := sess.store.IngestHistory(ctx, e.Def.Name)
		if err != nil {
			return outputError(formatter, ExitFailure, "failed to read ingest history", err)
		}

		status.Ingestions = len(history)
		for _, h := range history {
			status.Periods = append(status.Periods, h.Period)
		}
		out.Tables = append(out.Tables, status)
	}

	return formatter.Success(out)
}
