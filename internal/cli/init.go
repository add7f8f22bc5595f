package cli

import (
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Database string
}

// InitResult is the output of the init command.
type InitResult struct {
	Database string   `json:"database"`
	Tables   []string `json:"tables"`
}

func (r InitResult) renderText(p *message.Printer, w io.Writer) {
	p.Fprintf(w, "✓ Initialized %s with %d tables\n", r.Database, len(r.Tables))
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create (or reset) every registered table",
		Long: `Create the database if needed, then drop and recreate every registered
MMS table. Running init on a populated database empties it.

Example:
  nemhist init --db ./nemhist.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (defaults to config)")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, err := openSession(opts.RootOptions, cmd, opts.Database, false)
	if err != nil {
		return outputSessionError(formatter, err)
	}
	defer sess.Close()

	if err := sess.manager.Initialize(cmd.Context()); err != nil {
		return outputError(formatter, ExitFailure, "failed to initialize tables", err)
	}

	return formatter.Success(InitResult{
		Database: sess.config.Database,
		Tables:   sess.manager.Tables(),
	})
}
