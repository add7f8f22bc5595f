package cli

import (
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/roach88/nemhist/internal/inputs"
	"github.com/roach88/nemhist/internal/ir"
)

// InputsOptions holds flags for the inputs command.
type InputsOptions struct {
	*RootOptions
	Database string
}

// InputsOutput is the output of the inputs command.
type InputsOutput struct {
	*inputs.Dispatch
}

func (o InputsOutput) renderText(p *message.Printer, w io.Writer) {
	p.Fprintf(w, "Dispatch inputs for %s\n", o.Interval)
	p.Fprintf(w, "  units:            %d\n", len(o.Units))
	p.Fprintf(w, "  volume bids:      %d\n", len(o.VolumeBids))
	p.Fprintf(w, "  price bids:       %d\n", len(o.PriceBids))
	p.Fprintf(w, "  unit limits:      %d\n", len(o.UnitLimits))
	p.Fprintf(w, "  regions:          %d\n", len(o.RegionalDemand))
	p.Fprintf(w, "  interconnectors:  %d\n", len(o.Interconnectors))
	p.Fprintf(w, "  loss functions:   %d\n", len(o.LossFunctions))
	p.Fprintf(w, "  break points:     %d\n", len(o.BreakPoints))
	for _, r := range o.RegionalDemand {
		p.Fprintf(w, "  %-8s demand %.2f MW\n", r.Region, r.Demand)
	}
}

// NewInputsCommand creates the inputs command.
func NewInputsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InputsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inputs <instant>",
		Short: "Assemble the dispatch inputs of one interval",
		Long: `Resolve every dispatch input table at the instant and derive the
normalized inputs: unit information, bids, unit limits, regional demand,
interconnectors, loss functions and loss-model break points.

Example:
  nemhist inputs --db ./nemhist.db "2020/01/01 12:00:00" --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInputs(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (defaults to config)")

	return cmd
}

func runInputs(opts *InputsOptions, instant string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	at, err := ir.ParseInstant(instant)
	if err != nil {
		return outputError(formatter, ExitCommandError, "invalid instant", err)
	}

	sess, err := openSession(opts.RootOptions, cmd, opts.Database, true)
	if err != nil {
		return outputSessionError(formatter, err)
	}
	defer sess.Close()

	d, err := inputs.NewBuilder(sess.manager, inputs.WithLogger(sess.logger)).Build(cmd.Context(), at)
	if err != nil {
		return outputError(formatter, exitCodeFor(err), "failed to build inputs", err)
	}

	return formatter.Success(InputsOutput{Dispatch: d})
}
