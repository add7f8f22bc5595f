package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/roach88/nemhist/internal/ir"
)

// SequenceOutput is the output of the sequence command.
type SequenceOutput struct {
	Start     ir.Instant   `json:"start"`
	End       ir.Instant   `json:"end"`
	Intervals []ir.Instant `json:"intervals"`
}

func (o SequenceOutput) renderText(_ *message.Printer, w io.Writer) {
	for _, at := range o.Intervals {
		fmt.Fprintln(w, at)
	}
}

// NewSequenceCommand creates the sequence command.
func NewSequenceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sequence <start> <end>",
		Short: "List the dispatch intervals between two instants",
		Long: `List every dispatch instant after start up to and including end, one per
5-minute interval. The list is empty when end is not after start.

Example:
  nemhist sequence "2020/01/01 00:00:00" "2020/01/01 01:00:00"`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSequence(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runSequence(opts *RootOptions, start, end string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	from, err := ir.ParseInstant(start)
	if err != nil {
		return outputError(formatter, ExitCommandError, "invalid start", err)
	}
	to, err := ir.ParseInstant(end)
	if err != nil {
		return outputError(formatter, ExitCommandError, "invalid end", err)
	}

	return formatter.Success(SequenceOutput{
		Start:     from,
		End:       to,
		Intervals: ir.DispatchSequence(from, to),
	})
}
