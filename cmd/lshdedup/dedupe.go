package main

import (
	"github.com/spf13/cobra"
)

// DedupeCommand handles the dedupe CLI command
type DedupeCommand struct {
	flags   *runFlags
	showAll bool
}

// NewDedupeCommand creates a new dedupe command
func NewDedupeCommand() *DedupeCommand {
	return &DedupeCommand{flags: newRunFlags()}
}

// CreateCobraCommand creates the cobra command for near-duplicate grouping
func (d *DedupeCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dedupe [paths...]",
		Short: "Group near-duplicate records",
		Long: `Group the records of CSV/TSV files into near-duplicate sets.

Every record lands in exactly one group. Two records are linked when they
share an LSH band bucket and their estimated Jaccard similarity reaches
--threshold (or, with --raw, whenever they share a bucket); linked records
end up in the same group, transitively.

Examples:
  # Group every CSV under the current directory
  lshdedup dedupe .

  # Records in column 2, ids in column 0, with a header row
  lshdedup dedupe --header --text-column 2 data/records.csv

  # Reproducible run written as CSV rows to stdout
  lshdedup dedupe --seed 42 --csv -o - data/

  # Looser matching with more bands
  lshdedup dedupe --num-bands 32 --threshold 0.3 data/`,
		RunE: d.runDedupe,
	}

	d.flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&d.showAll, "show-all", false, "List singleton groups in text output")

	return cmd
}

// runDedupe executes the dedupe command
func (d *DedupeCommand) runDedupe(cmd *cobra.Command, args []string) error {
	request, err := d.flags.toRequest(cmd, args)
	if err != nil {
		return err
	}
	request.ShowAllGroups = d.showAll

	useCase, cleanup, err := newUseCase(cmd, d.flags.workers)
	if err != nil {
		return err
	}
	defer cleanup()

	return useCase.Execute(cmd.Context(), *request)
}

// NewDedupeCmd creates and returns the dedupe cobra command
func NewDedupeCmd() *cobra.Command {
	return NewDedupeCommand().CreateCobraCommand()
}
