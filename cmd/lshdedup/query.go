package main

import (
	"fmt"

	"github.com/ludo-technologies/lshdedup/domain"
	"github.com/spf13/cobra"
)

// QueryCommand handles the query CLI command
type QueryCommand struct {
	flags *runFlags
	text  string
}

// NewQueryCommand creates a new query command
func NewQueryCommand() *QueryCommand {
	return &QueryCommand{flags: newRunFlags()}
}

// CreateCobraCommand creates the cobra command for similarity lookups
func (q *QueryCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query --text TEXT [paths...]",
		Short: "Find indexed records similar to a text",
		Long: `Build an index over the given record files and look up a text that is
not part of it.

Matches are the indexed records sharing at least one band bucket with the
text whose estimated similarity reaches --threshold. With --raw every
bucket-sharing record is returned.

Examples:
  # Records similar to a sentence
  lshdedup query --text "the quick brown fox" data/

  # All LSH candidates, reproducibly
  lshdedup query --raw --seed 7 --text "the quick brown fox" data/`,
		RunE: q.runQuery,
	}

	q.flags.register(cmd.Flags())
	cmd.Flags().StringVar(&q.text, "text", "", "Text to look up (required)")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

// runQuery executes the query command
func (q *QueryCommand) runQuery(cmd *cobra.Command, args []string) error {
	if q.text == "" {
		return domain.NewValidationError("query text cannot be empty")
	}
	request, err := q.flags.toRequest(cmd, args)
	if err != nil {
		return err
	}

	useCase, cleanup, err := newUseCase(cmd, q.flags.workers)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := useCase.Query(cmd.Context(), domain.QueryRequest{
		DedupRequest: *request,
		Text:         q.text,
		Raw:          q.flags.raw,
	}); err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	return nil
}

// NewQueryCmd creates and returns the query cobra command
func NewQueryCmd() *cobra.Command {
	return NewQueryCommand().CreateCobraCommand()
}
