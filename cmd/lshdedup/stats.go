package main

import (
	"github.com/ludo-technologies/lshdedup/domain"
	"github.com/spf13/cobra"
)

// StatsCommand handles the stats CLI command
type StatsCommand struct {
	flags  *runFlags
	target float64
}

// NewStatsCommand creates a new stats command
func NewStatsCommand() *StatsCommand {
	return &StatsCommand{flags: newRunFlags()}
}

// CreateCobraCommand creates the cobra command for index statistics
func (s *StatsCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [paths...]",
		Short: "Describe the LSH index built over records",
		Long: `Build an index over the given record files and report band bucket
occupancy together with the candidate probability curve 1-(1-s^r)^b.

With --target, the band count whose curve midpoint lies closest to the
target similarity is suggested.

Examples:
  # Bucket statistics with the default banding
  lshdedup stats data/

  # Which band count suits a 0.7 threshold with 128 permutations?
  lshdedup stats --num-perm 128 --target 0.7 data/`,
		RunE: s.runStats,
	}

	s.flags.register(cmd.Flags())
	cmd.Flags().Float64Var(&s.target, "target", 0, "Suggest num_bands for this similarity threshold (0.0-1.0)")

	return cmd
}

// runStats executes the stats command
func (s *StatsCommand) runStats(cmd *cobra.Command, args []string) error {
	request, err := s.flags.toRequest(cmd, args)
	if err != nil {
		return err
	}

	var target *float64
	if cmd.Flags().Changed("target") {
		target = domain.Float64Ptr(s.target)
	}

	useCase, cleanup, err := newUseCase(cmd, s.flags.workers)
	if err != nil {
		return err
	}
	defer cleanup()

	return useCase.Stats(cmd.Context(), domain.StatsRequest{DedupRequest: *request, Target: target})
}

// NewStatsCmd creates and returns the stats cobra command
func NewStatsCmd() *cobra.Command {
	return NewStatsCommand().CreateCobraCommand()
}
