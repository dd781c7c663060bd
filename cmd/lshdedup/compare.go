package main

import (
	"github.com/ludo-technologies/lshdedup/domain"
	"github.com/ludo-technologies/lshdedup/internal/constants"
	"github.com/ludo-technologies/lshdedup/service"
	"github.com/spf13/cobra"
)

// CompareCommand handles the compare CLI command
type CompareCommand struct {
	numPerm int
	seed    uint64
	format  string
}

// NewCompareCommand creates a new compare command
func NewCompareCommand() *CompareCommand {
	return &CompareCommand{
		numPerm: constants.DefaultNumPerm,
		format:  string(domain.OutputFormatText),
	}
}

// CreateCobraCommand creates the cobra command for pairwise comparison
func (c *CompareCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare TEXT1 TEXT2",
		Short: "Compare the MinHash estimate with the exact Jaccard similarity",
		Long: `Tokenize two texts on whitespace and report their MinHash-estimated
similarity next to the exact Jaccard similarity of their token sets.

Examples:
  lshdedup compare "the cat sat" "the cat sat on the mat"

  # Longer signatures estimate more tightly
  lshdedup compare --num-perm 256 --seed 1 "a b c d" "a b c e"`,
		Args: cobra.ExactArgs(2),
		RunE: c.runCompare,
	}

	cmd.Flags().IntVar(&c.numPerm, "num-perm", c.numPerm, "MinHash signature length")
	cmd.Flags().Uint64Var(&c.seed, "seed", 0, "Seed for reproducible permutations (default: random)")
	cmd.Flags().StringVarP(&c.format, "format", "f", c.format, "Output format: text, json, yaml or csv")

	return cmd
}

// runCompare executes the compare command
func (c *CompareCommand) runCompare(cmd *cobra.Command, args []string) error {
	format, _, err := service.NewOutputFormatResolver().Parse(c.format)
	if err != nil {
		return err
	}

	var seed *uint64
	if cmd.Flags().Changed("seed") {
		seed = domain.Uint64Ptr(c.seed)
	}

	useCase, cleanup, err := newUseCase(cmd, 0)
	if err != nil {
		return err
	}
	defer cleanup()

	return useCase.Compare(cmd.Context(), domain.CompareRequest{
		Text1:        args[0],
		Text2:        args[1],
		NumPerm:      c.numPerm,
		Seed:         seed,
		OutputFormat: format,
		OutputWriter: cmd.OutOrStdout(),
	})
}

// NewCompareCmd creates and returns the compare cobra command
func NewCompareCmd() *cobra.Command {
	return NewCompareCommand().CreateCobraCommand()
}
