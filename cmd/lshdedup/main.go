package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ludo-technologies/lshdedup/internal/logger"
	"github.com/ludo-technologies/lshdedup/internal/version"
	"github.com/ludo-technologies/lshdedup/service"
	"github.com/spf13/cobra"
)

// NewRootCmd assembles the lshdedup command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lshdedup",
		Short: "Near-duplicate detection for text records",
		Long: `lshdedup groups near-duplicate text records using MinHash signatures
and banded locality-sensitive hashing.

Records are read from CSV or TSV files (optionally gzip, zstd or lz4
compressed). Each record is tokenized on whitespace, summarized as a
MinHash signature and bucketed by band; records whose estimated Jaccard
similarity reaches the threshold are linked, and linked records form
one group.

Features:
  • Near-linear grouping for large record sets
  • Reproducible runs with --seed
  • Text, CSV, JSON and YAML reports
  • Band tuning with 'lshdedup stats --target'`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose (debug) logging")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a configuration file (TOML, YAML or JSON)")

	rootCmd.AddCommand(NewDedupeCmd())
	rootCmd.AddCommand(NewQueryCmd())
	rootCmd.AddCommand(NewCompareCmd())
	rootCmd.AddCommand(NewStatsCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

func main() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

// printError reports err with its category and recovery suggestions
func printError(w io.Writer, err error) {
	categorizer := service.NewErrorCategorizer()
	categorized := categorizer.Categorize(err)

	fmt.Fprintf(w, "Error: %s\n", categorized.Category)
	fmt.Fprintf(w, "  %v\n", err)

	suggestions := categorizer.GetRecoverySuggestions(categorized.Category)
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSuggestions:")
	for _, s := range suggestions {
		fmt.Fprintf(w, "  • %s\n", s)
	}
}

// newLogger builds the logger selected by the global flags
func newLogger(cmd *cobra.Command) *logger.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	format, _ := cmd.Flags().GetString("log-format")
	return logger.FromOptions(logger.Options{
		Format:  format,
		Verbose: verbose,
		Writer:  cmd.ErrOrStderr(),
	})
}
