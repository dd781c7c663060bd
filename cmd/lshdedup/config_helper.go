package main

import (
	"github.com/ludo-technologies/lshdedup/internal/config"
	"github.com/spf13/cobra"
)

// GetExplicitFlags extracts which flags were explicitly set from a cobra command
func GetExplicitFlags(cmd *cobra.Command) map[string]bool {
	if cmd == nil {
		return map[string]bool{}
	}
	return config.NewFlagTrackerFromFlagSet(cmd.Flags()).Flags()
}
