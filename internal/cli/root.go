// Package cli wires the abacgen command surface.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "abacgen",
	Short: "Deterministic ABAC rule synthesis for policy-engine seed data",
	Long:  "Expands templated base policies and per-user attribute rules into a bounded, reproducible rule set and writes a SQL seed script for the policy engine's auth database.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
