package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "corral",
	Short: "Corpus partitioning orchestrator",
	Long: `Corral partitions a corpus of source files into disjoint, complete
groups by orchestrating a Claude agent against a validation loop.

The agent proposes partitions; corral reconciles them against the
actual corpus and feeds the full diagnostic report back to the agent
until the partition set covers every file exactly once, or the
attempt budget runs out.

Typical workflow:
  corral init                      # set up a project directory
  corral fetch sources/docs.yaml   # pull corpus data via sparse checkout
  corral run                       # orchestrate partitioning
  corral validate                  # re-check the current partition set`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(checklistCmd)
	rootCmd.AddCommand(versionCmd)
}
