package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"corral/internal/config"
	"corral/internal/partition"
	"corral/internal/reconcile"
)

var validateFull bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the current partition set against the corpus",
	Long: `Reconcile the partition records against the actual corpus files.

A valid partition set covers every corpus file exactly once: no
duplicates, no missing files, no references to files that do not
exist, and no malformed records.

Exits nonzero when the partition set is invalid.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateFull, "full", false, "Print the full report without truncating long file lists")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store := partition.NewStore(cfg.Partitions.Dir)
	result, err := reconcile.Check(cfg.Corpus.Dir, store)
	if err != nil {
		return err
	}

	if result.Valid() {
		fmt.Printf("%s %s\n", color.GreenString("✓"), result.Summary())
		return nil
	}

	fmt.Printf("%s %s\n\n", color.RedString("✗"), result.Summary())
	if validateFull {
		fmt.Println(result.Report())
	} else {
		fmt.Println(result.Display())
	}
	os.Exit(1)
	return nil
}
