package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"corral/internal/config"
	"corral/internal/partition"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the current partition records",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store := partition.NewStore(cfg.Partitions.Dir)
	parts, malformed, err := store.LoadAll()
	if err != nil {
		return err
	}

	if len(parts) == 0 && len(malformed) == 0 {
		fmt.Println("No partitions found.")
		return nil
	}

	for _, p := range parts {
		fmt.Printf("[%d] %s (%d paths)\n", p.ID, color.CyanString(p.Title), len(p.Paths))
		fmt.Printf("    %s\n", p.Description)
		for _, ref := range p.Paths {
			fmt.Printf("    - %s\n", ref)
		}
	}

	for _, m := range malformed {
		fmt.Printf("%s %s is malformed:\n", color.RedString("✗"), m.File)
		for _, problem := range m.Problems {
			fmt.Printf("    - %s\n", problem)
		}
	}

	fmt.Printf("\n%d partitions, %d malformed\n", len(parts), len(malformed))
	return nil
}
