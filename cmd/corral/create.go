package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"corral/internal/partition"
	"corral/pkg/models"
)

var createPartitionsDir string

var createCmd = &cobra.Command{
	Use:   "create <title> <description> <path> [path...]",
	Short: "Create a partition record",
	Long: `Create a new partition record with an auto-incrementing id.

Paths are relative to the corpus directory. A path ending with "/"
claims every file under that directory; any other path claims a
single file.

Example:
  corral create "Networking guides" \
    "Network configuration and troubleshooting docs" \
    product-docs/networking/ product-docs/faq.md`,
	Args: cobra.MinimumNArgs(3),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createPartitionsDir, "partitions-dir", "partitions", "Partition record directory")
}

func runCreate(cmd *cobra.Command, args []string) error {
	store := partition.NewStore(createPartitionsDir)

	id, err := store.NextID()
	if err != nil {
		return err
	}

	p, err := models.NewPartition(id, args[0], args[1], args[2:])
	if err != nil {
		return err
	}
	if err := store.Save(p); err != nil {
		return err
	}

	fmt.Printf("%s Created partition %d: %s (%d paths)\n",
		color.GreenString("✓"), p.ID, p.Title, len(p.Paths))
	return nil
}
