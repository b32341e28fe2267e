package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"corral/internal/exec"
	"corral/internal/source"
)

var (
	fetchDataDir   string
	fetchCleanOnly bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <source-config.yaml>",
	Short: "Fetch a data source via sparse git checkout",
	Long: `Fetch corpus data using a shallow, sparse git checkout.

The YAML config names the repository, branch, and the paths to
materialize:

  name: product-docs
  git_url: https://github.com/example/product-docs
  branch: main
  sparse_paths:
    - docs/
    - guides/
  credential_env_var: DOCS_GIT_TOKEN   # optional, for private repos

The checkout lands under <data-dir>/<name>. Any existing checkout of
the same source is removed first.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchDataDir, "data-dir", "data", "Base directory for corpus data")
	fetchCmd.Flags().BoolVar(&fetchCleanOnly, "clean-only", false, "Only remove the existing checkout, without fetching")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := source.LoadConfig(args[0])
	if err != nil {
		return err
	}

	fetcher := source.NewFetcher(cfg, fetchDataDir, exec.NewRunner())

	if fetchCleanOnly {
		if err := fetcher.Clean(); err != nil {
			return err
		}
		fmt.Printf("%s Cleaned %s\n", color.GreenString("✓"), fetcher.TargetDir())
		return nil
	}

	fmt.Printf("Fetching %s from %s (%d sparse paths)...\n",
		cfg.Name, cfg.GitURL, len(cfg.SparsePaths))

	if err := fetcher.Fetch(cmd.Context()); err != nil {
		return err
	}

	stats, err := fetcher.Stat()
	if err != nil {
		return err
	}

	fmt.Printf("\n%s Fetched %s\n", color.GreenString("✓"), cfg.Name)
	fmt.Printf("  Location: %s\n", fetcher.TargetDir())
	fmt.Printf("  Files: %d\n", stats.Files)
	fmt.Printf("  Size: %s\n", humanSize(stats.Bytes))
	return nil
}

func humanSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	case n < 1024*1024*1024:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	default:
		return fmt.Sprintf("%.2f GB", float64(n)/(1024*1024*1024))
	}
}
