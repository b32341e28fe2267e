package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"corral/internal/agent"
	"corral/internal/checklist"
)

var (
	initForce           bool
	initSkipClaudeCheck bool
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a corral project",
	Long: `Initialize a directory for use with corral.

This command sets up everything needed to run corral:
  - Verifies prerequisites (claude CLI)
  - Creates the .corral directory structure
  - Creates the partitions, checklists, and data directories
  - Creates the default partitioning checklist
  - Creates a .corral.yaml configuration template

The directory argument is optional and defaults to the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Reinitialize even if already set up")
	initCmd.Flags().BoolVar(&initSkipClaudeCheck, "skip-claude-check", false, "Skip Claude CLI availability check")
}

func runInit(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", absPath, err)
	}

	fmt.Printf("Initializing corral in %s...\n\n", absPath)

	corralDir := filepath.Join(absPath, ".corral")
	if _, err := os.Stat(corralDir); err == nil && !initForce {
		fmt.Println("Directory already initialized. Use --force to reinitialize.")
		return nil
	}

	if !initSkipClaudeCheck {
		if err := agent.CheckClaudeCLI(); err != nil {
			printStatus("✗", "Claude Code CLI not found", color.FgRed)
			return err
		}
		printStatus("✓", "Claude Code CLI found", color.FgGreen)
	}

	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		printStatus("⚠", "ANTHROPIC_API_KEY not set (you can set it later)", color.FgYellow)
	} else {
		printStatus("✓", "ANTHROPIC_API_KEY is set", color.FgGreen)
	}

	for _, dir := range []string{
		filepath.Join(corralDir, "logs"),
		filepath.Join(absPath, "partitions"),
		filepath.Join(absPath, "checklists"),
		filepath.Join(absPath, "data"),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	printStatus("✓", "Created project directory structure", color.FgGreen)

	if err := createDefaultChecklist(absPath); err != nil {
		return fmt.Errorf("creating default checklist: %w", err)
	}
	printStatus("✓", "Created default partitioning checklist", color.FgGreen)

	if err := createProjectConfig(absPath); err != nil {
		return fmt.Errorf("creating project config: %w", err)
	}
	printStatus("✓", "Created .corral.yaml template", color.FgGreen)

	fmt.Printf("\n%s corral initialization complete!\n\n", color.GreenString("✓"))
	fmt.Println("Next steps:")
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		fmt.Println("  1. Set your API key:")
		fmt.Println("     export ANTHROPIC_API_KEY=your-key-here")
		fmt.Println()
	}
	fmt.Println("  2. Fetch corpus data:")
	fmt.Println("     corral fetch <source-config.yaml>")
	fmt.Println()
	fmt.Println("  3. Run the partitioning loop:")
	fmt.Println("     corral run")

	return nil
}

// createDefaultChecklist writes the step-one checklist unless one
// already exists.
func createDefaultChecklist(projectRoot string) error {
	store := checklist.NewStore(filepath.Join(projectRoot, "checklists"))
	const id = "01_create_file_partitions"
	if _, err := store.Load(id); err == nil && !initForce {
		return nil
	}
	return store.Save(&checklist.Checklist{
		ID:          id,
		Title:       "Create File Partitions",
		Description: "Partition the corpus into disjoint, complete groups",
		Items: []checklist.Item{
			{ID: "partitions_created", Description: "Partitions created covering all data sources"},
			{ID: "partitions_validated", Description: "Partition set validated: complete and disjoint"},
		},
	})
}

// createProjectConfig creates the .corral.yaml template.
func createProjectConfig(projectRoot string) error {
	configPath := filepath.Join(projectRoot, ".corral.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	template := `# corral project configuration
# This file overrides defaults from ~/.config/corral/config.yaml

# corpus:
#   dir: data

# partitions:
#   dir: partitions

# run:
#   max_attempts: 3
#   checklist_id: 01_create_file_partitions

# agent:
#   backend: subprocess   # or: api
#   model: ""
#   max_iterations: 50
#   use_aws_bedrock: false
#   aws_region: us-west-2
`
	return os.WriteFile(configPath, []byte(template), 0644)
}

// printStatus prints a status line with color
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}
