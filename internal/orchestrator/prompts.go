package orchestrator

import (
	"fmt"
	"strings"
)

// BuildCreationPrompt renders the first-attempt prompt: the
// partitioning task plus a description of the corpus and the
// operations available to the agent.
func BuildCreationPrompt(dataDir string, sources, commands []string) string {
	var sourceLines, forbidden []string
	for _, src := range sources {
		sourceLines = append(sourceLines, fmt.Sprintf("  - `%s/%s/`", dataDir, src))
		forbidden = append(forbidden, fmt.Sprintf("- `%s/`", src))
	}
	var commandLines []string
	for _, cmd := range commands {
		commandLines = append(commandLines, fmt.Sprintf("  - `%s`", cmd))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I'm building a knowledge graph from all data sources in `%s/`.\n\n", dataDir)

	b.WriteString("## Data Sources\n")
	fmt.Fprintf(&b, "The following data sources exist in `%s/`:\n", dataDir)
	b.WriteString(strings.Join(sourceLines, "\n"))
	b.WriteString("\n\n")

	b.WriteString("## Your Task\n")
	fmt.Fprintf(&b, "Create partitions covering all files across ALL data sources in `%s/`.\n", dataDir)
	b.WriteString("- Each file must appear in exactly one partition (no duplicates, no missing files)\n")
	fmt.Fprintf(&b, "- Do NOT modify `%s/`. It is read-only.\n", dataDir)
	b.WriteString("- A single partition covering everything is not allowed. Create multiple partitions.\n\n")

	b.WriteString("## Forbidden Partition Paths\n")
	b.WriteString("You MUST NOT use an entire data source folder as a partition path. These paths are forbidden in any partition:\n")
	b.WriteString(strings.Join(forbidden, "\n"))
	b.WriteString("\nSpecify more granular subdirectories or files within each data source instead.\n\n")

	if len(commandLines) > 0 {
		b.WriteString("## Available Commands\n")
		b.WriteString("Use ONLY these commands:\n")
		b.WriteString(strings.Join(commandLines, "\n"))
		b.WriteString("\n\n")
	}

	b.WriteString("## Path Notation\n")
	fmt.Fprintf(&b, "Paths are relative to `%s/` and must include the data source folder as a prefix. Do NOT include `%s/` itself.\n", dataDir, dataDir)
	b.WriteString("- Directory: `source-a/subfolder/` = ALL files under that directory\n")
	b.WriteString("- Specific file: `source-a/docs/file.md` = single file\n\n")

	b.WriteString("When all partitions are created, validate them and finish once validation passes.\n")
	return b.String()
}

// BuildRetryPrompt renders the feedback prompt for attempts after the
// first: the previous round's full diagnostic report plus the repair
// instructions.
func BuildRetryPrompt(report, dataDir string) string {
	var b strings.Builder
	b.WriteString("The partitions you created have validation errors. Please fix them.\n\n")
	b.WriteString("VALIDATION ERRORS:\n")
	b.WriteString(report)
	b.WriteString("\n\nPlease:\n")
	b.WriteString("1. Review the errors above\n")
	b.WriteString("2. Delete the problematic partitions\n")
	b.WriteString("3. Create corrected partitions\n")
	fmt.Fprintf(&b, "4. Ensure complete and disjoint coverage of all files in `%s/`\n\n", dataDir)
	b.WriteString("Remember:\n")
	b.WriteString("- Each file must appear in exactly ONE partition (no duplicates)\n")
	b.WriteString("- ALL files must be covered (no missing files)\n")
	b.WriteString("- Use \"path/to/directory/\" (with trailing slash) to include all files in a directory\n\n")
	b.WriteString("Once you've fixed the issues, validate the partitions again to verify.\n")
	return b.String()
}
