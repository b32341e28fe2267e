package reconcile

import (
	"fmt"
	"strings"
)

// maxMissingDisplay caps the missing-file listing in the human-facing
// report. The machine-readable report is never truncated: the agent
// cannot fix files it was never told about.
const maxMissingDisplay = 30

// Report renders the complete machine-readable diagnostic report.
// Empty sections are omitted; a fully valid result renders "".
func (r *Result) Report() string {
	return r.render(0)
}

// Display renders the human-facing variant, capping the missing-file
// listing and appending a count of the remainder.
func (r *Result) Display() string {
	return r.render(maxMissingDisplay)
}

func (r *Result) render(missingCap int) string {
	var sections []string

	if len(r.Structural) > 0 {
		var b strings.Builder
		b.WriteString("STRUCTURAL ERRORS (partition records failing schema validation):\n")
		for _, s := range r.Structural {
			for _, problem := range s.Problems {
				fmt.Fprintf(&b, "  - %s: %s\n", s.File, problem)
			}
		}
		fmt.Fprintf(&b, "Fix the record structure of these %d partition file(s); coverage was not counted for them.", len(r.Structural))
		sections = append(sections, b.String())
	}

	if len(r.Duplicates) > 0 {
		var b strings.Builder
		b.WriteString("DUPLICATE FILES (appearing in multiple partitions):\n")
		for _, d := range r.Duplicates {
			fmt.Fprintf(&b, "  - %s\n", d.Path)
			fmt.Fprintf(&b, "    Found in partitions: %s\n", joinInts(d.Partitions))
		}
		b.WriteString("Remove each of these files from all but one partition.")
		sections = append(sections, b.String())
	}

	if len(r.Missing) > 0 {
		var b strings.Builder
		b.WriteString("MISSING FILES (in the corpus but not in any partition):\n")
		shown := r.Missing
		if missingCap > 0 && len(shown) > missingCap {
			shown = shown[:missingCap]
		}
		for _, f := range shown {
			fmt.Fprintf(&b, "  - %s\n", f)
		}
		if remaining := len(r.Missing) - len(shown); remaining > 0 {
			fmt.Fprintf(&b, "  ... and %d more files\n", remaining)
		}
		fmt.Fprintf(&b, "Add these %d file(s) to an appropriate partition.", len(r.Missing))
		sections = append(sections, b.String())
	}

	if len(r.Invalid) > 0 {
		var b strings.Builder
		b.WriteString("INVALID FILES (referenced in partitions but not found in corpus):\n")
		for _, f := range r.Invalid {
			fmt.Fprintf(&b, "  - %s\n", f)
		}
		fmt.Fprintf(&b, "Remove these %d invalid reference(s) from the partitions.", len(r.Invalid))
		sections = append(sections, b.String())
	}

	return strings.Join(sections, "\n\n")
}

// Summary returns a one-line account of the pass, for logs and the
// status command.
func (r *Result) Summary() string {
	if r.Valid() {
		return fmt.Sprintf("valid: %d partitions cover all %d files exactly once", r.TotalPartitions, r.TotalFiles)
	}
	return fmt.Sprintf("invalid: %d duplicate, %d missing, %d invalid, %d structural (%d/%d files covered)",
		len(r.Duplicates), len(r.Missing), len(r.Invalid), len(r.Structural), r.Covered, r.TotalFiles)
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}
