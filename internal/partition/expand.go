package partition

import (
	"path"
	"sort"
	"strings"

	"corral/internal/corpus"
)

// Expansion is the concrete coverage derived from one partition's path
// references. Files holds every snapshot path the partition claims;
// Invalid holds literal references that resolve to nothing. Invalid
// references contribute nothing to Files, so they never distort
// duplicate or missing accounting downstream.
type Expansion struct {
	Files   map[string]struct{}
	Invalid []string
}

// IsDirRef reports whether a path reference names a directory.
// The marker is a trailing slash, as written by the agent.
func IsDirRef(ref string) bool {
	return strings.HasSuffix(ref, "/")
}

// Expand resolves a partition's path references against the snapshot.
// Directory references expand to every file nested under them; a
// directory with no matching files contributes nothing. Literal
// references resolve to themselves and are invalid when absent from
// the snapshot. Pure function: same inputs, same result.
func Expand(refs []string, snap *corpus.Snapshot) Expansion {
	files := make(map[string]struct{})
	var invalid []string

	for _, ref := range refs {
		if IsDirRef(ref) {
			dir := path.Clean(strings.TrimSuffix(ref, "/"))
			// Clean turns the corpus root ("/" or "./") into ".".
			if dir == "." {
				dir = ""
			}
			for _, p := range snap.Under(dir) {
				files[p] = struct{}{}
			}
			continue
		}
		lit := path.Clean(ref)
		if !snap.Contains(lit) {
			invalid = append(invalid, lit)
			continue
		}
		files[lit] = struct{}{}
	}

	sort.Strings(invalid)
	return Expansion{Files: files, Invalid: invalid}
}
