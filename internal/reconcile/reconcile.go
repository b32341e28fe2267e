// Package reconcile checks a partition set against a corpus snapshot
// for complete, disjoint coverage and renders the diagnostics that
// drive the retry loop.
package reconcile

import (
	"sort"

	"corral/internal/corpus"
	"corral/internal/partition"
	"corral/pkg/models"
)

// Duplicate is a corpus path claimed by more than one partition.
type Duplicate struct {
	Path string `json:"path"`
	// Partitions lists every owning partition id, ascending.
	Partitions []int `json:"partitions"`
}

// Structural is a partition record that failed schema validation.
// These are a distinct diagnostic category: the agent needs to fix
// record structure, not coverage.
type Structural struct {
	File     string   `json:"file"`
	Problems []string `json:"problems"`
}

// Result is the outcome of one reconciliation pass. All slices are
// sorted so two reconciliations of the same inputs render identical
// reports regardless of partition insertion order.
type Result struct {
	// TotalPartitions counts well-formed partition records.
	TotalPartitions int `json:"total_partitions"`
	// TotalFiles is the snapshot size.
	TotalFiles int `json:"total_files"`
	// Covered counts snapshot files claimed by at least one partition.
	Covered int `json:"covered"`

	// Duplicates are paths claimed by two or more partitions.
	Duplicates []Duplicate `json:"duplicates,omitempty"`
	// Missing are snapshot paths no partition claims.
	Missing []string `json:"missing,omitempty"`
	// Invalid are literal references that resolve to no snapshot path.
	Invalid []string `json:"invalid,omitempty"`
	// Structural are malformed partition records.
	Structural []Structural `json:"structural,omitempty"`
}

// Valid reports whether the partition set is a complete, disjoint
// cover of the snapshot. All four diagnostic sets must be empty at
// once; there is no partial validity.
func (r *Result) Valid() bool {
	return len(r.Duplicates) == 0 &&
		len(r.Missing) == 0 &&
		len(r.Invalid) == 0 &&
		len(r.Structural) == 0
}

// Reconcile diffs the partitions' expanded coverage against the
// snapshot. Invalid references are reported separately and never count
// toward duplicate or missing accounting. Pure function of its inputs;
// safe to call concurrently from read-only contexts.
func Reconcile(snap *corpus.Snapshot, parts []*models.Partition, malformed []*models.MalformedPartitionError) *Result {
	result := &Result{
		TotalPartitions: len(parts),
		TotalFiles:      snap.Len(),
	}

	for _, m := range malformed {
		result.Structural = append(result.Structural, Structural{
			File:     m.File,
			Problems: append([]string(nil), m.Problems...),
		})
	}
	sort.Slice(result.Structural, func(i, j int) bool {
		return result.Structural[i].File < result.Structural[j].File
	})

	// Iterate partitions in id order so owner lists come out ascending
	// without depending on caller ordering.
	ordered := append([]*models.Partition(nil), parts...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	owners := make(map[string][]int)
	invalidSet := make(map[string]struct{})
	for _, p := range ordered {
		exp := partition.Expand(p.Paths, snap)
		for f := range exp.Files {
			owners[f] = append(owners[f], p.ID)
		}
		for _, f := range exp.Invalid {
			invalidSet[f] = struct{}{}
		}
	}

	result.Covered = len(owners)

	for f, ids := range owners {
		if len(ids) < 2 {
			continue
		}
		sort.Ints(ids)
		result.Duplicates = append(result.Duplicates, Duplicate{Path: f, Partitions: ids})
	}
	sort.Slice(result.Duplicates, func(i, j int) bool {
		if result.Duplicates[i].Path != result.Duplicates[j].Path {
			return result.Duplicates[i].Path < result.Duplicates[j].Path
		}
		return lessIntSlice(result.Duplicates[i].Partitions, result.Duplicates[j].Partitions)
	})

	for _, f := range snap.Paths() {
		if _, ok := owners[f]; !ok {
			result.Missing = append(result.Missing, f)
		}
	}

	for f := range invalidSet {
		result.Invalid = append(result.Invalid, f)
	}
	sort.Strings(result.Invalid)

	return result
}

func lessIntSlice(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
