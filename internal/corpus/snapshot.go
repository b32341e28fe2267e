// Package corpus builds immutable snapshots of the data directory that
// partitions are validated against.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Snapshot is the ground-truth file listing for one validation pass.
// It is built once, never mutated, and safe for concurrent reads.
type Snapshot struct {
	root   string
	paths  map[string]struct{}
	sorted []string
}

// Build walks the corpus root and records every regular file as a
// slash-separated path relative to the root. Anything under a .git
// directory is skipped, and symlinks are not followed.
func Build(root string) (*Snapshot, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("corpus root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root %s is not a directory", root)
	}

	paths := make(map[string]struct{})
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		paths[filepath.ToSlash(rel)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus %s: %w", root, err)
	}

	return newSnapshot(root, paths), nil
}

// FromPaths builds a snapshot from an explicit path list. Used by
// tests and by callers that already hold a listing.
func FromPaths(paths ...string) *Snapshot {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return newSnapshot("", set)
}

func newSnapshot(root string, paths map[string]struct{}) *Snapshot {
	sorted := make([]string, 0, len(paths))
	for p := range paths {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)
	return &Snapshot{root: root, paths: paths, sorted: sorted}
}

// Root returns the directory the snapshot was built from.
func (s *Snapshot) Root() string { return s.root }

// Len returns the number of files in the snapshot.
func (s *Snapshot) Len() int { return len(s.sorted) }

// Contains reports whether the exact path is in the snapshot.
func (s *Snapshot) Contains(path string) bool {
	_, ok := s.paths[path]
	return ok
}

// Paths returns the snapshot's files in lexicographic order.
// The returned slice must not be modified.
func (s *Snapshot) Paths() []string { return s.sorted }

// Under returns every snapshot path nested under the given directory.
// Matching is on path segments, so "data/foo" never captures files in
// "data/foo2". An empty dir matches the whole snapshot.
func (s *Snapshot) Under(dir string) []string {
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" {
		return s.sorted
	}
	prefix := dir + "/"
	var out []string
	for _, p := range s.sorted {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	return out
}

// TopLevelDirs returns the first-level directory names in the
// snapshot, sorted. These are the data sources the corpus holds.
func (s *Snapshot) TopLevelDirs() []string {
	seen := make(map[string]struct{})
	for _, p := range s.sorted {
		if i := strings.IndexByte(p, '/'); i > 0 {
			seen[p[:i]] = struct{}{}
		}
	}
	dirs := make([]string, 0, len(seen))
	for d := range seen {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}
