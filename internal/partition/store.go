// Package partition persists partition records and expands their path
// references into concrete file coverage.
package partition

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"corral/pkg/models"
)

// fileGlob matches persisted partition records inside the store dir.
const fileGlob = "partition_*.json"

// Store reads and writes partition records in a directory, one JSON
// file per partition. It implements the explicit id-allocator scheme:
// the next id is max existing + 1, computed per proposal round. No
// locking; exactly one orchestration run per directory is assumed.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created on
// first write, not here.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory the store persists into.
func (s *Store) Dir() string { return s.dir }

// filename returns the record path for a partition id.
func (s *Store) filename(id int) string {
	return filepath.Join(s.dir, fmt.Sprintf("partition_%02d.json", id))
}

// Save persists a partition record, overwriting any record with the
// same id.
func (s *Store) Save(p *models.Partition) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create partitions directory: %w", err)
	}
	data, err := p.Marshal()
	if err != nil {
		return fmt.Errorf("marshal partition %d: %w", p.ID, err)
	}
	if err := os.WriteFile(s.filename(p.ID), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write partition %d: %w", p.ID, err)
	}
	return nil
}

// Load reads one partition record by id.
func (s *Store) Load(id int) (*models.Partition, error) {
	data, err := os.ReadFile(s.filename(id))
	if err != nil {
		return nil, fmt.Errorf("read partition %d: %w", id, err)
	}
	p, err := models.UnmarshalPartition(data)
	if err != nil {
		var malformed *models.MalformedPartitionError
		if errors.As(err, &malformed) {
			malformed.File = filepath.Base(s.filename(id))
		}
		return nil, err
	}
	return p, nil
}

// Delete removes one partition record by id. Removing a record does
// not renumber the others; ids are never reused within a run.
func (s *Store) Delete(id int) error {
	if err := os.Remove(s.filename(id)); err != nil {
		return fmt.Errorf("delete partition %d: %w", id, err)
	}
	return nil
}

// LoadAll reads every partition record in the store, sorted by id.
// Malformed records are returned separately rather than skipped, so
// the reconciler can report them as structural diagnostics. The error
// return covers filesystem failures only.
func (s *Store) LoadAll() ([]*models.Partition, []*models.MalformedPartitionError, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, fileGlob))
	if err != nil {
		return nil, nil, fmt.Errorf("scan partitions directory: %w", err)
	}
	sort.Strings(matches)

	var parts []*models.Partition
	var malformed []*models.MalformedPartitionError
	for _, file := range matches {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", file, err)
		}
		p, err := models.UnmarshalPartition(data)
		if err != nil {
			var m *models.MalformedPartitionError
			if errors.As(err, &m) {
				m.File = filepath.Base(file)
				malformed = append(malformed, m)
				continue
			}
			return nil, nil, err
		}
		parts = append(parts, p)
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].ID < parts[j].ID })
	return parts, malformed, nil
}

// NextID returns the next available partition id: one past the
// highest id found in the store, or 1 for an empty store. Malformed
// records are ignored here; they surface during validation instead.
func (s *Store) NextID() (int, error) {
	parts, _, err := s.LoadAll()
	if err != nil {
		return 0, err
	}
	max := 0
	for _, p := range parts {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1, nil
}

// Reset removes every partition record, leaving the directory in
// place. Called before a fresh proposal run.
func (s *Store) Reset() (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, fileGlob))
	if err != nil {
		return 0, fmt.Errorf("scan partitions directory: %w", err)
	}
	for _, file := range matches {
		if err := os.Remove(file); err != nil {
			return 0, fmt.Errorf("remove %s: %w", file, err)
		}
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return 0, fmt.Errorf("create partitions directory: %w", err)
	}
	return len(matches), nil
}
