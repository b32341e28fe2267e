// Package checklist manages the JSON checklists that gate workflow
// steps. Each checklist lives in its own file under the checklists
// directory and tracks per-item completion.
package checklist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Item is a single checklist entry.
type Item struct {
	ID          string            `json:"item_id"`
	Description string            `json:"description"`
	Completed   bool              `json:"completed"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Checklist is a named group of items persisted as one JSON file.
type Checklist struct {
	ID          string `json:"checklist_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Items       []Item `json:"items"`
}

// Progress reports completed and total item counts.
func (c *Checklist) Progress() (done, total int) {
	for _, it := range c.Items {
		if it.Completed {
			done++
		}
	}
	return done, len(c.Items)
}

// Complete reports whether every item is checked off.
func (c *Checklist) Complete() bool {
	done, total := c.Progress()
	return done == total
}

// Store reads and writes checklists under a directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created
// lazily on the first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the checklist directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Load reads the checklist with the given id.
func (s *Store) Load(id string) (*Checklist, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("load checklist %s: %w", id, err)
	}
	var c Checklist
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse checklist %s: %w", id, err)
	}
	return &c, nil
}

// Save writes the checklist to its file.
func (s *Store) Save(c *Checklist) error {
	if c.ID == "" {
		return fmt.Errorf("checklist has no id")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create checklist dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checklist %s: %w", c.ID, err)
	}
	if err := os.WriteFile(s.path(c.ID), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write checklist %s: %w", c.ID, err)
	}
	return nil
}

// List returns the ids of all stored checklists in sorted order.
func (s *Store) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list checklists: %w", err)
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		base := filepath.Base(m)
		ids = append(ids, base[:len(base)-len(".json")])
	}
	sort.Strings(ids)
	return ids, nil
}

// CheckOff marks one item complete, stamps the completion time, and
// merges any extra metadata.
func (s *Store) CheckOff(id, itemID string, metadata map[string]string) error {
	c, err := s.Load(id)
	if err != nil {
		return err
	}
	for i := range c.Items {
		if c.Items[i].ID != itemID {
			continue
		}
		c.Items[i].Completed = true
		if c.Items[i].Metadata == nil {
			c.Items[i].Metadata = make(map[string]string)
		}
		c.Items[i].Metadata["completed_at"] = time.Now().UTC().Format(time.RFC3339)
		for k, v := range metadata {
			c.Items[i].Metadata[k] = v
		}
		return s.Save(c)
	}
	return fmt.Errorf("item %q not found in checklist %s", itemID, id)
}

// Reset unchecks every item and clears completion metadata.
func (s *Store) Reset(id string) error {
	c, err := s.Load(id)
	if err != nil {
		return err
	}
	for i := range c.Items {
		c.Items[i].Completed = false
		delete(c.Items[i].Metadata, "completed_at")
		if len(c.Items[i].Metadata) == 0 {
			c.Items[i].Metadata = nil
		}
	}
	return s.Save(c)
}
