// Package models contains the shared data structures for corral.
package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Partition is one slice of the corpus: a set of path references that
// together claim ownership of files. Records are persisted as
// individual JSON files in the partition directory.
type Partition struct {
	// ID is the numeric partition identifier, 1-indexed. Ids are
	// allocated as max existing + 1 and never reused within a run.
	ID int `json:"partition_id"`
	// Title is a short human-readable name.
	Title string `json:"title"`
	// Description explains what the partition covers.
	Description string `json:"description"`
	// Paths are the path references. A reference with a trailing
	// slash claims a directory subtree; otherwise it claims one file.
	Paths []string `json:"paths"`
	// EntityOntology and RelationshipOntology are filled by later
	// workflow steps and start empty.
	EntityOntology       []json.RawMessage `json:"entity_ontology"`
	RelationshipOntology []json.RawMessage `json:"relationship_ontology"`
}

// NewPartition builds a partition record, validating the fields that
// must be present before it can be persisted.
func NewPartition(id int, title, description string, paths []string) (*Partition, error) {
	if id < 1 {
		return nil, fmt.Errorf("partition id must be at least 1, got %d", id)
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("partition title cannot be empty")
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("partition description cannot be empty")
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("partition must have at least one path")
	}
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("partition paths cannot contain empty entries")
		}
	}
	return &Partition{
		ID:                   id,
		Title:                title,
		Description:          description,
		Paths:                append([]string(nil), paths...),
		EntityOntology:       []json.RawMessage{},
		RelationshipOntology: []json.RawMessage{},
	}, nil
}

// Marshal renders the record as indented JSON.
func (p *Partition) Marshal() ([]byte, error) {
	if p.EntityOntology == nil {
		p.EntityOntology = []json.RawMessage{}
	}
	if p.RelationshipOntology == nil {
		p.RelationshipOntology = []json.RawMessage{}
	}
	return json.MarshalIndent(p, "", "  ")
}

// MalformedPartitionError describes a partition record that could not
// be parsed into a usable Partition. It is a structural diagnostic,
// distinct from coverage problems: the reconciler reports it without
// failing the validation pass.
type MalformedPartitionError struct {
	// File is the record filename, set by the store.
	File string
	// Problems lists everything wrong with the record.
	Problems []string
}

func (e *MalformedPartitionError) Error() string {
	return fmt.Sprintf("malformed partition record %s: %s", e.File, strings.Join(e.Problems, "; "))
}

// requiredFields are the keys every partition record must carry.
var requiredFields = []string{
	"partition_id",
	"title",
	"description",
	"paths",
	"entity_ontology",
	"relationship_ontology",
}

// UnmarshalPartition parses a partition record. Structural problems
// return a *MalformedPartitionError with every problem listed, not
// just the first.
func UnmarshalPartition(data []byte) (*Partition, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedPartitionError{Problems: []string{fmt.Sprintf("invalid JSON: %v", err)}}
	}

	var problems []string
	var missing []string
	for _, field := range requiredFields {
		if _, ok := raw[field]; !ok {
			missing = append(missing, field)
		}
	}
	sort.Strings(missing)
	for _, field := range missing {
		problems = append(problems, fmt.Sprintf("missing required field %q", field))
	}

	var p Partition
	if err := json.Unmarshal(data, &p); err != nil {
		problems = append(problems, fmt.Sprintf("wrong field type: %v", err))
		return nil, &MalformedPartitionError{Problems: problems}
	}

	if _, ok := raw["partition_id"]; ok && p.ID < 1 {
		problems = append(problems, fmt.Sprintf("partition_id must be at least 1, got %d", p.ID))
	}
	if _, ok := raw["paths"]; ok {
		if len(p.Paths) == 0 {
			problems = append(problems, "paths cannot be empty")
		}
		for i, ref := range p.Paths {
			if strings.TrimSpace(ref) == "" {
				problems = append(problems, fmt.Sprintf("paths[%d] is empty", i))
			}
		}
	}

	if len(problems) > 0 {
		return nil, &MalformedPartitionError{Problems: problems}
	}

	if p.EntityOntology == nil {
		p.EntityOntology = []json.RawMessage{}
	}
	if p.RelationshipOntology == nil {
		p.RelationshipOntology = []json.RawMessage{}
	}
	return &p, nil
}
