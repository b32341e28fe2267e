package models

import (
	"strings"
	"testing"
)

func TestNewPartitionValidates(t *testing.T) {
	cases := []struct {
		name        string
		id          int
		title, desc string
		paths       []string
		wantErr     string
	}{
		{"valid", 1, "Docs", "all the docs", []string{"docs/"}, ""},
		{"zero id", 0, "Docs", "d", []string{"docs/"}, "at least 1"},
		{"empty title", 1, " ", "d", []string{"docs/"}, "title"},
		{"empty description", 1, "Docs", "", []string{"docs/"}, "description"},
		{"no paths", 1, "Docs", "d", nil, "at least one path"},
		{"blank path", 1, "Docs", "d", []string{"docs/", " "}, "empty"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPartition(tc.id, tc.title, tc.desc, tc.paths)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("NewPartition: %v", err)
				}
				if p.EntityOntology == nil || p.RelationshipOntology == nil {
					t.Error("ontologies not initialized to empty")
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestUnmarshalPartitionRoundtrip(t *testing.T) {
	p, err := NewPartition(2, "Networking", "network docs", []string{"docs/net/", "docs/faq.md"})
	if err != nil {
		t.Fatalf("NewPartition: %v", err)
	}
	data, err := p.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"partition_id": 2`) {
		t.Errorf("marshaled record lacks partition_id:\n%s", data)
	}

	back, err := UnmarshalPartition(data)
	if err != nil {
		t.Fatalf("UnmarshalPartition: %v", err)
	}
	if back.ID != 2 || back.Title != "Networking" || len(back.Paths) != 2 {
		t.Errorf("roundtrip = %+v", back)
	}
}

func TestUnmarshalPartitionReportsAllMissingFields(t *testing.T) {
	_, err := UnmarshalPartition([]byte(`{"title": "only title"}`))

	var malformed *MalformedPartitionError
	if !asMalformed(err, &malformed) {
		t.Fatalf("err = %v, want *MalformedPartitionError", err)
	}
	// Every missing field is named, not just the first.
	for _, field := range []string{"description", "entity_ontology", "partition_id", "paths", "relationship_ontology"} {
		if !strings.Contains(malformed.Error(), field) {
			t.Errorf("problems %v lack field %q", malformed.Problems, field)
		}
	}
}

func TestUnmarshalPartitionRejectsBadTypes(t *testing.T) {
	_, err := UnmarshalPartition([]byte(`{"partition_id": "one", "title": "t", "description": "d", "paths": ["a"], "entity_ontology": [], "relationship_ontology": []}`))

	var malformed *MalformedPartitionError
	if !asMalformed(err, &malformed) {
		t.Fatalf("err = %v, want *MalformedPartitionError", err)
	}
	if !strings.Contains(malformed.Error(), "wrong field type") {
		t.Errorf("problems = %v, want a type problem", malformed.Problems)
	}
}

func TestUnmarshalPartitionRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		data string
		want string
	}{
		{"zero id", `{"partition_id": 0, "title": "t", "description": "d", "paths": ["a"], "entity_ontology": [], "relationship_ontology": []}`, "at least 1"},
		{"empty paths", `{"partition_id": 1, "title": "t", "description": "d", "paths": [], "entity_ontology": [], "relationship_ontology": []}`, "paths cannot be empty"},
		{"blank path entry", `{"partition_id": 1, "title": "t", "description": "d", "paths": ["a", ""], "entity_ontology": [], "relationship_ontology": []}`, "paths[1]"},
		{"not json", `{{{`, "invalid JSON"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := UnmarshalPartition([]byte(tc.data))
			var malformed *MalformedPartitionError
			if !asMalformed(err, &malformed) {
				t.Fatalf("err = %v, want *MalformedPartitionError", err)
			}
			if !strings.Contains(malformed.Error(), tc.want) {
				t.Errorf("problems = %v, want containing %q", malformed.Problems, tc.want)
			}
		})
	}
}

func TestUnmarshalPartitionRequiresOntologyFields(t *testing.T) {
	// A record that drops the ontology keys is structurally broken,
	// not a partition with empty ontologies.
	_, err := UnmarshalPartition([]byte(`{"partition_id": 1, "title": "t", "description": "d", "paths": ["a"]}`))

	var malformed *MalformedPartitionError
	if !asMalformed(err, &malformed) {
		t.Fatalf("err = %v, want *MalformedPartitionError", err)
	}
	for _, field := range []string{"entity_ontology", "relationship_ontology"} {
		if !strings.Contains(malformed.Error(), field) {
			t.Errorf("problems %v lack field %q", malformed.Problems, field)
		}
	}
}

func TestUnmarshalPartitionAcceptsEmptyOntologies(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"empty arrays", `{"partition_id": 1, "title": "t", "description": "d", "paths": ["a"], "entity_ontology": [], "relationship_ontology": []}`},
		{"explicit null", `{"partition_id": 1, "title": "t", "description": "d", "paths": ["a"], "entity_ontology": null, "relationship_ontology": null}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := UnmarshalPartition([]byte(tc.data))
			if err != nil {
				t.Fatalf("UnmarshalPartition: %v", err)
			}
			if p.EntityOntology == nil || p.RelationshipOntology == nil {
				t.Error("ontologies not normalized to empty slices")
			}
		})
	}
}

func asMalformed(err error, target **MalformedPartitionError) bool {
	m, ok := err.(*MalformedPartitionError)
	if ok {
		*target = m
	}
	return ok
}
