package partition

import (
	"reflect"
	"sort"
	"testing"

	"corral/internal/corpus"
)

func sortedFiles(e Expansion) []string {
	out := make([]string, 0, len(e.Files))
	for f := range e.Files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func TestExpandDirectoryRef(t *testing.T) {
	snap := corpus.FromPaths(
		"docs/net/a.md",
		"docs/net/deep/b.md",
		"docs/other.md",
	)

	exp := Expand([]string{"docs/net/"}, snap)

	want := []string{"docs/net/a.md", "docs/net/deep/b.md"}
	if got := sortedFiles(exp); !reflect.DeepEqual(got, want) {
		t.Errorf("files = %v, want %v", got, want)
	}
	if len(exp.Invalid) != 0 {
		t.Errorf("invalid = %v, want none", exp.Invalid)
	}
}

func TestExpandDirRefMatchesSegments(t *testing.T) {
	// "docs/net/" must not capture files under "docs/net2/".
	snap := corpus.FromPaths(
		"docs/net/a.md",
		"docs/net2/b.md",
	)

	exp := Expand([]string{"docs/net/"}, snap)

	want := []string{"docs/net/a.md"}
	if got := sortedFiles(exp); !reflect.DeepEqual(got, want) {
		t.Errorf("files = %v, want %v", got, want)
	}
}

func TestExpandLiteralRef(t *testing.T) {
	snap := corpus.FromPaths("docs/a.md", "docs/b.md")

	exp := Expand([]string{"docs/a.md"}, snap)

	want := []string{"docs/a.md"}
	if got := sortedFiles(exp); !reflect.DeepEqual(got, want) {
		t.Errorf("files = %v, want %v", got, want)
	}
}

func TestExpandInvalidLiteralExcludedFromFiles(t *testing.T) {
	snap := corpus.FromPaths("docs/a.md")

	exp := Expand([]string{"docs/a.md", "docs/ghost.md"}, snap)

	if got := sortedFiles(exp); !reflect.DeepEqual(got, []string{"docs/a.md"}) {
		t.Errorf("files = %v, want only docs/a.md", got)
	}
	if want := []string{"docs/ghost.md"}; !reflect.DeepEqual(exp.Invalid, want) {
		t.Errorf("invalid = %v, want %v", exp.Invalid, want)
	}
}

func TestExpandEmptyDirRefMatchesNothing(t *testing.T) {
	// A directory reference naming a directory with no files under it
	// contributes nothing and is not reported as invalid.
	snap := corpus.FromPaths("docs/a.md")

	exp := Expand([]string{"missing-dir/"}, snap)

	if len(exp.Files) != 0 {
		t.Errorf("files = %v, want none", sortedFiles(exp))
	}
	if len(exp.Invalid) != 0 {
		t.Errorf("invalid = %v, want none", exp.Invalid)
	}
}

func TestExpandRootDirRefMatchesEverything(t *testing.T) {
	snap := corpus.FromPaths("a.md", "docs/b.md")

	exp := Expand([]string{"/"}, snap)

	want := []string{"a.md", "docs/b.md"}
	if got := sortedFiles(exp); !reflect.DeepEqual(got, want) {
		t.Errorf("files = %v, want %v", got, want)
	}
}

func TestExpandCleansLiteralRefs(t *testing.T) {
	snap := corpus.FromPaths("docs/a.md")

	exp := Expand([]string{"docs/./a.md"}, snap)

	if got := sortedFiles(exp); !reflect.DeepEqual(got, []string{"docs/a.md"}) {
		t.Errorf("files = %v, want docs/a.md", got)
	}
}

func TestExpandCleansDirRefs(t *testing.T) {
	snap := corpus.FromPaths("docs/net/a.md", "docs/b.md")

	cases := []struct {
		name string
		ref  string
		want []string
	}{
		{"leading dot-slash", "./docs/", []string{"docs/b.md", "docs/net/a.md"}},
		{"doubled separator", "docs//net/", []string{"docs/net/a.md"}},
		{"interior dot segment", "docs/./net/", []string{"docs/net/a.md"}},
		{"dot-slash root", "./", []string{"docs/b.md", "docs/net/a.md"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exp := Expand([]string{tc.ref}, snap)
			if got := sortedFiles(exp); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("files = %v, want %v", got, tc.want)
			}
			if len(exp.Invalid) != 0 {
				t.Errorf("invalid = %v, want none", exp.Invalid)
			}
		})
	}
}

func TestExpandDeterministic(t *testing.T) {
	snap := corpus.FromPaths("a.md", "b.md", "c.md")
	refs := []string{"ghost2.md", "ghost1.md", "a.md"}

	first := Expand(refs, snap)
	second := Expand(refs, snap)

	if !reflect.DeepEqual(first.Invalid, second.Invalid) {
		t.Errorf("invalid order unstable: %v vs %v", first.Invalid, second.Invalid)
	}
	if want := []string{"ghost1.md", "ghost2.md"}; !reflect.DeepEqual(first.Invalid, want) {
		t.Errorf("invalid = %v, want sorted %v", first.Invalid, want)
	}
}

func TestIsDirRef(t *testing.T) {
	cases := []struct {
		ref  string
		want bool
	}{
		{"docs/", true},
		{"docs/a.md", false},
		{"/", true},
		{"a", false},
	}
	for _, tc := range cases {
		if got := IsDirRef(tc.ref); got != tc.want {
			t.Errorf("IsDirRef(%q) = %v, want %v", tc.ref, got, tc.want)
		}
	}
}
