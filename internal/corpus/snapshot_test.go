package corpus

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(full, []byte("x"), 0644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestBuildListsRegularFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/a.md")
	writeFile(t, root, "docs/sub/b.md")
	writeFile(t, root, "top.md")

	snap, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []string{"docs/a.md", "docs/sub/b.md", "top.md"}
	if !reflect.DeepEqual(snap.Paths(), want) {
		t.Errorf("Paths() = %v, want %v", snap.Paths(), want)
	}
	if snap.Len() != 3 {
		t.Errorf("Len() = %d, want 3", snap.Len())
	}
	if !snap.Contains("docs/a.md") || snap.Contains("docs/missing.md") {
		t.Error("Contains gave wrong membership")
	}
}

func TestBuildSkipsGitDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md")
	writeFile(t, root, ".git/config")
	writeFile(t, root, "sub/.git/objects/x")

	snap, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !reflect.DeepEqual(snap.Paths(), []string{"a.md"}) {
		t.Errorf("Paths() = %v, want only a.md", snap.Paths())
	}
}

func TestBuildRejectsNonDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file.md")

	if _, err := Build(filepath.Join(root, "file.md")); err == nil {
		t.Error("Build on a file succeeded, want error")
	}
	if _, err := Build(filepath.Join(root, "missing")); err == nil {
		t.Error("Build on missing dir succeeded, want error")
	}
}

func TestUnderMatchesSegments(t *testing.T) {
	snap := FromPaths(
		"docs/net/a.md",
		"docs/net/deep/b.md",
		"docs/net2/c.md",
		"other/d.md",
	)

	cases := []struct {
		dir  string
		want []string
	}{
		{"docs/net", []string{"docs/net/a.md", "docs/net/deep/b.md"}},
		{"docs/net/", []string{"docs/net/a.md", "docs/net/deep/b.md"}},
		{"docs/net2", []string{"docs/net2/c.md"}},
		{"nothing", nil},
		{"", []string{"docs/net/a.md", "docs/net/deep/b.md", "docs/net2/c.md", "other/d.md"}},
	}
	for _, tc := range cases {
		if got := snap.Under(tc.dir); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Under(%q) = %v, want %v", tc.dir, got, tc.want)
		}
	}
}

func TestTopLevelDirs(t *testing.T) {
	snap := FromPaths(
		"zeta/a.md",
		"alpha/b.md",
		"alpha/sub/c.md",
		"rootfile.md",
	)

	want := []string{"alpha", "zeta"}
	if got := snap.TopLevelDirs(); !reflect.DeepEqual(got, want) {
		t.Errorf("TopLevelDirs() = %v, want %v", got, want)
	}
}
