package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate points every config source at empty temp directories so a
// developer's real config cannot leak into the test.
func isolate(t *testing.T) string {
	t.Helper()
	project := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Chdir(project)
	return project
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Corpus.Dir != "data" {
		t.Errorf("Corpus.Dir = %q, want %q", cfg.Corpus.Dir, "data")
	}
	if cfg.Partitions.Dir != "partitions" {
		t.Errorf("Partitions.Dir = %q, want %q", cfg.Partitions.Dir, "partitions")
	}
	if cfg.Run.MaxAttempts != 3 {
		t.Errorf("Run.MaxAttempts = %d, want 3", cfg.Run.MaxAttempts)
	}
	if cfg.Run.ChecklistID != "01_create_file_partitions" {
		t.Errorf("Run.ChecklistID = %q", cfg.Run.ChecklistID)
	}
	if cfg.Agent.Backend != BackendSubprocess {
		t.Errorf("Agent.Backend = %q, want %q", cfg.Agent.Backend, BackendSubprocess)
	}
	if cfg.Agent.MaxIterations != 50 {
		t.Errorf("Agent.MaxIterations = %d, want 50", cfg.Agent.MaxIterations)
	}
}

func TestLoadProjectConfig(t *testing.T) {
	project := isolate(t)

	yaml := strings.Join([]string{
		"corpus:",
		"  dir: corpus",
		"run:",
		"  max_attempts: 5",
		"agent:",
		"  backend: api",
		"  model: claude-sonnet-4-20250514",
	}, "\n")
	if err := os.WriteFile(filepath.Join(project, ".corral.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Corpus.Dir != "corpus" {
		t.Errorf("Corpus.Dir = %q, want %q", cfg.Corpus.Dir, "corpus")
	}
	if cfg.Run.MaxAttempts != 5 {
		t.Errorf("Run.MaxAttempts = %d, want 5", cfg.Run.MaxAttempts)
	}
	if cfg.Agent.Backend != BackendAPI {
		t.Errorf("Agent.Backend = %q, want %q", cfg.Agent.Backend, BackendAPI)
	}
	if cfg.Agent.Model != "claude-sonnet-4-20250514" {
		t.Errorf("Agent.Model = %q", cfg.Agent.Model)
	}
	// Unset keys keep their defaults.
	if cfg.Partitions.Dir != "partitions" {
		t.Errorf("Partitions.Dir = %q, want default", cfg.Partitions.Dir)
	}
}

func TestLoadFindsProjectConfigInParent(t *testing.T) {
	project := isolate(t)

	yaml := "run:\n  max_attempts: 7\n"
	if err := os.WriteFile(filepath.Join(project, ".corral.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(project, "cmd", "deep")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(sub)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Run.MaxAttempts != 7 {
		t.Errorf("Run.MaxAttempts = %d, want 7", cfg.Run.MaxAttempts)
	}
}

func TestLoadEnvOverridesProjectConfig(t *testing.T) {
	project := isolate(t)

	yaml := "run:\n  max_attempts: 5\nagent:\n  backend: api\n"
	if err := os.WriteFile(filepath.Join(project, ".corral.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CORRAL_RUN_MAX_ATTEMPTS", "2")
	t.Setenv("CORRAL_AGENT_BACKEND", "subprocess")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Run.MaxAttempts != 2 {
		t.Errorf("Run.MaxAttempts = %d, want 2", cfg.Run.MaxAttempts)
	}
	if cfg.Agent.Backend != BackendSubprocess {
		t.Errorf("Agent.Backend = %q, want %q", cfg.Agent.Backend, BackendSubprocess)
	}
}

func TestLoadAnthropicAPIKeyEnv(t *testing.T) {
	isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Agent.APIKey != "sk-ant-test" {
		t.Errorf("Agent.APIKey = %q, want %q", cfg.Agent.APIKey, "sk-ant-test")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown backend",
			yaml: "agent:\n  backend: telepathy\n",
			want: "unknown agent backend",
		},
		{
			name: "zero max attempts",
			yaml: "run:\n  max_attempts: 0\n",
			want: "max_attempts",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project := isolate(t)
			if err := os.WriteFile(filepath.Join(project, ".corral.yaml"), []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want substring %q", err, tt.want)
			}
		})
	}
}
