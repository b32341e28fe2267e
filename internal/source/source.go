// Package source fetches corpus data via sparse, shallow git
// checkouts described by YAML configuration files.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"corral/internal/exec"
)

// Config describes one data source repository.
type Config struct {
	// Name becomes the directory under the data dir.
	Name string `yaml:"name"`
	// GitURL is the HTTPS clone URL.
	GitURL string `yaml:"git_url"`
	// Branch to check out.
	Branch string `yaml:"branch"`
	// SparsePaths are the repository paths to materialize.
	SparsePaths []string `yaml:"sparse_paths"`
	// CredentialEnvVar optionally names an environment variable
	// holding an HTTPS token for private repositories.
	CredentialEnvVar string `yaml:"credential_env_var"`
}

// LoadConfig reads and validates a source config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse source config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("source config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Name == "":
		return fmt.Errorf("missing required field: name")
	case c.GitURL == "":
		return fmt.Errorf("missing required field: git_url")
	case c.Branch == "":
		return fmt.Errorf("missing required field: branch")
	case len(c.SparsePaths) == 0:
		return fmt.Errorf("sparse_paths cannot be empty")
	}
	return nil
}

// authURL injects the credential token into the HTTPS URL when the
// configured environment variable is set.
func (c *Config) authURL() string {
	if c.CredentialEnvVar == "" {
		return c.GitURL
	}
	token := os.Getenv(c.CredentialEnvVar)
	if token == "" {
		return c.GitURL
	}
	if strings.HasPrefix(c.GitURL, "https://") {
		return "https://" + token + "@" + strings.TrimPrefix(c.GitURL, "https://")
	}
	return c.GitURL
}

// Fetcher performs sparse checkouts into the data directory.
type Fetcher struct {
	cfg     *Config
	dataDir string
	runner  exec.CommandRunner
}

// NewFetcher returns a fetcher placing the source under
// dataDir/<name>.
func NewFetcher(cfg *Config, dataDir string, runner exec.CommandRunner) *Fetcher {
	return &Fetcher{cfg: cfg, dataDir: dataDir, runner: runner}
}

// TargetDir is where the checkout lands.
func (f *Fetcher) TargetDir() string {
	return filepath.Join(f.dataDir, f.cfg.Name)
}

// Clean removes any existing checkout.
func (f *Fetcher) Clean() error {
	if err := os.RemoveAll(f.TargetDir()); err != nil {
		return fmt.Errorf("clean %s: %w", f.TargetDir(), err)
	}
	return nil
}

// Fetch performs the sparse checkout: init, configure sparse
// patterns, add remote, shallow fetch, checkout. Any existing
// checkout is removed first.
func (f *Fetcher) Fetch(ctx context.Context) error {
	if err := f.Clean(); err != nil {
		return err
	}
	target := f.TargetDir()
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}

	steps := [][]string{
		{"git", "init"},
		{"git", "config", "core.sparseCheckout", "true"},
	}
	for _, step := range steps {
		if err := f.git(ctx, target, step); err != nil {
			return err
		}
	}

	sparseFile := filepath.Join(target, ".git", "info", "sparse-checkout")
	if err := os.MkdirAll(filepath.Dir(sparseFile), 0o755); err != nil {
		return fmt.Errorf("create sparse-checkout dir: %w", err)
	}
	patterns := strings.Join(f.cfg.SparsePaths, "\n") + "\n"
	if err := os.WriteFile(sparseFile, []byte(patterns), 0o644); err != nil {
		return fmt.Errorf("write sparse-checkout patterns: %w", err)
	}

	steps = [][]string{
		{"git", "remote", "add", "origin", f.cfg.authURL()},
		{"git", "fetch", "--depth=1", "origin", f.cfg.Branch},
		{"git", "checkout", f.cfg.Branch},
	}
	for _, step := range steps {
		if err := f.git(ctx, target, step); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fetcher) git(ctx context.Context, dir string, argv []string) error {
	out, err := f.runner.Run(ctx, dir, argv[0], argv[1:]...)
	if err != nil {
		// Never echo the command line: the remote URL may carry
		// an embedded credential.
		return fmt.Errorf("git %s failed: %w\n%s", argv[1], err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Stats summarizes a completed checkout.
type Stats struct {
	Files int
	Bytes int64
}

// Stat counts the files and bytes under the checkout, skipping git
// metadata.
func (f *Fetcher) Stat() (Stats, error) {
	var st Stats
	err := filepath.WalkDir(f.TargetDir(), func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		st.Files++
		st.Bytes += info.Size()
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("stat %s: %w", f.TargetDir(), err)
	}
	return st, nil
}
