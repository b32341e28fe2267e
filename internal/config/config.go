// Package config handles configuration loading for corral. It
// supports XDG config paths, a project-level .corral.yaml, and
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for corral.
type Config struct {
	Corpus     CorpusConfig     `mapstructure:"corpus"`
	Partitions PartitionsConfig `mapstructure:"partitions"`
	Run        RunConfig        `mapstructure:"run"`
	Agent      AgentConfig      `mapstructure:"agent"`
}

// CorpusConfig locates the data being partitioned.
type CorpusConfig struct {
	// Dir is the corpus root, relative to the project root.
	Dir string `mapstructure:"dir"`
}

// PartitionsConfig locates the partition store.
type PartitionsConfig struct {
	// Dir is the partition record directory.
	Dir string `mapstructure:"dir"`
}

// RunConfig controls the retry loop.
type RunConfig struct {
	// MaxAttempts bounds proposal rounds per run.
	MaxAttempts int `mapstructure:"max_attempts"`
	// ChecklistID names the checklist driving this step.
	ChecklistID string `mapstructure:"checklist_id"`
}

// AgentConfig selects and configures the agent backend.
type AgentConfig struct {
	// Backend is "subprocess" (claude CLI) or "api".
	Backend string `mapstructure:"backend"`
	// Model is the Claude model; empty uses the backend default.
	Model string `mapstructure:"model"`
	// APIKey is the Anthropic API key; usually left to the
	// ANTHROPIC_API_KEY environment variable.
	APIKey string `mapstructure:"api_key"`
	// MaxIterations bounds the API backend's tool loop.
	MaxIterations int `mapstructure:"max_iterations"`
	// UseAWSBedrock routes API calls through AWS Bedrock.
	UseAWSBedrock bool `mapstructure:"use_aws_bedrock"`
	// AWSRegion is the Bedrock region.
	AWSRegion string `mapstructure:"aws_region"`
	// AWSProfile is an optional AWS shared-config profile.
	AWSProfile string `mapstructure:"aws_profile"`
}

// BackendSubprocess and BackendAPI are the known agent backends.
const (
	BackendSubprocess = "subprocess"
	BackendAPI        = "api"
)

// Load reads configuration with the following precedence, highest
// first: environment variables (CORRAL_*, ANTHROPIC_API_KEY), the
// project .corral.yaml, the user config
// (~/.config/corral/config.yaml), built-in defaults.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// User config from the XDG path.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir())
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read user config: %w", err)
		}
	}

	// Project config overrides the user config.
	if projectFile := findProjectConfig(); projectFile != "" {
		v.SetConfigFile(projectFile)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("read project config %s: %w", projectFile, err)
		}
	}

	// Environment overrides everything.
	v.SetEnvPrefix("CORRAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		v.Set("agent.api_key", key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Agent.Backend {
	case BackendSubprocess, BackendAPI:
	default:
		return fmt.Errorf("unknown agent backend %q (want %q or %q)",
			c.Agent.Backend, BackendSubprocess, BackendAPI)
	}
	if c.Run.MaxAttempts < 1 {
		return fmt.Errorf("run.max_attempts must be at least 1, got %d", c.Run.MaxAttempts)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("corpus.dir", "data")
	v.SetDefault("partitions.dir", "partitions")
	v.SetDefault("run.max_attempts", 3)
	v.SetDefault("run.checklist_id", "01_create_file_partitions")
	v.SetDefault("agent.backend", BackendSubprocess)
	v.SetDefault("agent.model", "")
	v.SetDefault("agent.max_iterations", 50)
	v.SetDefault("agent.use_aws_bedrock", false)
}

func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "corral")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "corral")
}

// findProjectConfig walks from the working directory upward looking
// for a .corral.yaml.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ".corral.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
