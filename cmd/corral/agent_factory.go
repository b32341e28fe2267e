package main

import (
	"fmt"

	"corral/internal/agent"
	"corral/internal/api"
	"corral/internal/config"
	"corral/internal/partition"
)

// newRunnerFactory builds the agent backend selected by config. The
// returned client is non-nil only for the API backend, where it
// carries the token tracker.
func newRunnerFactory(cfg *config.Config, store *partition.Store) (agent.RunnerFactory, *api.Client, error) {
	switch cfg.Agent.Backend {
	case config.BackendSubprocess:
		if err := agent.CheckClaudeCLI(); err != nil {
			return nil, nil, err
		}
		return &agent.SubprocessFactory{Model: cfg.Agent.Model}, nil, nil

	case config.BackendAPI:
		client, err := api.NewClient(api.ClientConfig{
			Model:         cfg.Agent.Model,
			APIKey:        cfg.Agent.APIKey,
			UseAWSBedrock: cfg.Agent.UseAWSBedrock,
			AWSRegion:     cfg.Agent.AWSRegion,
			AWSProfile:    cfg.Agent.AWSProfile,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create API client: %w", err)
		}
		executor := api.NewToolExecutor(cfg.Corpus.Dir, store)
		return &api.SessionFactory{
			Client:        client,
			Executor:      executor,
			MaxIterations: cfg.Agent.MaxIterations,
		}, client, nil
	}

	return nil, nil, fmt.Errorf("unknown agent backend %q", cfg.Agent.Backend)
}
