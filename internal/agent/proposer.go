package agent

import (
	"context"
	"fmt"
	"strings"
)

// Proposer runs one agent session per proposal round and drains its
// event stream. It satisfies the orchestrator's Proposer contract: a
// returned error means the invocation itself failed, which the
// orchestrator treats as fatal.
type Proposer struct {
	factory RunnerFactory
	workDir string

	// Events, when set, receives every stream event from the session.
	Events func(StreamEvent)
}

// NewProposer creates a proposer that launches sessions from factory,
// working in workDir.
func NewProposer(factory RunnerFactory, workDir string) *Proposer {
	return &Proposer{factory: factory, workDir: workDir}
}

// Propose runs one full agent session with the given prompt, blocking
// until the session completes. No timeout is imposed here; timeout
// policy belongs to the agent backend.
func (p *Proposer) Propose(ctx context.Context, prompt string) error {
	runner := p.factory.NewRunner()

	if err := runner.Start(ctx, prompt, p.workDir); err != nil {
		return fmt.Errorf("start agent session: %w", err)
	}

	for event := range runner.Output() {
		if p.Events != nil {
			p.Events(event)
		}
	}

	if err := runner.Wait(); err != nil {
		if stderr := strings.TrimSpace(runner.Stderr()); stderr != "" {
			return fmt.Errorf("agent session failed: %w\nstderr:\n%s", err, stderr)
		}
		return fmt.Errorf("agent session failed: %w", err)
	}
	return nil
}
