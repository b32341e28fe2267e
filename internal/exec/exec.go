// Package exec provides an interface for command execution so that
// callers shelling out to git can be tested without a real repository.
package exec

import (
	"context"
	"os/exec"
)

// CommandRunner runs external commands.
type CommandRunner interface {
	// Run executes a command and returns combined stdout/stderr
	// output. The working directory is set to workDir if non-empty.
	Run(ctx context.Context, workDir string, name string, args ...string) (output []byte, err error)
}

// Runner implements CommandRunner using os/exec.
type Runner struct{}

// NewRunner creates a new Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes a command and returns combined stdout/stderr output.
func (r *Runner) Run(ctx context.Context, workDir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if workDir != "" {
		cmd.Dir = workDir
	}
	return cmd.CombinedOutput()
}

var _ CommandRunner = (*Runner)(nil)
