package orchestrator

import (
	"fmt"

	"corral/internal/reconcile"
)

// AgentInvocationError means the agent process or API call itself
// failed. It is fatal to the run: a failed invocation is never
// retried, since the failure says nothing about partition quality.
type AgentInvocationError struct {
	Attempt int
	Err     error
}

func (e *AgentInvocationError) Error() string {
	return fmt.Sprintf("agent invocation failed on attempt %d: %v", e.Attempt, e.Err)
}

func (e *AgentInvocationError) Unwrap() error { return e.Err }

// ExhaustionError means the attempt budget is spent and the partition
// set is still invalid. It carries the final reconciliation result so
// callers can show what remained broken.
type ExhaustionError struct {
	Attempts int
	Result   *reconcile.Result
}

func (e *ExhaustionError) Error() string {
	return fmt.Sprintf("partitioning still invalid after %d attempts: %s",
		e.Attempts, e.Result.Summary())
}
