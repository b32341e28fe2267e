// Package agent abstracts the external partitioning agent behind a
// runner interface with subprocess and direct-API backends.
package agent

import (
	"context"
	"encoding/json"
)

// StreamEventType classifies events streamed by a running agent.
type StreamEventType string

const (
	// StreamEventSystem is a session setup message.
	StreamEventSystem StreamEventType = "system"
	// StreamEventAssistant is assistant text or a tool invocation.
	StreamEventAssistant StreamEventType = "assistant"
	// StreamEventUser is a tool result echoed back to the model.
	StreamEventUser StreamEventType = "user"
	// StreamEventResult is the final message of a session.
	StreamEventResult StreamEventType = "result"
	// StreamEventError is a failure report.
	StreamEventError StreamEventType = "error"
)

// StreamEvent is one parsed event from an agent session.
type StreamEvent struct {
	Type StreamEventType `json:"type"`
	// Message carries assistant or result text.
	Message string `json:"message,omitempty"`
	// Error carries failure details when Type is StreamEventError.
	Error string `json:"error,omitempty"`
	// ToolAction is a short description of a tool call, e.g.
	// "create_partition: AWS Integration (4 paths)".
	ToolAction string `json:"tool_action,omitempty"`
	// Raw is the original payload, for debugging.
	Raw json.RawMessage `json:"-"`
}

// Runner is one agent session. Start launches it; Output streams its
// events until completion; Wait blocks for the terminal status. A
// Runner is single-use.
type Runner interface {
	// Start launches the agent with the given prompt in workDir.
	Start(ctx context.Context, prompt, workDir string) error
	// Output returns the event stream. Closed when the session ends.
	Output() <-chan StreamEvent
	// Wait blocks until the session completes and returns its error.
	Wait() error
	// Kill terminates the session immediately.
	Kill() error
	// Stderr returns captured stderr, empty for API sessions.
	Stderr() string
}

// RunnerFactory creates a fresh Runner per proposal round.
type RunnerFactory interface {
	NewRunner() Runner
}
