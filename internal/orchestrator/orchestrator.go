// Package orchestrator drives the propose → validate → retry cycle
// against the external partitioning agent.
package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"corral/internal/reconcile"
)

// DefaultMaxAttempts is the retry budget for a run.
const DefaultMaxAttempts = 3

// Phase is the orchestrator's position in the run state machine.
type Phase string

const (
	// PhaseProposing means the agent is being invoked for a proposal round.
	PhaseProposing Phase = "proposing"
	// PhaseValidating means the current partition set is being reconciled.
	PhaseValidating Phase = "validating"
	// PhaseRetrying means validation failed with budget remaining.
	PhaseRetrying Phase = "retrying"
	// PhaseSucceeded is terminal: the partition set is a complete,
	// disjoint cover of the corpus.
	PhaseSucceeded Phase = "succeeded"
	// PhaseExhausted is terminal: the attempt budget is spent and the
	// set is still invalid.
	PhaseExhausted Phase = "exhausted"
)

// Terminal reports whether the phase ends the run.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseExhausted
}

// Proposer runs one proposal round: it invokes the agent with the
// given prompt and returns once the agent has finished persisting its
// partition set. The orchestrator never inspects what the agent did;
// it re-validates whatever partitions exist afterward.
type Proposer interface {
	Propose(ctx context.Context, prompt string) error
}

// Checker runs one validation pass over the current partition set.
type Checker func() (*reconcile.Result, error)

// AttemptRecorder journals attempt lifecycle events.
type AttemptRecorder interface {
	AttemptStarted(attempt int) error
	AttemptFinished(attempt int, status, detail string) error
}

// EventType classifies orchestrator progress events.
type EventType string

const (
	EventAttemptStarted EventType = "attempt_started"
	EventValidating     EventType = "validating"
	EventRetrying       EventType = "retrying"
	EventSucceeded      EventType = "succeeded"
	EventExhausted      EventType = "exhausted"
)

// Event is a progress notification for display surfaces.
type Event struct {
	Type    EventType
	Attempt int
	Message string
}

// State is the explicit run state threaded through Step. There is no
// shared mutable attempt counter: each transition takes a state value
// and returns the next one.
type State struct {
	// Phase is the current state-machine phase.
	Phase Phase
	// Attempt is the current attempt number, 1-indexed.
	Attempt int
	// Feedback is the previous attempt's full diagnostic report,
	// carried into the next proposal prompt. Empty on attempt 1.
	Feedback string
	// Last is the most recent reconciliation result, if any.
	Last *reconcile.Result
}

// NewState returns the initial run state.
func NewState() State {
	return State{Phase: PhaseProposing, Attempt: 1}
}

// Config holds the orchestrator's inputs.
type Config struct {
	// MaxAttempts bounds the retry loop. Zero means DefaultMaxAttempts.
	MaxAttempts int
	// DataDir is the corpus location named in prompts.
	DataDir string
	// Sources are the top-level data source directories.
	Sources []string
	// Commands are the operations offered to the agent in the prompt.
	Commands []string
}

// Orchestrator coordinates proposal rounds and validation passes.
// Single-threaded and synchronous; the only blocking call is the
// agent invocation, which carries no timeout of its own.
type Orchestrator struct {
	cfg      Config
	proposer Proposer
	check    Checker
	log      *zap.Logger

	// Journal, when set, records attempt lifecycle rows.
	Journal AttemptRecorder
	// Events, when set, receives progress notifications.
	Events func(Event)
}

// New creates an orchestrator. The logger must be non-nil; pass
// zap.NewNop() to discard.
func New(cfg Config, proposer Proposer, check Checker, log *zap.Logger) *Orchestrator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Orchestrator{cfg: cfg, proposer: proposer, check: check, log: log}
}

func (o *Orchestrator) emit(e Event) {
	if o.Events != nil {
		o.Events(e)
	}
}

// record writes a journal row, logging instead of failing the run on
// journal errors.
func (o *Orchestrator) record(f func() error) {
	if err := f(); err != nil {
		o.log.Warn("journal write failed", zap.Error(err))
	}
}

// Step advances the run by exactly one state-machine transition.
// Stepping a terminal state returns an error.
func (o *Orchestrator) Step(ctx context.Context, st State) (State, error) {
	switch st.Phase {
	case PhaseProposing:
		prompt := BuildCreationPrompt(o.cfg.DataDir, o.cfg.Sources, o.cfg.Commands)
		if st.Attempt > 1 {
			prompt = BuildRetryPrompt(st.Feedback, o.cfg.DataDir)
		}

		o.log.Info("invoking agent",
			zap.Int("attempt", st.Attempt),
			zap.Int("max_attempts", o.cfg.MaxAttempts))
		o.emit(Event{Type: EventAttemptStarted, Attempt: st.Attempt,
			Message: fmt.Sprintf("attempt %d/%d", st.Attempt, o.cfg.MaxAttempts)})
		if o.Journal != nil {
			attempt := st.Attempt
			o.record(func() error { return o.Journal.AttemptStarted(attempt) })
		}

		if err := o.proposer.Propose(ctx, prompt); err != nil {
			if o.Journal != nil {
				attempt := st.Attempt
				o.record(func() error {
					return o.Journal.AttemptFinished(attempt, "agent_error", err.Error())
				})
			}
			return st, &AgentInvocationError{Attempt: st.Attempt, Err: err}
		}
		st.Phase = PhaseValidating
		return st, nil

	case PhaseValidating:
		o.emit(Event{Type: EventValidating, Attempt: st.Attempt, Message: "validating partitions"})
		result, err := o.check()
		if err != nil {
			return st, fmt.Errorf("validation pass: %w", err)
		}
		st.Last = result
		o.log.Info("validation pass finished",
			zap.Int("attempt", st.Attempt),
			zap.Bool("valid", result.Valid()),
			zap.String("summary", result.Summary()))

		if result.Valid() {
			if o.Journal != nil {
				attempt := st.Attempt
				o.record(func() error { return o.Journal.AttemptFinished(attempt, "success", "") })
			}
			st.Phase = PhaseSucceeded
			return st, nil
		}

		// The full report, not the display variant: retry feedback
		// must name every problem or the agent cannot fix it.
		st.Feedback = result.Report()
		if o.Journal != nil {
			attempt, summary := st.Attempt, result.Summary()
			o.record(func() error { return o.Journal.AttemptFinished(attempt, "invalid", summary) })
		}

		if st.Attempt >= o.cfg.MaxAttempts {
			st.Phase = PhaseExhausted
			return st, nil
		}
		st.Phase = PhaseRetrying
		return st, nil

	case PhaseRetrying:
		o.emit(Event{Type: EventRetrying, Attempt: st.Attempt,
			Message: fmt.Sprintf("validation failed, retrying (attempt %d/%d)", st.Attempt+1, o.cfg.MaxAttempts)})
		st.Attempt++
		st.Phase = PhaseProposing
		return st, nil
	}

	return st, fmt.Errorf("no transition from terminal phase %q", st.Phase)
}

// Run executes the state machine from the initial state and returns
// the final reconciliation result. Exhaustion returns the last result
// alongside an *ExhaustionError; a failed agent call returns an
// *AgentInvocationError immediately, without retrying.
func (o *Orchestrator) Run(ctx context.Context) (*reconcile.Result, error) {
	st := NewState()
	for !st.Phase.Terminal() {
		next, err := o.Step(ctx, st)
		if err != nil {
			return st.Last, err
		}
		st = next
	}

	if st.Phase == PhaseSucceeded {
		o.emit(Event{Type: EventSucceeded, Attempt: st.Attempt, Message: st.Last.Summary()})
		o.log.Info("run succeeded", zap.Int("attempts", st.Attempt))
		return st.Last, nil
	}

	o.emit(Event{Type: EventExhausted, Attempt: st.Attempt, Message: st.Last.Summary()})
	o.log.Warn("run exhausted", zap.Int("attempts", st.Attempt))
	return st.Last, &ExhaustionError{Attempts: st.Attempt, Result: st.Last}
}
