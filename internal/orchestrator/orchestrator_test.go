package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"corral/internal/reconcile"
)

// fakeProposer records every prompt it receives and can fail on a
// chosen call.
type fakeProposer struct {
	prompts []string
	failOn  int
	err     error
}

func (f *fakeProposer) Propose(ctx context.Context, prompt string) error {
	f.prompts = append(f.prompts, prompt)
	if f.failOn > 0 && len(f.prompts) == f.failOn {
		return f.err
	}
	return nil
}

// scriptedChecker returns one Result per validation pass, in order.
func scriptedChecker(results ...*reconcile.Result) Checker {
	i := 0
	return func() (*reconcile.Result, error) {
		if i >= len(results) {
			return nil, fmt.Errorf("unexpected validation pass %d", i+1)
		}
		r := results[i]
		i++
		return r, nil
	}
}

func validResult() *reconcile.Result {
	return &reconcile.Result{TotalPartitions: 2, TotalFiles: 4, Covered: 4}
}

func invalidResult(missing ...string) *reconcile.Result {
	return &reconcile.Result{TotalFiles: len(missing), Missing: missing}
}

type journalCall struct {
	attempt int
	status  string
}

type fakeJournal struct {
	started  []int
	finished []journalCall
}

func (j *fakeJournal) AttemptStarted(attempt int) error {
	j.started = append(j.started, attempt)
	return nil
}

func (j *fakeJournal) AttemptFinished(attempt int, status, detail string) error {
	j.finished = append(j.finished, journalCall{attempt, status})
	return nil
}

func newTestOrchestrator(p Proposer, check Checker, max int) *Orchestrator {
	return New(Config{
		MaxAttempts: max,
		DataDir:     "data",
		Sources:     []string{"docs"},
		Commands:    []string{"create"},
	}, p, check, zap.NewNop())
}

func TestRunSucceedsFirstAttempt(t *testing.T) {
	proposer := &fakeProposer{}
	orch := newTestOrchestrator(proposer, scriptedChecker(validResult()), 3)

	result, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Valid() {
		t.Errorf("result invalid: %+v", result)
	}
	if len(proposer.prompts) != 1 {
		t.Errorf("agent invoked %d times, want 1", len(proposer.prompts))
	}
	if strings.Contains(proposer.prompts[0], "validation errors") {
		t.Error("first prompt contains retry feedback")
	}
}

func TestRunThreadsFeedbackIntoRetryPrompt(t *testing.T) {
	proposer := &fakeProposer{}
	orch := newTestOrchestrator(proposer, scriptedChecker(
		invalidResult("docs/missing.md"),
		validResult(),
	), 3)

	result, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Valid() {
		t.Errorf("final result invalid: %+v", result)
	}
	if len(proposer.prompts) != 2 {
		t.Fatalf("agent invoked %d times, want 2", len(proposer.prompts))
	}
	if !strings.Contains(proposer.prompts[1], "docs/missing.md") {
		t.Errorf("retry prompt lacks the diagnostic report:\n%s", proposer.prompts[1])
	}
	if !strings.Contains(proposer.prompts[1], "VALIDATION ERRORS") {
		t.Errorf("retry prompt lacks the feedback framing:\n%s", proposer.prompts[1])
	}
}

func TestRunExhaustsAfterMaxAttempts(t *testing.T) {
	proposer := &fakeProposer{}
	final := invalidResult("docs/still-missing.md")
	orch := newTestOrchestrator(proposer, scriptedChecker(
		invalidResult("docs/a.md"),
		invalidResult("docs/b.md"),
		final,
	), 3)

	result, err := orch.Run(context.Background())

	var exhausted *ExhaustionError
	if !errors.As(err, &exhausted) {
		t.Fatalf("err = %v, want *ExhaustionError", err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", exhausted.Attempts)
	}
	if exhausted.Result != final || result != final {
		t.Error("exhaustion does not carry the final result")
	}
	if len(proposer.prompts) != 3 {
		t.Errorf("agent invoked %d times, want exactly 3", len(proposer.prompts))
	}
}

func TestRunAgentFailureIsFatal(t *testing.T) {
	proposer := &fakeProposer{failOn: 1, err: fmt.Errorf("process exited 1")}
	orch := newTestOrchestrator(proposer, scriptedChecker(), 3)

	_, err := orch.Run(context.Background())

	var invocation *AgentInvocationError
	if !errors.As(err, &invocation) {
		t.Fatalf("err = %v, want *AgentInvocationError", err)
	}
	if invocation.Attempt != 1 {
		t.Errorf("Attempt = %d, want 1", invocation.Attempt)
	}
	if len(proposer.prompts) != 1 {
		t.Errorf("agent invoked %d times after fatal failure, want 1", len(proposer.prompts))
	}
	if !errors.Is(err, proposer.err) {
		t.Error("invocation error does not wrap the cause")
	}
}

func TestRunJournalsAttempts(t *testing.T) {
	journal := &fakeJournal{}
	orch := newTestOrchestrator(&fakeProposer{}, scriptedChecker(
		invalidResult("docs/a.md"),
		validResult(),
	), 3)
	orch.Journal = journal

	if _, err := orch.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if want := []int{1, 2}; len(journal.started) != 2 || journal.started[0] != want[0] || journal.started[1] != want[1] {
		t.Errorf("started = %v, want %v", journal.started, want)
	}
	if len(journal.finished) != 2 {
		t.Fatalf("finished = %v, want 2 entries", journal.finished)
	}
	if journal.finished[0].status != "invalid" || journal.finished[1].status != "success" {
		t.Errorf("finished statuses = %+v, want invalid then success", journal.finished)
	}
}

func TestStepRejectsTerminalState(t *testing.T) {
	orch := newTestOrchestrator(&fakeProposer{}, scriptedChecker(), 3)

	for _, phase := range []Phase{PhaseSucceeded, PhaseExhausted} {
		if _, err := orch.Step(context.Background(), State{Phase: phase, Attempt: 1}); err == nil {
			t.Errorf("Step from %s succeeded, want error", phase)
		}
	}
}

func TestStepSingleTransitions(t *testing.T) {
	orch := newTestOrchestrator(&fakeProposer{}, scriptedChecker(invalidResult("a")), 3)

	st := NewState()
	st, err := orch.Step(context.Background(), st)
	if err != nil {
		t.Fatalf("proposing step: %v", err)
	}
	if st.Phase != PhaseValidating || st.Attempt != 1 {
		t.Fatalf("after proposing: %+v", st)
	}

	st, err = orch.Step(context.Background(), st)
	if err != nil {
		t.Fatalf("validating step: %v", err)
	}
	if st.Phase != PhaseRetrying || st.Feedback == "" {
		t.Fatalf("after invalid validation: %+v", st)
	}

	st, err = orch.Step(context.Background(), st)
	if err != nil {
		t.Fatalf("retrying step: %v", err)
	}
	if st.Phase != PhaseProposing || st.Attempt != 2 {
		t.Fatalf("after retrying: %+v", st)
	}
}

func TestEventsEmitted(t *testing.T) {
	orch := newTestOrchestrator(&fakeProposer{}, scriptedChecker(validResult()), 3)

	var types []EventType
	orch.Events = func(e Event) { types = append(types, e.Type) }

	if _, err := orch.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []EventType{EventAttemptStarted, EventValidating, EventSucceeded}
	if len(types) != len(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, types[i], want[i])
		}
	}
}
