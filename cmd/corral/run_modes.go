package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/fatih/color"

	"corral/internal/agent"
	"corral/internal/config"
	"corral/internal/orchestrator"
	"corral/internal/reconcile"
	"corral/internal/tui"
	"corral/internal/watch"
)

// runPlainMode streams progress as plain colored text. Used for CI
// and logs, where the alt-screen TUI is unusable.
func runPlainMode(ctx context.Context, cfg *config.Config, orch *orchestrator.Orchestrator,
	proposer *agent.Proposer, watcher *watch.Watcher) (*reconcile.Result, error) {

	orch.Events = func(e orchestrator.Event) {
		switch e.Type {
		case orchestrator.EventAttemptStarted:
			fmt.Printf("%s %s\n", color.CyanString("▶"), e.Message)
		case orchestrator.EventValidating:
			fmt.Printf("%s %s\n", color.YellowString("…"), e.Message)
		case orchestrator.EventRetrying:
			fmt.Printf("%s %s\n", color.YellowString("↻"), e.Message)
		case orchestrator.EventSucceeded:
			fmt.Printf("%s %s\n", color.GreenString("✓"), e.Message)
		case orchestrator.EventExhausted:
			fmt.Printf("%s %s\n", color.RedString("✗"), e.Message)
		}
	}
	proposer.Events = func(e agent.StreamEvent) {
		switch {
		case e.ToolAction != "":
			fmt.Printf("  %s %s\n", color.MagentaString("tool"), e.ToolAction)
		case e.Type == agent.StreamEventError:
			fmt.Printf("  %s %s\n", color.RedString("err "), e.Error)
		case e.Type == agent.StreamEventAssistant && e.Message != "":
			fmt.Printf("  %s %s\n", color.WhiteString("text"), firstLine(e.Message))
		}
	}
	if watcher != nil {
		go func() {
			for ev := range watcher.Events() {
				if ev.Op == watch.Created {
					fmt.Printf("  %s %s\n", color.GreenString("part"), ev.File)
				} else {
					fmt.Printf("  %s %s removed\n", color.YellowString("part"), ev.File)
				}
			}
		}()
	}

	return orch.Run(ctx)
}

// runWithTUI runs the orchestrator behind the interactive run view.
func runWithTUI(ctx context.Context, cfg *config.Config, orch *orchestrator.Orchestrator,
	proposer *agent.Proposer, watcher *watch.Watcher) (*reconcile.Result, error) {

	// Suppress log output while the TUI owns the terminal.
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)

	program, _ := tui.NewProgram()

	orch.Events = func(e orchestrator.Event) {
		switch e.Type {
		case orchestrator.EventAttemptStarted:
			program.Send(tui.AttemptMsg{Attempt: e.Attempt, MaxAttempts: cfg.Run.MaxAttempts})
			program.Send(tui.PhaseMsg{Phase: "proposing"})
		case orchestrator.EventValidating:
			program.Send(tui.PhaseMsg{Phase: "validating"})
		case orchestrator.EventRetrying:
			program.Send(tui.PhaseMsg{Phase: "retrying"})
		}
		program.Send(tui.AgentEventMsg{
			Timestamp: time.Now(),
			Kind:      string(e.Type),
			Message:   e.Message,
		})
	}
	proposer.Events = func(e agent.StreamEvent) {
		msg := e.Message
		if e.ToolAction != "" {
			msg = e.ToolAction
		}
		if e.Type == agent.StreamEventError {
			msg = e.Error
		}
		if msg == "" {
			return
		}
		program.Send(tui.AgentEventMsg{
			Timestamp: time.Now(),
			Kind:      string(e.Type),
			Message:   firstLine(msg),
		})
	}
	if watcher != nil {
		go func() {
			for ev := range watcher.Events() {
				program.Send(tui.PartitionMsg{File: ev.File, Removed: ev.Op == watch.Removed})
			}
		}()
	}

	type runOutcome struct {
		result *reconcile.Result
		err    error
	}
	orchDone := make(chan runOutcome, 1)
	go func() {
		result, err := orch.Run(ctx)
		orchDone <- runOutcome{result, err}
	}()

	tuiDone := make(chan error, 1)
	go func() {
		_, err := program.Run()
		tuiDone <- err
	}()

	select {
	case outcome := <-orchDone:
		if outcome.err != nil {
			program.Send(tui.RunDoneMsg{Success: false, Message: outcome.err.Error()})
		} else {
			program.Send(tui.RunDoneMsg{Success: true, Message: outcome.result.Summary()})
		}
		// Let the user read the result before the screen closes.
		<-tuiDone
		return outcome.result, outcome.err

	case err := <-tuiDone:
		// The user quit mid-run. Stop the agent via context and
		// surface whatever the orchestrator returns.
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("run aborted")
	}
}

// firstLine truncates multi-line agent text for single-line display.
func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
