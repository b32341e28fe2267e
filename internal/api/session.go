package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"

	"corral/internal/agent"
)

// sessionSystemPrompt frames every API partitioning session.
const sessionSystemPrompt = "You are partitioning a corpus of source documents into disjoint, " +
	"complete groups using the provided tools. Explore the corpus with list_files, create " +
	"partitions with create_partition, and confirm your work with validate_partitions before " +
	"finishing. Never claim success while validate_partitions reports problems."

// defaultMaxIterations bounds the tool-use loop of one session.
const defaultMaxIterations = 50

// Session is one API-backed partitioning round, implementing
// agent.Runner over the Anthropic messages endpoint with the corral
// partition tools.
type Session struct {
	client   *Client
	executor *ToolExecutor

	ctx      context.Context
	cancel   context.CancelFunc
	outputCh chan agent.StreamEvent
	done     chan struct{}

	mu      sync.Mutex
	started bool
	lastErr error

	maxIterations int
}

// SessionConfig configures a Session.
type SessionConfig struct {
	Client   *Client
	Executor *ToolExecutor
	// MaxIterations bounds the tool loop; zero means the default.
	MaxIterations int
}

// NewSession creates an unstarted session.
func NewSession(cfg SessionConfig) *Session {
	maxIter := cfg.MaxIterations
	if maxIter == 0 {
		maxIter = defaultMaxIterations
	}
	return &Session{
		client:        cfg.Client,
		executor:      cfg.Executor,
		maxIterations: maxIter,
		outputCh:      make(chan agent.StreamEvent, 100),
		done:          make(chan struct{}),
	}
}

// Start launches the session loop. workDir is unused in API mode: the
// executor already knows the corpus root and partition store.
func (s *Session) Start(ctx context.Context, prompt, workDir string) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("session already started")
	}
	s.started = true
	s.mu.Unlock()

	s.ctx, s.cancel = context.WithCancel(ctx)
	go s.runLoop(prompt)
	return nil
}

func (s *Session) runLoop(prompt string) {
	defer close(s.outputCh)
	defer close(s.done)

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	}

	for iteration := 0; iteration < s.maxIterations; iteration++ {
		select {
		case <-s.ctx.Done():
			s.setError(s.ctx.Err())
			return
		default:
		}

		resp, err := s.client.sdk().Messages.New(s.ctx, anthropic.MessageNewParams{
			Model:     s.client.Model(),
			MaxTokens: 8192,
			System: []anthropic.TextBlockParam{
				{Text: sessionSystemPrompt},
			},
			Messages: messages,
			Tools:    ToolDefinitions(),
		})
		if err != nil {
			s.emitError(fmt.Sprintf("API error: %v", err))
			return
		}

		s.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

		var assistantBlocks []anthropic.ContentBlockParamUnion
		var toolResultBlocks []anthropic.ContentBlockParamUnion

		for _, block := range resp.Content {
			switch variant := block.AsAny().(type) {
			case anthropic.TextBlock:
				s.emit(agent.StreamEvent{
					Type:    agent.StreamEventAssistant,
					Message: variant.Text,
				})
				assistantBlocks = append(assistantBlocks, anthropic.NewTextBlock(variant.Text))

			case anthropic.ToolUseBlock:
				s.emit(agent.StreamEvent{
					Type:       agent.StreamEventAssistant,
					ToolAction: FormatToolAction(variant.Name, variant.Input),
				})

				result := s.executor.Execute(s.ctx, variant.Name, variant.Input)

				assistantBlocks = append(assistantBlocks,
					anthropic.NewToolUseBlock(variant.ID, variant.Input, variant.Name))
				toolResultBlocks = append(toolResultBlocks,
					anthropic.NewToolResultBlock(variant.ID, result.Content, result.IsError))

				if result.IsError {
					s.emit(agent.StreamEvent{
						Type:  agent.StreamEventError,
						Error: result.Content,
					})
				}
			}
		}

		if resp.StopReason == anthropic.StopReasonEndTurn {
			var finalText string
			for _, block := range resp.Content {
				if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
					finalText += variant.Text
				}
			}
			s.emit(agent.StreamEvent{
				Type:    agent.StreamEventResult,
				Message: finalText,
			})
			return
		}

		messages = append(messages, anthropic.NewAssistantMessage(assistantBlocks...))
		if len(toolResultBlocks) > 0 {
			messages = append(messages, anthropic.NewUserMessage(toolResultBlocks...))
		}
	}

	s.emitError(fmt.Sprintf("max iterations (%d) reached without finishing", s.maxIterations))
}

func (s *Session) emit(event agent.StreamEvent) {
	select {
	case s.outputCh <- event:
	case <-s.ctx.Done():
	}
}

func (s *Session) setError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

func (s *Session) emitError(msg string) {
	s.setError(fmt.Errorf("%s", msg))
	s.emit(agent.StreamEvent{Type: agent.StreamEventError, Error: msg})
}

// Output returns the session's event stream.
func (s *Session) Output() <-chan agent.StreamEvent { return s.outputCh }

// Wait blocks until the session completes.
func (s *Session) Wait() error {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Kill cancels the session.
func (s *Session) Kill() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// Stderr is always empty for API sessions.
func (s *Session) Stderr() string { return "" }

var _ agent.Runner = (*Session)(nil)

// SessionFactory creates API-backed runners sharing one client and
// executor.
type SessionFactory struct {
	Client        *Client
	Executor      *ToolExecutor
	MaxIterations int
}

// NewRunner creates a fresh API session.
func (f *SessionFactory) NewRunner() agent.Runner {
	return NewSession(SessionConfig{
		Client:        f.Client,
		Executor:      f.Executor,
		MaxIterations: f.MaxIterations,
	})
}
