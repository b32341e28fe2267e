package agent

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// ClaudeProcess runs a partitioning session through the claude CLI
// with stream-json output. The subprocess gets the corral partition
// commands through its Bash tool; the orchestrator only consumes the
// event stream.
type ClaudeProcess struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser

	model string

	cancel    context.CancelFunc
	outputCh  chan StreamEvent
	stderrBuf []byte
	mu        sync.Mutex
	started   bool
	done      chan struct{}
}

// NewClaudeProcess creates an unstarted subprocess runner. Model may
// be empty to use the CLI's default.
func NewClaudeProcess(model string) *ClaudeProcess {
	return &ClaudeProcess{
		model:    model,
		outputCh: make(chan StreamEvent, 100),
		done:     make(chan struct{}),
	}
}

// CheckClaudeCLI verifies that the claude CLI is available in PATH.
func CheckClaudeCLI() error {
	if _, err := exec.LookPath("claude"); err != nil {
		return fmt.Errorf("claude CLI not found in PATH\n\n" +
			"The subprocess agent backend requires the Claude Code CLI.\n" +
			"Install it with:\n" +
			"  npm install -g @anthropic-ai/claude-code\n\n" +
			"Or switch to the API backend with agent.backend: api")
	}
	return nil
}

// Start launches the claude subprocess with the given prompt, working
// in workDir so relative corpus and partition paths resolve.
func (p *ClaudeProcess) Start(ctx context.Context, prompt, workDir string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("process already started")
	}

	ctx, p.cancel = context.WithCancel(ctx)

	// Bash is enough: the prompt directs the agent to the corral
	// partition commands. Read/Glob/Grep let it explore the corpus.
	args := []string{
		"--output-format", "stream-json",
		"--print",
		"--verbose",
		"--allowedTools", "Bash,Read,Glob,Grep",
	}
	if p.model != "" {
		args = append(args, "--model", p.model)
	}
	args = append(args, "-p", prompt)

	p.cmd = exec.CommandContext(ctx, "claude", args...)
	if workDir != "" {
		p.cmd.Dir = workDir
	}

	var err error
	p.stdout, err = p.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	p.stderr, err = p.cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("create stderr pipe: %w", err)
	}

	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("start claude: %w", err)
	}
	p.started = true

	go p.readOutput(ctx)
	go p.readStderr(ctx)

	return nil
}

// readOutput parses stream-json lines from stdout into events.
func (p *ClaudeProcess) readOutput(ctx context.Context) {
	defer close(p.outputCh)
	defer close(p.done)

	scanner := bufio.NewScanner(p.stdout)
	// Tool results can carry whole file listings in one JSON line.
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		event, err := parseStreamEvent(line)
		if err != nil {
			event = StreamEvent{
				Type:  StreamEventError,
				Error: fmt.Sprintf("parse stream event: %v", err),
				Raw:   append([]byte(nil), line...),
			}
		}

		select {
		case p.outputCh <- event:
		case <-ctx.Done():
			return
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		p.outputCh <- StreamEvent{
			Type:  StreamEventError,
			Error: fmt.Sprintf("read stream: %v", err),
		}
	}
}

// readStderr captures stderr for post-mortem retrieval and surfaces
// lines as error events so startup hangs are diagnosable live.
func (p *ClaudeProcess) readStderr(ctx context.Context) {
	scanner := bufio.NewScanner(p.stderr)
	buf := make([]byte, 16*1024)
	scanner.Buffer(buf, 256*1024)

	var all []byte
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		p.mu.Lock()
		all = append(all, line...)
		all = append(all, '\n')
		p.stderrBuf = all
		p.mu.Unlock()

		select {
		case p.outputCh <- StreamEvent{
			Type:  StreamEventError,
			Error: fmt.Sprintf("[stderr] %s", line),
		}:
		case <-ctx.Done():
			return
		default:
			// Channel full; the buffer still has it.
		}
	}
}

// Output returns the event stream.
func (p *ClaudeProcess) Output() <-chan StreamEvent { return p.outputCh }

// Wait blocks until the subprocess exits.
func (p *ClaudeProcess) Wait() error {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		return fmt.Errorf("process not started")
	}
	<-p.done
	return p.cmd.Wait()
}

// Kill terminates the subprocess.
func (p *ClaudeProcess) Kill() error {
	if p.cancel != nil {
		p.cancel()
	}
	return nil
}

// Stderr returns everything captured from stderr so far.
func (p *ClaudeProcess) Stderr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return string(p.stderrBuf)
}

var _ Runner = (*ClaudeProcess)(nil)

// SubprocessFactory creates subprocess runners for a fixed model.
type SubprocessFactory struct {
	Model string
}

// NewRunner creates a fresh subprocess runner.
func (f *SubprocessFactory) NewRunner() Runner {
	return NewClaudeProcess(f.Model)
}

// parseStreamEvent decodes one stream-json line.
func parseStreamEvent(data []byte) (StreamEvent, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return StreamEvent{}, fmt.Errorf("unmarshal json: %w", err)
	}

	event := StreamEvent{Raw: append(json.RawMessage(nil), data...)}
	if t, ok := raw["type"].(string); ok {
		event.Type = StreamEventType(t)
	}

	switch event.Type {
	case StreamEventSystem, StreamEventAssistant, StreamEventUser:
		event.Message = textContent(raw)
		if event.Type == StreamEventAssistant {
			event.ToolAction = toolAction(raw)
		}
	case StreamEventResult:
		if result, ok := raw["result"].(string); ok {
			event.Message = result
		} else {
			event.Message = textContent(raw)
		}
	case StreamEventError:
		if msg, ok := raw["error"].(string); ok {
			event.Error = msg
		} else if msg, ok := raw["message"].(string); ok {
			event.Error = msg
		}
	}

	return event, nil
}

// textContent pulls assistant text out of the nested message shapes
// the CLI emits.
func textContent(raw map[string]interface{}) string {
	if msg, ok := raw["message"].(string); ok {
		return msg
	}
	if content, ok := raw["content"].(string); ok {
		return content
	}
	if msg, ok := raw["message"].(map[string]interface{}); ok {
		if content, ok := msg["content"].([]interface{}); ok {
			for _, item := range content {
				block, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				if t, _ := block["type"].(string); t == "text" {
					if text, ok := block["text"].(string); ok {
						return text
					}
				}
			}
		}
	}
	return ""
}

// toolAction extracts a short tool-use description, if present.
func toolAction(raw map[string]interface{}) string {
	blocks := func(v interface{}) string {
		content, ok := v.([]interface{})
		if !ok {
			return ""
		}
		for _, item := range content {
			block, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			if t, _ := block["type"].(string); t != "tool_use" {
				continue
			}
			name, _ := block["name"].(string)
			if input, ok := block["input"].(map[string]interface{}); ok {
				if cmd, ok := input["command"].(string); ok {
					if len(cmd) > 80 {
						cmd = cmd[:77] + "..."
					}
					return fmt.Sprintf("%s: %s", name, cmd)
				}
				if file, ok := input["file_path"].(string); ok {
					return fmt.Sprintf("%s: %s", name, file)
				}
			}
			return name
		}
		return ""
	}

	if msg, ok := raw["message"].(map[string]interface{}); ok {
		if action := blocks(msg["content"]); action != "" {
			return action
		}
	}
	return blocks(raw["content"])
}
