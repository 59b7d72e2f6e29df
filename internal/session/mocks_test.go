package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"termai/internal/tactile"
	"termai/internal/types"
	"termai/internal/usage"
)

// --- mockClient ---

type chatReply struct {
	msg types.Message
	err error
}

// mockClient implements types.ChatClient with canned replies.
type mockClient struct {
	replies   []chatReply
	calls     [][]types.Message
	callModel []string
	models    []string
	modelsErr error
}

func (m *mockClient) ListModels(ctx context.Context) ([]string, error) {
	return m.models, m.modelsErr
}

func (m *mockClient) Chat(ctx context.Context, model string, messages []types.Message) (types.Message, error) {
	m.calls = append(m.calls, messages)
	m.callModel = append(m.callModel, model)
	if len(m.replies) == 0 {
		return types.Message{}, errors.New("no canned reply")
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	if r.err == nil {
		if tracker := usage.FromContext(ctx); tracker != nil {
			tracker.Track(ctx, model, 10, len(r.msg.Content))
		}
	}
	return r.msg, r.err
}

func (m *mockClient) reply(content string) *mockClient {
	m.replies = append(m.replies, chatReply{msg: types.AssistantMessage(content)})
	return m
}

func (m *mockClient) fail(err error) *mockClient {
	m.replies = append(m.replies, chatReply{err: err})
	return m
}

// --- mockRunner ---

// mockRunner implements Runner without spawning processes.
type mockRunner struct {
	dir string

	streamed  []string
	streamLog string
	streamErr error

	captured   []string
	captureRes *tactile.ExecutionResult
	captureErr error

	chdirErr error
}

func (m *mockRunner) Stream(ctx context.Context, command string, console io.Writer) (*tactile.StreamResult, error) {
	m.streamed = append(m.streamed, command)
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	_, _ = io.WriteString(console, m.streamLog)
	return &tactile.StreamResult{Command: command, Log: m.streamLog}, nil
}

func (m *mockRunner) Capture(ctx context.Context, command string) (*tactile.ExecutionResult, error) {
	m.captured = append(m.captured, command)
	if m.captureErr != nil {
		return nil, m.captureErr
	}
	if m.captureRes != nil {
		return m.captureRes, nil
	}
	return &tactile.ExecutionResult{Command: command}, nil
}

func (m *mockRunner) Chdir(target string) (string, error) {
	if m.chdirErr != nil {
		return "", m.chdirErr
	}
	m.dir = target
	return target, nil
}

func (m *mockRunner) Dir() string { return m.dir }

// --- mockConsole ---

// mockConsole records everything shown to the user.
type mockConsole struct {
	out      bytes.Buffer
	errs     []string
	thoughts []string
	answers  []string
	proposed []string
	thinking int
}

func (c *mockConsole) Stream() io.Writer { return &c.out }

func (c *mockConsole) Info(text string) { fmt.Fprintln(&c.out, text) }

func (c *mockConsole) Notice(text string) { fmt.Fprintln(&c.out, text) }

func (c *mockConsole) Error(text string) {
	c.errs = append(c.errs, text)
	fmt.Fprintln(&c.out, text)
}

func (c *mockConsole) Thought(text string) { c.thoughts = append(c.thoughts, text) }

func (c *mockConsole) Answer(text string) {
	c.answers = append(c.answers, text)
	fmt.Fprintln(&c.out, text)
}

func (c *mockConsole) ProposedCommand(command string) { c.proposed = append(c.proposed, command) }

func (c *mockConsole) CommandOutput(res *tactile.ExecutionResult) {
	fmt.Fprint(&c.out, res.Stdout, res.Stderr)
}

func (c *mockConsole) StartThinking() func() {
	c.thinking++
	return func() {}
}

// --- scriptedInput ---

// scriptedInput returns lines in order, then ErrInterrupted.
type scriptedInput struct {
	lines   []string
	prompts []string
}

func (s *scriptedInput) ReadLine(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", ErrInterrupted
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func input(lines ...string) *scriptedInput {
	return &scriptedInput{lines: lines}
}

// --- mockPicker ---

type mockPicker struct {
	index   int
	err     error
	choices []string
}

func (p *mockPicker) Pick(ctx context.Context, title string, choices []string) (int, error) {
	p.choices = choices
	return p.index, p.err
}
