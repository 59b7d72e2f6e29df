// Package session implements the interactive agent loop: it reads a line,
// dispatches it by mode to the chat service or the shell, and feeds every
// result back into the transcript.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"termai/internal/logging"
	"termai/internal/types"
	"termai/internal/usage"
)

// Options configures a Session.
type Options struct {
	// Model is the chat model used for every request.
	Model string

	// SystemPrompt becomes the permanent first transcript message.
	SystemPrompt string

	// InitialPrompt, when non-empty, is handled as the first agent input.
	InitialPrompt string

	// AutoContinue queues ContinuePrompt after a confirmed command ran.
	AutoContinue   bool
	ContinuePrompt string

	// KeepFailedTurns keeps the user message of a turn whose chat call failed.
	KeepFailedTurns bool
}

// Session owns the mode, the transcript and the collaborators of one run.
type Session struct {
	id   string
	opts Options
	log  *logging.Logger

	client  types.ChatClient
	runner  Runner
	console Console
	input   LineReader
	picker  Picker

	transcript *Transcript
	mode       types.Mode
	model      string

	usage *usage.Tracker

	// pending holds inputs handled before the next prompt is shown.
	pending []queuedInput
}

// queuedInput is a line the session feeds itself. op names the usage
// operation its chat request is recorded under.
type queuedInput struct {
	line string
	op   string
}

// New creates a session in Agent mode. picker may be nil, which disables !model.
func New(client types.ChatClient, runner Runner, console Console, input LineReader, picker Picker, opts Options) *Session {
	id := uuid.NewString()
	s := &Session{
		id:         id,
		opts:       opts,
		log:        logging.Get(logging.CategorySession).With("session_id", id),
		client:     client,
		runner:     runner,
		console:    console,
		input:      input,
		picker:     picker,
		transcript: NewTranscript(opts.SystemPrompt),
		mode:       types.ModeAgent,
		model:      opts.Model,
		usage:      usage.NewTracker(),
	}
	if p := strings.TrimSpace(opts.InitialPrompt); p != "" {
		s.pending = append(s.pending, queuedInput{line: p, op: "initial"})
	}
	s.log.Info("Session created: model=%s auto_continue=%v keep_failed_turns=%v system_prompt=%d bytes",
		opts.Model, opts.AutoContinue, opts.KeepFailedTurns, len(s.transcript.system().Content))
	return s
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// Mode returns the current dispatch mode.
func (s *Session) Mode() types.Mode { return s.mode }

// Model returns the model used for chat requests.
func (s *Session) Model() string { return s.model }

// Transcript exposes the conversation for inspection.
func (s *Session) Transcript() *Transcript { return s.transcript }

// Usage returns the token counters for this session's chat requests.
func (s *Session) Usage() *usage.Tracker { return s.usage }

// Prompt returns the input prompt for the current mode.
func (s *Session) Prompt() string {
	if s.mode == types.ModeShell {
		return fmt.Sprintf("(Shell:%s) $ ", s.runner.Dir())
	}
	return "(Agent) >>> "
}

// Run drives the loop until exit, interrupt, or ctx ends.
// Only context cancellation and unexpected input errors are returned.
func (s *Session) Run(ctx context.Context) error {
	s.log.Info("Session started")
	defer s.log.Info("Session ended: %d messages", s.transcript.Len())

	ctx = usage.NewContext(ctx, s.usage)
	for {
		line, op, err := s.next(ctx)
		if err != nil {
			if errors.Is(err, ErrInterrupted) || errors.Is(err, io.EOF) {
				s.console.Notice("Bye!")
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		turnCtx := ctx
		if op != "" {
			turnCtx = usage.WithOperation(ctx, op)
		}
		if done := s.Handle(turnCtx, line); done {
			s.console.Notice("Bye!")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// next returns the oldest pending input, or reads a new line.
func (s *Session) next(ctx context.Context) (string, string, error) {
	if len(s.pending) > 0 {
		q := s.pending[0]
		s.pending = s.pending[1:]
		s.console.Info(s.Prompt() + q.line)
		return q.line, q.op, nil
	}
	line, err := s.input.ReadLine(ctx, s.Prompt())
	return line, "", err
}

// Handle processes one input line. It reports true when the session should end.
func (s *Session) Handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if isExit(line) {
		s.log.Info("Exit requested")
		return true
	}
	if s.handleMeta(ctx, line) {
		return false
	}

	switch s.mode {
	case types.ModeShell:
		s.shellTurn(ctx, line)
	default:
		s.agentTurn(ctx, line)
	}
	return false
}

func isExit(line string) bool {
	return strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit")
}
