package session

import (
	"context"
	"errors"
	"io"

	"termai/internal/tactile"
)

// ErrInterrupted is returned by a LineReader or Picker when the user
// pressed Ctrl+C or closed input.
var ErrInterrupted = errors.New("interrupted")

// LineReader reads one line of user input after showing prompt.
type LineReader interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
}

// Confirmer is an optional LineReader upgrade for yes/no questions.
// Answers read through it stay out of line history and completion.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (string, error)
}

// Picker presents choices and returns the chosen index.
type Picker interface {
	Pick(ctx context.Context, title string, choices []string) (int, error)
}

// Console is where the session shows its output.
type Console interface {
	// Stream receives live shell output.
	Stream() io.Writer

	Info(text string)
	Notice(text string)
	Error(text string)

	Thought(text string)
	Answer(text string)

	ProposedCommand(command string)
	CommandOutput(res *tactile.ExecutionResult)

	// StartThinking shows a waiting indicator until the returned func is called.
	StartThinking() (stop func())
}

// Runner executes shell commands.
type Runner interface {
	Stream(ctx context.Context, command string, console io.Writer) (*tactile.StreamResult, error)
	Capture(ctx context.Context, command string) (*tactile.ExecutionResult, error)
	Chdir(target string) (string, error)
	Dir() string
}

var _ Runner = (*tactile.Runner)(nil)
