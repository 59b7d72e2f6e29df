package tactile

import (
	"fmt"
	"time"
)

// ExecutionResult is the outcome of a captured command run.
// A non-zero exit is data, not an error.
type ExecutionResult struct {
	Command string `json:"command"`

	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`

	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`

	// Truncated is set when either stream exceeded the output cap.
	Truncated      bool  `json:"truncated,omitempty"`
	TruncatedBytes int64 `json:"truncated_bytes,omitempty"`

	// Killed is set when the context ended the process.
	Killed bool `json:"killed,omitempty"`
}

// IsNonZeroExit returns true if the command exited with a non-zero code.
func (r *ExecutionResult) IsNonZeroExit() bool {
	return r.ExitCode != 0
}

// StreamResult is the outcome of a streamed command run.
type StreamResult struct {
	Command string

	// Log holds every line of stdout and stderr in arrival order.
	Log string

	ExitCode int
	Duration time.Duration
	Killed   bool
}

// SpawnError means the shell process could not be started at all.
type SpawnError struct {
	Shell string
	Err   error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Shell, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }
