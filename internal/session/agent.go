package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"termai/internal/perception"
	"termai/internal/tactile"
	"termai/internal/types"
)

const (
	confirmPrompt = "Execute? [y/N] "

	refusalRecord       = "User cancelled the command execution."
	spawnFailureFormat  = "System Output: Command could not be started.\nCommand: %s\nError: %v"
	captureRecordFormat = "System Output: Command Executed.\nCommand: %s\nExit Status: %d\nSTDOUT:\n%s\nSTDERR:\n%s"
	truncatedNote       = "\n[output truncated]"
)

// agentTurn sends line to the model and handles its reply.
func (s *Session) agentTurn(ctx context.Context, line string) {
	msg := types.UserMessage(line)

	var history []types.Message
	if s.opts.KeepFailedTurns {
		s.transcript.Append(msg)
		history = s.transcript.Snapshot()
	} else {
		// Held back until the call succeeds so a failed turn leaves no trace.
		history = append(s.transcript.Snapshot(), msg)
	}

	s.log.Debug("Chat request: model=%s messages=%d", s.model, len(history))
	stop := s.console.StartThinking()
	reply, err := s.client.Chat(ctx, s.model, history)
	stop()

	if err != nil {
		s.reportChatError(ctx, err)
		return
	}

	if !s.opts.KeepFailedTurns {
		s.transcript.Append(msg)
	}
	s.transcript.Append(reply)
	s.log.Debug("Reply recorded: %s", s.transcript.last())

	parsed := perception.ParseReply(reply.Content)
	if parsed.HasThought {
		if thought := strings.TrimSpace(parsed.Thought); thought != "" {
			s.console.Thought(thought)
		}
	}
	s.console.Answer(strings.TrimSpace(parsed.Answer))

	if parsed.HasCommand {
		s.confirmAndRun(ctx, parsed.Command)
	}
}

func (s *Session) reportChatError(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}
	s.log.Warn("Chat failed: %v", err)

	var reqErr *perception.RequestError
	switch {
	case perception.IsServerError(err):
		s.console.Error(fmt.Sprintf("[Ollama Error] %v", err))
	case errors.As(err, &reqErr):
		s.console.Error(fmt.Sprintf("[Request Error] %v", err))
	default:
		s.console.Error(fmt.Sprintf("[Protocol Error] %v", err))
	}
}

// confirmAndRun shows command, asks for a yes/no answer defaulting to no,
// and only on "y" runs it. Every outcome is recorded as a user message.
func (s *Session) confirmAndRun(ctx context.Context, command string) {
	s.console.ProposedCommand(command)

	answer, err := s.ask(ctx, confirmPrompt)
	if err != nil || !strings.EqualFold(strings.TrimSpace(answer), "y") {
		s.log.Info("Command refused: %q", command)
		s.transcript.Append(types.UserMessage(refusalRecord))
		s.console.Info("Cancelled.")
		return
	}

	s.log.Info("Command confirmed: %q", command)
	s.console.Info("Running...")
	res, err := s.runner.Capture(ctx, command)
	if err != nil {
		s.console.Error(fmt.Sprintf("[Shell Error] %v", err))
		s.transcript.Append(types.UserMessage(fmt.Sprintf(spawnFailureFormat, command, err)))
		return
	}

	s.console.CommandOutput(res)
	s.transcript.Append(types.UserMessage(captureRecord(command, res)))

	if s.opts.AutoContinue && s.opts.ContinuePrompt != "" && ctx.Err() == nil {
		s.pending = append(s.pending, queuedInput{line: s.opts.ContinuePrompt, op: "continue"})
	}
}

func (s *Session) ask(ctx context.Context, prompt string) (string, error) {
	if c, ok := s.input.(Confirmer); ok {
		return c.Confirm(ctx, prompt)
	}
	return s.input.ReadLine(ctx, prompt)
}

func captureRecord(command string, res *tactile.ExecutionResult) string {
	record := fmt.Sprintf(captureRecordFormat, command, res.ExitCode, res.Stdout, res.Stderr)
	if res.Truncated {
		record += truncatedNote
	}
	return record
}
