package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"termai/internal/types"
)

// Meta commands recognized in both modes. They never reach the transcript.
const (
	cmdShell = "!shell"
	cmdAgent = "!agent"
	cmdModel = "!model"
	cmdHelp  = "!help"
	cmdUsage = "!usage"
)

// MetaCommands lists the words offered by completion.
var MetaCommands = []string{cmdShell, cmdAgent, cmdModel, cmdUsage, cmdHelp, "exit", "quit"}

const helpText = `Commands:
  !shell   run input directly in the shell
  !agent   send input to the model
  !model   pick another model (conversation is kept)
  !usage   show token usage for this session
  !help    show this help
  exit     end the session (also: quit, Ctrl+D)`

// handleMeta runs line if it is a meta command. Matching is exact.
func (s *Session) handleMeta(ctx context.Context, line string) bool {
	switch line {
	case cmdShell:
		s.setMode(types.ModeShell)
		s.console.Notice("Switched to Shell Mode. (Type '!agent' to switch back)")
	case cmdAgent:
		s.setMode(types.ModeAgent)
		s.console.Notice("Switched to Agent Mode.")
	case cmdModel:
		s.switchModel(ctx)
	case cmdUsage:
		s.console.Info(s.usage.Summary())
	case cmdHelp:
		s.console.Info(helpText)
	default:
		return false
	}
	return true
}

func (s *Session) setMode(m types.Mode) {
	if s.mode != m {
		s.log.Info("Mode %s -> %s", s.mode, m)
	}
	s.mode = m
}

// switchModel re-runs the picker against the server's current model list.
func (s *Session) switchModel(ctx context.Context) {
	if s.picker == nil {
		s.console.Error("Model picker is not available.")
		return
	}

	models, err := s.client.ListModels(ctx)
	if err != nil {
		s.console.Error(fmt.Sprintf("[Model Error] %v", err))
		return
	}
	if len(models) == 0 {
		s.console.Error("[Model Error] no models installed")
		return
	}

	idx, err := s.picker.Pick(ctx, "Select a model", models)
	if err != nil {
		if !errors.Is(err, ErrInterrupted) {
			s.console.Error(fmt.Sprintf("[Model Error] %v", err))
		}
		return
	}
	if idx < 0 || idx >= len(models) {
		s.console.Error("Invalid selection.")
		return
	}

	s.log.Info("Model %s -> %s", s.model, models[idx])
	s.model = models[idx]
	s.console.Notice(fmt.Sprintf("Using model %s", s.model))
}

// parseCd recognizes a bare "cd" or "cd <dir>" with nothing the shell
// would need to interpret.
func parseCd(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "cd" || len(fields) > 2 {
		return "", false
	}
	if strings.ContainsAny(line, ";&|<>$`()*?\"'") {
		return "", false
	}
	if len(fields) == 1 {
		return "", true
	}
	return fields[1], true
}
