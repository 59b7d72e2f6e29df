package session

import (
	"context"
	"fmt"

	"termai/internal/types"
)

const (
	shellRecordFormat = "Executed Shell Command: %s\nOutput:\n%s"
	exitNoteFormat    = "\n(exit status %d)"
)

// shellTurn runs line directly, streaming its output, and records the
// command with its output so the model sees what happened.
func (s *Session) shellTurn(ctx context.Context, line string) {
	if dir, ok := parseCd(line); ok {
		if _, err := s.runner.Chdir(dir); err != nil {
			s.console.Error(err.Error())
		}
		return
	}

	res, err := s.runner.Stream(ctx, line, s.console.Stream())
	if err != nil {
		s.log.Warn("Shell command failed to start: %v", err)
		s.console.Error(fmt.Sprintf("[Shell Error] %v", err))
		return
	}

	record := fmt.Sprintf(shellRecordFormat, line, res.Log)
	if res.ExitCode != 0 {
		record += fmt.Sprintf(exitNoteFormat, res.ExitCode)
	}
	s.transcript.Append(types.UserMessage(record))
	s.log.Debug("Shell turn recorded: exit=%d log=%d bytes", res.ExitCode, len(res.Log))
}
