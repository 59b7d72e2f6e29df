package tactile

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"termai/internal/logging"
)

// Stream runs command, copying every stdout and stderr line to console as it
// arrives while collecting the same lines into the returned log.
//
// Both streams are drained concurrently; a child that fills one pipe while the
// other is being read would otherwise block forever. The process is reaped while
// the drains run, so a background job still holding the pipes is cut off after
// WaitDelay. Stream returns only after both drains finish.
func (r *Runner) Stream(ctx context.Context, command string, console io.Writer) (*StreamResult, error) {
	timer := logging.StartTimer(logging.CategoryShell, "Stream")
	defer timer.Stop()

	logging.Shell("Stream: %s", command)

	cmd := r.command(ctx, command)
	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	start := time.Now()
	if err := cmd.Start(); err != nil {
		logging.ShellError("Stream: spawn failed: %v", err)
		_ = stdoutW.Close()
		_ = stderrW.Close()
		return nil, &SpawnError{Shell: r.shell, Err: err}
	}

	sink := &lineSink{console: console}

	var g errgroup.Group
	g.Go(func() error { return drainLines(stdoutR, sink) })
	g.Go(func() error { return drainLines(stderrR, sink) })

	// exec copies into the pipe writers until the shell exits and its own
	// pipes close, or WaitDelay expires.
	waitErr := cmd.Wait()
	_ = stdoutW.Close()
	_ = stderrW.Close()
	drainErr := g.Wait()
	if drainErr != nil {
		logging.ShellWarn("Stream: drain error: %v", drainErr)
	}

	res := &StreamResult{
		Command:  command,
		Log:      sink.log.String(),
		Duration: time.Since(start),
	}
	res.ExitCode, res.Killed = exitStatus(ctx, waitErr)
	logging.Shell("Stream: exit=%d duration=%s log=%d bytes", res.ExitCode, res.Duration, len(res.Log))
	return res, nil
}

// lineSink serializes whole lines from both drains onto the console and the log.
type lineSink struct {
	mu      sync.Mutex
	console io.Writer
	log     strings.Builder
}

func (s *lineSink) emit(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.console != nil {
		_, _ = io.WriteString(s.console, line)
	}
	s.log.WriteString(line)
}

// drainLines reads r to EOF one line at a time. A final line without a
// newline is terminated with one.
func drainLines(r io.Reader, sink *lineSink) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if !strings.HasSuffix(line, "\n") {
				line += "\n"
			}
			sink.emit(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
