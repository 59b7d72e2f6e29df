// Package tactile runs shell commands on the host for the session: a streaming
// mode that echoes output live and a captured mode that returns it.
package tactile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"termai/internal/logging"
)

// execCommandContext is swapped out in tests.
var execCommandContext = exec.CommandContext

// Config configures a Runner.
type Config struct {
	// ShellPath is the interpreter binary. Empty selects the platform default.
	ShellPath string
	// ShellArgs precede the command string. Empty derives them from the shell.
	ShellArgs []string
	// WorkingDirectory is the initial directory. Empty uses the process cwd.
	WorkingDirectory string
	// MaxOutputBytes caps each captured stream. Zero means unlimited.
	MaxOutputBytes int64
}

// Runner executes command strings through one shell.
// It is used from a single goroutine; the mutex only guards the working directory.
type Runner struct {
	shell     string
	args      []string
	maxOutput int64

	mu  sync.RWMutex
	dir string
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg Config) *Runner {
	shell, args := ResolveShell(cfg.ShellPath, cfg.ShellArgs)
	logging.ShellDebug("NewRunner: shell=%s args=%v dir=%q", shell, args, cfg.WorkingDirectory)
	return &Runner{
		shell:     shell,
		args:      args,
		maxOutput: cfg.MaxOutputBytes,
		dir:       cfg.WorkingDirectory,
	}
}

// ResolveShell picks the interpreter and the flag that introduces a command string.
func ResolveShell(path string, args []string) (string, []string) {
	if path == "" {
		if runtime.GOOS == "windows" {
			path = "cmd"
		} else {
			path = "/bin/sh"
		}
	}
	if len(args) > 0 {
		return path, append([]string(nil), args...)
	}

	switch strings.ToLower(strings.TrimSuffix(filepath.Base(path), ".exe")) {
	case "cmd":
		return path, []string{"/C"}
	case "powershell", "pwsh":
		return path, []string{"-NoProfile", "-Command"}
	default:
		return path, []string{"-c"}
	}
}

// Shell returns the interpreter path.
func (r *Runner) Shell() string {
	return r.shell
}

// Dir returns the directory commands run in.
func (r *Runner) Dir() string {
	r.mu.RLock()
	dir := r.dir
	r.mu.RUnlock()
	if dir != "" {
		return dir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// Chdir changes the directory later commands run in. An empty target means
// the home directory; "~" prefixes expand to it; relative paths resolve against Dir.
func (r *Runner) Chdir(target string) (string, error) {
	target = strings.TrimSpace(target)
	home, _ := os.UserHomeDir()

	switch {
	case target == "" || target == "~":
		if home == "" {
			return "", errors.New("cd: home directory unknown")
		}
		target = home
	case strings.HasPrefix(target, "~/"):
		target = filepath.Join(home, target[2:])
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(r.Dir(), target)
	}
	target = filepath.Clean(target)

	info, err := os.Stat(target)
	if err != nil {
		return "", fmt.Errorf("cd: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("cd: not a directory: %s", target)
	}

	r.mu.Lock()
	r.dir = target
	r.mu.Unlock()
	logging.Shell("Working directory changed to %s", target)
	return target, nil
}

func (r *Runner) command(ctx context.Context, command string) *exec.Cmd {
	args := append(append([]string(nil), r.args...), command)
	cmd := execCommandContext(ctx, r.shell, args...)
	r.mu.RLock()
	cmd.Dir = r.dir
	r.mu.RUnlock()
	// Give stragglers holding the pipes a moment after the shell exits.
	cmd.WaitDelay = 2 * time.Second
	return cmd
}

// Capture runs command to completion and returns its separated output.
func (r *Runner) Capture(ctx context.Context, command string) (*ExecutionResult, error) {
	timer := logging.StartTimer(logging.CategoryShell, "Capture")
	defer timer.Stop()

	logging.Shell("Capture: %s", command)

	cmd := r.command(ctx, command)
	var stdoutBuf, stderrBuf bytes.Buffer
	stdoutLimited := &limitedWriter{w: &stdoutBuf, max: r.maxOutput}
	stderrLimited := &limitedWriter{w: &stderrBuf, max: r.maxOutput}
	cmd.Stdout = stdoutLimited
	cmd.Stderr = stderrLimited

	result := &ExecutionResult{Command: command, ExitCode: -1, StartedAt: time.Now()}

	if err := cmd.Start(); err != nil {
		logging.ShellError("Capture: spawn failed: %v", err)
		return nil, &SpawnError{Shell: r.shell, Err: err}
	}
	err := cmd.Wait()

	result.FinishedAt = time.Now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)
	result.Stdout = stdoutBuf.String()
	result.Stderr = stderrBuf.String()

	if stdoutLimited.truncated || stderrLimited.truncated {
		result.Truncated = true
		result.TruncatedBytes = stdoutLimited.discarded + stderrLimited.discarded
		logging.ShellWarn("Capture: output truncated, %d bytes discarded", result.TruncatedBytes)
	}

	result.ExitCode, result.Killed = exitStatus(ctx, err)
	logging.Shell("Capture: exit=%d duration=%s stdout=%d stderr=%d",
		result.ExitCode, result.Duration, len(result.Stdout), len(result.Stderr))
	return result, nil
}

// exitStatus maps a Wait error to an exit code. Errors other than a
// non-zero exit are reported as -1.
func exitStatus(ctx context.Context, err error) (code int, killed bool) {
	if err == nil {
		return 0, false
	}
	if ctx.Err() != nil {
		logging.ShellWarn("Command killed: %v", ctx.Err())
		killed = true
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), killed
	}
	if errors.Is(err, exec.ErrWaitDelay) && !killed {
		// The shell exited cleanly; a background job kept the pipes open.
		logging.ShellWarn("Command left output pipes open after exit")
		return 0, false
	}
	logging.ShellError("Command wait failed: %v", err)
	return -1, killed
}
