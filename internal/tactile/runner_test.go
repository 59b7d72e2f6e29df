package tactile

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"termai/internal/config"
)

// =============================================================================
// MOCK HELPER
// =============================================================================

// TestHelperProcess isn't a real test. It's used as a helper process
// for mocking exec.Command.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	if val := os.Getenv("MOCK_STDOUT"); val != "" {
		fmt.Fprint(os.Stdout, val)
	} else {
		// Args are [binary, -test.run=TestHelperProcess, --, shell, args...]
		for i, arg := range os.Args {
			if arg == "--" {
				fmt.Fprint(os.Stdout, strings.Join(os.Args[i+1:], " "))
				break
			}
		}
	}
	if val := os.Getenv("MOCK_STDERR"); val != "" {
		fmt.Fprint(os.Stderr, val)
	}
	code, _ := strconv.Atoi(os.Getenv("MOCK_EXIT"))
	os.Exit(code)
}

func fakeExecCommandContext(ctx context.Context, command string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", command}
	cs = append(cs, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
	return cmd
}

func useFakeExec(t *testing.T) {
	t.Helper()
	old := execCommandContext
	execCommandContext = fakeExecCommandContext
	t.Cleanup(func() { execCommandContext = old })
}

func requireUnixShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("requires /bin/sh")
	}
}

// =============================================================================
// SHELL RESOLUTION
// =============================================================================

func TestResolveShell(t *testing.T) {
	tests := []struct {
		path     string
		args     []string
		wantArgs []string
	}{
		{path: "/bin/bash", wantArgs: []string{"-c"}},
		{path: "/usr/bin/fish", wantArgs: []string{"-c"}},
		{path: `C:\Windows\System32\cmd.exe`, wantArgs: []string{"/C"}},
		{path: "pwsh", wantArgs: []string{"-NoProfile", "-Command"}},
		{path: "/bin/zsh", args: []string{"-l", "-c"}, wantArgs: []string{"-l", "-c"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			shell, args := ResolveShell(tt.path, tt.args)
			assert.Equal(t, tt.path, shell)
			assert.Equal(t, tt.wantArgs, args)
		})
	}

	shell, _ := ResolveShell("", nil)
	if runtime.GOOS == "windows" {
		assert.Equal(t, "cmd", shell)
	} else {
		assert.Equal(t, "/bin/sh", shell)
	}
}

func TestResolveShell_FromLoadedConfig(t *testing.T) {
	tests := []struct {
		shell    string
		wantArgs []string
	}{
		{shell: "cmd.exe", wantArgs: []string{"/C"}},
		{shell: "pwsh", wantArgs: []string{"-NoProfile", "-Command"}},
		{shell: "powershell.exe", wantArgs: []string{"-NoProfile", "-Command"}},
		{shell: "/bin/bash", wantArgs: []string{"-c"}},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			t.Setenv("OLLAMA_HOST", "")
			t.Setenv("TERMAI_MODEL", "")
			t.Setenv("TERMAI_SHELL", tt.shell)

			cfg, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
			require.NoError(t, err)

			shell, args := ResolveShell(cfg.Shell.Path, cfg.Shell.Args)
			assert.Equal(t, tt.shell, shell)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

// =============================================================================
// CAPTURED MODE
// =============================================================================

func TestCapture_PassesCommandToShell(t *testing.T) {
	useFakeExec(t)

	r := NewRunner(Config{ShellPath: "/bin/fish"})
	res, err := r.Capture(context.Background(), "ls -la")
	require.NoError(t, err)

	assert.Equal(t, "/bin/fish -c ls -la", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "ls -la", res.Command)
}

func TestCapture_SeparatesStreamsAndExitCode(t *testing.T) {
	useFakeExec(t)
	t.Setenv("MOCK_STDOUT", "out-text")
	t.Setenv("MOCK_STDERR", "err-text")
	t.Setenv("MOCK_EXIT", "3")

	r := NewRunner(Config{ShellPath: "/bin/sh"})
	res, err := r.Capture(context.Background(), "whatever")
	require.NoError(t, err, "non-zero exit is data, not an error")

	assert.Equal(t, "out-text", res.Stdout)
	assert.Equal(t, "err-text", res.Stderr)
	assert.Equal(t, 3, res.ExitCode)
	assert.True(t, res.IsNonZeroExit())
}

func TestCapture_Truncates(t *testing.T) {
	useFakeExec(t)
	t.Setenv("MOCK_STDOUT", strings.Repeat("x", 100))

	r := NewRunner(Config{ShellPath: "/bin/sh", MaxOutputBytes: 10})
	res, err := r.Capture(context.Background(), "big")
	require.NoError(t, err)

	assert.Len(t, res.Stdout, 10)
	assert.True(t, res.Truncated)
	assert.EqualValues(t, 90, res.TruncatedBytes)
}

func TestCapture_SpawnError(t *testing.T) {
	r := NewRunner(Config{ShellPath: filepath.Join(t.TempDir(), "no-such-shell")})

	_, err := r.Capture(context.Background(), "echo hi")

	var spawnErr *SpawnError
	require.ErrorAs(t, err, &spawnErr)
	assert.Contains(t, spawnErr.Error(), "no-such-shell")
}

func TestCapture_RealShell(t *testing.T) {
	requireUnixShell(t)

	r := NewRunner(Config{ShellPath: "/bin/sh"})
	res, err := r.Capture(context.Background(), "echo out; echo err >&2; exit 7")
	require.NoError(t, err)

	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Equal(t, 7, res.ExitCode)
}

func TestCapture_ContextKillsProcess(t *testing.T) {
	requireUnixShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	r := NewRunner(Config{ShellPath: "/bin/sh"})
	start := time.Now()
	res, err := r.Capture(ctx, "exec sleep 30")
	require.NoError(t, err)

	assert.True(t, res.Killed)
	assert.Less(t, time.Since(start), 10*time.Second)
}

// =============================================================================
// STREAMING MODE
// =============================================================================

func TestStream_AllLinesFromBothStreams(t *testing.T) {
	requireUnixShell(t)
	defer goleak.VerifyNone(t)

	const n, m = 50, 30
	script := fmt.Sprintf(`i=0; while [ $i -lt %d ]; do echo "out $i"; i=$((i+1)); done &
j=0; while [ $j -lt %d ]; do echo "err $j" >&2; j=$((j+1)); done; wait`, n, m)

	var console bytes.Buffer
	r := NewRunner(Config{ShellPath: "/bin/sh"})
	res, err := r.Stream(context.Background(), script, &console)
	require.NoError(t, err)

	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, res.Log, console.String(), "console receives the same lines as the log")

	lines := strings.Split(strings.TrimSuffix(res.Log, "\n"), "\n")
	require.Len(t, lines, n+m)

	// Order within each stream is preserved.
	nextOut, nextErr := 0, 0
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "out "):
			assert.Equal(t, fmt.Sprintf("out %d", nextOut), line)
			nextOut++
		case strings.HasPrefix(line, "err "):
			assert.Equal(t, fmt.Sprintf("err %d", nextErr), line)
			nextErr++
		default:
			t.Fatalf("unexpected line %q", line)
		}
	}
	assert.Equal(t, n, nextOut)
	assert.Equal(t, m, nextErr)
}

func TestStream_LargeStderrDoesNotDeadlock(t *testing.T) {
	requireUnixShell(t)

	// Far more than a pipe buffer on stderr before anything on stdout.
	script := `i=0; while [ $i -lt 20000 ]; do echo "padding padding padding $i" >&2; i=$((i+1)); done; echo done`

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	r := NewRunner(Config{ShellPath: "/bin/sh"})
	res, err := r.Stream(ctx, script, nil)
	require.NoError(t, err)

	assert.False(t, res.Killed)
	assert.True(t, strings.HasSuffix(res.Log, "done\n"))
}

func TestStream_NonZeroExitAndPartialLine(t *testing.T) {
	requireUnixShell(t)

	r := NewRunner(Config{ShellPath: "/bin/sh"})
	res, err := r.Stream(context.Background(), "printf 'no newline'; exit 2", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, res.ExitCode)
	assert.Equal(t, "no newline\n", res.Log)
}

func TestStream_BackgroundJobDoesNotHoldTurn(t *testing.T) {
	requireUnixShell(t)

	r := NewRunner(Config{ShellPath: "/bin/sh"})
	start := time.Now()
	res, err := r.Stream(context.Background(), "echo started; sleep 6 &", nil)
	elapsed := time.Since(start)
	require.NoError(t, err)

	assert.Less(t, elapsed, 5*time.Second, "returns after WaitDelay, not when the background job ends")
	assert.Equal(t, "started\n", res.Log)
	assert.Equal(t, 0, res.ExitCode)
	assert.False(t, res.Killed)
}

func TestCapture_BackgroundJobDoesNotHoldTurn(t *testing.T) {
	requireUnixShell(t)

	r := NewRunner(Config{ShellPath: "/bin/sh"})
	start := time.Now()
	res, err := r.Capture(context.Background(), "echo started; sleep 6 &")
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, "started\n", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)
}

func TestStream_SpawnError(t *testing.T) {
	var console bytes.Buffer
	r := NewRunner(Config{ShellPath: filepath.Join(t.TempDir(), "missing")})

	_, err := r.Stream(context.Background(), "echo hi", &console)

	var spawnErr *SpawnError
	require.ErrorAs(t, err, &spawnErr)
	assert.Empty(t, console.String())
}

func TestStream_Mocked(t *testing.T) {
	useFakeExec(t)
	t.Setenv("MOCK_STDOUT", "a\nb\n")
	t.Setenv("MOCK_STDERR", "c\n")

	var console bytes.Buffer
	r := NewRunner(Config{ShellPath: "/bin/sh"})
	res, err := r.Stream(context.Background(), "x", &console)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a", "b", "c"}, strings.Fields(res.Log))
	assert.Equal(t, res.Log, console.String())
}

// =============================================================================
// WORKING DIRECTORY
// =============================================================================

func TestChdir(t *testing.T) {
	base := t.TempDir()
	sub := filepath.Join(base, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	file := filepath.Join(base, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	r := NewRunner(Config{WorkingDirectory: base})

	got, err := r.Chdir("sub")
	require.NoError(t, err)
	assert.Equal(t, sub, got)
	assert.Equal(t, sub, r.Dir())

	got, err = r.Chdir("..")
	require.NoError(t, err)
	assert.Equal(t, base, got)

	_, err = r.Chdir("file.txt")
	assert.Error(t, err)
	_, err = r.Chdir("does-not-exist")
	assert.Error(t, err)
	assert.Equal(t, base, r.Dir(), "failed cd leaves the directory alone")

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	got, err = r.Chdir("")
	require.NoError(t, err)
	assert.Equal(t, home, got)
}

func TestChdir_AffectsCommands(t *testing.T) {
	requireUnixShell(t)

	dir := t.TempDir()
	r := NewRunner(Config{ShellPath: "/bin/sh"})
	_, err := r.Chdir(dir)
	require.NoError(t, err)

	res, err := r.Capture(context.Background(), "pwd -P")
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, want, strings.TrimSpace(res.Stdout))
}
