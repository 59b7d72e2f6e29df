package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"termai/internal/logging"
	"termai/internal/session"
)

// Terminal reads user input. On a TTY it runs small bubbletea programs for
// line editing and model picking; otherwise it falls back to plain line reads.
type Terminal struct {
	in     io.Reader
	out    io.Writer
	styles Styles
	tty    bool

	reader *bufio.Reader

	history     []string
	completions []string
}

var (
	_ session.LineReader = (*Terminal)(nil)
	_ session.Confirmer  = (*Terminal)(nil)
	_ session.Picker     = (*Terminal)(nil)
)

// NewTerminal creates a terminal over in and out.
func NewTerminal(in io.Reader, out io.Writer, styles Styles) *Terminal {
	return &Terminal{
		in:     in,
		out:    out,
		styles: styles,
		tty:    IsTerminal(in) && IsTerminal(out),
		reader: bufio.NewReader(in),
	}
}

// IsTerminal reports whether v is an *os.File attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Interactive reports whether the rich line editor is in use.
func (t *Terminal) Interactive() bool {
	return t.tty
}

// SetCompletions replaces the words offered by Tab completion.
func (t *Terminal) SetCompletions(words []string) {
	t.completions = append([]string(nil), words...)
}

// ReadLine reads one line, with history and completion on a TTY.
func (t *Terminal) ReadLine(ctx context.Context, prompt string) (string, error) {
	var (
		line string
		err  error
	)
	if t.tty {
		line, err = t.runLineEditor(ctx, prompt, true)
	} else {
		line, err = t.readPlain(ctx, prompt)
	}
	if err != nil {
		return "", err
	}
	t.remember(line)
	return line, nil
}

// Confirm reads an answer without touching history or completion.
func (t *Terminal) Confirm(ctx context.Context, prompt string) (string, error) {
	if t.tty {
		return t.runLineEditor(ctx, prompt, false)
	}
	return t.readPlain(ctx, prompt)
}

func (t *Terminal) remember(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if n := len(t.history); n > 0 && t.history[n-1] == line {
		return
	}
	t.history = append(t.history, line)
}

func (t *Terminal) runLineEditor(ctx context.Context, prompt string, rich bool) (string, error) {
	var history, completions []string
	if rich {
		history, completions = t.history, t.completions
	}
	model := newLineModel(t.stylePrompt(prompt), history, completions)

	p := tea.NewProgram(model,
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
		tea.WithContext(ctx),
	)
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("line editor failed: %w", err)
	}

	m := final.(lineModel)
	if m.interrupted {
		return "", session.ErrInterrupted
	}
	return m.value, nil
}

func (t *Terminal) stylePrompt(prompt string) string {
	if strings.HasPrefix(prompt, "(Shell") {
		return t.styles.ShellPrompt.Render(prompt)
	}
	return t.styles.Prompt.Render(prompt)
}

type readResult struct {
	line string
	err  error
}

// readPlain reads a line from a non-terminal input. EOF without data ends input.
func (t *Terminal) readPlain(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(t.out, prompt)

	ch := make(chan readResult, 1)
	go func() {
		line, err := t.reader.ReadString('\n')
		ch <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			if errors.Is(r.err, io.EOF) && r.line != "" {
				return strings.TrimRight(r.line, "\r\n"), nil
			}
			if errors.Is(r.err, io.EOF) {
				return "", session.ErrInterrupted
			}
			return "", r.err
		}
		return strings.TrimRight(r.line, "\r\n"), nil
	}
}

// Pick presents choices and returns the chosen index.
func (t *Terminal) Pick(ctx context.Context, title string, choices []string) (int, error) {
	if len(choices) == 0 {
		return -1, errors.New("nothing to choose from")
	}
	if t.tty {
		return t.runPicker(ctx, title, choices)
	}
	return t.pickPlain(ctx, title, choices)
}

// pickPlain prints a numbered list and reads a 1-based choice.
func (t *Terminal) pickPlain(ctx context.Context, title string, choices []string) (int, error) {
	fmt.Fprintln(t.out, title+":")
	for i, c := range choices {
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, c)
	}
	for {
		line, err := t.readPlain(ctx, "Select model (number): ")
		if err != nil {
			return -1, err
		}
		idx, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr == nil && idx >= 1 && idx <= len(choices) {
			logging.UIDebug("Picked %q", choices[idx-1])
			return idx - 1, nil
		}
		fmt.Fprintln(t.out, "Invalid selection.")
	}
}

// WaitForEnter blocks until the user presses Enter, so a fatal message stays
// readable before a terminal window closes. It returns at once without a TTY.
func (t *Terminal) WaitForEnter(prompt string) {
	if !t.tty {
		return
	}
	fmt.Fprint(t.out, prompt)
	_, _ = t.reader.ReadString('\n')
}
