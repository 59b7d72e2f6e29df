package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"termai/internal/logging"
	"termai/internal/tactile"
)

const dividerWidth = 40

// ConsoleOptions configures a Console.
type ConsoleOptions struct {
	// RenderMarkdown renders answers with glamour.
	RenderMarkdown bool
	// WordWrap is the markdown wrap width.
	WordWrap int
	// Interactive enables the transient "Thinking..." indicator.
	Interactive bool
}

// Console writes session output to the terminal.
type Console struct {
	out    io.Writer
	errOut io.Writer
	styles Styles
	opts   ConsoleOptions

	renderer *glamour.TermRenderer
}

// NewConsole creates a console. A renderer that fails to build falls back to plain text.
func NewConsole(out, errOut io.Writer, styles Styles, opts ConsoleOptions) *Console {
	c := &Console{out: out, errOut: errOut, styles: styles, opts: opts}
	if opts.RenderMarkdown {
		wrap := opts.WordWrap
		if wrap <= 0 {
			wrap = 80
		}
		var err error
		if styles.Theme.IsDark {
			c.renderer, err = glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(wrap),
			)
		} else {
			c.renderer, err = glamour.NewTermRenderer(
				glamour.WithStylePath("light"),
				glamour.WithWordWrap(wrap),
			)
		}
		if err != nil {
			logging.UIWarn("markdown renderer unavailable: %v", err)
			c.renderer = nil
		}
	}
	return c
}

// Stream returns the writer live shell output goes to.
func (c *Console) Stream() io.Writer {
	return c.out
}

// Info prints plain text.
func (c *Console) Info(text string) {
	fmt.Fprintln(c.out, text)
}

// Notice prints a status message such as a mode switch.
func (c *Console) Notice(text string) {
	fmt.Fprintln(c.out, c.styles.Notice.Render(text))
}

// Error prints to the error stream.
func (c *Console) Error(text string) {
	fmt.Fprintln(c.errOut, c.styles.Error.Render(text))
}

// Thought prints the model's reasoning, de-emphasized.
func (c *Console) Thought(text string) {
	fmt.Fprintln(c.out, c.styles.ThoughtHeader.Render("🧠 Thinking Process:"))
	fmt.Fprintln(c.out, c.styles.Thought.Render(text))
	fmt.Fprintln(c.out, c.divider())
}

// Answer prints the visible part of a reply.
func (c *Console) Answer(text string) {
	if text == "" {
		return
	}
	if c.renderer != nil {
		rendered, err := c.renderer.Render(text)
		if err == nil {
			fmt.Fprint(c.out, rendered)
			return
		}
		logging.UIWarn("markdown render failed: %v", err)
	}
	fmt.Fprintln(c.out, text)
}

// ProposedCommand shows a command awaiting confirmation.
func (c *Console) ProposedCommand(command string) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.styles.CommandLabel.Render("[!] AI wants to execute:"))
	fmt.Fprintln(c.out, c.styles.Command.Render(command))
}

// CommandOutput prints the captured result of a confirmed command.
func (c *Console) CommandOutput(res *tactile.ExecutionResult) {
	fmt.Fprintln(c.out, c.styles.OutputHeader.Render("-- Output --"))
	if res.Stdout != "" {
		fmt.Fprint(c.out, ensureNewline(res.Stdout))
	}
	if res.Stderr != "" {
		fmt.Fprint(c.out, c.styles.Stderr.Render(strings.TrimRight(res.Stderr, "\n"))+"\n")
	}
	if res.Truncated {
		fmt.Fprintln(c.out, c.styles.Warning.Render(fmt.Sprintf("[output truncated, %d bytes dropped]", res.TruncatedBytes)))
	}
	if res.IsNonZeroExit() {
		fmt.Fprintln(c.out, c.styles.Muted.Render(fmt.Sprintf("(exit status %d)", res.ExitCode)))
	}
	fmt.Fprintln(c.out, c.divider())
}

// StartThinking prints a waiting indicator that the returned func erases.
func (c *Console) StartThinking() func() {
	if !c.opts.Interactive {
		return func() {}
	}
	fmt.Fprint(c.out, c.styles.Muted.Render("Thinking..."))
	return func() {
		fmt.Fprint(c.out, "\r\x1b[K")
	}
}

func (c *Console) divider() string {
	return c.styles.Divider.Render(strings.Repeat("─", dividerWidth))
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
