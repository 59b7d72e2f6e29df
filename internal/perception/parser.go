package perception

import (
	"regexp"
	"strings"

	"termai/internal/logging"
)

// Fence is the three-backtick code fence used by the reply markup.
const Fence = "```"

var (
	thinkPattern   = regexp.MustCompile(`(?s)<think>(.*?)</think>`)
	executePattern = regexp.MustCompile("(?s)" + Fence + `execute\s*(.*?)\s*` + Fence)
)

// Reply is one model reply split into its parts.
type Reply struct {
	// Thought is the inner text of the first <think> span.
	Thought    string
	HasThought bool

	// Answer is the raw reply with the first <think> span removed.
	Answer string

	// Command is the trimmed body of the first execute block.
	Command    string
	HasCommand bool
}

// ParseReply splits raw reply text. Thought and command are extracted
// independently from the same input.
func ParseReply(raw string) Reply {
	var r Reply
	r.Thought, r.Answer, r.HasThought = ExtractThought(raw)
	r.Command, r.HasCommand = ExtractCommand(raw)
	logging.ParserDebug("ParseReply: len=%d thought=%v command=%v", len(raw), r.HasThought, r.HasCommand)
	return r
}

// ExtractThought returns the first <think> span's inner text and the input
// with that whole span cut out. Without a span the input comes back unchanged.
func ExtractThought(raw string) (thought, answer string, ok bool) {
	loc := thinkPattern.FindStringSubmatchIndex(raw)
	if loc == nil {
		return "", raw, false
	}
	return raw[loc[2]:loc[3]], raw[:loc[0]] + raw[loc[1]:], true
}

// ExtractCommand returns the body of the first execute block, trimmed.
// An empty block counts as no command.
func ExtractCommand(raw string) (string, bool) {
	m := executePattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	cmd := strings.TrimSpace(m[1])
	return cmd, cmd != ""
}
