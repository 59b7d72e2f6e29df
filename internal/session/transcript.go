package session

import "termai/internal/types"

// Transcript is the ordered conversation sent in full on every chat request.
// The first message is the system instruction and is never removed or changed.
// A transcript belongs to one session loop and is not safe for concurrent use.
type Transcript struct {
	messages []types.Message
}

// NewTranscript starts a transcript with the system instruction.
func NewTranscript(system string) *Transcript {
	return &Transcript{messages: []types.Message{types.SystemMessage(system)}}
}

// Append adds m to the end.
func (t *Transcript) Append(m types.Message) {
	t.messages = append(t.messages, m)
}

// Snapshot returns a copy of every message in order.
func (t *Transcript) Snapshot() []types.Message {
	out := make([]types.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages, system instruction included.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// system returns the leading instruction.
func (t *Transcript) system() types.Message {
	return t.messages[0]
}

// last returns the most recent message.
func (t *Transcript) last() types.Message {
	return t.messages[len(t.messages)-1]
}
