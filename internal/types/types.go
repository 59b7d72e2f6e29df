// Package types provides shared type definitions used across termai packages.
// This package exists to break import cycles between perception, session and the
// cmd front end. Types in this package should be foundational data structures with
// no complex dependencies.
package types

import (
	"fmt"
	"strings"
)

// =============================================================================
// CONVERSATION TYPES
// =============================================================================

// Role tags the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the three roles the chat service accepts.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is one role-tagged entry of a conversation.
// Messages are values; once appended to a transcript they are never changed.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemMessage builds the leading instruction message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-role message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// String renders the message for debug logs, shortening long bodies.
func (m Message) String() string {
	content := m.Content
	if runes := []rune(content); len(runes) > 80 {
		content = string(runes[:77]) + "..."
	}
	return fmt.Sprintf("%s: %s", m.Role, strings.ReplaceAll(content, "\n", `\n`))
}

// =============================================================================
// SESSION MODE
// =============================================================================

// Mode selects how a session dispatches non-command input.
type Mode int

const (
	// ModeAgent sends input to the chat service.
	ModeAgent Mode = iota
	// ModeShell runs input directly as a shell command.
	ModeShell
)

func (m Mode) String() string {
	switch m {
	case ModeAgent:
		return "Agent"
	case ModeShell:
		return "Shell"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}
