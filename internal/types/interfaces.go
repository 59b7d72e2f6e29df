package types

import (
	"context"
)

// ChatClient defines the interface for the chat service.
// The service is stateless: every Chat call carries the full conversation.
type ChatClient interface {
	// ListModels returns the names of the installed models.
	ListModels(ctx context.Context) ([]string, error)
	// Chat sends the conversation and returns the assistant reply.
	Chat(ctx context.Context, model string, messages []Message) (Message, error)
}
