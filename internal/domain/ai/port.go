package ai

import "context"

// Roles understood by the completion service.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// CompletionRequest is one chat-completion call.
type CompletionRequest struct {
	Messages    []Message
	Model       string
	Temperature float32
	MaxTokens   int
}

// Completer turns an ordered message list into the assistant's reply text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
