package llm

import "context"

// Message is one conversation turn in provider-neutral form.
type Message struct {
	Role    string // "user", "assistant" or "system"
	Content string
}

// LLMProvider is the single capability the agent needs from a model
// backend: turn the conversation so far into the next completion.
type LLMProvider interface {
	Chat(ctx context.Context, history []Message) (string, error)
}
