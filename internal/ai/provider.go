package ai

import "context"

// Provider is a chat completion backend.
type Provider interface {
	Chat(ctx context.Context, systemPrompt string, prompt string) (string, error)
}

// Options are the model parameters shared by all backends.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}
