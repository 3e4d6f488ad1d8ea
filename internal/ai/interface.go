package ai

import (
	"context"
)

// LLMProvider defines the contract for interacting with AI models.
// Both pipeline stages talk to a provider through this interface so Gemini and OpenAI can be swapped by config.
type LLMProvider interface {
	// Complete sends a system instruction followed by the conversation history and returns the model's text.
	// maxTokens bounds the length of the answer. Transport and provider errors are returned as-is; there is no retry.
	Complete(ctx context.Context, system string, history []Message, maxTokens int) (string, error)
}
