package ai

import (
	"context"
	"fmt"
	"strings"
)

// Provider names accepted by NewProvider.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// NewProvider builds the configured provider. The returned close func is never nil.
func NewProvider(ctx context.Context, name, apiKey, model string) (LLMProvider, func(), error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProviderOpenAI, "":
		if apiKey == "" {
			return nil, func() {}, fmt.Errorf("openai: missing api key")
		}
		return NewOpenAIProvider(apiKey, model), func() {}, nil
	case ProviderGemini:
		p, err := NewGeminiProvider(ctx, apiKey, model)
		if err != nil {
			return nil, func() {}, err
		}
		return p, p.Close, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown llm provider %q", name)
	}
}
