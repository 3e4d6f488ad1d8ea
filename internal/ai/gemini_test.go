package ai

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiRole(t *testing.T) {
	tests := []struct {
		role string
		want string
	}{
		{RoleAssistant, "model"},
		{RoleUser, "user"},
		{"", "user"},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.want, geminiRole(tt.role))
		})
	}
}

func TestGeminiHistory(t *testing.T) {
	got := geminiHistory([]Message{
		{Role: RoleUser, Content: "gift for my boss"},
		{Role: RoleAssistant, Content: "what's the budget?"},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "user", got[0].Role)
	assert.Equal(t, []genai.Part{genai.Text("gift for my boss")}, got[0].Parts)
	assert.Equal(t, "model", got[1].Role)
	assert.Equal(t, []genai.Part{genai.Text("what's the budget?")}, got[1].Parts)

	assert.Empty(t, geminiHistory(nil))
}

func TestNewGeminiProviderRequiresKey(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), "  ", "")
	assert.Error(t, err)
}

func TestGeminiCompleteRejectsEmptyHistory(t *testing.T) {
	p := &GeminiProvider{modelName: DefaultGeminiModel}
	_, err := p.Complete(context.Background(), "system", nil, 100)
	assert.Error(t, err)
}
