package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concierge/internal/ai"
)

type fakeLLM struct {
	reply string
	err   error

	calls     int
	system    string
	history   []ai.Message
	maxTokens int
}

func (f *fakeLLM) Complete(_ context.Context, system string, history []ai.Message, maxTokens int) (string, error) {
	f.calls++
	f.system = system
	f.history = history
	f.maxTokens = maxTokens
	return f.reply, f.err
}

func TestExtractParsesModelOutput(t *testing.T) {
	llm := &fakeLLM{reply: `{"occasion": "anniversary", "keywords": ["roses"], "confidence": 0.8}`}
	svc := NewService(llm, nil, nil)

	history := []ai.Message{
		{Role: ai.RoleUser, Content: "I need something for our anniversary"},
		{Role: ai.RoleAssistant, Content: "Lovely! Anything in mind?"},
		{Role: ai.RoleUser, Content: "She loves roses"},
	}
	got, err := svc.Extract(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, "anniversary", got.OccasionValue())
	assert.Equal(t, []string{"roses"}, got.Keywords)

	assert.Equal(t, 1, llm.calls)
	assert.Equal(t, SystemPrompt, llm.system)
	assert.Equal(t, history, llm.history)
	assert.Equal(t, DefaultMaxTokens, llm.maxTokens)
}

func TestExtractRecoversMalformedOutput(t *testing.T) {
	svc := NewService(&fakeLLM{reply: "I think it's a birthday!"}, nil, nil)
	got, err := svc.Extract(context.Background(), []ai.Message{{Role: ai.RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, Fallback(), got)
}

func TestExtractPropagatesProviderError(t *testing.T) {
	boom := errors.New("provider down")
	svc := NewService(&fakeLLM{err: boom}, nil, nil)
	_, err := svc.Extract(context.Background(), []ai.Message{{Role: ai.RoleUser, Content: "hi"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestExtractRequiresTrailingUserMessage(t *testing.T) {
	llm := &fakeLLM{}
	svc := NewService(llm, nil, nil)

	_, err := svc.Extract(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyHistory)

	_, err = svc.Extract(context.Background(), []ai.Message{{Role: ai.RoleAssistant, Content: "hello"}})
	assert.ErrorIs(t, err, ErrEmptyHistory)
	assert.Zero(t, llm.calls)
}
