package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"concierge/internal/config"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.DB.URL = "sqlite://:memory:"
	cfg.LLM.OpenAIKey = "test-key"
	cfg.Redis.Addr = ""
	return cfg
}

func TestBuildWithInMemorySQLite(t *testing.T) {
	a, cleanup, err := Build(context.Background(), testConfig(), zap.NewNop())
	defer cleanup()
	require.NoError(t, err)

	assert.NotNil(t, a.Concierge)
	assert.NotNil(t, a.Catalog)
	assert.NotNil(t, a.Sessions)
	assert.NotNil(t, a.Metrics)

	id, err := a.Sessions.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestBuildFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown provider", func(c *config.Config) { c.LLM.Provider = "llama" }},
		{"missing openai key", func(c *config.Config) { c.LLM.OpenAIKey = "" }},
		{"unsupported database scheme", func(c *config.Config) { c.DB.URL = "mysql://x" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			a, cleanup, err := Build(context.Background(), cfg, zap.NewNop())
			require.Error(t, err)
			assert.Nil(t, a)
			assert.NotPanics(t, cleanup)
		})
	}
}
