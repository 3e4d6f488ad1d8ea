package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setEnv(t *testing.T, overrides map[string]string) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	env := map[string]string{
		"APP_ENV":               "production",
		"LOG_LEVEL":             "error",
		"CONCIERGE_HTTP_ADDR":   "127.0.0.1:0",
		"CORS_ORIGINS":          "",
		"DATABASE_URL":          "sqlite://" + filepath.Join(dir, "concierge.db"),
		"REDIS_ADDR":            "",
		"LLM_PROVIDER":          "openai",
		"OPENAI_API_KEY":        "test-key",
		"CHAT_TIMEOUT":          "",
		"CONCIERGE_CONFIG_FILE": "",
	}
	for k, v := range overrides {
		env[k] = v
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestRunReturnsErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"invalid config", map[string]string{"LLM_PROVIDER": "llama"}},
		{"startup failure", map[string]string{"OPENAI_API_KEY": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			assert.Equal(t, 1, run(context.Background()))
		})
	}
}

func TestRunShutsDownCleanly(t *testing.T) {
	setEnv(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	assert.Equal(t, 0, run(ctx))
}
