package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"concierge/internal/config"
	httptransport "concierge/internal/http"
)

// TestLiveChatRoundTrip drives two real turns through the router against the configured
// language model and catalog, then checks both turns landed in one session.
func TestLiveChatRoundTrip(t *testing.T) {
	if os.Getenv("CONCIERGE_LIVE_TEST") == "" {
		t.Skip("CONCIERGE_LIVE_TEST not set; skipping live model test")
	}
	loadDotEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.DB.URL = "sqlite://:memory:"
	cfg.DB.AutoMigrate = true

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	a, cleanup, err := Build(ctx, cfg, zap.NewNop())
	defer cleanup()
	require.NoError(t, err)

	srv := httptest.NewServer(httptransport.NewRouter(httptransport.ServerDeps{
		Chat:     a.Concierge,
		Catalog:  a.Catalog,
		Sessions: a.Sessions,
		Metrics:  a.Metrics,
		Logger:   zap.NewNop(),
	}))
	defer srv.Close()
	client := &http.Client{Timeout: 90 * time.Second}

	status, body := callChat(t, client, srv.URL, map[string]any{
		"message": "I need a thank-you gift for my neighbour",
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var first struct {
		Reply     string            `json:"reply"`
		SessionID string            `json:"session_id"`
		Products  []json.RawMessage `json:"products"`
	}
	require.NoError(t, json.Unmarshal(body, &first))
	require.NotEmpty(t, first.SessionID)
	assert.NotEmpty(t, strings.TrimSpace(first.Reply))
	assert.LessOrEqual(t, len(first.Products), 5)
	t.Logf("first reply: %s", first.Reply)

	status, body = callChat(t, client, srv.URL, map[string]any{
		"message":    "Something sweet, under $50, needed by Friday",
		"session_id": first.SessionID,
		"history": []map[string]string{
			{"role": "user", "content": "I need a thank-you gift for my neighbour"},
			{"role": "assistant", "content": first.Reply},
		},
	})
	require.Equal(t, http.StatusOK, status, string(body))

	msgs, err := a.Sessions.Messages(ctx, first.SessionID)
	require.NoError(t, err)
	assert.Len(t, msgs, 4)
}

func callChat(t *testing.T, client *http.Client, baseURL string, payload map[string]any) (int, []byte) {
	t.Helper()

	b, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := client.Post(baseURL+"/api/chat", "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

// loadDotEnv walks up from the test directory to the nearest .env; real env vars win.
func loadDotEnv(t *testing.T) {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for range 8 {
		candidate := filepath.Join(dir, ".env")
		if _, err := os.Stat(candidate); err == nil {
			if err := godotenv.Load(candidate); err != nil {
				t.Logf("load %s: %v", candidate, err)
			}
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
