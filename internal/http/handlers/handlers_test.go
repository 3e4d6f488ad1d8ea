// README: Handler tests with stubbed services on a bare gin engine.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concierge/internal/http/handlers"
	"concierge/internal/modules/catalog"
	"concierge/internal/modules/concierge"
	"concierge/internal/modules/intent"
	"concierge/internal/modules/session"
)

type stubChat struct {
	res      *concierge.TurnResult
	err      error
	got      concierge.TurnRequest
	deadline bool
}

func (s *stubChat) Chat(ctx context.Context, req concierge.TurnRequest) (*concierge.TurnResult, error) {
	s.got = req
	_, s.deadline = ctx.Deadline()
	return s.res, s.err
}

type stubSearch struct {
	products []catalog.Product
	keywords []string
}

func (s *stubSearch) Search(_ context.Context, keywords []string) []catalog.Product {
	s.keywords = keywords
	return s.products
}

type stubSessions struct {
	clickErr   error
	convertErr error
	click      session.ClickCommand
	sess       *session.Session
	msgs       []session.Message
	getErr     error
}

func (s *stubSessions) RecordClick(_ context.Context, cmd session.ClickCommand) (*session.ProductClick, error) {
	s.click = cmd
	if s.clickErr != nil {
		return nil, s.clickErr
	}
	return &session.ProductClick{SessionID: cmd.SessionID, SKU: cmd.SKU}, nil
}

func (s *stubSessions) MarkConverted(_ context.Context, _ string) error {
	return s.convertErr
}

func (s *stubSessions) Get(_ context.Context, _ string) (*session.Session, error) {
	return s.sess, s.getErr
}

func (s *stubSessions) Messages(_ context.Context, _ string) ([]session.Message, error) {
	return s.msgs, s.getErr
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestChatHandler(t *testing.T) {
	chat := &stubChat{res: &concierge.TurnResult{
		Reply:     "Here you go",
		Products:  []catalog.Product{{SKU: "A1", Name: "Berries", Tags: []string{}}},
		Intent:    intent.Fallback(),
		SessionID: "sess-1",
	}}
	r := newEngine()
	r.POST("/api/chat", handlers.NewChatHandler(chat, time.Second).Chat)

	w := doRequest(r, http.MethodPost, "/api/chat", map[string]any{
		"message":    "birthday gift",
		"session_id": "sess-1",
		"history":    []map[string]string{{"role": "assistant", "content": "Hi!"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Here you go", body["reply"])
	assert.Equal(t, "sess-1", body["session_id"])
	assert.Len(t, body["products"], 1)
	in := body["intent"].(map[string]any)
	assert.Equal(t, true, in["needs_clarification"])
	assert.Nil(t, in["occasion"])
	assert.Equal(t, []any{}, in["keywords"])

	assert.Equal(t, "birthday gift", chat.got.Message)
	require.Len(t, chat.got.History, 1)
	assert.Equal(t, "assistant", chat.got.History[0].Role)
	assert.True(t, chat.deadline)
}

func TestChatHandlerErrors(t *testing.T) {
	cases := []struct {
		name string
		body any
		err  error
		code int
		msg  string
	}{
		{"invalid json", "{", nil, http.StatusBadRequest, "invalid json"},
		{"empty message", map[string]any{"message": ""}, concierge.ErrEmptyMessage, http.StatusBadRequest, concierge.ErrEmptyMessage.Error()},
		{"bad role", map[string]any{"message": "x"}, concierge.ErrInvalidRole, http.StatusBadRequest, concierge.ErrInvalidRole.Error()},
		{"pipeline failure", map[string]any{"message": "x"}, errors.New("openai: status 500"), http.StatusInternalServerError, "chat failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newEngine()
			r.POST("/api/chat", handlers.NewChatHandler(&stubChat{err: tc.err}, 0).Chat)

			w := doRequest(r, http.MethodPost, "/api/chat", tc.body)
			assert.Equal(t, tc.code, w.Code)
			assert.Equal(t, tc.msg, decode(t, w)["error"])
		})
	}
}

func TestSearchHandler(t *testing.T) {
	search := &stubSearch{products: []catalog.Product{{SKU: "A1", Name: "Berries"}}}
	r := newEngine()
	r.POST("/api/search", handlers.NewSearchHandler(search).Search)

	w := doRequest(r, http.MethodPost, "/api/search", map[string]string{"keyword": " chocolate "})
	require.Equal(t, http.StatusOK, w.Code)
	var products []catalog.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	assert.Equal(t, search.products, products)
	assert.Equal(t, []string{"chocolate"}, search.keywords)

	w = doRequest(r, http.MethodPost, "/api/search", map[string]string{"keyword": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	search.products = []catalog.Product{}
	w = doRequest(r, http.MethodPost, "/api/search", map[string]string{"keyword": "nothing"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestAnalyticsHandler(t *testing.T) {
	sessions := &stubSessions{}
	r := newEngine()
	h := handlers.NewAnalyticsHandler(sessions)
	r.POST("/api/analytics/click", h.Click)
	r.POST("/api/analytics/convert", h.Convert)

	w := doRequest(r, http.MethodPost, "/api/analytics/click", map[string]any{
		"session_id": "s1", "sku": "A1", "name": "Berries", "position": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
	assert.Equal(t, session.ClickCommand{SessionID: "s1", SKU: "A1", Name: "Berries", Position: 2}, sessions.click)

	sessions.clickErr = session.ErrNotFound
	w = doRequest(r, http.MethodPost, "/api/analytics/click", map[string]any{"session_id": "nope", "sku": "A1", "position": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	sessions.clickErr = session.ErrBadRequest
	w = doRequest(r, http.MethodPost, "/api/analytics/click", map[string]any{"session_id": "s1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/api/analytics/convert", map[string]any{"session_id": "s1"})
	require.Equal(t, http.StatusOK, w.Code)

	sessions.convertErr = session.ErrNotFound
	w = doRequest(r, http.MethodPost, "/api/analytics/convert", map[string]any{"session_id": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	sessions.convertErr = errors.New("disk full")
	w = doRequest(r, http.MethodPost, "/api/analytics/convert", map[string]any{"session_id": "s1"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", decode(t, w)["error"])
}

func TestSessionHandler(t *testing.T) {
	created := time.Date(2025, 2, 18, 12, 0, 0, 0, time.UTC)
	sessions := &stubSessions{
		sess: &session.Session{ID: "s1", CreatedAt: created, UpdatedAt: created, Converted: true},
		msgs: []session.Message{{ID: "m1", SessionID: "s1", Role: session.RoleUser, Content: "hi", CreatedAt: created}},
	}
	r := newEngine()
	h := handlers.NewSessionHandler(sessions)
	r.GET("/api/sessions/:id", h.Get)
	r.GET("/api/sessions/:id/messages", h.Messages)

	w := doRequest(r, http.MethodGet, "/api/sessions/s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"s1","created_at":"2025-02-18T12:00:00Z","converted":true}`, w.Body.String())

	w = doRequest(r, http.MethodGet, "/api/sessions/s1/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var msgs []session.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msgs))
	assert.Equal(t, sessions.msgs, msgs)

	sessions.getErr = session.ErrNotFound
	w = doRequest(r, http.MethodGet, "/api/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
