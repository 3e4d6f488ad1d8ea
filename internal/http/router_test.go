package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"concierge/internal/metrics"
	"concierge/internal/modules/catalog"
	"concierge/internal/modules/concierge"
	"concierge/internal/modules/session"
)

type panicChat struct{}

func (panicChat) Chat(context.Context, concierge.TurnRequest) (*concierge.TurnResult, error) {
	panic("boom")
}

type emptySearch struct{}

func (emptySearch) Search(context.Context, []string) []catalog.Product { return []catalog.Product{} }

type noSessions struct{}

func (noSessions) RecordClick(context.Context, session.ClickCommand) (*session.ProductClick, error) {
	return nil, session.ErrNotFound
}
func (noSessions) MarkConverted(context.Context, string) error { return session.ErrNotFound }
func (noSessions) Get(context.Context, string) (*session.Session, error) {
	return nil, session.ErrNotFound
}
func (noSessions) Messages(context.Context, string) ([]session.Message, error) {
	return nil, session.ErrNotFound
}

func testRouter(origins []string) (*gin.Engine, *metrics.Metrics) {
	gin.SetMode(gin.TestMode)
	m := metrics.New("test")
	return NewRouter(ServerDeps{
		Chat:        panicChat{},
		Catalog:     emptySearch{},
		Sessions:    noSessions{},
		Metrics:     m,
		Logger:      zap.NewNop(),
		CORSOrigins: origins,
	}), m
}

func TestHealth(t *testing.T) {
	r, _ := testRouter(nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestRecoveryReturnsJSON(t *testing.T) {
	r, m := testRouter(nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`)))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())

	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPDuration))
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := testRouter(nil)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/sessions/abc", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `test_http_request_duration_seconds_count{method="GET",route="/api/sessions/:id",status="404"} 1`)
}

func TestCORS(t *testing.T) {
	t.Run("listed origin with credentials", func(t *testing.T) {
		r, _ := testRouter([]string{"https://shop.test"})
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://shop.test")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "https://shop.test", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("unlisted origin rejected", func(t *testing.T) {
		r, _ := testRouter([]string{"https://shop.test"})
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.test")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("wildcard", func(t *testing.T) {
		r, _ := testRouter([]string{"*"})
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://anything.test")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})
}
