// README: Read-only session endpoints for debugging and support.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"concierge/internal/modules/session"
)

type SessionReader interface {
	Get(ctx context.Context, id string) (*session.Session, error)
	Messages(ctx context.Context, id string) ([]session.Message, error)
}

type SessionHandler struct {
	sessions SessionReader
}

func NewSessionHandler(s SessionReader) *SessionHandler {
	return &SessionHandler{sessions: s}
}

type sessionResp struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Converted bool      `json:"converted"`
}

// Get handles GET /api/sessions/:id.
func (h *SessionHandler) Get(c *gin.Context) {
	sess, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeSessionError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, sessionResp{ID: sess.ID, CreatedAt: sess.CreatedAt, Converted: sess.Converted})
}

// Messages handles GET /api/sessions/:id/messages.
func (h *SessionHandler) Messages(c *gin.Context) {
	msgs, err := h.sessions.Messages(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeSessionError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, msgs)
}
