// README: Chat handler; one customer message per request, returns reply and products.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"concierge/internal/ai"
	"concierge/internal/modules/concierge"
)

type Chatter interface {
	Chat(ctx context.Context, req concierge.TurnRequest) (*concierge.TurnResult, error)
}

type ChatHandler struct {
	chat    Chatter
	timeout time.Duration
}

// NewChatHandler bounds every turn by timeout (60s when non-positive).
func NewChatHandler(chat Chatter, timeout time.Duration) *ChatHandler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChatHandler{chat: chat, timeout: timeout}
}

type chatReq struct {
	Message   string       `json:"message"`
	SessionID string       `json:"session_id"`
	History   []ai.Message `json:"history"`
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	res, err := h.chat.Chat(ctx, concierge.TurnRequest{
		SessionID: req.SessionID,
		Message:   req.Message,
		History:   req.History,
	})
	if err != nil {
		switch {
		case errors.Is(err, concierge.ErrEmptyMessage), errors.Is(err, concierge.ErrInvalidRole):
			writeError(c, http.StatusBadRequest, err.Error())
		default:
			_ = c.Error(err)
			writeError(c, http.StatusInternalServerError, "chat failed")
		}
		return
	}
	writeJSON(c, http.StatusOK, res)
}
