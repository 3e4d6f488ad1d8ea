// README: Funnel analytics: product clicks and conversions.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"concierge/internal/modules/session"
)

type AnalyticsRecorder interface {
	RecordClick(ctx context.Context, cmd session.ClickCommand) (*session.ProductClick, error)
	MarkConverted(ctx context.Context, id string) error
}

type AnalyticsHandler struct {
	sessions AnalyticsRecorder
}

func NewAnalyticsHandler(s AnalyticsRecorder) *AnalyticsHandler {
	return &AnalyticsHandler{sessions: s}
}

type clickReq struct {
	SessionID string `json:"session_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Position  int    `json:"position"`
}

type convertReq struct {
	SessionID string `json:"session_id"`
}

// Click handles POST /api/analytics/click.
func (h *AnalyticsHandler) Click(c *gin.Context) {
	var req clickReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if _, err := h.sessions.RecordClick(c.Request.Context(), session.ClickCommand{
		SessionID: req.SessionID,
		SKU:       req.SKU,
		Name:      req.Name,
		Position:  req.Position,
	}); err != nil {
		writeSessionError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, statusOK)
}

// Convert handles POST /api/analytics/convert.
func (h *AnalyticsHandler) Convert(c *gin.Context) {
	var req convertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.sessions.MarkConverted(c.Request.Context(), req.SessionID); err != nil {
		writeSessionError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, statusOK)
}
