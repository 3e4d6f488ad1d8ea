// README: Catalog search proxy; keeps catalog calls server-side.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"concierge/internal/modules/catalog"
)

type Searcher interface {
	Search(ctx context.Context, keywords []string) []catalog.Product
}

type SearchHandler struct {
	catalog Searcher
}

func NewSearchHandler(s Searcher) *SearchHandler {
	return &SearchHandler{catalog: s}
}

type searchReq struct {
	Keyword string `json:"keyword"`
}

// Search handles POST /api/search.
func (h *SearchHandler) Search(c *gin.Context) {
	var req searchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	kw := strings.TrimSpace(req.Keyword)
	if kw == "" {
		writeError(c, http.StatusBadRequest, "missing keyword")
		return
	}
	writeJSON(c, http.StatusOK, h.catalog.Search(c.Request.Context(), []string{kw}))
}
