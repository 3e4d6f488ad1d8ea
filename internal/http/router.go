// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"concierge/internal/http/handlers"
	"concierge/internal/http/middleware"
)

func NewRouter(deps ServerDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Logging(deps.Logger),
		middleware.Metrics(deps.Metrics),
		middleware.Recovery(deps.Logger),
		middleware.CORS(deps.CORSOrigins),
	)

	api := r.Group("/api")

	chatHandler := handlers.NewChatHandler(deps.Chat, deps.ChatTimeout)
	api.POST("/chat", chatHandler.Chat)

	searchHandler := handlers.NewSearchHandler(deps.Catalog)
	api.POST("/search", searchHandler.Search)

	analyticsHandler := handlers.NewAnalyticsHandler(deps.Sessions)
	api.POST("/analytics/click", analyticsHandler.Click)
	api.POST("/analytics/convert", analyticsHandler.Convert)

	sessionHandler := handlers.NewSessionHandler(deps.Sessions)
	api.GET("/sessions/:id", sessionHandler.Get)
	api.GET("/sessions/:id/messages", sessionHandler.Messages)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	return r
}
