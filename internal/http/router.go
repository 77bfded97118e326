// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tripmate/internal/http/handlers"
	"tripmate/internal/http/middleware"
	"tripmate/internal/infra"
	"tripmate/internal/logger"
	"tripmate/internal/modules/session"
)

type RouterDeps struct {
	Sessions *session.Service
	// Optional.
	Itineraries handlers.ItineraryLister
	Places      handlers.HighlightFinder
	Quota       handlers.QuotaReader
	Verifier    infra.TokenVerifier
	Logger      *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	log := logger.OrNop(deps.Logger)

	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.Logging(log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := handlers.NewConversationHandler(deps.Sessions, deps.Itineraries, deps.Places, log)
	api := r.Group("/api/conversations", middleware.Auth(deps.Verifier))
	api.POST("", h.Create)
	api.POST("/:id/messages", h.Message)
	api.GET("/:id/preferences", h.Preferences)
	api.GET("/:id/history", h.History)
	api.GET("/:id/itinerary/prompt", h.ItineraryPrompt)
	api.POST("/:id/itinerary", h.Itinerary)
	api.GET("/:id/itineraries", h.Itineraries)
	api.GET("/:id/highlights", h.Highlights)
	api.DELETE("/:id", h.Reset)

	q := handlers.NewQuotaHandler(deps.Quota, log)
	r.GET("/api/quota", middleware.Auth(deps.Verifier), q.Get)

	return r
}
