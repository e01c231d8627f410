package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/http/handler"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/http/middleware"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/http/web"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/service"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/session"
)

type RouterConfig struct {
	SecureCookie  bool
	CookieMaxAge  int
	Renderer      handler.Renderer
	ExposeMetrics bool
}

func SetupRoutes(router *gin.Engine, services *service.Services, sessions *session.Registry, cfg RouterConfig) {
	router.SetHTMLTemplate(web.MustTemplates())

	healthHandler := handler.NewHealthHandler(services.Catalog())
	router.GET("/health", healthHandler.Health)

	if cfg.ExposeMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	recHandler := handler.NewRecommendationHandler(services.Recommendations(), cfg.Renderer)
	topicsHandler := handler.NewTopicsHandler(services.Vocabulary())

	limit := middleware.RateLimit(sessions)

	browser := router.Group("/", middleware.Session(sessions, cfg.SecureCookie, cfg.CookieMaxAge))
	{
		PageRouter(browser, recHandler, limit)

		v1 := browser.Group("/api/v1")
		RecommendationRouter(v1, recHandler, limit)
		TopicsRouter(v1.Group("/topics"), topicsHandler)
	}
}
