package router

import (
	"github.com/gin-gonic/gin"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/http/handler"
)

func PageRouter(rg *gin.RouterGroup, h *handler.RecommendationHandler, limit gin.HandlerFunc) {
	rg.GET("", h.Index)
	rg.POST("/recommend", limit, h.Submit)
	rg.GET("/report.pdf", h.Report)
}
