package router

import (
	"github.com/gin-gonic/gin"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/http/handler"
)

func RecommendationRouter(rg *gin.RouterGroup, h *handler.RecommendationHandler, limit gin.HandlerFunc) {
	rg.POST("/recommendations", limit, h.Create)
	rg.GET("/session/books", h.Books)
}
