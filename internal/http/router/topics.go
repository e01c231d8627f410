package router

import (
	"github.com/gin-gonic/gin"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/http/handler"
)

func TopicsRouter(rg *gin.RouterGroup, h *handler.TopicsHandler) {
	rg.GET("", h.List)
}
