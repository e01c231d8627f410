package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/http/dto"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/vocabulary"
)

type TopicsHandler struct {
	vocab *vocabulary.Vocabulary
}

func NewTopicsHandler(vocab *vocabulary.Vocabulary) *TopicsHandler {
	return &TopicsHandler{vocab: vocab}
}

func (h *TopicsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToTopicsResponse(h.vocab))
}
