package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/catalog"
)

type CatalogStatus interface {
	Current() *catalog.Snapshot
}

type HealthHandler struct {
	catalog CatalogStatus
}

func NewHealthHandler(catalog CatalogStatus) *HealthHandler {
	return &HealthHandler{catalog: catalog}
}

// Health always answers 200; a missing catalog is reported, not fatal, since
// the next request retries the load.
func (h *HealthHandler) Health(c *gin.Context) {
	resp := gin.H{"status": "ok"}

	if h.catalog != nil {
		if snap := h.catalog.Current(); snap != nil {
			resp["catalog"] = gin.H{
				"loaded":    true,
				"items":     len(snap.Items),
				"version":   snap.Version,
				"loaded_at": snap.LoadedAt.UTC().Format(time.RFC3339),
			}
		} else {
			resp["catalog"] = gin.H{"loaded": false}
		}
	}

	c.JSON(http.StatusOK, resp)
}
