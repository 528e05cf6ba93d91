package search

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"animix/pkg/models"
)

type Handler struct {
	Builder *Builder
}

func NewHandler(builder *Builder) *Handler {
	return &Handler{Builder: builder}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.search)        // GET /api/search?q=
	rg.GET("/search/status", h.status) // GET /api/search/status
}

func (h *Handler) search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusOK, gin.H{
			"query":   q,
			"results": []models.Anime{},
			"index":   h.Builder.Status(),
		})
		return
	}
	results := h.Builder.Search(c.Request.Context(), q)
	c.JSON(http.StatusOK, gin.H{
		"query":   q,
		"results": results,
		"index":   h.Builder.Status(),
	})
}

func (h *Handler) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.Builder.Status())
}
