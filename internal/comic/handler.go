package comic

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"animix/internal/fetch"
)

type Handler struct {
	Client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{Client: client}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/manga-feed", h.feed)               // GET /api/manga-feed
	rg.GET("/manga-list", h.library)            // GET /api/manga-list
	rg.GET("/manga-search", h.search)           // GET /api/manga-search
	rg.GET("/manga-popular", h.popular)         // GET /api/manga-popular
	rg.GET("/manga-latest", h.latest)           // GET /api/manga-latest
	rg.GET("/manga/:slug", h.detail)            // GET /api/manga/:slug
	rg.GET("/manga/:slug/chapters", h.chapters) // GET /api/manga/:slug/chapters
	rg.GET("/chapter/*slug", h.chapterPages)    // GET /api/chapter/*slug
}

// statusFor distinguishes a missing base URL, which is a deployment
// problem, from an upstream failure.
func statusFor(err error) int {
	if errors.Is(err, ErrNotConfigured) {
		return http.StatusInternalServerError
	}
	return http.StatusBadGateway
}

func forwardMeta(c *gin.Context, meta *fetch.Meta) {
	for k, v := range meta.Headers() {
		c.Header(k, v)
	}
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func (h *Handler) feed(c *gin.Context) {
	feedType := FeedLatest
	if strings.EqualFold(c.Query("type"), string(FeedPopular)) {
		feedType = FeedPopular
	}
	page := parseInt(c.Query("page"), 1)
	perPage := parseInt(c.Query("perPage"), 24)

	result, err := h.Client.Feed(c.Request.Context(), feedType, page, perPage)
	forwardMeta(c, result.Meta)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":       result.Items,
		"hasNextPage": result.HasNextPage,
	})
}

func (h *Handler) library(c *gin.Context) {
	page, err := h.Client.Library(c.Request.Context(), c.Query("letter"), parseInt(c.Query("page"), 1))
	forwardMeta(c, page.Meta)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": page.Items})
}

func (h *Handler) search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing q parameter"})
		return
	}
	page, err := h.Client.Search(c.Request.Context(), q)
	forwardMeta(c, page.Meta)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": page.Items})
}

func (h *Handler) popular(c *gin.Context) {
	page, err := h.Client.Popular(c.Request.Context())
	forwardMeta(c, page.Meta)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": page.Items})
}

func (h *Handler) latest(c *gin.Context) {
	page, err := h.Client.Latest(c.Request.Context(), parseInt(c.Query("page"), 1))
	forwardMeta(c, page.Meta)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": page.Items})
}

func (h *Handler) detail(c *gin.Context) {
	slug := c.Param("slug")
	comic, meta, err := h.Client.Detail(c.Request.Context(), slug)
	forwardMeta(c, meta)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comic": comic})
}

func (h *Handler) chapters(c *gin.Context) {
	slug := c.Param("slug")
	chapters, meta, err := h.Client.Chapters(c.Request.Context(), slug)
	forwardMeta(c, meta)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chapters": chapters})
}

func (h *Handler) chapterPages(c *gin.Context) {
	slug := strings.Trim(c.Param("slug"), "/")
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing chapter slug"})
		return
	}
	pages, meta, err := h.Client.ChapterPages(c.Request.Context(), slug)
	forwardMeta(c, meta)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pages)
}
