package anime

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"animix/internal/feed"
	"animix/internal/fetch"
	"animix/internal/metadata"
	"animix/pkg/models"
)

const (
	minPerPage      = 6
	maxPerPage      = 36
	defaultPerPage  = 24
	minSectionItems = 24
	crossFillCount  = 10
	heroCount       = 10
)

type Handler struct {
	Client   *Client
	AniList  *metadata.AniList
	Consumet *metadata.Consumet

	// EnhanceConcurrency bounds the artwork enrichment worker pool.
	EnhanceConcurrency int
}

func NewHandler(client *Client, al *metadata.AniList, cons *metadata.Consumet, concurrency int) *Handler {
	return &Handler{Client: client, AniList: al, Consumet: cons, EnhanceConcurrency: concurrency}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/trending", h.trending)  // GET /api/trending
	rg.GET("/home", h.home)          // GET /api/home
	rg.GET("/anime/:slug", h.detail) // GET /api/anime/:slug
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

func clampPerPage(perPage int) int {
	if perPage < minPerPage {
		return minPerPage
	}
	if perPage > maxPerPage {
		return maxPerPage
	}
	return perPage
}

// trendingEndpoint maps the query params onto an upstream list endpoint.
// An explicit type wins; without one, AniList-style sort hints steer the
// choice. Default is the ongoing feed.
func trendingEndpoint(typeParam, sortParam string) string {
	switch strings.ToLower(typeParam) {
	case "completed":
		return "/completed"
	case "popular":
		return "/popular"
	case "latest":
		return "/latest"
	case "ongoing":
		return "/ongoing"
	}
	switch strings.ToUpper(sortParam) {
	case "POPULARITY_DESC":
		return "/popular"
	case "SCORE_DESC":
		return "/completed"
	}
	return "/ongoing"
}

func (h *Handler) trending(c *gin.Context) {
	page := parseInt(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	perPage := clampPerPage(parseInt(c.Query("perPage"), defaultPerPage))
	endpoint := trendingEndpoint(c.Query("type"), c.Query("sort"))

	result, err := h.Client.Feed(c.Request.Context(), endpoint, page, perPage)
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

// trendingAsAnime converts AniList trending media into synthetic feed
// entries linking to the search page.
func trendingAsAnime(media []metadata.Media) []models.Anime {
	items := make([]models.Anime, 0, len(media))
	for _, m := range media {
		title := m.PreferredTitle()
		if title == "" {
			title = "Untitled"
		}
		items = append(items, models.Anime{
			Slug:   models.Slugify(title),
			Title:  title,
			Poster: m.BestPoster(""),
			Banner: m.BannerImage,
			Href:   "/search/" + url.PathEscape(title),
		})
	}
	return items
}

// pickHero prefers entries that carry a banner, topping up with trending
// media when fewer than five banner entries survive.
func (h *Handler) pickHero(c *gin.Context, candidates []models.Anime) []models.Anime {
	withBanner := make([]models.Anime, 0, len(candidates))
	for _, item := range candidates {
		if item.Banner != "" {
			withBanner = append(withBanner, item)
		}
	}
	hero := feed.MergeBySlug(withBanner, candidates)
	if len(hero) > heroCount {
		hero = hero[:heroCount]
	}
	if len(withBanner) >= 5 {
		return hero
	}
	trending, err := h.AniList.Trending(c.Request.Context(), heroCount)
	if err != nil || len(trending) == 0 {
		return hero
	}
	bannered := make([]metadata.Media, 0, len(trending))
	for _, m := range trending {
		if m.BannerImage != "" {
			bannered = append(bannered, m)
		}
	}
	hero = feed.MergeBySlug(trendingAsAnime(bannered), hero)
	if len(hero) > heroCount {
		hero = hero[:heroCount]
	}
	return hero
}

func (h *Handler) home(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		wg           sync.WaitGroup
		ongoing      FeedPage
		completed    FeedPage
		ongoingErr   error
		completedErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		ongoing, ongoingErr = h.Client.Feed(ctx, "/ongoing", 1, defaultPerPage)
	}()
	go func() {
		defer wg.Done()
		completed, completedErr = h.Client.Feed(ctx, "/completed", 1, defaultPerPage)
	}()
	wg.Wait()

	warnings := gin.H{}
	if ongoingErr != nil {
		warnings["ongoing"] = "Ongoing feed is unavailable. Try refresh."
	}
	if completedErr != nil {
		warnings["completed"] = "Completed feed is unavailable. Try refresh."
	}

	ongoingItems := h.AniList.EnhanceAnime(ctx, ongoing.Items, minSectionItems, h.EnhanceConcurrency)
	completedItems := h.AniList.EnhanceAnime(ctx, completed.Items, minSectionItems, h.EnhanceConcurrency)

	ongoingFilled := feed.FillSection(ongoingItems, completedItems, crossFillCount)
	completedFilled := feed.FillSection(completedItems, ongoingItems, crossFillCount)

	hero := h.pickHero(c, append(append([]models.Anime{}, ongoingFilled...), completedFilled...))

	// trending media backfill sections that came up short
	var trendingItems []models.Anime
	if len(ongoingFilled) < minSectionItems || len(completedFilled) < minSectionItems {
		if trending, err := h.AniList.Trending(ctx, 30); err == nil {
			trendingItems = trendingAsAnime(trending)
		}
	}
	ongoingFilled = feed.FillSection(ongoingFilled, trendingItems, minSectionItems)
	completedFilled = feed.FillSection(completedFilled, trendingItems, minSectionItems)

	c.JSON(http.StatusOK, gin.H{
		"hero":      hero,
		"ongoing":   ongoingFilled,
		"completed": completedFilled,
		"warnings":  warnings,
	})
}

func (h *Handler) detail(c *gin.Context) {
	slug := c.Param("slug")
	anime, err := h.Client.Detail(c.Request.Context(), slug)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	body := gin.H{"anime": anime}
	if media := h.AniList.MatchByTitle(c.Request.Context(), anime.Title, anime.Slug); media != nil {
		anime.Poster = media.BestPoster(anime.Poster)
		if media.BannerImage != "" {
			anime.Banner = media.BannerImage
		}
		body["anime"] = anime
		body["metadata"] = media
	}
	if info := h.Consumet.InfoByTitle(c.Request.Context(), anime.Title); info != nil {
		body["info"] = info
	}
	c.JSON(http.StatusOK, body)
}
