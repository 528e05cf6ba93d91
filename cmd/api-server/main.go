package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"animix/internal/anime"
	"animix/internal/comic"
	"animix/internal/fetch"
	"animix/internal/metadata"
	"animix/internal/metrics"
	"animix/internal/search"
	"animix/pkg/utils"
)

func main() {
	cfg := utils.Load()

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	cache := fetch.NewStore(cfg.CacheEnabled)
	limiter := fetch.NewLimiter(cfg.RateLimit, cfg.RateLimitWindow, cfg.RateLimitEnabled)
	fetcher := fetch.NewClient(cache, limiter, cfg.AnimeAPIBase, cfg.CacheTTL, cfg.CacheErrorTTL)

	animeClient := anime.NewClient(fetcher, cfg.AnimeAPIBase)
	comicClient := comic.NewClient(fetcher, cfg.MangaAPIBase)
	anilist := metadata.NewAniList(fetcher, cfg.AniListEndpoint)
	consumet := metadata.NewConsumet(fetcher, cfg.ConsumetBase, cfg.ConsumetProvider)

	builder := search.NewBuilder(animeClient, search.Config{
		Enabled:           cfg.SearchIndexEnabled,
		TTL:               cfg.SearchIndexTTL,
		MaxPagesPerLetter: cfg.SearchMaxPagesPerLetter,
		MaxItems:          cfg.SearchMaxItems,
		MaxRequests:       cfg.SearchMaxRequests,
		MaxRemoteQueries:  cfg.SearchMaxRemoteQueries,
		RequestDelay:      cfg.SearchRequestDelay,
		IndexWait:         cfg.SearchIndexWait,
	})

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})
	router.Use(metrics.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	api.GET("/ratelimit", func(c *gin.Context) {
		c.JSON(http.StatusOK, limiter.Snapshot())
	})

	anime.NewHandler(animeClient, anilist, consumet, cfg.EnhanceConcurrency).RegisterRoutes(api)
	comic.NewHandler(comicClient).RegisterRoutes(api)
	search.NewHandler(builder).RegisterRoutes(api)

	httpSrv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API server listening on %s", cfg.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}
