package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"trip-search-ai/config"
	"trip-search-ai/handlers"
	"trip-search-ai/logstream"
	"trip-search-ai/scraper"
	"trip-search-ai/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.WithField("port", cfg.ServerPort).Info("starting trip search backend")

	// Wire the pipeline
	hub := logstream.NewHub(logger)
	fetcher := scraper.NewFetcher(scraper.FetcherConfig{
		Headless:   cfg.Headless,
		ChromePath: cfg.ChromePath,
		Timeout:    cfg.FetchTimeout,
	}, logger)
	scorer := services.NewOpenAIScorer(cfg, logger)
	searchService := services.NewSearchService(fetcher, scorer, hub, logger)
	limiter := services.NewSearchLimiter(cfg.SearchesPerSecond, cfg.SearchBurst, cfg.DailySearchLimit)

	tripHandler := handlers.NewTripHandler(searchService, limiter, logger)
	logHandler := handlers.NewLogHandler(hub, logger)

	router := setupRouter(tripHandler, logHandler)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func setupRouter(tripHandler *handlers.TripHandler, logHandler *handlers.LogHandler) *gin.Engine {
	// Set Gin to release mode in production
	if os.Getenv("GIN_MODE") != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS configuration
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	router.POST("/trip/search", tripHandler.SearchTrips)
	router.GET("/ws", logHandler.Stream)

	// 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	return router
}
