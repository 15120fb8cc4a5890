package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chexray-pipeline/config"
	"chexray-pipeline/handlers"
	"chexray-pipeline/metrics"
	"chexray-pipeline/service"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.SetLevelFromString(cfg.LogLevel)

	// The endpoint and API key may arrive per request instead of from
	// the environment, so missing values are a warning, not a fatal.
	if cfg.InferenceURL == "" {
		log.Warn("COLAB_API_URL is not set; expecting per-request endpoint overrides")
	}
	if cfg.LLMProvider == "openai" && cfg.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY is not set")
	} else if cfg.LLMProvider != "openai" && cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY is not set")
	}

	// Register metrics
	metrics.Register()

	// Initialize the pipeline service
	pipelineService := service.NewService(cfg)

	// Initialize handlers
	h := handlers.NewHandlers(pipelineService)

	// Setup HTTP server
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowOrigins:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// API routes
	h.RegisterRoutes(router.Group("/api/v1"))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Infof("Starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
