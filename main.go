package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attribution-pipeline/config"
	"attribution-pipeline/database"
	"attribution-pipeline/handlers"
	"attribution-pipeline/service"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.ScoringAPIKey == "" {
		log.Fatal("SCORING_API_KEY environment variable is required")
	}

	log.Info("Starting attribution pipeline service...")
	log.Infof("Configuration: ScoringAPIURL=%s, ChunkSize=%d, PollInterval=%v, ReportFilePath=%s",
		cfg.ScoringAPIURL, cfg.ChunkSize, cfg.PollInterval, cfg.ReportFilePath)

	// Initialize database
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize database schema
	if err := db.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	// Initialize pipeline service
	pipeline := service.NewPipeline(cfg, db)

	// Initialize handlers
	handlers := handlers.NewHandlers(pipeline)

	// Setup HTTP server
	router := gin.Default()

	// API routes
	api := router.Group("/api/v1")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/status", handlers.GetStatus)
		api.POST("/run", handlers.RunPipeline)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start the pipeline service
	pipeline.Start()

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

	// Stop the pipeline service
	pipeline.Stop()

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
