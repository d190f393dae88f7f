package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/meddoc-assistant-api/internal/config"
	"github.com/meddoc-assistant-api/internal/europepmc"
	"github.com/meddoc-assistant-api/internal/handlers"
	"github.com/meddoc-assistant-api/internal/middleware"
	"github.com/meddoc-assistant-api/internal/services"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Get configuration
	cfg := config.GetConfig()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSMiddleware())

	// Create the literature search client and the semantic ranker. The
	// embedding model itself is loaded lazily on first use.
	searchClient := europepmc.NewClient(cfg.EuropePMCBaseURL)
	ranker := services.NewEmbeddingRanker(cfg.EnableEmbeddings)
	if cfg.EnableEmbeddings {
		log.Println("Semantic ranking enabled")
	} else {
		log.Println("Semantic ranking disabled (set ENABLE_EMBEDDINGS=1 to enable)")
	}

	pipeline := services.NewQueryPipeline(searchClient, ranker)

	// Create API group with prefix
	api := e.Group(cfg.APIPrefix)

	// Register handlers
	healthHandler := handlers.NewHealthHandler()
	healthHandler.RegisterRoutes(api)

	queryHandler := handlers.NewQueryHandler(pipeline)
	queryHandler.RegisterRoutes(api)

	// Root health check
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"name":    cfg.APITitle,
			"version": cfg.APIVersion,
			"status":  "running",
		})
	})

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
		log.Printf("Starting %s v%s on %s", cfg.APITitle, cfg.APIVersion, addr)
		if err := e.Start(addr); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}

	log.Println("Server stopped")
}
