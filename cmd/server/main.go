package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"artifact-version-service/internal/adapters/primary/http/handlers"
	"artifact-version-service/internal/adapters/primary/http/middleware"
	"artifact-version-service/internal/adapters/secondary/notifier"
	"artifact-version-service/internal/bootstrap"
	"artifact-version-service/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	bootstrap.InitLogger(cfg)

	storage, err := bootstrap.OpenStorage(context.Background(), cfg)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer storage.Close()
	log.WithField("driver", storage.Driver).Info("storage ready")

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Core Services (Application Layer)
	reg := storage.Registry(notifier.NewLogNotifier(log.StandardLogger()))

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(reg)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())
	if cfg.Metrics.Enabled {
		router.Use(middleware.Metrics())
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api/v1")
	h.RegisterRoutes(api)

	// Health check with storage ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := storage.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "storage": storage.Driver})
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Project-ID", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           corsHandler.Handler(router),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}
