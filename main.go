package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ankitupadhyayx/medicollab-backend/config"
	"github.com/ankitupadhyayx/medicollab-backend/handler"
	"github.com/ankitupadhyayx/medicollab-backend/middleware"
	"github.com/ankitupadhyayx/medicollab-backend/pkg/logger"
	"github.com/ankitupadhyayx/medicollab-backend/service"
	"github.com/ankitupadhyayx/medicollab-backend/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Initialize object storage for attachments
	minioSvc, err := service.NewMinioService(&cfg.Minio)
	if err != nil {
		slog.Error("failed to initialize MINIO service", "error", err)
		os.Exit(1)
	}
	if err := minioSvc.EnsureBucket(context.Background()); err != nil {
		slog.Error("failed to ensure MINIO bucket", "error", err)
		os.Exit(1)
	}

	// Select the record store backend
	var recordStore store.RecordStore
	switch cfg.Store.Backend {
	case "postgres":
		recordStore, err = store.NewPostgresStore(cfg.Store.DSN)
		if err != nil {
			slog.Error("failed to connect record store", "error", err)
			os.Exit(1)
		}
		slog.Info("using postgres record store")
	default:
		recordStore = store.NewMemoryStore()
		slog.Info("using in-memory record store")
	}

	// Initialize services
	policy := service.NewPolicy()
	directory := service.NewConfigDirectory(cfg)
	lifecycle := service.NewLifecycle(recordStore, directory, policy)
	ledger := service.NewLedger(recordStore, policy)
	aggregator := service.NewAggregator(recordStore, policy)
	annotator := service.NewAnnotator(recordStore, service.NewHTTPAIClient(&cfg.AI))

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg)
	recordHandler := handler.NewRecordHandler(lifecycle, ledger, aggregator, annotator, minioSvc)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	// Add custom middleware
	router.Use(middleware.RequestID())                 // Request ID for tracing
	router.Use(middleware.Recovery())                  // Panic recovery
	router.Use(middleware.RequestLogger())             // Access logging
	router.Use(corsMiddleware())                       // CORS
	router.Use(middleware.RateLimit(100, time.Minute)) // Rate limiting: 100 requests per minute

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)

		protected.POST("/records", recordHandler.Create)
		protected.GET("/records", recordHandler.List)
		protected.GET("/records/:id", recordHandler.Get)
		protected.POST("/records/:id/attachments", recordHandler.UploadAttachment)
		protected.GET("/records/:id/attachments/:idx", recordHandler.DownloadAttachment)
		protected.POST("/records/:id/approve", recordHandler.Approve)
		protected.POST("/records/:id/reject", recordHandler.Reject)
		protected.POST("/records/:id/resolve", recordHandler.Resolve)
		protected.GET("/records/:id/audit", recordHandler.Audit)
		protected.POST("/records/:id/annotate", recordHandler.Annotate)

		protected.GET("/stats", recordHandler.Stats)
		protected.GET("/timeline", recordHandler.Timeline)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
