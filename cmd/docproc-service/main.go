package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/consumers"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/events"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/extract"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/handler"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/reconcile"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/repository"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/service"
	"github.com/fleetdocs/fleetdocs-backend/internal/docprocessing/storage"
	"github.com/fleetdocs/fleetdocs-backend/pkg/config"
	"github.com/fleetdocs/fleetdocs-backend/pkg/database"
	"github.com/fleetdocs/fleetdocs-backend/pkg/httputil"
	"github.com/fleetdocs/fleetdocs-backend/pkg/logger"
	"github.com/fleetdocs/fleetdocs-backend/pkg/messaging"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation("docproc-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("docproc-service", cfg.Server.Environment)
	log.Info().Msg("starting Document Processing Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publisher
	publisher, err := events.NewDocumentEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	// Initialize processing pipeline
	extractor := extract.New()
	engine := reconcile.NewEngine(reconcile.Options{
		FilenamePatternKeys: cfg.Processing.FilenamePatternKeys,
	})
	jobStore := storage.NewTempStorage(cfg.Processing.JobTTL)
	consolidatedRepo := repository.NewConsolidatedRepository(db)

	// Initialize service
	docService := service.NewService(extractor, engine, jobStore, consolidatedRepo, publisher, log)

	// Initialize handler
	docHandler := handler.NewHandler(docService, log)

	// Start inbound document event consumer
	docConsumer, err := consumers.NewDocumentEventConsumer(rmq, docService, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create document event consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := docConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start document event consumer")
	}

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "docproc-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/documents", docHandler.Routes())
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Cancel context to stop consumers
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
