package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dennisdiepolder/livedesk/internal/api"
	"github.com/dennisdiepolder/livedesk/internal/archive"
	"github.com/dennisdiepolder/livedesk/internal/assignment"
	"github.com/dennisdiepolder/livedesk/internal/config"
	"github.com/dennisdiepolder/livedesk/internal/dispatch"
	"github.com/dennisdiepolder/livedesk/internal/metrics"
	"github.com/dennisdiepolder/livedesk/internal/registry"
	"github.com/dennisdiepolder/livedesk/internal/stats"
	"github.com/dennisdiepolder/livedesk/internal/ticketstore"
	"github.com/dennisdiepolder/livedesk/internal/websocket"
	"github.com/dennisdiepolder/livedesk/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Msg("starting livedesk server")

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Core state, owned by the dispatcher's event loop
	reg := registry.New()
	store := ticketstore.New()
	engine := assignment.NewEngine(store, reg, log.Logger)
	store.SetReleaser(engine)
	aggregator := stats.NewAggregator(store, reg)

	// Transport hubs
	customerHub := websocket.NewCustomerHub(log.Logger)
	agentHub := websocket.NewAgentHub(log.Logger)

	// Dispatcher: the single event loop over both channel groups
	dispatcher := dispatch.New(reg, store, engine, aggregator, customerHub, agentHub, log.Logger)
	go dispatcher.Run(ctx)

	// Optional closed-ticket archive (DYNAMO_MODE=none disables it)
	archiveStore, err := archive.NewStore(ctx, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize ticket archive")
	}
	dispatcher.SetArchive(archiveStore)

	// Periodic stats push to agent dashboards
	broadcaster := stats.NewBroadcaster(aggregator, agentHub, cfg.StatsInterval, log.Logger)
	go broadcaster.Start(ctx)

	// WebSocket handlers
	customerWS := websocket.NewCustomerHandler(customerHub, dispatcher, cfg, log.Logger)
	agentWS := websocket.NewAgentHandler(agentHub, dispatcher, cfg, log.Logger)

	// Read-only admin surface
	adminHandler := api.NewAdminHandler(store, reg, aggregator, archiveStore, log.Logger)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Public routes
	r.Get("/health", healthHandler)

	// Channel groups: customer and agent connections are isolated endpoints
	r.Get("/ws/customer", customerWS.ServeHTTP)
	r.Get("/ws/agent", agentWS.ServeHTTP)

	// Read-only administrative surface
	r.Route("/api", func(r chi.Router) {
		r.Get("/tickets", adminHandler.ListTickets)
		r.Get("/tickets/{ticketId}", adminHandler.GetTicket)
		r.Get("/agents", adminHandler.ListAgents)
		r.Get("/stats", adminHandler.GetStats)
		r.Get("/archive/tickets", adminHandler.GetArchivedTickets)
		r.Get("/metrics", metrics.Get().Handler())
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop the dispatcher and broadcaster
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"livedesk"}`)
}
