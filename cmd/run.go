package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mascot/config"
	"mascot/database"
	"mascot/events"
	"mascot/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting mascot record store...")

	// Load configuration
	cfg := config.Get()
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	// Initialize event bus
	bus := events.NewBus()
	subscribeLogging(bus)

	// Select the remote backend. Missing configuration is not fatal: the
	// store runs cache-only until an explicit reconnect.
	remote, err := selectBackend(ctx, cfg)
	if err != nil {
		return err
	}

	recordStore := store.New(remote, bus,
		store.WithRemoteTimeout(cfg.RemoteTimeout),
		store.WithStartingCoins(cfg.StartingCoins),
	)
	if err := recordStore.Connect(ctx); err != nil {
		log.WithError(err).Warn("Remote backend unavailable at startup, continuing cache-only")
	}

	// Start the expiry sweeper
	stopSweeper := recordStore.StartSweeper(ctx, cfg.SweepInterval)

	// Operator surface: health and metrics
	var opsServer *http.Server
	if cfg.OpsAddr != "" {
		opsServer = startOpsServer(cfg.OpsAddr, recordStore)
	}

	log.WithField("environment", cfg.Environment).Info("Record store is running")
	<-ctx.Done()

	// Cleanup resources
	log.Info("Shutting down...")
	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if opsServer != nil {
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Error shutting down ops server")
		}
	}
	if err := recordStore.Close(); err != nil {
		log.WithError(err).Warn("Error closing record store")
	}

	log.Info("Shutdown completed")
	return nil
}

// selectBackend picks the remote backend. RECORD_BACKEND selects explicitly
// and disambiguates when both URLs are configured; without it, Postgres is
// used when DATABASE_URL is set, Redis when REDIS_URL is set, otherwise none.
func selectBackend(ctx context.Context, cfg *config.Config) (store.Backend, error) {
	switch cfg.Backend {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("RECORD_BACKEND=postgres requires DATABASE_URL")
		}
		return postgresBackend(ctx, cfg.DatabaseURL)
	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("RECORD_BACKEND=redis requires REDIS_URL")
		}
		return redisBackend(cfg.RedisURL)
	case "cache":
		return nil, nil
	}

	switch {
	case cfg.DatabaseURL != "":
		return postgresBackend(ctx, cfg.DatabaseURL)
	case cfg.RedisURL != "":
		return redisBackend(cfg.RedisURL)
	default:
		return nil, nil
	}
}

func postgresBackend(ctx context.Context, databaseURL string) (store.Backend, error) {
	// Lazy pool: an unreachable server at startup leaves the store degraded
	// but reconnectable; only a malformed URL is fatal.
	db, err := database.NewLazyConnection(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure postgres backend: %w", err)
	}
	return store.NewPostgresBackend(db), nil
}

func redisBackend(redisURL string) (store.Backend, error) {
	backend, err := store.NewRedisBackend(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure redis backend: %w", err)
	}
	return backend, nil
}

// subscribeLogging attaches operator-visible logging to store events.
func subscribeLogging(bus *events.Bus) {
	bus.Subscribe(events.EventTypeRecordCreated, func(ctx context.Context, e events.Event) {
		ev := e.(events.RecordCreatedEvent)
		log.WithFields(log.Fields{"kind": ev.Kind, "id": ev.ID}).Debug("Record created")
	})
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		ev := e.(events.BalanceChangeEvent)
		log.WithFields(log.Fields{
			"userID": ev.UserID,
			"field":  ev.Field,
			"change": ev.ChangeAmount,
			"new":    ev.NewValue,
		}).Debug("Balance changed")
	})
	bus.Subscribe(events.EventTypeBackendStateChange, func(ctx context.Context, e events.Event) {
		ev := e.(events.BackendStateChangeEvent)
		log.WithFields(log.Fields{
			"backend": ev.Backend,
			"from":    ev.OldState,
			"to":      ev.NewState,
		}).Info("Backend state changed")
	})
}

// startOpsServer exposes /healthz and /metrics for operators.
func startOpsServer(addr string, recordStore *store.RecordStore) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		health := recordStore.HealthCheck(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if !health.Connected {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(health); err != nil {
			log.WithError(err).Warn("Failed to write health response")
		}
	})

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		log.WithField("addr", addr).Info("Ops server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Ops server failed")
		}
	}()
	return server
}
