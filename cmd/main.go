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

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-maintenance/internal/auth"
	"github.com/ukydev/fleet-maintenance/internal/config"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/events"
	"github.com/ukydev/fleet-maintenance/internal/handlers"
	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/middleware"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("Server stopped")
	}
}

func newLogger(cfg config.Config) *log.Logger {
	logger := log.New()
	if cfg.IsProduction() {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// run serves the API until ctx is cancelled, then drains in-flight requests.
func run(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.WithError(err).Warn("Failed to close store")
		}
	}()

	handler, cleanup, err := buildHandler(ctx, cfg, logger, store)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config, logger *log.Logger) (*db.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		logger.Warn("Using the in-memory store; data is lost on restart")
		return db.NewMemoryStore(), nil
	case config.BackendMongo, "":
		client, err := db.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		if err := db.EnsureIndexes(ctx, client.Database(cfg.MongoDB)); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		logger.WithFields(log.Fields{
			"database":     cfg.MongoDB,
			"transactions": cfg.MongoTransactions,
		}).Info("Connected to MongoDB")
		return db.NewMongoStore(client, cfg.MongoDB, cfg.MongoTransactions), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// newRevoker returns the Redis revoker when REDIS_ADDR is set and
// reachable. A nil revoker makes the authenticator use the store.
func newRevoker(ctx context.Context, cfg config.Config, logger *log.Logger) (auth.Revoker, func()) {
	if cfg.RedisAddr == "" {
		return nil, func() {}
	}
	revoker := auth.NewRedisRevoker(cfg.RedisAddr, cfg.RedisPassword)
	if err := revoker.Ping(ctx); err != nil {
		logger.WithError(err).WithField("addr", cfg.RedisAddr).Warn("Redis unreachable, revoking tokens in the store")
		_ = revoker.Close()
		return nil, func() {}
	}
	logger.WithField("addr", cfg.RedisAddr).Info("Revoking tokens in Redis")
	return revoker, func() { _ = revoker.Close() }
}

func newPublisher(cfg config.Config, logger *log.Logger) (events.Publisher, func()) {
	if cfg.MQTTBroker == "" {
		return events.NopPublisher{}, func() {}
	}
	publisher, err := events.NewMQTTPublisher(events.MQTTOptions{
		Broker:   cfg.MQTTBroker,
		ClientID: cfg.MQTTClientID,
		Prefix:   cfg.MQTTTopicPrefix,
	})
	if err != nil {
		logger.WithError(err).WithField("broker", cfg.MQTTBroker).Warn("MQTT unavailable, lifecycle events disabled")
		return events.NopPublisher{}, func() {}
	}
	logger.WithField("broker", cfg.MQTTBroker).Info("Publishing lifecycle events over MQTT")
	return publisher, publisher.Close
}

// buildHandler wires auth, the maintenance core and the router over store
// and seeds the admin credential.
func buildHandler(ctx context.Context, cfg config.Config, logger *log.Logger, store *db.Store) (http.Handler, func(), error) {
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set, using the development secret")
	}
	tokens := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)

	revoker, closeRevoker := newRevoker(ctx, cfg, logger)
	publisher, closePublisher := newPublisher(cfg, logger)
	cleanup := func() {
		closePublisher()
		closeRevoker()
	}

	authenticator := auth.NewAuthenticator(tokens, store, revoker, logger.WithField("component", "auth"))
	if _, err := authenticator.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("seed admin: %w", err)
	}

	manager := maintenance.NewManager(store,
		maintenance.WithLocation(cfg.Location()),
		maintenance.WithHasher(tokens),
		maintenance.WithPublisher(publisher),
		maintenance.WithLogger(logger.WithField("component", "maintenance")),
	)

	var loginLimit func(http.Handler) http.Handler
	if cfg.LoginRateLimit > 0 {
		loginLimit = middleware.NewRateLimitMiddleware().RateLimit(cfg.LoginRateLimit, cfg.LoginRateWindow)
	}

	handler := handlers.NewRouter(handlers.RouterConfig{
		Core:          manager,
		Auth:          authenticator,
		Authenticator: authenticator,
		LoginLimit:    loginLimit,
		Logger:        logger,
	})
	return handler, cleanup, nil
}
