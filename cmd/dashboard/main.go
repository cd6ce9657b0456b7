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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/callanalyzer/dashboard/internal/api"
	"github.com/callanalyzer/dashboard/internal/api/middleware"
	"github.com/callanalyzer/dashboard/internal/core/ports"
	"github.com/callanalyzer/dashboard/internal/core/service"
	"github.com/callanalyzer/dashboard/internal/infrastructure/backend"
	"github.com/callanalyzer/dashboard/internal/infrastructure/config"
	mongostore "github.com/callanalyzer/dashboard/internal/infrastructure/db/mongo"
	redisstore "github.com/callanalyzer/dashboard/internal/infrastructure/db/redis"
	"github.com/callanalyzer/dashboard/internal/infrastructure/fixture"
	"github.com/callanalyzer/dashboard/internal/infrastructure/http/handlers"
	"github.com/callanalyzer/dashboard/internal/infrastructure/queue"
	"github.com/callanalyzer/dashboard/internal/infrastructure/storage"
	"github.com/callanalyzer/dashboard/pkg/logger"
)

const purgeInterval = 10 * time.Minute

// sessionStore is a ClientStorage whose backing service can be probed.
type sessionStore interface {
	ports.ClientStorage
	handlers.Pinger
}

// purger is a store that drops expired entries on demand.
type purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// dataSource is a DataSource whose upstream can be probed.
type dataSource interface {
	ports.DataSource
	handlers.Pinger
}

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "call-analyzer-dashboard",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("dashboard stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	source, backendURL, err := newDataSource(cfg, store)
	if err != nil {
		return err
	}

	sessions := service.NewSessionService(source, store, logger.Component("session"))

	workers, cancelWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.RevalidationWorkers, sessions, logger.Component("revalidation"))
	dispatcher.Start(workers)
	sessions.AttachQueue(dispatcher)

	router, err := api.NewRouter(api.Deps{
		Sessions: sessions,
		Source:   source,
		Session: middleware.SessionConfig{
			Secret: []byte(cfg.Session.Secret),
			TTL:    cfg.Session.TTL,
			Secure: !cfg.IsDevelopment(),
			Logger: logger.Component("http"),
		},
		BackendURL:     backendURL,
		DemoEnabled:    cfg.UseMockBackend(),
		MaxUploadBytes: cfg.Upload.MaxMB << 20,
		Checks: []handlers.Check{
			{Name: "storage", Pinger: store},
			{Name: "backend", Pinger: source},
		},
		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,
		Logger:     logger.Component("http"),
	})
	if err != nil {
		cancelWorkers()
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("session_store", cfg.Session.Store).
			Bool("mock_backend", cfg.UseMockBackend()).
			Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			cancelWorkers()
			return fmt.Errorf("server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	cancelWorkers()
	dispatcher.Wait()
	log.Info().Msg("server stopped")
	return nil
}

// openStore connects the configured session store and returns its cleanup.
func openStore(ctx context.Context, cfg *config.Config) (sessionStore, func(), error) {
	ttl := cfg.Session.TTL
	switch cfg.Session.Store {
	case config.StoreSQLite:
		s, err := storage.OpenSQLite(ctx, cfg.Session.SQLitePath, ttl)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		purgeCtx, cancel := context.WithCancel(context.Background())
		go purgeLoop(purgeCtx, s, logger.Component("storage"))
		return s, func() {
			cancel()
			_ = s.Close()
		}, nil

	case config.StoreRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB}, logger.Component("redis"))
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewClientStorage(client, ttl), func() { _ = client.Close() }, nil

	case config.StoreMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database}, logger.Component("mongo"))
		if err != nil {
			return nil, nil, err
		}
		s := mongostore.NewClientStorage(db, ttl)
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return s, func() { _ = client.Disconnect(context.Background()) }, nil

	default:
		s := storage.NewMemory(ttl)
		purgeCtx, cancel := context.WithCancel(context.Background())
		go purgeLoop(purgeCtx, s, logger.Component("storage"))
		return s, cancel, nil
	}
}

// newDataSource selects the fixture source in development when no backend URL is
// configured, and the REST backend otherwise. It also returns the backend address
// used to resolve relative media links.
func newDataSource(cfg *config.Config, store ports.ClientStorage) (dataSource, string, error) {
	if cfg.UseMockBackend() {
		src, err := fixture.NewDataSource(fixture.Options{
			Delay:  cfg.Backend.MockDelay,
			Logger: logger.Component("fixture"),
		})
		if err != nil {
			return nil, "", err
		}
		return src, "", nil
	}

	client := backend.NewClient(backend.Options{
		BaseURL:    cfg.Backend.URL,
		HTTPClient: &http.Client{Timeout: cfg.Backend.Timeout},
		Tokens:     backend.StorageTokens{Storage: store},
		Logger:     logger.Component("backend"),
	})
	return backend.NewDataSource(client), client.BaseURL(), nil
}

func purgeLoop(ctx context.Context, s purger, log zerolog.Logger) {
	t := time.NewTicker(purgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("purge expired session entries")
				continue
			}
			if n > 0 {
				log.Debug().Int64("removed", n).Msg("purged expired session entries")
			}
		}
	}
}
