package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"tangled.org/arabica.social/dialin/internal/config"
	"tangled.org/arabica.social/dialin/internal/database"
	"tangled.org/arabica.social/dialin/internal/database/boltstore"
	"tangled.org/arabica.social/dialin/internal/database/sqlitestore"
	"tangled.org/arabica.social/dialin/internal/grinder"
	"tangled.org/arabica.social/dialin/internal/handlers"
	"tangled.org/arabica.social/dialin/internal/metrics"
	"tangled.org/arabica.social/dialin/internal/routing"
	"tangled.org/arabica.social/dialin/internal/tracing"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const metricsInterval = 30 * time.Second

func main() {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.Logging, os.Stdout)

	log.Info().Msg("Starting dialin coffee recipe advisor")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
	log.Info().Msg("Server stopped")
}

// setupLogging configures the global zerolog logger.
// Pretty console logs in development, JSON in production.
func setupLogging(cfg config.LoggingConfig, out io.Writer) {
	switch cfg.Level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if cfg.Format == "json" {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.Tracing.Enabled {
		tp, err := tracing.Init(ctx, cfg.Tracing.Endpoint)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("Failed to flush traces")
			}
		}()
		log.Info().Str("endpoint", cfg.Tracing.Endpoint).Msg("Tracing enabled")
	}

	registry, err := loadGrinders(cfg.Grinders)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	log.Info().
		Str("backend", cfg.Storage.Backend).
		Str("path", cfg.Storage.Path).
		Msg("Database opened")

	h := handlers.NewHandler(registry, store, handlers.Config{
		HistoryLimit: cfg.History.DefaultLimit,
	})

	handler := routing.SetupRouter(routing.Config{
		Handlers:       h,
		Logger:         log.Logger,
		RateLimit:      cfg.Server.RateLimit,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		TrustProxy:     cfg.Server.TrustProxy,
		TrustedOrigins: cfg.TrustedOrigins(),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logEvent := log.Info().
			Str("address", srv.Addr).
			Str("url", fmt.Sprintf("http://localhost:%d", cfg.Server.Port))
		if cfg.Server.PublicURL != "" {
			logEvent.Str("public_url", cfg.Server.PublicURL)
		}
		logEvent.Msg("Starting HTTP server")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return metrics.RunCollector(gCtx, statsSource(gCtx, store, registry), metricsInterval)
	})

	if cfg.Grinders.Watch {
		g.Go(func() error {
			return grinder.Watch(gCtx, cfg.Grinders.Path, registry, recordReload)
		})
	}

	return g.Wait()
}

// loadGrinders builds the grinder table: the built-in profiles, replaced by
// the configured file when one is set.
func loadGrinders(cfg config.GrindersConfig) (*grinder.Registry, error) {
	registry := grinder.NewDefaultRegistry()
	if cfg.Path == "" {
		log.Info().Int("grinders", registry.Count()).Msg("Using built-in grinder table")
		return registry, nil
	}

	profiles, err := grinder.LoadFile(cfg.Path)
	if err == nil {
		err = registry.Replace(profiles)
	}
	recordReload(registry.Count(), err)
	if err != nil {
		return nil, fmt.Errorf("load grinders from %s: %w", cfg.Path, err)
	}

	log.Info().
		Str("path", cfg.Path).
		Strs("grinders", registry.Names()).
		Msg("Loaded grinder table from file")
	return registry, nil
}

func recordReload(count int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.GrinderReloadsTotal.WithLabelValues(status).Inc()
	metrics.GrindersLoaded.Set(float64(count))
}

// openStore opens the configured storage backend, creating the parent
// directory when needed.
func openStore(ctx context.Context, cfg config.StorageConfig) (database.Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	switch cfg.Backend {
	case config.StorageSQLite:
		store, err := sqlitestore.Open(ctx, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case config.StorageBolt, "":
		store, err := boltstore.Open(boltstore.Options{Path: cfg.Path})
		if err != nil {
			return nil, fmt.Errorf("open bolt store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// statsSource reports store and registry sizes for the gauge metrics.
// A failed store read reports -1 so the gauge keeps its last value.
func statsSource(ctx context.Context, store database.Store, registry *grinder.Registry) metrics.StatsSource {
	return metrics.StatsSource{
		HistoryCount: func() int {
			n, err := store.CountRecords(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("Failed to count history records")
				return -1
			}
			return n
		},
		CalibrationCount: func() int {
			cals, err := store.ListCalibrations(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("Failed to list calibrations")
				return -1
			}
			return len(cals)
		},
		GrinderCount: registry.Count,
	}
}
