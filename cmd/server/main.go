// Command server runs the question and answer HTTP API.
//
//	server [--env-file .env] [--migrate-only]
//
// Configuration comes from the environment (optionally seeded from an env
// file); see internal/config for the keys.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/tbourn/go-qa-backend/internal/config"
	httpapi "github.com/tbourn/go-qa-backend/internal/http"
	"github.com/tbourn/go-qa-backend/internal/moderation"
	"github.com/tbourn/go-qa-backend/internal/observability"
	"github.com/tbourn/go-qa-backend/internal/repo"
	"github.com/tbourn/go-qa-backend/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	shutdownGrace = 15 * time.Second
	slowQuery     = 200 * time.Millisecond
)

func main() {
	envFile := pflag.String("env-file", "", "env file to load before reading configuration (default .env if present)")
	migrateOnly := pflag.Bool("migrate-only", false, "apply schema migrations and exit")
	pflag.Parse()

	if err := run(*envFile, *migrateOnly || sysutil.IsTruthy(os.Getenv("MIGRATE_ONLY"))); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(envFile string, migrateOnly bool) error {
	if err := loadEnv(envFile); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := sysutil.SetupLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, observability.Build{
		Version:     version,
		Environment: cfg.GinMode,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.Open(cfg.DatabaseURL, repo.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
		Logger:       sysutil.GormLogger(logger, slowQuery),
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	stats, err := repo.TableStats(ctx, db)
	if err != nil {
		return fmt.Errorf("table stats: %w", err)
	}
	log.Info().
		Bool("postgres", cfg.IsPostgres()).
		Int64("questions", stats.Questions).
		Int64("answers", stats.Answers).
		Msg("database ready")
	if migrateOnly {
		return nil
	}

	mod := moderation.NewClient(cfg.Moderation.URL, cfg.Moderation.APIKey, cfg.Moderation.Timeout)

	r := gin.New()
	if err := httpapi.RegisterRoutes(r, db, mod, cfg); err != nil {
		return fmt.Errorf("routes: %w", err)
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("base_path", cfg.APIBasePath).
			Str("version", version).
			Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// loadEnv seeds the process environment from an env file. Variables already
// set win. Without an explicit path, a missing .env is not an error.
func loadEnv(path string) error {
	explicit := path != ""
	path = sysutil.FirstNonEmpty(path, os.Getenv("ENV_FILE"), ".env")
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("env file %s: %w", path, err)
	}
	return nil
}
