package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/deliberation-tools/groundwork/internal/adapter/httpserver"
	"github.com/deliberation-tools/groundwork/internal/adapter/postgres"
	"github.com/deliberation-tools/groundwork/internal/app"
	"github.com/deliberation-tools/groundwork/internal/platform/config"
	"github.com/deliberation-tools/groundwork/internal/platform/logging"
	"github.com/deliberation-tools/groundwork/internal/platform/version"
)

func main() {
	cfg := setupConfig()
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	slog.Info("Starting groundwork", "version", version.Version, "env", cfg.AppEnv)

	pool := setupDB(cfg)

	svc := app.NewService(clockwork.NewRealClock(), cfg.Engine)

	var conversations *postgres.ConversationRepo
	var reports *postgres.ReportRepo
	var healthChecks []httpserver.HealthCheck
	var srv *httpserver.Server
	if pool != nil {
		conversations = postgres.NewConversationRepo(pool)
		reports = postgres.NewReportRepo(pool)
		healthChecks = append(healthChecks, httpserver.HealthCheck{
			Name:  "postgres",
			Check: pool.Ping,
		})
		srv = httpserver.NewServer(cfg, svc, conversations, reports, healthChecks)
	} else {
		srv = httpserver.NewServer(cfg, svc, nil, nil, nil)
	}

	done := runGracefulShutdown(srv, pool)

	slog.Info("Server listening", "port", cfg.Port)
	if err := srv.Start(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}

	<-done
	slog.Info("Shutdown complete")
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized.
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// setupDB connects and migrates when DATABASE_URL is set; without it the
// service runs in inline-analysis-only mode.
func setupDB(cfg *config.Config) *pgxpool.Pool {
	if cfg.DatabaseURL == "" {
		slog.Info("DATABASE_URL not set, running without storage")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	return pool
}

func runGracefulShutdown(srv *httpserver.Server, pool *pgxpool.Pool) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		if pool != nil {
			pool.Close()
		}
		close(done)
	}()

	return done
}
