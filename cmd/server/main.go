// Command server runs the complaint intake and triage backend: the two
// SQLite stores, the notification hub, the HTTP API, and the periodic
// stats broadcaster.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ileco-one/triage-backend/internal/config"
	httpapi "github.com/ileco-one/triage-backend/internal/http"
	"github.com/ileco-one/triage-backend/internal/notify"
	"github.com/ileco-one/triage-backend/internal/observability"
	"github.com/ileco-one/triage-backend/internal/repo"
	"github.com/ileco-one/triage-backend/internal/services"
	"github.com/ileco-one/triage-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var shutdownOTel func(context.Context) error
	if cfg.OTEL.Enabled {
		var err error
		shutdownOTel, err = observability.SetupOTel(ctx, cfg.OTEL, version)
		if err != nil {
			log.Fatal().Err(err).Msg("otel setup failed")
		}
	}

	complaintDB, err := repo.OpenStore(cfg.ComplaintDBPath, cfg.DBMaxConns)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.ComplaintDBPath).Msg("open complaint store failed")
	}
	if err := repo.MigrateComplaintStore(complaintDB); err != nil {
		log.Fatal().Err(err).Msg("complaint store migration failed")
	}

	jobOrderDB, err := repo.OpenStore(cfg.JobOrderDBPath, cfg.DBMaxConns)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.JobOrderDBPath).Msg("open job order store failed")
	}
	if err := repo.MigrateJobOrderStore(jobOrderDB); err != nil {
		log.Fatal().Err(err).Msg("job order store migration failed")
	}

	if cfg.Auth.AdminPassword != "" {
		if err := repo.EnsureDefaultAdmin(ctx, complaintDB, cfg.Auth.AdminUser, cfg.Auth.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("admin seeding failed")
		}
	} else {
		log.Warn().Msg("ADMIN_PASSWORD not set; no dashboard user seeded")
	}

	hub := notify.NewHub(cfg.EventBuffer)

	r := gin.New()
	httpapi.RegisterRoutes(r, complaintDB, jobOrderDB, hub, cfg)

	// Periodic stats_update frames for connected dashboards.
	agg := services.NewAggregator(complaintDB, httpapi.ComplaintStore())
	stats := services.NewStatsService(agg)
	broadcaster := notify.NewBroadcaster(hub, cfg.BroadcastInterval, func() any {
		bctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()
		return stats.Snapshot(bctx)
	})
	go broadcaster.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := repo.Close(complaintDB); err != nil {
		log.Error().Err(err).Msg("complaint store close failed")
	}
	if err := repo.Close(jobOrderDB); err != nil {
		log.Error().Err(err).Msg("job order store close failed")
	}
	if shutdownOTel != nil {
		if err := shutdownOTel(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("otel shutdown failed")
		}
	}
	log.Info().Msg("server stopped")
}
