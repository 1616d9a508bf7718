// Command server runs the referral backend: webhook intake for the group
// bot, the ops API, and the periodic leaderboard broadcast.
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

	"github.com/referralhub/go-referral-backend/internal/config"
	"github.com/referralhub/go-referral-backend/internal/gateway"
	httpapi "github.com/referralhub/go-referral-backend/internal/http"
	"github.com/referralhub/go-referral-backend/internal/observability"
	"github.com/referralhub/go-referral-backend/internal/repo"
	"github.com/referralhub/go-referral-backend/internal/scheduler"
	"github.com/referralhub/go-referral-backend/internal/services"
	"github.com/referralhub/go-referral-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Info().Str("version", version).Msg("starting referral backend")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("database open failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	gw := gateway.WithTimeout(&gateway.Client{
		Token:       cfg.BotToken,
		GroupChatID: cfg.GroupChatID,
	}, cfg.GatewayTimeout)

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, db, gw, cfg)

	// Periodic group broadcast of the confirmed-referral ranking. The task
	// only reads, so a broadcast overlapping a resolution is harmless.
	lb := &services.LeaderboardService{DB: db}
	broadcast := scheduler.New(log.Logger)
	broadcast.Start(cfg.LeaderboardInterval, func(ctx context.Context) {
		ranks, err := lb.Top(ctx, cfg.LeaderboardSize)
		if err != nil {
			log.Warn().Err(err).Msg("leaderboard broadcast query failed")
			return
		}
		if len(ranks) == 0 {
			return
		}
		gateway.BestEffortSend(ctx, gw, cfg.GroupChatID, services.FormatLeaderboard(ranks), log.Logger)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	broadcast.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown failed")
	}

	log.Info().Msg("stopped")
}
