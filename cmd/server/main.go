package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"multipos/internal/config"
	"multipos/internal/infra"
	"multipos/internal/repository"
	"multipos/internal/router"
	"multipos/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if cfg.DBAutoMigrate {
		if err := infra.RunMigrations(db); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis backs the status cache and the alert queue. Without it the API
	// still serves every request; alerts are dropped.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, running without cache and alerts")
			rdb = nil
		}
	}

	mailCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))
	var dispatcher *worker.Dispatcher
	var pool *worker.Pool

	if rdb != nil && cfg.AlertsEnabled() {
		dispatcher = worker.NewDispatcher(rdb)
		mailer := infra.NewMailer(cfg)

		pool = worker.NewPool(rdb, cfg.WorkerPoolSize)
		pool.Register(worker.QueueLowStock, worker.JobTypeLowStock,
			worker.NewAlertWorker(mailer, mailCB, splitRecipients(cfg.AlertEmail)))
		pool.Start(ctx)

		go worker.StartAlertSweep(ctx, repository.NewInventoryRepository(db), dispatcher, cfg.AlertSweepInterval)
	} else {
		log.Info().Msg("low stock alerts disabled (set REDIS_URL, SMTP_HOST and ALERT_EMAIL to enable)")
	}

	deps := router.Deps{DB: db, Redis: rdb, MailCB: mailCB}
	if dispatcher != nil {
		deps.Alerts = dispatcher
	}
	r := router.New(ctx, cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Msgf("multipos listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown on SIGINT / SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	if pool != nil {
		pool.Wait()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}

func splitRecipients(raw string) []string {
	var out []string
	for _, r := range strings.Split(raw, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
