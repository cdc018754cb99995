package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"barbercontrol/internal/config"
	"barbercontrol/internal/infra"
	"barbercontrol/internal/router"
	"barbercontrol/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailerCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	deps := router.New(cfg, db, rdb, mailerCB)

	// Goroutine worker pool for async tasks (audit trail, closing emails).
	worker.StartWorkerPool(ctx, rdb, deps.WorkerHandlers, cfg.WorkerPoolSize)

	// Optional sweep for the automatic register close. Off by default — the
	// due-check runs inline on the request path; the cron only covers locales
	// with no traffic around closing time.
	if cfg.CierreCronEnabled {
		worker.StartCierreCron(ctx, worker.CierreCronConfig{
			Ejecutor: deps.CajaService,
			Puntos:   deps.Puntos,
			Interval: time.Duration(cfg.CierreCronMinutes) * time.Minute,
		})
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      deps.Engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("barbercontrol backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
