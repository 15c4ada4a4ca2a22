// @title Capture Counts API
// @version 1.0
// @description Read API over the hourly, daily, weekly, monthly and minute capture counts.
// @BasePath /
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/superhyuk/statics-mc/internal/aggregation/core/usecase"
	"github.com/superhyuk/statics-mc/internal/config"
	metricsHttp "github.com/superhyuk/statics-mc/internal/metrics/adapters/http/fiber"
	"github.com/superhyuk/statics-mc/internal/metrics/adapters/statestore"
	metricsUsecase "github.com/superhyuk/statics-mc/internal/metrics/core/usecase"
	"github.com/superhyuk/statics-mc/internal/telemetry"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	_ "github.com/superhyuk/statics-mc/docs"
)

const usage = `usage: counter <command>

commands:
  run     run one aggregation pass and exit
  serve   serve the read API; runs passes every RUN_INTERVAL when set`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "run":
		err = runOnce(ctx, log, cfg)
	case "serve":
		err = serve(ctx, log, cfg)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error("exit", "err", err)
		os.Exit(1)
	}
}

func runOnce(ctx context.Context, log *slog.Logger, cfg config.Config) error {
	if err := cfg.ValidateRun(); err != nil {
		return err
	}
	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	uc, err := newRunUseCase(ctx, cfg, store, log)
	if err != nil {
		return err
	}
	_, err = uc.Execute(ctx)
	return err
}

func serve(ctx context.Context, log *slog.Logger, cfg config.Config) error {
	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := telemetry.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	var wg sync.WaitGroup
	if cfg.RunInterval > 0 {
		if err := cfg.ValidateRun(); err != nil {
			return err
		}
		uc, err := newRunUseCase(ctx, cfg, store, log)
		if err != nil {
			return err
		}
		uc.WithObserver(metrics)
		wg.Add(1)
		go func() {
			defer wg.Done()
			runLoop(ctx, log, uc, cfg.RunInterval)
		}()
	}

	// Read side
	reader := statestore.NewReader(store)
	getCountsUC := metricsUsecase.NewGetCountsUseCase(reader)
	getWatermarkUC := metricsUsecase.NewGetWatermarkUseCase(reader)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	countsHandler := metricsHttp.NewCountsHandler(getCountsUC, getWatermarkUC)
	app.Get("/counts", countsHandler.GetCounts)
	app.Get("/watermark", countsHandler.GetWatermark)
	app.Get("/health", countsHandler.Health)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Swagger
	app.Get("/docs/*", fiberSwagger.WrapHandler)

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(cfg.ListenAddr)
	}()
	log.Info("server_started", "addr", cfg.ListenAddr, "run_interval", cfg.RunInterval.String())

	select {
	case <-ctx.Done():
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("fiber stopped: %w", err)
		}
	}

	log.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("fiber_shutdown_failed", "err", err)
	}
	wg.Wait()

	log.Info("server_exiting")
	return nil
}

// runLoop runs one pass right away and then one per tick. A failed pass is
// logged and retried on the next tick.
func runLoop(ctx context.Context, log *slog.Logger, uc *usecase.RunUseCase, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		if _, err := uc.Execute(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("scheduled_run_failed", "err", err, "next_in", every.String())
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
