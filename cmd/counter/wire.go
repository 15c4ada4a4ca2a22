package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	filestore "github.com/superhyuk/statics-mc/internal/aggregation/adapters/file"
	pgstore "github.com/superhyuk/statics-mc/internal/aggregation/adapters/postgres"
	s3lister "github.com/superhyuk/statics-mc/internal/aggregation/adapters/s3"
	"github.com/superhyuk/statics-mc/internal/aggregation/core/ports"
	"github.com/superhyuk/statics-mc/internal/aggregation/core/usecase"
	"github.com/superhyuk/statics-mc/internal/config"

	_ "github.com/lib/pq"
)

// newStore opens the configured state backend. The returned func releases it.
func newStore(ctx context.Context, cfg config.Config) (ports.StateStorePort, func(), error) {
	switch cfg.StateBackend {
	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}

		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}

		store := pgstore.NewStore(pgstore.NewSQLDB(db))
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil
	default:
		store, err := filestore.NewStore(cfg.StateDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

func newRunUseCase(ctx context.Context, cfg config.Config, store ports.StateStorePort, log *slog.Logger) (*usecase.RunUseCase, error) {
	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}
	client, err := s3lister.NewClient(ctx, cfg.Region, cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	lister := s3lister.NewLister(client, cfg.Bucket)
	return usecase.NewRunUseCase(store, lister, cfg.Registry(), opts, log.With("bucket", cfg.Bucket)), nil
}

// options maps validated configuration onto the pipeline flags.
func options(cfg config.Config) (usecase.Options, error) {
	loc, err := cfg.Location()
	if err != nil {
		return usecase.Options{}, err
	}
	wm, err := cfg.InitialWatermarkTime()
	if err != nil {
		return usecase.Options{}, err
	}
	return usecase.Options{
		Mode:                usecase.RescanMode(cfg.RescanMode),
		EnableMinuteBuckets: cfg.EnableMinuteBuckets,
		Location:            loc,
		AnchorPolicy:        usecase.AnchorPolicy(cfg.AnchorPolicy),
		OnCorruptState:      usecase.CorruptStatePolicy(cfg.OnCorruptState),
		Workers:             cfg.Workers,
		ReconcileDays:       cfg.ReconcileDays,
		ReconcileWeeks:      cfg.ReconcileWeeks,
		DatePrefixedKeys:    cfg.DatePrefixedKeys,
		InitialWatermark:    wm,
	}, nil
}
