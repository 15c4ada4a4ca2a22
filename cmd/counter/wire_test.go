package main

import (
	"context"
	"errors"
	"testing"
	"time"

	filestore "github.com/superhyuk/statics-mc/internal/aggregation/adapters/file"
	"github.com/superhyuk/statics-mc/internal/aggregation/core/ports"
	"github.com/superhyuk/statics-mc/internal/aggregation/core/usecase"
	"github.com/superhyuk/statics-mc/internal/config"
)

func TestOptions_FromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.RescanMode = "full"
	cfg.AnchorPolicy = "first_run"
	cfg.OnCorruptState = "reset"
	cfg.TimeZone = "Asia/Seoul"
	cfg.Workers = 6

	opts, err := options(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Mode != usecase.RescanFull || opts.AnchorPolicy != usecase.AnchorFirstRun || opts.OnCorruptState != usecase.CorruptStateReset {
		t.Fatalf("unexpected policies: %+v", opts)
	}
	if opts.Location.String() != "Asia/Seoul" || opts.Workers != 6 {
		t.Fatalf("unexpected options: %+v", opts)
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, opts.Location)
	if !opts.InitialWatermark.Equal(want) {
		t.Fatalf("expected initial watermark %s, got %s", want, opts.InitialWatermark)
	}
}

func TestNewStore_FileBackend(t *testing.T) {
	cfg := config.Default()
	cfg.StateDir = t.TempDir()

	store, closeStore, err := newStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeStore()

	if _, ok := store.(*filestore.Store); !ok {
		t.Fatalf("expected a file store, got %T", store)
	}
	if _, err := store.Load(context.Background()); !errors.Is(err, ports.ErrStateNotFound) {
		t.Fatalf("expected empty state dir, got %v", err)
	}
}
