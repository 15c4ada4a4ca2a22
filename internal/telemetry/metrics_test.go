package telemetry_test

import (
	"errors"
	"testing"
	"time"

	"github.com/superhyuk/statics-mc/internal/aggregation/core/usecase"
	"github.com/superhyuk/statics-mc/internal/telemetry"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := telemetry.NewMetrics(reg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := telemetry.NewMetrics(reg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if _, err := telemetry.NewMetrics(nil); err != nil {
		t.Fatalf("nil registerer must be accepted: %v", err)
	}
}

func TestObserveRun_Success(t *testing.T) {
	m, err := telemetry.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.ObserveRun(usecase.RunReport{
		Accepted:      5,
		Skipped:       1,
		Stale:         7,
		Inconsistent:  2,
		Reconcile:     usecase.ReconcileReport{Fixed: 1, Empty: 3},
		Watermark:     "20250101_090000",
		WatermarkTime: time.Date(2025, 1, 1, 9, 0, 0, 0, time.FixedZone("KST", 9*60*60)),
		Duration:      2 * time.Second,
	}, nil)

	if got := promtest.ToFloat64(m.Runs.WithLabelValues(telemetry.RunSuccess)); got != 1 {
		t.Fatalf("expected 1 successful run, got %v", got)
	}
	if got := promtest.ToFloat64(m.Records.WithLabelValues("accepted")); got != 5 {
		t.Fatalf("expected 5 accepted, got %v", got)
	}
	if got := promtest.ToFloat64(m.Records.WithLabelValues("stale")); got != 7 {
		t.Fatalf("expected 7 stale, got %v", got)
	}
	if got := promtest.ToFloat64(m.ReconcileWindow.WithLabelValues("empty")); got != 3 {
		t.Fatalf("expected 3 empty windows, got %v", got)
	}
	want := float64(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Unix())
	if got := promtest.ToFloat64(m.Watermark); got != want {
		t.Fatalf("expected watermark %v, got %v", want, got)
	}
}

func TestObserveRun_Failure(t *testing.T) {
	m, err := telemetry.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.ObserveRun(usecase.RunReport{Accepted: 9, WatermarkTime: time.Now()}, errors.New("listing failed"))

	if got := promtest.ToFloat64(m.Runs.WithLabelValues(telemetry.RunFailed)); got != 1 {
		t.Fatalf("expected 1 failed run, got %v", got)
	}
	if got := promtest.CollectAndCount(m.Records); got != 0 {
		t.Fatalf("failed runs must not add record counts, got %d series", got)
	}
	if got := promtest.ToFloat64(m.Watermark); got != 0 {
		t.Fatalf("failed runs must not move the watermark gauge, got %v", got)
	}
}
