package fiber_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	httpadapter "github.com/superhyuk/statics-mc/internal/metrics/adapters/http/fiber"
	"github.com/superhyuk/statics-mc/internal/metrics/core/domain"
	"github.com/superhyuk/statics-mc/internal/metrics/core/ports"
	"github.com/superhyuk/statics-mc/internal/metrics/core/usecase"

	"github.com/gofiber/fiber/v2"
)

// Fake usecases implementing the interfaces that the handler depends on.
type fakeGetCountsUseCase struct {
	ExecuteFn func(ctx context.Context, in usecase.GetCountsInput) (*domain.CountsSeries, error)
	lastInput usecase.GetCountsInput
	called    bool
}

func (f *fakeGetCountsUseCase) Execute(ctx context.Context, in usecase.GetCountsInput) (*domain.CountsSeries, error) {
	f.called = true
	f.lastInput = in
	if f.ExecuteFn != nil {
		return f.ExecuteFn(ctx, in)
	}
	return &domain.CountsSeries{Granularity: in.Granularity}, nil
}

type fakeGetWatermarkUseCase struct {
	ExecuteFn func(ctx context.Context) (*domain.WatermarkView, error)
}

func (f *fakeGetWatermarkUseCase) Execute(ctx context.Context) (*domain.WatermarkView, error) {
	if f.ExecuteFn != nil {
		return f.ExecuteFn(ctx)
	}
	return &domain.WatermarkView{}, nil
}

func setupApp(t *testing.T, counts httpadapter.GetCountsUseCase, wm httpadapter.GetWatermarkUseCase) *fiber.App {
	t.Helper()
	app := fiber.New()
	h := httpadapter.NewCountsHandler(counts, wm)
	app.Get("/counts", h.GetCounts)
	app.Get("/watermark", h.GetWatermark)
	app.Get("/health", h.Health)
	return app
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

// ------------------------------------------------------------
// SUCCESS
// ------------------------------------------------------------

func TestGetCounts_Success(t *testing.T) {
	uc := &fakeGetCountsUseCase{
		ExecuteFn: func(ctx context.Context, in usecase.GetCountsInput) (*domain.CountsSeries, error) {
			if in.Granularity != "week" || in.From != "Week_1" || in.To != "Week_3" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.MachineID == nil || *in.MachineID != "MACHINE2" {
				t.Fatalf("expected machine_id=MACHINE2, got %v", in.MachineID)
			}
			return &domain.CountsSeries{
				Granularity: "week",
				From:        in.From,
				To:          in.To,
				MachineID:   *in.MachineID,
				Buckets: []domain.BucketCounts{
					{Key: "Week_1", Machines: []domain.MachineCounts{
						{MachineID: "MACHINE2", DisplayName: "Press #2", Counts: domain.Counts{MICProcessed: 4}},
					}},
				},
				Totals: domain.Counts{MICProcessed: 4},
			}, nil
		},
	}
	app := setupApp(t, uc, &fakeGetWatermarkUseCase{})

	params := url.Values{}
	params.Set("granularity", "week")
	params.Set("from", "Week_1")
	params.Set("to", "Week_3")
	params.Set("machine_id", "MACHINE2")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/counts?"+params.Encode(), nil))
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var body httpadapter.CountsSeriesResponse
	decode(t, resp, &body)
	if len(body.Buckets) != 1 || body.Buckets[0].Machines[0].Counts.MICProcessed != 4 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Totals.MICProcessed != 4 {
		t.Fatalf("unexpected totals: %+v", body.Totals)
	}
}

// ------------------------------------------------------------
// MISSING / INVALID PARAMS
// ------------------------------------------------------------

func TestGetCounts_MissingGranularity(t *testing.T) {
	uc := &fakeGetCountsUseCase{}
	app := setupApp(t, uc, &fakeGetWatermarkUseCase{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/counts", nil))
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}
	if uc.called {
		t.Fatalf("usecase should not be called without granularity")
	}
}

func TestGetCounts_UsecaseErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{usecase.ErrInvalidGranularity, http.StatusBadRequest, "invalid_query"},
		{usecase.ErrInvalidBucketKey, http.StatusBadRequest, "invalid_query"},
		{usecase.ErrInvalidRange, http.StatusBadRequest, "invalid_query"},
		{ports.ErrNoData, http.StatusNotFound, "no_data"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal_server_error"},
	}
	for _, c := range cases {
		uc := &fakeGetCountsUseCase{
			ExecuteFn: func(ctx context.Context, in usecase.GetCountsInput) (*domain.CountsSeries, error) {
				return nil, c.err
			},
		}
		app := setupApp(t, uc, &fakeGetWatermarkUseCase{})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/counts?granularity=day", nil))
		if err != nil {
			t.Fatalf("app.Test error: %v", err)
		}
		if resp.StatusCode != c.status {
			t.Fatalf("%v: expected status %d, got %d", c.err, c.status, resp.StatusCode)
		}
		var body httpadapter.ErrorResponse
		decode(t, resp, &body)
		if body.Error != c.code {
			t.Fatalf("%v: expected error code %s, got %s", c.err, c.code, body.Error)
		}
	}
}

// ------------------------------------------------------------
// WATERMARK / HEALTH
// ------------------------------------------------------------

func TestGetWatermark(t *testing.T) {
	wm := &fakeGetWatermarkUseCase{
		ExecuteFn: func(ctx context.Context) (*domain.WatermarkView, error) {
			return &domain.WatermarkView{LastProcessedTime: "20250101_090000", UpdatedAt: "2025-01-01 12:00:00"}, nil
		},
	}
	app := setupApp(t, &fakeGetCountsUseCase{}, wm)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/watermark", nil))
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	var body httpadapter.WatermarkResponse
	decode(t, resp, &body)
	if body.LastProcessedTime != "20250101_090000" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestGetWatermark_NoData(t *testing.T) {
	wm := &fakeGetWatermarkUseCase{
		ExecuteFn: func(ctx context.Context) (*domain.WatermarkView, error) {
			return nil, ports.ErrNoData
		},
	}
	app := setupApp(t, &fakeGetCountsUseCase{}, wm)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/watermark", nil))
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	app := setupApp(t, &fakeGetCountsUseCase{}, &fakeGetWatermarkUseCase{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	var body httpadapter.HealthResponse
	decode(t, resp, &body)
	if body.Status != "ok" {
		t.Fatalf("unexpected body: %+v", body)
	}
}
