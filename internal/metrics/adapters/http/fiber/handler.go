package fiber

import (
	"context"
	"errors"
	"net/http"

	"github.com/superhyuk/statics-mc/internal/metrics/core/domain"
	"github.com/superhyuk/statics-mc/internal/metrics/core/ports"
	"github.com/superhyuk/statics-mc/internal/metrics/core/usecase"

	"github.com/gofiber/fiber/v2"
)

type GetCountsUseCase interface {
	Execute(ctx context.Context, in usecase.GetCountsInput) (*domain.CountsSeries, error)
}

type GetWatermarkUseCase interface {
	Execute(ctx context.Context) (*domain.WatermarkView, error)
}

type CountsHandler struct {
	counts    GetCountsUseCase
	watermark GetWatermarkUseCase
}

func NewCountsHandler(counts GetCountsUseCase, watermark GetWatermarkUseCase) *CountsHandler {
	return &CountsHandler{counts: counts, watermark: watermark}
}

// GetCounts godoc
// @Summary Query bucket counts
// @Description Returns per-bucket, per-machine counts of one granularity within an inclusive key range
// @Tags Counts
// @Produce json
// @Param granularity query string true "hour | day | week | month | minute"
// @Param from query string false "First bucket key, e.g. 2025-01-01 or Week_1"
// @Param to query string false "Last bucket key"
// @Param machine_id query string false "Machine id"
// @Success 200 {object} CountsSeriesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /counts [get]
func (h *CountsHandler) GetCounts(c *fiber.Ctx) error {
	granularity := c.Query("granularity", "")
	if granularity == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_query",
			Message: "granularity is required",
		})
	}

	var machinePtr *string
	machineID := c.Query("machine_id", "")
	if machineID != "" {
		machinePtr = &machineID
	}

	in := usecase.GetCountsInput{
		Granularity: granularity,
		From:        c.Query("from", ""),
		To:          c.Query("to", ""),
		MachineID:   machinePtr,
	}

	res, err := h.counts.Execute(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}

	resp := CountsSeriesResponse{
		Granularity: res.Granularity,
		From:        res.From,
		To:          res.To,
		MachineID:   res.MachineID,
		FirstDate:   res.FirstDate,
		UpdatedAt:   res.UpdatedAt,
		Buckets:     make([]BucketResponse, 0, len(res.Buckets)),
		Totals:      toCountsResponse(res.Totals),
	}
	for _, b := range res.Buckets {
		br := BucketResponse{
			Key:      b.Key,
			Machines: make([]MachineCountsResponse, 0, len(b.Machines)),
		}
		for _, m := range b.Machines {
			br.Machines = append(br.Machines, MachineCountsResponse{
				MachineID:   m.MachineID,
				DisplayName: m.DisplayName,
				Counts:      toCountsResponse(m.Counts),
			})
		}
		resp.Buckets = append(resp.Buckets, br)
	}

	return c.Status(http.StatusOK).JSON(resp)
}

// GetWatermark godoc
// @Summary Last processed record time
// @Tags Counts
// @Produce json
// @Success 200 {object} WatermarkResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /watermark [get]
func (h *CountsHandler) GetWatermark(c *fiber.Ctx) error {
	wm, err := h.watermark.Execute(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(WatermarkResponse{
		LastProcessedTime: wm.LastProcessedTime,
		UpdatedAt:         wm.UpdatedAt,
	})
}

// Health godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *CountsHandler) Health(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(HealthResponse{Status: "ok"})
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidGranularity),
		errors.Is(err, usecase.ErrInvalidBucketKey),
		errors.Is(err, usecase.ErrInvalidRange):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_query",
			Message: err.Error(),
		})
	case errors.Is(err, ports.ErrNoData):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{
			Error:   "no_data",
			Message: err.Error(),
		})
	default:
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "internal_server_error",
		})
	}
}

func toCountsResponse(c domain.Counts) CountsResponse {
	return CountsResponse{
		MICAnomaly:   c.MICAnomaly,
		MICProcessed: c.MICProcessed,
		ACCAnomaly:   c.ACCAnomaly,
		ACCProcessed: c.ACCProcessed,
	}
}
