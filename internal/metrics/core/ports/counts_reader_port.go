package ports

import (
	"context"
	"errors"

	"github.com/superhyuk/statics-mc/internal/metrics/core/domain"
)

// ErrNoData: no aggregation pass has persisted anything yet.
var ErrNoData = errors.New("no counts stored yet")

type CountsFilter struct {
	Granularity string
	From        string
	To          string
	MachineID   *string // optional
}

type CountsReaderPort interface {
	QueryCounts(ctx context.Context, f CountsFilter) (*domain.CountsSeries, error)
	ReadWatermark(ctx context.Context) (*domain.WatermarkView, error)
}
