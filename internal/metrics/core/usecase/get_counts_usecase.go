package usecase

import (
	"context"
	"errors"

	aggdomain "github.com/superhyuk/statics-mc/internal/aggregation/core/domain"
	"github.com/superhyuk/statics-mc/internal/metrics/core/domain"
	"github.com/superhyuk/statics-mc/internal/metrics/core/ports"
)

var (
	ErrInvalidGranularity = errors.New("invalid granularity")
	ErrInvalidBucketKey   = errors.New("invalid bucket key for granularity")
	ErrInvalidRange       = errors.New("invalid bucket range")
)

type GetCountsInput struct {
	Granularity string
	From        string // optional
	To          string // optional
	MachineID   *string
}

type GetCountsUseCase struct {
	reader ports.CountsReaderPort
}

func NewGetCountsUseCase(reader ports.CountsReaderPort) *GetCountsUseCase {
	return &GetCountsUseCase{reader: reader}
}

// Execute validates the bucket range against the granularity's key layout
// and reads the matching buckets.
func (uc *GetCountsUseCase) Execute(ctx context.Context, in GetCountsInput) (*domain.CountsSeries, error) {
	g, ok := aggdomain.ParseGranularity(in.Granularity)
	if !ok {
		return nil, ErrInvalidGranularity
	}

	for _, key := range []string{in.From, in.To} {
		if key != "" && !aggdomain.ValidBucketKey(g, key) {
			return nil, ErrInvalidBucketKey
		}
	}
	if in.From != "" && in.To != "" && aggdomain.CompareBucketKeys(g, in.From, in.To) > 0 {
		return nil, ErrInvalidRange
	}

	filter := ports.CountsFilter{
		Granularity: string(g),
		From:        in.From,
		To:          in.To,
		MachineID:   in.MachineID,
	}

	result, err := uc.reader.QueryCounts(ctx, filter)
	if err != nil {
		return nil, err
	}

	return result, nil
}
