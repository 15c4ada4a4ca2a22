package usecase

import (
	"context"

	"github.com/superhyuk/statics-mc/internal/metrics/core/domain"
	"github.com/superhyuk/statics-mc/internal/metrics/core/ports"
)

type GetWatermarkUseCase struct {
	reader ports.CountsReaderPort
}

func NewGetWatermarkUseCase(reader ports.CountsReaderPort) *GetWatermarkUseCase {
	return &GetWatermarkUseCase{reader: reader}
}

func (uc *GetWatermarkUseCase) Execute(ctx context.Context) (*domain.WatermarkView, error) {
	return uc.reader.ReadWatermark(ctx)
}
