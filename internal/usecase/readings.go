package usecase

import (
	"context"
	"fmt"
	"time"

	"AirCast/internal/domain/models"
	domrepo "AirCast/internal/domain/repository"
	"AirCast/pkg/util"
)

// ReadingsUseCase provides query access to stored readings.
type ReadingsUseCase struct {
	store domrepo.ReadingStore
}

func NewReadingsUseCase(store domrepo.ReadingStore) *ReadingsUseCase {
	return &ReadingsUseCase{store: store}
}

type GetReadingsParams struct {
	Area  string
	From  time.Time
	To    time.Time
	Limit int
}

type GetReadingsResult struct {
	Area     string
	From     time.Time
	To       time.Time
	Count    int
	Readings []models.Reading
}

// Latest returns the most recent n readings for an area, newest first.
func (uc *ReadingsUseCase) Latest(ctx context.Context, area string, n int) ([]models.Reading, error) {
	if area == "" {
		return nil, fmt.Errorf("area required")
	}
	if n <= 0 {
		n = 48
	}
	if n > 2000 {
		n = 2000
	}
	return uc.store.GetLatestN(ctx, area, n)
}

// GetReadings returns readings for an area inside a time range. The range
// is widened to hourly boundaries before querying.
func (uc *ReadingsUseCase) GetReadings(ctx context.Context, p GetReadingsParams) (*GetReadingsResult, error) {
	if p.Area == "" {
		return nil, fmt.Errorf("area required")
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 1000
	}
	if p.Limit > 10000 {
		p.Limit = 10000
	}
	p.From, p.To = util.AlignToHour(p.From, p.To)

	readings, err := uc.store.GetRange(ctx, p.Area, p.From, p.To)
	if err != nil {
		return nil, fmt.Errorf("get readings: %w", err)
	}
	if len(readings) > p.Limit {
		readings = readings[:p.Limit]
	}

	return &GetReadingsResult{
		Area:     p.Area,
		From:     p.From,
		To:       p.To,
		Count:    len(readings),
		Readings: readings,
	}, nil
}
