package service

import (
	"context"

	"AirCast/internal/domain/models"
)

// Enhancer post-adjusts a baseline forecast sequence with small additive
// deltas and narrative insight from an external generative service.
// Implementations must treat every failure as non-fatal: the contract is
// best-effort enrichment, never a veto over the baseline.
type Enhancer interface {
	Enhance(ctx context.Context, area models.AreaMeta, baseline []models.Forecast) ([]models.EnhancedForecast, error)
}
