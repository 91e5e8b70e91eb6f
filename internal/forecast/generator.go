package forecast

import (
	"fmt"
	"time"

	"AirCast/internal/domain/models"
)

// Generator produces a multi-horizon forecast sequence for one area. It holds
// no per-call state; a single instance is safe for concurrent use across areas.
type Generator struct {
	now func() time.Time
}

// GeneratorOption configures Generator.
type GeneratorOption func(*Generator)

// WithNow overrides the wall clock, the generator's only environmental input.
func WithNow(fn func() time.Time) GeneratorOption {
	return func(g *Generator) {
		if fn != nil {
			g.now = fn
		}
	}
}

// NewGenerator creates a Generator.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns one forecast per hour 1..hoursAhead, in that order. Each
// hour is computed independently from the original history — the sequence is
// a pure map over horizons, not a recurrence. Validation happens once up
// front; any error aborts the whole call with no partial result.
func (g *Generator) Generate(history []models.Reading, weather models.WeatherSnapshot, area models.AreaMeta, hoursAhead int) ([]models.Forecast, error) {
	if hoursAhead <= 0 {
		return nil, fmt.Errorf("%w: hours_ahead must be >= 1, got %d", ErrInvalidInput, hoursAhead)
	}
	if len(history) < MinHistory {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientHistory, len(history))
	}
	for i := range history[:MinHistory] {
		if history[i].Timestamp.IsZero() {
			return nil, fmt.Errorf("%w: reading %d has no timestamp", ErrInvalidInput, i)
		}
	}

	now := g.now()
	out := make([]models.Forecast, 0, hoursAhead)
	for h := 1; h <= hoursAhead; h++ {
		f := Extract(history, weather, area, h, now)
		linear := PredictLinearTrend(f, h)
		seasonal := PredictSeasonal(f, h)
		wx := PredictWeatherResponse(f, h)
		out = append(out, Combine(linear, seasonal, wx, f, h))
	}
	return out, nil
}
