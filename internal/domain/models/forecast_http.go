package models

// Requests for the forecasting HTTP endpoints. Defined in domain for consistency and reuse.

type ForecastRequest struct {
	Area  string `query:"area" json:"area" validate:"required"`
	Hours int    `query:"hours" json:"hours" default:"24" validate:"gte=1,lte=72"`
}

type LatestForecastRequest struct {
	Area string `query:"area" json:"area" validate:"required"`
}

// ReadingsRequest selects either the latest n readings or, when from/to are
// set, a time range. From and To accept RFC3339 or unix seconds.
type ReadingsRequest struct {
	Area string `query:"area" json:"area" validate:"required"`
	N    int    `query:"n" json:"n" default:"48" validate:"gte=1,lte=2000"`
	From string `query:"from" json:"from" validate:"omitempty"`
	To   string `query:"to" json:"to" validate:"omitempty"`
}

type BatchRunRequest struct {
	Hours int `query:"hours" json:"hours" default:"24" validate:"gte=1,lte=72"`
}
