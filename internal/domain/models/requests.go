package models

// HTTP request payloads for the API layer. Bound from query/path params and
// validated with go-playground/validator; defaults via creasty/defaults.

// PredictionsRequest lists the most recent prediction records.
type PredictionsRequest struct {
	Ticker string `query:"ticker" validate:"omitempty,min=1,max=10"`
	Limit  int    `query:"limit" default:"50" validate:"gte=1,lte=500"`
}

// TickerRequest targets one ticker for on-demand analysis.
type TickerRequest struct {
	Ticker string `param:"ticker" validate:"required,min=1,max=10"`
}

// HistoryRequest fetches prediction history for one ticker.
type HistoryRequest struct {
	Ticker string `param:"ticker" validate:"required,min=1,max=10"`
	Hours  int    `query:"hours" default:"24" validate:"gte=1,lte=720"`
	Limit  int    `query:"limit" default:"100" validate:"gte=1,lte=1000"`
}
