package api

import (
	"errors"
	"time"

	models "StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PredictionsHandler serves the read-only prediction API: latest records,
// per-ticker history, on-demand screening and signal runs, live quotes and
// health.
type PredictionsHandler struct {
	logger    *xlogger.Logger
	store     domrepo.PredictionStore
	pipeline  *usecase.Pipeline
	collector *usecase.QuoteCollector
}

func NewPredictionsHandler(
	logger *xlogger.Logger,
	store domrepo.PredictionStore,
	pipeline *usecase.Pipeline,
	collector *usecase.QuoteCollector,
) *PredictionsHandler {
	return &PredictionsHandler{
		logger:    logger,
		store:     store,
		pipeline:  pipeline,
		collector: collector,
	}
}

func (h *PredictionsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/predictions", h.Predictions)
	g.GET("/predictions/:ticker/history", h.History)
	g.GET("/screen/:ticker", h.Screen)
	g.GET("/signal/:ticker", h.Signal)
	g.GET("/quotes", h.Quotes)
	g.GET("/health", h.Health)
}

// Predictions lists the most recent record per ticker, or the newest records
// for one ticker when the query names it.
func (h *PredictionsHandler) Predictions(c echo.Context) error {
	req := &models.PredictionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	recs, err := h.store.Latest(c.Request().Context(), req.Ticker, req.Limit)
	if err != nil {
		h.logger.Error("latest predictions query failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("predictions unavailable"))
	}

	summary := summarize(recs)
	return xhttp.SuccessResponse(c, echo.Map{
		"predictions": recs,
		"summary":     summary,
		"count":       len(recs),
	})
}

// History returns one ticker's records over the requested window.
func (h *PredictionsHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	since := time.Now().UTC().Add(-time.Duration(req.Hours) * time.Hour)
	recs, err := h.store.History(c.Request().Context(), req.Ticker, since, req.Limit)
	if err != nil {
		h.logger.Error("prediction history query failed",
			xlogger.String("ticker", req.Ticker), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("history unavailable"))
	}
	return xhttp.SuccessResponse(c, echo.Map{
		"ticker":  req.Ticker,
		"hours":   req.Hours,
		"history": recs,
		"count":   len(recs),
	})
}

// Screen runs the screening scorer on demand for one ticker.
func (h *PredictionsHandler) Screen(c echo.Context) error {
	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.pipeline.Screen(c.Request().Context(), req.Ticker)
	if err != nil {
		return h.analysisError(c, req.Ticker, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Signal runs the signal detector on demand for one ticker.
func (h *PredictionsHandler) Signal(c echo.Context) error {
	req := &models.TickerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.pipeline.Signal(c.Request().Context(), req.Ticker)
	if err != nil {
		return h.analysisError(c, req.Ticker, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Quotes returns the latest streamed quote per subscribed symbol.
func (h *PredictionsHandler) Quotes(c echo.Context) error {
	if h.collector == nil {
		return xhttp.SuccessResponse(c, echo.Map{"quotes": []models.Quote{}, "streaming": false})
	}
	return xhttp.SuccessResponse(c, echo.Map{
		"quotes":    h.collector.Latest(),
		"streaming": h.collector.IsConnected(),
	})
}

// Health reports store connectivity and stream state.
func (h *PredictionsHandler) Health(c echo.Context) error {
	status := "ok"
	if err := h.store.Health(c.Request().Context()); err != nil {
		h.logger.Error("store health check failed", xlogger.Error(err))
		status = "degraded"
	}
	streaming := h.collector != nil && h.collector.IsConnected()
	return xhttp.SuccessResponse(c, echo.Map{
		"status":    status,
		"streaming": streaming,
		"time":      time.Now().UTC(),
	})
}

func (h *PredictionsHandler) analysisError(c echo.Context, ticker string, err error) error {
	if errors.Is(err, domrepo.ErrDataUnavailable) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no market data for %s", ticker))
	}
	h.logger.Error("on-demand analysis failed",
		xlogger.String("ticker", ticker), xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.InternalError("analysis failed"))
}

type predictionsSummary struct {
	Bullish        int `json:"bullish"`
	Bearish        int `json:"bearish"`
	Neutral        int `json:"neutral"`
	HighConfidence int `json:"high_confidence"`
}

func summarize(recs []models.PredictionRecord) predictionsSummary {
	var s predictionsSummary
	for _, r := range recs {
		switch r.SignalType {
		case models.SignalBullish:
			s.Bullish++
		case models.SignalBearish:
			s.Bearish++
		default:
			s.Neutral++
		}
		if r.Confidence >= 70 {
			s.HighConfidence++
		}
	}
	return s
}
