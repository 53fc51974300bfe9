package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	pkgch "StockPulse/pkg/clickhouse"
	applogger "StockPulse/pkg/logger"
)

// CHPredictionStore implements PredictionStore backed by ClickHouse.
// Records are append-only facts; reads serve the API layer.
type CHPredictionStore struct {
	db *sql.DB
	ch *pkgch.Client
	l  *applogger.Logger
}

func NewCHPredictionStore(ch *pkgch.Client) *CHPredictionStore {
	return &CHPredictionStore{db: ch.DB(), ch: ch}
}

// SetLogger injects a structured logger.
func (s *CHPredictionStore) SetLogger(l *applogger.Logger) { s.l = l }

var schemaStmts = []string{
	`CREATE TABLE IF NOT EXISTS signal_predictions (
        ticker               String,
        ts                   DateTime64(3, 'UTC'),
        current_price        Float64,
        signal_type          LowCardinality(String),
        confidence           Float64,
        reasons              String,
        screening_score      Float64,
        sector               LowCardinality(String),
        predicted_price_1h   Float64,
        predicted_price_1d   Float64,
        predicted_price_1w   Float64,
        volume               Int64,
        rsi                  Float64,
        macd                 Float64,
        bollinger_position   Float64,
        sentiment_score      Float64,
        sentiment_confidence Float64,
        sentiment_impact     LowCardinality(String),
        news_count           Int32
    ) ENGINE = MergeTree()
    PARTITION BY toYYYYMM(ts)
    ORDER BY (ticker, ts)`,
}

// Init ensures the predictions table exists. Idempotent.
func (s *CHPredictionStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, schemaStmts)
}

const insertQ = `
    INSERT INTO signal_predictions (
        ticker, ts, current_price, signal_type, confidence, reasons,
        screening_score, sector, predicted_price_1h, predicted_price_1d,
        predicted_price_1w, volume, rsi, macd, bollinger_position,
        sentiment_score, sentiment_confidence, sentiment_impact, news_count
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (s *CHPredictionStore) Append(ctx context.Context, rec *models.PredictionRecord) error {
	start := time.Now()
	reasons, err := json.Marshal(rec.Reasons)
	if err != nil {
		return fmt.Errorf("marshal reasons: %w", err)
	}
	_, err = s.db.ExecContext(ctx, insertQ,
		rec.Ticker, rec.Timestamp, rec.CurrentPrice, string(rec.SignalType),
		rec.Confidence, string(reasons), rec.ScreeningScore, rec.Sector,
		rec.PredictedPrice1H, rec.PredictedPrice1D, rec.PredictedPrice1W,
		rec.Volume, rec.RSI, rec.MACD, rec.BollingerPosition,
		rec.SentimentScore, rec.SentimentConfidence, string(rec.SentimentImpact),
		int32(rec.NewsCount),
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse append prediction error",
				applogger.String("ticker", rec.Ticker),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("append prediction: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse append prediction ok",
			applogger.String("ticker", rec.Ticker),
			applogger.String("signal", string(rec.SignalType)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

const selectCols = `
    ticker, ts, current_price, signal_type, confidence, reasons,
    screening_score, sector, predicted_price_1h, predicted_price_1d,
    predicted_price_1w, volume, rsi, macd, bollinger_position,
    sentiment_score, sentiment_confidence, sentiment_impact, news_count
`

// Latest returns the most recent record per ticker. An empty ticker returns
// the newest record for every ticker, up to limit.
func (s *CHPredictionStore) Latest(ctx context.Context, ticker string, limit int) ([]models.PredictionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var (
		rows *sql.Rows
		err  error
	)
	if ticker != "" {
		q := `SELECT ` + selectCols + `
            FROM signal_predictions
            WHERE ticker = ?
            ORDER BY ts DESC
            LIMIT ?`
		rows, err = s.db.QueryContext(ctx, q, ticker, limit)
	} else {
		q := `SELECT ` + selectCols + `
            FROM signal_predictions
            ORDER BY ts DESC
            LIMIT 1 BY ticker
            LIMIT ?`
		rows, err = s.db.QueryContext(ctx, q, limit)
	}
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest predictions query error",
				applogger.String("ticker", ticker),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("latest predictions: %w", err)
	}
	defer rows.Close()
	return s.scanRecords(rows)
}

// History returns a ticker's records since the given time, newest first.
func (s *CHPredictionStore) History(ctx context.Context, ticker string, since time.Time, limit int) ([]models.PredictionRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `SELECT ` + selectCols + `
        FROM signal_predictions
        WHERE ticker = ? AND ts >= ?
        ORDER BY ts DESC
        LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, ticker, since, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse prediction history query error",
				applogger.String("ticker", ticker),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("prediction history: %w", err)
	}
	defer rows.Close()
	return s.scanRecords(rows)
}

// ActiveTickers lists tickers with at least one record in the last day.
func (s *CHPredictionStore) ActiveTickers(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 200
	}
	const q = `
        SELECT DISTINCT ticker
        FROM signal_predictions
        WHERE ts >= now() - INTERVAL 1 DAY
        ORDER BY ticker
        LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse active tickers query error", applogger.Error(err))
		}
		return nil, fmt.Errorf("active tickers: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0, limit)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *CHPredictionStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *CHPredictionStore) Close() error { return nil }

func (s *CHPredictionStore) scanRecords(rows *sql.Rows) ([]models.PredictionRecord, error) {
	out := make([]models.PredictionRecord, 0, 64)
	for rows.Next() {
		var (
			rec       models.PredictionRecord
			signal    string
			reasons   string
			impact    string
			newsCount int32
		)
		if err := rows.Scan(
			&rec.Ticker, &rec.Timestamp, &rec.CurrentPrice, &signal,
			&rec.Confidence, &reasons, &rec.ScreeningScore, &rec.Sector,
			&rec.PredictedPrice1H, &rec.PredictedPrice1D, &rec.PredictedPrice1W,
			&rec.Volume, &rec.RSI, &rec.MACD, &rec.BollingerPosition,
			&rec.SentimentScore, &rec.SentimentConfidence, &impact, &newsCount,
		); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse prediction scan error", applogger.Error(err))
			}
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		rec.SignalType = models.Direction(signal)
		rec.SentimentImpact = models.Impact(impact)
		rec.NewsCount = int(newsCount)
		if reasons != "" {
			if err := json.Unmarshal([]byte(reasons), &rec.Reasons); err != nil {
				rec.Reasons = []string{reasons}
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
