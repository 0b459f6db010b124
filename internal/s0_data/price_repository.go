package s0_data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
)

// PriceRepository stores adjusted closes in data.daily_prices
// ⭐ SSOT: 가격 데이터 저장소는 여기서만
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// Fetch implements contracts.PriceSource
func (r *PriceRepository) Fetch(ctx context.Context, ticker string, from, to time.Time) ([]contracts.PricePoint, error) {
	query := `
		SELECT trade_date, adj_close
		FROM data.daily_prices
		WHERE ticker = $1 AND trade_date >= $2 AND trade_date < $3
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, ticker, from, to)
	if err != nil {
		return nil, fmt.Errorf("query prices %s: %w", ticker, err)
	}
	defer rows.Close()

	var points []contracts.PricePoint
	for rows.Next() {
		var p contracts.PricePoint
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			return nil, err
		}
		p.Date = contracts.NormalizeDate(p.Date)
		points = append(points, p)
	}
	return points, rows.Err()
}

// SaveBatch upserts the points of one ticker
func (r *PriceRepository) SaveBatch(ctx context.Context, ticker string, points []contracts.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	query := `
		INSERT INTO data.daily_prices (ticker, trade_date, adj_close)
		VALUES ($1, $2, $3)
		ON CONFLICT (ticker, trade_date) DO UPDATE SET
			adj_close = EXCLUDED.adj_close,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, p := range points {
		batch.Queue(query, ticker, p.Date, p.Close)
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save prices %s: %w", ticker, err)
	}
	return nil
}

// LatestDate returns the most recent stored date of ticker, or the zero time
func (r *PriceRepository) LatestDate(ctx context.Context, ticker string) (time.Time, error) {
	query := `SELECT MAX(trade_date) FROM data.daily_prices WHERE ticker = $1`

	var latest *time.Time
	if err := r.pool.QueryRow(ctx, query, ticker).Scan(&latest); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	if latest == nil {
		return time.Time{}, nil
	}
	return contracts.NormalizeDate(*latest), nil
}

// Tickers lists the tickers that have at least one stored row
func (r *PriceRepository) Tickers(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT ticker FROM data.daily_prices ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}
