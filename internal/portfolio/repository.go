package portfolio

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/strategyconfig"
)

// Repository handles weights persistence
// ⭐ SSOT: 비중 테이블 저장/조회는 여기서만
//
// Schema:
//
//	portfolio.weights (preset, trade_date, ticker, weight, PRIMARY KEY (preset, trade_date, ticker))
//	portfolio.run_snapshots (run_id, preset, config_hash, strategy_id, config_yaml, data_rows, created_at)
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new portfolio repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveWeights replaces the stored weights of a preset with the given table.
// Only non-zero cells are written; missing cells read back as zero.
func (r *Repository) SaveWeights(ctx context.Context, preset string, weights *contracts.Frame) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM portfolio.weights WHERE preset = $1", preset); err != nil {
		return fmt.Errorf("failed to delete old weights: %w", err)
	}

	query := `
		INSERT INTO portfolio.weights (preset, trade_date, ticker, weight)
		VALUES ($1, $2, $3, $4)
	`

	batch := &pgx.Batch{}
	for i, date := range weights.Dates {
		for j, ticker := range weights.Columns {
			w := weights.Values[i][j]
			if w == 0 || math.IsNaN(w) {
				continue
			}
			batch.Queue(query, preset, date, ticker, w)
		}
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert weights: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetWeights loads a preset's weights over dates × tickers
func (r *Repository) GetWeights(ctx context.Context, preset string, dates []time.Time, tickers []string) (*contracts.Frame, error) {
	if len(dates) == 0 {
		return nil, contracts.ErrEmptyFrame
	}

	query := `
		SELECT trade_date, ticker, weight
		FROM portfolio.weights
		WHERE preset = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, preset, dates[0], dates[len(dates)-1])
	if err != nil {
		return nil, fmt.Errorf("failed to query weights: %w", err)
	}
	defer rows.Close()

	weights := contracts.NewFrame(dates, tickers).FillNA(0)
	for rows.Next() {
		var (
			date   time.Time
			ticker string
			w      float64
		)
		if err := rows.Scan(&date, &ticker, &w); err != nil {
			return nil, err
		}
		i := weights.IndexOf(contracts.NormalizeDate(date))
		j := weights.ColumnIndex(ticker)
		if i < 0 || j < 0 {
			continue
		}
		weights.Values[i][j] = w
	}

	return weights, rows.Err()
}

// SaveRunSnapshot records the configuration a preset was computed with
func (r *Repository) SaveRunSnapshot(ctx context.Context, snap *strategyconfig.RunSnapshot) error {
	query := `
		INSERT INTO portfolio.run_snapshots (
			run_id, preset, config_hash, strategy_id, config_yaml, data_rows, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		snap.RunID, snap.Preset, snap.ConfigHash, snap.StrategyID, snap.ConfigYAML, snap.DataRows, snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run snapshot: %w", err)
	}
	return nil
}
