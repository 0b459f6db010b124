package quality

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
)

// Repository handles data quality snapshot persistence
// ⭐ SSOT: S0 품질 스냅샷 저장/조회
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new quality repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveSnapshot appends a data quality snapshot
func (r *Repository) SaveSnapshot(ctx context.Context, snapshot *contracts.DataQualitySnapshot) error {
	coverage, err := json.Marshal(snapshot.Coverage)
	if err != nil {
		return fmt.Errorf("marshal coverage: %w", err)
	}
	firstObserved, err := json.Marshal(snapshot.FirstObserved)
	if err != nil {
		return fmt.Errorf("marshal first observed: %w", err)
	}

	query := `
		INSERT INTO data.quality_snapshots (
			range_from, range_to, total_tickers, valid_tickers, empty_rows,
			quality_score, passed, coverage, first_observed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.pool.Exec(ctx, query,
		snapshot.From,
		snapshot.To,
		snapshot.TotalTickers,
		snapshot.ValidTickers,
		snapshot.EmptyRows,
		snapshot.QualityScore,
		snapshot.Passed,
		coverage,
		firstObserved,
	)
	if err != nil {
		return fmt.Errorf("save quality snapshot: %w", err)
	}

	return nil
}

// GetLatest retrieves the most recent quality snapshot
func (r *Repository) GetLatest(ctx context.Context) (*contracts.DataQualitySnapshot, error) {
	query := `
		SELECT
			range_from, range_to, total_tickers, valid_tickers, empty_rows,
			quality_score, passed, coverage, first_observed
		FROM data.quality_snapshots
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	snapshot := &contracts.DataQualitySnapshot{}
	var coverage, firstObserved []byte

	err := r.pool.QueryRow(ctx, query).Scan(
		&snapshot.From,
		&snapshot.To,
		&snapshot.TotalTickers,
		&snapshot.ValidTickers,
		&snapshot.EmptyRows,
		&snapshot.QualityScore,
		&snapshot.Passed,
		&coverage,
		&firstObserved,
	)
	if err != nil {
		return nil, fmt.Errorf("get latest quality snapshot: %w", err)
	}

	if err := json.Unmarshal(coverage, &snapshot.Coverage); err != nil {
		return nil, fmt.Errorf("unmarshal coverage: %w", err)
	}
	if err := json.Unmarshal(firstObserved, &snapshot.FirstObserved); err != nil {
		return nil, fmt.Errorf("unmarshal first observed: %w", err)
	}

	return snapshot, nil
}
