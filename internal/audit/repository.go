package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
)

// Repository handles performance report persistence
// ⭐ SSOT: S3 성과 리포트 저장/조회
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new audit repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SavePerformanceReport appends a report for preset. runID may be empty.
// The cumulative curve is not stored; it is recomputed from returns.
func (r *Repository) SavePerformanceReport(ctx context.Context, preset, runID string, report *contracts.PerformanceReport) error {
	stored := *report
	stored.Cumulative = nil

	reportData, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	var run *string
	if runID != "" {
		run = &runID
	}

	query := `
		INSERT INTO audit.performance_reports (
			preset, run_id, period_start, period_end,
			total_return, sharpe_ratio, max_drawdown, report_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.pool.Exec(ctx, query,
		preset, run, report.StartDate, report.EndDate,
		report.TotalReturn, report.Sharpe, report.MaxDrawdown, reportData,
	)
	if err != nil {
		return fmt.Errorf("failed to save performance report: %w", err)
	}

	return nil
}

// GetLatestReport retrieves the most recent report of preset
func (r *Repository) GetLatestReport(ctx context.Context, preset string) (*contracts.PerformanceReport, error) {
	query := `
		SELECT report_data
		FROM audit.performance_reports
		WHERE preset = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var reportDataJSON []byte
	err := r.pool.QueryRow(ctx, query, preset).Scan(&reportDataJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("no performance report found for preset %s", preset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get performance report: %w", err)
	}

	var report contracts.PerformanceReport
	if err := json.Unmarshal(reportDataJSON, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}
