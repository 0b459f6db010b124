package backtest

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/portfolio"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/strategyconfig"
	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/logger"
)

// Engine runs one preset over a price table
// ⭐ SSOT: 백테스팅 실행은 여기서만
type Engine struct {
	cfg     *strategyconfig.Config
	auditor contracts.Auditor
	logger  *logger.Logger
}

// Result holds backtest results
type Result = contracts.BacktestResult

// NewEngine creates a new backtest engine
func NewEngine(cfg *strategyconfig.Config, auditor contracts.Auditor, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		cfg:     cfg,
		auditor: auditor,
		logger:  log.WithComponent("backtest"),
	}
}

// Run restricts prices to the preset's range, computes weights and
// portfolio returns, and analyzes the portfolio series.
func (e *Engine) Run(ctx context.Context, preset strategyconfig.Preset, prices *contracts.Frame) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	startTime := time.Now()

	from, to, err := e.cfg.RangeFor(preset).Bounds()
	if err != nil {
		return nil, fmt.Errorf("preset %s range: %w", preset.Name, err)
	}
	window := prices.Slice(from, to)
	if window.NRows() == 0 {
		return nil, fmt.Errorf("preset %s: %w in %s to %s", preset.Name, contracts.ErrEmptyFrame,
			from.Format(contracts.DateLayout), to.Format(contracts.DateLayout))
	}

	engine, err := portfolio.NewEngine(e.cfg, preset, e.logger)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", preset.Name, err)
	}

	// 벤치마크는 제외 컬럼 자체를 보유하므로 제외 없이 실행
	exclude := e.cfg.Universe.Exclude
	if preset.Engine == strategyconfig.EngineBenchmark {
		exclude = ""
	}

	pipeline := portfolio.NewPipeline(engine, window, exclude, e.logger)
	weights, returns, err := pipeline.Results()
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", preset.Name, err)
	}

	result := &Result{
		Preset:         preset.Name,
		Range:          preset.Range,
		EngineName:     engine.Name(),
		Exclude:        exclude,
		StartDate:      window.Dates[0],
		EndDate:        window.Dates[window.NRows()-1],
		Weights:        weights,
		Returns:        returns,
		RebalanceCount: countRebalances(weights),
	}

	result.Report, err = e.auditor.Analyze(returns.Dates, result.Portfolio())
	if err != nil {
		return nil, fmt.Errorf("preset %s: analyze: %w", preset.Name, err)
	}
	result.Duration = time.Since(startTime)

	e.logger.WithFields(map[string]interface{}{
		"preset":       preset.Name,
		"engine":       result.EngineName,
		"rows":         weights.NRows(),
		"rebalances":   result.RebalanceCount,
		"total_return": result.Report.TotalReturn,
		"sharpe":       result.Report.Sharpe,
		"duration":     result.Duration,
	}).Info("Backtest completed")

	return result, nil
}

// countRebalances counts rows whose allocation differs from the previous row
func countRebalances(weights *contracts.Frame) int {
	count := 0
	prev := make([]float64, weights.NCols())
	for _, row := range weights.Values {
		if !slices.Equal(row, prev) {
			count++
		}
		prev = row
	}
	return count
}
