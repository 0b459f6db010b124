package portfolio

import (
	"fmt"
	"math"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/optimization"
	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/logger"
)

// MeanVarianceConfig defines the rolling optimization parameters
type MeanVarianceConfig struct {
	Lookback int     // 추정 윈도우 (현재 행 제외)
	Gamma    float64 // 위험회피 계수
}

// DefaultMeanVarianceConfig returns lookback 50, gamma 0
func DefaultMeanVarianceConfig() MeanVarianceConfig {
	return MeanVarianceConfig{Lookback: 50, Gamma: 0}
}

// MeanVarianceEngine re-optimizes every day past the warm-up
// ⭐ SSOT: 평균-분산 비중 계산은 여기서만
type MeanVarianceEngine struct {
	config MeanVarianceConfig
	solver optimization.Solver
	logger *logger.Logger
}

// NewMeanVarianceEngine creates a mean-variance engine
func NewMeanVarianceEngine(config MeanVarianceConfig, solver optimization.Solver, log *logger.Logger) *MeanVarianceEngine {
	if log == nil {
		log = logger.Nop()
	}
	return &MeanVarianceEngine{
		config: config,
		solver: solver,
		logger: log.WithComponent("mean_variance"),
	}
}

// Name returns the engine identifier
func (e *MeanVarianceEngine) Name() string {
	return fmt.Sprintf("mean_variance(gamma=%g)", e.config.Gamma)
}

// CalculateWeights solves one long-only QP per row. Rows whose solve does
// not end optimal or suboptimal keep the previous allocation.
func (e *MeanVarianceEngine) CalculateWeights(prices *contracts.Frame, exclude string) (*contracts.Frame, error) {
	cfg := e.config
	if cfg.Lookback < 2 {
		return nil, fmt.Errorf("%w: lookback must be >= 2, got %d", ErrInvalidParams, cfg.Lookback)
	}
	if cfg.Gamma < 0 || math.IsNaN(cfg.Gamma) || math.IsInf(cfg.Gamma, 0) {
		return nil, fmt.Errorf("%w: gamma must be finite and >= 0", ErrInvalidParams)
	}
	if e.solver == nil {
		return nil, fmt.Errorf("%w: no solver", ErrInvalidParams)
	}
	if err := prices.Validate(); err != nil {
		return nil, fmt.Errorf("mean-variance weights: %w", err)
	}

	returns := prices.PctChange()
	assets := assetColumns(prices, exclude)
	weights := contracts.NewFrame(prices.Dates, prices.Columns)

	if len(assets) == 0 {
		return weights.FillNA(0), nil
	}

	window := make([][]float64, cfg.Lookback)
	for k := range window {
		window[k] = make([]float64, len(assets))
	}

	solved, skipped := 0, 0
	for i := cfg.Lookback + 1; i < prices.NRows(); i++ {
		for k := 0; k < cfg.Lookback; k++ {
			src := returns.Values[i-cfg.Lookback+k]
			for a, j := range assets {
				window[k][a] = src[j]
			}
		}

		w, status, err := e.solveDay(window)
		if err != nil || !status.Usable() {
			skipped++
			log := e.logger.WithFields(map[string]interface{}{
				"date":   prices.Dates[i].Format(contracts.DateLayout),
				"status": status.String(),
			})
			if err != nil {
				log = log.WithError(err)
			}
			log.Warn("Optimization not usable, keeping previous weights")
			continue
		}

		row := make([]float64, prices.NCols())
		for a, j := range assets {
			row[j] = w[a]
		}
		if err := weights.SetRow(i, row); err != nil {
			return nil, err
		}
		solved++
	}

	weights.FFill().FillNA(0)

	e.logger.WithFields(map[string]interface{}{
		"solver":  e.solver.Name(),
		"gamma":   cfg.Gamma,
		"solved":  solved,
		"skipped": skipped,
	}).Info("Mean-variance weights calculated")

	return weights, nil
}

// solveDay estimates μ and Σ and runs one solver session.
// The session is released before returning.
func (e *MeanVarianceEngine) solveDay(window [][]float64) ([]float64, optimization.Status, error) {
	mu, sigma, err := optimization.MeanCovariance(window)
	if err != nil {
		return nil, optimization.StatusNumericError, err
	}

	session, err := e.solver.NewSession()
	if err != nil {
		return nil, optimization.StatusNumericError, fmt.Errorf("open solver session: %w", err)
	}
	defer session.Close()

	result, err := session.Solve(mu, sigma, e.config.Gamma)
	if err != nil {
		return nil, result.Status, err
	}
	return result.Weights, result.Status, nil
}
