package portfolio

import (
	"errors"
	"fmt"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/optimization"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/strategyconfig"
	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/logger"
)

// ErrInvalidParams is returned for engine parameters that cannot produce a window
var ErrInvalidParams = errors.New("invalid engine parameters")

// assetColumns returns the indices of every column except exclude
func assetColumns(f *contracts.Frame, exclude string) []int {
	cols := make([]int, 0, f.NCols())
	for j, name := range f.Columns {
		if name == exclude {
			continue
		}
		cols = append(cols, j)
	}
	return cols
}

// NewEngine builds the weight engine for a preset
// ⭐ SSOT: preset → 엔진 매핑은 여기서만
func NewEngine(cfg *strategyconfig.Config, preset strategyconfig.Preset, log *logger.Logger) (contracts.WeightEngine, error) {
	switch preset.Engine {
	case strategyconfig.EngineMomentum:
		return NewMomentumEngine(MomentumConfig{
			Lookback:        cfg.Momentum.Lookback,
			MinLookback:     cfg.Momentum.MinLookback,
			RebalancePeriod: cfg.Momentum.RebalancePeriod,
			TopK:            cfg.Momentum.TopK,
			VolFloor:        cfg.Momentum.VolFloor,
		}, log), nil

	case strategyconfig.EngineMeanVariance:
		solver, err := NewSolver(cfg.MeanVariance)
		if err != nil {
			return nil, err
		}
		return NewMeanVarianceEngine(MeanVarianceConfig{
			Lookback: cfg.MeanVariance.Lookback,
			Gamma:    preset.Gamma,
		}, solver, log), nil

	case strategyconfig.EngineBenchmark:
		return NewBenchmarkEngine(cfg.Universe.Exclude), nil

	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrInvalidParams, preset.Engine)
	}
}

// NewSolver builds the configured mean-variance solver
func NewSolver(mv strategyconfig.MeanVariance) (optimization.Solver, error) {
	switch mv.Solver {
	case "", strategyconfig.SolverProjectedGradient:
		return optimization.NewQPSolver(optimization.QPConfig{
			MaxIterations: mv.MaxIterations,
			Tolerance:     mv.Tolerance,
		}), nil
	case strategyconfig.SolverNelderMead:
		return optimization.NewPenaltySolver(), nil
	default:
		return nil, fmt.Errorf("%w: unknown solver %q", ErrInvalidParams, mv.Solver)
	}
}
