package portfolio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/optimization"
)

// scriptedSolver returns a scripted status per call and puts all weight
// on asset (call % n) unless fixed is set. It records every mean vector it receives.
type scriptedSolver struct {
	statuses []optimization.Status
	fixed    []float64
	calls    int
	opened   int
	closed   int
	means    [][]float64
}

func (s *scriptedSolver) Name() string { return "scripted" }

func (s *scriptedSolver) NewSession() (optimization.Session, error) {
	s.opened++
	return &scriptedSession{solver: s}, nil
}

type scriptedSession struct {
	solver *scriptedSolver
}

func (s *scriptedSession) Solve(mu []float64, sigma mat.Symmetric, gamma float64) (optimization.Result, error) {
	sv := s.solver
	if sv.opened-sv.closed != 1 {
		return optimization.Result{}, errors.New("previous session not closed")
	}
	sv.means = append(sv.means, append([]float64(nil), mu...))

	status := optimization.StatusOptimal
	if sv.calls < len(sv.statuses) {
		status = sv.statuses[sv.calls]
	}
	w := make([]float64, len(mu))
	w[sv.calls%len(mu)] = 1
	if sv.fixed != nil {
		w = append([]float64(nil), sv.fixed...)
	}
	sv.calls++
	return optimization.Result{Weights: w, Status: status}, nil
}

func (s *scriptedSession) Close() error {
	s.solver.closed++
	return nil
}

func TestMeanVarianceEngine_SkipsUnusableSolves(t *testing.T) {
	cols := []string{"SPY", "A", "B", "C"}
	prices := pricesFromReturns(cols, 10, func(col, row int) float64 {
		return 0.01 * float64(row) * float64(col)
	})

	solver := &scriptedSolver{statuses: []optimization.Status{
		optimization.StatusOptimal,      // row 4 → A
		optimization.StatusInfeasible,   // row 5 skipped
		optimization.StatusSuboptimal,   // row 6 → C
		optimization.StatusNumericError, // row 7 skipped
		optimization.StatusOptimal,      // row 8 → B
		optimization.StatusOptimal,      // row 9 → C
	}}

	engine := NewMeanVarianceEngine(MeanVarianceConfig{Lookback: 3, Gamma: 1}, solver, nil)
	weights, err := engine.CalculateWeights(prices, "SPY")
	require.NoError(t, err)

	want := [][]float64{
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 0, 1},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
	assert.Equal(t, want, weights.Values)

	assert.Equal(t, 6, solver.calls)
	assert.Equal(t, 6, solver.opened, "one session per day")
	assert.Equal(t, solver.opened, solver.closed, "every session released")
}

func TestMeanVarianceEngine_RecordsSolverWeights(t *testing.T) {
	cols := []string{"SPY", "A", "B"}
	prices := pricesFromReturns(cols, 5, func(col, row int) float64 {
		return 0.01 * float64(row) * float64(col)
	})

	// tiny negative weights within solver tolerance are kept as solved
	solver := &scriptedSolver{fixed: []float64{-1e-9, 1 + 1e-9}}
	weights, err := NewMeanVarianceEngine(MeanVarianceConfig{Lookback: 3}, solver, nil).CalculateWeights(prices, "SPY")
	require.NoError(t, err)

	assert.Equal(t, []float64{0, -1e-9, 1 + 1e-9}, weights.Values[4])
	assert.NoError(t, DefaultConstraints().Check(weights, "SPY"))
}

func TestMeanVarianceEngine_WindowExcludesCurrentRow(t *testing.T) {
	cols := []string{"SPY", "A"}
	// A의 수익률 = 0.01·row
	prices := pricesFromReturns(cols, 6, func(col, row int) float64 {
		return 0.01 * float64(row) * float64(col)
	})

	solver := &scriptedSolver{}
	_, err := NewMeanVarianceEngine(MeanVarianceConfig{Lookback: 3}, solver, nil).CalculateWeights(prices, "SPY")
	require.NoError(t, err)

	// row 4 uses return rows 1..3, row 5 uses 2..4
	require.Len(t, solver.means, 2)
	assert.InDelta(t, 0.02, solver.means[0][0], 1e-12)
	assert.InDelta(t, 0.03, solver.means[1][0], 1e-12)
}

func TestMeanVarianceEngine_ZeroGammaPicksMaxMean(t *testing.T) {
	cols := []string{"SPY", "A", "B", "C"}
	prices := pricesFromReturns(cols, 80, func(col, row int) float64 {
		wiggle := alternating(0.002, row) - 0.001
		switch col {
		case 1:
			return 0.001 + wiggle
		case 2:
			return 0.004 + 2*wiggle
		case 3:
			return -0.001 + wiggle
		}
		return 0.01
	})

	solver := optimization.NewQPSolver(optimization.DefaultQPConfig())
	weights, err := NewMeanVarianceEngine(MeanVarianceConfig{Lookback: 50, Gamma: 0}, solver, nil).
		CalculateWeights(prices, "SPY")
	require.NoError(t, err)

	for i := 0; i <= 50; i++ {
		assert.Equal(t, []float64{0, 0, 0, 0}, weights.Values[i], "warm-up row %d", i)
	}
	for i := 51; i < weights.NRows(); i++ {
		assert.Equal(t, []float64{0, 0, 1, 0}, weights.Values[i], "row %d", i)
	}
}

func TestMeanVarianceEngine_HighGammaIsFeasible(t *testing.T) {
	cols := []string{"SPY", "A", "B", "C"}
	prices := pricesFromReturns(cols, 90, func(col, row int) float64 {
		phase := float64((row*(col+2))%7) - 3
		return 0.001*float64(col) + 0.004*phase
	})

	solver := optimization.NewQPSolver(optimization.DefaultQPConfig())
	weights, err := NewMeanVarianceEngine(MeanVarianceConfig{Lookback: 50, Gamma: 100}, solver, nil).
		CalculateWeights(prices, "SPY")
	require.NoError(t, err)

	require.NoError(t, DefaultConstraints().Check(weights, "SPY"))
	for i := 51; i < weights.NRows(); i++ {
		var sum float64
		for _, w := range weights.Values[i] {
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "row %d", i)
	}
}

func TestMeanVarianceEngine_InvalidParams(t *testing.T) {
	prices := pricesFromReturns([]string{"A"}, 5, func(int, int) float64 { return 0 })

	_, err := NewMeanVarianceEngine(MeanVarianceConfig{Lookback: 1}, &scriptedSolver{}, nil).CalculateWeights(prices, "")
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = NewMeanVarianceEngine(MeanVarianceConfig{Lookback: 3, Gamma: -1}, &scriptedSolver{}, nil).CalculateWeights(prices, "")
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = NewMeanVarianceEngine(DefaultMeanVarianceConfig(), nil, nil).CalculateWeights(prices, "")
	assert.ErrorIs(t, err, ErrInvalidParams)
}
