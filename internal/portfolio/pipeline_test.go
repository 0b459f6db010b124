package portfolio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/strategyconfig"
)

// countingEngine wraps an engine and counts CalculateWeights calls
type countingEngine struct {
	contracts.WeightEngine
	calls int
}

func (c *countingEngine) CalculateWeights(prices *contracts.Frame, exclude string) (*contracts.Frame, error) {
	c.calls++
	return c.WeightEngine.CalculateWeights(prices, exclude)
}

// fixedEngine returns a prepared weights table
type fixedEngine struct {
	weights *contracts.Frame
}

func (f *fixedEngine) Name() string { return "fixed" }

func (f *fixedEngine) CalculateWeights(*contracts.Frame, string) (*contracts.Frame, error) {
	return f.weights.Clone(), nil
}

func TestAggregate(t *testing.T) {
	dates := tradingDays(3)
	cols := []string{"SPY", "A", "B"}

	returns := contracts.NewFrame(dates, cols)
	returns.Values = [][]float64{
		{0, 0, 0},
		{0.01, 0.02, -0.01},
		{-0.02, 0.03, 0.01},
	}
	weights := contracts.NewFrame(dates, cols)
	weights.Values = [][]float64{
		{0, 0, 0},
		{0, 0.5, 0.5},
		{0, 0.25, 0.75},
	}

	out, err := Aggregate(returns, weights, "SPY")
	require.NoError(t, err)

	assert.Equal(t, []string{"SPY", "A", "B", PortfolioColumn}, out.Columns)
	portfolio, err := out.Column(PortfolioColumn)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, portfolio[0], 1e-15)
	assert.InDelta(t, 0.005, portfolio[1], 1e-15)
	assert.InDelta(t, 0.015, portfolio[2], 1e-15, "excluded column return is ignored")

	assert.Equal(t, 3, returns.NCols(), "input untouched")
}

func TestAggregate_PropagatesNaN(t *testing.T) {
	dates := tradingDays(2)
	cols := []string{"A", "B"}
	returns := contracts.NewFrame(dates, cols)
	returns.Values = [][]float64{{0, 0}, {math.NaN(), 0.01}}
	weights := contracts.NewFrame(dates, cols)
	weights.Values = [][]float64{{0, 0}, {0.5, 0.5}}

	out, err := Aggregate(returns, weights, "")
	require.NoError(t, err)
	portfolio, _ := out.Column(PortfolioColumn)
	assert.True(t, math.IsNaN(portfolio[1]))
}

func TestAggregate_ShapeMismatch(t *testing.T) {
	returns := contracts.NewFrame(tradingDays(3), []string{"A", "B"})
	_, err := Aggregate(returns, contracts.NewFrame(tradingDays(2), []string{"A", "B"}), "")
	assert.ErrorIs(t, err, contracts.ErrShapeMismatch)

	_, err = Aggregate(returns, contracts.NewFrame(tradingDays(3), []string{"B", "A"}), "")
	assert.ErrorIs(t, err, contracts.ErrShapeMismatch)
}

func TestPipeline_RoundTrip(t *testing.T) {
	cols := []string{"SPY", "A", "B", "C"}
	drift := []float64{0.005, 0.02, 0.01, -0.01}
	prices := pricesFromReturns(cols, 170, func(col, row int) float64 {
		if col == 0 {
			return drift[0] * math.Sin(float64(row))
		}
		return alternating(drift[col], row) - 0.002*math.Cos(float64(row*col))
	})

	engine := &countingEngine{WeightEngine: NewMomentumEngine(DefaultMomentumConfig(), nil)}
	p := NewPipeline(engine, prices, "SPY", nil)

	weights, returns, err := p.Results()
	require.NoError(t, err)
	require.Equal(t, weights.NRows(), returns.NRows())

	portfolio, err := returns.Column(PortfolioColumn)
	require.NoError(t, err)

	for i := range weights.Values {
		var sum float64
		for j, name := range weights.Columns {
			if name == "SPY" {
				continue
			}
			sum += returns.Values[i][j] * weights.Values[i][j]
		}
		assert.Equal(t, sum, portfolio[i], "row %d", i)
		assert.False(t, math.IsNaN(portfolio[i]))
	}

	// 메모이제이션: 엔진은 한 번만 실행
	_, err = p.Weights()
	require.NoError(t, err)
	_, err = p.Returns()
	require.NoError(t, err)
	assert.Equal(t, 1, engine.calls)
}

func TestPipeline_ReturnsClones(t *testing.T) {
	prices := pricesFromReturns([]string{"SPY", "A"}, 5, func(int, int) float64 { return 0.01 })
	p := NewPipeline(NewBenchmarkEngine("A"), prices, "", nil)

	w1, err := p.Weights()
	require.NoError(t, err)
	w1.Values[0][1] = 42

	w2, err := p.Weights()
	require.NoError(t, err)
	assert.Equal(t, 1.0, w2.Values[0][1])

	prices.Values[1][1] = 0
	r, err := p.Returns()
	require.NoError(t, err)
	assert.InDelta(t, 0.01, r.Values[1][1], 1e-12, "pipeline owns its copy of prices")
}

func TestPipeline_RejectsInvalidWeights(t *testing.T) {
	prices := pricesFromReturns([]string{"SPY", "A", "B"}, 3, func(int, int) float64 { return 0 })
	bad := contracts.NewFrame(prices.Dates, prices.Columns).FillNA(0)
	bad.Values[1] = []float64{0, 0.7, 0.7}

	_, _, err := NewPipeline(&fixedEngine{weights: bad}, prices, "SPY", nil).Results()
	assert.ErrorIs(t, err, ErrConstraintViolation)
}

func TestBenchmarkEngine(t *testing.T) {
	prices := pricesFromReturns([]string{"SPY", "A"}, 4, func(col, row int) float64 { return 0.01 * float64(col+1) })

	p := NewPipeline(NewBenchmarkEngine("SPY"), prices, "", nil)
	_, returns, err := p.Results()
	require.NoError(t, err)

	portfolio, _ := returns.Column(PortfolioColumn)
	spy, _ := returns.Column("SPY")
	assert.Equal(t, spy, portfolio)

	_, err = NewBenchmarkEngine("SPY").CalculateWeights(prices, "SPY")
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = NewBenchmarkEngine("QQQ").CalculateWeights(prices, "")
	assert.ErrorIs(t, err, contracts.ErrUnknownColumn)
}

func TestConstraints_CheckRow(t *testing.T) {
	c := DefaultConstraints()

	tests := []struct {
		name  string
		row   []float64
		valid bool
	}{
		{"fully invested", []float64{0, 0.25, 0.75}, true},
		{"flat", []float64{0, 0, 0}, true},
		{"partial", []float64{0, 0.5, 0.2}, false},
		{"negative", []float64{0, 1.2, -0.2}, false},
		{"excluded holds weight", []float64{0.5, 0.5, 0}, false},
		{"nan", []float64{0, math.NaN(), 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.CheckRow(tt.row, 0)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrConstraintViolation)
			}
		})
	}

	limited := Constraints{Tolerance: 1e-9, MaxPositions: 1}
	assert.ErrorIs(t, limited.CheckRow([]float64{0, 0.5, 0.5}, 0), ErrConstraintViolation)
}

func TestNewEngine(t *testing.T) {
	cfg := strategyconfig.Default()

	for _, name := range cfg.PresetNames() {
		preset, _ := cfg.Preset(name)
		engine, err := NewEngine(cfg, preset, nil)
		require.NoError(t, err, name)
		assert.NotEmpty(t, engine.Name())
	}

	mv, _ := cfg.Preset("mv_gamma100")
	engine, err := NewEngine(cfg, mv, nil)
	require.NoError(t, err)
	assert.Equal(t, "mean_variance(gamma=100)", engine.Name())

	_, err = NewEngine(cfg, strategyconfig.Preset{Name: "x", Engine: "hrp"}, nil)
	assert.ErrorIs(t, err, ErrInvalidParams)

	cfg.MeanVariance.Solver = strategyconfig.SolverNelderMead
	solver, err := NewSolver(cfg.MeanVariance)
	require.NoError(t, err)
	assert.Equal(t, "nelder_mead_penalty", solver.Name())
}
