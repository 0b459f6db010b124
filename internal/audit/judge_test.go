package audit

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/risk"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/s0_data"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/strategyconfig"
)

// mapRunner serves prepared results and counts runs
type mapRunner struct {
	results map[string]*contracts.BacktestResult
	runs    map[string]int
}

func (m *mapRunner) RunPreset(ctx context.Context, name string) (*contracts.BacktestResult, error) {
	m.runs[name]++
	r, ok := m.results[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q", name)
	}
	return r, nil
}

// buildResult holds XLK fully from day one; XLK returns are strategy, SPY is noise
func buildResult(t *testing.T, name string, strategy func(i int) float64) *contracts.BacktestResult {
	t.Helper()
	n := 90
	dates := make([]time.Time, n)
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}

	cols := []string{"SPY", "XLK"}
	weights := contracts.NewFrame(dates, cols)
	returns := contracts.NewFrame(dates, cols)
	portfolio := make([]float64, n)
	for i := range dates {
		weights.Values[i] = []float64{0, 1}
		spy := 0.02 * math.Sin(float64(i))
		if i == 0 {
			spy = 0
		}
		returns.Values[i] = []float64{spy, strategy(i)}
		portfolio[i] = strategy(i)
	}
	require.NoError(t, returns.AddColumn(contracts.PortfolioColumn, portfolio))

	report, err := NewAnalyzer(nil).Analyze(dates, portfolio)
	require.NoError(t, err)

	return &contracts.BacktestResult{
		Preset:         name,
		EngineName:     "fixed",
		Exclude:        "SPY",
		StartDate:      dates[0],
		EndDate:        dates[n-1],
		Weights:        weights,
		Returns:        returns,
		Report:         report,
		RebalanceCount: 1,
	}
}

func steady(i int) float64 {
	if i == 0 {
		return 0
	}
	return 0.002 + 0.001*math.Cos(float64(i))
}

func newTestJudge(t *testing.T, results ...*contracts.BacktestResult) (*Judge, *mapRunner, *bytes.Buffer) {
	t.Helper()
	runner := &mapRunner{results: map[string]*contracts.BacktestResult{}, runs: map[string]int{}}
	for _, r := range results {
		runner.results[r.Preset] = r
	}
	var out bytes.Buffer
	return NewJudge(runner, NewAnalyzer(nil), strategyconfig.Default(), &out, nil), runner, &out
}

func TestJudge_ScoreAll(t *testing.T) {
	judge, runner, _ := newTestJudge(t,
		buildResult(t, "momentum", steady),
		buildResult(t, "momentum_full", steady),
	)

	score, err := judge.Score(context.Background(), []string{AllPresets})
	require.NoError(t, err)

	require.Len(t, score.Outcomes, 2)
	assert.Equal(t, 30, score.Points)
	assert.Equal(t, 30, score.MaxPoints)
	for _, o := range score.Outcomes {
		assert.True(t, o.Passed, o.Preset)
		assert.Greater(t, o.Sharpe, o.BenchmarkSharpe)
		assert.Len(t, o.Checks, 3, "no reference dir configured")
		assert.Equal(t, "healthy", o.Checks[2].Name)
		assert.True(t, o.Checks[2].Passed, o.Checks[2].Detail)
	}
	assert.Equal(t, 1, runner.runs["momentum"])
}

func TestJudge_HealthyIsAdvisory(t *testing.T) {
	result := buildResult(t, "momentum", steady)
	result.Report.MaxDrawdown = -0.45
	judge, _, _ := newTestJudge(t, result)

	score, err := judge.Score(context.Background(), []string{"momentum"})
	require.NoError(t, err)

	o := score.Outcomes[0]
	healthy := o.Checks[len(o.Checks)-1]
	assert.Equal(t, "healthy", healthy.Name)
	assert.True(t, healthy.Advisory)
	assert.False(t, healthy.Passed)
	assert.Contains(t, healthy.Detail, "-45.00%")
	assert.True(t, o.Passed, "advisory checks do not fail the preset")
	assert.Equal(t, 15, o.Points)

	var out bytes.Buffer
	RenderScore(&out, score)
	assert.Contains(t, out.String(), "! healthy:")
}

func TestJudge_ScoreFailsBelowBenchmark(t *testing.T) {
	tracking := buildResult(t, "momentum", func(i int) float64 {
		if i == 0 {
			return 0
		}
		return 0.02 * math.Sin(float64(i))
	})
	judge, _, _ := newTestJudge(t, tracking)

	score, err := judge.Score(context.Background(), []string{"momentum"})
	require.NoError(t, err)

	o := score.Outcomes[0]
	assert.False(t, o.Passed)
	assert.Equal(t, 0, o.Points)
	assert.Equal(t, 15, score.MaxPoints)
	assert.Equal(t, o.Sharpe, o.BenchmarkSharpe, "portfolio equals the benchmark")
	assert.False(t, o.Checks[1].Passed)
}

func TestJudge_ReferenceChecks(t *testing.T) {
	result := buildResult(t, "momentum", steady)
	judge, _, _ := newTestJudge(t, result)

	dir := t.TempDir()
	judge.cfg.Grading.ReferenceDir = dir
	require.NoError(t, s0_data.WriteCSVFile(ReferencePath(dir, "momentum", "weights"), result.Weights))

	score, err := judge.Score(context.Background(), []string{"momentum"})
	require.NoError(t, err)
	o := score.Outcomes[0]
	require.Len(t, o.Checks, 5)
	assert.True(t, o.Checks[2].Passed, o.Checks[2].Detail)
	assert.True(t, o.Checks[3].Skipped)
	assert.True(t, o.Passed)

	wrong := result.Returns.Clone()
	wrong.Values[10][2] += 0.01
	require.NoError(t, s0_data.WriteCSVFile(ReferencePath(dir, "momentum", "returns"), wrong))

	score, err = judge.Score(context.Background(), []string{"momentum"})
	require.NoError(t, err)
	assert.False(t, score.Outcomes[0].Checks[3].Passed)
	assert.False(t, score.Outcomes[0].Passed)
}

func TestJudge_RunRendersEveryAction(t *testing.T) {
	judge, runner, out := newTestJudge(t, buildResult(t, "momentum", steady))

	args := Args{
		Score:       []string{"momentum"},
		Allocation:  []string{"momentum"},
		Performance: []string{"momentum"},
		Report:      []string{"momentum"},
		Cumulative:  []string{"momentum"},
	}
	assert.False(t, args.Empty())

	score, err := judge.Run(context.Background(), args)
	require.NoError(t, err)
	require.NotNil(t, score)

	text := out.String()
	for _, header := range []string{
		"=== Score ===",
		"=== Allocation: momentum",
		"=== Performance: momentum vs spy",
		"=== Report: momentum",
		"=== Cumulative: momentum",
		"Total: 15 / 15",
		"2019-03-31",
		"Parametric VaR 95% (1d)",
	} {
		assert.Contains(t, text, header)
	}
	assert.Equal(t, 5, runner.runs["momentum"])
}

func TestRenderReport_ParametricTail(t *testing.T) {
	result := buildResult(t, "momentum", func(i int) float64 {
		return 0.01 * math.Sin(float64(i))
	})
	normal, err := risk.ParametricVaR(result.Portfolio(), risk.DefaultConfidence)
	require.NoError(t, err)
	require.Greater(t, normal.VaR, 0.0)

	var out bytes.Buffer
	require.NoError(t, RenderReport(&out, result))
	assert.Contains(t, out.String(), fmt.Sprintf("%.2f%%", normal.VaR*100))
	assert.Contains(t, out.String(), fmt.Sprintf("%.2f%%", normal.CVaR*100))
}

func TestJudge_UnknownPreset(t *testing.T) {
	judge, _, _ := newTestJudge(t)
	_, err := judge.Run(context.Background(), Args{Report: []string{"nope"}})
	assert.ErrorContains(t, err, "unknown preset")

	assert.True(t, Args{}.Empty())
}

func TestCompareFrames(t *testing.T) {
	dates := []time.Time{
		time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2019, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	got := contracts.NewFrame(dates, []string{"A", "B"})
	got.Values = [][]float64{{1, math.NaN()}, {2, 3}}

	want := contracts.NewFrame(dates[1:], []string{"B"})
	want.Values = [][]float64{{3.5}}
	diff, err := CompareFrames(got, want)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, diff, 1e-12)

	want = contracts.NewFrame(dates[:1], []string{"B"})
	diff, err = CompareFrames(got, want)
	require.NoError(t, err)
	assert.Equal(t, 0.0, diff, "NaN matches NaN")

	want.Values[0][0] = 1
	diff, _ = CompareFrames(got, want)
	assert.True(t, math.IsInf(diff, 1))

	_, err = CompareFrames(got, contracts.NewFrame(dates, []string{"C"}))
	assert.ErrorIs(t, err, contracts.ErrUnknownColumn)

	late := contracts.NewFrame([]time.Time{dates[1].AddDate(0, 0, 1)}, []string{"A"})
	_, err = CompareFrames(got, late)
	assert.ErrorIs(t, err, contracts.ErrShapeMismatch)
}
