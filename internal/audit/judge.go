package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/strategyconfig"
	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/logger"
)

// AllPresets selects every graded preset in a --score list
const AllPresets = "all"

// Runner produces preset results; backtest.Runner implements it
type Runner interface {
	RunPreset(ctx context.Context, name string) (*contracts.BacktestResult, error)
}

// Args lists the presets each grading action applies to.
// Every field may repeat a preset; order is kept.
type Args struct {
	Score       []string
	Allocation  []string
	Performance []string
	Report      []string
	Cumulative  []string
}

// Empty reports whether no action was requested
func (a Args) Empty() bool {
	return len(a.Score)+len(a.Allocation)+len(a.Performance)+len(a.Report)+len(a.Cumulative) == 0
}

// Check is one pass/fail condition of a scored preset
type Check struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Skipped  bool   `json:"skipped"`
	// Advisory checks are reported but never fail the preset
	Advisory bool   `json:"advisory"`
	Detail   string `json:"detail"`
}

// Outcome is the grading of one preset
type Outcome struct {
	Preset          string  `json:"preset"`
	Sharpe          float64 `json:"sharpe"`
	BenchmarkSharpe float64 `json:"benchmark_sharpe"`
	Checks          []Check `json:"checks"`
	Passed          bool    `json:"passed"`
	Points          int     `json:"points"`
}

// Score sums the outcomes of a --score run
type Score struct {
	Outcomes  []Outcome `json:"outcomes"`
	Points    int       `json:"points"`
	MaxPoints int       `json:"max_points"`
}

// Judge grades preset results and renders tables
// ⭐ SSOT: 채점 로직은 여기서만
type Judge struct {
	runner  Runner
	auditor contracts.Auditor
	cfg     *strategyconfig.Config
	out     io.Writer
	logger  *logger.Logger
}

// NewJudge creates a judge writing its tables to out
func NewJudge(runner Runner, auditor contracts.Auditor, cfg *strategyconfig.Config, out io.Writer, log *logger.Logger) *Judge {
	if log == nil {
		log = logger.Nop()
	}
	return &Judge{
		runner:  runner,
		auditor: auditor,
		cfg:     cfg,
		out:     out,
		logger:  log.WithComponent("judge"),
	}
}

// Run executes the requested actions in a fixed order:
// score, allocation, performance, report, cumulative.
func (j *Judge) Run(ctx context.Context, args Args) (*Score, error) {
	var score *Score
	if len(args.Score) > 0 {
		var err error
		if score, err = j.Score(ctx, args.Score); err != nil {
			return nil, err
		}
		RenderScore(j.out, score)
	}

	actions := []struct {
		names  []string
		render func(*contracts.BacktestResult) error
	}{
		{args.Allocation, func(r *contracts.BacktestResult) error { return RenderAllocation(j.out, r) }},
		{args.Performance, j.renderPerformance},
		{args.Report, func(r *contracts.BacktestResult) error { return RenderReport(j.out, r) }},
		{args.Cumulative, func(r *contracts.BacktestResult) error { return RenderCumulative(j.out, r) }},
	}

	for _, action := range actions {
		for _, name := range action.names {
			result, err := j.runner.RunPreset(ctx, name)
			if err != nil {
				return score, err
			}
			if err := action.render(result); err != nil {
				return score, err
			}
		}
	}
	return score, nil
}

// Score grades the named presets; "all" expands to every graded preset
func (j *Judge) Score(ctx context.Context, names []string) (*Score, error) {
	score := &Score{}
	for _, name := range j.expand(names) {
		outcome, err := j.grade(ctx, name)
		if err != nil {
			return nil, err
		}
		score.Outcomes = append(score.Outcomes, *outcome)
		score.Points += outcome.Points
		score.MaxPoints += j.cfg.Grading.PointsPerTest
	}

	j.logger.WithFields(map[string]interface{}{
		"presets":    len(score.Outcomes),
		"points":     score.Points,
		"max_points": score.MaxPoints,
	}).Info("Grading completed")
	return score, nil
}

func (j *Judge) expand(names []string) []string {
	var out []string
	for _, name := range names {
		if name != AllPresets {
			out = append(out, name)
			continue
		}
		for _, p := range j.cfg.Presets {
			if p.Graded {
				out = append(out, p.Name)
			}
		}
	}
	return out
}

// grade checks one preset against the Sharpe floor, the buy-and-hold
// benchmark over the same dates and, when stored, the reference tables.
// The advisory healthy check is reported last.
func (j *Judge) grade(ctx context.Context, name string) (*Outcome, error) {
	result, err := j.runner.RunPreset(ctx, name)
	if err != nil {
		return nil, err
	}
	bench, err := j.benchmarkReport(result)
	if err != nil {
		return nil, err
	}

	g := j.cfg.Grading
	outcome := &Outcome{
		Preset:          name,
		Sharpe:          result.Report.Sharpe,
		BenchmarkSharpe: bench.Sharpe,
	}

	outcome.Checks = append(outcome.Checks,
		Check{
			Name:   "min_sharpe",
			Passed: result.Report.Sharpe >= g.MinSharpe,
			Detail: fmt.Sprintf("sharpe %.4f, required %.4f", result.Report.Sharpe, g.MinSharpe),
		},
		Check{
			Name:   "beats_benchmark",
			Passed: result.Report.Outperforms(bench),
			Detail: fmt.Sprintf("sharpe %.4f vs %s %.4f", result.Report.Sharpe, j.cfg.Universe.Exclude, bench.Sharpe),
		},
	)

	if g.ReferenceDir != "" {
		outcome.Checks = append(outcome.Checks,
			j.referenceCheck(name, "weights", result.Weights),
			j.referenceCheck(name, "returns", result.Returns),
		)
	}

	health := fmt.Sprintf("sharpe %.4f (>1.0), max drawdown %.2f%% (>-30%%)",
		result.Report.Sharpe, result.Report.MaxDrawdown*100)
	outcome.Checks = append(outcome.Checks, Check{
		Name:     "healthy",
		Passed:   result.Report.IsHealthy(),
		Advisory: true,
		Detail:   health,
	})

	outcome.Passed = !slices.ContainsFunc(outcome.Checks, func(c Check) bool { return !c.Passed && !c.Skipped && !c.Advisory })
	if outcome.Passed {
		outcome.Points = g.PointsPerTest
	}

	j.logger.WithFields(map[string]interface{}{
		"preset":           name,
		"sharpe":           outcome.Sharpe,
		"benchmark_sharpe": outcome.BenchmarkSharpe,
		"passed":           outcome.Passed,
	}).Info("Preset graded")
	return outcome, nil
}

// benchmarkReport analyzes buy-and-hold of the excluded column over the result's dates
func (j *Judge) benchmarkReport(result *contracts.BacktestResult) (*contracts.PerformanceReport, error) {
	series, err := result.Returns.Column(j.cfg.Universe.Exclude)
	if err != nil {
		return nil, fmt.Errorf("benchmark: %w", err)
	}
	return j.auditor.Analyze(result.Returns.Dates, series)
}

func (j *Judge) referenceCheck(preset, kind string, got *contracts.Frame) Check {
	check := Check{Name: "reference_" + kind}

	want, err := LoadReference(j.cfg.Grading.ReferenceDir, preset, kind)
	if errors.Is(err, ErrNoReference) {
		check.Skipped = true
		check.Detail = "no reference stored"
		return check
	}
	if err != nil {
		check.Detail = err.Error()
		return check
	}

	diff, err := CompareFrames(got, want)
	if err != nil {
		check.Detail = err.Error()
		return check
	}
	check.Passed = diff <= j.cfg.Grading.Tolerance
	check.Detail = fmt.Sprintf("max diff %.3g, tolerance %.3g", diff, j.cfg.Grading.Tolerance)
	return check
}

// renderPerformance prints the preset next to its benchmark preset
func (j *Judge) renderPerformance(result *contracts.BacktestResult) error {
	bench, err := j.benchmarkReport(result)
	if err != nil {
		return err
	}
	return RenderPerformance(j.out, result, j.cfg.Grading.Benchmark, bench)
}
