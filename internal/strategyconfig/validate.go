package strategyconfig

import (
	"errors"
	"fmt"
	"math"
	"regexp"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

var tickerPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-^]{0,9}$`)

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Universe ===
	if len(cfg.Universe.Tickers) == 0 {
		return ValidationError{"universe.tickers", "required"}
	}
	seen := make(map[string]bool, len(cfg.Universe.Tickers))
	for i, t := range cfg.Universe.Tickers {
		if err := validateTicker(t); err != nil {
			return ValidationError{fmt.Sprintf("universe.tickers[%d]", i), err.Error()}
		}
		if seen[t] {
			return ValidationError{fmt.Sprintf("universe.tickers[%d]", i), fmt.Sprintf("duplicate ticker %s", t)}
		}
		seen[t] = true
	}
	// exclude는 유니버스에 없어도 허용 (빈 문자열 = 제외 없음)
	if cfg.Universe.Exclude != "" {
		if err := validateTicker(cfg.Universe.Exclude); err != nil {
			return ValidationError{"universe.exclude", err.Error()}
		}
	}

	// === Ranges ===
	if err := validateRange(cfg.Ranges.Full, "ranges.full"); err != nil {
		return err
	}
	if err := validateRange(cfg.Ranges.Evaluation, "ranges.evaluation"); err != nil {
		return err
	}

	// === Momentum ===
	m := cfg.Momentum
	if m.Lookback < 2 {
		return ValidationError{"momentum.lookback", "must be >= 2"}
	}
	if m.MinLookback < m.Lookback-1 {
		// 윈도우 [i-lookback+1, i]가 음수 인덱스가 되면 안 됨
		return ValidationError{"momentum.min_lookback", fmt.Sprintf("must be >= lookback-1 (%d)", m.Lookback-1)}
	}
	if m.RebalancePeriod < 1 {
		return ValidationError{"momentum.rebalance_period", "must be >= 1"}
	}
	if m.TopK < 1 {
		return ValidationError{"momentum.top_k", "must be >= 1"}
	}
	if m.VolFloor <= 0 || math.IsNaN(m.VolFloor) {
		return ValidationError{"momentum.vol_floor", "must be > 0"}
	}

	// === MeanVariance ===
	mv := cfg.MeanVariance
	if mv.Lookback < 2 {
		return ValidationError{"mean_variance.lookback", "must be >= 2"}
	}
	if mv.Solver != SolverProjectedGradient && mv.Solver != SolverNelderMead {
		return ValidationError{"mean_variance.solver", fmt.Sprintf("must be %s or %s", SolverProjectedGradient, SolverNelderMead)}
	}
	if mv.MaxIterations < 0 {
		return ValidationError{"mean_variance.max_iterations", "must be >= 0"}
	}
	if mv.Tolerance < 0 {
		return ValidationError{"mean_variance.tolerance", "must be >= 0"}
	}

	// === Presets ===
	if len(cfg.Presets) == 0 {
		return ValidationError{"presets", "required"}
	}
	names := make(map[string]bool, len(cfg.Presets))
	for i, p := range cfg.Presets {
		field := fmt.Sprintf("presets[%d]", i)
		if p.Name == "" {
			return ValidationError{field + ".name", "required"}
		}
		if names[p.Name] {
			return ValidationError{field + ".name", fmt.Sprintf("duplicate preset %s", p.Name)}
		}
		names[p.Name] = true

		switch p.Engine {
		case EngineMomentum, EngineMeanVariance, EngineBenchmark:
		default:
			return ValidationError{field + ".engine", "must be momentum, mean_variance or benchmark"}
		}
		if p.Range != RangeFull && p.Range != RangeEvaluation {
			return ValidationError{field + ".range", "must be full or evaluation"}
		}
		if p.Gamma < 0 || math.IsNaN(p.Gamma) || math.IsInf(p.Gamma, 0) {
			return ValidationError{field + ".gamma", "must be finite and >= 0"}
		}
		if p.Engine == EngineBenchmark && cfg.Universe.Exclude == "" {
			return ValidationError{field + ".engine", "benchmark requires universe.exclude"}
		}
	}

	// === Grading ===
	g := cfg.Grading
	if g.Benchmark != "" && !names[g.Benchmark] {
		return ValidationError{"grading.benchmark", fmt.Sprintf("unknown preset %s", g.Benchmark)}
	}
	if g.PointsPerTest < 0 {
		return ValidationError{"grading.points_per_test", "must be >= 0"}
	}
	if g.Tolerance < 0 {
		return ValidationError{"grading.tolerance", "must be >= 0"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 리밸런싱 주기보다 짧은 모멘텀 윈도우
	if cfg.Momentum.Lookback < cfg.Momentum.RebalancePeriod {
		warnings = append(warnings, Warning{
			Code:    "SHORT_MOMENTUM_WINDOW",
			Message: "momentum.lookback < rebalance_period: 리밸런싱 사이 데이터 일부 미사용",
		})
	}

	// top_k가 투자 가능 종목 수 이상
	investable := len(cfg.Universe.Tickers)
	for _, t := range cfg.Universe.Tickers {
		if t == cfg.Universe.Exclude {
			investable--
		}
	}
	if cfg.Momentum.TopK >= investable {
		warnings = append(warnings, Warning{
			Code:    "TOPK_COVERS_UNIVERSE",
			Message: "momentum.top_k >= 투자 가능 종목 수: 선별 효과 없음",
		})
	}

	// 표본 공분산이 특이행렬이 되는 짧은 lookback
	if cfg.MeanVariance.Lookback <= investable {
		warnings = append(warnings, Warning{
			Code:    "SINGULAR_COVARIANCE",
			Message: "mean_variance.lookback <= 종목 수: 공분산 행렬 특이 가능",
		})
	}

	for _, p := range cfg.Presets {
		if p.Engine != EngineMeanVariance && p.Gamma != 0 {
			warnings = append(warnings, Warning{
				Code:    "UNUSED_GAMMA",
				Message: fmt.Sprintf("preset %s: gamma는 mean_variance에서만 사용", p.Name),
			})
		}
	}

	return warnings
}

// === Helper Functions ===

func validateTicker(s string) error {
	if !tickerPattern.MatchString(s) {
		return errors.New("must be an upper-case ticker symbol")
	}
	return nil
}

func validateRange(r DateRange, field string) error {
	from, to, err := r.Bounds()
	if err != nil {
		return ValidationError{field, err.Error()}
	}
	if !from.Before(to) {
		return ValidationError{field, "start must be before end"}
	}
	return nil
}
