package strategyconfig

import (
	"fmt"
	"time"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
)

// Config는 섹터 로테이션 전략의 전체 설정
type Config struct {
	Meta         Meta         `yaml:"meta" json:"meta"`
	Universe     Universe     `yaml:"universe" json:"universe"`
	Ranges       Ranges       `yaml:"ranges" json:"ranges"`
	Momentum     Momentum     `yaml:"momentum" json:"momentum"`
	MeanVariance MeanVariance `yaml:"mean_variance" json:"mean_variance"`
	Presets      []Preset     `yaml:"presets" json:"presets"`
	Grading      Grading      `yaml:"grading" json:"grading"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Universe 투자 대상 (컬럼 순서 = 모든 테이블의 컬럼 순서)
type Universe struct {
	Tickers []string `yaml:"tickers" json:"tickers"`
	Exclude string   `yaml:"exclude" json:"exclude"` // 벤치마크 컬럼, 비중 항상 0
}

// Ranges 가격 데이터 기간
type Ranges struct {
	Full       DateRange `yaml:"full" json:"full"`
	Evaluation DateRange `yaml:"evaluation" json:"evaluation"`
}

// DateRange YYYY-MM-DD 기간 [start, end), end 당일은 제외
type DateRange struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// Bounds parses the range into dates
func (r DateRange) Bounds() (time.Time, time.Time, error) {
	from, err := contracts.ParseDate(r.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
	}
	to, err := contracts.ParseDate(r.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
	}
	return from, to, nil
}

// Momentum 모멘텀/역변동성 로테이션 파라미터
type Momentum struct {
	Lookback        int     `yaml:"lookback" json:"lookback"`
	MinLookback     int     `yaml:"min_lookback" json:"min_lookback"`
	RebalancePeriod int     `yaml:"rebalance_period" json:"rebalance_period"`
	TopK            int     `yaml:"top_k" json:"top_k"`
	VolFloor        float64 `yaml:"vol_floor" json:"vol_floor"`
}

// MeanVariance 평균-분산 최적화 파라미터
type MeanVariance struct {
	Lookback      int     `yaml:"lookback" json:"lookback"`
	Solver        string  `yaml:"solver" json:"solver"` // projected_gradient | nelder_mead_penalty
	MaxIterations int     `yaml:"max_iterations" json:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance" json:"tolerance"`
}

// Engine kinds
const (
	EngineMomentum     = "momentum"
	EngineMeanVariance = "mean_variance"
	EngineBenchmark    = "benchmark"
)

// Range names
const (
	RangeFull       = "full"
	RangeEvaluation = "evaluation"
)

// Solver names
const (
	SolverProjectedGradient = "projected_gradient"
	SolverNelderMead        = "nelder_mead_penalty"
)

// Preset 이름이 붙은 실행 단위 (엔진 + 기간 + 파라미터)
type Preset struct {
	Name   string  `yaml:"name" json:"name"`
	Engine string  `yaml:"engine" json:"engine"` // momentum | mean_variance | benchmark
	Range  string  `yaml:"range" json:"range"`   // full | evaluation
	Gamma  float64 `yaml:"gamma" json:"gamma"`   // mean_variance 전용
	Graded bool    `yaml:"graded" json:"graded"` // score 대상 여부
}

// Grading 채점 기준
type Grading struct {
	Benchmark     string  `yaml:"benchmark" json:"benchmark"` // 비교 대상 preset
	MinSharpe     float64 `yaml:"min_sharpe" json:"min_sharpe"`
	PointsPerTest int     `yaml:"points_per_test" json:"points_per_test"`
	ReferenceDir  string  `yaml:"reference_dir" json:"reference_dir"` // 비어있으면 참조 비교 생략
	Tolerance     float64 `yaml:"tolerance" json:"tolerance"`
}

// Preset returns the preset with the given name
func (c *Config) Preset(name string) (Preset, bool) {
	for _, p := range c.Presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// PresetNames returns preset names in file order
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for _, p := range c.Presets {
		names = append(names, p.Name)
	}
	return names
}

// RangeFor returns the date range a preset runs over
func (c *Config) RangeFor(p Preset) DateRange {
	if p.Range == RangeFull {
		return c.Ranges.Full
	}
	return c.Ranges.Evaluation
}

// RunSnapshot 실행 스냅샷 (재현성용)
type RunSnapshot struct {
	RunID      string    `json:"run_id"`
	ConfigHash string    `json:"config_hash"`
	ConfigYAML string    `json:"config_yaml"`
	StrategyID string    `json:"strategy_id"`
	Preset     string    `json:"preset"`
	DataRows   int       `json:"data_rows"`
	CreatedAt  time.Time `json:"created_at"`
}
