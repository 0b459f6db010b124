package strategyconfig

// DefaultTickers 섹터 ETF 유니버스 (고정 순서)
var DefaultTickers = []string{
	"SPY", "XLB", "XLC", "XLE", "XLF", "XLI",
	"XLK", "XLP", "XLRE", "XLU", "XLV", "XLY",
}

// Default returns the built-in strategy so the CLI runs without a file.
// ⭐ SSOT: YAML 파일이 없을 때의 기본 파라미터
func Default() *Config {
	tickers := make([]string, len(DefaultTickers))
	copy(tickers, DefaultTickers)

	return &Config{
		Meta: Meta{
			StrategyID: "sector_rotation",
			Version:    "1.0.0",
		},
		Universe: Universe{
			Tickers: tickers,
			Exclude: "SPY",
		},
		Ranges: Ranges{
			Full:       DateRange{Start: "2012-01-01", End: "2024-04-01"},
			Evaluation: DateRange{Start: "2019-01-01", End: "2024-04-01"},
		},
		Momentum: Momentum{
			Lookback:        126, // ~6개월
			MinLookback:     126,
			RebalancePeriod: 21, // 월간 리밸런싱
			TopK:            5,
			VolFloor:        1e-8,
		},
		MeanVariance: MeanVariance{
			Lookback:      50,
			Solver:        SolverProjectedGradient,
			MaxIterations: 20000,
			Tolerance:     1e-10,
		},
		Presets: []Preset{
			{Name: "momentum", Engine: EngineMomentum, Range: RangeEvaluation, Graded: true},
			{Name: "momentum_full", Engine: EngineMomentum, Range: RangeFull, Graded: true},
			{Name: "mv_gamma0", Engine: EngineMeanVariance, Range: RangeEvaluation, Gamma: 0},
			{Name: "mv_gamma100", Engine: EngineMeanVariance, Range: RangeEvaluation, Gamma: 100},
			{Name: "spy", Engine: EngineBenchmark, Range: RangeEvaluation},
		},
		Grading: Grading{
			Benchmark:     "spy",
			MinSharpe:     1.0,
			PointsPerTest: 15,
			Tolerance:     1e-6,
		},
	}
}
