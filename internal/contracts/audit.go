package contracts

import "time"

// PerformanceReport represents performance analysis results from S3
// ⭐ SSOT: S3 성과 분석 결과
type PerformanceReport struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Days      int       `json:"days"`

	// 수익률
	TotalReturn float64 `json:"total_return"` // 누적 수익률
	CAGR        float64 `json:"cagr"`         // 연복리 수익률
	BestDay     float64 `json:"best_day"`
	WorstDay    float64 `json:"worst_day"`

	// 리스크
	Volatility  float64 `json:"volatility"`   // 연환산 변동성
	Sharpe      float64 `json:"sharpe"`       // 샤프 비율 (rf = 0)
	Sortino     float64 `json:"sortino"`      // 소르티노 비율
	MaxDrawdown float64 `json:"max_drawdown"` // 최대 낙폭 (음수)
	Calmar      float64 `json:"calmar"`
	VaR95       float64 `json:"var_95"`  // 일간 Historical VaR (손실, 양수)
	CVaR95      float64 `json:"cvar_95"` // 일간 Expected Shortfall

	// 누적 수익 곡선 Π(1+r)
	Cumulative []float64 `json:"cumulative,omitempty"`
}

// Outperforms reports whether this report has a higher Sharpe than benchmark
func (pr *PerformanceReport) Outperforms(benchmark *PerformanceReport) bool {
	if benchmark == nil {
		return true
	}
	return pr.Sharpe > benchmark.Sharpe
}

// IsHealthy checks if the strategy has healthy risk metrics
func (pr *PerformanceReport) IsHealthy() bool {
	return pr.Sharpe > 1.0 && pr.MaxDrawdown > -0.30
}
