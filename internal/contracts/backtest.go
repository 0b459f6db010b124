package contracts

import "time"

// PortfolioColumn is the column Aggregate appends to the returns table
const PortfolioColumn = "Portfolio"

// BacktestResult is one preset run handed from the backtest runner to grading
// ⭐ SSOT: S2 → S3 실행 결과 전달
type BacktestResult struct {
	Preset     string        `json:"preset"`
	Range      string        `json:"range"`
	EngineName string        `json:"engine"`
	Exclude    string        `json:"exclude"`
	StartDate  time.Time     `json:"start_date"`
	EndDate    time.Time     `json:"end_date"`
	Duration   time.Duration `json:"duration"`

	Weights *Frame `json:"-"` // 비중 테이블
	Returns *Frame `json:"-"` // 자산 수익률 + Portfolio 컬럼

	Report         *PerformanceReport `json:"report"`
	RebalanceCount int                `json:"rebalance_count"` // 비중이 바뀐 행 수
}

// Portfolio returns a copy of the portfolio return series
func (r *BacktestResult) Portfolio() []float64 {
	series, _ := r.Returns.Column(PortfolioColumn)
	return series
}
