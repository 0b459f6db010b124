package audit

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/risk"
	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/logger"
)

// TradingDaysPerYear annualizes daily statistics
const TradingDaysPerYear = 252

// ErrInvalidSeries is returned for empty, ragged or non-finite return series
var ErrInvalidSeries = errors.New("invalid return series")

// Analyzer implements S3: Performance analysis
// ⭐ SSOT: S3 성과 분석 로직은 여기서만
type Analyzer struct {
	logger *logger.Logger
}

var _ contracts.Auditor = (*Analyzer)(nil)

// NewAnalyzer creates a new performance analyzer
func NewAnalyzer(log *logger.Logger) *Analyzer {
	if log == nil {
		log = logger.Nop()
	}
	return &Analyzer{logger: log.WithComponent("analyzer")}
}

// Analyze computes return and risk statistics of a daily simple-return series.
// Ratios use a zero risk-free rate.
func (a *Analyzer) Analyze(dates []time.Time, returns []float64) (*contracts.PerformanceReport, error) {
	if len(returns) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSeries)
	}
	if len(dates) != len(returns) {
		return nil, fmt.Errorf("%w: %d dates, %d returns", ErrInvalidSeries, len(dates), len(returns))
	}
	for i, r := range returns {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, fmt.Errorf("%w: non-finite return on %s", ErrInvalidSeries, dates[i].Format(contracts.DateLayout))
		}
	}

	report := &contracts.PerformanceReport{
		StartDate:  dates[0],
		EndDate:    dates[len(dates)-1],
		Days:       len(returns),
		Cumulative: Cumulative(returns),
	}

	// 수익률
	report.TotalReturn = report.Cumulative[len(returns)-1] - 1
	report.CAGR = cagr(report.TotalReturn, report.StartDate, report.EndDate)
	report.BestDay = floats.Max(returns)
	report.WorstDay = floats.Min(returns)

	// 리스크 지표
	report.Volatility = volatility(returns)
	report.Sharpe = sharpe(returns)
	report.Sortino = sortino(returns)
	report.MaxDrawdown = maxDrawdown(report.Cumulative)
	if report.MaxDrawdown < 0 {
		report.Calmar = report.CAGR / math.Abs(report.MaxDrawdown)
	}

	tail, err := risk.HistoricalVaR(returns, risk.DefaultConfidence)
	if err != nil {
		return nil, err
	}
	report.VaR95 = tail.VaR
	report.CVaR95 = tail.CVaR

	a.logger.WithFields(map[string]interface{}{
		"days":         report.Days,
		"total_return": report.TotalReturn,
		"sharpe":       report.Sharpe,
		"max_drawdown": report.MaxDrawdown,
	}).Debug("Performance analysis completed")

	return report, nil
}

// Cumulative returns the running product Π(1+r)
func Cumulative(returns []float64) []float64 {
	out := make([]float64, len(returns))
	acc := 1.0
	for i, r := range returns {
		acc *= 1 + r
		out[i] = acc
	}
	return out
}

// cagr annualizes over calendar years between the first and last date
func cagr(totalReturn float64, start, end time.Time) float64 {
	years := end.Sub(start).Hours() / 24 / 365
	if years <= 0 {
		return 0
	}
	return math.Pow(1+totalReturn, 1/years) - 1
}

// volatility is the annualized sample standard deviation
func volatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	return stat.StdDev(returns, nil) * math.Sqrt(TradingDaysPerYear)
}

// sharpe is mean / sample std, annualized
func sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(returns, nil)
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(TradingDaysPerYear)
}

// sortino divides the mean by downside deviation sqrt(Σ min(r,0)² / n), annualized
func sortino(returns []float64) float64 {
	var sumSq float64
	for _, r := range returns {
		if r < 0 {
			sumSq += r * r
		}
	}
	if sumSq == 0 {
		return 0
	}
	downside := math.Sqrt(sumSq / float64(len(returns)))
	return stat.Mean(returns, nil) / downside * math.Sqrt(TradingDaysPerYear)
}

// maxDrawdown is the most negative cum/peak − 1, with the starting value 1 as first peak
func maxDrawdown(cumulative []float64) float64 {
	peak := 1.0
	mdd := 0.0
	for _, v := range cumulative {
		if v > peak {
			peak = v
		}
		if dd := v/peak - 1; dd < mdd {
			mdd = dd
		}
	}
	return mdd
}
