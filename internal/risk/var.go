package risk

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidConfidence is returned for a confidence level outside (0, 1)
var ErrInvalidConfidence = errors.New("confidence must be in (0, 1)")

// DefaultConfidence is the level the performance report quotes
const DefaultConfidence = 0.95

// VaRResult VaR 계산 결과
// ⭐ SSOT: VaR/CVaR는 손실을 양수로 표현
// - VaR=0.05 → 95% 신뢰수준에서 일간 최대 5% 손실 가능
// - CVaR=0.07 → 5% tail에서 평균 7% 손실 예상
type VaRResult struct {
	Confidence float64 `json:"confidence"` // 신뢰수준 (예: 0.95, 0.99)
	VaR        float64 `json:"var"`        // Value at Risk (손실, 양수)
	CVaR       float64 `json:"cvar"`       // Conditional VaR (Expected Shortfall, 양수)
}

// HistoricalVaR 과거 수익률 기반 VaR (Historical Simulation)
// returns: 일별 수익률 (양수=이익, 음수=손실)
// The tail is every return at or below the floor((1-confidence)·n)-th order statistic.
func HistoricalVaR(returns []float64, confidence float64) (VaRResult, error) {
	if confidence <= 0 || confidence >= 1 {
		return VaRResult{}, fmt.Errorf("%w: %v", ErrInvalidConfidence, confidence)
	}
	result := VaRResult{Confidence: confidence}
	if len(returns) == 0 {
		return result, nil
	}

	// 오름차순: 손실이 앞에
	sorted := append([]float64(nil), returns...)
	sort.Float64s(sorted)

	idx := int(math.Floor((1 - confidence) * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	result.VaR = lossOf(sorted[idx])
	result.CVaR = lossOf(stat.Mean(sorted[:idx+1], nil))
	return result, nil
}

// ParametricVaR 정규분포 가정 VaR
// VaR = -(μ - zσ), CVaR = -(μ - σφ(z)/(1-c))
func ParametricVaR(returns []float64, confidence float64) (VaRResult, error) {
	if confidence <= 0 || confidence >= 1 {
		return VaRResult{}, fmt.Errorf("%w: %v", ErrInvalidConfidence, confidence)
	}
	result := VaRResult{Confidence: confidence}
	if len(returns) < 2 {
		return result, nil
	}

	mean, std := stat.MeanStdDev(returns, nil)
	unit := distuv.UnitNormal
	z := unit.Quantile(confidence)

	result.VaR = lossOf(mean - z*std)
	result.CVaR = lossOf(mean - std*unit.Prob(z)/(1-confidence))
	return result, nil
}

// lossOf flips a return into a non-negative loss
func lossOf(r float64) float64 {
	if r < 0 {
		return -r
	}
	return 0
}
