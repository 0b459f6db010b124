package contracts

import (
	"context"
	"time"
)

// PriceSource supplies adjusted daily closes for one ticker (S0)
// over [from, to); the end date is not included.
// ⭐ SSOT: 가격 데이터 공급 인터페이스 (Yahoo, Postgres, CSV, Redis 캐시)
type PriceSource interface {
	Fetch(ctx context.Context, ticker string, from, to time.Time) ([]PricePoint, error)
}

// WeightEngine turns a price table into a weights table (S1)
// ⭐ SSOT: 비중 계산 인터페이스 (momentum, mean-variance)
//
// The returned frame has the same index and columns as prices; the
// exclude column is always 0.
type WeightEngine interface {
	Name() string
	CalculateWeights(prices *Frame, exclude string) (*Frame, error)
}

// Auditor analyzes a portfolio return series (S3)
// ⭐ SSOT: 성과 분석 인터페이스
type Auditor interface {
	Analyze(dates []time.Time, returns []float64) (*PerformanceReport, error)
}
