package contracts

import "time"

// DataQualitySnapshot describes price table coverage passed from S0 to S1
// ⭐ SSOT: S0 → S1 데이터 품질 정보 전달
type DataQualitySnapshot struct {
	From          time.Time          `json:"from"`
	To            time.Time          `json:"to"`
	TotalTickers  int                `json:"total_tickers"`
	ValidTickers  int                `json:"valid_tickers"`
	EmptyRows     int                `json:"empty_rows"` // 어떤 티커도 가격이 없는 날짜 수
	Coverage      map[string]float64 `json:"coverage"`       // 티커별 커버리지 (0.0 ~ 1.0)
	FirstObserved map[string]string  `json:"first_observed"` // 티커별 첫 관측일
	QualityScore  float64            `json:"quality_score"`  // 0.0 ~ 1.0
	Passed        bool               `json:"passed"`
}

// IsValid checks if the snapshot meets minimum requirements
func (d *DataQualitySnapshot) IsValid() bool {
	return d.QualityScore >= 0.7 && d.ValidTickers > 0
}

// CoverageRate returns the average coverage across all tickers
func (d *DataQualitySnapshot) CoverageRate() float64 {
	if len(d.Coverage) == 0 {
		return 0.0
	}

	total := 0.0
	for _, rate := range d.Coverage {
		total += rate
	}

	return total / float64(len(d.Coverage))
}
