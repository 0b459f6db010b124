package quality

import (
	"math"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
)

// QualityGate validates a price table before it reaches the weight engines
type QualityGate struct {
	config Config
}

// Config holds quality gate thresholds
type Config struct {
	MinCoverage  float64 `yaml:"min_coverage"`  // 0.95: 첫 관측 이후 결측 허용 비율
	MinScore     float64 `yaml:"min_score"`     // 0.7
	MinRows      int     `yaml:"min_rows"`      // 127: momentum 워밍업 + 1
	RequireStart bool    `yaml:"require_start"` // 모든 티커가 첫 날짜부터 존재해야 함
}

// DefaultConfig returns the thresholds used by data-check
func DefaultConfig() Config {
	return Config{
		MinCoverage: 0.95,
		MinScore:    0.7,
		MinRows:     127,
	}
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(config Config) *QualityGate {
	return &QualityGate{config: config}
}

// Check measures per-ticker coverage of frame
// ⭐ SSOT: S0 → S1 품질 검증
//
// Coverage of a ticker is the share of rows from its first observation
// onward that hold a price. A ticker that never trades has coverage 0.
// A date on which no ticker has a price fails the gate.
func (g *QualityGate) Check(frame *contracts.Frame) (*contracts.DataQualitySnapshot, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}

	snapshot := &contracts.DataQualitySnapshot{
		From:          frame.Dates[0],
		To:            frame.Dates[frame.NRows()-1],
		TotalTickers:  frame.NCols(),
		Coverage:      make(map[string]float64, frame.NCols()),
		FirstObserved: make(map[string]string, frame.NCols()),
	}

	lateStart := false
	for j, ticker := range frame.Columns {
		first := -1
		observed := 0
		for i := range frame.Values {
			if math.IsNaN(frame.Values[i][j]) {
				continue
			}
			if first < 0 {
				first = i
			}
			observed++
		}

		if first < 0 {
			snapshot.Coverage[ticker] = 0
			continue
		}
		if first > 0 {
			lateStart = true
		}

		cov := float64(observed) / float64(frame.NRows()-first)
		snapshot.Coverage[ticker] = cov
		snapshot.FirstObserved[ticker] = frame.Dates[first].Format(contracts.DateLayout)
		if cov >= g.config.MinCoverage {
			snapshot.ValidTickers++
		}
	}

	for i := range frame.Values {
		if !frame.RowIsSet(i) {
			snapshot.EmptyRows++
		}
	}

	snapshot.QualityScore = g.calculateScore(snapshot)
	snapshot.Passed = snapshot.QualityScore >= g.config.MinScore &&
		snapshot.ValidTickers == snapshot.TotalTickers &&
		snapshot.EmptyRows == 0 &&
		frame.NRows() >= g.config.MinRows &&
		!(g.config.RequireStart && lateStart)

	return snapshot, nil
}

// calculateScore is mean coverage scaled by the share of valid tickers
func (g *QualityGate) calculateScore(snapshot *contracts.DataQualitySnapshot) float64 {
	if snapshot.TotalTickers == 0 {
		return 0
	}
	validShare := float64(snapshot.ValidTickers) / float64(snapshot.TotalTickers)
	return snapshot.CoverageRate() * validShare
}
