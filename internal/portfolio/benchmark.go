package portfolio

import (
	"fmt"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
)

// BenchmarkEngine holds 100% of a single ticker (buy and hold)
type BenchmarkEngine struct {
	ticker string
}

// NewBenchmarkEngine creates a buy-and-hold engine for ticker
func NewBenchmarkEngine(ticker string) *BenchmarkEngine {
	return &BenchmarkEngine{ticker: ticker}
}

// Name returns the engine identifier
func (e *BenchmarkEngine) Name() string { return "benchmark(" + e.ticker + ")" }

// Ticker returns the held column
func (e *BenchmarkEngine) Ticker() string { return e.ticker }

// CalculateWeights puts weight 1 on the benchmark ticker in every row.
// The benchmark ticker is normally the excluded column of the other
// engines, so callers run it with exclude == "".
func (e *BenchmarkEngine) CalculateWeights(prices *contracts.Frame, exclude string) (*contracts.Frame, error) {
	if err := prices.Validate(); err != nil {
		return nil, fmt.Errorf("benchmark weights: %w", err)
	}
	if e.ticker == exclude {
		return nil, fmt.Errorf("%w: benchmark ticker %s is excluded", ErrInvalidParams, e.ticker)
	}
	j := prices.ColumnIndex(e.ticker)
	if j < 0 {
		return nil, fmt.Errorf("benchmark weights: %w: %s", contracts.ErrUnknownColumn, e.ticker)
	}

	weights := contracts.NewFrame(prices.Dates, prices.Columns).FillNA(0)
	for i := range weights.Values {
		weights.Values[i][j] = 1
	}
	return weights, nil
}
