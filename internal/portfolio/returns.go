package portfolio

import (
	"fmt"
	"slices"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
)

// PortfolioColumn is the name of the aggregated return column
const PortfolioColumn = contracts.PortfolioColumn

// Aggregate returns a copy of returns with a Portfolio column equal to
// Σ returns[i][a] × weights[i][a] over every column except exclude.
// NaN inputs propagate.
func Aggregate(returns, weights *contracts.Frame, exclude string) (*contracts.Frame, error) {
	if returns.NRows() != weights.NRows() {
		return nil, fmt.Errorf("aggregate: %w: %d return rows, %d weight rows",
			contracts.ErrShapeMismatch, returns.NRows(), weights.NRows())
	}
	if !slices.Equal(returns.Columns, weights.Columns) {
		return nil, fmt.Errorf("aggregate: %w: column sets differ", contracts.ErrShapeMismatch)
	}
	for i := range returns.Dates {
		if !returns.Dates[i].Equal(weights.Dates[i]) {
			return nil, fmt.Errorf("aggregate: %w: date mismatch at row %d", contracts.ErrShapeMismatch, i)
		}
	}

	out := returns.Clone()
	assets := assetColumns(returns, exclude)
	portfolio := make([]float64, returns.NRows())
	for i := range portfolio {
		var sum float64
		for _, j := range assets {
			sum += returns.Values[i][j] * weights.Values[i][j]
		}
		portfolio[i] = sum
	}

	if err := out.AddColumn(PortfolioColumn, portfolio); err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	return out, nil
}
