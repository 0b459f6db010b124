package portfolio

import (
	"errors"
	"fmt"
	"math"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
)

// ErrConstraintViolation is returned when a weights row breaks an allocation rule
var ErrConstraintViolation = errors.New("weight constraint violation")

// Constraints defines the allocation rules every weights row must satisfy
// ⭐ SSOT: 비중 제약조건은 여기서만
type Constraints struct {
	Tolerance    float64 // 합계/음수 허용 오차
	MaxPositions int     // 0이면 제한 없음
}

// DefaultConstraints returns long-only, fully-invested-or-flat rules
func DefaultConstraints() Constraints {
	return Constraints{
		Tolerance:    1e-6,
		MaxPositions: 0,
	}
}

// CheckRow verifies one row: no NaN, no negative weight, the excluded
// column (excludeCol >= 0) is zero, and the row sums to 1 or to 0.
func (c Constraints) CheckRow(row []float64, excludeCol int) error {
	var sum float64
	positions := 0
	for j, w := range row {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: column %d is %v", ErrConstraintViolation, j, w)
		}
		if w < -c.Tolerance {
			return fmt.Errorf("%w: column %d is negative (%g)", ErrConstraintViolation, j, w)
		}
		if j == excludeCol && w != 0 {
			return fmt.Errorf("%w: excluded column holds %g", ErrConstraintViolation, w)
		}
		if w > c.Tolerance {
			positions++
		}
		sum += w
	}

	if math.Abs(sum-1) > c.Tolerance && math.Abs(sum) > c.Tolerance {
		return fmt.Errorf("%w: row sums to %g", ErrConstraintViolation, sum)
	}
	if c.MaxPositions > 0 && positions > c.MaxPositions {
		return fmt.Errorf("%w: %d positions exceed max %d", ErrConstraintViolation, positions, c.MaxPositions)
	}
	return nil
}

// Check verifies every row of a weights table
func (c Constraints) Check(weights *contracts.Frame, exclude string) error {
	excludeCol := weights.ColumnIndex(exclude)
	for i, row := range weights.Values {
		if err := c.CheckRow(row, excludeCol); err != nil {
			return fmt.Errorf("%s: %w", weights.Dates[i].Format(contracts.DateLayout), err)
		}
	}
	return nil
}
