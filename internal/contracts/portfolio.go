package contracts

import (
	"math"
	"sort"
	"time"
)

// Allocation is one row of the weights table viewed as positions
// ⭐ SSOT: 특정 일자의 포트폴리오 비중
type Allocation struct {
	Date      time.Time  `json:"date"`
	Positions []Position `json:"positions"`
}

// Position is a single non-zero holding
type Position struct {
	Ticker string  `json:"ticker"`
	Weight float64 `json:"weight"` // 0.0 ~ 1.0
}

// AllocationAt extracts the non-zero weights of row i, largest first.
// Ties keep column order.
func AllocationAt(weights *Frame, i int) Allocation {
	alloc := Allocation{Date: weights.Dates[i]}
	for j, w := range weights.Values[i] {
		if w != 0 && !math.IsNaN(w) {
			alloc.Positions = append(alloc.Positions, Position{Ticker: weights.Columns[j], Weight: w})
		}
	}
	sort.SliceStable(alloc.Positions, func(a, b int) bool {
		return alloc.Positions[a].Weight > alloc.Positions[b].Weight
	})
	return alloc
}

// TotalWeight returns the sum of all position weights
func (a *Allocation) TotalWeight() float64 {
	total := 0.0
	for _, pos := range a.Positions {
		total += pos.Weight
	}
	return total
}

// Count returns the number of positions
func (a *Allocation) Count() int {
	return len(a.Positions)
}

// GetPosition finds a position by ticker
func (a *Allocation) GetPosition(ticker string) (*Position, bool) {
	for i := range a.Positions {
		if a.Positions[i].Ticker == ticker {
			return &a.Positions[i], true
		}
	}
	return nil, false
}
