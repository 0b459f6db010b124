package audit

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"path/filepath"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/s0_data"
)

// ErrNoReference is returned when a preset has no stored reference table
var ErrNoReference = errors.New("no reference table")

// ReferencePath is where the reference table of kind ("weights" or "returns") lives
func ReferencePath(dir, preset, kind string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", preset, kind))
}

// LoadReference reads a stored reference table
func LoadReference(dir, preset, kind string) (*contracts.Frame, error) {
	frame, err := s0_data.ReadCSVFile(ReferencePath(dir, preset, kind))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s %s", ErrNoReference, preset, kind)
	}
	return frame, err
}

// CompareFrames returns the largest absolute difference between got and want
// over want's dates and columns. Every date and column of want must exist in got.
// Two NaN cells are equal; a NaN against a number is an infinite difference.
func CompareFrames(got, want *contracts.Frame) (float64, error) {
	cols := make([]int, len(want.Columns))
	for k, name := range want.Columns {
		cols[k] = got.ColumnIndex(name)
		if cols[k] < 0 {
			return 0, fmt.Errorf("%w: %s", contracts.ErrUnknownColumn, name)
		}
	}

	maxDiff := 0.0
	for i, date := range want.Dates {
		row := got.IndexOf(date)
		if row < 0 {
			return 0, fmt.Errorf("%w: date %s missing", contracts.ErrShapeMismatch, date.Format(contracts.DateLayout))
		}
		for k, j := range cols {
			a, b := got.Values[row][j], want.Values[i][k]
			if math.IsNaN(a) && math.IsNaN(b) {
				continue
			}
			diff := math.Abs(a - b)
			if math.IsNaN(diff) {
				diff = math.Inf(1)
			}
			maxDiff = math.Max(maxDiff, diff)
		}
	}
	return maxDiff, nil
}
