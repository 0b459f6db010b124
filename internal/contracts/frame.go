package contracts

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"
)

// DateLayout is the date format used by every table boundary (CSV, CLI, logs)
const DateLayout = "2006-01-02"

var (
	ErrEmptyFrame     = errors.New("frame has no rows")
	ErrShapeMismatch  = errors.New("frame shape mismatch")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrUnorderedIndex = errors.New("date index is not strictly increasing")
)

// Frame is a date-indexed table with one float64 column per ticker
// ⭐ SSOT: 가격/수익률/비중 테이블은 모두 이 타입
//
// Missing cells are NaN. Values is row-major: Values[row][col].
type Frame struct {
	Dates   []time.Time
	Columns []string
	Values  [][]float64
}

// NewFrame allocates a frame whose cells are all NaN (unset)
func NewFrame(dates []time.Time, columns []string) *Frame {
	f := &Frame{
		Dates:   slices.Clone(dates),
		Columns: slices.Clone(columns),
		Values:  make([][]float64, len(dates)),
	}
	for i := range f.Values {
		row := make([]float64, len(columns))
		for j := range row {
			row[j] = math.NaN()
		}
		f.Values[i] = row
	}
	return f
}

// NRows returns the number of dates
func (f *Frame) NRows() int { return len(f.Dates) }

// NCols returns the number of columns
func (f *Frame) NCols() int { return len(f.Columns) }

// ColumnIndex returns the position of name, or -1
func (f *Frame) ColumnIndex(name string) int {
	return slices.Index(f.Columns, name)
}

// Column returns a copy of the named column
func (f *Frame) Column(name string) ([]float64, error) {
	j := f.ColumnIndex(name)
	if j < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	out := make([]float64, len(f.Values))
	for i, row := range f.Values {
		out[i] = row[j]
	}
	return out, nil
}

// Row returns a copy of row i
func (f *Frame) Row(i int) []float64 {
	return slices.Clone(f.Values[i])
}

// SetRow overwrites row i
func (f *Frame) SetRow(i int, row []float64) error {
	if len(row) != len(f.Columns) {
		return fmt.Errorf("%w: row has %d values, frame has %d columns", ErrShapeMismatch, len(row), len(f.Columns))
	}
	copy(f.Values[i], row)
	return nil
}

// RowIsSet reports whether row i has at least one non-NaN cell
func (f *Frame) RowIsSet(i int) bool {
	for _, v := range f.Values[i] {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}

// IndexOf returns the row of date, or -1
func (f *Frame) IndexOf(date time.Time) int {
	i, found := slices.BinarySearchFunc(f.Dates, date, func(d, target time.Time) int {
		return d.Compare(target)
	})
	if !found {
		return -1
	}
	return i
}

// Clone deep-copies the frame
func (f *Frame) Clone() *Frame {
	out := &Frame{
		Dates:   slices.Clone(f.Dates),
		Columns: slices.Clone(f.Columns),
		Values:  make([][]float64, len(f.Values)),
	}
	for i, row := range f.Values {
		out.Values[i] = slices.Clone(row)
	}
	return out
}

// Validate checks shape and index ordering
func (f *Frame) Validate() error {
	if len(f.Dates) == 0 {
		return ErrEmptyFrame
	}
	if len(f.Values) != len(f.Dates) {
		return fmt.Errorf("%w: %d dates, %d rows", ErrShapeMismatch, len(f.Dates), len(f.Values))
	}
	for i, row := range f.Values {
		if len(row) != len(f.Columns) {
			return fmt.Errorf("%w: row %d has %d values, want %d", ErrShapeMismatch, i, len(row), len(f.Columns))
		}
		if i > 0 && !f.Dates[i].After(f.Dates[i-1]) {
			return fmt.Errorf("%w: %s after %s", ErrUnorderedIndex,
				f.Dates[i].Format(DateLayout), f.Dates[i-1].Format(DateLayout))
		}
	}
	return nil
}

// InRange reports whether from <= d < to. The end date is exclusive.
func InRange(d, from, to time.Time) bool {
	return !d.Before(from) && d.Before(to)
}

// Slice returns the rows with from <= date < to.
// A zero from or to leaves that side open.
func (f *Frame) Slice(from, to time.Time) *Frame {
	out := &Frame{Columns: slices.Clone(f.Columns)}
	for i, d := range f.Dates {
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && !d.Before(to) {
			continue
		}
		out.Dates = append(out.Dates, d)
		out.Values = append(out.Values, slices.Clone(f.Values[i]))
	}
	return out
}

// AddColumn appends a column; values must have one entry per row
func (f *Frame) AddColumn(name string, values []float64) error {
	if f.ColumnIndex(name) >= 0 {
		return fmt.Errorf("%w: column %s already exists", ErrShapeMismatch, name)
	}
	if len(values) != len(f.Values) {
		return fmt.Errorf("%w: column %s has %d values, frame has %d rows", ErrShapeMismatch, name, len(values), len(f.Values))
	}
	f.Columns = append(f.Columns, name)
	for i := range f.Values {
		f.Values[i] = append(f.Values[i], values[i])
	}
	return nil
}

// FFill propagates the last non-NaN value of each column forward (in place)
func (f *Frame) FFill() *Frame {
	for j := range f.Columns {
		last := math.NaN()
		for i := range f.Values {
			if math.IsNaN(f.Values[i][j]) {
				f.Values[i][j] = last
			} else {
				last = f.Values[i][j]
			}
		}
	}
	return f
}

// FillNA replaces every NaN with v (in place)
func (f *Frame) FillNA(v float64) *Frame {
	for _, row := range f.Values {
		for j := range row {
			if math.IsNaN(row[j]) {
				row[j] = v
			}
		}
	}
	return f
}

// PctChange returns simple returns p[i]/p[i-1]-1 per column.
// Gaps are padded forward before differencing; the first row and any
// undefined change is 0.
func (f *Frame) PctChange() *Frame {
	padded := f.Clone().FFill()
	out := NewFrame(f.Dates, f.Columns)
	for i := range padded.Values {
		for j := range f.Columns {
			if i == 0 {
				out.Values[i][j] = 0
				continue
			}
			prev, cur := padded.Values[i-1][j], padded.Values[i][j]
			r := cur/prev - 1
			if math.IsNaN(r) || math.IsInf(r, 0) {
				r = 0
			}
			out.Values[i][j] = r
		}
	}
	return out
}

// PricePoint is one adjusted close observation
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// NormalizeDate truncates t to midnight UTC of its calendar day
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date at midnight UTC
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
