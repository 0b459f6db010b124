package s0_data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
)

// DateColumn is the header of the index column in every CSV table
const DateColumn = "Date"

// ReadCSV parses a wide table: Date,<col>,<col>,... with one row per date.
// Empty cells and "NaN" are read as missing.
func ReadCSV(r io.Reader) (*contracts.Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, contracts.ErrEmptyFrame
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) < 2 || !strings.EqualFold(strings.TrimPrefix(header[0], "\ufeff"), DateColumn) {
		return nil, fmt.Errorf("csv header must start with %s and name at least one column", DateColumn)
	}

	frame := &contracts.Frame{Columns: header[1:]}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		raw := record[0]
		if len(raw) > len(contracts.DateLayout) {
			raw = raw[:len(contracts.DateLayout)] // "2019-01-02 00:00:00" 형식 허용
		}
		date, err := contracts.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := make([]float64, len(frame.Columns))
		for j := range row {
			row[j], err = parseCell(record[j+1])
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, frame.Columns[j], err)
			}
		}
		frame.Dates = append(frame.Dates, date)
		frame.Values = append(frame.Values, row)
	}

	if err := frame.Validate(); err != nil {
		return nil, err
	}
	return frame, nil
}

func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// WriteCSV writes frame in the layout ReadCSV accepts. NaN is written empty.
func WriteCSV(w io.Writer, frame *contracts.Frame) error {
	writer := csv.NewWriter(w)

	header := append([]string{DateColumn}, frame.Columns...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(header))
	for i, date := range frame.Dates {
		record[0] = date.Format(contracts.DateLayout)
		for j, v := range frame.Values[i] {
			if math.IsNaN(v) {
				record[j+1] = ""
				continue
			}
			record[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadCSVFile reads a table from path
func ReadCSVFile(path string) (*contracts.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	frame, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return frame, nil
}

// WriteCSVFile writes frame to path, creating parent directories
func WriteCSVFile(path string, frame *contracts.Frame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file %s: %w", path, err)
	}
	defer file.Close()

	return WriteCSV(file, frame)
}

// CSVSource serves prices from a wide CSV table held in memory
type CSVSource struct {
	frame *contracts.Frame
}

// NewCSVSource wraps an already loaded table
func NewCSVSource(frame *contracts.Frame) *CSVSource {
	return &CSVSource{frame: frame}
}

// OpenCSVSource reads path into a CSVSource
func OpenCSVSource(path string) (*CSVSource, error) {
	frame, err := ReadCSVFile(path)
	if err != nil {
		return nil, err
	}
	return NewCSVSource(frame), nil
}

// Fetch implements contracts.PriceSource. An unknown ticker yields no points.
func (s *CSVSource) Fetch(ctx context.Context, ticker string, from, to time.Time) ([]contracts.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	j := s.frame.ColumnIndex(ticker)
	if j < 0 {
		return nil, nil
	}

	var points []contracts.PricePoint
	for i, d := range s.frame.Dates {
		if !contracts.InRange(d, from, to) {
			continue
		}
		v := s.frame.Values[i][j]
		if math.IsNaN(v) {
			continue
		}
		points = append(points, contracts.PricePoint{Date: d, Close: v})
	}
	return points, nil
}
