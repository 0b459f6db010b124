package s0_data

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/logger"
)

// ErrNoData is returned when no ticker has a single observation in range
var ErrNoData = errors.New("no price data")

// Loader builds price tables from a PriceSource
// ⭐ SSOT: 가격 테이블(Frame) 생성은 여기서만
type Loader struct {
	source contracts.PriceSource
	logger *logger.Logger
}

// NewLoader creates a loader over source
func NewLoader(source contracts.PriceSource, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{
		source: source,
		logger: log.WithComponent("loader"),
	}
}

// Load fetches every ticker and aligns them on the union of their dates.
// Columns follow tickers; a date a ticker did not trade is NaN.
func (l *Loader) Load(ctx context.Context, tickers []string, from, to time.Time) (*contracts.Frame, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: no tickers requested", ErrNoData)
	}

	series := make(map[string]map[time.Time]float64, len(tickers))
	var dates []time.Time
	seen := make(map[time.Time]bool)

	for _, ticker := range tickers {
		points, err := l.source.Fetch(ctx, ticker, from, to)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", ticker, err)
		}

		byDate := make(map[time.Time]float64, len(points))
		for _, p := range points {
			d := contracts.NormalizeDate(p.Date)
			if !contracts.InRange(d, from, to) || math.IsNaN(p.Close) {
				continue
			}
			byDate[d] = p.Close
			if !seen[d] {
				seen[d] = true
				dates = append(dates, d)
			}
		}
		series[ticker] = byDate

		if len(byDate) == 0 {
			l.logger.WithField("ticker", ticker).Warn("No observations in range")
		} else {
			l.logger.WithFields(map[string]interface{}{
				"ticker": ticker,
				"rows":   len(byDate),
			}).Debug("Loaded prices")
		}
	}

	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: %s to %s", ErrNoData, from.Format(contracts.DateLayout), to.Format(contracts.DateLayout))
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

	frame := contracts.NewFrame(dates, tickers)
	for j, ticker := range tickers {
		for i, d := range frame.Dates {
			if v, ok := series[ticker][d]; ok {
				frame.Values[i][j] = v
			}
		}
	}

	l.logger.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"rows":    frame.NRows(),
		"from":    frame.Dates[0].Format(contracts.DateLayout),
		"to":      frame.Dates[frame.NRows()-1].Format(contracts.DateLayout),
	}).Info("Price table loaded")

	return frame, nil
}
