package s0_data

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
)

// PriceSink stores the points of one ticker
type PriceSink interface {
	SaveBatch(ctx context.Context, ticker string, points []contracts.PricePoint) error
}

// PriceHistory reports how far a store already reaches for a ticker.
// The zero time means nothing is stored.
type PriceHistory interface {
	LatestDate(ctx context.Context, ticker string) (time.Time, error)
}

var (
	_ PriceHistory = (*MemoryStore)(nil)
	_ PriceHistory = (*PriceRepository)(nil)
)

// MemoryStore is an in-process PriceSource and PriceSink. Safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	series map[string][]contracts.PricePoint
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{series: make(map[string][]contracts.PricePoint)}
}

// SaveBatch merges points into ticker's series; a later point replaces an earlier one on the same date
func (m *MemoryStore) SaveBatch(ctx context.Context, ticker string, points []contracts.PricePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byDate := make(map[time.Time]float64, len(m.series[ticker])+len(points))
	for _, p := range m.series[ticker] {
		byDate[p.Date] = p.Close
	}
	for _, p := range points {
		byDate[contracts.NormalizeDate(p.Date)] = p.Close
	}

	merged := make([]contracts.PricePoint, 0, len(byDate))
	for d, c := range byDate {
		merged = append(merged, contracts.PricePoint{Date: d, Close: c})
	}
	slices.SortFunc(merged, func(a, b contracts.PricePoint) int { return a.Date.Compare(b.Date) })
	m.series[ticker] = merged
	return nil
}

// Fetch implements contracts.PriceSource
func (m *MemoryStore) Fetch(ctx context.Context, ticker string, from, to time.Time) ([]contracts.PricePoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []contracts.PricePoint
	for _, p := range m.series[ticker] {
		if !contracts.InRange(p.Date, from, to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// LatestDate returns the last stored date of ticker, or the zero time
func (m *MemoryStore) LatestDate(ctx context.Context, ticker string) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	series := m.series[ticker]
	if len(series) == 0 {
		return time.Time{}, nil
	}
	return series[len(series)-1].Date, nil
}

// Tickers lists stored tickers in sorted order
func (m *MemoryStore) Tickers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tickers := make([]string, 0, len(m.series))
	for t := range m.series {
		tickers = append(tickers, t)
	}
	slices.Sort(tickers)
	return tickers
}
