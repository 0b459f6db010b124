package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/s0_data"
	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/logger"
)

// Collector downloads prices from a source and stores them in every sink
// ⭐ SSOT: 데이터 수집 오케스트레이션은 이 패키지에서만
type Collector struct {
	source contracts.PriceSource
	sinks  []s0_data.PriceSink
	logger *logger.Logger
}

// Config holds collector configuration
type Config struct {
	Workers int // Number of concurrent workers

	// Resume, when set, starts each ticker the day after its latest stored
	// date (증분 수집). Tickers already up to date are not requested.
	Resume s0_data.PriceHistory
}

// DefaultConfig fetches one ticker at a time
func DefaultConfig() Config {
	return Config{Workers: 1}
}

// NewCollector creates a new Collector instance
func NewCollector(source contracts.PriceSource, log *logger.Logger, sinks ...s0_data.PriceSink) *Collector {
	if log == nil {
		log = logger.Nop()
	}
	return &Collector{
		source: source,
		sinks:  sinks,
		logger: log.WithField("module", "collector"),
	}
}

// FetchResult represents the result of a fetch operation
type FetchResult struct {
	Ticker     string
	From       time.Time // first requested date; later than from when resumed
	PriceCount int
	UpToDate   bool // resume point already reaches the end of the range
	Error      error
}

// FetchAll fetches every ticker over [from, to) with cfg.Workers workers.
// Results come back in ticker order; the error joins every failed ticker.
func (c *Collector) FetchAll(ctx context.Context, tickers []string, from, to time.Time, cfg Config) ([]FetchResult, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(tickers) {
		workers = len(tickers)
	}

	c.logger.WithFields(map[string]interface{}{
		"tickers": len(tickers),
		"from":    from.Format(contracts.DateLayout),
		"to":      to.Format(contracts.DateLayout),
		"workers": workers,
	}).Info("Starting price collection")

	results := make([]FetchResult, len(tickers))
	jobs := make(chan int, len(tickers))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range jobs {
				results[i] = c.fetchOne(ctx, workerID, tickers[i], from, to, cfg.Resume)
			}
		}(w)
	}

	for i := range tickers {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var errs []error
	successCount := 0
	for _, r := range results {
		if r.Error != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Ticker, r.Error))
			continue
		}
		successCount++
	}

	c.logger.WithFields(map[string]interface{}{
		"success": successCount,
		"failed":  len(errs),
		"total":   len(results),
	}).Info("Price collection completed")

	return results, errors.Join(errs...)
}

// fetchOne fetches one ticker and saves it to every sink
func (c *Collector) fetchOne(ctx context.Context, workerID int, ticker string, from, to time.Time, resume s0_data.PriceHistory) FetchResult {
	result := FetchResult{Ticker: ticker, From: from}
	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	log := c.logger.WithFields(map[string]interface{}{
		"worker": workerID,
		"ticker": ticker,
	})

	if resume != nil {
		latest, err := resume.LatestDate(ctx, ticker)
		if err != nil {
			log.WithError(err).Error("Failed to read resume point")
			result.Error = fmt.Errorf("resume point: %w", err)
			return result
		}
		if next := latest.AddDate(0, 0, 1); !latest.IsZero() && next.After(from) {
			result.From = next
		}
		if !result.From.Before(to) {
			log.Debug("Already up to date")
			result.UpToDate = true
			return result
		}
	}

	points, err := c.source.Fetch(ctx, ticker, result.From, to)
	if err != nil {
		log.WithError(err).Error("Failed to fetch prices")
		result.Error = err
		return result
	}
	result.PriceCount = len(points)

	for _, sink := range c.sinks {
		if err := sink.SaveBatch(ctx, ticker, points); err != nil {
			log.WithError(err).Error("Failed to save prices")
			result.Error = err
			return result
		}
	}

	log.WithFields(map[string]interface{}{
		"count": len(points),
		"from":  result.From.Format(contracts.DateLayout),
	}).Debug("Fetched prices")
	return result
}
