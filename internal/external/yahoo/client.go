package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/config"
	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/httputil"
	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/logger"
)

// ErrNotFound is returned for unknown or delisted symbols
var ErrNotFound = errors.New("yahoo: symbol not found")

// Client handles communication with the Yahoo Finance chart API
// ⭐ SSOT: Yahoo Finance API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *logger.Logger
	baseURL    string
}

// BreakerSettings controls when the client stops calling Yahoo
type BreakerSettings struct {
	ConsecutiveFailures uint32
	Timeout             time.Duration // open → half-open
}

// DefaultBreakerSettings trips after 3 consecutive failures for 30s
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{ConsecutiveFailures: 3, Timeout: 30 * time.Second}
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, cfg config.YahooConfig, bs BreakerSettings, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("yahoo")

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}

	settings := gobreaker.Settings{
		Name:        "yahoo",
		MaxRequests: 1,
		Timeout:     bs.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bs.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			// 존재하지 않는 심볼은 장애가 아님
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &Client{
		httpClient: httpClient,
		breaker:    gobreaker.NewCircuitBreaker(settings),
		logger:     log,
		baseURL:    baseURL,
	}
}

// State returns the circuit breaker state ("closed", "open", "half-open")
func (c *Client) State() string {
	return c.breaker.State().String()
}

// Fetch implements contracts.PriceSource with adjusted daily closes over [from, to)
func (c *Client) Fetch(ctx context.Context, ticker string, from, to time.Time) ([]contracts.PricePoint, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchChart(ctx, ticker, from, to)
	})
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}

	points := result.([]contracts.PricePoint)
	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(points),
	}).Debug("Fetched chart")
	return points, nil
}

func (c *Client) fetchChart(ctx context.Context, ticker string, from, to time.Time) ([]contracts.PricePoint, error) {
	params := url.Values{}
	params.Set("period1", fmt.Sprintf("%d", from.Unix()))
	params.Set("period2", fmt.Sprintf("%d", to.Unix())) // period2는 배타적 (to 당일 제외)
	params.Set("interval", "1d")
	params.Set("events", "div,split")
	params.Set("includeAdjustedClose", "true")

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), params.Encode())

	var resp chartResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if resp.Chart.Error != nil {
		if resp.Chart.Error.Code == "Not Found" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, ErrNotFound
	}

	return resp.Chart.Result[0].points(from, to)
}
