package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/s0_data"
)

var errUpstream = errors.New("upstream unavailable")

// stubSource returns one point per day for every ticker except fail
type stubSource struct {
	mu    sync.Mutex
	fail  string
	calls []string
}

func (s *stubSource) Fetch(ctx context.Context, ticker string, from, to time.Time) ([]contracts.PricePoint, error) {
	s.mu.Lock()
	s.calls = append(s.calls, ticker)
	s.mu.Unlock()

	if ticker == s.fail {
		return nil, errUpstream
	}
	var points []contracts.PricePoint
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		points = append(points, contracts.PricePoint{Date: d, Close: 100})
	}
	return points, nil
}

type failingSink struct{}

func (failingSink) SaveBatch(context.Context, string, []contracts.PricePoint) error {
	return errors.New("disk full")
}

func TestCollector_FetchAll(t *testing.T) {
	from := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 10)
	tickers := []string{"SPY", "XLB", "XLC", "XLE", "XLF"}

	for _, workers := range []int{0, 1, 3, 10} {
		store := s0_data.NewMemoryStore()
		src := &stubSource{fail: "XLC"}

		results, err := NewCollector(src, nil, store).FetchAll(context.Background(), tickers, from, to, Config{Workers: workers})
		require.Error(t, err)
		assert.ErrorIs(t, err, errUpstream)
		assert.Len(t, src.calls, len(tickers))

		require.Len(t, results, len(tickers))
		for i, r := range results {
			assert.Equal(t, tickers[i], r.Ticker, "results keep ticker order")
			if r.Ticker == "XLC" {
				assert.Error(t, r.Error)
				continue
			}
			assert.NoError(t, r.Error)
			assert.Equal(t, 10, r.PriceCount)
		}
		assert.Equal(t, []string{"SPY", "XLB", "XLE", "XLF"}, store.Tickers())
	}
}

func TestCollector_SinkFailure(t *testing.T) {
	from := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	results, err := NewCollector(&stubSource{}, nil, failingSink{}).
		FetchAll(context.Background(), []string{"SPY"}, from, from.AddDate(0, 0, 1), DefaultConfig())
	require.Error(t, err)
	assert.Equal(t, 1, results[0].PriceCount)
}

func TestCollector_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &stubSource{}
	results, err := NewCollector(src, nil).FetchAll(ctx, []string{"SPY", "XLB"}, time.Now(), time.Now(), DefaultConfig())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, src.calls)
	assert.Len(t, results, 2)
}

func TestCollector_Resume(t *testing.T) {
	from := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 10)

	store := s0_data.NewMemoryStore()
	require.NoError(t, store.SaveBatch(context.Background(), "SPY", []contracts.PricePoint{
		{Date: from, Close: 100},
		{Date: from.AddDate(0, 0, 5), Close: 101},
	}))
	require.NoError(t, store.SaveBatch(context.Background(), "XLB", []contracts.PricePoint{
		{Date: to.AddDate(0, 0, -1), Close: 50},
	}))

	src := &stubSource{}
	results, err := NewCollector(src, nil, store).
		FetchAll(context.Background(), []string{"SPY", "XLB", "XLE"}, from, to, Config{Workers: 2, Resume: store})
	require.NoError(t, err)
	require.Len(t, results, 3)

	// SPY resumes the day after its latest stored date
	assert.Equal(t, from.AddDate(0, 0, 6), results[0].From)
	assert.Equal(t, 4, results[0].PriceCount)
	assert.False(t, results[0].UpToDate)

	// XLB already reaches the last day of the range
	assert.True(t, results[1].UpToDate)
	assert.Zero(t, results[1].PriceCount)

	// XLE has nothing stored and fetches the whole range
	assert.Equal(t, from, results[2].From)
	assert.Equal(t, 10, results[2].PriceCount)

	assert.ElementsMatch(t, []string{"SPY", "XLE"}, src.calls)

	points, err := store.Fetch(context.Background(), "SPY", from, to)
	require.NoError(t, err)
	assert.Len(t, points, 6)
}
