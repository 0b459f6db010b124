package s0_data

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/redis"
)

// mapCache is an in-memory PriceCache that stores JSON like redis.Cache does
type mapCache struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	failGet bool
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mapCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if m.failGet {
		return false, errors.New("connection refused")
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *mapCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *mapCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestCachedSource(t *testing.T) {
	ctx := context.Background()
	counting := &failingSource{inner: seededStore(t)}
	cache := newMapCache()

	src := NewCachedSource(counting, cache, nil)
	src.now = func() time.Time { return day("2024-04-01") }

	from, to := day("2019-01-01"), day("2019-12-31")
	first, err := src.Fetch(ctx, "SPY", from, to)
	require.NoError(t, err)
	second, err := src.Fetch(ctx, "SPY", from, to)
	require.NoError(t, err)

	assert.Equal(t, 1, counting.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, redis.TTLLong, cache.ttls["price:SPY:2019-01-01:2019-12-31"])

	require.NoError(t, src.Invalidate(ctx, "SPY", from, to))
	_, err = src.Fetch(ctx, "SPY", from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, counting.calls)
}

func TestCachedSource_RecentRangeShortTTL(t *testing.T) {
	cache := newMapCache()
	src := NewCachedSource(seededStore(t), cache, nil)
	src.now = func() time.Time { return day("2019-01-08") }

	_, err := src.Fetch(context.Background(), "SPY", day("2019-01-01"), day("2019-01-07"))
	require.NoError(t, err)
	assert.Equal(t, redis.TTLShort, cache.ttls["price:SPY:2019-01-01:2019-01-07"])
}

func TestCachedSource_FallsThrough(t *testing.T) {
	ctx := context.Background()
	cache := newMapCache()
	cache.failGet = true

	src := NewCachedSource(seededStore(t), cache, nil)
	points, err := src.Fetch(ctx, "SPY", day("2019-01-01"), day("2019-12-31"))
	require.NoError(t, err)
	assert.Len(t, points, 3)

	// 빈 결과는 캐시하지 않음
	cache.failGet = false
	_, err = src.Fetch(ctx, "XLC", day("2019-01-01"), day("2019-12-31"))
	require.NoError(t, err)
	assert.NotContains(t, cache.data, "price:XLC:2019-01-01:2019-12-31")

	_, err = NewCachedSource(&failingSource{fail: "SPY", inner: seededStore(t)}, cache, nil).
		Fetch(ctx, "SPY", day("2018-01-01"), day("2018-12-31"))
	assert.Error(t, err)
}

func TestMemoryStore_Merge(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	require.NoError(t, store.SaveBatch(ctx, "SPY", []contracts.PricePoint{
		{Date: day("2019-01-04"), Close: 254},
		{Date: day("2019-01-08"), Close: 256},
	}))

	points, err := store.Fetch(ctx, "SPY", day("2019-01-01"), day("2019-12-31"))
	require.NoError(t, err)
	require.Len(t, points, 4)
	assert.Equal(t, 254.0, points[2].Close)
	assert.Equal(t, day("2019-01-08"), points[3].Date)
	assert.Equal(t, []string{"SPY", "XLK"}, store.Tickers())

	latest, err := store.LatestDate(ctx, "SPY")
	require.NoError(t, err)
	assert.Equal(t, day("2019-01-08"), latest)

	latest, err = store.LatestDate(ctx, "XLC")
	require.NoError(t, err)
	assert.True(t, latest.IsZero())
}
