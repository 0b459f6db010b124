package s0_data

import (
	"context"
	"time"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/logger"
	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/redis"
)

// PriceCache is the subset of redis.Cache used by CachedSource
type PriceCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

var _ PriceCache = (*redis.Cache)(nil)

// CachedSource memoizes another PriceSource per (ticker, from, to)
// ⭐ SSOT: 가격 캐시 정책 (확정 구간은 TTLLong, 최근 구간은 TTLShort)
type CachedSource struct {
	source contracts.PriceSource
	cache  PriceCache
	logger *logger.Logger
	now    func() time.Time
}

// NewCachedSource wraps source with cache
func NewCachedSource(source contracts.PriceSource, cache PriceCache, log *logger.Logger) *CachedSource {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedSource{
		source: source,
		cache:  cache,
		logger: log.WithComponent("price_cache"),
		now:    time.Now,
	}
}

// Fetch implements contracts.PriceSource. Cache failures fall through to the source.
func (s *CachedSource) Fetch(ctx context.Context, ticker string, from, to time.Time) ([]contracts.PricePoint, error) {
	key := cacheKey(ticker, from, to)

	var points []contracts.PricePoint
	hit, err := s.cache.Get(ctx, key, &points)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
	}
	if hit {
		s.logger.WithField("key", key).Debug("Cache hit")
		return points, nil
	}

	points, err = s.source.Fetch(ctx, ticker, from, to)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return points, nil
	}

	if err := s.cache.Set(ctx, key, points, s.ttl(to)); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
	return points, nil
}

// Invalidate drops the cached range
func (s *CachedSource) Invalidate(ctx context.Context, ticker string, from, to time.Time) error {
	return s.cache.Delete(ctx, cacheKey(ticker, from, to))
}

// ttl keeps settled history for a week and recent ranges for a minute
func (s *CachedSource) ttl(to time.Time) time.Duration {
	if to.Before(contracts.NormalizeDate(s.now()).AddDate(0, 0, -7)) {
		return redis.TTLLong
	}
	return redis.TTLShort
}

func cacheKey(ticker string, from, to time.Time) string {
	return redis.PriceRangeKey(ticker, from.Format(contracts.DateLayout), to.Format(contracts.DateLayout))
}
