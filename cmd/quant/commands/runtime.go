package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/external/yahoo"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/s0_data"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/strategyconfig"
	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/config"
	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/database"
	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/httputil"
	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/logger"
	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/redis"
)

// Price sources selectable with --source
const (
	sourceCSV   = "csv"
	sourceDB    = "db"
	sourceYahoo = "yahoo"
)

// runtime holds what every command needs: env config, logger and strategy.
// Connections are opened on first use and released by close.
type runtime struct {
	cfg          *config.Config
	log          *logger.Logger
	strategy     *strategyconfig.Config
	strategyYAML []byte

	db    *database.DB
	redis *redis.Client
}

func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if rootCmd.PersistentFlags().Changed("env") {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	path := cfg.StrategyConfig
	if configFile != "" {
		path = configFile
	}
	strategy, data, err := strategyconfig.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	for _, w := range strategyconfig.Warn(strategy) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	log.WithFields(map[string]interface{}{
		"strategy_id": strategy.Meta.StrategyID,
		"version":     strategy.Meta.Version,
		"source":      priceSource,
	}).Debug("Runtime initialized")

	return &runtime{
		cfg:          cfg,
		log:          log,
		strategy:     strategy,
		strategyYAML: data,
	}, nil
}

func (rt *runtime) close() {
	if rt.db != nil {
		rt.db.Close()
	}
	if rt.redis != nil {
		rt.redis.Close()
	}
}

// database opens the Postgres pool on first use
func (rt *runtime) database(ctx context.Context) (*database.DB, error) {
	if rt.db != nil {
		return rt.db, nil
	}
	db, err := database.New(ctx, rt.cfg)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	rt.db = db
	return db, nil
}

// redisClient connects to Redis on first use; a disabled client is not an error
func (rt *runtime) redisClient() (*redis.Client, error) {
	if rt.redis != nil {
		return rt.redis, nil
	}
	client, err := redis.New(rt.cfg)
	if err != nil {
		return nil, err
	}
	rt.redis = client
	return client, nil
}

// pricesFile is the CSV used by the csv source and written by fetch
func (rt *runtime) pricesFile() string {
	if pricesPath != "" {
		return pricesPath
	}
	return filepath.Join(rt.cfg.DataDir, "prices.csv")
}

// yahooClient builds the chart client with in-process and shared rate limits
func (rt *runtime) yahooClient() (*yahoo.Client, error) {
	httpClient := httputil.New(rt.cfg, rt.log).WithLimit(rt.cfg.Yahoo.RateLimit)

	rc, err := rt.redisClient()
	if err != nil {
		return nil, err
	}
	if rc.Enabled() {
		limit := redis.YahooRateLimit
		limit.Limit = rt.cfg.Yahoo.RateLimit
		httpClient.WithRateLimiter(redis.NewRateLimiter(rc, "quant"), limit)
	}

	return yahoo.NewClient(httpClient, rt.cfg.Yahoo, yahoo.DefaultBreakerSettings(), rt.log), nil
}

// source returns the --source price source, wrapped in the Redis cache when enabled
func (rt *runtime) source(ctx context.Context) (contracts.PriceSource, error) {
	var src contracts.PriceSource
	switch priceSource {
	case sourceCSV:
		csvSource, err := s0_data.OpenCSVSource(rt.pricesFile())
		if err != nil {
			return nil, fmt.Errorf("open price csv (run 'quant fetch' first?): %w", err)
		}
		return csvSource, nil
	case sourceDB:
		db, err := rt.database(ctx)
		if err != nil {
			return nil, err
		}
		src = s0_data.NewPriceRepository(db.Pool)
	case sourceYahoo:
		client, err := rt.yahooClient()
		if err != nil {
			return nil, err
		}
		src = client
	default:
		return nil, fmt.Errorf("unknown price source %q (valid: csv, db, yahoo)", priceSource)
	}

	rc, err := rt.redisClient()
	if err != nil {
		return nil, err
	}
	if rc.Enabled() {
		src = s0_data.NewCachedSource(src, redis.NewCache(rc, "quant"), rt.log)
	}
	return src, nil
}

// loadPrices loads the universe over the full range
func (rt *runtime) loadPrices(ctx context.Context) (*contracts.Frame, error) {
	src, err := rt.source(ctx)
	if err != nil {
		return nil, err
	}
	from, to, err := rt.strategy.Ranges.Full.Bounds()
	if err != nil {
		return nil, err
	}
	return s0_data.NewLoader(src, rt.log).Load(ctx, rt.strategy.Universe.Tickers, from, to)
}
