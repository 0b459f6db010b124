package backtest

import (
	"context"
	"fmt"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/strategyconfig"
)

// Runner runs named presets over one price table and caches each result
type Runner struct {
	engine  *Engine
	cfg     *strategyconfig.Config
	prices  *contracts.Frame
	results map[string]*Result
}

// NewRunner creates a runner over prices, which should cover the full range
func NewRunner(engine *Engine, cfg *strategyconfig.Config, prices *contracts.Frame) *Runner {
	return &Runner{
		engine:  engine,
		cfg:     cfg,
		prices:  prices.Clone(),
		results: make(map[string]*Result),
	}
}

// Config returns the strategy configuration the runner uses
func (r *Runner) Config() *strategyconfig.Config { return r.cfg }

// RunPreset runs the named preset once; later calls return the cached result
func (r *Runner) RunPreset(ctx context.Context, name string) (*Result, error) {
	if res, ok := r.results[name]; ok {
		return res, nil
	}

	preset, ok := r.cfg.Preset(name)
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (available: %v)", name, r.cfg.PresetNames())
	}

	res, err := r.engine.Run(ctx, preset, r.prices)
	if err != nil {
		return nil, err
	}
	r.results[name] = res
	return res, nil
}
