package portfolio

import (
	"fmt"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/logger"
)

// Pipeline runs prices → weights → returns for one engine and memoizes
// each stage. Accessors hand out clones so published tables stay immutable.
type Pipeline struct {
	engine      contracts.WeightEngine
	prices      *contracts.Frame
	exclude     string
	constraints Constraints
	logger      *logger.Logger

	weights *contracts.Frame
	returns *contracts.Frame
}

// NewPipeline creates a pipeline over prices. The price table is copied.
func NewPipeline(engine contracts.WeightEngine, prices *contracts.Frame, exclude string, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{
		engine:      engine,
		prices:      prices.Clone(),
		exclude:     exclude,
		constraints: DefaultConstraints(),
		logger:      log.WithComponent("pipeline"),
	}
}

// WithConstraints overrides the row checks applied to computed weights
func (p *Pipeline) WithConstraints(c Constraints) *Pipeline {
	p.constraints = c
	return p
}

// Engine returns the weight engine
func (p *Pipeline) Engine() contracts.WeightEngine { return p.engine }

// Weights computes (once) and returns the weights table
func (p *Pipeline) Weights() (*contracts.Frame, error) {
	if err := p.computeWeights(); err != nil {
		return nil, err
	}
	return p.weights.Clone(), nil
}

// Returns computes (once) and returns the asset returns plus the Portfolio column
func (p *Pipeline) Returns() (*contracts.Frame, error) {
	if err := p.computeReturns(); err != nil {
		return nil, err
	}
	return p.returns.Clone(), nil
}

// Results returns both tables, computing whatever is missing
func (p *Pipeline) Results() (weights, returns *contracts.Frame, err error) {
	if err := p.computeReturns(); err != nil {
		return nil, nil, err
	}
	return p.weights.Clone(), p.returns.Clone(), nil
}

func (p *Pipeline) computeWeights() error {
	if p.weights != nil {
		return nil
	}

	weights, err := p.engine.CalculateWeights(p.prices, p.exclude)
	if err != nil {
		return fmt.Errorf("%s: %w", p.engine.Name(), err)
	}
	if err := p.constraints.Check(weights, p.exclude); err != nil {
		return fmt.Errorf("%s: %w", p.engine.Name(), err)
	}

	p.weights = weights
	return nil
}

func (p *Pipeline) computeReturns() error {
	if p.returns != nil {
		return nil
	}
	if err := p.computeWeights(); err != nil {
		return err
	}

	returns, err := Aggregate(p.prices.PctChange(), p.weights, p.exclude)
	if err != nil {
		return err
	}
	p.returns = returns

	p.logger.WithFields(map[string]interface{}{
		"engine": p.engine.Name(),
		"rows":   returns.NRows(),
	}).Debug("Portfolio returns aggregated")
	return nil
}
