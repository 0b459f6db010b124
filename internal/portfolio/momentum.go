package portfolio

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
	"github.com/2025-Fall-HW3/hw3-yschiu11/pkg/logger"
)

// MomentumConfig defines the rotation parameters
type MomentumConfig struct {
	Lookback        int     // 모멘텀/변동성 윈도우 (거래일)
	MinLookback     int     // 첫 계산 가능 인덱스
	RebalancePeriod int     // i % RebalancePeriod == 0 인 날만 리밸런싱
	TopK            int     // 최대 보유 종목 수
	VolFloor        float64 // 1/(vol+floor) 분모 하한
}

// DefaultMomentumConfig returns the 6-month / monthly / top-5 setup
func DefaultMomentumConfig() MomentumConfig {
	return MomentumConfig{
		Lookback:        126,
		MinLookback:     126,
		RebalancePeriod: 21,
		TopK:            5,
		VolFloor:        1e-8,
	}
}

func (c MomentumConfig) validate() error {
	if c.Lookback < 2 {
		return fmt.Errorf("%w: lookback must be >= 2, got %d", ErrInvalidParams, c.Lookback)
	}
	if c.MinLookback < c.Lookback-1 {
		return fmt.Errorf("%w: min_lookback %d leaves window before the first row", ErrInvalidParams, c.MinLookback)
	}
	if c.RebalancePeriod < 1 || c.TopK < 1 {
		return fmt.Errorf("%w: rebalance_period and top_k must be >= 1", ErrInvalidParams)
	}
	if !(c.VolFloor > 0) {
		return fmt.Errorf("%w: vol_floor must be > 0", ErrInvalidParams)
	}
	return nil
}

// MomentumEngine implements absolute-momentum filtering, risk-adjusted
// ranking and inverse-volatility weighting.
// ⭐ SSOT: 모멘텀 로테이션 비중 계산은 여기서만
type MomentumEngine struct {
	config MomentumConfig
	logger *logger.Logger
}

// NewMomentumEngine creates a momentum engine
func NewMomentumEngine(config MomentumConfig, log *logger.Logger) *MomentumEngine {
	if log == nil {
		log = logger.Nop()
	}
	return &MomentumEngine{
		config: config,
		logger: log.WithComponent("momentum"),
	}
}

// Name returns the engine identifier
func (e *MomentumEngine) Name() string { return "momentum" }

type candidate struct {
	col      int
	momentum float64
	vol      float64
	score    float64
}

// CalculateWeights computes a weights table for prices.
// Rebalance rows hold a fresh allocation (or all zeros when no asset has
// positive momentum); other rows carry the previous allocation forward.
func (e *MomentumEngine) CalculateWeights(prices *contracts.Frame, exclude string) (*contracts.Frame, error) {
	if err := e.config.validate(); err != nil {
		return nil, err
	}
	if err := prices.Validate(); err != nil {
		return nil, fmt.Errorf("momentum weights: %w", err)
	}

	returns := prices.PctChange()
	assets := assetColumns(prices, exclude)
	weights := contracts.NewFrame(prices.Dates, prices.Columns)

	cfg := e.config
	window := make([]float64, cfg.Lookback)
	rebalances := 0

	for i := 0; i < prices.NRows(); i++ {
		// 1. 데이터 길이 확인
		if i < cfg.MinLookback {
			continue
		}
		// 2. 리밸런싱 날만 실행
		if i%cfg.RebalancePeriod != 0 {
			continue
		}

		// 3. 수익률 윈도우 [i-lookback+1, i]
		start := i - cfg.Lookback + 1
		candidates := make([]candidate, 0, len(assets))
		for _, j := range assets {
			for k := range window {
				window[k] = returns.Values[start+k][j]
			}
			mom := cumulativeReturn(window)
			// 4. 절대 모멘텀 필터
			if !(mom > 0) {
				continue
			}
			vol := stat.StdDev(window, nil)
			candidates = append(candidates, candidate{
				col:      j,
				momentum: mom,
				vol:      vol,
				score:    mom / vol,
			})
		}

		row := make([]float64, prices.NCols())
		rebalances++

		if len(candidates) == 0 {
			e.logger.WithField("date", prices.Dates[i].Format(contracts.DateLayout)).
				Debug("No asset with positive momentum, holding nothing")
			if err := weights.SetRow(i, row); err != nil {
				return nil, err
			}
			continue
		}

		// 5. 위험조정 수익률 순위 (동점은 컬럼 순서 유지)
		sort.SliceStable(candidates, func(a, b int) bool {
			return scoreBefore(candidates[a].score, candidates[b].score)
		})
		selected := candidates[:min(cfg.TopK, len(candidates))]

		// 6. 역변동성 비중
		var total float64
		for _, c := range selected {
			total += 1.0 / (c.vol + cfg.VolFloor)
		}
		for _, c := range selected {
			row[c.col] = (1.0 / (c.vol + cfg.VolFloor)) / total
		}

		if err := weights.SetRow(i, row); err != nil {
			return nil, err
		}

		e.logger.WithFields(map[string]interface{}{
			"date":     prices.Dates[i].Format(contracts.DateLayout),
			"selected": len(selected),
			"eligible": len(candidates),
		}).Debug("Rebalanced")
	}

	weights.FFill().FillNA(0)

	e.logger.WithFields(map[string]interface{}{
		"rows":       weights.NRows(),
		"rebalances": rebalances,
	}).Info("Momentum weights calculated")

	return weights, nil
}

// cumulativeReturn returns Π(1+r) − 1
func cumulativeReturn(window []float64) float64 {
	growth := 1.0
	for _, r := range window {
		growth *= 1 + r
	}
	return growth - 1
}

// scoreBefore orders scores descending with NaN last
func scoreBefore(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}
