package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoricalVaR(t *testing.T) {
	// 20개 수익률: -0.10, -0.05, 그 외 0.01
	returns := make([]float64, 20)
	for i := range returns {
		returns[i] = 0.01
	}
	returns[3] = -0.05
	returns[11] = -0.10

	got, err := HistoricalVaR(returns, 0.95)
	require.NoError(t, err)

	// floor(0.05·20) = 1 → sorted[1] = -0.05
	assert.InDelta(t, 0.05, got.VaR, 1e-12)
	assert.InDelta(t, 0.075, got.CVaR, 1e-12)
	assert.Equal(t, 0.95, got.Confidence)
	assert.Equal(t, 0.01, returns[0], "input untouched")
}

func TestHistoricalVaR_NoLosses(t *testing.T) {
	got, err := HistoricalVaR([]float64{0.01, 0.02, 0.03}, 0.99)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.VaR)
	assert.Equal(t, 0.0, got.CVaR)

	got, err = HistoricalVaR(nil, 0.95)
	require.NoError(t, err)
	assert.Equal(t, VaRResult{Confidence: 0.95}, got)
}

func TestParametricVaR(t *testing.T) {
	returns := []float64{0.01, -0.01, 0.01, -0.01}

	got, err := ParametricVaR(returns, 0.95)
	require.NoError(t, err)

	// μ = 0, σ = sqrt(4·0.0001/3)
	assert.InDelta(t, 1.6448536*0.0115470, got.VaR, 1e-6)
	assert.Greater(t, got.CVaR, got.VaR)
}

func TestVaR_InvalidConfidence(t *testing.T) {
	for _, c := range []float64{0, 1, -0.5, 1.5} {
		_, err := HistoricalVaR([]float64{0.01}, c)
		assert.ErrorIs(t, err, ErrInvalidConfidence)
		_, err = ParametricVaR([]float64{0.01}, c)
		assert.ErrorIs(t, err, ErrInvalidConfidence)
	}
}
