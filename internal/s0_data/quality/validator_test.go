package quality

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
)

func testFrame(rows int, columns []string) *contracts.Frame {
	dates := make([]time.Time, rows)
	start := time.Date(2019, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	f := contracts.NewFrame(dates, columns)
	for i := range f.Values {
		for j := range columns {
			f.Values[i][j] = 100 + float64(i)
		}
	}
	return f
}

func TestQualityGate_Check(t *testing.T) {
	frame := testFrame(200, []string{"SPY", "XLC", "XLRE"})

	// XLC 상장 전 구간 (첫 50행 없음)
	for i := 0; i < 50; i++ {
		frame.Values[i][1] = math.NaN()
	}
	// XLRE 결측 20행
	for i := 100; i < 120; i++ {
		frame.Values[i][2] = math.NaN()
	}

	gate := NewQualityGate(DefaultConfig())
	snapshot, err := gate.Check(frame)
	require.NoError(t, err)

	assert.Equal(t, 3, snapshot.TotalTickers)
	assert.Equal(t, 2, snapshot.ValidTickers)
	assert.Equal(t, 1.0, snapshot.Coverage["SPY"])
	assert.Equal(t, 1.0, snapshot.Coverage["XLC"], "late listing is not a gap")
	assert.InDelta(t, 0.9, snapshot.Coverage["XLRE"], 1e-12)
	assert.Equal(t, "2019-02-21", snapshot.FirstObserved["XLC"])
	assert.InDelta(t, (2.9/3)*(2.0/3), snapshot.QualityScore, 1e-12)
	assert.False(t, snapshot.Passed)
	assert.Equal(t, frame.Dates[0], snapshot.From)
	assert.Equal(t, frame.Dates[199], snapshot.To)
}

func TestQualityGate_Passed(t *testing.T) {
	tests := []struct {
		name   string
		rows   int
		config Config
		late   bool
		passed bool
	}{
		{"complete", 200, DefaultConfig(), false, true},
		{"too short", 100, DefaultConfig(), false, false},
		{"late start allowed", 200, DefaultConfig(), true, true},
		{"late start required", 200, Config{MinCoverage: 0.95, MinScore: 0.7, MinRows: 127, RequireStart: true}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := testFrame(tt.rows, []string{"SPY", "XLK"})
			if tt.late {
				frame.Values[0][1] = math.NaN()
			}
			snapshot, err := NewQualityGate(tt.config).Check(frame)
			require.NoError(t, err)
			assert.Equal(t, tt.passed, snapshot.Passed)
		})
	}
}

func TestQualityGate_MissingTicker(t *testing.T) {
	frame := testFrame(130, []string{"SPY", "XLK"})
	for i := range frame.Values {
		frame.Values[i][1] = math.NaN()
	}

	snapshot, err := NewQualityGate(DefaultConfig()).Check(frame)
	require.NoError(t, err)
	assert.Equal(t, 0.0, snapshot.Coverage["XLK"])
	assert.NotContains(t, snapshot.FirstObserved, "XLK")
	assert.Equal(t, 1, snapshot.ValidTickers)
	assert.False(t, snapshot.Passed)
}

func TestQualityGate_EmptyRow(t *testing.T) {
	frame := testFrame(200, []string{"SPY", "XLK"})
	frame.Values[150] = []float64{math.NaN(), math.NaN()}

	snapshot, err := NewQualityGate(DefaultConfig()).Check(frame)
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.EmptyRows)
	assert.Equal(t, 2, snapshot.ValidTickers, "one blank date stays within coverage")
	assert.False(t, snapshot.Passed)

	snapshot, err = NewQualityGate(DefaultConfig()).Check(testFrame(200, []string{"SPY", "XLK"}))
	require.NoError(t, err)
	assert.Zero(t, snapshot.EmptyRows)
	assert.True(t, snapshot.Passed)
}

func TestQualityGate_EmptyFrame(t *testing.T) {
	_, err := NewQualityGate(DefaultConfig()).Check(&contracts.Frame{})
	assert.ErrorIs(t, err, contracts.ErrEmptyFrame)
}
