package contracts

import (
	"testing"
)

func TestDataQualitySnapshot_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		snapshot DataQualitySnapshot
		want     bool
	}{
		{
			name: "valid snapshot",
			snapshot: DataQualitySnapshot{
				TotalTickers: 12,
				ValidTickers: 11,
				QualityScore: 0.92,
				Coverage:     map[string]float64{"SPY": 1.0, "XLC": 0.8},
			},
			want: true,
		},
		{
			name: "low quality score",
			snapshot: DataQualitySnapshot{
				TotalTickers: 12,
				ValidTickers: 6,
				QualityScore: 0.5,
			},
			want: false,
		},
		{
			name: "no valid tickers",
			snapshot: DataQualitySnapshot{
				TotalTickers: 12,
				ValidTickers: 0,
				QualityScore: 0.8,
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snapshot.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDataQualitySnapshot_CoverageRate(t *testing.T) {
	snapshot := DataQualitySnapshot{
		Coverage: map[string]float64{
			"SPY":  1.0,
			"XLC":  0.5,
			"XLRE": 0.75,
		},
	}

	expected := (1.0 + 0.5 + 0.75) / 3
	if rate := snapshot.CoverageRate(); rate != expected {
		t.Errorf("CoverageRate() = %v, want %v", rate, expected)
	}

	empty := DataQualitySnapshot{}
	if rate := empty.CoverageRate(); rate != 0 {
		t.Errorf("CoverageRate() on empty = %v, want 0", rate)
	}
}
