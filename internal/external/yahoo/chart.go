package yahoo

import (
	"fmt"
	"time"

	"github.com/2025-Fall-HW3/hw3-yschiu11/internal/contracts"
)

// chartResponse is the v8 chart API envelope
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		Currency  string `json:"currency"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// points pairs timestamps with adjusted closes, falling back to raw closes.
// Timestamps are shifted by the exchange offset before taking the calendar date.
func (r *chartResult) points(from, to time.Time) ([]contracts.PricePoint, error) {
	var closes []*float64
	switch {
	case len(r.Indicators.AdjClose) > 0:
		closes = r.Indicators.AdjClose[0].AdjClose
	case len(r.Indicators.Quote) > 0:
		closes = r.Indicators.Quote[0].Close
	}
	if len(r.Timestamp) > 0 && len(closes) != len(r.Timestamp) {
		return nil, fmt.Errorf("%d timestamps but %d closes", len(r.Timestamp), len(closes))
	}

	points := make([]contracts.PricePoint, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if closes[i] == nil {
			continue
		}
		date := contracts.NormalizeDate(time.Unix(ts+r.Meta.GMTOffset, 0).UTC())
		if !contracts.InRange(date, from, to) {
			continue
		}
		// 같은 날짜가 반복되면 (장중 마지막 틱) 뒤의 값을 사용
		if n := len(points); n > 0 && points[n-1].Date.Equal(date) {
			points[n-1].Close = *closes[i]
			continue
		}
		points = append(points, contracts.PricePoint{Date: date, Close: *closes[i]})
	}
	return points, nil
}
