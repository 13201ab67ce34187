package dto

import (
	"encoding/json"
	"time"
)

// PriceBar is one OHLCV bar.
type PriceBar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// PriceSeries is the ordered bar history for one subject.
type PriceSeries struct {
	Subject SubjectKey `json:"subject"`
	Name    string     `json:"name"`
	Bars    []PriceBar `json:"bars"`
}

// Empty reports whether the series carries no usable bars.
func (s *PriceSeries) Empty() bool {
	return s == nil || len(s.Bars) == 0
}

// GetPriceSeriesParam selects the price history to fetch.
type GetPriceSeriesParam struct {
	Subject  SubjectKey
	Lookback string
	Interval string
}

// ChartResponse mirrors the chart API response envelope.
type ChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				LongName           string  `json:"longName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// QuoteSummaryResponse mirrors the fundamentals API response envelope.
type QuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			FinancialData        map[string]RawValue `json:"financialData"`
			DefaultKeyStatistics map[string]RawValue `json:"defaultKeyStatistics"`
			SummaryDetail        map[string]RawValue `json:"summaryDetail"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// RawValue is the {raw, fmt} wrapper the fundamentals API uses for
// numeric fields; non-numeric fields unmarshal to a zero Raw.
type RawValue struct {
	Raw float64 `json:"raw"`
}

// UnmarshalJSON tolerates the three shapes the API mixes into one
// module: {raw, fmt} objects, bare numbers, and non-numeric values.
func (v *RawValue) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Raw float64 `json:"raw"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		v.Raw = wrapped.Raw
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		v.Raw = n
	}
	return nil
}
