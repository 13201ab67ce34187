package service

import (
	"testing"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"

	"github.com/stretchr/testify/assert"
)

func seriesFromCloses(closes []float64) *dto.PriceSeries {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	series := &dto.PriceSeries{
		Subject: dto.SubjectKey{Market: dto.MarketUSStock, Symbol: "TEST"},
		Name:    "Test Corp",
	}
	for i, c := range closes {
		series.Bars = append(series.Bars, dto.PriceBar{
			Timestamp: base.AddDate(0, 0, i),
			Open:      c,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    1000,
		})
	}
	return series
}

func risingCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return closes
}

func fallingCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}
	return closes
}

func TestComputeTechnicalAnalysisRisingTrend(t *testing.T) {
	ta := ComputeTechnicalAnalysis(seriesFromCloses(risingCloses(80)))

	assert.Equal(t, TrendBullish, ta.MATrend)
	assert.Greater(t, ta.RSI, 70.0, "steady gains push RSI high")
	assert.Greater(t, ta.MACD, 0.0)
	assert.Greater(t, ta.MA5, ta.MA20)
	assert.Greater(t, ta.MA20, ta.MA60)
	assert.Greater(t, ta.BBPosition, 0.8, "latest close sits near the upper band")
}

func TestComputeTechnicalAnalysisFallingTrend(t *testing.T) {
	ta := ComputeTechnicalAnalysis(seriesFromCloses(fallingCloses(80)))

	assert.Equal(t, TrendBearish, ta.MATrend)
	assert.Less(t, ta.RSI, 30.0)
	assert.Less(t, ta.MACD, 0.0)
	assert.Less(t, ta.BBPosition, 0.2)
}

func TestMACDSignalCrosses(t *testing.T) {
	// Flat history, then a sharp move: the histogram grows in the
	// direction of the move.
	up := make([]float64, 45)
	down := make([]float64, 45)
	for i := range up {
		up[i], down[i] = 100, 100
	}
	for i := 40; i < 45; i++ {
		up[i] = up[i-1] + 3
		down[i] = down[i-1] - 3
	}

	_, signal := macdSignal(up)
	assert.Equal(t, MACDGoldenCross, signal)

	_, signal = macdSignal(down)
	assert.Equal(t, MACDDeathCross, signal)

	_, signal = macdSignal([]float64{100})
	assert.Equal(t, statusInsufficient, signal)
}

func TestComputeTechnicalAnalysisEmptySeries(t *testing.T) {
	ta := ComputeTechnicalAnalysis(&dto.PriceSeries{})

	assert.Equal(t, statusInsufficient, ta.MATrend)
	assert.Equal(t, 50.0, ta.RSI)
	assert.Equal(t, 0.5, ta.BBPosition)
}

func TestComputePriceInfo(t *testing.T) {
	closes := []float64{100, 102, 101, 103, 104}
	info := ComputePriceInfo(seriesFromCloses(closes))

	assert.Equal(t, 104.0, info.CurrentPrice)
	assert.InDelta(t, (104.0-103.0)/103.0*100, info.PriceChange, 1e-9)
	assert.InDelta(t, 104*1.01, info.PeriodHigh, 1e-9)
	assert.InDelta(t, 100*0.99, info.PeriodLow, 1e-9)
	assert.InDelta(t, 1000.0, info.AvgVolume, 1e-9)
	assert.InDelta(t, 1.0, info.VolumeRatio, 1e-9)
}

func TestComputePriceInfoShortSeriesHasNoVolatility(t *testing.T) {
	info := ComputePriceInfo(seriesFromCloses([]float64{100, 101}))
	assert.Zero(t, info.Volatility)
}

func TestComputePriceInfoVolatilityOnLongSeries(t *testing.T) {
	info := ComputePriceInfo(seriesFromCloses(risingCloses(40)))
	assert.Greater(t, info.Volatility, 0.0)
}

func TestComputePriceInfoEmpty(t *testing.T) {
	info := ComputePriceInfo(&dto.PriceSeries{})
	assert.Zero(t, info.CurrentPrice)
	assert.Equal(t, 1.0, info.VolumeRatio)
}
