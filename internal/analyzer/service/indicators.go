package service

import (
	"math"

	"golang-stock-analyzer/internal/analyzer/dto"
)

// Indicator label values carried in TechnicalAnalysis.
const (
	TrendBullish  = "bullish"
	TrendBearish  = "bearish"
	TrendSideways = "sideways"

	MACDGoldenCross = "golden_cross"
	MACDDeathCross  = "death_cross"
	MACDNeutral     = "neutral"

	VolumeHighUp   = "high_volume_up"
	VolumeHighDown = "high_volume_down"
	VolumeLow      = "low_volume"
	VolumeModerate = "moderate"

	statusInsufficient = "insufficient_data"
)

// ComputeTechnicalAnalysis derives the indicator summary from a price
// series. Missing history degrades individual indicators to neutral
// defaults instead of failing the job.
func ComputeTechnicalAnalysis(series *dto.PriceSeries) dto.TechnicalAnalysis {
	if series.Empty() {
		return defaultTechnicalAnalysis()
	}

	closes := make([]float64, len(series.Bars))
	volumes := make([]float64, len(series.Bars))
	for i, bar := range series.Bars {
		closes[i] = bar.Close
		volumes[i] = bar.Volume
	}

	ta := dto.TechnicalAnalysis{
		MA5:  rollingMean(closes, 5),
		MA20: rollingMean(closes, 20),
		MA60: rollingMean(closes, 60),
		RSI:  rsi(closes, 14),
	}

	latest := closes[len(closes)-1]
	ma10 := rollingMean(closes, 10)
	switch {
	case latest > ta.MA5 && ta.MA5 > ma10 && ma10 > ta.MA20:
		ta.MATrend = TrendBullish
	case latest < ta.MA5 && ta.MA5 < ma10 && ma10 < ta.MA20:
		ta.MATrend = TrendBearish
	default:
		ta.MATrend = TrendSideways
	}

	ta.MACD, ta.MACDSignal = macdSignal(closes)
	ta.BBPosition = bollingerPosition(closes)
	ta.VolumeStatus = volumeStatus(closes, volumes)

	return ta
}

// ComputePriceInfo extracts the summary price fields from a series.
func ComputePriceInfo(series *dto.PriceSeries) dto.PriceInfo {
	if series.Empty() {
		return dto.PriceInfo{VolumeRatio: 1.0}
	}

	bars := series.Bars
	latest := bars[len(bars)-1]
	info := dto.PriceInfo{
		CurrentPrice: latest.Close,
		VolumeRatio:  1.0,
	}

	var volumeSum float64
	for _, bar := range bars {
		if bar.High > info.PeriodHigh {
			info.PeriodHigh = bar.High
		}
		if bar.Low > 0 && (info.PeriodLow == 0 || bar.Low < info.PeriodLow) {
			info.PeriodLow = bar.Low
		}
		volumeSum += bar.Volume
	}
	info.AvgVolume = volumeSum / float64(len(bars))

	if len(bars) >= 2 {
		prev := bars[len(bars)-2].Close
		if prev > 0 {
			info.PriceChange = (latest.Close - prev) / prev * 100
		}
	}

	// Recent-5 volume against the period average.
	if len(bars) >= 5 && info.AvgVolume > 0 {
		var recent float64
		for _, bar := range bars[len(bars)-5:] {
			recent += bar.Volume
		}
		info.VolumeRatio = (recent / 5) / info.AvgVolume
	}

	// Standard deviation of the last 20 daily returns, in percent.
	if len(bars) >= 21 {
		closes := make([]float64, 0, 21)
		for _, bar := range bars[len(bars)-21:] {
			closes = append(closes, bar.Close)
		}
		returns := make([]float64, 0, 20)
		for i := 1; i < len(closes); i++ {
			if closes[i-1] > 0 {
				returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
			}
		}
		info.Volatility = stdDev(returns) * 100
	}

	return info
}

func defaultTechnicalAnalysis() dto.TechnicalAnalysis {
	return dto.TechnicalAnalysis{
		MATrend:      statusInsufficient,
		RSI:          50.0,
		MACDSignal:   statusInsufficient,
		BBPosition:   0.5,
		VolumeStatus: statusInsufficient,
	}
}

// rollingMean averages the last window values, or all of them when the
// series is shorter than the window.
func rollingMean(values []float64, window int) float64 {
	if len(values) == 0 {
		return 0
	}
	if window > len(values) {
		window = len(values)
	}
	var sum float64
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	return sum / float64(window)
}

func rsi(closes []float64, window int) float64 {
	if len(closes) < 2 {
		return 50.0
	}
	start := len(closes) - window - 1
	if start < 0 {
		start = 0
	}
	var gain, loss float64
	var n int
	for i := start + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
		n++
	}
	if n == 0 || loss == 0 {
		if gain > 0 {
			return 100.0
		}
		return 50.0
	}
	rs := (gain / float64(n)) / (loss / float64(n))
	return 100 - 100/(1+rs)
}

// macdSignal returns the MACD histogram value and the cross signal
// derived from its last two points.
func macdSignal(closes []float64) (float64, string) {
	if len(closes) < 2 {
		return 0, statusInsufficient
	}

	ema12 := ema(closes, 12)
	ema26 := ema(closes, 26)
	macdLine := make([]float64, len(closes))
	for i := range closes {
		macdLine[i] = ema12[i] - ema26[i]
	}
	signalLine := ema(macdLine, 9)

	current := macdLine[len(macdLine)-1] - signalLine[len(signalLine)-1]
	prev := macdLine[len(macdLine)-2] - signalLine[len(signalLine)-2]

	switch {
	case current > prev && current > 0:
		return current, MACDGoldenCross
	case current < prev && current < 0:
		return current, MACDDeathCross
	default:
		return current, MACDNeutral
	}
}

func ema(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// bollingerPosition places the latest close within the 20-period band,
// 0 at the lower band and 1 at the upper.
func bollingerPosition(closes []float64) float64 {
	window := 20
	if window > len(closes) {
		window = len(closes)
	}
	recent := closes[len(closes)-window:]
	middle := rollingMean(recent, window)
	std := stdDevAround(recent, middle)

	upper := middle + 2*std
	lower := middle - 2*std
	if upper <= lower {
		return 0.5
	}
	pos := (closes[len(closes)-1] - lower) / (upper - lower)
	if math.IsNaN(pos) || math.IsInf(pos, 0) {
		return 0.5
	}
	return pos
}

func volumeStatus(closes, volumes []float64) string {
	if len(volumes) == 0 {
		return statusInsufficient
	}
	window := 20
	if window > len(volumes) {
		window = len(volumes)
	}
	avg := rollingMean(volumes, window)
	recent := volumes[len(volumes)-1]

	var priceChange float64
	if len(closes) >= 2 && closes[len(closes)-2] > 0 {
		priceChange = (closes[len(closes)-1] - closes[len(closes)-2]) / closes[len(closes)-2] * 100
	}

	switch {
	case avg > 0 && recent > avg*1.5 && priceChange > 0:
		return VolumeHighUp
	case avg > 0 && recent > avg*1.5:
		return VolumeHighDown
	case avg > 0 && recent < avg*0.5:
		return VolumeLow
	default:
		return VolumeModerate
	}
}

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return stdDevAround(values, sum/float64(len(values)))
}

func stdDevAround(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
