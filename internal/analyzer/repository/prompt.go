package repository

import (
	"fmt"
	"sort"
	"strings"

	"golang-stock-analyzer/internal/analyzer/dto"
)

func BuildNarrativePrompt(req *dto.NarrativeRequest) string {
	var indicatorBuilder strings.Builder
	writeFloatMap(&indicatorBuilder, req.FundamentalData.FinancialIndicators)
	writeFloatMap(&indicatorBuilder, req.FundamentalData.Valuation)

	promptTemplate := `You are a senior equity analyst. Write a concise investment analysis for the stock below.

Stock: %s (%s), market: %s
Current price: %.2f (change %.2f%%)
Period high/low: %.2f / %.2f
Volatility: %.2f%%

Technical indicators:
- MA trend: %s (MA5 %.2f, MA20 %.2f, MA60 %.2f)
- RSI(14): %.1f
- MACD: %s (%.4f)
- Bollinger band position: %.2f
- Volume: %s

Fundamentals:
%s
News sentiment: %.1f overall (positive %d, negative %d, neutral %d of %d analyzed)

Computed scores (0-100): technical %.1f, fundamental %.1f, sentiment %.1f, comprehensive %.1f
Recommendation: %s

Write 3 short paragraphs: (1) current technical picture, (2) fundamental health and valuation, (3) outlook consistent with the recommendation above. Plain prose, no headings, no bullet lists, no disclaimers.`

	return fmt.Sprintf(promptTemplate,
		req.StockName, req.StockCode, req.Market,
		req.PriceInfo.CurrentPrice, req.PriceInfo.PriceChange,
		req.PriceInfo.PeriodHigh, req.PriceInfo.PeriodLow,
		req.PriceInfo.Volatility,
		req.TechnicalAnalysis.MATrend, req.TechnicalAnalysis.MA5, req.TechnicalAnalysis.MA20, req.TechnicalAnalysis.MA60,
		req.TechnicalAnalysis.RSI,
		req.TechnicalAnalysis.MACDSignal, req.TechnicalAnalysis.MACD,
		req.TechnicalAnalysis.BBPosition,
		req.TechnicalAnalysis.VolumeStatus,
		indicatorBuilder.String(),
		req.SentimentAnalysis.OverallSentiment,
		req.SentimentAnalysis.PositiveCount, req.SentimentAnalysis.NegativeCount, req.SentimentAnalysis.NeutralCount,
		req.SentimentAnalysis.TotalAnalyzed,
		req.Scores.Technical, req.Scores.Fundamental, req.Scores.Sentiment, req.Scores.Comprehensive,
		req.Recommendation,
	)
}

func writeFloatMap(b *strings.Builder, m map[string]float64) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("- %s: %.4f\n", k, m[k]))
	}
}
