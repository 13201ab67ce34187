package service

import (
	"fmt"
	"strings"

	"golang-stock-analyzer/internal/analyzer/dto"
)

// Recommendation labels, ordered from strongest to weakest.
const (
	RecommendStrongBuy   = "strong_buy"
	RecommendBuy         = "buy"
	RecommendCautiousBuy = "cautious_buy"
	RecommendHold        = "hold"
	RecommendReduce      = "reduce"
	RecommendSell        = "sell"
)

const (
	QualityComplete = "complete"
	QualityPartial  = "partial"
)

var positiveWords = []string{
	"buy", "strong", "growth", "profit", "gain", "rise", "bull", "positive",
	"upgrade", "outperform", "beat", "exceed", "surge", "rally", "boom",
	"record", "soar", "momentum", "optimistic", "breakthrough",
}

var negativeWords = []string{
	"sell", "weak", "decline", "loss", "bear", "negative", "downgrade",
	"underperform", "miss", "fall", "drop", "crash", "plunge", "slump",
	"lawsuit", "recall", "warning", "bankruptcy", "layoff",
}

// Scorer turns stage outputs into the four scores and the
// recommendation. All scores are clamped to [0, 100]; every scoring
// path degrades to the neutral 50 rather than erroring.
type Scorer struct {
	weights dto.ScoreWeights
}

func NewScorer(weights dto.ScoreWeights) *Scorer {
	return &Scorer{weights: weights}
}

func (s *Scorer) Weights() dto.ScoreWeights {
	return s.weights
}

// TechnicalScore starts at the neutral 50 and moves by fixed steps per
// indicator signal.
func (s *Scorer) TechnicalScore(ta dto.TechnicalAnalysis) float64 {
	score := 50.0

	switch ta.MATrend {
	case TrendBullish:
		score += 20
	case TrendBearish:
		score -= 20
	}

	switch {
	case ta.RSI >= 30 && ta.RSI <= 70:
		score += 10
	case ta.RSI < 30:
		score += 5
	case ta.RSI > 70:
		score -= 5
	}

	switch ta.MACDSignal {
	case MACDGoldenCross:
		score += 15
	case MACDDeathCross:
		score -= 15
	}

	switch {
	case ta.BBPosition >= 0.2 && ta.BBPosition <= 0.8:
		score += 5
	case ta.BBPosition < 0.2:
		score += 10
	case ta.BBPosition > 0.8:
		score -= 5
	}

	switch ta.VolumeStatus {
	case VolumeHighUp:
		score += 10
	case VolumeHighDown:
		score -= 10
	}

	return clampScore(score)
}

// FundamentalScore rewards indicator coverage, profitability,
// reasonable valuation and low leverage.
func (s *Scorer) FundamentalScore(fd dto.FundamentalData) float64 {
	score := 50.0

	if len(fd.FinancialIndicators) >= 10 {
		score += 15

		// roe comes through as a fraction.
		roe := fd.FinancialIndicators["roe"] * 100
		switch {
		case roe > 15:
			score += 10
		case roe > 10:
			score += 5
		case roe < 5:
			score -= 5
		}

		debt := fd.FinancialIndicators["debt_to_equity"]
		switch {
		case debt > 0 && debt < 30:
			score += 5
		case debt > 70:
			score -= 10
		}
	}

	pe := fd.Valuation["pe_ratio"]
	switch {
	case pe > 0 && pe < 20:
		score += 10
	case pe > 50:
		score -= 5
	}

	if len(fd.Valuation) > 0 {
		score += 10
	}
	if fd.HasForecast {
		score += 10
	}

	return clampScore(score)
}

// SentimentScore maps overall sentiment from [-1, 1] onto [0, 100]
// and bumps it for confidence and coverage.
func (s *Scorer) SentimentScore(sa dto.SentimentAnalysis) float64 {
	base := (sa.OverallSentiment + 1) * 50
	confidenceAdjustment := sa.ConfidenceScore * 10
	newsAdjustment := minFloat(float64(sa.TotalAnalyzed)/100, 1.0) * 10
	return clampScore(base + confidenceAdjustment + newsAdjustment)
}

// ComprehensiveScore is the weighted blend of the three components.
func (s *Scorer) ComprehensiveScore(scores dto.ScoreSet) float64 {
	comprehensive := scores.Technical*s.weights.Technical +
		scores.Fundamental*s.weights.Fundamental +
		scores.Sentiment*s.weights.Sentiment
	return clampScore(comprehensive)
}

// Recommendation derives the action label from the score set.
func (s *Scorer) Recommendation(scores dto.ScoreSet) string {
	switch {
	case scores.Comprehensive >= 80:
		if scores.Technical >= 75 && scores.Fundamental >= 75 {
			return RecommendStrongBuy
		}
		return RecommendBuy
	case scores.Comprehensive >= 65:
		if scores.Sentiment >= 60 {
			return RecommendBuy
		}
		return RecommendCautiousBuy
	case scores.Comprehensive >= 45:
		return RecommendHold
	case scores.Comprehensive >= 30:
		return RecommendReduce
	default:
		return RecommendSell
	}
}

// AnalyzeSentiment runs the lexicon scorer over headlines and bodies.
// Items without any sentiment word count as neutral.
func AnalyzeSentiment(news []dto.NewsItem) dto.SentimentAnalysis {
	sa := dto.SentimentAnalysis{}
	if len(news) == 0 {
		return sa
	}

	var sum float64
	for _, item := range news {
		text := strings.ToLower(item.Title + " " + item.Content)

		var pos, neg int
		for _, word := range positiveWords {
			if strings.Contains(text, word) {
				pos++
			}
		}
		for _, word := range negativeWords {
			if strings.Contains(text, word) {
				neg++
			}
		}

		var score float64
		if pos+neg > 0 {
			score = float64(pos-neg) / float64(pos+neg)
		}
		sum += score

		switch {
		case score > 0:
			sa.PositiveCount++
		case score < 0:
			sa.NegativeCount++
		default:
			sa.NeutralCount++
		}
		sa.TotalAnalyzed++
	}

	sa.OverallSentiment = sum / float64(sa.TotalAnalyzed)
	sa.ConfidenceScore = minFloat(float64(sa.TotalAnalyzed)/50, 1.0)
	return sa
}

// AssessDataQuality classifies how complete the retrieved inputs were.
func AssessDataQuality(fd dto.FundamentalData, newsCount int) dto.DataQuality {
	quality := dto.DataQuality{
		FinancialIndicatorsCount: len(fd.FinancialIndicators),
		TotalNewsCount:           newsCount,
		AnalysisCompleteness:     QualityPartial,
	}
	if len(fd.FinancialIndicators) >= 10 {
		quality.AnalysisCompleteness = QualityComplete
	}
	return quality
}

// FallbackNarrative builds a deterministic narrative from the computed
// stage outputs. It is used whenever the AI provider fails or returns
// nothing, so a job still completes with a readable report.
func FallbackNarrative(req *dto.NarrativeRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%s) trades at %.2f, %+.2f%% against the prior close. ",
		req.StockName, req.StockCode, req.PriceInfo.CurrentPrice, req.PriceInfo.PriceChange)

	switch req.TechnicalAnalysis.MATrend {
	case TrendBullish:
		b.WriteString("Moving averages are in a bullish alignment")
	case TrendBearish:
		b.WriteString("Moving averages are in a bearish alignment")
	default:
		b.WriteString("Moving averages show a sideways pattern")
	}
	fmt.Fprintf(&b, " with RSI at %.1f", req.TechnicalAnalysis.RSI)
	switch req.TechnicalAnalysis.MACDSignal {
	case MACDGoldenCross:
		b.WriteString(" and a bullish MACD crossover. ")
	case MACDDeathCross:
		b.WriteString(" and a bearish MACD crossover. ")
	default:
		b.WriteString(" and a flat MACD. ")
	}

	fmt.Fprintf(&b, "Fundamental coverage includes %d financial indicators",
		len(req.FundamentalData.FinancialIndicators))
	if pe, ok := req.FundamentalData.Valuation["pe_ratio"]; ok && pe > 0 {
		fmt.Fprintf(&b, " with a trailing P/E of %.1f", pe)
	}
	b.WriteString(". ")

	if req.SentimentAnalysis.TotalAnalyzed > 0 {
		fmt.Fprintf(&b, "News flow is %s across %d recent articles. ",
			sentimentLabel(req.SentimentAnalysis.OverallSentiment), req.SentimentAnalysis.TotalAnalyzed)
	} else {
		b.WriteString("No recent news coverage was found. ")
	}

	fmt.Fprintf(&b, "Composite score %.1f of 100 (technical %.1f, fundamental %.1f, sentiment %.1f); overall assessment: %s.",
		req.Scores.Comprehensive, req.Scores.Technical, req.Scores.Fundamental, req.Scores.Sentiment,
		strings.ReplaceAll(req.Recommendation, "_", " "))

	return b.String()
}

func sentimentLabel(overall float64) string {
	switch {
	case overall > 0.3:
		return "strongly positive"
	case overall > 0.1:
		return "mildly positive"
	case overall > -0.1:
		return "neutral"
	case overall > -0.3:
		return "mildly negative"
	default:
		return "strongly negative"
	}
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
