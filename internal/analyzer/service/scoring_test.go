package service

import (
	"testing"

	"golang-stock-analyzer/internal/analyzer/dto"

	"github.com/stretchr/testify/assert"
)

func defaultScorer() *Scorer {
	return NewScorer(dto.ScoreWeights{Technical: 0.4, Fundamental: 0.4, Sentiment: 0.2})
}

func TestTechnicalScoreBullishSetup(t *testing.T) {
	s := defaultScorer()
	score := s.TechnicalScore(dto.TechnicalAnalysis{
		MATrend:      TrendBullish,
		RSI:          55,
		MACDSignal:   MACDGoldenCross,
		BBPosition:   0.5,
		VolumeStatus: VolumeHighUp,
	})
	// 50 +20 +10 +15 +5 +10
	assert.Equal(t, 100.0, score)
}

func TestTechnicalScoreBearishSetupClampsAtZero(t *testing.T) {
	s := defaultScorer()
	score := s.TechnicalScore(dto.TechnicalAnalysis{
		MATrend:      TrendBearish,
		RSI:          85,
		MACDSignal:   MACDDeathCross,
		BBPosition:   0.95,
		VolumeStatus: VolumeHighDown,
	})
	// 50 -20 -5 -15 -5 -10 = -5, clamped
	assert.Equal(t, 0.0, score)
}

func TestTechnicalScoreNeutralDefaults(t *testing.T) {
	s := defaultScorer()
	score := s.TechnicalScore(dto.TechnicalAnalysis{
		MATrend:      TrendSideways,
		RSI:          50,
		MACDSignal:   MACDNeutral,
		BBPosition:   0.5,
		VolumeStatus: VolumeModerate,
	})
	// 50 +10 (rsi in range) +5 (bb mid band)
	assert.Equal(t, 65.0, score)
}

func TestFundamentalScoreRichData(t *testing.T) {
	s := defaultScorer()
	indicators := map[string]float64{
		"roe": 0.22, "roa": 0.08, "gross_margin": 0.4, "operating_margin": 0.3,
		"profit_margin": 0.25, "revenue_growth": 0.1, "earnings_growth": 0.12,
		"current_ratio": 1.5, "debt_to_equity": 20, "free_cash_flow": 1e10,
	}
	score := s.FundamentalScore(dto.FundamentalData{
		FinancialIndicators: indicators,
		Valuation:           map[string]float64{"pe_ratio": 15, "pb_ratio": 3},
		HasForecast:         true,
	})
	// 50 +15 (coverage) +10 (roe 22%) +5 (low debt) +10 (pe<20) +10 (valuation) +10 (forecast) = 100
	assert.Equal(t, 100.0, score)
}

func TestFundamentalScoreEmptyDataIsNeutral(t *testing.T) {
	s := defaultScorer()
	score := s.FundamentalScore(dto.FundamentalData{
		FinancialIndicators: map[string]float64{},
		Valuation:           map[string]float64{},
	})
	assert.Equal(t, 50.0, score)
}

func TestSentimentScoreMapping(t *testing.T) {
	s := defaultScorer()

	neutral := s.SentimentScore(dto.SentimentAnalysis{})
	assert.Equal(t, 50.0, neutral)

	positive := s.SentimentScore(dto.SentimentAnalysis{
		OverallSentiment: 1.0,
		ConfidenceScore:  1.0,
		TotalAnalyzed:    200,
	})
	assert.Equal(t, 100.0, positive, "overshoot must clamp to 100")

	negative := s.SentimentScore(dto.SentimentAnalysis{OverallSentiment: -1.0})
	assert.Equal(t, 0.0, negative)
}

func TestComprehensiveScoreWeights(t *testing.T) {
	s := defaultScorer()
	score := s.ComprehensiveScore(dto.ScoreSet{Technical: 100, Fundamental: 50, Sentiment: 0})
	// 100*0.4 + 50*0.4 + 0*0.2
	assert.InDelta(t, 60.0, score, 1e-9)
}

func TestComprehensiveScoreClampsSyntheticInputs(t *testing.T) {
	s := defaultScorer()
	assert.Equal(t, 100.0, s.ComprehensiveScore(dto.ScoreSet{Technical: 150, Fundamental: 150, Sentiment: 150}))
	assert.Equal(t, 0.0, s.ComprehensiveScore(dto.ScoreSet{Technical: -20, Fundamental: -20, Sentiment: -20}))
}

func TestRecommendationThresholds(t *testing.T) {
	s := defaultScorer()
	tests := []struct {
		name   string
		scores dto.ScoreSet
		want   string
	}{
		{
			name:   "strong buy needs high components",
			scores: dto.ScoreSet{Comprehensive: 85, Technical: 80, Fundamental: 80, Sentiment: 70},
			want:   RecommendStrongBuy,
		},
		{
			name:   "high comprehensive with weak components",
			scores: dto.ScoreSet{Comprehensive: 82, Technical: 70, Fundamental: 90, Sentiment: 70},
			want:   RecommendBuy,
		},
		{
			name:   "mid range with good sentiment",
			scores: dto.ScoreSet{Comprehensive: 70, Technical: 70, Fundamental: 70, Sentiment: 65},
			want:   RecommendBuy,
		},
		{
			name:   "mid range with weak sentiment",
			scores: dto.ScoreSet{Comprehensive: 70, Technical: 70, Fundamental: 70, Sentiment: 40},
			want:   RecommendCautiousBuy,
		},
		{
			name:   "hold band",
			scores: dto.ScoreSet{Comprehensive: 50},
			want:   RecommendHold,
		},
		{
			name:   "reduce band",
			scores: dto.ScoreSet{Comprehensive: 35},
			want:   RecommendReduce,
		},
		{
			name:   "sell band",
			scores: dto.ScoreSet{Comprehensive: 20},
			want:   RecommendSell,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Recommendation(tt.scores))
		})
	}
}

func TestAnalyzeSentimentCountsAndOverall(t *testing.T) {
	news := []dto.NewsItem{
		{Title: "Shares surge after strong earnings beat"},
		{Title: "Analysts downgrade on weak outlook"},
		{Title: "Company schedules annual meeting"},
	}

	sa := AnalyzeSentiment(news)
	assert.Equal(t, 3, sa.TotalAnalyzed)
	assert.Equal(t, 1, sa.PositiveCount)
	assert.Equal(t, 1, sa.NegativeCount)
	assert.Equal(t, 1, sa.NeutralCount)
	assert.InDelta(t, 0.0, sa.OverallSentiment, 1e-9)
	assert.InDelta(t, 3.0/50.0, sa.ConfidenceScore, 1e-9)
}

func TestAnalyzeSentimentEmpty(t *testing.T) {
	sa := AnalyzeSentiment(nil)
	assert.Zero(t, sa.TotalAnalyzed)
	assert.Zero(t, sa.OverallSentiment)
}

func TestAssessDataQuality(t *testing.T) {
	full := map[string]float64{}
	for i := 0; i < 10; i++ {
		full[string(rune('a'+i))] = 1
	}

	complete := AssessDataQuality(dto.FundamentalData{FinancialIndicators: full}, 12)
	assert.Equal(t, QualityComplete, complete.AnalysisCompleteness)
	assert.Equal(t, 10, complete.FinancialIndicatorsCount)
	assert.Equal(t, 12, complete.TotalNewsCount)

	partial := AssessDataQuality(dto.FundamentalData{FinancialIndicators: map[string]float64{"roe": 0.1}}, 0)
	assert.Equal(t, QualityPartial, partial.AnalysisCompleteness)
}

func TestFallbackNarrativeMentionsKeyFacts(t *testing.T) {
	narrative := FallbackNarrative(&dto.NarrativeRequest{
		StockCode: "AAPL",
		StockName: "Apple Inc.",
		Market:    dto.MarketUSStock,
		PriceInfo: dto.PriceInfo{CurrentPrice: 180.5, PriceChange: 1.2},
		TechnicalAnalysis: dto.TechnicalAnalysis{
			MATrend: TrendBullish, RSI: 61.3, MACDSignal: MACDGoldenCross,
		},
		SentimentAnalysis: dto.SentimentAnalysis{TotalAnalyzed: 8, OverallSentiment: 0.2},
		Scores:            dto.ScoreSet{Technical: 80, Fundamental: 70, Sentiment: 60, Comprehensive: 73},
		Recommendation:    RecommendBuy,
	})

	assert.Contains(t, narrative, "Apple Inc.")
	assert.Contains(t, narrative, "AAPL")
	assert.Contains(t, narrative, "180.50")
	assert.Contains(t, narrative, "buy")
	assert.NotEmpty(t, narrative)
}
