package dto

import (
	"time"
)

// ScoreSet holds the four analysis scores, each clamped to [0, 100].
type ScoreSet struct {
	Technical     float64 `json:"technical"`
	Fundamental   float64 `json:"fundamental"`
	Sentiment     float64 `json:"sentiment"`
	Comprehensive float64 `json:"comprehensive"`
}

// ScoreWeights are the comprehensive-score weights; they sum to 1.0.
type ScoreWeights struct {
	Technical   float64 `json:"technical"`
	Fundamental float64 `json:"fundamental"`
	Sentiment   float64 `json:"sentiment"`
}

// PriceInfo summarizes the most recent trading data.
type PriceInfo struct {
	CurrentPrice float64 `json:"current_price"`
	PriceChange  float64 `json:"price_change"`
	PeriodHigh   float64 `json:"period_high"`
	PeriodLow    float64 `json:"period_low"`
	AvgVolume    float64 `json:"avg_volume"`
	VolumeRatio  float64 `json:"volume_ratio"`
	Volatility   float64 `json:"volatility"`
}

// TechnicalAnalysis holds the computed indicator summary.
type TechnicalAnalysis struct {
	MATrend      string  `json:"ma_trend"`
	MA5          float64 `json:"ma5"`
	MA20         float64 `json:"ma20"`
	MA60         float64 `json:"ma60"`
	RSI          float64 `json:"rsi"`
	MACDSignal   string  `json:"macd_signal"`
	MACD         float64 `json:"macd"`
	BBPosition   float64 `json:"bb_position"`
	VolumeStatus string  `json:"volume_status"`
}

// FundamentalData holds the fundamental indicators for one subject.
type FundamentalData struct {
	FinancialIndicators map[string]float64 `json:"financial_indicators"`
	Valuation           map[string]float64 `json:"valuation"`
	HasForecast         bool               `json:"has_forecast"`
}

// NewsItem is one retrieved news article.
type NewsItem struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Content     string    `json:"content,omitempty"`
}

// SentimentAnalysis summarizes news sentiment for one subject.
type SentimentAnalysis struct {
	OverallSentiment float64 `json:"overall_sentiment"`
	ConfidenceScore  float64 `json:"confidence_score"`
	PositiveCount    int     `json:"positive_count"`
	NegativeCount    int     `json:"negative_count"`
	NeutralCount     int     `json:"neutral_count"`
	TotalAnalyzed    int     `json:"total_analyzed"`
}

// DataQuality classifies how complete the retrieved inputs were.
type DataQuality struct {
	FinancialIndicatorsCount int    `json:"financial_indicators_count"`
	TotalNewsCount           int    `json:"total_news_count"`
	AnalysisCompleteness     string `json:"analysis_completeness"`
}

// PartialResult carries the identity and price fields that let clients
// render something before a job finishes.
type PartialResult struct {
	Type         string  `json:"type"`
	StockCode    string  `json:"stock_code"`
	StockName    string  `json:"stock_name"`
	CurrentPrice float64 `json:"current_price"`
	PriceChange  float64 `json:"price_change"`
}

// Report is the full structured result of one analysis job.
type Report struct {
	StockCode         string            `json:"stock_code"`
	StockName         string            `json:"stock_name"`
	Market            Market            `json:"market"`
	AnalysisDate      time.Time         `json:"analysis_date"`
	PriceInfo         PriceInfo         `json:"price_info"`
	TechnicalAnalysis TechnicalAnalysis `json:"technical_analysis"`
	FundamentalData   FundamentalData   `json:"fundamental_data"`
	SentimentAnalysis SentimentAnalysis `json:"sentiment_analysis"`
	Scores            ScoreSet          `json:"scores"`
	AnalysisWeights   ScoreWeights      `json:"analysis_weights"`
	Recommendation    string            `json:"recommendation"`
	Narrative         string            `json:"ai_analysis"`
	DataQuality       DataQuality       `json:"data_quality"`
}

// FailedSubject records one batch member that did not produce a report.
type FailedSubject struct {
	StockCode string `json:"stock_code"`
	Reason    string `json:"reason"`
}

// BatchResult aggregates a batch run: successful reports plus the
// roster of failed subjects. Partial success is a normal outcome.
type BatchResult struct {
	Reports        []*Report       `json:"reports"`
	FailedSubjects []FailedSubject `json:"failed_subjects"`
	TotalRequested int             `json:"total_requested"`
}

// NarrativeRequest is the input handed to the AI narrative provider.
type NarrativeRequest struct {
	StockCode         string
	StockName         string
	Market            Market
	PriceInfo         PriceInfo
	TechnicalAnalysis TechnicalAnalysis
	FundamentalData   FundamentalData
	SentimentAnalysis SentimentAnalysis
	Scores            ScoreSet
	Recommendation    string
}
