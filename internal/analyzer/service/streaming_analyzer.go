package service

import (
	"context"
	"fmt"
	"time"

	"golang-stock-analyzer/internal/analyzer/cache"
	"golang-stock-analyzer/internal/analyzer/config"
	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/analyzer/hub"
	"golang-stock-analyzer/internal/analyzer/repository"
	"golang-stock-analyzer/pkg/logger"
)

// StreamingAnalyzer runs the per-subject pipeline and relays every
// intermediate result to the subscriber as it happens. Stage failures
// other than missing price data degrade the report instead of killing
// the job.
type StreamingAnalyzer struct {
	cfg        *config.Config
	logger     *logger.Logger
	cache      *cache.ResultCache
	hub        *hub.EventHub
	marketData repository.MarketDataRepository
	news       repository.NewsRepository
	ai         repository.AIRepository
	scorer     *Scorer
}

// NewStreamingAnalyzer creates a new StreamingAnalyzer.
func NewStreamingAnalyzer(
	cfg *config.Config,
	log *logger.Logger,
	resultCache *cache.ResultCache,
	eventHub *hub.EventHub,
	marketData repository.MarketDataRepository,
	news repository.NewsRepository,
	ai repository.AIRepository,
) *StreamingAnalyzer {
	return &StreamingAnalyzer{
		cfg:        cfg,
		logger:     log,
		cache:      resultCache,
		hub:        eventHub,
		marketData: marketData,
		news:       news,
		ai:         ai,
		scorer: NewScorer(dto.ScoreWeights{
			Technical:   cfg.Analyzer.TechnicalWeight,
			Fundamental: cfg.Analyzer.FundamentalWeight,
			Sentiment:   cfg.Analyzer.SentimentWeight,
		}),
	}
}

// Analyze runs the full pipeline for one subject, emitting progress to
// the subscriber. An empty subscriberID broadcasts to everyone. The
// returned error means no report was produced; the error event has
// already been emitted.
func (a *StreamingAnalyzer) Analyze(ctx context.Context, subject dto.SubjectKey, subscriberID string, enableStreaming bool) (*dto.Report, error) {
	code := subject.Symbol

	a.emitLog(subscriberID, code, "info", fmt.Sprintf("Analysis started for %s", subject))
	a.emitProgress(subscriberID, code, 5, "Starting analysis")

	// Price data is the minimum viable input; nothing downstream can
	// run without it.
	series, err := a.fetchPriceSeries(ctx, subject)
	if err != nil {
		a.logger.Error("Price fetch failed", logger.ErrorField(err), logger.StringField("subject", subject.String()))
		a.emitError(subscriberID, code, fmt.Sprintf("failed to fetch price data: %v", err))
		return nil, fmt.Errorf("failed to fetch price data for %s: %w", subject, err)
	}

	priceInfo := ComputePriceInfo(series)
	a.emit(subscriberID, dto.NewEvent(dto.EventPartialResult, code, dto.PartialResult{
		Type:         "identity",
		StockCode:    code,
		StockName:    series.Name,
		CurrentPrice: priceInfo.CurrentPrice,
		PriceChange:  priceInfo.PriceChange,
	}))
	a.emitProgress(subscriberID, code, 15, "Price data retrieved")

	technicalAnalysis := ComputeTechnicalAnalysis(series)
	scores := dto.ScoreSet{
		Technical:   a.scorer.TechnicalScore(technicalAnalysis),
		Fundamental: 50,
		Sentiment:   50,
	}
	scores.Comprehensive = a.scorer.ComprehensiveScore(scores)
	a.emitScores(subscriberID, code, scores, false)
	a.emitProgress(subscriberID, code, 25, "Technical indicators computed")

	fundamentals := a.fetchFundamentals(ctx, subject, subscriberID)
	scores.Fundamental = a.scorer.FundamentalScore(fundamentals)
	scores.Comprehensive = a.scorer.ComprehensiveScore(scores)
	a.emitScores(subscriberID, code, scores, false)
	a.emitProgress(subscriberID, code, 45, "Fundamental data analyzed")

	newsItems := a.fetchNews(ctx, subject, series.Name, subscriberID)
	sentiment := AnalyzeSentiment(newsItems)
	scores.Sentiment = a.scorer.SentimentScore(sentiment)
	scores.Comprehensive = a.scorer.ComprehensiveScore(scores)
	a.emitScores(subscriberID, code, scores, true)

	quality := AssessDataQuality(fundamentals, len(newsItems))
	a.emit(subscriberID, dto.NewEvent(dto.EventDataQualityUpdate, code, quality))
	a.emitProgress(subscriberID, code, 65, "Sentiment analysis finished")

	recommendation := a.scorer.Recommendation(scores)
	a.emitProgress(subscriberID, code, 80, "Recommendation determined")

	a.emitProgress(subscriberID, code, 90, "Generating analysis narrative")
	narrativeReq := &dto.NarrativeRequest{
		StockCode:         code,
		StockName:         series.Name,
		Market:            subject.Market,
		PriceInfo:         priceInfo,
		TechnicalAnalysis: technicalAnalysis,
		FundamentalData:   fundamentals,
		SentimentAnalysis: sentiment,
		Scores:            scores,
		Recommendation:    recommendation,
	}
	narrative := a.generateNarrative(ctx, narrativeReq, subscriberID, enableStreaming)

	report := &dto.Report{
		StockCode:         code,
		StockName:         series.Name,
		Market:            subject.Market,
		AnalysisDate:      time.Now(),
		PriceInfo:         priceInfo,
		TechnicalAnalysis: technicalAnalysis,
		FundamentalData:   fundamentals,
		SentimentAnalysis: sentiment,
		Scores:            scores,
		AnalysisWeights:   a.scorer.Weights(),
		Recommendation:    recommendation,
		Narrative:         narrative,
		DataQuality:       quality,
	}

	a.emitProgress(subscriberID, code, 100, "Analysis complete")
	a.emit(subscriberID, dto.NewEvent(dto.EventFinalResult, code, report))
	a.emit(subscriberID, dto.NewEvent(dto.EventComplete, code, dto.CompletePayload{
		Message: fmt.Sprintf("Analysis complete for %s", subject),
	}))

	return report, nil
}

func (a *StreamingAnalyzer) fetchPriceSeries(ctx context.Context, subject dto.SubjectKey) (*dto.PriceSeries, error) {
	if cached, ok := a.cache.Get(subject, cache.CategoryPrice); ok {
		if series, ok := cached.(*dto.PriceSeries); ok {
			return series, nil
		}
	}

	series, err := a.marketData.FetchPriceSeries(ctx, dto.GetPriceSeriesParam{
		Subject:  subject,
		Lookback: a.cfg.Analyzer.PriceLookback,
	})
	if err != nil {
		return nil, err
	}
	a.cache.Put(subject, cache.CategoryPrice, series)
	return series, nil
}

// fetchFundamentals degrades to empty data on failure; the score then
// lands at the neutral baseline.
func (a *StreamingAnalyzer) fetchFundamentals(ctx context.Context, subject dto.SubjectKey, subscriberID string) dto.FundamentalData {
	if cached, ok := a.cache.Get(subject, cache.CategoryFundamental); ok {
		if data, ok := cached.(*dto.FundamentalData); ok {
			return *data
		}
	}

	data, err := a.marketData.FetchFundamentals(ctx, subject)
	if err != nil {
		a.logger.Warn("Fundamentals fetch failed, using defaults",
			logger.ErrorField(err), logger.StringField("subject", subject.String()))
		a.emitLog(subscriberID, subject.Symbol, "warning", "Fundamental data unavailable, using defaults")
		return dto.FundamentalData{
			FinancialIndicators: map[string]float64{},
			Valuation:           map[string]float64{},
		}
	}
	a.cache.Put(subject, cache.CategoryFundamental, data)
	return *data
}

func (a *StreamingAnalyzer) fetchNews(ctx context.Context, subject dto.SubjectKey, name, subscriberID string) []dto.NewsItem {
	if cached, ok := a.cache.Get(subject, cache.CategoryNews); ok {
		if items, ok := cached.([]dto.NewsItem); ok {
			return items
		}
	}

	items, err := a.news.FetchNews(ctx, subject, name)
	if err != nil {
		a.logger.Warn("News fetch failed, continuing without news",
			logger.ErrorField(err), logger.StringField("subject", subject.String()))
		a.emitLog(subscriberID, subject.Symbol, "warning", "News data unavailable, sentiment defaults to neutral")
		return nil
	}
	a.cache.Put(subject, cache.CategoryNews, items)
	return items
}

// generateNarrative produces the AI narrative, relaying chunks when
// streaming is on. Provider failure falls back to the rule-based
// narrative so the job still completes normally.
func (a *StreamingAnalyzer) generateNarrative(ctx context.Context, req *dto.NarrativeRequest, subscriberID string, enableStreaming bool) string {
	if a.ai == nil {
		return FallbackNarrative(req)
	}

	var narrative string
	var err error
	if enableStreaming && a.cfg.AI.EnableStreaming {
		narrative, err = a.ai.GenerateNarrativeStream(ctx, req, func(chunk string) {
			a.emit(subscriberID, dto.NewEvent(dto.EventAIChunk, req.StockCode, dto.AIChunkPayload{Content: chunk}))
		})
	} else {
		narrative, err = a.ai.GenerateNarrative(ctx, req)
	}

	if err != nil || narrative == "" {
		if err != nil {
			a.logger.Warn("Narrative generation failed, using rule-based fallback",
				logger.ErrorField(err), logger.StringField("stock_code", req.StockCode))
		}
		a.emitLog(subscriberID, req.StockCode, "warning", "AI narrative unavailable, using rule-based summary")
		return FallbackNarrative(req)
	}
	return narrative
}

func (a *StreamingAnalyzer) emit(subscriberID string, ev dto.Event) {
	if subscriberID == "" {
		a.hub.Broadcast(ev)
		return
	}
	a.hub.SendTo(subscriberID, ev)
}

func (a *StreamingAnalyzer) emitLog(subscriberID, code, level, message string) {
	a.emit(subscriberID, dto.NewEvent(dto.EventLog, code, dto.LogPayload{Message: message, Level: level}))
}

func (a *StreamingAnalyzer) emitProgress(subscriberID, code string, percent int, message string) {
	a.emit(subscriberID, dto.NewEvent(dto.EventProgress, code, dto.ProgressPayload{
		Percent:      percent,
		Message:      message,
		CurrentStock: code,
	}))
}

func (a *StreamingAnalyzer) emitScores(subscriberID, code string, scores dto.ScoreSet, animate bool) {
	a.emit(subscriberID, dto.NewEvent(dto.EventScoresUpdate, code, dto.ScoresPayload{
		Scores:  scores,
		Animate: animate,
	}))
}

func (a *StreamingAnalyzer) emitError(subscriberID, code, message string) {
	a.emit(subscriberID, dto.NewEvent(dto.EventError, code, dto.ErrorPayload{Error: message}))
}
