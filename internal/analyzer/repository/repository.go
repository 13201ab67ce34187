package repository

import (
	"context"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/entity"
)

// MarketDataRepository fetches the raw inputs of an analysis job.
type MarketDataRepository interface {
	FetchPriceSeries(ctx context.Context, param dto.GetPriceSeriesParam) (*dto.PriceSeries, error)
	FetchFundamentals(ctx context.Context, subject dto.SubjectKey) (*dto.FundamentalData, error)
}

// NewsRepository retrieves recent news articles for a subject.
type NewsRepository interface {
	FetchNews(ctx context.Context, subject dto.SubjectKey, name string) ([]dto.NewsItem, error)
}

// AIRepository generates the narrative section of a report.
// GenerateNarrativeStream invokes onChunk for every token chunk as it
// arrives; the concatenation of all chunks equals the returned text.
type AIRepository interface {
	GenerateNarrative(ctx context.Context, req *dto.NarrativeRequest) (string, error)
	GenerateNarrativeStream(ctx context.Context, req *dto.NarrativeRequest, onChunk func(string)) (string, error)
}

// AnalysisReportRepository persists finished reports.
type AnalysisReportRepository interface {
	Create(ctx context.Context, report *entity.AnalysisReport) error
	GetLatest(ctx context.Context, subject dto.SubjectKey) (*entity.AnalysisReport, error)
}
