package repository

import (
	"context"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/entity"

	"gorm.io/gorm"
)

// NewAnalysisReportRepository creates a new instance of AnalysisReportRepository.
func NewAnalysisReportRepository(db *gorm.DB) AnalysisReportRepository {
	return &analysisReportRepository{
		db: db,
	}
}

type analysisReportRepository struct {
	db *gorm.DB
}

// Create saves a finished analysis report.
func (r *analysisReportRepository) Create(ctx context.Context, report *entity.AnalysisReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// GetLatest returns the most recent report for a subject.
func (r *analysisReportRepository) GetLatest(ctx context.Context, subject dto.SubjectKey) (*entity.AnalysisReport, error) {
	var report entity.AnalysisReport
	err := r.db.WithContext(ctx).
		Where("market = ? AND symbol = ?", string(subject.Market), subject.Symbol).
		Order("created_at DESC").
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}
