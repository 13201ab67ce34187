package entity

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnalysisReport is the persisted form of a completed single-subject
// analysis. Data holds the full report payload as delivered to
// subscribers.
type AnalysisReport struct {
	ID                 int64          `json:"id"`
	Market             string         `json:"market"`
	Symbol             string         `json:"symbol"`
	Name               string         `json:"name"`
	Recommendation     string         `json:"recommendation"`
	TechnicalScore     float64        `json:"technical_score"`
	FundamentalScore   float64        `json:"fundamental_score"`
	SentimentScore     float64        `json:"sentiment_score"`
	ComprehensiveScore float64        `json:"comprehensive_score"`
	Narrative          string         `json:"narrative"`
	Data               datatypes.JSON `gorm:"type:jsonb" json:"data"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"deleted_at"`
}

func (AnalysisReport) TableName() string {
	return "analysis_reports"
}
