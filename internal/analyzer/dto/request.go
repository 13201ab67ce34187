package dto

import (
	"time"
)

// AnalyzeRequest submits one subject for streaming analysis.
type AnalyzeRequest struct {
	StockCode       string `json:"stock_code"`
	SubscriberID    string `json:"subscriber_id"`
	EnableStreaming bool   `json:"enable_streaming"`
}

// BatchAnalyzeRequest submits several subjects at once.
type BatchAnalyzeRequest struct {
	StockCodes   []string `json:"stock_codes"`
	SubscriberID string   `json:"subscriber_id"`
}

// AnalyzeResponse acknowledges an admitted job.
type AnalyzeResponse struct {
	Status    string `json:"status"`
	StockCode string `json:"stock_code,omitempty"`
	Message   string `json:"message"`
}

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TaskStatus describes one in-flight analysis job.
type TaskStatus struct {
	Subject   string    `json:"subject"`
	OwnerID   string    `json:"owner_id"`
	StartedAt time.Time `json:"started_at"`
	Status    string    `json:"status"`
}

// SystemInfo summarizes the orchestrator's live state.
type SystemInfo struct {
	ActiveTasks     int    `json:"active_tasks"`
	Subscribers     int    `json:"subscribers"`
	MaxWorkers      int    `json:"max_workers"`
	PendingJobs     int    `json:"pending_jobs"`
	AIProvider      string `json:"ai_provider"`
	StreamingEvents bool   `json:"streaming_events"`
}
