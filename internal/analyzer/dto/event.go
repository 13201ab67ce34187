package dto

import (
	"time"
)

// EventType tags an event pushed to subscribers.
type EventType string

const (
	EventConnected         EventType = "connected"
	EventLog               EventType = "log"
	EventProgress          EventType = "progress"
	EventScoresUpdate      EventType = "scores_update"
	EventDataQualityUpdate EventType = "data_quality_update"
	EventPartialResult     EventType = "partial_result"
	EventFinalResult       EventType = "final_result"
	EventBatchResult       EventType = "batch_result"
	EventAIChunk           EventType = "ai_chunk"
	EventComplete          EventType = "complete"
	EventError             EventType = "error"
	EventHeartbeat         EventType = "heartbeat"
)

// Event is a single immutable message delivered to a subscriber queue.
type Event struct {
	Type      EventType   `json:"event"`
	Subject   string      `json:"subject,omitempty"`
	Payload   interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// LogPayload carries a pipeline log line.
type LogPayload struct {
	Message string `json:"message"`
	Level   string `json:"type"`
}

// ProgressPayload carries a progress checkpoint for one job.
type ProgressPayload struct {
	Percent      int    `json:"percent"`
	Message      string `json:"message,omitempty"`
	CurrentStock string `json:"current_stock,omitempty"`
}

// ScoresPayload carries a (possibly intermediate) score snapshot.
type ScoresPayload struct {
	Scores  ScoreSet `json:"scores"`
	Animate bool     `json:"animate"`
}

// ErrorPayload carries a terminal pipeline error.
type ErrorPayload struct {
	Error string `json:"error"`
}

// CompletePayload carries the terminal completion notice.
type CompletePayload struct {
	Message string `json:"message"`
}

// AIChunkPayload carries one increment of streamed narrative text.
type AIChunkPayload struct {
	Content string `json:"content"`
}

// HeartbeatPayload keeps idle connections alive.
type HeartbeatPayload struct {
	Timestamp time.Time `json:"timestamp"`
}

// ConnectedPayload greets a newly attached stream with its id.
type ConnectedPayload struct {
	SubscriberID string `json:"subscriber_id"`
}

// NewEvent builds an event stamped with the current time.
func NewEvent(t EventType, subject string, payload interface{}) Event {
	return Event{
		Type:      t,
		Subject:   subject,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}
