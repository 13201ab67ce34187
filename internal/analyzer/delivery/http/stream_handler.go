package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"golang-stock-analyzer/internal/analyzer/config"
	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/analyzer/hub"
	"golang-stock-analyzer/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StreamHandler serves the SSE event stream.
type StreamHandler struct {
	cfg    *config.Config
	hub    *hub.EventHub
	logger *logger.Logger
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(cfg *config.Config, eventHub *hub.EventHub, logger *logger.Logger) *StreamHandler {
	return &StreamHandler{cfg: cfg, hub: eventHub, logger: logger}
}

// RegisterRoutes registers the stream routes to the Echo group.
func (h *StreamHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/events", h.Events)
}

// Events godoc
// @Summary Subscribe to the analysis event stream
// @Description Server-sent events; the first event is "connected" and carries the subscriber id
// @Tags stream
// @Produce  text/event-stream
// @Param   subscriber_id  query  string false  "Reattach to an existing subscription"
// @Success 200 {string} string "event stream"
// @Router /events [get]
func (h *StreamHandler) Events(c echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Reattach keeps queued events from a dropped connection.
	sub, ok := h.hub.Get(c.QueryParam("subscriber_id"))
	if !ok {
		sub = h.hub.Connect()
	}
	defer h.hub.Disconnect(sub.ID)

	greeting := dto.NewEvent(dto.EventConnected, "", dto.ConnectedPayload{SubscriberID: sub.ID})
	if err := writeSSE(w, greeting); err != nil {
		return nil
	}

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("SSE client disconnected", logger.StringField("subscriber_id", sub.ID))
			return nil
		default:
		}

		ev, ok := sub.Receive(h.cfg.Analyzer.HeartbeatInterval)
		if !ok {
			return nil
		}
		if err := writeSSE(w, ev); err != nil {
			h.logger.Debug("SSE write failed", logger.ErrorField(err), logger.StringField("subscriber_id", sub.ID))
			return nil
		}
	}
}

func writeSSE(w *echo.Response, ev dto.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload); err != nil {
		return err
	}
	w.Flush()
	return nil
}
