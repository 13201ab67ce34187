package http

import (
	"net/http"

	"golang-stock-analyzer/internal/analyzer/config"
	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/analyzer/hub"
	"golang-stock-analyzer/pkg/logger"
	"golang-stock-analyzer/pkg/utils"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler mirrors the SSE stream over a WebSocket connection.
type WSHandler struct {
	cfg    *config.Config
	hub    *hub.EventHub
	logger *logger.Logger
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(cfg *config.Config, eventHub *hub.EventHub, logger *logger.Logger) *WSHandler {
	return &WSHandler{cfg: cfg, hub: eventHub, logger: logger}
}

// RegisterRoutes registers the websocket routes to the Echo group.
func (h *WSHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/ws", h.Serve)
}

// Serve upgrades the connection and pumps hub events to the client
// until either side closes.
func (h *WSHandler) Serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", logger.ErrorField(err))
		return err
	}
	defer conn.Close()

	sub, ok := h.hub.Get(c.QueryParam("subscriber_id"))
	if !ok {
		sub = h.hub.Connect()
	}
	defer h.hub.Disconnect(sub.ID)

	greeting := dto.NewEvent(dto.EventConnected, "", dto.ConnectedPayload{SubscriberID: sub.ID})
	if err := conn.WriteJSON(greeting); err != nil {
		return nil
	}

	// Read loop for liveness only; inbound payloads are discarded.
	done := make(chan struct{})
	utils.GoSafe(func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	for {
		select {
		case <-done:
			h.logger.Debug("WebSocket client disconnected", logger.StringField("subscriber_id", sub.ID))
			return nil
		default:
		}

		ev, ok := sub.Receive(h.cfg.Analyzer.HeartbeatInterval)
		if !ok {
			return nil
		}
		if err := conn.WriteJSON(ev); err != nil {
			h.logger.Debug("WebSocket write failed", logger.ErrorField(err), logger.StringField("subscriber_id", sub.ID))
			return nil
		}
	}
}
