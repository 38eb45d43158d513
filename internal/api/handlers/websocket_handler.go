package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/study-agent/backend/internal/session"
	"github.com/study-agent/backend/pkg/logger"
)

// WebSocketHandler drives an interactive quiz round over one connection:
// the client records answers message by message and submits at the end,
// receiving each graded item followed by the final score.
type WebSocketHandler struct {
	controller *session.Controller
}

func NewWebSocketHandler(controller *session.Controller) *WebSocketHandler {
	return &WebSocketHandler{controller: controller}
}

type wsMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Key       string `json:"key,omitempty"`
	Answer    string `json:"answer,omitempty"`
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg wsMessage
		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		switch msg.Type {
		case "state":
			view, err := h.controller.Get(msg.SessionID)
			if err != nil {
				h.sendError(c, err.Error())
				continue
			}
			c.WriteJSON(map[string]interface{}{
				"type":  "state",
				"state": view,
			})

		case "answer":
			if err := h.controller.RecordAnswer(msg.SessionID, msg.Key, msg.Answer); err != nil {
				h.sendError(c, err.Error())
				continue
			}
			c.WriteJSON(map[string]interface{}{
				"type": "recorded",
				"key":  msg.Key,
			})

		case "submit":
			if err := h.streamResults(c, msg.SessionID); err != nil {
				logger.Error("Failed to stream quiz results", zap.Error(err))
				h.sendError(c, "Failed to grade quiz")
			}

		default:
			h.sendError(c, "Unknown message type")
		}
	}
}

func (h *WebSocketHandler) streamResults(c *websocket.Conn, sessionID string) error {
	view, err := h.controller.Submit(context.Background(), sessionID)
	if err != nil {
		return err
	}

	for _, item := range view.Result.Items {
		if err := c.WriteJSON(map[string]interface{}{
			"type": "item",
			"item": item,
		}); err != nil {
			return err
		}
	}

	return c.WriteJSON(map[string]interface{}{
		"type":  "complete",
		"score": view.Result.Score,
		"total": view.Result.Total,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}
