package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Strob0t/AgentForge/internal/domain/dialogue"
)

// Client frame types.
const FrameChat = "chat"

// Event type constants for server messages.
const (
	EventSessionStarted = "session.started"
	EventChatReply      = "chat.reply"
	EventError          = "error"
)

// SessionStartedEvent is sent once when a session opens.
type SessionStartedEvent struct {
	SessionID string `json:"session_id"`
}

// ChatReplyEvent answers one chat frame.
type ChatReplyEvent struct {
	Reply      string               `json:"reply"`
	Source     string               `json:"source"`
	Category   string               `json:"category"`
	Suggestion *dialogue.Suggestion `json:"suggestion,omitempty"`
}

// ErrorEvent reports a rejected client frame.
type ErrorEvent struct {
	Message string `json:"message"`
}

func marshalMessage(eventType string, payload any) ([]byte, error) {
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: eventType, Payload: p})
}

// BroadcastEvent is a convenience method that marshals a typed event and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("websocket event marshal failed", "type", eventType, "error", err)
		return
	}
	h.Broadcast(ctx, Message{Type: eventType, Payload: data})
}
