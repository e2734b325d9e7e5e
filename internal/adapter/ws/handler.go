// Package ws implements the WebSocket chat endpoint.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/Strob0t/AgentForge/internal/domain/agent"
	"github.com/Strob0t/AgentForge/internal/logger"
	"github.com/Strob0t/AgentForge/internal/service"
)

// defaultReadLimit bounds a single inbound frame when none is configured.
const defaultReadLimit = 1 << 20

// Message is the envelope for server-to-client WebSocket messages.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// clientFrame is what clients send.
type clientFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// conn wraps a single WebSocket chat session.
type conn struct {
	ws        *websocket.Conn
	cancel    context.CancelFunc
	sessionID string

	// history is only touched by the session's read loop.
	history []agent.ChatTurn
}

// Hub accepts chat sessions and broadcasts server events to all of them.
type Hub struct {
	chat      *service.ChatService
	readLimit int64

	mu    sync.RWMutex
	conns map[*conn]struct{}
}

// NewHub creates a hub answering chat frames with chat. readLimit bounds a
// single inbound frame in bytes; zero uses 1 MiB.
func NewHub(chat *service.ChatService, readLimit int64) *Hub {
	if readLimit <= 0 {
		readLimit = defaultReadLimit
	}
	return &Hub{
		chat:      chat,
		readLimit: readLimit,
		conns:     make(map[*conn]struct{}),
	}
}

// HandleWS upgrades the request and serves one chat session until the
// client disconnects or the hub is closed.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		slog.Error("websocket accept failed", "error", err)
		return
	}
	ws.SetReadLimit(h.readLimit)

	ctx, cancel := context.WithCancel(r.Context())
	c := &conn{ws: ws, cancel: cancel, sessionID: uuid.NewString()}
	ctx = logger.WithSessionID(ctx, c.sessionID)

	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()

	slog.InfoContext(ctx, "websocket connected", "remote", r.RemoteAddr)
	defer func() {
		h.remove(c)
		_ = ws.Close(websocket.StatusNormalClosure, "")
	}()

	h.send(ctx, c, EventSessionStarted, SessionStartedEvent{SessionID: c.sessionID})
	h.serve(ctx, c)
}

// serve runs the read loop. Bad frames are answered with an error frame and
// the session continues.
func (h *Hub) serve(ctx context.Context, c *conn) {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) && websocket.CloseStatus(err) == -1 {
				slog.DebugContext(ctx, "websocket read failed", "error", err)
			}
			return
		}
		if typ != websocket.MessageText {
			h.sendError(ctx, c, "binary frames are not supported")
			continue
		}

		var f clientFrame
		if err := json.Unmarshal(data, &f); err != nil {
			h.sendError(ctx, c, "invalid message: expected JSON object")
			continue
		}

		switch f.Type {
		case FrameChat:
			h.handleChat(ctx, c, f.Content)
		default:
			h.sendError(ctx, c, "unknown message type "+`"`+f.Type+`"`)
		}
	}
}

func (h *Hub) handleChat(ctx context.Context, c *conn, content string) {
	if err := service.CheckMessage(content); err != nil {
		h.sendError(ctx, c, err.Error())
		return
	}

	reply := h.chat.Reply(ctx, content, c.history)
	c.history = agent.Window(append(c.history,
		agent.ChatTurn{Role: agent.RoleUser, Content: content},
		agent.ChatTurn{Role: agent.RoleAssistant, Content: reply.Reply},
	), h.chat.Window())

	h.send(ctx, c, EventChatReply, ChatReplyEvent{
		Reply:      reply.Reply,
		Source:     string(reply.Source),
		Category:   string(reply.Category),
		Suggestion: reply.Suggestion,
	})
}

func (h *Hub) sendError(ctx context.Context, c *conn, msg string) {
	h.send(ctx, c, EventError, ErrorEvent{Message: msg})
}

func (h *Hub) send(ctx context.Context, c *conn, eventType string, payload any) {
	data, err := marshalMessage(eventType, payload)
	if err != nil {
		slog.ErrorContext(ctx, "websocket marshal failed", "type", eventType, "error", err)
		return
	}
	if err := c.ws.Write(ctx, websocket.MessageText, data); err != nil {
		slog.DebugContext(ctx, "websocket write failed", "error", err)
	}
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(ctx context.Context, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("websocket marshal failed", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.conns {
		if err := c.ws.Write(ctx, websocket.MessageText, data); err != nil {
			slog.Debug("websocket write failed", "error", err)
			go h.remove(c)
		}
	}
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close ends every session. Handlers return once their read loop stops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		c.cancel()
		delete(h.conns, c)
	}
}

func (h *Hub) remove(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[c]; ok {
		c.cancel()
		delete(h.conns, c)
		slog.Info("websocket disconnected", "session_id", c.sessionID)
	}
}
