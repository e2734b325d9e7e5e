package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	cfotel "github.com/Strob0t/AgentForge/internal/adapter/otel"
	"github.com/Strob0t/AgentForge/internal/domain"
	"github.com/Strob0t/AgentForge/internal/domain/agent"
	"github.com/Strob0t/AgentForge/internal/domain/dialogue"
	"github.com/Strob0t/AgentForge/internal/logger"
	"github.com/Strob0t/AgentForge/internal/port/messagequeue"
	"github.com/Strob0t/AgentForge/internal/port/textgen"
)

const useCaseChat = "chat"

const chatSystemPrompt = `You are the AgentForge assistant. You help users design AI worker agents
that run on Cloudflare Workers with Durable Objects.
Ask about and refine the agent's name, a one-line description, and its functionality.
Explain deployment with wrangler when asked. Keep answers short and concrete.`

// ChatReply is one assistant answer.
type ChatReply struct {
	Reply      string               `json:"reply"`
	Source     Source               `json:"source"`
	Category   dialogue.Category    `json:"category"`
	Suggestion *dialogue.Suggestion `json:"suggestion,omitempty"`
}

// ChatService answers chat messages, delegating to an external provider when
// one is configured and falling back to the rule engine.
type ChatService struct {
	delegator *Delegator
	engine    *dialogue.Engine
	window    int
	events    messagequeue.Publisher
	metrics   *cfotel.Metrics
	now       func() time.Time
}

// NewChatService creates a ChatService keeping the last window turns of
// history when delegating. A nil engine uses dialogue.Default.
func NewChatService(d *Delegator, engine *dialogue.Engine, window int) *ChatService {
	if engine == nil {
		engine = dialogue.Default()
	}
	if window < 0 {
		window = 0
	}
	return &ChatService{delegator: d, engine: engine, window: window, now: time.Now}
}

// SetPublisher attaches an event publisher for agents.chat.replied events.
func (s *ChatService) SetPublisher(p messagequeue.Publisher) {
	s.events = p
}

// SetMetrics attaches metric instruments.
func (s *ChatService) SetMetrics(m *cfotel.Metrics) {
	s.metrics = m
}

// Window is the number of history turns passed to the provider.
func (s *ChatService) Window() int { return s.window }

// Reply answers message. history holds prior turns, oldest first; only the
// last Window turns are sent. The suggestion always comes from the rule
// engine, whichever path produced the reply.
func (s *ChatService) Reply(ctx context.Context, message string, history []agent.ChatTurn) ChatReply {
	ctx, span := cfotel.StartRespondSpan(ctx, logger.SessionID(ctx))
	defer span.End()

	localReply, category := s.engine.Reply(message)
	req := textgen.Request{
		System:  chatSystemPrompt,
		User:    message,
		History: agent.Window(history, s.window),
	}
	reply, src := s.delegator.Run(ctx, useCaseChat, req, nonBlank, func() string { return localReply })

	out := ChatReply{Reply: reply, Source: src, Category: category}
	if sug, ok := s.engine.Suggest(message); ok {
		out.Suggestion = &sug
	}

	span.SetAttributes(
		attribute.String("dialogue.category", string(category)),
		attribute.String("dialogue.source", string(src)),
	)
	s.metrics.RecordChat(ctx, string(category), string(src))
	publishEvent(ctx, s.events, messagequeue.SubjectChatReplied, messagequeue.ChatRepliedPayload{
		EventID:   uuid.NewString(),
		SessionID: logger.SessionID(ctx),
		Category:  string(category),
		Source:    string(src),
		RepliedAt: s.now().UTC(),
	})
	return out
}

// Suggest returns autofill values for message when a rule provides them.
func (s *ChatService) Suggest(message string) (dialogue.Suggestion, bool) {
	return s.engine.Suggest(message)
}

// Categories lists the rule table.
func (s *ChatService) Categories() []dialogue.Rule {
	return s.engine.Rules()
}

// Category returns one rule by category name.
func (s *ChatService) Category(name string) (dialogue.Rule, error) {
	return s.engine.Lookup(dialogue.Category(name))
}

// MaxMessageLen bounds a single chat message, counted in code points.
const MaxMessageLen = 4000

// CheckMessage rejects chat messages over MaxMessageLen.
func CheckMessage(message string) error {
	if n := utf8.RuneCountInString(message); n > MaxMessageLen {
		return fmt.Errorf("%w: message too long (%d chars, max %d)", domain.ErrValidation, n, MaxMessageLen)
	}
	return nil
}
