package http

import (
	"net/http"

	"github.com/Strob0t/AgentForge/internal/domain/agent"
	"github.com/Strob0t/AgentForge/internal/domain/codegen"
	"github.com/Strob0t/AgentForge/internal/domain/dialogue"
	"github.com/Strob0t/AgentForge/internal/service"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Generator    *service.GeneratorService
	Chat         *service.ChatService
	Provider     string // delegation provider name reported by /health
	Version      string
	MaxBodyBytes int64
}

// generateRequest is the body of /agents/generate and /agents/preview.
type generateRequest struct {
	agent.Spec
	Variant  string `json:"variant,omitempty"`
	Escaping string `json:"escaping,omitempty"`
}

type chatRequest struct {
	Message string           `json:"message"`
	History []agent.ChatTurn `json:"history,omitempty"`
}

type suggestResponse struct {
	Suggestion dialogue.Suggestion `json:"suggestion"`
}

type variantsResponse struct {
	Variants        []codegen.Variant  `json:"variants"`
	Escapings       []codegen.Escaping `json:"escapings"`
	DefaultVariant  codegen.Variant    `json:"default_variant"`
	DefaultEscaping codegen.Escaping   `json:"default_escaping"`
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"provider": h.Provider,
		"version":  h.Version,
	})
}

// APIVersion handles GET /api/v1/.
func (h *Handlers) APIVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": h.Version})
}

// GenerateAgent handles POST /api/v1/agents/generate.
func (h *Handlers) GenerateAgent(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[generateRequest](w, r, h.MaxBodyBytes)
	if !ok {
		return
	}
	opts, err := h.Generator.ResolveOptions(req.Variant, req.Escaping)
	if err != nil {
		writeDomainError(w, err, "")
		return
	}

	res, err := h.Generator.Generate(r.Context(), req.Spec, opts)
	if err != nil {
		writeDomainError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PreviewAgent handles POST /api/v1/agents/preview. It always renders
// locally and returns the document as plain text.
func (h *Handlers) PreviewAgent(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[generateRequest](w, r, h.MaxBodyBytes)
	if !ok {
		return
	}
	opts, err := h.Generator.ResolveOptions(req.Variant, req.Escaping)
	if err != nil {
		writeDomainError(w, err, "")
		return
	}

	doc, err := h.Generator.Preview(req.Spec, opts)
	if err != nil {
		writeDomainError(w, err, "")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// ChatReply handles POST /api/v1/chat.
func (h *Handlers) ChatReply(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[chatRequest](w, r, h.MaxBodyBytes)
	if !ok {
		return
	}
	if err := service.CheckMessage(req.Message); err != nil {
		writeDomainError(w, err, "")
		return
	}
	if err := agent.ValidateTurns(req.History); err != nil {
		writeDomainError(w, err, "")
		return
	}

	writeJSON(w, http.StatusOK, h.Chat.Reply(r.Context(), req.Message, req.History))
}

// SuggestFields handles POST /api/v1/chat/suggest. It answers 204 when no
// rule provides defaults for the message.
func (h *Handlers) SuggestFields(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[chatRequest](w, r, h.MaxBodyBytes)
	if !ok {
		return
	}
	if err := service.CheckMessage(req.Message); err != nil {
		writeDomainError(w, err, "")
		return
	}

	sug, found := h.Chat.Suggest(req.Message)
	if !found {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, suggestResponse{Suggestion: sug})
}

// ListCategories handles GET /api/v1/chat/categories.
func (h *Handlers) ListCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Chat.Categories())
}

// GetCategory handles GET /api/v1/chat/categories/{category}.
func (h *Handlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	rule, err := h.Chat.Category(urlParam(r, "category"))
	if err != nil {
		writeDomainError(w, err, "category not found")
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// ListVariants handles GET /api/v1/variants.
func (h *Handlers) ListVariants(w http.ResponseWriter, _ *http.Request) {
	defaults, err := h.Generator.ResolveOptions("", "")
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, variantsResponse{
		Variants:        codegen.ValidVariants,
		Escapings:       codegen.ValidEscapings,
		DefaultVariant:  defaults.Variant,
		DefaultEscaping: defaults.Escaping,
	})
}
