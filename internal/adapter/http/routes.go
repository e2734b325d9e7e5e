package http

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", h.APIVersion)

		// Agent synthesis
		r.Post("/agents/generate", h.GenerateAgent)
		r.Post("/agents/preview", h.PreviewAgent)
		r.Get("/variants", h.ListVariants)

		// Dialogue
		r.Post("/chat", h.ChatReply)
		r.Post("/chat/suggest", h.SuggestFields)
		r.Get("/chat/categories", h.ListCategories)
		r.Get("/chat/categories/{category}", h.GetCategory)
	})
}
