package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all analysis routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/properties/{id}/analyze", h.HandleAnalyze)

	r.Route("/analysis", func(r chi.Router) {
		r.Post("/compare", h.HandleCompare)
		r.Post("/portfolio", h.HandlePortfolio)

		// Cache
		r.Get("/cache/stats", h.HandleCacheStats)
		r.Delete("/cache/{id}", h.HandleInvalidateCache)
	})
}
