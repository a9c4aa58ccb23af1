package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all property routes.
// Patterns are registered flat because analysis also serves under /properties.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/properties/{id}", h.HandleGetProperty)
	r.Get("/properties/{id}/region-comparison", h.HandleRegionComparison)
	r.Put("/properties/{id}/price", h.HandleUpdatePrice)
}
