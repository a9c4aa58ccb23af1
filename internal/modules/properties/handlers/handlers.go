// Package handlers provides HTTP handlers for the property catalogue.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/aristath/yieldwise/internal/modules/properties"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Handler handles property HTTP requests
type Handler struct {
	service *properties.Service
	log     zerolog.Logger
}

// NewHandler creates a new property handler
func NewHandler(service *properties.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "properties").Logger(),
	}
}

// UpdatePriceRequest carries a new asking price as a JSON number or string
type UpdatePriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

// HandleGetProperty handles GET /api/properties/{id}
func (h *Handler) HandleGetProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := h.propertyID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "Failed to get property")
		return
	}

	h.writeJSON(w, http.StatusOK, p)
}

// HandleRegionComparison handles GET /api/properties/{id}/region-comparison
func (h *Handler) HandleRegionComparison(w http.ResponseWriter, r *http.Request) {
	id, ok := h.propertyID(w, r)
	if !ok {
		return
	}

	cmp, err := h.service.RegionComparison(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "Failed to compare property to region")
		return
	}

	h.writeJSON(w, http.StatusOK, cmp)
}

// HandleUpdatePrice handles PUT /api/properties/{id}/price
func (h *Handler) HandleUpdatePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.propertyID(w, r)
	if !ok {
		return
	}

	var req UpdatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.service.UpdatePrice(r.Context(), id, req.Price)
	if err != nil {
		h.writeServiceError(w, err, "Failed to update price")
		return
	}

	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) propertyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "Invalid property ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, properties.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, properties.ErrInvalidPrice):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg(msg)
		h.writeError(w, http.StatusInternalServerError, msg)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
