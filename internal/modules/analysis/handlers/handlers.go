// Package handlers provides HTTP handlers for property analysis.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/aristath/yieldwise/internal/modules/analysis"
	"github.com/aristath/yieldwise/internal/modules/properties"
	"github.com/aristath/yieldwise/pkg/validation"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// PropertySource loads properties from the catalogue
type PropertySource interface {
	Get(ctx context.Context, id int64) (*properties.Property, error)
	GetMany(ctx context.Context, ids []int64) ([]*properties.Property, error)
}

// Handler handles analysis HTTP requests
type Handler struct {
	service    *analysis.Service
	properties PropertySource
	log        zerolog.Logger
}

// NewHandler creates a new analysis handler
func NewHandler(service *analysis.Service, props PropertySource, log zerolog.Logger) *Handler {
	return &Handler{
		service:    service,
		properties: props,
		log:        log.With().Str("handler", "analysis").Logger(),
	}
}

// PropertyIDsRequest names the properties of a compare or portfolio request
type PropertyIDsRequest struct {
	PropertyIDs []int64 `json:"property_ids" validate:"required,min=1,max=100,dive,gt=0"`
}

// HandleAnalyze handles POST /api/properties/{id}/analyze
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	id, ok := h.propertyID(w, r)
	if !ok {
		return
	}

	useCache := true
	if raw := r.URL.Query().Get("use_cache"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "use_cache must be a boolean")
			return
		}
		useCache = v
	}

	params, err := decodeOverrides(r.Body)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	prop, err := h.properties.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "Failed to load property")
		return
	}

	result, err := h.service.Analyze(r.Context(), prop, params, useCache)
	if err != nil {
		h.writeServiceError(w, err, "Failed to analyze property")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleCompare handles POST /api/analysis/compare
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	props, ok := h.loadBatch(w, r)
	if !ok {
		return
	}

	comparison, err := h.service.Compare(r.Context(), props)
	if err != nil {
		h.writeServiceError(w, err, "Failed to compare properties")
		return
	}

	h.writeJSON(w, http.StatusOK, comparison)
}

// HandlePortfolio handles POST /api/analysis/portfolio
func (h *Handler) HandlePortfolio(w http.ResponseWriter, r *http.Request) {
	props, ok := h.loadBatch(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Portfolio(r.Context(), props)
	if err != nil {
		h.writeServiceError(w, err, "Failed to summarize portfolio")
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

// HandleInvalidateCache handles DELETE /api/analysis/cache/{id}
func (h *Handler) HandleInvalidateCache(w http.ResponseWriter, r *http.Request) {
	id, ok := h.propertyID(w, r)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"property_id": id,
		"invalidated": h.service.InvalidateCache(r.Context(), id),
	})
}

// HandleCacheStats handles GET /api/analysis/cache/stats
func (h *Handler) HandleCacheStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.CacheStats(r.Context()))
}

func (h *Handler) loadBatch(w http.ResponseWriter, r *http.Request) ([]analysis.Property, bool) {
	var req PropertyIDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	if err := validation.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	found, err := h.properties.GetMany(r.Context(), req.PropertyIDs)
	if err != nil {
		h.writeServiceError(w, err, "Failed to load properties")
		return nil, false
	}

	props := make([]analysis.Property, len(found))
	for i, p := range found {
		props[i] = p
	}
	return props, true
}

// decodeOverrides returns nil params for an empty body so the service estimates them
func decodeOverrides(body io.Reader) (*analysis.Params, error) {
	if body == nil {
		return nil, nil
	}

	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errors.New("invalid request body")
	}
	if raw == nil {
		return nil, nil
	}

	params, err := analysis.ParseParams(raw)
	if err != nil {
		return nil, err
	}
	return &params, nil
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
	case errors.Is(err, analysis.ErrInvalidParameter), errors.Is(err, analysis.ErrNoProperties):
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
