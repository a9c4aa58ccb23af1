package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/aristath/yieldwise/internal/database"
	"github.com/aristath/yieldwise/internal/modules/properties"
	testingpkg "github.com/aristath/yieldwise/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) InvalidateCache(ctx context.Context, propertyID int64) bool {
	c.calls++
	return true
}

type fixture struct {
	router      *chi.Mux
	invalidator *countingInvalidator
	propertyID  int64
}

func setup(t *testing.T) fixture {
	t.Helper()

	logger := zerolog.New(nil).Level(zerolog.Disabled)
	db, _ := testingpkg.NewTestDB(t, database.NameCatalog)

	repo := properties.NewRepository(db.Conn(), logger)
	// The first fixture costs 300000 for 75m² in a region averaging 4500/m²
	p := testingpkg.SeedCatalog(t, repo)[0]

	inv := &countingInvalidator{}
	handler := NewHandler(properties.NewService(repo, inv, logger), logger)

	router := chi.NewRouter()
	router.Route("/api", handler.RegisterRoutes)
	return fixture{router: router, invalidator: inv, propertyID: p.ID}
}

func (f fixture) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f fixture) path(suffix string) string {
	return "/api/properties/" + strconv.FormatInt(f.propertyID, 10) + suffix
}

func TestHandleGetProperty(t *testing.T) {
	f := setup(t)

	w := f.do("GET", f.path(""), "")

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "12 Ermou", response["address"])
	assert.Contains(t, response, "region")
}

func TestHandleRegionComparison(t *testing.T) {
	f := setup(t)

	w := f.do("GET", f.path("/region-comparison"), "")

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 4000.0, response["property_price_per_sqm"])
	assert.Equal(t, 4500.0, response["region_avg_price_per_sqm"])
	assert.Equal(t, -500.0, response["price_difference"])
	assert.Equal(t, -11.11, response["price_difference_percent"])
	assert.Equal(t, true, response["is_below_average"])
}

func TestHandleUpdatePrice(t *testing.T) {
	f := setup(t)

	w := f.do("PUT", f.path("/price"), `{"price": 280000}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "280000", response["price"])
	assert.Equal(t, 1, f.invalidator.calls)
}

func TestHandleUpdatePrice_Errors(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{name: "malformed body", target: f.path("/price"), body: "{", status: http.StatusBadRequest},
		{name: "non-numeric price", target: f.path("/price"), body: `{"price": "cheap"}`, status: http.StatusBadRequest},
		{name: "zero price", target: f.path("/price"), body: `{"price": 0}`, status: http.StatusBadRequest},
		{name: "missing price", target: f.path("/price"), body: `{}`, status: http.StatusBadRequest},
		{name: "unknown property", target: "/api/properties/999/price", body: `{"price": 1}`, status: http.StatusNotFound},
		{name: "bad id", target: "/api/properties/x/price", body: `{"price": 1}`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do("PUT", tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code)
		})
	}
	assert.Zero(t, f.invalidator.calls)
}

func TestHandleRegionComparison_NotFound(t *testing.T) {
	f := setup(t)

	w := f.do("GET", "/api/properties/999/region-comparison", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleRegionComparison_RegionWithoutAverage(t *testing.T) {
	f := setup(t)

	// Fixture 3 sits in Patras, which has no averages
	w := f.do("GET", "/api/properties/"+strconv.FormatInt(f.propertyID+2, 10)+"/region-comparison", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 2000.0, response["property_price_per_sqm"])
	assert.Nil(t, response["region_avg_price_per_sqm"])
	assert.NotContains(t, response, "price_difference")
	assert.NotContains(t, response, "is_below_average")
}
