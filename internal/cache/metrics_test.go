package cache

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics("test")

	m.Hit()
	m.Hit()
	m.Miss()
	m.Error(OpGet)
	m.Error(OpGet)
	m.Error(OpSet)
	m.Computed(2 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Misses))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Errors.WithLabelValues(OpGet)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues(OpSet)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Computations))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.Hit()
		m.Miss()
		m.Error(OpDelete)
		m.Computed(time.Millisecond)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("yieldwise")
	m.Hit()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "yieldwise_analysis_cache_hits_total 1")
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics("same")
		NewMetrics("same")
	})
}
