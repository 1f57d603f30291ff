package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benmeehan/geotrack/internal/models"
	"github.com/benmeehan/geotrack/pkg/location"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectors(t *testing.T) {
	c := NewCollectors()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sample := models.NewLocationSample(1, 2, at)

	c.ObserveFix(sample, location.Location{})
	c.ObserveFix(sample, location.Location{})
	c.ObserveError(location.Timeout)
	c.ObserveHistory([]models.LocationSample{sample, sample, sample})

	assert.Equal(t, float64(2), testutil.ToFloat64(c.FixesTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.RequestErrorsTotal.WithLabelValues("timeout")))
	assert.Equal(t, float64(3), testutil.ToFloat64(c.HistorySamples))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(c.LastFixTimestamp))
}

func TestCollectors_Handler(t *testing.T) {
	c := NewCollectors()
	c.ObserveError(location.PermissionDenied)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `geotrack_request_errors_total{kind="permission_denied"} 1`)
}

func TestCollectors_RuntimeMetrics(t *testing.T) {
	c := NewCollectors()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
