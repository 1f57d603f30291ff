package services

import (
	"io"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsService_ServesHandler(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "geotrack_fixes_total 3\n")
	})
	service := NewMetricsService("127.0.0.1:0", handler, zerolog.Nop())

	require.NoError(t, service.Start())
	assert.EqualError(t, service.Start(), "metrics service is already running")

	resp, err := http.Get("http://" + service.Addr() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "geotrack_fixes_total 3")

	require.NoError(t, service.Stop())
	assert.Empty(t, service.Addr())
	assert.EqualError(t, service.Stop(), "metrics service is not running")
}

func TestMetricsService_BindFailure(t *testing.T) {
	service := NewMetricsService("256.0.0.1:bad", http.NotFoundHandler(), zerolog.Nop())
	assert.Error(t, service.Start())
}
