package services

import (
	"context"
	"testing"
	"time"

	"github.com/benmeehan/geotrack/internal/history"
	"github.com/benmeehan/geotrack/internal/mapview"
	"github.com/benmeehan/geotrack/internal/mocks"
	"github.com/benmeehan/geotrack/internal/tracker"
	"github.com/benmeehan/geotrack/pkg/kv"
	"github.com/benmeehan/geotrack/pkg/location"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T, provider location.Provider) *tracker.Controller {
	t.Helper()
	logger := zerolog.Nop()
	store := history.NewStore(kv.NewMemoryStore(), "", logger)
	view := mapview.NewView(mapview.NewTileWidget("", "", 0), 13, logger)
	c := tracker.NewController(provider, store, view, tracker.NewLogNotifier(logger), time.Hour, logger)
	require.NoError(t, c.Init(context.Background(), mapview.LatLng{Lat: 51.505, Lng: -0.09}, 13))
	return c
}

func TestTrackerService_AutoStart(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("Available").Return(nil)
	provider.On("GetLocation", mock.Anything).Return(location.Location{Latitude: 10, Longitude: 20}, nil)

	controller := newTestController(t, provider)
	service := NewTrackerService(controller, true, zerolog.Nop())

	require.NoError(t, service.Start())
	assert.Equal(t, tracker.AutomaticPolling, controller.Status().State)
	assert.EqualError(t, service.Start(), "tracker service is already running")

	require.NoError(t, service.Stop())
	assert.Equal(t, tracker.Idle, controller.Status().State)
	assert.EqualError(t, service.Stop(), "tracker service is not running")
}

func TestTrackerService_AutoStartUnavailable(t *testing.T) {
	provider := new(mocks.MockProvider)
	provider.On("Available").Return(location.NewError(location.CapabilityUnavailable, nil))

	controller := newTestController(t, provider)
	service := NewTrackerService(controller, true, zerolog.Nop())

	err := service.Start()

	var locErr *location.Error
	require.ErrorAs(t, err, &locErr)
	assert.Equal(t, location.CapabilityUnavailable, locErr.Kind)
	provider.AssertNotCalled(t, "GetLocation", mock.Anything)
}
