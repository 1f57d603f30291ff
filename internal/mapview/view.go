// Package mapview keeps the single "current position" marker on a tile map widget.
package mapview

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// LatLng is a WGS84 coordinate in decimal degrees.
type LatLng struct {
	Lat float64
	Lng float64
}

// Marker is a point placed on the map widget.
type Marker interface {
	SetPosition(pos LatLng)
	Position() LatLng
}

// Widget is the map rendering capability the view drives.
type Widget interface {
	SetView(center LatLng, zoom int)
	AddMarker(pos LatLng) Marker
	RemoveMarker(m Marker)
}

var ErrAlreadyInitialized = errors.New("map view is already initialized")

// View owns the one marker shown on the widget.
type View struct {
	widget    Widget
	focusZoom int
	logger    zerolog.Logger

	mu          sync.Mutex
	initialized bool
	marker      Marker
}

// NewView creates a view that recenters at focusZoom whenever a position is shown.
func NewView(widget Widget, focusZoom int, logger zerolog.Logger) *View {
	return &View{
		widget:    widget,
		focusZoom: focusZoom,
		logger:    logger,
	}
}

// Initialize sets the initial viewport. It may only be called once.
func (v *View) Initialize(center LatLng, zoom int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.initialized {
		return ErrAlreadyInitialized
	}
	v.widget.SetView(center, zoom)
	v.initialized = true

	v.logger.Debug().
		Float64("lat", center.Lat).
		Float64("lng", center.Lng).
		Int("zoom", zoom).
		Msg("Map view initialized")
	return nil
}

// ShowCurrent moves the marker to a live reading, creating it on first use.
func (v *View) ShowCurrent(lat, lng float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	pos := LatLng{Lat: lat, Lng: lng}
	if v.marker != nil {
		v.marker.SetPosition(pos)
	} else {
		v.marker = v.widget.AddMarker(pos)
	}
	v.widget.SetView(pos, v.focusZoom)
}

// ShowSelected replaces the marker with a new one at a chosen history entry.
func (v *View) ShowSelected(lat, lng float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	pos := LatLng{Lat: lat, Lng: lng}
	if v.marker != nil {
		v.widget.RemoveMarker(v.marker)
		v.marker = nil
	}
	v.marker = v.widget.AddMarker(pos)
	v.widget.SetView(pos, v.focusZoom)
}

// MarkerPosition reports where the marker is, if one exists.
func (v *View) MarkerPosition() (LatLng, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.marker == nil {
		return LatLng{}, false
	}
	return v.marker.Position(), true
}
