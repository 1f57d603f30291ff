package location

import (
	"context"
	"errors"
	"strings"
	"time"

	"googlemaps.github.io/maps"
)

const geolocationTimeout = 10 * time.Second

// GoogleGeolocationProvider uses the Google Maps API to get location data.
type GoogleGeolocationProvider struct {
	client     *maps.Client // Maps API client for making geolocation requests
	modemIndex int          // ModemManager index queried for cell tower hints
}

// NewGoogleGeolocationProvider creates a new GoogleGeolocationProvider instance.
func NewGoogleGeolocationProvider(apiKey string, modemIndex int) (*GoogleGeolocationProvider, error) {
	if apiKey == "" {
		return nil, NewError(CapabilityUnavailable, errors.New("maps api key is not configured"))
	}

	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, NewError(CapabilityUnavailable, err)
	}

	return &GoogleGeolocationProvider{
		client:     c,
		modemIndex: modemIndex,
	}, nil
}

// Available reports whether the provider was built with a usable client.
func (g *GoogleGeolocationProvider) Available() error {
	if g.client == nil {
		return NewError(CapabilityUnavailable, errors.New("maps client is not initialized"))
	}
	return nil
}

// GetLocation retrieves the device's location using Google Maps Geolocation API.
// WiFi and cell tower hints are best effort; the request falls back to IP based lookup.
func (g *GoogleGeolocationProvider) GetLocation(ctx context.Context) (Location, error) {
	ctx, cancel := context.WithTimeout(ctx, geolocationTimeout)
	defer cancel()

	req := &maps.GeolocationRequest{
		ConsiderIP: true,
	}

	if wifiAPs, err := getWiFiAccessPoints(ctx); err == nil {
		req.WiFiAccessPoints = wifiAPs
	}

	if cellTowers, err := getCellTowers(ctx, g.modemIndex); err == nil {
		req.CellTowers = cellTowers
	}

	resp, err := g.client.Geolocate(ctx, req) // Send the geolocation request
	if err != nil {
		return Location{}, NewError(classifyGeolocationError(err), err)
	}

	// Return the location data obtained from the response
	return Location{
		Latitude:  resp.Location.Lat,
		Longitude: resp.Location.Lng,
		Accuracy:  resp.Accuracy,
	}, nil
}

// Close releases nothing; the maps client holds no open connections of its own.
func (g *GoogleGeolocationProvider) Close() error {
	return nil
}

// classifyGeolocationError maps Geolocation API error reasons onto an ErrorKind.
func classifyGeolocationError(err error) ErrorKind {
	if kind := Classify(err); kind != Unknown {
		return kind
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "notFound"):
		return PositionUnavailable
	case strings.Contains(msg, "keyInvalid"),
		strings.Contains(msg, "accessNotConfigured"),
		strings.Contains(msg, "dailyLimitExceeded"),
		strings.Contains(msg, "userRateLimitExceeded"),
		strings.Contains(msg, "REQUEST_DENIED"):
		return PermissionDenied
	default:
		return Unknown
	}
}
