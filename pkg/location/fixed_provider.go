package location

import "context"

// FixedProvider always reports the same configured coordinate.
type FixedProvider struct {
	location Location
}

// NewFixedProvider creates a provider that returns latitude/longitude on every request.
func NewFixedProvider(latitude, longitude float64) *FixedProvider {
	return &FixedProvider{location: Location{Latitude: latitude, Longitude: longitude}}
}

func (f *FixedProvider) Available() error { return nil }

func (f *FixedProvider) GetLocation(ctx context.Context) (Location, error) {
	if err := ctx.Err(); err != nil {
		return Location{}, NewError(Timeout, err)
	}
	return f.location, nil
}

func (f *FixedProvider) Close() error { return nil }
