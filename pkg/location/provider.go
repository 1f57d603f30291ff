package location

import "context"

// Provider interface defines the methods for location providers
type Provider interface {
	// Available reports whether the sensor can be used at all. A non-nil error
	// is classified as CapabilityUnavailable unless it already carries a kind.
	Available() error
	// GetLocation issues a single position request. Implementations bound the
	// request with their own timeout.
	GetLocation(ctx context.Context) (Location, error)
	Close() error
}
