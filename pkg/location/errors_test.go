package location

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, Unknown},
		{"classified", NewError(PermissionDenied, errors.New("denied")), PermissionDenied},
		{"wrapped classified", fmt.Errorf("request: %w", NewError(Timeout, nil)), Timeout},
		{"deadline", context.DeadlineExceeded, Timeout},
		{"permission", os.ErrPermission, PermissionDenied},
		{"missing device", fmt.Errorf("open: %w", os.ErrNotExist), PositionUnavailable},
		{"other", errors.New("boom"), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestErrorKind_Message(t *testing.T) {
	assert.Equal(t, "User denied the request for Geolocation.", PermissionDenied.Message())
	assert.Equal(t, "Location information is unavailable.", PositionUnavailable.Message())
	assert.Equal(t, "The request to get user location timed out.", Timeout.Message())
	assert.Equal(t, "An unknown error occurred.", Unknown.Message())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("port busy")
	err := NewError(PositionUnavailable, cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "position_unavailable: port busy", err.Error())
	assert.Equal(t, "timeout", NewError(Timeout, nil).Error())
}

func TestClassifyGeolocationError(t *testing.T) {
	assert.Equal(t, PositionUnavailable, classifyGeolocationError(errors.New("maps: notFound - not found")))
	assert.Equal(t, PermissionDenied, classifyGeolocationError(errors.New("maps: keyInvalid - bad key")))
	assert.Equal(t, Timeout, classifyGeolocationError(context.DeadlineExceeded))
	assert.Equal(t, Unknown, classifyGeolocationError(errors.New("backendError")))
}

func TestNewGoogleGeolocationProvider_NoKey(t *testing.T) {
	_, err := NewGoogleGeolocationProvider("", 0)

	assert.Equal(t, CapabilityUnavailable, Classify(err))
}
