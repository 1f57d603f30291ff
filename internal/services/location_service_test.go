package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/benmeehan/geotrack/internal/mocks"
	"github.com/benmeehan/geotrack/internal/models"
	"github.com/benmeehan/geotrack/pkg/location"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLocationService_Publish(t *testing.T) {
	// Setup
	mockMQTT := new(mocks.MockMQTTClient)
	mockToken := new(mocks.MockToken)
	published := make(chan []byte, 1)

	mockMQTT.On("Publish", "geotrack/location", byte(1), false, mock.Anything).
		Run(func(args mock.Arguments) { published <- args.Get(3).([]byte) }).
		Return(mockToken)
	mockToken.On("WaitTimeout", time.Second).Return(true)
	mockToken.On("Error").Return(nil)

	service := NewLocationService("geotrack/location", 1, "tracker-1", time.Second, mockMQTT, zerolog.Nop())
	require.NoError(t, service.Start())

	sample := models.NewLocationSample(51.5054321, -0.0912346, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	// Execute
	service.HandleFix(sample, location.Location{Latitude: 51.5054321, Longitude: -0.0912346, Accuracy: 12})

	// Verify
	var payload []byte
	select {
	case payload = <-published:
	case <-time.After(2 * time.Second):
		t.Fatal("location was not published")
	}

	var message models.LocationMessage
	require.NoError(t, json.Unmarshal(payload, &message))
	assert.Equal(t, "tracker-1", message.TrackerID)
	assert.Equal(t, sample.ID.String(), message.SampleID)
	assert.Equal(t, 51.505432, message.Latitude)
	assert.Equal(t, -0.091235, message.Longitude)
	assert.Equal(t, 12.0, message.Accuracy)
	assert.True(t, sample.Timestamp.Equal(message.Timestamp))

	require.NoError(t, service.Stop())
	mockMQTT.AssertExpectations(t)
	mockToken.AssertExpectations(t)
}

func TestLocationService_PublishErrors(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		mockMQTT := new(mocks.MockMQTTClient)
		mockToken := new(mocks.MockToken)
		mockMQTT.On("Publish", "topic", byte(0), false, mock.Anything).Return(mockToken)
		mockToken.On("WaitTimeout", time.Second).Return(false)

		service := NewLocationService("topic", 0, "tracker-1", time.Second, mockMQTT, zerolog.Nop())
		err := service.publish(models.LocationMessage{TrackerID: "tracker-1"})

		assert.ErrorContains(t, err, "timed out publishing to topic")
		mockToken.AssertNotCalled(t, "Error")
	})

	t.Run("broker error", func(t *testing.T) {
		mockMQTT := new(mocks.MockMQTTClient)
		mockToken := new(mocks.MockToken)
		mockMQTT.On("Publish", "topic", byte(0), false, mock.Anything).Return(mockToken)
		mockToken.On("WaitTimeout", time.Second).Return(true)
		mockToken.On("Error").Return(errors.New("not authorized"))

		service := NewLocationService("topic", 0, "tracker-1", time.Second, mockMQTT, zerolog.Nop())
		err := service.publish(models.LocationMessage{TrackerID: "tracker-1"})

		assert.EqualError(t, err, "not authorized")
	})
}

func TestLocationService_HandleFixWhenStopped(t *testing.T) {
	mockMQTT := new(mocks.MockMQTTClient)
	service := NewLocationService("topic", 0, "tracker-1", time.Second, mockMQTT, zerolog.Nop())

	service.HandleFix(models.NewLocationSample(1, 2, time.Now()), location.Location{Latitude: 1, Longitude: 2})

	mockMQTT.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLocationService_StartStop(t *testing.T) {
	service := NewLocationService("topic", 0, "tracker-1", time.Second, new(mocks.MockMQTTClient), zerolog.Nop())

	assert.EqualError(t, service.Stop(), "location service is not running")
	require.NoError(t, service.Start())
	assert.EqualError(t, service.Start(), "location service is already running")
	require.NoError(t, service.Stop())
}
