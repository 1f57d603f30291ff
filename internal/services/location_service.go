package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benmeehan/geotrack/internal/models"
	"github.com/benmeehan/geotrack/internal/utils"
	"github.com/benmeehan/geotrack/pkg/location"
	"github.com/benmeehan/geotrack/pkg/mqtt"
	"github.com/rs/zerolog"
)

const (
	publishWorkers   = 2
	publishQueueSize = 32
)

// LocationService publishes every accepted fix to an MQTT topic.
type LocationService struct {
	// Configuration fields
	topic          string
	qos            int
	trackerID      string
	publishTimeout time.Duration

	// Dependencies
	mqttClient mqtt.MQTTClient
	logger     zerolog.Logger

	// Internal state management
	mu      sync.RWMutex
	pool    *utils.WorkerPool
	running bool
}

// NewLocationService creates a new LocationService instance with the provided configuration.
func NewLocationService(topic string, qos int, trackerID string, publishTimeout time.Duration,
	mqttClient mqtt.MQTTClient, logger zerolog.Logger) *LocationService {
	return &LocationService{
		topic:          topic,
		qos:            qos,
		trackerID:      trackerID,
		publishTimeout: publishTimeout,
		mqttClient:     mqttClient,
		logger:         logger,
	}
}

// Start begins accepting fixes for publishing.
func (l *LocationService) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		l.logger.Warn().Msg("LocationService is already running")
		return errors.New("location service is already running")
	}

	l.pool = utils.NewWorkerPool(publishWorkers, publishQueueSize)
	l.running = true

	l.logger.Info().
		Str("topic", l.topic).
		Int("qos", l.qos).
		Msg("LocationService started")
	return nil
}

// Stop waits for queued publishes to finish.
func (l *LocationService) Stop() error {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		l.logger.Warn().Msg("LocationService is not running")
		return errors.New("location service is not running")
	}
	l.running = false
	pool := l.pool
	l.pool = nil
	l.mu.Unlock()

	pool.Shutdown()
	l.logger.Info().Msg("LocationService stopped")
	return nil
}

// HandleFix queues a fix for publishing. It never blocks the caller; fixes are
// dropped when the service is stopped or the queue is full.
func (l *LocationService) HandleFix(sample models.LocationSample, fix location.Location) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.running {
		return
	}

	message := models.LocationMessage{
		TrackerID: l.trackerID,
		SampleID:  sample.ID.String(),
		Timestamp: sample.Timestamp,
		Latitude:  sample.Latitude,
		Longitude: sample.Longitude,
		Accuracy:  fix.Accuracy,
	}

	if !l.pool.TrySubmit(func() { _ = l.publish(message) }) {
		l.logger.Warn().Str("sample_id", message.SampleID).Msg("Publish queue is full, dropping location")
	}
}

// publish serializes the location message and publishes it to the MQTT topic.
func (l *LocationService) publish(message models.LocationMessage) error {
	payload, err := json.Marshal(message)
	if err != nil {
		l.logger.Error().Err(err).Msg("Failed to serialize location message")
		return err
	}

	token := l.mqttClient.Publish(l.topic, byte(l.qos), false, payload)
	if !token.WaitTimeout(l.publishTimeout) {
		err := fmt.Errorf("timed out publishing to %s", l.topic)
		l.logger.Error().Err(err).Msg("Failed to publish location message to MQTT")
		return err
	}
	if err := token.Error(); err != nil {
		l.logger.Error().
			Err(err).
			Str("topic", l.topic).
			Msg("Failed to publish location message to MQTT")
		return err
	}

	l.logger.Info().
		Interface("message", message).
		Str("topic", l.topic).
		Msg("Location published successfully")
	return nil
}
