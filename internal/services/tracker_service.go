package services

import (
	"context"
	"errors"

	"github.com/benmeehan/geotrack/internal/tracker"
	"github.com/rs/zerolog"
)

// TrackerService runs the tracker event loop and, in agent mode, starts automatic polling.
type TrackerService struct {
	controller *tracker.Controller
	autoStart  bool
	logger     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewTrackerService creates a TrackerService around an initialised controller.
func NewTrackerService(controller *tracker.Controller, autoStart bool, logger zerolog.Logger) *TrackerService {
	return &TrackerService{
		controller: controller,
		autoStart:  autoStart,
		logger:     logger,
	}
}

// Start launches the event loop in a separate goroutine.
func (t *TrackerService) Start() error {
	if t.ctx != nil {
		t.logger.Warn().Msg("TrackerService is already running")
		return errors.New("tracker service is already running")
	}

	t.ctx, t.cancel = context.WithCancel(context.Background())
	go func() {
		if err := t.controller.Run(t.ctx); err != nil {
			t.logger.Error().Err(err).Msg("Tracker event loop exited")
		}
	}()

	if t.autoStart {
		if err := t.controller.StartAutomatic(t.ctx); err != nil {
			t.cancel()
			<-t.controller.Done()
			t.ctx, t.cancel = nil, nil
			return err
		}
	}

	t.logger.Info().Bool("automatic", t.autoStart).Msg("TrackerService started successfully")
	return nil
}

// Stop cancels polling and shuts the event loop down.
func (t *TrackerService) Stop() error {
	if t.ctx == nil {
		t.logger.Warn().Msg("TrackerService is not running")
		return errors.New("tracker service is not running")
	}

	if t.controller.Status().State == tracker.AutomaticPolling {
		if err := t.controller.Stop(t.ctx); err != nil {
			t.logger.Error().Err(err).Msg("Failed to stop automatic tracking")
		}
	}

	t.cancel()
	<-t.controller.Done()
	t.ctx, t.cancel = nil, nil

	t.logger.Info().Msg("TrackerService stopped successfully")
	return nil
}
