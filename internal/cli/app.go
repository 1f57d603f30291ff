package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/benmeehan/geotrack/internal/history"
	"github.com/benmeehan/geotrack/internal/mapview"
	"github.com/benmeehan/geotrack/internal/tracker"
	"github.com/benmeehan/geotrack/internal/utils"
	"github.com/benmeehan/geotrack/pkg/file"
	"github.com/benmeehan/geotrack/pkg/kv"
	"github.com/benmeehan/geotrack/pkg/location"
	"github.com/rs/zerolog"
)

// app holds the components shared by every command.
type app struct {
	config    *utils.Config
	logger    zerolog.Logger
	logCloser io.Closer
	fileOps   file.FileOperations
	store     kv.Store
	history   *history.Store
}

// newApp loads the configuration, sets up logging and opens the history slot.
// Logs go to logOut unless the configuration names a log file.
func newApp(ctx context.Context, path string, logOut io.Writer) (*app, error) {
	fileOps := file.NewFileService()
	config, err := utils.LoadConfig(path, fileOps)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, logCloser, err := utils.NewLogger(config.Logging.Level, config.Logging.File, logOut)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	store, err := openStore(ctx, config)
	if err != nil {
		logger.Error().Err(err).Str("backend", config.Storage.Backend).Msg("Failed to open history storage")
		_ = logCloser.Close()
		return nil, err
	}
	logger.Info().Str("backend", config.Storage.Backend).Str("key", config.Storage.Key).Msg("History storage opened")

	return &app{
		config:    config,
		logger:    logger,
		logCloser: logCloser,
		fileOps:   fileOps,
		store:     store,
		history:   history.NewStore(store, config.Storage.Key, logger),
	}, nil
}

func openStore(ctx context.Context, config *utils.Config) (kv.Store, error) {
	return kv.Open(ctx, kv.Options{
		Backend:       config.Storage.Backend,
		FilePath:      config.Storage.FilePath,
		RedisAddr:     config.Storage.Redis.Address,
		RedisPassword: config.Storage.Redis.Password,
		RedisDB:       config.Storage.Redis.DB,
		PostgresDSN:   config.Storage.Postgres.DSN,
		PostgresTable: config.Storage.Postgres.Table,
	})
}

// newProvider creates the configured position sensor.
func newProvider(config *utils.Config) (location.Provider, error) {
	switch config.Location.Provider {
	case "gps":
		return location.NewDeviceSensorProvider(
			config.Location.GPSDevicePort,
			config.Location.GPSDeviceBaudRate,
			config.Location.GPSReadTimeout,
			config.Location.GPSFixTimeout,
		), nil
	case "google":
		provider, err := location.NewGoogleGeolocationProvider(config.Location.MapsAPIKey, config.Location.ModemIndex)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case "fixed":
		return location.NewFixedProvider(config.Location.FixedLatitude, config.Location.FixedLongitude), nil
	default:
		return nil, fmt.Errorf("unknown location provider %q", config.Location.Provider)
	}
}

// tracking is the controller together with the map it drives.
type tracking struct {
	provider   location.Provider
	widget     *mapview.TileWidget
	controller *tracker.Controller
}

// newTracking wires provider, map and controller, then loads the history and
// sets the initial viewport.
func (a *app) newTracking(ctx context.Context, notifier tracker.Notifier) (*tracking, error) {
	provider, err := newProvider(a.config)
	if err != nil {
		// The controller reports an unusable sensor on every start attempt.
		var locErr *location.Error
		if !errors.As(err, &locErr) {
			return nil, err
		}
		a.logger.Warn().Err(err).Str("provider", a.config.Location.Provider).Msg("Position sensor is not available")
		provider = unavailableProvider{err: locErr}
	}

	widget := mapview.NewTileWidget(a.config.Map.TileURL, a.config.Map.Attribution, a.config.Map.MaxZoom)
	view := mapview.NewView(widget, a.config.Map.FocusZoom, a.logger)
	controller := tracker.NewController(provider, a.history, view, notifier, a.config.Location.Interval, a.logger)

	center := mapview.LatLng{Lat: a.config.Map.CenterLatitude, Lng: a.config.Map.CenterLongitude}
	if err := controller.Init(ctx, center, a.config.Map.Zoom); err != nil {
		_ = provider.Close()
		return nil, err
	}

	return &tracking{provider: provider, widget: widget, controller: controller}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close history storage")
	}
	_ = a.logCloser.Close()
}

// unavailableProvider stands in for a sensor that could not be constructed.
type unavailableProvider struct {
	err *location.Error
}

func (u unavailableProvider) Available() error { return u.err }

func (u unavailableProvider) GetLocation(context.Context) (location.Location, error) {
	return location.Location{}, u.err
}

func (u unavailableProvider) Close() error { return nil }
