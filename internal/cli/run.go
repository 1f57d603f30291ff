package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/benmeehan/geotrack/internal/metrics"
	"github.com/benmeehan/geotrack/internal/service_registry"
	"github.com/benmeehan/geotrack/internal/tracker"
	"github.com/benmeehan/geotrack/pkg/identity"
	"github.com/benmeehan/geotrack/pkg/mqtt"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the headless tracking agent",
		Long: `Run the tracker without a user interface. Fixes are recorded in the
history, published to MQTT when enabled and exported as prometheus metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgent(cmd.Context())
		},
	}
}

func runAgent(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.newTracking(ctx, tracker.NewLogNotifier(a.logger))
	if err != nil {
		return err
	}
	defer t.provider.Close()

	collectors := metrics.NewCollectors()
	t.controller.OnFix(collectors.ObserveFix)
	t.controller.OnError(collectors.ObserveError)
	a.history.OnChange(collectors.ObserveHistory)
	collectors.ObserveHistory(a.history.Samples())

	trackerInfo := identity.NewTrackerInfo(a.config.Identity.File, a.fileOps)
	trackerID, err := trackerInfo.EnsureTrackerID()
	if err != nil {
		a.logger.Error().Err(err).Str("file", a.config.Identity.File).Msg("Failed to load tracker identity")
		return fmt.Errorf("failed to load tracker identity: %w", err)
	}
	a.logger.Info().Str("tracker_id", trackerID).Msg("Tracker identity loaded")

	var mqttClient mqtt.MQTTClient
	if a.config.MQTT.Enabled {
		// Unique connection id so restarts never collide with a stale session
		clientID := a.config.MQTT.ClientID + "-" + uuid.New().String()
		a.logger.Info().Str("client_id", clientID).Msg("Using MQTT client ID")

		mqttService := mqtt.NewMqttService(a.fileOps)
		if err := mqttService.Initialize(a.config.MQTT.Broker, clientID, a.config.MQTT.CACertificate); err != nil {
			a.logger.Error().Err(err).Msg("Failed to initialize MQTT connection")
			return fmt.Errorf("failed to initialize MQTT connection: %w", err)
		}
		defer mqttService.Disconnect(250)
		mqttClient = mqttService
	}

	serviceRegistry := service_registry.NewServiceRegistry(mqttClient, collectors, a.logger)
	if err := serviceRegistry.RegisterServices(a.config, t.controller, trackerInfo); err != nil {
		return err
	}
	if err := serviceRegistry.StartServices(); err != nil {
		return err
	}
	a.logger.Info().Msg("All services started successfully")

	<-ctx.Done()

	a.logger.Info().Msg("Shutting down gracefully...")
	return serviceRegistry.StopServices()
}
