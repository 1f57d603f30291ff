package service_registry

import (
	"errors"
	"fmt"

	"github.com/benmeehan/geotrack/internal/metrics"
	"github.com/benmeehan/geotrack/internal/services"
	"github.com/benmeehan/geotrack/internal/tracker"
	"github.com/benmeehan/geotrack/internal/utils"
	"github.com/benmeehan/geotrack/pkg/identity"
	"github.com/benmeehan/geotrack/pkg/mqtt"
	"github.com/rs/zerolog"
)

// Service is the interface for all plug-in services
type Service interface {
	Start() error
	Stop() error
}

// ServiceRegistry manages the lifecycle of the agent services.
type ServiceRegistry struct {
	services    map[string]Service // Stores registered services
	serviceKeys []string           // Maintains order of service registration
	mqttClient  mqtt.MQTTClient
	collectors  *metrics.Collectors
	Logger      zerolog.Logger
}

// NewServiceRegistry initializes a new service registry with dependencies.
// mqttClient may be nil when publishing is disabled.
func NewServiceRegistry(mqttClient mqtt.MQTTClient, collectors *metrics.Collectors, logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services:   make(map[string]Service),
		mqttClient: mqttClient,
		collectors: collectors,
		Logger:     logger,
	}
}

// RegisterService adds a new service to the registry.
func (sr *ServiceRegistry) RegisterService(name string, svc Service) {
	if _, exists := sr.services[name]; exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services[name] = svc
	sr.serviceKeys = append(sr.serviceKeys, name)
	sr.Logger.Info().Msgf("Registered service: %s", name)
}

// Services returns the registered service names in start order.
func (sr *ServiceRegistry) Services() []string {
	return append([]string(nil), sr.serviceKeys...)
}

// StartServices initiates all registered services in order.
// If a service fails to start, it stops already started services.
func (sr *ServiceRegistry) StartServices() error {
	startedServices := []string{}

	for _, name := range sr.serviceKeys {
		svc := sr.services[name]
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			sr.Logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(startedServices) - 1; i >= 0; i-- {
				_ = sr.services[startedServices[i]].Stop()
			}
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		startedServices = append(startedServices, name)
	}

	return nil
}

// StopServices stops all services in reverse order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for i := len(sr.serviceKeys) - 1; i >= 0; i-- {
		name := sr.serviceKeys[i]
		if err := sr.services[name].Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.Logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}

// RegisterServices registers the enabled services for the headless agent.
// Publishers are registered before the tracker so no fix is emitted before they accept it.
func (sr *ServiceRegistry) RegisterServices(config *utils.Config, controller *tracker.Controller,
	trackerInfo identity.TrackerInfoInterface) error {
	servicesInOrder := []struct {
		name        string
		enabled     bool
		constructor func() (Service, error)
	}{
		{
			name:    "metrics",
			enabled: config.Metrics.Enabled && sr.collectors != nil,
			constructor: func() (Service, error) {
				return services.NewMetricsService(config.Metrics.ListenAddress, sr.collectors.Handler(), sr.Logger), nil
			},
		},
		{
			name:    "location",
			enabled: config.MQTT.Enabled,
			constructor: func() (Service, error) {
				if sr.mqttClient == nil {
					return nil, errors.New("mqtt client is not initialized")
				}
				svc := services.NewLocationService(
					config.MQTT.Topic,
					config.MQTT.QOS,
					trackerInfo.GetTrackerID(),
					config.MQTT.PublishTimeout,
					sr.mqttClient,
					sr.Logger,
				)
				controller.OnFix(svc.HandleFix)
				return svc, nil
			},
		},
		{
			name:    "tracker",
			enabled: true,
			constructor: func() (Service, error) {
				return services.NewTrackerService(controller, config.Location.AutoStart, sr.Logger), nil
			},
		},
	}

	registeredServices := []string{}
	for _, svc := range servicesInOrder {
		if svc.enabled {
			serviceInstance, err := svc.constructor()
			if err != nil {
				sr.Logger.Error().Err(err).Msgf("Failed to create %s service", svc.name)
				return err
			}
			sr.RegisterService(svc.name, serviceInstance)
			registeredServices = append(registeredServices, svc.name)
		}
	}

	sr.Logger.Info().Msgf("Registered services in order: %v", registeredServices)
	return nil
}
