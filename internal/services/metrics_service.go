package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const metricsShutdownTimeout = 5 * time.Second

// MetricsService serves prometheus metrics over HTTP.
type MetricsService struct {
	addr    string
	handler http.Handler
	logger  zerolog.Logger

	server   *http.Server
	listener net.Listener
	done     chan struct{}
}

// NewMetricsService creates a MetricsService exposing handler at /metrics on addr.
func NewMetricsService(addr string, handler http.Handler, logger zerolog.Logger) *MetricsService {
	return &MetricsService{
		addr:    addr,
		handler: handler,
		logger:  logger,
	}
}

// Start binds the listen address and serves in a separate goroutine.
func (m *MetricsService) Start() error {
	if m.server != nil {
		m.logger.Warn().Msg("MetricsService is already running")
		return errors.New("metrics service is already running")
	}

	ln, err := net.Listen("tcp", m.addr)
	if err != nil {
		m.logger.Error().Err(err).Str("addr", m.addr).Msg("Failed to bind metrics listener")
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.handler)

	m.listener = ln
	m.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)
		if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	m.logger.Info().Str("addr", ln.Addr().String()).Msg("MetricsService started")
	return nil
}

// Addr returns the bound address, or an empty string when not running.
func (m *MetricsService) Addr() string {
	if m.listener == nil {
		return ""
	}
	return m.listener.Addr().String()
}

// Stop shuts the HTTP server down gracefully.
func (m *MetricsService) Stop() error {
	if m.server == nil {
		m.logger.Warn().Msg("MetricsService is not running")
		return errors.New("metrics service is not running")
	}

	ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()

	err := m.server.Shutdown(ctx)
	<-m.done
	m.server, m.listener = nil, nil

	m.logger.Info().Msg("MetricsService stopped")
	return err
}
