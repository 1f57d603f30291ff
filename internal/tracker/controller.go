// Package tracker drives position acquisition. All handlers (user actions, timer
// ticks and sensor results) run one at a time on the controller's event loop.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benmeehan/geotrack/internal/history"
	"github.com/benmeehan/geotrack/internal/mapview"
	"github.com/benmeehan/geotrack/internal/models"
	"github.com/benmeehan/geotrack/pkg/location"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultInterval is the automatic polling period.
const DefaultInterval = time.Minute

const eventQueueSize = 64

// State is the acquisition mode of the controller.
type State int

const (
	Idle State = iota
	AutomaticPolling
)

func (s State) String() string {
	if s == AutomaticPolling {
		return "automatic"
	}
	return "idle"
}

var (
	ErrAlreadyPolling = errors.New("automatic tracking is already running")
	ErrAlreadyRunning = errors.New("tracker is already running")
	ErrNotRunning     = errors.New("tracker is not running")
)

// Status is a snapshot of the controller shown to the user.
type Status struct {
	State    State
	Text     string // "Latitude: …, Longitude: …" of the latest accepted fix
	InFlight int    // position requests awaiting a result
}

// FixListener is called on the event loop for every accepted fix. It must not block.
type FixListener func(sample models.LocationSample, fix location.Location)

// ErrorListener is called on the event loop for every failed request.
type ErrorListener func(kind location.ErrorKind)

// StatusListener is called on the event loop whenever the status changes.
type StatusListener func(status Status)

// Controller owns the acquisition state, the history log and the map view.
type Controller struct {
	provider location.Provider
	history  *history.Store
	view     *mapview.View
	notifier Notifier
	interval time.Duration
	logger   zerolog.Logger
	now      func() time.Time

	events  chan func()
	done    chan struct{}
	running bool
	runCtx  context.Context

	// Owned by the event loop
	stopTicker      context.CancelFunc
	fixListeners    []FixListener
	errorListeners  []ErrorListener
	statusListeners []StatusListener

	mu     sync.RWMutex
	status Status
}

// NewController wires a controller. A zero interval uses DefaultInterval.
func NewController(provider location.Provider, store *history.Store, view *mapview.View, notifier Notifier,
	interval time.Duration, logger zerolog.Logger) *Controller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Controller{
		provider: provider,
		history:  store,
		view:     view,
		notifier: notifier,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		events:   make(chan func(), eventQueueSize),
		done:     make(chan struct{}),
	}
}

// Init loads the persisted history and sets the initial map viewport.
// It must be called once before Run.
func (c *Controller) Init(ctx context.Context, center mapview.LatLng, zoom int) error {
	c.history.Load(ctx)
	return c.view.Initialize(center, zoom)
}

// OnFix registers a listener for accepted fixes. Register listeners before Run.
func (c *Controller) OnFix(l FixListener) { c.fixListeners = append(c.fixListeners, l) }

// OnError registers a listener for failed requests. Register listeners before Run.
func (c *Controller) OnError(l ErrorListener) { c.errorListeners = append(c.errorListeners, l) }

// OnStatus registers a listener for status changes. Register listeners before Run.
func (c *Controller) OnStatus(l StatusListener) { c.statusListeners = append(c.statusListeners, l) }

// Run processes events until ctx is cancelled. In-flight requests use ctx, so they
// are abandoned only when the controller itself shuts down.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.running = true
	c.runCtx = ctx
	c.mu.Unlock()

	defer close(c.done)
	defer c.cancelTicker()

	c.logger.Info().Dur("interval", c.interval).Msg("Tracker event loop started")
	for {
		select {
		case handle := <-c.events:
			handle()
		case <-ctx.Done():
			c.logger.Info().Msg("Tracker event loop stopping")
			return nil
		}
	}
}

// Done is closed once Run has returned.
func (c *Controller) Done() <-chan struct{} { return c.done }

// Status returns the latest status snapshot.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// StartAutomatic starts polling the sensor every interval.
func (c *Controller) StartAutomatic(ctx context.Context) error {
	return c.do(ctx, func() error {
		if err := c.checkCapability(); err != nil {
			return err
		}
		if c.Status().State == AutomaticPolling {
			c.notifyInfo("Automatic tracking is already running.")
			return ErrAlreadyPolling
		}

		c.startTicker()
		c.updateStatus(func(s *Status) { s.State = AutomaticPolling })
		c.notifyInfo(fmt.Sprintf("Automatic tracking started every %s.", describeInterval(c.interval)))
		c.logger.Info().Dur("interval", c.interval).Msg("Automatic tracking started")
		return nil
	})
}

// StartManual issues a single position request.
func (c *Controller) StartManual(ctx context.Context) error {
	return c.do(ctx, func() error {
		if err := c.checkCapability(); err != nil {
			return err
		}
		c.requestFix("manual")
		return nil
	})
}

// Stop cancels automatic polling. Requests already issued still complete.
func (c *Controller) Stop(ctx context.Context) error {
	return c.do(ctx, func() error {
		if c.Status().State != AutomaticPolling {
			c.notifyInfo("Automatic tracking is not running.")
			return nil
		}

		c.cancelTicker()
		c.updateStatus(func(s *Status) { s.State = Idle })
		c.notifyInfo("Automatic tracking stopped.")
		c.logger.Info().Msg("Automatic tracking stopped")
		return nil
	})
}

// Select shows a history entry on the map.
func (c *Controller) Select(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, func() error {
		sample, ok := c.history.Get(id)
		if !ok {
			return fmt.Errorf("%w: %s", history.ErrSampleNotFound, id)
		}
		c.view.ShowSelected(sample.Latitude, sample.Longitude)
		return nil
	})
}

// Delete removes a history entry.
func (c *Controller) Delete(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, func() error {
		return c.history.Remove(c.runCtx, id)
	})
}

// do runs fn on the event loop and waits for its result.
func (c *Controller) do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	select {
	case c.events <- func() { result <- fn() }:
	case <-c.done:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-c.done:
		return ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post queues fn without waiting. It gives up once the loop has exited.
func (c *Controller) post(fn func()) {
	select {
	case c.events <- fn:
	case <-c.done:
	}
}

func (c *Controller) checkCapability() error {
	err := c.provider.Available()
	if err == nil {
		return nil
	}

	var locErr *location.Error
	if !errors.As(err, &locErr) {
		locErr = location.NewError(location.CapabilityUnavailable, err)
	}
	c.logger.Warn().Err(err).Str("kind", locErr.Kind.String()).Msg("Position sensor is not available")
	c.notifyError(locErr.Kind)
	return locErr
}

func (c *Controller) startTicker() {
	tickCtx, cancel := context.WithCancel(c.runCtx)
	c.stopTicker = cancel

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.post(func() {
					// A tick queued just before Stop must not fire
					if tickCtx.Err() != nil {
						return
					}
					c.requestFix("automatic")
				})
			case <-tickCtx.Done():
				return
			}
		}
	}()
}

func (c *Controller) cancelTicker() {
	if c.stopTicker != nil {
		c.stopTicker()
		c.stopTicker = nil
	}
}

// requestFix sends one request to the sensor. There is no deduplication: overlapping
// requests are allowed and each result is handled when it arrives.
func (c *Controller) requestFix(trigger string) {
	c.updateStatus(func(s *Status) { s.InFlight++ })
	c.logger.Debug().Str("trigger", trigger).Msg("Requesting position")

	ctx := c.runCtx
	go func() {
		fix, err := c.provider.GetLocation(ctx)
		c.post(func() {
			c.updateStatus(func(s *Status) { s.InFlight-- })
			if err != nil {
				c.handleError(err)
				return
			}
			c.handleFix(fix)
		})
	}()
}

func (c *Controller) handleFix(fix location.Location) {
	sample := models.NewLocationSample(fix.Latitude, fix.Longitude, c.now())

	c.logger.Debug().
		Float64("latitude", fix.Latitude).
		Float64("longitude", fix.Longitude).
		Float64("accuracy", fix.Accuracy).
		Msg("Position acquired")

	c.updateStatus(func(s *Status) {
		s.Text = fmt.Sprintf("Latitude: %s, Longitude: %s",
			models.FormatCoordinate(sample.Latitude), models.FormatCoordinate(sample.Longitude))
	})

	if err := c.history.Append(c.runCtx, sample); err != nil {
		c.logger.Error().Err(err).Str("id", sample.ID.String()).Msg("Failed to save location")
		c.notify(Notification{Level: LevelError, Kind: location.Unknown, Message: "Failed to save location."})
	}

	c.view.ShowCurrent(sample.Latitude, sample.Longitude)

	for _, l := range c.fixListeners {
		l(sample, fix)
	}
}

func (c *Controller) handleError(err error) {
	kind := location.Classify(err)
	c.logger.Warn().Err(err).Str("kind", kind.String()).Msg("Position request failed")

	c.notifyError(kind)
	for _, l := range c.errorListeners {
		l(kind)
	}
}

func (c *Controller) updateStatus(update func(s *Status)) {
	c.mu.Lock()
	update(&c.status)
	status := c.status
	c.mu.Unlock()

	for _, l := range c.statusListeners {
		l(status)
	}
}

func (c *Controller) notifyInfo(message string) {
	c.notify(Notification{Level: LevelInfo, Message: message})
}

func (c *Controller) notifyError(kind location.ErrorKind) {
	c.notify(Notification{Level: LevelError, Kind: kind, Message: kind.Message()})
}

func (c *Controller) notify(n Notification) {
	n.Time = c.now()
	c.notifier.Notify(n)
}

func describeInterval(d time.Duration) string {
	if d == time.Minute {
		return "minute"
	}
	return d.String()
}
