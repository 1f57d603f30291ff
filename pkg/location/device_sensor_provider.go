package location

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/tarm/serial"
)

// DefaultFixTimeout bounds a single request when no fix timeout is configured.
const DefaultFixTimeout = 30 * time.Second

// errNoFix is returned when the sensor stream ends without a usable sentence.
var errNoFix = errors.New("no valid GPS data found")

// DeviceSensorProvider is responsible for retrieving location data from a GPS device connected via serial port.
type DeviceSensorProvider struct {
	port        string        // Serial port to which the GPS device is connected
	baudRate    int           // Baud rate for the serial communication
	readTimeout time.Duration // Upper bound for a single read on the port
	fixTimeout  time.Duration // Upper bound for a whole request, fix or not
}

// NewDeviceSensorProvider creates a new instance of DeviceSensorProvider with the specified port and baud rate.
// A receiver without satellite lock keeps streaming sentences, so fixTimeout caps how long a
// request waits for a valid one. Zero uses DefaultFixTimeout.
func NewDeviceSensorProvider(port string, baudRate int, readTimeout, fixTimeout time.Duration) *DeviceSensorProvider {
	if fixTimeout <= 0 {
		fixTimeout = DefaultFixTimeout
	}
	return &DeviceSensorProvider{
		port:        port,
		baudRate:    baudRate,
		readTimeout: readTimeout,
		fixTimeout:  fixTimeout,
	}
}

// Available checks that the serial device node exists and is accessible.
func (d *DeviceSensorProvider) Available() error {
	if d.port == "" {
		return NewError(CapabilityUnavailable, errors.New("no GPS device port configured"))
	}
	if _, err := os.Stat(d.port); err != nil {
		return NewError(CapabilityUnavailable, err)
	}
	return nil
}

// GetLocation reads GPS data from the device and returns the device's location.
func (d *DeviceSensorProvider) GetLocation(ctx context.Context) (Location, error) {
	c := &serial.Config{Name: d.port, Baud: d.baudRate, ReadTimeout: d.readTimeout}
	s, err := serial.OpenPort(c)
	if err != nil {
		return Location{}, NewError(Classify(err), fmt.Errorf("failed to open %s: %w", d.port, err))
	}
	defer s.Close() // Ensure the port is closed when done

	ctx, cancel := context.WithTimeout(ctx, d.fixTimeout)
	defer cancel()

	// Closing the port unblocks a read that is waiting on a silent receiver
	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	return readFix(ctx, s)
}

// Close is a no-op; the port is opened per request.
func (d *DeviceSensorProvider) Close() error {
	return nil
}

// readFix scans NMEA sentences until it finds a GGA or RMC sentence carrying a valid fix
// or ctx is done.
func readFix(ctx context.Context, r io.Reader) (Location, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return Location{}, NewError(Timeout, fmt.Errorf("no GPS fix before deadline: %w", err))
		}

		line := scanner.Text()
		if len(line) == 0 || line[0] != '$' {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			// Partial sentences are common right after the port is opened
			continue
		}

		switch s := sentence.(type) {
		case nmea.GGA:
			if s.FixQuality == nmea.Invalid {
				continue
			}
			return Location{
				Latitude:  s.Latitude,
				Longitude: s.Longitude,
				Accuracy:  float64(s.HDOP), // Use HDOP as a proxy for accuracy
			}, nil
		case nmea.RMC:
			if s.Validity != nmea.ValidRMC {
				continue
			}
			return Location{
				Latitude:  s.Latitude,
				Longitude: s.Longitude,
			}, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return Location{}, NewError(Timeout, fmt.Errorf("no GPS fix before deadline: %w", err))
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, io.ErrNoProgress) {
			return Location{}, NewError(Timeout, err)
		}
		return Location{}, NewError(Classify(err), err)
	}

	return Location{}, NewError(PositionUnavailable, errNoFix)
}
