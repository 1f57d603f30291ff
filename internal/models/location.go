package models

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the ISO-8601 form samples are persisted with (UTC, millisecond precision).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// LocationSample is a single recorded fix. Samples are immutable once created.
type LocationSample struct {
	ID        uuid.UUID
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}

// NewLocationSample creates a sample with a fresh ID, coordinates rounded to 6 decimals
// and the capture time normalised to UTC at millisecond precision.
func NewLocationSample(latitude, longitude float64, capturedAt time.Time) LocationSample {
	return LocationSample{
		ID:        uuid.New(),
		Latitude:  RoundCoordinate(latitude),
		Longitude: RoundCoordinate(longitude),
		Timestamp: capturedAt.UTC().Truncate(time.Millisecond),
	}
}

// RoundCoordinate rounds a coordinate to 6 fractional digits.
func RoundCoordinate(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// FormatCoordinate renders a coordinate with exactly 6 fractional digits.
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// LocationRecord is the persisted form of a LocationSample.
type LocationRecord struct {
	ID        string `json:"id,omitempty"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Timestamp string `json:"timestamp"`
}

// Record converts the sample to its persisted form.
func (s LocationSample) Record() LocationRecord {
	return LocationRecord{
		ID:        s.ID.String(),
		Latitude:  FormatCoordinate(s.Latitude),
		Longitude: FormatCoordinate(s.Longitude),
		Timestamp: s.Timestamp.UTC().Format(TimestampLayout),
	}
}

// legacyIDNamespace scopes the ids derived for records persisted without one.
var legacyIDNamespace = uuid.MustParse("8f6b2c1e-4a0d-5e3b-9c7f-2d1a6e4b8c90")

// Sample parses a persisted record found at index in the log. Records written before
// samples carried an ID get one derived from their position and content, so every
// load of the same log yields the same IDs.
func (r LocationRecord) Sample(index int) (LocationSample, error) {
	var (
		s   LocationSample
		err error
	)

	if r.ID == "" {
		s.ID = r.legacyID(index)
	} else if s.ID, err = uuid.Parse(r.ID); err != nil {
		return LocationSample{}, fmt.Errorf("invalid id %q: %w", r.ID, err)
	}

	if s.Latitude, err = strconv.ParseFloat(r.Latitude, 64); err != nil {
		return LocationSample{}, fmt.Errorf("invalid latitude %q: %w", r.Latitude, err)
	}
	if s.Longitude, err = strconv.ParseFloat(r.Longitude, 64); err != nil {
		return LocationSample{}, fmt.Errorf("invalid longitude %q: %w", r.Longitude, err)
	}
	if s.Timestamp, err = time.Parse(time.RFC3339Nano, r.Timestamp); err != nil {
		return LocationSample{}, fmt.Errorf("invalid timestamp %q: %w", r.Timestamp, err)
	}

	return s, nil
}

func (r LocationRecord) legacyID(index int) uuid.UUID {
	name := fmt.Sprintf("%d|%s|%s|%s", index, r.Latitude, r.Longitude, r.Timestamp)
	return uuid.NewSHA1(legacyIDNamespace, []byte(name))
}

// LocationMessage represents a fix published to the MQTT broker
type LocationMessage struct {
	TrackerID string    `json:"tracker_id"`
	SampleID  string    `json:"sample_id"`
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
}
