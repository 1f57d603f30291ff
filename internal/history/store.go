// Package history owns the ordered log of recorded location samples and keeps
// it synchronised with a single persistent key-value slot.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/benmeehan/geotrack/internal/models"
	"github.com/benmeehan/geotrack/pkg/kv"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultKey is the slot the history is stored under.
const DefaultKey = "locationHistory"

var (
	ErrIndexOutOfRange = errors.New("history index out of range")
	ErrSampleNotFound  = errors.New("location sample not found")
)

// Listener receives a copy of the log after every successful mutation.
type Listener func(samples []models.LocationSample)

// Store holds the in-memory log. Every mutation serialises the whole log and
// writes it to the slot before the in-memory copy is replaced.
type Store struct {
	kv     kv.Store
	key    string
	logger zerolog.Logger

	mu        sync.RWMutex
	samples   []models.LocationSample
	listeners []Listener
}

// NewStore creates a history store backed by the given slot. An empty key uses DefaultKey.
func NewStore(store kv.Store, key string, logger zerolog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{
		kv:     store,
		key:    key,
		logger: logger,
	}
}

// Load replaces the in-memory log with the persisted one. It never fails: an absent,
// unreadable or corrupt slot yields an empty log.
func (s *Store) Load(ctx context.Context) []models.LocationSample {
	samples, missingIDs, err := s.read(ctx)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("key", s.key).
			Msg("Failed to load location history, starting with an empty log")
		samples, missingIDs = []models.LocationSample{}, 0
	}

	s.mu.Lock()
	s.samples = samples
	if missingIDs > 0 {
		// Store the derived ids so they survive later deletions that shift positions
		if err := s.commit(ctx, samples); err != nil {
			s.logger.Warn().Err(err).Int("records", missingIDs).Msg("Failed to store ids for records saved without one")
		}
	}
	s.mu.Unlock()

	s.logger.Info().Int("samples", len(samples)).Str("key", s.key).Msg("Location history loaded")
	return slices.Clone(samples)
}

func (s *Store) read(ctx context.Context) ([]models.LocationSample, int, error) {
	value, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read slot: %w", err)
	}
	if !ok {
		return []models.LocationSample{}, 0, nil
	}
	return decode(value)
}

// Append adds sample at the end of the log.
func (s *Store) Append(ctx context.Context, sample models.LocationSample) error {
	s.mu.Lock()
	next := append(slices.Clone(s.samples), sample)
	err := s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Debug().Str("id", sample.ID.String()).Int("samples", len(next)).Msg("Location appended to history")
	s.notify(next)
	return nil
}

// RemoveAt removes the sample at index, shifting later samples down by one.
func (s *Store) RemoveAt(ctx context.Context, index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.samples) {
		n := len(s.samples)
		s.mu.Unlock()
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, n)
	}
	next := slices.Delete(slices.Clone(s.samples), index, index+1)
	err := s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Debug().Int("index", index).Int("samples", len(next)).Msg("Location removed from history")
	s.notify(next)
	return nil
}

// Remove deletes the sample with the given id.
func (s *Store) Remove(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	index := s.indexOf(id)
	if index < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSampleNotFound, id)
	}
	next := slices.Delete(slices.Clone(s.samples), index, index+1)
	err := s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Debug().Str("id", id.String()).Int("samples", len(next)).Msg("Location removed from history")
	s.notify(next)
	return nil
}

// Get returns the sample with the given id.
func (s *Store) Get(id uuid.UUID) (models.LocationSample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.samples[i], true
	}
	return models.LocationSample{}, false
}

// Samples returns a copy of the log, oldest first.
func (s *Store) Samples() []models.LocationSample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.samples)
}

// Len returns the number of samples in the log.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.samples)
}

// OnChange registers a listener called after every successful mutation.
func (s *Store) OnChange(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// commit must be called with s.mu held.
func (s *Store) commit(ctx context.Context, next []models.LocationSample) error {
	value, err := Encode(next)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, value); err != nil {
		s.logger.Error().Err(err).Str("key", s.key).Msg("Failed to persist location history")
		return fmt.Errorf("failed to persist history: %w", err)
	}
	s.samples = next
	return nil
}

func (s *Store) notify(samples []models.LocationSample) {
	s.mu.RLock()
	listeners := slices.Clone(s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(slices.Clone(samples))
	}
}

func (s *Store) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.samples, func(sample models.LocationSample) bool {
		return sample.ID == id
	})
}

// Encode serialises samples to the persisted JSON array form.
func Encode(samples []models.LocationSample) (string, error) {
	records := make([]models.LocationRecord, 0, len(samples))
	for _, sample := range samples {
		records = append(records, sample.Record())
	}

	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to serialize history: %w", err)
	}
	return string(data), nil
}

// Decode parses the persisted JSON array form. A single bad record fails the whole log.
func Decode(value string) ([]models.LocationSample, error) {
	samples, _, err := decode(value)
	return samples, err
}

// decode also reports how many records were stored without an id.
func decode(value string) ([]models.LocationSample, int, error) {
	var records []models.LocationRecord
	if err := json.Unmarshal([]byte(value), &records); err != nil {
		return nil, 0, fmt.Errorf("failed to parse history: %w", err)
	}

	samples := make([]models.LocationSample, 0, len(records))
	missingIDs := 0
	for i, r := range records {
		sample, err := r.Sample(i)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to parse history record %d: %w", i, err)
		}
		if r.ID == "" {
			missingIDs++
		}
		samples = append(samples, sample)
	}
	return samples, missingIDs, nil
}
