package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benmeehan/geotrack/internal/history"
	"github.com/benmeehan/geotrack/internal/models"
	"github.com/benmeehan/geotrack/internal/tracker"
	"github.com/benmeehan/geotrack/internal/utils"
	"github.com/benmeehan/geotrack/pkg/kv"
	"github.com/benmeehan/geotrack/pkg/location"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHistoryCommands(t *testing.T) {
	historyFile := filepath.Join(t.TempDir(), "history.json")
	cfg := writeTestConfig(t, "logging:\n  level: error\nstorage:\n  backend: file\n  file_path: "+historyFile+"\n")

	store := history.NewStore(kv.NewFileStore(historyFile, nil), "", zerolog.Nop())
	first := models.NewLocationSample(51.505, -0.09, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	second := models.NewLocationSample(40, -73, time.Date(2024, 1, 1, 12, 1, 0, 0, time.UTC))
	require.NoError(t, store.Append(context.Background(), first))
	require.NoError(t, store.Append(context.Background(), second))

	out, err := execute(t, "--config", cfg, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, first.ID.String()+"  Location 1: Latitude: 51.505000, Longitude: -0.090000")
	assert.Contains(t, out, second.ID.String()+"  Location 2: Latitude: 40.000000, Longitude: -73.000000")

	out, err = execute(t, "--config", cfg, "history", "delete", first.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted location "+first.ID.String())

	out, err = execute(t, "--config", cfg, "history", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, first.ID.String())
	assert.Contains(t, out, second.ID.String()+"  Location 1:")

	_, err = execute(t, "--config", cfg, "history", "delete", first.ID.String())
	assert.ErrorIs(t, err, history.ErrSampleNotFound)
}

func TestHistoryList_Empty(t *testing.T) {
	cfg := writeTestConfig(t, "logging:\n  level: error\nstorage:\n  backend: memory\n")

	out, err := execute(t, "--config", cfg, "history", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No locations recorded.")
}

func TestHistoryDelete_InvalidID(t *testing.T) {
	cfg := writeTestConfig(t, "storage:\n  backend: memory\n")

	_, err := execute(t, "--config", cfg, "history", "delete", "not-a-uuid")

	assert.ErrorContains(t, err, `invalid location id "not-a-uuid"`)
}

func TestNewProvider(t *testing.T) {
	config := &utils.Config{}
	config.Location.Provider = "fixed"
	config.Location.FixedLatitude = 1.5
	config.Location.FixedLongitude = 2.5

	provider, err := newProvider(config)
	require.NoError(t, err)
	fix, err := provider.GetLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.5, fix.Latitude)

	config.Location.Provider = "google"
	_, err = newProvider(config)
	var locErr *location.Error
	require.ErrorAs(t, err, &locErr)
	assert.Equal(t, location.CapabilityUnavailable, locErr.Kind)

	config.Location.Provider = "wifi"
	_, err = newProvider(config)
	assert.EqualError(t, err, `unknown location provider "wifi"`)
}

func TestNewTracking_UnavailableSensor(t *testing.T) {
	t.Setenv(utils.EnvMapsAPIKey, "")
	configPath = writeTestConfig(t, "logging:\n  level: error\nstorage:\n  backend: memory\nlocation:\n  provider: google\n")

	a, err := newApp(context.Background(), configPath, nil)
	require.NoError(t, err)
	defer a.Close()

	notes := make(chan tracker.Notification, 4)
	tr, err := a.newTracking(context.Background(), tracker.NotifierFunc(func(n tracker.Notification) { notes <- n }))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go tr.controller.Run(ctx)
	defer func() {
		cancel()
		<-tr.controller.Done()
	}()

	err = tr.controller.StartManual(context.Background())

	var locErr *location.Error
	require.ErrorAs(t, err, &locErr)
	assert.Equal(t, location.CapabilityUnavailable, locErr.Kind)
	n := <-notes
	assert.Equal(t, "Geolocation is not supported by this device.", n.Message)
}
