package mapview

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingWidget wraps a TileWidget and records the calls made against it.
type recordingWidget struct {
	*TileWidget
	calls []string
}

func newRecordingWidget() *recordingWidget {
	return &recordingWidget{TileWidget: NewTileWidget("", "", 0)}
}

func (r *recordingWidget) SetView(center LatLng, zoom int) {
	r.calls = append(r.calls, "setView")
	r.TileWidget.SetView(center, zoom)
}

func (r *recordingWidget) AddMarker(pos LatLng) Marker {
	r.calls = append(r.calls, "addMarker")
	return r.TileWidget.AddMarker(pos)
}

func (r *recordingWidget) RemoveMarker(m Marker) {
	r.calls = append(r.calls, "removeMarker")
	r.TileWidget.RemoveMarker(m)
}

func TestView_Initialize(t *testing.T) {
	w := newRecordingWidget()
	v := NewView(w, 13, zerolog.Nop())

	require.NoError(t, v.Initialize(LatLng{51.505, -0.09}, 13))
	assert.ErrorIs(t, v.Initialize(LatLng{0, 0}, 3), ErrAlreadyInitialized)

	snap := w.Snapshot()
	assert.Equal(t, LatLng{51.505, -0.09}, snap.Center)
	assert.Equal(t, 13, snap.Zoom)
	assert.Empty(t, snap.Markers)
}

func TestView_ShowCurrent_Idempotent(t *testing.T) {
	w := newRecordingWidget()
	v := NewView(w, 13, zerolog.Nop())

	v.ShowCurrent(10, 20)
	v.ShowCurrent(10, 20)

	snap := w.Snapshot()
	assert.Equal(t, []LatLng{{10, 20}}, snap.Markers)
	assert.Equal(t, LatLng{10, 20}, snap.Center)
	assert.Equal(t, []string{"addMarker", "setView", "setView"}, w.calls)

	pos, ok := v.MarkerPosition()
	assert.True(t, ok)
	assert.Equal(t, LatLng{10, 20}, pos)
}

func TestView_ShowCurrent_MovesInPlace(t *testing.T) {
	w := newRecordingWidget()
	v := NewView(w, 15, zerolog.Nop())

	v.ShowCurrent(10, 20)
	v.ShowCurrent(11, 21)

	snap := w.Snapshot()
	assert.Equal(t, []LatLng{{11, 21}}, snap.Markers)
	assert.Equal(t, 15, snap.Zoom)
	assert.NotContains(t, w.calls, "removeMarker")
}

func TestView_ShowSelected_WithoutMarker(t *testing.T) {
	w := newRecordingWidget()
	v := NewView(w, 13, zerolog.Nop())

	v.ShowSelected(1, 2)

	assert.Equal(t, []LatLng{{1, 2}}, w.Snapshot().Markers)
	assert.Equal(t, []string{"addMarker", "setView"}, w.calls)
}

func TestView_ShowSelected_Replaces(t *testing.T) {
	w := newRecordingWidget()
	v := NewView(w, 13, zerolog.Nop())

	v.ShowCurrent(10, 20)
	w.calls = nil
	v.ShowSelected(1, 2)
	v.ShowCurrent(3, 4)

	assert.Equal(t, []LatLng{{3, 4}}, w.Snapshot().Markers)
	assert.Equal(t, []string{"removeMarker", "addMarker", "setView", "setView"}, w.calls)
}

func TestView_MarkerPosition_None(t *testing.T) {
	v := NewView(newRecordingWidget(), 13, zerolog.Nop())

	_, ok := v.MarkerPosition()

	assert.False(t, ok)
}
