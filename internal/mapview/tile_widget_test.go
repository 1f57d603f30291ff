package mapview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTileAt(t *testing.T) {
	tests := []struct {
		name string
		pos  LatLng
		zoom int
		want TileCoord
	}{
		{"origin zoom 0", LatLng{0, 0}, 0, TileCoord{0, 0, 0}},
		{"origin zoom 1", LatLng{0, 0}, 1, TileCoord{1, 1, 1}},
		{"london", LatLng{51.505, -0.09}, 13, TileCoord{4093, 2724, 13}},
		{"new york", LatLng{40.0, -73.0}, 13, TileCoord{2434, 3101, 13}},
		{"north pole clamps", LatLng{89.9, 179.99}, 2, TileCoord{3, 0, 2}},
		{"south pole clamps", LatLng{-89.9, -180}, 2, TileCoord{0, 3, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TileAt(tt.pos, tt.zoom))
		})
	}
}

func TestTileCoord_URL(t *testing.T) {
	tile := TileCoord{X: 4093, Y: 2724, Z: 13}

	assert.Equal(t, "https://tile.openstreetmap.org/13/4093/2724.png", tile.URL(DefaultTileURL))
	assert.Equal(t, "https://a.tile.openstreetmap.org/13/4093/2724.png", tile.URL("https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"))
}

func TestTileWidget_Snapshot(t *testing.T) {
	w := NewTileWidget("", "", 0)
	w.SetView(LatLng{51.505, -0.09}, 13)
	m := w.AddMarker(LatLng{1, 2})
	m.SetPosition(LatLng{3, 4})

	snap := w.Snapshot()

	assert.Equal(t, LatLng{51.505, -0.09}, snap.Center)
	assert.Equal(t, 13, snap.Zoom)
	assert.Equal(t, "https://tile.openstreetmap.org/13/4093/2724.png", snap.TileURL)
	assert.Equal(t, DefaultAttribution, snap.Attribution)
	assert.Equal(t, []LatLng{{3, 4}}, snap.Markers)
	assert.Equal(t, LatLng{3, 4}, m.Position())

	w.RemoveMarker(m)
	assert.Empty(t, w.Snapshot().Markers)
}

func TestTileWidget_ZoomClamp(t *testing.T) {
	w := NewTileWidget("", "", 0)

	w.SetView(LatLng{}, 25)
	assert.Equal(t, DefaultMaxZoom, w.Snapshot().Zoom)

	w.SetView(LatLng{}, -3)
	assert.Equal(t, 0, w.Snapshot().Zoom)
}

type foreignMarker struct{ pos LatLng }

func (f *foreignMarker) SetPosition(pos LatLng) { f.pos = pos }
func (f *foreignMarker) Position() LatLng       { return f.pos }

func TestTileWidget_RemoveForeignMarker(t *testing.T) {
	w := NewTileWidget("", "", 0)
	w.AddMarker(LatLng{1, 1})

	w.RemoveMarker(&foreignMarker{})

	assert.Len(t, w.Snapshot().Markers, 1)
}
