package mapview

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
)

const (
	DefaultTileURL     = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution = "© OpenStreetMap"
	DefaultMaxZoom     = 19

	// Web Mercator is undefined at the poles
	maxMercatorLat = 85.05112878
)

// TileCoord addresses one slippy map tile.
type TileCoord struct {
	X, Y, Z int
}

// URL expands a {z}/{x}/{y} template. {s} is filled with the first subdomain.
func (t TileCoord) URL(template string) string {
	return strings.NewReplacer(
		"{s}", "a",
		"{z}", strconv.Itoa(t.Z),
		"{x}", strconv.Itoa(t.X),
		"{y}", strconv.Itoa(t.Y),
	).Replace(template)
}

// TileAt returns the tile containing pos at the given zoom.
func TileAt(pos LatLng, zoom int) TileCoord {
	n := math.Exp2(float64(zoom))
	lat := math.Max(-maxMercatorLat, math.Min(maxMercatorLat, pos.Lat))
	latRad := lat * math.Pi / 180

	x := int(math.Floor((pos.Lng + 180) / 360 * n))
	y := int(math.Floor((1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n))

	last := int(n) - 1
	return TileCoord{X: clamp(x, 0, last), Y: clamp(y, 0, last), Z: zoom}
}

// Snapshot is a point-in-time copy of the widget state used for rendering.
type Snapshot struct {
	Center      LatLng
	Zoom        int
	Tile        TileCoord
	TileURL     string
	Attribution string
	Markers     []LatLng
}

// TileWidget models an OpenStreetMap style tile viewer: a viewport plus markers.
type TileWidget struct {
	tileURL     string
	attribution string
	maxZoom     int

	mu      sync.RWMutex
	center  LatLng
	zoom    int
	markers []*tileMarker
}

// NewTileWidget creates a widget. Empty values fall back to the OpenStreetMap defaults.
func NewTileWidget(tileURL, attribution string, maxZoom int) *TileWidget {
	if tileURL == "" {
		tileURL = DefaultTileURL
	}
	if attribution == "" {
		attribution = DefaultAttribution
	}
	if maxZoom <= 0 {
		maxZoom = DefaultMaxZoom
	}
	return &TileWidget{
		tileURL:     tileURL,
		attribution: attribution,
		maxZoom:     maxZoom,
	}
}

func (w *TileWidget) SetView(center LatLng, zoom int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.center = center
	w.zoom = clamp(zoom, 0, w.maxZoom)
}

func (w *TileWidget) AddMarker(pos LatLng) Marker {
	w.mu.Lock()
	defer w.mu.Unlock()

	m := &tileMarker{widget: w, pos: pos}
	w.markers = append(w.markers, m)
	return m
}

// RemoveMarker removes m. Markers that do not belong to this widget are ignored.
func (w *TileWidget) RemoveMarker(m Marker) {
	tm, ok := m.(*tileMarker)
	if !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.markers = slices.DeleteFunc(w.markers, func(candidate *tileMarker) bool {
		return candidate == tm
	})
}

func (w *TileWidget) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	tile := TileAt(w.center, w.zoom)
	markers := make([]LatLng, 0, len(w.markers))
	for _, m := range w.markers {
		markers = append(markers, m.pos)
	}

	return Snapshot{
		Center:      w.center,
		Zoom:        w.zoom,
		Tile:        tile,
		TileURL:     tile.URL(w.tileURL),
		Attribution: w.attribution,
		Markers:     markers,
	}
}

type tileMarker struct {
	widget *TileWidget
	pos    LatLng
}

func (m *tileMarker) SetPosition(pos LatLng) {
	m.widget.mu.Lock()
	m.pos = pos
	m.widget.mu.Unlock()
}

func (m *tileMarker) Position() LatLng {
	m.widget.mu.RLock()
	defer m.widget.mu.RUnlock()
	return m.pos
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
