package generator

import "encoding/json"

// LatLon is a map position in degrees
type LatLon struct {
	Lat float64
	Lon float64
}

// MarshalJSON writes the [lat, lon] pair Leaflet expects
func (p LatLon) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lat, p.Lon})
}

// TileOptions are passed through to L.tileLayer
type TileOptions struct {
	MaxZoom     int    `json:"maxZoom,omitempty"`
	Attribution string `json:"attribution,omitempty"`
}

// MarkerStyle are passed through to L.circleMarker
type MarkerStyle struct {
	Radius      float64 `json:"radius"`
	Color       string  `json:"color"`
	FillColor   string  `json:"fillColor"`
	FillOpacity float64 `json:"fillOpacity"`
	Weight      float64 `json:"weight"`
}

// Layer is a handle to something drawn on the map
type Layer interface {
	BindPopup(html string)
}

// MapWidget is the subset of the map library the renderer drives
type MapWidget interface {
	SetView(center LatLon, zoom int)
	AddTileLayer(urlTemplate string, opts TileOptions)
	AddCircleMarker(at LatLon, style MarkerStyle) Layer
	RemoveLayer(layer Layer)
}

// CircleMarker is a marker recorded by Leaflet
type CircleMarker struct {
	At    LatLon
	Style MarkerStyle
	Popup string
}

// BindPopup sets the popup markup. The caller is responsible for escaping.
func (m *CircleMarker) BindPopup(html string) { m.Popup = html }

type tileLayer struct {
	URL     string      `json:"url"`
	Options TileOptions `json:"options"`
}

// Leaflet records map state and serialises it for the page bootstrap script
type Leaflet struct {
	center  LatLon
	zoom    int
	tiles   []tileLayer
	markers []*CircleMarker
}

// NewLeaflet makes an empty map model
func NewLeaflet() *Leaflet {
	return &Leaflet{}
}

// SetView sets the initial center and zoom
func (l *Leaflet) SetView(center LatLon, zoom int) {
	l.center, l.zoom = center, zoom
}

// AddTileLayer adds a base layer
func (l *Leaflet) AddTileLayer(urlTemplate string, opts TileOptions) {
	l.tiles = append(l.tiles, tileLayer{URL: urlTemplate, Options: opts})
}

// AddCircleMarker adds a marker and returns its handle
func (l *Leaflet) AddCircleMarker(at LatLon, style MarkerStyle) Layer {
	m := &CircleMarker{At: at, Style: style}
	l.markers = append(l.markers, m)
	return m
}

// RemoveLayer drops a marker previously returned by AddCircleMarker, unknown layers are ignored
func (l *Leaflet) RemoveLayer(layer Layer) {
	for i, m := range l.markers {
		if Layer(m) == layer {
			l.markers = append(l.markers[:i], l.markers[i+1:]...)
			return
		}
	}
}

// Markers returns the live markers in insertion order
func (l *Leaflet) Markers() []*CircleMarker {
	res := make([]*CircleMarker, len(l.markers))
	copy(res, l.markers)
	return res
}

// MarshalJSON encodes the map state. encoding/json escapes <, > and & so the
// result is safe to embed in a script element.
func (l *Leaflet) MarshalJSON() ([]byte, error) {
	type marker struct {
		Lat   float64     `json:"lat"`
		Lon   float64     `json:"lon"`
		Style MarkerStyle `json:"style"`
		Popup string      `json:"popup,omitempty"`
	}
	markers := make([]marker, 0, len(l.markers))
	for _, m := range l.markers {
		markers = append(markers, marker{Lat: m.At.Lat, Lon: m.At.Lon, Style: m.Style, Popup: m.Popup})
	}
	tiles := l.tiles
	if tiles == nil {
		tiles = []tileLayer{}
	}
	return json.Marshal(struct {
		Center  LatLon      `json:"center"`
		Zoom    int         `json:"zoom"`
		Tiles   []tileLayer `json:"tiles"`
		Markers []marker    `json:"markers"`
	}{Center: l.center, Zoom: l.zoom, Tiles: tiles, Markers: markers})
}
