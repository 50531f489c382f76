package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"

	"github.com/natefinch/atomic"

	"github.com/Zachdehooge/world-brief/internal/dom"
	"github.com/Zachdehooge/world-brief/internal/fetcher"
)

const idMapData = "map-data"

// FeedLoader provides a fresh snapshot per call
type FeedLoader interface {
	Load(ctx context.Context) (*fetcher.Snapshot, error)
}

// PageConfig holds the map and display settings baked into the page
type PageConfig struct {
	Title   string
	Center  LatLon
	Zoom    int
	TileURL string
	Tile    TileOptions
	Marker  MarkerStyle
	Limit   int
}

// DefaultPageConfig is a world view on OpenStreetMap tiles
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Title:   "World Brief",
		Center:  LatLon{Lat: 20.2308, Lon: 0},
		Zoom:    2,
		TileURL: "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Tile:    TileOptions{MaxZoom: 7, Attribution: "&copy; OpenStreetMap contributors"},
		Marker:  DefaultMarkerStyle,
		Limit:   DisplayLimit,
	}
}

// Page is one dashboard document with its map. Render can be called repeatedly.
type Page struct {
	doc      *dom.Document
	widget   *Leaflet
	renderer *Renderer
}

// NewPage builds the page skeleton and initializes the map
func NewPage(cfg PageConfig) (*Page, error) {
	var buf bytes.Buffer
	data := struct {
		Title  string
		Legend []CategoryRule
		Other  string
		Limit  int
	}{
		Title:  cfg.Title,
		Legend: CategoryRules(),
		Other:  DefaultCategoryColor,
		Limit:  cfg.Limit,
	}
	if data.Limit <= 0 {
		data.Limit = DisplayLimit
	}
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute page template: %w", err)
	}

	doc, err := dom.Parse(&buf)
	if err != nil {
		return nil, err
	}

	widget := NewLeaflet()
	widget.SetView(cfg.Center, cfg.Zoom)
	widget.AddTileLayer(cfg.TileURL, cfg.Tile)

	renderer, err := NewRenderer(doc, widget, RenderOptions{Limit: data.Limit, Marker: cfg.Marker})
	if err != nil {
		return nil, err
	}
	return &Page{doc: doc, widget: widget, renderer: renderer}, nil
}

// Render draws a loaded snapshot
func (p *Page) Render(snap *fetcher.Snapshot) { p.renderer.Render(snap) }

// RenderError replaces the page content with a load error
func (p *Page) RenderError(err error) { p.renderer.RenderError(err) }

// Document returns the underlying document
func (p *Page) Document() *dom.Document { return p.doc }

// Widget returns the map model
func (p *Page) Widget() *Leaflet { return p.widget }

// Write serialises the page with the current map state embedded
func (p *Page) Write(w io.Writer) error {
	mapJSON, err := json.Marshal(p.widget)
	if err != nil {
		return fmt.Errorf("failed to marshal map state: %w", err)
	}
	el := p.doc.ElementByID(idMapData)
	if el == nil {
		return fmt.Errorf("page has no #%s element", idMapData)
	}
	el.SetText(string(mapJSON))
	return p.doc.Render(w)
}

// GenerateDashboardHTML loads the feed, renders it into page and writes outputPath atomically.
// A load failure is rendered as the error page and then returned.
func GenerateDashboardHTML(ctx context.Context, loader FeedLoader, page *Page, outputPath string) error {
	snap, loadErr := loader.Load(ctx)
	if loadErr != nil {
		log.Printf("[WARN] load failed, writing error page: %v", loadErr)
		page.RenderError(loadErr)
	} else {
		page.Render(snap)
	}

	var buf bytes.Buffer
	if err := page.Write(&buf); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}
	if err := atomic.WriteFile(outputPath, &buf); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	if loadErr != nil {
		return loadErr
	}
	log.Printf("[INFO] %d events (%d markers) written to %s", len(snap.Feed.Events), len(page.widget.Markers()), outputPath)
	return nil
}

var pageTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
   <meta charset="UTF-8"/>
   <meta name="viewport" content="width=device-width, initial-scale=1"/>
   <title>{{ .Title }}</title>
   <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css" />
   <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
   <style>
      :root {
         --bg-color: #121212;
         --text-color: #e0e0e0;
         --card-bg: #1e1e1e;
         --card-border: #333;
         --summary-bg: #252525;
         --muted: #888;
      }
      body {
         font-family: Arial, sans-serif;
         max-width: 1200px;
         margin: 0 auto;
         padding: 20px;
         background-color: var(--bg-color);
         color: var(--text-color);
      }
      a { color: #add8e6; }
      #map {
         height: 520px; width: 100%;
         border: 2px solid var(--card-border);
         border-radius: 5px; margin-top: 10px;
      }
      .layout { display: grid; grid-template-columns: 2fr 1fr; gap: 15px; margin-top: 15px; }
      .panel {
         background-color: var(--summary-bg); padding: 15px;
         border-radius: 5px; border: 1px solid var(--card-border);
      }
      #brief { white-space: pre-wrap; font-family: monospace; font-size: 0.9em; max-height: 400px; overflow-y: auto; }
      .event {
         border: 1px solid var(--card-border); padding: 8px 10px; margin-bottom: 8px;
         border-radius: 5px; background-color: var(--card-bg);
      }
      .meta { font-size: 0.85em; color: var(--muted); margin-top: 3px; }
      .legend-item { display: flex; align-items: center; margin: 4px 0; }
      .legend-color { width: 14px; height: 14px; border-radius: 50%; margin-right: 8px; border: 1px solid #fff; }
      #updatedAt { color: var(--muted); }
      @media (max-width: 768px) { .layout { grid-template-columns: 1fr; } }
   </style>
</head>
<body>
   <h1>{{ .Title }}</h1>
   <h4 id="updatedAt">loading...</h4>
   <h4>Events: <span id="eventCount">0</span> (showing the latest {{ .Limit }})</h4>

   <div id="map"></div>

   <div class="layout">
      <div>
         <h2>Latest events</h2>
         <div id="events"></div>
      </div>
      <div>
         <div class="panel">
            <h3>By category</h3>
            <ul id="counts"></ul>
         </div>
         <div class="panel">
            <h3>Map legend</h3>
            {{ range .Legend }}
            <div class="legend-item"><div class="legend-color" style="background-color: {{ .Color }};"></div><span>{{ .Name }}</span></div>
            {{ end }}
            <div class="legend-item"><div class="legend-color" style="background-color: {{ .Other }};"></div><span>Other</span></div>
         </div>
         <div class="panel">
            <h3>Daily brief</h3>
            <div id="brief"></div>
         </div>
         <div class="panel">
            <h3>Sources</h3>
            <ul id="sources"></ul>
            <h3>Collector errors</h3>
            <ul id="feedErrors"></ul>
         </div>
      </div>
   </div>

   <script type="application/json" id="map-data">{}</script>
   <script>
      (function () {
         var data = JSON.parse(document.getElementById("map-data").textContent || "{}");
         if (!data.center) { return; }
         var map = L.map("map", { zoomControl: true }).setView(data.center, data.zoom);
         (data.tiles || []).forEach(function (t) { L.tileLayer(t.url, t.options).addTo(map); });
         (data.markers || []).forEach(function (m) {
            var marker = L.circleMarker([m.lat, m.lon], m.style).addTo(map);
            if (m.popup) { marker.bindPopup(m.popup); }
         });
      })();
   </script>
</body>
</html>
`))
