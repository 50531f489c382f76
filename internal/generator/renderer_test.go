package generator

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachdehooge/world-brief/internal/dom"
	"github.com/Zachdehooge/world-brief/internal/fetcher"
)

const skeleton = `<!DOCTYPE html><html><body>
<h4 id="updatedAt">loading</h4><span id="eventCount"></span>
<div id="brief"></div><ul id="counts"></ul><div id="events"></div>
<ul id="sources"></ul><ul id="feedErrors"></ul></body></html>`

type fakeMarker struct {
	at    LatLon
	style MarkerStyle
	popup string
}

func (m *fakeMarker) BindPopup(html string) { m.popup = html }

// fakeMap records widget calls
type fakeMap struct {
	live    []*fakeMarker
	added   int
	removed int
}

func (f *fakeMap) SetView(LatLon, int) {}

func (f *fakeMap) AddTileLayer(string, TileOptions) {}

func (f *fakeMap) AddCircleMarker(at LatLon, style MarkerStyle) Layer {
	m := &fakeMarker{at: at, style: style}
	f.live = append(f.live, m)
	f.added++
	return m
}

func (f *fakeMap) RemoveLayer(layer Layer) {
	for i, m := range f.live {
		if Layer(m) == layer {
			f.live = append(f.live[:i], f.live[i+1:]...)
			f.removed++
			return
		}
	}
}

func newTestRenderer(t *testing.T) (*Renderer, *dom.Document, *fakeMap) {
	t.Helper()
	doc, err := dom.Parse(strings.NewReader(skeleton))
	require.NoError(t, err)
	m := &fakeMap{}
	r, err := NewRenderer(doc, m, RenderOptions{})
	require.NoError(t, err)
	return r, doc, m
}

func f64(v float64) *float64 { return &v }

func TestRenderer_ScriptTitleEndToEnd(t *testing.T) {
	r, doc, m := newTestRenderer(t)

	snap := &fetcher.Snapshot{
		Feed: &fetcher.Feed{
			GeneratedAt: "2024-01-01T00:00:00Z",
			Events: []fetcher.Event{{
				Title:    "<script>alert(1)</script>",
				Source:   "X",
				Category: "Earthquakes",
				Time:     "2024-01-01T00:00:00Z",
				Lat:      f64(10),
				Lon:      f64(20),
				URL:      "javascript:alert(1)",
			}},
		},
		Brief: "# brief <img src=x onerror=alert(1)>",
	}
	r.Render(snap)

	require.Len(t, m.live, 1)
	marker := m.live[0]
	assert.Equal(t, LatLon{Lat: 10, Lon: 20}, marker.at)
	assert.Equal(t, "#d7263d", marker.style.Color)
	assert.Equal(t, "#d7263d", marker.style.FillColor)
	assert.InDelta(t, 4.0, marker.style.Radius, 1e-9)
	assert.InDelta(t, 0.7, marker.style.FillOpacity, 1e-9)
	assert.InDelta(t, 1.0, marker.style.Weight, 1e-9)
	assert.Equal(t, "<b>&lt;script&gt;alert(1)&lt;/script&gt;</b><br>X<br>2024/1/1 0:00:00 UTC", marker.popup)

	// popup carries no markup besides the fixed <b> and <br> tags
	policy := bluemonday.NewPolicy().AllowElements("b", "br")
	assert.Equal(t, strings.Count(policy.Sanitize(marker.popup), "<"), strings.Count(marker.popup, "<"))
	assert.NotContains(t, marker.popup, "<script")

	assert.Equal(t, "updated: 2024/1/1 0:00:00 UTC", doc.ElementByID(IDUpdatedAt).Text())
	assert.Equal(t, "# brief <img src=x onerror=alert(1)>", doc.ElementByID(IDBrief).Text())
	assert.Equal(t, "1", doc.ElementByID(IDEventCount).Text())

	entries := doc.ElementByID(IDEvents).Children()
	require.Len(t, entries, 1)
	strong := entries[0].Find("strong")
	require.Len(t, strong, 1)
	assert.Equal(t, "<script>alert(1)</script>", strong[0].Text())
	assert.Contains(t, entries[0].Text(), "X | Earthquakes | 2024/1/1 0:00:00 UTC")
	assert.Empty(t, entries[0].Find("a"), "unsafe url gets no link")

	var buf bytes.Buffer
	require.NoError(t, doc.Render(&buf))
	out := buf.String()
	assert.NotContains(t, out, "<script>alert(1)")
	assert.NotContains(t, out, "<img")
	assert.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.NotContains(t, out, "javascript:")
}

func TestRenderer_Fallbacks(t *testing.T) {
	r, doc, m := newTestRenderer(t)

	r.Render(&fetcher.Snapshot{Feed: &fetcher.Feed{Events: []fetcher.Event{
		{Lat: f64(1)},
		{Title: "with link", Source: "USGS", Category: "earthquake", Time: "2024-01-02T00:00:00Z", URL: "https://x"},
	}}})

	assert.Empty(t, m.live, "no event has both coordinates")
	assert.Equal(t, "updated: n/a", doc.ElementByID(IDUpdatedAt).Text())

	entries := doc.ElementByID(IDEvents).Children()
	require.Len(t, entries, 2)

	assert.Equal(t, "with link", entries[0].Find("strong")[0].Text())
	links := entries[0].Find("a")
	require.Len(t, links, 1)
	href, _ := links[0].Attr("href")
	assert.Equal(t, "https://x/", href)
	target, _ := links[0].Attr("target")
	assert.Equal(t, "_blank", target)
	rel, _ := links[0].Attr("rel")
	assert.Equal(t, "noopener noreferrer", rel)
	assert.Equal(t, "source", links[0].Text())
	assert.Equal(t, "with linkUSGS | earthquake | 2024/1/2 0:00:00 UTC source", entries[0].Text())

	assert.Equal(t, "Untitled", entries[1].Find("strong")[0].Text())
	assert.Equal(t, "Untitledunknown | other | n/a", entries[1].Text())

	counts := doc.ElementByID(IDCounts).Children()
	require.Len(t, counts, 2)
	assert.Equal(t, "uncategorized: 1", counts[0].Text())
	assert.Equal(t, "earthquake: 1", counts[1].Text())
}

func TestRenderer_MarkerPopupFallbacks(t *testing.T) {
	r, _, m := newTestRenderer(t)
	r.Render(&fetcher.Snapshot{Feed: &fetcher.Feed{Events: []fetcher.Event{{Lat: f64(0), Lon: f64(0), Source: `a"b'c`}}}})
	require.Len(t, m.live, 1)
	assert.Equal(t, "<b>Untitled</b><br>a&quot;b&#39;c<br>n/a", m.live[0].popup)
	assert.Equal(t, DefaultCategoryColor, m.live[0].style.Color)
}

func TestRenderer_DisplaySetCapped(t *testing.T) {
	r, doc, m := newTestRenderer(t)

	events := make([]fetcher.Event, 150)
	for i := range events {
		events[i] = fetcher.Event{Title: fmt.Sprintf("e%03d", i), Time: fmt.Sprintf("2024-01-01T00:00:%03d", i), Lat: f64(1), Lon: f64(2), Category: "storm"}
	}
	r.Render(&fetcher.Snapshot{Feed: &fetcher.Feed{Events: events}})

	entries := doc.ElementByID(IDEvents).Children()
	require.Len(t, entries, 120)
	assert.Equal(t, "e149", entries[0].Find("strong")[0].Text())
	assert.Equal(t, "e030", entries[119].Find("strong")[0].Text())
	assert.Len(t, m.live, 120)

	counts := doc.ElementByID(IDCounts).Children()
	require.Len(t, counts, 1)
	assert.Equal(t, "storm: 150", counts[0].Text(), "counts cover the whole feed")
	assert.Equal(t, "150", doc.ElementByID(IDEventCount).Text())
}

func TestRenderer_RepeatedRenderIsIdempotent(t *testing.T) {
	r, doc, m := newTestRenderer(t)
	snap := &fetcher.Snapshot{Feed: &fetcher.Feed{
		GeneratedAt: "2024-01-01T00:00:00Z",
		Errors:      []string{"ReliefWeb: timeout"},
		Sources:     []fetcher.Source{{Name: "USGS", URL: "https://earthquake.usgs.gov/"}, {Name: "Bad", URL: "javascript:x"}},
		Events: []fetcher.Event{
			{Title: "a", Lat: f64(1), Lon: f64(1), Category: "fire"},
			{Title: "b", Lat: f64(2), Lon: f64(2), Category: "storm"},
		},
	}}

	r.Render(snap)
	r.Render(snap)
	r.Render(snap)

	assert.Len(t, m.live, 2)
	assert.Equal(t, 6, m.added)
	assert.Equal(t, 4, m.removed)
	assert.Len(t, doc.ElementByID(IDEvents).Children(), 2)
	assert.Len(t, doc.ElementByID(IDCounts).Children(), 2)
	assert.Len(t, doc.ElementByID(IDFeedErrors).Children(), 1)

	sources := doc.ElementByID(IDSources).Children()
	require.Len(t, sources, 2)
	require.Len(t, sources[0].Find("a"), 1)
	assert.Empty(t, sources[1].Find("a"))
	assert.Equal(t, "Bad", sources[1].Text())
}

func TestRenderer_RenderError(t *testing.T) {
	r, doc, m := newTestRenderer(t)

	r.Render(&fetcher.Snapshot{Feed: &fetcher.Feed{Events: []fetcher.Event{{Title: "a", Lat: f64(1), Lon: f64(1)}}}, Brief: "brief"})
	require.Len(t, m.live, 1)

	r.RenderError(&fetcher.LoadError{Source: "data/world.json", Err: errors.New("HTTP 404")})

	assert.Equal(t, "load error: failed to load data/world.json: HTTP 404", doc.ElementByID(IDUpdatedAt).Text())
	assert.Empty(t, m.live)
	assert.Empty(t, doc.ElementByID(IDEvents).Children())
	assert.Empty(t, doc.ElementByID(IDCounts).Children())
	assert.Empty(t, doc.ElementByID(IDBrief).Text())
}

func TestRenderer_NilSnapshot(t *testing.T) {
	r, doc, m := newTestRenderer(t)
	r.Render(nil)
	assert.Equal(t, "load error: no feed loaded", doc.ElementByID(IDUpdatedAt).Text())
	assert.Empty(t, m.live)
}

func TestNewRenderer_MissingElement(t *testing.T) {
	doc, err := dom.Parse(strings.NewReader(`<html><body><div id="events"></div></body></html>`))
	require.NoError(t, err)
	_, err = NewRenderer(doc, &fakeMap{}, RenderOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page has no #")
}
