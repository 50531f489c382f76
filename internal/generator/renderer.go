package generator

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Zachdehooge/world-brief/internal/dom"
	"github.com/Zachdehooge/world-brief/internal/fetcher"
)

// element ids the renderer writes to
const (
	IDUpdatedAt  = "updatedAt"
	IDBrief      = "brief"
	IDCounts     = "counts"
	IDEvents     = "events"
	IDFeedErrors = "feedErrors"
	IDSources    = "sources"
	IDEventCount = "eventCount"
)

// RenderOptions control the display set size and marker look
type RenderOptions struct {
	Limit  int
	Marker MarkerStyle
}

// DefaultMarkerStyle is the circle marker look, color is set per event
var DefaultMarkerStyle = MarkerStyle{Radius: 4, FillOpacity: 0.7, Weight: 1}

// Renderer draws a snapshot into a document and a map widget.
// Each render removes everything the previous one added.
type Renderer struct {
	doc    *dom.Document
	widget MapWidget
	opts   RenderOptions

	status, brief, counts, events *dom.Element
	feedErrors, sources, total    *dom.Element // optional

	layers []Layer
}

// NewRenderer binds to the required elements of doc
func NewRenderer(doc *dom.Document, widget MapWidget, opts RenderOptions) (*Renderer, error) {
	r := &Renderer{doc: doc, widget: widget, opts: opts}
	if r.opts.Limit <= 0 {
		r.opts.Limit = DisplayLimit
	}
	if r.opts.Marker.Radius <= 0 {
		r.opts.Marker = DefaultMarkerStyle
	}

	required := map[string]**dom.Element{
		IDUpdatedAt: &r.status,
		IDBrief:     &r.brief,
		IDCounts:    &r.counts,
		IDEvents:    &r.events,
	}
	for id, dst := range required {
		el := doc.ElementByID(id)
		if el == nil {
			return nil, fmt.Errorf("page has no #%s element", id)
		}
		*dst = el
	}
	r.feedErrors = doc.ElementByID(IDFeedErrors)
	r.sources = doc.ElementByID(IDSources)
	r.total = doc.ElementByID(IDEventCount)
	return r, nil
}

// Render draws the feed. The status line, brief and counts cover the whole feed,
// markers and list entries only the display set.
func (r *Renderer) Render(snap *fetcher.Snapshot) {
	if snap == nil || snap.Feed == nil {
		r.RenderError(errors.New("no feed loaded"))
		return
	}
	r.Clear()
	feed := snap.Feed

	r.status.SetText("updated: " + FormatTime(feed.GeneratedAt))
	r.brief.SetText(snap.Brief)
	if r.total != nil {
		r.total.SetText(strconv.Itoa(len(feed.Events)))
	}

	for _, c := range Summarize(feed.Events) {
		li := r.doc.CreateElement("li")
		li.SetText(fmt.Sprintf("%s: %d", c.Category, c.Count))
		r.counts.Append(li)
	}

	for _, e := range SelectDisplaySet(feed.Events, r.opts.Limit) {
		v := NewEventView(e)
		if e.HasLocation() {
			r.addMarker(v, *e.Lat, *e.Lon)
		}
		r.events.Append(r.eventEntry(v))
	}

	r.renderExtras(feed)
}

// RenderError clears the page and shows err on the status line only
func (r *Renderer) RenderError(err error) {
	r.Clear()
	r.status.SetText("load error: " + err.Error())
}

// Clear removes markers and list content added by earlier renders
func (r *Renderer) Clear() {
	for _, l := range r.layers {
		r.widget.RemoveLayer(l)
	}
	r.layers = nil

	for _, el := range []*dom.Element{r.brief, r.counts, r.events, r.feedErrors, r.sources, r.total} {
		if el != nil {
			el.Clear()
		}
	}
}

func (r *Renderer) addMarker(v EventView, lat, lon float64) {
	style := r.opts.Marker
	style.Color = v.Color
	style.FillColor = v.Color
	layer := r.widget.AddCircleMarker(LatLon{Lat: lat, Lon: lon}, style)
	layer.BindPopup(v.PopupHTML())
	r.layers = append(r.layers, layer)
}

// eventEntry builds <div class="event"><div><strong>title</strong></div><div class="meta">...</div></div>
func (r *Renderer) eventEntry(v EventView) *dom.Element {
	el := r.doc.CreateElement("div")
	el.SetAttr("class", "event")

	titleDiv := r.doc.CreateElement("div")
	strong := r.doc.CreateElement("strong")
	strong.SetText(v.Title)
	titleDiv.Append(strong)
	el.Append(titleDiv)

	meta := r.doc.CreateElement("div")
	meta.SetAttr("class", "meta")
	meta.SetText(v.Meta())
	if v.URL != "" {
		meta.AppendText(" ")
		meta.Append(r.link(v.URL, "source"))
	}
	el.Append(meta)
	return el
}

// link opens in a new tab without giving the target a handle to this page
func (r *Renderer) link(href, text string) *dom.Element {
	a := r.doc.CreateElement("a")
	a.SetAttr("href", href)
	a.SetAttr("target", "_blank")
	a.SetAttr("rel", "noopener noreferrer")
	a.SetText(text)
	return a
}

func (r *Renderer) renderExtras(feed *fetcher.Feed) {
	if r.feedErrors != nil {
		for _, msg := range feed.Errors {
			li := r.doc.CreateElement("li")
			li.SetText(msg)
			r.feedErrors.Append(li)
		}
	}
	if r.sources != nil {
		for _, src := range feed.Sources {
			li := r.doc.CreateElement("li")
			name := src.Name
			if name == "" {
				name = UnknownSourceLabel
			}
			if href := SafeHTTPURL(src.URL); href != "" {
				li.Append(r.link(href, name))
			} else {
				li.SetText(name)
			}
			r.sources.Append(li)
		}
	}
}
