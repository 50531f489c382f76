package generator

import "github.com/Zachdehooge/world-brief/internal/fetcher"

// fallbacks for missing event fields
const (
	UntitledLabel      = "Untitled"
	UnknownSourceLabel = "unknown"
	OtherCategoryLabel = "other"
)

// EventView is an event with fallbacks applied and untrusted values checked
type EventView struct {
	Title    string   `json:"title"`
	Source   string   `json:"source"`
	Category string   `json:"category"`
	Time     string   `json:"time,omitempty"`
	TimeText string   `json:"time_text"`
	URL      string   `json:"url,omitempty"`
	Color    string   `json:"color"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
}

// NewEventView applies display fallbacks. URL is empty unless it passed SafeHTTPURL.
func NewEventView(e fetcher.Event) EventView {
	v := EventView{
		Title:    e.Title,
		Source:   e.Source,
		Category: e.Category,
		Time:     e.Time,
		TimeText: FormatTime(e.Time),
		URL:      SafeHTTPURL(e.URL),
		Color:    CategoryColor(e.Category),
		Lat:      e.Lat,
		Lon:      e.Lon,
	}
	if v.Title == "" {
		v.Title = UntitledLabel
	}
	if v.Source == "" {
		v.Source = UnknownSourceLabel
	}
	if v.Category == "" {
		v.Category = OtherCategoryLabel
	}
	return v
}

// Meta is the "source | category | time" line
func (v EventView) Meta() string {
	return v.Source + " | " + v.Category + " | " + v.TimeText
}

// PopupHTML is the marker popup markup, every value escaped
func (v EventView) PopupHTML() string {
	return "<b>" + EscapeHTML(v.Title) + "</b><br>" + EscapeHTML(v.Source) + "<br>" + EscapeHTML(v.TimeText)
}
