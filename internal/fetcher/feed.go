package fetcher

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrMissingEvents is returned when the feed has no usable events array
var ErrMissingEvents = errors.New("feed has no events array")

// Event represents one reported incident from world.json.
// Every field is optional; absent or mistyped values decode to the zero value.
type Event struct {
	ID       string   `json:"id,omitempty" jsonschema:"description=Collector-assigned identifier"`
	Title    string   `json:"title,omitempty"`
	Source   string   `json:"source,omitempty"`
	Category string   `json:"category,omitempty"`
	Time     string   `json:"time,omitempty" jsonschema:"description=ISO-8601 timestamp, compared as a raw string"`
	URL      string   `json:"url,omitempty"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
	Severity *float64 `json:"severity,omitempty"`
}

// Source is an upstream data provider listed by the collector
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Build carries collector build info
type Build struct {
	Version    string `json:"version"`
	DurationMS int64  `json:"duration_ms"`
}

// Feed is the top-level world.json document
type Feed struct {
	GeneratedAt string   `json:"generated_at,omitempty"`
	EventCount  int      `json:"event_count,omitempty"`
	Errors      []string `json:"errors,omitempty"`
	Sources     []Source `json:"sources,omitempty"`
	Events      []Event  `json:"events" jsonschema:"required"`
	Build       *Build   `json:"build,omitempty"`
}

// HasLocation reports whether both coordinates are present
func (e Event) HasLocation() bool {
	return e.Lat != nil && e.Lon != nil
}

// UnmarshalJSON decodes an event leniently, a bad field never rejects the event
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// not an object, keep an empty event so it still shows up in the list
		*e = Event{}
		return nil //nolint:nilerr // a non-object event degrades to placeholders
	}

	*e = Event{
		ID:       looseString(raw["id"]),
		Title:    looseString(raw["title"]),
		Source:   looseString(raw["source"]),
		Category: looseString(raw["category"]),
		Time:     looseString(raw["time"]),
		URL:      looseString(raw["url"]),
		Lat:      looseNumber(raw["lat"]),
		Lon:      looseNumber(raw["lon"]),
		Severity: looseNumber(raw["severity"]),
	}
	return nil
}

// UnmarshalJSON decodes the feed and rejects a missing or non-array events field
func (f *Feed) UnmarshalJSON(data []byte) error {
	var raw struct {
		GeneratedAt json.RawMessage `json:"generated_at"`
		EventCount  json.RawMessage `json:"event_count"`
		Errors      json.RawMessage `json:"errors"`
		Sources     json.RawMessage `json:"sources"`
		Events      json.RawMessage `json:"events"`
		Build       json.RawMessage `json:"build"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode feed: %w", err)
	}

	events := bytes.TrimSpace(raw.Events)
	if len(events) == 0 || events[0] != '[' {
		return ErrMissingEvents
	}

	result := Feed{GeneratedAt: looseString(raw.GeneratedAt), Build: looseBuild(raw.Build)}
	if err := json.Unmarshal(events, &result.Events); err != nil {
		return fmt.Errorf("decode events: %w", err)
	}
	if result.Events == nil {
		result.Events = []Event{}
	}
	if n := looseNumber(raw.EventCount); n != nil {
		result.EventCount = int(*n)
	}

	// collector extras are informational, ignore them when malformed
	var errs []json.RawMessage
	if json.Unmarshal(raw.Errors, &errs) == nil {
		for _, msg := range errs {
			if s := looseString(msg); s != "" {
				result.Errors = append(result.Errors, s)
			}
		}
	}
	var sources []map[string]json.RawMessage
	if json.Unmarshal(raw.Sources, &sources) == nil {
		for _, src := range sources {
			result.Sources = append(result.Sources, Source{Name: looseString(src["name"]), URL: looseString(src["url"])})
		}
	}

	*f = result
	return nil
}

// looseBuild keeps whatever build fields are usable, nil if build isn't an object
func looseBuild(raw json.RawMessage) *Build {
	var fields map[string]json.RawMessage
	if json.Unmarshal(raw, &fields) != nil || fields == nil {
		return nil
	}
	b := &Build{Version: looseString(fields["version"])}
	if n := looseNumber(fields["duration_ms"]); n != nil {
		b.DurationMS = int64(*n)
	}
	return b
}

// looseString stringifies scalars and drops everything else
func looseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return ""
		}
		return strconv.FormatBool(b)
	case 'n', '{', '[':
		return ""
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return ""
		}
		return n.String()
	}
}

// looseNumber returns a value only for JSON numbers
func looseNumber(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' || raw[0] == 'n' || raw[0] == 't' || raw[0] == 'f' || raw[0] == '{' || raw[0] == '[' {
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}
