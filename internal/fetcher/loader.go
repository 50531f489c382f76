package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultFeedLocation is where the collector writes the event feed
	DefaultFeedLocation = "data/world.json"
	// DefaultBriefLocation is where the collector writes the daily brief
	DefaultBriefLocation = "data/daily_brief.md"

	defaultUserAgent = "world-brief/1.0 (github.com/Zachdehooge/world-brief)"
	defaultTimeout   = 15 * time.Second
	maxBodySize      = 32 << 20
)

// ErrBodyTooLarge is returned when a response exceeds the size limit
var ErrBodyTooLarge = errors.New("body too large")

// LoadError is returned when either document can't be fetched or parsed
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Snapshot is the result of one successful load
type Snapshot struct {
	Feed  *Feed
	Brief string
}

// Loader fetches world.json and daily_brief.md. Locations may be http(s) URLs or local paths.
type Loader struct {
	FeedLocation  string
	BriefLocation string
	UserAgent     string
	Client        *http.Client
	MaxBodySize   int64 // 0 means the 32 MiB default
}

// NewLoader makes a loader with default client settings
func NewLoader(feedLocation, briefLocation string, timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Loader{
		FeedLocation:  feedLocation,
		BriefLocation: briefLocation,
		UserAgent:     defaultUserAgent,
		Client:        &http.Client{Timeout: timeout},
	}
}

// Load fetches both documents concurrently. Nothing is returned unless both succeed.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	var feedBody, briefBody []byte

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := l.read(ctx, l.FeedLocation)
		if err != nil {
			return &LoadError{Source: l.FeedLocation, Err: err}
		}
		feedBody = body
		return nil
	})
	g.Go(func() error {
		body, err := l.read(ctx, l.BriefLocation)
		if err != nil {
			return &LoadError{Source: l.BriefLocation, Err: err}
		}
		briefBody = body
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var feed Feed
	if err := json.Unmarshal(feedBody, &feed); err != nil {
		return nil, &LoadError{Source: l.FeedLocation, Err: err}
	}

	log.Printf("[DEBUG] loaded %d events generated at %q, brief %d bytes", len(feed.Events), feed.GeneratedAt, len(briefBody))
	return &Snapshot{Feed: &feed, Brief: string(briefBody)}, nil
}

func (l *Loader) read(ctx context.Context, location string) ([]byte, error) {
	if location == "" {
		return nil, errors.New("empty location")
	}
	if isHTTP(location) {
		return l.get(ctx, location)
	}

	path := strings.TrimPrefix(location, "file://")
	body, err := os.ReadFile(path) //nolint:gosec // location comes from config or CLI flag
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return body, nil
}

// get always asks for a fresh copy, intermediaries must not serve a cached one
func (l *Loader) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("make request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache, no-store, max-age=0")
	req.Header.Set("Pragma", "no-cache")
	if l.UserAgent != "" {
		req.Header.Set("User-Agent", l.UserAgent)
	}

	client := l.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.bodyLimit()+1))
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		snip := body
		if len(snip) > 200 {
			snip = snip[:200]
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(snip)))
	}
	if int64(len(body)) > l.bodyLimit() {
		return nil, fmt.Errorf("%w, over %d bytes", ErrBodyTooLarge, l.bodyLimit())
	}
	return body, nil
}

func (l *Loader) bodyLimit() int64 {
	if l.MaxBodySize > 0 {
		return l.MaxBodySize
	}
	return maxBodySize
}

func isHTTP(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
