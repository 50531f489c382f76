package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Feed    FeedConfig    `yaml:"feed" json:"feed" jsonschema:"description=Where the event feed and brief are read from"`
	Map     MapConfig     `yaml:"map" json:"map" jsonschema:"description=Initial map view and tile layer"`
	Marker  MarkerConfig  `yaml:"marker" json:"marker" jsonschema:"description=Circle marker style"`
	Display DisplayConfig `yaml:"display" json:"display" jsonschema:"description=List settings"`
	Server  ServerConfig  `yaml:"server" json:"server" jsonschema:"description=HTTP server settings"`
	Output  OutputConfig  `yaml:"output" json:"output" jsonschema:"description=Static file generation settings"`
}

// FeedConfig locates the two input documents
type FeedConfig struct {
	URL       string        `yaml:"url" json:"url" jsonschema:"default=data/world.json,description=Event feed URL or local path"`
	BriefURL  string        `yaml:"brief_url" json:"brief_url" jsonschema:"default=data/daily_brief.md,description=Daily brief URL or local path"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=15s,description=HTTP timeout per document"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"description=User agent for HTTP requests"`
}

// MapConfig sets up the map widget
type MapConfig struct {
	Title       string  `yaml:"title" json:"title" jsonschema:"default=World Brief,description=Page title"`
	CenterLat   float64 `yaml:"center_lat" json:"center_lat" jsonschema:"default=20.2308,minimum=-90,maximum=90"`
	CenterLon   float64 `yaml:"center_lon" json:"center_lon" jsonschema:"default=0,minimum=-180,maximum=180"`
	Zoom        int     `yaml:"zoom" json:"zoom" jsonschema:"default=2,minimum=0,maximum=20"`
	TileURL     string  `yaml:"tile_url" json:"tile_url" jsonschema:"description=Tile URL template"`
	MaxZoom     int     `yaml:"max_zoom" json:"max_zoom" jsonschema:"default=7,minimum=0,maximum=20"`
	Attribution string  `yaml:"attribution" json:"attribution" jsonschema:"description=Tile attribution markup"`
}

// MarkerConfig is the circle marker style, color comes from the event category
type MarkerConfig struct {
	Radius      float64 `yaml:"radius" json:"radius" jsonschema:"default=4"`
	FillOpacity float64 `yaml:"fill_opacity" json:"fill_opacity" jsonschema:"default=0.7,minimum=0,maximum=1"`
	Weight      float64 `yaml:"weight" json:"weight" jsonschema:"default=1"`
}

// DisplayConfig controls the event list
type DisplayConfig struct {
	Limit int `yaml:"limit" json:"limit" jsonschema:"default=120,minimum=1,description=Maximum number of rendered events"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
}

// OutputConfig holds static generation settings
type OutputConfig struct {
	Path     string        `yaml:"path" json:"path" jsonschema:"default=index.html,description=Generated HTML file"`
	Interval time.Duration `yaml:"interval" json:"interval" jsonschema:"default=5m,description=Regeneration interval in watch mode"`
}

// MinInterval is the shortest allowed watch interval
const MinInterval = 30 * time.Second

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads configuration from a YAML file, environment variables are expanded first
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.setDefaults()

	if err := cfg.Verify(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Feed.URL == "" {
		c.Feed.URL = "data/world.json"
	}
	if c.Feed.BriefURL == "" {
		c.Feed.BriefURL = "data/daily_brief.md"
	}
	if c.Feed.Timeout == 0 {
		c.Feed.Timeout = 15 * time.Second
	}

	if c.Map.Title == "" {
		c.Map.Title = "World Brief"
	}
	if c.Map.CenterLat == 0 && c.Map.CenterLon == 0 {
		c.Map.CenterLat = 20.2308
	}
	if c.Map.Zoom == 0 {
		c.Map.Zoom = 2
	}
	if c.Map.TileURL == "" {
		c.Map.TileURL = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	}
	if c.Map.MaxZoom == 0 {
		c.Map.MaxZoom = 7
	}
	if c.Map.Attribution == "" {
		c.Map.Attribution = "&copy; OpenStreetMap contributors"
	}

	if c.Marker.Radius == 0 {
		c.Marker.Radius = 4
	}
	if c.Marker.FillOpacity == 0 {
		c.Marker.FillOpacity = 0.7
	}
	if c.Marker.Weight == 0 {
		c.Marker.Weight = 1
	}

	if c.Display.Limit == 0 {
		c.Display.Limit = 120
	}

	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}

	if c.Output.Path == "" {
		c.Output.Path = "index.html"
	}
	if c.Output.Interval == 0 {
		c.Output.Interval = 5 * time.Minute
	}
}

// Verify checks value ranges
func (c *Config) Verify() error {
	var errs []error
	if c.Display.Limit < 1 {
		errs = append(errs, fmt.Errorf("display.limit must be positive, got %d", c.Display.Limit))
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 20 {
		errs = append(errs, fmt.Errorf("map.zoom must be within 0..20, got %d", c.Map.Zoom))
	}
	if c.Map.MaxZoom < 0 || c.Map.MaxZoom > 20 {
		errs = append(errs, fmt.Errorf("map.max_zoom must be within 0..20, got %d", c.Map.MaxZoom))
	}
	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 {
		errs = append(errs, fmt.Errorf("map.center_lat out of range: %v", c.Map.CenterLat))
	}
	if c.Map.CenterLon < -180 || c.Map.CenterLon > 180 {
		errs = append(errs, fmt.Errorf("map.center_lon out of range: %v", c.Map.CenterLon))
	}
	if c.Map.TileURL == "" {
		errs = append(errs, errors.New("map.tile_url is required"))
	}
	if c.Marker.Radius <= 0 {
		errs = append(errs, fmt.Errorf("marker.radius must be positive, got %v", c.Marker.Radius))
	}
	if c.Marker.FillOpacity < 0 || c.Marker.FillOpacity > 1 {
		errs = append(errs, fmt.Errorf("marker.fill_opacity must be within 0..1, got %v", c.Marker.FillOpacity))
	}
	if c.Output.Interval < MinInterval {
		errs = append(errs, fmt.Errorf("output.interval must be at least %s, got %s", MinInterval, c.Output.Interval))
	}
	return errors.Join(errs...)
}
