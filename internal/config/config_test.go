package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		path := writeConfig(t, `
feed:
  url: https://example.com/data/world.json
  brief_url: https://example.com/data/daily_brief.md
  timeout: 5s
map:
  title: Test Brief
  center_lat: 35.5
  center_lon: 139.7
  zoom: 4
display:
  limit: 50
server:
  listen: ":9090"
output:
  path: out.html
  interval: 1m
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "https://example.com/data/world.json", cfg.Feed.URL)
		assert.Equal(t, "https://example.com/data/daily_brief.md", cfg.Feed.BriefURL)
		assert.Equal(t, 5*time.Second, cfg.Feed.Timeout)
		assert.Equal(t, "Test Brief", cfg.Map.Title)
		assert.InDelta(t, 35.5, cfg.Map.CenterLat, 1e-9)
		assert.InDelta(t, 139.7, cfg.Map.CenterLon, 1e-9)
		assert.Equal(t, 4, cfg.Map.Zoom)
		assert.Equal(t, 50, cfg.Display.Limit)
		assert.Equal(t, ":9090", cfg.Server.Listen)
		assert.Equal(t, "out.html", cfg.Output.Path)
		assert.Equal(t, time.Minute, cfg.Output.Interval)

		// untouched sections get defaults
		assert.InDelta(t, 4.0, cfg.Marker.Radius, 1e-9)
		assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "{}\n"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		assert.Equal(t, "data/world.json", cfg.Feed.URL)
		assert.Equal(t, "data/daily_brief.md", cfg.Feed.BriefURL)
		assert.Equal(t, 120, cfg.Display.Limit)
		assert.InDelta(t, 20.2308, cfg.Map.CenterLat, 1e-9)
		assert.Equal(t, 2, cfg.Map.Zoom)
		assert.InDelta(t, 0.7, cfg.Marker.FillOpacity, 1e-9)
		assert.Equal(t, 5*time.Minute, cfg.Output.Interval)
	})

	t.Run("env expansion", func(t *testing.T) {
		t.Setenv("WB_FEED_URL", "https://cdn.example.com/world.json")
		cfg, err := Load(writeConfig(t, "feed:\n  url: ${WB_FEED_URL}\n"))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/world.json", cfg.Feed.URL)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "feed: [\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(writeConfig(t, "display:\n  limit: -1\nmap:\n  zoom: 30\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "display.limit")
		assert.Contains(t, err.Error(), "map.zoom")
	})
}

func TestVerify(t *testing.T) {
	tbl := []struct {
		name    string
		mod     func(c *Config)
		wantErr string
	}{
		{"default is valid", func(*Config) {}, ""},
		{"latitude", func(c *Config) { c.Map.CenterLat = 91 }, "map.center_lat"},
		{"longitude", func(c *Config) { c.Map.CenterLon = -181 }, "map.center_lon"},
		{"max zoom", func(c *Config) { c.Map.MaxZoom = 21 }, "map.max_zoom"},
		{"tile url", func(c *Config) { c.Map.TileURL = "" }, "map.tile_url"},
		{"radius", func(c *Config) { c.Marker.Radius = -1 }, "marker.radius"},
		{"opacity", func(c *Config) { c.Marker.FillOpacity = 1.5 }, "marker.fill_opacity"},
		{"interval", func(c *Config) { c.Output.Interval = time.Second }, "output.interval"},
		{"limit", func(c *Config) { c.Display.Limit = 0 }, "display.limit"},
	}

	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mod(cfg)
			err := cfg.Verify()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
