package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/spf13/cobra"

	"github.com/Zachdehooge/world-brief/internal/config"
	"github.com/Zachdehooge/world-brief/internal/fetcher"
	"github.com/Zachdehooge/world-brief/internal/generator"
)

var (
	configFile string
	feedURL    string
	briefURL   string
	outputFile string
	verbose    bool
	debug      bool
	interval   int
	watchMode  bool
)

var revision = "unknown"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "world-brief",
		Short: "Render the world events dashboard",
		Long: `World Brief reads the precomputed world events feed and daily brief
and renders a static HTML dashboard with a map, a latest-events list and
per-category counts.`,
		Version:       revision,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLog(debug || verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				cmd.PrintErrln(err)
				return err
			}

			page, err := newPage(cfg)
			if err != nil {
				cmd.PrintErrln(err)
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := generateDashboard(ctx, cmd, cfg, page); err != nil {
				cmd.PrintErrln(fmt.Errorf("failed to generate dashboard: %w", err))
				if !watchMode {
					return err
				}
			}

			if watchMode {
				runWatchMode(ctx, cmd, cfg, page)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&feedURL, "feed", fetcher.DefaultFeedLocation, "Event feed URL or path")
	rootCmd.PersistentFlags().StringVar(&briefURL, "brief", fetcher.DefaultBriefLocation, "Daily brief URL or path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "dbg", false, "Debug logging")

	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "index.html", "Output HTML file path")
	rootCmd.Flags().IntVarP(&interval, "interval", "i", 300, "Update interval in seconds (minimum 30)")
	rootCmd.Flags().BoolVar(&watchMode, "watch", false, "Continuously regenerate the dashboard")

	addListCmd(rootCmd)
	addServeCmd(rootCmd)
	addSchemaCmd(rootCmd)
	return rootCmd
}

// loadConfig reads the config file if given, flags set on the command line win
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("feed") || configFile == "" {
		cfg.Feed.URL = feedURL
	}
	if flags.Changed("brief") || configFile == "" {
		cfg.Feed.BriefURL = briefURL
	}
	if flags.Lookup("output") != nil && (flags.Changed("output") || configFile == "") {
		cfg.Output.Path = outputFile
	}
	if flags.Lookup("interval") != nil && (flags.Changed("interval") || configFile == "") {
		cfg.Output.Interval = time.Duration(interval) * time.Second
	}
	// enforce minimum interval
	if cfg.Output.Interval < config.MinInterval {
		cfg.Output.Interval = config.MinInterval
	}
	return cfg, nil
}

func newLoader(cfg *config.Config) *fetcher.Loader {
	l := fetcher.NewLoader(cfg.Feed.URL, cfg.Feed.BriefURL, cfg.Feed.Timeout)
	if cfg.Feed.UserAgent != "" {
		l.UserAgent = cfg.Feed.UserAgent
	}
	return l
}

func pageConfig(cfg *config.Config) generator.PageConfig {
	return generator.PageConfig{
		Title:   cfg.Map.Title,
		Center:  generator.LatLon{Lat: cfg.Map.CenterLat, Lon: cfg.Map.CenterLon},
		Zoom:    cfg.Map.Zoom,
		TileURL: cfg.Map.TileURL,
		Tile:    generator.TileOptions{MaxZoom: cfg.Map.MaxZoom, Attribution: cfg.Map.Attribution},
		Marker: generator.MarkerStyle{
			Radius:      cfg.Marker.Radius,
			FillOpacity: cfg.Marker.FillOpacity,
			Weight:      cfg.Marker.Weight,
		},
		Limit: cfg.Display.Limit,
	}
}

func newPage(cfg *config.Config) (*generator.Page, error) {
	page, err := generator.NewPage(pageConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to build page: %w", err)
	}
	return page, nil
}

// generateDashboard loads the feed and writes the HTML file
func generateDashboard(ctx context.Context, cmd *cobra.Command, cfg *config.Config, page *generator.Page) error {
	if verbose {
		cmd.Println(fmt.Sprintf("Loading %s and %s...", cfg.Feed.URL, cfg.Feed.BriefURL))
	}

	if err := generator.GenerateDashboardHTML(ctx, newLoader(cfg), page, cfg.Output.Path); err != nil {
		return err
	}

	cmd.Println(fmt.Sprintf("World brief saved to %s", cfg.Output.Path))
	return nil
}

// runWatchMode regenerates the same page until ctx is canceled
func runWatchMode(ctx context.Context, cmd *cobra.Command, cfg *config.Config, page *generator.Page) {
	cmd.Println(fmt.Sprintf("Watch mode activated. Updating every %s. Press Ctrl+C to stop.", cfg.Output.Interval))

	ticker := time.NewTicker(cfg.Output.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cmd.Println("Watch mode stopped.")
			return
		case <-ticker.C:
			if err := generateDashboard(ctx, cmd, cfg, page); err != nil {
				cmd.PrintErrln(fmt.Errorf("update failed: %w", err))
			}
		}
	}
}

func setupLog(dbg bool) {
	logOpts := []lgr.Option{lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
