package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Zachdehooge/world-brief/internal/generator"
)

// addListCmd adds a 'list' subcommand to show the latest events without generating HTML
func addListCmd(rootCmd *cobra.Command) {
	var limit int

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the latest world events",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				cmd.PrintErrln(err)
				return err
			}
			if limit <= 0 || limit > cfg.Display.Limit {
				limit = cfg.Display.Limit
			}

			snap, err := newLoader(cfg).Load(cmd.Context())
			if err != nil {
				cmd.PrintErrln(fmt.Errorf("load error: %w", err))
				return err
			}

			cmd.Println(fmt.Sprintf("Updated: %s", generator.FormatTime(snap.Feed.GeneratedAt)))
			events := generator.SelectDisplaySet(snap.Feed.Events, limit)
			if len(events) == 0 {
				cmd.Println("No events.")
				return nil
			}

			cmd.Println(fmt.Sprintf("Latest %d of %d events:", len(events), len(snap.Feed.Events)))
			for _, e := range events {
				v := generator.NewEventView(e)
				cmd.Println("---")
				cmd.Println(v.Title)
				cmd.Println(fmt.Sprintf("%s | %s | %s", v.Source, colorize(v.Category, v.Color), v.TimeText))
				if v.URL != "" {
					cmd.Println(v.URL)
				}
			}

			cmd.Println("===")
			cmd.Println("By category:")
			for _, c := range generator.Summarize(snap.Feed.Events) {
				cmd.Println(fmt.Sprintf("%s: %d", colorize(c.Category, generator.CategoryColor(c.Category)), c.Count))
			}
			return nil
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", generator.DisplayLimit, "Maximum number of events to show")

	rootCmd.AddCommand(listCmd)
}

// termColors maps category marker colors to the closest terminal color
var termColors = map[string]color.Attribute{
	"#d7263d": color.FgHiRed,
	"#ef6f00": color.FgYellow,
	"#145f8a": color.FgBlue,
	"#7d4f50": color.FgMagenta,
	"#5b8c5a": color.FgGreen,
}

// colorize paints s with the terminal color for a marker color, unknown colors stay plain
func colorize(s, markerColor string) string {
	attr, ok := termColors[markerColor]
	if !ok {
		return s
	}
	return color.New(attr).Sprint(s)
}
