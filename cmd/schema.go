package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/Zachdehooge/world-brief/internal/config"
	"github.com/Zachdehooge/world-brief/internal/fetcher"
)

// addSchemaCmd adds a 'schema' subcommand writing JSON schemas for the config and the feed
func addSchemaCmd(rootCmd *cobra.Command) {
	var configOut, feedOut string

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Write JSON schemas for the config file and world.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			targets := []struct {
				path string
				v    any
			}{
				{configOut, &config.Config{}},
				{feedOut, &fetcher.Feed{}},
			}
			for _, tg := range targets {
				if err := writeSchema(tg.path, tg.v); err != nil {
					cmd.PrintErrln(err)
					return err
				}
				cmd.Println(fmt.Sprintf("Schema generated successfully at %s", tg.path))
			}
			return nil
		},
	}
	schemaCmd.Flags().StringVar(&configOut, "config-out", "config.schema.json", "Config schema output path")
	schemaCmd.Flags().StringVar(&feedOut, "feed-out", "world.schema.json", "Feed schema output path")

	rootCmd.AddCommand(schemaCmd)
}

func writeSchema(path string, v any) error {
	schema := jsonschema.Reflect(v)
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil { //nolint:gosec // schema file is not sensitive
		return fmt.Errorf("failed to write schema file: %w", err)
	}
	return nil
}
