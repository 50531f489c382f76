package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Zachdehooge/world-brief/internal/server"
)

// addServeCmd adds a 'serve' subcommand rendering the dashboard per request
func addServeCmd(rootCmd *cobra.Command) {
	var listen string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				cmd.PrintErrln(err)
				return err
			}
			if cmd.Flags().Changed("listen") || configFile == "" {
				cfg.Server.Listen = listen
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			log.Printf("[INFO] starting world-brief %s", revision)
			srv := server.New(server.Config{
				Listen:  cfg.Server.Listen,
				Timeout: cfg.Server.Timeout,
				Page:    pageConfig(cfg),
				Version: revision,
				Debug:   debug,
			}, newLoader(cfg))

			if err := srv.Run(ctx); err != nil {
				log.Printf("[ERROR] server failed: %v", err)
				return err
			}
			log.Print("[INFO] shutdown complete")
			return nil
		},
	}
	serveCmd.Flags().StringVarP(&listen, "listen", "l", ":8080", "Listen address")

	rootCmd.AddCommand(serveCmd)
}
