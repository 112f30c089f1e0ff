package cmd

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"portfolio/pkg/config"
	"portfolio/pkg/handlers"
)

// newServeCmd creates a new command for serving the web application
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `Start the web server to serve the portfolio page, its images and the live session via HTTP.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, s := mustOpen(context.Background())
			defer s.close()
			serveWebsite(cfg, s)
		},
	}
}

// serveWebsite runs the web server to serve the portfolio
func serveWebsite(cfg *config.Config, s *stores) {
	h := handlers.New(cfg, s.loader, s.assets)
	server := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server
	cfg.PrintServerStartMessage()
	if err := server.ListenAndServe(); err != nil {
		log.Printf("Server error: %v", err)
		s.close()
		os.Exit(1)
	}
}
