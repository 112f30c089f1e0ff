package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"portfolio/pkg/render"
	"portfolio/pkg/services"
)

// newExportCmd creates a new command for exporting the portfolio
func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [format]",
		Short: "Export the portfolio",
		Long: `Export the portfolio in the specified format. Supported formats: json (the data
file, re-encoded) and html (the rendered page in the default language).`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			format := "json"
			if len(args) > 0 {
				format = args[0]
			}
			exportData(format)
		},
	}
}

// exportData exports the portfolio in the specified format
func exportData(format string) {
	if format != "json" && format != "html" {
		fmt.Printf("Unsupported export format: %s\n", format)
		fmt.Println("Supported formats: json, html")
		os.Exit(1)
	}

	ctx := context.Background()
	cfg, s := mustOpen(ctx)
	defer s.close()

	doc, err := s.loader.Load(ctx)
	if format == "html" && err != nil {
		out, renderErr := render.String(services.ErrorView(err))
		if renderErr != nil {
			log.Fatalf("Error rendering page: %v", renderErr)
		}
		fmt.Println(out)
		s.close()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}

	var out []byte
	switch format {
	case "json":
		out, err = services.Encode(doc)
	case "html":
		page := services.NewPage(ctx, doc, services.Options{
			Language:  cfg.DefaultLanguage,
			Languages: cfg.Languages,
			Resolver:  services.NewResolver(s.assets, cfg.ResolveTTL),
		})
		var html string
		html, err = page.HTML()
		page.Close()
		out = []byte(html)
	}
	if err != nil {
		fmt.Printf("Error exporting data: %v\n", err)
		s.close()
		os.Exit(1)
	}

	fmt.Println(string(out))
}
