package cmd

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"portfolio/pkg/models"
	"portfolio/pkg/services"
)

// Command options
var dryRun bool

// newUpdateCountsCmd creates a new command for recounting project images
func newUpdateCountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-counts",
		Short: "Recount the images of every project",
		Long: `Count the image files in each project folder (and each subfolder of complex
projects) and write the counts back to the data file.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			_, s := mustOpen(ctx)
			defer s.close()
			updateCounts(ctx, s)
		},
	}

	// Add command-specific flags
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the new counts without writing the data file")

	return cmd
}

// updateCounts recounts images and saves the document
func updateCounts(ctx context.Context, s *stores) {
	doc, err := s.loader.Load(ctx)
	if err != nil {
		log.Fatalf("%v", err)
	}
	updated, err := services.CloneDocument(doc)
	if err != nil {
		log.Fatalf("Failed to copy document: %v", err)
	}

	bar := progressbar.NewOptions(len(updated.Projects),
		progressbar.OptionSetDescription("Counting images"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	results := make([]services.CountResult, 0, len(updated.Projects))
	for _, np := range updated.Projects {
		bar.Describe(np.Name)
		if res, ok := services.CountProject(ctx, s.assets, np); ok {
			results = append(results, res)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	total := 0
	for _, r := range results {
		total += r.Count.Total
		fmt.Printf("%s: %d images\n", r.Project, r.Count.Total)
		if r.Kind != models.KindComplex {
			continue
		}
		subs := make([]string, 0, len(r.Count.Subs))
		for name := range r.Count.Subs {
			subs = append(subs, name)
		}
		sort.Strings(subs)
		for _, name := range subs {
			fmt.Printf("  %s: %d\n", name, r.Count.Subs[name])
		}
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Projects: %d\n", len(results))
	fmt.Printf("  Total images: %d\n", total)

	if dryRun {
		fmt.Println("  Dry run, data file not written")
		return
	}
	if err := s.loader.Save(ctx, updated); err != nil {
		log.Fatalf("Failed to save %s: %v", s.loader.Source(), err)
	}
	fmt.Printf("  Updated %s\n", s.loader.Source())
}
