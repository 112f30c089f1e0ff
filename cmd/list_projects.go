package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"portfolio/pkg/models"
)

// newListProjectsCmd creates a new command for listing projects
func newListProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-projects",
		Short: "List all projects",
		Long:  `List all projects of the data file with their kind, image count and subprojects.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			_, s := mustOpen(ctx)
			defer s.close()

			doc, err := s.loader.Load(ctx)
			if err != nil {
				log.Fatalf("%v", err)
			}
			listProjects(doc)
		},
	}
}

// listProjects displays all projects and their subprojects
func listProjects(doc *models.Document) {
	fmt.Println("Projects:")
	fmt.Println("=========")

	totalImages := 0
	for _, np := range doc.Projects {
		p := np.Project
		if p == nil {
			p = &models.Project{Kind: models.KindSimple}
		}
		fmt.Printf("%s (%s)\n", np.Label(), p.Kind)
		fmt.Printf("  Images: %d\n", p.ImageCount.Total)
		for _, sub := range p.Subprojects {
			fmt.Printf("  - %s (images: %d)\n", sub.Label(), p.ImageCount.Sub(sub.Name))
		}
		fmt.Println()
		totalImages += p.ImageCount.Total
	}

	fmt.Printf("Total: %d projects, %d images\n", len(doc.Projects), totalImages)
}
