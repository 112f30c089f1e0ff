package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"portfolio/pkg/models"
	"portfolio/pkg/services"
)

// newShowProjectCmd creates a new command for showing project details
func newShowProjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-project [name]",
		Short: "Show the images of a specific project",
		Long: `Show detailed information about a project identified by its name, resolving
every image slot against the asset store.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			cfg, s := mustOpen(ctx)
			defer s.close()

			doc, err := s.loader.Load(ctx)
			if err != nil {
				log.Fatalf("%v", err)
			}
			resolver := services.NewResolver(s.assets, cfg.ResolveTTL)
			if !showProject(ctx, doc, resolver, args[0], cfg.DefaultLanguage) {
				os.Exit(1)
			}
		},
	}
}

// showProject displays details about a specific project
func showProject(ctx context.Context, doc *models.Document, resolver *services.Resolver, name, lang string) bool {
	var np *models.NamedProject
	for i := range doc.Projects {
		if doc.Projects[i].Name == name {
			np = &doc.Projects[i]
			break
		}
	}
	if np == nil {
		fmt.Printf("Error: project not found: %s\n", name)
		return false
	}

	g := services.NewBuilder(resolver).Build(ctx, *np, lang)

	fmt.Printf("Project: %s\n", np.Label())
	if np.Project != nil {
		fmt.Printf("Kind: %s\n", np.Project.Kind)
	}
	fmt.Printf("Images: %d\n", len(g.Slots()))
	fmt.Printf("Text blocks: %d\n", len(g.TextBlocks()))
	fmt.Println("================")

	missing := 0
	for i, slot := range g.Slots() {
		fmt.Printf("%d. %s\n", i+1, slot.Alt())
		if slot.Hidden() {
			fmt.Println("   Missing: no file with a known extension")
			missing++
		} else {
			fmt.Printf("   URL: %s\n", slot.Src())
		}
	}
	if missing > 0 {
		fmt.Printf("\n%d of %d images missing\n", missing, len(g.Slots()))
	}
	return true
}
