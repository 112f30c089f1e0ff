package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"portfolio/pkg/models"
	"portfolio/pkg/services"
)

// newListTextsCmd creates a new command for listing texts in one language
func newListTextsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-texts [lang]",
		Short: "List all texts in a language",
		Long: `List the paragraphs of every project and subproject in the given language,
as shown on the page. Records without text in that language fall back to Spanish.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			cfg, s := mustOpen(ctx)
			defer s.close()

			doc, err := s.loader.Load(ctx)
			if err != nil {
				log.Fatalf("%v", err)
			}
			lang := cfg.DefaultLanguage
			if len(args) > 0 {
				lang = services.NormalizeLanguage(args[0])
			}
			listTexts(doc, lang)
		},
	}
}

// listTexts displays the text of every record in lang
func listTexts(doc *models.Document, lang string) {
	fmt.Printf("Texts (%s):\n", lang)
	fmt.Println("==========")

	records := 0
	for _, np := range doc.Projects {
		names := []string{np.Name}
		if np.Project != nil {
			for _, sub := range np.Project.Subprojects {
				names = append(names, sub.Name)
			}
		}
		for _, name := range names {
			rec, ok := doc.FindTextRecord(name)
			if !ok {
				continue
			}
			paragraphs := rec.TextsFor(lang)
			fmt.Printf("%s (%d chars, %dpx)\n", name, services.VisibleLength(paragraphs), services.FontSize(services.VisibleLength(paragraphs)))
			for _, p := range paragraphs {
				fmt.Printf("  %s\n", strings.TrimSpace(services.StripTags(p)))
			}
			fmt.Println()
			records++
		}
	}

	fmt.Printf("Total: %d records\n", records)
}
