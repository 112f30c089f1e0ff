package services

import (
	"context"
	"log"
	"path"
	"strings"

	"portfolio/pkg/models"
	"portfolio/pkg/storage"
)

// countedExtensions are the file types counted as images on disk
var countedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// CountResult is the recounted image total of one project
type CountResult struct {
	Project string
	Kind    models.Kind
	Count   models.ImageCount
}

// CountImages counts the image files directly inside dir
func CountImages(ctx context.Context, store storage.AssetStore, dir string) int {
	entries, err := store.List(ctx, dir)
	if err != nil {
		log.Printf("Error reading folder %s: %v", dir, err)
		return 0
	}
	count := 0
	for _, e := range entries {
		if !e.Dir && countedExtensions[strings.ToLower(path.Ext(e.Name))] {
			count++
		}
	}
	return count
}

// countSubfolders counts the images of every subfolder of dir
func countSubfolders(ctx context.Context, store storage.AssetStore, dir string) map[string]int {
	counts := map[string]int{}
	entries, err := store.List(ctx, dir)
	if err != nil {
		log.Printf("Error reading folder %s: %v", dir, err)
		return counts
	}
	for _, e := range entries {
		if e.Dir {
			counts[e.Name] = CountImages(ctx, store, path.Join(dir, e.Name))
		}
	}
	return counts
}

// CountProject recounts the images of one project in the store and
// rewrites its count in place. Simple projects count their folder, complex
// projects count each subfolder. It reports false for a project without data.
func CountProject(ctx context.Context, store storage.AssetStore, np models.NamedProject) (CountResult, bool) {
	if np.Project == nil {
		return CountResult{}, false
	}
	switch np.Project.Kind {
	case models.KindComplex:
		np.Project.ImageCount = models.ImageCount{Subs: countSubfolders(ctx, store, np.Name)}
		for _, n := range np.Project.ImageCount.Subs {
			np.Project.ImageCount.Total += n
		}
	default:
		np.Project.ImageCount = models.ImageCount{Total: CountImages(ctx, store, np.Name)}
	}
	return CountResult{
		Project: np.Name,
		Kind:    np.Project.Kind,
		Count:   np.Project.ImageCount,
	}, true
}

// UpdateImageCounts recounts every project of doc in place
func UpdateImageCounts(ctx context.Context, store storage.AssetStore, doc *models.Document) []CountResult {
	results := make([]CountResult, 0, len(doc.Projects))
	for _, np := range doc.Projects {
		if res, ok := CountProject(ctx, store, np); ok {
			results = append(results, res)
		}
	}
	return results
}
