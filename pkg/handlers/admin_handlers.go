package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"portfolio/pkg/services"
)

// UpdateCountsHandler recounts the images of every project and writes the
// counts back to the data file
func (h *Handler) UpdateCountsHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DryRun bool `json:"dryRun"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	doc, err := h.loader.Load(r.Context())
	if err != nil {
		log.Printf("Error loading document: %v", err)
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}

	// Pages in flight keep reading doc; counts go into a copy that only
	// replaces it once saved
	updated, err := services.CloneDocument(doc)
	if err != nil {
		log.Printf("Error copying document: %v", err)
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}

	log.Printf("Recounting images, dry run: %v", req.DryRun)
	results := services.UpdateImageCounts(r.Context(), h.assets, updated)

	counts := make(map[string]any, len(results))
	total := 0
	for _, res := range results {
		counts[res.Project] = res.Count
		total += res.Count.Total
	}

	if !req.DryRun {
		if err := h.loader.Save(r.Context(), updated); err != nil {
			log.Printf("Error saving document: %v", err)
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}
		h.resolver.Flush()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Image counts updated",
		"counts":  counts,
		"total":   total,
		"saved":   !req.DryRun,
	})
}

// ReloadHandler drops the cached document and image resolutions so the
// next request reads them again
func (h *Handler) ReloadHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Reloading document")
	h.loader.Reset()
	h.resolver.Flush()

	if _, err := h.loader.Load(r.Context()); err != nil {
		log.Printf("Error loading document: %v", err)
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Document reloaded",
	})
}
