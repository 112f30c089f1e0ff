package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"portfolio/pkg/config"
	"portfolio/pkg/handlers"
	"portfolio/pkg/services"
	"portfolio/pkg/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open stores
	var loader *services.Loader
	var assets storage.AssetStore
	if cfg.UsesBucket() {
		bucket, err := storage.NewBucket(context.Background(), cfg.BucketName, "")
		if err != nil {
			log.Fatalf("Failed to open bucket: %v", err)
		}
		defer bucket.Close()
		loader = services.NewLoader(cfg.DataFile, bucket)
		assets = bucket.Sub(cfg.AssetsDir)
	} else if strings.HasPrefix(cfg.DataFile, "http://") || strings.HasPrefix(cfg.DataFile, "https://") {
		loader = services.NewLoader(cfg.DataFile, nil)
		assets = storage.NewDir(cfg.AssetsDir)
	} else {
		loader = services.NewLoader(filepath.Base(cfg.DataFile), storage.NewDir(filepath.Dir(cfg.DataFile)))
		assets = storage.NewDir(cfg.AssetsDir)
	}

	// Start server
	h := handlers.New(cfg, loader, assets)
	cfg.PrintServerStartMessage()
	if err := http.ListenAndServe(cfg.ServerAddress(), h.Routes()); err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}
