package cmd

import (
	"context"
	"log"
	"path/filepath"
	"strings"

	"portfolio/pkg/config"
	"portfolio/pkg/services"
	"portfolio/pkg/storage"
)

// stores are the opened document and asset locations
type stores struct {
	loader *services.Loader
	assets storage.AssetStore
	close  func()
}

// openStores opens Cloud Storage when a bucket is configured and the local
// filesystem otherwise. A data file given as an http(s) URL is always
// fetched over the network.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	remote := strings.HasPrefix(cfg.DataFile, "http://") || strings.HasPrefix(cfg.DataFile, "https://")

	if cfg.UsesBucket() {
		bucket, err := storage.NewBucket(ctx, cfg.BucketName, "")
		if err != nil {
			return nil, err
		}
		s := &stores{
			loader: services.NewLoader(cfg.DataFile, bucket),
			assets: bucket.Sub(cfg.AssetsDir),
			close: func() {
				if err := bucket.Close(); err != nil {
					log.Printf("Warning: error closing storage client: %v", err)
				}
			},
		}
		return s, nil
	}

	loader := services.NewLoader(cfg.DataFile, nil)
	if !remote {
		loader = services.NewLoader(filepath.Base(cfg.DataFile), storage.NewDir(filepath.Dir(cfg.DataFile)))
	}
	return &stores{
		loader: loader,
		assets: storage.NewDir(cfg.AssetsDir),
		close:  func() {},
	}, nil
}

// mustOpen loads configuration and opens the stores, exiting on failure
func mustOpen(ctx context.Context) (*config.Config, *stores) {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	s, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	return cfg, s
}
