package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// Bucket is an AssetStore backed by a Google Cloud Storage bucket.
// All keys are resolved below prefix.
type Bucket struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
	prefix string
}

// NewBucket connects to the named bucket
func NewBucket(ctx context.Context, name, prefix string) (*Bucket, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &Bucket{
		client: client,
		bucket: client.Bucket(name),
		prefix: normalizePrefix(prefix),
	}, nil
}

// Sub returns a store over the same bucket and client rooted at prefix,
// relative to the prefix of b
func (b *Bucket) Sub(prefix string) *Bucket {
	return &Bucket{
		client: b.client,
		bucket: b.bucket,
		prefix: normalizePrefix(b.prefix + strings.Trim(prefix, "/")),
	}
}

// Close releases the storage client shared by b and its sub stores
func (b *Bucket) Close() error {
	return b.client.Close()
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

func (b *Bucket) object(key string) string {
	return b.prefix + strings.TrimPrefix(key, "/")
}

// Exists reports whether an object exists at key
func (b *Bucket) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.bucket.Object(b.object(key)).Attrs(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get object attributes: %w", err)
	}
	return true, nil
}

// Open returns a reader for the object at key
func (b *Bucket) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	reader, err := b.bucket.Object(b.object(key)).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("Object(%q).NewReader: %w", key, err)
	}
	return reader, nil
}

// List returns the objects and pseudo-directories directly below prefix
func (b *Bucket) List(ctx context.Context, prefix string) ([]Entry, error) {
	full := b.prefix + normalizePrefix(prefix)
	it := b.bucket.Objects(ctx, &gcs.Query{Prefix: full, Delimiter: "/"})

	var entries []Entry
	for {
		obj, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating objects: %w", err)
		}
		if obj.Prefix != "" {
			entries = append(entries, Entry{Name: strings.TrimSuffix(strings.TrimPrefix(obj.Prefix, full), "/"), Dir: true})
			continue
		}
		name := strings.TrimPrefix(obj.Name, full)
		if name == "" {
			continue
		}
		entries = append(entries, Entry{Name: name})
	}
	sort.Slice(entries, func(i, j int) bool {
		return naturalLess(entries[i].Name, entries[j].Name)
	})
	return entries, nil
}

// Write uploads data to key
func (b *Bucket) Write(ctx context.Context, key string, data []byte) error {
	writer := b.bucket.Object(b.object(key)).NewWriter(ctx)
	if strings.HasSuffix(key, ".json") {
		writer.ContentType = "application/json"
	}
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return fmt.Errorf("Writer.Write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %w", err)
	}
	return nil
}
