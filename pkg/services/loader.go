package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"gopkg.in/yaml.v3"

	"portfolio/pkg/models"
	"portfolio/pkg/storage"
)

const documentCacheKey = "document"

// LoadError is the fatal failure to fetch or parse the data file.
// Nothing is rendered from a document that failed to load.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader fetches the portfolio document once and keeps it for the process lifetime
type Loader struct {
	source string
	store  storage.AssetStore
	client *http.Client
	cache  *cache.Cache
	mu     sync.Mutex
}

// NewLoader creates a loader for source. HTTP(S) URLs are fetched over the
// network; any other source is a key of store.
func NewLoader(source string, store storage.AssetStore) *Loader {
	return &Loader{
		source: source,
		store:  store,
		client: &http.Client{Timeout: 30 * time.Second},
		cache:  cache.New(cache.NoExpiration, 0),
	}
}

// Source returns where the document is read from
func (l *Loader) Source() string {
	return l.source
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load returns the document, fetching it on first use. Failures are not
// cached, so a later call (a page reload) fetches again.
func (l *Loader) Load(ctx context.Context) (*models.Document, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cached, found := l.cache.Get(documentCacheKey); found {
		return cached.(*models.Document), nil
	}

	log.Printf("Loading document from %s", l.source)
	data, err := l.fetch(ctx)
	if err != nil {
		return nil, &LoadError{Source: l.source, Err: err}
	}
	if isYAML(l.source) {
		if data, err = yamlToJSON(data); err != nil {
			return nil, &LoadError{Source: l.source, Err: err}
		}
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, &LoadError{Source: l.source, Err: err}
	}

	l.cache.Set(documentCacheKey, doc, cache.NoExpiration)
	return doc, nil
}

// Reset forgets the loaded document
func (l *Loader) Reset() {
	l.cache.Flush()
}

func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	if isURL(l.source) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("bad status code: %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}

	if l.store == nil {
		return nil, fmt.Errorf("no store configured for %s", l.source)
	}
	rc, err := l.store.Open(ctx, l.source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// isYAML reports whether the data file is written in YAML rather than JSON
func isYAML(source string) bool {
	ext := strings.ToLower(path.Ext(source))
	return ext == ".yaml" || ext == ".yml"
}

// yamlToJSON re-encodes a YAML document as JSON so both formats share the
// same decoding rules
func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	return json.Marshal(v)
}

func jsonToYAML(data []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("error marshaling document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes doc back to the source and replaces the cached copy
func (l *Loader) Save(ctx context.Context, doc *models.Document) error {
	if isURL(l.source) {
		return fmt.Errorf("cannot write document to %s", l.source)
	}
	if l.store == nil {
		return fmt.Errorf("no store configured for %s", l.source)
	}
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	if isYAML(l.source) {
		if data, err = jsonToYAML(data); err != nil {
			return err
		}
	}
	if err := l.store.Write(ctx, l.source, data); err != nil {
		return fmt.Errorf("writing %s: %w", l.source, err)
	}
	l.mu.Lock()
	l.cache.Set(documentCacheKey, doc, cache.NoExpiration)
	l.mu.Unlock()
	return nil
}

// Decode parses a document
func Decode(data []byte) (*models.Document, error) {
	var doc models.Document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	if doc.Projects == nil {
		return nil, fmt.Errorf("invalid document: missing \"proyectos\"")
	}
	seen := make(map[string]bool, len(doc.Projects))
	for _, np := range doc.Projects {
		if seen[np.Name] {
			return nil, fmt.Errorf("invalid document: duplicate project %q", np.Name)
		}
		seen[np.Name] = true
	}
	return &doc, nil
}

// CloneDocument returns a deep copy of doc that can be changed without
// affecting pages rendered from the original
func CloneDocument(doc *models.Document) (*models.Document, error) {
	data, err := Encode(doc)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Encode serialises a document with two-space indentation
func Encode(doc *models.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error marshaling document: %w", err)
	}
	return data, nil
}
