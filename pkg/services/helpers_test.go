package services

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"portfolio/pkg/models"
	"portfolio/pkg/storage"
)

// memStore is an in-memory AssetStore that records Exists lookups
type memStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	lookups []string
}

func newMemStore(keys ...string) *memStore {
	s := &memStore{files: map[string][]byte{}}
	for _, k := range keys {
		s.files[k] = []byte("x")
	}
	return s
}

func (s *memStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups = append(s.lookups, key)
	_, ok := s.files[key]
	return ok, nil
}

func (s *memStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[key]
	if !ok {
		return nil, storage.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStore) List(_ context.Context, prefix string) ([]storage.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix = strings.Trim(prefix, "/") + "/"
	seen := map[string]bool{}
	var entries []storage.Entry
	for key := range s.files {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		name, _, isDir := strings.Cut(rest, "/")
		if seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, storage.Entry{Name: name, Dir: isDir})
	}
	if len(entries) == 0 {
		return nil, storage.ErrNotExist
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (s *memStore) Write(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = append([]byte(nil), data...)
	return nil
}

const simpleDocument = `{
  "proyectos": [
    ["A", {"tipo": "simple", "imgCount": 2, "textosES": ["hola"], "textosEN": ["hi"]}]
  ],
  "about": {"titulo": "mokakopa", "subtitulo": "estudio", "textosES": ["sobre nosotros"], "textosEN": ["about us"], "enlace": "https://example.com"}
}`

const complexDocument = `{
  "proyectos": [
    ["P", {
      "tipo": "complejo",
      "imgCount": {"X": 2, "Y": 1},
      "textosES": ["general"],
      "textosEN": ["overall"],
      "subproyectos": [
        ["X", {"textosES": ["equis"], "textosEN": ["ex"]}],
        ["Y", {}]
      ]
    }],
    ["Q", {"tipo": "simple", "imgCount": 3, "textosES": ["cu"]}]
  ]
}`

func mustDecode(t *testing.T, data string) *models.Document {
	t.Helper()
	doc, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return doc
}

func newTestPage(t *testing.T, data string, opts Options) *Page {
	t.Helper()
	p := NewPage(context.Background(), mustDecode(t, data), opts)
	t.Cleanup(p.Close)
	return p
}
