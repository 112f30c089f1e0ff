package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/patrickmn/go-cache"

	"portfolio/pkg/storage"
)

// Extensions is the fixed priority order tried for every image slot
var Extensions = []string{"jpg", "png", "jpeg", "webp", "gif"}

// SlotState is the load state of an image slot
type SlotState int

const (
	SlotPending SlotState = iota
	SlotTrying
	SlotLoaded
	SlotFailed
)

func (s SlotState) String() string {
	switch s {
	case SlotPending:
		return "pending"
	case SlotTrying:
		return "trying"
	case SlotLoaded:
		return "loaded"
	case SlotFailed:
		return "failed"
	}
	return "unknown"
}

// Slot is one logical image position of a gallery
type Slot struct {
	Path  string // project name or project/subproject
	Index int    // 1-based
	State SlotState
	ext   int

	// resolved is set when the store, not a client, reported the
	// candidate as loaded
	resolved bool
}

// NewSlot creates a pending slot
func NewSlot(path string, index int) *Slot {
	return &Slot{Path: path, Index: index, ext: -1}
}

// Key returns the asset key of the current candidate, empty before Start
func (s *Slot) Key() string {
	if s.ext < 0 || s.ext >= len(Extensions) {
		return ""
	}
	return fmt.Sprintf("%s/%d.%s", s.Path, s.Index, Extensions[s.ext])
}

// Src returns the URL of the current candidate
func (s *Slot) Src() string {
	key := s.Key()
	if key == "" {
		return ""
	}
	return "data/" + key
}

// Alt returns the alternative text of the slot image
func (s *Slot) Alt() string {
	return fmt.Sprintf("%s %d", s.Path, s.Index)
}

// Extension returns the extension currently tried or loaded
func (s *Slot) Extension() string {
	if s.ext < 0 || s.ext >= len(Extensions) {
		return ""
	}
	return Extensions[s.ext]
}

// Hidden reports whether every candidate failed
func (s *Slot) Hidden() bool {
	return s.State == SlotFailed
}

// Start moves a pending slot to its first candidate and returns its URL
func (s *Slot) Start() string {
	if s.State == SlotPending {
		s.ext = 0
		s.State = SlotTrying
	}
	return s.Src()
}

// Fail records a load error for the current candidate. It returns the next
// candidate URL, or false once the list is exhausted and the slot is failed.
// A slot loaded by a client is final; one resolved against the store still
// fails over when the client cannot load it.
func (s *Slot) Fail() (string, bool) {
	if s.State == SlotLoaded && s.resolved {
		s.resolved = false
		s.State = SlotTrying
	}
	if s.State != SlotTrying {
		return "", false
	}
	s.ext++
	if s.ext >= len(Extensions) {
		s.State = SlotFailed
		return "", false
	}
	return s.Src(), true
}

// Load records a successful load of the current candidate
func (s *Slot) Load() bool {
	if s.State != SlotTrying {
		return false
	}
	s.State = SlotLoaded
	return true
}

// Resolver pre-resolves slots against an asset store so pages are emitted
// with a working extension. Results are cached per slot.
type Resolver struct {
	store storage.AssetStore
	cache *cache.Cache
}

// noImage marks a cached slot for which no candidate exists
const noImage = "-"

// NewResolver creates a resolver over store
func NewResolver(store storage.AssetStore, ttl time.Duration) *Resolver {
	return &Resolver{
		store: store,
		cache: cache.New(ttl, 2*ttl),
	}
}

func slotCacheKey(s *Slot) string {
	return fmt.Sprintf("%s/%d", s.Path, s.Index)
}

// Resolve drives the slot state machine until a candidate exists in the
// store or every candidate failed. Store errors count as a failed candidate.
func (r *Resolver) Resolve(ctx context.Context, s *Slot) {
	if r == nil || r.store == nil || s.State != SlotPending {
		return
	}
	key := slotCacheKey(s)
	if cached, found := r.cache.Get(key); found {
		replay(s, cached.(string))
		return
	}

	s.Start()
	for s.State == SlotTrying {
		ok, err := r.store.Exists(ctx, s.Key())
		if err != nil {
			log.Printf("Warning: checking %s: %v", s.Key(), err)
		}
		if ok {
			s.Load()
			s.resolved = true
			break
		}
		s.Fail()
	}

	if s.State == SlotFailed {
		log.Printf("Warning: no image found for %s", s.Alt())
		r.cache.Set(key, noImage, cache.DefaultExpiration)
		return
	}
	r.cache.Set(key, s.Extension(), cache.DefaultExpiration)
}

// Flush drops every cached resolution
func (r *Resolver) Flush() {
	if r != nil {
		r.cache.Flush()
	}
}

// replay advances the state machine to a previously resolved outcome
func replay(s *Slot, ext string) {
	s.Start()
	for s.State == SlotTrying && s.Extension() != ext {
		s.Fail()
	}
	s.resolved = s.Load()
}
