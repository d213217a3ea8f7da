// Package session holds per-document interactive state keyed by an opaque
// session id.
package session

import (
	"errors"
	"sync"

	"github.com/MeKo-Tech/fieldex/internal/clean"
	"github.com/MeKo-Tech/fieldex/internal/extract"
	"github.com/MeKo-Tech/fieldex/internal/quality"
	"github.com/MeKo-Tech/fieldex/internal/region"
	"github.com/google/uuid"
)

// ErrNotFound is returned for lookups of unknown session ids.
var ErrNotFound = errors.New("session: not found")

// Document is the cached state of one interactive session: the region
// collection plus the most recent derived field map. The derived parts are
// recomputed wholesale whenever the regions change, never patched.
type Document struct {
	Regions    *region.Collection
	Signals    map[string]quality.Signals
	Fields     extract.FieldMap
	Metadata   extract.Metadata
	Report     clean.Report
	Confidence float64
}

// Store is the persistence boundary for session state. Implementations make
// no expiry guarantee; callers must serialize mutations per session id.
type Store interface {
	Create(doc *Document) string
	Get(id string) (*Document, error)
	Put(id string, doc *Document) error
}

// MemoryStore is the in-process Store used by the server and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*Document)}
}

// Create stores the document under a fresh opaque id.
func (s *MemoryStore) Create(doc *Document) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.docs[id] = doc
	s.mu.Unlock()
	return id
}

// Get returns the document for id or ErrNotFound.
func (s *MemoryStore) Get(id string) (*Document, error) {
	s.mu.RLock()
	doc, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}

// Put replaces the document for an existing id.
func (s *MemoryStore) Put(id string, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	s.docs[id] = doc
	return nil
}
