package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is the in-memory fallback used when no document database
// is reachable. State lives for the duration of the process.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
	logger      *slog.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
		logger:      logger,
	}
}

// GetCollection creates the collection if it does not exist.
func (s *MemoryStore) GetCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		s.collections[name] = make(map[string]Document)
	}
	return nil
}

// GetDocuments returns snapshots of every document in the collection.
func (s *MemoryStore) GetDocuments(_ context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collection]
	if !ok {
		return nil, nil
	}

	docs := make([]Document, 0, len(coll))
	for _, doc := range coll {
		docs = append(docs, doc.Clone())
	}
	return docs, nil
}

// AddDocument stores a new document under a generated UUID.
func (s *MemoryStore) AddDocument(_ context.Context, collection string, data Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]Document)
		s.collections[collection] = coll
	}

	id := uuid.New().String()
	doc := data.Clone()
	doc["id"] = id
	coll[id] = doc
	return id, nil
}

// UpdateDocument merges the named fields into an existing document.
func (s *MemoryStore) UpdateDocument(_ context.Context, collection, id string, partial Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		return ErrNotFound
	}
	doc, ok := coll[id]
	if !ok {
		return ErrNotFound
	}

	for k, v := range partial.Clone() {
		if k == "id" {
			continue // id is immutable
		}
		doc[k] = v
	}
	return nil
}

// DeleteDocument removes a document by id.
func (s *MemoryStore) DeleteDocument(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		return ErrNotFound
	}
	if _, ok := coll[id]; !ok {
		return ErrNotFound
	}
	delete(coll, id)
	return nil
}
