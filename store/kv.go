package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
)

// bucketPrefix namespaces plantask buckets on a shared NATS server.
const bucketPrefix = "PLANTASK_"

// KVStore persists documents in NATS JetStream KV, one bucket per
// collection, each document JSON-encoded under its id.
type KVStore struct {
	js      jetstream.JetStream
	logger  *slog.Logger
	mu      sync.RWMutex
	buckets map[string]jetstream.KeyValue
}

// NewKVStore creates a KV-backed document store on the given JetStream
// context. Buckets are created lazily on first collection access.
func NewKVStore(js jetstream.JetStream, logger *slog.Logger) *KVStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &KVStore{
		js:      js,
		logger:  logger,
		buckets: make(map[string]jetstream.KeyValue),
	}
}

func bucketName(collection string) string {
	return bucketPrefix + strings.ToUpper(collection)
}

func (s *KVStore) bucket(ctx context.Context, collection string) (jetstream.KeyValue, error) {
	s.mu.RLock()
	kv, ok := s.buckets[collection]
	s.mu.RUnlock()
	if ok {
		return kv, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if kv, ok := s.buckets[collection]; ok {
		return kv, nil
	}

	name := bucketName(collection)
	kv, err := s.js.KeyValue(ctx, name)
	if err != nil {
		kv, err = s.js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      name,
			Description: fmt.Sprintf("plantask %s collection", collection),
			History:     5,
		})
		if err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", name, err)
		}
	}
	s.buckets[collection] = kv
	return kv, nil
}

// GetCollection ensures the backing bucket exists.
func (s *KVStore) GetCollection(ctx context.Context, name string) error {
	_, err := s.bucket(ctx, name)
	return err
}

// GetDocuments returns every document in the collection.
func (s *KVStore) GetDocuments(ctx context.Context, collection string) ([]Document, error) {
	kv, err := s.bucket(ctx, collection)
	if err != nil {
		return nil, err
	}

	keys, err := kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list keys in %s: %w", collection, err)
	}

	docs := make([]Document, 0, len(keys))
	for _, key := range keys {
		entry, err := kv.Get(ctx, key)
		if err != nil {
			s.logger.Warn("Skipping unreadable document", "collection", collection, "id", key, "error", err)
			continue
		}
		var doc Document
		if err := json.Unmarshal(entry.Value(), &doc); err != nil {
			s.logger.Warn("Skipping undecodable document", "collection", collection, "id", key, "error", err)
			continue
		}
		doc["id"] = key
		docs = append(docs, doc)
	}
	return docs, nil
}

// AddDocument persists a new document under a generated UUID.
func (s *KVStore) AddDocument(ctx context.Context, collection string, data Document) (string, error) {
	kv, err := s.bucket(ctx, collection)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	doc := data.Clone()
	doc["id"] = id

	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	if _, err := kv.Create(ctx, id, payload); err != nil {
		return "", fmt.Errorf("store document in %s: %w", collection, err)
	}
	return id, nil
}

// UpdateDocument merges the named fields into the stored document.
func (s *KVStore) UpdateDocument(ctx context.Context, collection, id string, partial Document) error {
	kv, err := s.bucket(ctx, collection)
	if err != nil {
		return err
	}

	entry, err := kv.Get(ctx, id)
	if err != nil {
		if isKeyNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("get document %s: %w", id, err)
	}

	var doc Document
	if err := json.Unmarshal(entry.Value(), &doc); err != nil {
		return fmt.Errorf("unmarshal document %s: %w", id, err)
	}

	for k, v := range partial {
		if k == "id" {
			continue
		}
		doc[k] = v
	}
	doc["id"] = id

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if _, err := kv.Put(ctx, id, payload); err != nil {
		return fmt.Errorf("update document %s: %w", id, err)
	}
	return nil
}

// DeleteDocument removes a document by id.
func (s *KVStore) DeleteDocument(ctx context.Context, collection, id string) error {
	kv, err := s.bucket(ctx, collection)
	if err != nil {
		return err
	}
	if _, err := kv.Get(ctx, id); err != nil {
		if isKeyNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("get document %s: %w", id, err)
	}
	if err := kv.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// isKeyNotFound checks if an error indicates a key was not found.
func isKeyNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "key not found")
}
