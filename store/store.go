// Package store provides document persistence for plantask as named
// collections of id-keyed field maps. A process-local memory store is
// always available; a NATS JetStream KV store backs it when a server
// is configured.
package store

import (
	"context"
	"errors"
)

// Document is a single persisted record. The "id" field is always
// present on documents returned by a store.
type Document map[string]any

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("document not found")

// DocumentStore is the persistence contract consumed by the task
// builder and the history ledger. Implementations must treat returned
// documents as snapshots: mutating one has no effect until it is
// written back through UpdateDocument.
type DocumentStore interface {
	// GetCollection ensures the named collection exists and is usable.
	GetCollection(ctx context.Context, name string) error

	// GetDocuments returns every document in the collection. Each
	// returned document carries its own "id" field.
	GetDocuments(ctx context.Context, collection string) ([]Document, error)

	// AddDocument persists a new document and returns its generated id.
	AddDocument(ctx context.Context, collection string, data Document) (string, error)

	// UpdateDocument merges the named fields into an existing document.
	// Fields absent from partial are left untouched.
	UpdateDocument(ctx context.Context, collection, id string, partial Document) error

	// DeleteDocument removes a document by id.
	DeleteDocument(ctx context.Context, collection, id string) error
}

// ID returns the document's id field, or "" if unset.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// Clone returns a shallow copy of the document with nested maps and
// slices copied one level deep, enough to keep callers from mutating
// store internals through a returned snapshot.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		switch val := v.(type) {
		case map[string]any:
			m := make(map[string]any, len(val))
			for mk, mv := range val {
				m[mk] = mv
			}
			out[k] = m
		case []any:
			s := make([]any, len(val))
			copy(s, val)
			out[k] = s
		default:
			out[k] = v
		}
	}
	return out
}
