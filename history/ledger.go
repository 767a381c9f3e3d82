// Package history provides the append-only event ledger. Recording is
// best-effort auditing: a backing-store failure is logged and never
// blocks the action that triggered it.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/plantask/metrics"
	"github.com/c360studio/plantask/store"
)

// EntryType classifies a history event.
type EntryType string

const (
	TypePlanGeneration EntryType = "plan_generation"
	TypeTaskCreation   EntryType = "task_creation"
	TypeTaskCompleted  EntryType = "task_completed"
	TypeTaskDeleted    EntryType = "task_deleted"
	TypeImageAnalysis  EntryType = "image_analysis"
)

// Collection is the backing store collection for history entries.
const Collection = "historico"

// DefaultQueryLimit bounds Query results when the caller passes a
// non-positive limit.
const DefaultQueryLimit = 20

// Entry is a single immutable history event.
type Entry struct {
	ID          string         `json:"id"`
	Type        EntryType      `json:"type"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Ledger records and queries history entries. Entries always land in
// the in-memory cache; the backing store is written when present and
// reachable.
type Ledger struct {
	mu      sync.RWMutex
	entries []Entry

	backing store.DocumentStore
	logger  *slog.Logger
	now     func() time.Time
}

// NewLedger creates a Ledger. backing may be nil for offline mode.
func NewLedger(backing store.DocumentStore, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		backing: backing,
		logger:  logger,
		now:     time.Now,
	}
}

// Record appends an entry and returns its id. It always succeeds
// locally; a backing-store failure is logged and swallowed.
func (l *Ledger) Record(ctx context.Context, entryType EntryType, description string, data map[string]any) string {
	if data == nil {
		data = map[string]any{}
	}
	entry := Entry{
		ID:          uuid.New().String(),
		Type:        entryType,
		Description: description,
		Data:        data,
		Timestamp:   l.now(),
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	metrics.HistoryEntries.WithLabelValues(string(entryType)).Inc()

	if l.backing != nil {
		doc := store.Document{
			"type":        string(entry.Type),
			"description": entry.Description,
			"data":        entry.Data,
			"timestamp":   entry.Timestamp.Format(time.RFC3339Nano),
		}
		if _, err := l.backing.AddDocument(ctx, Collection, doc); err != nil {
			l.logger.Warn("History entry not persisted to backing store",
				"type", entryType, "error", err)
		}
	}

	return entry.ID
}

// Hydrate replaces the in-memory cache with the backing store's
// entries, so a fresh process sees history recorded by earlier ones.
// A no-op without a backing store.
func (l *Ledger) Hydrate(ctx context.Context) error {
	if l.backing == nil {
		return nil
	}

	docs, err := l.backing.GetDocuments(ctx, Collection)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	entries := make([]Entry, 0, len(docs))
	for _, doc := range docs {
		entry := Entry{ID: doc.ID()}
		if t, ok := doc["type"].(string); ok {
			entry.Type = EntryType(t)
		}
		entry.Description, _ = doc["description"].(string)
		if data, ok := doc["data"].(map[string]any); ok {
			entry.Data = data
		}
		if ts, ok := doc["timestamp"].(string); ok {
			if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
				entry.Timestamp = parsed
			}
		}
		entries = append(entries, entry)
	}

	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()
	return nil
}

// Query returns entries sorted most-recent-first, optionally filtered
// by type and truncated to limit.
func (l *Ledger) Query(typeFilter EntryType, limit int) []Entry {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	l.mu.RLock()
	filtered := make([]Entry, 0, len(l.entries))
	for _, entry := range l.entries {
		if typeFilter != "" && entry.Type != typeFilter {
			continue
		}
		filtered = append(filtered, entry)
	}
	l.mu.RUnlock()

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.After(filtered[j].Timestamp)
	})

	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}

// Clear removes entries from both the cache and the backing store,
// optionally scoped to a type. It returns true only when every layer
// succeeded (the backing store being absent counts as success).
func (l *Ledger) Clear(ctx context.Context, typeFilter EntryType) bool {
	l.mu.Lock()
	if typeFilter == "" {
		l.entries = nil
	} else {
		kept := l.entries[:0]
		for _, entry := range l.entries {
			if entry.Type != typeFilter {
				kept = append(kept, entry)
			}
		}
		l.entries = kept
	}
	l.mu.Unlock()

	if l.backing == nil {
		return true
	}

	docs, err := l.backing.GetDocuments(ctx, Collection)
	if err != nil {
		l.logger.Error("Failed to list history for clearing", "error", err)
		return false
	}

	ok := true
	for _, doc := range docs {
		if typeFilter != "" {
			docType, _ := doc["type"].(string)
			if docType != string(typeFilter) {
				continue
			}
		}
		if err := l.backing.DeleteDocument(ctx, Collection, doc.ID()); err != nil {
			l.logger.Error("Failed to delete history entry", "id", doc.ID(), "error", err)
			ok = false
		}
	}
	return ok
}
