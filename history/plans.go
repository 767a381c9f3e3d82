package history

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/c360studio/plantask/plan"
	"github.com/c360studio/plantask/store"
)

// PlansCollection stores generated plans verbatim for audit and review.
const PlansCollection = "planos_historico"

// PlanRecord is an audit copy of a generated plan.
type PlanRecord struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	JSON      string    `json:"json"`
	CreatedAt time.Time `json:"created_at"`
}

// SavePlan stores a plan document as JSON text in the plan-history
// collection. Returns false (logged, non-fatal) when no backing store
// is available or the write fails.
func (l *Ledger) SavePlan(ctx context.Context, doc *plan.Document) bool {
	if l.backing == nil {
		l.logger.Warn("No backing store, plan not persisted", "title", doc.Title)
		return false
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		l.logger.Error("Failed to encode plan for history", "error", err)
		return false
	}

	record := store.Document{
		"title":      doc.Title,
		"json":       string(payload),
		"created_at": l.now().Format(time.RFC3339Nano),
	}
	id, err := l.backing.AddDocument(ctx, PlansCollection, record)
	if err != nil {
		l.logger.Error("Failed to save plan to history", "title", doc.Title, "error", err)
		return false
	}

	l.logger.Info("Plan saved to history", "title", doc.Title, "id", id)
	return true
}

// ListPlans returns stored plan records, most recent first, truncated
// to limit.
func (l *Ledger) ListPlans(ctx context.Context, limit int) []PlanRecord {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	if l.backing == nil {
		return nil
	}

	docs, err := l.backing.GetDocuments(ctx, PlansCollection)
	if err != nil {
		l.logger.Error("Failed to list plan history", "error", err)
		return nil
	}

	records := make([]PlanRecord, 0, len(docs))
	for _, doc := range docs {
		title, _ := doc["title"].(string)
		payload, _ := doc["json"].(string)
		createdRaw, _ := doc["created_at"].(string)
		created, _ := time.Parse(time.RFC3339Nano, createdRaw)
		records = append(records, PlanRecord{
			ID:        doc.ID(),
			Title:     title,
			JSON:      payload,
			CreatedAt: created,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records
}
