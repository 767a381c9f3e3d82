package taskgraph

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/plantask/history"
	"github.com/c360studio/plantask/metrics"
	"github.com/c360studio/plantask/plan"
	"github.com/c360studio/plantask/store"
)

// ErrEmptyPlan indicates materialization was asked to persist a plan
// with no tasks. An empty plan must not silently produce an empty
// success.
var ErrEmptyPlan = errors.New("plan contains no tasks")

// PartialFailureError reports how many tasks failed to persist while
// the rest of the plan went through.
type PartialFailureError struct {
	FailedCount int
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%d task(s) failed to persist", e.FailedCount)
}

// Builder materializes plan documents into persisted tasks plus
// history entries.
type Builder struct {
	store  store.DocumentStore
	ledger *history.Ledger
	logger *slog.Logger
	now    func() time.Time
}

// NewBuilder creates a Builder over the given store and ledger.
func NewBuilder(docs store.DocumentStore, ledger *history.Ledger, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		store:  docs,
		ledger: ledger,
		logger: logger,
		now:    time.Now,
	}
}

// Fingerprint derives a deterministic idempotency key from a plan's
// content, so the same extracted plan materialized twice can be
// detected.
func Fingerprint(doc *plan.Document) string {
	payload, err := json.Marshal(struct {
		Title string      `json:"title"`
		Tasks []plan.Task `json:"tasks"`
	}{doc.Title, doc.Tasks})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Materialize persists every task of the plan and records a history
// entry per persisted task. Persistence for a task always happens
// before its history entry, so history never references a task that
// failed to persist. A single persistence failure skips that task's
// history entry and continues; the failure count is reported through
// PartialFailureError alongside the tasks that did persist.
//
// Re-running Materialize for a plan already materialized (same
// fingerprint) is a no-op returning the existing tasks.
func (b *Builder) Materialize(ctx context.Context, doc *plan.Document) ([]Task, error) {
	if doc == nil || len(doc.Tasks) == 0 {
		return nil, ErrEmptyPlan
	}

	fingerprint := Fingerprint(doc)
	if existing := b.findByFingerprint(ctx, fingerprint); len(existing) > 0 {
		b.logger.Info("Plan already materialized, skipping",
			"title", doc.Title, "tasks", len(existing))
		return existing, nil
	}

	created := make([]Task, 0, len(doc.Tasks))
	failed := 0
	now := b.now()

	for _, planTask := range doc.Tasks {
		task := Task{
			ID:              uuid.New().String(),
			Title:           planTask.Title,
			Description:     planTask.Description,
			Priority:        planTask.Priority,
			Completed:       false,
			CreatedAt:       now,
			PlanFingerprint: fingerprint,
		}
		if !task.Priority.Valid() {
			task.Priority = plan.PriorityMedium
		}
		for _, planSub := range planTask.Subtasks {
			task.Subtasks = append(task.Subtasks, Subtask{
				ID:    uuid.New().String(),
				Title: planSub.Title,
			})
		}

		id, err := b.store.AddDocument(ctx, Collection, task.toDocument())
		if err != nil {
			b.logger.Error("Failed to persist task from plan",
				"title", task.Title, "error", err)
			metrics.TaskPersistFailures.Inc()
			failed++
			continue
		}
		task.ID = id
		created = append(created, task)
		metrics.TasksMaterialized.Inc()

		b.ledger.Record(ctx, history.TypeTaskCreation,
			"Tarefa criada: "+task.Title,
			map[string]any{"source": "plano", "task_id": task.ID})
	}

	if failed > 0 {
		return created, &PartialFailureError{FailedCount: failed}
	}
	return created, nil
}

// findByFingerprint returns tasks already persisted for the plan with
// the given fingerprint. Store errors degrade to "not found" so a
// listing failure never blocks materialization.
func (b *Builder) findByFingerprint(ctx context.Context, fingerprint string) []Task {
	if fingerprint == "" {
		return nil
	}
	docs, err := b.store.GetDocuments(ctx, Collection)
	if err != nil {
		b.logger.Warn("Could not check for existing materialization", "error", err)
		return nil
	}
	var tasks []Task
	for _, doc := range docs {
		if fp, _ := doc["plan_fingerprint"].(string); fp == fingerprint {
			tasks = append(tasks, taskFromDocument(doc))
		}
	}
	return tasks
}
