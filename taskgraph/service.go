package taskgraph

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/plantask/history"
	"github.com/c360studio/plantask/plan"
	"github.com/c360studio/plantask/store"
)

// Service exposes the task operations the host UI drives: direct
// creation, listing, completion, update, and cascade delete.
type Service struct {
	store  store.DocumentStore
	ledger *history.Ledger
	logger *slog.Logger

	// CompleteSubtasksOnTaskComplete controls whether completing a task
	// also marks its subtasks completed. The data model does not
	// enforce this; it is a presentation policy, off unless enabled.
	CompleteSubtasksOnTaskComplete bool
}

// NewService creates a task Service.
func NewService(docs store.DocumentStore, ledger *history.Ledger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: docs, ledger: ledger, logger: logger}
}

// AddTask creates a task directly (the UI form path), with optional
// subtask titles.
func (s *Service) AddTask(ctx context.Context, title string, priority plan.Priority, subtaskTitles []string) (*Task, error) {
	if title == "" {
		return nil, fmt.Errorf("task title is required")
	}
	if !priority.Valid() {
		priority = plan.PriorityMedium
	}

	task := Task{
		Title:     title,
		Priority:  priority,
		CreatedAt: time.Now(),
	}
	for _, st := range subtaskTitles {
		if st == "" {
			continue
		}
		task.Subtasks = append(task.Subtasks, Subtask{
			ID:    uuid.New().String(),
			Title: st,
		})
	}

	id, err := s.store.AddDocument(ctx, Collection, task.toDocument())
	if err != nil {
		return nil, fmt.Errorf("persist task: %w", err)
	}
	task.ID = id

	s.ledger.Record(ctx, history.TypeTaskCreation,
		"Tarefa criada: "+task.Title,
		map[string]any{"source": "manual", "task_id": task.ID})

	return &task, nil
}

// ListTasks returns all tasks, newest first.
func (s *Service) ListTasks(ctx context.Context) ([]Task, error) {
	docs, err := s.store.GetDocuments(ctx, Collection)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]Task, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, taskFromDocument(doc))
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// GetTask returns a single task by id.
func (s *Service) GetTask(ctx context.Context, id string) (*Task, error) {
	docs, err := s.store.GetDocuments(ctx, Collection)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	for _, doc := range docs {
		if doc.ID() == id {
			task := taskFromDocument(doc)
			return &task, nil
		}
	}
	return nil, store.ErrNotFound
}

// CompleteTask marks a task completed. Subtasks are only touched when
// the service's completion policy says so.
func (s *Service) CompleteTask(ctx context.Context, id string) error {
	partial := store.Document{"completed": true}

	if s.CompleteSubtasksOnTaskComplete {
		task, err := s.GetTask(ctx, id)
		if err != nil {
			return err
		}
		subtasks := make([]any, 0, len(task.Subtasks))
		for _, st := range task.Subtasks {
			st.Completed = true
			subtasks = append(subtasks, map[string]any{
				"id":          st.ID,
				"title":       st.Title,
				"description": st.Description,
				"completed":   true,
			})
		}
		partial["subtasks"] = subtasks
	}

	if err := s.store.UpdateDocument(ctx, Collection, id, partial); err != nil {
		return fmt.Errorf("complete task %s: %w", id, err)
	}

	s.ledger.Record(ctx, history.TypeTaskCompleted,
		"Tarefa concluída", map[string]any{"task_id": id})
	return nil
}

// UpdateTask merges the given fields into a task. Only title,
// description, priority, and completed may be changed this way.
func (s *Service) UpdateTask(ctx context.Context, id string, fields store.Document) error {
	partial := store.Document{}
	for _, key := range []string{"title", "description", "priority", "completed"} {
		if v, ok := fields[key]; ok {
			partial[key] = v
		}
	}
	if len(partial) == 0 {
		return fmt.Errorf("no updatable fields given")
	}
	if p, ok := partial["priority"].(string); ok && !plan.Priority(p).Valid() {
		return fmt.Errorf("invalid priority %q", p)
	}

	if err := s.store.UpdateDocument(ctx, Collection, id, partial); err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	return nil
}

// DeleteTask removes a task. Its subtasks are embedded in the task
// document, so the cascade holds by construction: no subtask survives
// its parent.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteDocument(ctx, Collection, id); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}

	s.ledger.Record(ctx, history.TypeTaskDeleted,
		"Tarefa removida: "+task.Title,
		map[string]any{"task_id": id, "subtasks_removed": len(task.Subtasks)})
	return nil
}
