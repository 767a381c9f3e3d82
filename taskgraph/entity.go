// Package taskgraph materializes extracted plans into persisted tasks
// and provides the task mutation operations the host UI drives.
package taskgraph

import (
	"time"

	"github.com/c360studio/plantask/plan"
	"github.com/c360studio/plantask/store"
)

// Collection is the document store collection holding tasks. The
// legacy deployment called it "todos"; new data lives under "tasks".
const Collection = "tasks"

// Task is a persisted unit of work with its embedded subtasks.
type Task struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Priority    plan.Priority `json:"priority"`
	Completed   bool          `json:"completed"`
	CreatedAt   time.Time     `json:"created_at"`
	Subtasks    []Subtask     `json:"subtasks"`

	// PlanFingerprint links tasks created from the same extracted plan,
	// so re-running materialization for that plan can be detected.
	PlanFingerprint string `json:"plan_fingerprint,omitempty"`
}

// Subtask has no lifecycle independent of its parent task: deleting
// the task removes its subtasks with it.
type Subtask struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// toDocument flattens a task into a store document.
func (t Task) toDocument() store.Document {
	subtasks := make([]any, 0, len(t.Subtasks))
	for _, st := range t.Subtasks {
		subtasks = append(subtasks, map[string]any{
			"id":          st.ID,
			"title":       st.Title,
			"description": st.Description,
			"completed":   st.Completed,
		})
	}
	doc := store.Document{
		"title":       t.Title,
		"description": t.Description,
		"priority":    string(t.Priority),
		"completed":   t.Completed,
		"created_at":  t.CreatedAt.Format(time.RFC3339Nano),
		"subtasks":    subtasks,
	}
	if t.PlanFingerprint != "" {
		doc["plan_fingerprint"] = t.PlanFingerprint
	}
	return doc
}

// taskFromDocument rebuilds a task from a store document.
func taskFromDocument(doc store.Document) Task {
	task := Task{ID: doc.ID()}
	task.Title, _ = doc["title"].(string)
	task.Description, _ = doc["description"].(string)
	if p, ok := doc["priority"].(string); ok {
		task.Priority = plan.Priority(p)
	}
	if !task.Priority.Valid() {
		task.Priority = plan.PriorityMedium
	}
	task.Completed, _ = doc["completed"].(bool)
	if raw, ok := doc["created_at"].(string); ok {
		task.CreatedAt, _ = time.Parse(time.RFC3339Nano, raw)
	}
	task.PlanFingerprint, _ = doc["plan_fingerprint"].(string)

	if rawSubtasks, ok := doc["subtasks"].([]any); ok {
		task.Subtasks = make([]Subtask, 0, len(rawSubtasks))
		for _, rawSub := range rawSubtasks {
			sub, ok := rawSub.(map[string]any)
			if !ok {
				continue
			}
			st := Subtask{}
			st.ID, _ = sub["id"].(string)
			st.Title, _ = sub["title"].(string)
			st.Description, _ = sub["description"].(string)
			st.Completed, _ = sub["completed"].(bool)
			task.Subtasks = append(task.Subtasks, st)
		}
	}
	return task
}
