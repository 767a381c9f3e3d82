// Package plan turns raw generative-model output into a validated plan
// of tasks and subtasks. Input may be JSON inside a fenced code block,
// bare JSON, or free-form markdown; extraction degrades gracefully
// instead of failing on malformed text.
package plan

import "time"

// Priority is a task priority level. Values follow the product's
// Portuguese vocabulary.
type Priority string

const (
	PriorityHigh   Priority = "alta"
	PriorityMedium Priority = "média"
	PriorityLow    Priority = "baixa"
)

// Valid reports whether p is a known priority level.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// FallbackTitle is used when no usable title can be recovered.
const FallbackTitle = "Plano gerado pela IA"

// Document is a normalized plan produced by extraction. It is
// transient: consumed once by the task builder and optionally saved
// verbatim to history for audit.
type Document struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tasks       []Task    `json:"tasks"`
	CreatedAt   time.Time `json:"created_at"`
}

// Task is a top-level plan entry.
type Task struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	Subtasks    []Subtask `json:"subtasks"`
}

// Subtask is a single actionable line under a plan task.
type Subtask struct {
	Title string `json:"title"`
}
