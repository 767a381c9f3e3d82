package taskgraph

import (
	"context"
	"errors"
	"testing"

	"github.com/c360studio/plantask/history"
	"github.com/c360studio/plantask/plan"
	"github.com/c360studio/plantask/store"
)

func newTestService() (*Service, *store.MemoryStore, *history.Ledger) {
	mem := store.NewMemoryStore(nil)
	ledger := history.NewLedger(nil, nil)
	return NewService(mem, ledger, nil), mem, ledger
}

func TestAddTaskWithSubtasks(t *testing.T) {
	svc, _, ledger := newTestService()
	ctx := context.Background()

	task, err := svc.AddTask(ctx, "Organizar mudança", plan.PriorityHigh,
		[]string{"empacotar livros", "", "contratar transporte"})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if len(task.Subtasks) != 2 {
		t.Errorf("empty subtask titles should be dropped, got %d", len(task.Subtasks))
	}

	entries := ledger.Query(history.TypeTaskCreation, 0)
	if len(entries) != 1 || entries[0].Data["source"] != "manual" {
		t.Errorf("history entry = %+v", entries)
	}
}

func TestAddTaskRequiresTitle(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.AddTask(context.Background(), "", plan.PriorityMedium, nil); err == nil {
		t.Error("AddTask without title must fail")
	}
}

func TestDeleteTaskCascades(t *testing.T) {
	svc, mem, ledger := newTestService()
	ctx := context.Background()

	task, err := svc.AddTask(ctx, "Com subtarefas", plan.PriorityMedium,
		[]string{"primeira", "segunda"})
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	if err := svc.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}

	// No task document — and with it, no subtask — remains queryable.
	docs, _ := mem.GetDocuments(ctx, Collection)
	if len(docs) != 0 {
		t.Errorf("delete left %d documents", len(docs))
	}
	if _, err := svc.GetTask(ctx, task.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetTask after delete = %v, want ErrNotFound", err)
	}

	entries := ledger.Query(history.TypeTaskDeleted, 0)
	if len(entries) != 1 {
		t.Fatalf("expected task_deleted entry, got %d", len(entries))
	}
	if entries[0].Data["subtasks_removed"] != 2 {
		t.Errorf("subtasks_removed = %v, want 2", entries[0].Data["subtasks_removed"])
	}
}

func TestCompleteTaskLeavesSubtasksByDefault(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	task, _ := svc.AddTask(ctx, "Tarefa", plan.PriorityMedium, []string{"subtarefa longa"})
	if err := svc.CompleteTask(ctx, task.ID); err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}

	got, _ := svc.GetTask(ctx, task.ID)
	if !got.Completed {
		t.Error("task not completed")
	}
	// Completing the parent does not force subtask completion.
	if got.Subtasks[0].Completed {
		t.Error("subtask auto-completed with policy disabled")
	}
}

func TestCompleteTaskPolicyCompletesSubtasks(t *testing.T) {
	svc, _, _ := newTestService()
	svc.CompleteSubtasksOnTaskComplete = true
	ctx := context.Background()

	task, _ := svc.AddTask(ctx, "Tarefa", plan.PriorityMedium, []string{"subtarefa longa"})
	if err := svc.CompleteTask(ctx, task.ID); err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}

	got, _ := svc.GetTask(ctx, task.ID)
	if !got.Subtasks[0].Completed {
		t.Error("policy enabled but subtask not completed")
	}
}

func TestUpdateTaskFieldAllowlist(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	task, _ := svc.AddTask(ctx, "Original", plan.PriorityMedium, nil)

	err := svc.UpdateTask(ctx, task.ID, store.Document{
		"title":            "Renomeada",
		"priority":         "baixa",
		"plan_fingerprint": "forged",
	})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	got, _ := svc.GetTask(ctx, task.ID)
	if got.Title != "Renomeada" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Priority != plan.PriorityLow {
		t.Errorf("priority = %q", got.Priority)
	}
	if got.PlanFingerprint == "forged" {
		t.Error("non-allowlisted field written through update")
	}
}

func TestUpdateTaskRejectsInvalidPriority(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	task, _ := svc.AddTask(ctx, "Tarefa", plan.PriorityMedium, nil)
	if err := svc.UpdateTask(ctx, task.ID, store.Document{"priority": "urgente"}); err == nil {
		t.Error("invalid priority must be rejected")
	}
}

func TestListTasks(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.AddTask(ctx, "Primeira", plan.PriorityMedium, nil); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if _, err := svc.AddTask(ctx, "Segunda", plan.PriorityLow, nil); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	tasks, err := svc.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	for _, task := range tasks {
		if !task.Priority.Valid() {
			t.Errorf("task %q has invalid priority %q", task.Title, task.Priority)
		}
	}
}
