// Package tasks wires task creation, listing, completion, and deletion
// into the module registry as the "tasks" module.
package tasks

import (
	"log/slog"

	hist "github.com/c360studio/plantask/history"
	historymod "github.com/c360studio/plantask/modules/history"
	"github.com/c360studio/plantask/registry"
	"github.com/c360studio/plantask/store"
	"github.com/c360studio/plantask/taskgraph"
)

// ModuleName is the registry name of this module.
const ModuleName = "tasks"

// Module exposes the task service and the plan materializer.
type Module struct {
	service *taskgraph.Service
	builder *taskgraph.Builder
}

// New creates the tasks module on the given store and ledger.
func New(docs store.DocumentStore, ledger *hist.Ledger, logger *slog.Logger) *Module {
	return &Module{
		service: taskgraph.NewService(docs, ledger, logger),
		builder: taskgraph.NewBuilder(docs, ledger, logger),
	}
}

// Service returns the task service.
func (m *Module) Service() *taskgraph.Service { return m.service }

// Builder returns the plan materializer.
func (m *Module) Builder() *taskgraph.Builder { return m.builder }

// Manifest implements registry.Module.
func (m *Module) Manifest() registry.Manifest {
	return registry.Manifest{
		Name:         ModuleName,
		Description:  "Gerenciamento de tarefas e subtarefas",
		Version:      "1.0.0",
		Dependencies: []string{historymod.ModuleName},
	}
}

// Register implements registry.Module.
func (m *Module) Register(b *registry.Binder) error {
	if err := b.Export("service", m.service); err != nil {
		return err
	}
	return b.Export("builder", m.builder)
}
