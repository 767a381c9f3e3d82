// Package planning wires plan generation and extraction into the
// module registry as the "planning" module.
package planning

import (
	"log/slog"

	hist "github.com/c360studio/plantask/history"
	historymod "github.com/c360studio/plantask/modules/history"
	tasksmod "github.com/c360studio/plantask/modules/tasks"
	"github.com/c360studio/plantask/plan"
	"github.com/c360studio/plantask/registry"
	"github.com/c360studio/plantask/taskgraph"
	"github.com/c360studio/plantask/textgen"
)

// ModuleName is the registry name of this module.
const ModuleName = "planning"

// Module exposes the planner and the plan extractor.
type Module struct {
	planner   *Planner
	extractor *plan.Extractor
}

// New creates the planning module. generator may be nil for offline
// hosts; text-based planning still works without it.
func New(generator textgen.Generator, builder *taskgraph.Builder, ledger *hist.Ledger, logger *slog.Logger) *Module {
	extractor := plan.NewExtractor(logger)
	return &Module{
		planner:   NewPlanner(generator, extractor, builder, ledger, logger),
		extractor: extractor,
	}
}

// Planner returns the planning service.
func (m *Module) Planner() *Planner { return m.planner }

// Manifest implements registry.Module.
func (m *Module) Manifest() registry.Manifest {
	return registry.Manifest{
		Name:         ModuleName,
		Description:  "Geração e extração de planos de tarefas",
		Version:      "1.0.0",
		Dependencies: []string{tasksmod.ModuleName, historymod.ModuleName},
	}
}

// Register implements registry.Module.
func (m *Module) Register(b *registry.Binder) error {
	if err := b.Export("planner", m.planner); err != nil {
		return err
	}
	return b.Export("extractor", m.extractor)
}
