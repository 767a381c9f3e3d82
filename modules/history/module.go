// Package history wires the event ledger into the module registry as
// the "history" module.
package history

import (
	"log/slog"

	hist "github.com/c360studio/plantask/history"
	"github.com/c360studio/plantask/registry"
	"github.com/c360studio/plantask/store"
)

// ModuleName is the registry name of this module.
const ModuleName = "history"

// Module owns the process-wide event ledger and exports it through the
// registry.
type Module struct {
	ledger *hist.Ledger
}

// New creates the history module. backing may be nil for offline mode.
func New(backing store.DocumentStore, logger *slog.Logger) *Module {
	return &Module{ledger: hist.NewLedger(backing, logger)}
}

// Ledger returns the ledger for hosts that wire dependencies directly
// instead of going through registry lookups.
func (m *Module) Ledger() *hist.Ledger { return m.ledger }

// Manifest implements registry.Module.
func (m *Module) Manifest() registry.Manifest {
	return registry.Manifest{
		Name:        ModuleName,
		Description: "Registro de eventos e histórico de planos",
		Version:     "1.0.0",
	}
}

// Register implements registry.Module.
func (m *Module) Register(b *registry.Binder) error {
	return b.Export("ledger", m.ledger)
}
