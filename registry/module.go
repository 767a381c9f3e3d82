// Package registry discovers, registers, and activates named
// sub-modules. Modules declare dependencies that are loaded first, and
// expose components only by handing them to the binder during
// registration: nothing a module does not explicitly export is
// reachable through the registry.
package registry

import "fmt"

// Manifest describes a module. On-disk modules carry it in a
// module.yaml marker file at the module root; code-provided modules
// return it from Manifest().
type Manifest struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Version      string   `yaml:"version"`
	Dependencies []string `yaml:"dependencies"`
}

// Module is an activatable feature unit. Register is the module's
// single entry point: it receives a Binder and hands over the
// components it wants to export. The registry never introspects a
// module beyond this call.
type Module interface {
	Manifest() Manifest
	Register(b *Binder) error
}

// Binder collects the components a module exports during Register.
type Binder struct {
	module  string
	exports map[string]any
}

func newBinder(module string) *Binder {
	return &Binder{module: module, exports: make(map[string]any)}
}

// Export publishes a component under the given name. Exporting the
// same name twice is a registration bug.
func (b *Binder) Export(name string, component any) error {
	if name == "" {
		return fmt.Errorf("module %s: export name cannot be empty", b.module)
	}
	if component == nil {
		return fmt.Errorf("module %s: component %q cannot be nil", b.module, name)
	}
	if _, exists := b.exports[name]; exists {
		return fmt.Errorf("module %s: component %q exported twice", b.module, name)
	}
	b.exports[name] = component
	return nil
}
