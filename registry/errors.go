package registry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotRegistered indicates a load was requested for an unknown
// module name.
var ErrNotRegistered = errors.New("module not registered")

// CyclicDependencyError reports a module transitively depending on
// itself. Chain holds the dependency path that closed the cycle.
type CyclicDependencyError struct {
	Chain []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic module dependency: %s", strings.Join(e.Chain, " -> "))
}

// DependencyError reports a dependency that failed to load, aborting
// the dependent module's load.
type DependencyError struct {
	Module     string
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("module %s: dependency %s failed to load: %v", e.Module, e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// ImportError reports a failure activating the module itself, either
// because no implementation is available for a discovered name or
// because its registration entry point returned an error.
type ImportError struct {
	Module string
	Err    error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("module %s: import failed: %v", e.Module, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }
