package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/c360studio/plantask/metrics"
)

// State tracks a module's position in its activation lifecycle.
type State string

const (
	// StateDiscovered means the module is registered but not active.
	StateDiscovered State = "discovered"
	// StateLoading means dependency resolution or registration is in
	// progress; observing it during resolution means a cycle.
	StateLoading State = "loading"
	// StateLoaded means the module is active and its exports are
	// available.
	StateLoaded State = "loaded"
	// StateLoadFailed means activation failed; the module stays
	// registered so a later Load can retry from scratch.
	StateLoadFailed State = "load_failed"
)

// ModuleInfo is the registry's record of a module. Exports are
// populated only on successful load.
type ModuleInfo struct {
	Name         string
	Path         string
	Description  string
	Version      string
	Dependencies []string
	State        State
	Err          error

	handle  Module
	exports map[string]any
}

// Loaded reports whether the module is active.
func (m *ModuleInfo) Loaded() bool { return m.State == StateLoaded }

// Registry is the process-wide module catalog. Construct one at
// startup and pass it to whatever needs it; it is safe for concurrent
// use.
type Registry struct {
	mu        sync.Mutex
	modules   map[string]*ModuleInfo
	providers map[string]Module
	logger    *slog.Logger

	root    string
	ignores []string
}

// Option configures a Registry.
type Option func(*Registry)

// WithRoot sets the directory scanned by Discover.
func WithRoot(root string) Option {
	return func(r *Registry) { r.root = root }
}

// WithIgnoreGlobs sets glob patterns for directory names Discover
// skips (defaults: dotfiles, underscore-prefixed, testdata).
func WithIgnoreGlobs(globs ...string) Option {
	return func(r *Registry) { r.ignores = globs }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		modules:   make(map[string]*ModuleInfo),
		providers: make(map[string]Module),
		logger:    slog.Default(),
		ignores:   []string{".*", "_*", "testdata"},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Provide makes a module implementation available for loading and
// registers its manifest. Modules provided in code do not need an
// on-disk manifest; Discover can later overwrite the metadata of a
// same-named module found on disk (last wins).
func (r *Registry) Provide(m Module) {
	manifest := m.Manifest()
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[manifest.Name] = m
	r.registerLocked(&ModuleInfo{
		Name:         manifest.Name,
		Description:  manifest.Description,
		Version:      manifest.Version,
		Dependencies: manifest.Dependencies,
		State:        StateDiscovered,
	})
}

// Register inserts or overwrites a module record. Duplicate names are
// overwritten with a warning: last registered wins.
func (r *Registry) Register(info *ModuleInfo) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerLocked(info)
}

func (r *Registry) registerLocked(info *ModuleInfo) bool {
	if info == nil || info.Name == "" {
		return false
	}
	// Last registered wins, even over a loaded module. Permissive on
	// purpose: re-discovery refreshes metadata and a later Load
	// re-activates.
	if _, ok := r.modules[info.Name]; ok {
		r.logger.Warn("Module already registered, overwriting", "module", info.Name)
	}
	if info.State == "" {
		info.State = StateDiscovered
	}
	r.modules[info.Name] = info
	r.logger.Info("Module registered", "module", info.Name, "version", info.Version)
	return true
}

// Load activates a module, depth-first loading its dependencies
// before it. Loading an already-loaded module is a no-op success; a
// previously failed module retries from scratch. On any failure the
// module is left out of the loaded state and a typed error is
// returned.
func (r *Registry) Load(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.loadLocked(name, nil)
	switch {
	case err == nil:
		return nil
	default:
		metrics.ModuleLoads.WithLabelValues("failed").Inc()
		r.logger.Error("Module load failed", "module", name, "error", err)
		return err
	}
}

// loadLocked performs the recursive load. chain carries the DFS path
// for cycle reporting.
func (r *Registry) loadLocked(name string, chain []string) error {
	info, ok := r.modules[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}

	switch info.State {
	case StateLoaded:
		metrics.ModuleLoads.WithLabelValues("noop").Inc()
		return nil
	case StateLoading:
		return &CyclicDependencyError{Chain: append(append([]string{}, chain...), name)}
	}

	info.State = StateLoading
	info.Err = nil
	chain = append(chain, name)

	for _, dep := range info.Dependencies {
		if err := r.loadLocked(dep, chain); err != nil {
			info.State = StateLoadFailed
			var cyclic *CyclicDependencyError
			if errors.As(err, &cyclic) {
				info.Err = err
				return err
			}
			info.Err = &DependencyError{Module: name, Dependency: dep, Err: err}
			return info.Err
		}
	}

	provider := info.handle
	if provider == nil {
		provider = r.providers[name]
	}
	if provider == nil {
		info.State = StateLoadFailed
		info.Err = &ImportError{Module: name, Err: fmt.Errorf("no implementation provided")}
		return info.Err
	}

	binder := newBinder(name)
	if err := provider.Register(binder); err != nil {
		info.State = StateLoadFailed
		info.Err = &ImportError{Module: name, Err: err}
		return info.Err
	}

	info.handle = provider
	info.exports = binder.exports
	info.State = StateLoaded
	metrics.ModuleLoads.WithLabelValues("loaded").Inc()
	r.logger.Info("Module loaded", "module", name, "exports", len(info.exports))
	return nil
}

// GetModule returns the registry record for a module, or nil.
func (r *Registry) GetModule(name string) *ModuleInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.modules[name]
}

// GetComponent returns an exported component, or nil when the module
// is unknown, not loaded, or did not export that name. Unexported
// components never leak through here.
func (r *Registry) GetComponent(moduleName, componentName string) any {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.modules[moduleName]
	if !ok || !info.Loaded() {
		return nil
	}
	return info.exports[componentName]
}

// ListAvailableModules returns all registered module names, sorted.
func (r *Registry) ListAvailableModules() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListLoadedModules returns the names of loaded modules, sorted.
func (r *Registry) ListLoadedModules() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.modules))
	for name, info := range r.modules {
		if info.Loaded() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
