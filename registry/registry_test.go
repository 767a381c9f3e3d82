package registry

import (
	"errors"
	"fmt"
	"testing"
)

// fakeModule is a test module with configurable manifest and exports.
type fakeModule struct {
	manifest Manifest
	exports  map[string]any
	failWith error
	loads    *[]string
}

func (m *fakeModule) Manifest() Manifest { return m.manifest }

func (m *fakeModule) Register(b *Binder) error {
	if m.failWith != nil {
		return m.failWith
	}
	if m.loads != nil {
		*m.loads = append(*m.loads, m.manifest.Name)
	}
	for name, component := range m.exports {
		if err := b.Export(name, component); err != nil {
			return err
		}
	}
	return nil
}

func provide(r *Registry, name string, deps []string, opts ...func(*fakeModule)) *fakeModule {
	m := &fakeModule{
		manifest: Manifest{Name: name, Version: "1.0.0", Dependencies: deps},
		exports:  map[string]any{},
	}
	for _, opt := range opts {
		opt(m)
	}
	r.Provide(m)
	return m
}

func TestLoadUnknownModule(t *testing.T) {
	r := New()
	if err := r.Load("fantasma"); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("error = %v, want ErrNotRegistered", err)
	}
}

func TestLoadDependencyOrdering(t *testing.T) {
	r := New()
	var order []string
	track := func(m *fakeModule) { m.loads = &order }

	// A depends on B depends on C.
	provide(r, "a", []string{"b"}, track)
	provide(r, "b", []string{"c"}, track)
	provide(r, "c", nil, track)

	if err := r.Load("a"); err != nil {
		t.Fatalf("Load(a) failed: %v", err)
	}

	want := []string{"c", "b", "a"}
	if len(order) != 3 {
		t.Fatalf("load order = %v, want %v", order, want)
	}
	for i, w := range want {
		if order[i] != w {
			t.Errorf("load order = %v, want %v", order, want)
			break
		}
	}

	loaded := r.ListLoadedModules()
	if len(loaded) != 3 {
		t.Errorf("ListLoadedModules = %v, want a, b, c", loaded)
	}
}

func TestLoadDependencyFailureAborts(t *testing.T) {
	r := New()
	provide(r, "a", []string{"b"})
	provide(r, "b", nil, func(m *fakeModule) {
		m.failWith = fmt.Errorf("boom")
	})

	err := r.Load("a")
	var depErr *DependencyError
	if !errors.As(err, &depErr) {
		t.Fatalf("error = %v, want DependencyError", err)
	}
	if depErr.Dependency != "b" {
		t.Errorf("Dependency = %q, want b", depErr.Dependency)
	}

	// A must not report loaded when its dependency failed.
	if r.GetModule("a").Loaded() {
		t.Error("a loaded despite failed dependency")
	}
	if r.GetModule("b").State != StateLoadFailed {
		t.Errorf("b state = %q, want load_failed", r.GetModule("b").State)
	}
}

func TestLoadCycleDetection(t *testing.T) {
	r := New()
	provide(r, "x", []string{"y"})
	provide(r, "y", []string{"x"})

	err := r.Load("x")
	var cyclic *CyclicDependencyError
	if !errors.As(err, &cyclic) {
		t.Fatalf("error = %v, want CyclicDependencyError", err)
	}

	for _, name := range []string{"x", "y"} {
		if r.GetModule(name).Loaded() {
			t.Errorf("%s left loaded after cycle", name)
		}
	}
	if len(r.ListLoadedModules()) != 0 {
		t.Errorf("loaded modules = %v, want none", r.ListLoadedModules())
	}
}

func TestLoadSelfCycle(t *testing.T) {
	r := New()
	provide(r, "narciso", []string{"narciso"})

	var cyclic *CyclicDependencyError
	if err := r.Load("narciso"); !errors.As(err, &cyclic) {
		t.Fatalf("error = %v, want CyclicDependencyError", err)
	}
}

func TestLoadIsNoOpWhenLoaded(t *testing.T) {
	r := New()
	var order []string
	provide(r, "a", nil, func(m *fakeModule) { m.loads = &order })

	if err := r.Load("a"); err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	if err := r.Load("a"); err != nil {
		t.Fatalf("second load failed: %v", err)
	}
	if len(order) != 1 {
		t.Errorf("module registered %d times, want 1", len(order))
	}
}

func TestLoadRetriesAfterFailure(t *testing.T) {
	r := New()
	m := provide(r, "a", nil, func(m *fakeModule) {
		m.failWith = fmt.Errorf("transient")
	})

	var importErr *ImportError
	if err := r.Load("a"); !errors.As(err, &importErr) {
		t.Fatalf("error = %v, want ImportError", err)
	}
	if r.GetModule("a").State != StateLoadFailed {
		t.Fatalf("state = %q, want load_failed", r.GetModule("a").State)
	}

	// Clearing the failure lets a later Load retry from scratch.
	m.failWith = nil
	m.exports = map[string]any{"servico": "pronto"}
	if err := r.Load("a"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if got := r.GetComponent("a", "servico"); got != "pronto" {
		t.Errorf("component after retry = %v", got)
	}
}

func TestGetComponentEncapsulation(t *testing.T) {
	r := New()
	greet := func() string { return "olá" }
	provide(r, "saudacao", nil, func(m *fakeModule) {
		m.exports = map[string]any{"Greet": greet}
	})

	// Before load, nothing is visible.
	if got := r.GetComponent("saudacao", "Greet"); got != nil {
		t.Error("component visible before load")
	}

	if err := r.Load("saudacao"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	component := r.GetComponent("saudacao", "Greet")
	fn, ok := component.(func() string)
	if !ok {
		t.Fatalf("component type = %T", component)
	}
	if fn() != "olá" {
		t.Errorf("component call = %q", fn())
	}

	// A name the module never exported must not leak, regardless of
	// what else lives in its namespace.
	if got := r.GetComponent("saudacao", "_internal"); got != nil {
		t.Errorf("unexported component leaked: %v", got)
	}
	if got := r.GetComponent("inexistente", "Greet"); got != nil {
		t.Errorf("unknown module returned component: %v", got)
	}
}

func TestRegisterLastWins(t *testing.T) {
	r := New()

	r.Register(&ModuleInfo{Name: "dup", Version: "1.0.0"})
	r.Register(&ModuleInfo{Name: "dup", Version: "2.0.0"})

	if got := r.GetModule("dup").Version; got != "2.0.0" {
		t.Errorf("version = %q, want last registration to win", got)
	}
	if len(r.ListAvailableModules()) != 1 {
		t.Errorf("available = %v, want a single entry", r.ListAvailableModules())
	}
}

func TestBinderRejectsDuplicateExport(t *testing.T) {
	b := newBinder("m")
	if err := b.Export("x", 1); err != nil {
		t.Fatalf("first export failed: %v", err)
	}
	if err := b.Export("x", 2); err == nil {
		t.Error("duplicate export accepted")
	}
	if err := b.Export("", 1); err == nil {
		t.Error("empty export name accepted")
	}
}
