package registry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchPicksUpNewModule(t *testing.T) {
	root := t.TempDir()
	staging := t.TempDir()

	r := New(
		WithRoot(root),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx) }()

	// Give the watcher time to register before producing events.
	time.Sleep(200 * time.Millisecond)

	// Stage the module elsewhere and rename it in, so the marker file
	// already exists when the root-level create event fires.
	dir := filepath.Join(staging, "extras")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	manifest := "name: extras\ndescription: Módulo de extras\nversion: 0.2.0\n"
	if err := os.WriteFile(filepath.Join(dir, MarkerFile), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(dir, filepath.Join(root, "extras")); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if info := r.GetModule("extras"); info != nil {
			if info.Version != "0.2.0" {
				t.Errorf("version = %q, want 0.2.0", info.Version)
			}
			cancel()
			<-done
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("module added after Watch started was never discovered")
}

func TestWatchRequiresRoot(t *testing.T) {
	r := New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err := r.Watch(context.Background()); err == nil {
		t.Fatal("expected an error without a module root")
	}
}
