// Package commands implements the plantask CLI. Every command operates
// on an App whose services are constructed explicitly at startup;
// there are no package-level singletons.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/plantask/config"
	"github.com/c360studio/plantask/history"
	historymod "github.com/c360studio/plantask/modules/history"
	planningmod "github.com/c360studio/plantask/modules/planning"
	tasksmod "github.com/c360studio/plantask/modules/tasks"
	"github.com/c360studio/plantask/registry"
	"github.com/c360studio/plantask/store"
	"github.com/c360studio/plantask/taskgraph"
	"github.com/c360studio/plantask/textgen"
)

// App holds the wired services a command session runs against.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    store.DocumentStore
	Registry *registry.Registry
	Ledger   *history.Ledger
	Tasks    *taskgraph.Service
	Planner  *planningmod.Planner

	natsConn *nats.Conn
}

// NewApp wires the full application from configuration: document store
// (NATS KV when configured, in-memory otherwise), generator (when an
// API key is present), the three core modules, and the registry with
// every autoload module activated.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{Config: cfg, Logger: logger}

	if cfg.Store.NATSURL != "" {
		nc, err := nats.Connect(cfg.Store.NATSURL)
		if err != nil {
			return nil, fmt.Errorf("connect to NATS at %s: %w", cfg.Store.NATSURL, err)
		}
		js, err := jetstream.New(nc)
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("create JetStream context: %w", err)
		}
		app.natsConn = nc
		app.Store = store.NewKVStore(js, logger)
		logger.Info("Using NATS KV document store", "url", cfg.Store.NATSURL)
	} else {
		app.Store = store.NewMemoryStore(logger)
		logger.Info("Using in-memory document store")
	}

	var generator textgen.Generator
	if cfg.Model.APIKey != "" {
		client, err := textgen.NewGeminiClient(ctx, cfg.Model.APIKey, cfg.Model.Name, logger)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("create generator: %w", err)
		}
		generator = client
	} else {
		logger.Warn("No API key configured, plan generation disabled")
	}

	histMod := historymod.New(app.Store, logger)
	taskMod := tasksmod.New(app.Store, histMod.Ledger(), logger)
	planMod := planningmod.New(generator, taskMod.Builder(), histMod.Ledger(), logger)

	app.Ledger = histMod.Ledger()
	app.Tasks = taskMod.Service()
	app.Planner = planMod.Planner()

	app.Registry = registry.New(
		registry.WithRoot(cfg.Modules.Root),
		registry.WithIgnoreGlobs(cfg.Modules.Ignore...),
		registry.WithLogger(logger),
	)
	app.Registry.Provide(histMod)
	app.Registry.Provide(taskMod)
	app.Registry.Provide(planMod)

	if _, err := os.Stat(cfg.Modules.Root); err == nil {
		if _, err := app.Registry.Discover(); err != nil {
			logger.Warn("Module discovery failed", "error", err)
		}
	}

	for _, name := range cfg.Modules.Autoload {
		if err := app.Registry.Load(name); err != nil {
			app.Close()
			return nil, fmt.Errorf("load module %s: %w", name, err)
		}
	}

	return app, nil
}

// Close releases external connections.
func (a *App) Close() {
	if a.natsConn != nil {
		a.natsConn.Close()
		a.natsConn = nil
	}
}
