package commands

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/plantask/config"
)

// session carries CLI-level flags and lazily constructs the App the
// first time a command needs it.
type session struct {
	configPath string
	logLevel   string

	app *App
}

// App returns the wired application, building it on first use.
func (s *session) App(ctx context.Context) (*App, error) {
	if s.app != nil {
		return s.app, nil
	}

	logger := s.logger()
	slog.SetDefault(logger)

	cfg, err := s.loadConfig(logger)
	if err != nil {
		return nil, err
	}

	app, err := NewApp(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	s.app = app
	return app, nil
}

// Close releases the app if one was built.
func (s *session) Close() {
	if s.app != nil {
		s.app.Close()
		s.app = nil
	}
}

func (s *session) logger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(s.logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (s *session) loadConfig(logger *slog.Logger) (*config.Config, error) {
	if s.configPath != "" {
		cfg, err := config.LoadFromFile(s.configPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.NewLoader(logger).Load()
}

// NewRootCmd builds the plantask command tree.
func NewRootCmd(version, buildTime string) *cobra.Command {
	s := &session{}

	cmd := &cobra.Command{
		Use:   "plantask",
		Short: "Organizador de tarefas com planos gerados por IA",
		Long: `Plantask turns free-form requests into structured task plans.

A plan is generated by a model (or extracted from pasted text), parsed
into tasks and subtasks, persisted, and tracked alongside an event
history. Feature modules are activated through a registry with
dependency resolution.`,
		SilenceUsage: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			s.Close()
		},
	}

	cmd.PersistentFlags().StringVarP(&s.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&s.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newPlanCmd(s),
		newTasksCmd(s),
		newHistoryCmd(s),
		newModulesCmd(s),
		newVersionCmd(version, buildTime),
	)

	return cmd
}

func newVersionCmd(version, buildTime string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("plantask version %s (build: %s)\n", version, buildTime)
		},
	}
}
