package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model.Name != "gemini-2.0-flash" {
		t.Errorf("expected default model gemini-2.0-flash, got %s", cfg.Model.Name)
	}
	if cfg.Model.Temperature != 0.7 {
		t.Errorf("expected default temperature 0.7, got %f", cfg.Model.Temperature)
	}
	if cfg.Store.NATSURL != "" {
		t.Errorf("expected in-memory store by default, got %s", cfg.Store.NATSURL)
	}
	if len(cfg.Modules.Autoload) != 3 {
		t.Errorf("expected 3 autoload modules, got %d", len(cfg.Modules.Autoload))
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing model name",
			modify:  func(c *Config) { c.Model.Name = "" },
			wantErr: true,
		},
		{
			name:    "temperature too low",
			modify:  func(c *Config) { c.Model.Temperature = -0.1 },
			wantErr: true,
		},
		{
			name:    "temperature too high",
			modify:  func(c *Config) { c.Model.Temperature = 1.1 },
			wantErr: true,
		},
		{
			name:    "zero output tokens",
			modify:  func(c *Config) { c.Model.MaxOutputTokens = 0 },
			wantErr: true,
		},
		{
			name:    "zero history limit",
			modify:  func(c *Config) { c.History.QueryLimit = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temp file with config
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
model:
  name: "test-model"
  temperature: 0.5
store:
  nats_url: "nats://test:4222"
modules:
  root: "/test/modules"
  autoload:
    - history
    - tasks
history:
  query_limit: 50
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Model.Name != "test-model" {
		t.Errorf("expected model test-model, got %s", cfg.Model.Name)
	}
	if cfg.Model.Temperature != 0.5 {
		t.Errorf("expected temperature 0.5, got %f", cfg.Model.Temperature)
	}
	// MaxOutputTokens not set in file, keeps the default
	if cfg.Model.MaxOutputTokens != 1024 {
		t.Errorf("expected default max_output_tokens 1024, got %d", cfg.Model.MaxOutputTokens)
	}
	if cfg.Store.NATSURL != "nats://test:4222" {
		t.Errorf("expected NATS URL nats://test:4222, got %s", cfg.Store.NATSURL)
	}
	if cfg.Modules.Root != "/test/modules" {
		t.Errorf("expected modules root /test/modules, got %s", cfg.Modules.Root)
	}
	if len(cfg.Modules.Autoload) != 2 {
		t.Errorf("expected 2 autoload modules, got %d", len(cfg.Modules.Autoload))
	}
	if cfg.History.QueryLimit != 50 {
		t.Errorf("expected query limit 50, got %d", cfg.History.QueryLimit)
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		Model: ModelConfig{
			Name: "override-model",
		},
		Store: StoreConfig{
			NATSURL: "nats://override:4222",
		},
	}

	base.Merge(override)

	if base.Model.Name != "override-model" {
		t.Errorf("expected model override-model, got %s", base.Model.Name)
	}
	// Temperature should remain from base since override didn't set it
	if base.Model.Temperature != 0.7 {
		t.Errorf("expected temperature to remain default, got %f", base.Model.Temperature)
	}
	if base.Store.NATSURL != "nats://override:4222" {
		t.Errorf("expected NATS URL nats://override:4222, got %s", base.Store.NATSURL)
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Model.Name = "saved-model"

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	// Verify file was created
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	// Load and verify
	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Model.Name != "saved-model" {
		t.Errorf("expected model saved-model, got %s", loaded.Model.Name)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("PLANTASK_MODEL", "env-model")
	t.Setenv("PLANTASK_NATS_URL", "nats://env:4222")

	cfg := DefaultConfig()
	NewLoader(nil).applyEnv(cfg)

	if cfg.Model.APIKey != "env-key" {
		t.Errorf("expected api key from env, got %s", cfg.Model.APIKey)
	}
	if cfg.Model.Name != "env-model" {
		t.Errorf("expected model from env, got %s", cfg.Model.Name)
	}
	if cfg.Store.NATSURL != "nats://env:4222" {
		t.Errorf("expected NATS URL from env, got %s", cfg.Store.NATSURL)
	}
}
