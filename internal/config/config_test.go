package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/an-presets/internal/config"
)

func writeConfig(t *testing.T, home string, data map[string]any) {
	t.Helper()

	configPath := config.GetConfigPath(home)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("failed to create config directory: %v", err)
	}

	raw, err := yaml.Marshal(data)
	if err != nil {
		t.Fatalf("failed to marshal config data: %v", err)
	}

	if err := os.WriteFile(configPath, raw, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, map[string]any{})

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("expected load to succeed: %v", err)
	}

	ws := cfg.MustWorkspace()
	if ws.Storage.Backend != config.BackendFile {
		t.Fatalf("expected file backend, got %q", ws.Storage.Backend)
	}
	if want := config.GetStorePath(home, "default"); ws.Storage.Path != want {
		t.Fatalf("expected store path %q, got %q", want, ws.Storage.Path)
	}
	if ws.Storage.RetryCount() != 2 {
		t.Fatalf("expected two retries, got %d", ws.Storage.RetryCount())
	}
	if ws.Cache.Size != 256 {
		t.Fatalf("expected default cache size, got %d", ws.Cache.Size)
	}
	if viper.GetString("storage.backend") != config.BackendFile {
		t.Fatalf("expected viper to mirror the backend, got %q", viper.GetString("storage.backend"))
	}
}

func TestLoadMigratesLegacyLayout(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, map[string]any{
		"vaultdir": filepath.Join(home, "vault"),
		"tags":     map[string]any{"case_sensitive": true},
		"watch":    true,
	})

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("expected load to succeed: %v", err)
	}

	if cfg.CurrentWorkspace != "default" {
		t.Fatalf("expected default workspace, got %q", cfg.CurrentWorkspace)
	}
	ws := cfg.MustWorkspace()
	if !ws.Tags.CaseSensitive || !ws.Watch {
		t.Fatalf("expected legacy flags to carry over, got %+v", ws)
	}
	if ws.VaultDir != filepath.Join(home, "vault") {
		t.Fatalf("unexpected vault dir %q", ws.VaultDir)
	}
}

func TestLoadRejectsUnsupportedBackend(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, map[string]any{
		"storage": map[string]any{"backend": "floppy"},
	})

	if _, err := config.Load(home); err == nil {
		t.Fatal("expected load to fail for an unknown backend")
	}
}

func TestLoadRequiresBackendSettings(t *testing.T) {
	tests := []struct {
		name    string
		storage map[string]any
	}{
		{name: "s3 without bucket", storage: map[string]any{"backend": "s3"}},
		{name: "postgres without dsn", storage: map[string]any{"backend": "postgres"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			writeConfig(t, home, map[string]any{"storage": tt.storage})

			_, err := config.Load(home)
			var initErr *config.ConfigInitError
			if !errors.As(err, &initErr) {
				t.Fatalf("expected ConfigInitError, got %v", err)
			}
		})
	}
}

func TestWorkspacesKeepSeparateStores(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, map[string]any{})

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("expected load to succeed: %v", err)
	}

	if err := cfg.AddWorkspace("work", nil, true); err != nil {
		t.Fatalf("add workspace: %v", err)
	}

	reloaded, err := config.Load(home)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.CurrentWorkspace != "work" {
		t.Fatalf("expected work to be current, got %q", reloaded.CurrentWorkspace)
	}
	ws := reloaded.MustWorkspace()
	if ws.Storage.Path != config.GetStorePath(home, "work") {
		t.Fatalf("unexpected store path %q", ws.Storage.Path)
	}
	if ws.Storage.Workspace != "work" {
		t.Fatalf("expected postgres workspace key to follow the workspace, got %q", ws.Storage.Workspace)
	}
}

func TestSetBackendPersists(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, map[string]any{})

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("expected load to succeed: %v", err)
	}

	if err := cfg.SetBackend("DISKV"); err != nil {
		t.Fatalf("set backend: %v", err)
	}

	reloaded, err := config.Load(home)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	ws := reloaded.MustWorkspace()
	if ws.Storage.Backend != config.BackendDiskv {
		t.Fatalf("expected diskv backend, got %q", ws.Storage.Backend)
	}
	if ws.Storage.Path != config.GetDiskvPath(home) {
		t.Fatalf("expected diskv path, got %q", ws.Storage.Path)
	}

	if err := cfg.SetBackend("tape"); err == nil {
		t.Fatal("expected invalid backend to be rejected")
	}
}

func TestEnsureConfigExistsRequiresVault(t *testing.T) {
	home := t.TempDir()

	err := config.EnsureConfigExists(home)
	var initErr *config.ConfigInitError
	if !errors.As(err, &initErr) {
		t.Fatalf("expected ConfigInitError for a missing vault, got %v", err)
	}

	if _, statErr := os.Stat(config.GetConfigPath(home)); statErr != nil {
		t.Fatalf("expected config file to be created: %v", statErr)
	}
}

func TestRemoveWorkspace(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, map[string]any{})

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("expected load to succeed: %v", err)
	}

	if err := cfg.RemoveWorkspace("default"); err == nil {
		t.Fatal("expected the last workspace to be kept")
	}
	if err := cfg.AddWorkspace("work", nil, true); err != nil {
		t.Fatalf("add workspace: %v", err)
	}
	if err := cfg.RemoveWorkspace("missing"); err == nil {
		t.Fatal("expected unknown workspace to be rejected")
	}
	if err := cfg.RemoveWorkspace("work"); err != nil {
		t.Fatalf("remove workspace: %v", err)
	}

	reloaded, err := config.Load(home)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.CurrentWorkspace != "default" {
		t.Fatalf("expected default to become current, got %q", reloaded.CurrentWorkspace)
	}
	if names := reloaded.WorkspaceNames(); len(names) != 1 || names[0] != "default" {
		t.Fatalf("unexpected workspaces %v", names)
	}
}

func TestApplyOverridesPrefersFlags(t *testing.T) {
	home := t.TempDir()
	writeConfig(t, home, map[string]any{})

	cfg, err := config.Load(home)
	if err != nil {
		t.Fatalf("expected load to succeed: %v", err)
	}

	v := viper.New()
	v.Set("vaultdir", "/tmp/vault")
	v.Set("storage.backend", "diskv")
	cfg.ApplyOverrides(v)

	ws := cfg.MustWorkspace()
	if ws.VaultDir != "/tmp/vault" {
		t.Fatalf("expected vault override, got %q", ws.VaultDir)
	}
	if ws.Storage.Backend != config.BackendDiskv || ws.Storage.Path != config.GetDiskvPath(home) {
		t.Fatalf("expected diskv backend with its default path, got %+v", ws.Storage)
	}
}
