package state

import (
	"io"

	"github.com/Paintersrp/an-presets/internal/config"
	"github.com/Paintersrp/an-presets/internal/events"
	"github.com/Paintersrp/an-presets/internal/manager"
	"github.com/Paintersrp/an-presets/internal/notectx"
	"github.com/Paintersrp/an-presets/internal/storage"
)

// NewInMemory returns a state for the vault whose presets live in a memory
// gateway. Nothing touches the config file or the home directory.
func NewInMemory(vault string, opts ...manager.Option) *State {
	ws := &config.Workspace{
		VaultDir: vault,
		Storage:  config.Storage{Backend: "memory"},
	}
	cfg := &config.Config{
		Workspaces:       map[string]*config.Workspace{"default": ws},
		CurrentWorkspace: "default",
	}
	_ = cfg.ActivateWorkspace("default")

	logger := NewLogger(io.Discard, false)
	notifier := events.New()
	gw := storage.NewMemoryGateway(nil)

	opts = append([]manager.Option{
		manager.WithNotifier(notifier),
		manager.WithLogger(logger),
	}, opts...)

	return &State{
		Config:        cfg,
		Workspace:     ws,
		WorkspaceName: "default",
		Vault:         vault,
		Logger:        logger,
		Gateway:       gw,
		Notifier:      notifier,
		Manager:       manager.New(gw, opts...),
		Provider:      notectx.NewProvider(vault, false),
	}
}
