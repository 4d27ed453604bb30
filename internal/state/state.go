package state

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/Paintersrp/an-presets/internal/config"
	"github.com/Paintersrp/an-presets/internal/constants"
	"github.com/Paintersrp/an-presets/internal/events"
	"github.com/Paintersrp/an-presets/internal/manager"
	"github.com/Paintersrp/an-presets/internal/notectx"
	"github.com/Paintersrp/an-presets/internal/storage"
)

// SkipAnnotation marks commands that run without a loaded workspace.
const SkipAnnotation = "skip-state"

type State struct {
	Config        *config.Config
	Workspace     *config.Workspace
	WorkspaceName string
	Home          string
	Vault         string
	Logger        *slog.Logger
	Gateway       storage.Gateway
	Notifier      *events.Notifier
	Manager       *manager.Manager
	Provider      *notectx.Provider
	Watcher       *StoreWatcher
}

type Options struct {
	Workspace string
	Verbose   bool
	LogOutput io.Writer
}

// NewLogger returns the text logger used for diagnostics. Verbose lowers the
// level to debug.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func NewState(ctx context.Context, opts Options) (*State, error) {
	home, err := GetHomeDir()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(home)
	if err != nil {
		return nil, err
	}

	if opts.Workspace != "" {
		if err := cfg.ActivateWorkspace(opts.Workspace); err != nil {
			return nil, err
		}
	}
	cfg.ApplyOverrides(viper.GetViper())

	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		return nil, err
	}

	return NewStateFromConfig(ctx, home, cfg, ws, NewLogger(opts.LogOutput, opts.Verbose))
}

// NewStateFromConfig builds the storage gateway and manager for an already
// loaded workspace and loads the persisted presets.
func NewStateFromConfig(ctx context.Context, home string, cfg *config.Config, ws *config.Workspace, logger *slog.Logger) (*State, error) {
	if err := ws.Validate(); err != nil {
		return nil, err
	}

	gw, err := storage.Open(ctx, ws.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open preset storage: %w", err)
	}

	notifier := events.New(events.WithFailureHook(func(ev events.Event, err error) {
		logger.Warn("event handler failed", "kind", ev.Kind, "preset", ev.PresetID, "err", err)
	}))

	m := manager.New(gw,
		manager.WithNotifier(notifier),
		manager.WithLogger(logger),
		manager.WithTagCaseSensitive(ws.Tags.CaseSensitive),
		manager.WithCacheSize(ws.Cache.Size),
	)
	if err := m.Load(ctx); err != nil {
		_ = storage.Close(gw)
		return nil, err
	}

	s := &State{
		Config:        cfg,
		Workspace:     ws,
		WorkspaceName: cfg.CurrentWorkspace,
		Home:          home,
		Vault:         ws.VaultDir,
		Logger:        logger,
		Gateway:       gw,
		Notifier:      notifier,
		Manager:       m,
		Provider:      notectx.NewProvider(ws.VaultDir, ws.Tags.CaseSensitive),
	}

	if ws.Watch {
		if err := s.Watch(ctx); err != nil {
			logger.Warn("store watcher disabled", "err", err)
		}
	}
	return s, nil
}

// Watch reloads the manager whenever the file-backed store changes on disk.
// Other backends cannot be watched.
func (s *State) Watch(ctx context.Context) error {
	if s.Watcher != nil {
		return nil
	}

	fg, ok := storage.Unwrap(s.Gateway).(*storage.FileGateway)
	if !ok {
		return fmt.Errorf("%s storage cannot be watched", s.Workspace.Storage.Backend)
	}

	w, err := NewStoreWatcher(fg.Path())
	if err != nil {
		return fmt.Errorf("failed to create store watcher: %w", err)
	}
	w.OnChange(func() {
		s.Logger.Debug("preset store changed on disk, reloading", "path", fg.Path())
		if err := s.Manager.Load(ctx); err != nil {
			s.Logger.Error("failed to reload presets", "err", err)
			s.Notifier.Report(err)
			return
		}
		ids := make([]string, 0)
		for _, p := range s.Manager.List() {
			ids = append(ids, p.ID)
		}
		s.Notifier.Publish(events.Event{Kind: events.Reloaded, IDs: ids})
	})
	w.OnError(func(err error) {
		s.Logger.Warn("store watcher error", "err", err)
	})
	w.Start()

	s.Watcher = w
	return nil
}

func GetHomeDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory. err: %s", err)
	}

	return home, nil
}

func LoadConfig(home string) (*config.Config, error) {
	viper.AddConfigPath(home + constants.ConfigDir)
	viper.SetConfigName(constants.ConfigFile)
	viper.SetConfigType(constants.ConfigFileType)
	viper.ReadInConfig()

	err := config.EnsureConfigExists(home)
	if err != nil {
		return nil, err
	}

	return config.Load(home)
}

// Close releases resources associated with the state, including the store
// watcher and the storage gateway.
func (s *State) Close() error {
	if s == nil {
		return nil
	}

	var errs []error
	if s.Watcher != nil {
		if err := s.Watcher.Close(); err != nil {
			errs = append(errs, err)
		}
		s.Watcher = nil
	}
	if s.Gateway != nil {
		if err := storage.Close(s.Gateway); err != nil {
			errs = append(errs, err)
		}
		s.Gateway = nil
	}

	return errors.Join(errs...)
}
