package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spf13/viper"
)

// Storage selects and configures the persistence backend of a workspace.
type Storage struct {
	Backend   string `yaml:"backend"   json:"backend"`
	Path      string `yaml:"path"      json:"path"`
	Bucket    string `yaml:"bucket"    json:"bucket"`
	Key       string `yaml:"key"       json:"key"`
	Region    string `yaml:"region"    json:"region"`
	DSN       string `yaml:"dsn"       json:"dsn"`
	Workspace string `yaml:"workspace" json:"workspace"`
	Retries   *int   `yaml:"retries"   json:"retries"`
}

type TagConfig struct {
	CaseSensitive bool `yaml:"case_sensitive" json:"case_sensitive"`
}

type CacheConfig struct {
	Size int `yaml:"size" json:"size"`
}

type Workspace struct {
	VaultDir string      `yaml:"vaultdir" json:"vault_dir"`
	Storage  Storage     `yaml:"storage"  json:"storage"`
	Tags     TagConfig   `yaml:"tags"     json:"tags"`
	Cache    CacheConfig `yaml:"cache"    json:"cache"`
	Watch    bool        `yaml:"watch"    json:"watch"`
}

type Config struct {
	Workspaces       map[string]*Workspace `yaml:"workspaces"         json:"workspaces"`
	CurrentWorkspace string                `yaml:"current_workspace" json:"current_workspace"`

	home   string     `yaml:"-"`
	active *Workspace `yaml:"-"`
}

const (
	defaultWorkspaceName = "default"
	defaultCacheSize     = 256
	defaultRetries       = 2
)

const (
	BackendFile     = "file"
	BackendDiskv    = "diskv"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
)

var ValidBackends = map[string]bool{
	BackendFile:     true,
	BackendDiskv:    true,
	BackendS3:       true,
	BackendPostgres: true,
}

var validBackendNames = []string{BackendFile, BackendDiskv, BackendS3, BackendPostgres}

func ValidateBackend(backend string) error {
	if _, valid := ValidBackends[backend]; valid {
		return nil
	}

	return fmt.Errorf(
		"invalid storage backend: %q. Please choose from %s.",
		backend,
		validBackendList(),
	)
}

func validBackendList() string {
	quoted := make([]string, len(validBackendNames))
	for i, name := range validBackendNames {
		quoted[i] = fmt.Sprintf("'%s'", name)
	}

	if len(quoted) == 1 {
		return quoted[0]
	}

	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}

// legacyConfig is the single workspace layout written before workspaces existed.
type legacyConfig struct {
	VaultDir string      `yaml:"vaultdir"`
	Storage  Storage     `yaml:"storage"`
	Tags     TagConfig   `yaml:"tags"`
	Cache    CacheConfig `yaml:"cache"`
	Watch    bool        `yaml:"watch"`
}

func newWorkspace() *Workspace {
	return &Workspace{
		Storage: Storage{Backend: BackendFile},
		Cache:   CacheConfig{Size: defaultCacheSize},
	}
}

func (ws *Workspace) ensureDefaults(home, name string) {
	ws.VaultDir = strings.TrimSpace(ws.VaultDir)
	ws.Storage.Backend = strings.ToLower(strings.TrimSpace(ws.Storage.Backend))
	if ws.Storage.Backend == "" {
		ws.Storage.Backend = BackendFile
	}
	if ws.Storage.Workspace == "" {
		ws.Storage.Workspace = name
	}
	if ws.Storage.Retries == nil {
		retries := defaultRetries
		ws.Storage.Retries = &retries
	}
	if ws.Storage.Path == "" && home != "" {
		switch ws.Storage.Backend {
		case BackendFile:
			ws.Storage.Path = GetStorePath(home, name)
		case BackendDiskv:
			ws.Storage.Path = GetDiskvPath(home)
		}
	}
	if ws.Storage.Key == "" {
		ws.Storage.Key = name + ".json"
	}
	if ws.Cache.Size == 0 {
		ws.Cache.Size = defaultCacheSize
	}
}

// RetryCount returns the configured number of save retries.
func (s Storage) RetryCount() int {
	if s.Retries == nil {
		return defaultRetries
	}
	return *s.Retries
}

// Validate reports the first backend setting that is missing or invalid.
func (ws *Workspace) Validate() error {
	if err := ValidateBackend(ws.Storage.Backend); err != nil {
		return err
	}

	required := map[string]string{}
	switch ws.Storage.Backend {
	case BackendFile, BackendDiskv:
		required["storage.path"] = ws.Storage.Path
	case BackendS3:
		required["storage.bucket"] = ws.Storage.Bucket
		required["storage.key"] = ws.Storage.Key
	case BackendPostgres:
		required["storage.dsn"] = ws.Storage.DSN
		required["storage.workspace"] = ws.Storage.Workspace
	}

	names := make([]string, 0, len(required))
	for name := range required {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.TrimSpace(required[name]) == "" {
			return &ConfigInitError{
				msg: fmt.Sprintf("required config variable %q is not set for the %s backend", name, ws.Storage.Backend),
			}
		}
	}

	if ws.Storage.RetryCount() < 0 {
		return fmt.Errorf("storage.retries cannot be negative")
	}
	if ws.Cache.Size < 0 {
		return fmt.Errorf("cache.size cannot be negative")
	}
	return nil
}

func Load(home string) (*Config, error) {
	path := GetConfigPath(home)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{home: home}
	if len(strings.TrimSpace(string(data))) > 0 {
		raw := make(map[string]interface{})
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}

		if _, ok := raw["workspaces"]; ok {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else {
			var legacy legacyConfig
			if err := yaml.Unmarshal(data, &legacy); err != nil {
				return nil, err
			}
			cfg = migrateLegacyConfig(&legacy)
			cfg.home = home
		}
	}

	if err := cfg.ensureInitialized(); err != nil {
		return nil, err
	}

	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		return nil, err
	}

	if err := ws.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func migrateLegacyConfig(legacy *legacyConfig) *Config {
	ws := newWorkspace()
	ws.VaultDir = legacy.VaultDir
	ws.Storage = legacy.Storage
	ws.Tags = legacy.Tags
	if legacy.Cache.Size != 0 {
		ws.Cache = legacy.Cache
	}
	ws.Watch = legacy.Watch

	return &Config{
		Workspaces:       map[string]*Workspace{defaultWorkspaceName: ws},
		CurrentWorkspace: defaultWorkspaceName,
	}
}

func (cfg *Config) ensureInitialized() error {
	if cfg.Workspaces == nil {
		cfg.Workspaces = make(map[string]*Workspace)
	}

	if cfg.CurrentWorkspace == "" {
		if len(cfg.Workspaces) == 0 {
			cfg.Workspaces[defaultWorkspaceName] = newWorkspace()
			cfg.CurrentWorkspace = defaultWorkspaceName
		} else {
			cfg.CurrentWorkspace = cfg.WorkspaceNames()[0]
		}
	}

	return cfg.setActiveWorkspace(cfg.CurrentWorkspace)
}

func (cfg *Config) setActiveWorkspace(name string) error {
	if name == "" {
		return fmt.Errorf("workspace name cannot be empty")
	}
	ws, ok := cfg.Workspaces[name]
	if !ok {
		return fmt.Errorf("workspace %q does not exist", name)
	}
	if ws == nil {
		ws = newWorkspace()
		cfg.Workspaces[name] = ws
	}

	ws.ensureDefaults(cfg.home, name)
	cfg.CurrentWorkspace = name
	cfg.active = ws

	cfg.syncViperWithActiveWorkspace()

	return nil
}

func (cfg *Config) syncViperWithActiveWorkspace() {
	if cfg.active == nil {
		return
	}

	syncWorkspaceWithViper(cfg.active)
}

// syncWorkspaceWithViper publishes the workspace as viper defaults so bound
// flags and the environment still take precedence.
func syncWorkspaceWithViper(ws *Workspace) {
	viper.SetDefault("vaultdir", ws.VaultDir)
	viper.SetDefault("storage.backend", ws.Storage.Backend)
	viper.SetDefault("storage.path", ws.Storage.Path)
	viper.SetDefault("storage.bucket", ws.Storage.Bucket)
	viper.SetDefault("storage.key", ws.Storage.Key)
	viper.SetDefault("storage.region", ws.Storage.Region)
	viper.SetDefault("storage.dsn", ws.Storage.DSN)
	viper.SetDefault("storage.workspace", ws.Storage.Workspace)
	viper.SetDefault("storage.retries", ws.Storage.RetryCount())
	viper.SetDefault("tags.case_sensitive", ws.Tags.CaseSensitive)
	viper.SetDefault("cache.size", ws.Cache.Size)
	viper.SetDefault("watch", ws.Watch)
}

// ApplyOverrides copies values set through bound flags or the environment
// back onto the active workspace.
func (cfg *Config) ApplyOverrides(v *viper.Viper) {
	ws := cfg.MustWorkspace()
	if v.IsSet("vaultdir") {
		ws.VaultDir = v.GetString("vaultdir")
	}
	if v.IsSet("storage.path") {
		ws.Storage.Path = v.GetString("storage.path")
	}
	if v.IsSet("storage.backend") {
		backend := strings.ToLower(v.GetString("storage.backend"))
		if backend != ws.Storage.Backend {
			ws.Storage.Backend = backend
			ws.Storage.Path = ""
		}
	}
	if v.IsSet("tags.case_sensitive") {
		ws.Tags.CaseSensitive = v.GetBool("tags.case_sensitive")
	}
	if v.IsSet("watch") {
		ws.Watch = v.GetBool("watch")
	}
	if v.IsSet("cache.size") {
		ws.Cache.Size = v.GetInt("cache.size")
	}
	ws.ensureDefaults(cfg.home, cfg.CurrentWorkspace)
}

func (cfg *Config) ActiveWorkspace() (*Workspace, error) {
	if cfg.active != nil {
		return cfg.active, nil
	}

	if cfg.CurrentWorkspace == "" {
		return nil, fmt.Errorf("no workspace is currently selected")
	}

	if err := cfg.setActiveWorkspace(cfg.CurrentWorkspace); err != nil {
		return nil, err
	}

	return cfg.active, nil
}

func (cfg *Config) MustWorkspace() *Workspace {
	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		panic(err)
	}
	return ws
}

func (cfg *Config) WorkspaceNames() []string {
	names := make([]string, 0, len(cfg.Workspaces))
	for name := range cfg.Workspaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (cfg *Config) SwitchWorkspace(name string) error {
	if err := cfg.setActiveWorkspace(name); err != nil {
		return err
	}
	return cfg.Save()
}

func (cfg *Config) ActivateWorkspace(name string) error {
	return cfg.setActiveWorkspace(name)
}

func (cfg *Config) AddWorkspace(name string, ws *Workspace, makeCurrent bool) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("workspace name cannot be empty")
	}

	if cfg.Workspaces == nil {
		cfg.Workspaces = make(map[string]*Workspace)
	}

	if _, exists := cfg.Workspaces[trimmed]; exists {
		return fmt.Errorf("workspace %q already exists", trimmed)
	}

	if ws == nil {
		ws = newWorkspace()
	}
	ws.ensureDefaults(cfg.home, trimmed)
	cfg.Workspaces[trimmed] = ws

	if cfg.CurrentWorkspace == "" || makeCurrent {
		if err := cfg.setActiveWorkspace(trimmed); err != nil {
			return err
		}
	}

	return cfg.Save()
}

// RemoveWorkspace drops a workspace from the configuration. Its preset store
// is left in place.
func (cfg *Config) RemoveWorkspace(name string) error {
	if len(cfg.Workspaces) <= 1 {
		return fmt.Errorf("cannot remove the last workspace")
	}
	if _, exists := cfg.Workspaces[name]; !exists {
		return fmt.Errorf("workspace %q does not exist", name)
	}

	delete(cfg.Workspaces, name)

	if cfg.CurrentWorkspace == name {
		cfg.active = nil
		cfg.CurrentWorkspace = ""
		if err := cfg.ensureInitialized(); err != nil {
			return err
		}
	}

	return cfg.Save()
}

func (cfg *Config) GetConfigPath() string {
	home := cfg.home
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return ""
		}
	}
	return GetConfigPath(home)
}

func (cfg *Config) SetBackend(backend string) error {
	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		return err
	}

	backend = strings.ToLower(strings.TrimSpace(backend))
	if err := ValidateBackend(backend); err != nil {
		return err
	}

	if ws.Storage.Backend != backend {
		ws.Storage.Backend = backend
		ws.Storage.Path = ""
		ws.ensureDefaults(cfg.home, cfg.CurrentWorkspace)
	}
	return cfg.Save()
}

func (cfg *Config) Save() error {
	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		return err
	}

	if err := ws.Validate(); err != nil {
		return err
	}

	cfg.syncViperWithActiveWorkspace()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	configPath := cfg.GetConfigPath()
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}
