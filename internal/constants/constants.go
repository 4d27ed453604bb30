package constants

// Commit and Date are set at build time with -ldflags.
var (
	Commit = "none"
	Date   = "unknown"
)

const (
	Version        = `0.1.0`
	AppName        = `an-presets`
	ConfigFile     = `cfg`
	ConfigFileType = `yaml`
	ConfigDir      = `/.an-presets/`
	StoreFile      = `presets`
	StoreFileType  = `json`
	DiskvDir       = `store`
	PGTable        = `preset_documents`
)
