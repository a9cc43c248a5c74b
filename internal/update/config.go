package update

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/tailscale/hujson"

	"github.com/sandeepkv93/timerd/internal/storage"
	"github.com/sandeepkv93/timerd/internal/timers"
)

// ConfigFileName is the optional project config, JSON with comments allowed.
const ConfigFileName = ".timerd.json"

var (
	ErrConfigInvalid      = errors.New("config: invalid")
	ErrConfigFileNotFound = errors.New("config: file not found")
)

type RuntimeConfig struct {
	StorageBackend       string
	StoragePath          string
	TickInterval         time.Duration
	CompletionPolicy     string
	DesktopNotifications bool
	LogPath              string
	EventBuffer          int
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		StorageBackend:       string(storage.BackendSQLite),
		TickInterval:         time.Second,
		CompletionPolicy:     string(timers.CompletionOncePerID),
		DesktopNotifications: false,
		LogPath:              filepath.Join(".timerd", "timerd.log"),
		EventBuffer:          64,
	}
}

// ResolvedStoragePath returns StoragePath, or the backend's default location
// when it is unset.
func (c RuntimeConfig) ResolvedStoragePath() string {
	if p := strings.TrimSpace(c.StoragePath); p != "" {
		return p
	}
	switch storage.Backend(c.StorageBackend) {
	case storage.BackendJSON:
		return filepath.Join(".timerd", "state")
	case storage.BackendMemory:
		return ""
	default:
		return filepath.Join(".timerd", "timerd.db")
	}
}

func (c RuntimeConfig) Validate() error {
	if !storage.Backend(c.StorageBackend).IsValid() {
		return fmt.Errorf("%w: storage backend %q", ErrConfigInvalid, c.StorageBackend)
	}
	if _, err := timers.ParseCompletionPolicy(c.CompletionPolicy); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive", ErrConfigInvalid)
	}
	if c.EventBuffer <= 0 {
		return fmt.Errorf("%w: event buffer must be positive", ErrConfigInvalid)
	}
	return nil
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvString("TIMERD_STORAGE"); ok {
		cfg.StorageBackend = strings.ToLower(v)
	}
	if v, ok := getEnvString("TIMERD_STORAGE_PATH"); ok {
		cfg.StoragePath = v
	}
	if v, ok := getEnvDuration("TIMERD_TICK_INTERVAL"); ok && v > 0 {
		cfg.TickInterval = v
	}
	if v, ok := getEnvString("TIMERD_COMPLETION_POLICY"); ok {
		cfg.CompletionPolicy = strings.ToLower(v)
	}
	if v, ok := getEnvBool("TIMERD_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvString("TIMERD_LOG_FILE"); ok {
		cfg.LogPath = v
	}
	if v, ok := getEnvInt("TIMERD_EVENT_BUFFER"); ok && v > 0 {
		cfg.EventBuffer = v
	}
	return cfg
}

type fileConfig struct {
	StorageBackend       *string `json:"storage_backend"`
	StoragePath          *string `json:"storage_path"`
	TickInterval         *string `json:"tick_interval"`
	CompletionPolicy     *string `json:"completion_policy"`
	DesktopNotifications *bool   `json:"desktop_notifications"`
	LogPath              *string `json:"log_path"`
	EventBuffer          *int    `json:"event_buffer"`
}

// ApplyConfigFile overlays the settings present in path onto base. A missing
// file is only an error when mustExist is set. loaded reports whether the
// file was read.
func ApplyConfigFile(base RuntimeConfig, path string, mustExist bool) (cfg RuntimeConfig, loaded bool, err error) {
	cfg = base
	data, err := os.ReadFile(path) //nolint:gosec // user-selected config path
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return cfg, false, nil
		}
		if os.IsNotExist(err) {
			return cfg, false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}
		return cfg, false, fmt.Errorf("read config %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return cfg, false, fmt.Errorf("%w %s: invalid JSONC: %w", ErrConfigInvalid, path, err)
	}
	var fc fileConfig
	if err := json.Unmarshal(standardized, &fc); err != nil {
		return cfg, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	if fc.StorageBackend != nil {
		cfg.StorageBackend = strings.ToLower(strings.TrimSpace(*fc.StorageBackend))
	}
	if fc.StoragePath != nil {
		cfg.StoragePath = strings.TrimSpace(*fc.StoragePath)
	}
	if fc.TickInterval != nil {
		d, err := time.ParseDuration(strings.TrimSpace(*fc.TickInterval))
		if err != nil {
			return base, false, fmt.Errorf("%w %s: tick_interval: %w", ErrConfigInvalid, path, err)
		}
		cfg.TickInterval = d
	}
	if fc.CompletionPolicy != nil {
		cfg.CompletionPolicy = strings.ToLower(strings.TrimSpace(*fc.CompletionPolicy))
	}
	if fc.DesktopNotifications != nil {
		cfg.DesktopNotifications = *fc.DesktopNotifications
	}
	if fc.LogPath != nil {
		cfg.LogPath = strings.TrimSpace(*fc.LogPath)
	}
	if fc.EventBuffer != nil {
		cfg.EventBuffer = *fc.EventBuffer
	}
	return cfg, true, nil
}

// Flags holds the command-line overrides. Only flags the user actually set
// take effect.
type Flags struct {
	fs         *flag.FlagSet
	values     RuntimeConfig
	configPath string
	ephemeral  bool
}

func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	d := DefaultRuntimeConfig()
	fs.StringVarP(&f.configPath, "config", "c", "", "config file (default "+ConfigFileName+" if present)")
	fs.StringVar(&f.values.StorageBackend, "storage", d.StorageBackend, "storage backend: sqlite, json or memory")
	fs.StringVar(&f.values.StoragePath, "storage-path", "", "database file (sqlite) or directory (json)")
	fs.DurationVar(&f.values.TickInterval, "tick", d.TickInterval, "tick interval")
	fs.StringVar(&f.values.CompletionPolicy, "completion-policy", d.CompletionPolicy, "history recording: once_per_id or every_run")
	fs.BoolVar(&f.values.DesktopNotifications, "desktop-notifications", d.DesktopNotifications, "send desktop notifications")
	fs.StringVar(&f.values.LogPath, "log-file", d.LogPath, "log file path")
	fs.IntVar(&f.values.EventBuffer, "event-buffer", d.EventBuffer, "headless event buffer size")
	fs.BoolVar(&f.ephemeral, "ephemeral", false, "keep state in memory only")
	return f
}

func (f *Flags) ConfigPath() string {
	return f.configPath
}

func (f *Flags) Apply(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if f.fs.Changed("storage") {
		cfg.StorageBackend = strings.ToLower(f.values.StorageBackend)
	}
	if f.fs.Changed("storage-path") {
		cfg.StoragePath = f.values.StoragePath
	}
	if f.fs.Changed("tick") {
		cfg.TickInterval = f.values.TickInterval
	}
	if f.fs.Changed("completion-policy") {
		cfg.CompletionPolicy = strings.ToLower(f.values.CompletionPolicy)
	}
	if f.fs.Changed("desktop-notifications") {
		cfg.DesktopNotifications = f.values.DesktopNotifications
	}
	if f.fs.Changed("log-file") {
		cfg.LogPath = f.values.LogPath
	}
	if f.fs.Changed("event-buffer") {
		cfg.EventBuffer = f.values.EventBuffer
	}
	if f.ephemeral {
		cfg.StorageBackend = string(storage.BackendMemory)
	}
	return cfg
}

// LoadRuntimeConfig resolves the configuration with the following precedence
// (highest wins): defaults, config file, TIMERD_* environment, flags.
// The config file is --config, else $TIMERD_CONFIG, else ConfigFileName in
// workDir when it exists.
func LoadRuntimeConfig(workDir string, flags *Flags) (RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()

	path, mustExist := "", false
	if flags != nil && strings.TrimSpace(flags.ConfigPath()) != "" {
		path, mustExist = flags.ConfigPath(), true
	} else if v, ok := getEnvString("TIMERD_CONFIG"); ok {
		path, mustExist = v, true
	} else {
		path = ConfigFileName
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	cfg, _, err := ApplyConfigFile(cfg, path, mustExist)
	if err != nil {
		return RuntimeConfig{}, err
	}
	cfg = RuntimeConfigFromEnv(cfg)
	if flags != nil {
		cfg = flags.Apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return RuntimeConfig{}, err
	}
	return cfg, nil
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvDuration(name string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
