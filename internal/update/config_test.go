package update

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	flag "github.com/spf13/pflag"
)

func TestRuntimeConfigDefaults(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	if cfg.StorageBackend != "sqlite" || cfg.TickInterval != time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.CompletionPolicy != "once_per_id" || cfg.EventBuffer != 64 {
		t.Fatalf("unexpected runtime defaults: %+v", cfg)
	}
	if got := cfg.ResolvedStoragePath(); got != filepath.Join(".timerd", "timerd.db") {
		t.Fatalf("unexpected sqlite path: %q", got)
	}
	cfg.StorageBackend = "json"
	if got := cfg.ResolvedStoragePath(); got != filepath.Join(".timerd", "state") {
		t.Fatalf("unexpected json path: %q", got)
	}
	if err := DefaultRuntimeConfig().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestRuntimeConfigFromEnv(t *testing.T) {
	t.Setenv("TIMERD_STORAGE", "JSON")
	t.Setenv("TIMERD_STORAGE_PATH", "state/dir")
	t.Setenv("TIMERD_TICK_INTERVAL", "250ms")
	t.Setenv("TIMERD_COMPLETION_POLICY", "every_run")
	t.Setenv("TIMERD_DESKTOP_NOTIFICATIONS", "yes")
	t.Setenv("TIMERD_LOG_FILE", "logs/t.log")
	t.Setenv("TIMERD_EVENT_BUFFER", "128")

	cfg := RuntimeConfigFromEnv(DefaultRuntimeConfig())
	want := RuntimeConfig{
		StorageBackend:       "json",
		StoragePath:          "state/dir",
		TickInterval:         250 * time.Millisecond,
		CompletionPolicy:     "every_run",
		DesktopNotifications: true,
		LogPath:              "logs/t.log",
		EventBuffer:          128,
	}
	if cfg != want {
		t.Fatalf("unexpected config:\n got %+v\nwant %+v", cfg, want)
	}
}

func TestRuntimeConfigFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("TIMERD_TICK_INTERVAL", "soon")
	t.Setenv("TIMERD_EVENT_BUFFER", "-3")
	t.Setenv("TIMERD_DESKTOP_NOTIFICATIONS", "maybe")

	cfg := RuntimeConfigFromEnv(DefaultRuntimeConfig())
	if cfg != DefaultRuntimeConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestApplyConfigFileAcceptsComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	content := `{
  // keep state next to the project
  "storage_backend": "json",
  "storage_path": "var/timers",
  "tick_interval": "2s",
  "event_buffer": 8, // trailing comma below
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, loaded, err := ApplyConfigFile(DefaultRuntimeConfig(), path, true)
	if err != nil || !loaded {
		t.Fatalf("apply config: loaded=%v err=%v", loaded, err)
	}
	if cfg.StorageBackend != "json" || cfg.StoragePath != "var/timers" || cfg.TickInterval != 2*time.Second || cfg.EventBuffer != 8 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.CompletionPolicy != "once_per_id" {
		t.Fatalf("unset keys should keep base values: %+v", cfg)
	}
}

func TestApplyConfigFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")
	cfg, loaded, err := ApplyConfigFile(DefaultRuntimeConfig(), path, false)
	if err != nil || loaded || cfg != DefaultRuntimeConfig() {
		t.Fatalf("optional missing file: cfg=%+v loaded=%v err=%v", cfg, loaded, err)
	}
	if _, _, err := ApplyConfigFile(DefaultRuntimeConfig(), path, true); !errors.Is(err, ErrConfigFileNotFound) {
		t.Fatalf("expected ErrConfigFileNotFound, got %v", err)
	}
}

func TestApplyConfigFileRejectsBadInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(`{"tick_interval": "fast"}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := ApplyConfigFile(DefaultRuntimeConfig(), path, true); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestLoadRuntimeConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(`{"storage_backend": "json", "completion_policy": "every_run", "event_buffer": 4}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TIMERD_EVENT_BUFFER", "16")

	fs := flag.NewFlagSet("timerd", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse([]string{"--storage", "memory"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := LoadRuntimeConfig(dir, flags)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StorageBackend != "memory" {
		t.Fatalf("flag should win over file, got %q", cfg.StorageBackend)
	}
	if cfg.EventBuffer != 16 {
		t.Fatalf("env should win over file, got %d", cfg.EventBuffer)
	}
	if cfg.CompletionPolicy != "every_run" {
		t.Fatalf("file should win over defaults, got %q", cfg.CompletionPolicy)
	}
	if cfg.TickInterval != time.Second {
		t.Fatalf("unset flag must not override, got %s", cfg.TickInterval)
	}
}

func TestLoadRuntimeConfigExplicitFileMustExist(t *testing.T) {
	fs := flag.NewFlagSet("timerd", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse([]string{"--config", "nope.json"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if _, err := LoadRuntimeConfig(t.TempDir(), flags); !errors.Is(err, ErrConfigFileNotFound) {
		t.Fatalf("expected ErrConfigFileNotFound, got %v", err)
	}
}

func TestLoadRuntimeConfigValidates(t *testing.T) {
	fs := flag.NewFlagSet("timerd", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse([]string{"--completion-policy", "sometimes"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if _, err := LoadRuntimeConfig(t.TempDir(), flags); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestEphemeralFlagSelectsMemory(t *testing.T) {
	fs := flag.NewFlagSet("timerd", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse([]string{"--ephemeral"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg := flags.Apply(DefaultRuntimeConfig())
	if cfg.StorageBackend != "memory" {
		t.Fatalf("expected memory backend, got %q", cfg.StorageBackend)
	}
}
