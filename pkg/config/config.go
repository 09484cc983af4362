// Package config handles loading wb configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/wb/config.yaml
//   - State:  ~/.local/state/wb/ (persisted role, debug log)
//
// Environment variables override the file (see EnvOverrides).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/workbench/pkg/wizard"
)

const appName = "wb"

// Link is one destination shown on the actions screen.
type Link struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

// RoleConfig holds the option label and ordered links for one role.
type RoleConfig struct {
	Label string `yaml:"label"`
	Links []Link `yaml:"links"`
}

// WizardConfig selects the screen variant and reveal timing.
type WizardConfig struct {
	PersistRole   bool          `yaml:"persist_role"`
	TimedReveal   bool          `yaml:"timed_reveal"`
	GreetingDelay time.Duration `yaml:"greeting_delay,omitempty"`
	IdentityDelay time.Duration `yaml:"identity_delay,omitempty"`
}

// StoreConfig selects the persisted-selection backend.
type StoreConfig struct {
	Backend string `yaml:"backend,omitempty"` // file, sqlite, memory
	Path    string `yaml:"path,omitempty"`    // defaults under StateDir
}

// ViewportConfig maps terminal cells to logical pixels.
type ViewportConfig struct {
	CellWidthPx  int `yaml:"cell_width_px,omitempty"`
	CellHeightPx int `yaml:"cell_height_px,omitempty"`
}

// ReloadConfig tunes the config file watcher.
type ReloadConfig struct {
	Debounce     time.Duration `yaml:"debounce,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
	ForcePoll    bool          `yaml:"force_poll,omitempty"`
}

// Config is the top-level configuration for wb.
type Config struct {
	Greeting  string                `yaml:"greeting"`
	Prompt    string                `yaml:"prompt"`
	BackLabel string                `yaml:"back_label"`
	Roles     map[string]RoleConfig `yaml:"roles"`
	Wizard    WizardConfig          `yaml:"wizard"`
	Store     StoreConfig           `yaml:"store,omitempty"`
	Viewport  ViewportConfig        `yaml:"viewport,omitempty"`
	Reload    ReloadConfig          `yaml:"reload,omitempty"`
}

// EnvOverrides are the environment variables that take precedence over the
// config file. Unset variables leave the file value alone.
type EnvOverrides struct {
	StoreBackend string `env:"WB_STORE"`
	StorePath    string `env:"WB_STORE_PATH"`
	PersistRole  *bool  `env:"WB_PERSIST_ROLE"`
	TimedReveal  *bool  `env:"WB_TIMED_REVEAL"`
	CellWidthPx  int    `env:"WB_CELL_WIDTH"`
	ForcePoll    *bool  `env:"WB_FORCE_POLL"`
}

// DefaultConfig returns the stock two-role workbench screen.
func DefaultConfig() Config {
	return Config{
		Greeting:  "欢迎使用\n中视前卫员工工作台",
		Prompt:    "我是...",
		BackLabel: "重新选择身份",
		Roles: map[string]RoleConfig{
			wizard.RoleNormal.String(): {
				Label: "职员老师",
				Links: []Link{{Label: "职员工作台", URL: "https://cpec.cc"}},
			},
			wizard.RoleAdmin.String(): {
				Label: "管理老师",
				Links: []Link{{Label: "管理工作台", URL: "https://cpec2.cc"}},
			},
		},
		Wizard: WizardConfig{
			PersistRole:   true,
			TimedReveal:   true,
			GreetingDelay: wizard.DefaultGreetingDelay,
			IdentityDelay: wizard.DefaultIdentityDelay,
		},
		Store: StoreConfig{
			Backend: "file",
		},
		Viewport: ViewportConfig{
			CellWidthPx:  8,
			CellHeightPx: 16,
		},
		Reload: ReloadConfig{
			Debounce:     200 * time.Millisecond,
			PollInterval: 2 * time.Second,
		},
	}
}

// ConfigDir returns the XDG config directory for wb.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// StateDir returns the XDG state directory for wb.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory and applies
// environment overrides. Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		cfg := DefaultConfig()
		return cfg, ApplyEnv(&cfg)
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path and applies environment
// overrides. Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ReadFile parses path over DefaultConfig without consulting the environment.
func ReadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}
	cfg.Store.Path = expandHome(cfg.Store.Path)

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// ApplyEnv overlays EnvOverrides onto cfg.
func ApplyEnv(cfg *Config) error {
	var o EnvOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.StoreBackend != "" {
		cfg.Store.Backend = o.StoreBackend
	}
	if o.StorePath != "" {
		cfg.Store.Path = expandHome(o.StorePath)
	}
	if o.PersistRole != nil {
		cfg.Wizard.PersistRole = *o.PersistRole
	}
	if o.TimedReveal != nil {
		cfg.Wizard.TimedReveal = *o.TimedReveal
	}
	if o.CellWidthPx > 0 {
		cfg.Viewport.CellWidthPx = o.CellWidthPx
	}
	if o.ForcePoll != nil {
		cfg.Reload.ForcePoll = *o.ForcePoll
	}
	return nil
}

// Validate checks the fields the screen cannot render without.
func (c Config) Validate() error {
	for name := range c.Roles {
		if _, ok := wizard.ParseRole(name); !ok {
			return fmt.Errorf("invalid config: unknown role %q (want normal or admin)", name)
		}
	}
	for _, r := range wizard.Roles {
		rc, ok := c.Roles[r.String()]
		if !ok {
			return fmt.Errorf("invalid config: role %q missing", r)
		}
		if strings.TrimSpace(rc.Label) == "" {
			return fmt.Errorf("invalid config: role %q has no label", r)
		}
		for i, l := range rc.Links {
			if strings.TrimSpace(l.Label) == "" || strings.TrimSpace(l.URL) == "" {
				return fmt.Errorf("invalid config: role %q link %d needs label and url", r, i)
			}
		}
	}
	if c.Wizard.GreetingDelay < 0 || c.Wizard.IdentityDelay < 0 {
		return fmt.Errorf("invalid config: negative reveal delay")
	}
	if c.Reload.Debounce < 0 || c.Reload.PollInterval < 0 {
		return fmt.Errorf("invalid config: negative reload interval")
	}
	return nil
}

// Role returns the configuration for role.
func (c Config) Role(role wizard.Role) RoleConfig {
	return c.Roles[role.String()]
}

// WizardOptions converts the wizard section into controller options.
func (c Config) WizardOptions() wizard.Options {
	return wizard.Options{
		PersistRole:   c.Wizard.PersistRole,
		TimedReveal:   c.Wizard.TimedReveal,
		GreetingDelay: c.Wizard.GreetingDelay,
		IdentityDelay: c.Wizard.IdentityDelay,
	}
}

// StorePath returns the configured store location, or the default file for
// the backend under StateDir.
func (c Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	dir := StateDir()
	if dir == "" {
		return ""
	}
	if c.Store.Backend == "sqlite" {
		return filepath.Join(dir, "wb.db")
	}
	return filepath.Join(dir, "selection.json")
}

// SaveTo writes cfg to path.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
