package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	CurrentVersion = 1
	DefaultPath    = "~/.s4bridge/s4bridge.yaml"
)

// Source system identifiers as they appear in the adapter registry.
const (
	SystemSAP     = "SAP"
	SystemInforLN = "INFOR_LN"
	SystemInforM3 = "INFOR_M3"
	SystemLawson  = "LAWSON"
	SystemStaging = "STAGING"
	SystemMock    = "MOCK"
)

// Auth kinds accepted in adapter profiles.
const (
	AuthBasic  = "basic"
	AuthOAuth2 = "oauth2"
	AuthNone   = "none"
)

// Modes accepted in adapter profiles.
const (
	ModeLive = "live"
	ModeMock = "mock"
)

// Config is the top-level configuration.
type Config struct {
	Version  int       `yaml:"version"`
	Profiles []Profile `yaml:"profiles,omitempty"`
	Server   Server    `yaml:"server,omitempty"`
	Runs     Runs      `yaml:"runs,omitempty"`
	Logging  LogConfig `yaml:"logging,omitempty"`
}

// Profile is a named source-system connection configuration. CredentialRef
// and ClientSecretRef may use ${ENV|VAULT|AWS_SM:ref} indirection; the
// resolved secret lives only in memory and is never written back, logged,
// or included in event payloads.
type Profile struct {
	Name            string `yaml:"name"`
	SourceSystem    string `yaml:"source_system"`
	BaseURL         string `yaml:"base_url,omitempty"`
	Host            string `yaml:"host,omitempty"`
	Port            int    `yaml:"port,omitempty"`
	Auth            string `yaml:"auth,omitempty"` // basic, oauth2, none
	Username        string `yaml:"username,omitempty"`
	CredentialRef   string `yaml:"credential_ref,omitempty"`
	TokenURL        string `yaml:"token_url,omitempty"`
	ClientID        string `yaml:"client_id,omitempty"`
	ClientSecretRef string `yaml:"client_secret_ref,omitempty"`
	Mode            string `yaml:"mode,omitempty"`   // live or mock
	Client          string `yaml:"client,omitempty"` // SAP client number
	TimeoutMs       int    `yaml:"timeout_ms,omitempty"`

	// Resolved secrets, populated by resolveSecrets. Excluded from yaml so a
	// Save never persists them in the clear.
	Password     string `yaml:"-"`
	ClientSecret string `yaml:"-"`
}

// Server holds the HTTP surface settings.
type Server struct {
	Port int `yaml:"port,omitempty"` // default 8080
}

// Runs holds run-scoped storage settings.
type Runs struct {
	Root string `yaml:"root,omitempty"` // default ~/.s4bridge/runs
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level     string `yaml:"level,omitempty"`     // debug, info, warn, error
	Directory string `yaml:"directory,omitempty"` // default ~/.s4bridge/logs/
	Format    string `yaml:"format,omitempty"`    // text or json
}

// Default returns a usable configuration when no file exists: no
// profiles, defaults applied.
func Default() *Config {
	cfg := &Config{Version: CurrentVersion}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the config file from the given path.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentVersion)
	}

	if err := cfg.resolveSecrets(); err != nil {
		return nil, fmt.Errorf("resolving secrets: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validateProfiles(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the given path. Resolved secrets are not
// serialized; only the references are.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// ProfileByName returns the named profile, or nil.
func (c *Config) ProfileByName(name string) *Profile {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i]
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Runs.Root == "" {
		c.Runs.Root = ExpandHome("~/.s4bridge/runs")
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Directory == "" {
		c.Logging.Directory = ExpandHome("~/.s4bridge/logs/")
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	for i := range c.Profiles {
		p := &c.Profiles[i]
		if p.Auth == "" {
			p.Auth = AuthNone
		}
		if p.Mode == "" {
			p.Mode = ModeMock
		}
		if p.TimeoutMs == 0 {
			p.TimeoutMs = 30000
		}
	}
}

func (c *Config) validateProfiles() error {
	seen := make(map[string]bool)
	for _, p := range c.Profiles {
		if p.Name == "" {
			return fmt.Errorf("profile with empty name")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate profile name %q", p.Name)
		}
		seen[p.Name] = true
		if p.SourceSystem == "" {
			return fmt.Errorf("profile %q: source_system is required", p.Name)
		}
		switch p.Auth {
		case AuthBasic, AuthOAuth2, AuthNone:
		default:
			return fmt.Errorf("profile %q: unknown auth kind %q", p.Name, p.Auth)
		}
		switch p.Mode {
		case ModeLive, ModeMock:
		default:
			return fmt.Errorf("profile %q: unknown mode %q", p.Name, p.Mode)
		}
		if p.BaseURL == "" && p.Host == "" && p.Mode == ModeLive {
			return fmt.Errorf("profile %q: live mode requires base_url or host", p.Name)
		}
	}
	return nil
}

func (c *Config) resolveSecrets() error {
	for i := range c.Profiles {
		p := &c.Profiles[i]
		var err error
		if p.CredentialRef != "" {
			p.Password, err = ResolveValue(p.CredentialRef)
			if err != nil {
				return fmt.Errorf("profile %q credential: %w", p.Name, err)
			}
		}
		if p.ClientSecretRef != "" {
			p.ClientSecret, err = ResolveValue(p.ClientSecretRef)
			if err != nil {
				return fmt.Errorf("profile %q client secret: %w", p.Name, err)
			}
		}
	}
	return nil
}

// ExpandHome expands ~ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
