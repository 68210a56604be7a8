package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/s4bridge/s4bridge/internal/config"
)

// Manager owns named profiles and their cached connections. Connections
// are created lazily on first Get and reused until DisconnectAll; they are
// never shared across profiles.
type Manager struct {
	registry *Registry
	logger   *slog.Logger

	mu       sync.Mutex
	profiles map[string]config.Profile
	conns    map[string]Connection
}

// NewManager creates a manager backed by the given registry.
func NewManager(registry *Registry, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		logger:   logger,
		profiles: make(map[string]config.Profile),
		conns:    make(map[string]Connection),
	}
}

// AddProfile registers or replaces a named profile. An existing cached
// connection for that name is left untouched until DisconnectAll.
func (m *Manager) AddProfile(p config.Profile) error {
	if p.Name == "" {
		return fmt.Errorf("profile name must not be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.Name] = p
	return nil
}

// Profile returns the named profile.
func (m *Manager) Profile(name string) (config.Profile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[name]
	return p, ok
}

// ProfileNames returns the registered profile names, sorted.
func (m *Manager) ProfileNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.profiles))
	for n := range m.profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get returns the cached connection for the profile, creating and
// connecting it on first use. Repeated calls return the same handle.
// Profiles in mock mode always get the in-memory mock adapter.
func (m *Manager) Get(ctx context.Context, name string) (Connection, error) {
	m.mu.Lock()
	if conn, ok := m.conns[name]; ok {
		m.mu.Unlock()
		return conn, nil
	}
	profile, ok := m.profiles[name]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown profile %q", name)
	}

	var conn Connection
	var err error
	if profile.Mode == config.ModeMock {
		conn, err = NewMock(profile)
	} else {
		conn, err = m.registry.Create("", profile)
	}
	if err != nil {
		return nil, fmt.Errorf("creating adapter for %q: %w", name, err)
	}

	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have raced us; keep the first connection.
	if existing, ok := m.conns[name]; ok {
		conn.Disconnect(ctx)
		return existing, nil
	}
	m.conns[name] = conn
	m.logger.Debug("connection established", "profile", name, "system", profile.SourceSystem)
	return conn, nil
}

// DisconnectAll closes and evicts every cached connection.
func (m *Manager) DisconnectAll(ctx context.Context) {
	m.mu.Lock()
	conns := m.conns
	m.conns = make(map[string]Connection)
	m.mu.Unlock()

	for name, conn := range conns {
		if err := conn.Disconnect(ctx); err != nil {
			m.logger.Warn("disconnect failed", "profile", name, "error", err)
		}
	}
}

// ProfileHealth is the per-profile slice of a manager health report.
type ProfileHealth struct {
	Healthy   bool      `json:"healthy"`
	LatencyMs int64     `json:"latency_ms"`
	Details   string    `json:"details,omitempty"`
	Telemetry Telemetry `json:"telemetry"`
}

// ManagerHealth is the rollup over every cached connection.
type ManagerHealth struct {
	Overall    string                   `json:"overall"` // healthy, degraded, unhealthy, no_connections
	Total      int                      `json:"total"`
	PerProfile map[string]ProfileHealth `json:"per_profile"`
}

// HealthCheck probes every cached connection and rolls the results up.
func (m *Manager) HealthCheck(ctx context.Context) *ManagerHealth {
	m.mu.Lock()
	conns := make(map[string]Connection, len(m.conns))
	for n, c := range m.conns {
		conns[n] = c
	}
	m.mu.Unlock()

	report := &ManagerHealth{
		Total:      len(conns),
		PerProfile: make(map[string]ProfileHealth, len(conns)),
	}
	if len(conns) == 0 {
		report.Overall = "no_connections"
		return report
	}

	healthy := 0
	for name, conn := range conns {
		h, err := conn.HealthCheck(ctx)
		ph := ProfileHealth{Telemetry: conn.Telemetry()}
		if err != nil {
			ph.Details = err.Error()
		} else {
			ph.Healthy = h.Healthy
			ph.LatencyMs = h.LatencyMs
			ph.Details = h.Details
		}
		if ph.Healthy {
			healthy++
		}
		report.PerProfile[name] = ph
	}

	switch {
	case healthy == len(conns):
		report.Overall = "healthy"
	case healthy > 0:
		report.Overall = "degraded"
	default:
		report.Overall = "unhealthy"
	}
	return report
}

// Environment field suffixes recognized by LoadFromEnv.
var envFields = []string{
	"BASE_URL", "USERNAME", "PASSWORD", "TOKEN_URL", "CLIENT_ID", "CLIENT_SECRET",
	"SYSTEM", "MODE", "TIMEOUT_MS",
}

// LoadFromEnv materializes profiles from environment bindings of the form
// <prefix>_<NAME>_<FIELD>. A name is materialized when the minimal field
// set for basic auth (BASE_URL, USERNAME, PASSWORD) or OAuth2 (BASE_URL,
// TOKEN_URL, CLIENT_ID, CLIENT_SECRET) is present. SYSTEM defaults to SAP.
// Returns the materialized names, sorted.
func (m *Manager) LoadFromEnv(prefix string) []string {
	grouped := make(map[string]map[string]string)
	envPrefix := prefix + "_"

	for _, kv := range os.Environ() {
		eq := strings.Index(kv, "=")
		if eq < 0 {
			continue
		}
		key, val := kv[:eq], kv[eq+1:]
		if !strings.HasPrefix(key, envPrefix) || val == "" {
			continue
		}
		rest := strings.TrimPrefix(key, envPrefix)
		for _, field := range envFields {
			suffix := "_" + field
			if strings.HasSuffix(rest, suffix) && len(rest) > len(suffix) {
				name := strings.TrimSuffix(rest, suffix)
				if grouped[name] == nil {
					grouped[name] = make(map[string]string)
				}
				grouped[name][field] = val
				break
			}
		}
	}

	var loaded []string
	for name, fields := range grouped {
		p, ok := profileFromEnv(name, fields)
		if !ok {
			continue
		}
		if err := m.AddProfile(p); err != nil {
			continue
		}
		loaded = append(loaded, name)
	}
	sort.Strings(loaded)
	return loaded
}

func profileFromEnv(name string, fields map[string]string) (config.Profile, bool) {
	p := config.Profile{
		Name:         name,
		SourceSystem: config.SystemSAP,
		BaseURL:      fields["BASE_URL"],
		Mode:         config.ModeLive,
		TimeoutMs:    30000,
	}
	if sys := fields["SYSTEM"]; sys != "" {
		p.SourceSystem = sys
	}
	if mode := fields["MODE"]; mode != "" {
		p.Mode = mode
	}
	if t := fields["TIMEOUT_MS"]; t != "" {
		if ms, err := strconv.Atoi(t); err == nil {
			p.TimeoutMs = ms
		}
	}

	switch {
	case fields["BASE_URL"] != "" && fields["USERNAME"] != "" && fields["PASSWORD"] != "":
		p.Auth = config.AuthBasic
		p.Username = fields["USERNAME"]
		p.Password = fields["PASSWORD"]
	case fields["BASE_URL"] != "" && fields["TOKEN_URL"] != "" && fields["CLIENT_ID"] != "" && fields["CLIENT_SECRET"] != "":
		p.Auth = config.AuthOAuth2
		p.TokenURL = fields["TOKEN_URL"]
		p.ClientID = fields["CLIENT_ID"]
		p.ClientSecret = fields["CLIENT_SECRET"]
	default:
		return config.Profile{}, false
	}
	return p, true
}
