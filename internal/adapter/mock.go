package adapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/s4bridge/s4bridge/internal/config"
	"github.com/s4bridge/s4bridge/internal/errs"
)

// Mock is an in-memory test double for the Connection interface. Tables
// and errors are injected by assigning the exported fields before use.
type Mock struct {
	Name   string
	Tables map[string][]Row
	Sets   map[string][]Row
	Info   SystemInfo

	ConnectErr error
	ReadErr    map[string]error // per-table error injection
	QueryErr   error
	HealthErr  error

	mu        sync.Mutex
	connected bool
	telemetry *telemetryRecorder
}

// NewMock creates a mock adapter for the given profile.
func NewMock(profile config.Profile) (Connection, error) {
	return &Mock{
		Name:      profile.Name,
		Tables:    make(map[string][]Row),
		Sets:      make(map[string][]Row),
		Info:      SystemInfo{SID: "MCK", Release: "1.0", Description: "mock source"},
		telemetry: &telemetryRecorder{},
	}, nil
}

func (m *Mock) ProfileName() string { return m.Name }

func (m *Mock) Connect(context.Context) error {
	if m.ConnectErr != nil {
		return m.ConnectErr
	}
	m.mu.Lock()
	m.connected = true
	m.mu.Unlock()
	return nil
}

func (m *Mock) Disconnect(context.Context) error {
	m.mu.Lock()
	m.connected = false
	m.mu.Unlock()
	return nil
}

// Connected reports whether Connect has been called without a matching
// Disconnect. Test-only observability.
func (m *Mock) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *Mock) ReadTable(_ context.Context, name string, opts ReadOptions) ([]Row, error) {
	if m.ReadErr != nil {
		if err, ok := m.ReadErr[name]; ok {
			return nil, err
		}
	}
	rows, ok := m.Tables[name]
	if !ok {
		return nil, errs.RemoteProtocol(404, fmt.Sprintf("table %s not found", name))
	}
	if opts.MaxRows > 0 && len(rows) > opts.MaxRows {
		rows = rows[:opts.MaxRows]
	}
	return rows, nil
}

func (m *Mock) QueryEntities(_ context.Context, set, _ string) ([]Row, error) {
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	return m.Sets[set], nil
}

func (m *Mock) SystemInfo(context.Context) (*SystemInfo, error) {
	info := m.Info
	return &info, nil
}

func (m *Mock) HealthCheck(context.Context) (*Health, error) {
	if m.HealthErr != nil {
		return &Health{Healthy: false, Details: m.HealthErr.Error()}, nil
	}
	return &Health{Healthy: true, LatencyMs: 1}, nil
}

func (m *Mock) Telemetry() Telemetry { return m.telemetry.snapshot() }
