// Package adapter defines the source-system contract and its
// implementations. Every legacy ERP the toolkit can read from (SAP ECC,
// Infor LN, Infor M3, Lawson, a Postgres staging copy, or the in-memory
// mock) is reached through the Connection interface; callers never see
// wire protocols. Adapter reads return (rows, error) so coverage
// accounting happens explicitly at the call site.
package adapter

import (
	"context"

	"github.com/s4bridge/s4bridge/internal/config"
)

// Row is a single record read from a source table or entity set.
type Row map[string]any

// ReadOptions narrows a table read.
type ReadOptions struct {
	Fields  []string // projection; empty means all
	MaxRows int      // 0 means adapter default
	Filter  string   // source-native filter expression
}

// SystemInfo describes the connected source system.
type SystemInfo struct {
	SID         string `json:"sid,omitempty"`
	Release     string `json:"release,omitempty"`
	Description string `json:"description,omitempty"`
	Host        string `json:"host,omitempty"`
}

// Health is the result of a connection health probe.
type Health struct {
	Healthy   bool   `json:"healthy"`
	LatencyMs int64  `json:"latency_ms"`
	Details   string `json:"details,omitempty"`
}

// Connection is a live handle to a source system derived from a profile.
// Connect and Disconnect are idempotent. All operations honor the context
// and the profile timeout; I/O failures map to the errs taxonomy.
type Connection interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	ReadTable(ctx context.Context, name string, opts ReadOptions) ([]Row, error)
	QueryEntities(ctx context.Context, set, query string) ([]Row, error)
	SystemInfo(ctx context.Context) (*SystemInfo, error)
	HealthCheck(ctx context.Context) (*Health, error)
	Telemetry() Telemetry
	ProfileName() string
}

// Factory constructs an unconnected Connection from a profile.
type Factory func(profile config.Profile) (Connection, error)
