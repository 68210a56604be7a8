// Package extract hosts the forensic extraction framework: extractor
// specs declare what they cover, a registry groups them, and the runner
// schedules them with bounded concurrency against a shared run context.
package extract

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand"

	"github.com/s4bridge/s4bridge/internal/adapter"
	"github.com/s4bridge/s4bridge/internal/bus"
	"github.com/s4bridge/s4bridge/internal/checkpoint"
	"github.com/s4bridge/s4bridge/internal/config"
	"github.com/s4bridge/s4bridge/internal/coverage"
)

// Extractor categories.
const (
	CategoryConfig     = "config"
	CategoryMasterdata = "masterdata"
	CategoryProcess    = "process"
	CategoryMetadata   = "metadata"
	CategoryInterface  = "interface"
)

var validCategories = map[string]bool{
	CategoryConfig:     true,
	CategoryMasterdata: true,
	CategoryProcess:    true,
	CategoryMetadata:   true,
	CategoryInterface:  true,
}

// Identity names an extractor and places it in the catalog.
type Identity struct {
	ID       string `json:"extractorId"`
	Name     string `json:"name"`
	Module   string `json:"module"`
	Category string `json:"category"`
}

// ExpectedTable is one table an extractor intends to cover.
type ExpectedTable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Critical    bool   `json:"critical"`
}

// Output maps logical subject areas to whatever the extractor gathered.
type Output map[string]any

// Spec is a declarative extractor: identity, expected tables, and the
// two extraction functions. Specs are values; the runner supplies all
// state through the RunContext.
type Spec struct {
	Identity
	ExpectedTables []ExpectedTable

	// Live reads from the source system through rc.
	Live func(ctx context.Context, rc *RunContext) (Output, error)
	// Mock synthesizes fixture data; rng is seeded per run+extractor so
	// fixtures are reproducible.
	Mock func(rc *RunContext, rng *rand.Rand) (Output, error)
}

// RunContext is the per-run bundle handed to every extractor.
type RunContext struct {
	Conn        adapter.Connection
	Mode        string
	RunID       string
	Checkpoints *checkpoint.Store
	Coverage    *coverage.Tracker
	SystemInfo  *adapter.SystemInfo
	Bus         *bus.Bus
	Logger      *slog.Logger
}

// ReadResult is the outcome of one covered table read. Coverage is
// recorded at the call site when the result is produced, so extractors
// cannot forget to account for a table.
type ReadResult struct {
	Rows []adapter.Row
	Err  error
}

// OK reports whether the read succeeded.
func (r ReadResult) OK() bool { return r.Err == nil }

// ReadTable reads one table through the run's connection and records
// its coverage outcome. Failures are recorded as failed and returned;
// the caller decides whether to continue (it should: a critical table
// failing never aborts the extractor).
func (rc *RunContext) ReadTable(ctx context.Context, table string, opts adapter.ReadOptions) ReadResult {
	rows, err := rc.Conn.ReadTable(ctx, table, opts)
	if err != nil {
		rc.Coverage.Record(table, coverage.StatusFailed, 0, err.Error())
		if rc.Logger != nil {
			rc.Logger.Warn("table read failed", "table", table, "error", err)
		}
		return ReadResult{Err: err}
	}
	rc.Coverage.Record(table, coverage.StatusExtracted, len(rows), "")
	return ReadResult{Rows: rows}
}

// Skip records a table as deliberately not read.
func (rc *RunContext) Skip(table, reason string) {
	rc.Coverage.Record(table, coverage.StatusSkipped, 0, reason)
}

// mockRand returns the deterministic PRNG for one extractor in one run.
func mockRand(runID, extractorID string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(runID + "/" + extractorID))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// Run executes one extractor spec against the run context: declares its
// expected tables to the coverage tracker, dispatches by mode, and
// marks the extractor complete in the checkpoint store on success.
// An extractor whose completion checkpoint already exists (a resumed
// run) is skipped without re-extracting.
func Run(ctx context.Context, spec Spec, rc *RunContext) (Output, error) {
	if rc.Checkpoints != nil && rc.Checkpoints.Exists(spec.ID, checkpoint.StepComplete) {
		if rc.Logger != nil {
			rc.Logger.Info("extractor already complete, skipping", "extractor", spec.ID)
		}
		return Output{}, nil
	}

	for _, t := range spec.ExpectedTables {
		rc.Coverage.Expect(t.Name, t.Critical)
	}

	var out Output
	var err error
	switch rc.Mode {
	case config.ModeMock:
		if spec.Mock == nil {
			return nil, fmt.Errorf("extractor %s has no mock implementation", spec.ID)
		}
		out, err = spec.Mock(rc, mockRand(rc.RunID, spec.ID))
	case config.ModeLive:
		if spec.Live == nil {
			return nil, fmt.Errorf("extractor %s has no live implementation", spec.ID)
		}
		out, err = spec.Live(ctx, rc)
	default:
		return nil, fmt.Errorf("unknown extraction mode %q", rc.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("extractor %s: %w", spec.ID, err)
	}

	if rc.Checkpoints != nil {
		if cerr := rc.Checkpoints.Save(spec.ID, checkpoint.StepComplete, map[string]any{
			"subjects": len(out),
		}); cerr != nil && rc.Logger != nil {
			rc.Logger.Warn("completion checkpoint failed", "extractor", spec.ID, "error", cerr)
		}
	}
	return out, nil
}
