package migrate

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand"
	"time"

	"github.com/s4bridge/s4bridge/internal/adapter"
	"github.com/s4bridge/s4bridge/internal/bus"
	"github.com/s4bridge/s4bridge/internal/config"
	"github.com/s4bridge/s4bridge/internal/errs"
)

// Phase statuses.
const (
	StatusCompleted           = "completed"
	StatusCompletedWithErrors = "completed_with_errors"
	StatusFailed              = "failed"
)

// Identity names a migration object and its systems.
type Identity struct {
	ObjectID     string `json:"objectId"`
	Name         string `json:"name"`
	SourceSystem string `json:"sourceSystem,omitempty"`
	TargetSystem string `json:"targetSystem"`
}

// Spec declares one migration object: what to extract, how to map it,
// and which quality checks gate it.
type Spec struct {
	Identity
	Mappings []Mapping
	Checks   QualityChecks

	// ExtractLive pulls source rows through a connection.
	ExtractLive func(ctx context.Context, conn adapter.Connection) ([]adapter.Row, error)
	// ExtractMock synthesizes source rows; rng is seeded per run+object.
	ExtractMock func(rng *rand.Rand) []adapter.Row
}

// PhaseResult is the outcome of one lifecycle phase.
type PhaseResult struct {
	Status      string      `json:"status"`
	RecordCount int         `json:"recordCount"`
	Violations  []Violation `json:"violations,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Phases groups the four lifecycle results. Phases that never ran are
// left zero-valued with an empty status.
type Phases struct {
	Extract   PhaseResult `json:"extract"`
	Transform PhaseResult `json:"transform"`
	Validate  PhaseResult `json:"validate"`
	Load      PhaseResult `json:"load"`
}

// RunResult is the full outcome of one object run.
type RunResult struct {
	ObjectID   string        `json:"objectId"`
	Status     string        `json:"status"`
	Phases     Phases        `json:"phases"`
	Records    []adapter.Row `json:"-"`
	StartedAt  time.Time     `json:"startedAt"`
	DurationMs int64         `json:"durationMs"`
}

// RunContext carries the per-run collaborators for object runs.
type RunContext struct {
	Mode   string
	RunID  string
	Conn   adapter.Connection
	Bus    *bus.Bus
	Logger *slog.Logger
}

func objectRand(runID, objectID string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(runID + "/" + objectID))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// Run executes the four-phase lifecycle for one object. Extract failure
// fails the run; validation findings demote it to
// completed_with_errors; load is simulated and only counts records.
func Run(ctx context.Context, spec Spec, rc *RunContext) *RunResult {
	started := time.Now()
	result := &RunResult{ObjectID: spec.ObjectID, StartedAt: started.UTC()}
	finish := func() *RunResult {
		result.DurationMs = time.Since(started).Milliseconds()
		return result
	}

	emit := func(eventType string, data map[string]any) {
		if rc.Bus != nil {
			rc.Bus.Emit(eventType, data)
		}
	}
	emit(bus.MigrationStart, map[string]any{"objectId": spec.ObjectID, "runId": rc.RunID})

	// Extract.
	rows, err := extractRows(ctx, spec, rc)
	if err != nil {
		wrapped := errs.MigrationObject(spec.ObjectID, "extract", err)
		result.Status = StatusFailed
		result.Phases.Extract = PhaseResult{Status: StatusFailed, Error: wrapped.Error()}
		if rc.Logger != nil {
			rc.Logger.Error("object extract failed", "object", spec.ObjectID, "error", err)
		}
		emit(bus.MigrationError, map[string]any{
			"objectId": spec.ObjectID, "phase": "extract", "error": err.Error(),
		})
		return finish()
	}
	result.Phases.Extract = PhaseResult{Status: StatusCompleted, RecordCount: len(rows)}
	emit(bus.MigrationProgress, map[string]any{"objectId": spec.ObjectID, "phase": "extract", "records": len(rows)})

	// Transform.
	transformed := make([]adapter.Row, len(rows))
	for i, row := range rows {
		transformed[i] = ApplyMappings(spec.Mappings, row)
	}
	result.Records = transformed
	result.Phases.Transform = PhaseResult{Status: StatusCompleted, RecordCount: len(transformed)}
	emit(bus.MigrationProgress, map[string]any{"objectId": spec.ObjectID, "phase": "transform", "records": len(transformed)})

	// Validate.
	violations := spec.Checks.Validate(transformed)
	validateStatus := StatusCompleted
	if len(violations) > 0 {
		validateStatus = StatusCompletedWithErrors
	}
	result.Phases.Validate = PhaseResult{
		Status:      validateStatus,
		RecordCount: len(transformed),
		Violations:  violations,
	}
	emit(bus.MigrationProgress, map[string]any{
		"objectId": spec.ObjectID, "phase": "validate", "violations": len(violations),
	})

	// Load (simulated).
	result.Phases.Load = PhaseResult{Status: StatusCompleted, RecordCount: len(transformed)}

	result.Status = StatusCompleted
	if len(violations) > 0 {
		result.Status = StatusCompletedWithErrors
	}
	emit(bus.MigrationComplete, map[string]any{
		"objectId": spec.ObjectID,
		"status":   result.Status,
		"records":  len(transformed),
	})
	return finish()
}

func extractRows(ctx context.Context, spec Spec, rc *RunContext) ([]adapter.Row, error) {
	switch rc.Mode {
	case config.ModeMock:
		if spec.ExtractMock == nil {
			return nil, fmt.Errorf("object %s has no mock extraction", spec.ObjectID)
		}
		return spec.ExtractMock(objectRand(rc.RunID, spec.ObjectID)), nil
	case config.ModeLive:
		if spec.ExtractLive == nil {
			return nil, fmt.Errorf("object %s has no live extraction", spec.ObjectID)
		}
		return spec.ExtractLive(ctx, rc.Conn)
	default:
		return nil, fmt.Errorf("unknown migration mode %q", rc.Mode)
	}
}
