// Package engine is the composition root: it builds the adapter
// registry, the extractor and object catalogs, the connection manager,
// and the progress bus, and owns the lifecycle of extraction and
// migration runs.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/s4bridge/s4bridge/internal/adapter"
	"github.com/s4bridge/s4bridge/internal/bus"
	"github.com/s4bridge/s4bridge/internal/checkpoint"
	"github.com/s4bridge/s4bridge/internal/config"
	"github.com/s4bridge/s4bridge/internal/coverage"
	"github.com/s4bridge/s4bridge/internal/extract"
	extractcatalog "github.com/s4bridge/s4bridge/internal/extract/catalog"
	"github.com/s4bridge/s4bridge/internal/migrate"
	migratecatalog "github.com/s4bridge/s4bridge/internal/migrate/catalog"
	"github.com/s4bridge/s4bridge/internal/planner"
)

// EnvPrefix is the prefix for environment-bound connection profiles.
const EnvPrefix = "S4BRIDGE"

// ErrRunInProgress is returned when a second run is requested while one
// is active.
var ErrRunInProgress = fmt.Errorf("a run is already in progress")

// Engine wires every component together and tracks run state.
type Engine struct {
	Config *config.Config
	Logger *slog.Logger

	bus        *bus.Bus
	manager    *adapter.Manager
	extractors *extract.Registry
	objects    *migrate.Registry
	plans      *planner.Store

	mu            sync.Mutex
	extractCancel context.CancelFunc
	currentRunID  string
	lastReport    *RunReport
	migrating     bool
	lastMigration []*migrate.RunResult
}

// RunReport is the persisted outcome of one extraction run.
type RunReport struct {
	RunID       string           `json:"runId"`
	Profile     string           `json:"profile"`
	Mode        string           `json:"mode"`
	StartedAt   time.Time        `json:"startedAt"`
	FinishedAt  time.Time        `json:"finishedAt"`
	Cancelled   bool             `json:"cancelled,omitempty"`
	Extractors  int              `json:"extractors"`
	Failed      []string         `json:"failed,omitempty"`
	Coverage    *coverage.Report `json:"coverage"`
	ResultSizes map[string]int   `json:"resultSizes"`
}

// New builds a fully wired engine from the configuration: built-in
// adapters plus Lawson and the staging reader, both catalogs, config
// profiles, and environment-bound profiles.
func New(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	registry := adapter.NewRegistry()
	if err := registry.Register(config.SystemLawson, adapter.NewLawson); err != nil {
		return nil, err
	}
	if err := registry.Register(config.SystemStaging, adapter.NewStaging); err != nil {
		return nil, err
	}
	if err := registry.Register(config.SystemMock, adapter.NewMock); err != nil {
		return nil, err
	}

	manager := adapter.NewManager(registry, logger)
	for _, p := range cfg.Profiles {
		if err := manager.AddProfile(p); err != nil {
			return nil, fmt.Errorf("profile %s: %w", p.Name, err)
		}
	}
	if names := manager.LoadFromEnv(EnvPrefix); len(names) > 0 {
		logger.Info("profiles loaded from environment", "names", names)
	}

	extractors := extract.NewRegistry()
	if err := extractcatalog.RegisterAll(extractors); err != nil {
		return nil, err
	}
	objects := migrate.NewRegistry()
	if err := migratecatalog.RegisterAll(objects); err != nil {
		return nil, err
	}

	return &Engine{
		Config:     cfg,
		Logger:     logger,
		bus:        bus.New(logger),
		manager:    manager,
		extractors: extractors,
		objects:    objects,
		plans:      planner.NewStore(),
	}, nil
}

// Bus returns the progress bus.
func (e *Engine) Bus() *bus.Bus { return e.bus }

// Manager returns the connection manager.
func (e *Engine) Manager() *adapter.Manager { return e.manager }

// Extractors returns the extractor registry.
func (e *Engine) Extractors() *extract.Registry { return e.extractors }

// Objects returns the migration object registry.
func (e *Engine) Objects() *migrate.Registry { return e.objects }

// Plans returns the plan store.
func (e *Engine) Plans() *planner.Store { return e.plans }

// BuildPlan generates a plan and stores it as the latest.
func (e *Engine) BuildPlan(input *planner.ForensicInput, opts planner.Options) (*planner.Plan, error) {
	plan, err := planner.Build(input, opts)
	if err != nil {
		return nil, err
	}
	e.plans.Set(plan)
	return plan, nil
}

// ExtractionOptions selects what an extraction run covers. A non-empty
// RunID resumes that run: its checkpoint directory is reused and
// extractors already marked complete are skipped.
type ExtractionOptions struct {
	Profile     string   `json:"profile"`
	Mode        string   `json:"mode,omitempty"` // defaults to the profile's mode
	RunID       string   `json:"runId,omitempty"`
	Modules     []string `json:"modules,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Concurrency int      `json:"concurrency,omitempty"`
}

// StartExtraction launches an asynchronous extraction run and returns
// its run id. Only one extraction runs at a time.
func (e *Engine) StartExtraction(opts ExtractionOptions) (string, error) {
	profile, ok := e.manager.Profile(opts.Profile)
	if !ok {
		return "", fmt.Errorf("unknown profile %q", opts.Profile)
	}
	mode := opts.Mode
	if mode == "" {
		mode = profile.Mode
	}

	e.mu.Lock()
	if e.extractCancel != nil {
		e.mu.Unlock()
		return "", ErrRunInProgress
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.extractCancel = cancel
	e.currentRunID = runID
	e.mu.Unlock()

	go e.runExtraction(ctx, runID, profile, mode, opts)
	return runID, nil
}

func (e *Engine) runExtraction(ctx context.Context, runID string, profile config.Profile, mode string, opts ExtractionOptions) {
	started := time.Now()
	defer func() {
		e.mu.Lock()
		if e.extractCancel != nil {
			e.extractCancel()
		}
		e.extractCancel = nil
		e.mu.Unlock()
	}()

	runRoot := filepath.Join(e.Config.Runs.Root, runID)
	store, err := checkpoint.NewStore(runRoot)
	if err != nil {
		e.Logger.Error("creating run directory", "run", runID, "error", err)
		e.bus.Emit(bus.ExtractionError, map[string]any{"runId": runID, "error": err.Error()})
		return
	}

	rc := &extract.RunContext{
		Mode:        mode,
		RunID:       runID,
		Checkpoints: store,
		Coverage:    coverage.NewTracker(),
		Bus:         e.bus,
		Logger:      e.Logger.With("component", "extract", "run", runID),
	}

	if mode == config.ModeLive {
		conn, err := e.manager.Get(ctx, profile.Name)
		if err != nil {
			e.Logger.Error("connecting for extraction", "profile", profile.Name, "error", err)
			e.bus.Emit(bus.ExtractionError, map[string]any{"runId": runID, "error": err.Error()})
			return
		}
		rc.Conn = conn
		if info, err := conn.SystemInfo(ctx); err == nil {
			rc.SystemInfo = info
			e.bus.Emit(bus.SystemInfo, map[string]any{"sid": info.SID, "release": info.Release})
		}
	}

	results, runErr := extract.RunAll(ctx, e.extractors, rc, extract.RunOptions{
		Concurrency: opts.Concurrency,
		Modules:     opts.Modules,
		Categories:  opts.Categories,
	})

	report := &RunReport{
		RunID:       runID,
		Profile:     profile.Name,
		Mode:        mode,
		StartedAt:   started.UTC(),
		FinishedAt:  time.Now().UTC(),
		Cancelled:   runErr != nil,
		Extractors:  len(results),
		Coverage:    rc.Coverage.GetReport(),
		ResultSizes: make(map[string]int, len(results)),
	}
	for id, r := range results {
		if r.Err != nil {
			report.Failed = append(report.Failed, id)
			continue
		}
		report.ResultSizes[id] = len(r.Data)
	}

	if err := writeReport(runRoot, report); err != nil {
		e.Logger.Warn("writing run report", "run", runID, "error", err)
	}

	e.mu.Lock()
	e.lastReport = report
	e.mu.Unlock()
}

// writeReport persists the run report beside the run's checkpoints.
func writeReport(runRoot string, report *RunReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(runRoot, "report.json"), data, 0o644)
}

// AbortExtraction cancels the in-flight extraction run.
func (e *Engine) AbortExtraction() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.extractCancel == nil {
		return fmt.Errorf("no extraction in progress")
	}
	e.extractCancel()
	return nil
}

// ExtractionStatus describes the current or last extraction run.
type ExtractionStatus struct {
	Running    bool       `json:"running"`
	RunID      string     `json:"runId,omitempty"`
	LastReport *RunReport `json:"lastReport,omitempty"`
}

// Status reports the extraction run state.
func (e *Engine) Status() ExtractionStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ExtractionStatus{
		Running:    e.extractCancel != nil,
		RunID:      e.currentRunID,
		LastReport: e.lastReport,
	}
}

// MigrationOptions selects which objects a migration run covers.
type MigrationOptions struct {
	Profile   string   `json:"profile"`
	Mode      string   `json:"mode,omitempty"`
	ObjectIDs []string `json:"objectIds,omitempty"`
}

// RunMigration executes the selected migration objects sequentially and
// returns their results. Only one migration runs at a time.
func (e *Engine) RunMigration(ctx context.Context, opts MigrationOptions) ([]*migrate.RunResult, error) {
	profile, ok := e.manager.Profile(opts.Profile)
	if !ok {
		return nil, fmt.Errorf("unknown profile %q", opts.Profile)
	}
	mode := opts.Mode
	if mode == "" {
		mode = profile.Mode
	}

	e.mu.Lock()
	if e.migrating {
		e.mu.Unlock()
		return nil, ErrRunInProgress
	}
	e.migrating = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.migrating = false
		e.mu.Unlock()
	}()

	specs := e.objects.GetAll()
	if len(opts.ObjectIDs) > 0 {
		specs = make([]migrate.Spec, 0, len(opts.ObjectIDs))
		for _, id := range opts.ObjectIDs {
			spec, ok := e.objects.Get(id)
			if !ok {
				return nil, fmt.Errorf("unknown migration object %q", id)
			}
			specs = append(specs, spec)
		}
	}

	rc := &migrate.RunContext{
		Mode:   mode,
		RunID:  uuid.NewString(),
		Bus:    e.bus,
		Logger: e.Logger.With("component", "migrate"),
	}
	if mode == config.ModeLive {
		conn, err := e.manager.Get(ctx, profile.Name)
		if err != nil {
			return nil, err
		}
		rc.Conn = conn
	}

	results := make([]*migrate.RunResult, 0, len(specs))
	for _, spec := range specs {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		results = append(results, migrate.Run(ctx, spec, rc))
	}

	e.mu.Lock()
	e.lastMigration = results
	e.mu.Unlock()
	return results, nil
}

// LastMigration returns the results of the most recent migration run.
func (e *Engine) LastMigration() []*migrate.RunResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastMigration
}

// Shutdown cancels any active run and closes every connection.
func (e *Engine) Shutdown(ctx context.Context) {
	e.mu.Lock()
	if e.extractCancel != nil {
		e.extractCancel()
	}
	e.mu.Unlock()
	e.manager.DisconnectAll(ctx)
}
