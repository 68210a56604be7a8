package engine

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/s4bridge/s4bridge/internal/bus"
	"github.com/s4bridge/s4bridge/internal/config"
	"github.com/s4bridge/s4bridge/internal/migrate"
	"github.com/s4bridge/s4bridge/internal/planner"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := &config.Config{
		Version: config.CurrentVersion,
		Profiles: []config.Profile{
			{Name: "MOCK", SourceSystem: config.SystemSAP, Mode: config.ModeMock, TimeoutMs: 1000},
		},
		Runs: config.Runs{Root: t.TempDir()},
	}
	eng, err := New(cfg, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

func waitForRun(t *testing.T, eng *Engine) *RunReport {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		st := eng.Status()
		if !st.Running && st.LastReport != nil {
			return st.LastReport
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("extraction run did not finish")
	return nil
}

func TestEngineWiring(t *testing.T) {
	eng := testEngine(t)
	if len(eng.Extractors().GetAll()) < 30 {
		t.Errorf("extractors = %d, want at least 30", len(eng.Extractors().GetAll()))
	}
	if len(eng.Objects().GetAll()) < 40 {
		t.Errorf("objects = %d, want at least 40", len(eng.Objects().GetAll()))
	}
	if eng.Plans().State() != planner.StateMissing {
		t.Errorf("plan state = %s, want missing", eng.Plans().State())
	}
}

func TestStartExtractionMockRun(t *testing.T) {
	eng := testEngine(t)

	runID, err := eng.StartExtraction(ExtractionOptions{Profile: "MOCK", Modules: []string{"FI"}})
	if err != nil {
		t.Fatalf("StartExtraction: %v", err)
	}
	report := waitForRun(t, eng)

	if report.RunID != runID {
		t.Errorf("report run id = %s, want %s", report.RunID, runID)
	}
	if report.Extractors == 0 {
		t.Error("no extractors ran")
	}
	if len(report.Failed) != 0 {
		t.Errorf("failed extractors: %v", report.Failed)
	}
	if report.Coverage == nil || report.Coverage.Extracted == 0 {
		t.Error("coverage report missing or empty")
	}

	// Report file lands beside the checkpoints.
	path := filepath.Join(eng.Config.Runs.Root, runID, "report.json")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("report file missing: %v", err)
	}
}

func TestStartExtractionLiveSystemInfo(t *testing.T) {
	eng := testEngine(t)
	if err := eng.Manager().AddProfile(config.Profile{
		Name: "LIVEMOCK", SourceSystem: config.SystemMock, Mode: config.ModeLive, TimeoutMs: 1000,
	}); err != nil {
		t.Fatal(err)
	}

	infos := make(chan map[string]any, 1)
	unsubscribe := eng.Bus().Subscribe(func(ev bus.Event) {
		if ev.Type == bus.SystemInfo {
			if data, ok := ev.Data.(map[string]any); ok {
				select {
				case infos <- data:
				default:
				}
			}
		}
	})
	defer unsubscribe()

	if _, err := eng.StartExtraction(ExtractionOptions{
		Profile:    "LIVEMOCK",
		Categories: []string{"metadata"},
	}); err != nil {
		t.Fatalf("StartExtraction: %v", err)
	}
	waitForRun(t, eng)

	select {
	case data := <-infos:
		if data["sid"] != "MCK" {
			t.Errorf("system info sid = %v, want MCK", data["sid"])
		}
	default:
		t.Error("no system:info event emitted for live run")
	}
}

func TestStartExtractionResumeSkipsCompleted(t *testing.T) {
	eng := testEngine(t)

	runID, err := eng.StartExtraction(ExtractionOptions{Profile: "MOCK", Modules: []string{"FI"}})
	if err != nil {
		t.Fatalf("StartExtraction: %v", err)
	}
	first := waitForRun(t, eng)
	if first.Extractors == 0 {
		t.Fatal("no extractors ran")
	}
	extracted := 0
	for _, size := range first.ResultSizes {
		if size > 0 {
			extracted++
		}
	}
	if extracted == 0 {
		t.Fatal("first run produced no data")
	}

	// Resuming the same run id finds every completion checkpoint in
	// place, so no extractor does its work again.
	if _, err := eng.StartExtraction(ExtractionOptions{
		Profile: "MOCK", Modules: []string{"FI"}, RunID: runID,
	}); err != nil {
		t.Fatalf("resume: %v", err)
	}
	resumed := waitForRun(t, eng)

	if resumed.RunID != runID {
		t.Errorf("resumed run id = %s, want %s", resumed.RunID, runID)
	}
	if resumed.Extractors != first.Extractors {
		t.Errorf("resumed extractors = %d, want %d", resumed.Extractors, first.Extractors)
	}
	for id, size := range resumed.ResultSizes {
		if size != 0 {
			t.Errorf("extractor %s re-extracted %d subjects on resume", id, size)
		}
	}
}

func TestStartExtractionRejectsConcurrentRuns(t *testing.T) {
	eng := testEngine(t)

	if _, err := eng.StartExtraction(ExtractionOptions{Profile: "MOCK"}); err != nil {
		t.Fatal(err)
	}
	_, err := eng.StartExtraction(ExtractionOptions{Profile: "MOCK"})
	if err != ErrRunInProgress {
		// The first run may already be done on a fast machine.
		if eng.Status().Running {
			t.Errorf("second start = %v, want ErrRunInProgress", err)
		}
	}
	waitForRun(t, eng)
}

func TestStartExtractionUnknownProfile(t *testing.T) {
	eng := testEngine(t)
	if _, err := eng.StartExtraction(ExtractionOptions{Profile: "NOPE"}); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestRunMigrationMock(t *testing.T) {
	eng := testEngine(t)

	results, err := eng.RunMigration(context.Background(), MigrationOptions{
		Profile:   "MOCK",
		ObjectIDs: []string{"INFOR_LN_GL_ACCOUNT"},
	})
	if err != nil {
		t.Fatalf("RunMigration: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Status != migrate.StatusCompleted {
		t.Errorf("status = %s, want completed", results[0].Status)
	}
	if got := eng.LastMigration(); len(got) != 1 {
		t.Error("LastMigration should return the run results")
	}
}

func TestRunMigrationUnknownObject(t *testing.T) {
	eng := testEngine(t)
	_, err := eng.RunMigration(context.Background(), MigrationOptions{
		Profile:   "MOCK",
		ObjectIDs: []string{"NOT_AN_OBJECT"},
	})
	if err == nil {
		t.Error("expected error for unknown object id")
	}
}

func TestBuildPlanStoresLatest(t *testing.T) {
	eng := testEngine(t)
	input := &planner.ForensicInput{
		Results:    map[string]planner.ObjectResult{"FI_TRANSACTIONS": {Count: 100}},
		Confidence: map[string]float64{},
		GapReport:  map[string]any{},
	}

	plan, err := eng.BuildPlan(input, planner.Options{})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	latest, ok := eng.Plans().Latest()
	if !ok || latest != plan {
		t.Error("latest plan not stored")
	}
	if eng.Plans().State() != planner.StateAvailable {
		t.Errorf("state = %s, want available", eng.Plans().State())
	}
}

func TestShutdownCancelsRun(t *testing.T) {
	eng := testEngine(t)
	eng.StartExtraction(ExtractionOptions{Profile: "MOCK"})
	eng.Shutdown(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && eng.Status().Running {
		time.Sleep(10 * time.Millisecond)
	}
	if eng.Status().Running {
		t.Error("run still active after Shutdown")
	}
}
