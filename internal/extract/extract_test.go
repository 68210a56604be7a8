package extract

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/s4bridge/s4bridge/internal/adapter"
	"github.com/s4bridge/s4bridge/internal/bus"
	"github.com/s4bridge/s4bridge/internal/checkpoint"
	"github.com/s4bridge/s4bridge/internal/config"
	"github.com/s4bridge/s4bridge/internal/coverage"
)

func mockContext(t *testing.T) *RunContext {
	t.Helper()
	store, err := checkpoint.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return &RunContext{
		Mode:        config.ModeMock,
		RunID:       "run-test",
		Checkpoints: store,
		Coverage:    coverage.NewTracker(),
		Bus:         bus.New(nil),
	}
}

func fiConfigSpec() Spec {
	return Spec{
		Identity: Identity{ID: "FI_CONFIG", Name: "FI configuration", Module: "FI", Category: CategoryConfig},
		ExpectedTables: []ExpectedTable{
			{Name: "T001", Description: "Company codes", Critical: true},
		},
		Mock: func(rc *RunContext, rng *rand.Rand) (Output, error) {
			rc.Coverage.Record("T001", coverage.StatusExtracted, 1, "")
			return Output{"tables": map[string]any{
				"T001": []adapter.Row{{"BUKRS": "1000"}},
			}}, nil
		},
	}
}

func coConfigSpec() Spec {
	return Spec{
		Identity: Identity{ID: "CO_CONFIG", Name: "CO configuration", Module: "CO", Category: CategoryConfig},
		Mock: func(rc *RunContext, rng *rand.Rand) (Output, error) {
			return Output{"tables": map[string]any{"TKA01": []adapter.Row{{"KOKRS": "1000"}}}}, nil
		},
	}
}

func systemInfoSpec() Spec {
	return Spec{
		Identity: Identity{ID: "SYSTEM_INFO", Name: "System information", Module: "BASIS", Category: CategoryMetadata},
		Mock: func(rc *RunContext, rng *rand.Rand) (Output, error) {
			return Output{"sid": "TST", "release": "750"}, nil
		},
	}
}

func threeExtractorRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	for _, s := range []Spec{fiConfigSpec(), coConfigSpec(), systemInfoSpec()} {
		if err := reg.Register(s); err != nil {
			t.Fatal(err)
		}
	}
	return reg
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := threeExtractorRegistry(t)

	if !reg.Has("FI_CONFIG") {
		t.Error("Has(FI_CONFIG) = false")
	}
	if s, ok := reg.Get("FI_CONFIG"); !ok || s.Module != "FI" {
		t.Errorf("Get(FI_CONFIG) = %+v, %v", s.Identity, ok)
	}
	if got := len(reg.GetAll()); got != 3 {
		t.Errorf("GetAll = %d specs, want 3", got)
	}
	if got := reg.GetByModule("FI"); len(got) != 1 || got[0].ID != "FI_CONFIG" {
		t.Errorf("GetByModule(FI) = %v", got)
	}
	if got := reg.GetByCategory(CategoryConfig); len(got) != 2 {
		t.Errorf("GetByCategory(config) = %d specs, want 2", len(got))
	}

	reg.Clear()
	if len(reg.GetAll()) != 0 {
		t.Error("Clear left specs behind")
	}
}

func TestRegistryRejectsInvalidSpecs(t *testing.T) {
	reg := NewRegistry()
	mock := func(rc *RunContext, rng *rand.Rand) (Output, error) { return nil, nil }

	cases := []struct {
		name string
		spec Spec
	}{
		{"empty id", Spec{Identity: Identity{Module: "FI", Category: CategoryConfig}, Mock: mock}},
		{"empty module", Spec{Identity: Identity{ID: "X", Category: CategoryConfig}, Mock: mock}},
		{"bad category", Spec{Identity: Identity{ID: "X", Module: "FI", Category: "weird"}, Mock: mock}},
		{"no implementation", Spec{Identity: Identity{ID: "X", Module: "FI", Category: CategoryConfig}}},
	}
	for _, tc := range cases {
		if err := reg.Register(tc.spec); err == nil {
			t.Errorf("%s: expected registration error", tc.name)
		}
	}

	valid := fiConfigSpec()
	if err := reg.Register(valid); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(valid); err == nil {
		t.Error("duplicate id should be rejected")
	}
}

func TestRunAllMock(t *testing.T) {
	reg := threeExtractorRegistry(t)
	rc := mockContext(t)

	results, err := RunAll(context.Background(), reg, rc, RunOptions{Concurrency: 2})
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}

	fi := results["FI_CONFIG"].Data
	tables, ok := fi["tables"].(map[string]any)
	if !ok {
		t.Fatalf("FI_CONFIG tables = %v", fi)
	}
	rows, ok := tables["T001"].([]adapter.Row)
	if !ok || len(rows) != 1 || rows[0]["BUKRS"] != "1000" {
		t.Errorf("T001 = %v, want one row with BUKRS 1000", tables["T001"])
	}

	si := results["SYSTEM_INFO"].Data
	if si["sid"] != "TST" || si["release"] != "750" {
		t.Errorf("SYSTEM_INFO = %v, want sid TST release 750", si)
	}
}

func TestRunAllModuleFilter(t *testing.T) {
	reg := threeExtractorRegistry(t)
	rc := mockContext(t)

	results, err := RunAll(context.Background(), reg, rc, RunOptions{Modules: []string{"FI"}})
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if _, ok := results["FI_CONFIG"]; !ok {
		t.Error("FI_CONFIG missing from filtered run")
	}
}

func TestRunAllFailureIsolation(t *testing.T) {
	reg := threeExtractorRegistry(t)
	reg.Register(Spec{
		Identity: Identity{ID: "BROKEN", Module: "FI", Category: CategoryConfig},
		Mock: func(rc *RunContext, rng *rand.Rand) (Output, error) {
			return nil, errors.New("source unreachable")
		},
	})
	reg.Register(Spec{
		Identity: Identity{ID: "PANICS", Module: "FI", Category: CategoryConfig},
		Mock: func(rc *RunContext, rng *rand.Rand) (Output, error) {
			panic("boom")
		},
	})

	rc := mockContext(t)
	results, err := RunAll(context.Background(), reg, rc, RunOptions{})
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("results = %d, want 5", len(results))
	}
	if results["BROKEN"].Err == nil {
		t.Error("BROKEN should surface its error")
	}
	if results["PANICS"].Err == nil {
		t.Error("PANICS should surface its panic as an error")
	}
	if results["FI_CONFIG"].Err != nil {
		t.Error("healthy extractors must not be affected")
	}
}

func TestRunAllConcurrencyBound(t *testing.T) {
	reg := NewRegistry()
	var inFlight, peak int32
	for _, id := range []string{"A", "B", "C", "D", "E", "F"} {
		reg.Register(Spec{
			Identity: Identity{ID: id, Module: "FI", Category: CategoryConfig},
			Mock: func(rc *RunContext, rng *rand.Rand) (Output, error) {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return Output{}, nil
			},
		})
	}

	rc := mockContext(t)
	if _, err := RunAll(context.Background(), reg, rc, RunOptions{Concurrency: 2}); err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Errorf("peak in-flight = %d, want <= 2", p)
	}
}

func TestRunAllEvents(t *testing.T) {
	reg := threeExtractorRegistry(t)
	rc := mockContext(t)

	var mu sync.Mutex
	var types []string
	rc.Bus.Subscribe(func(e bus.Event) {
		mu.Lock()
		types = append(types, e.Type)
		mu.Unlock()
	})

	RunAll(context.Background(), reg, rc, RunOptions{})

	mu.Lock()
	defer mu.Unlock()
	if len(types) != 5 {
		t.Fatalf("events = %v, want start + 3 progress + complete", types)
	}
	if types[0] != bus.ExtractionStart || types[len(types)-1] != bus.ExtractionComplete {
		t.Errorf("event order = %v", types)
	}
	progress := 0
	for _, ty := range types[1 : len(types)-1] {
		if ty == bus.ExtractionProgress {
			progress++
		}
	}
	if progress != 3 {
		t.Errorf("progress events = %d, want 3", progress)
	}
}

func TestRunAllCancellation(t *testing.T) {
	reg := NewRegistry()
	started := make(chan struct{})
	reg.Register(Spec{
		Identity: Identity{ID: "SLOW", Module: "FI", Category: CategoryConfig},
		Mock: func(rc *RunContext, rng *rand.Rand) (Output, error) {
			close(started)
			time.Sleep(100 * time.Millisecond)
			return Output{}, nil
		},
	})

	rc := mockContext(t)
	var mu sync.Mutex
	var errEvents []bus.Event
	rc.Bus.Subscribe(func(e bus.Event) {
		if e.Type == bus.ExtractionError {
			mu.Lock()
			errEvents = append(errEvents, e)
			mu.Unlock()
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := RunAll(ctx, reg, rc, RunOptions{Concurrency: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("RunAll err = %v, want context.Canceled", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(errEvents) != 1 {
		t.Fatalf("extraction:error events = %d, want 1", len(errEvents))
	}
	data := errEvents[0].Data.(map[string]any)
	if data["reason"] != "cancelled" {
		t.Errorf("reason = %v, want cancelled", data["reason"])
	}
}

func TestRunRecordsCoverageAndCheckpoint(t *testing.T) {
	rc := mockContext(t)
	spec := fiConfigSpec()

	if _, err := Run(context.Background(), spec, rc); err != nil {
		t.Fatalf("Run: %v", err)
	}

	rep := rc.Coverage.GetReport()
	if rep.Extracted != 1 {
		t.Errorf("extracted = %d, want 1", rep.Extracted)
	}
	if len(rep.CriticalMissed) != 0 {
		t.Errorf("critical_missed = %v, want none", rep.CriticalMissed)
	}

	progress, err := rc.Checkpoints.GetProgress()
	if err != nil {
		t.Fatal(err)
	}
	if !progress["FI_CONFIG"].Complete {
		t.Error("FI_CONFIG should be checkpointed complete")
	}
}

func TestRunSkipsCheckpointedExtractor(t *testing.T) {
	rc := mockContext(t)
	var calls int32
	spec := Spec{
		Identity: Identity{ID: "FI_CONFIG", Name: "FI configuration", Module: "FI", Category: CategoryConfig},
		ExpectedTables: []ExpectedTable{
			{Name: "T001", Description: "Company codes", Critical: true},
		},
		Mock: func(rc *RunContext, rng *rand.Rand) (Output, error) {
			atomic.AddInt32(&calls, 1)
			rc.Coverage.Record("T001", coverage.StatusExtracted, 1, "")
			return Output{"tables": map[string]any{}}, nil
		},
	}

	if _, err := Run(context.Background(), spec, rc); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}

	// A second run over the same checkpoint store finds the completion
	// marker and returns without invoking the extractor again. Expected
	// tables stay undeclared so the resumed run's coverage does not
	// report them as missed.
	rc.Coverage = coverage.NewTracker()
	out, err := Run(context.Background(), spec, rc)
	if err != nil {
		t.Fatalf("resumed run: %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("calls = %d after resume, want 1", calls)
	}
	if len(out) != 0 {
		t.Errorf("resumed output = %v, want empty", out)
	}
	if rep := rc.Coverage.GetReport(); len(rep.CriticalMissed) != 0 {
		t.Errorf("critical_missed = %v, want none", rep.CriticalMissed)
	}
}

func TestMockRandDeterministic(t *testing.T) {
	a := mockRand("run-1", "FI_CONFIG").Int63()
	b := mockRand("run-1", "FI_CONFIG").Int63()
	c := mockRand("run-2", "FI_CONFIG").Int63()

	if a != b {
		t.Error("same run and extractor must seed identically")
	}
	if a == c {
		t.Error("different runs should seed differently")
	}
}

func TestReadTableRecordsFailure(t *testing.T) {
	profile := config.Profile{Name: "M", SourceSystem: config.SystemSAP, Mode: config.ModeMock}
	conn, _ := adapter.NewMock(profile)
	rc := mockContext(t)
	rc.Conn = conn

	res := rc.ReadTable(context.Background(), "NOPE", adapter.ReadOptions{})
	if res.OK() {
		t.Fatal("read of unknown table should fail")
	}

	rep := rc.Coverage.GetReport()
	if rep.Failed != 1 {
		t.Errorf("failed = %d, want 1", rep.Failed)
	}
}
