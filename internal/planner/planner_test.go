package planner

import (
	"reflect"
	"testing"

	"github.com/s4bridge/s4bridge/internal/errs"
)

func sampleInput() *ForensicInput {
	return &ForensicInput{
		Results: map[string]ObjectResult{
			"FI_TRANSACTIONS": {Count: 100},
			"MM_MATERIALS":    {Count: 50},
		},
		Confidence: map[string]float64{},
		GapReport:  map[string]any{},
	}
}

func TestBuildRequiresForensicData(t *testing.T) {
	for _, input := range []*ForensicInput{nil, {}, {Results: map[string]ObjectResult{}}} {
		_, err := Build(input, Options{})
		if !errs.Is(err, errs.KindValidation) {
			t.Errorf("Build(%v) err = %v, want validation error", input, err)
		}
	}

	_, err := Build(nil, Options{})
	if got := err.(*errs.E).Message; got != "No forensic data available" {
		t.Errorf("message = %q", got)
	}
}

func TestBuildScope(t *testing.T) {
	plan, err := Build(sampleInput(), Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if plan.Scope.TotalObjects != 2 {
		t.Errorf("totalObjects = %d, want 2", plan.Scope.TotalObjects)
	}
	want := []string{"FI", "MM"}
	if !reflect.DeepEqual(plan.Scope.ActiveModules, want) {
		t.Errorf("activeModules = %v, want %v", plan.Scope.ActiveModules, want)
	}
}

func TestBuildModuleFilter(t *testing.T) {
	plan, err := Build(sampleInput(), Options{IncludeModules: []string{"FI"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !reflect.DeepEqual(plan.Scope.ActiveModules, []string{"FI"}) {
		t.Errorf("activeModules = %v, want [FI]", plan.Scope.ActiveModules)
	}
	if len(plan.Objects) != 1 || plan.Objects[0].ObjectID != "FI_TRANSACTIONS" {
		t.Errorf("objects = %v, want only FI_TRANSACTIONS", plan.Objects)
	}

	if _, err := Build(sampleInput(), Options{IncludeModules: []string{"HR"}}); !errs.Is(err, errs.KindValidation) {
		t.Errorf("empty filter result should be a validation error, got %v", err)
	}
}

func TestBuildDeterministic(t *testing.T) {
	a, err := Build(sampleInput(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(sampleInput(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	// generatedAt is excluded from equality.
	a.GeneratedAt = b.GeneratedAt
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs must produce identical plans")
	}
}

func TestComplexityAndWaves(t *testing.T) {
	input := &ForensicInput{
		Results: map[string]ObjectResult{
			"FI_SMALL": {Count: 10},
			"MM_MED":   {Count: 5_000},
			"SD_BIG":   {Count: 200_000},
		},
		Confidence: map[string]float64{"FI_SMALL": 0.9, "MM_MED": 0.9, "SD_BIG": 0.9},
		GapReport:  map[string]any{},
	}
	plan, err := Build(input, Options{})
	if err != nil {
		t.Fatal(err)
	}

	byID := map[string]PlanObject{}
	for _, o := range plan.Objects {
		byID[o.ObjectID] = o
	}
	if byID["FI_SMALL"].Complexity != "low" || byID["MM_MED"].Complexity != "medium" || byID["SD_BIG"].Complexity != "high" {
		t.Errorf("complexities = %v", byID)
	}

	if len(plan.ExecutionPlan) != 3 {
		t.Fatalf("waves = %d, want 3", len(plan.ExecutionPlan))
	}
	if plan.ExecutionPlan[0].Objects[0] != "FI_SMALL" {
		t.Errorf("wave 1 = %v, want FI_SMALL first", plan.ExecutionPlan[0].Objects)
	}
	if plan.ExecutionPlan[2].Objects[0] != "SD_BIG" {
		t.Errorf("last wave = %v, want SD_BIG", plan.ExecutionPlan[2].Objects)
	}
}

func TestRisks(t *testing.T) {
	input := &ForensicInput{
		Results: map[string]ObjectResult{
			"FI_SHAKY": {Count: 10},
			"SD_HUGE":  {Count: 100_000},
		},
		Confidence: map[string]float64{"FI_SHAKY": 0.3, "SD_HUGE": 0.9},
		GapReport:  map[string]any{"critical_missed": []any{"BKPF", "T001"}},
	}
	plan, err := Build(input, Options{})
	if err != nil {
		t.Fatal(err)
	}

	var confidenceRisk, volumeRisk, gapRisk bool
	for _, r := range plan.Risks {
		switch {
		case r.ObjectID == "FI_SHAKY" && r.Severity == "medium":
			confidenceRisk = true
		case r.ObjectID == "SD_HUGE" && r.Severity == "high":
			volumeRisk = true
		case r.ObjectID == "" && r.Severity == "high":
			gapRisk = true
		}
	}
	if !confidenceRisk || !volumeRisk || !gapRisk {
		t.Errorf("risks = %v, want confidence, volume, and gap risks", plan.Risks)
	}
}

func TestEffortRollUp(t *testing.T) {
	plan, err := Build(sampleInput(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if plan.Effort.TotalDays <= 0 {
		t.Errorf("totalDays = %v, want positive", plan.Effort.TotalDays)
	}
	sum := 0.0
	for _, d := range plan.Effort.ByModule {
		sum += d
	}
	if sum != plan.Effort.TotalDays {
		t.Errorf("byModule sum = %v, totalDays = %v", sum, plan.Effort.TotalDays)
	}
}

func TestStoreStateMachine(t *testing.T) {
	s := NewStore()
	if s.State() != StateMissing {
		t.Errorf("state = %s, want missing", s.State())
	}
	if _, ok := s.Latest(); ok {
		t.Error("Latest should report no plan initially")
	}

	first, _ := Build(sampleInput(), Options{})
	s.Set(first)
	if s.State() != StateAvailable {
		t.Errorf("state = %s, want available", s.State())
	}
	if got, ok := s.Latest(); !ok || got != first {
		t.Error("Latest should return the stored plan")
	}

	second, _ := Build(sampleInput(), Options{})
	s.Set(second)
	if s.State() != StateRefreshed {
		t.Errorf("state = %s, want refreshed", s.State())
	}
	if got, _ := s.Latest(); got != second {
		t.Error("Latest should return the refreshed plan")
	}
}
