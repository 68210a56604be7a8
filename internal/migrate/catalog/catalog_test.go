package catalog

import (
	"context"
	"testing"

	"github.com/s4bridge/s4bridge/internal/bus"
	"github.com/s4bridge/s4bridge/internal/config"
	"github.com/s4bridge/s4bridge/internal/migrate"
)

func registeredCatalog(t *testing.T) *migrate.Registry {
	t.Helper()
	reg := migrate.NewRegistry()
	if err := RegisterAll(reg); err != nil {
		t.Fatal(err)
	}
	return reg
}

func mockRun(t *testing.T, reg *migrate.Registry, objectID string) *migrate.RunResult {
	t.Helper()
	spec, ok := reg.Get(objectID)
	if !ok {
		t.Fatalf("object %s not registered", objectID)
	}
	rc := &migrate.RunContext{Mode: config.ModeMock, RunID: "run-test", Bus: bus.New(nil)}
	return migrate.Run(context.Background(), spec, rc)
}

func TestCatalogSize(t *testing.T) {
	reg := registeredCatalog(t)
	if got := len(reg.GetAll()); got < 40 {
		t.Errorf("catalog has %d objects, want at least 40", got)
	}
}

func TestCatalogCoversAllSourceSystems(t *testing.T) {
	reg := registeredCatalog(t)
	counts := map[string]int{}
	for _, s := range reg.GetAll() {
		counts[s.SourceSystem]++
	}
	for _, system := range []string{
		config.SystemSAP, config.SystemInforLN, config.SystemInforM3, config.SystemLawson,
	} {
		if counts[system] == 0 {
			t.Errorf("no objects for source system %s", system)
		}
	}
}

func TestInforLNGLAccountLifecycle(t *testing.T) {
	reg := registeredCatalog(t)
	result := mockRun(t, reg, "INFOR_LN_GL_ACCOUNT")

	if result.ObjectID != "INFOR_LN_GL_ACCOUNT" {
		t.Errorf("objectId = %s", result.ObjectID)
	}
	// 20 ledger accounts across 2 companies.
	if result.Phases.Extract.RecordCount != 40 {
		t.Errorf("extract count = %d, want 40", result.Phases.Extract.RecordCount)
	}
	if result.Phases.Validate.Status != migrate.StatusCompleted {
		t.Errorf("validate status = %s, want completed (violations: %v)",
			result.Phases.Validate.Status, result.Phases.Validate.Violations)
	}
	if result.Status != migrate.StatusCompleted {
		t.Errorf("status = %s, want completed", result.Status)
	}
}

func TestAllObjectsRunCleanInMockMode(t *testing.T) {
	reg := registeredCatalog(t)
	for _, spec := range reg.GetAll() {
		result := mockRun(t, reg, spec.ObjectID)
		if result.Status == migrate.StatusFailed {
			t.Errorf("%s failed: %s", spec.ObjectID, result.Phases.Extract.Error)
			continue
		}
		if result.Status != migrate.StatusCompleted {
			t.Errorf("%s = %s, violations %v", spec.ObjectID, result.Status,
				result.Phases.Validate.Violations)
		}
		if result.Phases.Extract.RecordCount == 0 {
			t.Errorf("%s extracted no mock records", spec.ObjectID)
		}
	}
}

func TestMappedRecordShapes(t *testing.T) {
	reg := registeredCatalog(t)

	result := mockRun(t, reg, "SAP_COMPANY_CODE")
	first := result.Records[0]
	if first["CompanyCode"] != "1000" {
		t.Errorf("CompanyCode = %v, want 1000", first["CompanyCode"])
	}
	if first["Country"] != "DE" {
		t.Errorf("Country = %v, want DE (uppercased)", first["Country"])
	}

	result = mockRun(t, reg, "SAP_GL_ACCOUNT")
	if got := result.Records[0]["GLAccount"]; got != "0000100000" {
		t.Errorf("GLAccount = %v, want 0000100000", got)
	}
}
