package adapter

import (
	"testing"

	"github.com/s4bridge/s4bridge/internal/config"
)

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"SAP", "INFOR_M3", "INFOR_LN"} {
		if !r.Has(name) {
			t.Errorf("built-in %s missing", name)
		}
	}
	if r.Has("LAWSON") {
		t.Error("LAWSON must not be a built-in")
	}
}

func TestRegistryCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	if !r.Has("sap") || !r.Has("Infor_Ln") {
		t.Error("lookups must be case-insensitive")
	}

	conn, err := r.Create("sap", config.Profile{Name: "P", SourceSystem: "sap"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, ok := conn.(*SAP); !ok {
		t.Errorf("Create(sap) = %T, want *SAP", conn)
	}
}

func TestRegistryRejectsBadRegistration(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("", NewMock); err == nil {
		t.Error("empty name should be rejected")
	}
	if err := r.Register("  ", NewMock); err == nil {
		t.Error("blank name should be rejected")
	}
	if err := r.Register("X", nil); err == nil {
		t.Error("nil factory should be rejected")
	}
}

func TestRegistryUnregisterAndClear(t *testing.T) {
	r := NewRegistry()
	r.Register("LAWSON", NewLawson)
	r.Unregister("lawson")
	if r.Has("LAWSON") {
		t.Error("LAWSON should be gone after Unregister")
	}

	r.Clear()
	if len(r.ListSystems()) != 0 {
		t.Errorf("ListSystems after Clear = %v, want empty", r.ListSystems())
	}
	if _, err := r.Get("SAP"); err == nil {
		t.Error("Get after Clear should fail")
	}
}

func TestRegistryListSystemsSorted(t *testing.T) {
	r := NewRegistry()
	r.Register("MOCK", NewMock)
	got := r.ListSystems()
	want := []string{"INFOR_LN", "INFOR_M3", "MOCK", "SAP"}
	if len(got) != len(want) {
		t.Fatalf("ListSystems = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListSystems[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCreateUsesProfileSystem(t *testing.T) {
	r := NewRegistry()
	conn, err := r.Create("", config.Profile{Name: "LN_QA", SourceSystem: "INFOR_LN"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, ok := conn.(*InforLN); !ok {
		t.Errorf("Create = %T, want *InforLN", conn)
	}
}
