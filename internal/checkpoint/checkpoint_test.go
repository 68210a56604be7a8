package checkpoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSaveLoadRoundtrip(t *testing.T) {
	s := testStore(t)

	in := map[string]any{"lastRow": float64(500), "table": "T001"}
	if err := s.Save("FI_CONFIG", "t001", in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var out map[string]any
	found, err := s.Load("FI_CONFIG", "t001", &out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatal("checkpoint not found after Save")
	}
	if out["lastRow"] != float64(500) || out["table"] != "T001" {
		t.Errorf("payload = %v, want %v", out, in)
	}
}

func TestLoadMissing(t *testing.T) {
	s := testStore(t)
	var out map[string]any
	found, err := s.Load("FI_CONFIG", "missing", &out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if found {
		t.Error("found = true for missing checkpoint")
	}
}

func TestLoadRefusesUnknownSchemaVersion(t *testing.T) {
	s := testStore(t)
	dir := filepath.Join(s.Root(), "FI_CONFIG")
	os.MkdirAll(dir, 0o755)
	data, _ := json.Marshal(map[string]any{"schema_version": 99, "payload": map[string]any{}})
	os.WriteFile(filepath.Join(dir, "t001.json"), data, 0o644)

	if _, err := s.Load("FI_CONFIG", "t001", nil); err == nil {
		t.Error("expected error for unknown schema version")
	}
}

func TestExists(t *testing.T) {
	s := testStore(t)
	if s.Exists("FI_CONFIG", "t001") {
		t.Error("Exists = true before Save")
	}
	s.Save("FI_CONFIG", "t001", map[string]any{})
	if !s.Exists("FI_CONFIG", "t001") {
		t.Error("Exists = false after Save")
	}
}

func TestClearScopedToExtractor(t *testing.T) {
	s := testStore(t)
	s.Save("FI_CONFIG", "t001", 1)
	s.Save("FI_CONFIG", "t003", 2)
	s.Save("CO_CONFIG", "tka01", 3)

	if err := s.Clear("FI_CONFIG"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s.Exists("FI_CONFIG", "t001") || s.Exists("FI_CONFIG", "t003") {
		t.Error("FI_CONFIG checkpoints survived Clear")
	}
	if !s.Exists("CO_CONFIG", "tka01") {
		t.Error("Clear must not touch other extractors")
	}
}

func TestClearAll(t *testing.T) {
	s := testStore(t)
	s.Save("FI_CONFIG", "t001", 1)
	s.Save("CO_CONFIG", "tka01", 2)

	if err := s.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	progress, err := s.GetProgress()
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if len(progress) != 0 {
		t.Errorf("progress after ClearAll = %v, want empty", progress)
	}
}

func TestGetProgress(t *testing.T) {
	s := testStore(t)
	s.Save("FI_CONFIG", "t001", 1)
	s.Save("FI_CONFIG", "t003", 2)
	s.Save("FI_CONFIG", StepComplete, map[string]any{"rows": 40})
	s.Save("CO_CONFIG", "tka01", 3)

	progress, err := s.GetProgress()
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}

	fi := progress["FI_CONFIG"]
	if !fi.Complete || fi.CheckpointCount != 3 {
		t.Errorf("FI_CONFIG = %+v, want complete with 3 checkpoints", fi)
	}
	co := progress["CO_CONFIG"]
	if co.Complete || co.CheckpointCount != 1 {
		t.Errorf("CO_CONFIG = %+v, want incomplete with 1 checkpoint", co)
	}
}

func TestRejectsPathTraversal(t *testing.T) {
	s := testStore(t)
	if err := s.Save("../evil", "step", 1); err == nil {
		t.Error("extractor id with path elements should be rejected")
	}
	if err := s.Save("FI_CONFIG", "a/b", 1); err == nil {
		t.Error("step id with path elements should be rejected")
	}
}
