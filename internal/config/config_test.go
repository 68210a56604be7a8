package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "s4bridge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadResolvesEnvCredential(t *testing.T) {
	t.Setenv("SAP_PRD_PW", "hunter2")
	path := writeConfig(t, `
version: 1
profiles:
  - name: SAP_PRD
    source_system: SAP
    base_url: https://sap.example.com
    auth: basic
    username: extract_user
    credential_ref: ${ENV:SAP_PRD_PW}
    mode: live
    client: "100"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	p := cfg.ProfileByName("SAP_PRD")
	if p == nil {
		t.Fatal("profile SAP_PRD not found")
	}
	if p.Password != "hunter2" {
		t.Errorf("password = %q, want %q", p.Password, "hunter2")
	}
	if p.TimeoutMs != 30000 {
		t.Errorf("timeout_ms default = %d, want 30000", p.TimeoutMs)
	}
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	path := writeConfig(t, "version: 9\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for unsupported version")
	}
}

func TestLoadRejectsBadProfile(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing source_system", "version: 1\nprofiles:\n  - name: X\n"},
		{"bad auth", "version: 1\nprofiles:\n  - name: X\n    source_system: SAP\n    auth: kerberos\n"},
		{"bad mode", "version: 1\nprofiles:\n  - name: X\n    source_system: SAP\n    mode: dry\n"},
		{"live without endpoint", "version: 1\nprofiles:\n  - name: X\n    source_system: SAP\n    mode: live\n"},
		{"duplicate names", "version: 1\nprofiles:\n  - name: X\n    source_system: SAP\n  - name: X\n    source_system: SAP\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.yaml)
			if _, err := Load(path); err == nil {
				t.Errorf("expected error for %s", tc.name)
			}
		})
	}
}

func TestSaveNeverPersistsResolvedSecrets(t *testing.T) {
	cfg := &Config{
		Version: 1,
		Profiles: []Profile{{
			Name:          "M3_QA",
			SourceSystem:  SystemInforM3,
			CredentialRef: "${ENV:M3_PW}",
			Password:      "resolved-secret",
		}},
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "resolved-secret") {
		t.Error("resolved secret written to disk")
	}
	if !strings.Contains(string(data), "${ENV:M3_PW}") {
		t.Error("credential reference should survive a save")
	}
}

func TestResolveValuePassthrough(t *testing.T) {
	got, err := ResolveValue("plain-value")
	if err != nil || got != "plain-value" {
		t.Errorf("ResolveValue = %q, %v, want plain-value, nil", got, err)
	}
}

func TestExpandHome(t *testing.T) {
	home, _ := os.UserHomeDir()
	got := ExpandHome("~/.s4bridge/runs")
	if !strings.HasPrefix(got, home) {
		t.Errorf("ExpandHome = %q, want prefix %q", got, home)
	}
	if ExpandHome("/abs/path") != "/abs/path" {
		t.Error("absolute paths must pass through")
	}
}
