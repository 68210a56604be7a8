//go:build integration

package integration

import (
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/s4bridge/s4bridge/internal/api"
	"github.com/s4bridge/s4bridge/internal/config"
	"github.com/s4bridge/s4bridge/internal/engine"
)

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// liveProfile builds a live SAP profile from the test environment, or
// skips the test when no gateway is configured.
func liveProfile(t *testing.T) config.Profile {
	t.Helper()
	baseURL := os.Getenv("S4BRIDGE_TEST_BASE_URL")
	if baseURL == "" {
		t.Skip("S4BRIDGE_TEST_BASE_URL not set")
	}
	return config.Profile{
		Name:         "LIVE_TEST",
		SourceSystem: envOrDefault("S4BRIDGE_TEST_SYSTEM", config.SystemSAP),
		BaseURL:      baseURL,
		Auth:         config.AuthBasic,
		Username:     envOrDefault("S4BRIDGE_TEST_USERNAME", "extract_user"),
		Mode:         config.ModeLive,
		TimeoutMs:    30_000,
	}
}

// startStack builds an engine plus API server over a temp runs root.
func startStack(t *testing.T, profiles ...config.Profile) (*engine.Engine, *httptest.Server) {
	t.Helper()
	cfg := &config.Config{
		Version:  config.CurrentVersion,
		Profiles: profiles,
		Runs:     config.Runs{Root: t.TempDir()},
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	eng, err := engine.New(cfg, logger)
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(api.Handler(eng, logger))
	t.Cleanup(srv.Close)
	return eng, srv
}

func mockProfile() config.Profile {
	return config.Profile{
		Name:         "MOCK",
		SourceSystem: config.SystemSAP,
		Mode:         config.ModeMock,
		TimeoutMs:    1000,
	}
}
