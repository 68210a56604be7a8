package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/s4bridge/s4bridge/internal/bus"
	"github.com/s4bridge/s4bridge/internal/config"
	"github.com/s4bridge/s4bridge/internal/engine"
)

func testServer(t *testing.T) (*engine.Engine, *httptest.Server) {
	t.Helper()
	cfg := &config.Config{
		Version: config.CurrentVersion,
		Profiles: []config.Profile{
			{Name: "MOCK", SourceSystem: config.SystemSAP, Mode: config.ModeMock, TimeoutMs: 1000},
		},
		Runs: config.Runs{Root: t.TempDir()},
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	eng, err := engine.New(cfg, logger)
	if err != nil {
		t.Fatal(err)
	}

	s := New(eng, logger, 0)
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return eng, srv
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s: %v", url, err)
		}
	}
}

func postJSON(t *testing.T, url string, body string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		var raw bytes.Buffer
		raw.ReadFrom(resp.Body)
		t.Fatalf("POST %s status = %d, want %d: %s", url, resp.StatusCode, wantStatus, raw.String())
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s: %v", url, err)
		}
	}
}

func TestHealth(t *testing.T) {
	_, srv := testServer(t)
	var body map[string]string
	getJSON(t, srv.URL+"/api/health", http.StatusOK, &body)
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestEventHistoryFilter(t *testing.T) {
	eng, srv := testServer(t)
	eng.Bus().Emit(bus.ExtractionStart, map[string]any{"runId": "r1"})
	eng.Bus().Emit(bus.ExtractionProgress, map[string]any{"runId": "r1"})
	eng.Bus().Emit(bus.MigrationStart, map[string]any{"objectId": "SAP_GL_ACCOUNT"})

	var body struct {
		Events  []bus.Event `json:"events"`
		Clients int         `json:"clients"`
	}
	getJSON(t, srv.URL+"/api/events/history?type=migration", http.StatusOK, &body)

	if len(body.Events) != 1 {
		t.Fatalf("events = %d, want 1", len(body.Events))
	}
	if body.Events[0].Type != bus.MigrationStart {
		t.Errorf("type = %q, want %q", body.Events[0].Type, bus.MigrationStart)
	}
}

func TestEventHistoryCount(t *testing.T) {
	eng, srv := testServer(t)
	for i := 0; i < 5; i++ {
		eng.Bus().Emit(bus.ExtractionProgress, map[string]any{"completed": i})
	}

	var body struct {
		Events []bus.Event `json:"events"`
	}
	getJSON(t, srv.URL+"/api/events/history?count=2", http.StatusOK, &body)
	if len(body.Events) != 2 {
		t.Errorf("events = %d, want 2", len(body.Events))
	}

	resp, err := http.Get(srv.URL + "/api/events/history?count=-1")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative count status = %d, want 400", resp.StatusCode)
	}
}

func TestEventStreamConnectedFrame(t *testing.T) {
	_, srv := testServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("content type = %q", got)
	}

	scanner := bufio.NewScanner(resp.Body)
	if !scanner.Scan() {
		t.Fatal("no first frame")
	}
	if got := scanner.Text(); got != "event: connected" {
		t.Errorf("first frame = %q, want %q", got, "event: connected")
	}
}

func TestEventStreamReplay(t *testing.T) {
	eng, srv := testServer(t)
	eng.Bus().Emit(bus.ExtractionStart, map[string]any{"runId": "r1"})
	eng.Bus().Emit(bus.ExtractionComplete, map[string]any{"runId": "r1"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events?replay=10", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var names []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() && len(names) < 3 {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") {
			names = append(names, strings.TrimPrefix(line, "event: "))
		}
	}
	want := []string{"connected", bus.ExtractionStart, bus.ExtractionComplete}
	for i, name := range want {
		if i >= len(names) || names[i] != name {
			t.Fatalf("frames = %v, want %v", names, want)
		}
	}
}

func TestBuildPlanAndLatest(t *testing.T) {
	_, srv := testServer(t)

	// No plan yet.
	getJSON(t, srv.URL+"/api/migration/plan/latest", http.StatusNotFound, nil)

	body := `{
		"forensicResult": {
			"results": {"FI_TRANSACTIONS": {"count": 100}, "MM_MATERIALS": {"count": 50}},
			"confidence": {},
			"gapReport": {}
		},
		"options": {"includeModules": ["FI"]}
	}`
	var plan struct {
		Scope struct {
			TotalObjects  int      `json:"totalObjects"`
			ActiveModules []string `json:"activeModules"`
		} `json:"scope"`
	}
	postJSON(t, srv.URL+"/api/migration/plan", body, http.StatusOK, &plan)
	if len(plan.Scope.ActiveModules) != 1 || plan.Scope.ActiveModules[0] != "FI" {
		t.Errorf("activeModules = %v, want [FI]", plan.Scope.ActiveModules)
	}
	if plan.Scope.TotalObjects != 1 {
		t.Errorf("totalObjects = %d, want 1", plan.Scope.TotalObjects)
	}

	// The latest plan comes back with the same shape the build returned.
	var latest struct {
		Scope struct {
			TotalObjects  int      `json:"totalObjects"`
			ActiveModules []string `json:"activeModules"`
		} `json:"scope"`
	}
	getJSON(t, srv.URL+"/api/migration/plan/latest", http.StatusOK, &latest)
	if latest.Scope.TotalObjects != plan.Scope.TotalObjects {
		t.Errorf("latest totalObjects = %d, want %d", latest.Scope.TotalObjects, plan.Scope.TotalObjects)
	}
	if len(latest.Scope.ActiveModules) != 1 || latest.Scope.ActiveModules[0] != "FI" {
		t.Errorf("latest activeModules = %v, want [FI]", latest.Scope.ActiveModules)
	}
}

func TestPlanState(t *testing.T) {
	_, srv := testServer(t)

	var state map[string]string
	getJSON(t, srv.URL+"/api/migration/plan/state", http.StatusOK, &state)
	if state["state"] != "missing" {
		t.Errorf("state = %q, want missing", state["state"])
	}

	body := `{
		"forensicResult": {
			"results": {"FI_TRANSACTIONS": {"count": 100}},
			"confidence": {},
			"gapReport": {}
		},
		"options": {}
	}`
	postJSON(t, srv.URL+"/api/migration/plan", body, http.StatusOK, nil)

	getJSON(t, srv.URL+"/api/migration/plan/state", http.StatusOK, &state)
	if state["state"] != "available" {
		t.Errorf("state = %q, want available", state["state"])
	}
}

func TestBuildPlanRequiresForensicData(t *testing.T) {
	_, srv := testServer(t)

	var body map[string]string
	postJSON(t, srv.URL+"/api/migration/plan", `{}`, http.StatusBadRequest, &body)
	if body["error"] != "No forensic data available" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestListExtractorsAndObjects(t *testing.T) {
	_, srv := testServer(t)

	var extractors struct {
		Total int `json:"total"`
	}
	getJSON(t, srv.URL+"/api/extractors", http.StatusOK, &extractors)
	if extractors.Total < 30 {
		t.Errorf("extractors = %d, want at least 30", extractors.Total)
	}

	var objects struct {
		Total int `json:"total"`
	}
	getJSON(t, srv.URL+"/api/objects", http.StatusOK, &objects)
	if objects.Total < 40 {
		t.Errorf("objects = %d, want at least 40", objects.Total)
	}
}

func TestExtractRunLifecycle(t *testing.T) {
	eng, srv := testServer(t)

	// No coverage before the first run.
	getJSON(t, srv.URL+"/api/coverage/latest", http.StatusNotFound, nil)

	var started map[string]string
	postJSON(t, srv.URL+"/api/extract/run", `{"profile":"MOCK","modules":["FI"]}`, http.StatusAccepted, &started)
	if started["runId"] == "" {
		t.Fatal("no runId returned")
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if st := eng.Status(); !st.Running && st.LastReport != nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	var coverage struct {
		RunID string `json:"runId"`
	}
	getJSON(t, srv.URL+"/api/coverage/latest", http.StatusOK, &coverage)
	if coverage.RunID != started["runId"] {
		t.Errorf("coverage runId = %q, want %q", coverage.RunID, started["runId"])
	}
}

func TestExtractRunUnknownProfile(t *testing.T) {
	_, srv := testServer(t)
	postJSON(t, srv.URL+"/api/extract/run", `{"profile":"NOPE"}`, http.StatusBadRequest, nil)
}

func TestExtractAbortWithoutRun(t *testing.T) {
	_, srv := testServer(t)
	resp, err := http.Post(srv.URL+"/api/extract/abort", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestMigrateRun(t *testing.T) {
	_, srv := testServer(t)

	var body struct {
		Results []struct {
			ObjectID string `json:"objectId"`
			Status   string `json:"status"`
		} `json:"results"`
	}
	postJSON(t, srv.URL+"/api/migrate/run", `{"profile":"MOCK","objectIds":["INFOR_LN_GL_ACCOUNT"]}`, http.StatusOK, &body)
	if len(body.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(body.Results))
	}
	if body.Results[0].Status != "completed" {
		t.Errorf("status = %q, want completed", body.Results[0].Status)
	}
}

func TestOperationCheck(t *testing.T) {
	_, srv := testServer(t)

	cases := []struct {
		body    string
		allowed bool
	}{
		{`{"operation":"readTable"}`, true},
		{`{"operation":"load","options":{"dryRun":false}}`, true},
		{`{"operation":"load","options":{"dryRun":true}}`, false},
		{`{"operation":"load"}`, false},
		{`{"operation":"dropDatabase","options":{"dryRun":false}}`, false},
	}
	for _, tc := range cases {
		var decision struct {
			Allowed bool   `json:"allowed"`
			Reason  string `json:"reason"`
		}
		postJSON(t, srv.URL+"/api/operations/check", tc.body, http.StatusOK, &decision)
		if decision.Allowed != tc.allowed {
			t.Errorf("%s: allowed = %v, want %v", tc.body, decision.Allowed, tc.allowed)
		}
	}
}

func TestConnectionsHealthEmpty(t *testing.T) {
	_, srv := testServer(t)
	var health struct {
		Overall string `json:"overall"`
	}
	getJSON(t, srv.URL+"/api/connections/health", http.StatusOK, &health)
	if health.Overall != "no_connections" {
		t.Errorf("overall = %q, want no_connections", health.Overall)
	}
}
