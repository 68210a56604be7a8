package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/s4bridge/s4bridge/internal/bus"
	"github.com/s4bridge/s4bridge/internal/engine"
	"github.com/s4bridge/s4bridge/internal/errs"
	"github.com/s4bridge/s4bridge/internal/gate"
	"github.com/s4bridge/s4bridge/internal/planner"
)

// handleEventHistory returns recent bus events, optionally limited and
// filtered by type prefix ("migration" matches every migration:* event).
func (s *Server) handleEventHistory(w http.ResponseWriter, r *http.Request) {
	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			errorResponse(w, http.StatusBadRequest, "count must be a non-negative integer")
			return
		}
		count = n
	}
	events := s.engine.Bus().History(count, r.URL.Query().Get("type"))

	jsonResponse(w, http.StatusOK, map[string]any{
		"events":  events,
		"clients": s.engine.Bus().SubscriberCount(),
	})
}

// handleEventStream streams bus events as Server-Sent Events. The first
// frame is a connected notice; ?replay=N prepends the N most recent
// retained events before live delivery begins.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		errorResponse(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeFrame(w, bus.Event{Type: bus.Connected, Data: map[string]any{"clients": s.engine.Bus().SubscriberCount() + 1}})
	flusher.Flush()

	if raw := r.URL.Query().Get("replay"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			for _, ev := range s.engine.Bus().History(n, "") {
				writeFrame(w, ev)
			}
			flusher.Flush()
		}
	}

	// A slow client loses events rather than stalling the bus.
	events := make(chan bus.Event, 64)
	unsubscribe := s.engine.Bus().Subscribe(func(ev bus.Event) {
		select {
		case events <- ev:
		default:
		}
	})
	defer unsubscribe()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			if err := writeFrame(w, ev); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeFrame encodes one event as a named SSE frame.
func writeFrame(w http.ResponseWriter, ev bus.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("event: " + ev.Type + "\n")); err != nil {
		return err
	}
	if _, err := w.Write(append(append([]byte("data: "), data...), '\n', '\n')); err != nil {
		return err
	}
	return nil
}

func (s *Server) handleListExtractors(w http.ResponseWriter, r *http.Request) {
	specs := s.engine.Extractors().GetAll()
	list := make([]map[string]any, 0, len(specs))
	for _, spec := range specs {
		list = append(list, map[string]any{
			"extractorId": spec.ID,
			"name":        spec.Name,
			"module":      spec.Module,
			"category":    spec.Category,
			"tables":      spec.ExpectedTables,
		})
	}
	jsonResponse(w, http.StatusOK, map[string]any{"extractors": list, "total": len(list)})
}

func (s *Server) handleExtractRun(w http.ResponseWriter, r *http.Request) {
	var opts engine.ExtractionOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	runID, err := s.engine.StartExtraction(opts)
	if err != nil {
		if errors.Is(err, engine.ErrRunInProgress) {
			errorResponse(w, http.StatusConflict, err.Error())
			return
		}
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusAccepted, map[string]string{"runId": runID})
}

func (s *Server) handleExtractAbort(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.AbortExtraction(); err != nil {
		errorResponse(w, http.StatusConflict, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "aborting"})
}

func (s *Server) handleExtractStatus(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, s.engine.Status())
}

// handleCoverageLatest serves the coverage report of the most recent
// extraction run, 404 before the first run completes.
func (s *Server) handleCoverageLatest(w http.ResponseWriter, r *http.Request) {
	report := s.engine.Status().LastReport
	if report == nil {
		errorResponse(w, http.StatusNotFound, "no extraction run completed yet")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"runId":    report.RunID,
		"coverage": report.Coverage,
	})
}

func (s *Server) handleListObjects(w http.ResponseWriter, r *http.Request) {
	specs := s.engine.Objects().GetAll()
	list := make([]map[string]any, 0, len(specs))
	for _, spec := range specs {
		list = append(list, map[string]any{
			"objectId":     spec.ObjectID,
			"name":         spec.Name,
			"sourceSystem": spec.SourceSystem,
			"targetSystem": spec.TargetSystem,
			"mappings":     len(spec.Mappings),
		})
	}
	jsonResponse(w, http.StatusOK, map[string]any{"objects": list, "total": len(list)})
}

func (s *Server) handleMigrateRun(w http.ResponseWriter, r *http.Request) {
	var opts engine.MigrationOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	results, err := s.engine.RunMigration(r.Context(), opts)
	if err != nil {
		if errors.Is(err, engine.ErrRunInProgress) {
			errorResponse(w, http.StatusConflict, err.Error())
			return
		}
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"results": results})
}

// planRequest is the body of POST /api/migration/plan.
type planRequest struct {
	ForensicResult *planner.ForensicInput `json:"forensicResult"`
	Options        planner.Options        `json:"options"`
}

func (s *Server) handleBuildPlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	plan, err := s.engine.BuildPlan(req.ForensicResult, req.Options)
	if err != nil {
		var e *errs.E
		if errors.As(err, &e) && e.Kind == errs.KindValidation {
			errorResponse(w, http.StatusBadRequest, e.Message)
			return
		}
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, plan)
}

// handleLatestPlan returns the most recent plan with the same shape
// POST /api/migration/plan produces.
func (s *Server) handleLatestPlan(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.engine.Plans().Latest()
	if !ok {
		errorResponse(w, http.StatusNotFound, "no migration plan generated yet")
		return
	}
	jsonResponse(w, http.StatusOK, plan)
}

func (s *Server) handlePlanState(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]any{"state": s.engine.Plans().State()})
}

func (s *Server) handleConnectionsHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, s.engine.Manager().HealthCheck(r.Context()))
}

// operationCheckRequest is the body of POST /api/operations/check.
type operationCheckRequest struct {
	Operation string `json:"operation"`
	Options   struct {
		DryRun any `json:"dryRun"`
	} `json:"options"`
}

// handleOperationCheck runs an operation through the safety gate without
// executing it.
func (s *Server) handleOperationCheck(w http.ResponseWriter, r *http.Request) {
	var req operationCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Operation == "" {
		errorResponse(w, http.StatusBadRequest, "operation is required")
		return
	}
	jsonResponse(w, http.StatusOK, gate.DecideValue(req.Operation, req.Options.DryRun))
}
