package extract

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/s4bridge/s4bridge/internal/bus"
)

// DefaultConcurrency bounds how many extractors run in parallel when
// RunOptions does not say otherwise.
const DefaultConcurrency = 4

// RunOptions filters and bounds a RunAll invocation.
type RunOptions struct {
	Concurrency int
	Modules     []string
	Categories  []string
}

// Result is one extractor's outcome inside a run. Exactly one of Data
// and Err is meaningful.
type Result struct {
	Data Output `json:"data,omitempty"`
	Err  error  `json:"-"`
}

// RunAll executes every matching extractor with bounded concurrency.
// A failing extractor surfaces as its own Result entry and never stops
// the others. Cancellation stops scheduling, emits extraction:error
// with reason cancelled, and still returns the partial results.
func RunAll(ctx context.Context, reg *Registry, rc *RunContext, opts RunOptions) (map[string]Result, error) {
	specs := selectSpecs(reg, opts)

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	emit := func(eventType string, data map[string]any) {
		if rc.Bus != nil {
			rc.Bus.Emit(eventType, data)
		}
	}
	emit(bus.ExtractionStart, map[string]any{
		"runId": rc.RunID,
		"mode":  rc.Mode,
		"total": len(specs),
	})

	var (
		mu        sync.Mutex
		results   = make(map[string]Result, len(specs))
		completed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, spec := range specs {
		spec := spec
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			out, err := runIsolated(gctx, spec, rc)

			mu.Lock()
			if err != nil {
				results[spec.ID] = Result{Err: err}
			} else {
				results[spec.ID] = Result{Data: out}
			}
			completed++
			done := completed
			mu.Unlock()

			if err != nil && rc.Logger != nil {
				rc.Logger.Error("extractor failed", "extractor", spec.ID, "error", err)
			}
			emit(bus.ExtractionProgress, map[string]any{
				"extractorId": spec.ID,
				"completed":   done,
				"total":       len(specs),
			})
			return nil
		})
	}
	g.Wait()

	if ctx.Err() != nil {
		emit(bus.ExtractionError, map[string]any{
			"runId":  rc.RunID,
			"reason": "cancelled",
		})
		return results, ctx.Err()
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	emit(bus.ExtractionComplete, map[string]any{
		"runId":      rc.RunID,
		"extractors": len(results),
		"failed":     failed,
	})
	return results, nil
}

// runIsolated converts an extractor panic into an error so one broken
// extractor cannot take down the run.
func runIsolated(ctx context.Context, spec Spec, rc *RunContext) (out Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extractor %s panicked: %v", spec.ID, r)
		}
	}()
	return Run(ctx, spec, rc)
}

func selectSpecs(reg *Registry, opts RunOptions) []Spec {
	all := reg.GetAll()
	if len(opts.Modules) == 0 && len(opts.Categories) == 0 {
		return all
	}

	modules := toSet(opts.Modules)
	categories := toSet(opts.Categories)
	var out []Spec
	for _, s := range all {
		if len(modules) > 0 && !modules[s.Module] {
			continue
		}
		if len(categories) > 0 && !categories[s.Category] {
			continue
		}
		out = append(out, s)
	}
	return out
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
