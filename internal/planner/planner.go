// Package planner turns forensic extraction results into a migration
// plan: scope, per-object assessments, execution waves, an effort
// estimate, and risks. Identical inputs produce identical plans apart
// from the generation timestamp.
package planner

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/s4bridge/s4bridge/internal/errs"
)

// ObjectResult is one object's forensic summary.
type ObjectResult struct {
	Count int `json:"count"`
}

// ForensicInput is the planner's input bundle.
type ForensicInput struct {
	Results         map[string]ObjectResult `json:"results"`
	Confidence      map[string]float64      `json:"confidence"`
	GapReport       map[string]any          `json:"gapReport"`
	HumanValidation map[string]any          `json:"humanValidation,omitempty"`
}

// Options narrows the plan.
type Options struct {
	IncludeModules []string `json:"includeModules,omitempty"`
}

// Scope summarizes what the plan covers.
type Scope struct {
	TotalObjects  int      `json:"totalObjects"`
	ActiveModules []string `json:"activeModules"`
}

// PlanObject is one object's assessment inside the plan.
type PlanObject struct {
	ObjectID    string  `json:"objectId"`
	Module      string  `json:"module"`
	RecordCount int     `json:"recordCount"`
	Confidence  float64 `json:"confidence"`
	Complexity  string  `json:"complexity"` // low, medium, high
	EffortDays  float64 `json:"effortDays"`
}

// Wave is one ordered step of the execution plan.
type Wave struct {
	Wave        int      `json:"wave"`
	Description string   `json:"description"`
	Objects     []string `json:"objects"`
}

// Effort is the roll-up estimate.
type Effort struct {
	TotalDays float64            `json:"totalDays"`
	ByModule  map[string]float64 `json:"byModule"`
}

// Risk is one identified migration risk.
type Risk struct {
	ObjectID    string `json:"objectId,omitempty"`
	Severity    string `json:"severity"` // low, medium, high
	Description string `json:"description"`
}

// Plan is the generated migration plan.
type Plan struct {
	Scope         Scope        `json:"scope"`
	Objects       []PlanObject `json:"objects"`
	ExecutionPlan []Wave       `json:"executionPlan"`
	Effort        Effort       `json:"effort"`
	Risks         []Risk       `json:"risks"`
	GeneratedAt   time.Time    `json:"generatedAt"`
}

// Complexity thresholds on record count.
const (
	mediumComplexityAt = 1_000
	highComplexityAt   = 50_000
)

// Build produces a plan from forensic input. It fails with a validation
// error when no forensic data is present.
func Build(input *ForensicInput, opts Options) (*Plan, error) {
	if input == nil || len(input.Results) == 0 {
		return nil, errs.Validation("No forensic data available", nil)
	}

	include := toSet(opts.IncludeModules)

	objects := make([]PlanObject, 0, len(input.Results))
	moduleSet := make(map[string]bool)
	for objectID, res := range input.Results {
		module := moduleOf(objectID)
		if include != nil && !include[module] {
			continue
		}
		moduleSet[module] = true

		confidence, ok := input.Confidence[objectID]
		if !ok {
			confidence = 0.5 // unassessed
		}
		objects = append(objects, PlanObject{
			ObjectID:    objectID,
			Module:      module,
			RecordCount: res.Count,
			Confidence:  confidence,
			Complexity:  complexityOf(res.Count),
			EffortDays:  effortDays(res.Count, confidence),
		})
	}
	if len(objects) == 0 {
		return nil, errs.Validation("No forensic data available", []string{
			"no objects match the requested modules",
		})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].ObjectID < objects[j].ObjectID })

	modules := make([]string, 0, len(moduleSet))
	for m := range moduleSet {
		modules = append(modules, m)
	}
	sort.Strings(modules)

	plan := &Plan{
		Scope: Scope{
			TotalObjects:  len(objects),
			ActiveModules: modules,
		},
		Objects:       objects,
		ExecutionPlan: buildWaves(objects),
		Effort:        rollUpEffort(objects),
		Risks:         assessRisks(objects, input),
		GeneratedAt:   time.Now().UTC(),
	}
	return plan, nil
}

// moduleOf derives the module from the object id: the segment before
// the first underscore.
func moduleOf(objectID string) string {
	if i := strings.Index(objectID, "_"); i > 0 {
		return objectID[:i]
	}
	return objectID
}

func complexityOf(count int) string {
	switch {
	case count >= highComplexityAt:
		return "high"
	case count >= mediumComplexityAt:
		return "medium"
	default:
		return "low"
	}
}

// effortDays is a deliberately simple deterministic model: a base per
// object, volume scaling, and a surcharge for shaky confidence.
func effortDays(count int, confidence float64) float64 {
	days := 0.5 + float64(count)/20_000
	if confidence < 0.5 {
		days *= 1.5
	}
	return math.Round(days*10) / 10
}

// buildWaves orders execution: low complexity first, then medium, then
// high; stable by object id inside a wave.
func buildWaves(objects []PlanObject) []Wave {
	byComplexity := map[string][]string{}
	for _, o := range objects {
		byComplexity[o.Complexity] = append(byComplexity[o.Complexity], o.ObjectID)
	}

	var waves []Wave
	number := 1
	for _, tier := range []struct {
		complexity  string
		description string
	}{
		{"low", "Low complexity objects, migrate first"},
		{"medium", "Medium complexity objects"},
		{"high", "High volume objects, migrate last with dedicated windows"},
	} {
		ids := byComplexity[tier.complexity]
		if len(ids) == 0 {
			continue
		}
		sort.Strings(ids)
		waves = append(waves, Wave{Wave: number, Description: tier.description, Objects: ids})
		number++
	}
	return waves
}

func rollUpEffort(objects []PlanObject) Effort {
	effort := Effort{ByModule: make(map[string]float64)}
	for _, o := range objects {
		effort.TotalDays += o.EffortDays
		effort.ByModule[o.Module] += o.EffortDays
	}
	effort.TotalDays = math.Round(effort.TotalDays*10) / 10
	for m, d := range effort.ByModule {
		effort.ByModule[m] = math.Round(d*10) / 10
	}
	return effort
}

func assessRisks(objects []PlanObject, input *ForensicInput) []Risk {
	var risks []Risk
	for _, o := range objects {
		if o.Confidence < 0.5 {
			risks = append(risks, Risk{
				ObjectID: o.ObjectID, Severity: "medium",
				Description: fmt.Sprintf("confidence %.2f below 0.50, mapping needs review", o.Confidence),
			})
		}
		if o.Complexity == "high" {
			risks = append(risks, Risk{
				ObjectID: o.ObjectID, Severity: "high",
				Description: fmt.Sprintf("%d records, requires a dedicated cutover window", o.RecordCount),
			})
		}
	}
	if missed, ok := input.GapReport["critical_missed"].([]any); ok && len(missed) > 0 {
		names := make([]string, 0, len(missed))
		for _, m := range missed {
			names = append(names, fmt.Sprintf("%v", m))
		}
		sort.Strings(names)
		risks = append(risks, Risk{
			Severity:    "high",
			Description: "critical tables not extracted: " + strings.Join(names, ", "),
		})
	}
	sort.Slice(risks, func(i, j int) bool {
		if risks[i].ObjectID != risks[j].ObjectID {
			return risks[i].ObjectID < risks[j].ObjectID
		}
		return risks[i].Description < risks[j].Description
	})
	return risks
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
