// Package catalog declares the built-in extractors, grouped by source
// system. Nothing here registers itself; the composition root calls
// RegisterAll against its registry.
package catalog

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/s4bridge/s4bridge/internal/adapter"
	"github.com/s4bridge/s4bridge/internal/coverage"
	"github.com/s4bridge/s4bridge/internal/extract"
)

// RegisterAll registers every built-in extractor spec.
func RegisterAll(reg *extract.Registry) error {
	groups := [][]extract.Spec{
		sapSpecs(),
		inforLNSpecs(),
		inforM3Specs(),
		lawsonSpecs(),
	}
	for _, group := range groups {
		for _, spec := range group {
			if err := reg.Register(spec); err != nil {
				return fmt.Errorf("registering catalog: %w", err)
			}
		}
	}
	return nil
}

// tables builds the expected-table list from (name, description,
// critical) triples.
func tables(entries ...extract.ExpectedTable) []extract.ExpectedTable {
	return entries
}

func tab(name, description string, critical bool) extract.ExpectedTable {
	return extract.ExpectedTable{Name: name, Description: description, Critical: critical}
}

// liveTables is the standard live extraction: read every expected table
// through the covered read helper and group the survivors under
// "tables". Failed reads are already in coverage; they simply have no
// entry in the output.
func liveTables(expected []extract.ExpectedTable) func(context.Context, *extract.RunContext) (extract.Output, error) {
	return func(ctx context.Context, rc *extract.RunContext) (extract.Output, error) {
		out := make(map[string]any, len(expected))
		for _, t := range expected {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			res := rc.ReadTable(ctx, t.Name, adapter.ReadOptions{})
			if res.OK() {
				out[t.Name] = res.Rows
			}
		}
		return extract.Output{"tables": out}, nil
	}
}

// mockTables wraps a fixture generator: generated tables are recorded
// as extracted so mock runs produce the same coverage shape as live.
func mockTables(gen func(rng *rand.Rand) map[string][]adapter.Row) func(*extract.RunContext, *rand.Rand) (extract.Output, error) {
	return func(rc *extract.RunContext, rng *rand.Rand) (extract.Output, error) {
		generated := gen(rng)
		out := make(map[string]any, len(generated))
		for name, rows := range generated {
			rc.Coverage.Record(name, coverage.StatusExtracted, len(rows), "")
			out[name] = rows
		}
		return extract.Output{"tables": out}, nil
	}
}

// tableSpec assembles the common table-driven extractor shape.
func tableSpec(id, name, module, category string, expected []extract.ExpectedTable, gen func(rng *rand.Rand) map[string][]adapter.Row) extract.Spec {
	return extract.Spec{
		Identity:       extract.Identity{ID: id, Name: name, Module: module, Category: category},
		ExpectedTables: expected,
		Live:           liveTables(expected),
		Mock:           mockTables(gen),
	}
}

// pick returns one of the options, chosen by the seeded generator.
func pick(rng *rand.Rand, options ...string) string {
	return options[rng.Intn(len(options))]
}

// id4 formats n as a zero-padded four digit identifier.
func id4(n int) string { return fmt.Sprintf("%04d", n) }
