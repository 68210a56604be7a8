// Package catalog declares the built-in migration objects per source
// system. The composition root registers them with RegisterAll.
package catalog

import (
	"context"
	"fmt"

	"github.com/s4bridge/s4bridge/internal/adapter"
	"github.com/s4bridge/s4bridge/internal/migrate"
)

// TargetS4 is the target system every built-in object migrates into.
const TargetS4 = "S4HANA"

// RegisterAll registers every built-in migration object spec.
func RegisterAll(reg *migrate.Registry) error {
	groups := [][]migrate.Spec{
		sapObjects(),
		inforLNObjects(),
		inforM3Objects(),
		lawsonObjects(),
	}
	for _, group := range groups {
		for _, spec := range group {
			if err := reg.Register(spec); err != nil {
				return fmt.Errorf("registering object catalog: %w", err)
			}
		}
	}
	return nil
}

// liveTable is the common live extraction: one source table, read
// whole.
func liveTable(table string) func(context.Context, adapter.Connection) ([]adapter.Row, error) {
	return func(ctx context.Context, conn adapter.Connection) ([]adapter.Row, error) {
		return conn.ReadTable(ctx, table, adapter.ReadOptions{})
	}
}

func requiredCheck(fields ...string) migrate.QualityChecks {
	return migrate.QualityChecks{Required: fields}
}
