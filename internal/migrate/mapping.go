// Package migrate implements the migration-object framework: a field
// mapping DSL, data quality checks, and the four-phase
// extract-transform-validate-load lifecycle run per object.
package migrate

import (
	"fmt"

	"github.com/s4bridge/s4bridge/internal/adapter"
)

// Transform is a pure per-field function; it sees the already-looked-up
// value and the whole source row.
type Transform func(v any, row adapter.Row) any

// Mapping is one entry of an object's field mapping. Build one with the
// tagged constructors below, then refine with the With* methods. During
// application the precedence is fixed: source lookup, valueMap,
// default, transform, convert.
type Mapping struct {
	Source string
	Target string

	valueMap  map[string]string
	def       string
	hasDef    bool
	transform Transform
	convert   *Converter
}

// Constant maps a fixed value to target with no source column.
func Constant(target, value string) Mapping {
	return Mapping{Target: target, def: value, hasDef: true}
}

// Direct copies source to target unchanged.
func Direct(source, target string) Mapping {
	return Mapping{Source: source, Target: target}
}

// Converted copies source to target through a conversion.
func Converted(source, target string, c Converter) Mapping {
	return Mapping{Source: source, Target: target, convert: &c}
}

// Mapped translates source values through a lookup table.
func Mapped(source, target string, valueMap map[string]string) Mapping {
	return Mapping{Source: source, Target: target, valueMap: valueMap}
}

// Transformed derives target from source with a custom function.
func Transformed(source, target string, fn Transform) Mapping {
	return Mapping{Source: source, Target: target, transform: fn}
}

// WithDefault sets the value used when the looked-up value is absent or
// empty.
func (m Mapping) WithDefault(def string) Mapping {
	m.def = def
	m.hasDef = true
	return m
}

// WithValueMap adds a lookup table applied before the default.
func (m Mapping) WithValueMap(valueMap map[string]string) Mapping {
	m.valueMap = valueMap
	return m
}

// WithTransform adds a transform applied after valueMap and default.
func (m Mapping) WithTransform(fn Transform) Mapping {
	m.transform = fn
	return m
}

// WithConvert adds a conversion applied last.
func (m Mapping) WithConvert(c Converter) Mapping {
	m.convert = &c
	return m
}

// apply produces the target value for one source row.
func (m Mapping) apply(row adapter.Row) any {
	var v any
	if m.Source != "" {
		v = row[m.Source]
	}

	if m.valueMap != nil {
		if mapped, ok := m.valueMap[asString(v)]; ok {
			v = mapped
		}
	}
	if m.hasDef && isEmpty(v) {
		v = m.def
	}
	if m.transform != nil {
		v = m.transform(v, row)
	}
	if m.convert != nil {
		v = m.convert.fn(v)
	}
	return v
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// ValidateMappings enforces the structural rules of one object's
// mapping list: every target non-empty and unique within the object.
func ValidateMappings(objectID string, mappings []Mapping) error {
	seen := make(map[string]bool, len(mappings))
	for i, m := range mappings {
		if m.Target == "" {
			return fmt.Errorf("object %s: mapping %d has an empty target", objectID, i)
		}
		if seen[m.Target] {
			return fmt.Errorf("object %s: duplicate target %q", objectID, m.Target)
		}
		seen[m.Target] = true
	}
	return nil
}

// ApplyMappings transforms one source row into a target row, applying
// every mapping in declaration order.
func ApplyMappings(mappings []Mapping, row adapter.Row) adapter.Row {
	out := make(adapter.Row, len(mappings))
	for _, m := range mappings {
		out[m.Target] = m.apply(row)
	}
	return out
}
