package migrate

import (
	"strings"
	"testing"

	"github.com/s4bridge/s4bridge/internal/adapter"
)

func TestConstantMapping(t *testing.T) {
	row := ApplyMappings([]Mapping{Constant("CompanyCode", "1000")}, adapter.Row{})
	if row["CompanyCode"] != "1000" {
		t.Errorf("CompanyCode = %v, want 1000", row["CompanyCode"])
	}
}

func TestDirectMapping(t *testing.T) {
	row := ApplyMappings([]Mapping{Direct("BUKRS", "CompanyCode")}, adapter.Row{"BUKRS": "2000"})
	if row["CompanyCode"] != "2000" {
		t.Errorf("CompanyCode = %v, want 2000", row["CompanyCode"])
	}
}

func TestValueMapBeforeDefault(t *testing.T) {
	m := Mapped("KTOKS", "AccountType", map[string]string{"ERG": "P"}).WithDefault("X")

	row := ApplyMappings([]Mapping{m}, adapter.Row{"KTOKS": "ERG"})
	if row["AccountType"] != "P" {
		t.Errorf("mapped value = %v, want P", row["AccountType"])
	}

	// Unmapped non-empty value falls through unchanged, not to default.
	row = ApplyMappings([]Mapping{m}, adapter.Row{"KTOKS": "BEST"})
	if row["AccountType"] != "BEST" {
		t.Errorf("unmapped value = %v, want BEST", row["AccountType"])
	}

	// Absent source hits the default.
	row = ApplyMappings([]Mapping{m}, adapter.Row{})
	if row["AccountType"] != "X" {
		t.Errorf("absent value = %v, want default X", row["AccountType"])
	}
}

func TestTransformBeforeConvert(t *testing.T) {
	m := Transformed("SAKNR", "GLAccount", func(v any, row adapter.Row) any {
		return strings.TrimLeft(asString(v), "0")
	}).WithConvert(PadLeft10)

	row := ApplyMappings([]Mapping{m}, adapter.Row{"SAKNR": "000123"})
	if row["GLAccount"] != "0000000123" {
		t.Errorf("GLAccount = %v, want 0000000123", row["GLAccount"])
	}
}

func TestFullPrecedenceChain(t *testing.T) {
	m := Direct("LAND1", "Country").
		WithValueMap(map[string]string{"D": "DE"}).
		WithDefault("XX").
		WithTransform(func(v any, row adapter.Row) any { return asString(v) + "-EU" }).
		WithConvert(ToUpperCase)

	row := ApplyMappings([]Mapping{m}, adapter.Row{"LAND1": "D"})
	if row["Country"] != "DE-EU" {
		t.Errorf("Country = %v, want DE-EU", row["Country"])
	}

	row = ApplyMappings([]Mapping{m}, adapter.Row{})
	if row["Country"] != "XX-EU" {
		t.Errorf("Country = %v, want XX-EU (default through transform)", row["Country"])
	}
}

func TestMappingOrderPreserved(t *testing.T) {
	mappings := []Mapping{
		Direct("A", "Target"),
	}
	if err := ValidateMappings("X", mappings); err != nil {
		t.Fatal(err)
	}
	row := ApplyMappings(mappings, adapter.Row{"A": "first"})
	if row["Target"] != "first" {
		t.Errorf("Target = %v", row["Target"])
	}
}

func TestValidateMappings(t *testing.T) {
	if err := ValidateMappings("X", []Mapping{Direct("A", "")}); err == nil {
		t.Error("empty target should be rejected")
	}
	if err := ValidateMappings("X", []Mapping{Direct("A", "T"), Direct("B", "T")}); err == nil {
		t.Error("duplicate target should be rejected")
	}
	if err := ValidateMappings("X", []Mapping{Direct("A", "T1"), Direct("B", "T2")}); err != nil {
		t.Errorf("valid mappings rejected: %v", err)
	}
}
