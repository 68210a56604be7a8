package catalog

import (
	"fmt"
	"math/rand"

	"github.com/s4bridge/s4bridge/internal/adapter"
	"github.com/s4bridge/s4bridge/internal/extract"
)

// lawsonSpecs covers Lawson S3 application tables read straight from
// the Oracle schema.
func lawsonSpecs() []extract.Spec {
	return []extract.Spec{
		tableSpec("LAWSON_COMPANIES", "Lawson GL companies", "LAWSON_GL", extract.CategoryConfig,
			tables(
				tab("GLSYSTEM", "GL company parameters", true),
				tab("GLCHART", "Chart of accounts definitions", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"GLSYSTEM": {
						{"COMPANY": "0100", "NAME": "US Operations", "BASE_CURRENCY": "USD"},
					},
					"GLCHART": {
						{"CHART_NAME": "CORPCHART", "DESCRIPTION": "Corporate chart"},
					},
				}
			}),
		tableSpec("LAWSON_GL_ACCOUNTS", "Lawson GL account master", "LAWSON_GL", extract.CategoryMasterdata,
			tables(
				tab("GLMASTER", "GL account balances and master", true),
				tab("GLNAMES", "Accounting unit names", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"GLMASTER": mockLawsonGLAccounts(rng, 22),
					"GLNAMES":  mockLawsonAccountingUnits(rng, 6),
				}
			}),
		tableSpec("LAWSON_VENDORS", "Lawson AP vendor master", "LAWSON_AP", extract.CategoryMasterdata,
			tables(
				tab("APVENMAST", "Vendor master", true),
				tab("APVENADDR", "Vendor addresses", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"APVENMAST": mockLawsonVendors(rng, 12),
					"APVENADDR": mockLawsonVendorAddresses(rng, 12),
				}
			}),
		tableSpec("LAWSON_CUSTOMERS", "Lawson AR customer master", "LAWSON_AR", extract.CategoryMasterdata,
			tables(
				tab("ARCUSTOMER", "Customer master", true),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{"ARCUSTOMER": mockLawsonCustomers(rng, 10)}
			}),
		tableSpec("LAWSON_ITEMS", "Lawson IC item master", "LAWSON_IC", extract.CategoryMasterdata,
			tables(
				tab("ICITEM", "Item master", true),
				tab("ICLOCATION", "Inventory locations", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"ICITEM": mockLawsonItems(rng, 14),
					"ICLOCATION": {
						{"COMPANY": "0100", "LOCATION": "MAIN", "NAME": "Main distribution center"},
					},
				}
			}),
		tableSpec("LAWSON_INVOICES", "Lawson open AP invoices", "LAWSON_AP", extract.CategoryProcess,
			tables(
				tab("APINVOICE", "AP invoice headers", true),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{"APINVOICE": mockLawsonInvoices(rng, 9)}
			}),
	}
}

func mockLawsonGLAccounts(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"COMPANY":     "0100",
			"ACCT_UNIT":   fmt.Sprintf("%05d", 100+(i%6)*10),
			"ACCOUNT":     fmt.Sprintf("%04d", 1000+i*100),
			"SUB_ACCOUNT": "0000",
		})
	}
	return rows
}

func mockLawsonAccountingUnits(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"COMPANY":   "0100",
			"ACCT_UNIT": fmt.Sprintf("%05d", 100+i*10),
			"NAME":      fmt.Sprintf("Accounting unit %s", id4(i+1)),
		})
	}
	return rows
}

func mockLawsonVendors(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"VENDOR_GROUP": "DFLT",
			"VENDOR":       fmt.Sprintf("%09d", 5000+i),
			"VENDOR_VNAME": fmt.Sprintf("Vendor %s", id4(i+1)),
		})
	}
	return rows
}

func mockLawsonVendorAddresses(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"VENDOR":  fmt.Sprintf("%09d", 5000+i),
			"CITY":    pick(rng, "Chicago", "Atlanta", "Dallas"),
			"COUNTRY": "US",
		})
	}
	return rows
}

func mockLawsonCustomers(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"COMPANY":  "0100",
			"CUSTOMER": fmt.Sprintf("%09d", 7000+i),
			"NAME":     fmt.Sprintf("Customer %s", id4(i+1)),
		})
	}
	return rows
}

func mockLawsonItems(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"COMPANY":     "0100",
			"ITEM":        fmt.Sprintf("LAW%05d", 400+i),
			"DESCRIPTION": fmt.Sprintf("Item %s", id4(i+1)),
			"UOM":         pick(rng, "EA", "CS", "LB"),
		})
	}
	return rows
}

func mockLawsonInvoices(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"COMPANY":     "0100",
			"VENDOR":      fmt.Sprintf("%09d", 5000+rng.Intn(12)),
			"INVOICE":     fmt.Sprintf("INV-%06d", 90000+i),
			"TRAN_AMOUNT": fmt.Sprintf("%.2f", 50+rng.Float64()*1950),
		})
	}
	return rows
}
