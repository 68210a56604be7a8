package catalog

import (
	"fmt"
	"math/rand"

	"github.com/s4bridge/s4bridge/internal/adapter"
	"github.com/s4bridge/s4bridge/internal/extract"
)

// inforLNSpecs covers Infor LN (Baan) table names: tc* common data,
// tf* finance, td* distribution, wh* warehousing.
func inforLNSpecs() []extract.Spec {
	return []extract.Spec{
		tableSpec("LN_COMPANIES", "LN companies", "LN_COMMON", extract.CategoryConfig,
			tables(
				tab("tcemm170", "Companies", true),
				tab("tcmcs010", "Currencies", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"tcemm170": {
						{"comp": "100", "dsca": "Manufacturing BV", "ccur": "EUR"},
						{"comp": "200", "dsca": "Distribution Ltd", "ccur": "GBP"},
					},
					"tcmcs010": {
						{"ccur": "EUR", "dsca": "Euro"},
						{"ccur": "GBP", "dsca": "Pound sterling"},
					},
				}
			}),
		tableSpec("LN_GL_ACCOUNTS", "LN ledger accounts", "LN_FINANCE", extract.CategoryMasterdata,
			tables(
				tab("tfgld008", "Chart of ledger accounts", true),
				tab("tfgld010", "Dimensions", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"tfgld008": mockLNLedgerAccounts(rng, 20),
					"tfgld010": {
						{"dim": "1", "dsca": "Cost center dimension"},
						{"dim": "2", "dsca": "Project dimension"},
					},
				}
			}),
		tableSpec("LN_BUSINESS_PARTNERS", "LN business partners", "LN_COMMON", extract.CategoryMasterdata,
			tables(
				tab("tccom100", "Business partners, general", true),
				tab("tccom110", "Business partner addresses", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"tccom100": mockLNBusinessPartners(rng, 15),
					"tccom110": mockLNAddresses(rng, 15),
				}
			}),
		tableSpec("LN_ITEMS", "LN item master", "LN_LOGISTICS", extract.CategoryMasterdata,
			tables(
				tab("tcibd001", "Items, general", true),
				tab("whwmd400", "Warehouse item data", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"tcibd001": mockLNItems(rng, 18),
					"whwmd400": mockLNWarehouseItems(rng, 18),
				}
			}),
		tableSpec("LN_SALES_ORDERS", "LN open sales orders", "LN_DISTRIBUTION", extract.CategoryProcess,
			tables(
				tab("tdsls400", "Sales order headers", true),
				tab("tdsls401", "Sales order lines", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				headers, lines := mockLNSalesOrders(rng, 10)
				return map[string][]adapter.Row{"tdsls400": headers, "tdsls401": lines}
			}),
		tableSpec("LN_PURCHASE_ORDERS", "LN open purchase orders", "LN_DISTRIBUTION", extract.CategoryProcess,
			tables(
				tab("tdpur400", "Purchase order headers", true),
				tab("tdpur401", "Purchase order lines", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				headers, lines := mockLNPurchaseOrders(rng, 8)
				return map[string][]adapter.Row{"tdpur400": headers, "tdpur401": lines}
			}),
		tableSpec("LN_WAREHOUSES", "LN warehouses", "LN_LOGISTICS", extract.CategoryConfig,
			tables(
				tab("whwmd200", "Warehouses", true),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"whwmd200": {
						{"cwar": "WH1", "dsca": "Central warehouse", "comp": "100"},
						{"cwar": "WH2", "dsca": "Spare parts warehouse", "comp": "100"},
					},
				}
			}),
	}
}

func mockLNLedgerAccounts(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"leac": fmt.Sprintf("%06d", 100000+i*500),
			"dsca": fmt.Sprintf("Ledger account %s", id4(i+1)),
			"type": pick(rng, "1", "2"), // balance sheet / profit and loss
		})
	}
	return rows
}

func mockLNBusinessPartners(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"bpid": fmt.Sprintf("BP%06d", 1000+i),
			"nama": fmt.Sprintf("Partner %s", id4(i+1)),
			"stbp": pick(rng, "active", "inactive"),
		})
	}
	return rows
}

func mockLNAddresses(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"bpid": fmt.Sprintf("BP%06d", 1000+i),
			"ccty": pick(rng, "NL", "DE", "BE"),
			"city": pick(rng, "Amsterdam", "Hamburg", "Antwerp"),
		})
	}
	return rows
}

func mockLNItems(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"item": fmt.Sprintf("ITM%06d", 1000+i),
			"dsca": fmt.Sprintf("Item %s", id4(i+1)),
			"kitm": pick(rng, "1", "2", "4"),
		})
	}
	return rows
}

func mockLNWarehouseItems(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"item": fmt.Sprintf("ITM%06d", 1000+i),
			"cwar": pick(rng, "WH1", "WH2"),
		})
	}
	return rows
}

func mockLNSalesOrders(rng *rand.Rand, n int) (headers, lines []adapter.Row) {
	for i := 0; i < n; i++ {
		orno := fmt.Sprintf("SLS%06d", 1000+i)
		headers = append(headers, adapter.Row{
			"orno": orno,
			"ofbp": fmt.Sprintf("BP%06d", 1000+rng.Intn(15)),
			"comp": "100",
		})
		lines = append(lines, adapter.Row{
			"orno": orno, "pono": "10",
			"item": fmt.Sprintf("ITM%06d", 1000+rng.Intn(18)),
			"qoor": fmt.Sprintf("%d", 1+rng.Intn(40)),
		})
	}
	return headers, lines
}

func mockLNPurchaseOrders(rng *rand.Rand, n int) (headers, lines []adapter.Row) {
	for i := 0; i < n; i++ {
		orno := fmt.Sprintf("PUR%06d", 2000+i)
		headers = append(headers, adapter.Row{
			"orno": orno,
			"otbp": fmt.Sprintf("BP%06d", 1000+rng.Intn(15)),
			"comp": "100",
		})
		lines = append(lines, adapter.Row{
			"orno": orno, "pono": "10",
			"item": fmt.Sprintf("ITM%06d", 1000+rng.Intn(18)),
			"qoor": fmt.Sprintf("%d", 1+rng.Intn(25)),
		})
	}
	return headers, lines
}
