package catalog

import (
	"fmt"
	"math/rand"

	"github.com/s4bridge/s4bridge/internal/adapter"
	"github.com/s4bridge/s4bridge/internal/extract"
)

// inforM3Specs covers Infor M3 file names as exposed through the MI
// export API.
func inforM3Specs() []extract.Spec {
	return []extract.Spec{
		tableSpec("M3_COMPANIES", "M3 companies and divisions", "M3_COMMON", extract.CategoryConfig,
			tables(
				tab("CMNCMP", "Companies", true),
				tab("CMNDIV", "Divisions", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"CMNCMP": {{"JUCONO": "100", "JUTX40": "Nordic Industries"}},
					"CMNDIV": {
						{"CCCONO": "100", "CCDIVI": "AAA", "CCTX40": "Sweden division"},
						{"CCCONO": "100", "CCDIVI": "BBB", "CCTX40": "Norway division"},
					},
				}
			}),
		tableSpec("M3_FACILITIES", "M3 facilities and warehouses", "M3_COMMON", extract.CategoryConfig,
			tables(
				tab("CFACIL", "Facilities", true),
				tab("MITWHL", "Warehouses", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"CFACIL": {{"CFCONO": "100", "CFFACI": "F01", "CFFACN": "Stockholm plant"}},
					"MITWHL": {
						{"MWCONO": "100", "MWWHLO": "001", "MWWHNM": "Main warehouse"},
					},
				}
			}),
		tableSpec("M3_CUSTOMERS", "M3 customer master", "M3_SALES", extract.CategoryMasterdata,
			tables(
				tab("OCUSMA", "Customer master", true),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{"OCUSMA": mockM3Customers(rng, 14)}
			}),
		tableSpec("M3_SUPPLIERS", "M3 supplier master", "M3_PURCHASING", extract.CategoryMasterdata,
			tables(
				tab("CIDMAS", "Supplier master", true),
				tab("CIDVEN", "Supplier purchase data", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"CIDMAS": mockM3Suppliers(rng, 10),
					"CIDVEN": mockM3SupplierPurchase(rng, 10),
				}
			}),
		tableSpec("M3_ITEMS", "M3 item master", "M3_LOGISTICS", extract.CategoryMasterdata,
			tables(
				tab("MITMAS", "Item master", true),
				tab("MITBAL", "Item / warehouse balances", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"MITMAS": mockM3Items(rng, 16),
					"MITBAL": mockM3ItemBalances(rng, 16),
				}
			}),
		tableSpec("M3_CUSTOMER_ORDERS", "M3 open customer orders", "M3_SALES", extract.CategoryProcess,
			tables(
				tab("OOHEAD", "Customer order headers", true),
				tab("OOLINE", "Customer order lines", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				headers, lines := mockM3CustomerOrders(rng, 9)
				return map[string][]adapter.Row{"OOHEAD": headers, "OOLINE": lines}
			}),
		tableSpec("M3_PURCHASE_ORDERS", "M3 open purchase orders", "M3_PURCHASING", extract.CategoryProcess,
			tables(
				tab("MPHEAD", "Purchase order headers", true),
				tab("MPLINE", "Purchase order lines", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				headers, lines := mockM3PurchaseOrders(rng, 7)
				return map[string][]adapter.Row{"MPHEAD": headers, "MPLINE": lines}
			}),
	}
}

func mockM3Customers(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"OKCONO": "100",
			"OKCUNO": fmt.Sprintf("CUS%05d", 100+i),
			"OKCUNM": fmt.Sprintf("Customer %s", id4(i+1)),
			"OKCSCD": pick(rng, "SE", "NO", "DK", "FI"),
		})
	}
	return rows
}

func mockM3Suppliers(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"IDCONO": "100",
			"IDSUNO": fmt.Sprintf("SUP%05d", 200+i),
			"IDSUNM": fmt.Sprintf("Supplier %s", id4(i+1)),
		})
	}
	return rows
}

func mockM3SupplierPurchase(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"IICONO": "100",
			"IISUNO": fmt.Sprintf("SUP%05d", 200+i),
			"IICUCD": pick(rng, "SEK", "EUR"),
		})
	}
	return rows
}

func mockM3Items(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"MMCONO": "100",
			"MMITNO": fmt.Sprintf("M3I%05d", 300+i),
			"MMITDS": fmt.Sprintf("Item %s", id4(i+1)),
			"MMUNMS": pick(rng, "PCE", "KGM"),
		})
	}
	return rows
}

func mockM3ItemBalances(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"MBCONO": "100",
			"MBITNO": fmt.Sprintf("M3I%05d", 300+i),
			"MBWHLO": "001",
			"MBSTQT": fmt.Sprintf("%d", rng.Intn(500)),
		})
	}
	return rows
}

func mockM3CustomerOrders(rng *rand.Rand, n int) (headers, lines []adapter.Row) {
	for i := 0; i < n; i++ {
		orno := fmt.Sprintf("CO%07d", 10000+i)
		headers = append(headers, adapter.Row{
			"OACONO": "100", "OAORNO": orno,
			"OACUNO": fmt.Sprintf("CUS%05d", 100+rng.Intn(14)),
		})
		lines = append(lines, adapter.Row{
			"OBCONO": "100", "OBORNO": orno, "OBPONR": "1",
			"OBITNO": fmt.Sprintf("M3I%05d", 300+rng.Intn(16)),
			"OBORQT": fmt.Sprintf("%d", 1+rng.Intn(30)),
		})
	}
	return headers, lines
}

func mockM3PurchaseOrders(rng *rand.Rand, n int) (headers, lines []adapter.Row) {
	for i := 0; i < n; i++ {
		puno := fmt.Sprintf("PO%07d", 20000+i)
		headers = append(headers, adapter.Row{
			"IACONO": "100", "IAPUNO": puno,
			"IASUNO": fmt.Sprintf("SUP%05d", 200+rng.Intn(10)),
		})
		lines = append(lines, adapter.Row{
			"IBCONO": "100", "IBPUNO": puno, "IBPNLI": "1",
			"IBITNO": fmt.Sprintf("M3I%05d", 300+rng.Intn(16)),
			"IBORQA": fmt.Sprintf("%d", 1+rng.Intn(20)),
		})
	}
	return headers, lines
}
