package catalog

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/s4bridge/s4bridge/internal/adapter"
	"github.com/s4bridge/s4bridge/internal/extract"
)

// sapSpecs covers the SAP ECC forensic surface: configuration, master
// data, open transactions, and the technical metadata the planner needs
// to judge custom-code and interface exposure.
func sapSpecs() []extract.Spec {
	return []extract.Spec{
		sapSystemInfo(),
		sapDataDictionary(),
		tableSpec("FI_CONFIG", "FI configuration", "FI", extract.CategoryConfig,
			tables(
				tab("T001", "Company codes", true),
				tab("T003", "Document types", false),
				tab("T004", "Chart of accounts directory", true),
				tab("TCURR", "Exchange rates", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"T001": {
						{"BUKRS": "1000", "BUTXT": "IDES AG", "LAND1": "DE", "WAERS": "EUR"},
						{"BUKRS": "2000", "BUTXT": "IDES UK", "LAND1": "GB", "WAERS": "GBP"},
					},
					"T003": {
						{"BLART": "SA", "LTEXT": "G/L account document"},
						{"BLART": "KR", "LTEXT": "Vendor invoice"},
						{"BLART": "DR", "LTEXT": "Customer invoice"},
					},
					"T004": {
						{"KTOPL": "INT", "KTPLT": "Chart of accounts - international"},
					},
					"TCURR": mockExchangeRates(rng),
				}
			}),
		tableSpec("FI_MASTERDATA", "FI master data", "FI", extract.CategoryMasterdata,
			tables(
				tab("SKA1", "G/L accounts, chart of accounts level", true),
				tab("SKB1", "G/L accounts, company code level", true),
				tab("LFA1", "Vendor master, general", true),
				tab("KNA1", "Customer master, general", true),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"SKA1": mockGLAccounts(rng, 25),
					"SKB1": mockGLCompanyCodes(rng, 25),
					"LFA1": mockVendors(rng, 10),
					"KNA1": mockCustomers(rng, 10),
				}
			}),
		tableSpec("FI_TRANSACTIONS", "FI open items and documents", "FI", extract.CategoryProcess,
			tables(
				tab("BKPF", "Accounting document headers", true),
				tab("BSEG", "Accounting document line items", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				headers, items := mockAccountingDocs(rng, 15)
				return map[string][]adapter.Row{"BKPF": headers, "BSEG": items}
			}),
		tableSpec("CO_CONFIG", "CO configuration", "CO", extract.CategoryConfig,
			tables(
				tab("TKA01", "Controlling areas", true),
				tab("TKA02", "Controlling area assignments", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"TKA01": {{"KOKRS": "1000", "BEZEI": "Controlling area Europe", "WAERS": "EUR"}},
					"TKA02": {{"KOKRS": "1000", "BUKRS": "1000"}, {"KOKRS": "1000", "BUKRS": "2000"}},
				}
			}),
		tableSpec("CO_MASTERDATA", "CO cost centers and elements", "CO", extract.CategoryMasterdata,
			tables(
				tab("CSKS", "Cost center master", true),
				tab("CSKA", "Cost elements", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"CSKS": mockCostCenters(rng, 12),
					"CSKA": mockCostElements(rng, 8),
				}
			}),
		tableSpec("MM_CONFIG", "MM configuration", "MM", extract.CategoryConfig,
			tables(
				tab("T001W", "Plants", true),
				tab("T001L", "Storage locations", false),
				tab("T024", "Purchasing groups", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"T001W": {
						{"WERKS": "1000", "NAME1": "Hamburg plant"},
						{"WERKS": "1100", "NAME1": "Berlin plant"},
					},
					"T001L": {
						{"WERKS": "1000", "LGORT": "0001", "LGOBE": "Raw materials"},
						{"WERKS": "1000", "LGORT": "0002", "LGOBE": "Finished goods"},
					},
					"T024": {{"EKGRP": "001", "EKNAM": "Raw materials purchasing"}},
				}
			}),
		tableSpec("MM_MATERIALS", "Material master", "MM", extract.CategoryMasterdata,
			tables(
				tab("MARA", "Material master, general", true),
				tab("MARC", "Material master, plant level", true),
				tab("MAKT", "Material descriptions", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				general, plant, texts := mockMaterials(rng, 20)
				return map[string][]adapter.Row{"MARA": general, "MARC": plant, "MAKT": texts}
			}),
		tableSpec("MM_PURCHASING", "Open purchase orders", "MM", extract.CategoryProcess,
			tables(
				tab("EKKO", "Purchasing document headers", true),
				tab("EKPO", "Purchasing document items", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				headers, items := mockPurchaseOrders(rng, 10)
				return map[string][]adapter.Row{"EKKO": headers, "EKPO": items}
			}),
		tableSpec("SD_CONFIG", "SD configuration", "SD", extract.CategoryConfig,
			tables(
				tab("TVKO", "Sales organizations", true),
				tab("TVTW", "Distribution channels", false),
				tab("TSPA", "Divisions", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"TVKO": {{"VKORG": "1000", "VTEXT": "Germany sales"}},
					"TVTW": {{"VTWEG": "10", "VTEXT": "Direct sales"}},
					"TSPA": {{"SPART": "00", "VTEXT": "Cross-division"}},
				}
			}),
		tableSpec("SD_CUSTOMERS", "Customer sales views", "SD", extract.CategoryMasterdata,
			tables(
				tab("KNVV", "Customer master, sales area", true),
				tab("KNVP", "Customer partner functions", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"KNVV": mockCustomerSalesAreas(rng, 10),
					"KNVP": mockPartnerFunctions(rng, 10),
				}
			}),
		tableSpec("SD_SALES", "Open sales orders", "SD", extract.CategoryProcess,
			tables(
				tab("VBAK", "Sales document headers", true),
				tab("VBAP", "Sales document items", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				headers, items := mockSalesOrders(rng, 12)
				return map[string][]adapter.Row{"VBAK": headers, "VBAP": items}
			}),
		tableSpec("PP_CONFIG", "PP configuration", "PP", extract.CategoryConfig,
			tables(
				tab("T399X", "Order type parameters", false),
				tab("T437S", "Repetitive manufacturing profiles", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"T399X": {{"AUART": "PP01", "WERKS": "1000"}},
					"T437S": {},
				}
			}),
		tableSpec("CUSTOM_CODE", "Custom development inventory", "BASIS", extract.CategoryMetadata,
			tables(
				tab("TADIR", "Repository object directory", true),
				tab("TRDIR", "ABAP program attributes", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"TADIR": mockCustomObjects(rng, 18),
					"TRDIR": mockProgramAttributes(rng, 12),
				}
			}),
		tableSpec("INTERFACES", "RFC and IDoc interface inventory", "BASIS", extract.CategoryInterface,
			tables(
				tab("RFCDES", "RFC destinations", true),
				tab("EDP13", "IDoc partner profiles, outbound", false),
			),
			func(rng *rand.Rand) map[string][]adapter.Row {
				return map[string][]adapter.Row{
					"RFCDES": {
						{"RFCDEST": "MES_PROD", "RFCTYPE": "T", "RFCHOST": "mes.internal"},
						{"RFCDEST": "EWM_CENTRAL", "RFCTYPE": "3", "RFCHOST": "ewm.internal"},
					},
					"EDP13": {
						{"RCVPRN": "EDI_CARRIER", "MESTYP": "DESADV"},
					},
				}
			}),
	}
}

// sapSystemInfo reports the system identity; it has no table surface.
func sapSystemInfo() extract.Spec {
	return extract.Spec{
		Identity: extract.Identity{ID: "SYSTEM_INFO", Name: "System information", Module: "BASIS", Category: extract.CategoryMetadata},
		Live: func(ctx context.Context, rc *extract.RunContext) (extract.Output, error) {
			info, err := rc.Conn.SystemInfo(ctx)
			if err != nil {
				return nil, err
			}
			return extract.Output{
				"sid":         info.SID,
				"release":     info.Release,
				"description": info.Description,
				"host":        info.Host,
			}, nil
		},
		Mock: func(rc *extract.RunContext, rng *rand.Rand) (extract.Output, error) {
			return extract.Output{"sid": "TST", "release": "750"}, nil
		},
	}
}

// sapDataDictionary samples the DDIC so the planner can judge custom
// table exposure without pulling the full dictionary.
func sapDataDictionary() extract.Spec {
	expected := tables(
		tab("DD02L", "Table directory", false),
		tab("DD03L", "Table fields", false),
	)
	return extract.Spec{
		Identity:       extract.Identity{ID: "DATA_DICTIONARY", Name: "Data dictionary sample", Module: "BASIS", Category: extract.CategoryMetadata},
		ExpectedTables: expected,
		Live: func(ctx context.Context, rc *extract.RunContext) (extract.Output, error) {
			out := make(map[string]any, len(expected))
			for _, t := range expected {
				res := rc.ReadTable(ctx, t.Name, adapter.ReadOptions{
					MaxRows: 500,
					Filter:  "TABNAME LIKE 'Z%'",
				})
				if res.OK() {
					out[t.Name] = res.Rows
				}
			}
			return extract.Output{"tables": out}, nil
		},
		Mock: mockTables(func(rng *rand.Rand) map[string][]adapter.Row {
			return map[string][]adapter.Row{
				"DD02L": {
					{"TABNAME": "ZMM_CUSTTAB", "TABCLASS": "TRANSP"},
					{"TABNAME": "ZFI_EXTRACT", "TABCLASS": "TRANSP"},
				},
				"DD03L": {
					{"TABNAME": "ZMM_CUSTTAB", "FIELDNAME": "MATNR", "POSITION": "0001"},
					{"TABNAME": "ZMM_CUSTTAB", "FIELDNAME": "WERKS", "POSITION": "0002"},
				},
			}
		}),
	}
}

func mockExchangeRates(rng *rand.Rand) []adapter.Row {
	pairs := [][2]string{{"USD", "EUR"}, {"GBP", "EUR"}, {"CHF", "EUR"}}
	rows := make([]adapter.Row, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, adapter.Row{
			"KURST": "M",
			"FCURR": p[0],
			"TCURR": p[1],
			"UKURS": fmt.Sprintf("%.4f", 0.7+rng.Float64()*0.5),
		})
	}
	return rows
}

func mockGLAccounts(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"KTOPL": "INT",
			"SAKNR": fmt.Sprintf("%010d", 100000+i*1000),
			"KTOKS": pick(rng, "ERG", "BEST", "SAKO"),
		})
	}
	return rows
}

func mockGLCompanyCodes(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"BUKRS": pick(rng, "1000", "2000"),
			"SAKNR": fmt.Sprintf("%010d", 100000+i*1000),
			"WAERS": "EUR",
		})
	}
	return rows
}

func mockVendors(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"LIFNR": fmt.Sprintf("%010d", 4000+i),
			"NAME1": fmt.Sprintf("Vendor %s", id4(i+1)),
			"LAND1": pick(rng, "DE", "GB", "NL", "FR"),
		})
	}
	return rows
}

func mockCustomers(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"KUNNR": fmt.Sprintf("%010d", 1000+i),
			"NAME1": fmt.Sprintf("Customer %s", id4(i+1)),
			"LAND1": pick(rng, "DE", "GB", "US", "SE"),
		})
	}
	return rows
}

func mockAccountingDocs(rng *rand.Rand, n int) (headers, items []adapter.Row) {
	for i := 0; i < n; i++ {
		docno := fmt.Sprintf("%010d", 1900000000+i)
		headers = append(headers, adapter.Row{
			"BUKRS": "1000", "BELNR": docno, "GJAHR": "2025",
			"BLART": pick(rng, "SA", "KR", "DR"),
		})
		for line := 1; line <= 2; line++ {
			items = append(items, adapter.Row{
				"BUKRS": "1000", "BELNR": docno, "GJAHR": "2025",
				"BUZEI": fmt.Sprintf("%03d", line),
				"WRBTR": fmt.Sprintf("%.2f", 10+rng.Float64()*990),
			})
		}
	}
	return headers, items
}

func mockCostCenters(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"KOKRS": "1000",
			"KOSTL": fmt.Sprintf("%010d", 10000+i*10),
			"VERAK": fmt.Sprintf("Manager %s", id4(i+1)),
		})
	}
	return rows
}

func mockCostElements(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"KTOPL": "INT",
			"KSTAR": fmt.Sprintf("%010d", 400000+i*100),
		})
	}
	return rows
}

func mockMaterials(rng *rand.Rand, n int) (general, plant, texts []adapter.Row) {
	for i := 0; i < n; i++ {
		matnr := fmt.Sprintf("%018d", 100000+i)
		general = append(general, adapter.Row{
			"MATNR": matnr,
			"MTART": pick(rng, "FERT", "ROH", "HALB"),
			"MEINS": pick(rng, "ST", "KG", "L"),
		})
		plant = append(plant, adapter.Row{"MATNR": matnr, "WERKS": "1000", "DISPO": "001"})
		texts = append(texts, adapter.Row{"MATNR": matnr, "SPRAS": "E", "MAKTX": fmt.Sprintf("Material %s", id4(i+1))})
	}
	return general, plant, texts
}

func mockPurchaseOrders(rng *rand.Rand, n int) (headers, items []adapter.Row) {
	for i := 0; i < n; i++ {
		ebeln := fmt.Sprintf("%010d", 4500000000+i)
		headers = append(headers, adapter.Row{
			"EBELN": ebeln, "BUKRS": "1000", "BSART": "NB",
			"LIFNR": fmt.Sprintf("%010d", 4000+rng.Intn(10)),
		})
		items = append(items, adapter.Row{
			"EBELN": ebeln, "EBELP": "00010",
			"MATNR": fmt.Sprintf("%018d", 100000+rng.Intn(20)),
			"MENGE": fmt.Sprintf("%d", 1+rng.Intn(100)),
		})
	}
	return headers, items
}

func mockCustomerSalesAreas(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"KUNNR": fmt.Sprintf("%010d", 1000+i),
			"VKORG": "1000", "VTWEG": "10", "SPART": "00",
			"KDGRP": pick(rng, "01", "02"),
		})
	}
	return rows
}

func mockPartnerFunctions(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"KUNNR": fmt.Sprintf("%010d", 1000+i),
			"PARVW": pick(rng, "AG", "WE", "RE"),
		})
	}
	return rows
}

func mockSalesOrders(rng *rand.Rand, n int) (headers, items []adapter.Row) {
	for i := 0; i < n; i++ {
		vbeln := fmt.Sprintf("%010d", 5000+i)
		headers = append(headers, adapter.Row{
			"VBELN": vbeln, "VKORG": "1000", "AUART": "OR",
			"KUNNR": fmt.Sprintf("%010d", 1000+rng.Intn(10)),
		})
		items = append(items, adapter.Row{
			"VBELN": vbeln, "POSNR": "000010",
			"MATNR": fmt.Sprintf("%018d", 100000+rng.Intn(20)),
			"KWMENG": fmt.Sprintf("%d", 1+rng.Intn(50)), // quantity as ABAP-formatted string
		})
	}
	return headers, items
}

func mockCustomObjects(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"PGMID":    "R3TR",
			"OBJECT":   pick(rng, "PROG", "TABL", "FUGR"),
			"OBJ_NAME": fmt.Sprintf("Z%s_%s", pick(rng, "FI", "MM", "SD"), id4(i+1)),
			"DEVCLASS": "ZCUST",
		})
	}
	return rows
}

func mockProgramAttributes(rng *rand.Rand, n int) []adapter.Row {
	rows := make([]adapter.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, adapter.Row{
			"NAME": fmt.Sprintf("ZREP_%s", id4(i+1)),
			"SUBC": pick(rng, "1", "I"),
			"CDAT": "20190314",
		})
	}
	return rows
}
