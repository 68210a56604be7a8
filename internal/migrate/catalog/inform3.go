package catalog

import (
	"fmt"
	"math/rand"

	"github.com/s4bridge/s4bridge/internal/adapter"
	"github.com/s4bridge/s4bridge/internal/config"
	"github.com/s4bridge/s4bridge/internal/migrate"
)

func m3Object(objectID, name, table string) migrate.Spec {
	return migrate.Spec{
		Identity: migrate.Identity{
			ObjectID:     objectID,
			Name:         name,
			SourceSystem: config.SystemInforM3,
			TargetSystem: TargetS4,
		},
		ExtractLive: liveTable(table),
	}
}

// inforM3Objects maps Infor M3 files onto S/4HANA objects.
func inforM3Objects() []migrate.Spec {
	company := m3Object("INFOR_M3_COMPANY", "M3 companies", "CMNCMP")
	company.Mappings = []migrate.Mapping{
		migrate.Converted("JUCONO", "CompanyCode", migrate.PadLeft4),
		migrate.Direct("JUTX40", "CompanyName"),
	}
	company.Checks = requiredCheck("CompanyCode", "CompanyName")
	company.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		return []adapter.Row{{"JUCONO": "100", "JUTX40": "Nordic Industries"}}
	}

	division := m3Object("INFOR_M3_DIVISION", "M3 divisions as company codes", "CMNDIV")
	division.Mappings = []migrate.Mapping{
		migrate.Transformed("CCDIVI", "CompanyCode", func(v any, row adapter.Row) any {
			return fmt.Sprintf("%v%v", row["CCCONO"], v)
		}).WithConvert(migrate.ToUpperCase),
		migrate.Direct("CCTX40", "CompanyName"),
	}
	division.Checks = requiredCheck("CompanyCode", "CompanyName")
	division.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		return []adapter.Row{
			{"CCCONO": "100", "CCDIVI": "AAA", "CCTX40": "Sweden division"},
			{"CCCONO": "100", "CCDIVI": "BBB", "CCTX40": "Norway division"},
		}
	}

	customer := m3Object("INFOR_M3_CUSTOMER", "M3 customer master", "OCUSMA")
	customer.Mappings = []migrate.Mapping{
		migrate.Converted("OKCUNO", "BusinessPartner", migrate.PadLeft10),
		migrate.Direct("OKCUNM", "Name"),
		migrate.Converted("OKCSCD", "Country", migrate.ToUpperCase),
		migrate.Constant("BPRole", "FLCU01"),
	}
	customer.Checks = migrate.QualityChecks{
		Required:       []string{"BusinessPartner", "Name"},
		FuzzyDuplicate: &migrate.FuzzyCheck{Keys: []string{"Name"}, Threshold: 0.95},
	}
	customer.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 14)
		for i := 0; i < 14; i++ {
			rows = append(rows, adapter.Row{
				"OKCUNO": fmt.Sprintf("CUS%05d", 100+i),
				"OKCUNM": fmt.Sprintf("Customer %04d", i+1),
				"OKCSCD": []string{"SE", "NO", "DK"}[rng.Intn(3)],
			})
		}
		return rows
	}

	supplier := m3Object("INFOR_M3_SUPPLIER", "M3 supplier master", "CIDMAS")
	supplier.Mappings = []migrate.Mapping{
		migrate.Converted("IDSUNO", "BusinessPartner", migrate.PadLeft10),
		migrate.Direct("IDSUNM", "Name"),
		migrate.Constant("BPRole", "FLVN01"),
	}
	supplier.Checks = requiredCheck("BusinessPartner", "Name")
	supplier.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 10)
		for i := 0; i < 10; i++ {
			rows = append(rows, adapter.Row{
				"IDSUNO": fmt.Sprintf("SUP%05d", 200+i),
				"IDSUNM": fmt.Sprintf("Supplier %04d", i+1),
			})
		}
		return rows
	}

	item := m3Object("INFOR_M3_ITEM", "M3 item master", "MITMAS")
	item.Mappings = []migrate.Mapping{
		migrate.Converted("MMITNO", "Product", migrate.PadLeft40),
		migrate.Direct("MMITDS", "Description"),
		migrate.Mapped("MMUNMS", "BaseUnit", map[string]string{
			"PCE": "ST", "KGM": "KG",
		}).WithDefault("ST"),
	}
	item.Checks = migrate.QualityChecks{
		Required:       []string{"Product"},
		ExactDuplicate: &migrate.DuplicateCheck{Keys: []string{"Product"}},
	}
	item.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 16)
		for i := 0; i < 16; i++ {
			rows = append(rows, adapter.Row{
				"MMITNO": fmt.Sprintf("M3I%05d", 300+i),
				"MMITDS": fmt.Sprintf("Item %04d", i+1),
				"MMUNMS": []string{"PCE", "KGM"}[rng.Intn(2)],
			})
		}
		return rows
	}

	itemBalance := m3Object("INFOR_M3_ITEM_BALANCE", "M3 item stock balances", "MITBAL")
	itemBalance.Mappings = []migrate.Mapping{
		migrate.Converted("MBITNO", "Product", migrate.PadLeft40),
		migrate.Converted("MBWHLO", "StorageLocation", migrate.ToUpperCase),
		migrate.Converted("MBSTQT", "Quantity", migrate.ToDecimal),
	}
	itemBalance.Checks = migrate.QualityChecks{
		Required: []string{"Product", "StorageLocation"},
		Range:    []migrate.RangeCheck{{Field: "Quantity", Min: 0, Max: 1000000}},
	}
	itemBalance.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 16)
		for i := 0; i < 16; i++ {
			rows = append(rows, adapter.Row{
				"MBITNO": fmt.Sprintf("M3I%05d", 300+i),
				"MBWHLO": "001",
				"MBSTQT": fmt.Sprintf("%d", rng.Intn(500)),
			})
		}
		return rows
	}

	customerOrder := m3Object("INFOR_M3_CUSTOMER_ORDER", "M3 open customer orders", "OOHEAD")
	customerOrder.Mappings = []migrate.Mapping{
		migrate.Converted("OAORNO", "SalesOrder", migrate.ToUpperCase),
		migrate.Converted("OACUNO", "SoldToParty", migrate.PadLeft10),
		migrate.Converted("OACONO", "CompanyCode", migrate.PadLeft4),
	}
	customerOrder.Checks = requiredCheck("SalesOrder", "SoldToParty")
	customerOrder.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 9)
		for i := 0; i < 9; i++ {
			rows = append(rows, adapter.Row{
				"OAORNO": fmt.Sprintf("CO%07d", 10000+i),
				"OACUNO": fmt.Sprintf("CUS%05d", 100+rng.Intn(14)),
				"OACONO": "100",
			})
		}
		return rows
	}

	purchaseOrder := m3Object("INFOR_M3_PURCHASE_ORDER", "M3 open purchase orders", "MPHEAD")
	purchaseOrder.Mappings = []migrate.Mapping{
		migrate.Converted("IAPUNO", "PurchaseOrder", migrate.ToUpperCase),
		migrate.Converted("IASUNO", "Supplier", migrate.PadLeft10),
		migrate.Converted("IACONO", "CompanyCode", migrate.PadLeft4),
	}
	purchaseOrder.Checks = requiredCheck("PurchaseOrder", "Supplier")
	purchaseOrder.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 7)
		for i := 0; i < 7; i++ {
			rows = append(rows, adapter.Row{
				"IAPUNO": fmt.Sprintf("PO%07d", 20000+i),
				"IASUNO": fmt.Sprintf("SUP%05d", 200+rng.Intn(10)),
				"IACONO": "100",
			})
		}
		return rows
	}

	warehouse := m3Object("INFOR_M3_WAREHOUSE", "M3 warehouses", "MITWHL")
	warehouse.Mappings = []migrate.Mapping{
		migrate.Converted("MWWHLO", "StorageLocation", migrate.ToUpperCase),
		migrate.Direct("MWWHNM", "Description"),
		migrate.Converted("MWCONO", "Plant", migrate.PadLeft4),
	}
	warehouse.Checks = requiredCheck("StorageLocation", "Plant")
	warehouse.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		return []adapter.Row{
			{"MWCONO": "100", "MWWHLO": "001", "MWWHNM": "Main warehouse"},
		}
	}

	return []migrate.Spec{
		company, division, customer, supplier, item, itemBalance,
		customerOrder, purchaseOrder, warehouse,
	}
}
