package catalog

import (
	"fmt"
	"math/rand"

	"github.com/s4bridge/s4bridge/internal/adapter"
	"github.com/s4bridge/s4bridge/internal/config"
	"github.com/s4bridge/s4bridge/internal/migrate"
)

func lnObject(objectID, name, table string) migrate.Spec {
	return migrate.Spec{
		Identity: migrate.Identity{
			ObjectID:     objectID,
			Name:         name,
			SourceSystem: config.SystemInforLN,
			TargetSystem: TargetS4,
		},
		ExtractLive: liveTable(table),
	}
}

// lnCompanies are the two LN companies every LN fixture spans.
var lnCompanies = []string{"100", "200"}

// inforLNObjects maps Infor LN (Baan) tables onto S/4HANA objects.
func inforLNObjects() []migrate.Spec {
	glAccount := lnObject("INFOR_LN_GL_ACCOUNT", "LN ledger accounts", "tfgld008")
	glAccount.Mappings = []migrate.Mapping{
		migrate.Converted("leac", "GLAccount", migrate.PadLeft10),
		migrate.Converted("comp", "CompanyCode", migrate.PadLeft4),
		migrate.Direct("dsca", "Description"),
		migrate.Mapped("type", "AccountType", map[string]string{
			"1": "BS", "2": "PL",
		}).WithDefault("BS"),
		migrate.Constant("ChartOfAccounts", "YCOA"),
	}
	glAccount.Checks = migrate.QualityChecks{
		Required:       []string{"GLAccount", "CompanyCode", "Description"},
		ExactDuplicate: &migrate.DuplicateCheck{Keys: []string{"GLAccount", "CompanyCode"}},
	}
	// 20 ledger accounts replicated into both companies: 40 records.
	glAccount.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 40)
		for i := 0; i < 20; i++ {
			leac := fmt.Sprintf("%06d", 100000+i*500)
			for _, comp := range lnCompanies {
				rows = append(rows, adapter.Row{
					"leac": leac,
					"comp": comp,
					"dsca": fmt.Sprintf("Ledger account %04d", i+1),
					"type": []string{"1", "2"}[rng.Intn(2)],
				})
			}
		}
		return rows
	}

	businessPartner := lnObject("INFOR_LN_BUSINESS_PARTNER", "LN business partners", "tccom100")
	businessPartner.Mappings = []migrate.Mapping{
		migrate.Converted("bpid", "BusinessPartner", migrate.PadLeft10),
		migrate.Direct("nama", "Name"),
		migrate.Mapped("stbp", "Status", map[string]string{
			"active": "1", "inactive": "2",
		}).WithDefault("1"),
		migrate.Constant("BPCategory", "2"),
	}
	businessPartner.Checks = migrate.QualityChecks{
		Required:       []string{"BusinessPartner", "Name"},
		FuzzyDuplicate: &migrate.FuzzyCheck{Keys: []string{"Name"}, Threshold: 0.95},
	}
	businessPartner.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 15)
		for i := 0; i < 15; i++ {
			rows = append(rows, adapter.Row{
				"bpid": fmt.Sprintf("BP%06d", 1000+i),
				"nama": fmt.Sprintf("Partner %04d", i+1),
				"stbp": "active",
			})
		}
		return rows
	}

	item := lnObject("INFOR_LN_ITEM", "LN item master", "tcibd001")
	item.Mappings = []migrate.Mapping{
		migrate.Converted("item", "Product", migrate.PadLeft40),
		migrate.Direct("dsca", "Description"),
		migrate.Mapped("kitm", "ProductType", map[string]string{
			"1": "FERT", "2": "HALB", "4": "ROH",
		}).WithDefault("FERT"),
	}
	item.Checks = migrate.QualityChecks{
		Required:       []string{"Product"},
		ExactDuplicate: &migrate.DuplicateCheck{Keys: []string{"Product"}},
	}
	item.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 18)
		for i := 0; i < 18; i++ {
			rows = append(rows, adapter.Row{
				"item": fmt.Sprintf("ITM%06d", 1000+i),
				"dsca": fmt.Sprintf("Item %04d", i+1),
				"kitm": []string{"1", "2", "4"}[rng.Intn(3)],
			})
		}
		return rows
	}

	salesOrder := lnObject("INFOR_LN_SALES_ORDER", "LN open sales orders", "tdsls400")
	salesOrder.Mappings = []migrate.Mapping{
		migrate.Converted("orno", "SalesOrder", migrate.ToUpperCase),
		migrate.Converted("ofbp", "SoldToParty", migrate.PadLeft10),
		migrate.Converted("comp", "CompanyCode", migrate.PadLeft4),
	}
	salesOrder.Checks = requiredCheck("SalesOrder", "SoldToParty")
	salesOrder.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 10)
		for i := 0; i < 10; i++ {
			rows = append(rows, adapter.Row{
				"orno": fmt.Sprintf("sls%06d", 1000+i),
				"ofbp": fmt.Sprintf("BP%06d", 1000+rng.Intn(15)),
				"comp": "100",
			})
		}
		return rows
	}

	purchaseOrder := lnObject("INFOR_LN_PURCHASE_ORDER", "LN open purchase orders", "tdpur400")
	purchaseOrder.Mappings = []migrate.Mapping{
		migrate.Converted("orno", "PurchaseOrder", migrate.ToUpperCase),
		migrate.Converted("otbp", "Supplier", migrate.PadLeft10),
		migrate.Converted("comp", "CompanyCode", migrate.PadLeft4),
	}
	purchaseOrder.Checks = requiredCheck("PurchaseOrder", "Supplier")
	purchaseOrder.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 8)
		for i := 0; i < 8; i++ {
			rows = append(rows, adapter.Row{
				"orno": fmt.Sprintf("pur%06d", 2000+i),
				"otbp": fmt.Sprintf("BP%06d", 1000+rng.Intn(15)),
				"comp": "100",
			})
		}
		return rows
	}

	warehouse := lnObject("INFOR_LN_WAREHOUSE", "LN warehouses", "whwmd200")
	warehouse.Mappings = []migrate.Mapping{
		migrate.Converted("cwar", "StorageLocation", migrate.ToUpperCase),
		migrate.Direct("dsca", "Description"),
		migrate.Converted("comp", "Plant", migrate.PadLeft4),
	}
	warehouse.Checks = requiredCheck("StorageLocation", "Plant")
	warehouse.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		return []adapter.Row{
			{"cwar": "wh1", "dsca": "Central warehouse", "comp": "100"},
			{"cwar": "wh2", "dsca": "Spare parts warehouse", "comp": "100"},
		}
	}

	address := lnObject("INFOR_LN_BP_ADDRESS", "LN business partner addresses", "tccom110")
	address.Mappings = []migrate.Mapping{
		migrate.Converted("bpid", "BusinessPartner", migrate.PadLeft10),
		migrate.Converted("ccty", "Country", migrate.ToUpperCase),
		migrate.Direct("city", "City"),
	}
	address.Checks = requiredCheck("BusinessPartner", "Country")
	address.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 15)
		for i := 0; i < 15; i++ {
			rows = append(rows, adapter.Row{
				"bpid": fmt.Sprintf("BP%06d", 1000+i),
				"ccty": []string{"NL", "DE", "BE"}[rng.Intn(3)],
				"city": []string{"Amsterdam", "Hamburg", "Antwerp"}[rng.Intn(3)],
			})
		}
		return rows
	}

	dimension := lnObject("INFOR_LN_DIMENSION", "LN dimensions as cost centers", "tfgld010")
	dimension.Mappings = []migrate.Mapping{
		migrate.Converted("dim", "CostCenter", migrate.PadLeft10),
		migrate.Direct("dsca", "Description"),
		migrate.Constant("ControllingArea", "1000"),
	}
	dimension.Checks = requiredCheck("CostCenter", "ControllingArea")
	dimension.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		return []adapter.Row{
			{"dim": "1", "dsca": "Cost center dimension"},
			{"dim": "2", "dsca": "Project dimension"},
		}
	}

	currency := lnObject("INFOR_LN_CURRENCY", "LN currencies", "tcmcs010")
	currency.Mappings = []migrate.Mapping{
		migrate.Converted("ccur", "Currency", migrate.ToUpperCase),
		migrate.Direct("dsca", "Description"),
	}
	currency.Checks = migrate.QualityChecks{
		Required:       []string{"Currency"},
		ExactDuplicate: &migrate.DuplicateCheck{Keys: []string{"Currency"}},
	}
	currency.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		return []adapter.Row{
			{"ccur": "eur", "dsca": "Euro"},
			{"ccur": "gbp", "dsca": "Pound sterling"},
		}
	}

	return []migrate.Spec{
		glAccount, businessPartner, item, salesOrder, purchaseOrder,
		warehouse, address, dimension, currency,
	}
}
