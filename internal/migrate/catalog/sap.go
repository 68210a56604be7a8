package catalog

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/s4bridge/s4bridge/internal/adapter"
	"github.com/s4bridge/s4bridge/internal/config"
	"github.com/s4bridge/s4bridge/internal/migrate"
)

func sapObject(objectID, name, table string) migrate.Spec {
	return migrate.Spec{
		Identity: migrate.Identity{
			ObjectID:     objectID,
			Name:         name,
			SourceSystem: config.SystemSAP,
			TargetSystem: TargetS4,
		},
		ExtractLive: liveTable(table),
	}
}

// sapObjects maps SAP ECC tables onto the S/4HANA migration cockpit
// object shapes.
func sapObjects() []migrate.Spec {
	companyCode := sapObject("SAP_COMPANY_CODE", "Company codes", "T001")
	companyCode.Mappings = []migrate.Mapping{
		migrate.Converted("BUKRS", "CompanyCode", migrate.PadLeft4),
		migrate.Direct("BUTXT", "CompanyName"),
		migrate.Converted("LAND1", "Country", migrate.ToUpperCase),
		migrate.Direct("WAERS", "Currency").WithDefault("EUR"),
	}
	companyCode.Checks = requiredCheck("CompanyCode", "CompanyName")
	companyCode.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		return []adapter.Row{
			{"BUKRS": "1000", "BUTXT": "IDES AG", "LAND1": "de", "WAERS": "EUR"},
			{"BUKRS": "2000", "BUTXT": "IDES UK", "LAND1": "gb", "WAERS": "GBP"},
		}
	}

	glAccount := sapObject("SAP_GL_ACCOUNT", "G/L account master", "SKA1")
	glAccount.Mappings = []migrate.Mapping{
		migrate.Converted("SAKNR", "GLAccount", migrate.PadLeft10),
		migrate.Direct("KTOPL", "ChartOfAccounts"),
		migrate.Mapped("KTOKS", "AccountGroup", map[string]string{
			"ERG": "PL", "BEST": "BS", "SAKO": "GL",
		}).WithDefault("GL"),
	}
	glAccount.Checks = migrate.QualityChecks{
		Required:       []string{"GLAccount", "ChartOfAccounts"},
		ExactDuplicate: &migrate.DuplicateCheck{Keys: []string{"GLAccount", "ChartOfAccounts"}},
	}
	glAccount.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 25)
		for i := 0; i < 25; i++ {
			rows = append(rows, adapter.Row{
				"SAKNR": fmt.Sprintf("%d", 100000+i*1000),
				"KTOPL": "INT",
				"KTOKS": []string{"ERG", "BEST", "SAKO"}[rng.Intn(3)],
			})
		}
		return rows
	}

	costCenter := sapObject("SAP_COST_CENTER", "Cost centers", "CSKS")
	costCenter.Mappings = []migrate.Mapping{
		migrate.Converted("KOSTL", "CostCenter", migrate.PadLeft10),
		migrate.Direct("KOKRS", "ControllingArea"),
		migrate.Direct("VERAK", "PersonResponsible").WithDefault("UNASSIGNED"),
	}
	costCenter.Checks = requiredCheck("CostCenter", "ControllingArea")
	costCenter.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 12)
		for i := 0; i < 12; i++ {
			rows = append(rows, adapter.Row{
				"KOSTL": fmt.Sprintf("%d", 10000+i*10),
				"KOKRS": "1000",
				"VERAK": fmt.Sprintf("Manager %02d", i+1),
			})
		}
		return rows
	}

	customer := sapObject("SAP_CUSTOMER", "Customer master", "KNA1")
	customer.Mappings = []migrate.Mapping{
		migrate.Converted("KUNNR", "BusinessPartner", migrate.PadLeft10),
		migrate.Direct("NAME1", "Name"),
		migrate.Converted("LAND1", "Country", migrate.ToUpperCase),
		migrate.Constant("BPCategory", "2"),
		migrate.Constant("BPRole", "FLCU01"),
	}
	customer.Checks = migrate.QualityChecks{
		Required:       []string{"BusinessPartner", "Name"},
		FuzzyDuplicate: &migrate.FuzzyCheck{Keys: []string{"Name", "Country"}, Threshold: 0.97},
	}
	customer.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 10)
		for i := 0; i < 10; i++ {
			rows = append(rows, adapter.Row{
				"KUNNR": fmt.Sprintf("%d", 1000+i),
				"NAME1": fmt.Sprintf("Customer %04d", i+1),
				"LAND1": []string{"DE", "GB", "US"}[rng.Intn(3)],
			})
		}
		return rows
	}

	vendor := sapObject("SAP_VENDOR", "Vendor master", "LFA1")
	vendor.Mappings = []migrate.Mapping{
		migrate.Converted("LIFNR", "BusinessPartner", migrate.PadLeft10),
		migrate.Direct("NAME1", "Name"),
		migrate.Converted("LAND1", "Country", migrate.ToUpperCase),
		migrate.Constant("BPCategory", "2"),
		migrate.Constant("BPRole", "FLVN01"),
	}
	vendor.Checks = migrate.QualityChecks{
		Required:       []string{"BusinessPartner", "Name"},
		FuzzyDuplicate: &migrate.FuzzyCheck{Keys: []string{"Name", "Country"}, Threshold: 0.97},
	}
	vendor.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 10)
		for i := 0; i < 10; i++ {
			rows = append(rows, adapter.Row{
				"LIFNR": fmt.Sprintf("%d", 4000+i),
				"NAME1": fmt.Sprintf("Vendor %04d", i+1),
				"LAND1": []string{"DE", "NL", "FR"}[rng.Intn(3)],
			})
		}
		return rows
	}

	material := sapObject("SAP_MATERIAL", "Material master", "MARA")
	material.Mappings = []migrate.Mapping{
		migrate.Converted("MATNR", "Product", migrate.PadLeft40),
		migrate.Mapped("MTART", "ProductType", map[string]string{
			"FERT": "FERT", "ROH": "ROH", "HALB": "HALB",
		}).WithDefault("FERT"),
		migrate.Direct("MEINS", "BaseUnit").WithDefault("EA"),
	}
	material.Checks = migrate.QualityChecks{
		Required:       []string{"Product"},
		ExactDuplicate: &migrate.DuplicateCheck{Keys: []string{"Product"}},
	}
	material.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 20)
		for i := 0; i < 20; i++ {
			rows = append(rows, adapter.Row{
				"MATNR": fmt.Sprintf("%d", 100000+i),
				"MTART": []string{"FERT", "ROH", "HALB"}[rng.Intn(3)],
				"MEINS": []string{"ST", "KG"}[rng.Intn(2)],
			})
		}
		return rows
	}

	openPO := sapObject("SAP_OPEN_PURCHASE_ORDER", "Open purchase orders", "EKKO")
	openPO.Mappings = []migrate.Mapping{
		migrate.Direct("EBELN", "PurchaseOrder"),
		migrate.Converted("LIFNR", "Supplier", migrate.PadLeft10),
		migrate.Converted("BUKRS", "CompanyCode", migrate.PadLeft4),
		migrate.Direct("BSART", "DocumentType").WithDefault("NB"),
	}
	openPO.Checks = requiredCheck("PurchaseOrder", "Supplier")
	openPO.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 10)
		for i := 0; i < 10; i++ {
			rows = append(rows, adapter.Row{
				"EBELN": fmt.Sprintf("%d", 4500000000+i),
				"LIFNR": fmt.Sprintf("%d", 4000+rng.Intn(10)),
				"BUKRS": "1000",
				"BSART": "NB",
			})
		}
		return rows
	}

	openSO := sapObject("SAP_OPEN_SALES_ORDER", "Open sales orders", "VBAK")
	openSO.Mappings = []migrate.Mapping{
		migrate.Converted("VBELN", "SalesOrder", migrate.PadLeft10),
		migrate.Converted("KUNNR", "SoldToParty", migrate.PadLeft10),
		migrate.Direct("VKORG", "SalesOrganization"),
		migrate.Direct("AUART", "OrderType").WithDefault("OR"),
	}
	openSO.Checks = requiredCheck("SalesOrder", "SoldToParty")
	openSO.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 12)
		for i := 0; i < 12; i++ {
			rows = append(rows, adapter.Row{
				"VBELN": fmt.Sprintf("%d", 5000+i),
				"KUNNR": fmt.Sprintf("%d", 1000+rng.Intn(10)),
				"VKORG": "1000",
				"AUART": "OR",
			})
		}
		return rows
	}

	openItem := sapObject("SAP_GL_OPEN_ITEM", "G/L open items", "BSEG")
	openItem.Mappings = []migrate.Mapping{
		migrate.Converted("BUKRS", "CompanyCode", migrate.PadLeft4),
		migrate.Converted("BELNR", "Document", migrate.PadLeft10),
		migrate.Direct("GJAHR", "FiscalYear"),
		migrate.Converted("WRBTR", "Amount", migrate.ToDecimal),
	}
	openItem.Checks = migrate.QualityChecks{
		Required: []string{"CompanyCode", "Document"},
		Range:    []migrate.RangeCheck{{Field: "Amount", Min: 0, Max: 10000000}},
	}
	openItem.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 30)
		for i := 0; i < 30; i++ {
			rows = append(rows, adapter.Row{
				"BUKRS": "1000",
				"BELNR": fmt.Sprintf("%d", 1900000000+i/2),
				"GJAHR": "2025",
				"WRBTR": fmt.Sprintf("%.2f", 10+rng.Float64()*990),
			})
		}
		return rows
	}

	exchangeRate := sapObject("SAP_EXCHANGE_RATE", "Exchange rates", "TCURR")
	exchangeRate.Mappings = []migrate.Mapping{
		migrate.Direct("KURST", "RateType").WithDefault("M"),
		migrate.Converted("FCURR", "FromCurrency", migrate.ToUpperCase),
		migrate.Converted("TCURR", "ToCurrency", migrate.ToUpperCase),
		migrate.Converted("UKURS", "Rate", migrate.ToDecimal),
	}
	exchangeRate.Checks = migrate.QualityChecks{
		Required: []string{"FromCurrency", "ToCurrency"},
		Range:    []migrate.RangeCheck{{Field: "Rate", Min: 0.0001, Max: 100000}},
	}
	exchangeRate.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		return []adapter.Row{
			{"KURST": "M", "FCURR": "usd", "TCURR": "eur", "UKURS": "0.9132"},
			{"KURST": "M", "FCURR": "gbp", "TCURR": "eur", "UKURS": "1.1721"},
		}
	}

	profitCenter := sapObject("SAP_PROFIT_CENTER", "Profit centers", "CEPC")
	profitCenter.Mappings = []migrate.Mapping{
		migrate.Converted("PRCTR", "ProfitCenter", migrate.PadLeft10),
		migrate.Direct("KOKRS", "ControllingArea"),
	}
	profitCenter.Checks = requiredCheck("ProfitCenter", "ControllingArea")
	profitCenter.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 8)
		for i := 0; i < 8; i++ {
			rows = append(rows, adapter.Row{"PRCTR": fmt.Sprintf("%d", 9000+i), "KOKRS": "1000"})
		}
		return rows
	}

	bank := sapObject("SAP_BANK", "Bank master", "BNKA")
	bank.Mappings = []migrate.Mapping{
		migrate.Converted("BANKS", "BankCountry", migrate.ToUpperCase),
		migrate.Direct("BANKL", "BankKey"),
		migrate.Direct("BANKA", "BankName"),
	}
	bank.Checks = migrate.QualityChecks{
		Required:       []string{"BankCountry", "BankKey"},
		ExactDuplicate: &migrate.DuplicateCheck{Keys: []string{"BankCountry", "BankKey"}},
	}
	bank.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		return []adapter.Row{
			{"BANKS": "de", "BANKL": "10070000", "BANKA": "Deutsche Bank"},
			{"BANKS": "de", "BANKL": "37040044", "BANKA": "Commerzbank"},
		}
	}

	fixedAsset := sapObject("SAP_FIXED_ASSET", "Fixed assets", "ANLA")
	fixedAsset.Mappings = []migrate.Mapping{
		migrate.Converted("BUKRS", "CompanyCode", migrate.PadLeft4),
		migrate.Direct("ANLN1", "MainAssetNumber"),
		migrate.Direct("ANLKL", "AssetClass"),
		migrate.Converted("AKTIV", "CapitalizationDate", migrate.ToDate),
	}
	fixedAsset.Checks = requiredCheck("CompanyCode", "MainAssetNumber", "AssetClass")
	fixedAsset.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 9)
		for i := 0; i < 9; i++ {
			rows = append(rows, adapter.Row{
				"BUKRS": "1000",
				"ANLN1": fmt.Sprintf("%d", 30000+i),
				"ANLKL": "3000",
				"AKTIV": "20210401",
			})
		}
		return rows
	}

	batch := sapObject("SAP_BATCH", "Batches", "MCH1")
	batch.Mappings = []migrate.Mapping{
		migrate.Converted("MATNR", "Product", migrate.PadLeft40),
		migrate.Converted("CHARG", "Batch", migrate.ToUpperCase),
		migrate.Converted("VFDAT", "ExpirationDate", migrate.ToDate),
	}
	batch.Checks = requiredCheck("Product", "Batch")
	batch.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 6)
		for i := 0; i < 6; i++ {
			rows = append(rows, adapter.Row{
				"MATNR": fmt.Sprintf("%d", 100000+i),
				"CHARG": fmt.Sprintf("b%05d", i+1),
				"VFDAT": "20261231",
			})
		}
		return rows
	}

	wbs := sapObject("SAP_WBS_ELEMENT", "WBS elements", "PRPS")
	wbs.Mappings = []migrate.Mapping{
		migrate.Transformed("POSID", "WBSElement", func(v any, row adapter.Row) any {
			return strings.ReplaceAll(fmt.Sprintf("%v", v), ".", "-")
		}),
		migrate.Direct("POST1", "Description"),
	}
	wbs.Checks = requiredCheck("WBSElement")
	wbs.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		return []adapter.Row{
			{"POSID": "P.0001.01", "POST1": "Rollout phase 1"},
			{"POSID": "P.0001.02", "POST1": "Rollout phase 2"},
		}
	}

	return []migrate.Spec{
		companyCode, glAccount, costCenter, customer, vendor, material,
		openPO, openSO, openItem, exchangeRate, profitCenter, bank,
		fixedAsset, batch, wbs,
	}
}
