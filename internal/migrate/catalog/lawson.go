package catalog

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/s4bridge/s4bridge/internal/adapter"
	"github.com/s4bridge/s4bridge/internal/config"
	"github.com/s4bridge/s4bridge/internal/migrate"
)

func lawsonObject(objectID, name, table string) migrate.Spec {
	return migrate.Spec{
		Identity: migrate.Identity{
			ObjectID:     objectID,
			Name:         name,
			SourceSystem: config.SystemLawson,
			TargetSystem: TargetS4,
		},
		ExtractLive: liveTable(table),
	}
}

// lawsonObjects maps Lawson S3 tables onto S/4HANA objects.
func lawsonObjects() []migrate.Spec {
	company := lawsonObject("LAWSON_COMPANY", "Lawson GL companies", "GLSYSTEM")
	company.Mappings = []migrate.Mapping{
		migrate.Converted("COMPANY", "CompanyCode", migrate.PadLeft4),
		migrate.Direct("NAME", "CompanyName"),
		migrate.Direct("BASE_CURRENCY", "Currency").WithDefault("USD"),
	}
	company.Checks = requiredCheck("CompanyCode", "CompanyName")
	company.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		return []adapter.Row{
			{"COMPANY": "0100", "NAME": "US Operations", "BASE_CURRENCY": "USD"},
		}
	}

	glAccount := lawsonObject("LAWSON_GL_ACCOUNT", "Lawson GL accounts", "GLMASTER")
	glAccount.Mappings = []migrate.Mapping{
		// Lawson account + sub-account collapse into one S/4 account id.
		migrate.Transformed("ACCOUNT", "GLAccount", func(v any, row adapter.Row) any {
			sub := fmt.Sprintf("%v", row["SUB_ACCOUNT"])
			if sub == "" || sub == "0000" || sub == "<nil>" {
				return v
			}
			return fmt.Sprintf("%v%s", v, sub)
		}).WithConvert(migrate.PadLeft10),
		migrate.Converted("COMPANY", "CompanyCode", migrate.PadLeft4),
		migrate.Converted("ACCT_UNIT", "CostCenter", migrate.PadLeft10),
		migrate.Constant("ChartOfAccounts", "YCOA"),
	}
	glAccount.Checks = migrate.QualityChecks{
		Required:       []string{"GLAccount", "CompanyCode"},
		ExactDuplicate: &migrate.DuplicateCheck{Keys: []string{"GLAccount", "CompanyCode", "CostCenter"}},
	}
	glAccount.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 22)
		for i := 0; i < 22; i++ {
			rows = append(rows, adapter.Row{
				"COMPANY":     "0100",
				"ACCT_UNIT":   fmt.Sprintf("%05d", 100+(i%6)*10),
				"ACCOUNT":     fmt.Sprintf("%04d", 1000+i*100),
				"SUB_ACCOUNT": "0000",
			})
		}
		return rows
	}

	vendor := lawsonObject("LAWSON_VENDOR", "Lawson AP vendors", "APVENMAST")
	vendor.Mappings = []migrate.Mapping{
		migrate.Converted("VENDOR", "BusinessPartner", migrate.PadLeft10),
		migrate.Direct("VENDOR_VNAME", "Name"),
		migrate.Constant("BPRole", "FLVN01"),
	}
	vendor.Checks = migrate.QualityChecks{
		Required:       []string{"BusinessPartner", "Name"},
		FuzzyDuplicate: &migrate.FuzzyCheck{Keys: []string{"Name"}, Threshold: 0.95},
	}
	vendor.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 12)
		for i := 0; i < 12; i++ {
			rows = append(rows, adapter.Row{
				"VENDOR":       fmt.Sprintf("%d", 5000+i),
				"VENDOR_VNAME": fmt.Sprintf("Vendor %04d", i+1),
			})
		}
		return rows
	}

	customer := lawsonObject("LAWSON_CUSTOMER", "Lawson AR customers", "ARCUSTOMER")
	customer.Mappings = []migrate.Mapping{
		migrate.Converted("CUSTOMER", "BusinessPartner", migrate.PadLeft10),
		migrate.Direct("NAME", "Name"),
		migrate.Constant("BPRole", "FLCU01"),
	}
	customer.Checks = requiredCheck("BusinessPartner", "Name")
	customer.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 10)
		for i := 0; i < 10; i++ {
			rows = append(rows, adapter.Row{
				"CUSTOMER": fmt.Sprintf("%d", 7000+i),
				"NAME":     fmt.Sprintf("Customer %04d", i+1),
			})
		}
		return rows
	}

	item := lawsonObject("LAWSON_ITEM", "Lawson IC items", "ICITEM")
	item.Mappings = []migrate.Mapping{
		migrate.Converted("ITEM", "Product", migrate.PadLeft40),
		migrate.Direct("DESCRIPTION", "Description"),
		migrate.Mapped("UOM", "BaseUnit", map[string]string{
			"EA": "ST", "CS": "KAR", "LB": "LB",
		}).WithDefault("ST"),
	}
	item.Checks = migrate.QualityChecks{
		Required:       []string{"Product"},
		ExactDuplicate: &migrate.DuplicateCheck{Keys: []string{"Product"}},
	}
	item.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 14)
		for i := 0; i < 14; i++ {
			rows = append(rows, adapter.Row{
				"ITEM":        fmt.Sprintf("LAW%05d", 400+i),
				"DESCRIPTION": fmt.Sprintf("Item %04d", i+1),
				"UOM":         []string{"EA", "CS", "LB"}[rng.Intn(3)],
			})
		}
		return rows
	}

	accountingUnit := lawsonObject("LAWSON_ACCOUNTING_UNIT", "Lawson accounting units as cost centers", "GLNAMES")
	accountingUnit.Mappings = []migrate.Mapping{
		migrate.Converted("ACCT_UNIT", "CostCenter", migrate.PadLeft10),
		migrate.Converted("COMPANY", "CompanyCode", migrate.PadLeft4),
		migrate.Direct("NAME", "Description"),
	}
	accountingUnit.Checks = requiredCheck("CostCenter", "CompanyCode")
	accountingUnit.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 6)
		for i := 0; i < 6; i++ {
			rows = append(rows, adapter.Row{
				"COMPANY":   "0100",
				"ACCT_UNIT": fmt.Sprintf("%05d", 100+i*10),
				"NAME":      fmt.Sprintf("Accounting unit %04d", i+1),
			})
		}
		return rows
	}

	openInvoice := lawsonObject("LAWSON_OPEN_AP_INVOICE", "Lawson open AP invoices", "APINVOICE")
	openInvoice.Mappings = []migrate.Mapping{
		migrate.Transformed("INVOICE", "Reference", func(v any, row adapter.Row) any {
			return strings.TrimPrefix(fmt.Sprintf("%v", v), "INV-")
		}),
		migrate.Converted("VENDOR", "Supplier", migrate.PadLeft10),
		migrate.Converted("COMPANY", "CompanyCode", migrate.PadLeft4),
		migrate.Converted("TRAN_AMOUNT", "Amount", migrate.ToDecimal),
	}
	openInvoice.Checks = migrate.QualityChecks{
		Required: []string{"Reference", "Supplier"},
		Range:    []migrate.RangeCheck{{Field: "Amount", Min: 0, Max: 5000000}},
	}
	openInvoice.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		rows := make([]adapter.Row, 0, 9)
		for i := 0; i < 9; i++ {
			rows = append(rows, adapter.Row{
				"COMPANY":     "0100",
				"VENDOR":      fmt.Sprintf("%d", 5000+rng.Intn(12)),
				"INVOICE":     fmt.Sprintf("INV-%06d", 90000+i),
				"TRAN_AMOUNT": fmt.Sprintf("%.2f", 50+rng.Float64()*1950),
			})
		}
		return rows
	}

	location := lawsonObject("LAWSON_LOCATION", "Lawson inventory locations", "ICLOCATION")
	location.Mappings = []migrate.Mapping{
		migrate.Converted("LOCATION", "StorageLocation", migrate.ToUpperCase),
		migrate.Direct("NAME", "Description"),
		migrate.Converted("COMPANY", "Plant", migrate.PadLeft4),
	}
	location.Checks = requiredCheck("StorageLocation", "Plant")
	location.ExtractMock = func(rng *rand.Rand) []adapter.Row {
		return []adapter.Row{
			{"COMPANY": "0100", "LOCATION": "MAIN", "NAME": "Main distribution center"},
		}
	}

	return []migrate.Spec{
		company, glAccount, vendor, customer, item, accountingUnit,
		openInvoice, location,
	}
}
