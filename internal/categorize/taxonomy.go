package categorize

// CategoryDomain splits the taxonomy into the two top-level business domains.
type CategoryDomain string

const (
	DomainIncome  CategoryDomain = "income"
	DomainExpense CategoryDomain = "expense"
)

// Uncategorized is assigned when no keyword and no learned association hits.
const Uncategorized = "uncategorized"

// SubCategory is one leaf of the closed taxonomy. Keywords are matched
// case-insensitively, as substrings, in declaration order; the first hit wins.
type SubCategory struct {
	Name          string
	Domain        CategoryDomain
	Keywords      []string
	VATApplicable bool
}

// Taxonomy is the fixed category set. Income-typed transactions are matched
// only against income sub-categories and expense-typed only against expense
// sub-categories. Salary and statutory-deduction categories are VAT-exempt.
var Taxonomy = []SubCategory{
	// Income
	{Name: "sales", Domain: DomainIncome, VATApplicable: true,
		Keywords: []string{"sale", "order", "purchase", "goods", "customer", "invoice", "till"}},
	{Name: "service_income", Domain: DomainIncome, VATApplicable: true,
		Keywords: []string{"service", "consult", "repair", "labour", "labor", "installation", "delivery fee"}},
	{Name: "digital_sales", Domain: DomainIncome, VATApplicable: true,
		Keywords: []string{"online", "website", "jumia", "glovo", "uber eats", "app", "ecommerce"}},
	{Name: "rental_income", Domain: DomainIncome, VATApplicable: true,
		Keywords: []string{"rent received", "tenant", "lease", "deposit refund"}},

	// Expense
	{Name: "inventory", Domain: DomainExpense, VATApplicable: true,
		Keywords: []string{"stock", "wholesale", "supplier", "distributor", "restock", "warehouse", "mali"}},
	{Name: "utilities", Domain: DomainExpense, VATApplicable: true,
		Keywords: []string{"kplc", "electricity", "tokens", "water", "nairobi water", "internet", "wifi", "zuku", "safaricom home", "gas", "lpg"}},
	{Name: "transport", Domain: DomainExpense, VATApplicable: true,
		Keywords: []string{"matatu", "boda", "uber", "bolt", "little cab", "fuel", "petrol", "diesel", "parking", "fare"}},
	{Name: "rent", Domain: DomainExpense, VATApplicable: true,
		Keywords: []string{"rent", "landlord", "premises", "stall fee"}},
	{Name: "staff_costs", Domain: DomainExpense, VATApplicable: false,
		Keywords: []string{"salary", "wages", "payroll", "casual", "mjengo", "staff", "allowance", "nssf", "nhif", "sha"}},
	{Name: "tax_compliance", Domain: DomainExpense, VATApplicable: false,
		Keywords: []string{"kra", "itax", "vat", "paye", "county", "permit", "license", "levy"}},
	{Name: "marketing", Domain: DomainExpense, VATApplicable: true,
		Keywords: []string{"advert", "promotion", "facebook", "instagram", "google ads", "printing", "banner", "signage"}},
	{Name: "banking_finance", Domain: DomainExpense, VATApplicable: true,
		Keywords: []string{"bank", "loan", "mshwari", "kcb", "equity", "fuliza", "interest", "insurance", "sacco"}},
	{Name: "digital_services", Domain: DomainExpense, VATApplicable: true,
		Keywords: []string{"airtime", "bundles", "data", "subscription", "netflix", "showmax", "hosting", "domain", "software"}},
}

// vatFor reports the VAT flag for a taxonomy category name. Unknown names
// (including Uncategorized) are not VAT-applicable.
func vatFor(category string) bool {
	for _, sc := range Taxonomy {
		if sc.Name == category {
			return sc.VATApplicable
		}
	}
	return false
}
