package inventory

import "strings"

// Category is one bucket of the fixed resource taxonomy. Every resource
// belongs to exactly one category; Other is the catch-all.
type Category string

const (
	CategoryCompute     Category = "Compute"
	CategoryStorage     Category = "Storage"
	CategoryDatabase    Category = "Database"
	CategoryNetwork     Category = "Network"
	CategorySecurity    Category = "Security"
	CategoryMonitoring  Category = "Monitoring"
	CategoryIntegration Category = "Integration"
	CategoryOther       Category = "Other"
)

type categoryRule struct {
	category Category
	keywords []string
}

// classificationRules map provider namespaces to categories. Rules are
// evaluated in declared order and the first keyword hit wins, so a type
// string matching several rules classifies by whichever rule comes first.
// That ordering is the tie-break policy; change it only deliberately.
var classificationRules = []categoryRule{
	{CategoryCompute, []string{
		"microsoft.compute",
		"microsoft.containerservice",
		"microsoft.containerinstance",
		"microsoft.web",
	}},
	{CategoryStorage, []string{
		"microsoft.storage",
	}},
	{CategoryDatabase, []string{
		"microsoft.sql",
		"microsoft.documentdb",
		"microsoft.dbformysql",
		"microsoft.dbforpostgresql",
		"microsoft.cache",
	}},
	{CategoryNetwork, []string{
		"microsoft.network",
	}},
	{CategorySecurity, []string{
		"microsoft.keyvault",
		"microsoft.security",
	}},
	{CategoryMonitoring, []string{
		"microsoft.insights",
		"microsoft.operationalinsights",
	}},
	{CategoryIntegration, []string{
		"microsoft.logic",
		"microsoft.apimanagement",
		"microsoft.eventgrid",
		"microsoft.servicebus",
		"microsoft.eventhub",
	}},
}

// Classify maps a resource type string to its category. It never fails:
// empty, malformed, or unrecognized types classify as Other.
func Classify(resourceType string) Category {
	t := strings.ToLower(resourceType)

	for _, rule := range classificationRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(t, keyword) {
				return rule.category
			}
		}
	}

	return CategoryOther
}

// Categories returns every category in classification order, with the
// catch-all last. The slice is a copy; callers may reorder it.
func Categories() []Category {
	cats := make([]Category, 0, len(classificationRules)+1)
	for _, rule := range classificationRules {
		cats = append(cats, rule.category)
	}

	return append(cats, CategoryOther)
}
