package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		resourceType string
		want         Category
	}{
		{"virtual machine", "Microsoft.Compute/virtualMachines", CategoryCompute},
		{"aks cluster", "Microsoft.ContainerService/managedClusters", CategoryCompute},
		{"app service", "Microsoft.Web/sites", CategoryCompute},
		{"storage account", "Microsoft.Storage/storageAccounts", CategoryStorage},
		{"sql server", "Microsoft.Sql/servers", CategoryDatabase},
		{"cosmos db", "Microsoft.DocumentDB/databaseAccounts", CategoryDatabase},
		{"mysql flexible", "Microsoft.DBforMySQL/flexibleServers", CategoryDatabase},
		{"redis", "Microsoft.Cache/Redis", CategoryDatabase},
		{"vnet", "Microsoft.Network/virtualNetworks", CategoryNetwork},
		{"nsg", "Microsoft.Network/networkSecurityGroups", CategoryNetwork},
		{"key vault", "Microsoft.KeyVault/vaults", CategorySecurity},
		{"app insights", "Microsoft.Insights/components", CategoryMonitoring},
		{"log analytics", "Microsoft.OperationalInsights/workspaces", CategoryMonitoring},
		{"logic app", "Microsoft.Logic/workflows", CategoryIntegration},
		{"service bus", "Microsoft.ServiceBus/namespaces", CategoryIntegration},
		{"unmatched provider", "Microsoft.Maps/accounts", CategoryOther},
		{"empty string", "", CategoryOther},
		{"garbage", "not-a-resource-type!!", CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.resourceType))
		})
	}
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, CategoryStorage, Classify("MICROSOFT.STORAGE/STORAGEACCOUNTS"))
	assert.Equal(t, CategoryStorage, Classify("microsoft.storage/storageaccounts"))
}

// A type matching two rules must classify by the earlier-declared rule,
// regardless of where in the string each keyword appears. Storage is
// declared before Network, so both arrangements land on Storage.
func TestClassifyRuleOrderBreaksTies(t *testing.T) {
	t.Run("storage keyword first in string", func(t *testing.T) {
		got := Classify("microsoft.storage/accounts/microsoft.network/endpoints")
		assert.Equal(t, CategoryStorage, got)
	})

	t.Run("network keyword first in string", func(t *testing.T) {
		got := Classify("microsoft.network/endpoints/microsoft.storage/accounts")
		assert.Equal(t, CategoryStorage, got)
	})

	t.Run("security loses to compute", func(t *testing.T) {
		// Compute is declared before Security.
		got := Classify("microsoft.web/sites/microsoft.keyvault/refs")
		assert.Equal(t, CategoryCompute, got)
	})
}

func TestClassifyAlwaysReturnsFixedCategory(t *testing.T) {
	known := map[Category]bool{}
	for _, c := range Categories() {
		known[c] = true
	}

	inputs := []string{
		"Microsoft.Compute/virtualMachines",
		"Microsoft.Unknown/things",
		"",
		"///",
		"STORAGE",
	}

	for _, in := range inputs {
		assert.True(t, known[Classify(in)], "Classify(%q) returned a category outside the fixed set", in)
	}
}

func TestCategoriesEndsWithCatchAll(t *testing.T) {
	cats := Categories()
	assert.Equal(t, CategoryOther, cats[len(cats)-1])
	assert.Len(t, cats, 8)
}
