package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azurescope/explorer/pkg/azure"
	"github.com/azurescope/explorer/pkg/inventory"
)

func vmResource(name string) azure.Resource {
	return azure.Resource{
		ID:            "/subscriptions/s1/resourceGroups/rg-app/providers/Microsoft.Compute/virtualMachines/" + name,
		Name:          name,
		Type:          "Microsoft.Compute/virtualMachines",
		Location:      "eastus",
		ResourceGroup: "rg-app",
	}
}

func networkFixtures() []azure.Resource {
	return []azure.Resource{
		{
			ID:            "/subscriptions/s1/resourceGroups/rg-app/providers/Microsoft.Network/virtualNetworks/vnet-main",
			Name:          "vnet-main",
			Type:          "Microsoft.Network/virtualNetworks",
			Location:      "eastus",
			ResourceGroup: "rg-app",
			Properties: map[string]any{
				"addressSpace": map[string]any{
					"addressPrefixes": []any{"10.0.0.0/16"},
				},
				"subnets": []any{
					map[string]any{
						"name": "subnet-web",
						"properties": map[string]any{
							"addressPrefix": "10.0.1.0/24",
							"networkSecurityGroup": map[string]any{
								"id": "/subscriptions/s1/resourceGroups/rg-app/providers/Microsoft.Network/networkSecurityGroups/nsg-web",
							},
						},
					},
					map[string]any{
						"name": "subnet-data",
						"properties": map[string]any{
							"addressPrefix": "10.0.2.0/24",
						},
					},
				},
			},
		},
		{
			ID:            "/subscriptions/s1/resourceGroups/rg-app/providers/Microsoft.Network/networkSecurityGroups/nsg-web",
			Name:          "nsg-web",
			Type:          "Microsoft.Network/networkSecurityGroups",
			Location:      "eastus",
			ResourceGroup: "rg-app",
			Properties: map[string]any{
				"securityRules": []any{
					map[string]any{
						"name": "allow-ssh-anywhere",
						"properties": map[string]any{
							"priority":                 float64(200),
							"direction":                "Inbound",
							"access":                   "Allow",
							"protocol":                 "Tcp",
							"sourceAddressPrefix":      "*",
							"sourcePortRange":          "*",
							"destinationAddressPrefix": "10.0.1.0/24",
							"destinationPortRange":     "22",
						},
					},
				},
				"defaultSecurityRules": []any{
					map[string]any{
						"name": "DenyAllInBound",
						"properties": map[string]any{
							"priority":                 float64(65500),
							"direction":                "Inbound",
							"access":                   "Deny",
							"protocol":                 "*",
							"sourceAddressPrefix":      "*",
							"sourcePortRange":          "*",
							"destinationAddressPrefix": "*",
							"destinationPortRange":     "*",
						},
					},
				},
			},
		},
		{
			ID:            "/subscriptions/s1/resourceGroups/rg-app/providers/Microsoft.Network/loadBalancers/lb-web",
			Name:          "lb-web",
			Type:          "Microsoft.Network/loadBalancers",
			Location:      "eastus",
			ResourceGroup: "rg-app",
			Properties: map[string]any{
				"sku": map[string]any{"name": "Standard"},
			},
		},
		{
			ID:            "/subscriptions/s1/resourceGroups/rg-app/providers/Microsoft.Network/publicIPAddresses/pip-web",
			Name:          "pip-web",
			Type:          "Microsoft.Network/publicIPAddresses",
			Location:      "eastus",
			ResourceGroup: "rg-app",
			Properties: map[string]any{
				"ipAddress":                "20.1.2.3",
				"publicIPAllocationMethod": "Static",
			},
		},
	}
}

func reportSnapshot() *inventory.Snapshot {
	resources := []azure.Resource{
		vmResource("vm-web-01"),
		vmResource("vm-web-02"),
		vmResource("vm-web-03"),
		vmResource("vm-web-04"),
		{
			ID:            "/subscriptions/s1/resourceGroups/rg-data/providers/Microsoft.Storage/storageAccounts/sadata",
			Name:          "sadata",
			Type:          "Microsoft.Storage/storageAccounts",
			Location:      "westus",
			ResourceGroup: "rg-data",
		},
	}
	resources = append(resources, networkFixtures()...)

	groups := []azure.ResourceGroup{
		{Name: "rg-app", Location: "eastus"},
		{Name: "rg-data", Location: "westus"},
	}

	return inventory.NewSnapshot(&azure.Subscription{ID: "sub-1", Name: "dev"}, groups, resources)
}

func TestArchitectureListsGroupsAndTruncatesInstances(t *testing.T) {
	out := Architecture(reportSnapshot(), 80)

	assert.Contains(t, out, "# AZURE ARCHITECTURE OVERVIEW")
	assert.Contains(t, out, "Subscription: sub-1")
	assert.Contains(t, out, "rg-app")
	assert.Contains(t, out, "rg-data")
	assert.Contains(t, out, "virtualMachines (4 instances)")

	// Only the first three members of a type are listed by name.
	assert.Contains(t, out, "vm-web-03")
	assert.NotContains(t, out, "vm-web-04")
	assert.Contains(t, out, "... and 1 more")

	assert.Contains(t, out, "## RESOURCE TYPES BREAKDOWN")
	assert.Contains(t, out, "storageAccounts")
}

func TestArchitectureEmptyGroup(t *testing.T) {
	snap := inventory.NewSnapshot(nil, []azure.ResourceGroup{{Name: "rg-empty", Location: "eastus"}}, nil)

	out := Architecture(snap, 80)
	assert.Contains(t, out, "No resources in this group")
}

func TestPatternsBucketResourceTypes(t *testing.T) {
	patterns := Patterns(reportSnapshot())

	byName := make(map[string]int, len(patterns))
	for _, p := range patterns {
		byName[p.Name] = p.Count
	}

	assert.Equal(t, 4, byName["Compute"])
	assert.Equal(t, 1, byName["Storage accounts"])
	assert.Equal(t, 4, byName["Networking"])
	assert.NotContains(t, byName, "Databases")
}

func TestTopologyRendersNetworkLayout(t *testing.T) {
	out := Topology(reportSnapshot(), 80)

	assert.Contains(t, out, "VNet: vnet-main")
	assert.Contains(t, out, "10.0.0.0/16")
	assert.Contains(t, out, "subnet-web")
	assert.Contains(t, out, "(NSG: nsg-web)")
	assert.Contains(t, out, "(No NSG)")

	assert.Contains(t, out, "## Network Security Groups")
	assert.Contains(t, out, "## Load Balancers")
	assert.Contains(t, out, "(Type: Standard)")
	assert.Contains(t, out, "## Public IP Addresses")
	assert.Contains(t, out, "20.1.2.3")
	assert.Contains(t, out, "(Static)")
}

func TestTopologyWithoutNetworking(t *testing.T) {
	snap := inventory.NewSnapshot(nil, nil, []azure.Resource{vmResource("vm-a")})

	out := Topology(snap, 80)
	assert.Contains(t, out, "No virtual networks found")
	assert.NotContains(t, out, "## Load Balancers")
}

func TestSecurityFlagsPermissiveRulesButNotDefaults(t *testing.T) {
	out := Security(reportSnapshot(), 80)

	assert.Contains(t, out, "WARNING: NSG 'nsg-web' has overly permissive rule: allow-ssh-anywhere")
	// The wide-open platform default must not be flagged, only listed.
	assert.NotContains(t, out, "rule: DenyAllInBound")
	require.Equal(t, 1, strings.Count(out, "WARNING:"))

	assert.Contains(t, out, "Priority")
	assert.Contains(t, out, "allow-ssh-anywhere")
	assert.Contains(t, out, "DenyAllInBound")
	assert.Contains(t, out, "10.0.1.0/24:22")

	assert.Contains(t, out, "Found 1 public IP addresses")
	assert.Contains(t, out, "1. Enable Azure Security Center for all subscriptions")
	assert.Contains(t, out, "## Security Best Practices")
}

func TestSecurityCleanSnapshot(t *testing.T) {
	snap := inventory.NewSnapshot(nil, nil, []azure.Resource{vmResource("vm-a")})

	out := Security(snap, 80)
	assert.Contains(t, out, "No critical security issues found")
	assert.Contains(t, out, "No specific security findings")
}

func TestCostGuideFollowsResourceMix(t *testing.T) {
	out := CostGuide(reportSnapshot())
	assert.Contains(t, out, "### COMPUTE RESOURCES")
	assert.Contains(t, out, "### STORAGE RESOURCES")
	assert.Contains(t, out, "### RECOMMENDED ACTIONS")

	empty := inventory.NewSnapshot(nil, nil, nil)
	out = CostGuide(empty)
	assert.NotContains(t, out, "### COMPUTE RESOURCES")
	assert.Contains(t, out, "### RECOMMENDED ACTIONS")
}

func TestTerminalWidthNeverBelowMinimum(t *testing.T) {
	assert.GreaterOrEqual(t, TerminalWidth(), minBoxWidth)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-te", truncate("exactly-te", 10))
	assert.Equal(t, "longer-...", truncate("longer-string", 10))
}
