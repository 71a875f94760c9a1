package dashboard

import (
	"testing"

	"github.com/azurescope/explorer/pkg/azure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRulesSortsAscendingKeepingTieOrder(t *testing.T) {
	rules := []SecurityRule{
		{Name: "late", Priority: 300},
		{Name: "tie-first", Priority: 100},
		{Name: "tie-second", Priority: 100},
		{Name: "middle", Priority: 200},
	}

	ordered := OrderRules(rules)

	priorities := make([]int, len(ordered))
	names := make([]string, len(ordered))
	for i, r := range ordered {
		priorities[i] = r.Priority
		names[i] = r.Name
	}

	assert.Equal(t, []int{100, 100, 200, 300}, priorities)
	assert.Equal(t, []string{"tie-first", "tie-second", "middle", "late"}, names)

	// Input stays as given.
	assert.Equal(t, "late", rules[0].Name)
}

func TestOrderRulesEmpty(t *testing.T) {
	assert.Empty(t, OrderRules(nil))
	assert.Empty(t, OrderRules([]SecurityRule{}))
}

func TestOrderRulesIdempotent(t *testing.T) {
	rules := []SecurityRule{{Priority: 2}, {Priority: 1}}

	once := OrderRules(rules)
	twice := OrderRules(once)

	assert.Equal(t, once, twice)
}

func nsgFixture() azure.Resource {
	return azure.Resource{
		ID:            "/subscriptions/s1/resourceGroups/net/providers/Microsoft.Network/networkSecurityGroups/nsg-web",
		Name:          "nsg-web",
		Type:          "Microsoft.Network/networkSecurityGroups",
		ResourceGroup: "net",
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
						"destinationAddressPrefix": "10.0.0.0/24",
						"destinationPortRange":     "22",
					},
				},
				map[string]any{
					"name": "allow-web",
					"properties": map[string]any{
						"priority":                   float64(100),
						"direction":                  "Inbound",
						"access":                     "Allow",
						"protocol":                   "Tcp",
						"sourceAddressPrefixes":      []any{"10.1.0.0/16", "10.2.0.0/16"},
						"destinationAddressPrefix":   "10.0.0.4",
						"destinationPortRanges":      []any{"80", "443"},
						"sourcePortRange":            "*",
						"destinationApplicationSecurityGroups": []any{},
					},
				},
			},
			"defaultSecurityRules": []any{
				map[string]any{
					"name": "DenyAllInBound",
					"properties": map[string]any{
						"priority":  float64(65500),
						"direction": "Inbound",
						"access":    "Deny",
						"protocol":  "*",
					},
				},
			},
		},
	}
}

func TestRulesFromResourceMergesAndOrders(t *testing.T) {
	rules := RulesFromResource(nsgFixture())
	require.Len(t, rules, 3)

	assert.Equal(t, "allow-web", rules[0].Name)
	assert.Equal(t, "allow-ssh-anywhere", rules[1].Name)
	assert.Equal(t, "DenyAllInBound", rules[2].Name)

	assert.False(t, rules[0].Default)
	assert.True(t, rules[2].Default)
}

func TestRulesFromResourceResolvesFieldVariants(t *testing.T) {
	rules := RulesFromResource(nsgFixture())
	require.Len(t, rules, 3)

	web := rules[0]
	assert.Equal(t, "10.1.0.0/16,10.2.0.0/16", web.SourceAddress)
	assert.Equal(t, "80,443", web.DestinationPorts)
	assert.Equal(t, "10.1.0.0/16,10.2.0.0/16:*", web.Source())

	// Absent singular and plural both fall back to the wildcard.
	deny := rules[2]
	assert.Equal(t, "*", deny.SourceAddress)
	assert.Equal(t, "*", deny.DestinationPorts)
	assert.Equal(t, "*:*", deny.Destination())
}

func TestRulesFromResourceWithoutRuleBlocks(t *testing.T) {
	assert.Empty(t, RulesFromResource(azure.Resource{Properties: map[string]any{}}))
	assert.Empty(t, RulesFromResource(azure.Resource{}))
}

func TestIsOverlyPermissive(t *testing.T) {
	cases := []struct {
		name   string
		rule   SecurityRule
		expect bool
	}{
		{"any source to ssh", SecurityRule{SourceAddress: "*", DestinationPorts: "22"}, true},
		{"any source to rdp", SecurityRule{SourceAddress: "*", DestinationPorts: "3389"}, true},
		{"any source to everything", SecurityRule{SourceAddress: "*", DestinationPorts: "*"}, true},
		{"any source to https", SecurityRule{SourceAddress: "*", DestinationPorts: "443"}, false},
		{"scoped source to ssh", SecurityRule{SourceAddress: "10.0.0.0/8", DestinationPorts: "22"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.rule.IsOverlyPermissive())
		})
	}
}
