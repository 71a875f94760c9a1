package dashboard

import (
	"sort"
	"strings"

	"github.com/azurescope/explorer/pkg/azure"
)

// SecurityRule is one NSG rule with the prefix/port variants already
// resolved: a singular field wins, otherwise the plural list is joined
// with commas, otherwise "*". Default marks rules from the platform's
// defaultSecurityRules block.
type SecurityRule struct {
	Name               string `json:"name"`
	Priority           int    `json:"priority"`
	Direction          string `json:"direction"`
	Access             string `json:"access"`
	Protocol           string `json:"protocol"`
	SourceAddress      string `json:"source_address"`
	SourcePorts        string `json:"source_ports"`
	DestinationAddress string `json:"destination_address"`
	DestinationPorts   string `json:"destination_ports"`
	Default            bool   `json:"default,omitempty"`
}

// Source renders the source column as address:ports.
func (r SecurityRule) Source() string {
	return r.SourceAddress + ":" + r.SourcePorts
}

// Destination renders the destination column as address:ports.
func (r SecurityRule) Destination() string {
	return r.DestinationAddress + ":" + r.DestinationPorts
}

// riskyPorts are the destinations that make an any-source rule critical:
// everything, SSH, RDP.
var riskyPorts = map[string]struct{}{
	"*":    {},
	"22":   {},
	"3389": {},
}

// IsOverlyPermissive reports whether the rule allows traffic from any
// source to a remote-administration port (22, 3389) or to every port.
func (r SecurityRule) IsOverlyPermissive() bool {
	if r.SourceAddress != "*" {
		return false
	}

	_, risky := riskyPorts[r.DestinationPorts]
	return risky
}

// OrderRules returns the rules stable-sorted by ascending priority. The
// input is not modified; equal priorities keep their relative order.
func OrderRules(rules []SecurityRule) []SecurityRule {
	ordered := make([]SecurityRule, len(rules))
	copy(ordered, rules)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	return ordered
}

// RulesFromResource extracts the union of explicit and default security
// rules from an NSG resource's properties, ordered by priority. Resources
// without rule blocks yield an empty slice.
func RulesFromResource(r azure.Resource) []SecurityRule {
	var rules []SecurityRule
	rules = appendRules(rules, r.Properties["securityRules"], false)
	rules = appendRules(rules, r.Properties["defaultSecurityRules"], true)

	return OrderRules(rules)
}

func appendRules(rules []SecurityRule, block any, isDefault bool) []SecurityRule {
	list, ok := block.([]any)
	if !ok {
		return rules
	}

	for _, raw := range list {
		if rule, ok := parseRule(raw, isDefault); ok {
			rules = append(rules, rule)
		}
	}

	return rules
}

func parseRule(raw any, isDefault bool) (SecurityRule, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return SecurityRule{}, false
	}

	// ARM nests the rule body under "properties"; tolerate the flattened
	// shape some CLI commands emit.
	fields, ok := m["properties"].(map[string]any)
	if !ok {
		fields = m
	}

	return SecurityRule{
		Name:               stringField(m, "name"),
		Priority:           intField(fields, "priority"),
		Direction:          stringField(fields, "direction"),
		Access:             stringField(fields, "access"),
		Protocol:           stringField(fields, "protocol"),
		SourceAddress:      valueOrJoined(fields, "sourceAddressPrefix", "sourceAddressPrefixes"),
		SourcePorts:        valueOrJoined(fields, "sourcePortRange", "sourcePortRanges"),
		DestinationAddress: valueOrJoined(fields, "destinationAddressPrefix", "destinationAddressPrefixes"),
		DestinationPorts:   valueOrJoined(fields, "destinationPortRange", "destinationPortRanges"),
		Default:            isDefault,
	}, true
}

// valueOrJoined resolves the singular/plural field pair: the singular
// value wins, a non-empty plural list joins with commas, and "*" covers
// everything else.
func valueOrJoined(fields map[string]any, singular, plural string) string {
	if v := stringField(fields, singular); v != "" {
		return v
	}

	if list, ok := fields[plural].([]any); ok {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}

		if len(parts) > 0 {
			return strings.Join(parts, ",")
		}
	}

	return "*"
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

func intField(fields map[string]any, key string) int {
	switch v := fields[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
