package report

import (
	"fmt"
	"strings"

	"github.com/azurescope/explorer/pkg/dashboard"
	"github.com/azurescope/explorer/pkg/inventory"
)

var securityRecommendations = []string{
	"Enable Azure Security Center for all subscriptions",
	"Implement Just-In-Time VM access for administrative ports",
	"Use Azure Key Vault for storing secrets and certificates",
	"Enable Network Watcher for network monitoring",
	"Implement Azure Firewall for centralized network security",
	"Use Azure AD Conditional Access for identity security",
}

var securityBestPractices = []string{
	"Regular security assessments and penetration testing",
	"Implement network segmentation with subnets and NSGs",
	"Use managed identities instead of service principals where possible",
	"Enable logging and monitoring for all critical resources",
	"Implement backup and disaster recovery procedures",
}

// Security renders the security posture report: overly permissive NSG
// rules, the full rule tables, findings and the static recommendation
// lists.
func Security(snap *inventory.Snapshot, width int) string {
	var b strings.Builder

	b.WriteString("# SECURITY ANALYSIS REPORT\n")

	type nsgRules struct {
		name  string
		group string
		rules []dashboard.SecurityRule
	}

	var nsgs []nsgRules
	publicIPs := 0

	for _, r := range snap.Resources {
		if strings.EqualFold(r.Type, "Microsoft.Network/publicIPAddresses") {
			publicIPs++
		}
		if r.IsNetworkSecurityGroup() {
			nsgs = append(nsgs, nsgRules{
				name:  r.DisplayName(),
				group: r.GroupName(),
				rules: dashboard.RulesFromResource(r),
			})
		}
	}

	b.WriteString("\n## Critical Issues\n")
	issues := 0
	for _, nsg := range nsgs {
		for _, rule := range nsg.rules {
			// Default rules are platform-managed; only flag rules someone
			// wrote.
			if rule.Default || !rule.IsOverlyPermissive() {
				continue
			}
			fmt.Fprintf(&b, "WARNING: NSG '%s' has overly permissive rule: %s\n", nsg.name, rule.Name)
			issues++
		}
	}
	if issues == 0 {
		b.WriteString("No critical security issues found\n")
	}

	if len(nsgs) > 0 {
		b.WriteString("\n## Network Security Group Rules\n")
		for _, nsg := range nsgs {
			fmt.Fprintf(&b, "\nNSG: %s (Resource Group: %s)\n", nsg.name, nsg.group)
			writeRuleTable(&b, nsg.rules)
		}
	}

	b.WriteString("\n## Security Findings\n")
	if publicIPs > 0 {
		fmt.Fprintf(&b, "• Found %d public IP addresses - ensure they're properly protected\n", publicIPs)
	} else {
		b.WriteString("• No specific security findings\n")
	}

	b.WriteString("\n## Recommendations\n")
	for i, rec := range securityRecommendations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}

	b.WriteString("\n## Security Best Practices\n")
	for _, practice := range securityBestPractices {
		fmt.Fprintf(&b, "• %s\n", practice)
	}

	return b.String()
}

func writeRuleTable(b *strings.Builder, rules []dashboard.SecurityRule) {
	if len(rules) == 0 {
		b.WriteString("  (no rules)\n")
		return
	}

	fmt.Fprintf(b, "  %-8s %-28s %-9s %-7s %-8s %-24s %-24s\n",
		"Priority", "Name", "Direction", "Access", "Protocol", "Source", "Destination")

	for _, rule := range rules {
		fmt.Fprintf(b, "  %-8d %-28s %-9s %-7s %-8s %-24s %-24s\n",
			rule.Priority,
			truncate(rule.Name, 28),
			rule.Direction,
			rule.Access,
			rule.Protocol,
			truncate(rule.Source(), 24),
			truncate(rule.Destination(), 24))
	}
}
