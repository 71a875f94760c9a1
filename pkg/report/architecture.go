package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/azurescope/explorer/pkg/azure"
	"github.com/azurescope/explorer/pkg/inventory"
)

// Pattern is one architecture bucket with the resources that landed in it.
type Pattern struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// patternRules bucket resource types by keyword. The first matching rule
// wins, so order is significant.
var patternRules = []struct {
	name     string
	keywords []string
}{
	{"Web applications", []string{"web", "app", "function"}},
	{"Databases", []string{"sql", "cosmos", "mysql", "postgresql"}},
	{"Storage accounts", []string{"storage"}},
	{"Networking", []string{"network", "vnet", "subnet", "nsg", "lb"}},
	{"Compute", []string{"vm", "compute", "container", "kubernetes"}},
	{"Security", []string{"vault", "security", "identity"}},
	{"Monitoring", []string{"monitor", "insights", "log"}},
	{"DevOps", []string{"devops", "pipeline", "registry"}},
}

// Patterns buckets the snapshot's resource types into architecture
// patterns. Buckets with no resources are omitted.
func Patterns(snap *inventory.Snapshot) []Pattern {
	counts := make([]int, len(patternRules))

	for resourceType, resources := range snap.ByType() {
		typeLower := strings.ToLower(resourceType)
		for i, rule := range patternRules {
			if containsAny(typeLower, rule.keywords) {
				counts[i] += len(resources)
				break
			}
		}
	}

	var patterns []Pattern
	for i, rule := range patternRules {
		if counts[i] > 0 {
			patterns = append(patterns, Pattern{Name: rule.name, Count: counts[i]})
		}
	}

	return patterns
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}

	return false
}

// Architecture renders the resource-group overview: one framed block per
// group with its members grouped by type, a type breakdown and the
// architecture patterns detected in the snapshot.
func Architecture(snap *inventory.Snapshot, width int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# AZURE ARCHITECTURE OVERVIEW\n")
	fmt.Fprintf(&b, "Generated on: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	if snap.Metadata.SubscriptionID != "" {
		fmt.Fprintf(&b, "Subscription: %s\n", snap.Metadata.SubscriptionID)
	}

	byType := snap.ByType()
	byGroup := snap.ByResourceGroup()

	fmt.Fprintf(&b, "\n## RESOURCE SUMMARY\n")
	fmt.Fprintf(&b, "Total Resources: %d\n", len(snap.Resources))
	fmt.Fprintf(&b, "Resource Groups: %d\n", len(snap.ResourceGroups))
	fmt.Fprintf(&b, "Resource Types: %d\n", len(byType))

	fmt.Fprintf(&b, "\n## RESOURCE GROUPS\n")
	for _, rg := range snap.ResourceGroups {
		writeGroupBox(&b, rg, byGroup[rg.Name], width)
	}

	fmt.Fprintf(&b, "\n## RESOURCE TYPES BREAKDOWN\n")
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(&b, "• %-30s : %3d instances\n", shortType(t), len(byType[t]))
	}

	if patterns := Patterns(snap); len(patterns) > 0 {
		fmt.Fprintf(&b, "\n## ARCHITECTURE PATTERNS\n")
		for _, p := range patterns {
			fmt.Fprintf(&b, "• %-20s : %3d resources\n", p.Name, p.Count)
		}
	}

	return b.String()
}

func writeGroupBox(b *strings.Builder, rg azure.ResourceGroup, resources []azure.Resource, width int) {
	x := newBox(b, width)

	b.WriteByte('\n')
	x.top()
	x.line("%s", rg.Name)
	x.line("Location: %s", rg.Location)
	x.line("Resources: %d", len(resources))
	x.sep()

	// Group members by service name, keeping first-seen order.
	var order []string
	grouped := make(map[string][]azure.Resource)
	for _, r := range resources {
		t := shortType(r.Type)
		if _, seen := grouped[t]; !seen {
			order = append(order, t)
		}
		grouped[t] = append(grouped[t], r)
	}

	if len(order) == 0 {
		x.line("No resources in this group")
	}

	for _, t := range order {
		members := grouped[t]
		x.line("• %s (%d instances)", t, len(members))
		for i, r := range members {
			if i == 3 {
				x.line("  └─ ... and %d more", len(members)-3)
				break
			}
			x.line("  └─ %s", truncate(r.DisplayName(), 40))
		}
	}

	x.bottom()
}
