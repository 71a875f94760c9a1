package report

import (
	"fmt"
	"strings"

	"github.com/azurescope/explorer/pkg/inventory"
)

var computeCostTips = []string{
	"Consider Reserved Instances for predictable workloads (up to 72% savings)",
	"Implement auto-scaling to match demand",
	"Review VM sizes - right-size underutilized resources",
	"Consider Azure Spot VMs for fault-tolerant workloads (up to 90% savings)",
}

var storageCostTips = []string{
	"Implement lifecycle management policies",
	"Move infrequently accessed data to Cool/Archive tiers",
	"Enable data deduplication where applicable",
	"Review backup retention policies",
}

var recommendedActions = []string{
	"Set up Azure Cost Management budgets and alerts",
	"Use Azure Advisor for personalized recommendations",
	"Implement resource tagging for cost tracking",
	"Regular monthly cost reviews",
	"Consider Azure Hybrid Benefit for Windows/SQL Server licenses",
}

var monitoringRecommendations = []string{
	"Enable Azure Monitor for all critical resources",
	"Set up Application Insights for web applications",
	"Configure Log Analytics workspace",
	"Create custom dashboards for key metrics",
}

// CostGuide renders static cost-optimization guidance scoped to the
// resource mix actually present in the snapshot.
func CostGuide(snap *inventory.Snapshot) string {
	var b strings.Builder

	b.WriteString("# COST ANALYSIS GUIDE\n")
	b.WriteString("\n## COST OPTIMIZATION OPPORTUNITIES\n")
	b.WriteString("\nBased on your current Azure resources, here are potential cost optimization areas:\n")

	compute := 0
	storage := 0
	for resourceType, resources := range snap.ByType() {
		typeLower := strings.ToLower(resourceType)
		if containsAny(typeLower, []string{"vm", "compute", "app"}) {
			compute += len(resources)
		}
		if strings.Contains(typeLower, "storage") {
			storage += len(resources)
		}
	}

	if compute > 0 {
		b.WriteString("\n### COMPUTE RESOURCES\n")
		fmt.Fprintf(&b, "Found %d compute resources:\n", compute)
		for _, tip := range computeCostTips {
			fmt.Fprintf(&b, "• %s\n", tip)
		}
	}

	if storage > 0 {
		b.WriteString("\n### STORAGE RESOURCES\n")
		fmt.Fprintf(&b, "Found %d storage accounts:\n", storage)
		for _, tip := range storageCostTips {
			fmt.Fprintf(&b, "• %s\n", tip)
		}
	}

	b.WriteString("\n### RECOMMENDED ACTIONS\n")
	for i, action := range recommendedActions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, action)
	}

	b.WriteString("\n### MONITORING RECOMMENDATIONS\n")
	for i, rec := range monitoringRecommendations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}

	return b.String()
}
