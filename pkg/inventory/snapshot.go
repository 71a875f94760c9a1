package inventory

import (
	"time"

	"github.com/azurescope/explorer/pkg/azure"
)

// Metadata describes one discovery run. Aggregates here are display-only;
// nothing downstream computes from them.
type Metadata struct {
	ExportDate          string `json:"export_date"`
	SubscriptionID      string `json:"subscription_id"`
	SubscriptionName    string `json:"subscription_name,omitempty"`
	TotalResources      int    `json:"total_resources"`
	TotalResourceGroups int    `json:"total_resource_groups"`
}

// Snapshot is the full in-memory inventory of one subscription at one
// point in time. It is immutable once built; views derive from it.
type Snapshot struct {
	Metadata       Metadata              `json:"metadata"`
	ResourceGroups []azure.ResourceGroup `json:"resource_groups"`
	Resources      []azure.Resource      `json:"resources"`
}

// NewSnapshot assembles a snapshot from a discovery run.
func NewSnapshot(sub *azure.Subscription, groups []azure.ResourceGroup, resources []azure.Resource) *Snapshot {
	meta := Metadata{
		ExportDate:          time.Now().Format(time.RFC3339),
		TotalResources:      len(resources),
		TotalResourceGroups: len(groups),
	}

	if sub != nil {
		meta.SubscriptionID = sub.ID
		meta.SubscriptionName = sub.Name
	}

	return &Snapshot{
		Metadata:       meta,
		ResourceGroups: groups,
		Resources:      resources,
	}
}

// ByType groups resources by their full type string.
func (s *Snapshot) ByType() map[string][]azure.Resource {
	grouped := make(map[string][]azure.Resource)
	for _, r := range s.Resources {
		grouped[r.Type] = append(grouped[r.Type], r)
	}

	return grouped
}

// ByResourceGroup groups resources by resource group, Unknown included.
func (s *Snapshot) ByResourceGroup() map[string][]azure.Resource {
	grouped := make(map[string][]azure.Resource)
	for _, r := range s.Resources {
		grouped[r.GroupName()] = append(grouped[r.GroupName()], r)
	}

	return grouped
}

// CategoryCounts tallies resources per category over the whole snapshot.
func (s *Snapshot) CategoryCounts() map[Category]int {
	counts := make(map[Category]int)
	for _, r := range s.Resources {
		counts[Classify(r.Type)]++
	}

	return counts
}
