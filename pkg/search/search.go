// Package search defines the shared search request/result types and a
// snapshot-backed fallback used when a subscription has no index yet.
package search

import (
	"sort"
	"strings"

	"github.com/azurescope/explorer/pkg/inventory"
)

// DefaultLimit caps result counts when the caller does not set one.
const DefaultLimit = 50

// Options are the knobs for one search request.
type Options struct {
	Query         string `json:"query"`
	Category      string `json:"category,omitempty"`
	ResourceGroup string `json:"resourceGroup,omitempty"`
	Limit         int    `json:"limit,omitempty"`
}

// Result is one matched resource.
type Result struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Category      string  `json:"category"`
	ResourceGroup string  `json:"resourceGroup"`
	Location      string  `json:"location,omitempty"`
	Score         float64 `json:"score,omitempty"`
}

// InMemory scans a snapshot directly, without an index. Matching is
// case-insensitive substring over name, type, resource group and
// location; every query term must match somewhere.
func InMemory(snap *inventory.Snapshot, opts Options) []Result {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	terms := strings.Fields(strings.ToLower(opts.Query))

	var results []Result
	for _, r := range snap.Resources {
		category := string(inventory.Classify(r.Type))

		if opts.Category != "" && !strings.EqualFold(opts.Category, category) {
			continue
		}
		if opts.ResourceGroup != "" && !strings.EqualFold(opts.ResourceGroup, r.ResourceGroup) {
			continue
		}

		haystack := strings.ToLower(r.Name + " " + r.Type + " " + r.ResourceGroup + " " + r.Location)
		if !matchesAll(haystack, terms) {
			continue
		}

		results = append(results, Result{
			ID:            r.ID,
			Name:          r.Name,
			Type:          r.Type,
			Category:      category,
			ResourceGroup: r.ResourceGroup,
			Location:      r.Location,
		})

		if len(results) == limit {
			break
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Name < results[j].Name
	})

	return results
}

func matchesAll(haystack string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}

	return true
}
