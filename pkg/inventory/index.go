package inventory

import (
	"strings"

	"github.com/azurescope/explorer/pkg/azure"
)

// Index is a case-insensitive resource-id lookup. Ids are compared in a
// lowercased domain; a colliding id overwrites the earlier entry (last
// write wins) while keeping its original position, so iteration order is
// deterministic for a given input order.
type Index struct {
	byID map[string]azure.Resource
	ids  []string
}

// NewIndex builds the lookup from a resource collection.
func NewIndex(resources []azure.Resource) *Index {
	ix := &Index{
		byID: make(map[string]azure.Resource, len(resources)),
		ids:  make([]string, 0, len(resources)),
	}

	for _, r := range resources {
		ix.Add(r)
	}

	return ix
}

// Add inserts or replaces the resource under its lowercased id.
func (ix *Index) Add(r azure.Resource) {
	key := strings.ToLower(r.ID)

	if _, exists := ix.byID[key]; !exists {
		ix.ids = append(ix.ids, key)
	}

	ix.byID[key] = r
}

// Lookup returns the resource for an id, matching case-insensitively.
func (ix *Index) Lookup(id string) (azure.Resource, bool) {
	r, ok := ix.byID[strings.ToLower(id)]
	return r, ok
}

// Has reports whether an id is present, matching case-insensitively.
func (ix *Index) Has(id string) bool {
	_, ok := ix.byID[strings.ToLower(id)]
	return ok
}

// Len returns the number of distinct ids.
func (ix *Index) Len() int {
	return len(ix.byID)
}

// Resources returns the indexed resources in first-seen id order.
func (ix *Index) Resources() []azure.Resource {
	out := make([]azure.Resource, 0, len(ix.ids))
	for _, key := range ix.ids {
		out = append(out, ix.byID[key])
	}

	return out
}
