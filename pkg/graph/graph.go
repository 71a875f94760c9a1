package graph

import (
	"sort"
	"strings"

	"github.com/azurescope/explorer/pkg/azure"
	"github.com/azurescope/explorer/pkg/inventory"
)

// Node is one resource in the relationship graph. ID keeps the casing the
// CLI reported; matching against references happens in a lowercased domain.
type Node struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Type          string             `json:"type"`
	Category      inventory.Category `json:"category"`
	ResourceGroup string             `json:"resource_group"`
	Location      string             `json:"location"`
}

// Edge is a directed reference between two known resources: the Source
// resource's properties mention the Target resource's id.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Stats summarizes a built graph.
type Stats struct {
	TotalNodes     int            `json:"total_nodes"`
	TotalEdges     int            `json:"total_edges"`
	IsolatedNodes  int            `json:"isolated_nodes"`
	CategoryCounts map[string]int `json:"category_counts"`
}

// Graph is the inferred relationship graph over one inventory. It is
// immutable once built; views project it without mutating it.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	Stats Stats  `json:"stats"`
}

type builder struct {
	index *inventory.Index
	edges []Edge
	seen  map[string]struct{}
}

// Build infers the relationship graph for a set of resources. Every
// distinct resource id becomes a node; a string leaf anywhere inside a
// resource's properties that matches another resource's id, compared
// case-insensitively, becomes a directed edge from the referring resource.
// Self references are dropped, duplicate pairs collapse to one edge, and
// references to ids outside the inventory are ignored.
func Build(resources []azure.Resource) *Graph {
	b := &builder{
		index: inventory.NewIndex(resources),
		seen:  make(map[string]struct{}),
	}

	indexed := b.index.Resources()

	nodes := make([]Node, 0, len(indexed))
	for _, r := range indexed {
		nodes = append(nodes, Node{
			ID:            r.ID,
			Name:          r.DisplayName(),
			Type:          r.Type,
			Category:      inventory.Classify(r.Type),
			ResourceGroup: r.GroupName(),
			Location:      r.LocationName(),
		})
	}

	for _, r := range indexed {
		b.scan(r, r.Properties)
	}

	// Map traversal order is not stable, so edge discovery order is not
	// either. Sort for reproducible output.
	sort.Slice(b.edges, func(i, j int) bool {
		if b.edges[i].Source != b.edges[j].Source {
			return b.edges[i].Source < b.edges[j].Source
		}

		return b.edges[i].Target < b.edges[j].Target
	})

	return &Graph{
		Nodes: nodes,
		Edges: b.edges,
		Stats: buildStats(nodes, b.edges),
	}
}

// scan walks one property document depth-first, probing every string leaf.
// Non-string scalars cannot hold a resource id and are skipped.
func (b *builder) scan(source azure.Resource, value any) {
	switch v := value.(type) {
	case string:
		b.probe(source, v)
	case map[string]any:
		for _, nested := range v {
			b.scan(source, nested)
		}
	case []any:
		for _, nested := range v {
			b.scan(source, nested)
		}
	}
}

func (b *builder) probe(source azure.Resource, leaf string) {
	// Resource ids always start with a slash; other strings cannot match.
	if len(leaf) == 0 || leaf[0] != '/' {
		return
	}

	target, ok := b.index.Lookup(leaf)
	if !ok {
		return
	}

	if strings.EqualFold(source.ID, target.ID) {
		return
	}

	key := strings.ToLower(source.ID) + "\x00" + strings.ToLower(target.ID)
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}

	b.edges = append(b.edges, Edge{Source: source.ID, Target: target.ID})
}

func buildStats(nodes []Node, edges []Edge) Stats {
	counts := make(map[string]int)
	connected := make(map[string]struct{}, 2*len(edges))

	for _, n := range nodes {
		counts[string(n.Category)]++
	}

	for _, e := range edges {
		connected[strings.ToLower(e.Source)] = struct{}{}
		connected[strings.ToLower(e.Target)] = struct{}{}
	}

	isolated := 0
	for _, n := range nodes {
		if _, ok := connected[strings.ToLower(n.ID)]; !ok {
			isolated++
		}
	}

	return Stats{
		TotalNodes:     len(nodes),
		TotalEdges:     len(edges),
		IsolatedNodes:  isolated,
		CategoryCounts: counts,
	}
}
