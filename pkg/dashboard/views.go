package dashboard

import (
	"strings"

	"github.com/azurescope/explorer/pkg/graph"
	"github.com/azurescope/explorer/pkg/inventory"
)

// Counts are the headline numbers over the visible set.
type Counts struct {
	Resources      int `json:"resources"`
	ResourceGroups int `json:"resource_groups"`
	Locations      int `json:"locations"`
}

// TableRow is one explorer-table entry.
type TableRow struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Type          string             `json:"type"`
	Category      inventory.Category `json:"category"`
	ResourceGroup string             `json:"resource_group"`
	Location      string             `json:"location"`
}

// Projection is the visible slice of the relationship graph.
type Projection struct {
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}

// SecurityGroupView lists one visible NSG with its ordered rules.
type SecurityGroupView struct {
	Name          string         `json:"name"`
	ResourceGroup string         `json:"resource_group"`
	Rules         []SecurityRule `json:"rules"`
}

// Views is everything the dashboard renders for one filter state.
//
// CategoryTotals deliberately ignore the filter: the category cards always
// show the whole landscape so an active card displays its true total while
// the detail views drill in. Counts, TableRows, Graph and SecurityGroups
// respect the filter.
type Views struct {
	Counts         Counts                     `json:"counts"`
	CategoryTotals map[inventory.Category]int `json:"category_totals"`
	TableRows      []TableRow                 `json:"table_rows"`
	Graph          Projection                 `json:"graph"`
	SecurityGroups []SecurityGroupView        `json:"security_groups"`
}

// Derive computes the dashboard views for one snapshot/graph pair under a
// filter. It is pure: the snapshot and graph are never modified, and the
// same inputs always produce the same views. The empty filter reproduces
// the full graph.
func Derive(snap *inventory.Snapshot, g *graph.Graph, filter FilterState) Views {
	views := Views{
		CategoryTotals: snap.CategoryCounts(),
		TableRows:      []TableRow{},
	}

	groups := make(map[string]struct{})
	locations := make(map[string]struct{})
	visible := make(map[string]struct{})

	for _, r := range snap.Resources {
		category := inventory.Classify(r.Type)
		if !filter.Allows(category) {
			continue
		}

		visible[strings.ToLower(r.ID)] = struct{}{}
		groups[r.GroupName()] = struct{}{}
		locations[r.LocationName()] = struct{}{}

		views.TableRows = append(views.TableRows, TableRow{
			ID:            r.ID,
			Name:          r.DisplayName(),
			Type:          r.Type,
			Category:      category,
			ResourceGroup: r.GroupName(),
			Location:      r.LocationName(),
		})

		if r.IsNetworkSecurityGroup() {
			views.SecurityGroups = append(views.SecurityGroups, SecurityGroupView{
				Name:          r.DisplayName(),
				ResourceGroup: r.GroupName(),
				Rules:         RulesFromResource(r),
			})
		}
	}

	views.Counts = Counts{
		Resources:      len(views.TableRows),
		ResourceGroups: len(groups),
		Locations:      len(locations),
	}

	views.Graph = project(g, visible)

	return views
}

// project keeps the visible nodes and the edges whose BOTH endpoints are
// visible; an edge into a filtered-out resource disappears with it.
func project(g *graph.Graph, visible map[string]struct{}) Projection {
	proj := Projection{
		Nodes: []graph.Node{},
		Edges: []graph.Edge{},
	}

	for _, n := range g.Nodes {
		if _, ok := visible[strings.ToLower(n.ID)]; ok {
			proj.Nodes = append(proj.Nodes, n)
		}
	}

	for _, e := range g.Edges {
		if _, ok := visible[strings.ToLower(e.Source)]; !ok {
			continue
		}

		if _, ok := visible[strings.ToLower(e.Target)]; !ok {
			continue
		}

		proj.Edges = append(proj.Edges, e)
	}

	return proj
}
