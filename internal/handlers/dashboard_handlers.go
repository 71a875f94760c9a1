package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/azurescope/explorer/pkg/dashboard"
	"github.com/azurescope/explorer/pkg/inventory"
)

// loadedState fetches the current state or answers 404 when no snapshot
// has been loaded yet.
func loadedState(c *gin.Context) (*State, bool) {
	st, ok := state.Load()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "no snapshot loaded; run discovery first",
		})
		return nil, false
	}

	return st, true
}

func categoryFromString(raw string) (inventory.Category, bool) {
	for _, category := range inventory.Categories() {
		if strings.EqualFold(string(category), raw) {
			return category, true
		}
	}

	return "", false
}

// DashboardViewsHandler derives the dashboard views under an optional
// single category filter. The filter lives in the request; two concurrent
// requests with different categories never see each other's selection.
func DashboardViewsHandler(c *gin.Context) {
	st, ok := loadedState(c)
	if !ok {
		return
	}

	filter := dashboard.FilterState{}
	if raw := c.Query("category"); raw != "" {
		category, known := categoryFromString(raw)
		if !known {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("unknown category %q", raw),
			})
			return
		}

		filter = filter.Toggle(category)
	}

	c.JSON(http.StatusOK, dashboard.Derive(st.Snapshot, st.Graph, filter))
}

// DashboardGraphHandler returns the full relationship graph with stats.
func DashboardGraphHandler(c *gin.Context) {
	st, ok := loadedState(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, st.Graph)
}

// securityFinding is one flagged NSG rule.
type securityFinding struct {
	SecurityGroup string `json:"securityGroup"`
	ResourceGroup string `json:"resourceGroup"`
	Rule          string `json:"rule"`
	Priority      int    `json:"priority"`
	Source        string `json:"source"`
	Destination   string `json:"destination"`
}

// DashboardSecurityHandler lists every NSG with its ordered rules and
// flags the rules that allow any-source inbound to risky ports. Platform
// default rules are never flagged.
func DashboardSecurityHandler(c *gin.Context) {
	st, ok := loadedState(c)
	if !ok {
		return
	}

	views := dashboard.Derive(st.Snapshot, st.Graph, dashboard.FilterState{})

	findings := []securityFinding{}
	for _, group := range views.SecurityGroups {
		for _, rule := range group.Rules {
			if rule.Default || !rule.IsOverlyPermissive() {
				continue
			}

			findings = append(findings, securityFinding{
				SecurityGroup: group.Name,
				ResourceGroup: group.ResourceGroup,
				Rule:          rule.Name,
				Priority:      rule.Priority,
				Source:        rule.Source(),
				Destination:   rule.Destination(),
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"securityGroups": views.SecurityGroups,
		"findings":       findings,
		"groupCount":     len(views.SecurityGroups),
		"findingCount":   len(findings),
	})
}
