package routes

import (
	"fmt"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/azurescope/explorer/pkg/azure"
	"github.com/azurescope/explorer/pkg/logger"
)

// SimplifiedSubscription is a minimal representation of an az profile entry
type SimplifiedSubscription struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	State     string                 `json:"state"`
	IsDefault bool                   `json:"is_default"`
	AuthType  string                 `json:"auth_type"`
	MetaData  map[string]interface{} `json:"meta_data"`
}

// HandleGetSubscriptions handles the GET /subscriptions endpoint
func HandleGetSubscriptions(store azure.SubscriptionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		subscriptions, err := store.GetSubscriptions()
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}

		logger.Log(logger.LevelInfo, map[string]string{"totalSubscriptions": fmt.Sprintf("%d", len(subscriptions))}, nil, "HandleGetSubscriptions called")

		// Sort subscriptions by name for consistent ordering
		sort.Slice(subscriptions, func(i, j int) bool {
			return subscriptions[i].Name < subscriptions[j].Name
		})

		simplified := make([]SimplifiedSubscription, 0, len(subscriptions))
		for _, sub := range subscriptions {
			simplified = append(simplified, simplifySubscription(sub))
		}

		c.JSON(200, simplified)
	}
}

// HandleGetSubscriptionByID handles the GET /subscriptions/:id endpoint
func HandleGetSubscriptionByID(store azure.SubscriptionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		sub, err := store.GetSubscription(id)
		if err != nil {
			c.JSON(404, gin.H{"error": "Subscription not found"})
			return
		}

		c.JSON(200, simplifySubscription(sub))
	}
}

// simplifySubscription flattens a profile entry for the dashboard
func simplifySubscription(sub *azure.Subscription) SimplifiedSubscription {
	var authType string
	var userName string
	if sub.User != nil {
		authType = sub.User.Type
		userName = sub.User.Name
	}

	// az omits the environment for the public cloud
	environment := sub.EnvironmentName
	if environment == "" {
		environment = "AzureCloud"
	}

	return SimplifiedSubscription{
		ID:        sub.ID,
		Name:      sub.Name,
		State:     sub.State,
		IsDefault: sub.IsDefault,
		AuthType:  authType,
		MetaData: map[string]interface{}{
			"tenantId":    sub.TenantID,
			"environment": environment,
			"user":        userName,
			"origin": map[string]interface{}{
				"profile": azure.DefaultProfilePath(),
			},
		},
	}
}
