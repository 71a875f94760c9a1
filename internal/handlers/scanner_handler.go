package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azurescope/explorer/config"
)

// GetScannerConfigHandler returns the current scanner configuration
func GetScannerConfigHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := config.New()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": fmt.Sprintf("Failed to load scanner config: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, cfg)
	}
}

// PatchScannerConfigHandler updates the scanner configuration with provided JSON patch
func PatchScannerConfigHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Load current configuration
		cfg, err := config.New()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": fmt.Sprintf("Failed to load scanner config: %v", err),
			})
			return
		}

		// Parse patch data as map to detect which fields are actually provided
		var patchData map[string]interface{}
		if err := c.ShouldBindJSON(&patchData); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid JSON patch data: %v", err),
			})
			return
		}

		// Apply patch to configuration
		applyConfigPatchFromMap(cfg, patchData)

		// Save updated configuration
		if err := cfg.Write(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": fmt.Sprintf("Failed to save configuration: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Scanner configuration updated successfully",
			"config":  cfg,
		})
	}
}

// applyConfigPatchFromMap applies configuration patches from a map to only update provided fields
func applyConfigPatchFromMap(target *config.Config, patchData map[string]interface{}) {
	// Handle category patches
	if categoryData, ok := patchData["categories"].(map[string]interface{}); ok {
		if val, exists := categoryData["compute"]; exists {
			if boolVal, ok := val.(bool); ok {
				target.Categories.Compute = boolVal
			}
		}
		if val, exists := categoryData["storage"]; exists {
			if boolVal, ok := val.(bool); ok {
				target.Categories.Storage = boolVal
			}
		}
		if val, exists := categoryData["database"]; exists {
			if boolVal, ok := val.(bool); ok {
				target.Categories.Database = boolVal
			}
		}
		if val, exists := categoryData["network"]; exists {
			if boolVal, ok := val.(bool); ok {
				target.Categories.Network = boolVal
			}
		}
		if val, exists := categoryData["security"]; exists {
			if boolVal, ok := val.(bool); ok {
				target.Categories.Security = boolVal
			}
		}
		if val, exists := categoryData["monitoring"]; exists {
			if boolVal, ok := val.(bool); ok {
				target.Categories.Monitoring = boolVal
			}
		}
		if val, exists := categoryData["integration"]; exists {
			if boolVal, ok := val.(bool); ok {
				target.Categories.Integration = boolVal
			}
		}
		if val, exists := categoryData["other"]; exists {
			if boolVal, ok := val.(bool); ok {
				target.Categories.Other = boolVal
			}
		}
	}

	// Handle handler.webhook patches
	if handlerData, ok := patchData["handler"].(map[string]interface{}); ok {
		if webhookData, ok := handlerData["webhook"].(map[string]interface{}); ok {
			if val, exists := webhookData["url"]; exists {
				if strVal, ok := val.(string); ok {
					target.Handler.Webhook.Url = strVal
				}
			}
			if val, exists := webhookData["cert"]; exists {
				if strVal, ok := val.(string); ok {
					target.Handler.Webhook.Cert = strVal
				}
			}
			if val, exists := webhookData["tlsskip"]; exists {
				if boolVal, ok := val.(bool); ok {
					target.Handler.Webhook.TlsSkip = boolVal
				}
			}
		}
	}

	// Handle enabled patch
	if val, exists := patchData["enabled"]; exists {
		if boolVal, ok := val.(bool); ok {
			target.Enabled = boolVal
		}
	}

	// Handle intervalMinutes patch. JSON numbers decode as float64.
	if val, exists := patchData["intervalMinutes"]; exists {
		if numVal, ok := val.(float64); ok {
			target.IntervalMinutes = int(numVal)
		}
	}

	// Handle subscription list patches
	if val, exists := patchData["skipSubscriptions"]; exists {
		if listVal, ok := val.([]interface{}); ok {
			target.SkipSubscriptions = toStringList(listVal)
		}
	}
	if val, exists := patchData["includeSubscriptions"]; exists {
		if listVal, ok := val.([]interface{}); ok {
			target.IncludeSubscriptions = toStringList(listVal)
		}
	}
}

func toStringList(values []interface{}) []string {
	var list []string
	for _, v := range values {
		if s, ok := v.(string); ok {
			list = append(list, s)
		}
	}
	return list
}
