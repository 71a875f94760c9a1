package azure

import "strings"

// Unknown is the display fallback for optional resource attributes the
// CLI did not return.
const Unknown = "Unknown"

// Resource is one discovered Azure resource, matching the shape of
// `az resource list` output. Properties is the raw nested JSON document
// attached to the resource; it has no fixed schema.
type Resource struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Type          string            `json:"type"`
	Location      string            `json:"location"`
	ResourceGroup string            `json:"resourceGroup"`
	Tags          map[string]string `json:"tags,omitempty"`
	Properties    map[string]any    `json:"properties,omitempty"`
}

// DisplayName returns the resource name or the Unknown placeholder.
func (r Resource) DisplayName() string {
	if r.Name == "" {
		return Unknown
	}

	return r.Name
}

// GroupName returns the resource group or the Unknown placeholder.
func (r Resource) GroupName() string {
	if r.ResourceGroup == "" {
		return Unknown
	}

	return r.ResourceGroup
}

// LocationName returns the location or the Unknown placeholder.
func (r Resource) LocationName() string {
	if r.Location == "" {
		return Unknown
	}

	return r.Location
}

// IsNetworkSecurityGroup reports whether the resource type denotes an NSG.
func (r Resource) IsNetworkSecurityGroup() bool {
	return strings.EqualFold(r.Type, "Microsoft.Network/networkSecurityGroups")
}

// ResourceGroup is one Azure resource group from `az group list`.
type ResourceGroup struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Location string            `json:"location"`
	Tags     map[string]string `json:"tags,omitempty"`
}

// Subscription is one Azure subscription as recorded by the CLI profile
// or returned by `az account list`.
type Subscription struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	TenantID        string `json:"tenantId"`
	State           string `json:"state"`
	IsDefault       bool   `json:"isDefault"`
	EnvironmentName string `json:"environmentName,omitempty"`
	User            *User  `json:"user,omitempty"`
}

// User identifies the logged-in principal for a subscription entry.
type User struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
