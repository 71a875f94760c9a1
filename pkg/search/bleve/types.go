package bleve

import (
	"time"

	"github.com/azurescope/explorer/pkg/search"
)

// ResourceDocument represents an Azure resource indexed in Bleve
type ResourceDocument struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	ResourceType  string            `json:"resourceType"`
	Category      string            `json:"category"`
	ResourceGroup string            `json:"resourceGroup"`
	Location      string            `json:"location"`
	Tags          map[string]string `json:"tags"`
}

// IndexOptions contains parameters for indexing operations
type IndexOptions struct {
	Action     string   `json:"action"`               // rebuild, refresh
	Categories []string `json:"categories,omitempty"` // Optional: restrict to specific categories
	Async      bool     `json:"async"`                // Run in background
}

// IndexStats contains statistics about an index
type IndexStats struct {
	DocumentCount   uint64            `json:"documentCount"`
	IndexSize       string            `json:"indexSize"`
	LastIndexed     time.Time         `json:"lastIndexed"`
	LastUpdated     time.Time         `json:"lastUpdated"`
	TotalBatches    uint64            `json:"totalBatches"`
	CategoryCounts  map[string]uint64 `json:"categoryBreakdown"`
	IndexingStarted time.Time         `json:"indexingStarted,omitempty"`
	IndexingEnded   time.Time         `json:"indexingEnded,omitempty"`
}

// IndexStatus represents the current status of an index
type IndexStatus struct {
	Subscription     string         `json:"subscription"`
	Status           string         `json:"status"` // not_indexed, healthy, indexing, error
	Stats            *IndexStats    `json:"stats,omitempty"`
	CurrentOperation *OperationInfo `json:"currentOperation,omitempty"`
	Error            string         `json:"error,omitempty"`
	Message          string         `json:"message,omitempty"`
}

// OperationInfo contains information about ongoing operations
type OperationInfo struct {
	OperationID string    `json:"operationId"`
	Type        string    `json:"type"` // rebuild, refresh
	Status      string    `json:"status"`
	Progress    int       `json:"progress"`
	StartedAt   time.Time `json:"startedAt"`
}

// SearchResults contains search results with metadata
type SearchResults struct {
	Results      []search.Result `json:"results"`
	Count        int             `json:"count"`
	Query        string          `json:"query"`
	Subscription string          `json:"subscription"`
	SearchTime   string          `json:"searchTime"`
	Source       string          `json:"source"` // "bleve" or "snapshot"
}

// SubscriptionIndexMetadata stores metadata about a subscription index
type SubscriptionIndexMetadata struct {
	SubscriptionID string    `json:"subscriptionId"`
	IndexPath      string    `json:"indexPath"`
	LastIndexed    time.Time `json:"lastIndexed"`
	DocumentCount  uint64    `json:"documentCount"`
	Categories     []string  `json:"categories"`
}
