package bleve

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"

	"github.com/azurescope/explorer/pkg/logger"
)

// Controller manages Bleve indices for multiple subscriptions
type Controller struct {
	basePath     string
	indices      map[string]bleve.Index
	metadata     map[string]*SubscriptionIndexMetadata
	operations   map[string]*OperationInfo
	mu           sync.RWMutex
	metadataFile string
}

var (
	globalController *Controller
	controllerOnce   sync.Once
)

// GetController returns the global Bleve controller instance
func GetController() (*Controller, error) {
	var err error
	controllerOnce.Do(func() {
		globalController, err = NewController()
	})
	return globalController, err
}

// getAppDataDirectory returns the platform-specific application data directory
func getAppDataDirectory() (string, error) {
	var appDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: Use APPDATA
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		appDir = filepath.Join(appData, "Azurescope")

	case "darwin":
		// macOS: Use ~/Library/Application Support
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		appDir = filepath.Join(homeDir, "Library", "Application Support", "Azurescope")

	default:
		// Linux: Use ~/.local/share
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		appDir = filepath.Join(homeDir, ".local", "share", "azurescope")
	}

	return appDir, nil
}

// NewController creates a new Bleve controller
func NewController() (*Controller, error) {
	appDataDir, err := getAppDataDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to get app data directory: %w", err)
	}

	return NewControllerAt(filepath.Join(appDataDir, "indices"))
}

// NewControllerAt creates a controller with an explicit index directory.
func NewControllerAt(basePath string) (*Controller, error) {
	metadataFile := filepath.Join(basePath, "indices.json")

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create indices directory: %w", err)
	}

	controller := &Controller{
		basePath:     basePath,
		indices:      make(map[string]bleve.Index),
		metadata:     make(map[string]*SubscriptionIndexMetadata),
		operations:   make(map[string]*OperationInfo),
		metadataFile: metadataFile,
	}

	if err := controller.loadMetadata(); err != nil {
		logger.Log(logger.LevelWarn, nil, err, "failed to load index metadata")
	}

	return controller, nil
}

// GetOrCreateIndex gets an existing index or creates a new one for the subscription
func (c *Controller) GetOrCreateIndex(subscriptionID string) (bleve.Index, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Check if index already exists in memory
	if index, exists := c.indices[subscriptionID]; exists {
		return index, nil
	}

	indexPath := filepath.Join(c.basePath, subscriptionID)

	var index bleve.Index
	var err error

	// Try to open existing index
	if _, statErr := os.Stat(indexPath); statErr == nil {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Log(logger.LevelWarn, map[string]string{
				"subscription": subscriptionID,
			}, err, "failed to open existing index, creating new one")

			// If index is corrupted, remove it and create new
			os.RemoveAll(indexPath)
			index, err = c.createNewIndex(indexPath)
		}
	} else {
		// Index doesn't exist, create new
		index, err = c.createNewIndex(indexPath)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create/open index: %w", err)
	}

	c.indices[subscriptionID] = index

	// Initialize metadata if not exists
	if _, exists := c.metadata[subscriptionID]; !exists {
		c.metadata[subscriptionID] = &SubscriptionIndexMetadata{
			SubscriptionID: subscriptionID,
			IndexPath:      indexPath,
		}
	}

	return index, nil
}

// GetIndex gets an existing subscription index
func (c *Controller) GetIndex(subscriptionID string) (bleve.Index, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if index, exists := c.indices[subscriptionID]; exists {
		return index, nil
	}

	return nil, fmt.Errorf("index not found for subscription: %s", subscriptionID)
}

// CloseIndex closes and removes the index from memory
func (c *Controller) CloseIndex(subscriptionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index, exists := c.indices[subscriptionID]; exists {
		if err := index.Close(); err != nil {
			return fmt.Errorf("failed to close index: %w", err)
		}
		delete(c.indices, subscriptionID)
	}

	return nil
}

// GetIndexStatus returns the status of a subscription index
func (c *Controller) GetIndexStatus(subscriptionID string) (*IndexStatus, error) {
	c.mu.RLock()
	index, exists := c.indices[subscriptionID]
	metadata := c.metadata[subscriptionID]
	operation := c.operations[subscriptionID]
	c.mu.RUnlock()

	if !exists {
		// Check if index exists on disk but not in memory
		indexPath := filepath.Join(c.basePath, subscriptionID)
		if _, err := os.Stat(indexPath); os.IsNotExist(err) {
			return &IndexStatus{
				Subscription: subscriptionID,
				Status:       "not_indexed",
				Message:      "No index found for this subscription",
			}, nil
		}

		// Index exists on disk, try to open it
		var err error
		index, err = c.GetOrCreateIndex(subscriptionID)
		if err != nil {
			return &IndexStatus{
				Subscription: subscriptionID,
				Status:       "error",
				Error:        fmt.Sprintf("failed to open index: %v", err),
			}, nil
		}
		c.mu.RLock()
		metadata = c.metadata[subscriptionID]
		c.mu.RUnlock()
	}

	// Get stats from index
	docCount, err := index.DocCount()
	if err != nil {
		return &IndexStatus{
			Subscription: subscriptionID,
			Status:       "error",
			Error:        fmt.Sprintf("failed to get doc count: %v", err),
		}, nil
	}

	// Calculate index size
	indexSize := "0 B"
	if metadata != nil {
		size, _ := c.getDirectorySize(metadata.IndexPath)
		indexSize = formatBytes(size)
	}

	stats := &IndexStats{
		DocumentCount: docCount,
		IndexSize:     indexSize,
	}

	if metadata != nil {
		stats.LastIndexed = metadata.LastIndexed
		stats.LastUpdated = metadata.LastIndexed
	}

	// Determine status
	status := "healthy"
	if operation != nil && operation.Status == "in_progress" {
		status = "indexing"
	}

	result := &IndexStatus{
		Subscription: subscriptionID,
		Status:       status,
		Stats:        stats,
	}

	if operation != nil {
		result.CurrentOperation = operation
	}

	return result, nil
}

// ListIndexedSubscriptions returns a list of all indexed subscriptions
func (c *Controller) ListIndexedSubscriptions() ([]*IndexStatus, error) {
	c.mu.RLock()
	subscriptionIDs := make([]string, 0, len(c.metadata))
	for id := range c.metadata {
		subscriptionIDs = append(subscriptionIDs, id)
	}
	c.mu.RUnlock()

	results := make([]*IndexStatus, 0, len(subscriptionIDs))
	for _, id := range subscriptionIDs {
		status, err := c.GetIndexStatus(id)
		if err != nil {
			logger.Log(logger.LevelWarn, map[string]string{
				"subscription": id,
			}, err, "failed to get index status")
			continue
		}
		results = append(results, status)
	}

	return results, nil
}

// createNewIndex creates a new Bleve index with a mapping tuned for
// Azure resource documents
func (c *Controller) createNewIndex(indexPath string) (bleve.Index, error) {
	mapping := bleve.NewIndexMapping()

	resourceMapping := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	resourceMapping.AddFieldMappingsAt("name", textFieldMapping)
	resourceMapping.AddFieldMappingsAt("resourceType", textFieldMapping)
	resourceMapping.AddFieldMappingsAt("location", textFieldMapping)

	// Filter fields are matched whole by term queries, so they keep the
	// keyword analyzer; values are lowercased at index time.
	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name
	resourceMapping.AddFieldMappingsAt("category", keywordFieldMapping)
	resourceMapping.AddFieldMappingsAt("resourceGroup", keywordFieldMapping)

	mapping.DefaultMapping = resourceMapping

	index, err := bleve.New(indexPath, mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	logger.Log(logger.LevelInfo, map[string]string{
		"indexPath": indexPath,
	}, nil, "created new Bleve index")

	return index, nil
}

// saveMetadata persists index metadata to disk
func (c *Controller) saveMetadata() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := json.MarshalIndent(c.metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(c.metadataFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	return nil
}

// loadMetadata loads index metadata from disk
func (c *Controller) loadMetadata() error {
	if _, err := os.Stat(c.metadataFile); os.IsNotExist(err) {
		return nil // Metadata file doesn't exist yet
	}

	data, err := os.ReadFile(c.metadataFile)
	if err != nil {
		return fmt.Errorf("failed to read metadata file: %w", err)
	}

	if err := json.Unmarshal(data, &c.metadata); err != nil {
		return fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return nil
}

// UpdateMetadata updates the metadata for a subscription
func (c *Controller) UpdateMetadata(subscriptionID string, update func(*SubscriptionIndexMetadata)) error {
	c.mu.Lock()
	if metadata, exists := c.metadata[subscriptionID]; exists {
		update(metadata)
	}
	c.mu.Unlock()

	return c.saveMetadata()
}

// SetOperation sets an operation for tracking
func (c *Controller) SetOperation(subscriptionID string, op *OperationInfo) {
	c.mu.Lock()
	c.operations[subscriptionID] = op
	c.mu.Unlock()
}

// ClearOperation clears an operation
func (c *Controller) ClearOperation(subscriptionID string) {
	c.mu.Lock()
	delete(c.operations, subscriptionID)
	c.mu.Unlock()
}

// DeleteIndex deletes the index for a subscription
func (c *Controller) DeleteIndex(subscriptionID string) error {
	// Close the index if it's open
	if err := c.CloseIndex(subscriptionID); err != nil {
		logger.Log(logger.LevelWarn, map[string]string{
			"subscription": subscriptionID,
		}, err, "failed to close index before deletion")
	}

	// Delete index files from disk
	indexPath := filepath.Join(c.basePath, subscriptionID)
	if err := os.RemoveAll(indexPath); err != nil {
		return fmt.Errorf("failed to delete index directory: %w", err)
	}

	// Remove from metadata
	c.mu.Lock()
	delete(c.metadata, subscriptionID)
	c.mu.Unlock()

	// Save updated metadata
	if err := c.saveMetadata(); err != nil {
		logger.Log(logger.LevelWarn, map[string]string{
			"subscription": subscriptionID,
		}, err, "failed to save metadata after deletion")
	}

	logger.Log(logger.LevelInfo, map[string]string{
		"subscription": subscriptionID,
	}, nil, "deleted subscription index")

	return nil
}

// getDirectorySize calculates the size of a directory
func (c *Controller) getDirectorySize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats bytes to human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
