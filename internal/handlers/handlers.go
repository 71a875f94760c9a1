package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/azurescope/explorer/pkg/azure"
	"github.com/azurescope/explorer/pkg/export"
	"github.com/azurescope/explorer/pkg/inventory"
	"github.com/azurescope/explorer/pkg/logger"
)

// Discovery can take minutes on large subscriptions.
const discoverTimeout = 10 * time.Minute

// Shared Azure CLI executor instance
var azCLI *azure.CLI

// Shared subscription store instance
var subscriptionStore azure.SubscriptionStore

// Shared snapshot store instance
var snapshotStore *export.Store

// InitializeExplorer wires the shared instances the handlers use.
func InitializeExplorer(cli *azure.CLI, subs azure.SubscriptionStore, snapshots *export.Store) {
	azCLI = cli
	subscriptionStore = subs
	snapshotStore = snapshots
	logger.Log(logger.LevelInfo, nil, nil, "Explorer handlers initialized")
}

// PingHandler handles the ping endpoint
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// HomeHandler handles the root endpoint
func HomeHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the Azurescope Explorer API",
	})
}

// StatusHandler reports server health, CLI reachability and whether a
// snapshot is loaded.
func StatusHandler(c *gin.Context) {
	if azCLI == nil {
		logger.Log(logger.LevelError, nil, nil, "Explorer handlers not initialized")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	azStatus := "ok"
	if err := azCLI.CheckAccess(c.Request.Context()); err != nil {
		switch {
		case errors.Is(err, azure.ErrCLINotFound):
			azStatus = "cli_not_found"
		case errors.Is(err, azure.ErrNotLoggedIn):
			azStatus = "not_logged_in"
		default:
			azStatus = "error"
		}
	}

	body := gin.H{
		"status":   "running",
		"azureCli": azStatus,
		"version":  "1.0.0",
	}

	body["snapshotDir"] = snapshotStore.Dir()
	body["snapshotLoaded"] = false

	if st, ok := state.Load(); ok {
		body["snapshotLoaded"] = true
		body["subscription"] = st.Snapshot.Metadata.SubscriptionID
		body["resources"] = st.Snapshot.Metadata.TotalResources
		body["exportDate"] = st.Snapshot.Metadata.ExportDate
	}

	c.JSON(http.StatusOK, body)
}

// DiscoverRequest asks for a fresh scan of one subscription.
type DiscoverRequest struct {
	Subscription string `json:"subscription,omitempty"`
	// Export writes the resulting snapshot to the snapshot store.
	Export bool `json:"export,omitempty"`
}

// Validate validates the DiscoverRequest
func (req *DiscoverRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}

// DiscoverHandler runs a discovery scan now and swaps the loaded snapshot.
func DiscoverHandler(c *gin.Context) {
	if azCLI == nil {
		logger.Log(logger.LevelError, nil, nil, "Explorer handlers not initialized")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	var req DiscoverRequest
	// The body is optional; an empty POST scans the default subscription.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("invalid discover request: %v", err),
			})
			return
		}
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), discoverTimeout)
	defer cancel()

	discovery, err := azCLI.Discover(ctx, req.Subscription)
	if err != nil {
		if errors.Is(err, azure.ErrCLINotFound) || errors.Is(err, azure.ErrNotLoggedIn) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}

		// Partial results are still loaded; the error rides along.
		logger.Log(logger.LevelWarn, map[string]string{
			"subscription": req.Subscription,
		}, err, "discovery completed with errors")
	}

	if discovery == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "discovery returned nothing"})
		return
	}

	snap := inventory.NewSnapshot(discovery.Subscription, discovery.ResourceGroups, discovery.Resources)
	state.Swap(snap)

	body := gin.H{
		"metadata": snap.Metadata,
	}

	if err != nil {
		body["warnings"] = err.Error()
	}

	if req.Export {
		entry, saveErr := snapshotStore.Save(snap)
		if saveErr != nil {
			logger.Log(logger.LevelError, nil, saveErr, "saving snapshot")
			c.JSON(http.StatusInternalServerError, gin.H{"error": saveErr.Error()})
			return
		}

		body["export"] = entry
	}

	c.JSON(http.StatusOK, body)
}

// SnapshotHandler returns the loaded snapshot.
func SnapshotHandler(c *gin.Context) {
	st, ok := state.Load()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "no snapshot loaded; run discovery first",
		})
		return
	}

	c.JSON(http.StatusOK, st.Snapshot)
}

// ExportSnapshotHandler writes the loaded snapshot to the snapshot store.
func ExportSnapshotHandler(c *gin.Context) {
	st, ok := state.Load()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "no snapshot loaded; run discovery first",
		})
		return
	}

	entry, err := snapshotStore.Save(st.Snapshot)
	if err != nil {
		logger.Log(logger.LevelError, nil, err, "exporting snapshot")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// ImportRequest loads a snapshot from the store by id, or copies an
// external snapshot file into the store first.
type ImportRequest struct {
	ID   string `json:"id,omitempty"`
	Path string `json:"path,omitempty"`
}

// Validate validates the ImportRequest
func (req *ImportRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return err
	}

	if req.ID == "" && req.Path == "" {
		return errors.New("either id or path is required")
	}

	return nil
}

// ImportSnapshotHandler loads a stored or external snapshot and makes it
// the active one.
func ImportSnapshotHandler(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("invalid import request: %v", err),
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := req.ID
	if req.Path != "" {
		entry, err := snapshotStore.Import(req.Path)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		id = entry.ID
	}

	snap, err := snapshotStore.Load(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	state.Swap(snap)

	c.JSON(http.StatusOK, gin.H{
		"id":       id,
		"metadata": snap.Metadata,
	})
}

// ListSnapshotsHandler lists stored snapshots, newest first.
func ListSnapshotsHandler(c *gin.Context) {
	entries, err := snapshotStore.List()
	if err != nil {
		logger.Log(logger.LevelError, nil, err, "listing snapshots")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"snapshots": entries,
		"count":     len(entries),
	})
}

// CommandHandler runs one raw az command for the dashboard.
func CommandHandler(c *gin.Context) {
	if azCLI == nil {
		logger.Log(logger.LevelError, nil, nil, "Explorer handlers not initialized")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	var req azure.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log(logger.LevelError, nil, err, "binding request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := azCLI.Execute(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
