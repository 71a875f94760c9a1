package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/azurescope/explorer/pkg/inventory"
	"github.com/azurescope/explorer/pkg/logger"
	"github.com/azurescope/explorer/pkg/search"
	searchbleve "github.com/azurescope/explorer/pkg/search/bleve"
)

// SearchRequest is the body of POST /search/query.
type SearchRequest struct {
	Query         string `json:"query"`
	Subscription  string `json:"subscription,omitempty"`
	Category      string `json:"category,omitempty"`
	ResourceGroup string `json:"resourceGroup,omitempty"`
	Limit         int    `json:"limit,omitempty" validate:"gte=0,lte=1000"`
	Fuzzy         bool   `json:"fuzzy,omitempty"`
}

// Validate validates the SearchRequest
func (req *SearchRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(req)
}

func (req *SearchRequest) options() search.Options {
	return search.Options{
		Query:         req.Query,
		Category:      req.Category,
		ResourceGroup: req.ResourceGroup,
		Limit:         req.Limit,
	}
}

// SearchResources answers search queries from the subscription's Bleve
// index, falling back to a direct scan of the loaded snapshot when no
// index exists.
func SearchResources(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("invalid search request: %v", err),
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bleveCtrl, err := searchbleve.GetController()
	if err == nil && req.Subscription != "" {
		index, err := bleveCtrl.GetIndex(req.Subscription)
		if err == nil {
			searcher := searchbleve.NewSearcher(index)

			results, duration, err := searcher.Search(c.Request.Context(), req.options(), req.Fuzzy)
			if err == nil {
				c.JSON(http.StatusOK, searchbleve.SearchResults{
					Results:      results,
					Count:        len(results),
					Query:        req.Query,
					Subscription: req.Subscription,
					SearchTime:   duration.String(),
					Source:       "bleve",
				})
				return
			}

			logger.Log(logger.LevelWarn, map[string]string{
				"subscription": req.Subscription,
			}, err, "Bleve search failed, falling back to snapshot scan")
		}
	}

	// Snapshot fallback covers the loaded subscription only.
	st, ok := state.Load()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "subscription is not indexed and no snapshot is loaded",
		})
		return
	}

	if req.Subscription != "" && !strings.EqualFold(req.Subscription, st.Snapshot.Metadata.SubscriptionID) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("subscription %s is not indexed; index it first", req.Subscription),
		})
		return
	}

	start := time.Now()
	results := search.InMemory(st.Snapshot, req.options())

	c.JSON(http.StatusOK, searchbleve.SearchResults{
		Results:      results,
		Count:        len(results),
		Query:        req.Query,
		Subscription: st.Snapshot.Metadata.SubscriptionID,
		SearchTime:   time.Since(start).String(),
		Source:       "snapshot",
	})
}

// IndexSubscription builds or refreshes the Bleve index for a
// subscription from the loaded snapshot.
func IndexSubscription(c *gin.Context) {
	subscriptionID := c.Param("subscription")

	var indexOptions searchbleve.IndexOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&indexOptions); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("invalid index options: %v", err),
			})
			return
		}
	}

	if indexOptions.Action == "" {
		indexOptions.Action = "rebuild"
	}

	if indexOptions.Action != "rebuild" && indexOptions.Action != "refresh" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("unknown action: %s", indexOptions.Action),
		})
		return
	}

	st, ok := state.Load()
	if !ok {
		c.JSON(http.StatusConflict, gin.H{
			"error": "no snapshot loaded; run discovery first",
		})
		return
	}

	// The loaded snapshot is the only document source.
	if loaded := st.Snapshot.Metadata.SubscriptionID; loaded != "" && !strings.EqualFold(loaded, subscriptionID) {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("loaded snapshot belongs to subscription %s; discover %s first", loaded, subscriptionID),
		})
		return
	}

	bleveCtrl, err := searchbleve.GetController()
	if err != nil {
		logger.Log(logger.LevelError, nil, err, "getting Bleve controller")
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to get Bleve controller: %v", err)})
		return
	}

	if indexOptions.Async {
		operationID := fmt.Sprintf("idx-%s-%s", indexOptions.Action, uuid.New().String()[:8])

		bleveCtrl.SetOperation(subscriptionID, &searchbleve.OperationInfo{
			OperationID: operationID,
			Type:        indexOptions.Action,
			Status:      "in_progress",
			Progress:    0,
			StartedAt:   time.Now(),
		})

		go performIndexingAsync(subscriptionID, st.Snapshot, indexOptions, operationID, bleveCtrl)

		c.JSON(http.StatusAccepted, gin.H{
			"subscription": subscriptionID,
			"action":       indexOptions.Action,
			"status":       "started",
			"operationId":  operationID,
			"message":      "Indexing started in background",
		})
		return
	}

	stats, err := performIndexing(c.Request.Context(), subscriptionID, st.Snapshot, indexOptions, bleveCtrl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("indexing failed: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscription": subscriptionID,
		"action":       indexOptions.Action,
		"status":       "completed",
		"stats":        stats,
	})
}

// GetIndexStatus handles index status requests
func GetIndexStatus(c *gin.Context) {
	subscriptionID := c.Param("subscription")

	bleveCtrl, err := searchbleve.GetController()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("failed to get Bleve controller: %v", err),
		})
		return
	}

	status, err := bleveCtrl.GetIndexStatus(subscriptionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("failed to get index status: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, status)
}

// ListIndexedSubscriptions lists every subscription with an index.
func ListIndexedSubscriptions(c *gin.Context) {
	bleveCtrl, err := searchbleve.GetController()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("failed to get Bleve controller: %v", err),
		})
		return
	}

	subscriptions, err := bleveCtrl.ListIndexedSubscriptions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("failed to list indexed subscriptions: %v", err),
		})
		return
	}

	totalDocuments := uint64(0)
	for _, sub := range subscriptions {
		if sub.Stats != nil {
			totalDocuments += sub.Stats.DocumentCount
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"subscriptions":      subscriptions,
		"totalSubscriptions": len(subscriptions),
		"totalDocuments":     totalDocuments,
	})
}

// DeleteSubscriptionIndex removes a subscription's index.
func DeleteSubscriptionIndex(c *gin.Context) {
	subscriptionID := c.Param("subscription")

	bleveCtrl, err := searchbleve.GetController()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("failed to get Bleve controller: %v", err),
		})
		return
	}

	if err := bleveCtrl.DeleteIndex(subscriptionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("failed to delete index: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscription": subscriptionID,
		"message":      "Index deleted successfully",
	})
}

// performIndexing performs the actual indexing operation
func performIndexing(ctx context.Context, subscriptionID string, snap *inventory.Snapshot, opts searchbleve.IndexOptions, ctrl *searchbleve.Controller) (*searchbleve.IndexStats, error) {
	// A rebuild drops stale documents a refresh would leave behind.
	if opts.Action == "rebuild" {
		if err := ctrl.DeleteIndex(subscriptionID); err != nil {
			return nil, fmt.Errorf("clearing index for rebuild: %w", err)
		}
	}

	index, err := ctrl.GetOrCreateIndex(subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}

	indexer := searchbleve.NewIndexer(index)

	stats, err := indexer.IndexSnapshot(ctx, snap, opts)
	if err != nil {
		return nil, err
	}

	if err := ctrl.UpdateMetadata(subscriptionID, func(metadata *searchbleve.SubscriptionIndexMetadata) {
		metadata.LastIndexed = time.Now()
		metadata.DocumentCount = stats.DocumentCount
		metadata.Categories = opts.Categories
	}); err != nil {
		logger.Log(logger.LevelWarn, map[string]string{
			"subscription": subscriptionID,
		}, err, "updating index metadata")
	}

	return stats, nil
}

// performIndexingAsync performs indexing in the background
func performIndexingAsync(subscriptionID string, snap *inventory.Snapshot, opts searchbleve.IndexOptions, operationID string, ctrl *searchbleve.Controller) {
	ctx := context.Background()

	stats, err := performIndexing(ctx, subscriptionID, snap, opts, ctrl)

	if err != nil {
		logger.Log(logger.LevelError, map[string]string{
			"subscription": subscriptionID,
			"operationID":  operationID,
		}, err, "async indexing failed")

		ctrl.SetOperation(subscriptionID, &searchbleve.OperationInfo{
			OperationID: operationID,
			Type:        opts.Action,
			Status:      "error",
			StartedAt:   time.Now(),
		})
	} else {
		logger.Log(logger.LevelInfo, map[string]string{
			"subscription":  subscriptionID,
			"operationID":   operationID,
			"documentCount": fmt.Sprintf("%d", stats.DocumentCount),
		}, nil, "async indexing completed")

		ctrl.SetOperation(subscriptionID, &searchbleve.OperationInfo{
			OperationID: operationID,
			Type:        opts.Action,
			Status:      "completed",
			Progress:    100,
			StartedAt:   time.Now(),
		})
	}

	// Clear operation after some time
	time.Sleep(30 * time.Second)
	ctrl.ClearOperation(subscriptionID)
}
