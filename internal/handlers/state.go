package handlers

import (
	"context"
	"sync"

	"github.com/azurescope/explorer/pkg/graph"
	"github.com/azurescope/explorer/pkg/inventory"
	"github.com/azurescope/explorer/pkg/logger"
	searchbleve "github.com/azurescope/explorer/pkg/search/bleve"
)

// State is one immutable snapshot/graph pair. The graph is built once per
// snapshot load; readers share it and never rebuild or mutate it.
type State struct {
	Snapshot *inventory.Snapshot
	Graph    *graph.Graph
}

// StateHolder swaps the loaded state wholesale. A request reads whichever
// pair was current when it started.
type StateHolder struct {
	mu      sync.RWMutex
	current *State
}

// Shared dashboard state instance
var state = &StateHolder{}

// Swap builds the relationship graph for snap and makes the pair current.
func (h *StateHolder) Swap(snap *inventory.Snapshot) *State {
	st := &State{
		Snapshot: snap,
		Graph:    graph.Build(snap.Resources),
	}

	h.mu.Lock()
	h.current = st
	h.mu.Unlock()

	return st
}

// Load returns the current state, if any snapshot has been loaded.
func (h *StateHolder) Load() (*State, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.current, h.current != nil
}

// UpdateSnapshot is the scanner's snapshot sink: every completed scan
// replaces the dashboard state and, when the subscription already has a
// search index, refreshes its documents in the background.
func UpdateSnapshot(subscriptionID string, snap *inventory.Snapshot) {
	state.Swap(snap)

	ctrl, err := searchbleve.GetController()
	if err != nil {
		logger.Log(logger.LevelWarn, nil, err, "getting search controller")
		return
	}

	status, err := ctrl.GetIndexStatus(subscriptionID)
	if err != nil || status.Status == "not_indexed" || status.Status == "error" {
		return
	}

	index, err := ctrl.GetOrCreateIndex(subscriptionID)
	if err != nil {
		logger.Log(logger.LevelWarn, map[string]string{
			"subscription": subscriptionID,
		}, err, "opening index for refresh")
		return
	}

	go func() {
		indexer := searchbleve.NewIndexer(index)

		stats, err := indexer.IndexSnapshot(context.Background(), snap, searchbleve.IndexOptions{Action: "refresh"})
		if err != nil {
			logger.Log(logger.LevelWarn, map[string]string{
				"subscription": subscriptionID,
			}, err, "refreshing index after scan")
			return
		}

		if err := ctrl.UpdateMetadata(subscriptionID, func(m *searchbleve.SubscriptionIndexMetadata) {
			m.LastIndexed = stats.IndexingEnded
			m.DocumentCount = stats.DocumentCount
		}); err != nil {
			logger.Log(logger.LevelWarn, map[string]string{
				"subscription": subscriptionID,
			}, err, "updating index metadata")
		}
	}()
}
