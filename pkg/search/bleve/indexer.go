package bleve

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"

	"github.com/azurescope/explorer/pkg/azure"
	"github.com/azurescope/explorer/pkg/inventory"
	"github.com/azurescope/explorer/pkg/logger"
)

const batchSize = 1000

// Indexer writes inventory snapshots into a Bleve index
type Indexer struct {
	index bleve.Index
}

// NewIndexer creates a new indexer
func NewIndexer(index bleve.Index) *Indexer {
	return &Indexer{index: index}
}

// IndexSnapshot indexes every resource in the snapshot in batches. When
// opts restricts categories, resources outside them are skipped. Re-running
// over an existing index upserts documents by resource id, so refreshing
// with a newer snapshot of the same subscription just works.
func (i *Indexer) IndexSnapshot(ctx context.Context, snap *inventory.Snapshot, opts IndexOptions) (*IndexStats, error) {
	stats := &IndexStats{
		IndexingStarted: time.Now(),
		CategoryCounts:  make(map[string]uint64),
	}

	allowed := categoryFilter(opts.Categories)

	batch := i.index.NewBatch()

	for _, r := range snap.Resources {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		category := string(inventory.Classify(r.Type))
		if allowed != nil && !allowed[strings.ToLower(category)] {
			continue
		}

		doc := mapResourceToDocument(r)
		if err := batch.Index(doc.ID, doc); err != nil {
			logger.Log(logger.LevelWarn, map[string]string{
				"docID": doc.ID,
			}, err, "failed to add document to batch")
			continue
		}

		stats.CategoryCounts[category]++
		stats.DocumentCount++

		// Execute batch when it reaches batchSize
		if batch.Size() >= batchSize {
			if err := i.index.Batch(batch); err != nil {
				return stats, fmt.Errorf("failed to execute batch: %w", err)
			}
			stats.TotalBatches++
			batch = i.index.NewBatch()
		}
	}

	// Execute remaining batch
	if batch.Size() > 0 {
		if err := i.index.Batch(batch); err != nil {
			return stats, fmt.Errorf("failed to execute final batch: %w", err)
		}
		stats.TotalBatches++
	}

	stats.IndexingEnded = time.Now()
	stats.LastIndexed = stats.IndexingEnded
	stats.LastUpdated = stats.IndexingEnded

	logger.Log(logger.LevelInfo, map[string]string{
		"documentCount": fmt.Sprintf("%d", stats.DocumentCount),
		"duration":      stats.IndexingEnded.Sub(stats.IndexingStarted).String(),
	}, nil, "indexing completed")

	return stats, nil
}

// mapResourceToDocument converts an Azure resource to a Bleve document.
// Category and resource group are lowercased to line up with the keyword
// analyzer on their fields; display values round-trip from the doc id.
func mapResourceToDocument(r azure.Resource) ResourceDocument {
	tags := r.Tags
	if tags == nil {
		tags = make(map[string]string)
	}

	return ResourceDocument{
		ID:            r.ID,
		Name:          r.Name,
		ResourceType:  r.Type,
		Category:      strings.ToLower(string(inventory.Classify(r.Type))),
		ResourceGroup: strings.ToLower(r.ResourceGroup),
		Location:      r.Location,
		Tags:          tags,
	}
}

// categoryFilter builds a lookup set from the requested categories.
// A nil result means no restriction.
func categoryFilter(categories []string) map[string]bool {
	if len(categories) == 0 {
		return nil
	}

	allowed := make(map[string]bool, len(categories))
	for _, c := range categories {
		allowed[strings.ToLower(c)] = true
	}

	return allowed
}
