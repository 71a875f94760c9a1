package bleve

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/azurescope/explorer/pkg/inventory"
	"github.com/azurescope/explorer/pkg/search"
)

// Searcher handles search operations on a Bleve index
type Searcher struct {
	index bleve.Index
}

// NewSearcher creates a new searcher
func NewSearcher(index bleve.Index) *Searcher {
	return &Searcher{
		index: index,
	}
}

// Search performs a search on the index
func (s *Searcher) Search(ctx context.Context, opts search.Options, fuzzy bool) ([]search.Result, time.Duration, error) {
	startTime := time.Now()

	query := s.buildQuery(opts, fuzzy)

	searchRequest := bleve.NewSearchRequest(query)

	limit := opts.Limit
	if limit <= 0 {
		limit = search.DefaultLimit
	}
	searchRequest.Size = limit
	searchRequest.From = 0

	// Location is not recoverable from the document id, so fetch the
	// stored field.
	searchRequest.Fields = []string{"location"}

	searchResults, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, 0, fmt.Errorf("search failed: %w", err)
	}

	results := make([]search.Result, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		// The document id is the full resource id; everything but the
		// location round-trips from it.
		result := parseDocID(hit.ID)
		if result == nil {
			continue
		}

		result.Score = hit.Score
		if loc, ok := hit.Fields["location"].(string); ok {
			result.Location = loc
		}

		results = append(results, *result)
	}

	duration := time.Since(startTime)
	return results, duration, nil
}

// buildQuery builds a Bleve query from search options
func (s *Searcher) buildQuery(opts search.Options, fuzzy bool) bleveQuery.Query {
	queries := []bleveQuery.Query{}

	// Full-text search on query string
	if opts.Query != "" {
		terms := strings.Fields(opts.Query)

		for _, term := range terms {
			var q bleveQuery.Query
			if fuzzy {
				matchQuery := bleveQuery.NewMatchQuery(term)
				matchQuery.SetFuzziness(1)
				q = matchQuery
			} else {
				q = bleveQuery.NewMatchQuery(term)
			}
			queries = append(queries, q)
		}
	}

	// Filter by category. The standard analyzer lowercases terms, so the
	// filter value must be lowercased to match.
	if opts.Category != "" {
		termQuery := bleveQuery.NewTermQuery(strings.ToLower(opts.Category))
		termQuery.SetField("category")
		queries = append(queries, termQuery)
	}

	// Filter by resource group
	if opts.ResourceGroup != "" {
		termQuery := bleveQuery.NewTermQuery(strings.ToLower(opts.ResourceGroup))
		termQuery.SetField("resourceGroup")
		queries = append(queries, termQuery)
	}

	// If no queries, match all
	if len(queries) == 0 {
		return bleveQuery.NewMatchAllQuery()
	}

	// Combine all queries with AND
	if len(queries) == 1 {
		return queries[0]
	}

	return bleveQuery.NewConjunctionQuery(queries)
}

// parseDocID recovers a search result from a resource id of the form
// /subscriptions/{sub}/resourceGroups/{rg}/providers/{provider}/{type}/{name}
func parseDocID(docID string) *search.Result {
	parts := strings.Split(strings.TrimPrefix(docID, "/"), "/")
	if len(parts) < 2 {
		return nil
	}

	result := &search.Result{
		ID:   docID,
		Name: parts[len(parts)-1],
	}

	for i := 0; i < len(parts)-1; i++ {
		switch strings.ToLower(parts[i]) {
		case "resourcegroups":
			result.ResourceGroup = parts[i+1]
		case "providers":
			if i+2 < len(parts) {
				result.Type = parts[i+1] + "/" + parts[i+2]
			}
		}
	}

	if result.Type != "" {
		result.Category = string(inventory.Classify(result.Type))
	}

	return result
}

// GetDocumentByID reports whether a document exists in the index
func (s *Searcher) GetDocumentByID(docID string) (*search.Result, error) {
	doc, err := s.index.Document(docID)
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	if doc == nil {
		return nil, fmt.Errorf("document not found: %s", docID)
	}

	return parseDocID(docID), nil
}
