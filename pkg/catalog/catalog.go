// Package catalog ships a curated reference of Azure service offerings,
// grouped by category. The data is embedded so the explorer can answer
// "what is this service for" questions offline.
package catalog

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

//go:embed catalog.yaml
var rawCatalog []byte

// Service is one Azure offering within a category.
type Service struct {
	Key         string              `json:"key" yaml:"key"`
	Name        string              `json:"name" yaml:"name"`
	Description string              `json:"description" yaml:"description"`
	UseCases    []string            `json:"use_cases,omitempty" yaml:"use_cases,omitempty"`
	Details     map[string][]string `json:"details,omitempty" yaml:"details,omitempty"`
}

// Category groups related services, e.g. compute or networking.
type Category struct {
	Key         string    `json:"key" yaml:"key"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Services    []Service `json:"services" yaml:"services"`
}

// SearchResult is one service matched by a catalog search.
type SearchResult struct {
	Category     string `json:"category"`
	ServiceKey   string `json:"service_key"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	CategoryName string `json:"category_name"`
}

// Catalog holds the parsed service reference. Categories keep the order
// they are declared in.
type Catalog struct {
	categories []Category
	byKey      map[string]int
}

var (
	defaultCatalog *Catalog
	loadOnce       sync.Once
	loadErr        error
)

// Default parses the embedded catalog once and returns it.
func Default() (*Catalog, error) {
	loadOnce.Do(func() {
		defaultCatalog, loadErr = parse(rawCatalog)
	})

	return defaultCatalog, loadErr
}

func parse(data []byte) (*Catalog, error) {
	var doc struct {
		Categories []Category `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing service catalog")
	}

	c := &Catalog{
		categories: doc.Categories,
		byKey:      make(map[string]int, len(doc.Categories)),
	}
	for i, cat := range c.categories {
		c.byKey[cat.Key] = i
	}

	return c, nil
}

// Categories returns all categories in declaration order.
func (c *Catalog) Categories() []Category {
	return c.categories
}

// Category looks up one category by key.
func (c *Catalog) Category(key string) (Category, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return Category{}, false
	}

	return c.categories[i], true
}

// Service looks up one service by category and service key.
func (c *Catalog) Service(categoryKey, serviceKey string) (Service, bool) {
	cat, ok := c.Category(categoryKey)
	if !ok {
		return Service{}, false
	}

	for _, svc := range cat.Services {
		if svc.Key == serviceKey {
			return svc, true
		}
	}

	return Service{}, false
}

// Search matches services whose name, description or use cases contain
// the query, case-insensitively. An empty query matches everything.
func (c *Catalog) Search(query string) []SearchResult {
	queryLower := strings.ToLower(query)

	var results []SearchResult
	for _, cat := range c.categories {
		for _, svc := range cat.Services {
			if !matches(svc, queryLower) {
				continue
			}

			results = append(results, SearchResult{
				Category:     cat.Key,
				ServiceKey:   svc.Key,
				Name:         svc.Name,
				Description:  svc.Description,
				CategoryName: cat.Name,
			})
		}
	}

	return results
}

func matches(svc Service, queryLower string) bool {
	if strings.Contains(strings.ToLower(svc.Name), queryLower) {
		return true
	}
	if strings.Contains(strings.ToLower(svc.Description), queryLower) {
		return true
	}

	for _, useCase := range svc.UseCases {
		if strings.Contains(strings.ToLower(useCase), queryLower) {
			return true
		}
	}

	return false
}
