package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azurescope/explorer/pkg/catalog"
	"github.com/azurescope/explorer/pkg/logger"
)

// CatalogHandler returns the full service catalog.
func CatalogHandler(c *gin.Context) {
	cat, err := catalog.Default()
	if err != nil {
		logger.Log(logger.LevelError, nil, err, "loading service catalog")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": cat.Categories(),
	})
}

// CatalogCategoryHandler returns one catalog category by key.
func CatalogCategoryHandler(c *gin.Context) {
	cat, err := catalog.Default()
	if err != nil {
		logger.Log(logger.LevelError, nil, err, "loading service catalog")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	key := c.Param("category")
	category, ok := cat.Category(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}

	c.JSON(http.StatusOK, category)
}

// CatalogSearchHandler searches the catalog. An empty query matches every
// service, mirroring the CLI behavior.
func CatalogSearchHandler(c *gin.Context) {
	cat, err := catalog.Default()
	if err != nil {
		logger.Log(logger.LevelError, nil, err, "loading service catalog")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	query := c.Query("q")
	results := cat.Search(query)

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}
