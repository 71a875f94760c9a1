package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/azurescope/explorer/internal/handlers"
	"github.com/azurescope/explorer/pkg/azure"
	"github.com/azurescope/explorer/pkg/config"
	"github.com/azurescope/explorer/pkg/export"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(cfg config.Config, cli *azure.CLI, store azure.SubscriptionStore, snapshots *export.Store) *gin.Engine {
	// Set gin mode based on config
	if !cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize explorer handlers
	handlers.InitializeExplorer(cli, store, snapshots)

	// Create default gin router with Logger and Recovery middleware
	router := gin.Default()

	// HTTP routes
	router.GET("/", handlers.HomeHandler)
	router.GET("/ping", handlers.PingHandler)

	// WebSocket route streaming scanner events
	router.GET("/ws", handlers.EventStreamHandler)

	if cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// Base path setup if configured
	var apiRoot *gin.RouterGroup
	if cfg.BaseURL != "" {
		apiRoot = router.Group(cfg.BaseURL)
	} else {
		apiRoot = router.Group("")
	}

	// API routes
	api := apiRoot.Group("/api")
	{
		// API v1 routes
		v1 := api.Group("/v1")
		{
			v1.GET("/status", handlers.StatusHandler)

			// Subscriptions known from the az profile
			v1.GET("/subscriptions", HandleGetSubscriptions(store))
			v1.GET("/subscriptions/:id", HandleGetSubscriptionByID(store))

			// Discovery and snapshot lifecycle
			v1.POST("/discover", handlers.DiscoverHandler)
			v1.GET("/snapshot", handlers.SnapshotHandler)
			v1.GET("/snapshots", handlers.ListSnapshotsHandler)
			v1.POST("/snapshot/export", handlers.ExportSnapshotHandler)
			v1.POST("/snapshot/import", handlers.ImportSnapshotHandler)

			// Raw az command passthrough
			v1.POST("/command", handlers.CommandHandler)

			// Dashboard views over the loaded snapshot
			dashboard := v1.Group("/dashboard")
			{
				dashboard.GET("/views", handlers.DashboardViewsHandler)
				dashboard.GET("/graph", handlers.DashboardGraphHandler)
				dashboard.GET("/security", handlers.DashboardSecurityHandler)
			}

			// Text reports
			reports := v1.Group("/reports")
			{
				reports.GET("/architecture", handlers.ArchitectureReportHandler)
				reports.GET("/topology", handlers.TopologyReportHandler)
				reports.GET("/security", handlers.SecurityReportHandler)
				reports.GET("/costs", handlers.CostReportHandler)
			}

			// PNG charts
			charts := v1.Group("/charts")
			{
				charts.GET("/categories.png", handlers.CategoryChartHandler)
				charts.GET("/groups.png", handlers.GroupChartHandler)
			}

			// Service catalog
			v1.GET("/catalog", handlers.CatalogHandler)
			v1.GET("/catalog/search", handlers.CatalogSearchHandler)
			v1.GET("/catalog/:category", handlers.CatalogCategoryHandler)

			// Full-text search over indexed subscriptions
			search := v1.Group("/search")
			{
				search.POST("/query", handlers.SearchResources)
				search.GET("/index", handlers.ListIndexedSubscriptions)
				search.POST("/index/:subscription", handlers.IndexSubscription)
				search.GET("/index/:subscription", handlers.GetIndexStatus)
				search.DELETE("/index/:subscription", handlers.DeleteSubscriptionIndex)
			}

			// Scanner configuration
			v1.GET("/scanner/config", handlers.GetScannerConfigHandler())
			v1.PATCH("/scanner/config", handlers.PatchScannerConfigHandler())

			// Interactive az shell
			v1.GET("/term", handlers.TermHandler())
		}
	}

	return router
}
