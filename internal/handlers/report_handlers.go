package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azurescope/explorer/pkg/charts"
	"github.com/azurescope/explorer/pkg/inventory"
	"github.com/azurescope/explorer/pkg/logger"
	"github.com/azurescope/explorer/pkg/report"
)

// Reports served over HTTP render at a fixed width; only the CLI adapts
// to the terminal.
const reportWidth = 80

func textReport(c *gin.Context, render func(*inventory.Snapshot) string) {
	st, ok := loadedState(c)
	if !ok {
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(render(st.Snapshot)))
}

// ArchitectureReportHandler serves the architecture overview report.
func ArchitectureReportHandler(c *gin.Context) {
	textReport(c, func(snap *inventory.Snapshot) string {
		return report.Architecture(snap, reportWidth)
	})
}

// TopologyReportHandler serves the network topology report.
func TopologyReportHandler(c *gin.Context) {
	textReport(c, func(snap *inventory.Snapshot) string {
		return report.Topology(snap, reportWidth)
	})
}

// SecurityReportHandler serves the NSG security report.
func SecurityReportHandler(c *gin.Context) {
	textReport(c, func(snap *inventory.Snapshot) string {
		return report.Security(snap, reportWidth)
	})
}

// CostReportHandler serves the cost optimization guide.
func CostReportHandler(c *gin.Context) {
	textReport(c, report.CostGuide)
}

// CategoryChartHandler renders the category distribution pie as PNG.
func CategoryChartHandler(c *gin.Context) {
	st, ok := loadedState(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "image/png")
	if err := charts.CategoryPie(st.Snapshot, c.Writer); err != nil {
		chartError(c, err)
	}
}

// GroupChartHandler renders the per-resource-group bar chart as PNG.
func GroupChartHandler(c *gin.Context) {
	st, ok := loadedState(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "image/png")
	if err := charts.GroupBars(st.Snapshot, c.Writer); err != nil {
		chartError(c, err)
	}
}

func chartError(c *gin.Context, err error) {
	// Rendering streams into the response, so a failure after the first
	// byte can only be logged; headers are already gone.
	if c.Writer.Written() {
		logger.Log(logger.LevelError, nil, err, "rendering chart")
		return
	}

	c.Header("Content-Type", "application/json; charset=utf-8")

	if errors.Is(err, charts.ErrNoData) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	logger.Log(logger.LevelError, nil, err, "rendering chart")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
