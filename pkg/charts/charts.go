// Package charts renders snapshot statistics as PNG images: a category
// distribution pie and a resources-per-group bar chart. Colors follow the
// fixed Azure-style palette the dashboards use.
package charts

import (
	"io"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/azurescope/explorer/pkg/inventory"
)

// ErrNoData is returned when a snapshot has nothing to chart.
var ErrNoData = errors.New("snapshot has no resources to chart")

const (
	azureBlue = "0078D4"

	barWidth   = 60
	barSpacing = 20
)

// categoryHex is the per-category color palette, hex without the leading
// hash as the drawing package expects.
var categoryHex = map[inventory.Category]string{
	inventory.CategoryCompute:     "0078D4",
	inventory.CategoryStorage:     "00BCF2",
	inventory.CategoryDatabase:    "40E0D0",
	inventory.CategoryNetwork:     "107C10",
	inventory.CategorySecurity:    "D83B01",
	inventory.CategoryMonitoring:  "00188F",
	inventory.CategoryIntegration: "5C2D91",
	inventory.CategoryOther:       "666666",
}

func colorFor(c inventory.Category) drawing.Color {
	hex, ok := categoryHex[c]
	if !ok {
		hex = categoryHex[inventory.CategoryOther]
	}

	return drawing.ColorFromHex(hex)
}

// CategoryPie renders the snapshot's category distribution as a PNG pie
// chart. Categories without resources are omitted.
func CategoryPie(snap *inventory.Snapshot, w io.Writer) error {
	counts := snap.CategoryCounts()

	var values []chart.Value
	for _, category := range inventory.Categories() {
		n := counts[category]
		if n == 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: float64(n),
			Label: string(category),
			Style: chart.Style{FillColor: colorFor(category)},
		})
	}

	if len(values) == 0 {
		return ErrNoData
	}

	pie := chart.PieChart{
		Title:  "Resources by Category",
		Width:  512,
		Height: 512,
		Values: values,
	}

	return errors.Wrap(pie.Render(chart.PNG, w), "rendering category pie")
}

// GroupBars renders resources-per-group as a PNG bar chart, one bar per
// resource group in discovery order.
func GroupBars(snap *inventory.Snapshot, w io.Writer) error {
	if len(snap.Resources) == 0 || len(snap.ResourceGroups) == 0 {
		return ErrNoData
	}

	byGroup := snap.ByResourceGroup()
	blue := drawing.ColorFromHex(azureBlue)

	bars := make([]chart.Value, 0, len(snap.ResourceGroups))
	for _, rg := range snap.ResourceGroups {
		bars = append(bars, chart.Value{
			Value: float64(len(byGroup[rg.Name])),
			Label: rg.Name,
			Style: chart.Style{FillColor: blue},
		})
	}

	// Wide enough that the bars do not crowd regardless of group count.
	width := 120 + len(bars)*(barWidth+barSpacing)
	if width < 512 {
		width = 512
	}

	bar := chart.BarChart{
		Title:      "Resources per Resource Group",
		Width:      width,
		Height:     512,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Bars:       bars,
		YAxis: chart.YAxis{
			ValueFormatter: chart.IntValueFormatter,
		},
	}

	return errors.Wrap(bar.Render(chart.PNG, w), "rendering group bars")
}
