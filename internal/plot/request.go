// Package plot turns datasets into rendering payloads and renders them to image files.
//
// The request builders only validate and extract data; a Renderer does the drawing.
package plot

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/tabviz/internal/analysis"
)

// Kind names a plot request.
type Kind string

const (
	KindScatter Kind = "pairwise-scatter"
	KindHeatmap Kind = "correlation-heatmap"
	KindLine    Kind = "line-series"
)

// ScatterPayload is the numeric sub-table for a scatter matrix.
type ScatterPayload struct {
	Dataset string
	Title   string
	Columns []string
	// Data[j] is the series of Columns[j]; NaN marks a missing cell.
	Data [][]float64
}

// HeatmapPayload is a correlation matrix plus the value the color scale is centered on.
type HeatmapPayload struct {
	Dataset string
	Title   string
	Matrix  *analysis.CorrMatrix
	Center  float64
}

// LinePayload is the ordered value sequence of one numeric column.
type LinePayload struct {
	Dataset string
	Title   string
	XLabel  string
	YLabel  string
	Column  string
	Values  []float64
}

// Scatter builds the pairwise scatter payload; it needs at least two numeric columns.
func Scatter(ds *analysis.Dataset) (*ScatterPayload, error) {
	if ds == nil {
		return nil, analysis.ErrNoDataset
	}
	cols := ds.NumericColumns()
	if len(cols) < 2 {
		return nil, &analysis.InsufficientColumnsError{Need: 2, Have: len(cols)}
	}
	p := &ScatterPayload{
		Dataset: ds.Name,
		Title:   "Pairwise correlation plots of numeric columns",
		Columns: cols,
		Data:    make([][]float64, len(cols)),
	}
	for j, name := range cols {
		c, _ := ds.Column(name)
		p.Data[j] = c.Floats()
	}
	return p, nil
}

// Heatmap builds the correlation heatmap payload, centered at 0.
func Heatmap(ds *analysis.Dataset) (*HeatmapPayload, error) {
	m, err := analysis.Correlate(ds)
	if err != nil {
		return nil, err
	}
	return &HeatmapPayload{Dataset: ds.Name, Title: "Correlation heatmap", Matrix: m, Center: 0}, nil
}

// Line builds the line-series payload for one numeric column.
func Line(ds *analysis.Dataset, column string) (*LinePayload, error) {
	if ds == nil {
		return nil, analysis.ErrNoDataset
	}
	if column == "" {
		return nil, &analysis.InvalidColumnError{Column: column, Reason: "no column selected"}
	}
	c, ok := ds.Column(column)
	if !ok {
		return nil, &analysis.InvalidColumnError{Column: column, Reason: "column not found"}
	}
	if c.Kind() != analysis.KindNumeric {
		return nil, &analysis.InvalidColumnError{Column: column, Reason: "column is not numeric"}
	}
	return &LinePayload{
		Dataset: ds.Name,
		Title:   fmt.Sprintf("Line chart: %s", column),
		XLabel:  "Index",
		YLabel:  column,
		Column:  column,
		Values:  c.Floats(),
	}, nil
}

// completePairs returns the points where both series have a value.
func completePairs(xs, ys []float64) (px, py []float64) {
	for i := range xs {
		if i >= len(ys) || math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		px = append(px, xs[i])
		py = append(py, ys[i])
	}
	return px, py
}
