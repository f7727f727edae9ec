package plot

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"path/filepath"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/tabviz/internal/utils"
)

// Renderer draws payloads and returns where the result was written.
type Renderer interface {
	RenderScatter(p *ScatterPayload) (string, error)
	RenderHeatmap(p *HeatmapPayload) (string, error)
	RenderLine(p *LinePayload) (string, error)
}

const (
	DefaultWidth  = 1200
	DefaultHeight = 800
	minCell       = 160
	histBins      = 10
)

var seriesColor = drawing.Color{R: 31, G: 119, B: 180, A: 255}

// PNGRenderer writes charts as PNG files into Dir.
type PNGRenderer struct {
	Dir    string
	Width  int
	Height int
}

// NewPNGRenderer returns a renderer writing into dir; non-positive sizes use the defaults.
func NewPNGRenderer(dir string, width, height int) *PNGRenderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &PNGRenderer{Dir: dir, Width: width, Height: height}
}

// RenderLine draws the column values against their row index. Missing rows leave a gap.
func (r *PNGRenderer) RenderLine(p *LinePayload) (string, error) {
	img, err := lineImage(p, r.Width, r.Height)
	if err != nil {
		return "", err
	}
	return r.write(fileName(p.Dataset, string(KindLine), p.Column), img)
}

// RenderScatter draws an n x n grid: histograms on the diagonal, pairwise scatters elsewhere.
func (r *PNGRenderer) RenderScatter(p *ScatterPayload) (string, error) {
	n := len(p.Columns)
	if n < 2 {
		return "", fmt.Errorf("scatter matrix needs at least 2 columns, got %d", n)
	}
	cw, chh := r.Width/n, r.Height/n
	if cw < minCell {
		cw = minCell
	}
	if chh < minCell {
		chh = minCell
	}
	header := 30
	canvas := image.NewRGBA(image.Rect(0, 0, cw*n, chh*n+header))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	drawText(canvas, p.Title, 8, 20, color.Black)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var cell image.Image
			var err error
			if i == j {
				cell, err = histogramImage(p.Columns[i], p.Data[i], cw, chh)
			} else {
				cell, err = scatterImage(p.Columns[j], p.Columns[i], p.Data[j], p.Data[i], cw, chh)
			}
			if err != nil {
				return "", fmt.Errorf("cell %s/%s: %w", p.Columns[i], p.Columns[j], err)
			}
			at := image.Rect(j*cw, header+i*chh, (j+1)*cw, header+(i+1)*chh)
			draw.Draw(canvas, at, cell, cell.Bounds().Min, draw.Src)
		}
	}
	return r.write(fileName(p.Dataset, string(KindScatter), ""), canvas)
}

// RenderHeatmap draws the correlation matrix as an annotated cell grid.
func (r *PNGRenderer) RenderHeatmap(p *HeatmapPayload) (string, error) {
	img, err := heatmapImage(p, r.Width, r.Height)
	if err != nil {
		return "", err
	}
	return r.write(fileName(p.Dataset, string(KindHeatmap), ""), img)
}

func (r *PNGRenderer) write(name string, img image.Image) (string, error) {
	dir := r.Dir
	if dir == "" {
		dir = "."
	}
	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

func lineImage(p *LinePayload, w, h int) (image.Image, error) {
	var xs, ys []float64
	for i, v := range p.Values {
		if math.IsNaN(v) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, v)
	}
	if len(ys) == 0 {
		return nil, fmt.Errorf("column %s has no values to plot", p.Column)
	}
	xr := &chart.ContinuousRange{Min: 0, Max: math.Max(float64(len(p.Values)-1), 1)}
	ch := chart.Chart{
		Title:      p.Title,
		Width:      w,
		Height:     h,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: p.XLabel, Range: xr},
		YAxis:      chart.YAxis{Name: p.YLabel, Range: paddedRange(ys)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    p.Column,
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: seriesColor, StrokeWidth: 1.5},
			},
		},
	}
	return renderChart(ch)
}

func scatterImage(xName, yName string, xs, ys []float64, w, h int) (image.Image, error) {
	px, py := completePairs(xs, ys)
	series := chart.ContinuousSeries{
		Name:    yName + " vs " + xName,
		XValues: px,
		YValues: py,
		Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 2, DotColor: seriesColor},
	}
	if len(px) == 0 {
		// Nothing shared; keep the axes so the grid stays aligned.
		series.XValues, series.YValues = []float64{0}, []float64{0}
		series.Style.DotWidth = 0
		px, py = []float64{0}, []float64{0}
	}
	ch := chart.Chart{
		Width:  w,
		Height: h,
		XAxis:  chart.XAxis{Name: xName, Range: paddedRange(px)},
		YAxis:  chart.YAxis{Name: yName, Range: paddedRange(py)},
		Series: []chart.Series{series},
	}
	return renderChart(ch)
}

func histogramImage(name string, values []float64, w, h int) (image.Image, error) {
	counts := histogram(values, histBins)
	bars := make([]chart.Value, len(counts))
	top := 1.0
	for i, c := range counts {
		bars[i] = chart.Value{Value: float64(c), Label: " ", Style: chart.Style{FillColor: seriesColor, StrokeColor: seriesColor}}
		top = math.Max(top, float64(c))
	}
	bc := chart.BarChart{
		Title:    name,
		Width:    w,
		Height:   h,
		BarWidth: max(2, (w-60)/(2*histBins)),
		YAxis:    chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: top}},
		Bars:     bars,
	}
	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render histogram: %w", err)
	}
	return png.Decode(&buf)
}

// histogram bins the present values into equal-width buckets over [min, max].
func histogram(values []float64, bins int) []int {
	counts := make([]int, bins)
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return counts
	}
	width := (hi - lo) / float64(bins)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		k := 0
		if width > 0 {
			k = int((v - lo) / width)
		}
		if k >= bins {
			k = bins - 1
		}
		counts[k]++
	}
	return counts
}

// paddedRange spans the values with a small margin; a flat series gets a unit margin.
func paddedRange(vs []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(lo)*0.05, 1)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func renderChart(ch chart.Chart) (image.Image, error) {
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return png.Decode(&buf)
}

// fileName builds "<dataset>_<kind>[_<column>].png" with unsafe characters replaced.
func fileName(dataset, kind, column string) string {
	base := strings.TrimSuffix(dataset, filepath.Ext(dataset))
	parts := []string{slug(base), kind}
	if column != "" {
		parts = append(parts, slug(column))
	}
	return strings.Join(parts, "_") + ".png"
}

func slug(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "dataset"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
