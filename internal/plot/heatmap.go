package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Diverging scale endpoints: cool for -1, neutral at the center, warm for +1.
var (
	coolColor    = drawing.Color{R: 59, G: 76, B: 192, A: 255}
	neutralColor = drawing.Color{R: 221, G: 221, B: 221, A: 255}
	warmColor    = drawing.Color{R: 180, G: 4, B: 38, A: 255}
	missingColor = drawing.Color{R: 255, G: 255, B: 255, A: 255}
)

func heatmapImage(p *HeatmapPayload, w, h int) (image.Image, error) {
	if p.Matrix == nil || len(p.Matrix.Columns) == 0 {
		return nil, fmt.Errorf("heatmap has no matrix")
	}
	face := basicfont.Face7x13
	n := len(p.Matrix.Columns)
	labelW := 0
	for _, c := range p.Matrix.Columns {
		labelW = max(labelW, font.MeasureString(face, clip(c, 18)).Ceil())
	}
	left := labelW + 16
	top := 40
	legendW := 70
	bottom := 24
	grid := min(w-left-legendW, h-top-bottom)
	cell := max(grid/n, 36)
	grid = cell * n
	width := max(w, left+grid+legendW)
	height := max(h, top+grid+bottom)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	drawText(img, p.Title, left, 24, color.Black)

	for i, row := range p.Matrix.Values {
		y0 := top + i*cell
		drawText(img, clip(p.Matrix.Columns[i], 18), 8, y0+cell/2+5, color.Black)
		for j, v := range row {
			x0 := left + j*cell
			fill := scaleColor(v, p.Center)
			draw.Draw(img, image.Rect(x0, y0, x0+cell-1, y0+cell-1), image.NewUniform(fill), image.Point{}, draw.Src)
			label := "NaN"
			if !math.IsNaN(v) {
				label = fmt.Sprintf("%.2f", v)
			}
			tw := font.MeasureString(face, label).Ceil()
			drawText(img, label, x0+(cell-tw)/2, y0+cell/2+5, textOn(fill))
		}
	}
	for j, c := range p.Matrix.Columns {
		label := clip(c, max(cell/7-1, 3))
		tw := font.MeasureString(face, label).Ceil()
		drawText(img, label, left+j*cell+(cell-tw)/2, top+grid+16, color.Black)
	}
	drawLegend(img, left+grid+20, top, grid, p.Center)
	return img, nil
}

// drawLegend paints the color bar from +1 at the top to -1 at the bottom.
func drawLegend(img *image.RGBA, x, y, h int, center float64) {
	const barW = 14
	for k := 0; k < h; k++ {
		v := 1 - 2*float64(k)/float64(max(h-1, 1))
		draw.Draw(img, image.Rect(x, y+k, x+barW, y+k+1), image.NewUniform(scaleColor(v, center)), image.Point{}, draw.Src)
	}
	drawText(img, "1", x+barW+4, y+10, color.Black)
	drawText(img, "0", x+barW+4, y+h/2+5, color.Black)
	drawText(img, "-1", x+barW+4, y+h, color.Black)
}

// scaleColor maps a coefficient onto the diverging scale centered at center. NaN is blank.
func scaleColor(v, center float64) drawing.Color {
	if math.IsNaN(v) {
		return missingColor
	}
	t := v - center
	if t > 1 {
		t = 1
	} else if t < -1 {
		t = -1
	}
	if t >= 0 {
		return lerp(neutralColor, warmColor, t)
	}
	return lerp(neutralColor, coolColor, -t)
}

func lerp(a, b drawing.Color, t float64) drawing.Color {
	mix := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t)) }
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

// textOn picks black or white text for legibility on bg.
func textOn(bg drawing.Color) color.Color {
	lum := 0.299*float64(bg.R) + 0.587*float64(bg.G) + 0.114*float64(bg.B)
	if lum < 140 {
		return color.White
	}
	return color.Black
}

func drawText(img draw.Image, s string, x, y int, c color.Color) {
	d := &font.Drawer{Dst: img, Src: image.NewUniform(c), Face: basicfont.Face7x13, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "~"
}
