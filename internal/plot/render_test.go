package plot

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func decodePNG(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestRenderAllKinds(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	r := NewPNGRenderer(dir, 600, 400)
	ds := load(t, "a,b,c\n1,2,9\n2,4,7\n3,5,\n4,9,1\n")

	sp, err := Scatter(ds)
	if err != nil {
		t.Fatalf("Scatter: %v", err)
	}
	path, err := r.RenderScatter(sp)
	if err != nil {
		t.Fatalf("RenderScatter: %v", err)
	}
	if filepath.Base(path) != "p_pairwise-scatter.png" {
		t.Fatalf("scatter path = %s", path)
	}
	if w, _ := decodePNG(t, path); w != 600 {
		t.Fatalf("scatter width = %d", w)
	}

	hp, err := Heatmap(ds)
	if err != nil {
		t.Fatalf("Heatmap: %v", err)
	}
	path, err = r.RenderHeatmap(hp)
	if err != nil {
		t.Fatalf("RenderHeatmap: %v", err)
	}
	if w, h := decodePNG(t, path); w < 600 || h < 400 {
		t.Fatalf("heatmap size = %dx%d", w, h)
	}

	lp, err := Line(ds, "c")
	if err != nil {
		t.Fatalf("Line: %v", err)
	}
	path, err = r.RenderLine(lp)
	if err != nil {
		t.Fatalf("RenderLine: %v", err)
	}
	if filepath.Base(path) != "p_line-series_c.png" {
		t.Fatalf("line path = %s", path)
	}
	decodePNG(t, path)
}

func TestRenderLineFlatSeries(t *testing.T) {
	r := NewPNGRenderer(t.TempDir(), 0, 0)
	p := &LinePayload{Dataset: "d.csv", Title: "flat", XLabel: "Index", YLabel: "v", Column: "v", Values: []float64{5}}
	if _, err := r.RenderLine(p); err != nil {
		t.Fatalf("single point: %v", err)
	}
	p.Values = []float64{math.NaN()}
	if _, err := r.RenderLine(p); err == nil {
		t.Fatalf("expected error for all-missing series")
	}
}

func TestScaleColorCenteredAtZero(t *testing.T) {
	if c := scaleColor(0, 0); c != neutralColor {
		t.Fatalf("center color = %#v", c)
	}
	if c := scaleColor(1, 0); c != warmColor {
		t.Fatalf("+1 color = %#v", c)
	}
	if c := scaleColor(-1, 0); c != coolColor {
		t.Fatalf("-1 color = %#v", c)
	}
	if c := scaleColor(math.NaN(), 0); c != missingColor {
		t.Fatalf("NaN color = %#v", c)
	}
}

func TestHistogramAndFileName(t *testing.T) {
	got := histogram([]float64{0, 1, 2, 3, math.NaN(), 10}, 10)
	total := 0
	for _, c := range got {
		total += c
	}
	if total != 5 || got[9] != 1 {
		t.Fatalf("histogram = %v", got)
	}
	if flat := histogram([]float64{4, 4}, 3); flat[0] != 2 {
		t.Fatalf("flat histogram = %v", flat)
	}
	if n := fileName("my data.csv", "line-series", "a/b"); n != "my-data_line-series_a-b.png" {
		t.Fatalf("fileName = %s", n)
	}
}
