package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	DatasetID string
	Columns   []string
	Values    [][]float64 // row-major, Values[i][j]
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// Correlate computes pairwise Pearson coefficients over the numeric columns of d, each pair
// using only the rows where both columns have a value. A pair with fewer than two shared
// rows, or with no variance on those rows, is NaN. The diagonal is always 1.
func Correlate(d *Dataset) (*CorrMatrix, error) {
	if d == nil {
		return nil, ErrNoDataset
	}
	if len(d.numeric) < 2 {
		return nil, &InsufficientColumnsError{Need: 2, Have: len(d.numeric)}
	}
	n := len(d.numeric)
	cols := make([]*Column, n)
	present := make([]*roaring.Bitmap, n)
	for i, name := range d.numeric {
		cols[i] = d.cols[d.index[name]]
		present[i] = cols[i].Present()
	}
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			shared := roaring.And(present[a], present[b])
			r := pearson(cols[a].values, cols[b].values, shared.ToArray())
			mat[a][b] = r
			mat[b][a] = r
		}
	}
	return &CorrMatrix{DatasetID: d.ID, Columns: d.NumericColumns(), Values: mat}, nil
}

func pearson(xs, ys []float64, rows []uint32) float64 {
	if len(rows) < 2 {
		return math.NaN()
	}
	// r is scale-invariant, so each series is scaled to at most 1 in magnitude first
	var px, py float64
	for _, i := range rows {
		px = math.Max(px, math.Abs(xs[i]))
		py = math.Max(py, math.Abs(ys[i]))
	}
	kx, ky := pow2Scale(px), pow2Scale(py)
	var mx, my float64
	for _, i := range rows {
		mx += xs[i] / kx
		my += ys[i] / ky
	}
	cnt := float64(len(rows))
	mx /= cnt
	my /= cnt
	var sxx, syy, sxy float64
	for _, i := range rows {
		dx := xs[i]/kx - mx
		dy := ys[i]/ky - my
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	denom := math.Sqrt(sxx * syy)
	if denom == 0 || math.IsNaN(denom) || math.IsInf(denom, 0) {
		return math.NaN()
	}
	r := sxy / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// At returns the coefficient for the named pair.
func (m *CorrMatrix) At(a, b string) (float64, bool) {
	i, j := m.indexOf(a), m.indexOf(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

func (m *CorrMatrix) indexOf(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Pairs lists the off-diagonal pairs with a defined coefficient, strongest |r| first.
func (m *CorrMatrix) Pairs() []PairCorr {
	var pairs []PairCorr
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := m.Values[i][j]
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: r})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	return pairs
}

// Markdown renders the top pairs by |r| and the full matrix.
func (m *CorrMatrix) Markdown() string {
	var b strings.Builder
	b.WriteString("\n[CORRELATIONS]\n")
	pairs := m.Pairs()
	maxp := 10
	if len(pairs) < maxp {
		maxp = len(pairs)
	}
	for i := 0; i < maxp; i++ {
		b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", pairs[i].A, pairs[i].B, pairs[i].R))
	}
	b.WriteString("\n[CORRELATION MATRIX]\n| ")
	for _, c := range m.Columns {
		b.WriteString(" | ")
		b.WriteString(safeVal(c))
	}
	b.WriteString(" |\n|---")
	for range m.Columns {
		b.WriteString("|---")
	}
	b.WriteString("|\n")
	for i, c := range m.Columns {
		b.WriteString("| ")
		b.WriteString(safeVal(c))
		for j := range m.Columns {
			if math.IsNaN(m.Values[i][j]) {
				b.WriteString(" | NaN")
				continue
			}
			b.WriteString(fmt.Sprintf(" | %.3f", m.Values[i][j]))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}
