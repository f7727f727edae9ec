package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"text/tabwriter"
)

// ColumnStats captures descriptive measures for one column. Numeric columns fill the
// moment and percentile fields; non-numeric columns fill Unique, Top and Freq.
type ColumnStats struct {
	Name    string
	Kind    Kind
	Count   int
	Missing int
	// Numeric stats
	Mean float64
	Std  float64
	Min  float64
	P25  float64
	P50  float64
	P75  float64
	Max  float64
	// Categorical stats
	Unique int
	Top    string
	Freq   int
}

// StatsReport is the per-column descriptive statistics of a dataset.
type StatsReport struct {
	DatasetID string
	Name      string
	Rows      int
	Cols      int
	Columns   []ColumnStats
}

// Lookup returns the stats of the named column.
func (r *StatsReport) Lookup(name string) (ColumnStats, bool) {
	for _, c := range r.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnStats{}, false
}

// Summarize computes descriptive statistics for every column of d. Missing cells are
// excluded from every aggregate.
func Summarize(d *Dataset) (*StatsReport, error) {
	if d == nil {
		return nil, ErrNoDataset
	}
	rep := &StatsReport{DatasetID: d.ID, Name: d.Name, Rows: d.rows, Cols: len(d.cols)}
	rep.Columns = make([]ColumnStats, 0, len(d.cols))
	for _, c := range d.cols {
		s := ColumnStats{Name: c.name, Kind: c.kind, Missing: c.MissingCount()}
		if c.kind == KindNumeric {
			summarizeNumeric(&s, c.values)
		} else {
			summarizeCategorical(&s, c)
		}
		rep.Columns = append(rep.Columns, s)
	}
	return rep, nil
}

func summarizeNumeric(s *ColumnStats, values []float64) {
	sorted := make([]float64, 0, len(values))
	var peak float64
	for _, x := range values {
		if math.IsNaN(x) {
			continue
		}
		sorted = append(sorted, x)
		peak = math.Max(peak, math.Abs(x))
	}
	n := len(sorted)
	s.Count = n
	s.Std = math.NaN()
	if n == 0 {
		s.Mean, s.Min, s.P25, s.P50, s.P75, s.Max = math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return
	}
	// Welford update on scaled values so squared deviations stay finite
	scale := pow2Scale(peak)
	var mean, m2 float64
	for i, x := range sorted {
		x /= scale
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)
	}
	sort.Float64s(sorted)
	s.Mean = mean * scale
	if n > 1 {
		s.Std = math.Sqrt(m2/float64(n-1)) * scale
	}
	s.Min = sorted[0]
	s.Max = sorted[n-1]
	s.P25 = quantile(sorted, 0.25)
	s.P50 = quantile(sorted, 0.5)
	s.P75 = quantile(sorted, 0.75)
}

// pow2Scale returns the power of two just above peak. Dividing by it is exact and keeps
// squares of the scaled values at most 1.
func pow2Scale(peak float64) float64 {
	if peak == 0 || math.IsInf(peak, 0) || math.IsNaN(peak) {
		return 1
	}
	_, exp := math.Frexp(peak)
	return math.Ldexp(1, exp)
}

// summarizeCategorical counts distinct values; the most frequent value wins, ties going to
// the value seen first.
func summarizeCategorical(s *ColumnStats, c *Column) {
	counts := make(map[string]int)
	var order []string
	for i, cell := range c.cells {
		if c.missing.Contains(uint32(i)) {
			continue
		}
		s.Count++
		if _, ok := counts[cell]; !ok {
			order = append(order, cell)
		}
		counts[cell]++
	}
	s.Unique = len(order)
	for _, v := range order {
		if counts[v] > s.Freq {
			s.Top = v
			s.Freq = counts[v]
		}
	}
	s.Mean, s.Std, s.Min, s.P25, s.P50, s.P75, s.Max = math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()
}

// quantile interpolates linearly between the order statistics of a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Text renders the report as a plain-text panel: shape, column types, then a describe
// table with one column per dataset column.
func (r *StatsReport) Text() string {
	var b strings.Builder
	b.WriteString("General information:\n")
	fmt.Fprintf(&b, "Size: %d rows, %d columns\n", r.Rows, r.Cols)
	b.WriteString("Data types:\n")
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	for _, c := range r.Columns {
		fmt.Fprintf(tw, "  %s\t%s\n", c.Name, c.Kind)
	}
	tw.Flush()
	b.WriteString("\nData statistics:\n\n")

	tw = tabwriter.NewWriter(&b, 0, 4, 2, ' ', tabwriter.AlignRight)
	tw.Write([]byte("\t"))
	for _, c := range r.Columns {
		fmt.Fprintf(tw, "%s\t", c.Name)
	}
	tw.Write([]byte("\n"))
	for _, row := range describeRows {
		fmt.Fprintf(tw, "%s\t", row.label)
		for _, c := range r.Columns {
			fmt.Fprintf(tw, "%s\t", row.cell(c))
		}
		tw.Write([]byte("\n"))
	}
	tw.Flush()
	return b.String()
}

var describeRows = []struct {
	label string
	cell  func(ColumnStats) string
}{
	{"count", func(c ColumnStats) string { return fmt.Sprintf("%d", c.Count) }},
	{"unique", func(c ColumnStats) string { return catInt(c, c.Unique) }},
	{"top", func(c ColumnStats) string {
		if c.Kind == KindNumeric || c.Count == 0 {
			return "NaN"
		}
		return safeVal(c.Top)
	}},
	{"freq", func(c ColumnStats) string { return catInt(c, c.Freq) }},
	{"mean", func(c ColumnStats) string { return fmtFloat(c.Mean) }},
	{"std", func(c ColumnStats) string { return fmtFloat(c.Std) }},
	{"min", func(c ColumnStats) string { return fmtFloat(c.Min) }},
	{"25%", func(c ColumnStats) string { return fmtFloat(c.P25) }},
	{"50%", func(c ColumnStats) string { return fmtFloat(c.P50) }},
	{"75%", func(c ColumnStats) string { return fmtFloat(c.P75) }},
	{"max", func(c ColumnStats) string { return fmtFloat(c.Max) }},
}

func catInt(c ColumnStats, v int) string {
	if c.Kind == KindNumeric {
		return "NaN"
	}
	return fmt.Sprintf("%d", v)
}

func fmtFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.6f", v)
}

// Markdown renders a compact report in the same section layout as the correlation summary.
func (r *StatsReport) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", r.Cols))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Columns {
		total := c.Count + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (count %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.Count, missPct))
		if c.Kind == KindNumeric {
			b.WriteString(fmt.Sprintf(" — mean %.4g, std %.4g, min %.4g, p25 %.4g, p50 %.4g, p75 %.4g, max %.4g",
				c.Mean, c.Std, c.Min, c.P25, c.P50, c.P75, c.Max))
		} else if c.Count > 0 {
			b.WriteString(fmt.Sprintf(" — unique %d, top %s(%d)", c.Unique, safeVal(c.Top), c.Freq))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Records flattens the report for JSON/YAML export. Undefined measures become nil.
func (r *StatsReport) Records() []map[string]any {
	out := make([]map[string]any, 0, len(r.Columns))
	num := func(v float64) any {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	}
	for _, c := range r.Columns {
		m := map[string]any{
			"name":    c.Name,
			"kind":    string(c.Kind),
			"count":   c.Count,
			"missing": c.Missing,
		}
		if c.Kind == KindNumeric {
			m["mean"] = num(c.Mean)
			m["std"] = num(c.Std)
			m["min"] = num(c.Min)
			m["p25"] = num(c.P25)
			m["p50"] = num(c.P50)
			m["p75"] = num(c.P75)
			m["max"] = num(c.Max)
		} else {
			m["unique"] = c.Unique
			m["top"] = c.Top
			m["freq"] = c.Freq
		}
		out = append(out, m)
	}
	return out
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string {
	return strings.NewReplacer("\n", " ", "\t", " ", "|", "/").Replace(s)
}
