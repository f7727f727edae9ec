package analysis

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Kind is the inferred type tag of a column.
type Kind string

const (
	KindNumeric    Kind = "numeric"
	KindNonNumeric Kind = "non-numeric"
)

// Column holds the raw cells of one column plus its typed view.
type Column struct {
	name    string
	cells   []string
	missing *roaring.Bitmap
	kind    Kind
	// values is set for numeric columns only; NaN marks a missing row.
	values []float64
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }
func (c *Column) Len() int     { return len(c.cells) }

// Cell returns the raw text of row i.
func (c *Column) Cell(i int) string { return c.cells[i] }

// IsMissing reports whether row i is blank or an NA token.
func (c *Column) IsMissing(i int) bool { return c.missing.Contains(uint32(i)) }

// MissingCount is the number of missing rows.
func (c *Column) MissingCount() int { return int(c.missing.GetCardinality()) }

// Present returns a new bitmap of the rows holding a value.
func (c *Column) Present() *roaring.Bitmap {
	all := roaring.New()
	all.AddRange(0, uint64(len(c.cells)))
	all.AndNot(c.missing)
	return all
}

// Floats returns a copy of the numeric view. It is nil for non-numeric columns.
func (c *Column) Floats() []float64 {
	if c.values == nil {
		return nil
	}
	out := make([]float64, len(c.values))
	copy(out, c.values)
	return out
}

// Dataset is an immutable snapshot of a loaded table. A new load produces a new Dataset;
// nothing mutates an existing one.
type Dataset struct {
	ID       string
	Name     string
	LoadedAt time.Time

	rows    int
	cols    []*Column
	index   map[string]int
	numeric []string
}

// NewDataset builds a dataset from a header and its records and classifies every column.
// Short records are padded with missing cells; long records are rejected.
func NewDataset(name string, header []string, records [][]string, opt Options) (*Dataset, error) {
	if len(header) == 0 {
		return nil, errors.New("no columns to parse")
	}
	names := normalizeHeader(header)
	ncol := len(names)
	ds := &Dataset{
		ID:       uuid.NewString(),
		Name:     name,
		LoadedAt: time.Now(),
		rows:     len(records),
		cols:     make([]*Column, ncol),
		index:    make(map[string]int, ncol),
	}
	for j, n := range names {
		ds.cols[j] = &Column{name: n, cells: make([]string, len(records)), missing: roaring.New()}
		ds.index[n] = j
	}
	for i, rec := range records {
		if len(rec) > ncol {
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", i+2, ncol, len(rec))
		}
		for j := range ds.cols {
			if j < len(rec) {
				ds.cols[j].cells[i] = rec[j]
			}
		}
	}
	tokens := opt.missingSet()
	for _, c := range ds.cols {
		classify(c, tokens, opt)
		if c.kind == KindNumeric {
			ds.numeric = append(ds.numeric, c.name)
		}
	}
	return ds, nil
}

// classify runs the single typing pass over a column. A column is numeric when it has at
// least one value and every value parses under the numeric grammar.
func classify(c *Column, tokens map[string]struct{}, opt Options) {
	vals := make([]float64, len(c.cells))
	present := 0
	numeric := true
	for i, cell := range c.cells {
		if isMissing(cell, tokens) {
			c.missing.Add(uint32(i))
			vals[i] = math.NaN()
			continue
		}
		present++
		if !numeric {
			continue
		}
		x, ok := parseNumeric(cell, opt)
		if !ok {
			numeric = false
			continue
		}
		vals[i] = x
	}
	c.missing.RunOptimize()
	if numeric && present > 0 {
		c.kind = KindNumeric
		c.values = vals
		return
	}
	c.kind = KindNonNumeric
}

// normalizeHeader trims names, labels blank ones "Unnamed: i" and suffixes duplicates
// with ".1", ".2", ... so that names are unique and keep source order.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		n := strings.TrimSpace(h)
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		if _, dup := seen[n]; dup {
			base := n
			for k := 1; ; k++ {
				n = fmt.Sprintf("%s.%d", base, k)
				if _, taken := seen[n]; !taken {
					break
				}
			}
		}
		seen[n] = struct{}{}
		out[i] = n
	}
	return out
}

// Rows is the number of data rows (header excluded).
func (d *Dataset) Rows() int { return d.rows }

// NumCols is the number of columns.
func (d *Dataset) NumCols() int { return len(d.cols) }

// Columns returns the column names in source order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.name
	}
	return out
}

// Column looks up a column by name.
func (d *Dataset) Column(name string) (*Column, bool) {
	j, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.cols[j], true
}

// NumericColumns returns the cached numeric column set in source order.
func (d *Dataset) NumericColumns() []string {
	out := make([]string, len(d.numeric))
	copy(out, d.numeric)
	return out
}

// Head returns up to n leading rows as raw cells.
func (d *Dataset) Head(n int) [][]string {
	if n > d.rows {
		n = d.rows
	}
	if n < 0 {
		n = 0
	}
	out := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(d.cols))
		for j, c := range d.cols {
			row[j] = c.cells[i]
		}
		out[i] = row
	}
	return out
}

// Classify returns the ordered numeric column names of d.
func Classify(d *Dataset) []string {
	if d == nil {
		return nil
	}
	return d.NumericColumns()
}

// Parse reads a whole delimited source into a Dataset. The first record is the header.
func Parse(name string, r io.Reader, opt Options) (*Dataset, error) {
	data, err := io.ReadAll(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	if err != nil {
		return nil, &LoadError{Path: name, Err: fmt.Errorf("read: %w", err)}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, loadErr(name, "no columns to parse from file")
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(name, data)
	}
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, loadErr(name, "no columns to parse from file")
		}
		return nil, &LoadError{Path: name, Err: fmt.Errorf("read header: %w", err)}
	}
	var records [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &LoadError{Path: name, Err: fmt.Errorf("read row %d: %w", len(records)+2, err)}
		}
		records = append(records, rec)
	}
	ds, err := NewDataset(name, header, records, opt)
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}
	return ds, nil
}

// Load opens path through src and parses it. Every failure is a *LoadError.
func Load(src Source, path string, opt Options) (*Dataset, error) {
	rc, err := src.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("open: %w", err)}
	}
	defer rc.Close()
	ds, err := Parse(filepath.Base(path), rc, opt)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return ds, nil
}

// sniffDelimiter picks tab for .tsv files, otherwise the most frequent of , ; tab | in
// the header record outside quoted fields, defaulting to comma.
func sniffDelimiter(name string, data []byte) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	counts := make(map[byte]int, 4)
	quoted := false
	for _, c := range data {
		if c == '"' {
			quoted = !quoted
			continue
		}
		if quoted {
			continue
		}
		if c == '\n' {
			break
		}
		counts[c]++
	}
	best, bestN := ',', 0
	for _, cand := range []rune{',', ';', '\t', '|'} {
		if n := counts[byte(cand)]; n > bestN {
			best, bestN = cand, n
		}
	}
	return best
}
