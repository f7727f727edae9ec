package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestCorrelatePerfectLinear(t *testing.T) {
	ds := mustParse(t, "m.csv", "x,label,y\n1,a,2\n2,b,4\n3,c,6\n4,d,8\n")
	m, err := Correlate(ds)
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	if !equalStrings(m.Columns, []string{"x", "y"}) {
		t.Fatalf("columns = %#v", m.Columns)
	}
	r, ok := m.At("x", "y")
	if !ok || !almostEqual(r, 1.0, 1e-12) {
		t.Fatalf("r = %v", r)
	}
	if m.Values[0][0] != 1.0 || m.Values[1][1] != 1.0 {
		t.Fatalf("diagonal = %v", m.Values)
	}
}

func TestCorrelateSymmetricWithMissing(t *testing.T) {
	ds := mustParse(t, "m.csv", "a,b,c\n1,5,2\n2,,9\n3,1,4\n4,7,\n5,2,3\n6,8,1\n")
	m, err := Correlate(ds)
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		if m.Values[i][i] != 1.0 {
			t.Fatalf("diagonal[%d] = %v", i, m.Values[i][i])
		}
		for j := 0; j < n; j++ {
			a, b := m.Values[i][j], m.Values[j][i]
			if a != b && !(math.IsNaN(a) && math.IsNaN(b)) {
				t.Fatalf("asymmetric at %d,%d: %v vs %v", i, j, a, b)
			}
			if !math.IsNaN(a) && (a < -1 || a > 1) {
				t.Fatalf("out of range at %d,%d: %v", i, j, a)
			}
		}
	}
}

func TestCorrelatePairwiseComplete(t *testing.T) {
	ds := mustParse(t, "m.csv", "x,y,z\n1,,1\n,2,2\n3,3,3\n")
	m, err := Correlate(ds)
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	// x and y share only row 2
	if r, _ := m.At("x", "y"); !math.IsNaN(r) {
		t.Fatalf("x~y = %v, want NaN", r)
	}
	// x and z share rows 0 and 2
	if r, _ := m.At("x", "z"); !almostEqual(r, 1.0, 1e-12) {
		t.Fatalf("x~z = %v, want 1", r)
	}
}

func TestCorrelateConstantColumnIsNaN(t *testing.T) {
	ds := mustParse(t, "m.csv", "x,k\n1,5\n2,5\n3,5\n")
	m, err := Correlate(ds)
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	if r, _ := m.At("x", "k"); !math.IsNaN(r) {
		t.Fatalf("x~k = %v, want NaN", r)
	}
	if r, _ := m.At("k", "k"); r != 1.0 {
		t.Fatalf("k~k = %v, want 1", r)
	}
}

func TestCorrelateRefusesFewNumericColumns(t *testing.T) {
	for name, content := range map[string]string{
		"none": "a,b\nx,y\n",
		"one":  "a,b\n1,y\n2,z\n",
	} {
		t.Run(name, func(t *testing.T) {
			ds := mustParse(t, "m.csv", content)
			m, err := Correlate(ds)
			var ice *InsufficientColumnsError
			if !errors.As(err, &ice) {
				t.Fatalf("err = %v, want InsufficientColumnsError", err)
			}
			if m != nil {
				t.Fatalf("matrix returned on refusal")
			}
			if ice.Need != 2 || ice.Have != len(ds.NumericColumns()) {
				t.Fatalf("refusal = %+v", ice)
			}
			if !IsAdvisory(err) {
				t.Fatalf("refusal should be advisory")
			}
		})
	}
}

func TestCorrMatrixMarkdownOrdersPairs(t *testing.T) {
	ds := mustParse(t, "m.csv", "a,b,c\n1,2,5\n2,4,1\n3,6,4\n4,8,2\n")
	m, _ := Correlate(ds)
	pairs := m.Pairs()
	if len(pairs) != 3 || pairs[0].A != "a" || pairs[0].B != "b" {
		t.Fatalf("pairs = %#v", pairs)
	}
	md := m.Markdown()
	if !strings.Contains(md, "[CORRELATIONS]") || !strings.Contains(md, "a ~ b: r=1.000") {
		t.Fatalf("markdown = %s", md)
	}
}

func TestCorrelateHugeMagnitudes(t *testing.T) {
	ds := mustParse(t, "m.csv", "x,y,z\n1e200,2e200,3\n2e200,4e200,1\n3e200,6e200,2\n")
	m, err := Correlate(ds)
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	if r, _ := m.At("x", "y"); !almostEqual(r, 1.0, 1e-12) {
		t.Fatalf("x~y r = %v, want 1", r)
	}
	if r, _ := m.At("x", "z"); !almostEqual(r, -0.5, 1e-12) {
		t.Fatalf("x~z r = %v, want -0.5", r)
	}
}
