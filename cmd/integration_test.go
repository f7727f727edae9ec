package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags clears values and Changed state that persist across invocations.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and stdin, returning stdout.
func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := runCmd(t, stdin, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

func isolatedHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestCLI_AnalyzeMarkdown(t *testing.T) {
	home := isolatedHome(t)
	data := writeFile(t, home, "m.csv", "x,y,label\n1,2,a\n2,4,b\n3,6,a\n")
	out := mustRun(t, "", "analyze", data)
	for _, want := range []string{"[DATASET SUMMARY]", "Rows: 3", "- label: non-numeric", "[CORRELATIONS]", "- x ~ y: r=1.000"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_AnalyzeJSONWithSingleNumericColumn(t *testing.T) {
	home := isolatedHome(t)
	data := writeFile(t, home, "p.csv", "name,age\nann,31\nbob,42\ncy,27\n")
	out := mustRun(t, "", "analyze", data, "--format", "json")
	var doc analysisDoc
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if doc.Rows != 3 || len(doc.Numeric) != 1 || doc.Numeric[0] != "age" {
		t.Fatalf("doc = %+v", doc)
	}
	if len(doc.Correlations) != 0 || len(doc.Notes) != 1 || !strings.Contains(doc.Notes[0], "need at least 2") {
		t.Fatalf("notes = %#v", doc.Notes)
	}
}

func TestCLI_AnalyzeRejectsBadInput(t *testing.T) {
	home := isolatedHome(t)
	if _, err := runCmd(t, "", "analyze", filepath.Join(home, "absent.csv")); err == nil {
		t.Fatalf("expected load error")
	}
	data := writeFile(t, home, "m.csv", "a\n1\n")
	if _, err := runCmd(t, "", "analyze", data, "--format", "xml"); err == nil {
		t.Fatalf("expected format error")
	}
	if _, err := runCmd(t, "", "analyze", data, "--decimal", ",", "--thousands", ","); err == nil {
		t.Fatalf("expected separator clash error")
	}
}

func TestCLI_PlotWritesPNG(t *testing.T) {
	home := isolatedHome(t)
	data := writeFile(t, home, "s.csv", "t,v\n1,10\n2,12\n3,9\n4,15\n")
	outDir := filepath.Join(home, "plots")
	out := mustRun(t, "", "plot", "line", data, "--column", "v", "--out-dir", outDir)
	want := filepath.Join(outDir, "s_line-series_v.png")
	if !strings.Contains(out, want) {
		t.Fatalf("output = %q", out)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("png not written: %v", err)
	}
	if _, err := runCmd(t, "", "plot", "line", data); err == nil {
		t.Fatalf("expected error without --column")
	}
	if _, err := runCmd(t, "", "plot", "pie", data); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestCLI_ShellSession(t *testing.T) {
	home := isolatedHome(t)
	data := writeFile(t, home, "people.csv", "name,age\nann,31\nbob,42\ncy,27\n")
	script := strings.Join([]string{
		"stats",
		"load " + filepath.Join(home, "nope.csv"),
		"load " + data,
		"corr",
		"line name",
		"line age",
		"head 2",
		"log",
		"clear-log",
		"log",
		"quit",
	}, "\n")
	out := mustRun(t, script, "shell", "--out-dir", filepath.Join(home, "plots"))

	for _, want := range []string{
		"⚠ Warning: no dataset loaded",
		"✗ Error: load ",
		"✓ Loaded " + data + ": 3 rows, 2 columns",
		"Size: 3 rows, 2 columns",
		"Numeric columns: age",
		"⚠ Warning: not enough numeric columns: need at least 2, have 1",
		`⚠ Warning: invalid column "name": column is not numeric`,
		"✓ Plot written to ",
		"] Built line chart for column: age",
		"] Log cleared",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("shell output missing %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "] Displayed data statistics"); n != 1 {
		t.Fatalf("stats entries = %d, want 1", n)
	}
	if n := strings.Count(out, "] Failed to load "); n != 1 {
		t.Fatalf("failed-load entries = %d, want 1", n)
	}
	if !strings.Contains(out, "ann   31") && !strings.Contains(out, "ann  31") {
		t.Fatalf("head preview missing:\n%s", out)
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := isolatedHome(t)
	mustRun(t, "", "config", "set", "preview_rows", "25")
	mustRun(t, "", "config", "set", "delimiter", ";")
	if _, err := runCmd(t, "", "config", "set", "plot_width", "0"); err == nil {
		t.Fatalf("expected error for zero width")
	}
	if _, err := runCmd(t, "", "config", "set", "color", "red"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if _, err := os.Stat(filepath.Join(home, ".tabviz", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := mustRun(t, "", "config", "show")
	if !strings.Contains(out, "preview_rows: 25") || !strings.Contains(out, "delimiter: ;") {
		t.Fatalf("config show = %s", out)
	}
}
