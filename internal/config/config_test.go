package config

import (
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.PreviewRows != 100 || c.LogLevel != "warn" || c.DecimalSeparator != "." {
		t.Fatalf("defaults = %+v", c)
	}
	if c.OutputDir != filepath.Join(home, ".tabviz", "plots") {
		t.Fatalf("output dir = %s", c.OutputDir)
	}
}

func TestSaveThenLoadWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	in := &Global{Delimiter: ";", DecimalSeparator: ",", MissingValues: []string{"?"}, PlotWidth: 640, PreviewRows: 5, OutputDir: "/tmp/p"}
	if err := Save(in, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	t.Setenv("TABVIZ_PREVIEW_ROWS", "7")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Delimiter != ";" || c.DecimalSeparator != "," || c.PlotWidth != 640 {
		t.Fatalf("loaded = %+v", c)
	}
	if len(c.MissingValues) != 1 || c.MissingValues[0] != "?" {
		t.Fatalf("missing values = %#v", c.MissingValues)
	}
	if c.PreviewRows != 7 {
		t.Fatalf("env override not applied: %d", c.PreviewRows)
	}
}

func TestRune(t *testing.T) {
	cases := map[string]rune{"": 0, ";": ';', `\t`: '\t', "tab": '\t', "|x": '|'}
	for in, want := range cases {
		if got := Rune(in); got != want {
			t.Fatalf("Rune(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadExpandsHomeInOutputDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Save(&Global{OutputDir: "~/plots"}, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.OutputDir != filepath.Join(home, "plots") {
		t.Fatalf("output dir = %s", c.OutputDir)
	}
}
