package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFileReplaces(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	path := filepath.Join(dir, "out.png")
	for _, body := range []string{"first", "second"} {
		if err := SafeWriteFile(path, []byte(body)); err != nil {
			t.Fatalf("SafeWriteFile: %v", err)
		}
	}
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "second" {
		t.Fatalf("content = %q, %v", b, err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	got, err := ExpandHome("~/plots")
	if err != nil || got != "/home/tester/plots" {
		t.Fatalf("ExpandHome = %q, %v", got, err)
	}
	if got, _ := ExpandHome("rel/plots"); got != "rel/plots" {
		t.Fatalf("relative path changed: %q", got)
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := PrettyJSON(map[string]int{"rows": 3})
	if err != nil || string(b) != "{\n  \"rows\": 3\n}" {
		t.Fatalf("PrettyJSON = %q, %v", b, err)
	}
}
