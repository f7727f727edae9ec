package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	l, err := New("", false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.Desugar().Core().Enabled(zapcore.InfoLevel) || !l.Desugar().Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("default level should be warn")
	}
	l, err = New("error", true)
	if err != nil {
		t.Fatalf("New debug: %v", err)
	}
	if !l.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug flag should enable debug level")
	}
	if _, err := New("loud", false); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
