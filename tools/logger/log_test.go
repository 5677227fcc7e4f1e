package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("warn", &buf)

	l.Info("hidden %d", 1)
	l.Warn("shown %s", "warn")
	l.Error("shown %s", "error")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown warn") || !strings.Contains(out, "shown error") {
		t.Fatalf("missing log lines: %s", out)
	}
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	l := NewLoggerWithWriter("verbose", &bytes.Buffer{})
	if l.GetLevel() != INFO {
		t.Fatalf("expected INFO, got %v", l.GetLevel())
	}
	l.SetLevel("DEBUG")
	if l.GetLevel() != DEBUG {
		t.Fatalf("expected DEBUG after SetLevel, got %v", l.GetLevel())
	}
}

func TestWithField(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("debug", &buf).With("tool", "qyweixin_text")
	l.Debug("called")
	if !strings.Contains(buf.String(), "qyweixin_text") {
		t.Fatalf("field missing: %s", buf.String())
	}
}
