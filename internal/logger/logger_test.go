package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelInfo}, // case-sensitive
	}

	for _, tc := range tests {
		if got := ParseLevel(tc.input); got != tc.expected {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, _, err := Open(&buf, Options{Format: "json"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := WithContext(context.Background(), log.With("component", "watch"))
	FromContext(ctx).Info("converted", "source", "tri.obj")

	out := buf.String()
	if !strings.Contains(out, `"component":"watch"`) || !strings.Contains(out, `"source":"tri.obj"`) {
		t.Fatalf("context logger lost attributes: %s", out)
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext without a logger returned nil")
	}
}

func TestOpenConsoleFormats(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"", "pretty", "json", "text"} {
		var buf bytes.Buffer
		log, closer, err := Open(&buf, Options{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("format %q: %v", format, err)
		}
		log.Debug("mesh loaded", "vertices", 42)
		if err := closer.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		if !strings.Contains(buf.String(), "mesh loaded") {
			t.Fatalf("format %q: missing message in %q", format, buf.String())
		}
	}

	if _, _, err := Open(&bytes.Buffer{}, Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestOpenConsoleLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, _, err := Open(&buf, Options{Level: "warn", Format: "pretty"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	log.Info("loaded")
	log.Warn("slow save", "ms", 1500)
	if strings.Contains(buf.String(), "loaded") {
		t.Fatalf("info record printed at warn level: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "ms=1500") {
		t.Fatalf("warn record missing: %s", buf.String())
	}
}

func TestOpenWritesRotatingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "meshctm.log")
	var console bytes.Buffer
	log, closer, err := Open(&console, Options{
		Level:  "warn",
		Format: "text",
		File:   FileOptions{Path: path, MaxSizeMB: 1, MaxBackups: 1},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	log.Info("dropped")
	log.With("op", "save").WithGroup("mesh").Warn("slow save", "ms", 1500)
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"slow save"`) || !strings.Contains(string(data), `"op":"save"`) {
		t.Fatalf("unexpected file contents: %s", data)
	}
	if !strings.Contains(string(data), `"mesh":{"ms":1500}`) {
		t.Fatalf("group missing from file record: %s", data)
	}
	if strings.Contains(string(data), "dropped") || strings.Contains(console.String(), "dropped") {
		t.Fatalf("info record leaked past warn level")
	}
	if !strings.Contains(console.String(), "slow save") {
		t.Fatalf("console missing record: %s", console.String())
	}
}

func TestOpenRotatesBySize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "meshctm.log")
	log, closer, err := Open(&bytes.Buffer{}, Options{
		Level:  "info",
		Format: "text",
		File:   FileOptions{Path: path, MaxSizeMB: 1, MaxBackups: 2},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	payload := strings.Repeat("x", 1024)
	for i := 0; i < 1500; i++ {
		log.Info("converted", "n", i, "payload", payload)
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	backups, err := filepath.Glob(filepath.Join(dir, "meshctm-*.log"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(backups) == 0 {
		t.Fatalf("no rotated file after writing past the size limit")
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat current log: %v", err)
	}
	if st.Size() > 1<<20 {
		t.Fatalf("current log is %d bytes, above the 1 MB limit", st.Size())
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	if log := Discard(); log == nil {
		t.Fatal("Discard returned nil")
	}
	Discard().Error("nothing")
}
