package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSlogLevelMapping(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := (Config{Level: in}).SlogLevel(); got != want {
			t.Fatalf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFileWriterDisabledWithoutDir(t *testing.T) {
	if w := (Config{}).FileWriter(); w != nil {
		t.Fatal("expected nil writer when Dir is empty")
	}
}

func TestFileWriterWritesToDir(t *testing.T) {
	dir := t.TempDir()
	w := (Config{Dir: dir}).FileWriter()
	if w == nil {
		t.Fatal("expected writer")
	}
	if _, err := w.Write([]byte("hello\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = w.Close()
	b, err := os.ReadFile(filepath.Join(dir, "gridctl.log"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "hello") {
		t.Fatalf("unexpected content: %q", string(b))
	}
}

func TestColorTextHandlerColorsLevel(t *testing.T) {
	var buf bytes.Buffer
	lg := slog.New(NewColorTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}, true))
	lg.Warn("careful")
	out := buf.String()
	if !strings.Contains(out, "\033[33m") || !strings.Contains(out, "careful") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestColorTextHandlerPlainMode(t *testing.T) {
	var buf bytes.Buffer
	lg := slog.New(NewColorTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}, false))
	lg.Warn("careful")
	out := buf.String()
	if strings.Contains(out, "\033[") {
		t.Fatalf("escape codes in plain mode: %q", out)
	}
	if !strings.Contains(out, "careful") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestNewKeepsFileLogFreeOfEscapes(t *testing.T) {
	dir := t.TempDir()
	lg := (Config{Dir: dir, Level: "info"}).New()
	lg.Info("instance started", "identity", "grid_btc", "pid", 4242)

	b, err := os.ReadFile(filepath.Join(dir, "gridctl.log"))
	if err != nil {
		t.Fatalf("read controller log: %v", err)
	}
	content := string(b)
	if strings.Contains(content, "\033[") {
		t.Fatalf("ANSI escapes written to rotated log: %q", content)
	}
	if !strings.Contains(content, "instance started") || !strings.Contains(content, "grid_btc") {
		t.Fatalf("record missing from file log: %q", content)
	}
}
