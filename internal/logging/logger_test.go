package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediaprobe/internal/config"
	"mediaprobe/internal/logging"
)

func noColor() *bool {
	v := false
	return &v
}

func TestConsoleLoggerSingleLine(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf, Color: noColor()})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	component := logging.NewComponentLogger(logger.Logger, "probe")
	component.Info("stream bound", logging.Int("stream_index", 1), logging.String("codec", "pcm s16"))

	line := buf.String()
	if strings.Count(line, "\n") != 1 {
		t.Fatalf("expected a single line, got %q", line)
	}
	for _, want := range []string{"INFO [probe] stream bound", "stream_index=1", `codec="pcm s16"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("info lines should not carry the source location: %q", line)
	}
}

func TestConsoleLoggerFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Writer: &buf, Color: noColor()})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "WARN shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestConsoleLoggerColor(t *testing.T) {
	var buf bytes.Buffer
	color := true
	logger, err := logging.New(logging.Options{Level: "info", Writer: &buf, Color: &color})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Error("boom")
	if !strings.Contains(buf.String(), "\x1b[31mERROR\x1b[0m") {
		t.Fatalf("expected colored level, got %q", buf.String())
	}
}

func TestJSONLoggerRenamesKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("probed", logging.Int64("packets", 12))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if entry["level"] != "info" || entry["msg"] != "probed" || entry["packets"] != float64(12) {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", entry)
	}
}

func TestNewRejectsUnknownSettings(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := logging.New(logging.Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "debug"
	cfg.Logging.Dir = filepath.Join(t.TempDir(), "logs")

	var stderr bytes.Buffer
	logger, err := logging.NewFromConfig(&cfg, &stderr)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("debug message")
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(cfg.Logging.Dir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "debug message") || !strings.Contains(stderr.String(), "debug message") {
		t.Fatalf("expected message in both outputs: file=%q stderr=%q", content, stderr.String())
	}
	if !strings.Contains(string(content), "logger_test.go:") {
		t.Fatalf("debug lines should carry the source location: %q", content)
	}
	if strings.Contains(string(content), "\x1b[") {
		t.Fatalf("log file must not be colored: %q", content)
	}
}

func TestWithContextAddsRunAndFile(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Writer: &buf, Color: noColor()})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := logging.WithFile(logging.WithRunID(context.Background(), "run-1"), "a.wav")
	logging.WithContext(ctx, logger.Logger).Info("hello")

	if !strings.Contains(buf.String(), "run_id=run-1") || !strings.Contains(buf.String(), "file=a.wav") {
		t.Fatalf("missing context fields: %q", buf.String())
	}
	if got := logging.WithContext(context.Background(), logger.Logger); got != logger.Logger {
		t.Fatal("empty context should return the same logger")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Writer: &buf, Color: noColor()})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger.Logger, "decoder unavailable", "decoder_unavailable",
		logging.Error(errors.New("bad")),
		logging.String(logging.FieldImpact, "no frames"),
	)
	out := buf.String()
	for _, want := range []string{"event_type=decoder_unavailable", "error_hint=", `impact="no frames"`, "error=bad"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
	if strings.Count(out, "impact=") != 1 {
		t.Fatalf("impact should not be duplicated: %q", out)
	}
}

func TestNopLogger(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 100) {
		t.Fatal("nop logger should not be enabled")
	}
	logging.WarnWithContext(nil, "ignored", "none")
}
