package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, expected := range tests {
		if got := ParseLevel(in); got != expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", in, got, expected)
		}
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eggplant.log")

	logger, closer := New("warn", path)
	logger.Info("dropped")
	logger.Warn("kept", "files", 3)
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 record, got %d: %s", len(lines), data)
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if rec["msg"] != "kept" || rec["files"] != float64(3) {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestNewStderrLogger(t *testing.T) {
	logger, closer := New("debug", "")
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Expected debug to be enabled")
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
