package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(Config{Level: "verbose"}); err == nil {
		t.Error("New() accepted an unknown level")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("New() accepted an unknown format")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 || lines[0]["msg"] != "shown" {
		t.Errorf("lines = %v", lines)
	}
}

func TestLogger_Redaction(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "debug", Redact: true, Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	logger.With("api_token", "abcdefghijkl").Info("loaded",
		"path", "db.host",
		"db_password", "hunter2",
		"url", "postgres://app:s3cr3t@db/app",
		"error", errors.New("request failed: Bearer abc.def"),
		slog.Group("auth", slog.String("clientSecret", "xyz")),
	)

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("lines = %v", lines)
	}
	line := lines[0]
	checks := map[string]any{
		"api_token":   "ab***",
		"path":        "db.host",
		"db_password": "***",
		"url":         "postgres://app:***@db/app",
		"error":       "request failed: Bearer ***",
	}
	for key, want := range checks {
		if line[key] != want {
			t.Errorf("%s = %v, want %v", key, line[key], want)
		}
	}
	group, _ := line["auth"].(map[string]any)
	if group["clientSecret"] != "***" {
		t.Errorf("auth group = %v", line["auth"])
	}
}

func TestLogger_NoRedaction(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("loaded", "db_password", "hunter2")

	if line := decodeLines(t, &buf)[0]; line["db_password"] != "hunter2" {
		t.Errorf("db_password = %v", line["db_password"])
	}
}

func TestLogger_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	ctx := WithRunID(WithProfile(WithCommand(context.Background(), "watch"), "production"), "run-1")
	logger.InfoContext(ctx, "reloaded")
	logger.Info("plain")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("lines = %v", lines)
	}
	if lines[0]["command"] != "watch" || lines[0]["profile"] != "production" || lines[0]["run_id"] != "run-1" {
		t.Errorf("context fields missing: %v", lines[0])
	}
	if _, ok := lines[1]["command"]; ok {
		t.Errorf("context fields on a record without context: %v", lines[1])
	}
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "text", Redact: true, Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hello", "secret", "value")

	out := buf.String()
	if !strings.Contains(out, "msg=hello") || !strings.Contains(out, "secret=***") {
		t.Errorf("output = %q", out)
	}
}
