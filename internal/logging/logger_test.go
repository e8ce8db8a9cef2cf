package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLoggerStructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("debug", &buf).WithComponent("test")
	l.Infow("export.completed", map[string]any{"export_id": "e1", "rows": 2})

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log output")
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("expected JSON log line: %v", err)
	}
	if rec["level"] != "info" {
		t.Fatalf("unexpected level: %#v", rec["level"])
	}
	if rec["message"] != "export.completed" {
		t.Fatalf("unexpected message: %#v", rec["message"])
	}
	if rec["component"] != "test" {
		t.Fatalf("unexpected component: %#v", rec["component"])
	}
	if rec["export_id"] != "e1" {
		t.Fatalf("unexpected field export_id: %#v", rec["export_id"])
	}
	if _, ok := rec["time"]; !ok {
		t.Fatal("expected time field")
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("error", &buf)
	l.Info("should_not_log")
	l.Warnw("should_not_log", nil)
	l.Error("should_log %d", 1)
	out := strings.TrimSpace(buf.String())
	lines := strings.Split(out, "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), out)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("expected JSON log line: %v", err)
	}
	if rec["level"] != "error" {
		t.Fatalf("unexpected level: %#v", rec["level"])
	}
	if rec["message"] != "should_log 1" {
		t.Fatalf("unexpected message: %#v", rec["message"])
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop().WithComponent("x")
	l.Errorw("ignored", map[string]any{"a": 1})
}
