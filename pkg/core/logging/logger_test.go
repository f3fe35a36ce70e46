package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/msto63/rallyscore/pkg/core/apperror"
)

func newTestLogger(format Format, level Level) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := NewWithConfig(Config{Level: level, Format: format, Output: buf, Name: "test"})
	l.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }
	return l, buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Invalid JSON line %q: %v", buf.String(), err)
	}
	return out
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	logger := New("test-service")
	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.Name() != "test-service" {
		t.Errorf("name = %v, want test-service", logger.Name())
	}
	if logger.GetLevel() != LevelInfo {
		t.Errorf("level = %v, want info", logger.GetLevel())
	}
}

func TestLogger_JSON(t *testing.T) {
	l, buf := newTestLogger(FormatJSON, LevelInfo)

	l.WithField("match_id", "m1").Info("rally applied", "points", 3, "orphan")

	out := decodeLine(t, buf)
	if out["message"] != "rally applied" || out["level"] != "info" || out["logger"] != "test" {
		t.Errorf("Unexpected entry: %v", out)
	}
	if out["match_id"] != "m1" || out["points"].(float64) != 3 {
		t.Errorf("Missing fields: %v", out)
	}
	if _, ok := out["orphan"]; ok {
		t.Error("Trailing key without value should be dropped")
	}
	if out["timestamp"] != "2026-10-19T12:00:00Z" {
		t.Errorf("timestamp = %v", out["timestamp"])
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	l, buf := newTestLogger(FormatJSON, LevelWarn)

	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected no output, got %q", buf.String())
	}

	l.WithLevel(LevelDebug).Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("WithLevel did not lower the threshold: %q", buf.String())
	}
}

func TestLogger_WithFieldDoesNotLeak(t *testing.T) {
	l, buf := newTestLogger(FormatJSON, LevelInfo)
	_ = l.WithField("request_id", "r1")

	l.Info("plain")
	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("Parent logger picked up child field: %q", buf.String())
	}
}

func TestLogger_Text(t *testing.T) {
	l, buf := newTestLogger(FormatText, LevelInfo)

	l.Warn("slow rally", "b", 2, "a", 1)

	want := "12:00:00 [WARN] {test} slow rally [a=1 b=2]\n"
	if buf.String() != want {
		t.Errorf("Expected %q, got %q", want, buf.String())
	}
}

func TestLogger_LogError(t *testing.T) {
	l, buf := newTestLogger(FormatJSON, LevelDebug)

	l.LogError(apperror.New("match over").WithCode(apperror.CodeMatchFinished).WithOperation("Apply"))
	out := decodeLine(t, buf)
	if out["level"] != "info" || out["error_code"] != "MATCH_FINISHED" || out["error_operation"] != "Apply" {
		t.Errorf("Unexpected entry: %v", out)
	}
	if _, ok := out["error_details"]; !ok {
		t.Error("Expected error_details from MarshalJSON")
	}

	buf.Reset()
	l.LogError(errors.New("plain failure"))
	out = decodeLine(t, buf)
	if out["level"] != "error" || out["error"] != "plain failure" {
		t.Errorf("Unexpected entry: %v", out)
	}

	buf.Reset()
	l.LogError(nil)
	if buf.Len() != 0 {
		t.Error("LogError(nil) should not log")
	}
}
