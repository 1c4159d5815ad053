package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewJSONHandlerEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New("json", slog.LevelInfo, &buf)
	l.Info(EventConnect, "host", "127.0.0.1", "port", 4000)

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("expected valid JSON line, got %q: %v", buf.String(), err)
	}
	if decoded["msg"] != EventConnect {
		t.Fatalf("msg = %v, want %s", decoded["msg"], EventConnect)
	}
}

func TestNewTextHandlerIsDefault(t *testing.T) {
	var buf bytes.Buffer
	l := New("text", slog.LevelWarn, &buf)
	l.Warn(EventServerError, "code", -2)
	if !strings.Contains(buf.String(), EventServerError) {
		t.Fatalf("expected text output to contain message, got %q", buf.String())
	}
}

func TestEventNamesAreDistinct(t *testing.T) {
	names := []string{EventConnect, EventConnectFailed, EventClose, EventAbort, EventServerError, EventTransportError}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			t.Fatalf("duplicate event name %q", n)
		}
		seen[n] = true
	}
}

func TestSetAndLReturnSameLogger(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	Set(custom)
	if L() != custom {
		t.Fatalf("L() did not return the logger set via Set()")
	}
}
