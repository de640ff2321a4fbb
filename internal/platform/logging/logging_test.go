package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWithWriterTagsService(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "info", "proposals")
	logger.Debug("hidden")
	logger.Info("proposal created", "proposal_id", "p-1")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log record: %v (%q)", err, buf.String())
	}
	if record["service"] != "proposals" {
		t.Fatalf("service = %v", record["service"])
	}
	if record["proposal_id"] != "p-1" {
		t.Fatalf("proposal_id = %v", record["proposal_id"])
	}
}
