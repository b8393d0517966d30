package logger

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  stage  ", Value: "  match  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "stage" || fields[0].String != "match" {
		t.Fatalf("unexpected stage field: %+v", fields[0])
	}

	empty := StringFields()
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("foo", "bar"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	// Ensure logging with the fallback logger does not panic.
	enriched.Info("another log")
}

func TestCommonFields(t *testing.T) {
	fields := CommonFields("  3f1c  ", "match")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldRunID || fields[0].String != "3f1c" {
		t.Fatalf("unexpected run id field: %+v", fields[0])
	}

	if fields[1].Key != FieldCommand || fields[1].String != "match" {
		t.Fatalf("unexpected command field: %+v", fields[1])
	}

	empty := CommonFields("", "")
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithCommonFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithCommonFields(logger, "run-1", "serve")
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldRunID] != "run-1" {
		t.Fatalf("expected run id field to be run-1, got %q", ctx[FieldRunID])
	}

	if ctx[FieldCommand] != "serve" {
		t.Fatalf("expected command field to be serve, got %q", ctx[FieldCommand])
	}

	enriched = WithCommonFields(nil, "run-1", "serve")
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	enriched.Info("another log")
}

func TestNew(t *testing.T) {
	for _, json := range []bool{false, true} {
		logger, err := New(json, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !logger.Core().Enabled(zapcore.DebugLevel) {
			t.Fatalf("expected debug level to be enabled")
		}
	}

	logger, err := New(false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level to be disabled")
	}
}

func TestEncoderConfig(t *testing.T) {
	tests := []struct {
		json      bool
		encoding  string
		wantLevel string
	}{
		{json: true, encoding: "json", wantLevel: `"level":"info"`},
		{json: false, encoding: "console", wantLevel: "INFO"},
	}

	for _, tt := range tests {
		if got := encoding(tt.json); got != tt.encoding {
			t.Fatalf("expected encoding %q, got %q", tt.encoding, got)
		}

		cfg := encoderConfig(tt.json)
		if cfg.MessageKey != "msg" {
			t.Fatalf("expected message key msg, got %q", cfg.MessageKey)
		}

		var enc zapcore.Encoder
		if tt.json {
			enc = zapcore.NewJSONEncoder(cfg)
		} else {
			enc = zapcore.NewConsoleEncoder(cfg)
		}

		buf, err := enc.EncodeEntry(zapcore.Entry{Level: zapcore.InfoLevel, Message: "results written"}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		line := buf.String()
		if !strings.Contains(line, tt.wantLevel) || !strings.Contains(line, "results written") {
			t.Fatalf("unexpected entry %q", line)
		}
	}
}
