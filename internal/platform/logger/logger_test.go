package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestWith_AddsFieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := Wrap(zap.New(core)).With(map[string]any{"component": "dispatcher"})

	l.Warn("publish failed", map[string]any{
		"channel": "user.u-1",
		"err":     errors.New("boom"),
		"":        "ignored",
	})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["component"] != "dispatcher" || ctx["channel"] != "user.u-1" {
		t.Fatalf("unexpected fields: %v", ctx)
	}
	if ctx["err"] != "boom" {
		t.Fatalf("expected err field, got %v", ctx["err"])
	}
	if _, ok := ctx[""]; ok {
		t.Fatalf("empty key should be dropped")
	}
}

func TestNew_BuildsBothFormats(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatConsole} {
		l, err := New(Options{Level: "debug", Format: f, App: "noahs-ark"})
		if err != nil {
			t.Fatalf("format %s: %v", f, err)
		}
		l.Debug("ok", nil)
	}
}
