package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestDefaultLogger_LevelFilterAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, false)
	l.Debug("hidden")
	child := l.WithFields(Fields{"stage": "delimiter", "file": "a.csv"})
	child.Info("picked", Fields{"score": 3})
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered at info level: %q", out)
	}
	if !strings.Contains(out, "[INFO] picked file=a.csv score=3 stage=delimiter") {
		t.Fatalf("unexpected line: %q", out)
	}

	// children share the parent's level
	l.SetLevel(DebugLevel)
	child.Debug("now visible")
	if !strings.Contains(buf.String(), "[DEBUG] now visible") {
		t.Fatalf("expected debug line after SetLevel, got %q", buf.String())
	}
}

func TestDefaultLogger_ErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, false)
	l.Error(errors.New("boom"), "store write failed")
	if !strings.Contains(buf.String(), "[ERROR] store write failed: boom") {
		t.Fatalf("got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": DebugLevel, "": InfoLevel, "WARN": WarnLevel, "error": ErrorLevel}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
