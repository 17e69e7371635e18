package logx

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewWritesKeyValues(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "todoserver", "debug")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Debug("todo created", "id", "abc")

	out := buf.String()
	for _, want := range []string{"todoserver", "todo created", "id=abc"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output %q missing %q", out, want)
		}
	}
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "", "warn")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %q", buf.String())
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "", "chatty"); err == nil {
		t.Fatalf("New(chatty) error = nil, want error")
	}
}
