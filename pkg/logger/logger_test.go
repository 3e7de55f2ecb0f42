package logger

import "testing"

func TestNewWithLevel(t *testing.T) {
	l, err := New("debug")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !l.Core().Enabled(-1) {
		t.Error("expected debug level to be enabled")
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNamedNil(t *testing.T) {
	if Named(nil, "x") == nil {
		t.Error("expected no-op logger for nil base")
	}
}
