package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew(t *testing.T) {
	l := New("debug", "json")
	if l.Level != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %v", l.Level)
	}
	if _, ok := l.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("expected json formatter, got %T", l.Formatter)
	}

	fallback := New("loud", "")
	if fallback.Level != logrus.InfoLevel {
		t.Fatalf("expected info fallback, got %v", fallback.Level)
	}
	if _, ok := fallback.Formatter.(*logrus.TextFormatter); !ok {
		t.Fatalf("expected text formatter, got %T", fallback.Formatter)
	}
}
