package logger

import (
	"testing"

	"github.com/jhogstrom/ess-arbetsschema/config"
)

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		l, err := NewLogger(&config.LogConfig{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("format %s: unexpected error: %v", format, err)
		}
		if !l.Core().Enabled(-1) {
			t.Errorf("format %s: debug level should be enabled", format)
		}
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger(&config.LogConfig{Level: "loud", Format: "console"}); err == nil {
		t.Fatal("expected error for invalid level")
	}
}
