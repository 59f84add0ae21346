package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.WarnLevel},
		{"verbose", zerolog.WarnLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Debug().Msg("poll tick")
	if buf.Len() != 0 {
		t.Errorf("debug message written at warn level: %q", buf.String())
	}

	log.Warn().Str("name", "packager").Msg("failed to kill process")
	out := buf.String()
	if !strings.Contains(out, "failed to kill process") || !strings.Contains(out, "packager") {
		t.Errorf("warn output = %q", out)
	}
}

func TestNewDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug")

	log.Debug().Int("poll", 3).Msg("device bridge query failed")
	if !strings.Contains(buf.String(), "device bridge query failed") {
		t.Errorf("debug output = %q", buf.String())
	}
}
