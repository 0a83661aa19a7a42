package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewJSONLoggerLevels(t *testing.T) {
	cases := []struct {
		level   string
		debugOn bool
		warnOn  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"WARN", false, true},
		{"error", false, false},
		{"nonsense", false, true},
		{"", false, true},
	}
	for _, tc := range cases {
		logger := NewJSONLogger("gateway", tc.level)
		h := logger.Handler()
		if got := h.Enabled(context.Background(), slog.LevelDebug); got != tc.debugOn {
			t.Errorf("level %q: debug enabled = %v, want %v", tc.level, got, tc.debugOn)
		}
		if got := h.Enabled(context.Background(), slog.LevelWarn); got != tc.warnOn {
			t.Errorf("level %q: warn enabled = %v, want %v", tc.level, got, tc.warnOn)
		}
	}
}
