package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWithOptionsWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mcphub.log")

	log := NewWithOptions(Options{Level: "info", File: path})
	log.Info("catalog loaded", String("locale", "en"), Int("count", 3))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"catalog loaded"`) {
		t.Errorf("log file missing record, got %q", string(data))
	}
	if !strings.Contains(string(data), `"locale":"en"`) {
		t.Errorf("log file missing field, got %q", string(data))
	}
}

func TestLevelFiltersFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcphub.log")

	log := NewWithOptions(Options{Level: "warn", File: path})
	log.Info("dropped")
	log.Warn("kept")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if strings.Contains(string(data), "dropped") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(string(data), "kept") {
		t.Error("warn record missing")
	}
}

func TestNopAndWith(t *testing.T) {
	log := NewNop().With(String("component", "test"))
	log.Info("nothing happens")
	log.Debugf("still nothing %d", 1)
}

func TestParseLevel(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		if parseLevel(lvl) == nil {
			t.Errorf("parseLevel(%q) = nil", lvl)
		}
	}
	if parseLevel("verbose") != nil {
		t.Error("parseLevel() accepted an unknown level")
	}
}
