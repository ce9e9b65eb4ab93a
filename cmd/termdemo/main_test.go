package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/lixenwraith/termengine/terminal"
)

func TestSetupLogging_DisabledByDefault(t *testing.T) {
	logger, f, err := setupLogging("")
	if err != nil || f != nil {
		t.Fatalf("setupLogging(\"\") = %v, %v", f, err)
	}
	if logger.Writer() != io.Discard {
		t.Errorf("expected io.Discard, got %v", logger.Writer())
	}
}

func TestSetupLogging_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "demo.log")
	logger, f, err := setupLogging(path)
	if err != nil {
		t.Fatalf("setupLogging: %v", err)
	}
	defer f.Close()

	logger.Println("hello")

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("log file should contain content")
	}
}

func TestLoadConfig_ColorOverride(t *testing.T) {
	cfg, err := loadConfig("", "8")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Color() != terminal.ColorMode8 {
		t.Errorf("Color = %v", cfg.Color())
	}

	if _, err := loadConfig("", "sixteen"); err == nil {
		t.Error("bad color override should fail")
	}
	if _, err := loadConfig(filepath.Join(t.TempDir(), "none.toml"), ""); err == nil {
		t.Error("missing explicit config should fail")
	}
}

func TestDemo_AddLogKeepsLastEntries(t *testing.T) {
	d := &demo{}
	for i := 0; i < maxLog+5; i++ {
		d.addLog(string(rune('a' + i)))
	}
	if len(d.entries) != maxLog {
		t.Fatalf("len = %d", len(d.entries))
	}
	if d.entries[0] != string(rune('a'+5)) {
		t.Errorf("oldest entry = %q", d.entries[0])
	}
}
