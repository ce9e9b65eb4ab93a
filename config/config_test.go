package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lixenwraith/termengine/terminal"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.EscapeTimeout() != 300*time.Millisecond {
		t.Errorf("EscapeTimeout = %v", c.EscapeTimeout())
	}
	if c.ZoomPause() != time.Second {
		t.Errorf("ZoomPause = %v", c.ZoomPause())
	}
	if c.PollInterval() != 16*time.Millisecond {
		t.Errorf("PollInterval = %v", c.PollInterval())
	}
	if !c.Quit().Matches(terminal.RuneEvent('q', terminal.ModCtrl)) {
		t.Error("default quit key should be ctrl+q")
	}
	if c.BackgroundCell().Glyph != " " {
		t.Errorf("background glyph = %q", c.BackgroundCell().Glyph)
	}
}

func TestParse_Overrides(t *testing.T) {
	c, err := Parse([]byte(`
escape_timeout_ms = 50
color_mode = "256"
mouse = false
quit_key = "f10"

[style]
fg = "#ff0000"
bold = true
underline = true

[background]
glyph = "."
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if c.EscapeTimeout() != 50*time.Millisecond {
		t.Errorf("EscapeTimeout = %v", c.EscapeTimeout())
	}
	if c.Color() != terminal.ColorMode256 {
		t.Errorf("Color = %v", c.Color())
	}
	if c.Mouse {
		t.Error("mouse should be off")
	}
	if c.Quit().Key != terminal.KeyF10 {
		t.Errorf("Quit = %+v", c.Quit())
	}

	want := terminal.Style{
		Fg:    terminal.RGB{R: 255},
		Bg:    terminal.RGB{R: 0x1a, G: 0x1b, B: 0x26}, // default kept
		Attrs: terminal.AttrBold | terminal.AttrUnderline,
	}
	if c.DefaultStyle() != want {
		t.Errorf("DefaultStyle = %+v, want %+v", c.DefaultStyle(), want)
	}
	if c.BackgroundCell().Glyph != "." {
		t.Errorf("background glyph = %q", c.BackgroundCell().Glyph)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"timeout range", "escape_timeout_ms = 0", "escape_timeout_ms"},
		{"poll range", "poll_ms = 5000", "poll_ms"},
		{"color mode", `color_mode = "16"`, "color_mode"},
		{"bad hex", "[style]\nfg = \"#12\"", "style"},
		{"wide background", "[background]\nglyph = \"世\"", "background"},
		{"empty background", "[background]\nglyph = \"\"", "background"},
		{"quit key", `quit_key = "hyper+x"`, "quit_key"},
		{"type", `mouse = 1`, "mouse"},
		{"syntax", `mouse = `, "line 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	if err := os.WriteFile(path, []byte("poll_ms = 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.PollInterval() != 8*time.Millisecond {
		t.Errorf("PollInterval = %v", c.PollInterval())
	}

	c, err = Load(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
	if c == nil || c.PollMs != 16 {
		t.Error("missing file should still yield defaults")
	}
}

func TestQuit_MatchesParsedInput(t *testing.T) {
	tests := []struct {
		quitKey string
		input   string
	}{
		{"q", "q"},
		{"q", "qq"},
		{"ctrl+q", "\x11"},
		{"f10", "\x1b[21~"},
		{"alt+x", "\x1bx"},
	}
	for _, tt := range tests {
		t.Run(tt.quitKey, func(t *testing.T) {
			c, err := Parse([]byte(`quit_key = "` + tt.quitKey + `"`))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			events := terminal.NewParser().Parse([]byte(tt.input))
			matched := false
			for _, ev := range events {
				if c.Quit().Matches(ev) {
					matched = true
				}
			}
			if !matched {
				t.Errorf("quit_key %q did not match input %q (events %v)", tt.quitKey, tt.input, events)
			}
		})
	}
}
