// Package config holds engine settings loaded from TOML
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lixenwraith/termengine/terminal"
	"github.com/lixenwraith/termengine/toml"
)

// StyleConfig is a style written with hex colors and attribute flags
type StyleConfig struct {
	Fg        string `toml:"fg"`
	Bg        string `toml:"bg"`
	Bold      bool   `toml:"bold"`
	Dim       bool   `toml:"dim"`
	Italic    bool   `toml:"italic"`
	Underline bool   `toml:"underline"`
}

// BackgroundConfig is the cell shown where no layer draws
type BackgroundConfig struct {
	Glyph string `toml:"glyph"`
	Fg    string `toml:"fg"`
	Bg    string `toml:"bg"`
}

// Config is the engine configuration
type Config struct {
	EscapeTimeoutMs int    `toml:"escape_timeout_ms"`
	ZoomPauseMs     int    `toml:"zoom_pause_ms"`
	PollMs          int    `toml:"poll_ms"`
	ColorMode       string `toml:"color_mode"`
	Mouse           bool   `toml:"mouse"`
	QuitKey         string `toml:"quit_key"`

	Style      StyleConfig      `toml:"style"`
	Background BackgroundConfig `toml:"background"`

	// Resolved by Validate
	colorMode terminal.ColorMode
	style     terminal.Style
	bgCell    terminal.Cell
	quit      terminal.KeySpec
}

// Default returns the built-in configuration, already validated
func Default() *Config {
	c := &Config{
		EscapeTimeoutMs: int(terminal.DefaultEscapeTimeout / time.Millisecond),
		ZoomPauseMs:     int(terminal.DefaultZoomPause / time.Millisecond),
		PollMs:          16,
		ColorMode:       "auto",
		Mouse:           true,
		QuitKey:         "ctrl+q",
		Style: StyleConfig{
			Fg: "#c0caf5",
			Bg: "#1a1b26",
		},
		Background: BackgroundConfig{
			Glyph: " ",
			Fg:    "#c0caf5",
			Bg:    "#1a1b26",
		},
	}
	if err := c.Validate(); err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return c
}

// Load reads a TOML file over the defaults
// A missing file yields the defaults and an error wrapping os.ErrNotExist
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), fmt.Errorf("config %s: %w", path, err)
		}
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes TOML over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks ranges and resolves colors, color mode and quit key
func (c *Config) Validate() error {
	if c.EscapeTimeoutMs < 1 || c.EscapeTimeoutMs > 5000 {
		return fmt.Errorf("escape_timeout_ms %d out of range 1-5000", c.EscapeTimeoutMs)
	}
	if c.ZoomPauseMs < 0 || c.ZoomPauseMs > 60000 {
		return fmt.Errorf("zoom_pause_ms %d out of range 0-60000", c.ZoomPauseMs)
	}
	if c.PollMs < 0 || c.PollMs > 1000 {
		return fmt.Errorf("poll_ms %d out of range 0-1000", c.PollMs)
	}

	mode, err := terminal.ParseColorMode(c.ColorMode)
	if err != nil {
		return fmt.Errorf("color_mode: %w", err)
	}

	style, err := c.Style.resolve()
	if err != nil {
		return fmt.Errorf("style: %w", err)
	}

	bg, err := c.Background.resolve()
	if err != nil {
		return fmt.Errorf("background: %w", err)
	}

	quit, ok := terminal.ParseKeySpec(c.QuitKey)
	if !ok {
		return fmt.Errorf("quit_key %q is not a key", c.QuitKey)
	}

	c.colorMode = mode
	c.style = style
	c.bgCell = bg
	c.quit = quit
	return nil
}

func (s StyleConfig) resolve() (terminal.Style, error) {
	fg, err := terminal.ParseHex(s.Fg)
	if err != nil {
		return terminal.Style{}, fmt.Errorf("fg: %w", err)
	}
	bg, err := terminal.ParseHex(s.Bg)
	if err != nil {
		return terminal.Style{}, fmt.Errorf("bg: %w", err)
	}
	var attrs terminal.Attr
	if s.Bold {
		attrs |= terminal.AttrBold
	}
	if s.Dim {
		attrs |= terminal.AttrDim
	}
	if s.Italic {
		attrs |= terminal.AttrItalic
	}
	if s.Underline {
		attrs |= terminal.AttrUnderline
	}
	return terminal.Style{Fg: fg, Bg: bg, Attrs: attrs}, nil
}

func (b BackgroundConfig) resolve() (terminal.Cell, error) {
	if b.Glyph == "" {
		return terminal.Cell{}, errors.New("glyph must not be empty")
	}
	style, err := StyleConfig{Fg: b.Fg, Bg: b.Bg}.resolve()
	if err != nil {
		return terminal.Cell{}, err
	}
	c := terminal.NewCell(b.Glyph, style)
	if c.Width() != 1 {
		return terminal.Cell{}, fmt.Errorf("glyph %q must be one column wide", b.Glyph)
	}
	return c, nil
}

// EscapeTimeout returns escape_timeout_ms as a duration
func (c *Config) EscapeTimeout() time.Duration {
	return time.Duration(c.EscapeTimeoutMs) * time.Millisecond
}

// ZoomPause returns zoom_pause_ms as a duration
func (c *Config) ZoomPause() time.Duration {
	return time.Duration(c.ZoomPauseMs) * time.Millisecond
}

// PollInterval returns poll_ms as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollMs) * time.Millisecond
}

func (c *Config) Color() terminal.ColorMode { return c.colorMode }

func (c *Config) DefaultStyle() terminal.Style { return c.style }

func (c *Config) BackgroundCell() terminal.Cell { return c.bgCell }

func (c *Config) Quit() terminal.KeySpec { return c.quit }
