// Command termdemo drives the engine interactively: an event log, a draggable
// marker and a status bar on separate layers
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/termengine/config"
	"github.com/lixenwraith/termengine/render"
	"github.com/lixenwraith/termengine/terminal"
)

var (
	configFlag = flag.String("config", "", "Path to TOML config (defaults when empty)")
	colorFlag  = flag.String("color", "", "Color mode override: auto, truecolor, 256, 8")
	logFlag    = flag.String("log", "", "Write debug log to this file")
	tcellFlag  = flag.Bool("tcell", false, "Present through a tcell screen instead of the raw backend")
)

const maxLog = 12

// setupLogging returns a logger writing to path, or discarding when path is empty
func setupLogging(path string) (*log.Logger, *os.File, error) {
	if path == "" {
		return log.New(io.Discard, "", 0), nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return log.New(f, "termdemo ", log.LstdFlags|log.Lmicroseconds), f, nil
}

func loadConfig(path, colorOverride string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}
	if colorOverride != "" {
		cfg.ColorMode = colorOverride
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// demo holds the interactive state drawn onto the layers
type demo struct {
	s   *render.Session
	cfg *config.Config

	entries   []string
	objX      int
	objY      int
	dragging  bool
	logHidden bool
	markerLow bool
	quit      bool
}

func main() {
	// Panic Recovery: ensure terminal is reset even if the demo crashes
	defer func() {
		if r := recover(); r != nil {
			terminal.EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\r\n\x1b[31mTERMDEMO CRASHED: %v\x1b[0m\r\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	logger, logFile, err := setupLogging(*logFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log setup failed: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	cfg, err := loadConfig(*configFlag, *colorFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	opts := render.OptionsFromConfig(cfg, logger)

	var (
		session *render.Session
		tick    func() error
	)
	if *tcellFlag {
		screen, err := tcell.NewScreen()
		if err == nil {
			err = screen.Init()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "tcell screen: %v\n", err)
			os.Exit(1)
		}
		defer screen.Fini()

		host := render.NewTcellHost(screen, opts)
		host.Start()
		defer host.Close()
		session = host.Session()
		tick = host.Tick
	} else {
		term := terminal.New(cfg.Color())
		session = render.NewSession(term, opts)
		if err := session.Start(); err != nil {
			if errors.Is(err, terminal.ErrNotTerminal) {
				fmt.Fprintln(os.Stderr, "termdemo needs an interactive terminal")
			} else {
				fmt.Fprintf(os.Stderr, "start failed: %v\n", err)
			}
			os.Exit(1)
		}
		defer session.Close()
		tick = func() error { return session.Tick(time.Now()) }
	}

	d := &demo{s: session, cfg: cfg}
	w, h := session.Size()
	d.objX, d.objY = w/2, h/2

	for _, l := range []struct {
		id string
		z  int
	}{{"background", 0}, {"log", 10}, {"marker", 20}, {"status", 30}} {
		if err := session.CreateLayer(l.id, l.z); err != nil {
			logger.Printf("layer %s: %v", l.id, err)
		}
	}

	session.OnInput(d.handle)
	d.redraw()

	for !d.quit {
		if err := tick(); err != nil {
			logger.Printf("tick: %v", err)
			return
		}
	}
}

func (d *demo) addLog(s string) {
	if len(d.entries) >= maxLog {
		copy(d.entries, d.entries[1:])
		d.entries = d.entries[:maxLog-1]
	}
	d.entries = append(d.entries, s)
}

func (d *demo) handle(events []terminal.Event) {
	for _, ev := range events {
		if d.cfg.Quit().Matches(ev) {
			d.quit = true
			return
		}
		d.addLog(ev.String())

		w, h := d.s.Size()
		switch ev.Type {
		case terminal.EventKey:
			d.handleKey(ev)
		case terminal.EventMouse:
			switch ev.MouseAction {
			case terminal.MouseActionPress:
				if ev.MouseBtn == terminal.MouseBtnLeft && ev.MouseY == d.objY &&
					ev.MouseX >= d.objX && ev.MouseX < d.objX+3 {
					d.dragging = true
				}
			case terminal.MouseActionRelease:
				d.dragging = false
			}
		case terminal.EventMouseMove:
			if d.dragging && ev.MouseAction == terminal.MouseActionDrag {
				d.objX = min(max(ev.MouseX, 0), max(w-3, 0))
				d.objY = min(max(ev.MouseY, 0), max(h-1, 0))
			}
		case terminal.EventResize:
			d.objX = min(d.objX, max(w-3, 0))
			d.objY = min(d.objY, max(h-1, 0))
		}
	}
	d.redraw()
}

// handleKey toggles the layer controls: F2 log visibility, F3 marker below
// or above the status bar, F5 full redraw
func (d *demo) handleKey(ev terminal.Event) {
	if ev.Action == terminal.KeyRelease {
		return
	}
	switch ev.Key {
	case terminal.KeyF2:
		d.logHidden = !d.logHidden
		if d.logHidden {
			d.s.HideLayer("log")
		} else {
			d.s.ShowLayer("log")
		}
	case terminal.KeyF3:
		d.markerLow = !d.markerLow
		z := 20
		if d.markerLow {
			z = 5
		}
		d.s.SetLayerZ("marker", z)
	case terminal.KeyF5:
		d.s.Sync()
	}
}

func (d *demo) redraw() {
	s := d.s
	w, h := s.Size()
	base := s.DefaultStyle()
	dim := base.WithFg(terminal.RGB{R: 140, G: 140, B: 160})

	s.ClearLayerOpaque("background", base)

	title := " termdemo - keys, mouse, drag the [X] - " + d.cfg.QuitKey + " quits "
	header := base.WithBg(terminal.RGB{R: 40, G: 40, B: 60}).WithAttrs(terminal.AttrBold)
	s.FillRect("background", 0, 0, w, 1, " ", header)
	s.PutString("background", max((w-len(title))/2, 0), 0, title, header)

	s.ClearLayer("log")
	for i, entry := range d.entries {
		y := 2 + i
		if y >= h-2 {
			break
		}
		s.PutString("log", 1, y, entry, dim)
	}

	s.ClearLayer("marker")
	marker := base.WithFg(terminal.RGB{R: 100, G: 255, B: 100}).WithAttrs(terminal.AttrBold)
	if d.dragging {
		marker = marker.WithFg(terminal.RGB{R: 255, G: 255, B: 100})
	}
	s.PutString("marker", d.objX, d.objY, "[X]", marker)

	s.ClearLayer("status")
	status := fmt.Sprintf(" %dx%d | marker (%d,%d) | dragging %v | F2 log F3 depth F5 redraw | 世界 ", w, h, d.objX, d.objY, d.dragging)
	s.FillRect("status", 0, h-1, w, 1, " ", header)
	s.PutString("status", 0, h-1, status, header)
}
