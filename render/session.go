package render

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/lixenwraith/termengine/config"
	"github.com/lixenwraith/termengine/terminal"
)

var (
	ErrUnknownLayer   = errors.New("unknown layer")
	ErrDuplicateLayer = errors.New("layer already exists")

	errNoTerminal = errors.New("session has no raw terminal")
)

// Options configures a Session
type Options struct {
	// DefaultStyle is used by Put; read-only once the session is built
	DefaultStyle terminal.Style
	// Background fills cells no visible layer covers
	Background terminal.Cell

	EscapeTimeout time.Duration
	ZoomPause     time.Duration

	// Mouse is the reporting mode enabled on Start and restored after a zoom pause
	Mouse terminal.MouseMode

	// ReadTimeout bounds the input wait inside Tick; zero polls without waiting
	ReadTimeout time.Duration

	Logger *log.Logger
}

// OptionsFromConfig maps an engine config onto session options
func OptionsFromConfig(cfg *config.Config, logger *log.Logger) Options {
	opts := Options{
		DefaultStyle:  cfg.DefaultStyle(),
		Background:    cfg.BackgroundCell(),
		EscapeTimeout: cfg.EscapeTimeout(),
		ZoomPause:     cfg.ZoomPause(),
		ReadTimeout:   cfg.PollInterval(),
		Logger:        logger,
	}
	if cfg.Mouse {
		opts.Mouse = terminal.MouseModeClick | terminal.MouseModeDrag
	}
	return opts
}

// Session is the consumer-facing engine: layers in, events out, one Tick per frame
// A Session is driven from a single goroutine
type Session struct {
	term   terminal.Terminal
	parser *terminal.Parser
	sink   frameSink
	stack  *LayerStack

	composite *terminal.Buffer

	style       terminal.Style
	background  terminal.Cell
	mouse       terminal.MouseMode
	readTimeout time.Duration

	onInput func([]terminal.Event)
	logger  *log.Logger
	started bool
}

// frameSink receives each composited frame
type frameSink interface {
	present(frame *terminal.Buffer) error
	// invalidate makes the next present repaint everything
	invalidate()
}

// ansiSink diffs frames onto a raw terminal
type ansiSink struct {
	term     terminal.Terminal
	renderer *terminal.Renderer
	prev     *terminal.Buffer
}

func (a *ansiSink) present(frame *terminal.Buffer) error {
	_, err := a.renderer.Display(frame, a.prev, a.term.ColorMode())
	return err
}

func (a *ansiSink) invalidate() {
	a.renderer.Invalidate()
}

// NewSession creates a session over term; call Start before the first Tick
func NewSession(term terminal.Terminal, opts Options) *Session {
	w, h := term.Size()
	s := newSession(w, h, opts)
	s.term = term
	s.sink = &ansiSink{
		term:     term,
		renderer: terminal.NewRenderer(term),
		prev:     terminal.NewBuffer(0, 0),
	}
	return s
}

// newSession builds the terminal-independent part of a session
func newSession(w, h int, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	parser := terminal.NewParser()
	if opts.EscapeTimeout > 0 {
		parser.EscapeTimeout = opts.EscapeTimeout
	}
	if opts.ZoomPause > 0 {
		parser.ZoomPause = opts.ZoomPause
	}

	return &Session{
		parser:      parser,
		stack:       NewLayerStack(w, h),
		composite:   terminal.NewBuffer(w, h),
		style:       opts.DefaultStyle,
		background:  opts.Background,
		mouse:       opts.Mouse,
		readTimeout: opts.ReadTimeout,
		logger:      logger,
	}
}

// Start initializes the terminal and enables mouse reporting
func (s *Session) Start() error {
	if s.term == nil {
		return errNoTerminal
	}
	if err := s.term.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	if err := s.term.SetMouseMode(s.mouse); err != nil {
		s.term.Fini()
		return fmt.Errorf("mouse mode: %w", err)
	}
	s.started = true

	// Size may differ from construction if the backend could only report it after raw mode
	if w, h := s.term.Size(); w != s.stack.width || h != s.stack.height {
		s.resize(w, h)
	}
	s.logger.Printf("session started %dx%d, color %s", s.stack.width, s.stack.height, s.term.ColorMode())
	return nil
}

// Close restores the terminal
func (s *Session) Close() {
	if !s.started {
		return
	}
	s.started = false
	if s.term != nil {
		s.term.Fini()
	}
}

// Size returns the current screen dimensions
func (s *Session) Size() (int, int) {
	return s.stack.Size()
}

// DefaultStyle returns the style Put applies
func (s *Session) DefaultStyle() terminal.Style {
	return s.style
}

// OnInput registers the handler receiving each tick's events in input order
func (s *Session) OnInput(fn func([]terminal.Event)) {
	s.onInput = fn
}

// CreateLayer adds a screen-sized transparent layer at depth z
func (s *Session) CreateLayer(id string, z int) error {
	if _, err := s.stack.Add(id, z); err != nil {
		return fmt.Errorf("create layer %q: %w", id, err)
	}
	return nil
}

// RemoveLayer deletes a layer
func (s *Session) RemoveLayer(id string) error {
	if err := s.stack.Remove(id); err != nil {
		return fmt.Errorf("remove layer %q: %w", id, err)
	}
	return nil
}

// ShowLayer makes a layer take part in compositing
func (s *Session) ShowLayer(id string) error {
	return s.setVisible(id, true)
}

// HideLayer excludes a layer from compositing; its content is kept
func (s *Session) HideLayer(id string) error {
	return s.setVisible(id, false)
}

func (s *Session) setVisible(id string, visible bool) error {
	if err := s.stack.SetVisible(id, visible); err != nil {
		return fmt.Errorf("layer %q: %w", id, err)
	}
	return nil
}

// SetLayerZ moves a layer to depth z
func (s *Session) SetLayerZ(id string, z int) error {
	if err := s.stack.SetZ(id, z); err != nil {
		return fmt.Errorf("layer %q: %w", id, err)
	}
	return nil
}

// Layer returns the layer for direct buffer access
func (s *Session) Layer(id string) (*Layer, error) {
	l, ok := s.stack.Get(id)
	if !ok {
		return nil, fmt.Errorf("layer %q: %w", id, ErrUnknownLayer)
	}
	return l, nil
}

// Put writes one glyph with the default style
// Coordinates outside the layer are ignored
func (s *Session) Put(id string, x, y int, glyph string) error {
	return s.PutStyled(id, x, y, glyph, s.style)
}

// PutStyled writes one glyph; a wide glyph also blanks the column it covers
func (s *Session) PutStyled(id string, x, y int, glyph string, style terminal.Style) error {
	l, err := s.Layer(id)
	if err != nil {
		return err
	}
	putCell(l.Buf, x, y, terminal.NewCell(glyph, style))
	return nil
}

// PutString writes text left to right from (x, y), advancing by glyph width
// Returns the column after the last glyph
func (s *Session) PutString(id string, x, y int, text string, style terminal.Style) (int, error) {
	l, err := s.Layer(id)
	if err != nil {
		return x, err
	}
	for _, r := range text {
		c := terminal.NewCell(string(r), style)
		putCell(l.Buf, x, y, c)
		x += c.Width()
	}
	return x, nil
}

func putCell(buf *terminal.Buffer, x, y int, c terminal.Cell) {
	if !buf.Set(x, y, c) {
		return
	}
	if c.Width() == 2 {
		buf.Set(x+1, y, terminal.NewCell(" ", c.Style))
	}
}

// FillRect writes glyph over the rectangle, clipped to the layer
func (s *Session) FillRect(id string, x, y, w, h int, glyph string, style terminal.Style) error {
	l, err := s.Layer(id)
	if err != nil {
		return err
	}
	l.Buf.FillRect(x, y, w, h, terminal.NewCell(glyph, style))
	return nil
}

// ClearLayer makes every cell of the layer transparent
func (s *Session) ClearLayer(id string) error {
	l, err := s.Layer(id)
	if err != nil {
		return err
	}
	l.Buf.Clear()
	return nil
}

// ClearLayerOpaque fills the layer with blanks in style, hiding everything below
func (s *Session) ClearLayerOpaque(id string, style terminal.Style) error {
	l, err := s.Layer(id)
	if err != nil {
		return err
	}
	l.Buf.Fill(terminal.NewCell(" ", style))
	return nil
}

// Sync forces the next frame to repaint the whole screen
func (s *Session) Sync() {
	s.sink.invalidate()
}

// Tick runs one frame: read, parse, resize, dispatch, mouse pause, render
func (s *Session) Tick(now time.Time) error {
	if s.term == nil {
		return errNoTerminal
	}
	data, err := s.term.Read(s.readTimeout)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	events := s.parser.ParseAt(now, data)

	if s.term.Resized() {
		if w, h := s.term.Size(); w != s.stack.width || h != s.stack.height {
			s.resize(w, h)
			events = append(events, terminal.ResizeEvent(w, h))
		}
	}

	s.deliver(events)

	switch s.parser.MouseTransition(now) {
	case terminal.MouseDisable:
		s.logger.Printf("mouse reporting paused for zoom")
		if err := s.term.SetMouseMode(terminal.MouseModeNone); err != nil {
			return fmt.Errorf("pause mouse: %w", err)
		}
	case terminal.MouseEnable:
		s.logger.Printf("mouse reporting resumed")
		if err := s.term.SetMouseMode(s.mouse); err != nil {
			return fmt.Errorf("resume mouse: %w", err)
		}
	}

	return s.Render()
}

// deliver hands one tick's events to the input handler
func (s *Session) deliver(events []terminal.Event) {
	if len(events) > 0 && s.onInput != nil {
		s.onInput(events)
	}
}

// Render composites visible layers and presents the frame
func (s *Session) Render() error {
	s.stack.Composite(s.composite, s.background)
	if err := s.sink.present(s.composite); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}

// resize reallocates layers and the composite; layer content is lost
func (s *Session) resize(w, h int) {
	s.logger.Printf("resize %dx%d -> %dx%d", s.stack.width, s.stack.height, w, h)
	s.stack.Resize(w, h)
	s.composite.Resize(w, h)
}
