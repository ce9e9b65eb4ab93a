package render

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/termengine/terminal"
)

// TcellHost drives a Session from a tcell screen in place of the raw backend
// tcell owns input decoding and output diffing; the session keeps layers,
// compositing and dispatch
// The Ctrl+scroll zoom pause is a raw-parser feature and does not apply here
type TcellHost struct {
	screen  tcell.Screen
	sink    *TcellSink
	session *Session

	events  chan tcell.Event
	quit    chan struct{}
	timeout time.Duration
	running bool
}

// NewTcellHost wraps an initialized screen; the caller keeps ownership and calls Fini
func NewTcellHost(screen tcell.Screen, opts Options) *TcellHost {
	w, h := screen.Size()
	s := newSession(w, h, opts)
	sink := NewTcellSink(screen)
	s.sink = sink

	return &TcellHost{
		screen:  screen,
		sink:    sink,
		session: s,
		events:  make(chan tcell.Event, 64),
		quit:    make(chan struct{}),
		timeout: opts.ReadTimeout,
	}
}

// Session returns the session whose layers the host presents
func (h *TcellHost) Session() *Session {
	return h.session
}

// Start enables mouse reporting and begins polling screen events
func (h *TcellHost) Start() {
	if h.running {
		return
	}
	h.running = true

	if m := h.session.mouse; m != terminal.MouseModeNone {
		var flags []tcell.MouseFlags
		if m&terminal.MouseModeClick != 0 {
			flags = append(flags, tcell.MouseButtonEvents)
		}
		if m&terminal.MouseModeDrag != 0 {
			flags = append(flags, tcell.MouseDragEvents)
		}
		if m&terminal.MouseModeMotion != 0 {
			flags = append(flags, tcell.MouseMotionEvents)
		}
		h.screen.EnableMouse(flags...)
	}
	h.screen.HideCursor()

	go h.poll()
	h.session.logger.Printf("tcell host started")
}

// poll forwards screen events until Close or until the screen is finalized
func (h *TcellHost) poll() {
	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case h.events <- ev:
		case <-h.quit:
			return
		}
	}
}

// Close stops event polling and disables the mouse; the screen stays initialized
func (h *TcellHost) Close() {
	if !h.running {
		return
	}
	h.running = false
	close(h.quit)
	h.screen.DisableMouse()
}

// Tick waits up to the read timeout for events, dispatches them, then renders
func (h *TcellHost) Tick() error {
	var events []terminal.Event

	timer := time.NewTimer(h.timeout)
	defer timer.Stop()

	select {
	case ev := <-h.events:
		events = h.translate(events, ev)
	case <-timer.C:
	}

	for drained := false; !drained; {
		select {
		case ev := <-h.events:
			events = h.translate(events, ev)
		default:
			drained = true
		}
	}

	h.session.deliver(events)
	return h.session.Render()
}

// translate appends the engine form of ev; resizes only surface when the size changed
func (h *TcellHost) translate(events []terminal.Event, ev tcell.Event) []terminal.Event {
	out, ok := h.sink.Translate(ev)
	if !ok {
		return events
	}
	if out.Type == terminal.EventResize {
		w, ht := h.session.Size()
		if out.Width == w && out.Height == ht {
			return events
		}
		h.session.resize(out.Width, out.Height)
	}
	return append(events, out)
}
