package terminal

import (
	"io"
	"os"
	"sync"
	"time"
)

// Terminal provides low-level terminal access for a single host loop
type Terminal interface {
	io.Writer

	// Init enters raw mode, alternate screen buffer, hides cursor
	Init() error

	// Fini restores terminal state. Safe to call multiple times
	Fini()

	// Size returns current terminal dimensions
	Size() (width, height int)

	// Resized reports a size change since the last call
	Resized() bool

	// ColorMode returns the configured color capability
	ColorMode() ColorMode

	// Read returns pending input bytes, waiting at most timeout
	Read(timeout time.Duration) ([]byte, error)

	// SetCursorVisible shows/hides cursor
	SetCursorVisible(visible bool)

	// SetMouseMode enables/disables mouse event reporting
	// Modes can be combined: MouseModeClick | MouseModeDrag
	SetMouseMode(mode MouseMode) error

	// MouseMode returns the mode last set with SetMouseMode
	MouseMode() MouseMode
}

// termImpl implements Terminal using the Backend interface
type termImpl struct {
	backend   Backend
	colorMode ColorMode

	mu            sync.Mutex
	initialized   bool
	finalized     bool
	cursorVisible bool
	mouseMode     MouseMode
}

// New creates a Terminal on stdin/stdout
// Color mode defaults to DetectColorMode()
func New(colorMode ...ColorMode) Terminal {
	return NewWithBackend(newBackend(), colorMode...)
}

// NewWithBackend creates a Terminal over an explicit backend
func NewWithBackend(b Backend, colorMode ...ColorMode) Terminal {
	c := DetectColorMode()
	if len(colorMode) > 0 {
		c = colorMode[0]
	}
	return &termImpl{
		backend:   b,
		colorMode: c,
	}
}

// Init enters raw mode and sets up terminal
func (t *termImpl) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return nil
	}

	// Initialize backend (raw mode)
	if err := t.backend.Init(); err != nil {
		return err
	}

	// Enter alternate screen, hide cursor
	t.backend.Write(csiAltScreenEnter)
	t.backend.Write(csiCursorHide)

	// DISABLE AUTO-WRAP
	// Prevents terminal scroll/wrap on bottom-right corner write
	t.backend.Write(csiAutoWrapOff)

	t.backend.Write(csiSGR0)
	t.backend.Write(csiClear)

	t.initialized = true
	return nil
}

// Fini restores terminal state
func (t *termImpl) Fini() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return
	}

	// Disable mouse before other cleanup
	if t.mouseMode != MouseModeNone {
		t.backend.Write(mouseOffSequence(t.mouseMode))
	}

	t.backend.Write(csiCursorShow)
	t.backend.Write(csiAltScreenExit)

	// Re-enable Auto-Wrap AFTER exiting alt screen to ensure the main buffer has wrap enabled
	t.backend.Write(csiAutoWrapOn)
	t.backend.Write(csiSGR0)

	t.backend.Fini()
	t.finalized = true
}

func (t *termImpl) Size() (int, int) {
	return t.backend.Size()
}

func (t *termImpl) Resized() bool {
	return t.backend.Resized()
}

func (t *termImpl) ColorMode() ColorMode {
	return t.colorMode
}

func (t *termImpl) Read(timeout time.Duration) ([]byte, error) {
	return t.backend.Read(timeout)
}

// Write passes frame bytes to the backend
func (t *termImpl) Write(p []byte) (int, error) {
	if err := t.backend.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (t *termImpl) SetCursorVisible(visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized || t.cursorVisible == visible {
		return
	}
	t.cursorVisible = visible
	if visible {
		t.backend.Write(csiCursorShow)
	} else {
		t.backend.Write(csiCursorHide)
	}
}

// SetMouseMode enables or disables mouse reporting, writing only the delta
func (t *termImpl) SetMouseMode(mode MouseMode) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized || t.finalized {
		return nil
	}

	seq := mouseModeDelta(t.mouseMode, mode)
	t.mouseMode = mode
	if len(seq) == 0 {
		return nil
	}
	return t.backend.Write(seq)
}

func (t *termImpl) MouseMode() MouseMode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mouseMode
}

// mouseModeDelta builds the sequences moving reporting from old to mode
func mouseModeDelta(old, mode MouseMode) []byte {
	var seq []byte

	// Disable modes no longer needed (reverse order of enable)
	if old&MouseModeMotion != 0 && mode&MouseModeMotion == 0 {
		seq = append(seq, csiMouseMotionOff...)
	}
	if old&MouseModeDrag != 0 && mode&MouseModeDrag == 0 {
		seq = append(seq, csiMouseDragOff...)
	}
	if old&MouseModeClick != 0 && mode&MouseModeClick == 0 {
		seq = append(seq, csiMouseClickOff...)
	}
	if mode == MouseModeNone && old != MouseModeNone {
		seq = append(seq, csiMouseSGROff...)
	}

	// Enable SGR first if enabling any mouse mode
	if mode != MouseModeNone && old == MouseModeNone {
		seq = append(seq, csiMouseSGROn...)
	}
	if mode&MouseModeClick != 0 && old&MouseModeClick == 0 {
		seq = append(seq, csiMouseClickOn...)
	}
	if mode&MouseModeDrag != 0 && old&MouseModeDrag == 0 {
		seq = append(seq, csiMouseDragOn...)
	}
	if mode&MouseModeMotion != 0 && old&MouseModeMotion == 0 {
		seq = append(seq, csiMouseMotionOn...)
	}
	return seq
}

func mouseOffSequence(mode MouseMode) []byte {
	return mouseModeDelta(mode, MouseModeNone)
}

// EmergencyReset attempts to restore terminal to sane state
// Call this from panic recovery if Fini() cannot be called normally
func EmergencyReset(w io.Writer) {
	// Disable mouse tracking
	w.Write(csiMouseMotionOff)
	w.Write(csiMouseDragOff)
	w.Write(csiMouseClickOff)
	w.Write(csiMouseSGROff)

	w.Write(csiCursorShow)
	w.Write(csiAltScreenExit)
	w.Write(csiSGR0)
	w.Write(csiAutoWrapOn)
	w.Write(csiRIS)

	// Flush if it's a file
	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Attempt raw mode reset - escape sequences alone don't restore termios
	// This is best-effort; ignore errors in crash context
	resetTerminalMode()
}
