package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lixenwraith/termengine/config"
	"github.com/lixenwraith/termengine/terminal"
)

// scriptBackend serves queued input chunks and records output
type scriptBackend struct {
	out     bytes.Buffer
	input   [][]byte
	w, h    int
	resized bool
}

func (b *scriptBackend) Init() error      { return nil }
func (b *scriptBackend) Fini()            {}
func (b *scriptBackend) Size() (int, int) { return b.w, b.h }
func (b *scriptBackend) Write(p []byte) error {
	b.out.Write(p)
	return nil
}

func (b *scriptBackend) Read(time.Duration) ([]byte, error) {
	if len(b.input) == 0 {
		return nil, nil
	}
	chunk := b.input[0]
	b.input = b.input[1:]
	return chunk, nil
}

func (b *scriptBackend) Resized() bool {
	r := b.resized
	b.resized = false
	return r
}

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, w, h int, opts Options) (*Session, *scriptBackend) {
	t.Helper()
	b := &scriptBackend{w: w, h: h}
	s := NewSession(terminal.NewWithBackend(b, terminal.ColorModeTrueColor), opts)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(s.Close)
	b.out.Reset()
	return s, b
}

func TestSession_RenderDiff(t *testing.T) {
	s, b := newTestSession(t, 4, 2, Options{DefaultStyle: plain})

	if err := s.CreateLayer("main", 0); err != nil {
		t.Fatal(err)
	}
	s.Put("main", 1, 0, "x")
	if err := s.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(b.out.String(), "x") {
		t.Errorf("frame missing glyph: %q", b.out.String())
	}

	b.out.Reset()
	s.Render()
	if b.out.Len() != 0 {
		t.Errorf("unchanged frame wrote %q", b.out.String())
	}

	s.Put("main", 1, 0, "y")
	s.Render()
	if want := "\x1b[1;2H\x1b[0;38;2;255;255;255;48;2;0;0;0my"; b.out.String() != want {
		t.Errorf("diff = %q, want %q", b.out.String(), want)
	}
}

func TestSession_LayerErrors(t *testing.T) {
	s, _ := newTestSession(t, 4, 2, Options{})

	if err := s.Put("nope", 0, 0, "x"); !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("Put = %v", err)
	}
	if err := s.HideLayer("nope"); !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("HideLayer = %v", err)
	}
	if err := s.RemoveLayer("nope"); !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("RemoveLayer = %v", err)
	}

	s.CreateLayer("a", 0)
	if err := s.CreateLayer("a", 1); !errors.Is(err, ErrDuplicateLayer) {
		t.Errorf("CreateLayer = %v", err)
	}

	// Out-of-range writes are ignored, not clamped
	for _, p := range [][2]int{{-1, 0}, {4, 0}, {0, 2}, {100, 100}} {
		if err := s.Put("a", p[0], p[1], "x"); err != nil {
			t.Errorf("Put(%v) = %v", p, err)
		}
	}
	l, _ := s.Layer("a")
	for _, c := range l.Buf.Cells {
		if !c.Transparent() {
			t.Fatal("out-of-range Put changed the layer")
		}
	}
}

func TestSession_DrawingOps(t *testing.T) {
	s, _ := newTestSession(t, 6, 3, Options{DefaultStyle: plain})
	s.CreateLayer("a", 0)
	l, _ := s.Layer("a")

	s.PutStyled("a", 0, 0, "世", plain)
	if l.Buf.Get(0, 0).Glyph != "世" || l.Buf.Get(1, 0) != terminal.NewCell(" ", plain) {
		t.Error("wide glyph should blank its covered column")
	}

	end, _ := s.PutString("a", 0, 1, "a世b", plain)
	if end != 4 || l.Buf.Get(3, 1).Glyph != "b" {
		t.Errorf("PutString end=%d row=%+v", end, l.Buf.Cells[6:12])
	}

	s.FillRect("a", 4, 0, 10, 10, "#", plain)
	if l.Buf.Get(5, 2).Glyph != "#" || l.Buf.Get(3, 2).Glyph != "" {
		t.Error("FillRect should clip to the layer")
	}

	red := plain.WithBg(terminal.RGB{R: 255})
	s.ClearLayerOpaque("a", red)
	for _, c := range l.Buf.Cells {
		if c != terminal.NewCell(" ", red) {
			t.Fatal("ClearLayerOpaque missed a cell")
		}
	}

	s.ClearLayer("a")
	for _, c := range l.Buf.Cells {
		if !c.Transparent() {
			t.Fatal("ClearLayer left an opaque cell")
		}
	}
}

func TestSession_HideShow(t *testing.T) {
	bg := terminal.NewCell(".", plain)
	s, b := newTestSession(t, 2, 1, Options{Background: bg})
	s.CreateLayer("a", 0)
	s.FillRect("a", 0, 0, 2, 1, "x", plain)

	s.Render()
	s.HideLayer("a")
	b.out.Reset()
	s.Render()
	if !strings.HasSuffix(b.out.String(), "..") {
		t.Errorf("hidden layer frame = %q", b.out.String())
	}

	s.ShowLayer("a")
	b.out.Reset()
	s.Render()
	if !strings.HasSuffix(b.out.String(), "xx") {
		t.Errorf("shown layer frame = %q", b.out.String())
	}
}

func TestSession_TickDispatchesInOrder(t *testing.T) {
	s, b := newTestSession(t, 4, 2, Options{})

	var got [][]terminal.Event
	s.OnInput(func(evs []terminal.Event) {
		got = append(got, append([]terminal.Event(nil), evs...))
	})

	b.input = [][]byte{[]byte("ab\x1b[A")}
	if err := s.Tick(t0); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(got) != 1 || len(got[0]) != 2 {
		t.Fatalf("batches = %v", got)
	}
	if got[0][0] != terminal.TextEvent("ab") || got[0][1] != terminal.KeyEvent(terminal.KeyUp, terminal.ModNone) {
		t.Errorf("events = %v", got[0])
	}

	// Idle tick: handler not called
	s.Tick(t0.Add(time.Millisecond))
	if len(got) != 1 {
		t.Errorf("idle tick dispatched %v", got[1:])
	}
}

func TestSession_TickEscapeTimeout(t *testing.T) {
	s, b := newTestSession(t, 4, 2, Options{EscapeTimeout: 50 * time.Millisecond})

	var got []terminal.Event
	s.OnInput(func(evs []terminal.Event) { got = append(got, evs...) })

	b.input = [][]byte{{0x1b}}
	s.Tick(t0)
	s.Tick(t0.Add(20 * time.Millisecond))
	if len(got) != 0 {
		t.Fatalf("escape resolved early: %v", got)
	}
	s.Tick(t0.Add(60 * time.Millisecond))
	if len(got) != 1 || got[0] != terminal.KeyEvent(terminal.KeyEscape, terminal.ModNone) {
		t.Errorf("events = %v", got)
	}
}

func TestSession_TickResize(t *testing.T) {
	s, b := newTestSession(t, 4, 2, Options{})
	s.CreateLayer("a", 0)
	s.Put("a", 0, 0, "x")

	var got []terminal.Event
	s.OnInput(func(evs []terminal.Event) { got = append(got, evs...) })

	b.w, b.h = 8, 3
	b.resized = true
	b.out.Reset()
	if err := s.Tick(t0); err != nil {
		t.Fatal(err)
	}

	if len(got) != 1 || got[0] != terminal.ResizeEvent(8, 3) {
		t.Fatalf("events = %v", got)
	}
	if w, h := s.Size(); w != 8 || h != 3 {
		t.Errorf("Size = %dx%d", w, h)
	}
	l, _ := s.Layer("a")
	if !l.Buf.Get(0, 0).Transparent() {
		t.Error("layers are cleared on resize")
	}
	if !strings.HasPrefix(b.out.String(), "\x1b[2J") {
		t.Errorf("frame after resize should clear: %q", b.out.String())
	}

	// Signal without a size change is not an event
	got = nil
	b.resized = true
	s.Tick(t0)
	if len(got) != 0 {
		t.Errorf("spurious resize %v", got)
	}
}

func TestSession_ZoomPause(t *testing.T) {
	mouse := terminal.MouseModeClick | terminal.MouseModeDrag
	s, b := newTestSession(t, 4, 2, Options{Mouse: mouse, ZoomPause: 100 * time.Millisecond})

	var got []terminal.Event
	s.OnInput(func(evs []terminal.Event) { got = append(got, evs...) })

	b.input = [][]byte{[]byte("\x1b[<80;1;1M")}
	s.Tick(t0)
	if len(got) != 0 {
		t.Errorf("ctrl+scroll produced %v", got)
	}
	if !strings.Contains(b.out.String(), "\x1b[?1006l") {
		t.Errorf("mouse not disabled: %q", b.out.String())
	}

	b.out.Reset()
	s.Tick(t0.Add(50 * time.Millisecond))
	if strings.Contains(b.out.String(), "\x1b[?1000h") {
		t.Error("mouse re-enabled inside the window")
	}

	s.Tick(t0.Add(150 * time.Millisecond))
	if !strings.Contains(b.out.String(), "\x1b[?1006h\x1b[?1000h\x1b[?1002h") {
		t.Errorf("mouse not restored: %q", b.out.String())
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg, err := config.Parse([]byte("escape_timeout_ms = 120\npoll_ms = 5\nmouse = true\n"))
	if err != nil {
		t.Fatal(err)
	}
	opts := OptionsFromConfig(cfg, nil)
	if opts.EscapeTimeout != 120*time.Millisecond || opts.ReadTimeout != 5*time.Millisecond {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Mouse&terminal.MouseModeClick == 0 {
		t.Error("mouse = true should enable click reporting")
	}
	if opts.DefaultStyle != cfg.DefaultStyle() || opts.Background != cfg.BackgroundCell() {
		t.Error("style and background should come from config")
	}
}
