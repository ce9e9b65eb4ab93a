package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/termengine/terminal"
)

// TcellToRGB converts tcell.Color to RGB
// ColorDefault and palette-less colors resolve to black
func TcellToRGB(c tcell.Color) terminal.RGB {
	if c == tcell.ColorDefault {
		return terminal.RGBBlack
	}
	r, g, b := c.RGB()
	if r < 0 {
		return terminal.RGBBlack
	}
	return terminal.RGB{R: uint8(r), G: uint8(g), B: uint8(b)}
}

// RGBToTcell converts RGB to tcell.Color
func RGBToTcell(rgb terminal.RGB) tcell.Color {
	return tcell.NewRGBColor(int32(rgb.R), int32(rgb.G), int32(rgb.B))
}

// StyleToTcell converts a cell style to tcell.Style
func StyleToTcell(s terminal.Style) tcell.Style {
	return tcell.StyleDefault.
		Foreground(RGBToTcell(s.Fg)).
		Background(RGBToTcell(s.Bg)).
		Bold(s.Attrs&terminal.AttrBold != 0).
		Dim(s.Attrs&terminal.AttrDim != 0).
		Italic(s.Attrs&terminal.AttrItalic != 0).
		Underline(s.Attrs&terminal.AttrUnderline != 0)
}

// TcellSink presents composited frames on a tcell.Screen and translates its
// events, for hosts that already own a tcell screen
type TcellSink struct {
	screen tcell.Screen
	held   tcell.ButtonMask // buttons down at the last mouse event
}

// NewTcellSink wraps an initialized screen
func NewTcellSink(screen tcell.Screen) *TcellSink {
	return &TcellSink{screen: screen}
}

// Present copies buf to the screen and shows it; tcell does its own diffing
func (t *TcellSink) Present(buf *terminal.Buffer) {
	for y := 0; y < buf.Height; y++ {
		row := buf.Cells[y*buf.Width : (y+1)*buf.Width]
		for x := 0; x < len(row); x++ {
			c := row[x]
			mainc := ' '
			var combc []rune
			if !c.Transparent() {
				runes := []rune(c.Glyph)
				mainc = runes[0]
				if len(runes) > 1 {
					combc = runes[1:]
				}
			}
			t.screen.SetContent(x, y, mainc, combc, StyleToTcell(c.Style))
			if c.Width() == 2 {
				// Covered column belongs to the wide glyph
				x++
			}
		}
	}
	t.screen.Show()
}

// Translate maps a tcell event to engine events
// Returns false for events with no engine equivalent
func (t *TcellSink) Translate(ev tcell.Event) (terminal.Event, bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return translateKey(ev)
	case *tcell.EventMouse:
		return t.translateMouse(ev)
	case *tcell.EventResize:
		w, h := ev.Size()
		return terminal.ResizeEvent(w, h), true
	}
	return terminal.Event{}, false
}

func translateMods(m tcell.ModMask) terminal.Modifier {
	var mods terminal.Modifier
	if m&tcell.ModShift != 0 {
		mods |= terminal.ModShift
	}
	if m&tcell.ModAlt != 0 {
		mods |= terminal.ModAlt
	}
	if m&tcell.ModCtrl != 0 {
		mods |= terminal.ModCtrl
	}
	if m&tcell.ModMeta != 0 {
		mods |= terminal.ModSuper
	}
	return mods
}

// tcellKeys maps tcell special keys; control letters are handled by range
var tcellKeys = map[tcell.Key]terminal.Key{
	tcell.KeyUp:         terminal.KeyUp,
	tcell.KeyDown:       terminal.KeyDown,
	tcell.KeyLeft:       terminal.KeyLeft,
	tcell.KeyRight:      terminal.KeyRight,
	tcell.KeyHome:       terminal.KeyHome,
	tcell.KeyEnd:        terminal.KeyEnd,
	tcell.KeyPgUp:       terminal.KeyPageUp,
	tcell.KeyPgDn:       terminal.KeyPageDown,
	tcell.KeyInsert:     terminal.KeyInsert,
	tcell.KeyDelete:     terminal.KeyDelete,
	tcell.KeyEnter:      terminal.KeyEnter,
	tcell.KeyTab:        terminal.KeyTab,
	tcell.KeyEscape:     terminal.KeyEscape,
	tcell.KeyBackspace2: terminal.KeyBackspace,
	tcell.KeyF1:         terminal.KeyF1,
	tcell.KeyF2:         terminal.KeyF2,
	tcell.KeyF3:         terminal.KeyF3,
	tcell.KeyF4:         terminal.KeyF4,
	tcell.KeyF5:         terminal.KeyF5,
	tcell.KeyF6:         terminal.KeyF6,
	tcell.KeyF7:         terminal.KeyF7,
	tcell.KeyF8:         terminal.KeyF8,
	tcell.KeyF9:         terminal.KeyF9,
	tcell.KeyF10:        terminal.KeyF10,
	tcell.KeyF11:        terminal.KeyF11,
	tcell.KeyF12:        terminal.KeyF12,
}

func translateKey(ev *tcell.EventKey) (terminal.Event, bool) {
	mods := translateMods(ev.Modifiers())
	k := ev.Key()

	if tk, ok := tcellKeys[k]; ok {
		return terminal.KeyEvent(tk, mods), true
	}

	switch {
	case k == tcell.KeyRune:
		r := ev.Rune()
		if r == ' ' {
			return terminal.KeyEvent(terminal.KeySpace, mods), true
		}
		return terminal.RuneEvent(r, mods), true
	case k == tcell.KeyBacktab:
		return terminal.KeyEvent(terminal.KeyTab, mods|terminal.ModShift), true
	case k == tcell.KeyBackspace:
		// 0x08: Ctrl+H or Ctrl+Backspace
		return terminal.KeyEvent(terminal.KeyBackspace, mods|terminal.ModCtrl), true
	case k == tcell.KeyNUL:
		return terminal.KeyEvent(terminal.KeySpace, mods|terminal.ModCtrl), true
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return terminal.RuneEvent(rune('a'+k-tcell.KeyCtrlA), mods|terminal.ModCtrl), true
	case k >= tcell.KeyCtrlBackslash && k <= tcell.KeyCtrlUnderscore:
		return terminal.RuneEvent(rune(k)+0x40, mods|terminal.ModCtrl), true
	}
	return terminal.Event{}, false
}

// translateMouse derives press/release/drag from the change in held buttons
func (t *TcellSink) translateMouse(ev *tcell.EventMouse) (terminal.Event, bool) {
	x, y := ev.Position()
	btns := ev.Buttons()
	out := terminal.Event{
		Type:   terminal.EventMouse,
		MouseX: x,
		MouseY: y,
		Mods:   translateMods(ev.Modifiers()),
	}

	wheel := btns & (tcell.WheelUp | tcell.WheelDown | tcell.WheelLeft | tcell.WheelRight)
	if wheel != 0 {
		switch {
		case wheel&tcell.WheelUp != 0:
			out.MouseBtn = terminal.MouseBtnWheelUp
		case wheel&tcell.WheelDown != 0:
			out.MouseBtn = terminal.MouseBtnWheelDown
		case wheel&tcell.WheelLeft != 0:
			out.MouseBtn = terminal.MouseBtnWheelLeft
		default:
			out.MouseBtn = terminal.MouseBtnWheelRight
		}
		out.MouseAction = terminal.MouseActionPress
		return out, true
	}

	btns &= tcell.ButtonPrimary | tcell.ButtonSecondary | tcell.ButtonMiddle
	prev := t.held
	t.held = btns

	switch {
	case btns != 0 && btns == prev:
		out.Type = terminal.EventMouseMove
		out.MouseBtn = buttonOf(btns)
		out.MouseAction = terminal.MouseActionDrag
	case btns&^prev != 0:
		out.MouseBtn = buttonOf(btns &^ prev)
		out.MouseAction = terminal.MouseActionPress
	case prev&^btns != 0:
		out.MouseBtn = buttonOf(prev &^ btns)
		out.MouseAction = terminal.MouseActionRelease
	default:
		out.Type = terminal.EventMouseMove
		out.MouseAction = terminal.MouseActionMove
	}
	return out, true
}

func buttonOf(m tcell.ButtonMask) terminal.MouseButton {
	switch {
	case m&tcell.ButtonPrimary != 0:
		return terminal.MouseBtnLeft
	case m&tcell.ButtonMiddle != 0:
		return terminal.MouseBtnMiddle
	case m&tcell.ButtonSecondary != 0:
		return terminal.MouseBtnRight
	}
	return terminal.MouseBtnNone
}

func (t *TcellSink) present(frame *terminal.Buffer) error {
	t.Present(frame)
	return nil
}

func (t *TcellSink) invalidate() {
	t.screen.Sync()
}
