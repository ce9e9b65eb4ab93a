// @focus: #terminal { ansi }
package terminal

import "io"

// Pre-allocated ANSI sequence fragments (avoid allocations during render)
var (
	// CSI sequences
	csi      = []byte("\x1b[")
	csiClear = []byte("\x1b[2J")
	csiHome  = []byte("\x1b[H")
	csiRIS   = []byte("\x1bc") // Reset to Initial State (emergency)
	csiSGR0  = []byte("\x1b[0m")

	// Cursor control
	csiCursorHide = []byte("\x1b[?25l")
	csiCursorShow = []byte("\x1b[?25h")

	// Screen modes
	csiAltScreenEnter = []byte("\x1b[?1049h")
	csiAltScreenExit  = []byte("\x1b[?1049l")
	// DECAWM: Auto-Wrap Mode
	// ?7l disables wrapping (cursor sticks at right edge), preventing scroll when writing to bottom-right corner
	csiAutoWrapOn  = []byte("\x1b[?7h")
	csiAutoWrapOff = []byte("\x1b[?7l")

	// Mouse reporting
	csiMouseClickOn   = []byte("\x1b[?1000h")
	csiMouseClickOff  = []byte("\x1b[?1000l")
	csiMouseDragOn    = []byte("\x1b[?1002h")
	csiMouseDragOff   = []byte("\x1b[?1002l")
	csiMouseMotionOn  = []byte("\x1b[?1003h")
	csiMouseMotionOff = []byte("\x1b[?1003l")
	csiMouseSGROn     = []byte("\x1b[?1006h")
	csiMouseSGROff    = []byte("\x1b[?1006l")

	// Color prefixes (inline, inside an SGR parameter list)
	sgrFgRGB = []byte("38;2;")
	sgrBgRGB = []byte("48;2;")
	sgrFg256 = []byte("38;5;")
	sgrBg256 = []byte("48;5;")
)

// ansiWriter is satisfied by *bytes.Buffer and *bufio.Writer
type ansiWriter interface {
	io.Writer
	io.ByteWriter
}

// writeInt writes an integer without allocation
// Optimized for terminal values (0-255 common, 0-999 typical max)
func writeInt(w ansiWriter, n int) {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		w.WriteByte(byte(n) + '0')
		return
	}
	if n < 100 {
		w.WriteByte(byte(n/10) + '0')
		w.WriteByte(byte(n%10) + '0')
		return
	}
	if n < 1000 {
		w.WriteByte(byte(n/100) + '0')
		w.WriteByte(byte(n/10%10) + '0')
		w.WriteByte(byte(n%10) + '0')
		return
	}
	// Fallback for >999 (rare)
	var buf [20]byte
	i := len(buf) - 1
	for n > 0 {
		buf[i] = byte(n%10) + '0'
		n /= 10
		i--
	}
	w.Write(buf[i+1:])
}

// writeCursorPos writes cursor positioning sequence (0-indexed input)
func writeCursorPos(w ansiWriter, x, y int) {
	w.Write(csi)
	writeInt(w, y+1)
	w.WriteByte(';')
	writeInt(w, x+1)
	w.WriteByte('H')
}

// writeRGB writes "r;g;b"
func writeRGB(w ansiWriter, c RGB) {
	writeInt(w, int(c.R))
	w.WriteByte(';')
	writeInt(w, int(c.G))
	w.WriteByte(';')
	writeInt(w, int(c.B))
}

// writeStyle emits a full SGR sequence for s: reset, attributes, fg, bg
func writeStyle(w ansiWriter, s Style, mode ColorMode) {
	w.Write(csi)
	w.WriteByte('0')

	if s.Attrs&AttrBold != 0 {
		w.Write([]byte(";1"))
	}
	if s.Attrs&AttrDim != 0 {
		w.Write([]byte(";2"))
	}
	if s.Attrs&AttrItalic != 0 {
		w.Write([]byte(";3"))
	}
	if s.Attrs&AttrUnderline != 0 {
		w.Write([]byte(";4"))
	}

	w.WriteByte(';')
	writeColor(w, s.Fg, mode, false)
	w.WriteByte(';')
	writeColor(w, s.Bg, mode, true)

	w.WriteByte('m')
}

// writeColor writes one color parameter group (no CSI prefix, no 'm' suffix)
func writeColor(w ansiWriter, c RGB, mode ColorMode, bg bool) {
	switch mode {
	case ColorModeTrueColor:
		if bg {
			w.Write(sgrBgRGB)
		} else {
			w.Write(sgrFgRGB)
		}
		writeRGB(w, c)
	case ColorMode256:
		if bg {
			w.Write(sgrBg256)
		} else {
			w.Write(sgrFg256)
		}
		writeInt(w, int(RGBTo256(c)))
	default:
		base := 30
		if bg {
			base = 40
		}
		writeInt(w, base+int(RGBTo8(c)))
	}
}
