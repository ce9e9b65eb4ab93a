// @lixen: #focus{sys[term,io,input]}
package terminal

import (
	"time"
	"unicode/utf8"
)

const (
	// DefaultEscapeTimeout is how long a trailing ESC waits for a continuation
	// before it is reported as the Escape key
	DefaultEscapeTimeout = 300 * time.Millisecond

	// DefaultZoomPause is how long mouse reporting stays off after Ctrl+scroll
	DefaultZoomPause = time.Second

	maxCSIParams   = 16
	maxCSIBytes    = 4
	maxParamValue  = 65535
	maxPendingText = 4096
)

// parseState is the position in the escape sequence grammar
type parseState uint8

const (
	stateNormal parseState = iota
	stateCSILeader
	stateCSIArgs
	stateCSIIntermed
	stateSS3
)

// csiParam is one numeric CSI parameter; sub marks a ':' sub-parameter of the
// preceding top-level parameter
type csiParam struct {
	val int
	sub bool
}

// Parser is the persistent input decoder state
// A Parser is owned by exactly one caller; it carries partial sequences, partial
// UTF-8 and a pending ESC between Parse calls
type Parser struct {
	// EscapeTimeout defaults to DefaultEscapeTimeout when zero
	EscapeTimeout time.Duration
	// ZoomPause defaults to DefaultZoomPause when zero
	ZoomPause time.Duration

	state parseState
	now   time.Time

	// CSI accumulation
	params   [maxCSIParams]csiParam
	nparams  int
	overflow bool
	leader   [maxCSIBytes]byte
	nleader  int
	inter    [maxCSIBytes]byte
	ninter   int
	seqAlt   bool      // sequence introduced by ESC ESC
	seqC1    bool      // sequence introduced by the 0x9B byte
	seqAt    time.Time // when the current sequence started

	// UTF-8 continuation
	utf8Buf  [utf8.UTFMax]byte
	utf8Len  int
	utf8Need int

	// ESC disambiguation
	escPending int
	escAt      time.Time

	// Accumulated printable run, emitted as one EventText
	text []byte

	// Ctrl+scroll zoom pause
	mouseSuspended bool
	mouseNotify    bool
	mouseResumeAt  time.Time

	events []Event
}

// NewParser creates a parser with default timeouts
func NewParser() *Parser {
	return &Parser{
		EscapeTimeout: DefaultEscapeTimeout,
		ZoomPause:     DefaultZoomPause,
		text:          make([]byte, 0, 64),
	}
}

// Parse decodes a chunk using the wall clock
func (p *Parser) Parse(chunk []byte) []Event {
	return p.ParseAt(time.Now(), chunk)
}

// ParseAt decodes chunk as if received at now and returns events in input order
// A pending ESC older than the escape timeout is resolved before chunk is read,
// so calling with an empty chunk once per tick is how a lone Escape surfaces
func (p *Parser) ParseAt(now time.Time, chunk []byte) []Event {
	p.now = now
	p.events = nil

	p.expire()

	for _, b := range chunk {
		p.feed(b)
	}
	p.flushText()

	return p.events
}

// Pending reports whether input is held waiting for more bytes or the timeout
func (p *Parser) Pending() bool {
	return p.escPending > 0 || p.state != stateNormal || p.utf8Need > 0
}

// Reset drops all partial input state; the mouse pause window is kept
func (p *Parser) Reset() {
	p.state = stateNormal
	p.resetSeq()
	p.utf8Len, p.utf8Need = 0, 0
	p.escPending = 0
	p.text = p.text[:0]
}

// MouseTransition reports, at most once per change, whether the host must
// disable or re-enable mouse reporting; call once per tick
func (p *Parser) MouseTransition(now time.Time) MouseTransition {
	if p.mouseNotify {
		p.mouseNotify = false
		return MouseDisable
	}
	if p.mouseSuspended && !now.Before(p.mouseResumeAt) {
		p.mouseSuspended = false
		return MouseEnable
	}
	return MouseUnchanged
}

// MouseSuspended reports whether a zoom pause is in effect
func (p *Parser) MouseSuspended() bool {
	return p.mouseSuspended
}

func (p *Parser) escapeTimeout() time.Duration {
	if p.EscapeTimeout <= 0 {
		return DefaultEscapeTimeout
	}
	return p.EscapeTimeout
}

func (p *Parser) zoomPause() time.Duration {
	if p.ZoomPause <= 0 {
		return DefaultZoomPause
	}
	return p.ZoomPause
}

// expire resolves input left ambiguous by the previous chunk
func (p *Parser) expire() {
	timeout := p.escapeTimeout()

	if p.escPending > 0 && p.now.Sub(p.escAt) > timeout {
		mods := ModNone
		if p.escPending > 1 {
			mods = ModAlt
		}
		p.escPending = 0
		p.emit(KeyEvent(KeyEscape, mods))
		return
	}

	if p.state == stateNormal || p.now.Sub(p.seqAt) <= timeout {
		return
	}
	// A bare "ESC [" or "ESC O" that never continued was Alt+'[' or Alt+'O';
	// any other stalled sequence is dropped so the next byte starts fresh
	var ev Event
	switch {
	case p.state == stateCSILeader && p.nleader == 0 && !p.seqC1:
		ev = RuneEvent('[', ModAlt)
	case p.state == stateSS3:
		ev = RuneEvent('O', ModAlt)
	}
	p.state = stateNormal
	p.resetSeq()
	if ev.Type == EventKey && ev.Key != KeyNone {
		p.emit(ev)
	}
}

// feed advances the state machine by one byte
func (p *Parser) feed(b byte) {
	switch p.state {
	case stateCSILeader:
		if b >= 0x3c && b <= 0x3f {
			if p.nleader < maxCSIBytes {
				p.leader[p.nleader] = b
				p.nleader++
			}
			return
		}
		p.state = stateCSIArgs
		fallthrough
	case stateCSIArgs:
		p.csiArgs(b)
	case stateCSIIntermed:
		p.csiIntermed(b)
	case stateSS3:
		p.ss3(b)
	default:
		p.normal(b)
	}
}

// normal handles a byte outside any escape sequence
func (p *Parser) normal(b byte) {
	if p.utf8Need > 0 {
		if b&0xc0 == 0x80 {
			p.utf8Buf[p.utf8Len] = b
			p.utf8Len++
			p.utf8Need--
			if p.utf8Need == 0 {
				seq := p.utf8Buf[:p.utf8Len]
				if utf8.Valid(seq) {
					p.appendText(seq...)
				}
				p.utf8Len = 0
			}
			return
		}
		// Broken sequence: drop the partial, the byte starts over
		p.utf8Len, p.utf8Need = 0, 0
	}

	if p.escPending > 0 {
		p.afterEscape(b)
		return
	}

	switch {
	case b == 0x1b:
		p.flushText()
		p.escPending = 1
		p.escAt = p.now
	case b == 0x9b:
		p.flushText()
		p.beginCSI(false)
		p.seqC1 = true
	case b == ' ':
		p.emit(KeyEvent(KeySpace, ModNone))
	case b > 0x20 && b < 0x7f:
		p.appendText(b)
	case b < 0x20 || b == 0x7f:
		p.emit(controlEvent(b, ModNone))
	default:
		n := utf8SeqLen(b)
		if n < 2 {
			// Stray continuation or invalid lead byte
			return
		}
		p.utf8Buf[0] = b
		p.utf8Len = 1
		p.utf8Need = n - 1
	}
}

// afterEscape resolves a pending ESC with the byte that followed it
func (p *Parser) afterEscape(b byte) {
	if b == 0x1b {
		if p.escPending == 1 {
			p.escPending = 2
			p.escAt = p.now
			return
		}
		// Third ESC: the first two were Alt+Escape
		p.emit(KeyEvent(KeyEscape, ModAlt))
		p.escPending = 1
		p.escAt = p.now
		return
	}

	doubled := p.escPending > 1
	p.escPending = 0

	switch {
	case b == '[':
		p.beginCSI(doubled)
		return
	case b == 'O':
		p.beginSeq(doubled)
		p.state = stateSS3
		return
	}

	if doubled {
		// ESC ESC x: a standalone Escape, then Alt+x
		p.emit(KeyEvent(KeyEscape, ModNone))
	}

	switch {
	case b == ' ':
		p.emit(KeyEvent(KeySpace, ModAlt))
	case b > 0x20 && b < 0x7f:
		p.emit(RuneEvent(rune(b), ModAlt))
	case b < 0x20 || b == 0x7f:
		p.emit(controlEvent(b, ModAlt))
	default:
		// Non-ASCII cannot be Meta-prefixed; report the ESC on its own
		p.emit(KeyEvent(KeyEscape, ModNone))
		p.normal(b)
	}
}

// controlEvent maps a C0 control byte or DEL to a key event
func controlEvent(b byte, mods Modifier) Event {
	switch b {
	case 0x00: // Ctrl+Space or Ctrl+@
		return KeyEvent(KeySpace, mods|ModCtrl)
	case 0x08: // Ctrl+H or Ctrl+Backspace
		return KeyEvent(KeyBackspace, mods|ModCtrl)
	case 0x09:
		return KeyEvent(KeyTab, mods)
	case 0x0a, 0x0d:
		return KeyEvent(KeyEnter, mods)
	case 0x1b:
		return KeyEvent(KeyEscape, mods)
	case 0x7f:
		return KeyEvent(KeyBackspace, mods)
	}
	if b <= 0x1a {
		return RuneEvent(rune('a'+b-1), mods|ModCtrl)
	}
	// 0x1c-0x1f: Ctrl+\ Ctrl+] Ctrl+^ Ctrl+_
	return RuneEvent(rune(b)+0x40, mods|ModCtrl)
}

// ss3 handles the byte after "ESC O"
func (p *Parser) ss3(b byte) {
	alt := p.seqAlt
	p.state = stateNormal
	p.resetSeq()

	var k Key
	switch b {
	case 'A':
		k = KeyUp
	case 'B':
		k = KeyDown
	case 'C':
		k = KeyRight
	case 'D':
		k = KeyLeft
	case 'H':
		k = KeyHome
	case 'F':
		k = KeyEnd
	case 'P':
		k = KeyF1
	case 'Q':
		k = KeyF2
	case 'R':
		k = KeyF3
	case 'S':
		k = KeyF4
	case 0x1b:
		p.normal(b)
		return
	default:
		return
	}
	mods := ModNone
	if alt {
		mods = ModAlt
	}
	p.emit(KeyEvent(k, mods))
}

// appendText extends the pending text run
func (p *Parser) appendText(bs ...byte) {
	if len(p.text)+len(bs) > maxPendingText {
		p.flushText()
	}
	p.text = append(p.text, bs...)
}

// flushText emits the pending text run, if any
func (p *Parser) flushText() {
	if len(p.text) == 0 {
		return
	}
	p.events = append(p.events, TextEvent(string(p.text)))
	p.text = p.text[:0]
}

// emit appends ev after any pending text so output order matches input order
func (p *Parser) emit(ev Event) {
	p.flushText()
	p.events = append(p.events, ev)
}

// utf8SeqLen returns expected UTF-8 sequence length from start byte, 0 if invalid
func utf8SeqLen(b byte) int {
	if b < 0x80 {
		return 1
	}
	if b&0xe0 == 0xc0 {
		return 2
	}
	if b&0xf0 == 0xe0 {
		return 3
	}
	if b&0xf8 == 0xf0 {
		return 4
	}
	return 0
}
