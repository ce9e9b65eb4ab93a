// @lixen: #focus{sys[term,io,input]}
package terminal

import "unicode/utf8"

// beginSeq starts a new escape sequence with empty accumulators
func (p *Parser) beginSeq(alt bool) {
	p.resetSeq()
	p.seqAlt = alt
	p.seqAt = p.now
}

// beginCSI enters the leader state
func (p *Parser) beginCSI(alt bool) {
	p.beginSeq(alt)
	p.state = stateCSILeader
}

// resetSeq clears sequence accumulators; state is left to the caller
func (p *Parser) resetSeq() {
	p.nparams = 0
	p.overflow = false
	p.nleader = 0
	p.ninter = 0
	p.seqAlt = false
	p.seqC1 = false
	p.seqAt = p.now
}

// abort drops the current sequence without an event
// An ESC that broke the sequence starts a new one
func (p *Parser) abort(b byte) {
	p.state = stateNormal
	p.resetSeq()
	if b == 0x1b {
		p.normal(b)
	}
}

// openParam starts a new parameter slot
func (p *Parser) openParam(sub bool) {
	if p.nparams >= maxCSIParams {
		p.overflow = true
		return
	}
	p.params[p.nparams] = csiParam{sub: sub}
	p.nparams++
}

// csiArgs handles a byte in the parameter state
func (p *Parser) csiArgs(b byte) {
	switch {
	case b >= '0' && b <= '9':
		if p.nparams == 0 {
			p.openParam(false)
		}
		if p.overflow {
			return
		}
		cur := &p.params[p.nparams-1]
		cur.val = cur.val*10 + int(b-'0')
		if cur.val > maxParamValue {
			cur.val = maxParamValue
		}
	case b == ';':
		if p.nparams == 0 {
			p.openParam(false)
		}
		p.openParam(false)
	case b == ':':
		if p.nparams == 0 {
			p.openParam(false)
		}
		p.openParam(true)
	case b >= 0x20 && b <= 0x2f:
		p.state = stateCSIIntermed
		p.csiIntermed(b)
	case b >= 0x40 && b <= 0x7e:
		p.dispatch(b)
	default:
		p.abort(b)
	}
}

// csiIntermed handles a byte in the intermediate state
func (p *Parser) csiIntermed(b byte) {
	switch {
	case b >= 0x20 && b <= 0x2f:
		if p.ninter < maxCSIBytes {
			p.inter[p.ninter] = b
			p.ninter++
		}
	case b >= 0x40 && b <= 0x7e:
		p.dispatch(b)
	default:
		p.abort(b)
	}
}

// argCount returns the number of top-level parameters
func (p *Parser) argCount() int {
	n := 0
	for i := 0; i < p.nparams; i++ {
		if !p.params[i].sub {
			n++
		}
	}
	return n
}

// arg returns the i-th top-level parameter
func (p *Parser) arg(i int) (int, bool) {
	top := -1
	for k := 0; k < p.nparams; k++ {
		if p.params[k].sub {
			continue
		}
		top++
		if top == i {
			return p.params[k].val, true
		}
	}
	return 0, false
}

// sub returns the j-th ':' sub-parameter of top-level parameter i
func (p *Parser) sub(i, j int) (int, bool) {
	top := -1
	for k := 0; k < p.nparams; k++ {
		if !p.params[k].sub {
			top++
			if top > i {
				break
			}
			continue
		}
		if top != i {
			continue
		}
		if j == 0 {
			return p.params[k].val, true
		}
		j--
	}
	return 0, false
}

// modsAndAction decodes parameter i as "mods+1[:action]"
func (p *Parser) modsAndAction(i int) (Modifier, KeyAction) {
	mods := ModNone
	if v, ok := p.arg(i); ok && v > 1 {
		mods = Modifier((v - 1) & 0x0f)
	}
	action := KeyPress
	if v, ok := p.sub(i, 0); ok {
		switch v {
		case 2:
			action = KeyRepeat
		case 3:
			action = KeyRelease
		}
	}
	if p.seqAlt {
		mods |= ModAlt
	}
	return mods, action
}

// dispatch interprets a complete CSI sequence and returns to normal state
func (p *Parser) dispatch(final byte) {
	defer func() {
		p.state = stateNormal
		p.resetSeq()
	}()

	// No key or mouse report carries intermediates
	if p.ninter > 0 || p.overflow {
		return
	}

	var leader byte
	switch p.nleader {
	case 0:
	case 1:
		leader = p.leader[0]
	default:
		return
	}

	if leader == '<' {
		if final == 'M' || final == 'm' {
			p.dispatchMouse(final)
		}
		return
	}
	if leader != 0 {
		// Private replies (DA, mode reports) are not input
		return
	}

	mods, action := p.modsAndAction(1)

	var k Key
	switch final {
	case 'A':
		k = KeyUp
	case 'B':
		k = KeyDown
	case 'C':
		k = KeyRight
	case 'D':
		k = KeyLeft
	case 'H':
		// Also the shape of a cursor position sequence; the parser only sees
		// what the terminal sends, so it is always Home here
		k = KeyHome
	case 'F':
		k = KeyEnd
	case 'P':
		k = KeyF1
	case 'Q':
		k = KeyF2
	case 'S':
		k = KeyF4
	case 'Z':
		k = KeyTab
		mods |= ModShift
	case '~':
		k = tildeKey(p.firstArg())
	case 'u':
		p.dispatchKeyCode(mods, action)
		return
	}
	if k == KeyNone {
		return
	}
	p.emit(Event{Type: EventKey, Key: k, Mods: mods, Action: action})
}

func (p *Parser) firstArg() int {
	v, _ := p.arg(0)
	return v
}

// tildeKey maps the numeric "CSI n ~" codes
func tildeKey(n int) Key {
	switch n {
	case 1, 7:
		return KeyHome
	case 2:
		return KeyInsert
	case 3:
		return KeyDelete
	case 4, 8:
		return KeyEnd
	case 5:
		return KeyPageUp
	case 6:
		return KeyPageDown
	case 11:
		return KeyF1
	case 12:
		return KeyF2
	case 13:
		return KeyF3
	case 14:
		return KeyF4
	case 15:
		return KeyF5
	case 17:
		return KeyF6
	case 18:
		return KeyF7
	case 19:
		return KeyF8
	case 20:
		return KeyF9
	case 21:
		return KeyF10
	case 23:
		return KeyF11
	case 24:
		return KeyF12
	}
	return KeyNone
}

// dispatchKeyCode handles "CSI code[:alternates] ; mods[:action] u"
func (p *Parser) dispatchKeyCode(mods Modifier, action KeyAction) {
	code, ok := p.arg(0)
	if !ok {
		return
	}
	ev := Event{Type: EventKey, Mods: mods, Action: action}
	switch code {
	case 9:
		ev.Key = KeyTab
	case 13:
		ev.Key = KeyEnter
	case 27:
		ev.Key = KeyEscape
	case 8, 127:
		ev.Key = KeyBackspace
	case 32:
		ev.Key = KeySpace
	default:
		r := rune(code)
		// Below space are unused controls; the private use plane holds
		// functional keys (keypad, media, lone modifiers) that are not reported
		if code < 0x20 || (r >= 0xe000 && r <= 0xf8ff) || !utf8.ValidRune(r) {
			return
		}
		ev.Key = KeyRune
		ev.Rune = r
	}
	p.emit(ev)
}

// dispatchMouse decodes "CSI < code ; col ; row M|m"
func (p *Parser) dispatchMouse(final byte) {
	if p.argCount() != 3 {
		return
	}
	code, _ := p.arg(0)
	col, _ := p.arg(1)
	row, _ := p.arg(2)

	ev := Event{Type: EventMouse, MouseX: max(col-1, 0), MouseY: max(row-1, 0)}

	// Bits 2-4: modifiers
	if code&4 != 0 {
		ev.Mods |= ModShift
	}
	if code&8 != 0 {
		ev.Mods |= ModAlt
	}
	if code&16 != 0 {
		ev.Mods |= ModCtrl
	}

	buttonID := code & 0x03

	// Bit 6: scroll
	if code&64 != 0 {
		if ev.Mods&ModCtrl != 0 {
			// Ctrl+wheel is the terminal's font zoom gesture; step aside
			p.suspendMouse()
			return
		}
		switch buttonID {
		case 0:
			ev.MouseBtn = MouseBtnWheelUp
		case 1:
			ev.MouseBtn = MouseBtnWheelDown
		case 2:
			ev.MouseBtn = MouseBtnWheelLeft
		default:
			ev.MouseBtn = MouseBtnWheelRight
		}
		ev.MouseAction = MouseActionPress // Scroll is instantaneous
		p.emit(ev)
		return
	}

	// Bit 7: extended buttons 8-11
	if code&128 != 0 {
		switch buttonID {
		case 0:
			ev.MouseBtn = MouseBtnBack
		case 1:
			ev.MouseBtn = MouseBtnForward
		}
	} else {
		switch buttonID {
		case 0:
			ev.MouseBtn = MouseBtnLeft
		case 1:
			ev.MouseBtn = MouseBtnMiddle
		case 2:
			ev.MouseBtn = MouseBtnRight
		}
	}

	// Bit 5: motion
	if code&32 != 0 {
		ev.Type = EventMouseMove
		if ev.MouseBtn != MouseBtnNone {
			ev.MouseAction = MouseActionDrag
		} else {
			ev.MouseAction = MouseActionMove
		}
		p.emit(ev)
		return
	}

	if final == 'M' {
		ev.MouseAction = MouseActionPress
	} else {
		ev.MouseAction = MouseActionRelease
	}
	p.emit(ev)
}

// suspendMouse opens the zoom pause window
func (p *Parser) suspendMouse() {
	if !p.mouseSuspended {
		p.mouseSuspended = true
		p.mouseNotify = true
	}
	p.mouseResumeAt = p.now.Add(p.zoomPause())
}
