// @focus: #sys { io } #input { keys }
package terminal

import "strings"

// Key represents a parsed input key
type Key uint16

// Key constants - designed for expansion
const (
	KeyNone Key = iota
	KeyRune     // Character key (check Event.Rune), also Ctrl+letter

	// Control keys
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeySpace

	// Navigation
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert

	// Function keys
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Modifier flags, bit layout matches the xterm/kitty "mods+1" parameter
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << 0
	ModAlt   Modifier = 1 << 1
	ModCtrl  Modifier = 1 << 2
	ModSuper Modifier = 1 << 3
)

// String renders modifiers as a "Ctrl+Alt+" style prefix
func (m Modifier) String() string {
	var sb strings.Builder
	if m&ModCtrl != 0 {
		sb.WriteString("Ctrl+")
	}
	if m&ModAlt != 0 {
		sb.WriteString("Alt+")
	}
	if m&ModShift != 0 {
		sb.WriteString("Shift+")
	}
	if m&ModSuper != 0 {
		sb.WriteString("Super+")
	}
	return sb.String()
}

// KeyAction distinguishes press, auto-repeat and release reports
type KeyAction uint8

const (
	KeyPress KeyAction = iota
	KeyRepeat
	KeyRelease
)

// String returns human-readable action name
func (a KeyAction) String() string {
	switch a {
	case KeyRepeat:
		return "Repeat"
	case KeyRelease:
		return "Release"
	default:
		return "Press"
	}
}

// keyToName maps Key constants to canonical config string names
var keyToName = map[Key]string{
	KeyEscape:    "escape",
	KeyEnter:     "enter",
	KeyTab:       "tab",
	KeyBackspace: "backspace",
	KeyDelete:    "delete",
	KeySpace:     "space",

	KeyUp:       "up",
	KeyDown:     "down",
	KeyLeft:     "left",
	KeyRight:    "right",
	KeyHome:     "home",
	KeyEnd:      "end",
	KeyPageUp:   "page_up",
	KeyPageDown: "page_down",
	KeyInsert:   "insert",

	KeyF1:  "f1",
	KeyF2:  "f2",
	KeyF3:  "f3",
	KeyF4:  "f4",
	KeyF5:  "f5",
	KeyF6:  "f6",
	KeyF7:  "f7",
	KeyF8:  "f8",
	KeyF9:  "f9",
	KeyF10: "f10",
	KeyF11: "f11",
	KeyF12: "f12",
}

// nameToKey is the reverse lookup, built from keyToName
var nameToKey map[string]Key

func init() {
	nameToKey = make(map[string]Key, len(keyToName))
	for k, v := range keyToName {
		nameToKey[v] = k
	}
	// Aliases
	nameToKey["esc"] = KeyEscape
	nameToKey["return"] = KeyEnter
	nameToKey["pgup"] = KeyPageUp
	nameToKey["pgdn"] = KeyPageDown
}

// String returns the canonical name, "rune" for KeyRune and "none" for KeyNone
func (k Key) String() string {
	switch k {
	case KeyNone:
		return "none"
	case KeyRune:
		return "rune"
	}
	if n, ok := keyToName[k]; ok {
		return n
	}
	return "unknown"
}

// KeyByName resolves a canonical name to a Key constant
// Returns KeyNone and false if name is unknown
func KeyByName(name string) (Key, bool) {
	k, ok := nameToKey[strings.ToLower(name)]
	return k, ok
}

// KeySpec is a key plus required modifiers, parsed from strings like "ctrl+q"
type KeySpec struct {
	Key  Key
	Rune rune
	Mods Modifier
}

// ParseKeySpec parses "ctrl+alt+x", "f5", "shift+tab" into a KeySpec
// Single characters become KeyRune specs
func ParseKeySpec(s string) (KeySpec, bool) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	var spec KeySpec
	for i, p := range parts {
		if i < len(parts)-1 {
			switch p {
			case "ctrl", "c":
				spec.Mods |= ModCtrl
			case "alt", "meta", "a", "m":
				spec.Mods |= ModAlt
			case "shift", "s":
				spec.Mods |= ModShift
			case "super":
				spec.Mods |= ModSuper
			default:
				return KeySpec{}, false
			}
			continue
		}
		if k, ok := KeyByName(p); ok {
			spec.Key = k
			return spec, true
		}
		runes := []rune(p)
		if len(runes) != 1 {
			return KeySpec{}, false
		}
		spec.Key = KeyRune
		spec.Rune = runes[0]
		return spec, true
	}
	return KeySpec{}, false
}

// Matches reports whether ev is a key press for this spec
// An unmodified character also matches a text run containing it, since plain
// printable input arrives as EventText
func (s KeySpec) Matches(ev Event) bool {
	if ev.Type == EventText {
		return s.Key == KeyRune && s.Mods == ModNone && strings.ContainsRune(ev.Text, s.Rune)
	}
	if ev.Type != EventKey || ev.Action == KeyRelease {
		return false
	}
	if ev.Key != s.Key || ev.Mods != s.Mods {
		return false
	}
	return s.Key != KeyRune || ev.Rune == s.Rune
}
