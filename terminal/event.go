package terminal

import "fmt"

// EventType distinguishes input event categories
type EventType uint8

const (
	EventKey       EventType = iota // Key, Rune, Mods, Action
	EventText                       // Text
	EventMouse                      // MouseX/Y, MouseBtn, MouseAction, Mods
	EventMouseMove                  // MouseX/Y, MouseBtn (held button or none), Mods
	EventResize                     // Width, Height
)

// String returns the variant name
func (t EventType) String() string {
	switch t {
	case EventKey:
		return "Key"
	case EventText:
		return "Text"
	case EventMouse:
		return "Mouse"
	case EventMouseMove:
		return "MouseMove"
	case EventResize:
		return "Resize"
	default:
		return "Unknown"
	}
}

// Event represents a terminal input event; Type selects which fields are meaningful
// Events are values and never mutated after the parser returns them
type Event struct {
	Type EventType

	// EventKey
	Key    Key
	Rune   rune // KeyRune only
	Action KeyAction

	// EventText
	Text string

	// EventKey, EventMouse, EventMouseMove
	Mods Modifier

	// EventMouse, EventMouseMove (0-indexed cells)
	MouseX      int
	MouseY      int
	MouseBtn    MouseButton
	MouseAction MouseAction

	// EventResize
	Width  int
	Height int
}

// KeyEvent builds a pressed special-key event
func KeyEvent(k Key, mods Modifier) Event {
	return Event{Type: EventKey, Key: k, Mods: mods}
}

// RuneEvent builds a pressed character-key event
func RuneEvent(r rune, mods Modifier) Event {
	return Event{Type: EventKey, Key: KeyRune, Rune: r, Mods: mods}
}

// TextEvent builds a text run event
func TextEvent(s string) Event {
	return Event{Type: EventText, Text: s}
}

// ResizeEvent builds a resize notification
func ResizeEvent(width, height int) Event {
	return Event{Type: EventResize, Width: width, Height: height}
}

// String formats the event for logs and tooling
func (e Event) String() string {
	switch e.Type {
	case EventKey:
		name := e.Key.String()
		if e.Key == KeyRune {
			if e.Rune >= 0x20 && e.Rune < 0x7f {
				name = fmt.Sprintf("'%c'", e.Rune)
			} else {
				name = fmt.Sprintf("U+%04X", e.Rune)
			}
		}
		return fmt.Sprintf("Key(%s%s %s)", e.Mods, name, e.Action)
	case EventText:
		return fmt.Sprintf("Text(%q)", e.Text)
	case EventMouse:
		return fmt.Sprintf("Mouse(%s%s %s @ %d,%d)", e.Mods, e.MouseBtn, e.MouseAction, e.MouseX, e.MouseY)
	case EventMouseMove:
		return fmt.Sprintf("MouseMove(%s%s @ %d,%d)", e.Mods, e.MouseBtn, e.MouseX, e.MouseY)
	case EventResize:
		return fmt.Sprintf("Resize(%dx%d)", e.Width, e.Height)
	}
	return "Event(?)"
}
