package terminal

// MouseButton represents mouse button identity
type MouseButton uint8

const (
	MouseBtnNone MouseButton = iota
	MouseBtnLeft
	MouseBtnMiddle
	MouseBtnRight
	MouseBtnWheelUp
	MouseBtnWheelDown
	MouseBtnWheelLeft
	MouseBtnWheelRight
	MouseBtnBack    // Button 8
	MouseBtnForward // Button 9
)

// MouseAction represents the type of mouse event
type MouseAction uint8

const (
	MouseActionNone MouseAction = iota
	MouseActionPress
	MouseActionRelease
	MouseActionMove
	MouseActionDrag
)

// MouseMode controls which mouse events are reported (bitmask)
type MouseMode uint8

const (
	MouseModeNone   MouseMode = 0
	MouseModeClick  MouseMode = 1 << 0 // Press/release events
	MouseModeDrag   MouseMode = 1 << 1 // Drag events (button held + motion)
	MouseModeMotion MouseMode = 1 << 2 // All motion events
)

// MouseTransition is what the host must do to mouse reporting this tick
type MouseTransition uint8

const (
	MouseUnchanged MouseTransition = iota
	MouseDisable                   // a Ctrl+scroll requested a native zoom pause
	MouseEnable                    // the pause window elapsed
)

var mouseButtonNames = [...]string{
	MouseBtnNone:       "None",
	MouseBtnLeft:       "Left",
	MouseBtnMiddle:     "Middle",
	MouseBtnRight:      "Right",
	MouseBtnWheelUp:    "WheelUp",
	MouseBtnWheelDown:  "WheelDown",
	MouseBtnWheelLeft:  "WheelLeft",
	MouseBtnWheelRight: "WheelRight",
	MouseBtnBack:       "Back",
	MouseBtnForward:    "Forward",
}

var mouseActionNames = [...]string{
	MouseActionNone:    "None",
	MouseActionPress:   "Press",
	MouseActionRelease: "Release",
	MouseActionMove:    "Move",
	MouseActionDrag:    "Drag",
}

func (b MouseButton) String() string {
	if int(b) < len(mouseButtonNames) {
		return mouseButtonNames[b]
	}
	return "None"
}

func (a MouseAction) String() string {
	if int(a) < len(mouseActionNames) {
		return mouseActionNames[a]
	}
	return "None"
}
