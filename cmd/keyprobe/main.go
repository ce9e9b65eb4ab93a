// Command keyprobe prints the events the input parser decodes
//
// With hex arguments it decodes them and exits:
//
//	keyprobe 1b 5b 31 3b 35 41
//	keyprobe 1b5b3c303b31303b32304d
//
// Without arguments it takes over the terminal and reports keystrokes until
// Ctrl+C is pressed twice in a row
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lixenwraith/termengine/terminal"
)

var (
	mouseFlag   = flag.Bool("mouse", false, "Enable SGR mouse reporting in interactive mode")
	timeoutFlag = flag.Duration("esc-timeout", terminal.DefaultEscapeTimeout, "Escape disambiguation timeout")
)

func main() {
	flag.Parse()

	if flag.NArg() > 0 {
		data, err := decodeHexArgs(flag.Args())
		if err != nil {
			fmt.Fprintf(os.Stderr, "keyprobe: %v\n", err)
			os.Exit(2)
		}
		for _, line := range describe(data, *timeoutFlag) {
			fmt.Println(line)
		}
		return
	}

	mouse := terminal.MouseModeNone
	if *mouseFlag {
		mouse = terminal.MouseModeClick | terminal.MouseModeDrag
	}
	if err := watch(terminal.New(), mouse, *timeoutFlag, time.Now); err != nil {
		fmt.Fprintf(os.Stderr, "keyprobe: %v\n", err)
		os.Exit(1)
	}
}

// decodeHexArgs joins the arguments and decodes them as hex bytes
func decodeHexArgs(args []string) ([]byte, error) {
	s := strings.Join(args, "")
	s = strings.ReplaceAll(s, "0x", "")
	s = strings.ReplaceAll(s, ",", "")
	return hex.DecodeString(s)
}

// describe parses data as one chunk, then resolves any trailing escape
func describe(data []byte, timeout time.Duration) []string {
	p := terminal.NewParser()
	p.EscapeTimeout = timeout

	start := time.Now()
	events := p.ParseAt(start, data)
	events = append(events, p.ParseAt(start.Add(timeout+time.Millisecond), nil)...)

	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, ev.String())
	}
	if p.Pending() {
		lines = append(lines, "(incomplete sequence)")
	}
	return lines
}

// watch reports raw bytes and decoded events from term until Ctrl+C is pressed
// twice in a row or input ends
// Ctrl+scroll turns mouse reporting off for the zoom pause, as a Session does
func watch(term terminal.Terminal, mouse terminal.MouseMode, escTimeout time.Duration, now func() time.Time) error {
	if err := term.Init(); err != nil {
		return err
	}
	defer term.Fini()

	if err := term.SetMouseMode(mouse); err != nil {
		return fmt.Errorf("mouse mode: %w", err)
	}

	w, h := term.Size()
	fmt.Fprintf(term, "keyprobe %dx%d, Ctrl+C twice to quit\r\n", w, h)

	p := terminal.NewParser()
	p.EscapeTimeout = escTimeout
	quit := terminal.KeySpec{Key: terminal.KeyRune, Rune: 'c', Mods: terminal.ModCtrl}
	lastQuit := false

	for {
		data, err := term.Read(20 * time.Millisecond)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if len(data) > 0 {
			fmt.Fprintf(term, "  raw % x\r\n", data)
		}

		t := now()
		for _, ev := range p.ParseAt(t, data) {
			fmt.Fprintf(term, "%s\r\n", ev)
			if quit.Matches(ev) {
				if lastQuit {
					return nil
				}
				lastQuit = true
				continue
			}
			lastQuit = false
		}

		switch p.MouseTransition(t) {
		case terminal.MouseDisable:
			if err := term.SetMouseMode(terminal.MouseModeNone); err != nil {
				return fmt.Errorf("pause mouse: %w", err)
			}
			fmt.Fprint(term, "(ctrl+scroll: mouse paused)\r\n")
		case terminal.MouseEnable:
			if err := term.SetMouseMode(mouse); err != nil {
				return fmt.Errorf("resume mouse: %w", err)
			}
			fmt.Fprint(term, "(mouse resumed)\r\n")
		}

		if term.Resized() {
			w, h := term.Size()
			fmt.Fprintf(term, "%s\r\n", terminal.ResizeEvent(w, h))
		}
	}
}
