//go:build linux

package terminal

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/creack/pty"
)

func openPTY(t *testing.T) (ptmx, tty *os.File) {
	t.Helper()
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	t.Cleanup(func() {
		tty.Close()
		ptmx.Close()
	})
	return ptmx, tty
}

func TestUnixBackend_ReadAndSize(t *testing.T) {
	ptmx, tty := openPTY(t)

	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: 30, Cols: 100}); err != nil {
		t.Fatalf("Setsize: %v", err)
	}

	b := NewFileBackend(tty, tty)
	if err := b.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer b.Fini()

	if w, h := b.Size(); w != 100 || h != 30 {
		t.Errorf("Size = %dx%d, want 100x30", w, h)
	}

	// Nothing typed yet
	got, err := b.Read(10 * time.Millisecond)
	if err != nil || got != nil {
		t.Fatalf("idle Read = %q, %v", got, err)
	}

	// Raw mode: bytes arrive unprocessed, no line buffering
	if _, err := ptmx.Write([]byte("\x1b[A")); err != nil {
		t.Fatalf("write to master: %v", err)
	}
	var buf []byte
	deadline := time.Now().Add(time.Second)
	for len(buf) < 3 && time.Now().Before(deadline) {
		chunk, err := b.Read(50 * time.Millisecond)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		buf = append(buf, chunk...)
	}
	if string(buf) != "\x1b[A" {
		t.Errorf("Read = %q, want ESC [ A", buf)
	}

	events := NewParser().Parse(buf)
	if len(events) != 1 || events[0] != KeyEvent(KeyUp, ModNone) {
		t.Errorf("parsed %v", events)
	}
}

func TestUnixBackend_Resized(t *testing.T) {
	_, tty := openPTY(t)

	b := NewFileBackend(tty, tty)
	if err := b.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer b.Fini()

	if b.Resized() {
		t.Fatal("no resize yet")
	}

	if err := syscall.Kill(os.Getpid(), syscall.SIGWINCH); err != nil {
		t.Fatalf("kill: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	seen := false
	for !seen && time.Now().Before(deadline) {
		seen = b.Resized()
		if !seen {
			time.Sleep(5 * time.Millisecond)
		}
	}
	if !seen {
		t.Fatal("SIGWINCH not observed")
	}
	if b.Resized() {
		t.Error("Resized should clear after reporting")
	}
}

func TestUnixBackend_NotTerminal(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	if err := NewFileBackend(r, w).Init(); err != ErrNotTerminal {
		t.Errorf("Init on pipe = %v, want ErrNotTerminal", err)
	}
}
