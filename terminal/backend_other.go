//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package terminal

import (
	"errors"
	"os"
	"time"
)

// ErrNotTerminal is returned by Init when no tty backend exists for the platform
var ErrNotTerminal = errors.New("no terminal backend for this platform")

type unsupportedBackend struct{}

func newBackend() Backend { return unsupportedBackend{} }

// NewFileBackend has no tty support on this platform
func NewFileBackend(in, out *os.File) Backend { return unsupportedBackend{} }

func (unsupportedBackend) Init() error                        { return ErrNotTerminal }
func (unsupportedBackend) Fini()                              {}
func (unsupportedBackend) Size() (int, int)                   { return 80, 24 }
func (unsupportedBackend) Write([]byte) error                 { return ErrNotTerminal }
func (unsupportedBackend) Read(time.Duration) ([]byte, error) { return nil, ErrNotTerminal }
func (unsupportedBackend) Resized() bool                      { return false }

func resetTerminalMode() {}
