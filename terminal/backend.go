package terminal

import "time"

// Backend abstracts platform-specific terminal operations
// All methods are called from the host loop; none may block longer than the
// timeout passed to Read
type Backend interface {
	// Lifecycle
	Init() error
	Fini()

	// Capabilities
	Size() (width, height int)

	// I/O
	// Write writes raw bytes to the terminal output.
	Write(p []byte) error

	// Read returns the input available within timeout; (nil, nil) when none arrived
	Read(timeout time.Duration) ([]byte, error)

	// Resized reports, and clears, a size change observed since the last call
	Resized() bool
}
