// @focus: #sys { term }
// Package terminal is the byte-level half of the engine: it decodes raw terminal
// input into events and encodes cell buffers into minimal ANSI output.
//
// Features:
//   - Persistent input parser: CSI/SS3 sequences, SGR mouse, kitty key codes,
//     UTF-8 reassembly across reads, poll-driven ESC disambiguation
//   - Diff renderer with run coalescing, tracked cursor and style, width-aware advance
//   - True color, 256-color cube and 8-color output
//   - Raw mode Unix backend with non-blocking reads and SIGWINCH tracking
//
// Nothing in the package starts goroutines for input or timing; the host loop
// drives Parse and Display once per tick.
package terminal
