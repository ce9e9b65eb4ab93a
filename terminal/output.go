// @lixen: #focus{sys[term,io,output]}
// @lixen: #interact{trigger[output,ansi]}
package terminal

import (
	"bytes"
	"io"
)

// attrStale marks a previous-frame cell that no longer describes the screen
// Never set on cells produced by callers, so a stale cell always differs
const attrStale Attr = 1 << 7

var staleCell = Cell{Style: Style{Attrs: attrStale}}

// Renderer diffs a frame against the previous one and writes the minimal
// cursor/style/glyph stream
// Cursor and style are tracked across the whole frame and forgotten between
// frames, since the caller may write to the terminal in between
type Renderer struct {
	w   io.Writer
	out bytes.Buffer

	cursorX     int
	cursorY     int
	cursorValid bool

	lastStyle Style
	lastValid bool

	// Set by Invalidate; the next Display starts from a cleared screen
	invalid bool
}

// NewRenderer creates a renderer writing frames to w
func NewRenderer(w io.Writer) *Renderer {
	r := &Renderer{w: w}
	r.out.Grow(64 * 1024)
	return r
}

// Display writes the difference between cur and prev, then makes prev equal to cur
// A size mismatch clears the screen and resets prev to a blank buffer first
// Returns the number of bytes written; an unchanged frame writes nothing
func (r *Renderer) Display(cur, prev *Buffer, mode ColorMode) (int, error) {
	r.out.Reset()
	r.cursorValid = false
	r.lastValid = false

	width, height := cur.Width, cur.Height
	if len(cur.Cells) != width*height {
		return 0, nil
	}

	if prev.Width != width || prev.Height != height || len(prev.Cells) != width*height {
		prev.Resize(width, height)
		r.out.Write(csiClear)
	} else if r.invalid {
		r.out.Write(csiSGR0)
		r.out.Write(csiClear)
		prev.Fill(staleCell)
	}
	r.invalid = false

	for y := 0; y < height; y++ {
		r.diffRow(cur, prev, y, mode)
	}

	copy(prev.Cells, cur.Cells)

	if r.out.Len() == 0 {
		return 0, nil
	}
	return r.w.Write(r.out.Bytes())
}

// diffRow emits the dirty runs of one row
func (r *Renderer) diffRow(cur, prev *Buffer, y int, mode ColorMode) {
	width := cur.Width
	rowStart := y * width
	x := 0

	for x < width {
		idx := rowStart + x
		c := cur.Cells[idx]

		if c == prev.Cells[idx] {
			if c.Width() == 2 && x+1 < width {
				// Covered column: nothing on screen to diff
				prev.Cells[idx+1] = cur.Cells[idx+1]
				x += 2
				continue
			}
			x++
			continue
		}

		runStyle := c.Style

		if !r.cursorValid || x != r.cursorX || y != r.cursorY {
			writeCursorPos(&r.out, x, y)
			r.cursorX = x
			r.cursorY = y
			r.cursorValid = true
		}

		if !r.lastValid || runStyle != r.lastStyle {
			writeStyle(&r.out, runStyle, mode)
			r.lastStyle = runStyle
			r.lastValid = true
		}

		// Extend the run while style holds and cells are still dirty
		for x < width {
			cidx := rowStart + x
			c = cur.Cells[cidx]
			if c.Style != runStyle || c == prev.Cells[cidx] {
				break
			}
			x = r.emitCell(cur, prev, cidx, x)
		}
	}
}

// emitCell writes one glyph, updates prev and returns the next column to visit
func (r *Renderer) emitCell(cur, prev *Buffer, idx, x int) int {
	c := cur.Cells[idx]
	w := c.Width()

	writeGlyph(&r.out, c.Glyph)
	r.cursorX += w

	hasRight := x+1 < cur.Width
	if hasRight && w == 1 && prev.Cells[idx].Width() == 2 {
		// Narrow glyph over the left half of a wide one: the right half is gone
		prev.Cells[idx+1] = staleCell
	}
	prev.Cells[idx] = c

	if w == 2 && hasRight {
		prev.Cells[idx+1] = cur.Cells[idx+1]
		return x + 2
	}
	return x + 1
}

// writeGlyph writes glyph bytes, substituting a space for transparent and control glyphs
func writeGlyph(w *bytes.Buffer, glyph string) {
	if glyph == "" {
		w.WriteByte(' ')
		return
	}
	if len(glyph) == 1 && (glyph[0] < 0x20 || glyph[0] == 0x7f) {
		w.WriteByte(' ')
		return
	}
	w.WriteString(glyph)
}

// Invalidate makes the next Display clear the screen and redraw every cell
// Use after anything else has written to the terminal
func (r *Renderer) Invalidate() {
	r.invalid = true
}

// Sync clears the screen and marks every prev cell stale, forcing the next
// Display to redraw the whole frame
func (r *Renderer) Sync(prev *Buffer) error {
	r.out.Reset()
	r.out.Write(csiSGR0)
	r.out.Write(csiClear)
	r.out.Write(csiHome)
	prev.Fill(staleCell)
	_, err := r.w.Write(r.out.Bytes())
	return err
}
