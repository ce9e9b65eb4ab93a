package terminal

// Rect is a clip rectangle in buffer coordinates
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) lies inside the rectangle
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Buffer is a row-major grid of cells: Cells[y*Width + x]
// len(Cells) == Width*Height holds after every operation
type Buffer struct {
	Width  int
	Height int
	Cells  []Cell

	// Writes through Set/FillRect are translated by the offset, then dropped
	// when outside the clip rectangle
	Clip Rect
	OffX int
	OffY int
}

// NewBuffer creates a transparent buffer with the specified dimensions
func NewBuffer(width, height int) *Buffer {
	b := &Buffer{}
	b.Resize(width, height)
	return b
}

// Size returns buffer dimensions
func (b *Buffer) Size() (int, int) {
	return b.Width, b.Height
}

// Resize reallocates to the new dimensions and clears to transparent
// Content is not preserved
func (b *Buffer) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	b.Cells = make([]Cell, width*height)
	b.Width = width
	b.Height = height
	b.Clip = Rect{0, 0, width, height}
	b.OffX, b.OffY = 0, 0
}

// Clear resets all cells to transparent
func (b *Buffer) Clear() {
	b.Fill(Cell{})
}

// Fill sets every cell to c using exponential copy, ignoring clip and offset
func (b *Buffer) Fill(c Cell) {
	if len(b.Cells) == 0 {
		return
	}
	b.Cells[0] = c
	for filled := 1; filled < len(b.Cells); filled *= 2 {
		copy(b.Cells[filled:], b.Cells[:filled])
	}
}

// InBounds returns true if (x, y) addresses a cell
func (b *Buffer) InBounds(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

// Get returns the cell at absolute coordinates, transparent when out of bounds
func (b *Buffer) Get(x, y int) Cell {
	if !b.InBounds(x, y) {
		return Cell{}
	}
	return b.Cells[y*b.Width+x]
}

// Set writes a cell at (x, y) relative to the offset
// Returns false when the write landed outside the clip or the buffer
func (b *Buffer) Set(x, y int, c Cell) bool {
	x += b.OffX
	y += b.OffY
	if !b.InBounds(x, y) || !b.Clip.Contains(x, y) {
		return false
	}
	b.Cells[y*b.Width+x] = c
	return true
}

// FillRect writes c over the rectangle, honoring offset and clip
func (b *Buffer) FillRect(x, y, w, h int, c Cell) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			b.Set(col, row, c)
		}
	}
}

// SetClip restricts subsequent writes to r, intersected with the buffer
func (b *Buffer) SetClip(r Rect) {
	x0, y0 := max(r.X, 0), max(r.Y, 0)
	x1, y1 := min(r.X+r.W, b.Width), min(r.Y+r.H, b.Height)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	b.Clip = Rect{x0, y0, x1 - x0, y1 - y0}
}

// ResetClip restores the clip to the whole buffer and zeroes the offset
func (b *Buffer) ResetClip() {
	b.Clip = Rect{0, 0, b.Width, b.Height}
	b.OffX, b.OffY = 0, 0
}

// SetOffset translates subsequent writes by (dx, dy)
func (b *Buffer) SetOffset(dx, dy int) {
	b.OffX, b.OffY = dx, dy
}

// CopyFrom makes b an exact copy of src's dimensions and cells
func (b *Buffer) CopyFrom(src *Buffer) {
	if b.Width != src.Width || b.Height != src.Height {
		b.Resize(src.Width, src.Height)
	}
	copy(b.Cells, src.Cells)
}

// Equal reports whether both buffers have the same size and cells
func (b *Buffer) Equal(o *Buffer) bool {
	if b.Width != o.Width || b.Height != o.Height {
		return false
	}
	for i := range b.Cells {
		if b.Cells[i] != o.Cells[i] {
			return false
		}
	}
	return true
}
