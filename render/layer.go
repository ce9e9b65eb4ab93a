package render

import "github.com/lixenwraith/termengine/terminal"

// Layer is a named drawing surface composited by Z order
// Lower Z paints first; transparent cells let lower layers show through
type Layer struct {
	ID      string
	Z       int
	Visible bool
	Buf     *terminal.Buffer

	seq int // registration order for stable sort
}

// NewLayer creates a visible layer with a transparent buffer
func NewLayer(id string, width, height, z int) *Layer {
	return &Layer{
		ID:      id,
		Z:       z,
		Visible: true,
		Buf:     terminal.NewBuffer(width, height),
	}
}

// before reports whether l paints under o
func (l *Layer) before(o *Layer) bool {
	return l.Z < o.Z || (l.Z == o.Z && l.seq < o.seq)
}
