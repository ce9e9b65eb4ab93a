package render

import "github.com/lixenwraith/termengine/terminal"

// LayerStack keeps layers sorted by (Z, registration order) and composites them
type LayerStack struct {
	layers   []*Layer
	regCount int

	width  int
	height int

	// id -> position in layers, rebuilt on demand after add/remove/reorder
	index      map[string]int
	indexValid bool
}

// NewLayerStack creates an empty stack whose layers are width x height
func NewLayerStack(width, height int) *LayerStack {
	return &LayerStack{
		layers: make([]*Layer, 0, 8),
		width:  width,
		height: height,
		index:  make(map[string]int),
	}
}

// Size returns the dimensions shared by all layers
func (s *LayerStack) Size() (int, int) {
	return s.width, s.height
}

// Len returns the number of layers
func (s *LayerStack) Len() int {
	return len(s.layers)
}

// Add creates and inserts a layer. Maintains sorted order via insertion sort
func (s *LayerStack) Add(id string, z int) (*Layer, error) {
	if _, ok := s.lookup(id); ok {
		return nil, ErrDuplicateLayer
	}

	l := NewLayer(id, s.width, s.height, z)
	l.seq = s.regCount
	s.regCount++

	s.insert(l)
	return l, nil
}

// insert places l at its sorted position
func (s *LayerStack) insert(l *Layer) {
	pos := len(s.layers)
	for i, e := range s.layers {
		if l.before(e) {
			pos = i
			break
		}
	}

	s.layers = append(s.layers, nil)
	copy(s.layers[pos+1:], s.layers[pos:])
	s.layers[pos] = l
	s.indexValid = false
}

// Remove deletes the layer with the given id
func (s *LayerStack) Remove(id string) error {
	pos, ok := s.lookup(id)
	if !ok {
		return ErrUnknownLayer
	}
	copy(s.layers[pos:], s.layers[pos+1:])
	s.layers[len(s.layers)-1] = nil
	s.layers = s.layers[:len(s.layers)-1]
	s.indexValid = false
	return nil
}

// Get returns the layer with the given id
func (s *LayerStack) Get(id string) (*Layer, bool) {
	pos, ok := s.lookup(id)
	if !ok {
		return nil, false
	}
	return s.layers[pos], true
}

// SetVisible toggles whether a layer takes part in compositing
func (s *LayerStack) SetVisible(id string, visible bool) error {
	l, ok := s.Get(id)
	if !ok {
		return ErrUnknownLayer
	}
	l.Visible = visible
	return nil
}

// SetZ moves a layer to a new Z. It keeps its registration order among equal Z
func (s *LayerStack) SetZ(id string, z int) error {
	pos, ok := s.lookup(id)
	if !ok {
		return ErrUnknownLayer
	}
	l := s.layers[pos]
	if l.Z == z {
		return nil
	}
	copy(s.layers[pos:], s.layers[pos+1:])
	s.layers = s.layers[:len(s.layers)-1]
	l.Z = z
	s.insert(l)
	return nil
}

// Layers returns the layers in paint order; the slice must not be modified
func (s *LayerStack) Layers() []*Layer {
	return s.layers
}

// Resize reallocates every layer buffer; content is cleared
func (s *LayerStack) Resize(width, height int) {
	s.width, s.height = width, height
	for _, l := range s.layers {
		l.Buf.Resize(width, height)
	}
}

// Composite fills out with fill, then paints visible layers bottom to top,
// copying only non-transparent cells
func (s *LayerStack) Composite(out *terminal.Buffer, fill terminal.Cell) {
	if out.Width != s.width || out.Height != s.height {
		out.Resize(s.width, s.height)
	}
	out.Fill(fill)

	for _, l := range s.layers {
		if !l.Visible {
			continue
		}
		src := l.Buf.Cells
		if len(src) != len(out.Cells) {
			continue
		}
		dst := out.Cells
		for i := range src {
			if src[i].Transparent() {
				continue
			}
			// Painting over the covered half of a lower wide glyph splits it
			if i%s.width > 0 && src[i-1].Transparent() && dst[i-1].Width() == 2 {
				dst[i-1] = terminal.NewCell(" ", dst[i-1].Style)
			}
			dst[i] = src[i]
		}
	}
}

// lookup returns the position of id, rebuilding the index if stale
func (s *LayerStack) lookup(id string) (int, bool) {
	if !s.indexValid {
		clear(s.index)
		for i, l := range s.layers {
			s.index[l.ID] = i
		}
		s.indexValid = true
	}
	pos, ok := s.index[id]
	return pos, ok
}
