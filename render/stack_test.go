package render

import (
	"errors"
	"testing"

	"github.com/lixenwraith/termengine/terminal"
)

var plain = terminal.Style{Fg: terminal.RGBWhite}

func TestComposite_TopLayerOverridesOneCell(t *testing.T) {
	s := NewLayerStack(6, 3)
	bottom, _ := s.Add("bottom", 0)
	top, _ := s.Add("top", 1)

	bottom.Buf.Fill(terminal.NewCell("A", plain))
	top.Buf.Set(2, 1, terminal.NewCell("B", plain))

	out := terminal.NewBuffer(6, 3)
	s.Composite(out, terminal.Cell{})

	for y := 0; y < 3; y++ {
		for x := 0; x < 6; x++ {
			want := "A"
			if x == 2 && y == 1 {
				want = "B"
			}
			if got := out.Get(x, y).Glyph; got != want {
				t.Errorf("cell %d,%d = %q, want %q", x, y, got, want)
			}
		}
	}
}

func TestComposite_FillAndVisibility(t *testing.T) {
	s := NewLayerStack(3, 1)
	l, _ := s.Add("l", 0)
	l.Buf.Set(0, 0, terminal.NewCell("x", plain))

	fill := terminal.NewCell(".", plain)
	out := terminal.NewBuffer(0, 0)
	s.Composite(out, fill)
	if out.Width != 3 || out.Get(0, 0).Glyph != "x" || out.Get(1, 0).Glyph != "." {
		t.Errorf("composite = %+v", out.Cells)
	}

	s.SetVisible("l", false)
	s.Composite(out, fill)
	if out.Get(0, 0).Glyph != "." {
		t.Error("hidden layer should not paint")
	}
}

func TestComposite_SplitsCoveredWideGlyph(t *testing.T) {
	s := NewLayerStack(4, 1)
	bottom, _ := s.Add("bottom", 0)
	top, _ := s.Add("top", 1)

	bottom.Buf.Set(0, 0, terminal.NewCell("世", plain))
	bottom.Buf.Set(1, 0, terminal.NewCell(" ", plain))
	top.Buf.Set(1, 0, terminal.NewCell("b", plain))

	out := terminal.NewBuffer(4, 1)
	s.Composite(out, terminal.Cell{})
	if out.Get(0, 0).Glyph != " " || out.Get(1, 0).Glyph != "b" {
		t.Errorf("got %q %q", out.Get(0, 0).Glyph, out.Get(1, 0).Glyph)
	}
}

func TestLayerStack_StableZOrder(t *testing.T) {
	s := NewLayerStack(1, 1)
	for _, spec := range []struct {
		id string
		z  int
	}{
		{"c", 5}, {"a", 0}, {"d", 5}, {"b", 0}, {"e", -1},
	} {
		if _, err := s.Add(spec.id, spec.z); err != nil {
			t.Fatalf("Add(%s): %v", spec.id, err)
		}
	}

	assertOrder(t, s, "e", "a", "b", "c", "d")

	// Equal Z orders by registration, so the earliest layer goes first after moving
	if err := s.SetZ("c", 0); err != nil {
		t.Fatal(err)
	}
	assertOrder(t, s, "e", "c", "a", "b", "d")

	s.SetZ("a", 10)
	assertOrder(t, s, "e", "c", "b", "d", "a")

	// Topmost layer wins the composite
	for _, l := range s.Layers() {
		l.Buf.Set(0, 0, terminal.NewCell(l.ID, plain))
	}
	out := terminal.NewBuffer(1, 1)
	s.Composite(out, terminal.Cell{})
	if out.Get(0, 0).Glyph != "a" {
		t.Errorf("top glyph = %q, want a", out.Get(0, 0).Glyph)
	}
}

func assertOrder(t *testing.T, s *LayerStack, ids ...string) {
	t.Helper()
	layers := s.Layers()
	if len(layers) != len(ids) {
		t.Fatalf("got %d layers, want %d", len(layers), len(ids))
	}
	for i, id := range ids {
		if layers[i].ID != id {
			got := make([]string, len(layers))
			for j, l := range layers {
				got[j] = l.ID
			}
			t.Fatalf("order = %v, want %v", got, ids)
		}
	}
}

func TestLayerStack_IndexInvalidation(t *testing.T) {
	s := NewLayerStack(2, 2)
	s.Add("a", 1)
	s.Add("b", 2)
	s.Add("c", 3)

	// Warm the index, then change positions
	if _, ok := s.Get("c"); !ok {
		t.Fatal("c missing")
	}
	if err := s.Remove("a"); err != nil {
		t.Fatal(err)
	}
	c, ok := s.Get("c")
	if !ok || c.ID != "c" {
		t.Fatalf("lookup after remove returned %+v", c)
	}
	if _, ok := s.Get("a"); ok {
		t.Error("removed layer still found")
	}

	s.Add("z", 0)
	b, _ := s.Get("b")
	if b.ID != "b" {
		t.Errorf("lookup after add returned %q", b.ID)
	}

	if err := s.Remove("a"); !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("Remove(a) = %v", err)
	}
	if _, err := s.Add("b", 0); !errors.Is(err, ErrDuplicateLayer) {
		t.Errorf("duplicate Add = %v", err)
	}
	if err := s.SetVisible("nope", true); !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("SetVisible = %v", err)
	}
	if err := s.SetZ("nope", 1); !errors.Is(err, ErrUnknownLayer) {
		t.Errorf("SetZ = %v", err)
	}
}

func TestLayerStack_Resize(t *testing.T) {
	s := NewLayerStack(2, 2)
	l, _ := s.Add("a", 0)
	l.Buf.Fill(terminal.NewCell("x", plain))

	s.Resize(5, 4)
	if w, h := s.Size(); w != 5 || h != 4 {
		t.Errorf("Size = %dx%d", w, h)
	}
	if len(l.Buf.Cells) != 20 || !l.Buf.Get(0, 0).Transparent() {
		t.Error("resize should reallocate and clear layers")
	}

	added, _ := s.Add("b", 1)
	if added.Buf.Width != 5 || added.Buf.Height != 4 {
		t.Error("new layers take the current size")
	}
}
