package terminal

import (
	"math/rand"
	"testing"
	"time"
)

// Fragments that steer random input into the interesting parser states
var monkeyPieces = [][]byte{
	{0x1b}, {0x1b, '['}, {0x1b, 'O'}, {0x9b}, {'<'}, {'?'},
	{'0'}, {'1'}, {'5'}, {'6'}, {'4'}, {';'}, {':'}, {' '},
	{'A'}, {'H'}, {'M'}, {'m'}, {'u'}, {'~'}, {'x'}, {'q'},
	{0x7f}, {0x00}, {0x0d}, {0x11},
	{0xe2, 0x82, 0xac}, {0xe2}, {0x82}, {0xf0, 0x9f}, {0xff},
}

func monkeyInput(rng *rand.Rand) []byte {
	n := 1 + rng.Intn(24)
	var in []byte
	for i := 0; i < n; i++ {
		if rng.Intn(4) == 0 {
			in = append(in, byte(rng.Intn(256)))
			continue
		}
		in = append(in, monkeyPieces[rng.Intn(len(monkeyPieces))]...)
	}
	return in
}

// parseChunks feeds chunks at one instant, then lets every pending timeout fire
// Adjacent text runs are merged since chunk ends flush text
func parseChunks(chunks ...[]byte) (events []Event, pending bool) {
	p := NewParser()
	for _, c := range chunks {
		events = append(events, p.ParseAt(t0, c)...)
	}
	events = append(events, p.ParseAt(t0.Add(DefaultEscapeTimeout+time.Millisecond), nil)...)

	merged := events[:0:0]
	for _, ev := range events {
		if n := len(merged); n > 0 && ev.Type == EventText && merged[n-1].Type == EventText {
			merged[n-1].Text += ev.Text
			continue
		}
		merged = append(merged, ev)
	}
	return merged, p.Pending()
}

func sameEvents(a, b []Event) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestParser_RandomInputSplitAnywhere(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for iter := 0; iter < 2000; iter++ {
		in := monkeyInput(rng)
		whole, wholePending := parseChunks(in)

		for cut := 0; cut <= len(in); cut++ {
			got, pending := parseChunks(in[:cut], in[cut:])
			if !sameEvents(got, whole) || pending != wholePending {
				t.Fatalf("input %q cut at %d:\n got  %v\n want %v", in, cut, got, whole)
			}
		}

		// Byte at a time is the worst case for carried state
		chunks := make([][]byte, len(in))
		for i := range in {
			chunks[i] = in[i : i+1]
		}
		if got, _ := parseChunks(chunks...); !sameEvents(got, whole) {
			t.Fatalf("input %q byte by byte:\n got  %v\n want %v", in, got, whole)
		}
	}
}

func TestParser_RandomBytesNeverPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("parser panicked: %v", r)
		}
	}()

	rng := rand.New(rand.NewSource(2))
	p := NewParser()
	now := t0
	buf := make([]byte, 64)
	for i := 0; i < 5000; i++ {
		n := rng.Intn(len(buf))
		rng.Read(buf[:n])
		now = now.Add(time.Duration(rng.Intn(400)) * time.Millisecond)
		for _, ev := range p.ParseAt(now, buf[:n]) {
			if ev.Type == EventText && ev.Text == "" {
				t.Fatal("empty text event")
			}
			if ev.Type == EventMouse && (ev.MouseX < 0 || ev.MouseY < 0) {
				t.Fatalf("negative mouse position: %v", ev)
			}
		}
		p.MouseTransition(now)
	}
}
