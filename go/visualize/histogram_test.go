package visualize

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestEntropy(t *testing.T) {
	if e := Histogram(nil).Entropy(); e != 0 {
		t.Fatalf("empty entropy = %f", e)
	}
	if e := Histogram([]byte("aaaa")).Entropy(); e != 0 {
		t.Fatalf("constant entropy = %f", e)
	}
	if e := Histogram([]byte("abab")).Entropy(); math.Abs(e-1) > 1e-9 {
		t.Fatalf("two symbol entropy = %f", e)
	}
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	if e := Histogram(all).Entropy(); math.Abs(e-8) > 1e-9 {
		t.Fatalf("uniform entropy = %f", e)
	}
}

func TestRanked(t *testing.T) {
	h := Histogram([]byte{3, 1, 1, 2, 2, 0xff})
	r := h.Ranked()
	want := []ByteCount{{1, 2}, {2, 2}, {3, 1}, {0xff, 1}}
	if len(r) != len(want) {
		t.Fatalf("ranked = %v", r)
	}
	for i := range want {
		if r[i] != want[i] {
			t.Fatalf("ranked = %v, want %v", r, want)
		}
	}
	if h.Max() != 2 || h.Total != 6 {
		t.Fatalf("max=%d total=%d", h.Max(), h.Total)
	}
}

func TestBar(t *testing.T) {
	if s := bar(10, 10, 4); s != "████" {
		t.Fatalf("full bar = %q", s)
	}
	if s := bar(5, 10, 3); s != "█▌" {
		t.Fatalf("half bar = %q", s)
	}
	if s := bar(1, 1000, 4); s != "▏" {
		t.Fatalf("tiny bar = %q", s)
	}
	if bar(0, 10, 4) != "" {
		t.Fatal("zero count drew a bar")
	}
}

func TestHeatColor(t *testing.T) {
	cases := []struct {
		level   uint8
		r, g, b uint8
	}{
		{0, 0, 0, 0},
		{42, 0, 0, 255},
		{84, 0, 255, 255},
		{128, 0, 255, 0},
		{170, 255, 255, 0},
		{212, 255, 0, 0},
		{255, 255, 255, 255},
	}
	for _, c := range cases {
		r, g, b := heatColor(c.level)
		if r != c.r || g != c.g || b != c.b {
			t.Errorf("heatColor(%d) = %d,%d,%d want %d,%d,%d", c.level, r, g, b, c.r, c.g, c.b)
		}
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	if err := Histogram([]byte{0, 0, 1}).Render(&buf, 8, false); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "entropy: 0.918296" {
		t.Fatalf("entropy line = %q", lines[0])
	}
	if lines[1] != "00: ████████ 2" || lines[2] != "01: ████ 1" || lines[3] != "02:  0" {
		t.Fatalf("bars = %q", lines[1:4])
	}
	heat := lines[257:273]
	// byte 1 sits at half the max count
	if want := "████▒▒" + strings.Repeat(" ", 28); heat[0] != want {
		t.Fatalf("heat map row = %q, want %q", heat[0], want)
	}
	if want := strings.Repeat(" ", 32); heat[15] != want {
		t.Fatalf("heat map row = %q, want %q", heat[15], want)
	}
}

func TestShade(t *testing.T) {
	cases := []struct {
		level uint8
		want  string
	}{
		{0, " "}, {31, " "}, {32, "░"}, {127, "▒"}, {191, "▓"}, {224, "█"}, {255, "█"},
	}
	for _, c := range cases {
		if got := shade(c.level); got != c.want {
			t.Errorf("shade(%d) = %q, want %q", c.level, got, c.want)
		}
	}
}
