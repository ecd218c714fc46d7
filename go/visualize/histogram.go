package visualize

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/mgutz/ansi"
	"github.com/pkg/errors"
)

type ByteHistogram struct {
	Counts [256]uint64
	Total  uint64
}

type ByteCount struct {
	Byte  byte
	Count uint64
}

func Histogram(data []byte) *ByteHistogram {
	h := &ByteHistogram{Total: uint64(len(data))}
	for _, b := range data {
		h.Counts[b]++
	}
	return h
}

func (h *ByteHistogram) Max() uint64 {
	var max uint64
	for _, c := range h.Counts {
		if c > max {
			max = c
		}
	}
	return max
}

// Entropy is the Shannon entropy in bits per byte, from 0 to 8.
func (h *ByteHistogram) Entropy() float64 {
	if h.Total == 0 {
		return 0
	}
	var e float64
	for _, c := range h.Counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(h.Total)
		e -= p * math.Log2(p)
	}
	return e
}

// Ranked lists the bytes that occur, most frequent first.
func (h *ByteHistogram) Ranked() []ByteCount {
	var out []ByteCount
	for b, c := range h.Counts {
		if c > 0 {
			out = append(out, ByteCount{byte(b), c})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

var partials = []string{"", "▏", "▎", "▍", "▌", "▋", "▊", "▉"}

// bar scales count against max into a bar of at most width cells, in
// eighths of a cell.
func bar(count, max uint64, width int) string {
	if max == 0 || count == 0 {
		return ""
	}
	eighths := count * uint64(width) * 8 / max
	if eighths == 0 {
		eighths = 1
	}
	return strings.Repeat("█", int(eighths/8)) + partials[eighths%8]
}

// level scales count into 0-255 against the most common byte.
func (h *ByteHistogram) level(count uint64) uint8 {
	max := h.Max()
	if max == 0 {
		return 0
	}
	return uint8(count * 255 / max)
}

// Render writes the entropy, one bar per byte value and a 16x16 heat
// map of the byte frequencies.
func (h *ByteHistogram) Render(w io.Writer, width int, color bool) error {
	out := bufio.NewWriter(w)
	fmt.Fprintf(out, "entropy: %.6f\n", h.Entropy())
	max := h.Max()
	for b, c := range h.Counts {
		fmt.Fprintf(out, "%02x: %s %d\n", b, bar(c, max, width), c)
	}
	for b, c := range h.Counts {
		lvl := h.level(c)
		cell := fmt.Sprintf("%02x", b)
		if color {
			out.WriteString(heatCode(lvl) + cell + ansi.Reset)
		} else {
			out.WriteString(shade(lvl) + shade(lvl))
		}
		if b%16 == 15 {
			out.WriteString("\n")
		}
	}
	return errors.Wrap(out.Flush(), "histogram")
}
