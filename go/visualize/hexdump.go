// Package visualize renders raw image bytes as framed hex dumps, diffs
// and byte histograms for the terminal.
package visualize

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mgutz/ansi"
	"github.com/pkg/errors"
)

const groupSize = 8

// Dumper prints Width bytes per row, in groups of eight.
type Dumper struct {
	Width int
	Color bool
}

func NewDumper(width int, color bool) *Dumper {
	if width <= 0 || width%groupSize != 0 {
		width = 16
	}
	return &Dumper{Width: width, Color: color}
}

func HexDump(w io.Writer, data []byte, base uint64) error {
	return NewDumper(16, false).Dump(w, data, base)
}

func Diff(w io.Writer, a, b []byte, color bool) error {
	return NewDumper(16, color).Diff(w, a, b)
}

func (d *Dumper) frame(left, mid, right string) string {
	group := strings.Repeat("─", groupSize*3+1)
	groups := make([]string, d.Width/groupSize)
	for i := range groups {
		groups[i] = group
	}
	return left + strings.Repeat("─", 8) + mid + strings.Join(groups, mid) + right
}

func (d *Dumper) Header() string {
	return d.frame("┌", "┬", "┐")
}

func (d *Dumper) Footer() string {
	return d.frame("└", "┴", "┘")
}

type cell struct {
	b       byte
	present bool
	changed bool
}

func (d *Dumper) row(out *bufio.Writer, addr uint64, cells []cell) {
	fmt.Fprintf(out, "│%08x│ ", addr)
	for i := 0; i < d.Width; i++ {
		if i > 0 && i%groupSize == 0 {
			out.WriteString("┊ ")
		}
		if i >= len(cells) || !cells[i].present {
			out.WriteString("   ")
			continue
		}
		c := cells[i]
		hex := fmt.Sprintf("%02x", c.b)
		switch {
		case c.changed && d.Color:
			out.WriteString(colorPad(hex, chDiff, 3))
		case c.changed:
			out.WriteString(hex + "*")
		default:
			out.WriteString(hex + " ")
		}
	}
	out.WriteString("│\n")
}

// Dump writes data with row labels starting at base.
func (d *Dumper) Dump(w io.Writer, data []byte, base uint64) error {
	out := bufio.NewWriter(w)
	fmt.Fprintln(out, d.Header())
	cells := make([]cell, d.Width)
	for off := 0; off < len(data); off += d.Width {
		for i := range cells {
			cells[i] = cell{}
			if off+i < len(data) {
				cells[i] = cell{b: data[off+i], present: true}
			}
		}
		d.row(out, base+uint64(off), cells)
	}
	fmt.Fprintln(out, d.Footer())
	return errors.Wrap(out.Flush(), "hex dump")
}

// Diff dumps a and marks each byte that differs from b. Offsets past
// the end of a are left blank; offsets past the end of b count as
// different.
func (d *Dumper) Diff(w io.Writer, a, b []byte) error {
	out := bufio.NewWriter(w)
	fmt.Fprintln(out, d.Header())
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	cells := make([]cell, d.Width)
	changed := 0
	for off := 0; off < n; off += d.Width {
		for i := range cells {
			p := off + i
			cells[i] = cell{}
			if p < len(a) {
				cells[i] = cell{b: a[p], present: true, changed: p >= len(b) || a[p] != b[p]}
			}
			if p < n && (p >= len(a) || p >= len(b) || a[p] != b[p]) {
				changed++
			}
		}
		d.row(out, uint64(off), cells)
	}
	fmt.Fprintln(out, d.Footer())
	summary := fmt.Sprintf("%d of %d bytes differ", changed, n)
	if d.Color && changed > 0 {
		summary = ansi.Color(summary, "red")
	}
	fmt.Fprintln(out, summary)
	return errors.Wrap(out.Flush(), "hex diff")
}
