package visualize

import (
	"strconv"
	"strings"

	"github.com/mgutz/ansi"
)

var chDiff = ansi.ColorCode("red+bu:default")

func colorPad(s, color string, pad int) string {
	length := len(s)
	s = color + s + ansi.Reset
	if length < pad {
		s = s + strings.Repeat(" ", pad-length)
	}
	return s
}

func saturate(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// heatColor maps a 0-255 level onto a blue, green, red, white ramp.
func heatColor(level uint8) (r, g, b uint8) {
	const step = 6
	up := func(start int) uint8 { return saturate((int(level) - start) * step) }
	down := func(start int) uint8 { return saturate(255 - (int(level)-start)*step) }
	switch {
	case level < 128:
		r = 0
	case level < 170:
		r = up(128)
	default:
		r = 255
	}
	switch {
	case level < 42:
		g = 0
	case level < 84:
		g = up(42)
	case level < 170:
		g = 255
	case level < 212:
		g = down(170)
	default:
		g = up(212)
	}
	switch {
	case level < 42:
		b = up(0)
	case level < 84:
		b = 255
	case level < 128:
		b = down(84)
	case level < 212:
		b = 0
	default:
		b = up(212)
	}
	return r, g, b
}

// xterm256 picks the nearest entry of the 6x6x6 color cube.
func xterm256(r, g, b uint8) int {
	cube := func(v uint8) int { return (int(v)*5 + 127) / 255 }
	return 16 + 36*cube(r) + 6*cube(g) + cube(b)
}

func heatCode(level uint8) string {
	r, g, b := heatColor(level)
	fg := "black"
	if int(r)+int(g)+int(b) < 255 {
		fg = "white"
	}
	return ansi.ColorCode(fg + ":" + strconv.Itoa(xterm256(r, g, b)))
}

var shades = []string{" ", "░", "▒", "▓", "█"}

// shade rounds level to the nearest of the five shades.
func shade(level uint8) string {
	n := len(shades) - 1
	return shades[(int(level)*n+127)/255]
}
