package visualize

import (
	"bytes"
	"strings"
	"testing"
)

func TestHexDump(t *testing.T) {
	data := make([]byte, 20)
	for i := range data {
		data[i] = byte(i)
	}
	var buf bytes.Buffer
	if err := HexDump(&buf, data, 0x1000); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"┌────────┬─────────────────────────┬─────────────────────────┐",
		"│00001000│ 00 01 02 03 04 05 06 07 ┊ 08 09 0a 0b 0c 0d 0e 0f │",
		"│00001010│ 10 11 12 13             ┊                         │",
		"└────────┴─────────────────────────┴─────────────────────────┘",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d:\n got %q\nwant %q", i, lines[i], want[i])
		}
	}
}

func TestHexDumpEmpty(t *testing.T) {
	var buf bytes.Buffer
	HexDump(&buf, nil, 0)
	if strings.Count(buf.String(), "\n") != 2 {
		t.Fatalf("empty dump:\n%s", buf.String())
	}
}

func TestDumperWidth(t *testing.T) {
	d := NewDumper(8, false)
	var buf bytes.Buffer
	d.Dump(&buf, []byte{0xff}, 0)
	if !strings.Contains(buf.String(), "│00000000│ ff                      │") {
		t.Fatalf("dump:\n%s", buf.String())
	}
	if NewDumper(12, false).Width != 16 {
		t.Fatal("width that isn't a multiple of 8 was kept")
	}
}

func TestDiff(t *testing.T) {
	a := []byte{1, 2, 3, 4}
	b := []byte{1, 9, 3}
	var buf bytes.Buffer
	if err := Diff(&buf, a, b, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "│00000000│ 01 02*03 04*") {
		t.Fatalf("diff:\n%s", out)
	}
	if !strings.Contains(out, "2 of 4 bytes differ") {
		t.Fatalf("diff summary:\n%s", out)
	}

	buf.Reset()
	Diff(&buf, b, a, false)
	if !strings.Contains(buf.String(), "│00000000│ 01 09*03    ") {
		t.Fatalf("short side diff:\n%s", buf.String())
	}
}

func TestDiffColor(t *testing.T) {
	var buf bytes.Buffer
	Diff(&buf, []byte{1}, []byte{2}, true)
	if !strings.Contains(buf.String(), chDiff+"01") {
		t.Fatalf("changed byte not highlighted: %q", buf.String())
	}
}
