package models

import "testing"

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig([]byte("color: false\nbits: 32\nsyntax: gnu\nhex_width: 32\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Color || c.Bits != 32 || c.Syntax != "gnu" || c.HexWidth != 32 {
		t.Fatalf("unexpected config: %+v", c)
	}
	if c.HistogramWidth != 64 {
		t.Fatal("default histogram width was not kept")
	}
}

func TestParseConfigInvalid(t *testing.T) {
	bad := []string{
		"bits: 12\n",
		"syntax: att\n",
		"hex_width: 10\n",
		"color: [\n",
	}
	for _, data := range bad {
		if _, err := ParseConfig([]byte(data)); err == nil {
			t.Errorf("ParseConfig(%q) did not fail", data)
		}
	}
}
