package loader

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/lunixbochs/readbin/go/models"
)

var translateSegs = []models.Segment{
	{Offset: 0x3000, Addr: 0x402000, FileSize: 0x1000, MemSize: 0x1000},
	{Offset: 0x1000, Addr: 0x400000, FileSize: 0x2000, MemSize: 0x2000},
}

func TestTranslate(t *testing.T) {
	cases := []struct {
		addr, off uint64
	}{
		{0x400000, 0x1000},
		{0x400500, 0x1500},
		{0x401fff, 0x2fff},
		{0x402000, 0x3000},
		{0x402fff, 0x3fff},
	}
	tr := NewTranslator(translateSegs)
	for _, c := range cases {
		off, err := tr.Translate(c.addr)
		if err != nil || off != c.off {
			t.Errorf("Translate(%#x) = %#x, %v; want %#x", c.addr, off, err, c.off)
		}
	}
	if translateSegs[0].Addr != 0x402000 {
		t.Fatal("NewTranslator reordered the caller's segments")
	}
}

func TestTranslateUnmapped(t *testing.T) {
	for _, addr := range []uint64{0, 0x3fffff, 0x403000, 0x403500} {
		_, err := Translate(translateSegs, addr)
		un, ok := errors.Cause(err).(*UnmappedAddressError)
		if !ok || un.Addr != addr {
			t.Errorf("Translate(%#x): expected UnmappedAddressError, got %v", addr, err)
		}
	}
}

func TestTranslateBss(t *testing.T) {
	segs := []models.Segment{
		{Offset: 0x1000, Addr: 0x600000, FileSize: 0x100, MemSize: 0x1000},
		{Offset: 0, Addr: 0x700000, FileSize: 0, MemSize: 0x1000},
	}
	if off, err := Translate(segs, 0x6000ff); err != nil || off != 0x10ff {
		t.Fatalf("Translate(0x6000ff) = %#x, %v", off, err)
	}
	if _, err := Translate(segs, 0x600100); err == nil {
		t.Fatal("address past file size was translated")
	}
	if _, err := Translate(segs, 0x700010); err == nil {
		t.Fatal("segment without file data was used")
	}
}

func TestTranslateEmpty(t *testing.T) {
	if _, err := Translate(nil, 0x1000); err == nil {
		t.Fatal("empty segment list translated an address")
	}
}
