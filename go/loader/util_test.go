package loader

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestReadUint(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09}
	if v, err := ReadU16(buf, 1, binary.LittleEndian); err != nil || v != 0x0302 {
		t.Fatalf("ReadU16 LE = %#x, %v", v, err)
	}
	if v, err := ReadU16(buf, 1, binary.BigEndian); err != nil || v != 0x0203 {
		t.Fatalf("ReadU16 BE = %#x, %v", v, err)
	}
	if v, err := ReadU32(buf, 0, binary.LittleEndian); err != nil || v != 0x04030201 {
		t.Fatalf("ReadU32 LE = %#x, %v", v, err)
	}
	if v, err := ReadU32(buf, 0, binary.BigEndian); err != nil || v != 0x01020304 {
		t.Fatalf("ReadU32 BE = %#x, %v", v, err)
	}
	if v, err := ReadU64(buf, 1, binary.LittleEndian); err != nil || v != 0x0908070605040302 {
		t.Fatalf("ReadU64 LE = %#x, %v", v, err)
	}
	if v, err := ReadU64(buf, 1, binary.BigEndian); err != nil || v != 0x0203040506070809 {
		t.Fatalf("ReadU64 BE = %#x, %v", v, err)
	}
}

func TestReadUintBounds(t *testing.T) {
	buf := make([]byte, 8)
	if _, err := ReadU64(buf, 1, binary.LittleEndian); err == nil {
		t.Fatal("ReadU64 read past the end")
	}
	if _, err := ReadU32(buf, 8, binary.LittleEndian); err == nil {
		t.Fatal("ReadU32 read at len(buf)")
	}
	_, err := ReadU16(buf, math.MaxUint64, binary.LittleEndian)
	oob, ok := errors.Cause(err).(*OutOfBoundsError)
	if !ok {
		t.Fatalf("expected OutOfBoundsError, got %v", err)
	}
	if oob.Len != 8 || oob.Size != 2 {
		t.Fatalf("bad error fields: %+v", oob)
	}
	if _, err := ReadU16(buf, 6, binary.LittleEndian); err != nil {
		t.Fatal("ReadU16 failed on the last two bytes")
	}
}

func TestReadCString(t *testing.T) {
	table := []byte("\x00main\x00helper\x00tail")
	cases := []struct {
		off  uint64
		want string
	}{
		{0, ""},
		{1, "main"},
		{3, "in"},
		{6, "helper"},
	}
	for _, c := range cases {
		s, err := readCString(table, ".strtab", c.off)
		if err != nil || s != c.want {
			t.Errorf("readCString(%d) = %q, %v; want %q", c.off, s, err, c.want)
		}
	}
	if _, err := readCString(table, ".strtab", 13); err == nil {
		t.Fatal("unterminated name was accepted")
	} else if _, ok := errors.Cause(err).(*NameOverrunError); !ok {
		t.Fatalf("expected NameOverrunError, got %v", err)
	}
	if _, err := readCString(table, ".strtab", uint64(len(table))); err == nil {
		t.Fatal("offset at end of table was accepted")
	} else if _, ok := errors.Cause(err).(*OutOfBoundsError); !ok {
		t.Fatalf("expected OutOfBoundsError, got %v", err)
	}
}

func TestUnpackAtTruncated(t *testing.T) {
	var hdr Elf64Header
	err := unpackAt(make([]byte, 40), "elf header", identSize, binary.LittleEndian, &hdr)
	oob, ok := errors.Cause(err).(*OutOfBoundsError)
	if !ok || oob.Table != "elf header" {
		t.Fatalf("expected elf header OutOfBoundsError, got %v", err)
	}
}
