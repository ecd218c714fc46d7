package disas

import (
	"debug/elf"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"golang.org/x/arch/x86/x86asm"

	"github.com/lunixbochs/readbin/go/loader"
	"github.com/lunixbochs/readbin/go/loader/loadertest"
	"github.com/lunixbochs/readbin/go/models"
)

// push rbp; mov rbp, rsp; call 0x401009; pop rbp; ret
var code = []byte{0x55, 0x48, 0x89, 0xe5, 0xe8, 0x00, 0x00, 0x00, 0x00, 0x5d, 0xc3}

func testImage(t *testing.T, syms ...loadertest.ElfSymbol) models.Loader {
	t.Helper()
	b := loadertest.NewElf64()
	b.Entry = 0x401000
	b.Segments = []loadertest.ElfSegment{
		{Type: uint32(elf.PT_LOAD), Flags: uint32(elf.PF_R | elf.PF_X), Offset: 0x1000, Addr: 0x400000, FileSize: 0x2000, MemSize: 0x2000},
	}
	b.Sections = []loadertest.ElfSection{
		{Name: ".text", Type: uint32(elf.SHT_PROGBITS), Flags: uint64(elf.SHF_ALLOC | elf.SHF_EXECINSTR), Addr: 0x401000, Offset: 0x2000, Data: code},
		{Name: ".rodata", Type: uint32(elf.SHT_PROGBITS), Flags: uint64(elf.SHF_ALLOC), Addr: 0x401100, Offset: 0x2100, Data: []byte("hi\x00")},
	}
	b.Symbols = syms
	l, err := loader.LoadBytes(b.Build())
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestDecode(t *testing.T) {
	insns, err := Decode(code, 0x401000, 64)
	if err != nil {
		t.Fatal(err)
	}
	ops := []string{"push", "mov", "call", "pop", "ret"}
	if len(insns) != len(ops) {
		t.Fatalf("decoded %d instructions", len(insns))
	}
	for i, op := range ops {
		if insns[i].Op != op {
			t.Errorf("instruction %d is %s, want %s", i, insns[i].Op, op)
		}
	}
	call := insns[2]
	if !call.IsCall || call.Target != 0x401009 || call.Addr != 0x401004 || call.Len != 5 {
		t.Fatalf("call = %+v", call)
	}
	if insns[0].Text != "push rbp" {
		t.Fatalf("text = %q", insns[0].Text)
	}
	if insns[1].IsCall || insns[1].Target != 0 {
		t.Fatal("mov reported as a branch")
	}
}

func TestDecodeGNU(t *testing.T) {
	insns, err := Options{Bits: 64, Syntax: "gnu"}.Decode(code[:1], 0)
	if err != nil {
		t.Fatal(err)
	}
	if insns[0].Text != "push %rbp" {
		t.Fatalf("text = %q", insns[0].Text)
	}
}

func TestDecodeBad(t *testing.T) {
	// trailing call opcode without its displacement
	insns, err := Decode([]byte{0x90, 0xe8, 0x00}, 0x1000, 32)
	if err != nil {
		t.Fatal(err)
	}
	if len(insns) != 3 {
		t.Fatalf("decoded %d instructions", len(insns))
	}
	for _, ins := range insns[1:] {
		if !ins.Bad || ins.Len != 1 || ins.Op != "(bad)" {
			t.Fatalf("expected bad byte, got %+v", ins)
		}
	}
	if insns[2].Addr != 0x1002 {
		t.Fatalf("decoding did not resume after the bad byte: %#x", insns[2].Addr)
	}
}

func TestDecodePrefixOnly(t *testing.T) {
	for _, code := range [][]byte{{0xe8, 0x00}, {0x48}, {0x0f}} {
		insns, err := Decode(code, 0x1000, 64)
		if err != nil {
			t.Fatal(err)
		}
		if len(insns) == 0 {
			t.Fatalf("% x: no instructions", code)
		}
		for _, ins := range insns {
			if !ins.Bad || ins.Op != "(bad)" || ins.Len != 1 {
				t.Errorf("% x: expected bad byte, got %+v", code, ins)
			}
		}
	}
}

func TestDecodeMode(t *testing.T) {
	if _, err := Decode(code, 0, 12); err == nil {
		t.Fatal("invalid mode accepted")
	}
}

func TestFormat(t *testing.T) {
	insns, _ := Decode(code, 0x401000, 64)
	lines := strings.Split(Format(insns, 0), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[0] != "0x401000:         55 push rbp" {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "0x401004: e800000000 call ") {
		t.Fatalf("line 2 = %q", lines[2])
	}
}

func TestDisassembleSection(t *testing.T) {
	l := testImage(t)
	o := Options{Bits: 64}
	for _, sec := range l.Sections() {
		insns, err := o.DisassembleSection(l, sec)
		switch sec.Name {
		case ".text":
			if err != nil || len(insns) != 5 || insns[0].Addr != 0x401000 {
				t.Fatalf(".text: %d instructions, %v", len(insns), err)
			}
		default:
			if errors.Cause(err) != ErrNotExecutable {
				t.Fatalf("%s: expected ErrNotExecutable, got %v", sec.Name, err)
			}
		}
	}
}

func TestMode(t *testing.T) {
	l := testImage(t)
	if bits, err := Mode(l, 0); err != nil || bits != 64 {
		t.Fatalf("Mode = %d, %v", bits, err)
	}
	if bits, err := Mode(l, 32); err != nil || bits != 32 {
		t.Fatalf("Mode override = %d, %v", bits, err)
	}
}

func TestCache(t *testing.T) {
	c := NewCache()
	o := Options{Bits: 64, Cache: c}
	first, err := o.Decode(code, 0x401000)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 1 {
		t.Fatalf("cache holds %d entries", c.Len())
	}
	cached, _, ok := c.get(0x401000, code, 64)
	if !ok || len(cached) != len(first) {
		t.Fatal("decode was not cached")
	}
	gnu := o
	gnu.Syntax = "gnu"
	other, _ := gnu.Decode(code, 0x401000)
	if other[0].Text != "push %rbp" {
		t.Fatalf("cache ignored the syntax: %q", other[0].Text)
	}
	if _, _, ok := c.get(0x401000, code, 32); ok {
		t.Fatal("cache ignored the mode")
	}
	changed := append([]byte{0x90}, code[1:]...)
	if insns, _ := o.Decode(changed, 0x401000); insns[0].Op != "nop" {
		t.Fatalf("cache ignored changed bytes: %s", insns[0].Op)
	}
}

func TestCacheSymbols(t *testing.T) {
	var c Cache
	lookup := func(name string) x86asm.SymLookup {
		return func(addr uint64) (string, uint64) {
			if addr == 0x401009 {
				return name, addr
			}
			return "", 0
		}
	}
	a := Options{Bits: 64, Cache: &c, SymLookup: lookup("helper")}
	b := Options{Bits: 64, Cache: &c, SymLookup: lookup("other")}
	first, err := a.Decode(code, 0x401000)
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Decode(code, 0x401000)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 1 {
		t.Fatalf("cache holds %d entries", c.Len())
	}
	if !strings.Contains(first[2].Text, "helper") || !strings.Contains(second[2].Text, "other") {
		t.Fatalf("call rendered as %q and %q", first[2].Text, second[2].Text)
	}
	if strings.Contains(first[2].Text, "other") {
		t.Fatal("second lookup changed the first result")
	}
}
