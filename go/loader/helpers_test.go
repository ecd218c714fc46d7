package loader

import (
	"debug/elf"
	"encoding/binary"

	"github.com/lunixbochs/readbin/go/loader/loadertest"
)

// push rbp; mov rbp, rsp; call next; pop rbp; ret
var textCode = []byte{0x55, 0x48, 0x89, 0xe5, 0xe8, 0x00, 0x00, 0x00, 0x00, 0x5d, 0xc3}

// sampleElf builds an executable with two PT_LOAD segments
// (0x400000 -> 0x1000, 0x402000 -> 0x3000), a .text section and a
// symbol table containing main at 0x401000.
func sampleElf(bits int, order binary.ByteOrder) *loadertest.ElfBuilder {
	b := loadertest.NewElf64()
	if bits == 32 {
		b = loadertest.NewElf32()
	}
	b.Order = order
	b.Entry = 0x401000
	b.Segments = []loadertest.ElfSegment{
		{Type: uint32(elf.PT_LOAD), Flags: uint32(elf.PF_R | elf.PF_X), Offset: 0x1000, Addr: 0x400000, FileSize: 0x2000, MemSize: 0x2000, Align: 0x1000},
		{Type: uint32(elf.PT_LOAD), Flags: uint32(elf.PF_R | elf.PF_W), Offset: 0x3000, Addr: 0x402000, FileSize: 0x1000, MemSize: 0x1000, Align: 0x1000},
	}
	b.Sections = []loadertest.ElfSection{
		{Name: ".text", Type: uint32(elf.SHT_PROGBITS), Flags: uint64(elf.SHF_ALLOC | elf.SHF_EXECINSTR), Addr: 0x401000, Offset: 0x2000, Align: 16, Data: textCode},
		{Name: ".data", Type: uint32(elf.SHT_PROGBITS), Flags: uint64(elf.SHF_ALLOC | elf.SHF_WRITE), Addr: 0x402000, Offset: 0x3000, Align: 8, Data: []byte{1, 2, 3, 4}},
		{Name: ".bss", Type: uint32(elf.SHT_NOBITS), Flags: uint64(elf.SHF_ALLOC | elf.SHF_WRITE), Addr: 0x402100, Offset: 0x3100, Size: 0x100, Align: 8},
	}
	b.Symbols = []loadertest.ElfSymbol{
		loadertest.Func("main", 0x401000, 0x40),
		loadertest.Object("counter", 0x402000, 4),
	}
	return b
}
