package loader

import (
	"encoding/binary"

	"github.com/lunixbochs/readbin/go/models"
)

// Elf64Header is the 64-bit file header following the identification
// block.
type Elf64Header struct {
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

type elf64Prog struct {
	Type   uint32
	Flags  uint32
	Off    uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

type elf64Sect struct {
	Name      uint32
	Type      uint32
	Flags     uint64
	Addr      uint64
	Off       uint64
	Size      uint64
	Link      uint32
	Info      uint32
	Addralign uint64
	Entsize   uint64
}

type elf64Sym struct {
	Name  uint32
	Info  uint8
	Other uint8
	Shndx uint16
	Value uint64
	Size  uint64
}

type elf64 struct {
	hdr   Elf64Header
	order binary.ByteOrder
}

func newElf64(buf []byte, order binary.ByteOrder) (*elf64, error) {
	e := &elf64{order: order}
	if err := unpackAt(buf, "elf header", identSize, order, &e.hdr); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *elf64) File() ElfFileHeader {
	h := e.hdr
	return ElfFileHeader{
		Type: h.Type, Machine: h.Machine, Version: h.Version,
		Entry: h.Entry, Phoff: h.Phoff, Shoff: h.Shoff, Flags: h.Flags,
		Ehsize: h.Ehsize, Phentsize: h.Phentsize, Phnum: h.Phnum,
		Shentsize: h.Shentsize, Shnum: h.Shnum, Shstrndx: h.Shstrndx,
	}
}

func (e *elf64) recordSizes() (prog, sect, sym uint64) {
	return 56, 64, 24
}

func (e *elf64) segment(buf []byte, off uint64) (models.Segment, error) {
	var p elf64Prog
	if err := unpackAt(buf, "program headers", off, e.order, &p); err != nil {
		return models.Segment{}, err
	}
	return models.Segment{
		Type:     p.Type,
		Name:     ElfSegmentTypeName(p.Type),
		Offset:   p.Off,
		FileSize: p.Filesz,
		Addr:     p.Vaddr,
		MemSize:  p.Memsz,
		Flags:    p.Flags,
		Prot:     elfProt(p.Flags),
		Align:    p.Align,
	}, nil
}

func (e *elf64) section(buf []byte, off uint64) (models.Section, uint32, error) {
	var s elf64Sect
	if err := unpackAt(buf, "section headers", off, e.order, &s); err != nil {
		return models.Section{}, 0, err
	}
	return models.Section{
		Kind:    elfSectionKind(s.Type),
		Type:    s.Type,
		Flags:   s.Flags,
		Addr:    s.Addr,
		Offset:  s.Off,
		Size:    s.Size,
		Link:    s.Link,
		Info:    s.Info,
		Align:   s.Addralign,
		EntSize: s.Entsize,
		Exec:    s.Flags&uint64(shfExecInstr) != 0,
	}, s.Name, nil
}

func (e *elf64) symbol(buf []byte, off uint64) (elfSymbol, error) {
	var s elf64Sym
	if err := unpackAt(buf, ".symtab", off, e.order, &s); err != nil {
		return elfSymbol{}, err
	}
	return elfSymbol{Name: s.Name, Info: s.Info, Value: s.Value, Size: s.Size}, nil
}
