package loader

import (
	"encoding/binary"

	"github.com/lunixbochs/readbin/go/models"
)

// Elf32Header mirrors Elf64Header with 32-bit addresses and offsets.
type Elf32Header struct {
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint32
	Phoff     uint32
	Shoff     uint32
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

type elf32Prog struct {
	Type   uint32
	Off    uint32
	Vaddr  uint32
	Paddr  uint32
	Filesz uint32
	Memsz  uint32
	Flags  uint32
	Align  uint32
}

type elf32Sect struct {
	Name      uint32
	Type      uint32
	Flags     uint32
	Addr      uint32
	Off       uint32
	Size      uint32
	Link      uint32
	Info      uint32
	Addralign uint32
	Entsize   uint32
}

// 32-bit symbols put value and size before the info byte.
type elf32Sym struct {
	Name  uint32
	Value uint32
	Size  uint32
	Info  uint8
	Other uint8
	Shndx uint16
}

type elf32 struct {
	hdr   Elf32Header
	order binary.ByteOrder
}

func newElf32(buf []byte, order binary.ByteOrder) (*elf32, error) {
	e := &elf32{order: order}
	if err := unpackAt(buf, "elf header", identSize, order, &e.hdr); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *elf32) File() ElfFileHeader {
	h := e.hdr
	return ElfFileHeader{
		Type: h.Type, Machine: h.Machine, Version: h.Version,
		Entry: uint64(h.Entry), Phoff: uint64(h.Phoff), Shoff: uint64(h.Shoff), Flags: h.Flags,
		Ehsize: h.Ehsize, Phentsize: h.Phentsize, Phnum: h.Phnum,
		Shentsize: h.Shentsize, Shnum: h.Shnum, Shstrndx: h.Shstrndx,
	}
}

func (e *elf32) recordSizes() (prog, sect, sym uint64) {
	return 32, 40, 16
}

func (e *elf32) segment(buf []byte, off uint64) (models.Segment, error) {
	var p elf32Prog
	if err := unpackAt(buf, "program headers", off, e.order, &p); err != nil {
		return models.Segment{}, err
	}
	return models.Segment{
		Type:     p.Type,
		Name:     ElfSegmentTypeName(p.Type),
		Offset:   uint64(p.Off),
		FileSize: uint64(p.Filesz),
		Addr:     uint64(p.Vaddr),
		MemSize:  uint64(p.Memsz),
		Flags:    p.Flags,
		Prot:     elfProt(p.Flags),
		Align:    uint64(p.Align),
	}, nil
}

func (e *elf32) section(buf []byte, off uint64) (models.Section, uint32, error) {
	var s elf32Sect
	if err := unpackAt(buf, "section headers", off, e.order, &s); err != nil {
		return models.Section{}, 0, err
	}
	return models.Section{
		Kind:    elfSectionKind(s.Type),
		Type:    s.Type,
		Flags:   uint64(s.Flags),
		Addr:    uint64(s.Addr),
		Offset:  uint64(s.Off),
		Size:    uint64(s.Size),
		Link:    s.Link,
		Info:    s.Info,
		Align:   uint64(s.Addralign),
		EntSize: uint64(s.Entsize),
		Exec:    s.Flags&shfExecInstr != 0,
	}, s.Name, nil
}

func (e *elf32) symbol(buf []byte, off uint64) (elfSymbol, error) {
	var s elf32Sym
	if err := unpackAt(buf, ".symtab", off, e.order, &s); err != nil {
		return elfSymbol{}, err
	}
	return elfSymbol{Name: s.Name, Info: s.Info, Value: uint64(s.Value), Size: uint64(s.Size)}, nil
}
