// Package loadertest builds small ELF and PE images in memory for
// loader, disassembler and command tests.
package loadertest

import (
	"debug/elf"
	"encoding/binary"
)

type ElfSegment struct {
	Type     uint32
	Flags    uint32
	Offset   uint64
	Addr     uint64
	FileSize uint64
	MemSize  uint64
	Align    uint64
}

// ElfSection is placed at Offset when it is non-zero, otherwise after
// everything written so far. Size overrides len(Data) for NOBITS.
type ElfSection struct {
	Name    string
	Type    uint32
	Flags   uint64
	Addr    uint64
	Offset  uint64
	Size    uint64
	Link    uint32
	Info    uint32
	Align   uint64
	EntSize uint64
	Data    []byte
}

// ElfSymbol names are added to .strtab unless RawName is set, in which
// case RawName is used as the string table offset verbatim.
type ElfSymbol struct {
	Name    string
	RawName uint32
	Info    uint8
	Value   uint64
	Size    uint64
}

func Func(name string, addr, size uint64) ElfSymbol {
	return ElfSymbol{
		Name:  name,
		Info:  uint8(elf.STB_GLOBAL)<<4 | uint8(elf.STT_FUNC),
		Value: addr,
		Size:  size,
	}
}

func Object(name string, addr, size uint64) ElfSymbol {
	return ElfSymbol{
		Name:  name,
		Info:  uint8(elf.STB_GLOBAL)<<4 | uint8(elf.STT_OBJECT),
		Value: addr,
		Size:  size,
	}
}

// ElfBuilder lays out: file header, program headers, section data,
// .symtab/.strtab (when Symbols is non-nil), .shstrtab, section headers.
type ElfBuilder struct {
	Bits     int
	Order    binary.ByteOrder
	Type     uint16
	Machine  uint16
	Entry    uint64
	Segments []ElfSegment
	Sections []ElfSection
	Symbols  []ElfSymbol
	// NoStrtab drops .strtab while keeping .symtab.
	NoStrtab bool

	// Filled in by Build.
	Phoff uint64
	Shoff uint64
}

func NewElf64() *ElfBuilder {
	return &ElfBuilder{
		Bits:    64,
		Order:   binary.LittleEndian,
		Type:    uint16(elf.ET_EXEC),
		Machine: uint16(elf.EM_X86_64),
	}
}

func NewElf32() *ElfBuilder {
	return &ElfBuilder{
		Bits:    32,
		Order:   binary.LittleEndian,
		Type:    uint16(elf.ET_EXEC),
		Machine: uint16(elf.EM_386),
	}
}

type writer struct {
	buf   []byte
	order binary.ByteOrder
	wide  bool
}

func (w *writer) grow(end uint64) {
	if end > uint64(len(w.buf)) {
		w.buf = append(w.buf, make([]byte, end-uint64(len(w.buf)))...)
	}
}

func (w *writer) u8(off uint64, v uint8) uint64 {
	w.grow(off + 1)
	w.buf[off] = v
	return off + 1
}

func (w *writer) u16(off uint64, v uint16) uint64 {
	w.grow(off + 2)
	w.order.PutUint16(w.buf[off:], v)
	return off + 2
}

func (w *writer) u32(off uint64, v uint32) uint64 {
	w.grow(off + 4)
	w.order.PutUint32(w.buf[off:], v)
	return off + 4
}

func (w *writer) u64(off uint64, v uint64) uint64 {
	w.grow(off + 8)
	w.order.PutUint64(w.buf[off:], v)
	return off + 8
}

// word writes an address sized value.
func (w *writer) word(off uint64, v uint64) uint64 {
	if w.wide {
		return w.u64(off, v)
	}
	return w.u32(off, uint32(v))
}

func (w *writer) bytes(off uint64, p []byte) uint64 {
	w.grow(off + uint64(len(p)))
	copy(w.buf[off:], p)
	return off + uint64(len(p))
}

func align(v, a uint64) uint64 {
	return (v + a - 1) &^ (a - 1)
}

type strtab struct {
	data []byte
}

func newStrtab() *strtab {
	return &strtab{data: []byte{0}}
}

func (s *strtab) add(name string) uint32 {
	if name == "" {
		return 0
	}
	off := uint32(len(s.data))
	s.data = append(s.data, name...)
	s.data = append(s.data, 0)
	return off
}

func (b *ElfBuilder) sizes() (ehdr, phdr, shdr, sym uint64) {
	if b.Bits == 32 {
		return 52, 32, 40, 16
	}
	return 64, 56, 64, 24
}

func (b *ElfBuilder) Build() []byte {
	w := &writer{order: b.Order, wide: b.Bits != 32}
	ehsize, phsize, shsize, symsize := b.sizes()

	sections := append([]ElfSection{{}}, b.Sections...)
	if b.Symbols != nil {
		names := newStrtab()
		symw := &writer{order: b.Order, wide: w.wide}
		off := symsize
		for _, s := range b.Symbols {
			name := s.RawName
			if name == 0 {
				name = names.add(s.Name)
			}
			if b.Bits == 32 {
				off = symw.u32(off, name)
				off = symw.u32(off, uint32(s.Value))
				off = symw.u32(off, uint32(s.Size))
				off = symw.u8(off, s.Info)
				off = symw.u8(off, 0)
				off = symw.u16(off, 1)
			} else {
				off = symw.u32(off, name)
				off = symw.u8(off, s.Info)
				off = symw.u8(off, 0)
				off = symw.u16(off, 1)
				off = symw.u64(off, s.Value)
				off = symw.u64(off, s.Size)
			}
		}
		symw.grow(off)
		strndx := uint32(len(sections) + 1)
		sections = append(sections, ElfSection{
			Name: ".symtab", Type: uint32(elf.SHT_SYMTAB), Link: strndx,
			Align: 8, EntSize: symsize, Data: symw.buf,
		})
		if !b.NoStrtab {
			sections = append(sections, ElfSection{
				Name: ".strtab", Type: uint32(elf.SHT_STRTAB), Align: 1, Data: names.data,
			})
		}
	}
	shstrtab := newStrtab()
	nameOffs := make([]uint32, len(sections)+1)
	for i, s := range sections {
		nameOffs[i] = shstrtab.add(s.Name)
	}
	nameOffs[len(sections)] = shstrtab.add(".shstrtab")
	sections = append(sections, ElfSection{Name: ".shstrtab", Type: uint32(elf.SHT_STRTAB), Align: 1, Data: shstrtab.data})

	b.Phoff = 0
	if len(b.Segments) > 0 {
		b.Phoff = ehsize
	}
	end := ehsize + phsize*uint64(len(b.Segments))
	w.grow(end)
	for i := range sections {
		s := &sections[i]
		if s.Type == uint32(elf.SHT_NULL) {
			continue
		}
		if s.Size == 0 {
			s.Size = uint64(len(s.Data))
		}
		if s.Offset == 0 {
			s.Offset = align(uint64(len(w.buf)), 8)
		}
		if s.Type != uint32(elf.SHT_NOBITS) {
			w.bytes(s.Offset, s.Data)
		}
	}
	b.Shoff = align(uint64(len(w.buf)), 8)

	// file header
	ident := []byte{0x7f, 'E', 'L', 'F', byte(elf.ELFCLASS64), byte(elf.ELFDATA2LSB), byte(elf.EV_CURRENT)}
	if b.Bits == 32 {
		ident[elf.EI_CLASS] = byte(elf.ELFCLASS32)
	}
	if b.Order == binary.BigEndian {
		ident[elf.EI_DATA] = byte(elf.ELFDATA2MSB)
	}
	w.bytes(0, ident)
	off := uint64(16)
	off = w.u16(off, b.Type)
	off = w.u16(off, b.Machine)
	off = w.u32(off, uint32(elf.EV_CURRENT))
	off = w.word(off, b.Entry)
	off = w.word(off, b.Phoff)
	off = w.word(off, b.Shoff)
	off = w.u32(off, 0)
	off = w.u16(off, uint16(ehsize))
	off = w.u16(off, uint16(phsize))
	off = w.u16(off, uint16(len(b.Segments)))
	off = w.u16(off, uint16(shsize))
	off = w.u16(off, uint16(len(sections)))
	w.u16(off, uint16(len(sections)-1))

	off = b.Phoff
	for _, p := range b.Segments {
		if b.Bits == 32 {
			off = w.u32(off, p.Type)
			off = w.u32(off, uint32(p.Offset))
			off = w.u32(off, uint32(p.Addr))
			off = w.u32(off, uint32(p.Addr))
			off = w.u32(off, uint32(p.FileSize))
			off = w.u32(off, uint32(p.MemSize))
			off = w.u32(off, p.Flags)
			off = w.u32(off, uint32(p.Align))
		} else {
			off = w.u32(off, p.Type)
			off = w.u32(off, p.Flags)
			off = w.u64(off, p.Offset)
			off = w.u64(off, p.Addr)
			off = w.u64(off, p.Addr)
			off = w.u64(off, p.FileSize)
			off = w.u64(off, p.MemSize)
			off = w.u64(off, p.Align)
		}
	}

	off = b.Shoff
	for i, s := range sections {
		off = w.u32(off, nameOffs[i])
		off = w.u32(off, s.Type)
		off = w.word(off, s.Flags)
		off = w.word(off, s.Addr)
		off = w.word(off, s.Offset)
		off = w.word(off, s.Size)
		off = w.u32(off, s.Link)
		off = w.u32(off, s.Info)
		off = w.word(off, s.Align)
		off = w.word(off, s.EntSize)
	}
	return w.buf
}

// Shentsize returns the section header record size for b.Bits.
func (b *ElfBuilder) Shentsize() uint64 {
	_, _, shsize, _ := b.sizes()
	return shsize
}

// Shstrndx offset within the file header.
func (b *ElfBuilder) ShstrndxOffset() uint64 {
	ehsize, _, _, _ := b.sizes()
	return ehsize - 2
}
