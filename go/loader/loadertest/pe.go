package loadertest

import (
	"debug/pe"
	"encoding/binary"
)

type PeSection struct {
	Name            string
	VirtualAddress  uint32
	VirtualSize     uint32
	Characteristics uint32
	Data            []byte
	// RawSize overrides len(Data) in the header, e.g. to point past
	// the end of the file.
	RawSize uint32
}

// PeBuilder writes a DOS header, NT headers, the section table and
// file aligned section data.
type PeBuilder struct {
	Plus      bool
	Machine   uint16
	ImageBase uint64
	Entry     uint32
	Subsystem uint16
	Lfanew    uint32
	Dirs      int
	Sections  []PeSection
}

func NewPe32() *PeBuilder {
	return &PeBuilder{
		Machine:   pe.IMAGE_FILE_MACHINE_I386,
		ImageBase: 0x400000,
		Subsystem: pe.IMAGE_SUBSYSTEM_WINDOWS_CUI,
		Lfanew:    0x80,
		Dirs:      16,
	}
}

func NewPe64() *PeBuilder {
	return &PeBuilder{
		Plus:      true,
		Machine:   pe.IMAGE_FILE_MACHINE_AMD64,
		ImageBase: 0x140000000,
		Subsystem: pe.IMAGE_SUBSYSTEM_WINDOWS_CUI,
		Lfanew:    0x80,
		Dirs:      16,
	}
}

const peFileAlign = 0x200

// OptionalHeaderSize is the SizeOfOptionalHeader Build writes.
func (b *PeBuilder) OptionalHeaderSize() uint16 {
	fixed := 96
	if b.Plus {
		fixed = 112
	}
	return uint16(fixed + 8*b.Dirs)
}

func (b *PeBuilder) Build() []byte {
	w := &writer{order: binary.LittleEndian}
	w.bytes(0, []byte("MZ"))
	w.u32(0x3c, b.Lfanew)

	optSize := uint64(b.OptionalHeaderSize())
	off := uint64(b.Lfanew)
	off = w.bytes(off, []byte("PE\x00\x00"))
	off = w.u16(off, b.Machine)
	off = w.u16(off, uint16(len(b.Sections)))
	off = w.u32(off, 0)
	off = w.u32(off, 0)
	off = w.u32(off, 0)
	off = w.u16(off, uint16(optSize))
	off = w.u16(off, pe.IMAGE_FILE_EXECUTABLE_IMAGE)

	secTable := off + optSize
	headersEnd := align(secTable+40*uint64(len(b.Sections)), peFileAlign)
	raw := make([]uint32, len(b.Sections))
	next := headersEnd
	for i, s := range b.Sections {
		if len(s.Data) == 0 {
			continue
		}
		raw[i] = uint32(next)
		next = align(next+uint64(len(s.Data)), peFileAlign)
	}

	magic := uint16(0x10b)
	if b.Plus {
		magic = 0x20b
	}
	off = w.u16(off, magic)
	off = w.u8(off, 14)
	off = w.u8(off, 0)
	off = w.u32(off, 0)
	off = w.u32(off, 0)
	off = w.u32(off, 0)
	off = w.u32(off, b.Entry)
	off = w.u32(off, 0x1000)
	if b.Plus {
		off = w.u64(off, b.ImageBase)
	} else {
		off = w.u32(off, 0x2000)
		off = w.u32(off, uint32(b.ImageBase))
	}
	off = w.u32(off, 0x1000)
	off = w.u32(off, peFileAlign)
	off = w.u16(off, 6)
	off = w.u16(off, 0)
	off = w.u16(off, 0)
	off = w.u16(off, 0)
	off = w.u16(off, 6)
	off = w.u16(off, 0)
	off = w.u32(off, 0)
	off = w.u32(off, uint32(next))
	off = w.u32(off, uint32(headersEnd))
	off = w.u32(off, 0)
	off = w.u16(off, b.Subsystem)
	off = w.u16(off, 0)
	word := w.u32
	if b.Plus {
		word = func(off uint64, v uint32) uint64 { return w.u64(off, uint64(v)) }
	}
	off = word(off, 0x100000)
	off = word(off, 0x1000)
	off = word(off, 0x100000)
	off = word(off, 0x1000)
	off = w.u32(off, 0)
	off = w.u32(off, uint32(b.Dirs))
	for i := 0; i < b.Dirs; i++ {
		off = w.u32(off, uint32(0x3000+i*0x10))
		off = w.u32(off, 0x10)
	}

	off = secTable
	for i, s := range b.Sections {
		var name [8]byte
		copy(name[:], s.Name)
		size := s.RawSize
		if size == 0 {
			size = uint32(len(s.Data))
		}
		off = w.bytes(off, name[:])
		off = w.u32(off, s.VirtualSize)
		off = w.u32(off, s.VirtualAddress)
		off = w.u32(off, size)
		off = w.u32(off, raw[i])
		off = w.u32(off, 0)
		off = w.u32(off, 0)
		off = w.u16(off, 0)
		off = w.u16(off, 0)
		off = w.u32(off, s.Characteristics)
	}
	w.grow(headersEnd)
	for i, s := range b.Sections {
		if len(s.Data) > 0 {
			w.bytes(uint64(raw[i]), s.Data)
		}
	}
	w.grow(next)
	return w.buf
}
