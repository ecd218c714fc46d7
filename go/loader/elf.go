package loader

import (
	"debug/elf"
	"fmt"

	"github.com/pkg/errors"

	"github.com/lunixbochs/readbin/go/models"
)

// ElfFileHeader is the width independent view of an ELF file header.
type ElfFileHeader struct {
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

// elfHeader is implemented once per ELF width. Everything above the
// record decoders works on the widened values it returns.
type elfHeader interface {
	File() ElfFileHeader
	recordSizes() (prog, sect, sym uint64)
	segment(buf []byte, off uint64) (models.Segment, error)
	section(buf []byte, off uint64) (models.Section, uint32, error)
	symbol(buf []byte, off uint64) (elfSymbol, error)
}

// elfSymbol is a decoded .symtab entry. It only lives until the
// function table is built.
type elfSymbol struct {
	Name  uint32
	Info  uint8
	Value uint64
	Size  uint64
}

type ElfLoader struct {
	LoaderBase
	Ident     models.Ident
	header    elfHeader
	functions []models.Function
}

// NewElfLoader decodes every table of an ELF image. Truncated header
// tables are fatal; symbol table problems only leave the function table
// empty and are reported through Warnings.
func NewElfLoader(img *models.Image) (*ElfLoader, error) {
	buf := img.Bytes()
	ident, err := ParseIdent(buf)
	if err != nil {
		return nil, err
	}
	order, _ := identOrder(ident)
	var hdr elfHeader
	switch ident.Class {
	case models.Class32:
		hdr, err = newElf32(buf, order)
	default:
		hdr, err = newElf64(buf, order)
	}
	if err != nil {
		return nil, err
	}
	file := hdr.File()
	e := &ElfLoader{
		LoaderBase: LoaderBase{
			format:    fmt.Sprintf("elf%d", ident.Bits()),
			arch:      elfArch(file.Machine),
			bits:      ident.Bits(),
			byteOrder: order,
			entry:     file.Entry,
			img:       img,
		},
		Ident:  ident,
		header: hdr,
	}
	if e.segments, err = e.parseSegments(); err != nil {
		return nil, err
	}
	e.checkOverlaps()
	if e.sections, err = e.parseSections(); err != nil {
		return nil, err
	}
	e.functions = e.buildFunctions()
	return e, nil
}

func (e *ElfLoader) File() ElfFileHeader {
	return e.header.File()
}

func (e *ElfLoader) Functions() []models.Function {
	return e.functions
}

// Translate maps a virtual address to a file offset through the
// program headers.
func (e *ElfLoader) Translate(addr uint64) (uint64, error) {
	return Translate(e.segments, addr)
}

// walkTable checks that a count*entsize table fits in the image and
// calls fn with each record offset.
func walkTable(buf []byte, table string, off uint64, entsize, minsize uint64, count int, fn func(off uint64) error) error {
	if count == 0 {
		return nil
	}
	if entsize < minsize {
		return decodeErrorf(table, "entry size %d is smaller than %d", entsize, minsize)
	}
	if err := checkBounds(buf, table, off, entsize*uint64(count)); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		if err := fn(off + uint64(i)*entsize); err != nil {
			return err
		}
	}
	return nil
}

func (e *ElfLoader) parseSegments() ([]models.Segment, error) {
	buf := e.img.Bytes()
	file := e.header.File()
	progSize, _, _ := e.header.recordSizes()
	segs := make([]models.Segment, 0, file.Phnum)
	err := walkTable(buf, "program headers", file.Phoff, uint64(file.Phentsize), progSize, int(file.Phnum), func(off uint64) error {
		seg, err := e.header.segment(buf, off)
		if err != nil {
			return err
		}
		segs = append(segs, seg)
		return nil
	})
	return segs, err
}

// checkOverlaps warns about PT_LOAD segments sharing an address.
// Translate resolves such addresses through the lowest segment.
func (e *ElfLoader) checkOverlaps() {
	for i := range e.segments {
		a := &e.segments[i]
		if a.Type != uint32(elf.PT_LOAD) || a.FileSize == 0 || a.MemSize == 0 {
			continue
		}
		for j := i + 1; j < len(e.segments); j++ {
			b := &e.segments[j]
			if b.Type != uint32(elf.PT_LOAD) || b.FileSize == 0 || b.MemSize == 0 {
				continue
			}
			if a.Overlaps(b) {
				e.warn(decodeErrorf("program headers", "segments %d and %d overlap (%s, %s)", i, j, a, b))
			}
		}
	}
}

func (e *ElfLoader) parseSections() ([]models.Section, error) {
	buf := e.img.Bytes()
	file := e.header.File()
	_, sectSize, _ := e.header.recordSizes()
	secs := make([]models.Section, 0, file.Shnum)
	var nameOffs []uint32
	err := walkTable(buf, "section headers", file.Shoff, uint64(file.Shentsize), sectSize, int(file.Shnum), func(off uint64) error {
		sec, nameOff, err := e.header.section(buf, off)
		if err != nil {
			return err
		}
		secs = append(secs, sec)
		nameOffs = append(nameOffs, nameOff)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(secs) == 0 {
		return secs, nil
	}
	if int(file.Shstrndx) >= len(secs) {
		e.warn(decodeErrorf("section headers", "string table index %d out of range", file.Shstrndx))
		return secs, nil
	}
	strtab := secs[file.Shstrndx]
	names, err := e.SectionData(strtab)
	if err != nil {
		e.warn(errors.Wrap(err, "section names unavailable"))
		return secs, nil
	}
	for i := range secs {
		name, err := readCString(names, ".shstrtab", uint64(nameOffs[i]))
		if err != nil {
			secs[i].NameErr = err
			e.warn(errors.Wrapf(err, "section %d", i))
			continue
		}
		secs[i].Name = name
	}
	return secs, nil
}

// Section returns the first section called name.
func (e *ElfLoader) Section(name string) (models.Section, bool) {
	for _, s := range e.sections {
		if s.NameErr == nil && s.Name == name {
			return s, true
		}
	}
	return models.Section{}, false
}

func (e *ElfLoader) Header() []models.FieldGroup {
	f := e.header.File()
	fields := identFields(e.Ident)
	fields = append(fields,
		models.NamedField("e_type", uint64(f.Type), ElfTypeName(f.Type)),
		models.NamedField("e_machine", uint64(f.Machine), ElfMachineName(f.Machine)),
		models.HexField("e_version", uint64(f.Version)),
		models.HexField("e_entry", f.Entry),
		models.DecField("e_phoff", f.Phoff),
		models.DecField("e_shoff", f.Shoff),
		models.HexField("e_flags", uint64(f.Flags)),
		models.DecField("e_ehsize", uint64(f.Ehsize)),
		models.DecField("e_phentsize", uint64(f.Phentsize)),
		models.DecField("e_phnum", uint64(f.Phnum)),
		models.DecField("e_shentsize", uint64(f.Shentsize)),
		models.DecField("e_shnum", uint64(f.Shnum)),
		models.DecField("e_shstrndx", uint64(f.Shstrndx)),
	)
	return []models.FieldGroup{{Title: "elf header", Fields: fields}}
}

func (e *ElfLoader) DescribeSegment(s models.Segment) models.FieldGroup {
	return models.FieldGroup{Title: "program header", Fields: []models.Field{
		models.NamedField("p_type", uint64(s.Type), s.Name),
		models.HexField("p_offset", s.Offset),
		models.HexField("p_vaddr", s.Addr),
		models.HexField("p_filesz", s.FileSize),
		models.HexField("p_memsz", s.MemSize),
		models.NamedField("p_flags", uint64(s.Flags), ElfSegmentFlags(s.Flags)),
		models.HexField("p_align", s.Align),
	}}
}

func (e *ElfLoader) DescribeSection(s models.Section) models.FieldGroup {
	return models.FieldGroup{Title: "section header", Fields: []models.Field{
		{Name: "sh_name", Value: s.Name},
		models.NamedField("sh_type", uint64(s.Type), ElfSectionTypeName(s.Type)),
		models.NamedField("sh_flags", s.Flags, ElfSectionFlags(s.Flags)),
		models.HexField("sh_addr", s.Addr),
		models.HexField("sh_offset", s.Offset),
		models.DecField("sh_size", s.Size),
		models.DecField("sh_link", uint64(s.Link)),
		models.DecField("sh_info", uint64(s.Info)),
		models.DecField("sh_addralign", s.Align),
		models.DecField("sh_entsize", s.EntSize),
	}}
}
