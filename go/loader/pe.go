package loader

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"

	"github.com/lunixbochs/readbin/go/models"
)

// PeLoader decodes the DOS stub, NT headers and section table of a PE
// image. PE fields are little-endian throughout. There is no function
// table or address translation for PE.
type PeLoader struct {
	LoaderBase
	Dos      PeDosHeader
	NtOffset uint64
	File     PeFileHeader
	Optional PeOptionalHeader

	raw []peSection
}

func NewPeLoader(img *models.Image) (*PeLoader, error) {
	buf := img.Bytes()
	order := binary.LittleEndian
	p := &PeLoader{
		LoaderBase: LoaderBase{byteOrder: order, img: img},
	}
	if err := unpackAt(buf, "dos header", 0, order, &p.Dos); err != nil {
		return nil, err
	}
	p.NtOffset = uint64(p.Dos.Lfanew)
	sig, err := ReadU32(buf, p.NtOffset, order)
	if err != nil {
		return nil, errors.WithStack(&OutOfBoundsError{Table: "nt headers", Offset: p.NtOffset, Size: peSignatureSize, Len: len(buf)})
	}
	if sig != peSignature {
		return nil, decodeErrorf("nt headers", "bad signature 0x%08x", sig)
	}
	if err := unpackAt(buf, "file header", p.NtOffset+peSignatureSize, order, &p.File); err != nil {
		return nil, err
	}
	optOff := p.NtOffset + peSignatureSize + peFileHeaderSize
	if err := p.parseOptional(buf, optOff); err != nil {
		return nil, err
	}
	if p.sections, err = p.parseSections(buf, optOff+uint64(p.File.SizeOfOptionalHeader)); err != nil {
		return nil, err
	}
	p.segments = p.sectionSegments()

	p.arch = "unknown"
	if name, ok := peMachineMap[p.File.Machine]; ok {
		p.arch = name
	}
	switch p.Optional.Magic {
	case pe32PlusMagic:
		p.format, p.bits = "pe32+", 64
	default:
		p.format, p.bits = "pe32", 32
	}
	p.entry = p.Optional.ImageBase + uint64(p.Optional.AddressOfEntryPoint)
	return p, nil
}

func (p *PeLoader) parseOptional(buf []byte, off uint64) error {
	size := uint64(p.File.SizeOfOptionalHeader)
	if size == 0 {
		return nil
	}
	if err := checkBounds(buf, "optional header", off, size); err != nil {
		return err
	}
	magic, _ := ReadU16(buf, off, binary.LittleEndian)
	opt := &p.Optional
	var fixed uint64
	switch magic {
	case pe32Magic:
		var o pe32Optional
		if err := unpackAt(buf, "optional header", off, binary.LittleEndian, &o); err != nil {
			return err
		}
		*opt = PeOptionalHeader{
			Magic: o.Magic, MajorLinkerVersion: o.MajorLinkerVersion, MinorLinkerVersion: o.MinorLinkerVersion,
			SizeOfCode: o.SizeOfCode, SizeOfInitializedData: o.SizeOfInitializedData,
			SizeOfUninitializedData: o.SizeOfUninitializedData, AddressOfEntryPoint: o.AddressOfEntryPoint,
			BaseOfCode: o.BaseOfCode, BaseOfData: o.BaseOfData, ImageBase: uint64(o.ImageBase),
			SectionAlignment: o.SectionAlignment, FileAlignment: o.FileAlignment,
			MajorOSVersion: o.MajorOperatingSystemVersion, MinorOSVersion: o.MinorOperatingSystemVersion,
			MajorImageVersion: o.MajorImageVersion, MinorImageVersion: o.MinorImageVersion,
			MajorSubsystemVersion: o.MajorSubsystemVersion, MinorSubsystemVersion: o.MinorSubsystemVersion,
			Win32VersionValue: o.Win32VersionValue, SizeOfImage: o.SizeOfImage, SizeOfHeaders: o.SizeOfHeaders,
			CheckSum: o.CheckSum, Subsystem: o.Subsystem, DllCharacteristics: o.DllCharacteristics,
			SizeOfStackReserve: uint64(o.SizeOfStackReserve), SizeOfStackCommit: uint64(o.SizeOfStackCommit),
			SizeOfHeapReserve: uint64(o.SizeOfHeapReserve), SizeOfHeapCommit: uint64(o.SizeOfHeapCommit),
			LoaderFlags: o.LoaderFlags, NumberOfRvaAndSizes: o.NumberOfRvaAndSizes,
		}
		fixed = 96
	case pe32PlusMagic:
		var o pe64Optional
		if err := unpackAt(buf, "optional header", off, binary.LittleEndian, &o); err != nil {
			return err
		}
		*opt = PeOptionalHeader{
			Magic: o.Magic, MajorLinkerVersion: o.MajorLinkerVersion, MinorLinkerVersion: o.MinorLinkerVersion,
			SizeOfCode: o.SizeOfCode, SizeOfInitializedData: o.SizeOfInitializedData,
			SizeOfUninitializedData: o.SizeOfUninitializedData, AddressOfEntryPoint: o.AddressOfEntryPoint,
			BaseOfCode: o.BaseOfCode, ImageBase: o.ImageBase,
			SectionAlignment: o.SectionAlignment, FileAlignment: o.FileAlignment,
			MajorOSVersion: o.MajorOperatingSystemVersion, MinorOSVersion: o.MinorOperatingSystemVersion,
			MajorImageVersion: o.MajorImageVersion, MinorImageVersion: o.MinorImageVersion,
			MajorSubsystemVersion: o.MajorSubsystemVersion, MinorSubsystemVersion: o.MinorSubsystemVersion,
			Win32VersionValue: o.Win32VersionValue, SizeOfImage: o.SizeOfImage, SizeOfHeaders: o.SizeOfHeaders,
			CheckSum: o.CheckSum, Subsystem: o.Subsystem, DllCharacteristics: o.DllCharacteristics,
			SizeOfStackReserve: o.SizeOfStackReserve, SizeOfStackCommit: o.SizeOfStackCommit,
			SizeOfHeapReserve: o.SizeOfHeapReserve, SizeOfHeapCommit: o.SizeOfHeapCommit,
			LoaderFlags: o.LoaderFlags, NumberOfRvaAndSizes: o.NumberOfRvaAndSizes,
		}
		fixed = 112
	default:
		return decodeErrorf("optional header", "unknown magic 0x%x", magic)
	}
	if size < fixed {
		return decodeErrorf("optional header", "size %d is smaller than %d", size, fixed)
	}
	count := uint64(opt.NumberOfRvaAndSizes)
	if count > peMaxDirectories {
		count = peMaxDirectories
	}
	if avail := (size - fixed) / 8; count > avail {
		count = avail
	}
	for i := uint64(0); i < count; i++ {
		var dir PeDataDirectory
		if err := unpackAt(buf, "data directories", off+fixed+i*8, binary.LittleEndian, &dir); err != nil {
			return err
		}
		opt.DataDirectory = append(opt.DataDirectory, dir)
	}
	return nil
}

func (p *PeLoader) parseSections(buf []byte, off uint64) ([]models.Section, error) {
	secs := make([]models.Section, 0, p.File.NumberOfSections)
	err := walkTable(buf, "section headers", off, peSectionSize, peSectionSize, int(p.File.NumberOfSections), func(off uint64) error {
		var s peSection
		if err := unpackAt(buf, "section headers", off, binary.LittleEndian, &s); err != nil {
			return err
		}
		kind := models.SectionProgBits
		if s.Characteristics&scnCntUninit != 0 {
			kind = models.SectionNoBits
		}
		secs = append(secs, models.Section{
			Name:   peSectionName(s.Name),
			Kind:   kind,
			Type:   s.Characteristics,
			Flags:  uint64(s.Characteristics),
			Addr:   p.Optional.ImageBase + uint64(s.VirtualAddress),
			Offset: uint64(s.PointerToRawData),
			Size:   uint64(s.SizeOfRawData),
			Link:   uint32(s.NumberOfRelocations),
			Info:   uint32(s.NumberOfLinenumbers),
			Align:  uint64(p.Optional.SectionAlignment),
			Exec:   s.Characteristics&(scnCntCode|scnMemExecute) != 0,
		})
		p.raw = append(p.raw, s)
		return nil
	})
	return secs, err
}

// peSectionName trims the 8 byte name field at its first NUL. Names
// that use all 8 bytes have no terminator.
func peSectionName(name [8]byte) string {
	if i := bytes.IndexByte(name[:], 0); i >= 0 {
		return string(name[:i])
	}
	return string(name[:])
}

// sectionSegments reports each section as a segment so segment dumps
// work the same way for PE images.
func (p *PeLoader) sectionSegments() []models.Segment {
	segs := make([]models.Segment, 0, len(p.raw))
	for i, s := range p.raw {
		segs = append(segs, models.Segment{
			Name:     p.sections[i].Name,
			Offset:   uint64(s.PointerToRawData),
			FileSize: uint64(s.SizeOfRawData),
			Addr:     p.Optional.ImageBase + uint64(s.VirtualAddress),
			MemSize:  uint64(s.VirtualSize),
			Flags:    s.Characteristics,
			Prot:     peProt(s.Characteristics),
			Align:    uint64(p.Optional.SectionAlignment),
		})
	}
	return segs
}

func (p *PeLoader) Functions() []models.Function {
	return nil
}

func (p *PeLoader) Header() []models.FieldGroup {
	d, f, o := p.Dos, p.File, p.Optional
	dos := models.FieldGroup{Title: "msdos header", Fields: []models.Field{
		models.HexField("e_magic", uint64(d.Magic)),
		models.HexField("e_cblp", uint64(d.Cblp)),
		models.HexField("e_cp", uint64(d.Cp)),
		models.HexField("e_crlc", uint64(d.Crlc)),
		models.DecField("e_cparhdr", uint64(d.Cparhdr)),
		models.HexField("e_minalloc", uint64(d.Minalloc)),
		models.HexField("e_maxalloc", uint64(d.Maxalloc)),
		models.HexField("e_ss", uint64(d.Ss)),
		models.HexField("e_sp", uint64(d.Sp)),
		models.HexField("e_csum", uint64(d.Csum)),
		models.HexField("e_ip", uint64(d.Ip)),
		models.HexField("e_cs", uint64(d.Cs)),
		models.HexField("e_lfarlc", uint64(d.Lfarlc)),
		models.DecField("e_ovno", uint64(d.Ovno)),
		models.DecField("e_oemid", uint64(d.Oemid)),
		models.DecField("e_oeminfo", uint64(d.Oeminfo)),
		models.HexField("e_lfanew", uint64(d.Lfanew)),
	}}
	file := models.FieldGroup{Title: "file header", Fields: []models.Field{
		models.HexField("signature", peSignature),
		models.NamedField("machine", uint64(f.Machine), PeMachineName(f.Machine)),
		models.DecField("number_of_sections", uint64(f.NumberOfSections)),
		models.HexField("time_date_stamp", uint64(f.TimeDateStamp)),
		models.HexField("pointer_to_symtab", uint64(f.PointerToSymbolTable)),
		models.DecField("number_of_symbols", uint64(f.NumberOfSymbols)),
		models.DecField("size_of_optional_header", uint64(f.SizeOfOptionalHeader)),
		models.HexField("characteristics", uint64(f.Characteristics)),
	}}
	groups := []models.FieldGroup{dos, file}
	if f.SizeOfOptionalHeader == 0 {
		return groups
	}
	opt := models.FieldGroup{Title: "optional header", Fields: []models.Field{
		models.NamedField("magic", uint64(o.Magic), p.format),
		models.DecField("major_linker_version", uint64(o.MajorLinkerVersion)),
		models.DecField("minor_linker_version", uint64(o.MinorLinkerVersion)),
		models.HexField("size_of_code", uint64(o.SizeOfCode)),
		models.HexField("size_of_initialized_data", uint64(o.SizeOfInitializedData)),
		models.HexField("size_of_uninitialized_data", uint64(o.SizeOfUninitializedData)),
		models.HexField("address_of_entry_point", uint64(o.AddressOfEntryPoint)),
		models.HexField("base_of_code", uint64(o.BaseOfCode)),
	}}
	if o.Magic == pe32Magic {
		opt.Fields = append(opt.Fields, models.HexField("base_of_data", uint64(o.BaseOfData)))
	}
	opt.Fields = append(opt.Fields,
		models.HexField("image_base", o.ImageBase),
		models.HexField("section_alignment", uint64(o.SectionAlignment)),
		models.HexField("file_alignment", uint64(o.FileAlignment)),
		versionField("operating_system_version", o.MajorOSVersion, o.MinorOSVersion),
		versionField("image_version", o.MajorImageVersion, o.MinorImageVersion),
		versionField("subsystem_version", o.MajorSubsystemVersion, o.MinorSubsystemVersion),
		models.HexField("win32_version_value", uint64(o.Win32VersionValue)),
		models.HexField("size_of_image", uint64(o.SizeOfImage)),
		models.HexField("size_of_headers", uint64(o.SizeOfHeaders)),
		models.HexField("check_sum", uint64(o.CheckSum)),
		models.NamedField("subsystem", uint64(o.Subsystem), PeSubsystemName(o.Subsystem)),
		models.HexField("dll_characteristics", uint64(o.DllCharacteristics)),
		models.HexField("size_of_stack_reserve", o.SizeOfStackReserve),
		models.HexField("size_of_stack_commit", o.SizeOfStackCommit),
		models.HexField("size_of_heap_reserve", o.SizeOfHeapReserve),
		models.HexField("size_of_heap_commit", o.SizeOfHeapCommit),
		models.HexField("loader_flags", uint64(o.LoaderFlags)),
		models.DecField("number_of_rva_and_sizes", uint64(o.NumberOfRvaAndSizes)),
	)
	for i, dir := range o.DataDirectory {
		opt.Fields = append(opt.Fields, models.Field{
			Name:  fmt.Sprintf("data_directory[%d]", i),
			Raw:   uint64(dir.VirtualAddress),
			Value: fmt.Sprintf("0x%x (0x%x bytes)", dir.VirtualAddress, dir.Size),
		})
	}
	return append(groups, opt)
}

func versionField(name string, major, minor uint16) models.Field {
	return models.Field{
		Name:  name,
		Raw:   uint64(major)<<16 | uint64(minor),
		Value: fmt.Sprintf("%d.%d", major, minor),
	}
}

func (p *PeLoader) DescribeSegment(s models.Segment) models.FieldGroup {
	return models.FieldGroup{Title: "section " + s.Name, Fields: []models.Field{
		models.HexField("virtual_address", s.Addr-p.Optional.ImageBase),
		models.HexField("load_address", s.Addr),
		models.HexField("virtual_size", s.MemSize),
		models.HexField("pointer_to_raw_data", s.Offset),
		models.HexField("size_of_raw_data", s.FileSize),
		models.HexField("characteristics", uint64(s.Flags)),
	}}
}

func (p *PeLoader) DescribeSection(s models.Section) models.FieldGroup {
	exec := "no"
	if s.Exec {
		exec = "yes"
	}
	return models.FieldGroup{Title: "section header", Fields: []models.Field{
		{Name: "name", Value: s.Name},
		models.NamedField("kind", uint64(s.Kind), s.Kind.String()),
		models.HexField("virtual_address", s.Addr-p.Optional.ImageBase),
		models.HexField("load_address", s.Addr),
		models.HexField("pointer_to_raw_data", s.Offset),
		models.HexField("size_of_raw_data", s.Size),
		models.DecField("number_of_relocations", uint64(s.Link)),
		models.DecField("number_of_linenumbers", uint64(s.Info)),
		models.HexField("characteristics", s.Flags),
		{Name: "executable", Value: exec},
	}}
}
