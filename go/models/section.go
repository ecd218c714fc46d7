package models

// SectionKind is the closed set of section classes used for display
// and for locating tables. Executability is not a kind; see
// Section.Executable.
type SectionKind int

const (
	SectionNull SectionKind = iota
	SectionProgBits
	SectionSymTab
	SectionStrTab
	SectionRela
	SectionHash
	SectionDynamic
	SectionNote
	SectionNoBits
	SectionRel
	SectionShLib
	SectionDynSym
	SectionOther
)

var sectionKindNames = [...]string{
	SectionNull:     "SHT_NULL",
	SectionProgBits: "SHT_PROGBITS",
	SectionSymTab:   "SHT_SYMTAB",
	SectionStrTab:   "SHT_STRTAB",
	SectionRela:     "SHT_RELA",
	SectionHash:     "SHT_HASH",
	SectionDynamic:  "SHT_DYNAMIC",
	SectionNote:     "SHT_NOTE",
	SectionNoBits:   "SHT_NOBITS",
	SectionRel:      "SHT_REL",
	SectionShLib:    "SHT_SHLIB",
	SectionDynSym:   "SHT_DYNSYM",
	SectionOther:    "unknown type",
}

func (k SectionKind) String() string {
	if k < 0 || int(k) >= len(sectionKindNames) {
		return "unknown type"
	}
	return sectionKindNames[k]
}

// Section is a section header with its name already resolved.
type Section struct {
	Name    string
	Kind    SectionKind
	Type    uint32
	Flags   uint64
	Addr    uint64
	Offset  uint64
	Size    uint64
	Link    uint32
	Info    uint32
	Align   uint64
	EntSize uint64
	Exec    bool
	// NameErr is set when the name could not be resolved.
	NameErr error
}

// Executable reports whether the section's flags mark it as code. Only
// executable sections are handed to a disassembler.
func (s *Section) Executable() bool {
	return s.Exec
}

// HasData reports whether the section occupies bytes in the file.
func (s *Section) HasData() bool {
	return s.Kind != SectionNull && s.Kind != SectionNoBits && s.Size > 0
}
