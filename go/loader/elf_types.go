package loader

import (
	"debug/elf"

	"github.com/lunixbochs/readbin/go/models"
)

const identSize = 16

const (
	shfExecInstr = uint32(elf.SHF_EXECINSTR)
	sttFunc      = uint8(elf.STT_FUNC)
)

var machineMap = map[elf.Machine]string{
	elf.EM_386:     "x86",
	elf.EM_X86_64:  "x86_64",
	elf.EM_ARM:     "arm",
	elf.EM_AARCH64: "arm64",
	elf.EM_MIPS:    "mips",
	elf.EM_PPC:     "ppc",
	elf.EM_PPC64:   "ppc64",
	elf.EM_RISCV:   "riscv",
	elf.EM_SPARC:   "sparc",
}

func elfArch(m uint16) string {
	if name, ok := machineMap[elf.Machine(m)]; ok {
		return name
	}
	return "unknown"
}

var elfSectionKinds = map[elf.SectionType]models.SectionKind{
	elf.SHT_NULL:     models.SectionNull,
	elf.SHT_PROGBITS: models.SectionProgBits,
	elf.SHT_SYMTAB:   models.SectionSymTab,
	elf.SHT_STRTAB:   models.SectionStrTab,
	elf.SHT_RELA:     models.SectionRela,
	elf.SHT_HASH:     models.SectionHash,
	elf.SHT_DYNAMIC:  models.SectionDynamic,
	elf.SHT_NOTE:     models.SectionNote,
	elf.SHT_NOBITS:   models.SectionNoBits,
	elf.SHT_REL:      models.SectionRel,
	elf.SHT_SHLIB:    models.SectionShLib,
	elf.SHT_DYNSYM:   models.SectionDynSym,
}

func elfSectionKind(t uint32) models.SectionKind {
	if k, ok := elfSectionKinds[elf.SectionType(t)]; ok {
		return k
	}
	return models.SectionOther
}

func ElfTypeName(t uint16) string {
	return elf.Type(t).String()
}

func ElfMachineName(m uint16) string {
	return elf.Machine(m).String()
}

func ElfSegmentTypeName(t uint32) string {
	return elf.ProgType(t).String()
}

func ElfSectionTypeName(t uint32) string {
	return elf.SectionType(t).String()
}

func ElfSegmentFlags(f uint32) string {
	return elf.ProgFlag(f).String()
}

func ElfSectionFlags(f uint64) string {
	return elf.SectionFlag(uint32(f)).String()
}

func elfProt(flags uint32) int {
	var prot int
	if flags&uint32(elf.PF_R) != 0 {
		prot |= models.ProtRead
	}
	if flags&uint32(elf.PF_W) != 0 {
		prot |= models.ProtWrite
	}
	if flags&uint32(elf.PF_X) != 0 {
		prot |= models.ProtExec
	}
	return prot
}
