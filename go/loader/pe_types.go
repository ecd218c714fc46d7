package loader

import (
	"debug/pe"

	"github.com/lunixbochs/readbin/go/models"
)

const (
	peSignature      = 0x00004550 // "PE\0\0"
	peSignatureSize  = 4
	peFileHeaderSize = 20
	peSectionSize    = 40
	peMaxDirectories = 16

	pe32Magic     = 0x10b
	pe32PlusMagic = 0x20b
)

// PeDosHeader is the MS-DOS stub header. Only Lfanew matters for
// locating the NT headers.
type PeDosHeader struct {
	Magic    uint16
	Cblp     uint16
	Cp       uint16
	Crlc     uint16
	Cparhdr  uint16
	Minalloc uint16
	Maxalloc uint16
	Ss       uint16
	Sp       uint16
	Csum     uint16
	Ip       uint16
	Cs       uint16
	Lfarlc   uint16
	Ovno     uint16
	Res      [8]byte
	Oemid    uint16
	Oeminfo  uint16
	Res2     [20]byte
	Lfanew   uint32
}

// PeFileHeader is the COFF file header.
type PeFileHeader struct {
	Machine              uint16
	NumberOfSections     uint16
	TimeDateStamp        uint32
	PointerToSymbolTable uint32
	NumberOfSymbols      uint32
	SizeOfOptionalHeader uint16
	Characteristics      uint16
}

type pe32Optional struct {
	Magic                       uint16
	MajorLinkerVersion          uint8
	MinorLinkerVersion          uint8
	SizeOfCode                  uint32
	SizeOfInitializedData       uint32
	SizeOfUninitializedData     uint32
	AddressOfEntryPoint         uint32
	BaseOfCode                  uint32
	BaseOfData                  uint32
	ImageBase                   uint32
	SectionAlignment            uint32
	FileAlignment               uint32
	MajorOperatingSystemVersion uint16
	MinorOperatingSystemVersion uint16
	MajorImageVersion           uint16
	MinorImageVersion           uint16
	MajorSubsystemVersion       uint16
	MinorSubsystemVersion       uint16
	Win32VersionValue           uint32
	SizeOfImage                 uint32
	SizeOfHeaders               uint32
	CheckSum                    uint32
	Subsystem                   uint16
	DllCharacteristics          uint16
	SizeOfStackReserve          uint32
	SizeOfStackCommit           uint32
	SizeOfHeapReserve           uint32
	SizeOfHeapCommit            uint32
	LoaderFlags                 uint32
	NumberOfRvaAndSizes         uint32
}

type pe64Optional struct {
	Magic                       uint16
	MajorLinkerVersion          uint8
	MinorLinkerVersion          uint8
	SizeOfCode                  uint32
	SizeOfInitializedData       uint32
	SizeOfUninitializedData     uint32
	AddressOfEntryPoint         uint32
	BaseOfCode                  uint32
	ImageBase                   uint64
	SectionAlignment            uint32
	FileAlignment               uint32
	MajorOperatingSystemVersion uint16
	MinorOperatingSystemVersion uint16
	MajorImageVersion           uint16
	MinorImageVersion           uint16
	MajorSubsystemVersion       uint16
	MinorSubsystemVersion       uint16
	Win32VersionValue           uint32
	SizeOfImage                 uint32
	SizeOfHeaders               uint32
	CheckSum                    uint32
	Subsystem                   uint16
	DllCharacteristics          uint16
	SizeOfStackReserve          uint64
	SizeOfStackCommit           uint64
	SizeOfHeapReserve           uint64
	SizeOfHeapCommit            uint64
	LoaderFlags                 uint32
	NumberOfRvaAndSizes         uint32
}

// PeOptionalHeader holds either optional header layout widened to 64
// bits. BaseOfData is only present in PE32 images.
type PeOptionalHeader struct {
	Magic                   uint16
	MajorLinkerVersion      uint8
	MinorLinkerVersion      uint8
	SizeOfCode              uint32
	SizeOfInitializedData   uint32
	SizeOfUninitializedData uint32
	AddressOfEntryPoint     uint32
	BaseOfCode              uint32
	BaseOfData              uint32
	ImageBase               uint64
	SectionAlignment        uint32
	FileAlignment           uint32
	MajorOSVersion          uint16
	MinorOSVersion          uint16
	MajorImageVersion       uint16
	MinorImageVersion       uint16
	MajorSubsystemVersion   uint16
	MinorSubsystemVersion   uint16
	Win32VersionValue       uint32
	SizeOfImage             uint32
	SizeOfHeaders           uint32
	CheckSum                uint32
	Subsystem               uint16
	DllCharacteristics      uint16
	SizeOfStackReserve      uint64
	SizeOfStackCommit       uint64
	SizeOfHeapReserve       uint64
	SizeOfHeapCommit        uint64
	LoaderFlags             uint32
	NumberOfRvaAndSizes     uint32
	DataDirectory           []PeDataDirectory
}

type PeDataDirectory struct {
	VirtualAddress uint32
	Size           uint32
}

type peSection struct {
	Name                 [8]byte
	VirtualSize          uint32
	VirtualAddress       uint32
	SizeOfRawData        uint32
	PointerToRawData     uint32
	PointerToRelocations uint32
	PointerToLinenumbers uint32
	NumberOfRelocations  uint16
	NumberOfLinenumbers  uint16
	Characteristics      uint32
}

const (
	scnCntCode    = uint32(pe.IMAGE_SCN_CNT_CODE)
	scnMemExecute = uint32(pe.IMAGE_SCN_MEM_EXECUTE)
	scnCntUninit  = uint32(pe.IMAGE_SCN_CNT_UNINITIALIZED_DATA)
	scnMemRead    = uint32(pe.IMAGE_SCN_MEM_READ)
	scnMemWrite   = uint32(pe.IMAGE_SCN_MEM_WRITE)
)

func peProt(ch uint32) int {
	var prot int
	if ch&scnMemRead != 0 {
		prot |= models.ProtRead
	}
	if ch&scnMemWrite != 0 {
		prot |= models.ProtWrite
	}
	if ch&scnMemExecute != 0 {
		prot |= models.ProtExec
	}
	return prot
}

var peMachineMap = map[uint16]string{
	pe.IMAGE_FILE_MACHINE_I386:  "x86",
	pe.IMAGE_FILE_MACHINE_AMD64: "x86_64",
	pe.IMAGE_FILE_MACHINE_ARM:   "arm",
	pe.IMAGE_FILE_MACHINE_ARMNT: "arm",
	pe.IMAGE_FILE_MACHINE_ARM64: "arm64",
}

var peMachineNames = map[uint16]string{
	pe.IMAGE_FILE_MACHINE_UNKNOWN: "IMAGE_FILE_MACHINE_UNKNOWN",
	pe.IMAGE_FILE_MACHINE_I386:    "IMAGE_FILE_MACHINE_I386",
	pe.IMAGE_FILE_MACHINE_AMD64:   "IMAGE_FILE_MACHINE_AMD64",
	pe.IMAGE_FILE_MACHINE_ARM:     "IMAGE_FILE_MACHINE_ARM",
	pe.IMAGE_FILE_MACHINE_ARMNT:   "IMAGE_FILE_MACHINE_ARMNT",
	pe.IMAGE_FILE_MACHINE_ARM64:   "IMAGE_FILE_MACHINE_ARM64",
	pe.IMAGE_FILE_MACHINE_IA64:    "IMAGE_FILE_MACHINE_IA64",
}

var peSubsystemNames = map[uint16]string{
	pe.IMAGE_SUBSYSTEM_UNKNOWN:                  "IMAGE_SUBSYSTEM_UNKNOWN",
	pe.IMAGE_SUBSYSTEM_NATIVE:                   "IMAGE_SUBSYSTEM_NATIVE",
	pe.IMAGE_SUBSYSTEM_WINDOWS_GUI:              "IMAGE_SUBSYSTEM_WINDOWS_GUI",
	pe.IMAGE_SUBSYSTEM_WINDOWS_CUI:              "IMAGE_SUBSYSTEM_WINDOWS_CUI",
	pe.IMAGE_SUBSYSTEM_EFI_APPLICATION:          "IMAGE_SUBSYSTEM_EFI_APPLICATION",
	pe.IMAGE_SUBSYSTEM_EFI_BOOT_SERVICE_DRIVER:  "IMAGE_SUBSYSTEM_EFI_BOOT_SERVICE_DRIVER",
	pe.IMAGE_SUBSYSTEM_EFI_RUNTIME_DRIVER:       "IMAGE_SUBSYSTEM_EFI_RUNTIME_DRIVER",
	pe.IMAGE_SUBSYSTEM_WINDOWS_BOOT_APPLICATION: "IMAGE_SUBSYSTEM_WINDOWS_BOOT_APPLICATION",
}

func PeMachineName(m uint16) string {
	if name, ok := peMachineNames[m]; ok {
		return name
	}
	return "unknown machine"
}

func PeSubsystemName(s uint16) string {
	if name, ok := peSubsystemNames[s]; ok {
		return name
	}
	return "unknown subsystem"
}
