package models

import "fmt"

const (
	ClassNone = 0
	Class32   = 1
	Class64   = 2

	DataNone = 0
	DataLSB  = 1
	DataMSB  = 2
)

// Ident is the 16 byte ELF identification block.
type Ident struct {
	Magic      [16]byte
	Class      uint8
	Endian     uint8
	Version    uint8
	OSABI      uint8
	ABIVersion uint8
}

func (i Ident) Bits() int {
	switch i.Class {
	case Class32:
		return 32
	case Class64:
		return 64
	}
	return 0
}

func (i Ident) MagicString() string {
	s := ""
	for n, b := range i.Magic {
		if n > 0 {
			s += " "
		}
		s += fmt.Sprintf("%02x", b)
	}
	return s
}
