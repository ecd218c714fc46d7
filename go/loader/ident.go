package loader

import (
	"bytes"
	"debug/elf"
	"encoding/binary"

	"github.com/lunixbochs/readbin/go/models"
)

var elfMagic = []byte{0x7f, 0x45, 0x4c, 0x46}
var peMagic = []byte{0x4d, 0x5a}

func MatchElf(buf []byte) bool {
	return bytes.Equal(getMagic(buf, len(elfMagic)), elfMagic)
}

func MatchPe(buf []byte) bool {
	return bytes.Equal(getMagic(buf, len(peMagic)), peMagic)
}

// ParseIdent decodes the ELF identification block. The class byte must
// select a 32- or 64-bit layout and the data byte a byte order.
func ParseIdent(buf []byte) (models.Ident, error) {
	var id models.Ident
	if err := checkBounds(buf, "ident", 0, uint64(len(id.Magic))); err != nil {
		return id, err
	}
	copy(id.Magic[:], buf)
	id.Class = buf[elf.EI_CLASS]
	id.Endian = buf[elf.EI_DATA]
	id.Version = buf[elf.EI_VERSION]
	id.OSABI = buf[elf.EI_OSABI]
	id.ABIVersion = buf[elf.EI_ABIVERSION]
	if id.Class != models.Class32 && id.Class != models.Class64 {
		return id, decodeErrorf("ident", "invalid class %d", id.Class)
	}
	if _, err := identOrder(id); err != nil {
		return id, err
	}
	return id, nil
}

func identOrder(id models.Ident) (binary.ByteOrder, error) {
	switch id.Endian {
	case models.DataLSB:
		return binary.LittleEndian, nil
	case models.DataMSB:
		return binary.BigEndian, nil
	}
	return nil, decodeErrorf("ident", "invalid data encoding %d", id.Endian)
}

func identFields(id models.Ident) []models.Field {
	return []models.Field{
		{Name: "magic", Value: id.MagicString()},
		models.NamedField("class", uint64(id.Class), elf.Class(id.Class).String()),
		models.NamedField("endian", uint64(id.Endian), elf.Data(id.Endian).String()),
		models.DecField("version", uint64(id.Version)),
		models.NamedField("os_abi", uint64(id.OSABI), elf.OSABI(id.OSABI).String()),
		models.DecField("os_abi_ver", uint64(id.ABIVersion)),
	}
}
