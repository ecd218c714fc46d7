package loader

import (
	"bytes"
	"encoding/binary"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

func checkBounds(buf []byte, table string, off, size uint64) error {
	end := off + size
	if end < off || end > uint64(len(buf)) {
		return errors.WithStack(&OutOfBoundsError{Table: table, Offset: off, Size: size, Len: len(buf)})
	}
	return nil
}

// ReadU16 decodes a 16-bit value at off using order.
func ReadU16(buf []byte, off uint64, order binary.ByteOrder) (uint16, error) {
	if err := checkBounds(buf, "u16", off, 2); err != nil {
		return 0, err
	}
	return order.Uint16(buf[off:]), nil
}

func ReadU32(buf []byte, off uint64, order binary.ByteOrder) (uint32, error) {
	if err := checkBounds(buf, "u32", off, 4); err != nil {
		return 0, err
	}
	return order.Uint32(buf[off:]), nil
}

func ReadU64(buf []byte, off uint64, order binary.ByteOrder) (uint64, error) {
	if err := checkBounds(buf, "u64", off, 8); err != nil {
		return 0, err
	}
	return order.Uint64(buf[off:]), nil
}

// unpackAt decodes the fixed size record i from buf at off. The bounds
// check happens up front so a truncated record is reported against its
// table instead of as a short read.
func unpackAt(buf []byte, table string, off uint64, order binary.ByteOrder, i interface{}) error {
	size, err := struc.Sizeof(i)
	if err != nil {
		return errors.Wrap(err, "struc.Sizeof() failed")
	}
	if err := checkBounds(buf, table, off, uint64(size)); err != nil {
		return err
	}
	r := bytes.NewReader(buf[off : off+uint64(size)])
	return errors.Wrapf(struc.UnpackWithOrder(r, i, order), "failed to unpack %s", table)
}

// readCString returns the NUL terminated string starting at off within
// table. Running off the end of table is an error.
func readCString(table []byte, name string, off uint64) (string, error) {
	if off >= uint64(len(table)) {
		return "", errors.WithStack(&OutOfBoundsError{Table: name, Offset: off, Size: 1, Len: len(table)})
	}
	end := bytes.IndexByte(table[off:], 0)
	if end < 0 {
		return "", errors.WithStack(&NameOverrunError{Table: name, Offset: off})
	}
	return string(table[off : off+uint64(end)]), nil
}

func getMagic(buf []byte, n int) []byte {
	if len(buf) < n {
		return nil
	}
	return buf[:n]
}
