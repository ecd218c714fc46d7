package loader

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrUnknownMagic = errors.New("could not identify file magic")

// ErrMissingTable is recorded (never returned from Load) when .symtab or
// .strtab is absent and the function table is left empty.
var ErrMissingTable = errors.New("missing table")

// OutOfBoundsError reports a read that would run past the end of the
// image. Table names the structure being decoded.
type OutOfBoundsError struct {
	Table  string
	Offset uint64
	Size   uint64
	Len    int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%s: truncated, %d bytes at offset 0x%x overrun %d byte image", e.Table, e.Size, e.Offset, e.Len)
}

// UnmappedAddressError is attached to a function whose address isn't
// covered by any segment.
type UnmappedAddressError struct {
	Addr uint64
}

func (e *UnmappedAddressError) Error() string {
	return fmt.Sprintf("address 0x%x is not mapped by any segment", e.Addr)
}

// NameOverrunError reports a string table lookup that hit the end of
// the table without a NUL terminator.
type NameOverrunError struct {
	Table  string
	Offset uint64
}

func (e *NameOverrunError) Error() string {
	return fmt.Sprintf("%s: unterminated string at offset 0x%x", e.Table, e.Offset)
}

// DecodeError reports in-bounds data that doesn't make sense.
type DecodeError struct {
	Table string
	Msg   string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Table, e.Msg)
}

func decodeErrorf(table, format string, args ...interface{}) error {
	return errors.WithStack(&DecodeError{Table: table, Msg: fmt.Sprintf(format, args...)})
}
