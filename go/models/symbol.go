package models

// Function is a named code range taken from the symbol table. Offset is
// always a file offset produced by address translation, never a
// virtual address; Addr keeps the virtual address for display and call
// resolution.
type Function struct {
	Name   string
	Addr   uint64
	Offset uint64
	Size   uint64
	// Err records a failure specific to this symbol (unmapped address,
	// unterminated name). Offset is meaningless when Err is set.
	Err error
}

// Valid reports whether the function can be disassembled. Zero sized
// entries are usually aliases rather than code.
func (f Function) Valid() bool {
	return f.Err == nil && f.Size > 0
}

func (f Function) Contains(addr uint64) bool {
	return f.Addr <= addr && addr < f.Addr+f.Size
}
