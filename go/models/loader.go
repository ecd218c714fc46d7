package models

import "encoding/binary"

// Loader is the query surface shared by every executable format. A
// Loader is fully built before it is returned and never changes
// afterwards, so it can be read from several goroutines at once.
type Loader interface {
	Format() string
	Arch() string
	Bits() int
	ByteOrder() binary.ByteOrder
	Entry() uint64
	Header() []FieldGroup
	DescribeSegment(s Segment) FieldGroup
	DescribeSection(s Section) FieldGroup
	Segments() []Segment
	Sections() []Section
	Functions() []Function
	// Warnings lists recoverable problems found while parsing tables.
	Warnings() []error
	Data() []byte
	SegmentData(s Segment) ([]byte, error)
	SectionData(s Section) ([]byte, error)
	Close() error
}
