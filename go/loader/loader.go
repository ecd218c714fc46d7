package loader

import (
	"encoding/binary"

	"github.com/lunixbochs/readbin/go/models"
)

// LoaderBase holds the pieces every format loader shares: the backing
// image, the identity fields and the decoded tables.
type LoaderBase struct {
	format    string
	arch      string
	bits      int
	byteOrder binary.ByteOrder
	entry     uint64

	img      *models.Image
	segments []models.Segment
	sections []models.Section
	warnings []error
}

func (l *LoaderBase) Format() string {
	return l.format
}

func (l *LoaderBase) Arch() string {
	return l.arch
}

func (l *LoaderBase) Bits() int {
	return l.bits
}

func (l *LoaderBase) ByteOrder() binary.ByteOrder {
	if l.byteOrder == nil {
		return binary.LittleEndian
	}
	return l.byteOrder
}

func (l *LoaderBase) Entry() uint64 {
	return l.entry
}

func (l *LoaderBase) Segments() []models.Segment {
	return l.segments
}

func (l *LoaderBase) Sections() []models.Section {
	return l.sections
}

func (l *LoaderBase) Warnings() []error {
	return l.warnings
}

func (l *LoaderBase) Data() []byte {
	return l.img.Bytes()
}

func (l *LoaderBase) Image() *models.Image {
	return l.img
}

// SegmentData returns the file backed bytes of s.
func (l *LoaderBase) SegmentData(s models.Segment) ([]byte, error) {
	if err := checkBounds(l.img.Bytes(), "segment "+s.Name, s.Offset, s.FileSize); err != nil {
		return nil, err
	}
	p, _ := l.img.Slice(s.Offset, s.FileSize)
	return p, nil
}

// SectionData returns the bytes of s, or nil for sections that occupy
// no file space.
func (l *LoaderBase) SectionData(s models.Section) ([]byte, error) {
	if !s.HasData() {
		return nil, nil
	}
	if err := checkBounds(l.img.Bytes(), "section "+s.Name, s.Offset, s.Size); err != nil {
		return nil, err
	}
	p, _ := l.img.Slice(s.Offset, s.Size)
	return p, nil
}

func (l *LoaderBase) Close() error {
	return l.img.Close()
}

func (l *LoaderBase) warn(err error) {
	l.warnings = append(l.warnings, err)
}
