package loader

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/lunixbochs/readbin/go/models"
)

// RawLoader presents a file with no headers as one flat, executable
// range of x86 code mapped at a fixed base.
type RawLoader struct {
	LoaderBase
}

var rawArch = map[int]string{
	16: "x86_16",
	32: "x86",
	64: "x86_64",
}

// NewRawLoader maps img at base. A zero bits defaults to 64.
func NewRawLoader(img *models.Image, bits int, base uint64) (*RawLoader, error) {
	if bits == 0 {
		bits = 64
	}
	arch, ok := rawArch[bits]
	if !ok {
		return nil, errors.Errorf("invalid raw mode: %d bits", bits)
	}
	if img.Len() == 0 {
		return nil, errors.New("cannot load an empty file")
	}
	size := uint64(img.Len())
	r := &RawLoader{LoaderBase{
		format:    "raw",
		arch:      arch,
		bits:      bits,
		byteOrder: binary.LittleEndian,
		entry:     base,
		img:       img,
	}}
	// completely flat memory model
	r.segments = []models.Segment{{
		Name:     "raw",
		Offset:   0,
		FileSize: size,
		Addr:     base,
		MemSize:  size,
		Prot:     models.ProtRead | models.ProtWrite | models.ProtExec,
	}}
	r.sections = []models.Section{{
		Name:   ".raw",
		Kind:   models.SectionProgBits,
		Addr:   base,
		Offset: 0,
		Size:   size,
		Exec:   true,
	}}
	return r, nil
}

func LoadRawFile(path string, bits int, base uint64) (models.Loader, error) {
	img, err := models.OpenImage(path)
	if err != nil {
		return nil, err
	}
	r, err := NewRawLoader(img, bits, base)
	if err != nil {
		img.Close()
		return nil, errors.Wrap(err, path)
	}
	return r, nil
}

func (r *RawLoader) Functions() []models.Function {
	return nil
}

// Translate maps an address inside the image to its file offset.
func (r *RawLoader) Translate(addr uint64) (uint64, error) {
	return Translate(r.segments, addr)
}

func (r *RawLoader) Header() []models.FieldGroup {
	return []models.FieldGroup{{Title: "raw image", Fields: []models.Field{
		{Name: "arch", Value: r.arch},
		models.DecField("bits", uint64(r.bits)),
		models.HexField("base", r.entry),
		models.DecField("size", uint64(r.img.Len())),
	}}}
}

func (r *RawLoader) DescribeSegment(s models.Segment) models.FieldGroup {
	return models.FieldGroup{Title: "mapping", Fields: []models.Field{
		models.HexField("addr", s.Addr),
		models.HexField("size", s.MemSize),
		models.HexField("offset", s.Offset),
	}}
}

func (r *RawLoader) DescribeSection(s models.Section) models.FieldGroup {
	return models.FieldGroup{Title: "section header", Fields: []models.Field{
		{Name: "name", Value: s.Name},
		models.HexField("addr", s.Addr),
		models.HexField("size", s.Size),
	}}
}
