package loader

import (
	"github.com/pkg/errors"

	"github.com/lunixbochs/readbin/go/models"
)

// Translator maps virtual addresses to file offsets using a segment
// list sorted by address.
type Translator struct {
	segs []models.Segment
}

// NewTranslator keeps the segments that have both file and memory
// extent. The caller's slice is not reordered.
func NewTranslator(segs []models.Segment) *Translator {
	sorted := make([]models.Segment, 0, len(segs))
	for _, s := range segs {
		if s.MemSize > 0 && s.FileSize > 0 {
			sorted = append(sorted, s)
		}
	}
	models.SortSegments(sorted)
	return &Translator{segs: sorted}
}

// Translate returns the file offset of addr. The first segment (by
// address) whose own range covers addr wins. Addresses past the file
// backed part of a segment, like .bss, have no file offset.
func (t *Translator) Translate(addr uint64) (uint64, error) {
	for i := range t.segs {
		s := &t.segs[i]
		if s.Addr > addr {
			break
		}
		if s.ContainsVirt(addr) && addr-s.Addr < s.FileSize {
			return s.Offset + (addr - s.Addr), nil
		}
	}
	return 0, errors.WithStack(&UnmappedAddressError{Addr: addr})
}

func Translate(segs []models.Segment, addr uint64) (uint64, error) {
	return NewTranslator(segs).Translate(addr)
}
