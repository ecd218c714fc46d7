package loader

import (
	"github.com/pkg/errors"

	"github.com/lunixbochs/readbin/go/logflags"
	"github.com/lunixbochs/readbin/go/models"
)

// buildFunctions walks .symtab and keeps STT_FUNC entries, in table
// order. A symbol that can't be named or translated stays in the list
// with Err set.
func (e *ElfLoader) buildFunctions() []models.Function {
	log := logflags.LoaderLogger()
	symtab, ok := e.Section(".symtab")
	if !ok {
		log.Debug("no .symtab, function table is empty")
		e.warn(errors.Wrap(ErrMissingTable, ".symtab"))
		return nil
	}
	strtabSec, ok := e.Section(".strtab")
	if !ok {
		log.Debug("no .strtab, function table is empty")
		e.warn(errors.Wrap(ErrMissingTable, ".strtab"))
		return nil
	}
	strtab, err := e.SectionData(strtabSec)
	if err != nil {
		e.warn(err)
		return nil
	}

	buf := e.img.Bytes()
	_, _, symSize := e.header.recordSizes()
	count := symtab.Size / symSize
	if symtab.Size%symSize != 0 {
		e.warn(decodeErrorf(".symtab", "size %d is not a multiple of %d", symtab.Size, symSize))
	}
	tr := NewTranslator(e.segments)
	var funcs []models.Function
	err = walkTable(buf, ".symtab", symtab.Offset, symSize, symSize, int(count), func(off uint64) error {
		sym, err := e.header.symbol(buf, off)
		if err != nil {
			return err
		}
		if sym.Info&0xf != sttFunc {
			return nil
		}
		fn := models.Function{Addr: sym.Value, Size: sym.Size}
		fn.Name, fn.Err = readCString(strtab, ".strtab", uint64(sym.Name))
		if fn.Err != nil {
			log.WithError(fn.Err).Debugf("symbol at 0x%x has no name", off)
		}
		offset, err := tr.Translate(sym.Value)
		if err != nil {
			log.WithError(err).Debugf("function %q", fn.Name)
			if fn.Err == nil {
				fn.Err = err
			}
		} else {
			fn.Offset = offset
		}
		funcs = append(funcs, fn)
		return nil
	})
	if err != nil {
		e.warn(err)
		return nil
	}
	return funcs
}
