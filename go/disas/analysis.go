package disas

import (
	"fmt"
	"sort"

	"github.com/lunixbochs/fvbommel-util/sortorder"
	"github.com/pkg/errors"

	"github.com/lunixbochs/readbin/go/loader"
	"github.com/lunixbochs/readbin/go/models"
)

type Count struct {
	Name  string
	Count int
}

type Counts map[string]int

// Ranked orders counts by frequency, then naturally by name.
func (c Counts) Ranked() []Count {
	out := make([]Count, 0, len(c))
	for name, n := range c {
		out = append(out, Count{name, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return sortorder.NaturalLess(out[i].Name, out[j].Name)
	})
	return out
}

// Call is a call instruction with a known destination.
type Call struct {
	Addr   uint64
	Target uint64
	Name   string
}

type FunctionReport struct {
	Function models.Function
	Insns    []Instruction
	Counts   Counts
	Calls    []Call
}

type Report struct {
	Functions []FunctionReport
	// Skipped holds functions that could not be decoded, with Err set.
	Skipped []models.Function
	Overall Counts
}

// Analyze decodes every valid function of l and counts its mnemonics.
// Call targets are named through the function table when they land on
// a function start.
func Analyze(l models.Loader, o Options) (*Report, error) {
	bits, err := Mode(l, o.Bits)
	if err != nil {
		return nil, err
	}
	o.Bits = bits
	idx := models.NewFuncIndex(l.Functions())
	if o.SymLookup == nil {
		o.SymLookup = idx.SymLookup
	}
	data := l.Data()
	r := &Report{Overall: make(Counts)}
	for _, fn := range l.Functions() {
		if !fn.Valid() {
			if fn.Err == nil {
				fn.Err = errors.Errorf("%s: empty function", fn.Name)
			}
			r.Skipped = append(r.Skipped, fn)
			continue
		}
		end := fn.Offset + fn.Size
		if end < fn.Offset || end > uint64(len(data)) {
			fn.Err = errors.WithStack(&loader.OutOfBoundsError{Table: "function " + fn.Name, Offset: fn.Offset, Size: fn.Size, Len: len(data)})
			r.Skipped = append(r.Skipped, fn)
			continue
		}
		insns, err := o.Decode(data[fn.Offset:end], fn.Addr)
		if err != nil {
			return nil, err
		}
		fr := FunctionReport{Function: fn, Insns: insns, Counts: make(Counts)}
		for _, ins := range insns {
			fr.Counts[ins.Op]++
			r.Overall[ins.Op]++
			if !ins.IsCall || ins.Target == 0 {
				continue
			}
			name := fmt.Sprintf("0x%x", ins.Target)
			if target, ok := idx.Lookup(ins.Target); ok {
				name = target.Name
			}
			fr.Calls = append(fr.Calls, Call{Addr: ins.Addr, Target: ins.Target, Name: name})
		}
		r.Functions = append(r.Functions, fr)
	}
	return r, nil
}
