package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/lunixbochs/readbin/go/disas"
	"github.com/lunixbochs/readbin/go/models"
	"github.com/lunixbochs/readbin/go/visualize"
)

// printer renders the views of one loaded image.
type printer struct {
	out io.Writer
	cfg *models.Config
	l   models.Loader

	cache    *disas.Cache
	demangle bool
	names    map[string]string
}

// name returns the display name of a symbol, demangled when asked.
func (p *printer) name(sym string) string {
	if !p.demangle {
		return sym
	}
	if p.names == nil {
		var syms []string
		for _, fn := range p.l.Functions() {
			syms = append(syms, fn.Name)
		}
		p.names = make(map[string]string, len(syms))
		for i, d := range models.DemangleAll(syms) {
			p.names[syms[i]] = d
		}
	}
	if d, ok := p.names[sym]; ok {
		return d
	}
	return sym
}

func (p *printer) dumper() *visualize.Dumper {
	return visualize.NewDumper(p.cfg.HexWidth, p.cfg.Color)
}

func (p *printer) disasOptions() (disas.Options, error) {
	bits, err := disas.Mode(p.l, p.cfg.Bits)
	if err != nil {
		return disas.Options{}, err
	}
	if p.cache == nil {
		p.cache = disas.NewCache()
	}
	idx := models.NewFuncIndex(p.l.Functions())
	return disas.Options{Bits: bits, Syntax: p.cfg.Syntax, SymLookup: idx.SymLookup, Cache: p.cache}, nil
}

func (p *printer) header() error {
	fmt.Fprintf(p.out, "format: %s, arch: %s, entry: 0x%x\n", p.l.Format(), p.l.Arch(), p.l.Entry())
	for _, g := range p.l.Header() {
		fmt.Fprintf(p.out, "%s\n\n", g)
	}
	return nil
}

func (p *printer) segments() error {
	for i, seg := range p.l.Segments() {
		g := p.l.DescribeSegment(seg)
		g.Title = fmt.Sprintf("%s [%d]", g.Title, i)
		fmt.Fprintln(p.out, g)
		fmt.Fprintln(p.out, seg.String())
		data, err := p.l.SegmentData(seg)
		if err != nil {
			fmt.Fprintf(p.out, "cannot dump: %v\n\n", err)
			continue
		}
		if err := p.dumper().Dump(p.out, data, seg.Offset); err != nil {
			return err
		}
		fmt.Fprintln(p.out)
	}
	return nil
}

func (p *printer) sections() error {
	for i, sec := range p.l.Sections() {
		g := p.l.DescribeSection(sec)
		g.Title = fmt.Sprintf("%s [%d]", g.Title, i)
		fmt.Fprintf(p.out, "%s\n\n", g)
	}
	return nil
}

func (p *printer) disassemble() error {
	o, err := p.disasOptions()
	if err != nil {
		return err
	}
	for _, sec := range p.l.Sections() {
		if !sec.Executable() {
			continue
		}
		fmt.Fprintf(p.out, "%s\n", p.l.DescribeSection(sec))
		insns, err := o.DisassembleSection(p.l, sec)
		if err != nil {
			fmt.Fprintf(p.out, "cannot disassemble: %v\n\n", err)
			continue
		}
		fmt.Fprintf(p.out, "%s\n\n", disas.Format(insns, 0))
	}
	return nil
}

func (p *printer) functions(prefix string) error {
	var funcs []models.Function
	if prefix != "" {
		funcs = models.NewFuncIndex(p.l.Functions()).Prefix(prefix)
	} else {
		funcs = p.l.Functions()
	}
	for _, fn := range funcs {
		if fn.Err != nil {
			fmt.Fprintf(p.out, "0x%016x %18s %8d %s (%v)\n", fn.Addr, "-", fn.Size, p.name(fn.Name), fn.Err)
			continue
		}
		fmt.Fprintf(p.out, "0x%016x 0x%016x %8d %s\n", fn.Addr, fn.Offset, fn.Size, p.name(fn.Name))
	}
	return nil
}

func printCounts(w io.Writer, counts []disas.Count) {
	for _, c := range counts {
		fmt.Fprintf(w, "%s: %d\n", c.Name, c.Count)
	}
}

func (p *printer) analyze() error {
	o, err := p.disasOptions()
	if err != nil {
		return err
	}
	r, err := disas.Analyze(p.l, o)
	if err != nil {
		return errors.Wrap(err, "analysis failed")
	}
	for _, fr := range r.Functions {
		fmt.Fprintf(p.out, "<function: %s>\n", p.name(fr.Function.Name))
		fmt.Fprintln(p.out, disas.Format(fr.Insns, 10))
		printCounts(p.out, fr.Counts.Ranked())
		if len(fr.Calls) > 0 {
			names := make([]string, len(fr.Calls))
			for i, call := range fr.Calls {
				names[i] = "func_" + p.name(call.Name)
			}
			fmt.Fprintf(p.out, "calling functions: %s\n", strings.Join(names, " "))
		}
		fmt.Fprintln(p.out)
	}
	for _, fn := range r.Skipped {
		fmt.Fprintf(p.out, "skipped %s: %v\n", p.name(fn.Name), fn.Err)
	}
	fmt.Fprintln(p.out, "<overall>")
	printCounts(p.out, r.Overall.Ranked())
	return nil
}

func (p *printer) hexdump() error {
	return p.dumper().Dump(p.out, p.l.Data(), 0)
}

func (p *printer) diff(path string) error {
	other, err := models.OpenImage(path)
	if err != nil {
		return err
	}
	defer other.Close()
	return p.dumper().Diff(p.out, p.l.Data(), other.Bytes())
}

func (p *printer) histogram() error {
	return visualize.Histogram(p.l.Data()).Render(p.out, p.cfg.HistogramWidth, p.cfg.Color)
}
