// Package disas decodes x86 machine code from loaded images and
// summarizes what each function does.
package disas

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/arch/x86/x86asm"

	"github.com/lunixbochs/readbin/go/logflags"
	"github.com/lunixbochs/readbin/go/models"
)

var (
	ErrNotExecutable   = errors.New("section is not executable")
	ErrUnsupportedArch = errors.New("no disassembler for architecture")
)

const badOp = "(bad)"

type Instruction struct {
	Addr  uint64
	Len   int
	Bytes []byte
	// Op is the lower case mnemonic, or "(bad)" for bytes that don't
	// decode.
	Op   string
	Text string
	// Target is the absolute destination of a relative call or jump.
	Target uint64
	IsCall bool
	Bad    bool
}

// Options selects the decoding mode and output syntax.
type Options struct {
	Bits      int
	Syntax    string
	SymLookup x86asm.SymLookup
	// Cache is optional and shared between calls.
	Cache *Cache
}

// Mode picks the decoder width for l. A non-zero bits overrides the
// image's architecture.
func Mode(l models.Loader, bits int) (int, error) {
	if bits != 0 {
		switch bits {
		case 16, 32, 64:
			return bits, nil
		}
		return 0, errors.Errorf("invalid x86 mode: %d", bits)
	}
	switch l.Arch() {
	case "x86_16":
		return 16, nil
	case "x86":
		return 32, nil
	case "x86_64":
		return 64, nil
	}
	return 0, errors.Wrap(ErrUnsupportedArch, l.Arch())
}

func Decode(code []byte, addr uint64, bits int) ([]Instruction, error) {
	return Options{Bits: bits}.Decode(code, addr)
}

// Decode walks code from addr until it is consumed. A byte that can't
// be decoded becomes a one byte "(bad)" instruction and decoding
// resumes after it. Truncated encodings and bare prefixes decode
// without an error but with no opcode; those are bad too.
func (o Options) Decode(code []byte, addr uint64) ([]Instruction, error) {
	switch o.Bits {
	case 16, 32, 64:
	default:
		return nil, errors.Errorf("invalid x86 mode: %d", o.Bits)
	}
	var insns []Instruction
	var raw []x86asm.Inst
	hit := false
	if o.Cache != nil {
		insns, raw, hit = o.Cache.get(addr, code, o.Bits)
	}
	if !hit {
		insns, raw = decode(code, addr, o.Bits)
		if o.Cache != nil {
			o.Cache.put(addr, code, o.Bits, insns, raw)
		}
	}
	out := make([]Instruction, len(insns))
	copy(out, insns)
	for i := range out {
		if !out[i].Bad {
			out[i].Text = o.text(raw[i], out[i].Addr)
		}
	}
	return out, nil
}

// decode does the walk for Decode. Text is left to the caller.
func decode(code []byte, addr uint64, bits int) ([]Instruction, []x86asm.Inst) {
	log := logflags.DisasLogger()
	var out []Instruction
	var raw []x86asm.Inst
	for pos := 0; pos < len(code); {
		pc := addr + uint64(pos)
		inst, err := x86asm.Decode(code[pos:], bits)
		if err != nil || inst.Len == 0 || inst.Op == 0 {
			log.WithError(err).Debugf("bad instruction at 0x%x", pc)
			out = append(out, Instruction{
				Addr: pc, Len: 1, Bytes: code[pos : pos+1],
				Op: badOp, Text: badOp, Bad: true,
			})
			raw = append(raw, x86asm.Inst{})
			pos++
			continue
		}
		ins := Instruction{
			Addr:  pc,
			Len:   inst.Len,
			Bytes: code[pos : pos+inst.Len],
			Op:    strings.ToLower(inst.Op.String()),
		}
		switch inst.Op {
		case x86asm.CALL, x86asm.LCALL:
			ins.IsCall = true
		}
		if rel, ok := inst.Args[0].(x86asm.Rel); ok {
			ins.Target = uint64(int64(pc) + int64(inst.Len) + int64(rel))
		}
		out = append(out, ins)
		raw = append(raw, inst)
		pos += inst.Len
	}
	return out, raw
}

func noSymbols(uint64) (string, uint64) {
	return "", 0
}

func (o Options) text(inst x86asm.Inst, pc uint64) string {
	if o.SymLookup == nil {
		o.SymLookup = noSymbols
	}
	if o.Syntax == "gnu" {
		return x86asm.GNUSyntax(inst, pc, o.SymLookup)
	}
	return x86asm.IntelSyntax(inst, pc, o.SymLookup)
}

// Format prints one instruction per line, with the hex bytes right
// aligned to the longest instruction or width bytes, whichever is
// larger.
func Format(insns []Instruction, width int) string {
	for _, ins := range insns {
		if ins.Len > width {
			width = ins.Len
		}
	}
	out := make([]string, 0, len(insns))
	for _, ins := range insns {
		pad := strings.Repeat(" ", (width-len(ins.Bytes))*2)
		out = append(out, fmt.Sprintf("0x%x: %s%s %s", ins.Addr, pad, hex.EncodeToString(ins.Bytes), ins.Text))
	}
	return strings.Join(out, "\n")
}

// DisassembleSection decodes an executable section at its load
// address.
func (o Options) DisassembleSection(l models.Loader, sec models.Section) ([]Instruction, error) {
	if !sec.Executable() {
		return nil, errors.Wrap(ErrNotExecutable, sec.Name)
	}
	data, err := l.SectionData(sec)
	if err != nil {
		return nil, err
	}
	return o.Decode(data, sec.Addr)
}
