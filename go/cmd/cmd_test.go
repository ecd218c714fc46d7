package cmd

import (
	"bytes"
	"debug/elf"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/lunixbochs/readbin/go/loader/loadertest"
)

// push rbp; mov rbp, rsp; call 0x401009; pop rbp; ret
var code = []byte{0x55, 0x48, 0x89, 0xe5, 0xe8, 0x00, 0x00, 0x00, 0x00, 0x5d, 0xc3}

func writeSample(t *testing.T) (string, func()) {
	t.Helper()
	b := loadertest.NewElf64()
	b.Entry = 0x401000
	b.Segments = []loadertest.ElfSegment{
		{Type: uint32(elf.PT_LOAD), Flags: uint32(elf.PF_R | elf.PF_X), Offset: 0x1000, Addr: 0x400000, FileSize: 0x1010, MemSize: 0x1010},
	}
	b.Sections = []loadertest.ElfSection{
		{Name: ".text", Type: uint32(elf.SHT_PROGBITS), Flags: uint64(elf.SHF_ALLOC | elf.SHF_EXECINSTR), Addr: 0x401000, Offset: 0x2000, Data: code},
	}
	b.Symbols = []loadertest.ElfSymbol{
		loadertest.Func("main", 0x401000, 9),
		loadertest.Func("helper", 0x401009, 2),
	}
	dir, err := ioutil.TempDir("", "readbin")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "sample")
	if err := ioutil.WriteFile(path, b.Build(), 0644); err != nil {
		t.Fatal(err)
	}
	return path, func() { os.RemoveAll(dir) }
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	c := NewReadbinCmd(&out, &errOut)
	c.Command().SetArgs(append([]string{"--no-color"}, args...))
	err := c.Command().Execute()
	return out.String(), err
}

func TestHeaderDefault(t *testing.T) {
	path, cleanup := writeSample(t)
	defer cleanup()
	out, err := run(t, path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "format: elf64, arch: x86_64, entry: 0x401000") {
		t.Fatalf("output:\n%s", out)
	}
	if !strings.Contains(out, "e_machine:") || strings.Contains(out, "program header") {
		t.Fatalf("output:\n%s", out)
	}
}

func TestAll(t *testing.T) {
	path, cleanup := writeSample(t)
	defer cleanup()
	out, err := run(t, "-a", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"elf header", "program header [0]", "section header [1]", "sh_name:", ".text", "┌"} {
		if !strings.Contains(out, s) {
			t.Errorf("missing %q in output:\n%s", s, out)
		}
	}
}

func TestDump(t *testing.T) {
	path, cleanup := writeSample(t)
	defer cleanup()
	out, err := run(t, "-d", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "push rbp") || !strings.Contains(out, "call helper") {
		t.Fatalf("output:\n%s", out)
	}
}

func TestAnalyze(t *testing.T) {
	path, cleanup := writeSample(t)
	defer cleanup()
	out, err := run(t, "--analyze", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"<function: main>", "calling functions: func_helper", "<overall>", "call: 1"} {
		if !strings.Contains(out, s) {
			t.Errorf("missing %q in output:\n%s", s, out)
		}
	}
}

func TestFuncsPrefix(t *testing.T) {
	path, cleanup := writeSample(t)
	defer cleanup()
	out, err := run(t, "--funcs", "--prefix", "he", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "helper") || strings.Contains(out, "main") {
		t.Fatalf("output:\n%s", out)
	}
}

func TestHistogramAndDiff(t *testing.T) {
	path, cleanup := writeSample(t)
	defer cleanup()
	out, err := run(t, "--histogram", "--diff", path, path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "entropy: ") || !strings.Contains(out, "\n0 of ") {
		t.Fatalf("output:\n%s", out)
	}
}

func TestBadFlags(t *testing.T) {
	path, cleanup := writeSample(t)
	defer cleanup()
	if _, err := run(t, "--bits", "12", path); err == nil {
		t.Fatal("invalid bits accepted")
	}
	if _, err := run(t, "--log", "nope", path); err == nil {
		t.Fatal("unknown log layer accepted")
	}
	if _, err := run(t); err == nil {
		t.Fatal("missing file argument accepted")
	}
}

func TestUnknownFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "readbin")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "script")
	ioutil.WriteFile(path, []byte("#!/bin/sh\n"), 0644)
	_, err = run(t, path)
	if err == nil {
		t.Fatal("script loaded as an executable")
	}
	var buf bytes.Buffer
	PrintError(&buf, err)
	if !strings.Contains(buf.String(), "could not identify file magic") {
		t.Fatalf("PrintError output:\n%s", buf.String())
	}
	if errors.Cause(err) == nil {
		t.Fatal("lost the cause")
	}
}

func TestRaw(t *testing.T) {
	dir, err := ioutil.TempDir("", "readbin")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "code.bin")
	if err := ioutil.WriteFile(path, code, 0644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "--raw", "--base", "0x1000", "-e", "-d", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"format: raw, arch: x86_64, entry: 0x1000", "push rbp", "ret"} {
		if !strings.Contains(out, s) {
			t.Errorf("missing %q in output:\n%s", s, out)
		}
	}
	if _, err := run(t, "--raw", "--bits", "8", path); err == nil {
		t.Fatal("expected an error for 8 bit raw mode")
	}
}
