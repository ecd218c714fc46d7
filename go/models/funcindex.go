package models

import (
	"sort"

	"github.com/derekparker/trie"
)

// FuncIndex is a lookup structure over a function table. The table
// itself stays in symbol order; the index keeps its own sorted copy.
type FuncIndex struct {
	byAddr []Function
	byName map[string][]Function
	names  *trie.Trie
}

// NewFuncIndex indexes the valid entries of funcs.
func NewFuncIndex(funcs []Function) *FuncIndex {
	idx := &FuncIndex{
		byName: make(map[string][]Function),
		names:  trie.New(),
	}
	for _, f := range funcs {
		if !f.Valid() {
			continue
		}
		idx.byAddr = append(idx.byAddr, f)
		if _, ok := idx.byName[f.Name]; !ok && f.Name != "" {
			idx.names.Add(f.Name, nil)
		}
		idx.byName[f.Name] = append(idx.byName[f.Name], f)
	}
	sort.SliceStable(idx.byAddr, func(i, j int) bool {
		return idx.byAddr[i].Addr < idx.byAddr[j].Addr
	})
	return idx
}

func (x *FuncIndex) Len() int {
	return len(x.byAddr)
}

// Lookup returns the first function starting exactly at addr.
func (x *FuncIndex) Lookup(addr uint64) (Function, bool) {
	i := sort.Search(len(x.byAddr), func(i int) bool { return x.byAddr[i].Addr >= addr })
	if i < len(x.byAddr) && x.byAddr[i].Addr == addr {
		return x.byAddr[i], true
	}
	return Function{}, false
}

// Symbolicate finds the function containing addr and the distance from
// its start.
func (x *FuncIndex) Symbolicate(addr uint64) (result Function, distance uint64, ok bool) {
	i := sort.Search(len(x.byAddr), func(i int) bool { return x.byAddr[i].Addr > addr })
	for i--; i >= 0; i-- {
		f := x.byAddr[i]
		if f.Contains(addr) {
			return f, addr - f.Addr, true
		}
	}
	return Function{}, 0, false
}

func (x *FuncIndex) ByName(name string) []Function {
	return x.byName[name]
}

// Prefix returns every function whose name starts with prefix, ordered
// by address.
func (x *FuncIndex) Prefix(prefix string) []Function {
	var ret []Function
	for _, name := range x.names.PrefixSearch(prefix) {
		ret = append(ret, x.byName[name]...)
	}
	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].Addr == ret[j].Addr {
			return ret[i].Name < ret[j].Name
		}
		return ret[i].Addr < ret[j].Addr
	})
	return ret
}

// SymLookup adapts the index to the func(addr) (name, base) shape used
// by instruction formatters.
func (x *FuncIndex) SymLookup(addr uint64) (string, uint64) {
	if f, _, ok := x.Symbolicate(addr); ok {
		return f.Name, f.Addr
	}
	return "", 0
}
