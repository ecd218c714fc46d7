package disas

import (
	"bytes"
	"sync"

	"golang.org/x/arch/x86/x86asm"
)

// cacheEntry holds a decoded range. Text is rendered on every lookup,
// so one entry serves callers with different syntaxes and symbols.
type cacheEntry struct {
	bits  int
	mem   []byte
	insns []Instruction
	raw   []x86asm.Inst
}

// Cache remembers decoded ranges by start address. An entry only hits
// when the bytes and decoder mode are unchanged. The zero value is
// ready to use.
type Cache struct {
	sync.RWMutex
	cache map[uint64]*cacheEntry
}

func NewCache() *Cache {
	return &Cache{cache: make(map[uint64]*cacheEntry)}
}

func (c *Cache) get(addr uint64, mem []byte, bits int) ([]Instruction, []x86asm.Inst, bool) {
	c.RLock()
	defer c.RUnlock()
	if ent, ok := c.cache[addr]; ok {
		if ent.bits == bits && bytes.Equal(mem, ent.mem) {
			return ent.insns, ent.raw, true
		}
	}
	return nil, nil, false
}

func (c *Cache) put(addr uint64, mem []byte, bits int, insns []Instruction, raw []x86asm.Inst) {
	c.Lock()
	if c.cache == nil {
		c.cache = make(map[uint64]*cacheEntry)
	}
	c.cache[addr] = &cacheEntry{
		bits:  bits,
		mem:   mem,
		insns: insns,
		raw:   raw,
	}
	c.Unlock()
}

func (c *Cache) Len() int {
	c.RLock()
	defer c.RUnlock()
	return len(c.cache)
}
