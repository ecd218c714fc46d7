package models

import (
	"fmt"
	"sort"
)

const (
	ProtRead  = 1
	ProtWrite = 2
	ProtExec  = 4
)

// Segment is one entry of the address space a loader reports. For ELF
// this is a program header; PE sections are reported as segments too.
// Flags keeps the format's raw permission bits, Prot the decoded ones.
type Segment struct {
	Type     uint32
	Name     string
	Offset   uint64
	FileSize uint64
	Addr     uint64
	MemSize  uint64
	Flags    uint32
	Prot     int
	Align    uint64
}

func (s *Segment) ContainsVirt(addr uint64) bool {
	return s.Addr <= addr && addr < s.Addr+s.MemSize
}

// Overlaps reports whether the virtual ranges of s and o intersect.
func (s *Segment) Overlaps(o *Segment) bool {
	sEnd, oEnd := s.Addr+s.MemSize, o.Addr+o.MemSize
	return (s.Addr >= o.Addr && s.Addr < oEnd) || (o.Addr >= s.Addr && o.Addr < sEnd)
}

func (s *Segment) String() string {
	desc := fmt.Sprintf("0x%x-0x%x", s.Addr, s.Addr+s.MemSize)

	prots := []int{ProtRead, ProtWrite, ProtExec}
	chars := []string{"r", "w", "x"}
	prot := " "
	for i := range prots {
		if s.Prot&prots[i] != 0 {
			prot += chars[i]
		} else {
			prot += "-"
		}
	}
	desc += prot

	desc += fmt.Sprintf(" file 0x%x+0x%x", s.Offset, s.FileSize)
	if s.Name != "" {
		desc += fmt.Sprintf(" [%s]", s.Name)
	}
	return desc
}

// SortSegments orders segs by address in place.
func SortSegments(segs []Segment) {
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].Addr < segs[j].Addr })
}
