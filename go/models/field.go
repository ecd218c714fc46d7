package models

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Field is one named value of a header dump. Raw holds the decoded
// number, Value the text shown to users.
type Field struct {
	Name  string
	Raw   uint64
	Value string
}

func HexField(name string, v uint64) Field {
	return Field{Name: name, Raw: v, Value: fmt.Sprintf("0x%x", v)}
}

func DecField(name string, v uint64) Field {
	return Field{Name: name, Raw: v, Value: fmt.Sprintf("%d", v)}
}

func NamedField(name string, v uint64, desc string) Field {
	return Field{Name: name, Raw: v, Value: desc}
}

// FieldGroup is a titled list of fields, e.g. one header.
type FieldGroup struct {
	Title  string
	Fields []Field
}

func (g FieldGroup) Get(name string) (Field, bool) {
	for _, f := range g.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (g FieldGroup) String() string {
	width := 0
	for _, f := range g.Fields {
		if w := runewidth.StringWidth(f.Name); w > width {
			width = w
		}
	}
	var out []string
	out = append(out, fmt.Sprintf("================ %s ================", g.Title))
	for _, f := range g.Fields {
		pad := strings.Repeat(" ", width-runewidth.StringWidth(f.Name))
		out = append(out, fmt.Sprintf("%s:%s  %s", f.Name, pad, f.Value))
	}
	return strings.Join(out, "\n")
}
