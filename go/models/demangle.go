package models

import (
	"bufio"
	"bytes"
	"os/exec"
	"strings"
)

// stripArgs drops the trailing argument list of a demangled name, along
// with any qualifiers after it. Parentheses inside the name, as in
// operator() or function pointer template arguments, are kept.
func stripArgs(name string) string {
	end := strings.LastIndexByte(name, ')')
	if end < 0 {
		return name
	}
	for _, q := range strings.Fields(name[end+1:]) {
		switch q {
		case "const", "volatile", "&", "&&", "noexcept":
		default:
			return name
		}
	}
	depth := 0
	for i := end; i >= 0; i-- {
		switch name[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				if i == 0 {
					return name
				}
				return name[:i]
			}
		}
	}
	return name
}

func mangled(name string) bool {
	return strings.HasPrefix(name, "_Z") || strings.HasPrefix(name, "__Z")
}

// Demangle runs c++filt on Itanium mangled names and strips the
// argument list. Anything else, or any failure, returns name as is.
func Demangle(name string) string {
	return DemangleAll([]string{name})[0]
}

// DemangleAll demangles names with a single c++filt process.
func DemangleAll(names []string) []string {
	out := append([]string(nil), names...)
	var idx []int
	var input bytes.Buffer
	for i, name := range names {
		if !mangled(name) {
			continue
		}
		idx = append(idx, i)
		if strings.HasPrefix(name, "__Z") {
			name = name[1:]
		}
		input.WriteString(name + "\n")
	}
	if len(idx) == 0 {
		return out
	}
	cmd := exec.Command("c++filt", "-n")
	cmd.Stdin = &input
	result, err := cmd.Output()
	if err != nil {
		return out
	}
	scanner := bufio.NewScanner(bytes.NewReader(result))
	for _, i := range idx {
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		out[i] = stripArgs(line)
	}
	return out
}
