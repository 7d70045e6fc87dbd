package gen

import (
	"path"
	"sort"
	"strconv"
	"strings"
)

// importSet tracks the packages one generated file imports and the alias
// each one is referenced by.
type importSet struct {
	aliases map[string]string // path -> alias
	taken   map[string]string // alias -> path
}

func newImportSet() *importSet {
	return &importSet{
		aliases: make(map[string]string),
		taken:   make(map[string]string),
	}
}

// add imports p under name, or a numbered variant of name when another
// package already uses it, and returns the alias to qualify with.
func (s *importSet) add(p, name string) string {
	if alias, ok := s.aliases[p]; ok {
		return alias
	}
	if name == "" {
		name = packageName(path.Base(p))
	}
	alias := name
	for n := 2; ; n++ {
		if _, used := s.taken[alias]; !used && !reserved[alias] {
			break
		}
		alias = name + strconv.Itoa(n)
	}
	s.aliases[p] = alias
	s.taken[alias] = p
	return alias
}

// Names the generated code declares at package level.
var reserved = map[string]bool{
	"impl": true,
}

func (s *importSet) len() int {
	return len(s.aliases)
}

// render returns the import block with standard library packages first.
func (s *importSet) render() string {
	if len(s.aliases) == 0 {
		return ""
	}
	var std, other []string
	for p := range s.aliases {
		if isStdlib(p) {
			std = append(std, p)
		} else {
			other = append(other, p)
		}
	}
	sort.Strings(std)
	sort.Strings(other)

	var b strings.Builder
	b.WriteString("import (\n")
	write := func(paths []string) {
		for _, p := range paths {
			alias := s.aliases[p]
			if alias == path.Base(p) {
				b.WriteString("\t" + strconv.Quote(p) + "\n")
			} else {
				b.WriteString("\t" + alias + " " + strconv.Quote(p) + "\n")
			}
		}
	}
	write(std)
	if len(std) > 0 && len(other) > 0 {
		b.WriteString("\n")
	}
	write(other)
	b.WriteString(")\n")
	return b.String()
}

func isStdlib(p string) bool {
	first, _, _ := strings.Cut(p, "/")
	return !strings.Contains(first, ".")
}
