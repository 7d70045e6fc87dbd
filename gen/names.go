package gen

import (
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"
)

// exportedName converts a kebab-case WIT name to an exported Go name.
func exportedName(name string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(name, isSeparator) {
		r, size := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(part[size:])
	}
	if b.Len() == 0 {
		return "X"
	}
	s := b.String()
	if r, _ := utf8.DecodeRuneInString(s); unicode.IsDigit(r) {
		s = "X" + s
	}
	return s
}

// localName converts a WIT name to an unexported Go identifier.
func localName(name string) string {
	s := exportedName(name)
	r, size := utf8.DecodeRuneInString(s)
	s = string(unicode.ToLower(r)) + s[size:]
	if token.IsKeyword(s) || predeclared[s] {
		s += "_"
	}
	return s
}

// packageName derives a Go package name from a WIT name.
func packageName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return "bindings"
	}
	if r, _ := utf8.DecodeRuneInString(s); unicode.IsDigit(r) {
		s = "x" + s
	}
	if token.IsKeyword(s) || predeclared[s] {
		s += "_"
	}
	return s
}

func isSeparator(r rune) bool {
	return r == '-' || r == '_' || r == '.' || r == ' ' || r == '/' || r == ':'
}

// Identifiers generated code must not shadow.
var predeclared = map[string]bool{
	"bool": true, "byte": true, "rune": true, "string": true, "error": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"float32": true, "float64": true, "len": true, "make": true, "new": true,
	"nil": true, "true": true, "false": true, "panic": true, "cap": true,
	"append": true, "copy": true, "any": true, "cabi": true, "runtime": true,
	"impl": true, "e": true, "i": true, "base": true, "unsafe": true,
	"pinner": true, "cleanupList": true,
}

// parseImplName splits "import/path.Type" into its path and type name.
// A bare "Type" has an empty path.
func parseImplName(s string) (path, name string, err error) {
	if s == "" {
		return "", "", errEmptyImpl
	}
	dot := strings.LastIndexByte(s, '.')
	slash := strings.LastIndexByte(s, '/')
	if dot < 0 || dot < slash {
		name = s
	} else {
		path, name = s[:dot], s[dot+1:]
		if path == "" {
			return "", "", errBadImpl
		}
	}
	if !token.IsIdentifier(name) {
		return "", "", errBadImpl
	}
	return path, name, nil
}

type implError string

func (e implError) Error() string { return string(e) }

const (
	errEmptyImpl implError = "empty implementation name"
	errBadImpl   implError = "expected import/path.Type or Type"
)

// usesIdent reports whether src mentions ident as a whole identifier.
func usesIdent(src, ident string) bool {
	for i := 0; ; {
		j := strings.Index(src[i:], ident)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(ident)
		if (start == 0 || !isIdentByte(src[start-1])) && (end == len(src) || !isIdentByte(src[end])) {
			if start == 0 || src[start-1] != '.' {
				return true
			}
		}
		i = end
	}
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}
