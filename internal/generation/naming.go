package generation

import (
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"gir2go/internal/metadata"
)

var predeclared = map[string]bool{
	"any": true, "bool": true, "byte": true, "comparable": true,
	"complex64": true, "complex128": true, "error": true,
	"float32": true, "float64": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"rune": true, "string": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"true": true, "false": true, "iota": true, "nil": true,
	"append": true, "cap": true, "clear": true, "close": true, "complex": true,
	"copy": true, "delete": true, "imag": true, "len": true, "make": true,
	"max": true, "min": true, "new": true, "panic": true, "print": true,
	"println": true, "real": true, "recover": true,
}

// Package names every generated file may refer to.
var generatedPackages = map[string]bool{
	"C":       true,
	"unsafe":  true,
	"runtime": true,
}

// Locals and helpers referred to by generated function bodies.
var generatedLocals = map[string]bool{
	"r":             true,
	"rv":            true,
	"cerr":          true,
	"err":           true,
	"gbool":         true,
	"goBool":        true,
	"handleOf":      true,
	"wrapOrNil":     true,
	"goStringOrNil": true,
	"newGError":     true,
}

// Method names every value wrapper declares itself.
var reservedMethods = map[string]bool{
	"Ptr":    true,
	"Native": true,
}

// CamelCase converts a snake_case identifier. An underscore followed by a
// lower-case letter upper-cases that letter, any other underscore is dropped
// unless it is the last character.
func CamelCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '_' {
			b.WriteByte(c)
			continue
		}
		if i == len(s)-1 {
			b.WriteByte(c)
			break
		}
		if next := s[i+1]; next >= 'a' && next <= 'z' {
			b.WriteByte(next - 'a' + 'A')
			i++
		}
	}
	return b.String()
}

// SignalName camel-cases a signal or property name: hyphens separate words
// like underscores, and a "detail::" prefix is removed.
func SignalName(s string) string {
	if i := strings.LastIndex(s, "::"); i >= 0 {
		s = s[i+2:]
	}
	return CamelCase(strings.ReplaceAll(s, "-", "_"))
}

// Exported upper-cases the first rune.
func Exported(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func IsValidIdentifier(s string) bool {
	return token.IsIdentifier(s)
}

// Namer turns native names into Go identifiers that collide neither with Go
// itself nor with the known types of the registry.
type Namer struct {
	registry *metadata.Registry
}

func NewNamer(registry *metadata.Registry) *Namer {
	return &Namer{registry: registry}
}

func (n *Namer) isReserved(name string) bool {
	return token.IsKeyword(name) ||
		predeclared[name] ||
		generatedPackages[name] ||
		n.registry.IsKnownType(name)
}

// Escape camel-cases name and appends an underscore when the result is
// reserved. Escape(Escape(x)) == Escape(x).
func (n *Namer) Escape(name string) string {
	escaped := CamelCase(name)
	if n.isReserved(escaped) {
		escaped += "_"
	}
	return escaped
}

// ArgumentName escapes the name of arg, additionally avoiding the spellings of
// its C and Go types and the locals of generated bodies.
func (n *Namer) ArgumentName(arg *metadata.Argument, goType string) string {
	name := n.Escape(arg.Name)
	if name == "" {
		name = "arg"
	}
	if generatedLocals[name] ||
		name == arg.CType ||
		name == metadata.BaseCType(arg.CType) ||
		(goType != "" && name == goType) {
		name += "_"
	}
	return name
}

// TypeName is the Go name of a record, enumeration, alias or callback.
func (n *Namer) TypeName(name string) string {
	name = Exported(CamelCase(metadata.WithoutNamespace(name)))
	if strings.HasSuffix(name, "Ref") || strings.HasSuffix(name, "Interface") {
		name += "_"
	}
	return name
}

func (n *Namer) InterfaceName(name string) string {
	return n.TypeName(name) + "Interface"
}

func (n *Namer) RefName(name string) string {
	return n.TypeName(name) + "Ref"
}

func (n *Namer) OwnerName(name string) string {
	return n.TypeName(name)
}

// MethodName is the exported Go name of a native method or function.
func (n *Namer) MethodName(name string) string {
	return unreserved(Exported(CamelCase(name)))
}

func unreserved(goName string) string {
	if reservedMethods[goName] {
		return goName + "_"
	}
	return goName
}

// MemberName names one case of an enumeration or name set.
func (n *Namer) MemberName(typeName string, member string) string {
	return typeName + Exported(SignalName(member))
}
