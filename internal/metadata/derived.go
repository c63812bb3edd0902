package metadata

import "strings"

var pointerTypes = map[string]bool{
	"gpointer":      true,
	"gconstpointer": true,
	"va_list":       true,
}

// lookupKey is the name an argument resolves through: its semantic type, or
// the C type when no semantic type is given.
func (a *Argument) lookupKey() string {
	if a.Type == "" {
		return BaseCType(a.CType)
	}
	return a.Type
}

func (a *Argument) KnownType(registry *Registry) *KnownType {
	return registry.KnownType(a.lookupKey())
}

func (a *Argument) KnownRecord(registry *Registry) *Record {
	return registry.KnownRecord(a.lookupKey())
}

// IsPointer reports whether the C type carries at least one indirection.
func (a *Argument) IsPointer() bool {
	return strings.Contains(a.CType, "*")
}

// IsAnyKindOfPointer covers C pointers, gpointer-style typedefs and callbacks.
func (a *Argument) IsAnyKindOfPointer() bool {
	return a.IsPointer() ||
		pointerTypes[BaseCType(a.CType)] ||
		pointerTypes[a.Type] ||
		strings.HasSuffix(a.Type, "Func")
}

func (a *Argument) IsScalarArray() bool {
	return a.IsArray && !a.IsAnyKindOfPointer()
}

func (a *Argument) IsVoid() bool {
	return (a.Type == "" || a.Type == "none") && (a.CType == "" || a.CType == "void")
}

func (a *Argument) IsConst() bool {
	return strings.HasPrefix(strings.TrimSpace(a.CType), "const ")
}

// IsInstanceOf reports whether the argument's semantic type names record.
func (a *Argument) IsInstanceOf(record *Record) bool {
	return record != nil && record.Name == WithoutNamespace(a.Type)
}

// BaseCType strips qualifiers and indirections from a C type spelling.
func BaseCType(ctype string) string {
	s := strings.ReplaceAll(ctype, "*", " ")
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		if f == "const" || f == "volatile" {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

// PointerDepth counts the indirections of a C type spelling.
func PointerDepth(ctype string) int {
	return strings.Count(ctype, "*")
}

func (m *Method) IsDesignatedConstructor() bool {
	return m.Name == "new"
}

// IsBareFactory reports a creation function without arguments that is not "new".
func (m *Method) IsBareFactory() bool {
	return len(m.Args) == 0 && !m.IsDesignatedConstructor()
}

// CallName is the native symbol, falling back to the model name.
func (m *Method) CallName() string {
	if m.CName != "" {
		return m.CName
	}
	return m.Name
}

// RawName is the model name, falling back to the native symbol.
func (m *Method) RawName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.CName
}

// Parameters returns the arguments that are not the instance parameter.
func (m *Method) Parameters() []Argument {
	params := make([]Argument, 0, len(m.Args))
	for _, arg := range m.Args {
		if !arg.Instance {
			params = append(params, arg)
		}
	}
	return params
}

func (m *Method) IsGetter() bool {
	name := m.RawName()
	return (strings.HasPrefix(name, "get_") || strings.HasPrefix(name, "is_")) &&
		len(m.Parameters()) == 0 && !m.Returns.IsVoid()
}

func (m *Method) IsSetter() bool {
	return strings.HasPrefix(m.RawName(), "set_") && len(m.Parameters()) == 1
}

// AccessorKey is the accessor name without its get_, set_ or is_ prefix.
func AccessorKey(name string) string {
	for _, prefix := range []string{"get_", "set_", "is_"} {
		if strings.HasPrefix(name, prefix) {
			return name[len(prefix):]
		}
	}
	return name
}

// IsSetterFor reports whether m sets the value read by the given getter name.
func (m *Method) IsSetterFor(getter string) bool {
	return m.IsSetter() && AccessorKey(m.RawName()) == AccessorKey(getter)
}

// IsGetterFor reports whether m reads the value written by the given setter name.
func (m *Method) IsGetterFor(setter string) bool {
	return m.IsGetter() && AccessorKey(m.RawName()) == AccessorKey(setter)
}
