package generation

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"gir2go/internal/diagnostic"
	"gir2go/internal/metadata"
)

// The map of basic C types to Go equivalents
var fundamentalTypes = map[string]string{
	"gboolean":       "bool",
	"gchar":          "int8",
	"guchar":         "uint8",
	"gint8":          "int8",
	"guint8":         "uint8",
	"gint16":         "int16",
	"guint16":        "uint16",
	"gint32":         "int32",
	"guint32":        "uint32",
	"gint64":         "int64",
	"guint64":        "uint64",
	"gshort":         "int16",
	"gushort":        "uint16",
	"gint":           "int32",
	"guint":          "uint32",
	"glong":          "int64",
	"gulong":         "uint64",
	"gsize":          "uint64",
	"gssize":         "int64",
	"goffset":        "int64",
	"gintptr":        "int64",
	"guintptr":       "uintptr",
	"gfloat":         "float32",
	"gdouble":        "float64",
	"gunichar":       "rune",
	"gunichar2":      "uint16",
	"GType":          "uint64",
	"GQuark":         "uint32",
	"char":           "int8",
	"unsigned char":  "uint8",
	"short":          "int16",
	"unsigned short": "uint16",
	"int":            "int32",
	"unsigned int":   "uint32",
	"unsigned":       "uint32",
	"long":           "int64",
	"unsigned long":  "uint64",
	"int8_t":         "int8",
	"uint8_t":        "uint8",
	"int16_t":        "int16",
	"uint16_t":       "uint16",
	"int32_t":        "int32",
	"uint32_t":       "uint32",
	"int64_t":        "int64",
	"uint64_t":       "uint64",
	"size_t":         "uint64",
	"time_t":         "int64",
	"float":          "float32",
	"double":         "float64",
}

var stringTypes = map[string]bool{
	"utf8":     true,
	"filename": true,
}

// Role is the position a value takes in a generated signature.
type Role int

const (
	RoleParameter Role = iota
	RoleReturn
)

// Direction of a conversion.
type Direction int

const (
	ToNative Direction = iota
	ToHost
)

// Cast is the Go code converting one value: statements to run first, and the
// converted expression.
type Cast struct {
	Prelude []jen.Code
	Expr    *jen.Statement
}

type mappingKind int

const (
	mapVoid mappingKind = iota
	mapFundamental
	mapString
	mapRecord
	mapNamed
	mapCallback
	mapScalarArray
	mapOutScalar
	mapPointer
	mapRaw
)

// mapping is the resolved Go shape of one argument.
type mapping struct {
	kind mappingKind
	// goName is the Go spelling of a fundamental, named or element type.
	goName string
	// importPath qualifies record and named types of other namespaces.
	importPath string
	record     *metadata.Record
	// cElement is the C spelling behind a scalar array or out scalar.
	cElement string
	isBool   bool
}

// TypeMapper maps native type descriptors to Go types and builds the casts
// between both sides.
type TypeMapper struct {
	namer     *Namer
	registry  *metadata.Registry
	namespace string
	imports   map[string]string
	diags     *diagnostic.Diagnostics
	// owner names the record or file diagnostics are reported for.
	owner string
	// generated holds the qualified names of the local records that get
	// wrappers. A nil set means every local record does.
	generated map[string]bool
}

func NewTypeMapper(namer *Namer, registry *metadata.Registry, namespace string, imports map[string]string, diags *diagnostic.Diagnostics) *TypeMapper {
	return &TypeMapper{
		namer:     namer,
		registry:  registry,
		namespace: namespace,
		imports:   imports,
		diags:     diags,
	}
}

// Restrict limits record wrappers of the local namespace to the given
// qualified names; other local records are passed as raw pointers.
func (m *TypeMapper) Restrict(generated map[string]bool) *TypeMapper {
	m.generated = generated
	return m
}

// ForOwner returns a mapper reporting diagnostics for the given owner.
func (m *TypeMapper) ForOwner(owner string, diags *diagnostic.Diagnostics) *TypeMapper {
	copied := *m
	copied.owner = owner
	copied.diags = diags
	return &copied
}

func fundamental(ctype string) (string, bool) {
	goType, found := fundamentalTypes[ctype]
	return goType, found
}

// elementCType is the C spelling used for a value, falling back to the
// semantic name GIR gives fundamentals without a C type.
func elementCType(arg *metadata.Argument) string {
	if arg.CType != "" {
		return arg.CType
	}
	return arg.Type
}

func (m *TypeMapper) isLocal(namespace string) bool {
	return namespace == "" || namespace == m.namespace
}

func (m *TypeMapper) resolve(arg *metadata.Argument, role Role) mapping {
	if arg.IsVoid() {
		return mapping{kind: mapVoid}
	}

	ctype := elementCType(arg)
	base := metadata.BaseCType(ctype)
	depth := metadata.PointerDepth(ctype)

	if arg.IsArray {
		if goType, found := fundamental(base); found && depth == 0 && role == RoleParameter {
			if goType == "bool" {
				goType = "int32"
			}
			return mapping{kind: mapScalarArray, goName: goType, cElement: base}
		}
		return mapping{kind: mapPointer}
	}

	if depth == 1 && (stringTypes[arg.Type] || (arg.Type == "" && (base == "gchar" || base == "char"))) {
		if role == RoleReturn || arg.Direction == metadata.DirectionIn {
			return mapping{kind: mapString}
		}
	}

	if record := arg.KnownRecord(m.registry); record != nil && depth <= 1 && arg.IsAnyKindOfPointer() && arg.Direction == metadata.DirectionIn {
		if m.isLocal(record.Namespace) {
			if m.generated != nil && !m.generated[record.QualifiedName()] {
				return mapping{kind: mapPointer}
			}
			return mapping{kind: mapRecord, record: record}
		}
		if path, found := m.imports[record.Namespace]; found {
			return mapping{kind: mapRecord, record: record, importPath: path}
		}
		return mapping{kind: mapPointer}
	}

	if depth == 0 {
		if goType, found := fundamental(base); found {
			return mapping{kind: mapFundamental, goName: goType, isBool: goType == "bool"}
		}
	}

	if known := arg.KnownType(m.registry); known != nil && known.Kind != metadata.TypeRecord {
		named := m.resolveNamed(known)
		switch {
		case named.kind == mapRaw:
		case depth == 0:
			return named
		case depth == 1 && arg.Direction != metadata.DirectionIn && named.kind == mapNamed:
			return mapping{kind: mapOutScalar, goName: named.goName, importPath: named.importPath, cElement: base}
		}
	}

	if depth == 1 && arg.Direction != metadata.DirectionIn {
		if goType, found := fundamental(base); found && goType != "bool" {
			return mapping{kind: mapOutScalar, goName: goType, cElement: base}
		}
	}

	if arg.IsAnyKindOfPointer() {
		return mapping{kind: mapPointer}
	}
	return mapping{kind: mapRaw}
}

func (m *TypeMapper) resolveNamed(known *metadata.KnownType) mapping {
	name := m.namer.TypeName(known.Name)
	if known.Kind == metadata.TypeCallback {
		if m.isLocal(known.Namespace) {
			return mapping{kind: mapCallback, goName: name}
		}
		return mapping{kind: mapRaw}
	}
	if known.Kind == metadata.TypeAlias {
		if _, numeric := fundamental(metadata.BaseCType(known.TargetCType)); !numeric || metadata.PointerDepth(known.TargetCType) > 0 {
			return mapping{kind: mapRaw}
		}
	}
	if m.isLocal(known.Namespace) {
		return mapping{kind: mapNamed, goName: name}
	}
	if path, found := m.imports[known.Namespace]; found {
		return mapping{kind: mapNamed, goName: name, importPath: path}
	}
	return mapping{kind: mapRaw}
}

func (mp mapping) named(name string) *jen.Statement {
	if mp.importPath != "" {
		return jen.Qual(mp.importPath, name)
	}
	return jen.Id(name)
}

// cType spells a C type, e.g. *C.GtkWidget for "GtkWidget*".
func cType(ctype string) *jen.Statement {
	return jen.Op(strings.Repeat("*", metadata.PointerDepth(ctype))).Qual("C", metadata.BaseCType(ctype))
}

// castPointer converts an unsafe.Pointer expression to the given C pointer type.
func castPointer(ctype string, value jen.Code) *jen.Statement {
	if metadata.PointerDepth(ctype) == 0 {
		return jen.Qual("C", metadata.BaseCType(ctype)).Call(value)
	}
	return jen.Parens(cType(ctype)).Call(value)
}

// GoType returns the Go type of arg in the given role. Types that cannot be
// resolved are spelled as their raw C type and reported.
func (m *TypeMapper) GoType(arg *metadata.Argument, role Role) *jen.Statement {
	mp := m.resolve(arg, role)
	if mp.kind == mapRaw {
		m.report(arg)
	}
	return m.goType(arg, mp, role)
}

func (m *TypeMapper) report(arg *metadata.Argument) {
	if m.diags == nil {
		return
	}
	message := fmt.Sprintf("type %q (%s) has no Go mapping, using its C spelling", arg.Type, arg.CType)
	m.diags.AddInfo(diagnostic.CodeUnresolvedType, message, m.owner, arg.Name)
	log.Debugf("%s: %s", m.owner, message)
}

func (m *TypeMapper) goType(arg *metadata.Argument, mp mapping, role Role) *jen.Statement {
	switch mp.kind {
	case mapVoid:
		return jen.Null()
	case mapFundamental:
		return jen.Id(mp.goName)
	case mapString:
		if role == RoleReturn || arg.Nullable {
			return jen.Op("*").String()
		}
		return jen.String()
	case mapRecord:
		if role == RoleReturn {
			return jen.Op("*").Add(mp.named(m.namer.RefName(mp.record.Name)))
		}
		return mp.named(m.namer.InterfaceName(mp.record.Name))
	case mapNamed:
		return mp.named(mp.goName)
	case mapCallback:
		return jen.Id(mp.goName)
	case mapScalarArray:
		return jen.Index().Id(mp.goName)
	case mapOutScalar:
		return jen.Op("*").Add(mp.named(mp.goName))
	case mapPointer:
		return jen.Qual("unsafe", "Pointer")
	default:
		return jen.Qual("C", metadata.BaseCType(elementCType(arg)))
	}
}

// Cast converts the value with the given name in the given direction.
func (m *TypeMapper) Cast(arg *metadata.Argument, value string, direction Direction) Cast {
	if direction == ToHost {
		return m.ToHost(arg, jen.Id(value))
	}
	return m.ToNative(arg, value)
}

// ToNative converts the Go parameter name to the value the C call expects.
func (m *TypeMapper) ToNative(arg *metadata.Argument, name string) Cast {
	mp := m.resolve(arg, RoleParameter)
	ctype := elementCType(arg)
	value := jen.Id(name)

	switch mp.kind {
	case mapFundamental:
		if mp.isBool {
			return Cast{Expr: jen.Id("gbool").Call(value)}
		}
		return Cast{Expr: jen.Qual("C", metadata.BaseCType(ctype)).Call(value)}
	case mapString:
		cname := "c" + Exported(name)
		var prelude []jen.Code
		if arg.Nullable {
			prelude = []jen.Code{
				jen.Var().Id(cname).Op("*").Qual("C", "char"),
				jen.If(value.Clone().Op("!=").Nil()).Block(
					jen.Id(cname).Op("=").Qual("C", "CString").Call(jen.Op("*").Id(name)),
					jen.Defer().Qual("C", "free").Call(jen.Qual("unsafe", "Pointer").Call(jen.Id(cname))),
				),
			}
		} else {
			prelude = []jen.Code{
				jen.Id(cname).Op(":=").Qual("C", "CString").Call(value),
				jen.Defer().Qual("C", "free").Call(jen.Qual("unsafe", "Pointer").Call(jen.Id(cname))),
			}
		}
		return Cast{Prelude: prelude, Expr: castPointer(ctype, jen.Qual("unsafe", "Pointer").Call(jen.Id(cname)))}
	case mapRecord:
		return Cast{Expr: castPointer(ctype, jen.Id("handleOf").Call(value))}
	case mapNamed:
		return Cast{Expr: jen.Qual("C", metadata.BaseCType(ctype)).Call(value)}
	case mapScalarArray:
		data := jen.Qual("unsafe", "Pointer").Call(jen.Qual("unsafe", "SliceData").Call(value))
		return Cast{Expr: jen.Parens(jen.Op("*").Qual("C", mp.cElement)).Call(data)}
	case mapOutScalar:
		return Cast{Expr: castPointer(ctype, jen.Qual("unsafe", "Pointer").Call(value))}
	case mapPointer:
		return Cast{Expr: castPointer(ctype, value)}
	default:
		return Cast{Expr: value}
	}
}

// ToHost converts a value returned by a C call to its Go representation.
func (m *TypeMapper) ToHost(arg *metadata.Argument, value jen.Code) Cast {
	mp := m.resolve(arg, RoleReturn)

	switch mp.kind {
	case mapFundamental:
		if mp.isBool {
			return Cast{Expr: jen.Id("goBool").Call(value)}
		}
		return Cast{Expr: jen.Id(mp.goName).Call(value)}
	case mapString:
		return Cast{Expr: jen.Id("goStringOrNil").Call(jen.Qual("unsafe", "Pointer").Call(value))}
	case mapRecord:
		wrap := mp.named(m.namer.RefName(mp.record.Name) + "FromRaw")
		return Cast{Expr: jen.Id("wrapOrNil").Call(jen.Qual("unsafe", "Pointer").Call(value), wrap)}
	case mapNamed:
		return Cast{Expr: mp.named(mp.goName).Call(value)}
	case mapPointer:
		return Cast{Expr: jen.Qual("unsafe", "Pointer").Call(value)}
	default:
		return Cast{Expr: jen.Add(value)}
	}
}

// ZeroValue is the value returned next to an error.
func (m *TypeMapper) ZeroValue(arg *metadata.Argument) *jen.Statement {
	mp := m.resolve(arg, RoleReturn)
	switch mp.kind {
	case mapFundamental:
		if mp.isBool {
			return jen.False()
		}
		return jen.Lit(0)
	case mapNamed:
		return jen.Lit(0)
	case mapRaw:
		return jen.Op("*").New(m.goType(arg, mp, RoleReturn))
	default:
		return jen.Nil()
	}
}
