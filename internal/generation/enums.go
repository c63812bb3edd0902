package generation

import (
	"fmt"
	"go/token"
	"strconv"

	"github.com/dave/jennifer/jen"

	"gir2go/internal/diagnostic"
	"gir2go/internal/metadata"
)

// memberValue is the value of an enumeration member: its C constant, or the
// declared number when there is none.
func memberValue(member *metadata.Member, bitfield bool) jen.Code {
	if member.CName != "" {
		return jen.Qual("C", member.CName)
	}
	if bitfield {
		if v, err := strconv.ParseInt(member.Value, 10, 64); err == nil && v < 0 {
			return jen.Op(strconv.FormatUint(uint64(uint32(v)), 10))
		}
	}
	return jen.Op(member.Value)
}

func (e *emitter) renderEnumerations(enumerations []*metadata.Enumeration, diags *diagnostic.Diagnostics) *jen.File {
	f := e.newFile()
	for _, enum := range enumerations {
		typeName := e.namer.TypeName(enum.Name)
		base := jen.Int32()
		if enum.IsBitfield {
			base = jen.Uint32()
		}

		if doc := Comment(&enum.Thing, ""); doc != "" {
			f.Comment(doc)
		} else {
			f.Commentf("%s mirrors %s.", typeName, enum.CType)
		}
		f.Type().Id(typeName).Add(base)
		f.Line()

		seen := make(map[string]bool, len(enum.Members))
		f.Const().DefsFunc(func(g *jen.Group) {
			for i := range enum.Members {
				member := &enum.Members[i]
				name := e.namer.MemberName(typeName, member.Name)
				if !IsValidIdentifier(name) {
					diags.AddWarning(diagnostic.CodeInvalidIdentifier, fmt.Sprintf("%q is not a valid Go identifier", name), enum.Name, member.Name)
					continue
				}
				if seen[name] {
					continue
				}
				seen[name] = true
				g.Add(docComment(&member.Thing))
				g.Id(name).Id(typeName).Op("=").Add(memberValue(member, enum.IsBitfield))
			}
		})
		f.Line()
	}
	return f
}

// constantName keeps names that already are exported identifiers, such as
// MAJOR_VERSION, and camel-cases the others.
func constantName(name string) string {
	if token.IsIdentifier(name) && token.IsExported(name) {
		return name
	}
	return Exported(CamelCase(name))
}

func constantGoType(constant *metadata.Constant) string {
	if goType, found := fundamental(metadata.BaseCType(constant.CType)); found && metadata.PointerDepth(constant.CType) == 0 {
		return goType
	}
	if goType, found := fundamental(constant.Type); found {
		return goType
	}
	return ""
}

func isStringConstant(constant *metadata.Constant) bool {
	if stringTypes[constant.Type] {
		return true
	}
	base := metadata.BaseCType(constant.CType)
	return metadata.PointerDepth(constant.CType) == 1 && (base == "gchar" || base == "char")
}

func (e *emitter) renderConstants(constants []*metadata.Constant, diags *diagnostic.Diagnostics) *jen.File {
	f := e.newFile()
	seen := make(map[string]bool, len(constants))
	f.Const().DefsFunc(func(g *jen.Group) {
		for _, constant := range constants {
			name := constantName(constant.Name)
			switch {
			case !IsValidIdentifier(name):
				diags.AddWarning(diagnostic.CodeInvalidIdentifier, fmt.Sprintf("%q is not a valid Go identifier", constant.Name), "constants", constant.Name)
				continue
			case seen[name] || e.packageNames[name] || e.registry.IsKnownType(name):
				diags.AddWarning(diagnostic.CodeDuplicateName, fmt.Sprintf("%s is already declared", name), "constants", constant.Name)
				continue
			}
			seen[name] = true

			g.Add(docComment(&constant.Thing))
			goType := constantGoType(constant)
			switch {
			case isStringConstant(constant):
				g.Id(name).Op("=").Lit(constant.Value)
			case e.verbatim[constant.Name] || e.verbatim[constant.CName]:
				if goType == "" {
					g.Id(name).Op("=").Op(constant.Value)
				} else {
					g.Id(name).Id(goType).Op("=").Op(constant.Value)
				}
			case constant.CName != "":
				g.Id(name).Op("=").Qual("C", constant.CName)
			case goType != "":
				g.Id(name).Id(goType).Op("=").Op(constant.Value)
			default:
				g.Id(name).Op("=").Lit(constant.Value)
			}
		}
	})
	return f
}

func (e *emitter) renderAliases(aliases []*metadata.Alias, diags *diagnostic.Diagnostics) *jen.File {
	f := e.newFile()
	for _, alias := range aliases {
		typeName := e.namer.TypeName(alias.Name)
		if alias.CType == "" {
			diags.AddInfo(diagnostic.CodeUnresolvedType, "alias without a C type", "aliases", alias.Name)
			continue
		}

		if doc := Comment(&alias.Thing, ""); doc != "" {
			f.Comment(doc)
		}
		goType, numeric := fundamental(metadata.BaseCType(alias.TargetCType))
		if numeric && metadata.PointerDepth(alias.TargetCType) == 0 && goType != "bool" {
			f.Type().Id(typeName).Id(goType)
		} else {
			f.Type().Id(typeName).Op("=").Add(cType(alias.CType))
		}
		f.Line()
	}
	return f
}

func (e *emitter) renderCallbacks(callbacks []*metadata.Callback, diags *diagnostic.Diagnostics) *jen.File {
	f := e.newFile()
	for _, callback := range callbacks {
		if callback.CType == "" {
			diags.AddInfo(diagnostic.CodeUnresolvedType, "callback without a C type", "callbacks", callback.Name)
			continue
		}
		if doc := Comment(&callback.Thing, ""); doc != "" {
			f.Comment(doc)
		}
		f.Type().Id(e.namer.TypeName(callback.Name)).Op("=").Add(cType(callback.CType))
		f.Line()
	}
	return f
}
