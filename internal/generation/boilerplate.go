package generation

import (
	"strings"

	"github.com/dave/jennifer/jen"
)

// Files every generation run may write besides the record files.
const (
	boilerplateFile  = "boilerplate.go"
	enumerationsFile = "enums.go"
	constantsFile    = "constants.go"
	aliasesFile      = "aliases.go"
	callbacksFile    = "callbacks.go"
	functionsFile    = "functions.go"
)

var fixedFiles = map[string]bool{
	boilerplateFile:  true,
	enumerationsFile: true,
	constantsFile:    true,
	aliasesFile:      true,
	callbacksFile:    true,
	functionsFile:    true,
}

// preamble is the cgo preamble of every generated file.
func (e *emitter) preamble() string {
	var lines []string
	if len(e.options.PkgConfig) > 0 {
		lines = append(lines, "#cgo pkg-config: "+strings.Join(e.options.PkgConfig, " "))
	}
	lines = append(lines, "#include <stdlib.h>", "#include <glib.h>")
	for _, include := range e.options.CIncludes {
		if include == "stdlib.h" || include == "glib.h" {
			continue
		}
		lines = append(lines, "#include <"+include+">")
	}
	return strings.Join(lines, "\n")
}

func (e *emitter) newFile() *jen.File {
	f := jen.NewFile(e.options.PackageName)
	f.HeaderComment("Code generated by gir2go. DO NOT EDIT.")
	f.CgoPreamble(e.preamble())
	return f
}

// renderBoilerplate emits the helpers shared by all generated files.
func (e *emitter) renderBoilerplate() *jen.File {
	f := e.newFile()
	ptr := jen.Qual("unsafe", "Pointer")

	f.Comment("GError is a failure reported by a native call.")
	f.Type().Id("GError").Struct(
		jen.Id("Domain").Uint32(),
		jen.Id("Code").Int32(),
		jen.Id("Message").String(),
	)
	f.Line()

	f.Func().Params(jen.Id("e").Op("*").Id("GError")).Id("Error").Params().String().Block(
		jen.Return(jen.Id("e").Dot("Message")),
	)
	f.Line()

	f.Comment("newGError copies and frees cerr.")
	f.Func().Id("newGError").Params(jen.Id("cerr").Op("*").Qual("C", "GError")).Error().Block(
		jen.Defer().Qual("C", "g_error_free").Call(jen.Id("cerr")),
		jen.Return(jen.Op("&").Id("GError").Values(jen.Dict{
			jen.Id("Domain"):  jen.Uint32().Call(jen.Id("cerr").Dot("domain")),
			jen.Id("Code"):    jen.Int32().Call(jen.Id("cerr").Dot("code")),
			jen.Id("Message"): jen.Qual("C", "GoString").Call(jen.Parens(jen.Op("*").Qual("C", "char")).Call(ptr.Clone().Call(jen.Id("cerr").Dot("message")))),
		})),
	)
	f.Line()

	f.Func().Id("gbool").Params(jen.Id("b").Bool()).Qual("C", "gboolean").Block(
		jen.If(jen.Id("b")).Block(jen.Return(jen.Lit(1))),
		jen.Return(jen.Lit(0)),
	)
	f.Line()

	f.Func().Id("goBool").Params(jen.Id("b").Qual("C", "gboolean")).Bool().Block(
		jen.Return(jen.Id("b").Op("!=").Lit(0)),
	)
	f.Line()

	f.Comment("handleOf returns the handle of v, or nil for a nil interface or a nil pointer inside one.")
	f.Func().Id("handleOf").Params(jen.Id("v").Interface(jen.Id("Ptr").Params().Add(ptr.Clone()))).Add(ptr.Clone()).Block(
		jen.If(jen.Id("v").Op("==").Nil()).Block(jen.Return(jen.Nil())),
		jen.If(
			jen.Id("rv").Op(":=").Qual("reflect", "ValueOf").Call(jen.Id("v")),
			jen.Id("rv").Dot("Kind").Call().Op("==").Qual("reflect", "Pointer").Op("&&").Id("rv").Dot("IsNil").Call(),
		).Block(jen.Return(jen.Nil())),
		jen.Return(jen.Id("v").Dot("Ptr").Call()),
	)
	f.Line()

	f.Func().Id("wrapOrNil").Types(jen.Id("T").Any()).Params(
		jen.Id("p").Add(ptr.Clone()),
		jen.Id("wrap").Func().Params(ptr.Clone()).Id("T"),
	).Op("*").Id("T").Block(
		jen.If(jen.Id("p").Op("==").Nil()).Block(jen.Return(jen.Nil())),
		jen.Id("v").Op(":=").Id("wrap").Call(jen.Id("p")),
		jen.Return(jen.Op("&").Id("v")),
	)
	f.Line()

	f.Func().Id("goStringOrNil").Params(jen.Id("p").Add(ptr.Clone())).Op("*").String().Block(
		jen.If(jen.Id("p").Op("==").Nil()).Block(jen.Return(jen.Nil())),
		jen.Id("s").Op(":=").Qual("C", "GoString").Call(jen.Parens(jen.Op("*").Qual("C", "char")).Call(jen.Id("p"))),
		jen.Return(jen.Op("&").Id("s")),
	)
	return f
}
