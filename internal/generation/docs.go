package generation

import (
	"regexp"
	"strings"

	"github.com/dave/jennifer/jen"

	"gir2go/internal/metadata"
)

// Markup of GIR documentation and its Go doc equivalent, applied in order.
var docSubstitutions = []struct {
	markup      string
	replacement string
}{
	{"%NULL", "`nil`"},
	{"%TRUE", "`true`"},
	{"%FALSE", "`false`"},
	{`|[<!-- language="plain" -->`, "```"},
	{`|[ <!-- language="CSS" -->`, "(CSS Example):\n```C"},
	{`|[<!-- language="C" -->`, "(C Language Example):\n```C"},
	{`|[<!-- language="C" --`, "(C Language Example):\n```C"},
	{"|[", "```"},
	{"]|", "```\n"},
}

var docReference = regexp.MustCompile(`[@#%]([A-Za-z_][A-Za-z0-9_]*)`)

// TranscodeDoc turns GIR markup into Go doc text.
func TranscodeDoc(doc string) string {
	for _, s := range docSubstitutions {
		doc = strings.ReplaceAll(doc, s.markup, s.replacement)
	}
	return docReference.ReplaceAllString(doc, "`$1`")
}

// Comment renders the documentation of thing as line comments prefixed with
// indent. A deprecation notice becomes a trailing "Deprecated:" paragraph.
func Comment(thing *metadata.Thing, indent string) string {
	var lines []string
	if doc := strings.TrimSpace(thing.Doc); doc != "" {
		lines = strings.Split(strings.TrimRight(TranscodeDoc(doc), "\n"), "\n")
	}

	if thing.Deprecated != nil {
		notice := strings.TrimSpace(*thing.Deprecated)
		switch {
		case notice != "":
			notice = TranscodeDoc(notice)
		case thing.DeprecatedVersion != "":
			notice = "since " + thing.DeprecatedVersion
		default:
			notice = "do not use in new code"
		}
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		deprecation := strings.Split(strings.TrimRight(notice, "\n"), "\n")
		deprecation[0] = "Deprecated: " + deprecation[0]
		lines = append(lines, deprecation...)
	}

	if len(lines) == 0 {
		return ""
	}
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		line = strings.TrimRight(line, " \t")
		if line == "" {
			b.WriteString(indent + "//")
			continue
		}
		b.WriteString(indent + "// " + line)
	}
	return b.String()
}

// docComment is Comment as a jennifer node; empty documentation renders
// nothing.
func docComment(thing *metadata.Thing) jen.Code {
	text := Comment(thing, "")
	if text == "" {
		return jen.Null()
	}
	return jen.Comment(text)
}
