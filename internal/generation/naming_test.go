package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gir2go/internal/metadata"
)

func testRegistry() *metadata.Registry {
	return metadata.NewRegistry(&metadata.Repository{
		Namespace: "Test",
		Records: []metadata.Record{
			{Thing: metadata.Thing{Name: "Widget"}, CType: "TestWidget", Kind: metadata.KindClass},
		},
		Enumerations: []metadata.Enumeration{
			{Thing: metadata.Thing{Name: "Align"}, CType: "TestAlign"},
		},
	})
}

func TestCamelCase(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"name":            "name",
		"new_from_file":   "newFromFile",
		"n_sizes":         "nSizes",
		"trailing_":       "trailing_",
		"double__under":   "doubleUnder",
		"get_UTF8":        "getUTF8",
		"_leading":        "Leading",
		"x_1":             "x1",
		"already_camelOK": "alreadyCamelOK",
	}
	for input, expected := range tests {
		assert.Equal(t, expected, CamelCase(input), input)
	}
}

func TestSignalName(t *testing.T) {
	assert.Equal(t, "sizeChanged", SignalName("size-changed"))
	assert.Equal(t, "visible", SignalName("notify::visible"))
	assert.Equal(t, "hasDefault", SignalName("has_default"))
	assert.Equal(t, "SizeChanged", Exported(SignalName("size-changed")))
}

func TestEscape(t *testing.T) {
	namer := NewNamer(testRegistry())

	assert.Equal(t, "type_", namer.Escape("type"))
	assert.Equal(t, "string_", namer.Escape("string"))
	assert.Equal(t, "unsafe_", namer.Escape("unsafe"))
	assert.Equal(t, "Widget_", namer.Escape("Widget"))
	assert.Equal(t, "userData", namer.Escape("user_data"))

	for _, name := range []string{"type", "func", "len", "user_data", "Align", "C", "trailing_"} {
		once := namer.Escape(name)
		assert.Equal(t, once, namer.Escape(once), "Escape must be idempotent for %q", name)
	}
}

func TestArgumentName(t *testing.T) {
	namer := NewNamer(testRegistry())

	arg := &metadata.Argument{Thing: metadata.Thing{Name: "user_data"}, CType: "gpointer"}
	assert.Equal(t, "userData", namer.ArgumentName(arg, "unsafe.Pointer"))

	// Clashes with generated locals.
	assert.Equal(t, "rv_", namer.ArgumentName(&metadata.Argument{Thing: metadata.Thing{Name: "rv"}}, ""))
	assert.Equal(t, "cerr_", namer.ArgumentName(&metadata.Argument{Thing: metadata.Thing{Name: "cerr"}}, ""))

	// Clashes with its own types.
	assert.Equal(t, "gint_", namer.ArgumentName(&metadata.Argument{Thing: metadata.Thing{Name: "gint"}, CType: "gint*"}, ""))
	assert.Equal(t, "size_", namer.ArgumentName(&metadata.Argument{Thing: metadata.Thing{Name: "size"}}, "size"))

	assert.Equal(t, "arg", namer.ArgumentName(&metadata.Argument{}, ""))
}

func TestTypeNames(t *testing.T) {
	namer := NewNamer(testRegistry())

	assert.Equal(t, "Widget", namer.TypeName("Widget"))
	assert.Equal(t, "Object", namer.TypeName("GObject.Object"))
	assert.Equal(t, "WidgetInterface", namer.InterfaceName("Widget"))
	assert.Equal(t, "WidgetRef", namer.RefName("Widget"))
	assert.Equal(t, "Widget", namer.OwnerName("Widget"))

	// Names that would be mistaken for generated wrappers.
	assert.Equal(t, "ValueRef_", namer.TypeName("ValueRef"))
	assert.Equal(t, "ValueRef_Ref", namer.RefName("ValueRef"))
	assert.Equal(t, "TypeInterface_", namer.TypeName("TypeInterface"))
}

func TestMethodName(t *testing.T) {
	namer := NewNamer(testRegistry())

	assert.Equal(t, "SetSizes", namer.MethodName("set_sizes"))
	assert.Equal(t, "Init", namer.MethodName("init"))
	assert.Equal(t, "Ptr_", namer.MethodName("ptr"))
	assert.Equal(t, "Native_", namer.MethodName("native"))
	assert.Equal(t, "WidgetPropertyVisible", namer.MemberName("WidgetProperty", "visible"))
	assert.Equal(t, "WidgetSignalSizeChanged", namer.MemberName("WidgetSignal", "size-changed"))
	assert.Equal(t, "AlignFill", namer.MemberName("Align", "fill"))
}

func TestIsValidIdentifier(t *testing.T) {
	assert.True(t, IsValidIdentifier("SetSizes"))
	assert.False(t, IsValidIdentifier("2d"))
	assert.False(t, IsValidIdentifier("func"))
	assert.False(t, IsValidIdentifier(""))
}
