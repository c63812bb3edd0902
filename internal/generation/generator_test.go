package generation

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/hashicorp/go-version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gir2go/internal/diagnostic"
	"gir2go/internal/metadata"
)

var testdata = filepath.Join("..", "metadata", "testdata")

func demoOptions() Options {
	return Options{
		PackageName: "demo",
		Workers:     4,
		PkgConfig:   []string{"demo-1.0"},
		CIncludes:   []string{"demo/demo.h"},
	}
}

type generated struct {
	names    []string
	contents map[string]string
	diags    diagnostic.Diagnostics
}

func generate(t *testing.T, generator *Generator) generated {
	t.Helper()
	files, diags, err := generator.Generate(context.Background())
	require.NoError(t, err)

	result := generated{contents: make(map[string]string, len(files)), diags: diags}
	for _, file := range files {
		result.names = append(result.names, file.Filename)
		result.contents[file.Filename] = string(file.Content)
	}
	return result
}

func generateDemo(t *testing.T, options Options) generated {
	t.Helper()
	reader, err := metadata.NewReader(filepath.Join(testdata, "Demo-1.0.gir"), metadata.NewLocator(testdata))
	require.NoError(t, err)
	require.Len(t, reader.Repositories, 2, "GObject must be loaded as include")

	generator := NewGenerator(metadata.NewRegistry(reader.Repositories...), reader.Primary().Namespace, options)
	generator.RegisterRepository(reader.Primary())
	return generate(t, generator)
}

func TestGenerateDemoFiles(t *testing.T) {
	result := generateDemo(t, demoOptions())

	assert.Equal(t, []string{
		"widget.go", "buildable.go", "bytes.go",
		functionsFile, enumerationsFile, constantsFile, aliasesFile, callbacksFile, boilerplateFile,
	}, result.names)
	assert.Empty(t, result.diags.Errors)
	assert.Equal(t, 1, result.diags.Count(diagnostic.CodeVariadic), spew.Sdump(result.diags))

	for name, content := range result.contents {
		assert.Contains(t, content, "// Code generated by gir2go. DO NOT EDIT.", name)
		assert.Contains(t, content, "package demo", name)
		assert.Contains(t, content, "#cgo pkg-config: demo-1.0", name)
		assert.Contains(t, content, "#include <demo/demo.h>", name)
		assert.Contains(t, content, `import "C"`, name)
	}
}

func TestGenerateDemoWidget(t *testing.T) {
	widget := generateDemo(t, demoOptions()).contents["widget.go"]

	// Wrappers.
	assert.Contains(t, widget, "type WidgetInterface interface {\n\tPtr() unsafe.Pointer\n")
	assert.Contains(t, widget, "type WidgetRef struct {\n\tptr unsafe.Pointer\n}")
	assert.Contains(t, widget, "func (r WidgetRef) Ptr() unsafe.Pointer {")
	assert.Contains(t, widget, "func (r WidgetRef) Native() *C.DemoWidget {")
	assert.Contains(t, widget, "func WidgetRefFromC(p *C.DemoWidget) WidgetRef {")
	assert.Contains(t, widget, "func WidgetRefFrom(other WidgetInterface) WidgetRef {")
	assert.Contains(t, widget, "func WidgetRefFromRaw(p unsafe.Pointer) WidgetRef {")
	assert.Contains(t, widget, "func WidgetRefFromHandle(h uintptr) WidgetRef {")
	assert.Contains(t, widget, "// The base of all widgets.\ntype Widget struct {\n\tWidgetRef\n}")
	assert.Contains(t, widget, "runtime.SetFinalizer(o, (*Widget).release)")
	assert.Contains(t, widget, "func WidgetFromC(p *C.DemoWidget) *Widget {")
	assert.Contains(t, widget, "func WidgetFromHandle(h uintptr) *Widget {")
	assert.Contains(t, widget, "func (o *Widget) Ptr() unsafe.Pointer {\n\tif o == nil {\n\t\treturn nil\n\t}\n\treturn o.WidgetRef.Ptr()\n}")
	assert.Regexp(t, `_\s+WidgetInterface = WidgetRef\{\}`, widget)
	assert.Regexp(t, `_\s+WidgetInterface = \(\*Widget\)\(nil\)`, widget)

	// Reference counting comes from GObject.Object, which takes a gpointer.
	assert.Contains(t, widget, "\tC.g_object_ref(C.gpointer(p))\n\treturn WidgetFromRaw(p)")
	assert.Contains(t, widget, "func (o *Widget) release() {\n\tC.g_object_unref(C.gpointer(o.Ptr()))\n}")

	// Constructors for both wrappers.
	assert.Contains(t, widget, "func NewWidgetRef() WidgetRef {\n\trv := C.demo_widget_new()\n\treturn WidgetRefFromRaw(unsafe.Pointer(rv))\n}")
	assert.Contains(t, widget, "func NewWidget() *Widget {\n\trv := C.demo_widget_new()\n\treturn WidgetFromRaw(unsafe.Pointer(rv))\n}")
	assert.Contains(t, widget, "func NewWidgetRefFromFile(file string) (WidgetRef, error) {")
	assert.Contains(t, widget, "func NewWidgetFromFile(file string) (*Widget, error) {")
	assert.Contains(t, widget, "\tvar cerr *C.GError\n\tcFile := C.CString(file)\n\tdefer C.free(unsafe.Pointer(cFile))\n")
	assert.Contains(t, widget, "rv := C.demo_widget_new_from_file((*C.gchar)(unsafe.Pointer(cFile)), &cerr)")
	assert.Contains(t, widget, "\tif cerr != nil {\n\t\treturn WidgetRef{}, newGError(cerr)\n\t}\n\treturn WidgetRefFromRaw(unsafe.Pointer(rv)), nil")
	assert.Contains(t, widget, "\tif cerr != nil {\n\t\treturn nil, newGError(cerr)\n\t}\n\treturn WidgetFromRaw(unsafe.Pointer(rv)), nil")

	// Methods and the computed property.
	assert.Contains(t, widget, "func (r WidgetRef) Visible() bool {\n\trv := C.demo_widget_get_visible((*C.DemoWidget)(r.Ptr()))\n\treturn goBool(rv)\n}")
	assert.Contains(t, widget, "// Shows or hides `widget`. `true` makes it visible.\nfunc (r WidgetRef) SetVisible(visible bool) {\n\tC.demo_widget_set_visible((*C.DemoWidget)(r.Ptr()), gbool(visible))\n}")
	assert.Contains(t, widget, "C.demo_widget_set_sizes((*C.DemoWidget)(r.Ptr()), (*C.gint)(unsafe.Pointer(unsafe.SliceData(sizes))), C.guint(nSizes))")
	assert.Contains(t, widget, "// Deprecated: Use `DemoWidget`:title instead.\nfunc (r WidgetRef) GetName(outLen *int32) *string {")
	assert.Contains(t, widget, "return goStringOrNil(unsafe.Pointer(rv))")
	assert.Contains(t, widget, "// demo_widget_printf is not available: variadic functions cannot be called through cgo.")
	assert.NotContains(t, widget, "func (r WidgetRef) Printf")
	assert.NotContains(t, widget, "GetVisible")

	// The interface lists every method of the value wrapper.
	for _, signature := range []string{
		"\tSetSizes(sizes []int32, nSizes uint32)\n",
		"\tGetName(outLen *int32) *string\n",
		"\tVisible() bool\n",
		"\tSetVisible(visible bool)\n",
	} {
		assert.Contains(t, widget, signature)
	}

	// Implemented interfaces, properties and signals.
	assert.Contains(t, widget, "func (r WidgetRef) AsBuildable() BuildableRef {\n\treturn BuildableRefFromRaw(r.Ptr())\n}")
	assert.Contains(t, widget, "type WidgetPropertyName string")
	assert.Regexp(t, `WidgetPropertyVisible\s+WidgetPropertyName = "visible"`, widget)
	assert.Contains(t, widget, "type WidgetSignalName string")
	assert.Contains(t, widget, "// Emitted when the size changes.")
	assert.Regexp(t, `WidgetSignalSizeChanged\s+WidgetSignalName = "size-changed"`, widget)
	assert.Regexp(t, `WidgetSignalNotifyVisible\s+WidgetSignalName = "notify::visible"`, widget)
}

func TestGenerateDemoInterfaceAndRecord(t *testing.T) {
	result := generateDemo(t, demoOptions())

	buildable := result.contents["buildable.go"]
	assert.Contains(t, buildable, "// no reference counting for DemoBuildable, cannot ref")
	assert.Contains(t, buildable, "// no reference counting for DemoBuildable, cannot unref")
	assert.Contains(t, buildable, "func (r BuildableRef) Id() *string {")
	assert.Contains(t, buildable, "\tId() *string\n")

	bytes := result.contents["bytes.go"]
	assert.Contains(t, bytes, "\tC.demo_bytes_ref((*C.DemoBytes)(p))\n")
	assert.Contains(t, bytes, "func (o *Bytes) release() {\n\tC.demo_bytes_unref((*C.DemoBytes)(o.Ptr()))\n}")
	assert.Contains(t, bytes, "func (r BytesRef) Ref() *BytesRef {")
	assert.Contains(t, bytes, "return wrapOrNil(unsafe.Pointer(rv), BytesRefFromRaw)")
	assert.NotContains(t, bytes, "PropertyName")
	assert.NotContains(t, bytes, "SignalName")
}

func TestGenerateDemoLeaves(t *testing.T) {
	result := generateDemo(t, demoOptions())

	assert.Contains(t, result.contents[functionsFile], "func Init() {\n\tC.demo_init()\n}")

	enums := result.contents[enumerationsFile]
	assert.Contains(t, enums, "type Align int32")
	assert.Contains(t, enums, "// Stretch to fill.")
	assert.Regexp(t, `AlignFill\s+Align = C.DEMO_ALIGN_FILL`, enums)
	assert.Regexp(t, `AlignStart\s+Align = C.DEMO_ALIGN_START`, enums)
	assert.Contains(t, enums, "type Flags uint32")
	assert.Regexp(t, `FlagsVisible\s+Flags = C.DEMO_FLAGS_VISIBLE`, enums)

	assert.Contains(t, result.contents[constantsFile], "MAJOR_VERSION = C.DEMO_MAJOR_VERSION")
	assert.Contains(t, result.contents[aliasesFile], "// A size in pixels.\ntype Size int32")
	assert.Contains(t, result.contents[callbacksFile], "type Callback = C.DemoCallback")

	boilerplate := result.contents[boilerplateFile]
	assert.Contains(t, boilerplate, "func newGError(cerr *C.GError) error {")
	assert.Contains(t, boilerplate, "defer C.g_error_free(cerr)")
	assert.Contains(t, boilerplate, "func gbool(b bool) C.gboolean {")
	assert.Contains(t, boilerplate, "func goBool(b C.gboolean) bool {")
	assert.Contains(t, boilerplate, "func wrapOrNil[T any](p unsafe.Pointer, wrap func(unsafe.Pointer) T) *T {")
	assert.Contains(t, boilerplate, "func goStringOrNil(p unsafe.Pointer) *string {")

	// A nil *Widget or *WidgetRef passed as an interface yields a nil handle.
	assert.Contains(t, boilerplate, "func handleOf(v interface {\n\tPtr() unsafe.Pointer\n}) unsafe.Pointer {")
	assert.Contains(t, boilerplate, "\tif rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {\n\t\treturn nil\n\t}\n\treturn v.Ptr()")
	assert.Contains(t, boilerplate, "\t\"reflect\"\n")
}

func TestGenerateDemoOptions(t *testing.T) {
	options := demoOptions()
	options.TargetVersion = version.Must(version.NewVersion("1.0"))
	options.Denylist = []string{"demo_widget_set_sizes"}
	options.Verbatim = []string{"MAJOR_VERSION"}
	result := generateDemo(t, options)

	widget := result.contents["widget.go"]
	assert.Contains(t, widget, "// demo_widget_new_from_file is not available: introduced in version 1.2, after the target 1.0.")
	assert.NotContains(t, widget, "func NewWidgetFromFile")
	assert.Contains(t, widget, "// demo_widget_set_sizes is not available: the name is denylisted.")
	assert.NotContains(t, widget, "SetSizes(")
	assert.Contains(t, widget, "func NewWidget() *Widget {")

	assert.Equal(t, 1, result.diags.Count(diagnostic.CodeNewerThanTarget))
	assert.Equal(t, 1, result.diags.Count(diagnostic.CodeDenylisted))
	assert.Contains(t, result.contents[constantsFile], "MAJOR_VERSION int32 = 1")
}

func TestGenerateIsDeterministic(t *testing.T) {
	first := generateDemo(t, demoOptions())
	options := demoOptions()
	options.Workers = 1
	second := generateDemo(t, options)

	assert.Equal(t, first.names, second.names)
	assert.Equal(t, first.contents, second.contents)
	assert.Equal(t, first.diags, second.diags)
}

// scenarioRepository has a generated hierarchy Object <- Widget sharing a
// method name, free functions and accessor corner cases.
func scenarioRepository() *metadata.Repository {
	instance := func(typeName string) metadata.Argument {
		return metadata.Argument{Thing: metadata.Thing{Name: "self"}, Type: typeName, CType: "Test" + typeName + "*", Instance: true}
	}
	void := metadata.Argument{Type: "none", CType: "void"}
	boolean := metadata.Argument{Type: "gboolean", CType: "gboolean"}

	return &metadata.Repository{
		Namespace: "Test",
		Records: []metadata.Record{
			{
				Thing: metadata.Thing{Name: "Widget"}, CType: "TestWidget", Kind: metadata.KindClass, Parent: "Object",
				Methods: []metadata.Method{
					{Thing: metadata.Thing{Name: "show", CName: "test_widget_show"}, Args: []metadata.Argument{instance("Widget")}, Returns: void},
					{Thing: metadata.Thing{Name: "get_active", CName: "test_widget_get_active"}, Args: []metadata.Argument{instance("Widget")}, Returns: boolean},
					{Thing: metadata.Thing{Name: "active", CName: "test_widget_active"}, Args: []metadata.Argument{instance("Widget")}, Returns: boolean},
					{Thing: metadata.Thing{Name: "set_orphan", CName: "test_widget_set_orphan"}, Args: []metadata.Argument{
						instance("Widget"),
						{Thing: metadata.Thing{Name: "value"}, Type: "gint", CType: "gint"},
					}, Returns: void},
				},
			},
			{
				Thing: metadata.Thing{Name: "Object"}, CType: "TestObject", Kind: metadata.KindClass,
				Ref: "test_object_ref", Unref: "test_object_unref",
				Methods: []metadata.Method{
					{Thing: metadata.Thing{Name: "show", CName: "test_object_show"}, Args: []metadata.Argument{instance("Object")}, Returns: void},
				},
				Functions: []metadata.Function{
					{Thing: metadata.Thing{Name: "get_default", CName: "test_object_get_default"}, Returns: metadata.Argument{Type: "gint", CType: "gint"}},
				},
			},
		},
		Functions: []metadata.Function{
			{
				Thing:   metadata.Thing{Name: "widget_activate", CName: "test_widget_activate"},
				Args:    []metadata.Argument{{Thing: metadata.Thing{Name: "widget"}, Type: "Widget", CType: "TestWidget*"}},
				Returns: void,
			},
			{Thing: metadata.Thing{Name: "widget", CName: "test_widget"}, Returns: void},
		},
	}
}

func generateScenario(t *testing.T) generated {
	t.Helper()
	repository := scenarioRepository()
	generator := NewGenerator(metadata.NewRegistry(repository), "Test", Options{PackageName: "test", Workers: 2})
	generator.RegisterRepository(repository)
	return generate(t, generator)
}

func TestGenerateInheritance(t *testing.T) {
	result := generateScenario(t)

	widget := result.contents["widget.go"]
	assert.Contains(t, widget, "type WidgetInterface interface {\n\tObjectInterface\n")
	assert.Contains(t, widget, "type WidgetRef struct {\n\tObjectRef\n}")
	assert.Contains(t, widget, "return WidgetRef{ObjectRefFromRaw(p)}")
	assert.NotContains(t, widget, "func (r WidgetRef) Ptr()")

	// The inherited name is taken, so the own method gets the type name appended.
	assert.Contains(t, widget, "func (r WidgetRef) ShowWidget() {\n\tC.test_widget_show((*C.TestWidget)(r.Ptr()))\n}")
	assert.Contains(t, result.contents["object.go"], "func (r ObjectRef) Show() {")

	// Lifecycle is inherited.
	assert.Contains(t, widget, "\tC.test_object_ref((*C.TestObject)(p))\n")
	assert.Contains(t, widget, "\tC.test_object_unref((*C.TestObject)(o.Ptr()))\n")

	// Record functions that do not create an instance.
	assert.Contains(t, result.contents["object.go"], "func ObjectGetDefault() int32 {")
}

func TestGenerateMemberCorners(t *testing.T) {
	result := generateScenario(t)
	widget := result.contents["widget.go"]

	// A free function taking the instance first becomes a method.
	assert.Contains(t, widget, "func (r WidgetRef) WidgetActivate() {\n\tC.test_widget_activate((*C.TestWidget)(r.Ptr()))\n}")
	assert.Contains(t, result.contents[functionsFile], "func WidgetActivate(widget WidgetInterface) {")

	// A function named like a type is renamed.
	assert.Contains(t, result.contents[functionsFile], "func Widget_() {")

	// The plain method spelled like the property getter is skipped.
	assert.Contains(t, widget, "func (r WidgetRef) Active() bool {\n\trv := C.test_widget_get_active(")
	assert.NotContains(t, widget, "C.test_widget_active(")
	assert.Equal(t, 1, result.diags.Count(diagnostic.CodeDuplicateName), spew.Sdump(result.diags))

	// A setter without getter stays a method.
	assert.Contains(t, widget, "func (r WidgetRef) SetOrphan(value int32) {")
	assert.Equal(t, 1, result.diags.Count(diagnostic.CodeDroppedSetter))
}

func TestGenerateEmptyRun(t *testing.T) {
	generator := NewGenerator(metadata.NewRegistry(), "Test", Options{PackageName: "test"})
	result := generate(t, generator)

	assert.Equal(t, []string{boilerplateFile}, result.names)
	assert.False(t, result.diags.HasErrors())
}

func TestGenerateCancelled(t *testing.T) {
	repository := scenarioRepository()
	generator := NewGenerator(metadata.NewRegistry(repository), "Test", Options{PackageName: "test"})
	generator.RegisterRepository(repository)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := generator.Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
