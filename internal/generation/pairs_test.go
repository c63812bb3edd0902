package generation

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gir2go/internal/metadata"
)

var instanceArg = metadata.Argument{Thing: metadata.Thing{Name: "self"}, Type: "Widget", CType: "TestWidget*", Instance: true}

func getter(name string, ctype string) *metadata.Method {
	return &metadata.Method{
		Thing:   metadata.Thing{Name: name, CName: "test_widget_" + name},
		Args:    []metadata.Argument{instanceArg},
		Returns: metadata.Argument{Type: ctype, CType: ctype},
	}
}

func setter(name string, ctype string) *metadata.Method {
	return &metadata.Method{
		Thing: metadata.Thing{Name: name, CName: "test_widget_" + name},
		Args: []metadata.Argument{
			instanceArg,
			{Thing: metadata.Thing{Name: "value"}, Type: ctype, CType: ctype},
		},
		Returns: metadata.Argument{Type: "none", CType: "void"},
	}
}

func pairNames(pairs []GetterSetterPair) []string {
	var names []string
	for _, p := range pairs {
		names = append(names, p.GetterName())
		if p.Setter != nil {
			names = append(names, p.SetterName())
		}
	}
	return names
}

func TestGetterSetterPairs(t *testing.T) {
	methods := []*metadata.Method{
		setter("set_title", "utf8"),
		getter("get_visible", "gboolean"),
		getter("get_title", "utf8"),
		setter("set_visible", "gboolean"),
		getter("is_active", "gboolean"),
		setter("set_active", "gboolean"),
		setter("set_orphan", "gint"),
		getter("get_size", "gint"),
	}

	pairs := GetterSetterPairs(methods)
	require.Len(t, pairs, 4, spew.Sdump(pairs))

	assert.Equal(t, []string{"IsActive", "SetActive", "Size", "Title", "SetTitle", "Visible", "SetVisible"}, pairNames(pairs))
	for _, p := range pairs {
		assert.NotNil(t, p.Getter)
	}

	taken := claimed(pairs)
	assert.Len(t, taken, 7)
	assert.False(t, taken[methods[6]], "a setter without getter must not be claimed")
}

func TestGetterSetterPairsIsIdempotent(t *testing.T) {
	methods := []*metadata.Method{
		getter("get_visible", "gboolean"),
		setter("set_visible", "gboolean"),
		getter("get_size", "gint"),
	}

	first := GetterSetterPairs(methods)
	var regrouped []*metadata.Method
	for _, p := range first {
		regrouped = append(regrouped, p.Getter)
		if p.Setter != nil {
			regrouped = append(regrouped, p.Setter)
		}
	}
	assert.Equal(t, first, GetterSetterPairs(regrouped))
}

func TestGetterSetterPairsIgnoresNonAccessors(t *testing.T) {
	withParameter := getter("get_child", "gpointer")
	withParameter.Args = append(withParameter.Args, metadata.Argument{Thing: metadata.Thing{Name: "index"}, Type: "gint", CType: "gint"})
	voidGetter := getter("get_nothing", "none")
	voidGetter.Returns = metadata.Argument{Type: "none", CType: "void"}
	twoValues := setter("set_sizes", "gint")
	twoValues.Args = append(twoValues.Args, metadata.Argument{Thing: metadata.Thing{Name: "height"}, Type: "gint", CType: "gint"})

	assert.Empty(t, GetterSetterPairs([]*metadata.Method{withParameter, voidGetter, twoValues, getter("show", "gboolean")}))
}

func TestPropertyName(t *testing.T) {
	p := GetterSetterPair{Getter: getter("get_has_frame", "gboolean"), Setter: setter("set_has_frame", "gboolean")}
	assert.Equal(t, "hasFrame", p.PropertyName())
	assert.Equal(t, "HasFrame", p.GetterName())
	assert.Equal(t, "SetHasFrame", p.SetterName())

	readOnly := GetterSetterPair{Getter: getter("is_active", "gboolean")}
	assert.Equal(t, "isActive", readOnly.PropertyName())
	assert.Equal(t, "SetActive", readOnly.SetterName())
}
