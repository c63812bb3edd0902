package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gir2go/internal/metadata"
)

func deprecated(notice string) *string {
	return &notice
}

func TestTranscodeDoc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Returns %NULL on failure", "Returns `nil` on failure"},
		{"%TRUE if shown, %FALSE if not.", "`true` if shown, `false` if not."},
		{"Shows @widget.", "Shows `widget`."},
		{"See #GtkWidget:visible.", "See `GtkWidget`:visible."},
		{"Set to %GTK_ALIGN_FILL.", "Set to `GTK_ALIGN_FILL`."},
		{"|[<!-- language=\"C\" -->\nint x;\n]|", "(C Language Example):\n```C\nint x;\n```\n"},
		{"|[<!-- language=\"plain\" -->\ntext\n]|", "```\ntext\n```\n"},
		{"|[ <!-- language=\"CSS\" -->\nbox {}\n]|", "(CSS Example):\n```C\nbox {}\n```\n"},
		{"|[\ncode\n]|", "```\ncode\n```\n"},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, TranscodeDoc(test.input), test.input)
	}
}

func TestComment(t *testing.T) {
	thing := &metadata.Thing{Doc: "Shows @widget.\n\nSee also %NULL."}
	assert.Equal(t, "// Shows `widget`.\n//\n// See also `nil`.", Comment(thing, ""))
	assert.Equal(t, "\t// Shows `widget`.\n\t//\n\t// See also `nil`.", Comment(thing, "\t"))

	assert.Empty(t, Comment(&metadata.Thing{}, ""))
	assert.Empty(t, Comment(&metadata.Thing{Doc: "  \n "}, ""))
}

func TestCommentDeprecation(t *testing.T) {
	tests := []struct {
		name     string
		thing    metadata.Thing
		expected string
	}{
		{
			name:     "notice",
			thing:    metadata.Thing{Doc: "Gets the name.", Deprecated: deprecated("Use #DemoWidget:title instead.")},
			expected: "// Gets the name.\n//\n// Deprecated: Use `DemoWidget`:title instead.",
		},
		{
			name:     "version only",
			thing:    metadata.Thing{Deprecated: deprecated(""), DeprecatedVersion: "3.10"},
			expected: "// Deprecated: since 3.10",
		},
		{
			name:     "bare",
			thing:    metadata.Thing{Doc: "Old.", Deprecated: deprecated("")},
			expected: "// Old.\n//\n// Deprecated: do not use in new code",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, Comment(&test.thing, ""))
		})
	}
}

func TestDocComment(t *testing.T) {
	assert.Equal(t, "// Shows `widget`.", goString(docComment(&metadata.Thing{Doc: "Shows @widget."})))
}
