package generation

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"

	"gir2go/internal/diagnostic"
	"gir2go/internal/metadata"
)

// Classification is the output shape a record-related function takes.
type Classification int

const (
	Ordinary Classification = iota
	Designated
	Factory
	Unsupported
)

func (c Classification) String() string {
	switch c {
	case Designated:
		return "designated"
	case Factory:
		return "factory"
	case Unsupported:
		return "unsupported"
	default:
		return "ordinary"
	}
}

var linkingTokens = map[string]bool{
	"from": true,
	"for":  true,
	"with": true,
}

// Stub explains why a member is emitted as a comment only.
type Stub struct {
	Code   string
	Reason string
}

// Classifier decides which shape a function of a record becomes.
type Classifier struct {
	namer     *Namer
	hierarchy *Hierarchy
	denylist  map[string]bool
	target    *version.Version
}

func NewClassifier(namer *Namer, hierarchy *Hierarchy, denylist []string, target *version.Version) *Classifier {
	denied := make(map[string]bool, len(denylist))
	for _, name := range denylist {
		denied[name] = true
	}
	return &Classifier{
		namer:     namer,
		hierarchy: hierarchy,
		denylist:  denied,
		target:    target,
	}
}

// Unsupported returns why m cannot be generated, or nil.
func (c *Classifier) Unsupported(m *metadata.Method) *Stub {
	switch {
	case m.Variadic:
		return &Stub{diagnostic.CodeVariadic, "variadic functions cannot be called through cgo"}
	case c.denylist[m.CallName()] || c.denylist[m.RawName()] || c.denylist[c.namer.MethodName(m.RawName())]:
		return &Stub{diagnostic.CodeDenylisted, "the name is denylisted"}
	case metadata.IsNewerThan(m.Version, c.target):
		return &Stub{diagnostic.CodeNewerThanTarget, fmt.Sprintf("introduced in version %s, after the target %s", m.Version, c.target.Original())}
	case !IsValidIdentifier(c.namer.MethodName(m.RawName())):
		return &Stub{diagnostic.CodeInvalidIdentifier, fmt.Sprintf("%q is not a valid Go identifier", m.RawName())}
	}
	for i := range m.Args {
		if name := c.namer.ArgumentName(&m.Args[i], ""); !IsValidIdentifier(name) {
			return &Stub{diagnostic.CodeInvalidIdentifier, fmt.Sprintf("argument %q is not a valid Go identifier", m.Args[i].Name)}
		}
	}
	return nil
}

// IsConstructorOf reports whether m returns r or one of its ancestors while
// not taking an r as first argument.
func (c *Classifier) IsConstructorOf(m *metadata.Method, r *metadata.Record) bool {
	returned := m.Returns.KnownRecord(c.hierarchy.registry)
	if returned == nil || !m.Returns.IsAnyKindOfPointer() {
		return false
	}
	if len(m.Args) > 0 && m.Args[0].IsInstanceOf(r) {
		return false
	}
	return sameRecord(returned, r) || c.hierarchy.IsAncestor(returned, r)
}

// Classify determines the shape of m: designated constructor, then factory,
// then ordinary function.
func (c *Classifier) Classify(m *metadata.Method, r *metadata.Record) Classification {
	if c.Unsupported(m) != nil {
		return Unsupported
	}
	if !c.IsConstructorOf(m, r) {
		return Ordinary
	}
	if m.IsDesignatedConstructor() {
		return Designated
	}
	return Factory
}

// Label derives the camel-cased label of a creation function from its native
// name: from the first linking token ("from", "for", "with") on, or else by
// stripping a "new" prefix or suffix. Functions without arguments have none.
func Label(m *metadata.Method) string {
	tokens := strings.Split(m.CallName(), "_")
	for i, token := range tokens {
		if i > 0 && linkingTokens[token] {
			return CamelCase(strings.Join(tokens[i:], "_"))
		}
	}

	if len(m.Args) == 0 {
		return ""
	}
	name := m.RawName()
	switch {
	case name == "new" || name == "newv":
		return ""
	case strings.HasPrefix(name, "new_"):
		return CamelCase(strings.TrimPrefix(name, "new_"))
	case strings.HasSuffix(name, "_newv"):
		return CamelCase(strings.TrimSuffix(name, "_newv"))
	case strings.HasSuffix(name, "_new"):
		return CamelCase(strings.TrimSuffix(name, "_new"))
	}
	return ""
}

// argumentLabel is Label, elided when the first parameter already carries
// that name.
func (c *Classifier) argumentLabel(m *metadata.Method) string {
	label := Label(m)
	params := m.Parameters()
	if label != "" && len(params) > 0 && c.namer.ArgumentName(&params[0], "") == label {
		return ""
	}
	return label
}

// CreationName is the Go name of a designated constructor or factory,
// returning either the owner or, with ref set, the value wrapper.
func (c *Classifier) CreationName(m *metadata.Method, r *metadata.Record, ref bool) string {
	typeName := c.namer.OwnerName(r.Name)
	if ref {
		typeName = c.namer.RefName(r.Name)
	}
	if m.IsDesignatedConstructor() {
		return "New" + typeName
	}
	if label := Label(m); label != "" {
		return "New" + typeName + Exported(label)
	}
	if m.IsBareFactory() {
		return typeName + c.namer.MethodName(m.RawName())
	}
	return "New" + typeName + c.namer.MethodName(m.RawName())
}
