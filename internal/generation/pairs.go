package generation

import (
	"sort"
	"strings"

	"gir2go/internal/metadata"
)

// GetterSetterPair is one computed property. Getter is never nil for pairs
// built by GetterSetterPairs.
type GetterSetterPair struct {
	Getter *metadata.Method
	Setter *metadata.Method
}

// PropertyName is the camel-cased getter name without "get_". An "is_" prefix
// is kept.
func (p GetterSetterPair) PropertyName() string {
	if p.Getter == nil {
		return CamelCase(metadata.AccessorKey(p.Setter.RawName()))
	}
	return CamelCase(strings.TrimPrefix(p.Getter.RawName(), "get_"))
}

// GetterName is the Go name of the generated getter.
func (p GetterSetterPair) GetterName() string {
	return Exported(p.PropertyName())
}

// SetterName is the Go name of the generated setter.
func (p GetterSetterPair) SetterName() string {
	name := p.Getter.RawName()
	if p.Setter != nil {
		name = p.Setter.RawName()
	}
	return "Set" + Exported(CamelCase(metadata.AccessorKey(name)))
}

// GetterSetterPairs groups the accessor methods into computed properties.
// Candidates are stably sorted by accessor key; a getter followed by its
// setter, or a setter followed by its getter, forms a pair, a getter alone
// forms a read-only pair and a setter alone is left out.
func GetterSetterPairs(methods []*metadata.Method) []GetterSetterPair {
	candidates := make([]*metadata.Method, 0, len(methods))
	for _, m := range methods {
		if m.IsGetter() || m.IsSetter() {
			candidates = append(candidates, m)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return metadata.AccessorKey(candidates[i].RawName()) < metadata.AccessorKey(candidates[j].RawName())
	})

	var pairs []GetterSetterPair
	for i := 0; i < len(candidates); i++ {
		current := candidates[i]
		var next *metadata.Method
		if i+1 < len(candidates) {
			next = candidates[i+1]
		}

		switch {
		case current.IsGetter() && next != nil && next.IsSetterFor(current.RawName()):
			pairs = append(pairs, GetterSetterPair{Getter: current, Setter: next})
			i++
		case current.IsGetter():
			pairs = append(pairs, GetterSetterPair{Getter: current})
		case next != nil && next.IsGetterFor(current.RawName()):
			pairs = append(pairs, GetterSetterPair{Getter: next, Setter: current})
			i++
		}
	}
	return pairs
}

// claimed returns the methods taken by pairs.
func claimed(pairs []GetterSetterPair) map[*metadata.Method]bool {
	taken := make(map[*metadata.Method]bool, 2*len(pairs))
	for _, p := range pairs {
		taken[p.Getter] = true
		if p.Setter != nil {
			taken[p.Setter] = true
		}
	}
	return taken
}
