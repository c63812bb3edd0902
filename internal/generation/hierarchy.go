package generation

import "gir2go/internal/metadata"

func sameRecord(a, b *metadata.Record) bool {
	return a != nil && b != nil && a.QualifiedName() == b.QualifiedName()
}

// Hierarchy holds the ancestor chain of every generated record. It is filled
// before records are rendered and only read afterwards.
type Hierarchy struct {
	registry *metadata.Registry
	chains   map[string][]*metadata.Record
}

func NewHierarchy(registry *metadata.Registry, records []*metadata.Record) *Hierarchy {
	h := &Hierarchy{
		registry: registry,
		chains:   make(map[string][]*metadata.Record, len(records)),
	}
	for _, r := range records {
		h.chains[r.QualifiedName()] = h.walk(r)
	}
	return h
}

// walk follows the parent links and stops on the first repeated record, so it
// terminates on any input.
func (h *Hierarchy) walk(r *metadata.Record) []*metadata.Record {
	var chain []*metadata.Record
	seen := map[string]bool{r.QualifiedName(): true}
	for parent := h.registry.ParentOf(r); parent != nil; parent = h.registry.ParentOf(parent) {
		if seen[parent.QualifiedName()] {
			break
		}
		seen[parent.QualifiedName()] = true
		chain = append(chain, parent)
	}
	return chain
}

// Ancestors returns the parents of r, nearest first.
func (h *Hierarchy) Ancestors(r *metadata.Record) []*metadata.Record {
	if chain, found := h.chains[r.QualifiedName()]; found {
		return chain
	}
	return h.walk(r)
}

// IsAncestor reports whether ancestor is a (transitive) parent of r.
func (h *Hierarchy) IsAncestor(ancestor, r *metadata.Record) bool {
	for _, a := range h.Ancestors(r) {
		if sameRecord(a, ancestor) {
			return true
		}
	}
	return false
}
