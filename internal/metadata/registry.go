package metadata

// TypeKind classifies a known type.
type TypeKind int

const (
	TypeRecord TypeKind = iota
	TypeEnumeration
	TypeBitfield
	TypeAlias
	TypeCallback
)

// KnownType is a named type of some repository the generator can refer to.
type KnownType struct {
	Name      string
	CType     string
	Namespace string
	Kind      TypeKind

	// TargetCType is the aliased C type of a TypeAlias.
	TargetCType string
}

// Registry resolves semantic type names to known types and records.
// It is filled once by NewRegistry and never modified afterwards, so it can be
// shared between goroutines without locking.
type Registry struct {
	types   map[string]*KnownType
	records map[string]*Record
}

// NewRegistry indexes every type of the given repositories. Entries are keyed by
// short name, qualified name and C type; earlier repositories win on conflicts.
func NewRegistry(repositories ...*Repository) *Registry {
	registry := &Registry{
		types:   make(map[string]*KnownType),
		records: make(map[string]*Record),
	}

	for _, repository := range repositories {
		if repository == nil {
			continue
		}
		ns := repository.Namespace
		for i := range repository.Records {
			record := &repository.Records[i]
			if record.Namespace == "" {
				record.Namespace = ns
			}
			registry.addType(&KnownType{Name: record.Name, CType: record.CType, Namespace: ns, Kind: TypeRecord})
			registry.addRecord(ns, record)
		}
		for _, e := range repository.Enumerations {
			kind := TypeEnumeration
			if e.IsBitfield {
				kind = TypeBitfield
			}
			registry.addType(&KnownType{Name: e.Name, CType: e.CType, Namespace: ns, Kind: kind})
		}
		for _, a := range repository.Aliases {
			registry.addType(&KnownType{Name: a.Name, CType: a.CType, Namespace: ns, Kind: TypeAlias, TargetCType: a.TargetCType})
		}
		for _, c := range repository.Callbacks {
			registry.addType(&KnownType{Name: c.Name, CType: c.CType, Namespace: ns, Kind: TypeCallback})
		}
	}

	return registry
}

func (registry *Registry) addType(known *KnownType) {
	for _, key := range []string{qualify(known.Namespace, known.Name), known.Name, known.CType} {
		if _, exists := registry.types[key]; key != "" && !exists {
			registry.types[key] = known
		}
	}
}

func (registry *Registry) addRecord(namespace string, record *Record) {
	for _, key := range []string{qualify(namespace, record.Name), record.Name, record.CType} {
		if _, exists := registry.records[key]; key != "" && !exists {
			registry.records[key] = record
		}
	}
}

// KnownType returns the type registered under name, or nil.
func (registry *Registry) KnownType(name string) *KnownType {
	if registry == nil {
		return nil
	}
	return registry.types[name]
}

// KnownRecord returns the record registered under name, or nil.
func (registry *Registry) KnownRecord(name string) *Record {
	if registry == nil {
		return nil
	}
	return registry.records[name]
}

// ParentOf returns the parent record of r, or nil when r is a root or its
// parent is unknown.
func (registry *Registry) ParentOf(r *Record) *Record {
	if r == nil || r.Parent == "" {
		return nil
	}
	if parent := registry.KnownRecord(qualify(r.Namespace, r.Parent)); parent != nil {
		return parent
	}
	return registry.KnownRecord(r.Parent)
}

// IsKnownType reports whether name resolves to any known type.
func (registry *Registry) IsKnownType(name string) bool {
	return registry.KnownType(name) != nil
}
