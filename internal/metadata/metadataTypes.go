package metadata

import "strings"

// Thing holds the attributes shared by every entity of the model.
type Thing struct {
	Name  string
	CName string
	Doc   string
	// Deprecated is nil unless the entity is deprecated. An empty notice is
	// still a deprecation.
	Deprecated        *string
	Version           string
	DeprecatedVersion string
}

type Direction int

const (
	DirectionIn Direction = iota
	DirectionOut
	DirectionInOut
)

type Argument struct {
	Thing
	CType     string
	Type      string
	Instance  bool
	IsArray   bool
	Direction Direction
	Nullable  bool
}

type Method struct {
	Thing
	Args     []Argument
	Returns  Argument
	Variadic bool
	Throws   bool
}

// Function is a namespace-level or record-level function without an implied instance.
type Function = Method

type Property struct {
	Thing
	Type     string
	CType    string
	Writable bool
}

type Signal struct {
	Thing
	Args    []Argument
	Returns Argument
}

type RecordKind int

const (
	KindRecord RecordKind = iota
	KindClass
	KindInterface
)

func (k RecordKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	default:
		return "record"
	}
}

type Record struct {
	Thing
	CType        string
	Kind         RecordKind
	Namespace    string
	Parent       string
	Implements   []string
	Methods      []Method
	Constructors []Method
	Functions    []Function
	Properties   []Property
	Signals      []Signal
	Ref          string
	Unref        string
}

// QualifiedName returns the record name prefixed with its namespace.
func (r *Record) QualifiedName() string {
	return qualify(r.Namespace, r.Name)
}

type Member struct {
	Thing
	Value string
}

type Enumeration struct {
	Thing
	CType      string
	IsBitfield bool
	Members    []Member
}

type Constant struct {
	Thing
	Type  string
	CType string
	Value string
}

type Alias struct {
	Thing
	CType       string
	TargetType  string
	TargetCType string
}

type Callback struct {
	Thing
	CType   string
	Args    []Argument
	Returns Argument
}

// Repository is one parsed interface description.
type Repository struct {
	Namespace       string
	Version         string
	CPrefix         string
	SharedLibraries []string
	CIncludes       []string
	Packages        []string
	Includes        []Include

	Records      []Record
	Enumerations []Enumeration
	Functions    []Function
	Constants    []Constant
	Aliases      []Alias
	Callbacks    []Callback
}

type Include struct {
	Name    string
	Version string
}

// WithoutNamespace strips a leading "NS." qualifier from a semantic type name.
func WithoutNamespace(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func qualify(namespace, name string) string {
	if namespace == "" || strings.Contains(name, ".") {
		return name
	}
	return namespace + "." + name
}
