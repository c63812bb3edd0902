// The package used for reading and describing GObject-Introspection metadata.
package metadata

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

type girRepository struct {
	XMLName   xml.Name       `xml:"repository"`
	Includes  []girInclude   `xml:"http://www.gtk.org/introspection/core/1.0 include"`
	CIncludes []girInclude   `xml:"http://www.gtk.org/introspection/c/1.0 include"`
	Packages  []girInclude   `xml:"http://www.gtk.org/introspection/core/1.0 package"`
	Namespace girNamespaceEl `xml:"namespace"`
}

type girInclude struct {
	Name    string `xml:"name,attr"`
	Version string `xml:"version,attr"`
}

type girNamespaceEl struct {
	Name           string           `xml:"name,attr"`
	Version        string           `xml:"version,attr"`
	SharedLibrary  string           `xml:"shared-library,attr"`
	IdentifierPref string           `xml:"http://www.gtk.org/introspection/c/1.0 identifier-prefixes,attr"`
	Aliases        []girAlias       `xml:"alias"`
	Classes        []girRecord      `xml:"class"`
	Interfaces     []girRecord      `xml:"interface"`
	Records        []girRecord      `xml:"record"`
	Unions         []girRecord      `xml:"union"`
	Enumerations   []girEnumeration `xml:"enumeration"`
	Bitfields      []girEnumeration `xml:"bitfield"`
	Functions      []girCallable    `xml:"function"`
	Callbacks      []girCallable    `xml:"callback"`
	Constants      []girConstant    `xml:"constant"`
}

type girThing struct {
	Name              string  `xml:"name,attr"`
	Doc               string  `xml:"doc"`
	DocDeprecated     *string `xml:"doc-deprecated"`
	Deprecated        string  `xml:"deprecated,attr"`
	Version           string  `xml:"version,attr"`
	DeprecatedVersion string  `xml:"deprecated-version,attr"`
}

type girType struct {
	Name  string `xml:"name,attr"`
	CType string `xml:"http://www.gtk.org/introspection/c/1.0 type,attr"`
}

type girArray struct {
	CType string   `xml:"http://www.gtk.org/introspection/c/1.0 type,attr"`
	Type  *girType `xml:"type"`
}

type girParameter struct {
	girThing
	Direction string    `xml:"direction,attr"`
	Nullable  string    `xml:"nullable,attr"`
	AllowNone string    `xml:"allow-none,attr"`
	Type      *girType  `xml:"type"`
	Array     *girArray `xml:"array"`
	Varargs   *struct{} `xml:"varargs"`
}

type girCallable struct {
	girThing
	CIdentifier string         `xml:"http://www.gtk.org/introspection/c/1.0 identifier,attr"`
	CType       string         `xml:"http://www.gtk.org/introspection/c/1.0 type,attr"`
	Throws      string         `xml:"throws,attr"`
	Returns     *girParameter  `xml:"return-value"`
	Instance    *girParameter  `xml:"parameters>instance-parameter"`
	Parameters  []girParameter `xml:"parameters>parameter"`
}

type girProperty struct {
	girThing
	Writable string   `xml:"writable,attr"`
	Type     *girType `xml:"type"`
}

type girRecord struct {
	girThing
	CType          string        `xml:"http://www.gtk.org/introspection/c/1.0 type,attr"`
	Parent         string        `xml:"parent,attr"`
	GTypeStructFor string        `xml:"http://www.gtk.org/introspection/glib/1.0 is-gtype-struct-for,attr"`
	RefFunc        string        `xml:"http://www.gtk.org/introspection/glib/1.0 ref-func,attr"`
	UnrefFunc      string        `xml:"http://www.gtk.org/introspection/glib/1.0 unref-func,attr"`
	Implements     []girInclude  `xml:"implements"`
	Constructors   []girCallable `xml:"constructor"`
	Methods        []girCallable `xml:"method"`
	Functions      []girCallable `xml:"function"`
	Properties     []girProperty `xml:"property"`
	Signals        []girCallable `xml:"http://www.gtk.org/introspection/glib/1.0 signal"`
}

type girMember struct {
	girThing
	Value       string `xml:"value,attr"`
	CIdentifier string `xml:"http://www.gtk.org/introspection/c/1.0 identifier,attr"`
}

type girEnumeration struct {
	girThing
	CType   string      `xml:"http://www.gtk.org/introspection/c/1.0 type,attr"`
	Members []girMember `xml:"member"`
}

type girConstant struct {
	girThing
	Value string   `xml:"value,attr"`
	CType string   `xml:"http://www.gtk.org/introspection/c/1.0 type,attr"`
	Type  *girType `xml:"type"`
}

type girAlias struct {
	girThing
	CType string   `xml:"http://www.gtk.org/introspection/c/1.0 type,attr"`
	Type  *girType `xml:"type"`
}

// ParseRepository decodes one GIR document.
func ParseRepository(r io.Reader) (*Repository, error) {
	var document girRepository
	if err := xml.NewDecoder(r).Decode(&document); err != nil {
		return nil, fmt.Errorf("could not decode GIR document: %w", err)
	}
	if document.Namespace.Name == "" {
		return nil, fmt.Errorf("GIR document has no namespace")
	}

	return document.repository(), nil
}

// LoadRepository reads the GIR file under the given path.
func LoadRepository(path string) (*Repository, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	repository, err := ParseRepository(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return repository, nil
}

func (document *girRepository) repository() *Repository {
	ns := document.Namespace
	repository := &Repository{
		Namespace: ns.Name,
		Version:   ns.Version,
		CPrefix:   ns.IdentifierPref,
	}
	if ns.SharedLibrary != "" {
		repository.SharedLibraries = strings.Split(ns.SharedLibrary, ",")
	}
	for _, include := range document.CIncludes {
		repository.CIncludes = append(repository.CIncludes, include.Name)
	}
	for _, pkg := range document.Packages {
		repository.Packages = append(repository.Packages, pkg.Name)
	}
	for _, include := range document.Includes {
		repository.Includes = append(repository.Includes, Include{Name: include.Name, Version: include.Version})
	}

	for _, group := range []struct {
		records []girRecord
		kind    RecordKind
	}{
		{ns.Classes, KindClass},
		{ns.Interfaces, KindInterface},
		{ns.Records, KindRecord},
		{ns.Unions, KindRecord},
	} {
		for _, element := range group.records {
			if element.GTypeStructFor != "" {
				continue
			}
			repository.Records = append(repository.Records, element.record(ns.Name, group.kind))
		}
	}

	for _, element := range ns.Enumerations {
		repository.Enumerations = append(repository.Enumerations, element.enumeration(false))
	}
	for _, element := range ns.Bitfields {
		repository.Enumerations = append(repository.Enumerations, element.enumeration(true))
	}
	for _, element := range ns.Functions {
		repository.Functions = append(repository.Functions, element.method())
	}
	for _, element := range ns.Callbacks {
		method := element.method()
		repository.Callbacks = append(repository.Callbacks, Callback{
			Thing:   method.Thing,
			CType:   element.CType,
			Args:    method.Args,
			Returns: method.Returns,
		})
	}
	for _, element := range ns.Constants {
		constant := Constant{Thing: element.thing(element.CType), Value: element.Value}
		if element.Type != nil {
			constant.Type = element.Type.Name
			constant.CType = element.Type.CType
		}
		repository.Constants = append(repository.Constants, constant)
	}
	for _, element := range ns.Aliases {
		alias := Alias{Thing: element.thing(element.CType), CType: element.CType}
		if element.Type != nil {
			alias.TargetType = element.Type.Name
			alias.TargetCType = element.Type.CType
		}
		repository.Aliases = append(repository.Aliases, alias)
	}

	return repository
}

func (element *girThing) thing(cName string) Thing {
	thing := Thing{
		Name:              element.Name,
		CName:             cName,
		Doc:               element.Doc,
		Version:           element.Version,
		DeprecatedVersion: element.DeprecatedVersion,
	}
	switch {
	case element.DocDeprecated != nil:
		notice := *element.DocDeprecated
		thing.Deprecated = &notice
	case element.Deprecated == "1" || element.Deprecated == "true":
		notice := ""
		thing.Deprecated = &notice
	}
	return thing
}

func (element *girRecord) record(namespace string, kind RecordKind) Record {
	record := Record{
		Thing:     element.thing(element.CType),
		CType:     element.CType,
		Kind:      kind,
		Namespace: namespace,
		Parent:    element.Parent,
		Ref:       element.RefFunc,
		Unref:     element.UnrefFunc,
	}
	for _, implements := range element.Implements {
		record.Implements = append(record.Implements, implements.Name)
	}
	for _, constructor := range element.Constructors {
		record.Constructors = append(record.Constructors, constructor.method())
	}
	for _, m := range element.Methods {
		method := m.method()
		switch {
		case method.Name == "ref" && record.Ref == "":
			record.Ref = method.CName
		case method.Name == "unref" && record.Unref == "":
			record.Unref = method.CName
		}
		record.Methods = append(record.Methods, method)
	}
	for _, function := range element.Functions {
		record.Functions = append(record.Functions, function.method())
	}
	for _, property := range element.Properties {
		p := Property{Thing: property.thing(""), Writable: property.Writable == "1"}
		if property.Type != nil {
			p.Type = property.Type.Name
			p.CType = property.Type.CType
		}
		record.Properties = append(record.Properties, p)
	}
	for _, signal := range element.Signals {
		method := signal.method()
		record.Signals = append(record.Signals, Signal{Thing: method.Thing, Args: method.Args, Returns: method.Returns})
	}
	return record
}

func (element *girEnumeration) enumeration(bitfield bool) Enumeration {
	enumeration := Enumeration{
		Thing:      element.thing(element.CType),
		CType:      element.CType,
		IsBitfield: bitfield,
	}
	for _, member := range element.Members {
		enumeration.Members = append(enumeration.Members, Member{
			Thing: member.thing(member.CIdentifier),
			Value: member.Value,
		})
	}
	return enumeration
}

func (element *girCallable) method() Method {
	method := Method{
		Thing:  element.thing(element.CIdentifier),
		Throws: element.Throws == "1",
	}
	if element.Returns != nil {
		method.Returns = element.Returns.argument()
	} else {
		method.Returns = Argument{CType: "void", Type: "none"}
	}
	if element.Instance != nil {
		instance := element.Instance.argument()
		instance.Instance = true
		method.Args = append(method.Args, instance)
	}
	for _, parameter := range element.Parameters {
		if parameter.Varargs != nil {
			method.Variadic = true
			continue
		}
		method.Args = append(method.Args, parameter.argument())
	}
	return method
}

func (element *girParameter) argument() Argument {
	argument := Argument{
		Thing:    element.thing(""),
		Nullable: element.Nullable == "1" || element.AllowNone == "1",
	}
	switch element.Direction {
	case "out":
		argument.Direction = DirectionOut
	case "inout":
		argument.Direction = DirectionInOut
	}

	switch {
	case element.Type != nil:
		argument.Type = element.Type.Name
		argument.CType = element.Type.CType
	case element.Array != nil:
		argument.IsArray = true
		argument.CType = element.Array.CType
		elementCType := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(element.Array.CType), "*"))
		if element.Array.Type != nil && element.Array.Type.CType != "" {
			elementCType = element.Array.Type.CType
		}
		// Only arrays of scalars are passed element-wise, others stay raw handles.
		if element.Array.Type != nil && elementCType != "" && !strings.Contains(elementCType, "*") {
			argument.Type = element.Array.Type.Name
			argument.CType = elementCType
		}
	}
	return argument
}

// GirReader looks up entities in a set of loaded repositories, the first one
// being the primary namespace.
type GirReader struct {
	Repositories []*Repository
}

// NewReader loads the GIR file under the given path together with every
// repository it includes, transitively.
func NewReader(girPath string, locator *Locator) (*GirReader, error) {
	primary, err := LoadRepository(girPath)
	if err != nil {
		return nil, err
	}

	reader := &GirReader{Repositories: []*Repository{primary}}
	seen := map[string]bool{primary.Namespace: true}
	pending := append([]Include(nil), primary.Includes...)
	for len(pending) > 0 {
		include := pending[0]
		pending = pending[1:]
		if seen[include.Name] {
			continue
		}
		seen[include.Name] = true

		path, err := locator.Locate(include.Name, include.Version)
		if err != nil {
			log.Warningf("include %s-%s skipped: %s", include.Name, include.Version, err)
			continue
		}
		repository, err := LoadRepository(path)
		if err != nil {
			return nil, err
		}
		log.Debugf("loaded include %s from %s", include.Name, path)
		reader.Repositories = append(reader.Repositories, repository)
		pending = append(pending, repository.Includes...)
	}

	return reader, nil
}

// Primary returns the repository bindings are generated for.
func (reader *GirReader) Primary() *Repository {
	return reader.Repositories[0]
}

// TryGetRecord tries to get a record of the primary repository with given name.
func (reader *GirReader) TryGetRecord(name string) (element *Record, found bool) {
	repository := reader.Primary()
	for i := range repository.Records {
		record := &repository.Records[i]
		if record.Name == name || record.CType == name {
			return record, true
		}
	}
	return nil, false
}

// TryGetFunction tries to get a namespace-level function with given name or C symbol.
func (reader *GirReader) TryGetFunction(name string) (element *Function, found bool) {
	repository := reader.Primary()
	for i := range repository.Functions {
		function := &repository.Functions[i]
		if function.Name == name || function.CName == name {
			return function, true
		}
	}
	return nil, false
}
