package generation

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"gir2go/internal/diagnostic"
	"gir2go/internal/metadata"
)

// creation is a designated constructor or factory, emitted for both wrappers.
type creation struct {
	method  *metadata.Method
	kind    Classification
	name    string
	refName string
	stub    *Stub
}

// member is a function or method of a record under its final Go name.
type member struct {
	method *metadata.Method
	name   string
	stub   *Stub
}

// conversion exposes an implemented interface of a record.
type conversion struct {
	target *recordPlan
	name   string
}

type property struct {
	pair   GetterSetterPair
	getter string
	setter string
}

// recordPlan holds every naming decision for one record. Plans are computed
// sequentially, parents first, and only read while rendering.
type recordPlan struct {
	record        *metadata.Record
	fileName      string
	typeName      string
	interfaceName string
	refName       string
	parent        *recordPlan
	lifecycle     Lifecycle

	creations  []creation
	statics    []member
	methods    []member
	properties []property
	implements []conversion

	// names holds the method names of the value wrapper, inherited ones
	// included.
	names map[string]bool
	diags diagnostic.Diagnostics
}

func (p *recordPlan) owner() string {
	return p.record.Name
}

// instanceCType is the C type of the handle as a method instance.
func (p *recordPlan) instanceCType() string {
	if p.record.CType == "" {
		return ""
	}
	return p.record.CType + "*"
}

type planner struct {
	*emitter
	plans      map[string]*recordPlan
	inProgress map[string]bool
	files      map[string]bool
}

func (e *emitter) planRecords(records []*metadata.Record) []*recordPlan {
	p := &planner{
		emitter:    e,
		plans:      make(map[string]*recordPlan, len(records)),
		inProgress: make(map[string]bool),
		files:      make(map[string]bool),
	}
	for name := range fixedFiles {
		p.files[name] = true
	}

	// Type names first, so that any member can be checked against them.
	for _, r := range records {
		typeName := e.namer.TypeName(r.Name)
		for _, name := range []string{
			typeName, e.namer.RefName(r.Name), e.namer.InterfaceName(r.Name),
			typeName + "PropertyName", typeName + "SignalName",
		} {
			e.packageNames[name] = true
		}
		for _, suffix := range []string{"FromC", "From", "FromRaw", "FromHandle"} {
			e.packageNames[typeName+suffix] = true
			e.packageNames[e.namer.RefName(r.Name)+suffix] = true
		}
	}

	plans := make([]*recordPlan, 0, len(records))
	for _, r := range records {
		plans = append(plans, p.plan(r))
	}
	return plans
}

func (p *planner) plan(r *metadata.Record) *recordPlan {
	key := r.QualifiedName()
	if plan, found := p.plans[key]; found {
		return plan
	}
	p.inProgress[key] = true
	defer delete(p.inProgress, key)

	plan := &recordPlan{
		record:        r,
		typeName:      p.namer.TypeName(r.Name),
		interfaceName: p.namer.InterfaceName(r.Name),
		refName:       p.namer.RefName(r.Name),
		lifecycle:     p.hierarchy.LifecycleOf(r),
		names:         make(map[string]bool),
	}
	plan.fileName = p.fileName(plan.typeName)

	if parent := p.registry.ParentOf(r); parent != nil && p.generated[parent.QualifiedName()] && !p.inProgress[parent.QualifiedName()] {
		plan.parent = p.plan(parent)
		for name := range plan.parent.names {
			plan.names[name] = true
		}
	}
	inherited := make(map[string]bool, len(plan.names))
	for name := range plan.names {
		inherited[name] = true
	}

	// declare claims a method name of the value wrapper, renaming it when an
	// ancestor already uses it.
	declare := func(name string) (string, bool) {
		if inherited[name] {
			name += plan.typeName
		}
		if plan.names[name] {
			return name, false
		}
		plan.names[name] = true
		return name, true
	}

	p.planCreations(plan)
	p.planMethods(plan, declare)

	for _, name := range r.Implements {
		iface := p.registry.KnownRecord(name)
		if iface == nil || !p.generated[iface.QualifiedName()] || p.inProgress[iface.QualifiedName()] {
			continue
		}
		target := p.plan(iface)
		if name, ok := declare("As" + target.typeName); ok {
			plan.implements = append(plan.implements, conversion{target: target, name: name})
		}
	}

	p.plans[key] = plan
	return plan
}

// fileName is the lower-cased type name, kept free of underscores so that no
// name is read as a build constraint.
func (p *planner) fileName(typeName string) string {
	base := strings.ToLower(strings.ReplaceAll(typeName, "_", ""))
	name := base + ".go"
	for i := 2; p.files[name]; i++ {
		name = fmt.Sprintf("%s%d.go", base, i)
	}
	p.files[name] = true
	return name
}

// claimPackageName reserves a package-level name or reports a duplicate.
func (p *planner) claimPackageName(plan *recordPlan, m *metadata.Method, name string) *Stub {
	if p.packageNames[name] {
		stub := &Stub{diagnostic.CodeDuplicateName, fmt.Sprintf("%s is already declared", name)}
		reportStub(&plan.diags, plan.owner(), m, stub)
		return stub
	}
	p.packageNames[name] = true
	return nil
}

func (p *planner) planCreations(plan *recordPlan) {
	r := plan.record
	var designated, factories []creation

	candidates := make([]*metadata.Method, 0, len(r.Constructors)+len(r.Functions))
	for i := range r.Constructors {
		candidates = append(candidates, &r.Constructors[i])
	}
	constructors := len(candidates)
	for i := range r.Functions {
		candidates = append(candidates, &r.Functions[i])
	}

	for i, m := range candidates {
		if stub := p.classifier.Unsupported(m); stub != nil {
			reportStub(&plan.diags, plan.owner(), m, stub)
			if i < constructors {
				factories = append(factories, creation{method: m, kind: Unsupported, stub: stub})
			} else {
				plan.statics = append(plan.statics, member{method: m, stub: stub})
			}
			continue
		}

		switch kind := p.classifier.Classify(m, r); kind {
		case Designated, Factory:
			c := creation{
				method:  m,
				kind:    kind,
				name:    p.classifier.CreationName(m, r, false),
				refName: p.classifier.CreationName(m, r, true),
			}
			if c.stub = p.claimPackageName(plan, m, c.name); c.stub == nil {
				c.stub = p.claimPackageName(plan, m, c.refName)
			}
			if kind == Designated {
				designated = append(designated, c)
			} else {
				factories = append(factories, c)
			}
		default:
			static := member{method: m, name: plan.typeName + p.namer.MethodName(m.RawName())}
			static.stub = p.claimPackageName(plan, m, static.name)
			plan.statics = append(plan.statics, static)
		}
	}
	plan.creations = append(designated, factories...)
}

// adopted returns the free functions taking an instance of r first, as
// methods of r.
func (p *planner) adopted(r *metadata.Record) []*metadata.Method {
	var methods []*metadata.Method
	for _, f := range p.functions {
		if len(f.Args) == 0 || !f.Args[0].IsInstanceOf(r) || !f.Args[0].IsAnyKindOfPointer() {
			continue
		}
		method := *f
		method.Args = append([]metadata.Argument(nil), f.Args...)
		method.Args[0].Instance = true
		methods = append(methods, &method)
	}
	return methods
}

func (p *planner) planMethods(plan *recordPlan, declare func(string) (string, bool)) {
	r := plan.record
	candidates := make([]*metadata.Method, 0, len(r.Methods))
	for i := range r.Methods {
		candidates = append(candidates, &r.Methods[i])
	}
	candidates = append(candidates, p.adopted(r)...)

	stubs := make(map[*metadata.Method]*Stub)
	var supported []*metadata.Method
	for _, m := range candidates {
		if stub := p.classifier.Unsupported(m); stub != nil {
			reportStub(&plan.diags, plan.owner(), m, stub)
			stubs[m] = stub
			continue
		}
		supported = append(supported, m)
	}

	pairs := GetterSetterPairs(supported)
	taken := claimed(pairs)
	accessorNames := make(map[string]bool, 2*len(pairs))
	for _, pair := range pairs {
		accessorNames[unreserved(pair.GetterName())] = true
		if pair.Setter != nil {
			accessorNames[unreserved(pair.SetterName())] = true
		}
	}

	for _, m := range candidates {
		if stub, found := stubs[m]; found {
			plan.methods = append(plan.methods, member{method: m, stub: stub})
			continue
		}
		if taken[m] {
			continue
		}
		if m.IsSetter() {
			plan.diags.AddInfo(diagnostic.CodeDroppedSetter, "setter without a matching getter, kept as a plain method", plan.owner(), m.CallName())
		}
		name := p.namer.MethodName(m.RawName())
		if accessorNames[name] {
			message := fmt.Sprintf("%s is already declared by a property", name)
			plan.diags.AddWarning(diagnostic.CodeDuplicateName, message, plan.owner(), m.CallName())
			log.Warningf("%s: skipping %s: %s", plan.owner(), m.CallName(), message)
			continue
		}
		name, ok := declare(name)
		if !ok {
			stub := &Stub{diagnostic.CodeDuplicateName, fmt.Sprintf("%s is already declared", name)}
			reportStub(&plan.diags, plan.owner(), m, stub)
			plan.methods = append(plan.methods, member{method: m, stub: stub})
			continue
		}
		plan.methods = append(plan.methods, member{method: m, name: name})
	}

	for _, pair := range pairs {
		getter, ok := declare(unreserved(pair.GetterName()))
		if !ok {
			plan.diags.AddWarning(diagnostic.CodeDuplicateName, getter+" is already declared", plan.owner(), pair.Getter.CallName())
			continue
		}
		prop := property{pair: pair, getter: getter}
		if pair.Setter != nil {
			if setter, ok := declare(unreserved(pair.SetterName())); ok {
				prop.setter = setter
			} else {
				plan.diags.AddWarning(diagnostic.CodeDuplicateName, setter+" is already declared", plan.owner(), pair.Setter.CallName())
			}
		}
		plan.properties = append(plan.properties, prop)
	}
}

// recordRenderer builds the file of one record.
type recordRenderer struct {
	*emitter
	plan   *recordPlan
	mapper *TypeMapper
	file   *jen.File
	// callables are resolved once per method and shared by the interface
	// and the implementation.
	callables map[*metadata.Method]*callable
}

func (e *emitter) renderRecord(plan *recordPlan, diags *diagnostic.Diagnostics) *jen.File {
	rr := &recordRenderer{
		emitter:   e,
		plan:      plan,
		mapper:    e.mapper.ForOwner(plan.owner(), diags),
		file:      e.newFile(),
		callables: make(map[*metadata.Method]*callable),
	}
	rr.interfaceDecl()
	rr.refDecl()
	rr.ownerDecl()
	rr.conversions()
	rr.creations()
	rr.statics()
	rr.methods()
	rr.properties()
	rr.signals()
	return rr.file
}

func (rr *recordRenderer) method(m *metadata.Method) *callable {
	if c, found := rr.callables[m]; found {
		return c
	}
	c := newCallable(rr.mapper, m, jen.Id("r").Dot("Ptr").Call(), rr.plan.instanceCType())
	rr.callables[m] = c
	return c
}

// refMethods lists the value wrapper methods in declaration order.
func (rr *recordRenderer) refMethods() []member {
	var members []member
	for _, m := range rr.plan.methods {
		if m.stub == nil {
			members = append(members, m)
		}
	}
	for _, prop := range rr.plan.properties {
		members = append(members, member{method: prop.pair.Getter, name: prop.getter})
		if prop.setter != "" {
			members = append(members, member{method: prop.pair.Setter, name: prop.setter})
		}
	}
	return members
}

func (rr *recordRenderer) interfaceDecl() {
	p := rr.plan
	rr.file.Commentf("%s is implemented by %s, %s and the wrappers of every type derived from %s.", p.interfaceName, p.refName, p.typeName, p.typeName)
	rr.file.Type().Id(p.interfaceName).InterfaceFunc(func(g *jen.Group) {
		if p.parent != nil {
			g.Id(p.parent.interfaceName)
		} else {
			g.Id("Ptr").Params().Qual("unsafe", "Pointer")
		}
		for _, m := range rr.refMethods() {
			c := rr.method(m.method)
			g.Add(withResults(jen.Id(m.name).Params(c.Params()...), c.Results(nil)))
		}
	})
	rr.file.Line()
}

func (rr *recordRenderer) refDecl() {
	p := rr.plan
	r := p.record
	cname := r.CType
	if cname == "" {
		cname = r.Name
	}

	rr.file.Commentf("%s is a non-owning reference to a %s.", p.refName, cname)
	rr.file.Type().Id(p.refName).StructFunc(func(g *jen.Group) {
		if p.parent != nil {
			g.Id(p.parent.refName)
		} else {
			g.Id("ptr").Qual("unsafe", "Pointer")
		}
	})
	rr.file.Line()

	if p.parent == nil {
		rr.file.Func().Params(jen.Id("r").Id(p.refName)).Id("Ptr").Params().Qual("unsafe", "Pointer").Block(
			jen.Return(jen.Id("r").Dot("ptr")),
		)
		rr.file.Line()
	}
	if r.CType != "" {
		rr.file.Func().Params(jen.Id("r").Id(p.refName)).Id("Native").Params().Add(cType(p.instanceCType())).Block(
			jen.Return(castPointer(p.instanceCType(), jen.Id("r").Dot("Ptr").Call())),
		)
		rr.file.Line()

		rr.file.Func().Id(p.refName + "FromC").Params(jen.Id("p").Add(cType(p.instanceCType()))).Id(p.refName).Block(
			jen.Return(jen.Id(p.refName + "FromRaw").Call(jen.Qual("unsafe", "Pointer").Call(jen.Id("p")))),
		)
		rr.file.Line()
	}

	rr.file.Commentf("%sFrom returns a reference to the same %s as other.", p.refName, cname)
	rr.file.Func().Id(p.refName + "From").Params(jen.Id("other").Id(p.interfaceName)).Id(p.refName).Block(
		jen.Return(jen.Id(p.refName + "FromRaw").Call(jen.Id("handleOf").Call(jen.Id("other")))),
	)
	rr.file.Line()

	rr.file.Comment(fmt.Sprintf("// %sFromRaw wraps p without checking its type.\n//\n// It is unsafe: p must be nil or point to a %s.", p.refName, cname))
	var value jen.Code
	if p.parent != nil {
		value = jen.Id(p.refName).Values(jen.Id(p.parent.refName + "FromRaw").Call(jen.Id("p")))
	} else {
		value = jen.Id(p.refName).Values(jen.Dict{jen.Id("ptr"): jen.Id("p")})
	}
	rr.file.Func().Id(p.refName + "FromRaw").Params(jen.Id("p").Qual("unsafe", "Pointer")).Id(p.refName).Block(
		jen.Return(value),
	)
	rr.file.Line()

	rr.file.Commentf("%sFromHandle wraps an opaque handle, such as one passed through C as an integer.", p.refName)
	rr.file.Func().Id(p.refName + "FromHandle").Params(jen.Id("h").Uintptr()).Id(p.refName).Block(
		jen.Return(jen.Id(p.refName + "FromRaw").Call(jen.Qual("unsafe", "Pointer").Call(jen.Id("h")))),
	)
	rr.file.Line()
}

func (rr *recordRenderer) ownerDecl() {
	p := rr.plan
	r := p.record
	owner := jen.Op("*").Id(p.typeName)

	if doc := Comment(&r.Thing, ""); doc != "" {
		rr.file.Comment(doc)
	} else {
		rr.file.Commentf("%s owns a reference to its handle and releases it once garbage collected.", p.typeName)
	}
	rr.file.Type().Id(p.typeName).Struct(jen.Id(p.refName))
	rr.file.Line()

	rr.file.Commentf("%sFromRaw takes over the reference held by p, or returns nil for a nil p.", p.typeName)
	rr.file.Func().Id(p.typeName+"FromRaw").Params(jen.Id("p").Qual("unsafe", "Pointer")).Add(owner.Clone()).Block(
		jen.If(jen.Id("p").Op("==").Nil()).Block(jen.Return(jen.Nil())),
		jen.Id("o").Op(":=").Op("&").Id(p.typeName).Values(jen.Id(p.refName+"FromRaw").Call(jen.Id("p"))),
		jen.Qual("runtime", "SetFinalizer").Call(jen.Id("o"), jen.Parens(owner.Clone()).Dot("release")),
		jen.Return(jen.Id("o")),
	)
	rr.file.Line()

	if r.CType != "" {
		rr.file.Func().Id(p.typeName + "FromC").Params(jen.Id("p").Add(cType(p.instanceCType()))).Add(owner.Clone()).Block(
			jen.Return(jen.Id(p.typeName + "FromRaw").Call(jen.Qual("unsafe", "Pointer").Call(jen.Id("p")))),
		)
		rr.file.Line()
	}

	rr.file.Commentf("%sFrom takes a new reference to the handle of other.", p.typeName)
	rr.file.Func().Id(p.typeName+"From").Params(jen.Id("other").Id(p.interfaceName)).Add(owner.Clone()).Block(
		jen.Id("p").Op(":=").Id("handleOf").Call(jen.Id("other")),
		jen.If(jen.Id("p").Op("==").Nil()).Block(jen.Return(jen.Nil())),
		p.lifecycle.Retain(jen.Id("p")),
		jen.Return(jen.Id(p.typeName+"FromRaw").Call(jen.Id("p"))),
	)
	rr.file.Line()

	rr.file.Func().Id(p.typeName + "FromHandle").Params(jen.Id("h").Uintptr()).Add(owner.Clone()).Block(
		jen.Return(jen.Id(p.typeName + "FromRaw").Call(jen.Qual("unsafe", "Pointer").Call(jen.Id("h")))),
	)
	rr.file.Line()

	rr.file.Commentf("Ptr returns the handle of o, or nil for a nil %s.", p.typeName)
	rr.file.Func().Params(jen.Id("o").Add(owner.Clone())).Id("Ptr").Params().Qual("unsafe", "Pointer").Block(
		jen.If(jen.Id("o").Op("==").Nil()).Block(jen.Return(jen.Nil())),
		jen.Return(jen.Id("o").Dot(p.refName).Dot("Ptr").Call()),
	)
	rr.file.Line()

	rr.file.Func().Params(jen.Id("o").Add(owner.Clone())).Id("release").Params().Block(
		p.lifecycle.Release(jen.Id("o").Dot("Ptr").Call()),
	)
	rr.file.Line()

	rr.file.Var().Defs(
		jen.Id("_").Id(p.interfaceName).Op("=").Id(p.refName).Values(),
		jen.Id("_").Id(p.interfaceName).Op("=").Parens(owner.Clone()).Call(jen.Nil()),
	)
	rr.file.Line()
}

func (rr *recordRenderer) conversions() {
	p := rr.plan
	for _, c := range p.implements {
		rr.file.Commentf("%s returns the %s interface of r.", c.name, c.target.typeName)
		rr.file.Func().Params(jen.Id("r").Id(p.refName)).Id(c.name).Params().Id(c.target.refName).Block(
			jen.Return(jen.Id(c.target.refName + "FromRaw").Call(jen.Id("r").Dot("Ptr").Call())),
		)
		rr.file.Line()
	}
}

func (rr *recordRenderer) creations() {
	p := rr.plan
	for _, c := range p.creations {
		if c.stub != nil {
			rr.file.Comment(stubComment(c.method, c.stub))
			rr.file.Line()
			continue
		}

		call := newCallable(rr.mapper, c.method, nil, "")
		refShape := &returnShape{
			result: jen.Id(p.refName),
			zero:   jen.Id(p.refName).Values(),
			wrap: func(rv jen.Code) jen.Code {
				return jen.Id(p.refName + "FromRaw").Call(jen.Qual("unsafe", "Pointer").Call(rv))
			},
		}
		ownerShape := &returnShape{
			result: jen.Op("*").Id(p.typeName),
			zero:   jen.Nil(),
			wrap: func(rv jen.Code) jen.Code {
				return jen.Id(p.typeName + "FromRaw").Call(jen.Qual("unsafe", "Pointer").Call(rv))
			},
		}

		for _, variant := range []struct {
			name  string
			shape *returnShape
		}{{c.refName, refShape}, {c.name, ownerShape}} {
			rr.file.Add(docComment(&c.method.Thing))
			signature := jen.Func().Id(variant.name).Params(call.Params()...)
			rr.file.Add(withResults(signature, call.Results(variant.shape)).Block(call.Body(variant.shape)...))
			rr.file.Line()
		}
	}
}

func (rr *recordRenderer) statics() {
	for _, s := range rr.plan.statics {
		if s.stub != nil {
			rr.file.Comment(stubComment(s.method, s.stub))
			rr.file.Line()
			continue
		}
		c := newCallable(rr.mapper, s.method, nil, "")
		rr.file.Add(docComment(&s.method.Thing))
		signature := jen.Func().Id(s.name).Params(c.Params()...)
		rr.file.Add(withResults(signature, c.Results(nil)).Block(c.Body(nil)...))
		rr.file.Line()
	}
}

func (rr *recordRenderer) emitMethod(name string, m *metadata.Method) {
	c := rr.method(m)
	rr.file.Add(docComment(&m.Thing))
	signature := jen.Func().Params(jen.Id("r").Id(rr.plan.refName)).Id(name).Params(c.Params()...)
	rr.file.Add(withResults(signature, c.Results(nil)).Block(c.Body(nil)...))
	rr.file.Line()
}

func (rr *recordRenderer) methods() {
	for _, m := range rr.plan.methods {
		if m.stub != nil {
			rr.file.Comment(stubComment(m.method, m.stub))
			rr.file.Line()
			continue
		}
		rr.emitMethod(m.name, m.method)
	}
}

func (rr *recordRenderer) properties() {
	p := rr.plan
	for _, prop := range p.properties {
		rr.emitMethod(prop.getter, prop.pair.Getter)
		if prop.setter != "" {
			rr.emitMethod(prop.setter, prop.pair.Setter)
		}
	}

	if len(p.record.Properties) == 0 {
		return
	}
	typeName := p.typeName + "PropertyName"
	rr.file.Commentf("%s names the properties of %s.", typeName, p.typeName)
	rr.file.Type().Id(typeName).String()
	rr.file.Line()

	seen := make(map[string]bool)
	rr.file.Const().DefsFunc(func(g *jen.Group) {
		for i := range p.record.Properties {
			prop := &p.record.Properties[i]
			name := rr.namer.MemberName(p.typeName+"Property", prop.Name)
			if seen[name] || !IsValidIdentifier(name) {
				continue
			}
			seen[name] = true
			g.Add(docComment(&prop.Thing))
			g.Id(name).Id(typeName).Op("=").Lit(prop.Name)
		}
	})
	rr.file.Line()
}

func (rr *recordRenderer) signals() {
	p := rr.plan
	r := p.record
	if len(r.Signals) == 0 && len(r.Properties) == 0 {
		return
	}
	typeName := p.typeName + "SignalName"
	rr.file.Commentf("%s names the signals a %s emits.", typeName, p.typeName)
	rr.file.Type().Id(typeName).String()
	rr.file.Line()

	seen := make(map[string]bool)
	rr.file.Const().DefsFunc(func(g *jen.Group) {
		for i := range r.Signals {
			signal := &r.Signals[i]
			name := rr.namer.MemberName(p.typeName+"Signal", signal.Name)
			if seen[name] || !IsValidIdentifier(name) {
				continue
			}
			seen[name] = true
			g.Add(docComment(&signal.Thing))
			g.Id(name).Id(typeName).Op("=").Lit(signal.Name)
		}
		for i := range r.Properties {
			prop := &r.Properties[i]
			name := rr.namer.MemberName(p.typeName+"SignalNotify", prop.Name)
			if seen[name] || !IsValidIdentifier(name) {
				continue
			}
			seen[name] = true
			g.Commentf("%s is emitted when the %s property changes.", name, prop.Name)
			g.Id(name).Id(typeName).Op("=").Lit("notify::" + prop.Name)
		}
	})
	rr.file.Line()
}
