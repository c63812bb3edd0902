package generation

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"gir2go/internal/diagnostic"
	"gir2go/internal/metadata"
)

type parameter struct {
	arg    *metadata.Argument
	name   string
	goType *jen.Statement
}

// returnShape replaces the mapped result of a call, e.g. for constructors
// returning a wrapper.
type returnShape struct {
	result jen.Code
	zero   jen.Code
	wrap   func(rv jen.Code) jen.Code
}

// callable is one native call with its Go parameters, results and body. Types
// are resolved once, so unresolved ones are reported once per call.
type callable struct {
	mapper *TypeMapper
	method *metadata.Method
	// instance is the expression passed as instance argument, nil when the
	// instance is an ordinary parameter.
	instance      jen.Code
	instanceCType string
	params        []parameter
	result        *jen.Statement
}

func newCallable(mapper *TypeMapper, m *metadata.Method, instance jen.Code, instanceCType string) *callable {
	c := &callable{
		mapper:        mapper,
		method:        m,
		instance:      instance,
		instanceCType: instanceCType,
	}
	for i := range m.Args {
		arg := &m.Args[i]
		if arg.Instance && instance != nil {
			if arg.CType != "" {
				c.instanceCType = arg.CType
			}
			continue
		}
		goType := mapper.GoType(arg, RoleParameter)
		c.params = append(c.params, parameter{
			arg:    arg,
			name:   mapper.namer.ArgumentName(arg, fmt.Sprintf("%#v", goType)),
			goType: goType,
		})
	}
	if !m.Returns.IsVoid() {
		c.result = mapper.GoType(&m.Returns, RoleReturn)
	}
	return c
}

func (c *callable) Params() []jen.Code {
	params := make([]jen.Code, 0, len(c.params))
	for _, p := range c.params {
		params = append(params, jen.Id(p.name).Add(p.goType))
	}
	return params
}

func (c *callable) Results(shape *returnShape) []jen.Code {
	var results []jen.Code
	switch {
	case shape != nil:
		results = append(results, shape.result)
	case c.result != nil:
		results = append(results, c.result)
	}
	if c.method.Throws {
		results = append(results, jen.Error())
	}
	return results
}

func (c *callable) Body(shape *returnShape) []jen.Code {
	var body []jen.Code
	if c.method.Throws {
		body = append(body, jen.Var().Id("cerr").Op("*").Qual("C", "GError"))
	}

	args := make([]jen.Code, 0, len(c.method.Args)+1)
	params := c.params
	for i := range c.method.Args {
		if c.method.Args[i].Instance && c.instance != nil {
			if c.instanceCType == "" {
				args = append(args, c.instance)
			} else {
				args = append(args, castPointer(c.instanceCType, c.instance))
			}
			continue
		}
		p := params[0]
		params = params[1:]
		cast := c.mapper.ToNative(p.arg, p.name)
		body = append(body, cast.Prelude...)
		args = append(args, cast.Expr)
	}
	if c.method.Throws {
		args = append(args, jen.Op("&").Id("cerr"))
	}
	call := jen.Qual("C", c.method.CallName()).Call(args...)

	if c.result == nil && shape == nil {
		body = append(body, call)
		if c.method.Throws {
			body = append(body,
				jen.If(jen.Id("cerr").Op("!=").Nil()).Block(jen.Return(jen.Id("newGError").Call(jen.Id("cerr")))),
				jen.Return(jen.Nil()),
			)
		}
		return body
	}

	body = append(body, jen.Id("rv").Op(":=").Add(call))
	var zero, converted jen.Code
	if shape != nil {
		zero = shape.zero
		converted = shape.wrap(jen.Id("rv"))
	} else {
		zero = c.mapper.ZeroValue(&c.method.Returns)
		converted = c.mapper.ToHost(&c.method.Returns, jen.Id("rv")).Expr
	}
	if c.method.Throws {
		body = append(body,
			jen.If(jen.Id("cerr").Op("!=").Nil()).Block(jen.Return(zero, jen.Id("newGError").Call(jen.Id("cerr")))),
			jen.Return(converted, jen.Nil()),
		)
		return body
	}
	return append(body, jen.Return(converted))
}

// withResults appends the result list of a signature.
func withResults(s *jen.Statement, results []jen.Code) *jen.Statement {
	switch len(results) {
	case 0:
		return s
	case 1:
		return s.Add(results[0])
	default:
		return s.Parens(jen.List(results...))
	}
}

// stubComment is the text emitted in place of an unsupported member.
func stubComment(m *metadata.Method, stub *Stub) string {
	return fmt.Sprintf("%s is not available: %s.", m.CallName(), stub.Reason)
}

// reportStub records an unsupported member.
func reportStub(diags *diagnostic.Diagnostics, owner string, m *metadata.Method, stub *Stub) {
	diags.AddWarning(stub.Code, stub.Reason, owner, m.CallName())
	log.Warningf("%s: skipping %s: %s", owner, m.CallName(), stub.Reason)
}

// functionPlan is one namespace-level function.
type functionPlan struct {
	function *metadata.Function
	name     string
	stub     *Stub
}

func (e *emitter) planFunctions(functions []*metadata.Function, diags *diagnostic.Diagnostics) []functionPlan {
	plans := make([]functionPlan, 0, len(functions))
	for _, f := range functions {
		plan := functionPlan{function: f}
		if stub := e.classifier.Unsupported(f); stub != nil {
			plan.stub = stub
			reportStub(diags, "functions", f, stub)
			plans = append(plans, plan)
			continue
		}

		name := e.namer.MethodName(f.RawName())
		if e.registry.IsKnownType(name) || e.packageNames[name] {
			name += "_"
		}
		if e.packageNames[name] {
			plan.stub = &Stub{diagnostic.CodeDuplicateName, fmt.Sprintf("%s is already declared", name)}
			reportStub(diags, "functions", f, plan.stub)
		} else {
			e.packageNames[name] = true
			plan.name = name
		}
		plans = append(plans, plan)
	}
	return plans
}

func (e *emitter) renderFunctions(plans []functionPlan, diags *diagnostic.Diagnostics) *jen.File {
	f := e.newFile()
	mapper := e.mapper.ForOwner("functions", diags)
	for _, plan := range plans {
		if plan.stub != nil {
			f.Comment(stubComment(plan.function, plan.stub))
			f.Line()
			continue
		}

		c := newCallable(mapper, plan.function, nil, "")
		f.Add(docComment(&plan.function.Thing))
		signature := jen.Func().Id(plan.name).Params(c.Params()...)
		f.Add(withResults(signature, c.Results(nil)).Block(c.Body(nil)...))
		f.Line()
	}
	return f
}
