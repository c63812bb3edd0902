package generation

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"gir2go/internal/metadata"
)

type lifecycleCall struct {
	function string
	// instanceCType is the C type the native function takes its instance as.
	instanceCType string
}

// Lifecycle is how an owning wrapper acquires and releases its handle. A
// missing call means the native type has no reference counting.
type Lifecycle struct {
	CType string
	ref   *lifecycleCall
	unref *lifecycleCall
}

// LifecycleOf looks up the ref and unref functions of r, falling back to the
// nearest ancestor that declares them.
func (h *Hierarchy) LifecycleOf(r *metadata.Record) Lifecycle {
	lifecycle := Lifecycle{CType: r.CType}
	for _, candidate := range append([]*metadata.Record{r}, h.Ancestors(r)...) {
		if lifecycle.ref == nil && candidate.Ref != "" {
			lifecycle.ref = lookupCall(candidate, candidate.Ref)
		}
		if lifecycle.unref == nil && candidate.Unref != "" {
			lifecycle.unref = lookupCall(candidate, candidate.Unref)
		}
	}
	return lifecycle
}

func lookupCall(r *metadata.Record, function string) *lifecycleCall {
	call := &lifecycleCall{function: function, instanceCType: r.CType + "*"}
	for i := range r.Methods {
		m := &r.Methods[i]
		if m.CallName() != function {
			continue
		}
		for _, arg := range m.Args {
			if arg.Instance && arg.CType != "" {
				call.instanceCType = arg.CType
			}
		}
		break
	}
	return call
}

func (l Lifecycle) HasRef() bool {
	return l.ref != nil
}

func (l Lifecycle) HasUnref() bool {
	return l.unref != nil
}

// Retain emits the call taking a new reference to the handle in value.
func (l Lifecycle) Retain(value jen.Code) jen.Code {
	return l.emit(l.ref, "ref", value)
}

// Release emits the call dropping the reference held in value.
func (l Lifecycle) Release(value jen.Code) jen.Code {
	return l.emit(l.unref, "unref", value)
}

func (l Lifecycle) emit(call *lifecycleCall, operation string, value jen.Code) jen.Code {
	if call == nil {
		return jen.Comment(fmt.Sprintf("no reference counting for %s, cannot %s", l.CType, operation))
	}
	return jen.Qual("C", call.function).Call(castPointer(call.instanceCType, value))
}
