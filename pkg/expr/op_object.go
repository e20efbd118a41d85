package expr

import (
	"strings"

	"github.com/flywave/flywave-style/pkg/types"
)

// registerObject registers membership, property access and the environment
// snapshot operator.
func (r *Registry) registerObject() {
	r.Register("in", OpDescriptor{Call: opIn})
	r.Register("get", OpDescriptor{Call: opGet})
	r.Register("has", OpDescriptor{Call: opHas})
	r.Register("dynamic-properties", OpDescriptor{Call: opDynamicProperties, Dynamic: true})
}

// opIn is a substring test when both operands are strings, a membership test
// when the second operand is a list, and false otherwise.
func opIn(ctx *Context, call *Call) (types.Value, error) {
	if err := requireArgs(call, 2, 2); err != nil {
		return types.Null, err
	}
	args, err := ctx.evaluateArgs(call)
	if err != nil {
		return types.Null, err
	}
	needle, haystack := args[0], args[1]

	if needle.Type() == types.TypeString && haystack.Type() == types.TypeString {
		return types.NewBool(strings.Contains(haystack.AsString(), needle.AsString())), nil
	}
	if haystack.Type() == types.TypeList {
		for _, item := range haystack.AsList() {
			if needle.Equal(item) {
				return types.NewBool(true), nil
			}
		}
		return types.NewBool(false), nil
	}
	return types.NewBool(false), nil
}

// lookupProperty resolves a property for get/has. With one argument the
// name reads the context environment; with a map operand it reads the map.
// Absent properties and non-map operands resolve to nothing, never an error.
func lookupProperty(ctx *Context, call *Call) (types.Value, bool, error) {
	if err := requireArgs(call, 1, 2); err != nil {
		return types.Null, false, err
	}
	nameVal, err := ctx.Evaluate(call.Args[0])
	if err != nil {
		return types.Null, false, err
	}
	if nameVal.Type() != types.TypeString {
		return types.Null, false, nil
	}
	name := nameVal.AsString()

	if len(call.Args) == 1 {
		v, ok := ctx.Env().Lookup(name)
		return v, ok, nil
	}

	obj, err := ctx.Evaluate(call.Args[1])
	if err != nil {
		return types.Null, false, err
	}
	if obj.Type() != types.TypeMap {
		return types.Null, false, nil
	}
	v, ok := obj.AsMap().Get(name)
	return v, ok, nil
}

func opGet(ctx *Context, call *Call) (types.Value, error) {
	v, ok, err := lookupProperty(ctx, call)
	if err != nil {
		return types.Null, err
	}
	if !ok {
		return types.Null, nil
	}
	return v, nil
}

func opHas(ctx *Context, call *Call) (types.Value, error) {
	_, ok, err := lookupProperty(ctx, call)
	if err != nil {
		return types.Null, err
	}
	return types.NewBool(ok), nil
}

// opDynamicProperties snapshots the environment's bindings in dynamic scope;
// in value scope the call defers for re-evaluation later.
func opDynamicProperties(ctx *Context, call *Call) (types.Value, error) {
	if err := requireArgs(call, 0, 0); err != nil {
		return types.Null, err
	}
	if ctx.Scope() != DynamicScope {
		return types.NewDeferred(call), nil
	}
	if snap, ok := ctx.Env().(interface{ ToValue() types.Value }); ok {
		return snap.ToValue(), nil
	}
	return types.Null, nil
}
