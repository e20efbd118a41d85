package expr

import (
	"fmt"

	"github.com/flywave/flywave-style/pkg/types"
)

// registerFlow registers the logic combinators and the type-guard selectors.
func (r *Registry) registerFlow() {
	r.Register("all", OpDescriptor{Call: opAll})
	r.Register("any", OpDescriptor{Call: opAny})
	r.Register("none", OpDescriptor{Call: opNone})
	r.Register("boolean", typeGuard("boolean"))
	r.Register("number", typeGuard("number"))
	r.Register("string", typeGuard("string"))
}

// opAll is true iff every argument is truthy; evaluation stops at the first
// falsy argument. all() of no arguments is true.
func opAll(ctx *Context, call *Call) (types.Value, error) {
	for _, arg := range call.Args {
		v, err := ctx.Evaluate(arg)
		if err != nil {
			return types.Null, err
		}
		if !v.Truthy() {
			return types.NewBool(false), nil
		}
	}
	return types.NewBool(true), nil
}

// opAny is true iff at least one argument is truthy; evaluation stops at the
// first truthy argument. any() of no arguments is false.
func opAny(ctx *Context, call *Call) (types.Value, error) {
	for _, arg := range call.Args {
		v, err := ctx.Evaluate(arg)
		if err != nil {
			return types.Null, err
		}
		if v.Truthy() {
			return types.NewBool(true), nil
		}
	}
	return types.NewBool(false), nil
}

// opNone is true iff no argument is truthy; evaluation stops at the first
// truthy argument. none() of no arguments is true.
func opNone(ctx *Context, call *Call) (types.Value, error) {
	for _, arg := range call.Args {
		v, err := ctx.Evaluate(arg)
		if err != nil {
			return types.Null, err
		}
		if v.Truthy() {
			return types.NewBool(false), nil
		}
	}
	return types.NewBool(true), nil
}

// typeGuard builds the boolean/number/string selectors: the first argument
// whose evaluated type matches the target is returned.
func typeGuard(target string) OpDescriptor {
	return OpDescriptor{Call: func(ctx *Context, call *Call) (types.Value, error) {
		if err := requireArgs(call, 1, -1); err != nil {
			return types.Null, err
		}
		return conditionalCast(ctx, call, target)
	}}
}

func conditionalCast(ctx *Context, call *Call, target string) (types.Value, error) {
	var want types.ValueType
	switch target {
	case "boolean":
		want = types.TypeBool
	case "number":
		want = types.TypeNumber
	case "string":
		want = types.TypeString
	default:
		return types.Null, types.NewTypeError(fmt.Sprintf("invalid cast target type %q", target))
	}
	for _, arg := range call.Args {
		v, err := ctx.Evaluate(arg)
		if err != nil {
			return types.Null, err
		}
		if v.Type() == want {
			return v, nil
		}
	}
	return types.Null, types.NewConversionError(
		fmt.Sprintf("%s: no argument matches the expected type", call.Op))
}
