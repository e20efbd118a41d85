package expr

import (
	"strings"

	"github.com/flywave/flywave-style/pkg/types"
)

// registerComparison registers equality, ordering and negation operators.
func (r *Registry) registerComparison() {
	r.Register("==", OpDescriptor{Call: opEqual})
	r.Register("!=", OpDescriptor{Call: opNotEqual})
	r.Register("!", OpDescriptor{Call: opNot})
	r.Register("<", orderingOp(func(c int) bool { return c < 0 }))
	r.Register(">", orderingOp(func(c int) bool { return c > 0 }))
	r.Register("<=", orderingOp(func(c int) bool { return c <= 0 }))
	r.Register(">=", orderingOp(func(c int) bool { return c >= 0 }))
}

func opEqual(ctx *Context, call *Call) (types.Value, error) {
	if err := requireArgs(call, 2, 2); err != nil {
		return types.Null, err
	}
	args, err := ctx.evaluateArgs(call)
	if err != nil {
		return types.Null, err
	}
	return types.NewBool(args[0].Equal(args[1])), nil
}

func opNotEqual(ctx *Context, call *Call) (types.Value, error) {
	if err := requireArgs(call, 2, 2); err != nil {
		return types.Null, err
	}
	args, err := ctx.evaluateArgs(call)
	if err != nil {
		return types.Null, err
	}
	return types.NewBool(!args[0].Equal(args[1])), nil
}

func opNot(ctx *Context, call *Call) (types.Value, error) {
	if err := requireArgs(call, 1, 1); err != nil {
		return types.Null, err
	}
	v, err := ctx.Evaluate(call.Args[0])
	if err != nil {
		return types.Null, err
	}
	return types.NewBool(!v.Truthy()), nil
}

// orderingOp builds <, >, <= and >=. Ordering is defined when both operands
// are numbers or both are strings. On mismatched types strict mode fails
// with an invalid-operands error; non-strict mode returns false.
func orderingOp(test func(int) bool) OpDescriptor {
	return OpDescriptor{Call: func(ctx *Context, call *Call) (types.Value, error) {
		if err := requireArgs(call, 2, 2); err != nil {
			return types.Null, err
		}
		args, err := ctx.evaluateArgs(call)
		if err != nil {
			return types.Null, err
		}
		cmp, ok := compare(args[0], args[1])
		if !ok {
			if ctx.Strict() {
				return types.Null, types.NewInvalidOperandsError(call.Op,
					"operands must both be numbers or both be strings")
			}
			return types.NewBool(false), nil
		}
		return types.NewBool(test(cmp)), nil
	}}
}

// compare returns negative, zero, or positive for ordering, and whether the
// operand types are comparable.
func compare(a, b types.Value) (int, bool) {
	if a.Type() == types.TypeNumber && b.Type() == types.TypeNumber {
		an, bn := a.AsNumber(), b.AsNumber()
		switch {
		case an < bn:
			return -1, true
		case an > bn:
			return 1, true
		default:
			return 0, true
		}
	}
	if a.Type() == types.TypeString && b.Type() == types.TypeString {
		return strings.Compare(a.AsString(), b.AsString()), true
	}
	return 0, false
}
