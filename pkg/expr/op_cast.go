package expr

import (
	"math"
	"strconv"
	"strings"

	"github.com/flywave/flywave-style/pkg/types"
)

// registerCast registers the type-cast operators: to-boolean, to-string,
// to-number.
func (r *Registry) registerCast() {
	r.Register("to-boolean", OpDescriptor{Call: opToBoolean})
	r.Register("to-string", OpDescriptor{Call: opToString})
	r.Register("to-number", OpDescriptor{Call: opToNumber})
}

func opToBoolean(ctx *Context, call *Call) (types.Value, error) {
	if err := requireArgs(call, 1, 1); err != nil {
		return types.Null, err
	}
	v, err := ctx.Evaluate(call.Args[0])
	if err != nil {
		return types.Null, err
	}
	return types.NewBool(v.Truthy()), nil
}

func opToString(ctx *Context, call *Call) (types.Value, error) {
	if err := requireArgs(call, 1, 1); err != nil {
		return types.Null, err
	}
	v, err := ctx.Evaluate(call.Args[0])
	if err != nil {
		return types.Null, err
	}
	return types.NewString(v.String()), nil
}

// opToNumber returns the first argument that coerces to a non-NaN number.
func opToNumber(ctx *Context, call *Call) (types.Value, error) {
	if err := requireArgs(call, 1, -1); err != nil {
		return types.Null, err
	}
	for _, arg := range call.Args {
		v, err := ctx.Evaluate(arg)
		if err != nil {
			return types.Null, err
		}
		if n, ok := coerceNumber(v); ok && !math.IsNaN(n) {
			return types.NewNumber(n), nil
		}
	}
	return types.Null, types.NewConversionError("to-number: no argument is convertible to a number")
}

// coerceNumber applies numeric coercion: numbers pass through, booleans map
// to 0/1, null maps to 0, strings parse after trimming (the empty string
// coerces to 0). Lists, maps and deferred nodes never coerce.
func coerceNumber(v types.Value) (float64, bool) {
	switch v.Type() {
	case types.TypeNumber:
		return v.AsNumber(), true
	case types.TypeBool:
		if v.AsBool() {
			return 1, true
		}
		return 0, true
	case types.TypeNull:
		return 0, true
	case types.TypeString:
		s := strings.TrimSpace(v.AsString())
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN(), true
		}
		return f, true
	default:
		return 0, false
	}
}
