package expr

import (
	"github.com/flywave/flywave-style/pkg/types"
)

// registerType registers the type-inspection operators.
func (r *Registry) registerType() {
	r.Register("typeof", OpDescriptor{Call: opTypeof})
}

// opTypeof returns the run-time type tag of the evaluated value, using the
// JS tag vocabulary: null, lists, maps and deferred nodes all report
// "object".
func opTypeof(ctx *Context, call *Call) (types.Value, error) {
	if err := requireArgs(call, 1, 1); err != nil {
		return types.Null, err
	}
	v, err := ctx.Evaluate(call.Args[0])
	if err != nil {
		return types.Null, err
	}
	switch v.Type() {
	case types.TypeBool:
		return types.NewString("boolean"), nil
	case types.TypeNumber:
		return types.NewString("number"), nil
	case types.TypeString:
		return types.NewString("string"), nil
	default:
		return types.NewString("object"), nil
	}
}
