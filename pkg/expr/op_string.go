package expr

import (
	"strings"

	"github.com/flywave/flywave-style/pkg/types"
)

// registerString registers concatenation, case conversion and the substring
// match operators.
func (r *Registry) registerString() {
	r.Register("concat", OpDescriptor{Call: opConcat})
	r.Register("downcase", caseOp(strings.ToLower))
	r.Register("upcase", caseOp(strings.ToUpper))
	r.Register("~=", substringOp(strings.Contains))
	r.Register("^=", substringOp(strings.HasPrefix))
	r.Register("$=", substringOp(strings.HasSuffix))
}

// opConcat stringifies and joins all arguments.
func opConcat(ctx *Context, call *Call) (types.Value, error) {
	args, err := ctx.evaluateArgs(call)
	if err != nil {
		return types.Null, err
	}
	var sb strings.Builder
	for _, v := range args {
		sb.WriteString(v.String())
	}
	return types.NewString(sb.String()), nil
}

func caseOp(convert func(string) string) OpDescriptor {
	return OpDescriptor{Call: func(ctx *Context, call *Call) (types.Value, error) {
		if err := requireArgs(call, 1, 1); err != nil {
			return types.Null, err
		}
		v, err := ctx.Evaluate(call.Args[0])
		if err != nil {
			return types.Null, err
		}
		return types.NewString(convert(v.String())), nil
	}}
}

// substringOp builds ~= (contains), ^= (starts-with) and $= (ends-with).
// Any non-string operand yields false.
func substringOp(match func(s, sub string) bool) OpDescriptor {
	return OpDescriptor{Call: func(ctx *Context, call *Call) (types.Value, error) {
		if err := requireArgs(call, 2, 2); err != nil {
			return types.Null, err
		}
		args, err := ctx.evaluateArgs(call)
		if err != nil {
			return types.Null, err
		}
		if args[0].Type() != types.TypeString || args[1].Type() != types.TypeString {
			return types.NewBool(false), nil
		}
		return types.NewBool(match(args[0].AsString(), args[1].AsString())), nil
	}}
}
