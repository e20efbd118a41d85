// Package style evaluates technique attribute values: the bridge between
// parsed style definitions and the renderer, combining expression evaluation
// with default-value fallback.
package style

import (
	"github.com/flywave/flywave-style/pkg/expr"
	"github.com/flywave/flywave-style/pkg/types"
)

// EvalContext bundles what an attribute evaluation needs: the environment,
// an optional shared result cache and the evaluation scope. The cache is
// populated as a side effect of evaluation and may be reused across
// attributes of the same feature; it must not be shared across features.
type EvalContext struct {
	Env    expr.Env
	Cache  map[expr.Expr]types.Value
	Scope  expr.Scope
	Strict bool
}

// EvaluateAttr resolves a single technique attribute. A nil attr returns
// def; a plain (non-expression) value is returned unchanged without touching
// the evaluator; an expression is evaluated against the context, with a null
// result falling back to def.
func EvaluateAttr(ctx EvalContext, attr interface{}, def types.Value) (types.Value, error) {
	if attr == nil {
		return def, nil
	}
	e, ok := attr.(expr.Expr)
	if !ok {
		return types.FromGo(attr), nil
	}

	opts := []expr.Option{
		expr.WithScope(ctx.Scope),
		expr.WithStrictComparisons(ctx.Strict),
	}
	if ctx.Cache != nil {
		opts = append(opts, expr.WithCache(ctx.Cache))
	}
	v, err := expr.Evaluate(ctx.Env, e, opts...)
	if err != nil {
		return types.Null, err
	}
	if v.IsNull() {
		return def, nil
	}
	return v, nil
}

// NumberAttr evaluates an attribute expected to produce a number.
func NumberAttr(ctx EvalContext, attr interface{}, def float64) (float64, error) {
	v, err := EvaluateAttr(ctx, attr, types.NewNumber(def))
	if err != nil {
		return 0, err
	}
	n, ok := v.Number()
	if !ok {
		return 0, types.NewTypeError("attribute did not evaluate to a number")
	}
	return n, nil
}

// StringAttr evaluates an attribute expected to produce a string.
func StringAttr(ctx EvalContext, attr interface{}, def string) (string, error) {
	v, err := EvaluateAttr(ctx, attr, types.NewString(def))
	if err != nil {
		return "", err
	}
	if v.Type() != types.TypeString {
		return "", types.NewTypeError("attribute did not evaluate to a string")
	}
	return v.AsString(), nil
}

// BoolAttr evaluates an attribute expected to produce a boolean. Non-boolean
// results collapse to their truthiness.
func BoolAttr(ctx EvalContext, attr interface{}, def bool) (bool, error) {
	v, err := EvaluateAttr(ctx, attr, types.NewBool(def))
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}
