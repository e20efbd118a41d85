package expr

import (
	"fmt"

	"github.com/flywave/flywave-style/pkg/types"
)

// Scope is the evaluation mode. Scope-dependent operators (zoom,
// dynamic-properties) resolve in DynamicScope and defer in ValueScope.
type Scope int

const (
	// ValueScope evaluates expressions during theme preprocessing, before
	// frame state such as the zoom level is known.
	ValueScope Scope = iota
	// DynamicScope evaluates expressions at render time with the full
	// frame environment bound.
	DynamicScope
)

// String returns the scope name.
func (s Scope) String() string {
	switch s {
	case ValueScope:
		return "value"
	case DynamicScope:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Option configures an evaluation context.
type Option func(*Context)

// WithScope sets the evaluation scope (default ValueScope).
func WithScope(s Scope) Option {
	return func(c *Context) { c.scope = s }
}

// WithCache attaches a caller-owned result cache keyed by node identity.
// Results of non-dynamic calls are read from and written to it. The cache
// must not outlive the environment it was populated under.
func WithCache(cache map[Expr]types.Value) Option {
	return func(c *Context) { c.cache = cache }
}

// WithRegistry overrides the operator registry (default DefaultRegistry).
func WithRegistry(r *Registry) Option {
	return func(c *Context) { c.registry = r }
}

// WithStrictComparisons makes ordering comparisons fail on mismatched
// operand types instead of returning false.
func WithStrictComparisons(strict bool) Option {
	return func(c *Context) { c.strict = strict }
}

// Context drives the recursive evaluation of an expression tree. A context
// is cheap to build and intended to live for a single evaluation pass.
type Context struct {
	env      Env
	scope    Scope
	cache    map[Expr]types.Value
	registry *Registry
	strict   bool
}

// NewContext creates an evaluation context over the given environment.
func NewContext(env Env, opts ...Option) *Context {
	c := &Context{
		env:      env,
		scope:    ValueScope,
		registry: DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Env returns the context's environment.
func (c *Context) Env() Env {
	return c.env
}

// Scope returns the evaluation scope.
func (c *Context) Scope() Scope {
	return c.scope
}

// Strict reports whether ordering comparisons are strict.
func (c *Context) Strict() bool {
	return c.strict
}

// Evaluate reduces an expression to a value. Literals return their wrapped
// value, variables resolve through the environment (null when unbound), and
// calls dispatch through the operator registry, consulting the result cache
// for non-dynamic operators.
func (c *Context) Evaluate(e Expr) (types.Value, error) {
	switch n := e.(type) {
	case *Literal:
		return n.Value, nil
	case *Var:
		if v, ok := c.env.Lookup(n.Name); ok {
			return v, nil
		}
		return types.Null, nil
	case *Call:
		desc, ok := c.registry.Lookup(n.Op)
		if !ok {
			return types.Null, types.NewUnknownOperatorError(n.Op)
		}
		if c.cache != nil && !desc.Dynamic {
			if v, ok := c.cache[e]; ok {
				return v, nil
			}
		}
		v, err := desc.Call(c, n)
		if err != nil {
			return types.Null, err
		}
		if c.cache != nil && !desc.Dynamic {
			c.cache[e] = v
		}
		return v, nil
	default:
		return types.Null, fmt.Errorf("unsupported expression node type: %T", e)
	}
}

// evaluateArgs evaluates all call arguments left to right. Short-circuiting
// operators walk the arguments themselves instead.
func (c *Context) evaluateArgs(call *Call) ([]types.Value, error) {
	args := make([]types.Value, len(call.Args))
	for i, arg := range call.Args {
		v, err := c.Evaluate(arg)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// Evaluate is the package-level entry point: it builds a context and
// evaluates e against env.
func Evaluate(env Env, e Expr, opts ...Option) (types.Value, error) {
	return NewContext(env, opts...).Evaluate(e)
}
