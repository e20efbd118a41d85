package expr

import (
	"fmt"

	"github.com/flywave/flywave-style/pkg/types"
)

// OpFunc evaluates a call node. Operators receive the unevaluated call so
// short-circuiting operators control argument evaluation themselves.
type OpFunc func(ctx *Context, call *Call) (types.Value, error)

// OpDescriptor pairs an operator's evaluation function with its dynamic
// flag. Dynamic operators depend on the evaluation scope and are never
// cached or constant-folded.
type OpDescriptor struct {
	Call    OpFunc
	Dynamic bool
}

// Registry is the flat name -> descriptor dispatch table. Operators are
// registered per category at construction; category boundaries carry no
// runtime meaning.
type Registry struct {
	ops map[string]OpDescriptor
}

// NewRegistry creates a registry with the full operator catalog registered.
func NewRegistry() *Registry {
	r := &Registry{
		ops: make(map[string]OpDescriptor),
	}
	r.registerCast()
	r.registerComparison()
	r.registerFlow()
	r.registerString()
	r.registerMapOps()
	r.registerObject()
	r.registerType()
	return r
}

// Register adds or replaces an operator.
func (r *Registry) Register(name string, desc OpDescriptor) {
	r.ops[name] = desc
}

// Lookup returns the descriptor for an operator name.
func (r *Registry) Lookup(name string) (OpDescriptor, bool) {
	desc, ok := r.ops[name]
	return desc, ok
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the shared registry with the built-in operator
// catalog. It must not be mutated; use NewRegistry for a private table.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// requireArgs checks that the number of call arguments is in range. A
// negative max means unbounded.
func requireArgs(call *Call, min, max int) error {
	n := len(call.Args)
	if n < min || (max >= 0 && n > max) {
		if min == max {
			return types.NewInvalidOperandsError(call.Op,
				fmt.Sprintf("expects %d argument(s), got %d", min, n))
		}
		if max < 0 {
			return types.NewInvalidOperandsError(call.Op,
				fmt.Sprintf("expects at least %d argument(s), got %d", min, n))
		}
		return types.NewInvalidOperandsError(call.Op,
			fmt.Sprintf("expects %d-%d arguments, got %d", min, max, n))
	}
	return nil
}
