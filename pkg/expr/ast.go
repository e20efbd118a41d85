// Package expr implements the style expression language: an AST parsed from
// the JSON array form (e.g. ["==", ["get","type"], "building"]), an
// environment for variable bindings, and a recursive evaluator with a flat
// operator registry.
package expr

import (
	"encoding/json"

	"github.com/flywave/flywave-style/pkg/types"
)

// Expr is the interface for all expression AST nodes. A tree is immutable
// after construction; a node's pointer identity is stable and serves as the
// result cache key within one evaluation pass.
type Expr interface {
	exprNode()
}

// Literal wraps a constant value.
type Literal struct {
	Value types.Value
}

func (e *Literal) exprNode() {}

// Var references a variable resolved against the evaluation environment.
// An unbound variable evaluates to null, never an error.
type Var struct {
	Name string
}

func (e *Var) exprNode() {}

// Call applies a named operator to an ordered list of argument expressions.
type Call struct {
	Op   string
	Args []Expr
}

func (e *Call) exprNode() {}

// DeferredExpr marks Call nodes as embeddable in a deferred Value, so
// scope-dependent operators can hand the unresolved node back to the caller.
func (e *Call) DeferredExpr() {}

// NewLiteral creates a literal node from any Go value.
func NewLiteral(v interface{}) *Literal {
	return &Literal{Value: types.FromGo(v)}
}

// NewCall creates a call node.
func NewCall(op string, args ...Expr) *Call {
	return &Call{Op: op, Args: args}
}

// MarshalJSON renders the literal as its plain JSON value.
func (e *Literal) MarshalJSON() ([]byte, error) {
	return e.Value.MarshalJSON()
}

// MarshalJSON renders the variable reference as ["var", name].
func (e *Var) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{opVar, e.Name})
}

// MarshalJSON renders the call in the JSON array form.
func (e *Call) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(e.Args)+1)
	op, err := json.Marshal(e.Op)
	if err != nil {
		return nil, err
	}
	out = append(out, op)
	for _, arg := range e.Args {
		m, ok := arg.(json.Marshaler)
		if !ok {
			continue
		}
		b, err := m.MarshalJSON()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return json.Marshal(out)
}
