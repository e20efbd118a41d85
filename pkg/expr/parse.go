package expr

import (
	"encoding/json"
	"fmt"

	"github.com/flywave/flywave-style/pkg/types"
)

// opVar is the array head reserved for variable references. It is resolved
// at parse time and never reaches the operator registry.
const opVar = "var"

// Parse decodes an expression document from its JSON array form.
func Parse(data []byte) (Expr, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, types.NewSyntaxError(fmt.Sprintf("invalid expression document: %v", err))
	}
	return FromJSON(raw)
}

// FromJSON builds an expression tree from a decoded JSON value. Arrays whose
// first element is a string become Call nodes (or Var for the reserved "var"
// head) with the remaining elements parsed recursively; every other value,
// including arrays without an operator-name head, becomes a Literal.
func FromJSON(v interface{}) (Expr, error) {
	arr, ok := v.([]interface{})
	if !ok {
		return &Literal{Value: types.FromGo(v)}, nil
	}
	if len(arr) == 0 {
		return nil, types.NewSyntaxError("empty expression")
	}
	head, ok := arr[0].(string)
	if !ok {
		// List literal, e.g. ["in", ["get","kind"], [1, 2, 3]].
		return &Literal{Value: types.FromGo(v)}, nil
	}

	if head == opVar {
		if len(arr) != 2 {
			return nil, types.NewSyntaxError("\"var\" expects exactly one name")
		}
		name, ok := arr[1].(string)
		if !ok {
			return nil, types.NewSyntaxError("\"var\" name must be a string")
		}
		return &Var{Name: name}, nil
	}

	args := make([]Expr, len(arr)-1)
	for i, raw := range arr[1:] {
		arg, err := FromJSON(raw)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return &Call{Op: head, Args: args}, nil
}
