package expr

import (
	"errors"
	"testing"

	"github.com/flywave/flywave-style/pkg/types"
)

func testEnv(bindings map[string]interface{}) *MapEnv {
	return EnvFromGo(bindings)
}

func evalSrc(t *testing.T, src string, env Env, opts ...Option) (types.Value, error) {
	t.Helper()
	return Evaluate(env, mustParse(t, src), opts...)
}

func mustEval(t *testing.T, src string, env Env, opts ...Option) types.Value {
	t.Helper()
	v, err := evalSrc(t, src, env, opts...)
	if err != nil {
		t.Fatalf("Evaluate(%s): unexpected error: %v", src, err)
	}
	return v
}

func TestLiteralIdentity(t *testing.T) {
	env := NewMapEnv(nil)
	values := []string{`null`, `true`, `0`, `3.5`, `""`, `"x"`, `{"a":1}`}
	for _, src := range values {
		e := mustParse(t, src)
		want := e.(*Literal).Value
		got := mustEval(t, src, env)
		if !got.Equal(want) {
			t.Errorf("evaluate(Literal(%s)) = %s, want %s", src, got, want)
		}
	}
}

func TestVarLookup(t *testing.T) {
	env := testEnv(map[string]interface{}{"kind": "road"})

	v, err := Evaluate(env, &Var{Name: "kind"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Equal(types.NewString("road")) {
		t.Errorf("expected \"road\", got %s", v)
	}

	// Unbound variables resolve to null, never an error.
	v, err = Evaluate(env, &Var{Name: "missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsNull() {
		t.Errorf("expected null for unbound variable, got %s", v)
	}
}

func TestUnknownOperator(t *testing.T) {
	_, err := evalSrc(t, `["frobnicate", 1]`, NewMapEnv(nil))
	if err == nil {
		t.Fatal("expected error for unknown operator")
	}
	var evalErr *types.EvalError
	if !errors.As(err, &evalErr) || !evalErr.HasTag(types.TagUnknownOperatorError) {
		t.Errorf("expected UnknownOperatorError, got %v", err)
	}
}

func TestDeterminism(t *testing.T) {
	env := testEnv(map[string]interface{}{"height": 12.0})
	src := `["all", [">", ["get", "height"], 10], ["<", ["get", "height"], 100]]`

	first := mustEval(t, src, env, WithCache(make(map[Expr]types.Value)))
	second := mustEval(t, src, env, WithCache(make(map[Expr]types.Value)))
	if !first.Equal(second) {
		t.Errorf("same env, fresh caches: %s != %s", first, second)
	}
}

func TestCacheHits(t *testing.T) {
	calls := 0
	reg := NewRegistry()
	reg.Register("counted", OpDescriptor{
		Call: func(ctx *Context, call *Call) (types.Value, error) {
			calls++
			return types.NewNumber(7), nil
		},
	})

	e := mustParse(t, `["counted"]`)
	cache := make(map[Expr]types.Value)
	ctx := NewContext(NewMapEnv(nil), WithRegistry(reg), WithCache(cache))

	for i := 0; i < 3; i++ {
		v, err := ctx.Evaluate(e)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v.AsNumber() != 7 {
			t.Fatalf("expected 7, got %s", v)
		}
	}
	if calls != 1 {
		t.Errorf("expected a single invocation with a warm cache, got %d", calls)
	}
	if len(cache) != 1 {
		t.Errorf("expected 1 cache entry, got %d", len(cache))
	}
}

func TestDynamicOperatorsBypassCache(t *testing.T) {
	e := mustParse(t, `["zoom"]`)
	cache := make(map[Expr]types.Value)
	env := testEnv(map[string]interface{}{VarZoom: 14.0})

	// Value scope defers the zoom call.
	v, err := Evaluate(env, e, WithScope(ValueScope), WithCache(cache))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsDeferred() {
		t.Fatalf("expected deferred result in value scope, got %s", v)
	}
	if len(cache) != 0 {
		t.Fatalf("dynamic result must not be cached, cache has %d entries", len(cache))
	}

	// The same cache in dynamic scope must resolve, not replay the deferred.
	v, err = Evaluate(env, e, WithScope(DynamicScope), WithCache(cache))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := v.Number()
	if !ok || n != 14 {
		t.Errorf("expected 14 in dynamic scope, got %s", v)
	}
}

func TestDeferredCarriesCallNode(t *testing.T) {
	e := mustParse(t, `["zoom"]`)
	v, err := Evaluate(NewMapEnv(nil), e, WithScope(ValueScope))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsDeferred() {
		t.Fatalf("expected deferred, got %s", v)
	}
	node, ok := v.AsDeferred().(*Call)
	if !ok {
		t.Fatalf("expected *Call inside deferred, got %T", v.AsDeferred())
	}
	if node != e.(*Call) {
		t.Error("deferred must carry the original call node")
	}
}

func TestArgumentOrderLeftToRight(t *testing.T) {
	var order []float64
	reg := NewRegistry()
	reg.Register("trace", OpDescriptor{
		Call: func(ctx *Context, call *Call) (types.Value, error) {
			args, err := ctx.evaluateArgs(call)
			if err != nil {
				return types.Null, err
			}
			return args[len(args)-1], nil
		},
	})
	reg.Register("mark", OpDescriptor{
		Call: func(ctx *Context, call *Call) (types.Value, error) {
			args, err := ctx.evaluateArgs(call)
			if err != nil {
				return types.Null, err
			}
			order = append(order, args[0].AsNumber())
			return args[0], nil
		},
	})

	e := mustParse(t, `["trace", ["mark", 1], ["mark", 2], ["mark", 3]]`)
	if _, err := Evaluate(NewMapEnv(nil), e, WithRegistry(reg)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("expected left-to-right order [1 2 3], got %v", order)
	}
}

func TestEndToEndVisible(t *testing.T) {
	src := `["==", ["get", "visible"], true]`

	cases := []struct {
		env  map[string]interface{}
		want bool
	}{
		{map[string]interface{}{"visible": true}, true},
		{map[string]interface{}{"visible": false}, false},
		// Absent property: get returns null, null == true is false.
		{map[string]interface{}{}, false},
	}
	for _, tc := range cases {
		got := mustEval(t, src, testEnv(tc.env))
		if !got.Equal(types.NewBool(tc.want)) {
			t.Errorf("env=%v: expected %v, got %s", tc.env, tc.want, got)
		}
	}
}

func TestEnvChaining(t *testing.T) {
	frame := NewMapEnv(map[string]types.Value{
		VarZoom: types.NewNumber(10),
		"kind":  types.NewString("frame"),
	})
	feature := frame.NewChildEnv(map[string]types.Value{
		"kind": types.NewString("road"),
	})

	if v, ok := feature.Lookup("kind"); !ok || v.AsString() != "road" {
		t.Errorf("child binding must shadow parent, got %s", v)
	}
	if v, ok := feature.Lookup(VarZoom); !ok || v.AsNumber() != 10 {
		t.Errorf("parent binding must be visible, got %s", v)
	}
	if !IsEnv(feature) {
		t.Error("MapEnv must satisfy the Env capability")
	}
	if IsEnv("not an env") {
		t.Error("a string must not satisfy the Env capability")
	}
}
