package expr

import (
	"errors"
	"math"
	"testing"

	"github.com/flywave/flywave-style/pkg/types"
)

func expectEvalError(t *testing.T, src string, env Env, tag string, opts ...Option) {
	t.Helper()
	_, err := evalSrc(t, src, env, opts...)
	if err == nil {
		t.Fatalf("Evaluate(%s): expected error", src)
	}
	var evalErr *types.EvalError
	if !errors.As(err, &evalErr) || !evalErr.HasTag(tag) {
		t.Fatalf("Evaluate(%s): expected %s, got %v", src, tag, err)
	}
}

func TestCastOperators(t *testing.T) {
	env := NewMapEnv(nil)
	cases := []struct {
		src  string
		want types.Value
	}{
		{`["to-boolean", ""]`, types.NewBool(false)},
		{`["to-boolean", 0]`, types.NewBool(false)},
		{`["to-boolean", null]`, types.NewBool(false)},
		{`["to-boolean", false]`, types.NewBool(false)},
		{`["to-boolean", "no"]`, types.NewBool(true)},
		{`["to-string", 5]`, types.NewString("5")},
		{`["to-string", null]`, types.NewString("null")},
		{`["to-string", true]`, types.NewString("true")},
		{`["to-number", "abc", "42"]`, types.NewNumber(42)},
		{`["to-number", true]`, types.NewNumber(1)},
		{`["to-number", null]`, types.NewNumber(0)},
		{`["to-number", "  7.5 "]`, types.NewNumber(7.5)},
	}
	for _, tc := range cases {
		got := mustEval(t, tc.src, env)
		if !got.Equal(tc.want) {
			t.Errorf("%s = %s, want %s", tc.src, got, tc.want)
		}
	}

	expectEvalError(t, `["to-number", "abc"]`, env, types.TagConversionError)
	expectEvalError(t, `["to-string"]`, env, types.TagInvalidOperandsError)
}

func TestComparisonOperators(t *testing.T) {
	env := NewMapEnv(nil)
	cases := []struct {
		src  string
		want bool
	}{
		{`["==", 1, 1]`, true},
		{`["==", 1, "1"]`, false},
		{`["==", null, true]`, false},
		{`["!=", "a", "b"]`, true},
		{`["!", true]`, false},
		{`["!", ""]`, true},
		{`["<", 1, 2]`, true},
		{`[">", "b", "a"]`, true},
		{`["<=", 2, 2]`, true},
		{`[">=", 1, 2]`, false},
		// Mismatched types: non-strict mode returns false.
		{`["<", 1, "2"]`, false},
		{`[">", 1, "2"]`, false},
	}
	for _, tc := range cases {
		got := mustEval(t, tc.src, env)
		if !got.Equal(types.NewBool(tc.want)) {
			t.Errorf("%s = %s, want %v", tc.src, got, tc.want)
		}
	}

	expectEvalError(t, `["<", 1, "2"]`, env, types.TagInvalidOperandsError,
		WithStrictComparisons(true))
}

func TestFlowVacuousTruth(t *testing.T) {
	env := NewMapEnv(nil)
	if got := mustEval(t, `["all"]`, env); !got.Equal(types.NewBool(true)) {
		t.Errorf("all() = %s, want true", got)
	}
	if got := mustEval(t, `["any"]`, env); !got.Equal(types.NewBool(false)) {
		t.Errorf("any() = %s, want false", got)
	}
	if got := mustEval(t, `["none"]`, env); !got.Equal(types.NewBool(true)) {
		t.Errorf("none() = %s, want true", got)
	}
}

func TestFlowShortCircuit(t *testing.T) {
	env := NewMapEnv(nil)
	// ["to-number", "abc"] fails; it must never be reached.
	cases := []struct {
		src  string
		want bool
	}{
		{`["any", true, ["to-number", "abc"]]`, true},
		{`["all", false, ["to-number", "abc"]]`, false},
		{`["none", true, ["to-number", "abc"]]`, false},
	}
	for _, tc := range cases {
		got, err := evalSrc(t, tc.src, env)
		if err != nil {
			t.Errorf("%s: short-circuit failed, got error %v", tc.src, err)
			continue
		}
		if !got.Equal(types.NewBool(tc.want)) {
			t.Errorf("%s = %s, want %v", tc.src, got, tc.want)
		}
	}

	// Without short-circuit the failing argument is evaluated.
	expectEvalError(t, `["any", false, ["to-number", "abc"]]`, env, types.TagConversionError)
}

func TestTypeGuards(t *testing.T) {
	env := NewMapEnv(nil)
	if got := mustEval(t, `["number", "x", true, 3, 4]`, env); !got.Equal(types.NewNumber(3)) {
		t.Errorf("number guard = %s, want 3", got)
	}
	if got := mustEval(t, `["string", 1, "a"]`, env); !got.Equal(types.NewString("a")) {
		t.Errorf("string guard = %s, want \"a\"", got)
	}
	if got := mustEval(t, `["boolean", 0, false]`, env); !got.Equal(types.NewBool(false)) {
		t.Errorf("boolean guard = %s, want false", got)
	}
	expectEvalError(t, `["number", "x", true]`, env, types.TagConversionError)
}

func TestStringOperators(t *testing.T) {
	env := NewMapEnv(nil)
	cases := []struct {
		src  string
		want types.Value
	}{
		{`["concat", "a", 1, null, "b"]`, types.NewString("a1nullb")},
		{`["downcase", "MiXeD"]`, types.NewString("mixed")},
		{`["upcase", "road"]`, types.NewString("ROAD")},
		{`["~=", "hello world", "wor"]`, types.NewBool(true)},
		{`["^=", "hello", "he"]`, types.NewBool(true)},
		{`["$=", "hello", "lo"]`, types.NewBool(true)},
		{`["~=", "hello", "xyz"]`, types.NewBool(false)},
		// Non-string operands yield false.
		{`["~=", 5, "5"]`, types.NewBool(false)},
		{`["^=", "5", 5]`, types.NewBool(false)},
	}
	for _, tc := range cases {
		got := mustEval(t, tc.src, env)
		if !got.Equal(tc.want) {
			t.Errorf("%s = %s, want %s", tc.src, got, tc.want)
		}
	}
}

func TestMapOperators(t *testing.T) {
	env := testEnv(map[string]interface{}{VarZoom: 17.0, VarPPI: 96.0})
	dyn := WithScope(DynamicScope)

	if got := mustEval(t, `["ppi-scale", 10, 2]`, env); !got.Equal(types.NewNumber(20)) {
		t.Errorf("ppi-scale = %s, want 20", got)
	}
	if got := mustEval(t, `["ppi-scale", 10]`, env); !got.Equal(types.NewNumber(10)) {
		t.Errorf("ppi-scale default factor = %s, want 10", got)
	}

	// At zoom 17 the world factor is 1.
	if got := mustEval(t, `["world-ppi-scale", 10]`, env, dyn); !got.Equal(types.NewNumber(10)) {
		t.Errorf("world-ppi-scale at zoom 17 = %s, want 10", got)
	}

	// One level down doubles the factor.
	env16 := testEnv(map[string]interface{}{VarZoom: 16.0})
	if got := mustEval(t, `["world-ppi-scale", 10]`, env16, dyn); !got.Equal(types.NewNumber(20)) {
		t.Errorf("world-ppi-scale at zoom 16 = %s, want 20", got)
	}

	// Discrete variant floors the zoom first.
	env165 := testEnv(map[string]interface{}{VarZoom: 16.5})
	got := mustEval(t, `["world-discrete-ppi-scale", 10]`, env165, dyn)
	if !got.Equal(types.NewNumber(20)) {
		t.Errorf("world-discrete-ppi-scale at zoom 16.5 = %s, want 20", got)
	}
	cont := mustEval(t, `["world-ppi-scale", 10]`, env165, dyn)
	want := 10 * math.Exp2(17) / math.Exp2(16.5)
	if n, _ := cont.Number(); math.Abs(n-want) > 1e-9 {
		t.Errorf("world-ppi-scale at zoom 16.5 = %s, want %v", cont, want)
	}

	if got := mustEval(t, `["ppi"]`, env); !got.Equal(types.NewNumber(96)) {
		t.Errorf("ppi = %s, want 96", got)
	}
	if got := mustEval(t, `["ppi"]`, NewMapEnv(nil)); !got.Equal(types.NewNumber(72)) {
		t.Errorf("ppi default = %s, want 72", got)
	}

	if got := mustEval(t, `["zoom"]`, env, dyn); !got.Equal(types.NewNumber(17)) {
		t.Errorf("zoom = %s, want 17", got)
	}
	if got := mustEval(t, `["zoom"]`, NewMapEnv(nil), dyn); !got.IsNull() {
		t.Errorf("zoom without $zoom = %s, want null", got)
	}

	expectEvalError(t, `["world-ppi-scale", 10]`, NewMapEnv(nil), types.TagInvalidOperandsError, dyn)
	expectEvalError(t, `["ppi-scale", "x"]`, env, types.TagInvalidOperandsError)
}

func TestObjectOperators(t *testing.T) {
	env := testEnv(map[string]interface{}{
		"kind": "road",
		"obj":  map[string]interface{}{"x": 5.0},
	})

	cases := []struct {
		src  string
		want types.Value
	}{
		{`["in", "wor", "hello world"]`, types.NewBool(true)},
		{`["in", 2, [1, 2, 3]]`, types.NewBool(true)},
		{`["in", 4, [1, 2, 3]]`, types.NewBool(false)},
		{`["in", 2, 5]`, types.NewBool(false)},
		{`["get", "x", {"x": 5}]`, types.NewNumber(5)},
		{`["get", "y", {"x": 5}]`, types.Null},
		{`["get", "x", "not a map"]`, types.Null},
		{`["get", "kind"]`, types.NewString("road")},
		{`["get", "missing"]`, types.Null},
		{`["has", "x", {"x": 5}]`, types.NewBool(true)},
		{`["has", "y", {"x": 5}]`, types.NewBool(false)},
		{`["has", "kind"]`, types.NewBool(true)},
		{`["get", "x", ["get", "obj"]]`, types.NewNumber(5)},
	}
	for _, tc := range cases {
		got := mustEval(t, tc.src, env)
		if !got.Equal(tc.want) {
			t.Errorf("%s = %s, want %s", tc.src, got, tc.want)
		}
	}
}

func TestDynamicProperties(t *testing.T) {
	env := testEnv(map[string]interface{}{"kind": "road"})

	v := mustEval(t, `["dynamic-properties"]`, env, WithScope(DynamicScope))
	if v.Type() != types.TypeMap {
		t.Fatalf("expected map snapshot, got %s", v.Type())
	}
	if kind, ok := v.AsMap().Get("kind"); !ok || kind.AsString() != "road" {
		t.Errorf("expected kind=road in snapshot, got %s", kind)
	}

	v = mustEval(t, `["dynamic-properties"]`, env, WithScope(ValueScope))
	if !v.IsDeferred() {
		t.Errorf("expected deferred in value scope, got %s", v)
	}
}

func TestTypeof(t *testing.T) {
	env := NewMapEnv(nil)
	for _, tc := range []struct {
		src  string
		want string
	}{
		{`["typeof", true]`, "boolean"},
		{`["typeof", 1.5]`, "number"},
		{`["typeof", "x"]`, "string"},
		{`["typeof", null]`, "object"},
		{`["typeof", [1, 2]]`, "object"},
		{`["typeof", {"a": 1}]`, "object"},
	} {
		got := mustEval(t, tc.src, env)
		if !got.Equal(types.NewString(tc.want)) {
			t.Errorf("%s = %s, want %q", tc.src, got, tc.want)
		}
	}
}
