package expr

import (
	"github.com/flywave/flywave-style/pkg/types"
)

// Well-known environment variable names supplied by the renderer.
const (
	// VarZoom is the continuous map zoom level of the current frame.
	VarZoom = "$zoom"
	// VarPPI is the display pixel density.
	VarPPI = "$ppi"
)

// Env provides variable lookup for expression evaluation. Feature
// properties, $zoom and $ppi are bound here by the caller.
type Env interface {
	// Lookup returns the value bound to name and whether a binding exists.
	Lookup(name string) (types.Value, bool)
}

// IsEnv reports whether candidate implements the Env capability. Operators
// use it to tell an environment apart from a plain value operand.
func IsEnv(candidate interface{}) bool {
	_, ok := candidate.(Env)
	return ok
}

// MapEnv is a flat-map-backed Env. Lookups miss into the optional parent,
// so a per-feature environment can chain onto shared frame bindings.
type MapEnv struct {
	entries map[string]types.Value
	parent  Env
}

// NewMapEnv creates an environment from the given bindings. The map is used
// directly and must not be mutated while evaluations are in flight.
func NewMapEnv(entries map[string]types.Value) *MapEnv {
	if entries == nil {
		entries = make(map[string]types.Value)
	}
	return &MapEnv{entries: entries}
}

// NewChildEnv creates an environment whose lookups fall through to this one.
func (e *MapEnv) NewChildEnv(entries map[string]types.Value) *MapEnv {
	child := NewMapEnv(entries)
	child.parent = e
	return child
}

// Lookup retrieves a binding, searching up the parent chain.
func (e *MapEnv) Lookup(name string) (types.Value, bool) {
	if v, ok := e.entries[name]; ok {
		return v, true
	}
	if e.parent != nil {
		return e.parent.Lookup(name)
	}
	return types.Null, false
}

// Set adds or replaces a binding in this environment.
func (e *MapEnv) Set(name string, value types.Value) {
	e.entries[name] = value
}

// ToValue snapshots the visible bindings as a map value. Child bindings
// shadow parent ones; a foreign parent Env cannot be enumerated and is
// skipped.
func (e *MapEnv) ToValue() types.Value {
	merged := make(map[string]types.Value)
	e.collect(merged)
	return types.NewMapFromGoMap(merged)
}

func (e *MapEnv) collect(into map[string]types.Value) {
	if parent, ok := e.parent.(*MapEnv); ok {
		parent.collect(into)
	}
	for k, v := range e.entries {
		into[k] = v
	}
}

// EnvFromGo builds a MapEnv from a plain Go map, converting each entry with
// types.FromGo. Convenient for environments decoded from JSON or YAML.
func EnvFromGo(entries map[string]interface{}) *MapEnv {
	bindings := make(map[string]types.Value, len(entries))
	for k, v := range entries {
		bindings[k] = types.FromGo(v)
	}
	return NewMapEnv(bindings)
}
