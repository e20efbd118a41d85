// Package types defines the value model used by the style expression
// evaluator: null, bool, number, string, list, map, plus a deferred marker
// for expressions whose evaluation is postponed to a later scope.
package types

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ValueType represents the type of a style value.
type ValueType int

const (
	TypeNull     ValueType = iota
	TypeBool               // bool
	TypeNumber             // float64
	TypeString             // string
	TypeList               // []Value
	TypeMap                // ordered map of string -> Value
	TypeDeferred           // unresolved expression node
)

// String returns the value type name.
func (t ValueType) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeList:
		return "list"
	case TypeMap:
		return "map"
	case TypeDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// Deferred marks an expression node whose evaluation was postponed because
// the current scope cannot resolve it (e.g. a zoom read outside dynamic
// scope). The evaluator wraps such nodes in a Value of TypeDeferred so a
// higher layer can re-evaluate them once the proper scope is entered.
type Deferred interface {
	DeferredExpr()
}

// Value represents a style runtime value. It uses a tagged union approach
// for efficiency.
type Value struct {
	typ         ValueType
	boolVal     bool
	numberVal   float64
	stringVal   string
	listVal     []Value
	mapVal      *OrderedMap
	deferredVal Deferred
}

// OrderedMap maintains insertion order for map keys, so property bags
// serialize deterministically.
type OrderedMap struct {
	keys   []string
	values map[string]Value
}

// NewOrderedMap creates a new empty ordered map.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{
		keys:   make([]string, 0),
		values: make(map[string]Value),
	}
}

// Get retrieves a value by key. Returns the value and whether it exists.
func (m *OrderedMap) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set adds or updates a key-value pair, preserving insertion order.
func (m *OrderedMap) Set(key string, val Value) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = val
}

// Delete removes a key from the map.
func (m *OrderedMap) Delete(key string) {
	if _, exists := m.values[key]; !exists {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string {
	result := make([]string, len(m.keys))
	copy(result, m.keys)
	return result
}

// Len returns the number of entries.
func (m *OrderedMap) Len() int {
	return len(m.keys)
}

// Clone creates a deep copy of the ordered map.
func (m *OrderedMap) Clone() *OrderedMap {
	c := NewOrderedMap()
	for _, k := range m.keys {
		c.Set(k, m.values[k].Clone())
	}
	return c
}

// Null is the singleton null value.
var Null = Value{typ: TypeNull}

// NewBool creates a boolean value.
func NewBool(v bool) Value {
	return Value{typ: TypeBool, boolVal: v}
}

// NewNumber creates a number value (64-bit float).
func NewNumber(v float64) Value {
	return Value{typ: TypeNumber, numberVal: v}
}

// NewString creates a string value.
func NewString(v string) Value {
	return Value{typ: TypeString, stringVal: v}
}

// NewList creates a list value from a slice of values.
func NewList(v []Value) Value {
	return Value{typ: TypeList, listVal: v}
}

// NewMap creates a map value from an OrderedMap.
func NewMap(v *OrderedMap) Value {
	return Value{typ: TypeMap, mapVal: v}
}

// NewDeferred wraps an unresolved expression node.
func NewDeferred(node Deferred) Value {
	return Value{typ: TypeDeferred, deferredVal: node}
}

// NewMapFromGoMap creates a map value from a Go map (keys sorted
// alphabetically for determinism).
func NewMapFromGoMap(m map[string]Value) Value {
	om := NewOrderedMap()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		om.Set(k, m[k])
	}
	return Value{typ: TypeMap, mapVal: om}
}

// Type returns the value's type.
func (v Value) Type() ValueType {
	return v.typ
}

// IsNull returns true if the value is null.
func (v Value) IsNull() bool {
	return v.typ == TypeNull
}

// IsDeferred returns true if the value wraps an unresolved expression.
func (v Value) IsDeferred() bool {
	return v.typ == TypeDeferred
}

// AsBool returns the boolean value. Panics if not a bool.
func (v Value) AsBool() bool {
	if v.typ != TypeBool {
		panic(fmt.Sprintf("AsBool called on %s value", v.typ))
	}
	return v.boolVal
}

// AsNumber returns the number value. Panics if not a number.
func (v Value) AsNumber() float64 {
	if v.typ != TypeNumber {
		panic(fmt.Sprintf("AsNumber called on %s value", v.typ))
	}
	return v.numberVal
}

// AsString returns the string value. Panics if not a string.
func (v Value) AsString() string {
	if v.typ != TypeString {
		panic(fmt.Sprintf("AsString called on %s value", v.typ))
	}
	return v.stringVal
}

// AsList returns the list value. Panics if not a list.
func (v Value) AsList() []Value {
	if v.typ != TypeList {
		panic(fmt.Sprintf("AsList called on %s value", v.typ))
	}
	return v.listVal
}

// AsMap returns the map value. Panics if not a map.
func (v Value) AsMap() *OrderedMap {
	if v.typ != TypeMap {
		panic(fmt.Sprintf("AsMap called on %s value", v.typ))
	}
	return v.mapVal
}

// AsDeferred returns the wrapped expression node. Panics if not deferred.
func (v Value) AsDeferred() Deferred {
	if v.typ != TypeDeferred {
		panic(fmt.Sprintf("AsDeferred called on %s value", v.typ))
	}
	return v.deferredVal
}

// Number returns the numeric value and whether the value is a number.
func (v Value) Number() (float64, bool) {
	if v.typ == TypeNumber {
		return v.numberVal, true
	}
	return 0, false
}

// Truthy returns the truthiness of a value.
// null, false, 0, NaN and the empty string are falsy; everything else,
// including empty lists, empty maps and deferred nodes, is truthy.
func (v Value) Truthy() bool {
	switch v.typ {
	case TypeNull:
		return false
	case TypeBool:
		return v.boolVal
	case TypeNumber:
		return v.numberVal != 0 && !math.IsNaN(v.numberVal)
	case TypeString:
		return v.stringVal != ""
	default:
		return true
	}
}

// Clone creates a deep copy of the value.
func (v Value) Clone() Value {
	switch v.typ {
	case TypeList:
		items := make([]Value, len(v.listVal))
		for i, item := range v.listVal {
			items[i] = item.Clone()
		}
		return NewList(items)
	case TypeMap:
		return NewMap(v.mapVal.Clone())
	default:
		return v // scalars and deferred nodes are value-copied
	}
}

// Equal tests strict deep equality between two values. No type coercion:
// values of different types are never equal.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeNull:
		return true
	case TypeBool:
		return v.boolVal == other.boolVal
	case TypeNumber:
		return v.numberVal == other.numberVal
	case TypeString:
		return v.stringVal == other.stringVal
	case TypeDeferred:
		return v.deferredVal == other.deferredVal
	case TypeList:
		if len(v.listVal) != len(other.listVal) {
			return false
		}
		for i := range v.listVal {
			if !v.listVal[i].Equal(other.listVal[i]) {
				return false
			}
		}
		return true
	case TypeMap:
		if v.mapVal.Len() != other.mapVal.Len() {
			return false
		}
		for _, k := range v.mapVal.Keys() {
			ov, ok := other.mapVal.Get(k)
			if !ok {
				return false
			}
			mv, _ := v.mapVal.Get(k)
			if !mv.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// formatNumber renders a number the way the style language stringifies it:
// integral values print without a fraction.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// String returns a human-readable representation of the value.
func (v Value) String() string {
	switch v.typ {
	case TypeNull:
		return "null"
	case TypeBool:
		if v.boolVal {
			return "true"
		}
		return "false"
	case TypeNumber:
		return formatNumber(v.numberVal)
	case TypeString:
		return v.stringVal
	case TypeDeferred:
		return "<deferred>"
	case TypeList:
		parts := make([]string, len(v.listVal))
		for i, item := range v.listVal {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case TypeMap:
		parts := make([]string, 0, v.mapVal.Len())
		for _, k := range v.mapVal.Keys() {
			val, _ := v.mapVal.Get(k)
			parts = append(parts, fmt.Sprintf("%s: %s", k, val.String()))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "<unknown>"
}

// MarshalJSON converts a Value to JSON. A deferred value marshals to its
// expression's JSON array form when the node supports it, otherwise null.
// Non-finite numbers marshal to null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case TypeNull:
		return []byte("null"), nil
	case TypeBool:
		if v.boolVal {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case TypeNumber:
		if math.IsNaN(v.numberVal) || math.IsInf(v.numberVal, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.numberVal)
	case TypeString:
		return json.Marshal(v.stringVal)
	case TypeDeferred:
		if m, ok := v.deferredVal.(json.Marshaler); ok {
			return m.MarshalJSON()
		}
		return []byte("null"), nil
	case TypeList:
		items := make([]json.RawMessage, len(v.listVal))
		for i, item := range v.listVal {
			b, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			items[i] = b
		}
		return json.Marshal(items)
	case TypeMap:
		// Use ordered iteration
		buf := []byte{'{'}
		for i, k := range v.mapVal.Keys() {
			if i > 0 {
				buf = append(buf, ',')
			}
			keyBytes, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf = append(buf, keyBytes...)
			buf = append(buf, ':')
			val, _ := v.mapVal.Get(k)
			valBytes, err := val.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf = append(buf, valBytes...)
		}
		buf = append(buf, '}')
		return buf, nil
	}
	return nil, fmt.Errorf("cannot marshal unknown type %d", v.typ)
}

// FromGo converts a plain Go value (as produced by encoding/json or yaml.v3
// unmarshaling into interface{}) into a Value.
func FromGo(v interface{}) Value {
	if v == nil {
		return Null
	}
	switch val := v.(type) {
	case Value:
		return val
	case bool:
		return NewBool(val)
	case int:
		return NewNumber(float64(val))
	case int64:
		return NewNumber(float64(val))
	case uint64:
		return NewNumber(float64(val))
	case float64:
		return NewNumber(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return NewNumber(f)
		}
		return NewString(val.String())
	case string:
		return NewString(val)
	case []interface{}:
		items := make([]Value, len(val))
		for i, item := range val {
			items[i] = FromGo(item)
		}
		return NewList(items)
	case map[string]interface{}:
		m := NewOrderedMap()
		// Go maps don't have guaranteed order, sort keys for determinism
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			m.Set(k, FromGo(val[k]))
		}
		return NewMap(m)
	default:
		return NewString(fmt.Sprintf("%v", val))
	}
}

// ToGoValue converts a Value to a plain Go interface{} suitable for JSON
// marshaling. Deferred values convert to nil.
func (v Value) ToGoValue() interface{} {
	switch v.typ {
	case TypeBool:
		return v.boolVal
	case TypeNumber:
		return v.numberVal
	case TypeString:
		return v.stringVal
	case TypeList:
		result := make([]interface{}, len(v.listVal))
		for i, item := range v.listVal {
			result[i] = item.ToGoValue()
		}
		return result
	case TypeMap:
		result := make(map[string]interface{}, v.mapVal.Len())
		for _, k := range v.mapVal.Keys() {
			val, _ := v.mapVal.Get(k)
			result[k] = val.ToGoValue()
		}
		return result
	}
	return nil
}
