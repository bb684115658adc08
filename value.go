package argus

import (
	"math"
	"sort"
)

// valueKind identifies the variant held by a Value.
type valueKind uint8

const (
	kindNull valueKind = iota
	kindString
	kindInt
	kindFloat
	kindBool
	kindList
	kindMap
)

// Value is a loggable value: one of string, integer, float, boolean, null,
// a sequence of values, or an ordered mapping of string keys to values.
// Anything outside this closed set is rejected when a field is set, so a
// record never carries data that cannot be written to the file.
type Value struct {
	kind valueKind
	str  string
	i    int64
	f    float64
	b    bool
	list []Value
	obj  *Fields
}

// coerce converts an arbitrary argument into a Value.
// It returns false for types outside the loggable set and for float values
// that have no JSON representation (NaN, infinities).
func coerce(v any) (Value, bool) {
	switch val := v.(type) {
	case nil:
		return Value{kind: kindNull}, true
	case string:
		return Value{kind: kindString, str: val}, true
	case bool:
		return Value{kind: kindBool, b: val}, true
	case int:
		return Value{kind: kindInt, i: int64(val)}, true
	case int8:
		return Value{kind: kindInt, i: int64(val)}, true
	case int16:
		return Value{kind: kindInt, i: int64(val)}, true
	case int32:
		return Value{kind: kindInt, i: int64(val)}, true
	case int64:
		return Value{kind: kindInt, i: val}, true
	case uint:
		return Value{kind: kindInt, i: int64(val)}, true
	case uint8:
		return Value{kind: kindInt, i: int64(val)}, true
	case uint16:
		return Value{kind: kindInt, i: int64(val)}, true
	case uint32:
		return Value{kind: kindInt, i: int64(val)}, true
	case uint64:
		if val > math.MaxInt64 {
			return Value{kind: kindFloat, f: float64(val)}, true
		}
		return Value{kind: kindInt, i: int64(val)}, true
	case float32:
		return coerceFloat(float64(val))
	case float64:
		return coerceFloat(val)
	case Value:
		return val, true
	case *Fields:
		if val == nil {
			return Value{kind: kindNull}, true
		}
		return Value{kind: kindMap, obj: val}, true
	case map[string]any:
		return coerceStringMap(val)
	case []any:
		list := make([]Value, 0, len(val))
		for _, elem := range val {
			// Elements that cannot be represented are dropped, the
			// rest of the sequence is kept.
			if cv, ok := coerce(elem); ok {
				list = append(list, cv)
			}
		}
		return Value{kind: kindList, list: list}, true
	case []string:
		list := make([]Value, 0, len(val))
		for _, elem := range val {
			list = append(list, Value{kind: kindString, str: elem})
		}
		return Value{kind: kindList, list: list}, true
	case []int:
		list := make([]Value, 0, len(val))
		for _, elem := range val {
			list = append(list, Value{kind: kindInt, i: int64(elem)})
		}
		return Value{kind: kindList, list: list}, true
	default:
		return Value{}, false
	}
}

func coerceFloat(f float64) (Value, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, false
	}
	return Value{kind: kindFloat, f: f}, true
}

// coerceStringMap builds an ordered mapping from a plain Go map.
// Map iteration order is unstable, so keys are sorted to keep output
// deterministic. Non-representable values are dropped per key.
func coerceStringMap(m map[string]any) (Value, bool) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f := NewFields()
	for _, k := range keys {
		f.Set(k, m[k])
	}
	return Value{kind: kindMap, obj: f}, true
}

// namedValue is one key/value pair of a Fields mapping.
type namedValue struct {
	key string
	val Value
}

// Fields is an insertion-ordered mapping of string keys to loggable values.
// Setting an existing key replaces its value without changing its position.
type Fields struct {
	fields []namedValue
}

// NewFields returns an empty ordered mapping.
func NewFields() *Fields {
	return &Fields{}
}

// Set coerces v and stores it under key. It returns false and leaves the
// mapping unchanged when v is outside the loggable value set; the caller's
// record is still written without that key.
func (f *Fields) Set(key string, v any) bool {
	cv, ok := coerce(v)
	if !ok {
		return false
	}
	f.setValue(key, cv)
	return true
}

func (f *Fields) setValue(key string, v Value) {
	for i := range f.fields {
		if f.fields[i].key == key {
			f.fields[i].val = v
			return
		}
	}
	f.fields = append(f.fields, namedValue{key: key, val: v})
}

// Get returns the value stored under key.
func (f *Fields) Get(key string) (Value, bool) {
	for i := range f.fields {
		if f.fields[i].key == key {
			return f.fields[i].val, true
		}
	}
	return Value{}, false
}

// Len reports the number of keys in the mapping.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.fields)
}

// fieldsFromPairs builds a Fields mapping from alternating key/value
// arguments. Pairs with a non-string key, a dangling final key, and values
// outside the loggable set are dropped silently, keeping the remainder.
func fieldsFromPairs(kv []any) *Fields {
	f := NewFields()
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		f.Set(key, kv[i+1])
	}
	return f
}
