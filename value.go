package shape

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
)

// Kind is the shape of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is an untyped document node: Null, Bool, Number, String, Array or Map.
//
// Values are immutable once built. Numbers keep the text they were decoded
// from so that integers which do not fit a float64 are not rounded. The zero
// Value is Null.
type Value struct {
	kind Kind
	b    bool
	s    string // String contents, or the number's text
	arr  []Value
	m    map[string]Value
}

func Null() Value {
	return Value{}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Number builds a Number from f. It panics if f is NaN or infinite, since
// neither has a JSON form; FromAny reports them as ErrInvalidDocument.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		panic(fmt.Sprintf("shape: non-finite number %v", f))
	}
	return Value{kind: KindNumber, s: strconv.FormatFloat(f, 'f', -1, 64)}
}

func finiteNumber(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("%w: non-finite number %v", ErrInvalidDocument, f)
	}
	return Number(f), nil
}

// NumberText builds a Number from its decimal text. The text is not
// validated; Float and Int report malformed text when read.
func NumberText(text string) Value {
	return Value{kind: KindNumber, s: text}
}

func String(s string) Value {
	return Value{kind: KindString, s: s}
}

func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

func Map(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindMap, m: m}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// Text returns the raw text of a Number.
func (v Value) Text() (string, bool) {
	return v.s, v.kind == KindNumber
}

func (v Value) Float() (float64, error) {
	if v.kind != KindNumber {
		return 0, fmt.Errorf("expected number, got %s", v.kind)
	}
	return strconv.ParseFloat(v.s, 64)
}

// Int returns a Number as an int64. Fractional numbers are truncated toward
// zero; numbers outside the int64 range fail.
func (v Value) Int() (int64, error) {
	if v.kind != KindNumber {
		return 0, fmt.Errorf("expected number, got %s", v.kind)
	}
	if i, err := strconv.ParseInt(v.s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(v.s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("number %s overflows int64", v.s)
	}
	return int64(f), nil
}

// AsArray returns the elements of an Array. The slice must not be modified.
func (v Value) AsArray() ([]Value, bool) {
	return v.arr, v.kind == KindArray
}

// AsMap returns the entries of a Map. The map must not be modified.
func (v Value) AsMap() (map[string]Value, bool) {
	return v.m, v.kind == KindMap
}

// Get looks up key in a Map. It reports false for non-Map values.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	child, ok := v.m[key]
	return child, ok
}

// Len is the number of elements of an Array or entries of a Map.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindMap:
		return len(v.m)
	default:
		return 0
	}
}

// Keys returns the keys of a Map in sorted order.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Interface converts v to a native Go tree made of nil, bool, float64,
// string, []any and map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		f, err := strconv.ParseFloat(v.s, 64)
		if err != nil {
			return v.s
		}
		return f
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, item := range v.m {
			out[k] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// Equal reports whether v and o are the same document. Numbers compare by
// value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		if v.s == o.s {
			return true
		}
		a, errA := v.Float()
		b, errB := o.Float()
		return errA == nil && errB == nil && a == b
	case KindString:
		return v.s == o.s
	case KindArray:
		return slices.EqualFunc(v.arr, o.arr, Value.Equal)
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, item := range v.m {
			other, ok := o.m[k]
			if !ok || !item.Equal(other) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON renders v as compact JSON with map keys sorted.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		buf.WriteString(v.s)
	case KindString:
		enc, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(enc)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			enc, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(enc)
			buf.WriteByte(':')
			if err := v.m[k].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func (v Value) String() string {
	out, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s: %v>", v.kind, err)
	}
	return string(out)
}

// FromAny builds a Value from a native Go tree such as the output of
// encoding/json or a literal map. Supported leaves are nil, bools, strings,
// every integer and float type, json.Number and Value itself; containers are
// slices/arrays and maps keyed by string.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return NumberText(t.String()), nil
	case float64:
		return finiteNumber(t)
	case float32:
		return finiteNumber(float64(t))
	case int:
		return NumberText(strconv.FormatInt(int64(t), 10)), nil
	case int64:
		return NumberText(strconv.FormatInt(t, 10)), nil
	case uint64:
		return NumberText(strconv.FormatUint(t, 10)), nil
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			val, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = val
		}
		return Array(items...), nil
	case map[string]any:
		entries := make(map[string]Value, len(t))
		for k, item := range t {
			val, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			entries[k] = val
		}
		return Map(entries), nil
	}

	return fromReflect(reflect.ValueOf(x))
}

func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return FromAny(rv.Elem().Interface())
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NumberText(strconv.FormatInt(rv.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return NumberText(strconv.FormatUint(rv.Uint(), 10)), nil
	case reflect.Float32, reflect.Float64:
		return finiteNumber(rv.Float())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null(), nil
		}
		items := make([]Value, rv.Len())
		for i := range items {
			val, err := FromAny(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = val
		}
		return Array(items...), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, fmt.Errorf("%w: map key type %s is not string", ErrInvalidDocument, rv.Type().Key())
		}
		if rv.IsNil() {
			return Null(), nil
		}
		entries := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			val, err := FromAny(iter.Value().Interface())
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", iter.Key().String(), err)
			}
			entries[iter.Key().String()] = val
		}
		return Map(entries), nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported Go type %s", ErrInvalidDocument, rv.Type())
	}
}

// MustFromAny is FromAny for literals known to be valid. It panics on error.
func MustFromAny(x any) Value {
	v, err := FromAny(x)
	if err != nil {
		panic(err)
	}
	return v
}
