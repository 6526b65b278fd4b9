package shape

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// reflect.TypeOf constants for type checks
var (
	ValueType = reflect.TypeOf(Value{})
	TimeType  = reflect.TypeOf(time.Time{})
	UUIDType  = reflect.TypeOf(uuid.UUID{})
)

///////////////////////////////////////////////////////////////////////////////
// Field assignment
///////////////////////////////////////////////////////////////////////////////

// assignField stores a transform result in a record field.
//
// Supported:
//   - Value into a Value field (as is) or any other field (see assignValue)
//   - exact or assignable types
//   - numeric conversions, with overflow and integral checks
//   - pointer fields, allocated on demand
func assignField(field reflect.Value, x any) error {
	if v, ok := x.(Value); ok {
		return assignValue(field, v)
	}
	return assignNative(field, x)
}

// assignValue stores a Value in field. Numbers going into integer fields
// are read from their text so that integers beyond 2^53 keep every digit.
// Arrays and maps are converted element by element the same way.
func assignValue(field reflect.Value, v Value) error {
	if field.Type() == ValueType {
		field.Set(reflect.ValueOf(v))
		return nil
	}
	if v.kind == KindNull {
		field.SetZero()
		return nil
	}

	switch field.Kind() {
	case reflect.Pointer:
		elem := reflect.New(field.Type().Elem())
		if err := assignValue(elem.Elem(), v); err != nil {
			return err
		}
		field.Set(elem)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.kind == KindNumber {
			return assignIntText(field, v.s)
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v.kind == KindNumber {
			return assignUintText(field, v.s)
		}

	case reflect.Slice:
		if v.kind == KindArray {
			out := reflect.MakeSlice(field.Type(), len(v.arr), len(v.arr))
			for i, item := range v.arr {
				if err := assignValue(out.Index(i), item); err != nil {
					return fmt.Errorf("element %d: %w", i, err)
				}
			}
			field.Set(out)
			return nil
		}

	case reflect.Map:
		if v.kind == KindMap && field.Type().Key().Kind() == reflect.String {
			out := reflect.MakeMapWithSize(field.Type(), len(v.m))
			for _, k := range v.Keys() {
				elem := reflect.New(field.Type().Elem()).Elem()
				if err := assignValue(elem, v.m[k]); err != nil {
					return fmt.Errorf("key %q: %w", k, err)
				}
				out.SetMapIndex(reflect.ValueOf(k).Convert(field.Type().Key()), elem)
			}
			field.Set(out)
			return nil
		}
	}

	return assignNative(field, v.Interface())
}

// assignIntText sets an integer field from a number's decimal text.
func assignIntText(field reflect.Value, text string) error {
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(text, 64)
		if ferr != nil && !errors.Is(ferr, strconv.ErrRange) {
			return fmt.Errorf("number %s is not an integer", text)
		}
		if !floatFits(f) {
			return fmt.Errorf("value %s is not an integer", text)
		}
		if f >= 1<<63 || f < -(1<<63) {
			return fmt.Errorf("value %s overflows %s", text, field.Type())
		}
		i = int64(f)
	}
	if field.OverflowInt(i) {
		return fmt.Errorf("value %d overflows %s", i, field.Type())
	}
	field.SetInt(i)
	return nil
}

// assignUintText sets an unsigned field from a number's decimal text.
func assignUintText(field reflect.Value, text string) error {
	u, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(text, 64)
		if ferr != nil && !errors.Is(ferr, strconv.ErrRange) {
			return fmt.Errorf("number %s is not an integer", text)
		}
		if !floatFits(f) || f < 0 {
			return fmt.Errorf("value %s is not an unsigned integer", text)
		}
		if f >= 1<<64 {
			return fmt.Errorf("value %s overflows %s", text, field.Type())
		}
		u = uint64(f)
	}
	if field.OverflowUint(u) {
		return fmt.Errorf("value %d overflows %s", u, field.Type())
	}
	field.SetUint(u)
	return nil
}

// assignNative stores a native Go value in field, converting where the
// conversion cannot lose information.
func assignNative(field reflect.Value, x any) error {
	if x == nil {
		field.SetZero()
		return nil
	}

	src := reflect.ValueOf(x)
	dst := field.Type()

	if src.Type().AssignableTo(dst) {
		field.Set(src)
		return nil
	}

	if dst.Kind() == reflect.Pointer {
		elem := reflect.New(dst.Elem())
		if err := assignNative(elem.Elem(), x); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	if src.Kind() == reflect.Pointer {
		if src.IsNil() {
			field.SetZero()
			return nil
		}
		return assignNative(field, src.Elem().Interface())
	}

	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return assignInt(field, src)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return assignUint(field, src)
	case reflect.Float32, reflect.Float64:
		return assignFloat(field, src)
	case reflect.String:
		if src.Kind() == reflect.String {
			field.SetString(src.String())
			return nil
		}
	case reflect.Bool:
		if src.Kind() == reflect.Bool {
			field.SetBool(src.Bool())
			return nil
		}
	case reflect.Slice:
		return assignSlice(field, src)
	case reflect.Map:
		return assignMap(field, src)
	}

	return fmt.Errorf("cannot assign %s to field of type %s", src.Type(), dst)
}

func numberOf(src reflect.Value) (float64, bool) {
	switch src.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(src.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(src.Uint()), true
	case reflect.Float32, reflect.Float64:
		return src.Float(), true
	}
	return 0, false
}

func assignInt(field reflect.Value, src reflect.Value) error {
	var i int64
	switch src.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i = src.Int()
	default:
		f, ok := numberOf(src)
		if !ok {
			return fmt.Errorf("cannot assign %s to field of type %s", src.Type(), field.Type())
		}
		if !floatFits(f) {
			return fmt.Errorf("value %v is not an integer", f)
		}
		if f >= 1<<63 || f < -(1<<63) {
			return fmt.Errorf("value %v overflows %s", f, field.Type())
		}
		i = int64(f)
	}
	if field.OverflowInt(i) {
		return fmt.Errorf("value %d overflows %s", i, field.Type())
	}
	field.SetInt(i)
	return nil
}

func assignUint(field reflect.Value, src reflect.Value) error {
	f, ok := numberOf(src)
	if !ok {
		return fmt.Errorf("cannot assign %s to field of type %s", src.Type(), field.Type())
	}
	var u uint64
	switch src.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u = src.Uint()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if src.Int() < 0 {
			return fmt.Errorf("value %d is not an unsigned integer", src.Int())
		}
		u = uint64(src.Int())
	default:
		if !floatFits(f) || f < 0 {
			return fmt.Errorf("value %v is not an unsigned integer", f)
		}
		if f >= 1<<64 {
			return fmt.Errorf("value %v overflows %s", f, field.Type())
		}
		u = uint64(f)
	}
	if field.OverflowUint(u) {
		return fmt.Errorf("value %d overflows %s", u, field.Type())
	}
	field.SetUint(u)
	return nil
}

func assignFloat(field reflect.Value, src reflect.Value) error {
	f, ok := numberOf(src)
	if !ok {
		return fmt.Errorf("cannot assign %s to field of type %s", src.Type(), field.Type())
	}
	if field.OverflowFloat(f) {
		return fmt.Errorf("value %f overflows %s", f, field.Type())
	}
	field.SetFloat(f)
	return nil
}

// assignSlice converts element by element, e.g. []any of strings into a
// []string field.
func assignSlice(field reflect.Value, src reflect.Value) error {
	if src.Kind() != reflect.Slice && src.Kind() != reflect.Array {
		return fmt.Errorf("cannot assign %s to field of type %s", src.Type(), field.Type())
	}
	out := reflect.MakeSlice(field.Type(), src.Len(), src.Len())
	for i := 0; i < src.Len(); i++ {
		if err := assignNative(out.Index(i), src.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	field.Set(out)
	return nil
}

func assignMap(field reflect.Value, src reflect.Value) error {
	if src.Kind() != reflect.Map || field.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("cannot assign %s to field of type %s", src.Type(), field.Type())
	}
	out := reflect.MakeMapWithSize(field.Type(), src.Len())
	elem := reflect.New(field.Type().Elem()).Elem()
	iter := src.MapRange()
	for iter.Next() {
		elem.SetZero()
		if err := assignNative(elem, iter.Value().Interface()); err != nil {
			return fmt.Errorf("key %v: %w", iter.Key(), err)
		}
		out.SetMapIndex(reflect.ValueOf(iter.Key().String()).Convert(field.Type().Key()), elem)
	}
	field.Set(out)
	return nil
}

// isNilResult reports whether a transform result counts as null.
func isNilResult(x any) bool {
	if x == nil {
		return true
	}
	if v, ok := x.(Value); ok {
		return v.IsNull()
	}
	rv := reflect.ValueOf(x)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

///////////////////////////////////////////////////////////////////////////////
// String conversion (tag defaults)
///////////////////////////////////////////////////////////////////////////////

// setFieldValue sets a field from its textual form, as found in a
// `default:'...'` subtag.
//
// Currently supports:
//   - string, bool, every int/uint/float kind (with overflow checking)
//   - uuid.UUID and time.Time
//   - []byte, and []string from a comma separated list
//   - shape.Value, from JSON text
//   - encoding.TextUnmarshaler
//   - pointers to any of the above
func setFieldValue(field reflect.Value, value string) error {
	if field.Kind() == reflect.Pointer {
		ptr := reflect.New(field.Type().Elem())
		if err := setFieldValue(ptr.Elem(), value); err != nil {
			return err
		}
		field.Set(ptr)
		return nil
	}

	if field.Type() == ValueType {
		v, err := DecodeJSONString(value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(v))
		return nil
	}

	if field.Kind() == reflect.Struct && isSpecialStructType(field.Type()) {
		return setStructValue(field, value)
	}

	if field.CanAddr() {
		if unmarshaler, ok := field.Addr().Interface().(encoding.TextUnmarshaler); ok {
			return unmarshaler.UnmarshalText([]byte(value))
		}
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return setIntValue(field, value)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return setUintValue(field, value)
	case reflect.Float32, reflect.Float64:
		return setFloatValue(field, value)
	case reflect.Bool:
		b, err := parseBoolText(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
		return nil
	case reflect.Slice:
		return setSliceValue(field, value)
	case reflect.Struct:
		return setStructValue(field, value)
	case reflect.Interface:
		if field.NumMethod() != 0 {
			return fmt.Errorf("cannot set value for interface with methods: %s", field.Type())
		}
		field.Set(reflect.ValueOf(value))
		return nil
	default:
		return fmt.Errorf("unsupported field type: %s", field.Type())
	}
}

// setIntValue sets integer field values with overflow checking
func setIntValue(field reflect.Value, value string) error {
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("error converting value to int: %w", err)
	}
	if field.OverflowInt(intValue) {
		return fmt.Errorf("value %d overflows %s", intValue, field.Type().Name())
	}
	field.SetInt(intValue)
	return nil
}

// setUintValue sets unsigned integer field values with overflow checking
func setUintValue(field reflect.Value, value string) error {
	uintValue, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return fmt.Errorf("error converting value to uint: %w", err)
	}
	if field.OverflowUint(uintValue) {
		return fmt.Errorf("value %d overflows %s", uintValue, field.Type().Name())
	}
	field.SetUint(uintValue)
	return nil
}

// setFloatValue sets float field values with overflow checking
func setFloatValue(field reflect.Value, value string) error {
	floatValue, err := strconv.ParseFloat(value, field.Type().Bits())
	if err != nil {
		return fmt.Errorf("error converting value to float: %w", err)
	}
	if field.OverflowFloat(floatValue) {
		return fmt.Errorf("value %f overflows %s", floatValue, field.Type().Name())
	}
	field.SetFloat(floatValue)
	return nil
}

func setSliceValue(field reflect.Value, value string) error {
	if strings.TrimSpace(value) == "" && field.Type().Elem().Kind() != reflect.Uint8 {
		field.Set(reflect.MakeSlice(field.Type(), 0, 0))
		return nil
	}
	switch field.Type().Elem().Kind() {
	case reflect.Uint8:
		field.SetBytes([]byte(value))
		return nil
	case reflect.String:
		parts := splitList(value)
		out := reflect.MakeSlice(field.Type(), len(parts), len(parts))
		for i, p := range parts {
			out.Index(i).SetString(p)
		}
		field.Set(out)
		return nil
	default:
		return fmt.Errorf("unsupported slice type: %s", field.Type())
	}
}

// setStructValue handles the struct types treated as primitives.
func setStructValue(field reflect.Value, value string) error {
	switch field.Type() {
	case UUIDType:
		id, err := uuid.Parse(value)
		if err != nil {
			return fmt.Errorf("error converting value to UUID: %w", err)
		}
		field.Set(reflect.ValueOf(id))
		return nil
	case TimeType:
		t, err := ParseISO8601(value)
		if err != nil {
			return fmt.Errorf("error converting value to time.Time: %w", err)
		}
		field.Set(reflect.ValueOf(t))
		return nil
	}
	return fmt.Errorf("unsupported struct type: %s", field.Type())
}

// isSpecialStructType checks if a struct type should be treated as a
// primitive rather than a record. Special types include time.Time,
// uuid.UUID and Value.
func isSpecialStructType(t reflect.Type) bool {
	switch t {
	case TimeType, UUIDType, ValueType:
		return true
	}
	return false
}
