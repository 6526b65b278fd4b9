package shape

import (
	"fmt"
	"strconv"
)

// TransformKind identifies the variant held by a Transform.
type TransformKind uint8

const (
	TransformIdentity TransformKind = iota
	TransformCast
	TransformFunc
	TransformNested
	TransformNestedList
	TransformNestedMap
)

func (k TransformKind) String() string {
	switch k {
	case TransformIdentity:
		return "identity"
	case TransformCast:
		return "cast"
	case TransformFunc:
		return "func"
	case TransformNested:
		return "nested"
	case TransformNestedList:
		return "nested-list"
	case TransformNestedMap:
		return "nested-map"
	default:
		return "TransformKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Transform is how a present source value becomes a field value. It is
// chosen when a schema is declared:
//
//   - Identity: the Value is assigned as is (converted to the field's type).
//   - Cast: the Value is coerced to a primitive, see PrimitiveKind.
//   - Func: an arbitrary conversion; a returned error is a type coercion
//     failure.
//   - Nested: the Value must be a Map and is parsed with another schema.
//   - NestedList: the Value must be an Array of Maps, each parsed in order.
//   - NestedMap: the Value must be a Map of Maps, each parsed under its key.
//
// The zero Transform is Identity.
type Transform struct {
	kind TransformKind
	cast PrimitiveKind
	fn   func(Value) (any, error)
	sub  AnySchema
}

func Identity() Transform {
	return Transform{kind: TransformIdentity}
}

func Cast(kind PrimitiveKind) Transform {
	return Transform{kind: TransformCast, cast: kind}
}

// Func wraps fn as a Transform. Returning a nil result marks the field as
// absent, so its default applies.
func Func(fn func(Value) (any, error)) Transform {
	return Transform{kind: TransformFunc, fn: fn}
}

// FuncOf wraps a typed conversion as a Transform.
func FuncOf[T any](fn func(Value) (T, error)) Transform {
	return Func(func(v Value) (any, error) {
		out, err := fn(v)
		if err != nil {
			return nil, err
		}
		return out, nil
	})
}

func Nested(schema AnySchema) Transform {
	return Transform{kind: TransformNested, sub: schema}
}

func NestedList(schema AnySchema) Transform {
	return Transform{kind: TransformNestedList, sub: schema}
}

func NestedMap(schema AnySchema) Transform {
	return Transform{kind: TransformNestedMap, sub: schema}
}

func (t Transform) Kind() TransformKind { return t.kind }

// Schema returns the sub-schema of a nested Transform, or nil.
func (t Transform) Schema() AnySchema { return t.sub }

func (t Transform) String() string {
	switch t.kind {
	case TransformCast:
		return "cast(" + t.cast.String() + ")"
	case TransformNested, TransformNestedList, TransformNestedMap:
		if t.sub != nil {
			return t.kind.String() + "(" + t.sub.TypeName() + ")"
		}
	}
	return t.kind.String()
}

func (t Transform) validate() error {
	switch t.kind {
	case TransformIdentity:
		return nil
	case TransformCast:
		if t.cast > castLast {
			return fmt.Errorf("unknown primitive kind %d", t.cast)
		}
		return nil
	case TransformFunc:
		if t.fn == nil {
			return fmt.Errorf("func transform without a function")
		}
		return nil
	case TransformNested, TransformNestedList, TransformNestedMap:
		if t.sub == nil {
			return fmt.Errorf("%s transform without a schema", t.kind)
		}
		return nil
	default:
		return fmt.Errorf("unknown transform kind %d", t.kind)
	}
}

// apply runs the transform on a present value. A nil result means the
// transform erased the value.
func (t Transform) apply(d *Deserializer, typeName string, spec *FieldSpec, v Value) (any, error) {
	switch t.kind {
	case TransformIdentity:
		return v, nil

	case TransformCast:
		out, err := castValue(t.cast, v)
		if err != nil {
			return nil, coercionError(typeName, spec, err)
		}
		return out, nil

	case TransformFunc:
		out, err := t.fn(v)
		if err != nil {
			return nil, coercionError(typeName, spec, err)
		}
		return out, nil

	case TransformNested:
		if v.Kind() != KindMap {
			return nil, structuralError(typeName, spec,
				fmt.Errorf("expected map for %s, got %s", t.sub.TypeName(), v.Kind()))
		}
		return t.sub.decodeValue(d, v)

	case TransformNestedList:
		items, ok := v.AsArray()
		if !ok {
			return nil, structuralError(typeName, spec,
				fmt.Errorf("expected array of %s, got %s", t.sub.TypeName(), v.Kind()))
		}
		if d.opts.MaxListLength > 0 && len(items) > d.opts.MaxListLength {
			return nil, structuralError(typeName, spec,
				fmt.Errorf("array of %d elements exceeds limit %d", len(items), d.opts.MaxListLength))
		}
		for i, item := range items {
			if item.Kind() != KindMap {
				return nil, structuralError(typeName, spec,
					fmt.Errorf("element %d: expected map for %s, got %s", i, t.sub.TypeName(), item.Kind()))
			}
		}
		return t.sub.decodeList(d, items)

	case TransformNestedMap:
		entries, ok := v.AsMap()
		if !ok {
			return nil, structuralError(typeName, spec,
				fmt.Errorf("expected map of %s, got %s", t.sub.TypeName(), v.Kind()))
		}
		for _, key := range v.Keys() {
			if entries[key].Kind() != KindMap {
				return nil, structuralError(typeName, spec,
					fmt.Errorf("key %q: expected map for %s, got %s", key, t.sub.TypeName(), entries[key].Kind()))
			}
		}
		return t.sub.decodeMap(d, entries)
	}

	return nil, structuralError(typeName, spec, fmt.Errorf("unknown transform kind %d", t.kind))
}
