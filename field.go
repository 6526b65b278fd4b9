package shape

import (
	"fmt"
	"strings"
)

// Path is the sequence of map keys leading from a document to a field's
// source value. A one-element Path is a top-level key.
type Path []string

// P builds a Path.
func P(keys ...string) Path {
	return Path(keys)
}

func (p Path) String() string {
	return strings.Join(p, "/")
}

func (p Path) validate() error {
	if len(p) == 0 {
		return fmt.Errorf("source path is empty")
	}
	for i, key := range p {
		if key == "" {
			return fmt.Errorf("source path %q has an empty key at position %d", p.String(), i)
		}
	}
	return nil
}

// resolve walks doc along p. It reports false when a step is not a Map, a
// key is missing, or the final value is Null.
func (p Path) resolve(doc Value) (Value, bool) {
	cur := doc
	for _, key := range p {
		next, ok := cur.Get(key)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	if cur.IsNull() {
		return Value{}, false
	}
	return cur, true
}

// FieldSpec declares how one record field is extracted from a document.
//
// Target is the name of an exported field of the record struct. A field is
// either Required, in which case Default must be nil, or optional, in which
// case Default is used when the source is absent. A nil Default on an
// optional field stands for the target field's zero value.
type FieldSpec struct {
	Target    string
	Path      Path
	Transform Transform
	Required  bool
	Default   any
}

// Required declares a field whose absence fails the parse.
func Required(target string, path Path, transform Transform) FieldSpec {
	return FieldSpec{
		Target:    target,
		Path:      path,
		Transform: transform,
		Required:  true,
	}
}

// Optional declares a field that falls back to its zero value.
func Optional(target string, path Path, transform Transform) FieldSpec {
	return FieldSpec{
		Target:    target,
		Path:      path,
		Transform: transform,
	}
}

// WithDefault declares a field that falls back to def.
func WithDefault(target string, path Path, transform Transform, def any) FieldSpec {
	return FieldSpec{
		Target:    target,
		Path:      path,
		Transform: transform,
		Default:   def,
	}
}

func (fs FieldSpec) validate() error {
	if fs.Target == "" {
		return fmt.Errorf("field spec has no target")
	}
	if err := fs.Path.validate(); err != nil {
		return fmt.Errorf("field %s: %w", fs.Target, err)
	}
	if fs.Required && fs.Default != nil {
		return fmt.Errorf("field %s: required fields cannot have a default", fs.Target)
	}
	if err := fs.Transform.validate(); err != nil {
		return fmt.Errorf("field %s: %w", fs.Target, err)
	}
	return nil
}
