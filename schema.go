package shape

import (
	"fmt"
	"reflect"
	"slices"
)

// AnySchema is a schema with its record type erased. It lets schemas of
// different record types be nested in one another and kept in a
// SchemaRegistry. Only this package implements it.
type AnySchema interface {
	TypeName() string
	RecordType() reflect.Type
	Fields() []FieldSpec

	decodeValue(d *Deserializer, doc Value) (any, error)
	decodeList(d *Deserializer, docs []Value) (any, error)
	decodeMap(d *Deserializer, docs map[string]Value) (any, error)
}

// Schema is an ordered set of FieldSpecs bound to the record struct R.
//
// A Schema is immutable once built and may be shared between goroutines.
// Since a Schema has to exist before another one can nest it, schema graphs
// are always finite.
type Schema[R any] struct {
	core *schemaCore
}

var _ AnySchema = (*Schema[struct{}])(nil)

// NewSchema binds fields to the struct type R. Every FieldSpec is checked
// here: the target must be an exported field of R, the path must be
// non-empty and a default must be assignable to the target field. An empty
// typeName defaults to the Go type name of R.
func NewSchema[R any](typeName string, fields ...FieldSpec) (*Schema[R], error) {
	core, err := newSchemaCore(reflect.TypeOf((*R)(nil)).Elem(), typeName, fields)
	if err != nil {
		return nil, err
	}
	return &Schema[R]{core: core}, nil
}

// MustSchema is NewSchema for package-level declarations. It panics if the
// schema is invalid.
func MustSchema[R any](typeName string, fields ...FieldSpec) *Schema[R] {
	schema, err := NewSchema[R](typeName, fields...)
	if err != nil {
		panic(err)
	}
	return schema
}

func (s *Schema[R]) TypeName() string         { return s.core.typeName }
func (s *Schema[R]) RecordType() reflect.Type { return s.core.recordType }
func (s *Schema[R]) Fields() []FieldSpec      { return s.core.specs() }

func (s *Schema[R]) parse(d *Deserializer, doc Value) (R, error) {
	var rec R
	if err := s.core.parseInto(d, doc, reflect.ValueOf(&rec).Elem()); err != nil {
		var zero R
		return zero, err
	}
	return rec, nil
}

func (s *Schema[R]) parseList(d *Deserializer, docs []Value) ([]R, error) {
	recs := make([]R, len(docs))
	for i, doc := range docs {
		if err := s.core.parseInto(d, doc, reflect.ValueOf(&recs[i]).Elem()); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

func (s *Schema[R]) parseMap(d *Deserializer, docs map[string]Value) (map[string]R, error) {
	recs := make(map[string]R, len(docs))
	for _, k := range sortedKeys(docs) {
		rec, err := s.parse(d, docs[k])
		if err != nil {
			return nil, err
		}
		recs[k] = rec
	}
	return recs, nil
}

func (s *Schema[R]) decodeValue(d *Deserializer, doc Value) (any, error) {
	return s.parse(d, doc)
}

func (s *Schema[R]) decodeList(d *Deserializer, docs []Value) (any, error) {
	return s.parseList(d, docs)
}

func (s *Schema[R]) decodeMap(d *Deserializer, docs map[string]Value) (any, error) {
	return s.parseMap(d, docs)
}

///////////////////////////////////////////////////////////////////////////////
// Dynamic schemas
///////////////////////////////////////////////////////////////////////////////

// dynamicSchema is a schema whose record type is only known as a
// reflect.Type, as for the nested types reached by SchemaFromTags. Its
// results have the same concrete Go types as a Schema[R] would produce.
type dynamicSchema struct {
	core *schemaCore
}

func (s *dynamicSchema) TypeName() string         { return s.core.typeName }
func (s *dynamicSchema) RecordType() reflect.Type { return s.core.recordType }
func (s *dynamicSchema) Fields() []FieldSpec      { return s.core.specs() }

func (s *dynamicSchema) decodeValue(d *Deserializer, doc Value) (any, error) {
	rec := reflect.New(s.core.recordType).Elem()
	if err := s.core.parseInto(d, doc, rec); err != nil {
		return nil, err
	}
	return rec.Interface(), nil
}

func (s *dynamicSchema) decodeList(d *Deserializer, docs []Value) (any, error) {
	recs := reflect.MakeSlice(reflect.SliceOf(s.core.recordType), len(docs), len(docs))
	for i, doc := range docs {
		if err := s.core.parseInto(d, doc, recs.Index(i)); err != nil {
			return nil, err
		}
	}
	return recs.Interface(), nil
}

func (s *dynamicSchema) decodeMap(d *Deserializer, docs map[string]Value) (any, error) {
	recs := reflect.MakeMapWithSize(reflect.MapOf(StringType, s.core.recordType), len(docs))
	for _, k := range sortedKeys(docs) {
		rec := reflect.New(s.core.recordType).Elem()
		if err := s.core.parseInto(d, docs[k], rec); err != nil {
			return nil, err
		}
		recs.SetMapIndex(reflect.ValueOf(k), rec)
	}
	return recs.Interface(), nil
}

///////////////////////////////////////////////////////////////////////////////
// Core
///////////////////////////////////////////////////////////////////////////////

// schemaCore is the record-type independent part of a schema: the field
// specs resolved against the struct layout.
type schemaCore struct {
	typeName   string
	recordType reflect.Type
	fields     []boundField
	rawIndex   []int // index of an embedded Raw, nil when the record has none
}

// boundField is a FieldSpec resolved against the record struct.
type boundField struct {
	spec  FieldSpec
	index []int
	def   reflect.Value // converted default, invalid when the zero value applies
}

func newSchemaCore(typ reflect.Type, typeName string, fields []FieldSpec) (*schemaCore, error) {
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s: record type must be a struct, got %s", ErrInvalidSchema, typeName, typ)
	}
	if typeName == "" {
		typeName = typ.Name()
	}

	core := &schemaCore{
		typeName:   typeName,
		recordType: typ,
		fields:     make([]boundField, 0, len(fields)),
		rawIndex:   findRawIndex(typ),
	}

	seen := make(map[string]bool, len(fields))
	for _, spec := range fields {
		bound, err := bindField(typ, spec)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSchema, typeName, err)
		}
		if seen[spec.Target] {
			return nil, fmt.Errorf("%w: %s: field %s declared twice", ErrInvalidSchema, typeName, spec.Target)
		}
		seen[spec.Target] = true
		core.fields = append(core.fields, bound)
	}

	return core, nil
}

func bindField(typ reflect.Type, spec FieldSpec) (boundField, error) {
	if err := spec.validate(); err != nil {
		return boundField{}, err
	}

	sf, ok := typ.FieldByName(spec.Target)
	if !ok {
		return boundField{}, fmt.Errorf("field %s: no such field in %s", spec.Target, typ)
	}
	if !sf.IsExported() {
		return boundField{}, fmt.Errorf("field %s: not exported", spec.Target)
	}
	for i := 1; i < len(sf.Index); i++ {
		if typ.FieldByIndex(sf.Index[:i]).Type.Kind() == reflect.Pointer {
			return boundField{}, fmt.Errorf("field %s: promoted through an embedded pointer", spec.Target)
		}
	}

	bound := boundField{spec: spec, index: sf.Index}
	if spec.Default != nil {
		def := reflect.New(sf.Type).Elem()
		if err := assignField(def, spec.Default); err != nil {
			return boundField{}, fmt.Errorf("field %s: bad default: %w", spec.Target, err)
		}
		bound.def = def
	}
	return bound, nil
}

func findRawIndex(typ reflect.Type) []int {
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if sf.Anonymous && sf.Type == rawType {
			return sf.Index
		}
	}
	return nil
}

func (c *schemaCore) specs() []FieldSpec {
	out := make([]FieldSpec, len(c.fields))
	for i, f := range c.fields {
		out[i] = f.spec
		out[i].Path = slices.Clone(f.spec.Path)
	}
	return out
}

// parseInto resolves every field against doc, in declaration order, and
// writes the record into dest. dest is left untouched on failure.
func (c *schemaCore) parseInto(d *Deserializer, doc Value, dest reflect.Value) error {
	rec := reflect.New(c.recordType).Elem()
	var missing []string

	for i := range c.fields {
		bound := &c.fields[i]
		spec := &bound.spec

		var result any
		value, present := spec.Path.resolve(doc)
		if present {
			out, err := spec.Transform.apply(d, c.typeName, spec, value)
			if err != nil {
				return err
			}
			if isNilResult(out) {
				present = false
			} else {
				result = out
			}
		}

		field := rec.FieldByIndex(bound.index)
		if !present {
			if spec.Required {
				missing = append(missing, spec.Target)
				continue
			}
			bound.setDefault(field)
			d.defaulted(c.typeName, spec)
			continue
		}

		if err := assignField(field, result); err != nil {
			return structuralError(c.typeName, spec, err)
		}
	}

	if len(missing) > 0 {
		return missingFieldError(c.typeName, missing)
	}

	if c.rawIndex != nil {
		rec.FieldByIndex(c.rawIndex).Set(reflect.ValueOf(Raw{doc: doc}))
	}
	dest.Set(rec)
	return nil
}

// setDefault stores the field's default, copying slices and maps so records
// never share them.
func (f *boundField) setDefault(field reflect.Value) {
	if !f.def.IsValid() {
		field.SetZero()
		return
	}
	switch f.def.Kind() {
	case reflect.Slice:
		if f.def.IsNil() {
			field.SetZero()
			return
		}
		cp := reflect.MakeSlice(f.def.Type(), f.def.Len(), f.def.Len())
		reflect.Copy(cp, f.def)
		field.Set(cp)
	case reflect.Map:
		if f.def.IsNil() {
			field.SetZero()
			return
		}
		cp := reflect.MakeMapWithSize(f.def.Type(), f.def.Len())
		iter := f.def.MapRange()
		for iter.Next() {
			cp.SetMapIndex(iter.Key(), iter.Value())
		}
		field.Set(cp)
	default:
		field.Set(f.def)
	}
}

func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

///////////////////////////////////////////////////////////////////////////////
// Raw
///////////////////////////////////////////////////////////////////////////////

var rawType = reflect.TypeOf(Raw{})

// Raw keeps the document a record was parsed from. Embed it in a record
// struct and the deserializer fills it in, e.g. to print the record back as
// JSON.
type Raw struct {
	doc Value
}

// Document returns the source document, Null if none was recorded.
func (r Raw) Document() Value {
	return r.doc
}
