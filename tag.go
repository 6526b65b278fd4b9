package shape

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Base Error types for tag parsing errors
var (
	ErrUnknownSubTag       = errors.New("unknown subtag")
	ErrUnterminatedSubTag  = errors.New("unterminated subtag value")
	ErrNoPathSubTag        = errors.New("no path subtag in tag")
	ErrUnallowedModifier   = errors.New("path modifier is not allowed")
	ErrInvalidRecurseValue = errors.New("recurse must be one, list or map")
	ErrDuplicateSubTag     = errors.New("duplicate subtag")
	ErrSubTagNotFound      = errors.New("subtag not found")
)

// This file contains the struct tag reader behind SchemaFromTags. It
// supports all tags in the following grammar:
//
// Tag grammar:
//     <field> <type> `shape:"<subtag_list>"`
//
// subtag_list:
//     [<subtag>]^* // Space Separated
// subtag:
//     <subtag_name>:'<subtag_value>' | <subtag_name>:<bare_value>
//
// subtag_name:
//     path | default | cast | recurse
//
// path value:
//     <key>[/<key>]^*[,<modifier>]^*
// modifier:
//     required | optional
// default value:
//     <literal in the field's textual form>
// cast value:
//     string | int | float | bool | uuid | time
// recurse value:
//     one | list | map
//
// Inside a quoted value, a backslash escapes the next character, so keys
// may contain the delimiter: path:'it\'s'.

// Tag is the decoded form of a `shape` struct tag.
type Tag struct {
	Path       Path
	Required   bool
	Optional   bool
	HasDefault bool
	Default    string
	Cast       string
	Recurse    string
}

// DecodeTag parses the value of a `shape` struct tag.
func DecodeTag(tag string) (Tag, error) {
	subtags, err := SubTags(tag)
	if err != nil {
		return Tag{}, err
	}

	var out Tag
	for name, value := range subtags {
		switch name {
		case PathSubTag:
			if err := out.decodePath(value); err != nil {
				return Tag{}, err
			}
		case DefaultSubTag:
			out.HasDefault = true
			out.Default = value
		case CastSubTag:
			out.Cast = value
		case RecurseSubTag:
			switch value {
			case RecurseOne, RecurseList, RecurseMap:
				out.Recurse = value
			default:
				return Tag{}, fmt.Errorf("%w: %q", ErrInvalidRecurseValue, value)
			}
		default:
			return Tag{}, fmt.Errorf("%w: %s", ErrUnknownSubTag, name)
		}
	}

	if out.Path == nil {
		return Tag{}, ErrNoPathSubTag
	}
	if out.Required && (out.Optional || out.HasDefault) {
		return Tag{}, fmt.Errorf("required fields cannot be optional or have a default")
	}
	if out.Cast != "" && out.Recurse != "" {
		return Tag{}, fmt.Errorf("cast and recurse are mutually exclusive")
	}
	return out, nil
}

func (t *Tag) decodePath(value string) error {
	parts := strings.Split(value, PathModifierDelimiter)
	t.Path = Path(strings.Split(parts[0], PathKeyDelimiter))

	for _, modifier := range parts[1:] {
		switch strings.TrimSpace(modifier) {
		case RequiredPathModifier:
			t.Required = true
		case OptionalPathModifier:
			t.Optional = true
		case "":
			// trailing delimiter
		default:
			return fmt.Errorf("%w: %s", ErrUnallowedModifier, modifier)
		}
	}
	return t.Path.validate()
}

// SubTags splits a tag value into its name:value subtags. Values are either
// wrapped in single quotes or run to the next whitespace.
func SubTags(tag string) (map[string]string, error) {
	return SubTagsByDelimiter(tag, SubTagScopeDelimiter)
}

func SubTagsByDelimiter(tag string, delim byte) (map[string]string, error) {
	result := make(map[string]string)

	i := 0
	for i < len(tag) {
		// Skip whitespace
		for i < len(tag) && isTagSpace(tag[i]) {
			i++
		}
		if i >= len(tag) {
			break
		}

		colonIdx := strings.Index(tag[i:], SubTagKeyValueDelimiter)
		if colonIdx == -1 {
			return nil, fmt.Errorf("subtag %q has no value", strings.TrimSpace(tag[i:]))
		}
		key := strings.TrimSpace(tag[i : i+colonIdx])
		if key == "" || strings.ContainsAny(key, " \t") {
			return nil, fmt.Errorf("malformed subtag name %q", key)
		}
		if _, exists := result[key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSubTag, key)
		}
		i += colonIdx + 1

		if i < len(tag) && tag[i] == delim {
			value, next, err := scanDelimited(tag, i+1, delim)
			if err != nil {
				return nil, fmt.Errorf("%w for %q", err, key)
			}
			result[key] = value
			i = next
			continue
		}

		start := i
		for i < len(tag) && !isTagSpace(tag[i]) {
			i++
		}
		result[key] = tag[start:i]
	}

	return result, nil
}

// SubTag returns the value of a single subtag.
func SubTag(tag string, key string) (string, error) {
	subtags, err := SubTags(tag)
	if err != nil {
		return "", err
	}
	value, ok := subtags[key]
	if !ok {
		return "", ErrSubTagNotFound
	}
	return value, nil
}

// scanDelimited reads a quoted value starting after the opening delimiter
// and returns it unescaped along with the index past the closing delimiter.
func scanDelimited(tag string, start int, delim byte) (string, int, error) {
	var builder strings.Builder
	escaped := false

	for j := start; j < len(tag); j++ {
		c := tag[j]
		switch {
		case escaped:
			builder.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == delim:
			return builder.String(), j + 1, nil
		default:
			builder.WriteByte(c)
		}
	}
	return "", 0, ErrUnterminatedSubTag
}

func isTagSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

// splitList splits a comma separated default into trimmed items.
func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

///////////////////////////////////////////////////////////////////////////////
// Tag-derived schemas
///////////////////////////////////////////////////////////////////////////////

// SchemaFromTags derives a Schema for R from its `shape` struct tags.
//
// Fields without a tag are not parsed. Fields are required unless they
// carry a default or the optional modifier. A recurse subtag nests the
// schema derived from the field's struct, slice element or map element
// type. A type that reaches itself through recurse is rejected with
// ErrRecursiveSchema.
//
// Derived schemas are cached per type.
func SchemaFromTags[R any](typeName string) (*Schema[R], error) {
	typ := reflect.TypeOf((*R)(nil)).Elem()
	core, err := _gTagSchemas.get(typ)
	if err != nil {
		return nil, err
	}
	if typeName != "" && typeName != core.typeName {
		renamed := *core
		renamed.typeName = typeName
		core = &renamed
	}
	return &Schema[R]{core: core}, nil
}

// MustSchemaFromTags is SchemaFromTags for package-level declarations.
func MustSchemaFromTags[R any](typeName string) *Schema[R] {
	schema, err := SchemaFromTags[R](typeName)
	if err != nil {
		panic(err)
	}
	return schema
}

// tagSchemaCache holds the schema derived for each record type.
type tagSchemaCache struct {
	mu      sync.RWMutex
	schemas map[reflect.Type]*schemaCore
}

var _gTagSchemas = &tagSchemaCache{schemas: make(map[reflect.Type]*schemaCore)}

func (c *tagSchemaCache) get(typ reflect.Type) (*schemaCore, error) {
	c.mu.RLock()
	core, ok := c.schemas[typ]
	c.mu.RUnlock()
	if ok {
		return core, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.build(typ, make(map[reflect.Type]bool))
}

// build derives the schema of typ. The caller holds the write lock.
func (c *tagSchemaCache) build(typ reflect.Type, building map[reflect.Type]bool) (*schemaCore, error) {
	if core, ok := c.schemas[typ]; ok {
		return core, nil
	}
	if building[typ] {
		return nil, fmt.Errorf("%w: %s", ErrRecursiveSchema, typ)
	}
	building[typ] = true
	defer delete(building, typ)

	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s: record type must be a struct", ErrInvalidSchema, typ)
	}

	var specs []FieldSpec
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		tag, ok := sf.Tag.Lookup(TagName)
		if !ok || !sf.IsExported() {
			continue
		}

		spec, err := c.fieldSpec(sf, tag, building)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", typ.Name(), sf.Name, err)
		}
		specs = append(specs, spec)
	}

	core, err := newSchemaCore(typ, "", specs)
	if err != nil {
		return nil, err
	}
	c.schemas[typ] = core
	return core, nil
}

func (c *tagSchemaCache) fieldSpec(sf reflect.StructField, raw string, building map[reflect.Type]bool) (FieldSpec, error) {
	tag, err := DecodeTag(raw)
	if err != nil {
		return FieldSpec{}, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}

	spec := FieldSpec{
		Target:   sf.Name,
		Path:     tag.Path,
		Required: !tag.HasDefault && !tag.Optional,
	}

	if tag.HasDefault {
		def := reflect.New(sf.Type).Elem()
		if err := setFieldValue(def, tag.Default); err != nil {
			return FieldSpec{}, fmt.Errorf("%w: bad default %q: %w", ErrInvalidSchema, tag.Default, err)
		}
		spec.Default = def.Interface()
	}

	switch {
	case tag.Cast != "":
		kind, err := ParsePrimitiveKind(tag.Cast)
		if err != nil {
			return FieldSpec{}, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
		}
		spec.Transform = Cast(kind)

	case tag.Recurse != "":
		elem, err := recordElemType(sf.Type, tag.Recurse)
		if err != nil {
			return FieldSpec{}, err
		}
		sub, err := c.build(elem, building)
		if err != nil {
			return FieldSpec{}, err
		}
		dyn := &dynamicSchema{core: sub}
		switch tag.Recurse {
		case RecurseOne:
			spec.Transform = Nested(dyn)
		case RecurseList:
			spec.Transform = NestedList(dyn)
		case RecurseMap:
			spec.Transform = NestedMap(dyn)
		}
	}

	return spec, nil
}

// recordElemType finds the record struct a recurse subtag refers to.
func recordElemType(field reflect.Type, mode string) (reflect.Type, error) {
	typ := field
	switch mode {
	case RecurseList:
		if typ.Kind() != reflect.Slice {
			return nil, fmt.Errorf("%w: recurse:'list' needs a slice field, got %s", ErrInvalidSchema, field)
		}
		typ = typ.Elem()
	case RecurseMap:
		if typ.Kind() != reflect.Map || typ.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: recurse:'map' needs a map[string] field, got %s", ErrInvalidSchema, field)
		}
		typ = typ.Elem()
	}
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct || isSpecialStructType(typ) {
		return nil, fmt.Errorf("%w: recurse:'%s' needs a record struct, got %s", ErrInvalidSchema, mode, field)
	}
	return typ, nil
}
