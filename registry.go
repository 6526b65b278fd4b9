package shape

import (
	"fmt"
	"slices"
	"sync"
)

// SchemaRegistry maps record type names to schemas, so that callers that
// only know an entity's name (a CLI flag, a route) can parse documents of
// that type.
//
// A SchemaRegistry is safe for concurrent use. Registration is expected to
// happen once at startup; lookups take a read lock only.
type SchemaRegistry struct {
	mu sync.RWMutex
	m  map[string]AnySchema // type name -> schema
	d  *Deserializer
}

type SchemaRegistryOpts struct {
	// Schemas are registered in order; a duplicate name is an error.
	Schemas []AnySchema
	// Deserializer used by Parse and ParseJSON. Defaults to Default() at
	// call time.
	Deserializer *Deserializer
}

func NewSchemaRegistry(opts SchemaRegistryOpts) (*SchemaRegistry, error) {
	reg := &SchemaRegistry{
		m: make(map[string]AnySchema),
		d: opts.Deserializer,
	}

	for _, schema := range opts.Schemas {
		if err := reg.Register(schema); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Register adds schema under its TypeName.
func (reg *SchemaRegistry) Register(schema AnySchema) error {
	if schema == nil {
		return fmt.Errorf("%w: nil schema", ErrInvalidSchema)
	}
	name := schema.TypeName()

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrSchemaAlreadyRegistered, name)
	}
	reg.m[name] = schema
	return nil
}

// Lookup returns the schema registered under name.
func (reg *SchemaRegistry) Lookup(name string) (AnySchema, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	schema, ok := reg.m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, name)
	}
	return schema, nil
}

// Names returns the registered type names, sorted.
func (reg *SchemaRegistry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	names := make([]string, 0, len(reg.m))
	for name := range reg.m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (reg *SchemaRegistry) deserializer() *Deserializer {
	return reg.d.orDefault()
}

// Parse parses doc with the schema registered under name. The result has the
// schema's record type.
func (reg *SchemaRegistry) Parse(name string, doc Value) (any, error) {
	schema, err := reg.Lookup(name)
	if err != nil {
		return nil, err
	}
	d := reg.deserializer()
	rec, err := schema.decodeValue(d, doc)
	d.observe(name, err)
	return rec, err
}

// ParseList parses each element of docs with the named schema. The result
// is a slice of the schema's record type.
func (reg *SchemaRegistry) ParseList(name string, docs []Value) (any, error) {
	schema, err := reg.Lookup(name)
	if err != nil {
		return nil, err
	}
	d := reg.deserializer()
	if err := d.checkListLength(name, len(docs)); err != nil {
		d.observe(name, err)
		return nil, err
	}
	recs, err := schema.decodeList(d, docs)
	d.observe(name, err)
	return recs, err
}

// ParseKeyed parses each value of docs with the named schema. The result is
// a map[string] of the schema's record type.
func (reg *SchemaRegistry) ParseKeyed(name string, docs map[string]Value) (any, error) {
	schema, err := reg.Lookup(name)
	if err != nil {
		return nil, err
	}
	d := reg.deserializer()
	recs, err := schema.decodeMap(d, docs)
	d.observe(name, err)
	return recs, err
}

// ParseJSON decodes data and parses it with the named schema.
func (reg *SchemaRegistry) ParseJSON(name string, data []byte) (any, error) {
	doc, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	return reg.Parse(name, doc)
}
