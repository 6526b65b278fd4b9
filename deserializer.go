package shape

import (
	"fmt"
	"sync/atomic"

	"github.com/go-logr/logr"
)

// DeserializerOpts configures a Deserializer.
type DeserializerOpts struct {
	// Logger receives V(1) events for defaulted fields and failed parses.
	// The zero Logger discards.
	Logger logr.Logger
	// Metrics, when set, counts parsed records per type and outcome.
	Metrics *Metrics
	// MaxListLength bounds the arrays accepted by NestedList transforms and
	// ParseMany. Zero means unbounded.
	MaxListLength int
}

// Deserializer applies schemas to documents. It holds only configuration,
// so one Deserializer may serve any number of concurrent parses.
type Deserializer struct {
	opts DeserializerOpts
}

func NewDeserializer(opts DeserializerOpts) *Deserializer {
	if opts.Logger.GetSink() == nil {
		opts.Logger = logr.Discard()
	}
	return &Deserializer{opts: opts}
}

var _gDeserializer atomic.Pointer[Deserializer]

func init() {
	_gDeserializer.Store(NewDeserializer(DeserializerOpts{}))
}

// Default returns the Deserializer used by ParseOne, ParseMany and
// ParseKeyed.
func Default() *Deserializer {
	return _gDeserializer.Load()
}

func (d *Deserializer) orDefault() *Deserializer {
	if d == nil {
		return Default()
	}
	return d
}

// SetDefault replaces the package-level Deserializer.
func SetDefault(d *Deserializer) {
	if d == nil {
		d = NewDeserializer(DeserializerOpts{})
	}
	_gDeserializer.Store(d)
}

///////////////////////////////////////////////////////////////////////////////
// Package functions
///////////////////////////////////////////////////////////////////////////////

// ParseOne builds a record of type R from doc using the default
// Deserializer.
func ParseOne[R any](schema *Schema[R], doc Value) (R, error) {
	return ParseOneWith(Default(), schema, doc)
}

// ParseMany parses each document in order. It stops at the first failure
// and returns no records in that case.
func ParseMany[R any](schema *Schema[R], docs []Value) ([]R, error) {
	return ParseManyWith(Default(), schema, docs)
}

// ParseKeyed parses each value of docs, keeping its key. It stops at the
// first failure, visiting keys in sorted order, and returns no records in
// that case.
func ParseKeyed[R any](schema *Schema[R], docs map[string]Value) (map[string]R, error) {
	return ParseKeyedWith(Default(), schema, docs)
}

// ParseOneWith is ParseOne using d. A nil d is the default Deserializer.
func ParseOneWith[R any](d *Deserializer, schema *Schema[R], doc Value) (R, error) {
	d = d.orDefault()
	rec, err := schema.parse(d, doc)
	d.observe(schema.TypeName(), err)
	return rec, err
}

func ParseManyWith[R any](d *Deserializer, schema *Schema[R], docs []Value) ([]R, error) {
	d = d.orDefault()
	if err := d.checkListLength(schema.TypeName(), len(docs)); err != nil {
		d.observe(schema.TypeName(), err)
		return nil, err
	}
	recs, err := schema.parseList(d, docs)
	d.observe(schema.TypeName(), err)
	return recs, err
}

// checkListLength enforces MaxListLength on a top-level batch.
func (d *Deserializer) checkListLength(typeName string, n int) error {
	if d.opts.MaxListLength > 0 && n > d.opts.MaxListLength {
		return &DeserializeError{
			Kind:     ErrStructuralMismatch,
			TypeName: typeName,
			Err:      fmt.Errorf("%d documents exceed limit %d", n, d.opts.MaxListLength),
		}
	}
	return nil
}

func ParseKeyedWith[R any](d *Deserializer, schema *Schema[R], docs map[string]Value) (map[string]R, error) {
	d = d.orDefault()
	recs, err := schema.parseMap(d, docs)
	d.observe(schema.TypeName(), err)
	return recs, err
}

// DecodeOne decodes a JSON document and parses it with schema.
func DecodeOne[R any](schema *Schema[R], data []byte) (R, error) {
	doc, err := DecodeJSON(data)
	if err != nil {
		var zero R
		return zero, err
	}
	return ParseOne(schema, doc)
}

// DecodeMany decodes a JSON array and parses each element with schema.
func DecodeMany[R any](schema *Schema[R], data []byte) ([]R, error) {
	doc, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	items, ok := doc.AsArray()
	if !ok {
		return nil, fmt.Errorf("%w: expected array, got %s", ErrInvalidDocument, doc.Kind())
	}
	return ParseMany(schema, items)
}

// DecodeKeyed decodes a JSON object and parses each value with schema.
func DecodeKeyed[R any](schema *Schema[R], data []byte) (map[string]R, error) {
	doc, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	entries, ok := doc.AsMap()
	if !ok {
		return nil, fmt.Errorf("%w: expected object, got %s", ErrInvalidDocument, doc.Kind())
	}
	return ParseKeyed(schema, entries)
}

///////////////////////////////////////////////////////////////////////////////
// Instrumentation
///////////////////////////////////////////////////////////////////////////////

func (d *Deserializer) defaulted(typeName string, spec *FieldSpec) {
	d.opts.Logger.V(1).Info("field defaulted",
		"type", typeName,
		"field", spec.Target,
		"path", spec.Path.String(),
	)
	d.opts.Metrics.fieldDefaulted(typeName)
}

func (d *Deserializer) observe(typeName string, err error) {
	if err != nil {
		d.opts.Logger.V(1).Info("parse failed", "type", typeName, "error", err.Error())
	}
	d.opts.Metrics.recordParsed(typeName, errorOutcome(err))
}
