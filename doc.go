// Package shape turns loosely shaped documents, such as decoded API
// responses, into typed Go records.
//
// A record type is described by a Schema: an ordered list of FieldSpecs,
// each naming a struct field, the key path it is read from and a Transform
// that converts the value found there. The same record can be read from
// documents of different shapes simply by declaring another schema.
//
//	type Person struct {
//	    Name string
//	    Age  int
//	}
//
//	var PersonSchema = shape.MustSchema[Person]("Person",
//	    shape.Required("Name", shape.P("n"), shape.Cast(shape.CastString)),
//	    shape.WithDefault("Age", shape.P("a"), shape.Identity(), 0),
//	)
//
//	doc, _ := shape.DecodeJSON([]byte(`{"n": "Alice"}`))
//	p, err := shape.ParseOne(PersonSchema, doc) // Person{Name: "Alice", Age: 0}
//
// Schemas can also be derived from struct tags with SchemaFromTags:
//
//	type Person struct {
//	    Name string `shape:"path:'n' cast:'string'"`
//	    Age  int    `shape:"path:'a' default:'0'"`
//	}
//
// # Absent values
//
// A field is absent when a key along its path is missing, when a step of
// the path is not a map, or when the value found is null. A transform that
// returns nil also makes the field absent. Absent fields take their
// default; absent required fields fail the parse with
// ErrMissingRequiredField. Present falsy values (0, "", false, empty
// arrays) are never replaced by a default.
//
// # Errors
//
// Every parse failure is a *DeserializeError matching one of
// ErrMissingRequiredField, ErrTypeCoercion or ErrStructuralMismatch. A
// failure in a nested record is returned unchanged by the enclosing parse,
// and batch operations return no records when any element fails.
//
// Parsing is synchronous and does no I/O. Schemas are immutable and may be
// shared across goroutines.
package shape
