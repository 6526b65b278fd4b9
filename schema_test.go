package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchemaValidation(t *testing.T) {
	type record struct {
		Name   string
		Count  int
		hidden string
	}

	tests := []struct {
		name   string
		fields []FieldSpec
	}{
		{"UnknownField", []FieldSpec{Required("Nope", P("n"), Identity())}},
		{"UnexportedField", []FieldSpec{Required("hidden", P("h"), Identity())}},
		{"EmptyPath", []FieldSpec{Required("Name", nil, Identity())}},
		{"EmptyKey", []FieldSpec{Required("Name", P("a", ""), Identity())}},
		{"RequiredWithDefault", []FieldSpec{{Target: "Name", Path: P("n"), Required: true, Default: "x"}}},
		{"BadDefaultType", []FieldSpec{WithDefault("Count", P("c"), Identity(), "ten")}},
		{"DuplicateTarget", []FieldSpec{
			Required("Name", P("a"), Identity()),
			Required("Name", P("b"), Identity()),
		}},
		{"FuncWithoutFunction", []FieldSpec{Required("Name", P("n"), Func(nil))}},
		{"NestedWithoutSchema", []FieldSpec{Required("Name", P("n"), Nested(nil))}},
		{"UnknownCast", []FieldSpec{Required("Name", P("n"), Cast(PrimitiveKind(99)))}},
		{"NoTarget", []FieldSpec{Required("", P("n"), Identity())}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema[record]("Record", tt.fields...)
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}

	t.Run("NotAStruct", func(t *testing.T) {
		_, err := NewSchema[map[string]any]("Bag")
		assert.ErrorIs(t, err, ErrInvalidSchema)
	})

	t.Run("MustSchemaPanics", func(t *testing.T) {
		assert.Panics(t, func() {
			MustSchema[record]("Record", Required("Nope", P("n"), Identity()))
		})
	})
}

func TestSchemaAccessors(t *testing.T) {
	assert.Equal(t, "Person", personSchema.TypeName())

	fields := personSchema.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, "Name", fields[0].Target)
	assert.True(t, fields[0].Required)
	assert.Equal(t, "Age", fields[1].Target)
	assert.Equal(t, 0, fields[1].Default)

	fields[0].Path[0] = "changed"
	assert.Equal(t, P("n"), personSchema.Fields()[0].Path)

	t.Run("DefaultTypeName", func(t *testing.T) {
		schema := MustSchema[Person]("", Required("Name", P("n"), Identity()))
		assert.Equal(t, "Person", schema.TypeName())
	})

	t.Run("TransformString", func(t *testing.T) {
		assert.Equal(t, "identity", Transform{}.String())
		assert.Equal(t, "cast(uuid)", Cast(CastUUID).String())
		assert.Equal(t, "nested-list(Person)", NestedList(personSchema).String())
		assert.Equal(t, TransformNestedMap, NestedMap(personSchema).Kind())
		assert.Same(t, personSchema, Nested(personSchema).Schema())
	})
}

func TestEmbeddedFields(t *testing.T) {
	type Base struct {
		ID string
	}
	type Derived struct {
		Base
		Name string
	}
	type ViaPointer struct {
		*Base
		Name string
	}

	schema, err := NewSchema[Derived]("Derived",
		Required("ID", P("id"), Cast(CastString)),
		Required("Name", P("name"), Cast(CastString)),
	)
	require.NoError(t, err)

	d, err := ParseOne(schema, mustJSON(t, `{"id":5,"name":"n"}`))
	require.NoError(t, err)
	assert.Equal(t, "5", d.ID)

	_, err = NewSchema[ViaPointer]("ViaPointer", Required("ID", P("id"), Identity()))
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestErrorMessages(t *testing.T) {
	err := missingFieldError("Person", []string{"Name", "Age"})
	assert.Equal(t,
		`missing required field: at least one field of "Person" was absent or null without a default (missing: Name, Age)`,
		err.Error())

	spec := Required("Age", P("a", "b"), Identity())
	err = coercionError("Person", &spec, assert.AnError)
	assert.Equal(t, "type coercion failure: Person.Age at a/b: "+assert.AnError.Error(), err.Error())
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, ErrStructuralMismatch)

	assert.Equal(t, outcomeOK, errorOutcome(nil))
	assert.Equal(t, outcomeMissing, errorOutcome(missingFieldError("X", nil)))
	assert.Equal(t, outcomeCoercion, errorOutcome(err))
	assert.Equal(t, outcomeStructural, errorOutcome(structuralError("X", &spec, nil)))
}
