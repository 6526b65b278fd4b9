package shape

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Person struct {
	Name string
	Age  int
}

type Team struct {
	Members []Person
}

type Contact struct {
	Email string
}

type Office struct {
	Name    string
	Manager *Person
	Staff   map[string]Person
}

var (
	personSchema = MustSchema[Person]("Person",
		Required("Name", P("n"), Identity()),
		WithDefault("Age", P("a"), Identity(), 0),
	)
	teamSchema = MustSchema[Team]("Team",
		Required("Members", P("roster"), NestedList(personSchema)),
	)
	contactSchema = MustSchema[Contact]("Contact",
		Required("Email", P("contact", "email"), Cast(CastString)),
	)
	officeSchema = MustSchema[Office]("Office",
		Required("Name", P("name"), Cast(CastString)),
		Optional("Manager", P("manager"), Nested(personSchema)),
		WithDefault("Staff", P("staff"), NestedMap(personSchema), map[string]Person{}),
	)
)

func mustJSON(t *testing.T, data string) Value {
	t.Helper()
	doc, err := DecodeJSONString(data)
	require.NoError(t, err)
	return doc
}

func TestParseOne(t *testing.T) {
	t.Run("DefaultApplied", func(t *testing.T) {
		p, err := ParseOne(personSchema, mustJSON(t, `{"n":"Alice"}`))
		require.NoError(t, err)
		assert.Equal(t, Person{Name: "Alice", Age: 0}, p)
	})

	t.Run("ExplicitZeroKept", func(t *testing.T) {
		schema := MustSchema[Person]("Person",
			Required("Name", P("n"), Identity()),
			WithDefault("Age", P("a"), Identity(), 42),
		)
		p, err := ParseOne(schema, mustJSON(t, `{"n":"Bob","a":0}`))
		require.NoError(t, err)
		assert.Equal(t, Person{Name: "Bob", Age: 0}, p)

		p, err = ParseOne(schema, mustJSON(t, `{"n":"Bob"}`))
		require.NoError(t, err)
		assert.Equal(t, 42, p.Age)
	})

	t.Run("NullTakesDefault", func(t *testing.T) {
		schema := MustSchema[Person]("Person",
			Required("Name", P("n"), Identity()),
			WithDefault("Age", P("a"), Identity(), 7),
		)
		p, err := ParseOne(schema, mustJSON(t, `{"n":"Cid","a":null}`))
		require.NoError(t, err)
		assert.Equal(t, 7, p.Age)
	})

	t.Run("MissingRequired", func(t *testing.T) {
		_, err := ParseOne(personSchema, mustJSON(t, `{}`))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingRequiredField)

		var derr *DeserializeError
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, "Person", derr.TypeName)
		assert.Equal(t, []string{"Name"}, derr.Missing)
		assert.Contains(t, err.Error(), `"Person"`)
	})

	t.Run("NullParentStopsTraversal", func(t *testing.T) {
		_, err := ParseOne(contactSchema, mustJSON(t, `{"contact": null}`))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingRequiredField)

		var derr *DeserializeError
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, "Contact", derr.TypeName)
	})

	t.Run("ScalarParentIsAbsent", func(t *testing.T) {
		_, err := ParseOne(contactSchema, mustJSON(t, `{"contact": "nobody"}`))
		assert.ErrorIs(t, err, ErrMissingRequiredField)
	})

	t.Run("NonMapDocument", func(t *testing.T) {
		_, err := ParseOne(personSchema, mustJSON(t, `[1, 2]`))
		assert.ErrorIs(t, err, ErrMissingRequiredField)
	})

	t.Run("AllMissingFieldsReported", func(t *testing.T) {
		schema := MustSchema[Person]("Person",
			Required("Name", P("n"), Identity()),
			Required("Age", P("a"), Identity()),
		)
		_, err := ParseOne(schema, mustJSON(t, `{}`))
		var derr *DeserializeError
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, []string{"Name", "Age"}, derr.Missing)
	})

	t.Run("Idempotent", func(t *testing.T) {
		doc := mustJSON(t, `{"roster":[{"n":"Ann","a":5},{"n":"Ben"}]}`)
		a, err := ParseOne(teamSchema, doc)
		require.NoError(t, err)
		b, err := ParseOne(teamSchema, doc)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestIdentityIntegers(t *testing.T) {
	type Counters struct {
		ID   int64
		U    uint64
		IDs  []int64
		Cast int64
	}
	schema := MustSchema[Counters]("Counters",
		Optional("ID", P("id"), Identity()),
		Optional("U", P("u"), Identity()),
		Optional("IDs", P("ids"), Identity()),
		Optional("Cast", P("id"), Cast(CastInt)),
	)

	t.Run("BeyondFloatPrecision", func(t *testing.T) {
		c, err := ParseOne(schema, mustJSON(t, `{"id":9007199254740993,"ids":[9007199254740993,-2]}`))
		require.NoError(t, err)
		assert.Equal(t, int64(9007199254740993), c.ID)
		assert.Equal(t, c.Cast, c.ID)
		assert.Equal(t, []int64{9007199254740993, -2}, c.IDs)
	})

	t.Run("MaxUint64", func(t *testing.T) {
		c, err := ParseOne(schema, mustJSON(t, `{"u":18446744073709551615}`))
		require.NoError(t, err)
		assert.Equal(t, uint64(18446744073709551615), c.U)
	})

	for name, doc := range map[string]string{
		"PastInt64":        `{"ids":[1e19]}`,
		"PastUint64":       `{"u":18446744073709551616}`,
		"NegativeIntoUint": `{"u":-1}`,
		"Fraction":         `{"ids":[1.5]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseOne(schema, mustJSON(t, doc))
			assert.ErrorIs(t, err, ErrStructuralMismatch)
		})
	}
}

func TestFalsyValuesPreserved(t *testing.T) {
	type Flags struct {
		Count int
		Label string
		On    bool
		Items []string
	}
	schema := MustSchema[Flags]("Flags",
		WithDefault("Count", P("count"), Identity(), 9),
		WithDefault("Label", P("label"), Identity(), "fallback"),
		WithDefault("On", P("on"), Identity(), true),
		WithDefault("Items", P("items"), Identity(), []string{"fallback"}),
	)

	t.Run("Present", func(t *testing.T) {
		f, err := ParseOne(schema, mustJSON(t, `{"count":0,"label":"","on":false,"items":[]}`))
		require.NoError(t, err)
		assert.Equal(t, 0, f.Count)
		assert.Equal(t, "", f.Label)
		assert.False(t, f.On)
		assert.NotNil(t, f.Items)
		assert.Empty(t, f.Items)
	})

	t.Run("Absent", func(t *testing.T) {
		f, err := ParseOne(schema, mustJSON(t, `{}`))
		require.NoError(t, err)
		assert.Equal(t, Flags{Count: 9, Label: "fallback", On: true, Items: []string{"fallback"}}, f)
	})

	t.Run("DefaultsNotShared", func(t *testing.T) {
		a, err := ParseOne(schema, mustJSON(t, `{}`))
		require.NoError(t, err)
		a.Items[0] = "changed"

		b, err := ParseOne(schema, mustJSON(t, `{}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"fallback"}, b.Items)
	})
}

func TestNestedTransforms(t *testing.T) {
	t.Run("List", func(t *testing.T) {
		team, err := ParseOne(teamSchema, mustJSON(t, `{"roster":[{"n":"Ann","a":5}]}`))
		require.NoError(t, err)
		assert.Equal(t, Team{Members: []Person{{Name: "Ann", Age: 5}}}, team)
	})

	t.Run("ListOrderAndLength", func(t *testing.T) {
		team, err := ParseOne(teamSchema, mustJSON(t,
			`{"roster":[{"n":"c"},{"n":"a"},{"n":"b"},{"n":"a"}]}`))
		require.NoError(t, err)
		require.Len(t, team.Members, 4)
		names := make([]string, len(team.Members))
		for i, m := range team.Members {
			names[i] = m.Name
		}
		assert.Equal(t, []string{"c", "a", "b", "a"}, names)
	})

	t.Run("EmptyList", func(t *testing.T) {
		team, err := ParseOne(teamSchema, mustJSON(t, `{"roster":[]}`))
		require.NoError(t, err)
		assert.NotNil(t, team.Members)
		assert.Empty(t, team.Members)
	})

	t.Run("ListElementFailurePropagates", func(t *testing.T) {
		_, err := ParseOne(teamSchema, mustJSON(t, `{"roster":[{"n":"Ann"},{"a":3}]}`))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingRequiredField)

		var derr *DeserializeError
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, "Person", derr.TypeName)
	})

	t.Run("ListOfScalars", func(t *testing.T) {
		_, err := ParseOne(teamSchema, mustJSON(t, `{"roster":[{"n":"Ann"}, 5]}`))
		assert.ErrorIs(t, err, ErrStructuralMismatch)
	})

	t.Run("ListNotArray", func(t *testing.T) {
		_, err := ParseOne(teamSchema, mustJSON(t, `{"roster":{"n":"Ann"}}`))
		assert.ErrorIs(t, err, ErrStructuralMismatch)
	})

	t.Run("PointerRecord", func(t *testing.T) {
		o, err := ParseOne(officeSchema, mustJSON(t, `{"name":"HQ","manager":{"n":"Meg","a":50}}`))
		require.NoError(t, err)
		require.NotNil(t, o.Manager)
		assert.Equal(t, Person{Name: "Meg", Age: 50}, *o.Manager)
		assert.NotNil(t, o.Staff)
		assert.Empty(t, o.Staff)
	})

	t.Run("AbsentOptionalRecord", func(t *testing.T) {
		o, err := ParseOne(officeSchema, mustJSON(t, `{"name":"HQ","manager":null}`))
		require.NoError(t, err)
		assert.Nil(t, o.Manager)
	})

	t.Run("NestedNotMap", func(t *testing.T) {
		_, err := ParseOne(officeSchema, mustJSON(t, `{"name":"HQ","manager":"Meg"}`))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrStructuralMismatch)

		var derr *DeserializeError
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, "Office", derr.TypeName)
		assert.Equal(t, "Manager", derr.Field)
	})

	t.Run("Map", func(t *testing.T) {
		o, err := ParseOne(officeSchema, mustJSON(t,
			`{"name":"HQ","staff":{"x":{"n":"Xi"},"y":{"n":"Yu","a":3}}}`))
		require.NoError(t, err)
		assert.Equal(t, map[string]Person{
			"x": {Name: "Xi"},
			"y": {Name: "Yu", Age: 3},
		}, o.Staff)
	})

	t.Run("MapValueNotMap", func(t *testing.T) {
		_, err := ParseOne(officeSchema, mustJSON(t, `{"name":"HQ","staff":{"x":1}}`))
		assert.ErrorIs(t, err, ErrStructuralMismatch)
	})
}

func TestCastAndFuncTransforms(t *testing.T) {
	type Reading struct {
		ID    string
		Value float64
		Count int
		Note  string
	}

	upper := Func(func(v Value) (any, error) {
		s, ok := v.AsString()
		if !ok {
			return nil, errors.New("not a string")
		}
		if s == "" {
			return nil, nil
		}
		return strings.ToUpper(s), nil
	})

	schema := MustSchema[Reading]("Reading",
		Required("ID", P("id"), Cast(CastString)),
		Required("Value", P("value"), Cast(CastFloat)),
		WithDefault("Count", P("count"), Cast(CastInt), 1),
		WithDefault("Note", P("note"), upper, "none"),
	)

	t.Run("Coerced", func(t *testing.T) {
		r, err := ParseOne(schema, mustJSON(t, `{"id":12,"value":"2.5","count":"4","note":"hi"}`))
		require.NoError(t, err)
		assert.Equal(t, Reading{ID: "12", Value: 2.5, Count: 4, Note: "HI"}, r)
	})

	t.Run("CastFailure", func(t *testing.T) {
		_, err := ParseOne(schema, mustJSON(t, `{"id":"a","value":"lots"}`))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTypeCoercion)

		var derr *DeserializeError
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, "Value", derr.Field)
		assert.Equal(t, P("value"), derr.Path)
	})

	t.Run("FuncFailure", func(t *testing.T) {
		_, err := ParseOne(schema, mustJSON(t, `{"id":"a","value":1,"note":3}`))
		assert.ErrorIs(t, err, ErrTypeCoercion)
	})

	t.Run("FuncNilMeansAbsent", func(t *testing.T) {
		r, err := ParseOne(schema, mustJSON(t, `{"id":"a","value":1,"note":""}`))
		require.NoError(t, err)
		assert.Equal(t, "none", r.Note)
	})

	t.Run("IdentityMismatch", func(t *testing.T) {
		_, err := ParseOne(personSchema, mustJSON(t, `{"n":5}`))
		assert.ErrorIs(t, err, ErrStructuralMismatch)
	})

	t.Run("IdentityFractionIntoInt", func(t *testing.T) {
		_, err := ParseOne(personSchema, mustJSON(t, `{"n":"x","a":1.5}`))
		assert.ErrorIs(t, err, ErrStructuralMismatch)
	})
}

func TestParseMany(t *testing.T) {
	t.Run("Order", func(t *testing.T) {
		docs := []Value{
			mustJSON(t, `{"n":"a","a":1}`),
			mustJSON(t, `{"n":"b"}`),
		}
		people, err := ParseMany(personSchema, docs)
		require.NoError(t, err)
		assert.Equal(t, []Person{{Name: "a", Age: 1}, {Name: "b"}}, people)
	})

	t.Run("Empty", func(t *testing.T) {
		people, err := ParseMany(personSchema, nil)
		require.NoError(t, err)
		assert.Empty(t, people)
	})

	t.Run("AbortsBatch", func(t *testing.T) {
		docs := []Value{
			mustJSON(t, `{"n":"a"}`),
			mustJSON(t, `{}`),
			mustJSON(t, `{"n":"c"}`),
		}
		people, err := ParseMany(personSchema, docs)
		assert.ErrorIs(t, err, ErrMissingRequiredField)
		assert.Nil(t, people)
	})
}

func TestParseKeyed(t *testing.T) {
	t.Run("KeysPreserved", func(t *testing.T) {
		docs := map[string]Value{
			"first":  mustJSON(t, `{"n":"a"}`),
			"second": mustJSON(t, `{"n":"b","a":2}`),
			"":       mustJSON(t, `{"n":"c"}`),
		}
		people, err := ParseKeyed(personSchema, docs)
		require.NoError(t, err)
		assert.Len(t, people, 3)
		assert.Equal(t, Person{Name: "b", Age: 2}, people["second"])
		assert.Contains(t, people, "")
	})

	t.Run("AbortsBatch", func(t *testing.T) {
		docs := map[string]Value{
			"a": mustJSON(t, `{"n":"a"}`),
			"b": mustJSON(t, `{"n":1}`),
		}
		people, err := ParseKeyed(personSchema, docs)
		assert.ErrorIs(t, err, ErrStructuralMismatch)
		assert.Nil(t, people)
	})
}

func TestDecodeHelpers(t *testing.T) {
	t.Run("DecodeOne", func(t *testing.T) {
		p, err := DecodeOne(personSchema, []byte(`{"n":"Dee","a":4}`))
		require.NoError(t, err)
		assert.Equal(t, Person{Name: "Dee", Age: 4}, p)
	})

	t.Run("DecodeOneInvalid", func(t *testing.T) {
		_, err := DecodeOne(personSchema, []byte(`{"n":`))
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("DecodeMany", func(t *testing.T) {
		people, err := DecodeMany(personSchema, []byte(`[{"n":"a"},{"n":"b"}]`))
		require.NoError(t, err)
		assert.Len(t, people, 2)

		_, err = DecodeMany(personSchema, []byte(`{"n":"a"}`))
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("DecodeKeyed", func(t *testing.T) {
		people, err := DecodeKeyed(personSchema, []byte(`{"x":{"n":"a"}}`))
		require.NoError(t, err)
		assert.Equal(t, map[string]Person{"x": {Name: "a"}}, people)

		_, err = DecodeKeyed(personSchema, []byte(`[]`))
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})
}

func TestMaxListLength(t *testing.T) {
	d := NewDeserializer(DeserializerOpts{MaxListLength: 2})

	t.Run("NestedList", func(t *testing.T) {
		_, err := ParseOneWith(d, teamSchema, mustJSON(t, `{"roster":[{"n":"a"},{"n":"b"},{"n":"c"}]}`))
		assert.ErrorIs(t, err, ErrStructuralMismatch)

		team, err := ParseOneWith(d, teamSchema, mustJSON(t, `{"roster":[{"n":"a"},{"n":"b"}]}`))
		require.NoError(t, err)
		assert.Len(t, team.Members, 2)
	})

	t.Run("ParseMany", func(t *testing.T) {
		docs := []Value{Map(nil), Map(nil), Map(nil)}
		_, err := ParseManyWith(d, personSchema, docs)
		assert.ErrorIs(t, err, ErrStructuralMismatch)
	})

	t.Run("Registry", func(t *testing.T) {
		registry, err := NewSchemaRegistry(SchemaRegistryOpts{
			Schemas:      []AnySchema{personSchema},
			Deserializer: d,
		})
		require.NoError(t, err)

		_, err = registry.ParseList("Person", []Value{Map(nil), Map(nil), Map(nil)})
		assert.ErrorIs(t, err, ErrStructuralMismatch)
	})
}

func TestRawDocument(t *testing.T) {
	type Tracked struct {
		Raw
		Name string
	}
	schema := MustSchema[Tracked]("Tracked", Required("Name", P("name"), Cast(CastString)))

	doc := mustJSON(t, `{"name":"t","extra":[1,2]}`)
	rec, err := ParseOne(schema, doc)
	require.NoError(t, err)
	assert.Equal(t, "t", rec.Name)
	assert.True(t, doc.Equal(rec.Document()))
	assert.Equal(t, `{"extra":[1,2],"name":"t"}`, rec.Document().String())
}

func TestDeserializerLogging(t *testing.T) {
	var (
		mu    sync.Mutex
		lines []string
	)
	logger := funcr.New(func(prefix, args string) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, args)
	}, funcr.Options{Verbosity: 1})

	d := NewDeserializer(DeserializerOpts{Logger: logger})

	_, err := ParseOneWith(d, personSchema, mustJSON(t, `{"n":"a"}`))
	require.NoError(t, err)
	_, err = ParseOneWith(d, personSchema, mustJSON(t, `{}`))
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"msg"="field defaulted"`)
	assert.Contains(t, lines[0], `"field"="Age"`)
	assert.Contains(t, lines[2], `"msg"="parse failed"`)
	assert.Contains(t, lines[2], `"type"="Person"`)
}

func TestDefaultDeserializer(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	d := NewDeserializer(DeserializerOpts{Logger: testr.New(t), MaxListLength: 1})
	SetDefault(d)
	assert.Same(t, d, Default())

	_, err := ParseMany(personSchema, []Value{Map(nil), Map(nil)})
	assert.ErrorIs(t, err, ErrStructuralMismatch)

	// A nil Deserializer stands for the default one.
	_, err = ParseManyWith(nil, personSchema, []Value{Map(nil), Map(nil)})
	assert.ErrorIs(t, err, ErrStructuralMismatch)

	p, err := ParseOneWith(nil, personSchema, mustJSON(t, `{"n":"Ann"}`))
	require.NoError(t, err)
	assert.Equal(t, Person{Name: "Ann"}, p)

	people, err := ParseKeyedWith(nil, personSchema, map[string]Value{"k": mustJSON(t, `{"n":"Ben"}`)})
	require.NoError(t, err)
	assert.Equal(t, map[string]Person{"k": {Name: "Ben"}}, people)

	SetDefault(nil)
	assert.NotNil(t, Default())
}

func TestConcurrentParse(t *testing.T) {
	doc := mustJSON(t, `{"roster":[{"n":"Ann","a":5},{"n":"Ben"}]}`)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			team, err := ParseOne(teamSchema, doc)
			assert.NoError(t, err)
			assert.Len(t, team.Members, 2)
		}()
	}
	wg.Wait()
}
